package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	DatabaseURL     string
	CORSAllowOrigin []string
	JWTSecret       string

	ObjectStoreType string
	LocalStoreDir   string
	PublicBaseURL   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	S3PublicBaseURL string
	S3DownloadTTL   time.Duration

	InternalAPISecret string
	RenderURL         string
	RenderMaxDuration time.Duration
	RenderRateLimit   float64
	RenderRateBurst   int

	BrowserProvider       string
	ChromePath            string
	ChromiumPath          string
	ChromiumDir           string
	ChromiumRevision      int
	ChromiumDownloadHost  string
	BrowserNoSandbox      bool
	BrowserStartupTimeout time.Duration

	AIParserWebhookURL string
	AIWebhookSecret    string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")
	secret := os.Getenv("INTERNAL_API_SECRET")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}
	if env == "production" && secret == "" {
		log.Printf("INTERNAL_API_SECRET is required in production")
	}

	return Config{
		Port:            getEnv("PORT", "8080"),
		Env:             env,
		DatabaseURL:     dbURL,
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000")),
		JWTSecret:       os.Getenv("JWT_SECRET"),

		ObjectStoreType: normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:   getEnv("LOCAL_STORE_DIR", "./data"),
		PublicBaseURL:   strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		AWSRegion:       getEnv("AWS_REGION", ""),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Prefix:        getEnv("S3_PREFIX", ""),
		S3PublicBaseURL: strings.TrimRight(getEnv("S3_PUBLIC_BASE_URL", ""), "/"),
		S3DownloadTTL:   getEnvDuration("S3_DOWNLOAD_URL_TTL", 24*time.Hour),

		InternalAPISecret: secret,
		RenderURL:         getEnv("RENDER_URL", ""),
		RenderMaxDuration: getEnvDuration("RENDER_MAX_DURATION", 60*time.Second),
		RenderRateLimit:   getEnvFloat("RENDER_RATE_LIMIT", 0.5),
		RenderRateBurst:   getEnvInt("RENDER_RATE_BURST", 5),

		BrowserProvider:       normalizeProvider(getEnv("BROWSER_PROVIDER", ""), env),
		ChromePath:            getEnv("CHROME_PATH", ""),
		ChromiumPath:          getEnv("CHROMIUM_PATH", ""),
		ChromiumDir:           getEnv("CHROMIUM_DIR", "/tmp/chromium"),
		ChromiumRevision:      getEnvInt("CHROMIUM_REVISION", 0),
		ChromiumDownloadHost:  getEnv("CHROMIUM_DOWNLOAD_HOST", ""),
		BrowserNoSandbox:      getEnvBool("BROWSER_NO_SANDBOX", false),
		BrowserStartupTimeout: getEnvDuration("BROWSER_STARTUP_TIMEOUT", 20*time.Second),

		AIParserWebhookURL: getEnv("AI_PARSER_WEBHOOK_URL", ""),
		AIWebhookSecret:    getEnv("AI_WEBHOOK_SECRET", ""),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("config env %s invalid int: %v", key, err)
		return def
	}
	return val
}

func getEnvFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("config env %s invalid float: %v", key, err)
		return def
	}
	return val
}

func getEnvBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("config env %s invalid bool: %v", key, err)
		return def
	}
	return val
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("config env %s invalid duration: %v", key, err)
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}

// normalizeProvider picks the browser provider. An explicit value wins;
// otherwise dev-like environments bind to a local Chrome and everything
// else uses the packaged Chromium build.
func normalizeProvider(raw, env string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "local":
		return "local"
	case "packaged", "serverless":
		return "packaged"
	}
	if IsDevLike(env) {
		return "local"
	}
	return "packaged"
}

// IsDevLike reports whether env is a developer environment.
func IsDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

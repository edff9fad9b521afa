package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-renderer/internal/artifacts"
	"resume-renderer/internal/browser"
	"resume-renderer/internal/extraction"
	"resume-renderer/internal/render"
	"resume-renderer/internal/renders"
	"resume-renderer/internal/resumes"
	"resume-renderer/internal/shared/auth"
	"resume-renderer/internal/shared/config"
	"resume-renderer/internal/shared/server"
	"resume-renderer/internal/shared/storage/db"
	"resume-renderer/internal/shared/storage/object"
	localstore "resume-renderer/internal/shared/storage/object/local"
	s3store "resume-renderer/internal/shared/storage/object/s3"
	"resume-renderer/internal/uploads"
)

// App holds shared dependencies and the HTTP router built from them.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore

	Browsers      browser.Provider
	RenderService *renders.Service
	ResumeRepo    resumes.Repo
	ResumeService *resumes.Service
	Generator     *resumes.Generator
	Extractor     extraction.Extractor

	RenderHandler  *renders.Handler
	ResumeHandler  *resumes.Handler
	ExtractHandler *extraction.Handler
	UploadHandler  *uploads.Handler
}

// Build prepares shared dependencies and wires routes.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:   cfg,
		DB:       sqlDB,
		Store:    store,
		Browsers: BuildProvider(cfg),
	}
	buildServices(app)

	verifier, err := auth.NewVerifier(cfg.JWTSecret, config.IsDevLike(cfg.Env))
	if err != nil {
		log.Printf("bootstrap: %v; resume routes disabled", err)
	}

	deps := server.RouterDeps{
		Config:         cfg,
		RenderHandler:  app.RenderHandler,
		ResumeHandler:  app.ResumeHandler,
		ExtractHandler: app.ExtractHandler,
		UploadHandler:  app.UploadHandler,
	}
	if verifier != nil {
		deps.Verifier = verifier
	}
	if local, ok := store.(*localstore.Store); ok {
		deps.LocalStore = local
	}
	app.Router = server.NewRouter(deps)

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if config.IsDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	opts := db.OptionsFromEnv(db.DefaultOptions())
	if db.IsLambdaRuntime() {
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, opts)
	} else {
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, opts)
	}
	if err == nil && !db.IsLambdaRuntime() {
		err = db.RunMigrations(ctx, sqlDB)
	}
	if err != nil {
		if config.IsDevLike(cfg.Env) {
			log.Printf("bootstrap: database unavailable; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		store, err := s3store.New(ctx, s3store.Options{
			Region:        cfg.AWSRegion,
			Bucket:        cfg.S3Bucket,
			Prefix:        cfg.S3Prefix,
			PublicBaseURL: cfg.S3PublicBaseURL,
			DownloadTTL:   cfg.S3DownloadTTL,
		})
		if err != nil {
			return nil, fmt.Errorf("init s3 store: %w", err)
		}
		return store, nil
	default:
		return localstore.New(cfg.LocalStoreDir, cfg.PublicBaseURL), nil
	}
}

// BuildProvider picks the browser provider named by the configuration.
func BuildProvider(cfg config.Config) browser.Provider {
	if cfg.BrowserProvider == "local" {
		return browser.NewLocalProvider(browser.LocalConfig{
			ChromePath:     cfg.ChromePath,
			NoSandbox:      cfg.BrowserNoSandbox,
			StartupTimeout: cfg.BrowserStartupTimeout,
		})
	}
	return browser.NewPackagedProvider(browser.PackagedConfig{
		BundledPath:    cfg.ChromiumPath,
		CacheDir:       cfg.ChromiumDir,
		Revision:       cfg.ChromiumRevision,
		DownloadHost:   cfg.ChromiumDownloadHost,
		StartupTimeout: cfg.BrowserStartupTimeout,
	})
}

func buildServices(app *App) {
	cfg := app.Config

	app.RenderService = &renders.Service{
		Browsers:    app.Browsers,
		Renderer:    render.New(),
		Artifacts:   artifacts.NewClient(app.Store),
		MaxDuration: cfg.RenderMaxDuration,
	}
	app.RenderHandler = renders.NewHandler(app.RenderService)

	if app.DB != nil {
		app.ResumeRepo = &resumes.PGRepo{DB: app.DB}
	} else {
		app.ResumeRepo = resumes.NewMemoryRepo()
	}

	// A configured RENDER_URL moves rendering to a separate deployment.
	var renderClient resumes.RenderClient = resumes.LocalRenderClient{Svc: app.RenderService}
	if strings.TrimSpace(cfg.RenderURL) != "" {
		renderClient = resumes.NewHTTPRenderClient(cfg.RenderURL, cfg.InternalAPISecret, cfg.RenderMaxDuration)
	}

	app.ResumeService = &resumes.Service{Repo: app.ResumeRepo}
	app.Generator = resumes.NewGenerator(app.ResumeRepo, renderClient, resumes.DefaultTemplateConfig())
	app.ResumeHandler = resumes.NewHandler(app.ResumeService, app.Generator)

	app.Extractor = extraction.NewWebhookClient(cfg.AIParserWebhookURL, cfg.AIWebhookSecret)
	app.ExtractHandler = extraction.NewHandler(app.Extractor)

	app.UploadHandler = uploads.NewHandler(app.Store)
}

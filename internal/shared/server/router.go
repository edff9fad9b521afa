package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-renderer/internal/extraction"
	"resume-renderer/internal/renders"
	"resume-renderer/internal/resumes"
	"resume-renderer/internal/shared/config"
	"resume-renderer/internal/shared/metrics"
	"resume-renderer/internal/shared/server/middleware"
	"resume-renderer/internal/shared/server/respond"
	localstore "resume-renderer/internal/shared/storage/object/local"
	"resume-renderer/internal/uploads"
)

const renderRateGroup = "RENDER"

// RouterDeps carries the handlers the router mounts. Nil handlers are skipped.
type RouterDeps struct {
	Config         config.Config
	Verifier       middleware.TokenVerifier
	RenderHandler  *renders.Handler
	ResumeHandler  *resumes.Handler
	ExtractHandler *extraction.Handler
	UploadHandler  *uploads.Handler
	LocalStore     *localstore.Store
	RateLimiter    *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	health := func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	}
	r.GET("/health", health)
	r.GET("/metrics", metrics.Handler())

	if deps.LocalStore != nil {
		r.GET(localstore.RoutePrefix+"/*key", deps.LocalStore.Handler())
	}

	limiter := deps.RateLimiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(nil)
	}
	renderLimit := middleware.RateLimit(middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			renderRateGroup: {Rate: deps.Config.RenderRateLimit, Burst: deps.Config.RenderRateBurst},
		},
		DefaultGroup: renderRateGroup,
		Limiter:      limiter,
	})

	if deps.RenderHandler != nil {
		deps.RenderHandler.RegisterRoutes(r, middleware.APIKey(deps.Config.InternalAPISecret), renderLimit)
	}

	api := r.Group("/api/v1")
	api.GET("/health", health)
	if deps.Verifier == nil {
		return r
	}

	authed := api.Group("")
	authed.Use(middleware.Auth(deps.Verifier))
	authed.GET("/me", meHandler)
	if deps.ResumeHandler != nil {
		deps.ResumeHandler.RegisterRoutes(authed, renderLimit)
	}
	if deps.ExtractHandler != nil {
		deps.ExtractHandler.RegisterRoutes(authed)
	}
	if deps.UploadHandler != nil {
		deps.UploadHandler.RegisterRoutes(authed)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}

package renders

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-renderer/internal/artifacts"
	"resume-renderer/internal/browser"
	"resume-renderer/internal/render"
	"resume-renderer/internal/shared/server/respond"
)

const maxBodyBytes = 10 << 20 // 10MB

// Error codes carried in the "code" field of failed render responses.
const (
	CodeRenderTimeout     = "RENDER_TIMEOUT"
	CodeEngineUnavailable = "ENGINE_UNAVAILABLE"
	CodeRenderFailed      = "RENDER_FAILED"
	CodeStorageFailed     = "STORAGE_FAILED"
	CodeInternal          = "INTERNAL"
)

// Response is the success body of POST /render.
type Response struct {
	Success     bool   `json:"success"`
	PDFURL      string `json:"pdfUrl"`
	DownloadURL string `json:"downloadUrl,omitempty"`
}

// Handler exposes the render pipeline over HTTP.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches POST /render behind the given middleware, which
// must include the API key check.
func (h *Handler) RegisterRoutes(r gin.IRoutes, mw ...gin.HandlerFunc) {
	handlers := append(append([]gin.HandlerFunc{}, mw...), h.render)
	r.POST("/render", handlers...)
}

func (h *Handler) render(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)

	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "REQUEST_TOO_LARGE", "Request body too large", "")
			return
		}
		respond.Error(c, http.StatusBadRequest, "", ErrBadRequest.Error(), "")
		return
	}

	artifact, err := h.Svc.Render(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrBadRequest) {
			respond.Error(c, http.StatusBadRequest, "", ErrBadRequest.Error(), "")
			return
		}
		respond.Error(c, http.StatusInternalServerError, errorCode(err), "Failed to generate PDF", err.Error())
		return
	}

	respond.OK(c, Response{
		Success:     true,
		PDFURL:      artifact.URL,
		DownloadURL: artifact.DownloadURL,
	})
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, render.ErrRenderTimeout):
		return CodeRenderTimeout
	case errors.Is(err, browser.ErrEngineUnavailable):
		return CodeEngineUnavailable
	case errors.Is(err, render.ErrRenderFailed):
		return CodeRenderFailed
	case errors.Is(err, artifacts.ErrStorage):
		return CodeStorageFailed
	default:
		return CodeInternal
	}
}

package extraction

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"resume-renderer/internal/shared/server/middleware"
	"resume-renderer/internal/shared/server/respond"
	"resume-renderer/internal/shared/telemetry"
)

const maxTextBytes = 64 << 10

// Handler exposes the extractor to authenticated users.
type Handler struct {
	Extractor Extractor
}

func NewHandler(e Extractor) *Handler {
	return &Handler{Extractor: e}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/ai/extract", h.extract)
}

type extractRequest struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

func (h *Handler) extract(c *gin.Context) {
	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body", "")
		return
	}
	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		respond.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "text is required", "")
		return
	}
	if len(req.Text) > maxTextBytes {
		respond.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "text is too long", "")
		return
	}
	if req.Type == "" {
		req.Type = TypePersonalInfo
	}
	if !ValidType(req.Type) {
		respond.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "type must be one of personal_info, experience, education, skills", "")
		return
	}

	start := time.Now()
	data, err := h.Extractor.Extract(c.Request.Context(), req.Text, req.Type)
	if err != nil {
		telemetry.Error("ai.extract.failed", map[string]any{
			"type":        req.Type,
			"user_id":     middleware.UserIDFromContext(c),
			"err":         err.Error(),
			"duration_ms": time.Since(start).Milliseconds(),
		})
		status := http.StatusBadGateway
		if errors.Is(err, ErrNotConfigured) {
			status = http.StatusServiceUnavailable
		}
		respond.Error(c, status, "AI_FAILED", "failed to process with AI", "")
		return
	}

	respond.OK(c, gin.H{"success": true, "data": data})
}

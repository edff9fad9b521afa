package resumes

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"resume-renderer/internal/render"
	"resume-renderer/internal/renders"
	"resume-renderer/internal/shared/server/middleware"
	"resume-renderer/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service and generator.
type Handler struct {
	Svc       *Service
	Generator *Generator
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, gen *Generator) *Handler {
	return &Handler{Svc: svc, Generator: gen}
}

// RegisterRoutes attaches resume routes to an authenticated group. Extra
// middleware applies to the generate route only.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, generateMW ...gin.HandlerFunc) {
	rg.GET("/resumes", h.list)
	rg.POST("/resumes", h.create)
	rg.GET("/resumes/:id", h.get)
	rg.PUT("/resumes/:id/content", h.updateContent)
	rg.PUT("/resumes/:id/template", h.updateTemplate)
	rg.DELETE("/resumes/:id", h.delete)
	rg.POST("/resumes/:id/generate", append(append([]gin.HandlerFunc{}, generateMW...), h.generate)...)
}

func (h *Handler) list(c *gin.Context) {
	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			offset = parsed
		}
	}

	items, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c), limit, offset)
	if err != nil {
		writeError(c, err, "failed to list resumes")
		return
	}
	resp := make([]ResumeSummary, 0, len(items))
	for _, r := range items {
		resp = append(resp, toSummary(r))
	}
	respond.OK(c, resp)
}

func (h *Handler) create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body", "")
		return
	}
	resume, err := h.Svc.Create(c.Request.Context(), middleware.UserIDFromContext(c), req.Title)
	if err != nil {
		writeError(c, err, "failed to create resume")
		return
	}
	c.Set(middleware.ResumeIDKey, resume.ID)
	respond.Created(c, toResponse(resume))
}

func (h *Handler) get(c *gin.Context) {
	id := resumeID(c)
	resume, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), id)
	if err != nil {
		writeError(c, err, "failed to fetch resume")
		return
	}
	respond.OK(c, toResponse(resume))
}

func (h *Handler) updateContent(c *gin.Context) {
	id := resumeID(c)
	var content Content
	if err := c.ShouldBindJSON(&content); err != nil {
		respond.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body", "")
		return
	}
	resume, err := h.Svc.UpdateContent(c.Request.Context(), middleware.UserIDFromContext(c), id, content)
	if err != nil {
		writeError(c, err, "failed to update resume")
		return
	}
	respond.OK(c, toResponse(resume))
}

func (h *Handler) updateTemplate(c *gin.Context) {
	id := resumeID(c)
	var cfg TemplateConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		respond.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body", "")
		return
	}
	resume, err := h.Svc.UpdateTemplateConfig(c.Request.Context(), middleware.UserIDFromContext(c), id, cfg)
	if err != nil {
		writeError(c, err, "failed to update template")
		return
	}
	respond.OK(c, toResponse(resume))
}

func (h *Handler) delete(c *gin.Context) {
	id := resumeID(c)
	if err := h.Svc.Delete(c.Request.Context(), middleware.UserIDFromContext(c), id); err != nil {
		writeError(c, err, "failed to delete resume")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) generate(c *gin.Context) {
	id := resumeID(c)
	result, err := h.Generator.Generate(c.Request.Context(), id, middleware.UserIDFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidInput):
			writeError(c, err, "")
		case errors.Is(err, render.ErrRenderTimeout):
			respond.Error(c, http.StatusGatewayTimeout, renders.CodeRenderTimeout, "Failed to generate PDF", err.Error())
		default:
			respond.Error(c, http.StatusInternalServerError, "GENERATE_FAILED", "Failed to generate PDF", err.Error())
		}
		return
	}
	respond.OK(c, generateResponse{
		Success:     true,
		PDFURL:      result.PDFURL,
		DownloadURL: result.DownloadURL,
	})
}

func resumeID(c *gin.Context) string {
	id := c.Param("id")
	c.Set(middleware.ResumeIDKey, id)
	return id
}

func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "NOT_FOUND", ErrNotFound.Error(), "")
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), "")
	default:
		respond.Error(c, http.StatusInternalServerError, "INTERNAL", fallback, "")
	}
}

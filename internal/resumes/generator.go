package resumes

import (
	"context"
	"fmt"
	"time"

	"resume-renderer/internal/renders"
	"resume-renderer/internal/shared/telemetry"
)

// GenerateResult is the outcome of a successful generation.
type GenerateResult struct {
	PDFURL      string `json:"pdfUrl"`
	DownloadURL string `json:"downloadUrl,omitempty"`
}

// RenderClient turns an HTML document into a stored PDF.
type RenderClient interface {
	Render(ctx context.Context, req renders.Request) (GenerateResult, error)
}

// Generator renders a stored resume and records the resulting PDF URL.
type Generator struct {
	Repo     Repo
	Renderer RenderClient
	// Defaults applies to resumes without a template config of their own.
	Defaults TemplateConfig
	Now      func() time.Time
}

func NewGenerator(repo Repo, renderer RenderClient, defaults TemplateConfig) *Generator {
	return &Generator{Repo: repo, Renderer: renderer, Defaults: defaults}
}

// Generate renders resumeID for callerID. A resume the caller does not own
// is reported as ErrNotFound. The stored PDF URL only changes when the
// render succeeds; failures are returned as-is and never retried.
func (g *Generator) Generate(ctx context.Context, resumeID, callerID string) (GenerateResult, error) {
	if err := checkIDs(callerID, resumeID); err != nil {
		return GenerateResult{}, err
	}
	resume, err := g.Repo.GetByID(ctx, callerID, resumeID)
	if err != nil {
		return GenerateResult{}, err
	}

	cfg := g.Defaults
	if resume.TemplateConfig != nil {
		cfg = *resume.TemplateConfig
	}
	html, err := RenderHTML(resume.Content, cfg, g.Defaults)
	if err != nil {
		return GenerateResult{}, fmt.Errorf("build html: %w", err)
	}

	start := time.Now()
	result, err := g.Renderer.Render(ctx, renders.Request{HTML: html})
	if err != nil {
		telemetry.Error("resume.generate.failed", map[string]any{
			"resume_id":   resumeID,
			"user_id":     callerID,
			"err":         err.Error(),
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return GenerateResult{}, fmt.Errorf("render resume: %w", err)
	}

	if err := g.Repo.SetPDFURL(ctx, callerID, resumeID, result.PDFURL, g.now()); err != nil {
		return GenerateResult{}, fmt.Errorf("record pdf url: %w", err)
	}
	telemetry.Info("resume.generated", map[string]any{
		"resume_id":   resumeID,
		"user_id":     callerID,
		"pdf_url":     result.PDFURL,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return result, nil
}

func (g *Generator) now() time.Time {
	if g.Now != nil {
		return g.Now().UTC()
	}
	return time.Now().UTC()
}

// Package renders turns an HTML document into a stored PDF: acquire a
// browser, render, release, store.
package renders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"resume-renderer/internal/artifacts"
	"resume-renderer/internal/browser"
	"resume-renderer/internal/render"
	"resume-renderer/internal/shared/metrics"
	"resume-renderer/internal/shared/telemetry"
)

const DefaultMaxDuration = 60 * time.Second

// Request is the body of a render call.
type Request struct {
	HTML     string `json:"html"`
	FileName string `json:"fileName,omitempty"`
}

// PageRenderer paints HTML inside an acquired browser.
type PageRenderer interface {
	Render(ctx context.Context, h *browser.Handle, html string) ([]byte, error)
}

// ArtifactStore persists render output.
type ArtifactStore interface {
	Store(ctx context.Context, data []byte, suggestedName string) (artifacts.Artifact, error)
}

// Service runs the render pipeline. Each call owns its browser from
// acquire to release; nothing is shared between calls.
type Service struct {
	Browsers    browser.Provider
	Renderer    PageRenderer
	Artifacts   ArtifactStore
	MaxDuration time.Duration
	Now         func() time.Time
}

// DefaultFileName is used when the request names no file.
func DefaultFileName(now time.Time) string {
	return fmt.Sprintf("curriculo-%d.pdf", now.UnixMilli())
}

// Render produces and stores a PDF for req. The whole pipeline runs under
// MaxDuration; exceeding it yields render.ErrRenderTimeout.
func (s *Service) Render(ctx context.Context, req Request) (artifacts.Artifact, error) {
	if strings.TrimSpace(req.HTML) == "" {
		return artifacts.Artifact{}, ErrBadRequest
	}
	if s.Browsers == nil || s.Renderer == nil || s.Artifacts == nil {
		return artifacts.Artifact{}, errors.New("render service not configured")
	}
	fileName := strings.TrimSpace(req.FileName)
	if fileName == "" {
		fileName = DefaultFileName(s.now())
	}

	limit := s.MaxDuration
	if limit <= 0 {
		limit = DefaultMaxDuration
	}
	ctx, cancel := context.WithTimeout(ctx, limit)
	defer cancel()

	start := time.Now()
	pdf, err := s.produce(ctx, req.HTML)
	if err != nil {
		return artifacts.Artifact{}, s.fail(ctx, err, start)
	}

	storeStart := time.Now()
	artifact, err := s.Artifacts.Store(ctx, pdf, fileName)
	if err != nil {
		return artifacts.Artifact{}, s.fail(ctx, err, start)
	}
	telemetry.Info("render.store", map[string]any{
		"key":         artifact.Key,
		"size_bytes":  artifact.SizeBytes,
		"duration_ms": time.Since(storeStart).Milliseconds(),
	})

	metrics.IncRenderCompleted()
	metrics.ObserveRenderDurationMs(float64(time.Since(start).Milliseconds()))
	return artifact, nil
}

// produce acquires a browser, renders html and releases the browser before
// returning, on every path.
func (s *Service) produce(ctx context.Context, html string) ([]byte, error) {
	acquireStart := time.Now()
	h, err := s.Browsers.Acquire(ctx)
	if err != nil {
		return nil, stageError{stage: metrics.StageAcquire, err: err}
	}
	defer func() {
		h.Release()
		telemetry.Info("render.release", nil)
	}()
	metrics.IncRenderStarted()
	telemetry.Info("render.acquire", map[string]any{
		"duration_ms": time.Since(acquireStart).Milliseconds(),
	})

	pdf, err := s.Renderer.Render(ctx, h, html)
	if err != nil {
		return nil, stageError{stage: metrics.StageRender, err: err}
	}
	return pdf, nil
}

// fail classifies err, records it and returns the error for the caller.
func (s *Service) fail(ctx context.Context, err error, start time.Time) error {
	stage := metrics.StageStore
	var se stageError
	if errors.As(err, &se) {
		stage = se.stage
		err = se.err
	}
	deadline := errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded)
	if deadline && !errors.Is(err, render.ErrRenderTimeout) {
		err = fmt.Errorf("%w: %w", render.ErrRenderTimeout, err)
	}
	if errors.Is(err, render.ErrRenderTimeout) {
		stage = metrics.StageTimeout
	}
	metrics.IncRenderFailed(stage)
	telemetry.Error("render.failed", map[string]any{
		"stage":       stage,
		"err":         err.Error(),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return err
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

type stageError struct {
	stage string
	err   error
}

func (e stageError) Error() string { return e.err.Error() }
func (e stageError) Unwrap() error { return e.err }

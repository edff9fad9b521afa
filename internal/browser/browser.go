// Package browser starts headless Chromium processes for rendering. Each
// Acquire spawns a fresh process with a single tab; nothing is pooled.
package browser

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"resume-renderer/internal/shared/metrics"
	"resume-renderer/internal/shared/telemetry"
)

// Fixed viewport for every render.
const (
	ViewportWidth  = 1920
	ViewportHeight = 1080
)

const defaultStartupTimeout = 20 * time.Second

// ErrEngineUnavailable means no browser could be located or started.
var ErrEngineUnavailable = errors.New("browser engine unavailable")

// Provider yields a live browser for one render.
type Provider interface {
	Acquire(ctx context.Context) (*Handle, error)
}

// Handle is an exclusively owned browser process plus one tab. Callers must
// Release it on every path; Release is safe to call more than once.
type Handle struct {
	ctx     context.Context
	release func()
	once    sync.Once
}

// NewHandle wraps a tab context and the function that tears it down.
func NewHandle(ctx context.Context, release func()) *Handle {
	return &Handle{ctx: ctx, release: release}
}

// Context returns the chromedp tab context bound to this browser.
func (h *Handle) Context() context.Context {
	return h.ctx
}

// Release terminates the browser process.
func (h *Handle) Release() {
	h.once.Do(func() {
		if h.release != nil {
			h.release()
		}
	})
}

type launchConfig struct {
	execPath       string
	noSandbox      bool
	serverless     bool
	startupTimeout time.Duration
}

// launchFlags lists the command-line switches passed to Chromium.
func launchFlags(cfg launchConfig) map[string]any {
	flags := map[string]any{
		"disable-gpu":                   true,
		"disable-dev-shm-usage":         true,
		"disable-extensions":            true,
		"disable-background-networking": true,
		"disable-sync":                  true,
		"disable-translate":             true,
		"hide-scrollbars":               true,
		"mute-audio":                    true,
		"no-first-run":                  true,
		"font-render-hinting":           "none",
		"disable-file-system":           true,
		"block-new-web-contents":        true,
	}
	if cfg.noSandbox || cfg.serverless {
		flags["no-sandbox"] = true
		flags["disable-setuid-sandbox"] = true
	}
	if cfg.serverless {
		flags["single-process"] = true
		flags["no-zygote"] = true
		flags["disable-software-rasterizer"] = true
	}
	return flags
}

// launch starts Chromium at cfg.execPath under ctx. The process dies when
// ctx is cancelled or the returned handle is released.
func launch(ctx context.Context, cfg launchConfig) (*Handle, error) {
	timeout := cfg.startupTimeout
	if timeout <= 0 {
		timeout = defaultStartupTimeout
	}

	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.ExecPath(cfg.execPath),
		chromedp.WindowSize(ViewportWidth, ViewportHeight),
		chromedp.WSURLReadTimeout(timeout),
	)
	flags := launchFlags(cfg)
	names := make([]string, 0, len(flags))
	for name := range flags {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		opts = append(opts, chromedp.Flag(name, flags[name]))
	}

	start := time.Now()
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)
	stop := func() {
		tabCancel()
		allocCancel()
	}

	// The first Run starts the process. Cancelling its context kills the
	// browser, so startup is bounded by WSURLReadTimeout and ctx only.
	if err := chromedp.Run(tabCtx, chromedp.EmulateViewport(ViewportWidth, ViewportHeight)); err != nil {
		stop()
		return nil, fmt.Errorf("%w: start %s: %w", ErrEngineUnavailable, cfg.execPath, err)
	}

	metrics.BrowserStarted()
	telemetry.Info("browser.started", map[string]any{
		"exec_path":   cfg.execPath,
		"serverless":  cfg.serverless,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return NewHandle(tabCtx, func() {
		stop()
		metrics.BrowserStopped()
	}), nil
}

// Package render paints an HTML document in an acquired browser tab and
// exports it as an A4 PDF.
package render

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"resume-renderer/internal/browser"
	"resume-renderer/internal/shared/telemetry"
)

// Fixed page geometry: A4 with uniform 20px (CSS pixels at 96 dpi) margins.
const (
	PaperWidthInches  = 8.27
	PaperHeightInches = 11.69
	MarginInches      = 20.0 / 96.0
)

// DocumentURL is the address the document is loaded from. The browser never
// resolves it: the request is answered from memory, so the page runs under an
// ordinary http origin with no access to file:// resources.
const DocumentURL = "http://document.invalid/"

var (
	ErrRenderTimeout = errors.New("render timed out")
	ErrRenderFailed  = errors.New("render failed")
)

// Renderer turns HTML into PDF bytes inside a browser.Handle.
type Renderer struct{}

func New() *Renderer {
	return &Renderer{}
}

// Render loads html as-is, waits for the document to reach network idle and
// prints it. ctx bounds the whole operation; running out of time yields
// ErrRenderTimeout, any other failure ErrRenderFailed.
func (r *Renderer) Render(ctx context.Context, h *browser.Handle, html string) ([]byte, error) {
	runCtx, cancel := context.WithCancel(h.Context())
	defer cancel()
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		defer cancelDeadline()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var pdf []byte
	if err := chromedp.Run(runCtx, load(html), printToPDF(&pdf)); err != nil {
		return nil, classify(ctx, runCtx, err)
	}

	pages, err := PageCount(pdf)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid pdf output: %w", ErrRenderFailed, err)
	}
	if pages < 1 {
		return nil, fmt.Errorf("%w: pdf has no pages", ErrRenderFailed)
	}
	return pdf, nil
}

// load serves html at DocumentURL and waits until it settles.
func load(html string) chromedp.Tasks {
	return chromedp.Tasks{
		fetch.Enable().WithPatterns([]*fetch.RequestPattern{{
			URLPattern:   DocumentURL,
			RequestStage: fetch.RequestStageRequest,
		}}),
		page.SetLifecycleEventsEnabled(true),
		loadDocument(html),
	}
}

// loadDocument navigates to DocumentURL, serves html for that request and
// blocks until the navigated document fires its networkIdle lifecycle event.
// Lifecycle events of the previous document are ignored by matching the
// loader of the first "init" seen after the listener is armed.
func loadDocument(html string) chromedp.ActionFunc {
	return func(ctx context.Context) error {
		var (
			mu       sync.Mutex
			loaderID cdp.LoaderID
			once     sync.Once
		)
		idle := make(chan struct{})

		listenCtx, stopListening := context.WithCancel(ctx)
		defer stopListening()
		chromedp.ListenTarget(listenCtx, func(ev any) {
			switch e := ev.(type) {
			case *fetch.EventRequestPaused:
				go answerPaused(listenCtx, e, html)
			case *page.EventLifecycleEvent:
				mu.Lock()
				defer mu.Unlock()
				switch e.Name {
				case "init":
					if loaderID == "" {
						loaderID = e.LoaderID
					}
				case "networkIdle":
					if loaderID != "" && e.LoaderID == loaderID {
						once.Do(func() { close(idle) })
					}
				}
			}
		})

		if err := chromedp.Navigate(DocumentURL).Do(ctx); err != nil {
			return fmt.Errorf("navigate: %w", err)
		}

		select {
		case <-idle:
			return nil
		case <-ctx.Done():
			return fmt.Errorf("wait for network idle: %w", ctx.Err())
		}
	}
}

// answerPaused fulfills the document request from memory and lets anything
// else through untouched.
func answerPaused(ctx context.Context, e *fetch.EventRequestPaused, html string) {
	var err error
	if e.Request != nil && e.Request.URL == DocumentURL {
		err = documentResponse(e.RequestID, html).Do(ctx)
	} else {
		err = fetch.ContinueRequest(e.RequestID).Do(ctx)
	}
	if err != nil && ctx.Err() == nil {
		telemetry.Warn("render.intercept.failed", map[string]any{"err": err.Error()})
	}
}

func documentResponse(id fetch.RequestID, html string) *fetch.FulfillRequestParams {
	return fetch.FulfillRequest(id, http.StatusOK).
		WithResponseHeaders([]*fetch.HeaderEntry{
			{Name: "Content-Type", Value: "text/html; charset=utf-8"},
			{Name: "Cache-Control", Value: "no-store"},
		}).
		WithBody(base64.StdEncoding.EncodeToString([]byte(html)))
}

func printToPDF(out *[]byte) chromedp.ActionFunc {
	return func(ctx context.Context) error {
		data, _, err := page.PrintToPDF().
			WithPaperWidth(PaperWidthInches).
			WithPaperHeight(PaperHeightInches).
			WithMarginTop(MarginInches).
			WithMarginRight(MarginInches).
			WithMarginBottom(MarginInches).
			WithMarginLeft(MarginInches).
			WithPrintBackground(true).
			WithPreferCSSPageSize(false).
			Do(ctx)
		if err != nil {
			return fmt.Errorf("print to pdf: %w", err)
		}
		*out = data
		return nil
	}
}

// classify maps a chromedp failure onto the render taxonomy.
func classify(parent, run context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(parent.Err(), context.DeadlineExceeded) ||
		errors.Is(run.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrRenderTimeout, err)
	}
	return fmt.Errorf("%w: %w", ErrRenderFailed, err)
}

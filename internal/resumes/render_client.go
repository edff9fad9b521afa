package resumes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"resume-renderer/internal/render"
	"resume-renderer/internal/renders"
	"resume-renderer/internal/shared/server/middleware"
)

// ErrRenderRejected means the remote render endpoint answered with an error.
var ErrRenderRejected = errors.New("render request rejected")

// LocalRenderClient runs the render pipeline in-process.
type LocalRenderClient struct {
	Svc *renders.Service
}

func (c LocalRenderClient) Render(ctx context.Context, req renders.Request) (GenerateResult, error) {
	artifact, err := c.Svc.Render(ctx, req)
	if err != nil {
		return GenerateResult{}, err
	}
	return GenerateResult{PDFURL: artifact.URL, DownloadURL: artifact.DownloadURL}, nil
}

// HTTPRenderClient calls a remote POST /render endpoint. A remote timeout,
// or the client giving up on the call, surfaces as render.ErrRenderTimeout.
type HTTPRenderClient struct {
	URL    string
	Secret string
	HTTP   *http.Client
}

// NewHTTPRenderClient targets url with the shared secret. The client timeout
// sits slightly above the server's render ceiling.
func NewHTTPRenderClient(url, secret string, ceiling time.Duration) *HTTPRenderClient {
	if ceiling <= 0 {
		ceiling = renders.DefaultMaxDuration
	}
	return &HTTPRenderClient{
		URL:    url,
		Secret: secret,
		HTTP:   &http.Client{Timeout: ceiling + 5*time.Second},
	}
}

func (c *HTTPRenderClient) Render(ctx context.Context, req renders.Request) (GenerateResult, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return GenerateResult{}, fmt.Errorf("encode render request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(payload))
	if err != nil {
		return GenerateResult{}, fmt.Errorf("build render request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(middleware.APIKeyHeader, c.Secret)

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return GenerateResult{}, fmt.Errorf("%w: call render endpoint: %w", render.ErrRenderTimeout, err)
		}
		return GenerateResult{}, fmt.Errorf("call render endpoint: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return GenerateResult{}, fmt.Errorf("read render response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var e struct {
			Error   string `json:"error"`
			Code    string `json:"code"`
			Details string `json:"details"`
		}
		_ = json.Unmarshal(body, &e)
		msg := e.Error
		if e.Details != "" {
			msg += ": " + e.Details
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		if e.Code == renders.CodeRenderTimeout || resp.StatusCode == http.StatusGatewayTimeout {
			return GenerateResult{}, fmt.Errorf("%w: %w: status %d: %s", ErrRenderRejected, render.ErrRenderTimeout, resp.StatusCode, msg)
		}
		return GenerateResult{}, fmt.Errorf("%w: status %d: %s", ErrRenderRejected, resp.StatusCode, msg)
	}

	var out renders.Response
	if err := json.Unmarshal(body, &out); err != nil {
		return GenerateResult{}, fmt.Errorf("decode render response: %w", err)
	}
	if out.PDFURL == "" {
		return GenerateResult{}, fmt.Errorf("%w: response has no pdfUrl", ErrRenderRejected)
	}
	return GenerateResult{PDFURL: out.PDFURL, DownloadURL: out.DownloadURL}, nil
}

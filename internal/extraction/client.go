// Package extraction forwards free text to the AI parser webhook and returns
// the structured JSON it produces.
package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"resume-renderer/internal/shared/server/middleware"
)

// Content types the parser understands.
const (
	TypePersonalInfo = "personal_info"
	TypeExperience   = "experience"
	TypeEducation    = "education"
	TypeSkills       = "skills"
)

const (
	defaultTimeout   = 60 * time.Second
	maxResponseBytes = 2 << 20
)

var (
	ErrNotConfigured = errors.New("ai parser webhook not configured")
	ErrUpstream      = errors.New("ai parser request failed")
	ErrInvalidType   = errors.New("invalid extraction type")
)

// ValidType reports whether t is a supported content type.
func ValidType(t string) bool {
	switch t {
	case TypePersonalInfo, TypeExperience, TypeEducation, TypeSkills:
		return true
	}
	return false
}

// Extractor converts text into JSON for one content type.
type Extractor interface {
	Extract(ctx context.Context, text, contentType string) (json.RawMessage, error)
}

// WebhookClient calls the parser webhook with the shared secret.
type WebhookClient struct {
	url        string
	secret     string
	httpClient *http.Client
}

func NewWebhookClient(url, secret string) *WebhookClient {
	return &WebhookClient{
		url:        strings.TrimSpace(url),
		secret:     secret,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

type webhookRequest struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

func (c *WebhookClient) Extract(ctx context.Context, text, contentType string) (json.RawMessage, error) {
	if c.url == "" {
		return nil, ErrNotConfigured
	}
	if !ValidType(contentType) {
		return nil, ErrInvalidType
	}
	payload, err := json.Marshal(webhookRequest{Text: text, Type: contentType})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.APIKeyHeader, c.secret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", ErrUpstream, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: response is not json", ErrUpstream)
	}
	return json.RawMessage(body), nil
}

// Package gateway is the typed client for the external workstation Gateway
// HTTP API. consoled only consumes these endpoints; it never implements them.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"consoled/pkg/types"
)

const (
	controlTimeout = 15 * time.Second
	chatTimeout    = 2 * time.Minute
)

// Client talks to the gateway. Safe for concurrent use.
type Client struct {
	baseURL     string
	metricsBase string
	apiKey      string
	control     *http.Client
	chat        *http.Client
	log         zerolog.Logger
}

// New constructs a client for the given base URL. apiKey may be empty.
func New(baseURL, apiKey string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		control: &http.Client{Timeout: controlTimeout},
		chat:    &http.Client{Timeout: chatTimeout},
		log:     log,
	}
}

// SetMetricsBase points the system-metrics endpoint at a different base URL,
// for deployments where GPU telemetry is served by a sidecar instead of the
// gateway itself. Call before first use; not safe to flip concurrently.
func (c *Client) SetMetricsBase(baseURL string) {
	c.metricsBase = strings.TrimRight(baseURL, "/")
}

// Usage mirrors the OpenAI usage block.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type chatRequest struct {
	Model       string              `json:"model"`
	Messages    []types.ChatMessage `json:"messages"`
	Temperature float64             `json:"temperature,omitempty"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *Usage `json:"usage,omitempty"`
}

// ChatCompletion runs a single non-streaming completion against the gateway
// and returns the first choice's content.
func (c *Client) ChatCompletion(ctx context.Context, model string, messages []types.ChatMessage, temperature float64, maxTokens int) (string, *Usage, error) {
	body, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", nil, fmt.Errorf("encode chat request: %w", err)
	}
	resp, respBody, err := c.do(ctx, c.chat, http.MethodPost, "/v1/chat/completions", body)
	if err != nil {
		return "", nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return "", nil, c.statusToError(resp.StatusCode, respBody)
	}
	var out chatResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", nil, fmt.Errorf("decode chat response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", nil, fmt.Errorf("gateway returned no choices")
	}
	return out.Choices[0].Message.Content, out.Usage, nil
}

// LoadModel asks the gateway to pre-load a model. A 404 maps to
// ErrModelNotAvailable so callers can surface the pull hint.
func (c *Client) LoadModel(ctx context.Context, name string) error {
	p := "/v1/admin/models/" + url.PathEscape(name) + "/load"
	resp, body, err := c.do(ctx, c.control, http.MethodPost, p, nil)
	if err != nil {
		return err
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrModelNotAvailable(name)
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	default:
		return c.statusToError(resp.StatusCode, body)
	}
}

// UnloadModel asks the gateway to evict a model. Best-effort: the runtime's
// own idle policy reclaims models regardless, so callers log failures only.
func (c *Client) UnloadModel(ctx context.Context, name string) error {
	p := "/v1/admin/models/" + url.PathEscape(name) + "/unload"
	resp, body, err := c.do(ctx, c.control, http.MethodPost, p, nil)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return c.statusToError(resp.StatusCode, body)
}

// LoadedModels lists the gateway model names already resident, so a redundant
// load is never re-issued on startup.
func (c *Client) LoadedModels(ctx context.Context) ([]string, error) {
	resp, body, err := c.do(ctx, c.control, http.MethodGet, "/v1/admin/models/loaded", nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, c.statusToError(resp.StatusCode, body)
	}
	var out struct {
		Models []string `json:"models"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode loaded models: %w", err)
	}
	return out.Models, nil
}

// PullStatus reports an in-progress model download, if any.
type PullStatus struct {
	// Gateway model name being pulled; empty when no pull is active.
	Model string `json:"model"`
	// Progress 0-100.
	Progress int `json:"progress"`
}

// PullStatus polls the gateway's pull-status endpoint.
func (c *Client) PullStatus(ctx context.Context) (PullStatus, error) {
	var ps PullStatus
	resp, body, err := c.do(ctx, c.control, http.MethodGet, "/v1/admin/models/pull-status", nil)
	if err != nil {
		return ps, err
	}
	if resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusNotFound {
		// No pull in progress.
		return ps, nil
	}
	if resp.StatusCode != http.StatusOK {
		return ps, c.statusToError(resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, &ps); err != nil {
		return ps, fmt.Errorf("decode pull status: %w", err)
	}
	return ps, nil
}

// ListAssets fetches the asset/app/model registry listing.
func (c *Client) ListAssets(ctx context.Context) ([]types.Asset, error) {
	resp, body, err := c.do(ctx, c.control, http.MethodGet, "/v1/assets", nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, c.statusToError(resp.StatusCode, body)
	}
	var out struct {
		Assets []types.Asset `json:"assets"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode assets: %w", err)
	}
	return out.Assets, nil
}

// SystemMetrics fetches CPU/GPU/memory/disk usage from the gateway, or from
// the dedicated metrics base when one was configured.
func (c *Client) SystemMetrics(ctx context.Context) (types.SystemMetrics, error) {
	var m types.SystemMetrics
	base := c.baseURL
	if c.metricsBase != "" {
		base = c.metricsBase
	}
	resp, body, err := c.doURL(ctx, c.control, http.MethodGet, base+"/v1/admin/system/metrics", nil)
	if err != nil {
		return m, err
	}
	if resp.StatusCode != http.StatusOK {
		return m, c.statusToError(resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, &m); err != nil {
		return m, fmt.Errorf("decode system metrics: %w", err)
	}
	return m, nil
}

// do issues a request against the gateway base URL and reads the full body.
// Transport errors map to ErrUnavailable.
func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, body []byte) (*http.Response, []byte, error) {
	return c.doURL(ctx, hc, method, c.baseURL+path, body)
}

func (c *Client) doURL(ctx context.Context, hc *http.Client, method, urlStr string, body []byte) (*http.Response, []byte, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, urlStr, rd)
	if err != nil {
		return nil, nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := hc.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("url", urlStr).Msg("gateway request failed")
		return nil, nil, ErrUnavailable(err.Error())
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, ErrUnavailable("read response: " + err.Error())
	}
	return resp, respBody, nil
}

// statusToError maps a non-2xx gateway status to the error taxonomy.
func (c *Client) statusToError(status int, body []byte) error {
	msg := extractErrorMessage(body)
	if status >= 500 {
		if msg == "" {
			msg = fmt.Sprintf("status %d", status)
		}
		return ErrUnavailable(msg)
	}
	return statusError{status: status, body: msg}
}

// extractErrorMessage pulls a human message out of a JSON error body when
// present; otherwise returns a truncated raw body.
func extractErrorMessage(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		return e.Error
	}
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}

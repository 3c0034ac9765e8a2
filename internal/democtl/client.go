package democtl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"consoled/pkg/types"
)

// Client is a thin JSON client for a running consoled instance.
type Client struct {
	base string
	hc   *http.Client
}

// NewClient targets the given base URL, e.g. http://127.0.0.1:8090.
func NewClient(base string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: timeout},
	}
}

func (c *Client) get(path string, out any) error {
	return c.do(http.MethodGet, path, nil, out)
}

func (c *Client) post(path string, in, out any) error {
	return c.do(http.MethodPost, path, in, out)
}

func (c *Client) do(method, path string, in, out any) error {
	var rd io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.base+path, rd)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("consoled unreachable at %s: %w", c.base, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		var e types.ErrorResponse
		if json.Unmarshal(body, &e) == nil && e.Error != "" {
			return fmt.Errorf("%s (status %d)", e.Error, resp.StatusCode)
		}
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.Unmarshal(body, out)
}

func (c *Client) Session() (types.SessionStatus, error) {
	var s types.SessionStatus
	err := c.get("/v1/session", &s)
	return s, err
}

func (c *Client) Models() ([]types.DemoModel, error) {
	var out struct {
		Models []types.DemoModel `json:"models"`
	}
	err := c.get("/v1/models", &out)
	return out.Models, err
}

func (c *Client) Activate(model string) (types.SessionStatus, error) {
	var s types.SessionStatus
	err := c.post("/v1/session/activate", types.ActivateRequest{Model: model}, &s)
	return s, err
}

func (c *Client) Deactivate() error {
	return c.post("/v1/session/deactivate", struct{}{}, nil)
}

func (c *Client) CancelPending() error {
	return c.post("/v1/session/cancel-pending", struct{}{}, nil)
}

func (c *Client) Clear() error {
	return c.post("/v1/session/clear", struct{}{}, nil)
}

func (c *Client) Touch(kioskOpen *bool) error {
	return c.post("/v1/session/activity", types.ActivityRequest{KioskOpen: kioskOpen}, nil)
}

func (c *Client) Challenges() ([]types.ChallengeInfo, error) {
	var out struct {
		Challenges []types.ChallengeInfo `json:"challenges"`
	}
	err := c.get("/v1/challenges", &out)
	return out.Challenges, err
}

func (c *Client) RunChallenge(id, prompt string, chip *int) (types.ModelOutput, error) {
	var out types.ModelOutput
	err := c.post("/v1/challenges/run", types.ChallengeRequest{
		ChallengeID: id,
		Prompt:      prompt,
		PromptIndex: chip,
	}, &out)
	return out, err
}

func (c *Client) Assets() ([]types.Asset, error) {
	var out struct {
		Assets []types.Asset `json:"assets"`
	}
	err := c.get("/v1/assets", &out)
	return out.Assets, err
}

func (c *Client) Metrics() (types.SystemMetrics, error) {
	var m types.SystemMetrics
	err := c.get("/v1/system/metrics", &m)
	return m, err
}

func (c *Client) PrefGet(key string) (types.Preference, error) {
	var p types.Preference
	err := c.get("/v1/prefs/"+key, &p)
	return p, err
}

func (c *Client) PrefSet(key, value string) error {
	return c.do(http.MethodPut, "/v1/prefs/"+key, struct {
		Value string `json:"value"`
	}{Value: value}, nil)
}

func (c *Client) PrefDelete(key string) error {
	return c.do(http.MethodDelete, "/v1/prefs/"+key, nil, nil)
}

func (c *Client) PrefList() ([]types.Preference, error) {
	var out struct {
		Preferences []types.Preference `json:"preferences"`
	}
	err := c.get("/v1/prefs/", &out)
	return out.Preferences, err
}

package e2e

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"consoled/internal/catalog"
	"consoled/internal/gateway"
	"consoled/internal/httpapi"
	"consoled/internal/kiosk"
	"consoled/internal/prefs"
	"consoled/internal/session"
	"consoled/internal/sysmetrics"
	"consoled/pkg/types"
)

// fakeGatewayServer stands in for the workstation gateway over real HTTP.
type fakeGatewayServer struct {
	mu          sync.Mutex
	loaded      map[string]bool
	chatContent string
	chatFail    bool
	metricsFail bool
	srv         *httptest.Server
}

func newFakeGateway(t *testing.T) *fakeGatewayServer {
	t.Helper()
	f := &fakeGatewayServer{loaded: map[string]bool{}, chatContent: "because physics"}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		fail, content := f.chatFail, f.chatContent
		f.mu.Unlock()
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "inference backend crashed"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"content": content}}},
			"usage":   map[string]int{"total_tokens": 12},
		})
	})
	mux.HandleFunc("/v1/admin/models/", func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/v1/admin/models/")
		switch {
		case rest == "loaded":
			f.mu.Lock()
			var names []string
			for n := range f.loaded {
				names = append(names, n)
			}
			f.mu.Unlock()
			json.NewEncoder(w).Encode(map[string]any{"models": names})
		case rest == "pull-status":
			w.WriteHeader(http.StatusNoContent)
		case strings.HasSuffix(rest, "/load"):
			name := strings.TrimSuffix(rest, "/load")
			f.mu.Lock()
			f.loaded[name] = true
			f.mu.Unlock()
			w.WriteHeader(http.StatusOK)
		case strings.HasSuffix(rest, "/unload"):
			name := strings.TrimSuffix(rest, "/unload")
			f.mu.Lock()
			delete(f.loaded, name)
			f.mu.Unlock()
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	mux.HandleFunc("/v1/admin/system/metrics", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		fail := f.metricsFail
		f.mu.Unlock()
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(types.SystemMetrics{CPUPercent: 21, GPUPercent: 63})
	})
	mux.HandleFunc("/v1/assets", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"assets": []types.Asset{{ID: "wallpaper", Name: "Wallpaper"}}})
	})
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

// stack wires a full consoled instance against the fake gateway.
type stack struct {
	srv  *httptest.Server
	gw   *fakeGatewayServer
	ctrl *session.Controller
}

func newStack(t *testing.T, cfg session.Config) *stack {
	t.Helper()
	fg := newFakeGateway(t)

	log := zerolog.Nop()
	gc := gateway.New(fg.srv.URL, "", log)

	cfg.Catalog = catalog.New(nil)
	cfg.Gateway = gc
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = time.Hour
	}
	if cfg.KioskIdleTimeout == 0 {
		cfg.KioskIdleTimeout = time.Hour
	}
	if cfg.WarmStageTick == 0 {
		cfg.WarmStageTick = 5 * time.Millisecond
	}
	if cfg.TimerTick == 0 {
		cfg.TimerTick = 10 * time.Millisecond
	}
	if cfg.PullPollInterval == 0 {
		cfg.PullPollInterval = time.Hour
	}
	ctrl := session.New(cfg)
	ctrl.Start()
	t.Cleanup(ctrl.Close)

	store, err := prefs.Open(filepath.Join(t.TempDir(), "prefs.db"))
	if err != nil {
		t.Fatalf("open prefs: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	mux := httpapi.NewMux(httpapi.Deps{
		Session:     ctrl,
		Catalog:     catalog.New(nil),
		Assets:      gc,
		Metrics:     sysmetrics.New(gc, log),
		Prefs:       store,
		Validator:   kiosk.NewValidator(time.Hour),
		Unavailable: gateway.IsUnavailable,
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return &stack{srv: srv, gw: fg, ctrl: ctrl}
}

func (s *stack) get(t *testing.T, path string, out any) int {
	t.Helper()
	resp, err := http.Get(s.srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if out != nil && resp.StatusCode < 300 {
		if err := json.Unmarshal(body, out); err != nil {
			t.Fatalf("decode %s: %v (%s)", path, err, body)
		}
	}
	return resp.StatusCode
}

func (s *stack) post(t *testing.T, path, body string, out any) int {
	t.Helper()
	resp, err := http.Post(s.srv.URL+path, "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	if out != nil && resp.StatusCode < 300 {
		if err := json.Unmarshal(b, out); err != nil {
			t.Fatalf("decode %s: %v (%s)", path, err, b)
		}
	}
	return resp.StatusCode
}

// waitForStatus polls GET /v1/session until the lifecycle status matches.
func (s *stack) waitForStatus(t *testing.T, want string) types.SessionStatus {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	var last types.SessionStatus
	for time.Now().Before(deadline) {
		s.get(t, "/v1/session", &last)
		if last.Status == want {
			return last
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for status %q, last: %+v", want, last)
	return last
}

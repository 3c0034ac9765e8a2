package democtl

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"consoled/pkg/types"
)

// fakeConsoled serves just enough of the consoled API for CLI tests.
func fakeConsoled(t *testing.T) (*httptest.Server, *map[string]string) {
	t.Helper()
	calls := map[string]string{}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/session", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(types.SessionStatus{ActiveModel: "llama3-70b", Status: "running"})
	})
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"models": []types.DemoModel{
			{ID: "llama3-70b", Name: "Llama 3 70B", GatewayNames: []string{"llama3:70b"}},
		}})
	})
	mux.HandleFunc("/v1/session/activate", func(w http.ResponseWriter, r *http.Request) {
		var req types.ActivateRequest
		json.NewDecoder(r.Body).Decode(&req)
		calls["activate"] = req.Model
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(types.SessionStatus{ActiveModel: req.Model, Status: "warming"})
	})
	mux.HandleFunc("/v1/session/deactivate", func(w http.ResponseWriter, r *http.Request) {
		calls["deactivate"] = "1"
		json.NewEncoder(w).Encode(types.SessionStatus{})
	})
	mux.HandleFunc("/v1/challenges/run", func(w http.ResponseWriter, r *http.Request) {
		var req types.ChallengeRequest
		json.NewDecoder(r.Body).Decode(&req)
		calls["run"] = req.ChallengeID + "/" + req.Prompt
		json.NewEncoder(w).Encode(types.ModelOutput{Reasoned: "because physics"})
	})
	mux.HandleFunc("/v1/prefs/theme", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			calls["pref_put"] = "theme"
			json.NewEncoder(w).Encode(types.Preference{Key: "theme", Value: "dark"})
		case http.MethodGet:
			json.NewEncoder(w).Encode(types.Preference{Key: "theme", Value: "dark"})
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &calls
}

func runCLI(t *testing.T, srv *httptest.Server, args ...string) (string, error) {
	t.Helper()
	root := BuildRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--addr", srv.URL}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestStatusCommand(t *testing.T) {
	srv, _ := fakeConsoled(t)
	out, err := runCLI(t, srv, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "llama3-70b") || !strings.Contains(out, "running") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestActivateCommand(t *testing.T) {
	srv, calls := fakeConsoled(t)
	out, err := runCLI(t, srv, "activate", "dual")
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if (*calls)["activate"] != "dual" {
		t.Fatalf("activate call=%q", (*calls)["activate"])
	}
	if !strings.Contains(out, "warming") {
		t.Fatalf("output: %q", out)
	}
}

func TestRunCommand(t *testing.T) {
	srv, calls := fakeConsoled(t)
	out, err := runCLI(t, srv, "run", "reasoning", "--prompt", "Why is the sky blue?")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if (*calls)["run"] != "reasoning/Why is the sky blue?" {
		t.Fatalf("run call=%q", (*calls)["run"])
	}
	if !strings.Contains(out, "because physics") {
		t.Fatalf("output: %q", out)
	}
}

func TestRunCommand_RequiresPromptOrChip(t *testing.T) {
	srv, _ := fakeConsoled(t)
	if _, err := runCLI(t, srv, "run", "reasoning"); err == nil {
		t.Fatalf("expected error without --prompt or --chip")
	}
}

func TestPrefsSetGet(t *testing.T) {
	srv, calls := fakeConsoled(t)
	if _, err := runCLI(t, srv, "prefs", "set", "theme", "dark"); err != nil {
		t.Fatalf("prefs set: %v", err)
	}
	if (*calls)["pref_put"] != "theme" {
		t.Fatalf("put not recorded: %+v", *calls)
	}
	out, err := runCLI(t, srv, "prefs", "get", "theme")
	if err != nil {
		t.Fatalf("prefs get: %v", err)
	}
	if !strings.Contains(out, "dark") {
		t.Fatalf("output: %q", out)
	}
}

func TestServerDownIsError(t *testing.T) {
	srv, _ := fakeConsoled(t)
	srv.Close()
	if _, err := runCLI(t, srv, "status"); err == nil {
		t.Fatalf("expected error when consoled is down")
	}
}

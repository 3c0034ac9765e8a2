package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"consoled/internal/catalog"
	"consoled/internal/kiosk"
	"consoled/internal/prefs"
	"consoled/internal/session"
	"consoled/pkg/types"
)

// Service defines the session-controller methods required by the HTTP API layer.
type Service interface {
	Snapshot() types.SessionStatus
	ActivateModel(modelID string) error
	DeactivateModelManually()
	CancelPendingRequest()
	ClearSession()
	RecordActivity()
	SetKioskOpen(open bool)
	SetChallenge(ctx context.Context, challengeID, prompt string) (types.ModelOutput, error)
}

// AssetSource lists the gateway's asset registry.
type AssetSource interface {
	ListAssets(ctx context.Context) ([]types.Asset, error)
}

// MetricsSource provides dashboard metrics (with local fallback).
type MetricsSource interface {
	Collect(ctx context.Context) types.SystemMetrics
}

// PrefStore persists UI preferences.
type PrefStore interface {
	Get(key string) (types.Preference, error)
	Put(key, value string) error
	Delete(key string) error
	List() ([]types.Preference, error)
}

// Deps bundles everything the mux serves.
type Deps struct {
	Session   Service
	Catalog   *catalog.Catalog
	Assets    AssetSource
	Metrics   MetricsSource
	Prefs     PrefStore
	Validator *kiosk.Validator
	// Unavailable reports whether err means the gateway is unreachable.
	Unavailable func(error) bool
	// Ready gates /readyz; nil means always ready.
	Ready func() bool
}

func NewMux(d Deps) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(MetricsMiddleware)
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/session", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, d.Session.Snapshot())
		})

		r.Get("/models", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"models": d.Catalog.List()})
		})

		r.Post("/session/activate", func(w http.ResponseWriter, r *http.Request) {
			var req types.ActivateRequest
			if !decodeJSON(w, r, &req) {
				return
			}
			if strings.TrimSpace(req.Model) == "" {
				writeJSONError(w, http.StatusBadRequest, "model is required")
				return
			}
			if err := d.Session.ActivateModel(req.Model); err != nil {
				if catalog.IsModelNotFound(err) {
					writeJSONError(w, http.StatusNotFound, err.Error())
					return
				}
				writeError(w, err)
				return
			}
			// Activation is asynchronous; the snapshot shows warming/pending.
			writeJSON(w, http.StatusAccepted, d.Session.Snapshot())
		})

		r.Post("/session/deactivate", func(w http.ResponseWriter, r *http.Request) {
			d.Session.DeactivateModelManually()
			writeJSON(w, http.StatusAccepted, d.Session.Snapshot())
		})

		r.Post("/session/cancel-pending", func(w http.ResponseWriter, r *http.Request) {
			d.Session.CancelPendingRequest()
			writeJSON(w, http.StatusOK, d.Session.Snapshot())
		})

		r.Post("/session/clear", func(w http.ResponseWriter, r *http.Request) {
			d.Session.ClearSession()
			writeJSON(w, http.StatusOK, d.Session.Snapshot())
		})

		r.Post("/session/activity", func(w http.ResponseWriter, r *http.Request) {
			var req types.ActivityRequest
			if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
				return
			}
			if req.KioskOpen != nil {
				d.Session.SetKioskOpen(*req.KioskOpen)
			} else {
				d.Session.RecordActivity()
			}
			writeJSON(w, http.StatusOK, d.Session.Snapshot())
		})

		r.Get("/challenges", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"challenges": kiosk.Challenges()})
		})

		r.Post("/challenges/run", func(w http.ResponseWriter, r *http.Request) {
			var req types.ChallengeRequest
			if !decodeJSON(w, r, &req) {
				return
			}
			// Custom prompts (no chip index) pass the kiosk guardrails first;
			// canned chips are trusted as-is.
			if req.PromptIndex == nil && d.Validator != nil {
				if err := d.Validator.Validate(req.Prompt); err != nil {
					writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
					return
				}
			}
			start := time.Now()
			joined, cancel := joinContexts(serverBaseCtx, r.Context())
			defer cancel()
			out, err := d.Session.SetChallenge(joined, req.ChallengeID, req.Prompt)
			if err != nil {
				switch {
				case session.IsNoActiveModel(err):
					writeJSONError(w, http.StatusConflict, err.Error())
				case session.IsUnknownChallenge(err):
					writeJSONError(w, http.StatusBadRequest, err.Error())
				default:
					writeError(w, err)
				}
				return
			}
			if zlog != nil {
				z := zlog.Info().Str("challenge", req.ChallengeID).Dur("dur", time.Since(start))
				if rid := middleware.GetReqID(r.Context()); rid != "" {
					z = z.Str("request_id", rid)
				}
				z.Msg("challenge dispatched")
			}
			writeJSON(w, http.StatusOK, out)
		})

		r.Get("/assets", func(w http.ResponseWriter, r *http.Request) {
			assets, err := d.Assets.ListAssets(r.Context())
			if err != nil {
				if d.Unavailable != nil && d.Unavailable(err) {
					writeJSONError(w, http.StatusBadGateway, "gateway unavailable")
					return
				}
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"assets": assets})
		})

		r.Get("/system/metrics", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, d.Metrics.Collect(r.Context()))
		})

		r.Route("/prefs", func(r chi.Router) {
			r.Get("/", func(w http.ResponseWriter, r *http.Request) {
				out, err := d.Prefs.List()
				if err != nil {
					writeError(w, err)
					return
				}
				if out == nil {
					out = []types.Preference{}
				}
				writeJSON(w, http.StatusOK, map[string]any{"preferences": out})
			})
			r.Get("/{key}", func(w http.ResponseWriter, r *http.Request) {
				p, err := d.Prefs.Get(chi.URLParam(r, "key"))
				if err != nil {
					if errors.Is(err, prefs.ErrNotFound) {
						writeJSONError(w, http.StatusNotFound, "preference not found")
						return
					}
					writeError(w, err)
					return
				}
				writeJSON(w, http.StatusOK, p)
			})
			r.Put("/{key}", func(w http.ResponseWriter, r *http.Request) {
				var req struct {
					Value string `json:"value"`
				}
				if !decodeJSON(w, r, &req) {
					return
				}
				key := chi.URLParam(r, "key")
				if err := d.Prefs.Put(key, req.Value); err != nil {
					writeError(w, err)
					return
				}
				writeJSON(w, http.StatusOK, types.Preference{Key: key, Value: req.Value})
			})
			r.Delete("/{key}", func(w http.ResponseWriter, r *http.Request) {
				if err := d.Prefs.Delete(chi.URLParam(r, "key")); err != nil {
					writeError(w, err)
					return
				}
				w.WriteHeader(http.StatusNoContent)
			})
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if d.Ready == nil || d.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("starting"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}

// decodeJSON enforces content type and body size, decoding into dst.
// On failure it writes the error response and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

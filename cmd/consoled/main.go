package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"consoled/internal/catalog"
	"consoled/internal/config"
	"consoled/internal/gateway"
	"consoled/internal/httpapi"
	"consoled/internal/kiosk"
	"consoled/internal/prefs"
	"consoled/internal/session"
	"consoled/internal/sysmetrics"
)

func main() {
	// Flags with environment variable defaults
	defaultAddr := config.DefaultAddr
	if v := os.Getenv("CONSOLED_ADDR"); v != "" {
		defaultAddr = v
	}
	addr := flag.String("addr", defaultAddr, "HTTP listen address, e.g. :8090")
	configPath := flag.String("config", "", "Optional config file (yaml, json or toml)")
	gatewayURL := flag.String("gateway-url", "", "Gateway base URL (overrides config)")
	prefsDB := flag.String("prefs-db", "", "Path to the preferences database (overrides config)")
	logLevel := flag.String("log-level", "info", "Log level: trace, debug, info, warn, error")
	logJSON := flag.Bool("log-json", false, "Emit JSON logs instead of console output")
	flag.Parse()

	log := newLogger(*logLevel, *logJSON)

	var cfg config.Config
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", *configPath).Msg("load config")
		}
	}
	cfg.FromEnv()
	if *gatewayURL != "" {
		cfg.GatewayURL = *gatewayURL
	}
	if *prefsDB != "" {
		cfg.PrefsDBPath = *prefsDB
	}
	if cfg.PrefsDBPath == "" {
		cfg.PrefsDBPath = "~/.consoled/prefs.db"
	}
	if *addr != defaultAddr || cfg.Addr == "" {
		cfg.Addr = *addr
	}
	cfg.Normalize()

	gw := gateway.New(cfg.GatewayURL, cfg.GatewayAPIKey, log.With().Str("component", "gateway").Logger())
	if cfg.GPUMetricsURL != "" {
		gw.SetMetricsBase(cfg.GPUMetricsURL)
	}

	store, err := prefs.Open(cfg.PrefsDBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.PrefsDBPath).Msg("open preferences store")
	}
	defer store.Close()

	ctrl := session.New(session.Config{
		Catalog:          catalog.New(nil),
		Gateway:          gw,
		Logger:           log.With().Str("component", "session").Logger(),
		IdleTimeout:      time.Duration(cfg.IdleTimeoutSec) * time.Second,
		KioskIdleTimeout: time.Duration(cfg.KioskIdleTimeoutSec) * time.Second,
		SessionLimit:     time.Duration(cfg.SessionLimitSec) * time.Second,
		PullPollInterval: time.Duration(cfg.PullPollSec) * time.Second,
	})
	ctrl.Start()
	defer ctrl.Close()

	baseCtx, stopBase := context.WithCancel(context.Background())
	defer stopBase()
	httpapi.SetBaseContext(baseCtx)
	httpapi.SetLogger(log.With().Str("component", "http").Logger())
	if len(cfg.CORSOrigins) > 0 {
		httpapi.SetCORSOptions(true, cfg.CORSOrigins)
	}

	mux := httpapi.NewMux(httpapi.Deps{
		Session:     ctrl,
		Catalog:     catalog.New(nil),
		Assets:      gw,
		Metrics:     sysmetrics.New(gw, log.With().Str("component", "sysmetrics").Logger()),
		Prefs:       store,
		Validator:   kiosk.NewValidator(kiosk.DefaultCooldown),
		Unavailable: gateway.IsUnavailable,
		Ready: func() bool {
			ctx, cancel := context.WithTimeout(baseCtx, 2*time.Second)
			defer cancel()
			_, err := gw.LoadedModels(ctx)
			return err == nil
		},
	})
	srv := &http.Server{Addr: cfg.Addr, Handler: mux}

	go func() {
		log.Info().Str("addr", cfg.Addr).Str("gateway", cfg.GatewayURL).Msg("consoled listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	stopBase()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown error")
	}
}

func newLogger(level string, jsonOut bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	if jsonOut {
		return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
	}
	w := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

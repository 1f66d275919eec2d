package app

import (
	"context"
	"errors"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-relay/internal/config"
	"github.com/vovakirdan/wirechat-relay/internal/core"
	"github.com/vovakirdan/wirechat-relay/internal/metrics"
	transporthttp "github.com/vovakirdan/wirechat-relay/internal/transport/http"
)

// App wires together core and transport layers.
type App struct {
	server          *stdhttp.Server
	admin           *stdhttp.Server
	shutdownTimeout time.Duration
	hub             *core.Hub
	metrics         *metrics.Recorder
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: nil config")
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	rec := metrics.New()
	hub := core.NewHub(cfg.MaxHistory, logger, rec)

	a := &App{
		server:          transporthttp.NewServer(hub, cfg, logger),
		shutdownTimeout: cfg.ShutdownTimeout,
		hub:             hub,
		metrics:         rec,
		log:             logger,
	}
	if cfg.MetricsAddr != "" {
		a.admin = transporthttp.NewAdminServer(hub, cfg, rec, logger)
	}
	return a, nil
}

// Hub exposes the chat hub backing the application.
func (a *App) Hub() *core.Hub {
	return a.hub
}

// Run starts the HTTP servers and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 2)
	servers := []*stdhttp.Server{a.server}
	if a.admin != nil {
		servers = append(servers, a.admin)
	}

	for _, srv := range servers {
		a.log.Info().Str("addr", srv.Addr).Msg("listening")
		go func(srv *stdhttp.Server) {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
				serverErr <- err
				return
			}
			serverErr <- nil
		}(srv)
	}

	var runErr error
	select {
	case runErr = <-serverErr:
		if runErr == nil {
			runErr = errors.New("http server stopped unexpectedly")
		}
	case <-ctx.Done():
	}

	a.log.Info().Msg("shutting down")
	// Sessions get a going-away close before the listeners stop.
	a.hub.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.log.Warn().Err(err).Str("addr", srv.Addr).Msg("http shutdown")
			if runErr == nil {
				runErr = err
			}
		}
	}
	return runErr
}

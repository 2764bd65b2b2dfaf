package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"travel-panel/internal/adapters/panelhttp"
	"travel-panel/internal/adapters/team5api"
	"travel-panel/internal/infra/config"
	httpinfra "travel-panel/internal/infra/http"
	loginfra "travel-panel/internal/infra/log"
	"travel-panel/internal/infra/metrics"
	"travel-panel/internal/usecase/session"
)

func main() {
	cfg := config.Load()
	logger := loginfra.NewLogger(cfg.AppEnv)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := team5api.New(cfg.Backend.BaseURL,
		team5api.WithTimeout(cfg.Backend.Timeout),
		team5api.WithSessionCookie(cfg.Backend.SessionCookie),
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("panel: invalid backend config")
	}

	sess := session.New(backend, logger.With().Str("component", "session").Logger(), session.Config{
		CityID:     cfg.Defaults.CityID,
		Limit:      cfg.Defaults.Limit,
		ABVersion:  cfg.Defaults.ABVersion,
		ABStrategy: cfg.Defaults.ABStrategy,
		Timings: session.Timings{
			ShowDelay:  cfg.Feedback.ShowDelay,
			ExitDelay:  cfg.Feedback.ExitDelay,
			SubmitHold: cfg.Feedback.SubmitHold,
			ShinePulse: cfg.Feedback.ShinePulse,
			FlashPulse: cfg.Feedback.FlashPulse,
		},
	})
	defer sess.Close()

	go func() {
		if err := sess.Bootstrap(ctx); err != nil {
			logger.Warn().Err(err).Msg("panel: bootstrap finished with error")
		}
	}()

	srv := httpinfra.NewServer(logger.With().Str("component", "http").Logger())
	panelhttp.NewServer(sess, panelhttp.WithLogger(logger.With().Str("component", "panel").Logger())).Mount(srv.Router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(fmt.Sprintf(":%d", cfg.Port))
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("panel: graceful shutdown failed")
		}
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("panel: http server stopped")
		}
	}
}

package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/heartmarshall/taboo-core/internal/config"
	"github.com/heartmarshall/taboo-core/internal/transport/middleware"
	"github.com/heartmarshall/taboo-core/internal/transport/rest"
)

// Run is the application entry point. It loads configuration, wires the
// engine, starts the HTTP server and indexes the vocabulary in the
// background. It returns when ctx is cancelled and the server has drained.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	engine, err := NewEngine(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("wire engine: %w", err)
	}
	defer engine.Close()

	limiter := middleware.NewRateLimiter(time.Minute)
	defer limiter.Stop()

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      NewRouter(cfg, engine, limiter, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	buildCtx, stopBuild := context.WithCancel(ctx)
	defer stopBuild()
	buildDone := make(chan struct{})
	go func() {
		defer close(buildDone)
		if err := engine.Build(buildCtx); err != nil {
			if buildCtx.Err() == nil {
				logger.Error("semantic index build failed", slog.String("error", err.Error()))
			}
			return
		}
		if cfg.Server.WarmUp {
			engine.Game.WarmUp(buildCtx)
		}
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down", slog.Duration("timeout", cfg.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	stopBuild()
	<-buildDone

	logger.Info("stopped")
	return nil
}

// NewRouter mounts the game API and health probes behind the middleware chain.
func NewRouter(cfg *config.Config, engine *Engine, limiter *middleware.RateLimiter, logger *slog.Logger) http.Handler {
	checks := map[string]rest.Pinger{}
	if engine.LLM != nil {
		checks["llm"] = engine.LLM
	}
	if engine.Store != nil {
		checks["embedding_cache"] = engine.Store
	}

	mux := http.NewServeMux()
	rest.NewHealthHandler(engine.Index, checks, Version).Register(mux)

	api := http.NewServeMux()
	rest.NewGameHandler(engine.Game, logger).Register(api)
	mux.Handle("/api/", limiter.Limit(cfg.RateLimit.PerMinute)(api))

	return middleware.Chain(
		middleware.RequestID(),
		middleware.Recovery(logger),
		middleware.Logger(logger),
		middleware.CORS(cfg.CORS),
	)(mux)
}

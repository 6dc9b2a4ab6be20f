package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/mindduel/backend/internal/chain"
	"github.com/mindduel/backend/internal/config"
	"github.com/mindduel/backend/internal/hub"
	"github.com/mindduel/backend/internal/httpapi"
	"github.com/mindduel/backend/internal/questions"
	"github.com/mindduel/backend/pkg/metrics"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := buildLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	met := metrics.New(reg)

	provider := questions.NewRetrying(buildProvider(cfg, logger), cfg.ProviderAttempts, logger)
	staker := chain.NewMockStaker(logger)

	h := hub.New(ctx, cfg.Tiers, provider, staker, logger, met)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: httpapi.SetupRoutes(h, logger, met, reg),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		h.Shutdown()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func buildProvider(cfg *config.Config, logger *zap.Logger) questions.Provider {
	if cfg.ProviderURL == "" || cfg.ProviderKey == "" {
		logger.Warn("no question provider configured, using the static bank")
		return questions.NewStatic()
	}
	return questions.NewLLM(cfg.ProviderURL, cfg.ProviderModel, cfg.ProviderKey,
		time.Duration(cfg.ProviderTimeoutSec)*time.Second)
}

func buildLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"NotifyReader/internal/adapter/chat/twitch"
	"NotifyReader/internal/adapter/relay"
	"NotifyReader/internal/app/orchestrator"
	"NotifyReader/internal/config"
	"NotifyReader/internal/metrics"
	"NotifyReader/internal/service/events/webhook"

	"go.uber.org/zap"
)

func main() {
	cfg := config.NewConfig()

	// создаём регистратор zap: в режиме дебага — человекочитаемый
	newLogger := zap.NewProduction
	if cfg.DebugMode {
		newLogger = zap.NewDevelopment
	}
	logger, err := newLogger()
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	//сброс буфера логгера
	defer func() {
		if err := logger.Sync(); err != nil && !errors.Is(err, syscall.EINVAL) {
			sugar.Errorw("Failed to sync logger", "error", err)
		}
	}()

	sugar.Infow(
		"Starting app",
		"DebugMode", cfg.DebugMode,
		"TTSService", cfg.TTSService,
		"QueueLimit", cfg.QueueLimit,
	)

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	orch := orchestrator.New(
		orchestrator.NewSynthesizer(cfg, sugar),
		sugar,
		orchestrator.WithQueueLimit(cfg.QueueLimit),
		orchestrator.WithMetrics(m),
		orchestrator.WithShutdownTimeout(cfg.ShutdownTimeout),
		orchestrator.WithEngineOptions(orchestrator.EngineOptions(cfg, sugar)...),
	)

	if cfg.Webhook.Enabled {
		orch.AddSource(webhook.New(cfg.Webhook, orch, sugar, webhook.WithMetrics(m), webhook.WithSilencer(orch.Engine())))
	}
	if cfg.Relay.URL != "" {
		orch.AddSource(relay.New(cfg.Relay, orch, sugar))
	}
	if cfg.Twitch.Enabled() {
		orch.AddSource(twitch.New(cfg.Twitch, orch, sugar))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := orch.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		sugar.Errorw("Reader stopped with error", "error", err)
		return
	}
	sugar.Infow("Reader stopped")
}

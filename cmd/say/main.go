package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"NotifyReader/internal/app/orchestrator"
	"NotifyReader/internal/config"
	"NotifyReader/internal/service/speech"
	"NotifyReader/internal/service/tts"

	"go.uber.org/zap"
)

// Тестовый скрипт для проверки выбранного бэкенда синтеза речи без источников уведомлений.
// Пример запуска:
//
//	go run ./cmd/say -text "New notification from Mail: hello"
func main() {
	var text string
	fs := flag.NewFlagSet("say", flag.ExitOnError)
	fs.StringVar(&text, "text", "New notification from Test: this is a speech check", "Тестовый текст для синтеза речи")
	_ = fs.Parse(os.Args[1:])

	// Базовая конфигурация приложения (подтягивает .env и ENV)
	cfg, err := config.Load(nil)
	if err != nil {
		fmt.Println("ошибка конфигурации:", err)
		os.Exit(1)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	sugar := logger.Sugar()
	defer func() { _ = logger.Sync() }()

	synth := orchestrator.NewSynthesizer(cfg, sugar)
	locale := orchestrator.Locale(cfg)

	ctx, cancel := context.WithTimeoutCause(context.Background(), 60*time.Second, errors.New("say timeout"))
	defer cancel()

	if err := synth.Open(ctx); err != nil {
		sugar.Errorw("Failed to open synthesizer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = synth.Close() }()

	status, err := synth.CheckLanguage(ctx, locale)
	if err != nil || status != tts.LanguageAvailable {
		sugar.Errorw("Locale is not available", "locale", locale.String(), "status", status.String(), "error", err)
		os.Exit(1)
	}

	started := time.Now()
	if err := synth.Synthesize(ctx, tts.Request{ID: speech.RequestID(text), Text: text}); err != nil {
		sugar.Errorw("Synthesis failed", "error", err)
		os.Exit(1)
	}
	sugar.Infow("Synthesis completed", "service", cfg.TTSService, "locale", locale.String(), "took", time.Since(started).String())
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"NotifyReader/internal/app/orchestrator"
	"NotifyReader/internal/config"
	"NotifyReader/internal/service/tts/google"

	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// Печатает голоса Google Cloud TTS для локали синтеза (или -locale) через тот же клиент, что и движок.
// Имя из вывода подходит для GOOGLE_TTS_VOICE.
//
//	go run ./cmd/voices -locale ru-RU
func main() {
	var locale string
	fs := flag.NewFlagSet("voices", flag.ExitOnError)
	fs.StringVar(&locale, "locale", "", "локаль (BCP-47), пусто — из конфигурации")
	_ = fs.Parse(os.Args[1:])

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

	tag := orchestrator.Locale(cfg)
	if l := strings.TrimSpace(locale); l != "" {
		if tag, err = language.Parse(l); err != nil {
			fmt.Println("неверная локаль:", err)
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithTimeoutCause(context.Background(), 15*time.Second, errors.New("google tts voices request timeout"))
	defer cancel()

	client := google.New(cfg.GoogleTTS, nil, sugar)
	if err := client.Open(ctx); err != nil {
		sugar.Errorw("Failed to open Google TTS client", "error", err)
		os.Exit(1)
	}
	defer func() { _ = client.Close() }()

	voices, err := client.Voices(ctx, tag)
	if err != nil {
		sugar.Errorw("Failed to list voices", "locale", tag.String(), "error", err)
		os.Exit(1)
	}

	fmt.Printf("Голоса для %s: %d\n", tag, len(voices))
	for _, v := range voices {
		fmt.Printf("%-32s %-8s %6d Hz %v\n", v.GetName(), v.GetSsmlGender(), v.GetNaturalSampleRateHertz(), v.GetLanguageCodes())
	}
}

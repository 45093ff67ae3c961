package orchestrator

import (
	"strings"

	"NotifyReader/internal/config"
	"NotifyReader/internal/service/notify"
	"NotifyReader/internal/service/speech"
	"NotifyReader/internal/service/tts"
	"NotifyReader/internal/service/tts/console"
	"NotifyReader/internal/service/tts/gemini"
	"NotifyReader/internal/service/tts/google"
	"NotifyReader/internal/service/tts/openai"
	"NotifyReader/internal/service/tts/player"
	"NotifyReader/internal/service/tts/yandex"

	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// NewSynthesizer выбирает бэкенд синтеза по cfg.TTSService.
func NewSynthesizer(cfg *config.Config, logger *zap.SugaredLogger) tts.Synthesizer {
	// Для Yandex учитываем внешнюю громкость; для Google/Gemini/OpenAI громкость регулируется на стороне провайдера.
	var synth tts.Synthesizer
	switch cfg.TTSService {
	case config.ServiceYandex:
		synth = yandex.New(cfg.YandexTTS, player.NewWithVolume(YandexVolumeDB(cfg.YandexTTS.Volume)), logger)
	case config.ServiceGemini:
		synth = gemini.New(cfg.GeminiTTS, player.New(), logger)
	case config.ServiceOpenAI:
		synth = openai.New(cfg.OpenAITTS, player.New(), logger)
	case config.ServiceLog:
		synth = console.New(logger)
	default:
		synth = google.New(cfg.GoogleTTS, player.New(), logger)
	}
	logger.Infow("TTS selected", "service", cfg.TTSService)
	return synth
}

// YandexVolumeDB переводит громкость 0-100 в усиление плеера: 100 — 0 дБ, каждые 5 пунктов — минус 1 дБ.
func YandexVolumeDB(volume int) float64 {
	v := max(0, min(100, volume))
	return float64(v-100) / 5.0
}

// EngineOptions собирает опции движка речи из конфигурации: локаль и звук перед озвучиванием.
func EngineOptions(cfg *config.Config, logger *zap.SugaredLogger) []speech.Option {
	opts := []speech.Option{speech.WithLocale(Locale(cfg))}
	if n := notify.NewSoundNotifier(logger, cfg.NotificationSoundPath, nil); n != nil {
		logger.Infow("Notification sound enabled", "path", n.Path())
		opts = append(opts, speech.WithChime(n))
	}
	return opts
}

// Locale возвращает локаль из конфигурации, а если она не задана — локаль системы.
func Locale(cfg *config.Config) language.Tag {
	if l := strings.TrimSpace(cfg.Locale); l != "" {
		if tag, err := language.Parse(l); err == nil {
			return tag
		}
	}
	return speech.DefaultLocale()
}

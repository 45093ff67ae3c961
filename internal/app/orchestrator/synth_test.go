package orchestrator

import (
	"testing"

	"NotifyReader/internal/config"
	"NotifyReader/internal/service/tts/console"
	"NotifyReader/internal/service/tts/gemini"
	"NotifyReader/internal/service/tts/google"
	"NotifyReader/internal/service/tts/openai"
	"NotifyReader/internal/service/tts/yandex"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

func TestNewSynthesizer_SelectsBackend(t *testing.T) {
	logger := zap.NewNop().Sugar()
	cases := map[string]any{
		config.ServiceGoogle: &google.Client{},
		config.ServiceYandex: &yandex.Client{},
		config.ServiceGemini: &gemini.Client{},
		config.ServiceOpenAI: &openai.Client{},
		config.ServiceLog:    &console.Synthesizer{},
	}
	for service, want := range cases {
		cfg := config.Defaults()
		cfg.TTSService = service
		assert.IsType(t, want, NewSynthesizer(cfg, logger), service)
	}
}

func TestYandexVolumeDB(t *testing.T) {
	assert.Equal(t, 0.0, YandexVolumeDB(100))
	assert.Equal(t, -10.0, YandexVolumeDB(50))
	assert.Equal(t, -20.0, YandexVolumeDB(0))
	assert.Equal(t, 0.0, YandexVolumeDB(150))
	assert.Equal(t, -20.0, YandexVolumeDB(-5))
}

func TestLocale(t *testing.T) {
	cfg := config.Defaults()
	cfg.Locale = "ru-RU"
	assert.Equal(t, language.MustParse("ru-RU"), Locale(cfg))

	cfg.Locale = ""
	t.Setenv("LC_ALL", "de_DE.UTF-8")
	assert.Equal(t, language.MustParse("de-DE"), Locale(cfg))
}

func TestEngineOptions_NoSound(t *testing.T) {
	cfg := config.Defaults()
	cfg.Locale = "en-US"
	opts := EngineOptions(cfg, zap.NewNop().Sugar())
	assert.Len(t, opts, 1)
}

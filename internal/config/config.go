package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"golang.org/x/text/language"
)

// Поддерживаемые значения TTS_SERVICE.
const (
	ServiceGoogle = "google"
	ServiceYandex = "yandex"
	ServiceGemini = "gemini"
	ServiceOpenAI = "openai"
	ServiceLog    = "log"
)

type Config struct {
	DebugMode             bool          `env:"DEBUG_MODE"`              // Режим дебага
	TTSService            string        `env:"TTS_SERVICE"`             // google|yandex|gemini|openai|log
	Locale                string        `env:"TTS_LOCALE"`              // BCP-47, пусто — локаль системы (LC_ALL/LC_MESSAGES/LANG)
	QueueLimit            int           `env:"QUEUE_LIMIT"`             // Максимум сообщений в очереди, 0 — без ограничения
	NotificationSoundPath string        `env:"NOTIFICATION_SOUND_PATH"` // Звук перед каждым озвучиванием (mp3|wav), пусто — без звука
	MetricsEnabled        bool          `env:"METRICS_ENABLED"`         // Отдавать /metrics на webhook-сервере
	ShutdownTimeout       time.Duration `env:"SHUTDOWN_TIMEOUT"`        // Сколько ждать остановки источников

	Webhook WebhookConfig
	Relay   RelayConfig
	Twitch  TwitchConfig

	YandexTTS YandexTTSConfig
	GoogleTTS GoogleTTSConfig
	GeminiTTS GeminiTTSConfig
	OpenAITTS OpenAITTSConfig
}

// WebhookConfig — HTTP-приёмник уведомлений (например, от пересылающего приложения на телефоне).
type WebhookConfig struct {
	Enabled   bool   `env:"WEBHOOK_ENABLED"`
	BindAddr  string `env:"WEBHOOK_BIND_ADDR"`  // Адрес слушателя, напр. 127.0.0.1:3000
	AuthToken string `env:"WEBHOOK_AUTH_TOKEN"` // Bearer-токен (опционально)
}

// RelayConfig — WebSocket-ретранслятор уведомлений.
type RelayConfig struct {
	URL               string        `env:"RELAY_URL"`                // ws(s)://..., пусто — выключен
	AuthToken         string        `env:"RELAY_AUTH_TOKEN"`         // Bearer-токен (опционально)
	ReconnectInterval time.Duration `env:"RELAY_RECONNECT_INTERVAL"` // Минимальный интервал между подключениями
}

// TwitchConfig — сообщения чата Twitch как источник уведомлений.
type TwitchConfig struct {
	Username   string `env:"TWITCH_USERNAME"`    // Имя пользователя Twitch (логин)
	OAuthToken string `env:"TWITCH_OAUTH_TOKEN"` // OAuth токен Twitch (может быть без префикса oauth:)
	Channel    string `env:"TWITCH_CHANNEL"`     // Канал Twitch (один), без #
}

// Enabled сообщает, заданы ли все параметры подключения.
func (t TwitchConfig) Enabled() bool {
	return strings.TrimSpace(t.Username) != "" && strings.TrimSpace(t.OAuthToken) != "" && strings.TrimSpace(t.Channel) != ""
}

// YandexTTSConfig конфигурация для синтеза речи через Yandex SpeechKit.
type YandexTTSConfig struct {
	APIKey  string `env:"YC_TTS_API_KEY"` // Ключ берём из .env/ENV. Если пуст — инициализация движка завершится ошибкой
	Voice   string `env:"YC_TTS_VOICE"`
	Format  string `env:"YC_TTS_FORMAT"`  // mp3|wav
	Speed   string `env:"YC_TTS_SPEED"`   // Скорость синтеза (1.0 по умолчанию в API)
	Emotion string `env:"YC_TTS_EMOTION"` // neutral|good|evil
	Volume  int    `env:"YC_TTS_VOLUME"`  // Громкость 0-100; 100 — не изменять громкость
}

// GoogleTTSConfig конфигурация для синтеза речи через Google Cloud Text-to-Speech.
type GoogleTTSConfig struct {
	// Путь к файлу ключа сервисного аккаунта. Фактически читается из ENV GOOGLE_APPLICATION_CREDENTIALS.
	CredentialsPath string `env:"GOOGLE_APPLICATION_CREDENTIALS"`
	// Имя голоса; используется, только если подходит к выбранной локали.
	Voice            string  `env:"GOOGLE_TTS_VOICE"`
	SpeakingRate     float64 `env:"GOOGLE_TTS_SPEAKING_RATE"`
	Pitch            float64 `env:"GOOGLE_TTS_PITCH"`
	VolumeGainDb     float64 `env:"GOOGLE_TTS_VOLUME_DB"`
	EffectsProfileID string  `env:"GOOGLE_TTS_EFFECTS_PROFILE_ID"`
}

// GeminiTTSConfig конфигурация для Gemini-TTS через Cloud TTS v1beta1.
type GeminiTTSConfig struct {
	Endpoint         string  `env:"GEMINI_TTS_ENDPOINT"`
	ModelName        string  `env:"GEMINI_TTS_MODEL"`
	VoiceName        string  `env:"GEMINI_TTS_VOICE"`
	Prompt           string  `env:"GEMINI_TTS_PROMPT"` // Стилевой промпт, пусто — не отправляется
	SpeakingRate     float64 `env:"GEMINI_TTS_SPEAKING_RATE"`
	Pitch            float64 `env:"GEMINI_TTS_PITCH"`
	VolumeGainDb     float64 `env:"GEMINI_TTS_VOLUME_DB"`
	EffectsProfileID string  `env:"GEMINI_TTS_EFFECTS_PROFILE_ID"`
}

// OpenAITTSConfig конфигурация для синтеза речи через OpenAI Audio API.
type OpenAITTSConfig struct {
	APIKey       string  `env:"OPENAI_API_KEY"`
	BaseURL      string  `env:"OPENAI_BASE_URL"` // Пусто — api.openai.com
	Model        string  `env:"OPENAI_TTS_MODEL"`
	Voice        string  `env:"OPENAI_TTS_VOICE"`
	Instructions string  `env:"OPENAI_TTS_INSTRUCTIONS"` // Указания по манере речи, только для gpt-4o-mini-tts
	Speed        float64 `env:"OPENAI_TTS_SPEED"`        // 0.25-4.0, 0 — по умолчанию сервиса
}

// Defaults возвращает конфигурацию с предустановленными значениями по умолчанию.
// Эти значения перекрываются .env, переменными окружения и флагами CLI.
func Defaults() *Config {
	return &Config{
		DebugMode:       false,
		TTSService:      ServiceGoogle,
		QueueLimit:      0,
		ShutdownTimeout: 5 * time.Second,
		Webhook: WebhookConfig{
			Enabled:  true,
			BindAddr: "127.0.0.1:3000",
		},
		Relay: RelayConfig{
			ReconnectInterval: 5 * time.Second,
		},
		YandexTTS: YandexTTSConfig{
			Voice:   "alena",
			Format:  "mp3",
			Speed:   "1.0",
			Emotion: "neutral",
			Volume:  100,
		},
		GoogleTTS: GoogleTTSConfig{
			CredentialsPath:  "service-account.json",
			SpeakingRate:     1.0,
			EffectsProfileID: "handset-class-device",
		},
		GeminiTTS: GeminiTTSConfig{
			ModelName:    "gemini-2.5-flash-tts",
			VoiceName:    "Kore",
			SpeakingRate: 1.0,
		},
		OpenAITTS: OpenAITTSConfig{
			Model: "gpt-4o-mini-tts",
			Voice: "alloy",
		},
	}
}

// NewConfig загружает конфигурацию приложения из .env, окружения и os.Args.
// Ошибка конфигурации фатальна.
func NewConfig() *Config {
	cfg, err := Load(os.Args[1:])
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load стартует с дефолтов и перекрывает их .env/окружением, затем флагами из args.
func Load(args []string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}

	fs := flag.NewFlagSet("notify-reader", flag.ContinueOnError)
	fs.BoolVar(&cfg.DebugMode, "debug-mode", cfg.DebugMode, "включить режим дебага")
	fs.StringVar(&cfg.TTSService, "tts-service", cfg.TTSService, "выбор сервиса TTS: google|yandex|gemini|openai|log")
	fs.StringVar(&cfg.Locale, "tts-locale", cfg.Locale, "локаль синтеза (BCP-47), пусто — локаль системы")
	fs.IntVar(&cfg.QueueLimit, "queue-limit", cfg.QueueLimit, "максимум сообщений в очереди до готовности движка, 0 — без ограничения")
	fs.StringVar(&cfg.NotificationSoundPath, "notification-sound-path", cfg.NotificationSoundPath, "звук перед озвучиванием (mp3 или wav)")
	fs.BoolVar(&cfg.MetricsEnabled, "metrics-enabled", cfg.MetricsEnabled, "отдавать метрики Prometheus на /metrics")
	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "время на остановку источников, напр. 5s")
	// Webhook
	fs.BoolVar(&cfg.Webhook.Enabled, "webhook-enabled", cfg.Webhook.Enabled, "включить HTTP-приёмник уведомлений")
	fs.StringVar(&cfg.Webhook.BindAddr, "webhook-bind-addr", cfg.Webhook.BindAddr, "адрес HTTP-приёмника (напр. 127.0.0.1:3000)")
	fs.StringVar(&cfg.Webhook.AuthToken, "webhook-auth-token", cfg.Webhook.AuthToken, "bearer-токен HTTP-приёмника (опционально)")
	// Relay
	fs.StringVar(&cfg.Relay.URL, "relay-url", cfg.Relay.URL, "адрес WebSocket-ретранслятора уведомлений")
	fs.StringVar(&cfg.Relay.AuthToken, "relay-auth-token", cfg.Relay.AuthToken, "bearer-токен ретранслятора (опционально)")
	fs.DurationVar(&cfg.Relay.ReconnectInterval, "relay-reconnect-interval", cfg.Relay.ReconnectInterval, "минимальный интервал между переподключениями")
	// Twitch
	fs.StringVar(&cfg.Twitch.Username, "twitch-username", cfg.Twitch.Username, "логин Twitch для подключения к чату")
	fs.StringVar(&cfg.Twitch.OAuthToken, "twitch-oauth-token", cfg.Twitch.OAuthToken, "OAuth токен Twitch (может быть без префикса oauth:)")
	fs.StringVar(&cfg.Twitch.Channel, "twitch-channel", cfg.Twitch.Channel, "канал Twitch (без #)")
	// Параметры Yandex TTS
	fs.StringVar(&cfg.YandexTTS.APIKey, "yc-tts-api-key", cfg.YandexTTS.APIKey, "API ключ Yandex SpeechKit TTS (перекрывает ENV)")
	fs.StringVar(&cfg.YandexTTS.Voice, "yc-tts-voice", cfg.YandexTTS.Voice, "голос для синтеза (напр. alena, filipp, jane)")
	fs.StringVar(&cfg.YandexTTS.Format, "yc-tts-format", cfg.YandexTTS.Format, "формат аудио (mp3|wav)")
	fs.StringVar(&cfg.YandexTTS.Speed, "yc-tts-speed", cfg.YandexTTS.Speed, "скорость речи (1.0 по умолчанию)")
	fs.StringVar(&cfg.YandexTTS.Emotion, "yc-tts-emotion", cfg.YandexTTS.Emotion, "эмоциональная окраска (neutral|good|evil)")
	fs.IntVar(&cfg.YandexTTS.Volume, "yc-tts-volume", cfg.YandexTTS.Volume, "громкость 0-100 (100 — без изменений)")
	// Параметры Google TTS
	fs.StringVar(&cfg.GoogleTTS.CredentialsPath, "google-tts-credentials", cfg.GoogleTTS.CredentialsPath, "путь к service-account.json (также читается из ENV GOOGLE_APPLICATION_CREDENTIALS)")
	fs.StringVar(&cfg.GoogleTTS.Voice, "google-tts-voice", cfg.GoogleTTS.Voice, "имя голоса, напр. en-US-Standard-C")
	fs.Float64Var(&cfg.GoogleTTS.SpeakingRate, "google-tts-speaking-rate", cfg.GoogleTTS.SpeakingRate, "скорость речи (1.0 по умолчанию)")
	fs.Float64Var(&cfg.GoogleTTS.Pitch, "google-tts-pitch", cfg.GoogleTTS.Pitch, "тон (полутоны), может быть отрицательным")
	fs.Float64Var(&cfg.GoogleTTS.VolumeGainDb, "google-tts-volume-db", cfg.GoogleTTS.VolumeGainDb, "усиление громкости (дБ), от -96.0 до +16.0")
	fs.StringVar(&cfg.GoogleTTS.EffectsProfileID, "google-tts-effects-profile-id", cfg.GoogleTTS.EffectsProfileID, "EffectsProfileId, напр. handset-class-device")
	// Параметры Gemini TTS
	fs.StringVar(&cfg.GeminiTTS.ModelName, "gemini-tts-model", cfg.GeminiTTS.ModelName, "модель Gemini-TTS")
	fs.StringVar(&cfg.GeminiTTS.VoiceName, "gemini-tts-voice", cfg.GeminiTTS.VoiceName, "голос Gemini-TTS")
	fs.StringVar(&cfg.GeminiTTS.Prompt, "gemini-tts-prompt", cfg.GeminiTTS.Prompt, "стилевой промпт Gemini-TTS")
	// Параметры OpenAI TTS
	fs.StringVar(&cfg.OpenAITTS.APIKey, "openai-api-key", cfg.OpenAITTS.APIKey, "API ключ OpenAI (перекрывает ENV)")
	fs.StringVar(&cfg.OpenAITTS.BaseURL, "openai-base-url", cfg.OpenAITTS.BaseURL, "базовый URL совместимого API")
	fs.StringVar(&cfg.OpenAITTS.Model, "openai-tts-model", cfg.OpenAITTS.Model, "модель синтеза, напр. gpt-4o-mini-tts, tts-1")
	fs.StringVar(&cfg.OpenAITTS.Voice, "openai-tts-voice", cfg.OpenAITTS.Voice, "голос, напр. alloy, nova, verse")
	fs.StringVar(&cfg.OpenAITTS.Instructions, "openai-tts-instructions", cfg.OpenAITTS.Instructions, "указания по манере речи")
	fs.Float64Var(&cfg.OpenAITTS.Speed, "openai-tts-speed", cfg.OpenAITTS.Speed, "скорость речи 0.25-4.0, 0 — по умолчанию")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// Если ENV пуст, но в конфиге указан существующий файл ключа — выставляем ENV для SDK.
	// Отсутствие ключа не фатально: движок речи перейдёт в Failed при инициализации.
	if cfg.TTSService == ServiceGoogle || cfg.TTSService == ServiceGemini {
		if strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")) == "" {
			if cp := strings.TrimSpace(cfg.GoogleTTS.CredentialsPath); cp != "" {
				if _, err := os.Stat(cp); err == nil {
					_ = os.Setenv("GOOGLE_APPLICATION_CREDENTIALS", cp)
				}
			}
		}
	}
	return cfg, nil
}

func (c *Config) validate() error {
	c.TTSService = strings.ToLower(strings.TrimSpace(c.TTSService))
	switch c.TTSService {
	case "":
		c.TTSService = ServiceGoogle
	case ServiceGoogle, ServiceYandex, ServiceGemini, ServiceOpenAI, ServiceLog:
	case "yc", "speechkit":
		c.TTSService = ServiceYandex
	case "google-gemini":
		c.TTSService = ServiceGemini
	default:
		return fmt.Errorf("config: unknown tts service %q", c.TTSService)
	}
	if c.OpenAITTS.Speed != 0 && (c.OpenAITTS.Speed < 0.25 || c.OpenAITTS.Speed > 4) {
		return fmt.Errorf("config: openai tts speed must be within 0.25-4.0, got %v", c.OpenAITTS.Speed)
	}
	if c.QueueLimit < 0 {
		return fmt.Errorf("config: queue limit must be >= 0, got %d", c.QueueLimit)
	}
	if l := strings.TrimSpace(c.Locale); l != "" {
		if _, err := language.Parse(l); err != nil {
			return fmt.Errorf("config: invalid locale %q: %w", l, err)
		}
	}
	return nil
}

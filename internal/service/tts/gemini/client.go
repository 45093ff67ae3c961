package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"NotifyReader/internal/config"
	"NotifyReader/internal/service/tts"
	"NotifyReader/internal/service/tts/player"

	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	"golang.org/x/text/language"
)

// По умолчанию используем Cloud TTS v1beta1 text:synthesize, совместимый с Generative AI TTS.
const defaultEndpoint = "https://texttospeech.googleapis.com/v1beta1/text:synthesize"

const scope = "https://www.googleapis.com/auth/cloud-platform"

// Языки Gemini-TTS в статусе GA.
var supported = []language.Tag{
	language.MustParse("en-US"),
	language.MustParse("en-IN"),
	language.MustParse("ru-RU"),
	language.MustParse("de-DE"),
	language.MustParse("fr-FR"),
	language.MustParse("es-ES"),
	language.MustParse("it-IT"),
	language.MustParse("pt-BR"),
	language.MustParse("ja-JP"),
	language.MustParse("ko-KR"),
	language.MustParse("hi-IN"),
	language.MustParse("id-ID"),
	language.MustParse("nl-NL"),
	language.MustParse("pl-PL"),
	language.MustParse("th-TH"),
	language.MustParse("tr-TR"),
	language.MustParse("uk-UA"),
	language.MustParse("vi-VN"),
}

// Ensure interface compliance
var _ tts.Synthesizer = (*Client)(nil)

// Client реализует синтез речи через Cloud Text-to-Speech: Gemini-TTS и воспроизводит результат.
type Client struct {
	http     *http.Client
	cfg      config.GeminiTTSConfig
	player   player.Player
	logger   *zap.SugaredLogger
	language string
}

func New(cfg config.GeminiTTSConfig, p player.Player, logger *zap.SugaredLogger) *Client {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Client{cfg: cfg, player: p, logger: logger}
}

// requestPayload покрывает input.prompt и voice.model_name.
type requestPayload struct {
	Input struct {
		Prompt string `json:"prompt,omitempty"`
		Text   string `json:"text,omitempty"`
	} `json:"input"`
	Voice struct {
		ModelName    string `json:"modelName,omitempty"`
		LanguageCode string `json:"languageCode,omitempty"`
		VoiceName    string `json:"name,omitempty"`
	} `json:"voice"`
	AudioConfig struct {
		AudioEncoding  string   `json:"audioEncoding,omitempty"`
		SpeakingRate   float64  `json:"speakingRate,omitempty"`
		Pitch          float64  `json:"pitch,omitempty"`
		VolumeGainDb   float64  `json:"volumeGainDb,omitempty"`
		EffectsProfile []string `json:"effectsProfileId,omitempty"`
	} `json:"audioConfig"`
}

type jsonAudioResponse struct {
	AudioContent string `json:"audioContent"`
}

// Open создаёт OAuth2 HTTP-клиент через ADC/metadata. API Key не используется.
// Клиент обновляет токен с контекстом Open, поэтому отмена ctx после Open на него не влияет.
func (c *Client) Open(ctx context.Context) error {
	if c.http != nil {
		return nil
	}
	hc, err := google.DefaultClient(context.WithoutCancel(ctx), scope)
	if err != nil {
		return fmt.Errorf("gemini tts: ADC credentials not found, set GOOGLE_APPLICATION_CREDENTIALS: %w", err)
	}
	c.http = hc
	return nil
}

func (c *Client) CheckLanguage(_ context.Context, tag language.Tag) (tts.LanguageStatus, error) {
	matched, status := tts.Match(tag, supported)
	if status == tts.LanguageAvailable {
		c.language = matched.String()
	}
	return status, nil
}

// Synthesize выполняет запрос к Gemini-TTS и воспроизводит аудио.
func (c *Client) Synthesize(ctx context.Context, req tts.Request) error {
	if c.http == nil {
		return errors.New("gemini tts: client is not open")
	}
	if strings.TrimSpace(req.Text) == "" {
		return errors.New("gemini tts: empty input text")
	}

	var rp requestPayload
	rp.Input.Text = req.Text
	// Промпт из конфигурации. Пустым не отправляем.
	if p := strings.TrimSpace(c.cfg.Prompt); p != "" {
		rp.Input.Prompt = p
	}
	rp.Voice.ModelName = strings.TrimSpace(c.cfg.ModelName)
	rp.Voice.LanguageCode = c.language
	rp.Voice.VoiceName = strings.TrimSpace(c.cfg.VoiceName)
	rp.AudioConfig.AudioEncoding = "MP3"
	rp.AudioConfig.SpeakingRate = c.cfg.SpeakingRate
	rp.AudioConfig.Pitch = c.cfg.Pitch
	rp.AudioConfig.VolumeGainDb = c.cfg.VolumeGainDb
	if ep := strings.TrimSpace(c.cfg.EffectsProfileID); ep != "" {
		rp.AudioConfig.EffectsProfile = []string{ep}
	}

	body, err := json.Marshal(&rp)
	if err != nil {
		return err
	}

	endpoint := strings.TrimSpace(c.cfg.Endpoint)
	if endpoint == "" {
		endpoint = defaultEndpoint
	}

	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	hreq.Header.Set("Content-Type", "application/json")
	hreq.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.http.Do(hreq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	c.logger.Debugw("Gemini TTS request completed", "id", req.ID, "status", resp.StatusCode, "took", time.Since(started).String())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if len(b) == 0 {
			b = []byte(resp.Status)
		}
		return fmt.Errorf("gemini tts error: status=%d, body=%s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var jr jsonAudioResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 5<<20)).Decode(&jr); err != nil {
		return fmt.Errorf("gemini tts: decode json response: %w", err)
	}
	if strings.TrimSpace(jr.AudioContent) == "" {
		return errors.New("gemini tts: empty audioContent in response")
	}
	data, err := base64.StdEncoding.DecodeString(jr.AudioContent)
	if err != nil {
		return fmt.Errorf("gemini tts: base64 decode: %w", err)
	}
	return c.player.Play(ctx, "mp3", io.NopCloser(bytes.NewReader(data)))
}

func (c *Client) Close() error {
	if c.http != nil {
		c.http.CloseIdleConnections()
	}
	return nil
}

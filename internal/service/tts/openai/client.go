package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"NotifyReader/internal/config"
	"NotifyReader/internal/service/tts"
	"NotifyReader/internal/service/tts/player"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// Языки, на которых модели озвучивания OpenAI говорят без акцента. Язык берётся из текста, в запрос не передаётся.
var supported = []language.Tag{
	language.English,
	language.Russian,
	language.German,
	language.French,
	language.Spanish,
	language.Italian,
	language.Portuguese,
	language.Dutch,
	language.Polish,
	language.Ukrainian,
	language.Turkish,
	language.Japanese,
	language.Korean,
	language.Chinese,
	language.Hindi,
	language.Indonesian,
	language.Vietnamese,
	language.Czech,
	language.Swedish,
	language.Kazakh,
}

// Ensure interface compliance
var _ tts.Synthesizer = (*Client)(nil)

// Client реализует синтез речи через OpenAI Audio API (audio/speech) и воспроизводит MP3.
type Client struct {
	cfg    config.OpenAITTSConfig
	player player.Player
	logger *zap.SugaredLogger
	opts   []option.RequestOption

	mu       sync.Mutex
	client   *openai.Client
	language string
}

// New создаёт клиент без подключения; opts дополняют опции SDK при Open.
func New(cfg config.OpenAITTSConfig, p player.Player, logger *zap.SugaredLogger, opts ...option.RequestOption) *Client {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Client{cfg: cfg, player: p, logger: logger, opts: opts}
}

func (c *Client) Open(context.Context) error {
	key := strings.TrimSpace(c.cfg.APIKey)
	if key == "" {
		return errors.New("openai tts: OPENAI_API_KEY is empty")
	}
	opts := []option.RequestOption{option.WithAPIKey(key)}
	if u := strings.TrimSpace(c.cfg.BaseURL); u != "" {
		opts = append(opts, option.WithBaseURL(u))
	}
	cl := openai.NewClient(append(opts, c.opts...)...)

	c.mu.Lock()
	c.client = &cl
	c.mu.Unlock()
	return nil
}

func (c *Client) CheckLanguage(_ context.Context, tag language.Tag) (tts.LanguageStatus, error) {
	matched, status := tts.Match(tag, supported)
	if status == tts.LanguageAvailable {
		c.mu.Lock()
		c.language = matched.String()
		c.mu.Unlock()
	}
	return status, nil
}

func (c *Client) Synthesize(ctx context.Context, req tts.Request) error {
	c.mu.Lock()
	cl, lang := c.client, c.language
	c.mu.Unlock()
	if cl == nil {
		return errors.New("openai tts: client is not open")
	}
	if strings.TrimSpace(req.Text) == "" {
		return errors.New("openai tts: empty input text")
	}

	params := openai.AudioSpeechNewParams{
		Input:          req.Text,
		Model:          openai.SpeechModel(c.cfg.Model),
		Voice:          openai.AudioSpeechNewParamsVoice(c.cfg.Voice),
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatMP3,
	}
	if in := strings.TrimSpace(c.cfg.Instructions); in != "" {
		params.Instructions = openai.String(in)
	}
	if c.cfg.Speed > 0 {
		params.Speed = openai.Float(c.cfg.Speed)
	}

	started := time.Now()
	resp, err := cl.Audio.Speech.New(ctx, params)
	if err != nil {
		return fmt.Errorf("openai tts: synthesize %s: %w", req.ID, err)
	}
	c.logger.Debugw("OpenAI TTS request completed", "id", req.ID, "language", lang, "status", resp.StatusCode, "took", time.Since(started).String())

	return c.player.Play(ctx, "mp3", resp.Body)
}

func (c *Client) Close() error {
	c.mu.Lock()
	c.client = nil
	c.mu.Unlock()
	return nil
}

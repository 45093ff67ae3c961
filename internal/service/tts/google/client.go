package google

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"NotifyReader/internal/config"
	"NotifyReader/internal/service/tts"
	"NotifyReader/internal/service/tts/player"

	gctts "cloud.google.com/go/texttospeech/apiv1"
	ttspb "cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"google.golang.org/api/option"
)

// Ensure interface compliance
var _ tts.Synthesizer = (*Client)(nil)

// Client реализует синтез речи через Google Cloud Text-to-Speech и воспроизводит результат.
// SDK-клиент создаётся один раз в Open и живёт до Close.
type Client struct {
	cfg    config.GoogleTTSConfig
	player player.Player
	logger *zap.SugaredLogger
	opts   []option.ClientOption

	mu     sync.Mutex
	client *gctts.Client
	voice  *ttspb.VoiceSelectionParams
}

// New создаёт клиент без подключения; opts передаются SDK при Open (endpoint, учётные данные).
func New(cfg config.GoogleTTSConfig, p player.Player, logger *zap.SugaredLogger, opts ...option.ClientOption) *Client {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Client{cfg: cfg, player: p, logger: logger, opts: opts}
}

func (c *Client) Open(ctx context.Context) error {
	// Контекст NewClient используется и для авторизации последующих вызовов.
	cl, err := gctts.NewClient(context.WithoutCancel(ctx), c.opts...)
	if err != nil {
		return fmt.Errorf("google tts: create client: %w", err)
	}
	c.mu.Lock()
	c.client = cl
	c.mu.Unlock()
	return nil
}

// Voices возвращает голоса сервиса для локали.
func (c *Client) Voices(ctx context.Context, tag language.Tag) ([]*ttspb.Voice, error) {
	cl := c.sdk()
	if cl == nil {
		return nil, errors.New("google tts: client is not open")
	}
	resp, err := cl.ListVoices(ctx, &ttspb.ListVoicesRequest{LanguageCode: tag.String()})
	if err != nil {
		return nil, fmt.Errorf("google tts: list voices %s: %w", tag, err)
	}
	return resp.GetVoices(), nil
}

// CheckLanguage проверяет наличие голосов для локали.
// Если голосов для локали нет, но есть для базового языка — LanguageMissingData.
func (c *Client) CheckLanguage(ctx context.Context, tag language.Tag) (tts.LanguageStatus, error) {
	voices, err := c.Voices(ctx, tag)
	if err != nil {
		return tts.LanguageNotSupported, err
	}
	code := tag.String()
	if len(voices) == 0 {
		base, _ := tag.Base()
		if base.String() != code {
			if bv, berr := c.Voices(ctx, language.Make(base.String())); berr == nil && len(bv) > 0 {
				return tts.LanguageMissingData, nil
			}
		}
		return tts.LanguageNotSupported, nil
	}

	voice := selectVoice(code, c.cfg.Voice, voices)
	c.mu.Lock()
	c.voice = voice
	c.mu.Unlock()
	c.logger.Infow("Google TTS voice selected", "language", voice.GetLanguageCode(), "voice", voice.GetName(), "available", len(voices))
	return tts.LanguageAvailable, nil
}

// selectVoice берёт голос из конфигурации, только если он есть среди голосов локали.
// Иначе имя не задаётся и голос выбирает сервис.
func selectVoice(code, preferred string, voices []*ttspb.Voice) *ttspb.VoiceSelectionParams {
	sel := &ttspb.VoiceSelectionParams{LanguageCode: code}
	preferred = strings.TrimSpace(preferred)
	if preferred == "" {
		return sel
	}
	for _, v := range voices {
		if strings.EqualFold(v.GetName(), preferred) {
			sel.Name = v.GetName()
			break
		}
	}
	return sel
}

func (c *Client) Synthesize(ctx context.Context, req tts.Request) error {
	cl := c.sdk()
	if cl == nil {
		return errors.New("google tts: client is not open")
	}
	c.mu.Lock()
	voice := c.voice
	c.mu.Unlock()

	input := &ttspb.SynthesisInput{InputSource: &ttspb.SynthesisInput_Text{Text: req.Text}}

	// Только MP3
	audio := &ttspb.AudioConfig{
		AudioEncoding: ttspb.AudioEncoding_MP3,
		SpeakingRate:  c.cfg.SpeakingRate,
		Pitch:         c.cfg.Pitch,
		VolumeGainDb:  c.cfg.VolumeGainDb,
	}
	if ep := strings.TrimSpace(c.cfg.EffectsProfileID); ep != "" {
		audio.EffectsProfileId = []string{ep}
	}

	started := time.Now()
	resp, err := cl.SynthesizeSpeech(ctx, &ttspb.SynthesizeSpeechRequest{Input: input, Voice: voice, AudioConfig: audio})
	if err != nil {
		return fmt.Errorf("google tts: synthesize %s: %w", req.ID, err)
	}
	c.logger.Debugw("Google TTS synthesize completed", "id", req.ID, "took", time.Since(started).String())

	r := io.NopCloser(bytes.NewReader(resp.GetAudioContent()))
	return c.player.Play(ctx, "mp3", r)
}

func (c *Client) Close() error {
	c.mu.Lock()
	cl := c.client
	c.client = nil
	c.mu.Unlock()
	if cl == nil {
		return nil
	}
	return cl.Close()
}

func (c *Client) sdk() *gctts.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.client
}

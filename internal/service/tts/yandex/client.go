package yandex

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"NotifyReader/internal/config"
	"NotifyReader/internal/service/tts"
	"NotifyReader/internal/service/tts/player"

	"go.uber.org/zap"
	"golang.org/x/text/language"
)

const endpoint = "https://tts.api.cloud.yandex.net/speech/v1/tts:synthesize"

// Языки, которые принимает SpeechKit v1 в параметре lang.
var supported = []language.Tag{
	language.MustParse("ru-RU"),
	language.MustParse("en-US"),
	language.MustParse("de-DE"),
	language.MustParse("tr-TR"),
	language.MustParse("kk-KZ"),
	language.MustParse("uz-UZ"),
	language.MustParse("he-IL"),
}

// Ensure interface compliance
var _ tts.Synthesizer = (*Client)(nil)

// Client реализует синтез речи через Yandex SpeechKit и воспроизводит результат.
type Client struct {
	http     *http.Client
	endpoint string
	cfg      config.YandexTTSConfig
	player   player.Player
	logger   *zap.SugaredLogger
	lang     string
}

func New(cfg config.YandexTTSConfig, p player.Player, logger *zap.SugaredLogger) *Client {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Client{http: http.DefaultClient, endpoint: endpoint, cfg: cfg, player: p, logger: logger}
}

func (c *Client) Open(context.Context) error {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return errors.New("yandex tts: empty API key (set YC_TTS_API_KEY in .env/ENV or pass via flag)")
	}
	return nil
}

func (c *Client) CheckLanguage(_ context.Context, tag language.Tag) (tts.LanguageStatus, error) {
	matched, status := tts.Match(tag, supported)
	if status == tts.LanguageAvailable {
		c.lang = matched.String()
	}
	return status, nil
}

// Synthesize выполняет запрос к Yandex TTS и воспроизводит аудио.
// Значения по умолчанию задаются исключительно в config.Defaults().
func (c *Client) Synthesize(ctx context.Context, req tts.Request) error {
	format := strings.ToLower(c.cfg.Format)

	form := url.Values{}
	form.Set("text", req.Text)
	form.Set("voice", c.cfg.Voice)
	form.Set("format", format)
	form.Set("speed", c.cfg.Speed)
	form.Set("emotion", strings.ToLower(c.cfg.Emotion))
	if c.lang != "" {
		form.Set("lang", c.lang)
	}

	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	hreq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	hreq.Header.Set("Authorization", "Api-Key "+c.cfg.APIKey)

	started := time.Now()
	resp, err := c.http.Do(hreq)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if len(b) == 0 {
			b = []byte(resp.Status)
		}
		return fmt.Errorf("yandex tts error: status=%d, body=%s", resp.StatusCode, bytes.TrimSpace(b))
	}
	c.logger.Debugw("Yandex TTS request completed", "id", req.ID, "took", time.Since(started).String())

	return c.player.Play(ctx, format, resp.Body)
}

func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

package yandex

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"NotifyReader/internal/config"
	"NotifyReader/internal/service/tts"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

type recordingPlayer struct {
	mu     sync.Mutex
	format string
	data   []byte
}

func (p *recordingPlayer) Play(_ context.Context, format string, r io.ReadCloser) error {
	defer r.Close()
	b, err := io.ReadAll(r)
	p.mu.Lock()
	p.format, p.data = format, b
	p.mu.Unlock()
	return err
}

func testConfig() config.YandexTTSConfig {
	cfg := config.Defaults().YandexTTS
	cfg.APIKey = "test-key"
	return cfg
}

func TestClient_OpenRequiresAPIKey(t *testing.T) {
	c := New(config.YandexTTSConfig{}, &recordingPlayer{}, nil)
	require.Error(t, c.Open(context.Background()))

	c = New(testConfig(), &recordingPlayer{}, nil)
	require.NoError(t, c.Open(context.Background()))
}

func TestClient_CheckLanguage(t *testing.T) {
	c := New(testConfig(), &recordingPlayer{}, nil)

	status, err := c.CheckLanguage(context.Background(), language.MustParse("ru-RU"))
	require.NoError(t, err)
	assert.Equal(t, tts.LanguageAvailable, status)
	assert.Equal(t, "ru-RU", c.lang)

	status, err = c.CheckLanguage(context.Background(), language.Japanese)
	require.NoError(t, err)
	assert.Equal(t, tts.LanguageNotSupported, status)
}

func TestClient_CheckLanguageEverySupportedLocale(t *testing.T) {
	c := New(testConfig(), &recordingPlayer{}, nil)

	for _, tag := range supported {
		status, err := c.CheckLanguage(context.Background(), tag)
		require.NoError(t, err, tag.String())
		assert.Equal(t, tts.LanguageAvailable, status, tag.String())
		assert.Equal(t, tag.String(), c.lang)
	}
}

func TestClient_Synthesize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Api-Key test-key", r.Header.Get("Authorization"))
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "New notification from Mail: hi", r.PostForm.Get("text"))
		assert.Equal(t, "en-US", r.PostForm.Get("lang"))
		assert.Equal(t, "mp3", r.PostForm.Get("format"))
		assert.Equal(t, "alena", r.PostForm.Get("voice"))
		_, _ = w.Write([]byte("mp3-bytes"))
	}))
	defer srv.Close()

	p := &recordingPlayer{}
	c := New(testConfig(), p, nil)
	c.endpoint = srv.URL
	_, err := c.CheckLanguage(context.Background(), language.AmericanEnglish)
	require.NoError(t, err)

	err = c.Synthesize(context.Background(), tts.Request{ID: "1", Text: "New notification from Mail: hi"})
	require.NoError(t, err)
	assert.Equal(t, "mp3", p.format)
	assert.Equal(t, "mp3-bytes", string(p.data))
}

func TestClient_SynthesizeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad voice", http.StatusBadRequest)
	}))
	defer srv.Close()

	p := &recordingPlayer{}
	c := New(testConfig(), p, nil)
	c.endpoint = srv.URL

	err := c.Synthesize(context.Background(), tts.Request{ID: "1", Text: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=400")
	assert.Contains(t, err.Error(), "bad voice")
	assert.Empty(t, p.format)
}

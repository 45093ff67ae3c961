package console

import (
	"context"
	"testing"

	"NotifyReader/internal/service/tts"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/text/language"
)

func TestSynthesizer_LogsText(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := New(zap.New(core).Sugar())

	require.NoError(t, s.Open(context.Background()))
	status, err := s.CheckLanguage(context.Background(), language.AmericanEnglish)
	require.NoError(t, err)
	assert.Equal(t, tts.LanguageAvailable, status)

	require.NoError(t, s.Synthesize(context.Background(), tts.Request{ID: "abc", Text: "hello"}))
	entries := logs.FilterMessage("TTS output").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "hello", entries[0].ContextMap()["text"])
	assert.Equal(t, "abc", entries[0].ContextMap()["id"])
}

func TestSynthesizer_UndeterminedLocale(t *testing.T) {
	s := New(nil)
	status, err := s.CheckLanguage(context.Background(), language.Und)
	require.NoError(t, err)
	assert.Equal(t, tts.LanguageNotSupported, status)
}

func TestSynthesizer_CanceledContext(t *testing.T) {
	s := New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Synthesize(ctx, tts.Request{Text: "x"}), context.Canceled)
}

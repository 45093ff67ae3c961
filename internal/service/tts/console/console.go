// Package console — бэкенд синтеза, который пишет текст в лог вместо звука.
// Используется для отладки без ключей облачных сервисов.
package console

import (
	"context"

	"NotifyReader/internal/service/tts"

	"go.uber.org/zap"
	"golang.org/x/text/language"
)

var _ tts.Synthesizer = (*Synthesizer)(nil)

type Synthesizer struct {
	logger *zap.SugaredLogger
}

func New(logger *zap.SugaredLogger) *Synthesizer {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Synthesizer{logger: logger}
}

func (s *Synthesizer) Open(context.Context) error { return nil }

func (s *Synthesizer) CheckLanguage(_ context.Context, tag language.Tag) (tts.LanguageStatus, error) {
	if tag == language.Und {
		return tts.LanguageNotSupported, nil
	}
	return tts.LanguageAvailable, nil
}

func (s *Synthesizer) Synthesize(ctx context.Context, req tts.Request) error {
	if err := context.Cause(ctx); err != nil {
		return err
	}
	s.logger.Infow("TTS output", "id", req.ID, "text", req.Text)
	return nil
}

func (s *Synthesizer) Close() error { return nil }

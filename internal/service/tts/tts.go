package tts

import (
	"context"

	"golang.org/x/text/language"
)

// Request — один запрос синтеза. ID выводится из текста и нужен только для учёта на стороне синтезатора.
type Request struct {
	ID   string
	Text string
}

// LanguageStatus — результат проверки языка синтезатором.
type LanguageStatus int

const (
	LanguageAvailable LanguageStatus = iota
	LanguageMissingData
	LanguageNotSupported
)

func (s LanguageStatus) String() string {
	switch s {
	case LanguageAvailable:
		return "available"
	case LanguageMissingData:
		return "missing-data"
	case LanguageNotSupported:
		return "not-supported"
	default:
		return "unknown"
	}
}

// Synthesizer абстракция TTS-провайдера.
// Open и CheckLanguage вызываются один раз при инициализации движка,
// Synthesize — последовательно из одной горутины движка и должен реагировать на отмену ctx.
type Synthesizer interface {
	Open(ctx context.Context) error
	CheckLanguage(ctx context.Context, tag language.Tag) (LanguageStatus, error)
	Synthesize(ctx context.Context, req Request) error
	Close() error
}

// MatchLanguage сверяет tag со списком поддерживаемых провайдером языков.
func MatchLanguage(tag language.Tag, supported []language.Tag) LanguageStatus {
	_, status := Match(tag, supported)
	return status
}

// Match возвращает подходящий тег из supported. Другой регион того же языка
// (en-IN при наличии en-US) подходит; другой язык не подходит никогда, даже если
// сопоставитель x/text предлагает его как запасной вариант.
func Match(tag language.Tag, supported []language.Tag) (language.Tag, LanguageStatus) {
	if len(supported) == 0 || tag == language.Und {
		return language.Und, LanguageNotSupported
	}
	_, idx, conf := language.NewMatcher(supported).Match(tag)
	if conf == language.No {
		return language.Und, LanguageNotSupported
	}
	want, _ := tag.Base()
	got, _ := supported[idx].Base()
	if want != got {
		return language.Und, LanguageNotSupported
	}
	return supported[idx], LanguageAvailable
}

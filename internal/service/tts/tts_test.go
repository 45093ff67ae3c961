package tts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestMatchLanguage(t *testing.T) {
	supported := []language.Tag{language.AmericanEnglish, language.MustParse("ru-RU")}

	tests := []struct {
		name string
		tag  language.Tag
		want LanguageStatus
	}{
		{"exact", language.AmericanEnglish, LanguageAvailable},
		{"same base other region", language.MustParse("en-IN"), LanguageAvailable},
		{"russian", language.Russian, LanguageAvailable},
		{"unsupported", language.Japanese, LanguageNotSupported},
		{"xhosa falls back to english", language.MustParse("xh-ZA"), LanguageNotSupported},
		{"welsh falls back to english", language.MustParse("cy-GB"), LanguageNotSupported},
		{"belarusian falls back to russian", language.MustParse("be-BY"), LanguageNotSupported},
		{"undefined", language.Und, LanguageNotSupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchLanguage(tt.tag, supported))
		})
	}

	assert.Equal(t, LanguageNotSupported, MatchLanguage(language.English, nil))
}

func TestMatch_ReturnsSupportedTag(t *testing.T) {
	supported := []language.Tag{language.AmericanEnglish, language.MustParse("ru-RU")}

	tag, status := Match(language.MustParse("en-GB"), supported)
	assert.Equal(t, LanguageAvailable, status)
	assert.Equal(t, language.AmericanEnglish, tag)

	tag, status = Match(language.MustParse("be-BY"), supported)
	assert.Equal(t, LanguageNotSupported, status)
	assert.Equal(t, language.Und, tag)
}

func TestLanguageStatusString(t *testing.T) {
	assert.Equal(t, "available", LanguageAvailable.String())
	assert.Equal(t, "missing-data", LanguageMissingData.String())
	assert.Equal(t, "not-supported", LanguageNotSupported.String())
	assert.Equal(t, "unknown", LanguageStatus(42).String())
}

package speech

import (
	"os"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/text/language"
)

// DefaultLocale возвращает локаль системы по LC_ALL, LC_MESSAGES и LANG (в этом порядке).
// Значения вида "ru_RU.UTF-8" приводятся к BCP-47; "C", "POSIX" и мусор дают en-US.
func DefaultLocale() language.Tag {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if tag, ok := parsePOSIXLocale(os.Getenv(key)); ok {
			return tag
		}
	}
	return language.AmericanEnglish
}

func parsePOSIXLocale(v string) (language.Tag, bool) {
	v = strings.TrimSpace(v)
	if i := strings.IndexAny(v, ".@"); i >= 0 {
		v = v[:i]
	}
	if v == "" || v == "C" || v == "POSIX" {
		return language.Und, false
	}
	tag, err := language.Parse(strings.ReplaceAll(v, "_", "-"))
	if err != nil {
		return language.Und, false
	}
	return tag, true
}

// RequestID выводит идентификатор запроса синтеза из текста сообщения.
// Одинаковый текст даёт одинаковый идентификатор.
func RequestID(text string) string {
	return strconv.FormatUint(xxhash.Sum64String(text), 16)
}

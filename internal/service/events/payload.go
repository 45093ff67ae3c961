package events

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"time"
)

var ErrEmptyPayload = errors.New("events: empty notification payload")

// Payload — JSON-представление уведомления для HTTP и WebSocket.
type Payload struct {
	Key       string  `json:"key"`
	PackageID string  `json:"packageId,omitempty"`
	Title     *string `json:"title"`
	Text      *string `json:"text"`
	PostTime  int64   `json:"postTime,omitempty"` // unix ms
}

func ToPayload(n Notification) Payload {
	p := Payload{Key: n.Key, PackageID: n.PackageID, Title: n.Title, Text: n.Body}
	if !n.PostedAt.IsZero() {
		p.PostTime = n.PostedAt.UnixMilli()
	}
	return p
}

// Decode разбирает уведомление из JSON. Понимает плоский вид {key, packageId, title, text}
// и вид Android {key, packageName, extras:{"android.title","android.text"}}.
// Отсутствующие title/text остаются nil.
func Decode(raw []byte) (Notification, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return Notification{}, err
	}
	if len(m) == 0 {
		return Notification{}, ErrEmptyPayload
	}
	return FromMap(m), nil
}

// FromMap собирает уведомление из уже разобранного JSON-объекта.
func FromMap(m map[string]any) Notification {
	extras := getMap(m, "extras")
	n := Notification{
		Key:       toString(m["key"]),
		PackageID: firstNonEmpty(toString(m["packageId"]), toString(m["packageName"]), toString(m["package"])),
		Title:     firstPresent(m, "title", extras, "android.title"),
		Body:      firstPresent(m, "text", extras, "android.text"),
	}
	if n.Body == nil {
		n.Body = optString(m, "body")
	}
	if ms := toInt64(m["postTime"]); ms > 0 {
		n.PostedAt = time.UnixMilli(ms)
	}
	return n
}

// ===== helpers =====

func firstPresent(m map[string]any, key string, extras map[string]any, extrasKey string) *string {
	if s := optString(m, key); s != nil {
		return s
	}
	return optString(extras, extrasKey)
}

// optString возвращает nil, если ключа нет, значение null или не строка.
func optString(m map[string]any, key string) *string {
	v, ok := m[key]
	if !ok {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}

func getMap(m map[string]any, key string) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return AsMap(m[key])
}

// AsMap приводит значение JSON к объекту; не объект — пустая карта.
func AsMap(v any) map[string]any {
	if mm, ok := v.(map[string]any); ok {
		return mm
	}
	return map[string]any{}
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func toInt64(v any) int64 {
	switch x := v.(type) {
	case float64:
		return int64(math.Round(x))
	case int:
		return int64(x)
	case int64:
		return x
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
	}
	return 0
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

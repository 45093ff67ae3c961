// Package ttstest содержит управляемый синтезатор для тестов.
package ttstest

import (
	"context"
	"sync"

	"NotifyReader/internal/service/tts"

	"golang.org/x/text/language"
)

// Fake записывает все запросы синтеза. Поля настраиваются до передачи в движок.
type Fake struct {
	OpenErr  error
	CheckErr error
	Status   tts.LanguageStatus
	// Gate, если задан, задерживает Open до закрытия канала (или отмены ctx).
	Gate chan struct{}
	// Hold, если задан, задерживает каждый Synthesize до закрытия канала (или отмены ctx).
	Hold chan struct{}

	mu       sync.Mutex
	requests []tts.Request
	checked  []language.Tag
	opened   int
	closed   int
	openCtx  context.Context
	started  chan tts.Request
}

func NewFake() *Fake {
	return &Fake{Status: tts.LanguageAvailable, started: make(chan tts.Request, 1024)}
}

func (f *Fake) Open(ctx context.Context) error {
	f.mu.Lock()
	f.openCtx = ctx
	f.mu.Unlock()
	if f.Gate != nil {
		select {
		case <-f.Gate:
		case <-ctx.Done():
			return context.Cause(ctx)
		}
	}
	f.mu.Lock()
	f.opened++
	f.mu.Unlock()
	return f.OpenErr
}

func (f *Fake) CheckLanguage(_ context.Context, tag language.Tag) (tts.LanguageStatus, error) {
	f.mu.Lock()
	f.checked = append(f.checked, tag)
	f.mu.Unlock()
	return f.Status, f.CheckErr
}

func (f *Fake) Synthesize(ctx context.Context, req tts.Request) error {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	select {
	case f.started <- req:
	default:
	}
	if f.Hold != nil {
		select {
		case <-f.Hold:
		case <-ctx.Done():
			return context.Cause(ctx)
		}
	}
	return nil
}

func (f *Fake) Close() error {
	f.mu.Lock()
	f.closed++
	f.mu.Unlock()
	return nil
}

// Started отдаёт запросы в момент начала синтеза.
func (f *Fake) Started() <-chan tts.Request { return f.started }

func (f *Fake) Requests() []tts.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tts.Request(nil), f.requests...)
}

// Texts возвращает тексты всех запросов в порядке синтеза.
func (f *Fake) Texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.requests))
	for _, r := range f.requests {
		out = append(out, r.Text)
	}
	return out
}

func (f *Fake) Checked() []language.Tag {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]language.Tag(nil), f.checked...)
}

func (f *Fake) Closed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *Fake) Opened() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opened
}

// OpenCtx возвращает контекст, переданный в Open.
func (f *Fake) OpenCtx() context.Context {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.openCtx
}

package speech_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"NotifyReader/internal/service/speech"
	"NotifyReader/internal/service/tts"
	"NotifyReader/internal/service/tts/ttstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

const waitFor = 2 * time.Second

type initResult struct {
	state speech.State
	err   error
}

func initialize(t *testing.T, e *speech.Engine) initResult {
	t.Helper()
	ch := make(chan initResult, 1)
	e.Initialize(context.Background(), func(s speech.State, err error) { ch <- initResult{s, err} })
	select {
	case r := <-ch:
		return r
	case <-time.After(waitFor):
		t.Fatal("engine initialization did not complete")
		return initResult{}
	}
}

func TestEngine_ReadyAnnouncesInOrder(t *testing.T) {
	fake := ttstest.NewFake()
	e := speech.New(fake, nil, speech.WithLocale(language.AmericanEnglish))
	t.Cleanup(e.Shutdown)

	assert.Equal(t, speech.NotReady, e.State())
	require.ErrorIs(t, e.Announce("too early"), speech.ErrNotReady)

	r := initialize(t, e)
	require.Equal(t, speech.Ready, r.state)
	require.NoError(t, r.err)
	assert.Equal(t, speech.Ready, e.State())
	assert.Equal(t, []language.Tag{language.AmericanEnglish}, fake.Checked())

	require.NoError(t, e.Announce("A"))
	require.NoError(t, e.Announce("B"))
	require.NoError(t, e.Announce("C"))

	require.Eventually(t, func() bool { return len(fake.Texts()) == 3 }, waitFor, 5*time.Millisecond)
	assert.Equal(t, []string{"A", "B", "C"}, fake.Texts())

	for _, req := range fake.Requests() {
		assert.Equal(t, speech.RequestID(req.Text), req.ID)
	}
}

func TestEngine_AnnounceAppendsWithoutInterrupting(t *testing.T) {
	fake := ttstest.NewFake()
	fake.Hold = make(chan struct{})
	e := speech.New(fake, nil, speech.WithLocale(language.AmericanEnglish))
	t.Cleanup(e.Shutdown)
	require.Equal(t, speech.Ready, initialize(t, e).state)

	require.NoError(t, e.Announce("first"))
	select {
	case req := <-fake.Started():
		assert.Equal(t, "first", req.Text)
	case <-time.After(waitFor):
		t.Fatal("first request was not started")
	}

	require.NoError(t, e.Announce("second"))
	assert.Equal(t, 1, e.Pending())
	assert.Equal(t, []string{"first"}, fake.Texts())

	close(fake.Hold)
	require.Eventually(t, func() bool { return len(fake.Texts()) == 2 }, waitFor, 5*time.Millisecond)
	assert.Equal(t, []string{"first", "second"}, fake.Texts())
}

func TestEngine_InitFailure(t *testing.T) {
	fake := ttstest.NewFake()
	fake.OpenErr = errors.New("no credentials")
	e := speech.New(fake, nil, speech.WithLocale(language.AmericanEnglish))
	t.Cleanup(e.Shutdown)

	r := initialize(t, e)
	assert.Equal(t, speech.Failed, r.state)
	require.Error(t, r.err)
	assert.ErrorIs(t, e.Err(), fake.OpenErr)
	assert.ErrorIs(t, e.Announce("x"), speech.ErrNotReady)
	assert.Empty(t, fake.Texts())
}

func TestEngine_UnsupportedLocale(t *testing.T) {
	for _, status := range []tts.LanguageStatus{tts.LanguageMissingData, tts.LanguageNotSupported} {
		t.Run(status.String(), func(t *testing.T) {
			fake := ttstest.NewFake()
			fake.Status = status
			e := speech.New(fake, nil, speech.WithLocale(language.MustParse("tlh")))
			t.Cleanup(e.Shutdown)

			r := initialize(t, e)
			assert.Equal(t, speech.Failed, r.state)
			assert.ErrorIs(t, r.err, speech.ErrUnsupportedLocale)
			assert.ErrorIs(t, e.Announce("x"), speech.ErrNotReady)
		})
	}
}

func TestEngine_LanguageCheckError(t *testing.T) {
	fake := ttstest.NewFake()
	fake.CheckErr = errors.New("voices unavailable")
	e := speech.New(fake, nil)
	t.Cleanup(e.Shutdown)

	r := initialize(t, e)
	assert.Equal(t, speech.Failed, r.state)
	assert.ErrorIs(t, r.err, fake.CheckErr)
}

func TestEngine_InitializeRunsOnce(t *testing.T) {
	fake := ttstest.NewFake()
	e := speech.New(fake, nil)
	t.Cleanup(e.Shutdown)

	var calls sync.WaitGroup
	calls.Add(1)
	count := 0
	var mu sync.Mutex
	cb := func(speech.State, error) {
		mu.Lock()
		count++
		mu.Unlock()
		calls.Done()
	}
	e.Initialize(context.Background(), cb)
	e.Initialize(context.Background(), cb)
	calls.Wait()
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, count)
	assert.Equal(t, 1, fake.Opened())
}

func TestEngine_CallbackRunsUnderSharedLock(t *testing.T) {
	var shared sync.Mutex
	fake := ttstest.NewFake()
	fake.Gate = make(chan struct{})
	e := speech.New(fake, nil, speech.WithLocker(&shared))
	t.Cleanup(e.Shutdown)

	done := make(chan struct{})
	e.Initialize(context.Background(), func(speech.State, error) {
		// Блокировка уже захвачена движком.
		assert.False(t, shared.TryLock())
		close(done)
	})

	shared.Lock()
	close(fake.Gate)
	time.Sleep(20 * time.Millisecond)
	// Пока блокировка у нас, состояние не может смениться.
	assert.Equal(t, speech.NotReady, e.State())
	shared.Unlock()

	select {
	case <-done:
	case <-time.After(waitFor):
		t.Fatal("init callback was not invoked")
	}
	assert.Equal(t, speech.Ready, e.State())
}

func TestEngine_StopDropsQueuedOutput(t *testing.T) {
	fake := ttstest.NewFake()
	fake.Hold = make(chan struct{})
	e := speech.New(fake, nil)
	t.Cleanup(e.Shutdown)
	require.Equal(t, speech.Ready, initialize(t, e).state)

	require.NoError(t, e.Announce("playing"))
	<-fake.Started()
	require.NoError(t, e.Announce("queued"))

	e.Stop()
	assert.Equal(t, 0, e.Pending())
	assert.Equal(t, speech.Ready, e.State())

	require.NoError(t, e.Announce("after stop"))
	require.Eventually(t, func() bool { return len(fake.Texts()) == 2 }, waitFor, 5*time.Millisecond)
	assert.Equal(t, []string{"playing", "after stop"}, fake.Texts())
	close(fake.Hold)
}

func TestEngine_ShutdownIsIdempotent(t *testing.T) {
	fake := ttstest.NewFake()
	fake.Hold = make(chan struct{})
	e := speech.New(fake, nil)
	require.Equal(t, speech.Ready, initialize(t, e).state)

	require.NoError(t, e.Announce("in flight"))
	<-fake.Started()

	e.Shutdown()
	e.Shutdown()

	assert.Equal(t, 1, fake.Closed())
	assert.ErrorIs(t, e.Announce("late"), speech.ErrShutdown)
}

func TestEngine_ShutdownBeforeInitialize(t *testing.T) {
	fake := ttstest.NewFake()
	e := speech.New(fake, nil)
	e.Shutdown()
	assert.Equal(t, 0, fake.Closed())
	assert.Equal(t, speech.NotReady, e.State())
}

func TestEngine_ShutdownDuringInitialize(t *testing.T) {
	fake := ttstest.NewFake()
	fake.Gate = make(chan struct{})
	e := speech.New(fake, nil)

	ch := make(chan initResult, 1)
	e.Initialize(context.Background(), func(s speech.State, err error) { ch <- initResult{s, err} })
	e.Shutdown()

	select {
	case r := <-ch:
		assert.Equal(t, speech.Failed, r.state)
		assert.Error(t, r.err)
	case <-time.After(waitFor):
		t.Fatal("initialization was not cancelled by shutdown")
	}
	require.Eventually(t, func() bool { return fake.Closed() == 1 }, waitFor, 5*time.Millisecond)
}

func TestEngine_OpenContextOutlivesInitialization(t *testing.T) {
	fake := ttstest.NewFake()
	e := speech.New(fake, nil)

	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan initResult, 1)
	e.Initialize(ctx, func(s speech.State, err error) { ch <- initResult{s, err} })
	select {
	case r := <-ch:
		require.Equal(t, speech.Ready, r.state)
	case <-time.After(waitFor):
		t.Fatal("engine initialization did not complete")
	}

	// Синтезатор продолжает пользоваться контекстом Open после инициализации.
	openCtx := fake.OpenCtx()
	require.NotNil(t, openCtx)
	cancel()
	assert.NoError(t, openCtx.Err())

	e.Shutdown()
	require.Eventually(t, func() bool { return openCtx.Err() != nil }, waitFor, 5*time.Millisecond)
	assert.ErrorIs(t, context.Cause(openCtx), speech.ErrShutdown)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "not-ready", speech.NotReady.String())
	assert.Equal(t, "ready", speech.Ready.String())
	assert.Equal(t, "failed", speech.Failed.String())
	assert.Equal(t, "unknown", speech.State(9).String())
}

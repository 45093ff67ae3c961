package speech

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"NotifyReader/internal/service/tts"

	"go.uber.org/zap"
	"golang.org/x/text/language"
)

var (
	ErrNotReady          = errors.New("speech: engine is not ready")
	ErrUnsupportedLocale = errors.New("speech: locale is not supported")
	ErrShutdown          = errors.New("speech: engine is shut down")
)

// Chime проигрывает короткий звук перед каждым запросом.
type Chime interface {
	PlayChime(ctx context.Context) error
}

type Option func(*Engine)

// WithLocale задаёт локаль синтеза вместо локали системы.
func WithLocale(tag language.Tag) Option {
	return func(e *Engine) { e.locale = tag }
}

// WithLocker задаёт блокировку, под которой меняется состояние и вызывается колбэк инициализации.
// Владелец очереди передаёт сюда свою блокировку, чтобы проверка готовности и работа с очередью были атомарны.
func WithLocker(l sync.Locker) Option {
	return func(e *Engine) { e.locker = l }
}

func WithChime(c Chime) Option {
	return func(e *Engine) { e.chime = c }
}

// Engine — движок речи с асинхронной инициализацией.
// Запросы Announce встают в собственную очередь вывода и проигрываются по одному фоновой горутиной.
type Engine struct {
	synth  tts.Synthesizer
	locker sync.Locker
	logger *zap.SugaredLogger
	locale language.Tag
	chime  Chime

	// state пишется только под locker; атомарность нужна для чтения без неё.
	state atomic.Int32

	ctx    context.Context
	cancel context.CancelCauseFunc

	mu       sync.Mutex
	pending  []tts.Request
	current  context.CancelFunc
	initErr  error
	initDone bool
	running  bool
	closed   bool
	notify   chan struct{}
	done     chan struct{}

	initOnce     sync.Once
	shutdownOnce sync.Once
}

func New(synth tts.Synthesizer, logger *zap.SugaredLogger, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	ctx, cancel := context.WithCancelCause(context.Background())
	e := &Engine{
		synth:  synth,
		locker: &sync.Mutex{},
		logger: logger,
		locale: DefaultLocale(),
		ctx:    ctx,
		cancel: cancel,
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) State() State { return State(e.state.Load()) }

func (e *Engine) Locale() language.Tag { return e.locale }

// Err возвращает причину перехода в Failed.
func (e *Engine) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.initErr
}

// Pending — число запросов, ещё не переданных синтезатору.
func (e *Engine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pending)
}

// Initialize запускает инициализацию в отдельной горутине и немедленно возвращается.
// Повторные вызовы ничего не делают. onInit вызывается один раз, уже после смены состояния,
// с захваченной блокировкой (см. WithLocker). Таймаута нет: зависший синтезатор оставит движок в NotReady.
func (e *Engine) Initialize(ctx context.Context, onInit func(State, error)) {
	e.initOnce.Do(func() {
		go e.initialize(ctx, onInit)
	})
}

func (e *Engine) initialize(ctx context.Context, onInit func(State, error)) {
	ictx, cancel := context.WithCancelCause(ctx)
	stop := context.AfterFunc(e.ctx, func() { cancel(context.Cause(e.ctx)) })
	state, err := e.setup(e.lifetime(ctx), ictx)
	stop()
	cancel(nil)

	e.mu.Lock()
	e.initDone = true
	closed := e.closed
	if closed && state == Ready {
		state, err = Failed, ErrShutdown
	}
	e.initErr = err
	e.running = state == Ready
	e.mu.Unlock()

	if closed {
		// Shutdown уже прошёл и не трогал синтезатор, пока шла инициализация.
		if cerr := e.synth.Close(); cerr != nil {
			e.logger.Warnw("Failed to close synthesizer", "error", cerr)
		}
	}
	if state == Ready {
		go e.run()
	}

	e.locker.Lock()
	defer e.locker.Unlock()
	e.state.Store(int32(state))
	if state == Ready {
		e.logger.Infow("TTS initialized successfully", "locale", e.locale.String())
	} else {
		e.logger.Errorw("TTS initialization failed", "locale", e.locale.String(), "error", err)
	}
	if onInit != nil {
		onInit(state, err)
	}
}

// lifetime возвращает контекст со значениями ctx, который отменяется только при Shutdown.
// Синтезаторы держат контекст Open для обновления токенов, поэтому он должен жить столько же, сколько движок.
func (e *Engine) lifetime(ctx context.Context) context.Context {
	lctx, cancel := context.WithCancelCause(context.WithoutCancel(ctx))
	context.AfterFunc(e.ctx, func() { cancel(context.Cause(e.ctx)) })
	return lctx
}

func (e *Engine) setup(openCtx, ctx context.Context) (State, error) {
	if err := e.synth.Open(openCtx); err != nil {
		return Failed, fmt.Errorf("speech: open synthesizer: %w", err)
	}
	status, err := e.synth.CheckLanguage(ctx, e.locale)
	if err != nil {
		return Failed, fmt.Errorf("speech: check language %s: %w", e.locale, err)
	}
	if status != tts.LanguageAvailable {
		return Failed, fmt.Errorf("%w: %s (%s)", ErrUnsupportedLocale, e.locale, status)
	}
	return Ready, nil
}

// Announce ставит текст в конец очереди вывода и сразу возвращается.
// Текущее воспроизведение не прерывается. Допустим только в состоянии Ready.
func (e *Engine) Announce(text string) error {
	if e.State() != Ready {
		return ErrNotReady
	}
	req := tts.Request{ID: RequestID(text), Text: text}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrShutdown
	}
	e.pending = append(e.pending, req)
	e.mu.Unlock()

	select {
	case e.notify <- struct{}{}:
	default:
	}
	e.logger.Infow("Speaking", "id", req.ID, "text", text)
	return nil
}

// Stop прерывает текущий вывод и отбрасывает очередь. Состояние движка не меняется.
func (e *Engine) Stop() {
	e.mu.Lock()
	dropped := len(e.pending)
	clear(e.pending)
	e.pending = nil
	if e.current != nil {
		e.current()
	}
	e.mu.Unlock()
	e.logger.Debugw("TTS output stopped", "dropped", dropped)
}

// Shutdown останавливает вывод и освобождает синтезатор. Идемпотентен, допустим в любом состоянии.
func (e *Engine) Shutdown() {
	e.shutdownOnce.Do(func() {
		e.mu.Lock()
		e.closed = true
		clear(e.pending)
		e.pending = nil
		if e.current != nil {
			e.current()
		}
		initDone, running := e.initDone, e.running
		e.mu.Unlock()

		e.cancel(ErrShutdown)
		if running {
			<-e.done
		}
		if initDone {
			if err := e.synth.Close(); err != nil {
				e.logger.Warnw("Failed to close synthesizer", "error", err)
			}
		}
		e.logger.Infow("TTS engine shut down")
	})
}

func (e *Engine) run() {
	defer close(e.done)
	for {
		select {
		case <-e.ctx.Done():
			return
		case <-e.notify:
		}
		for {
			req, ctx, cancel, ok := e.next()
			if !ok {
				break
			}
			e.speak(ctx, req)
			cancel()
			e.mu.Lock()
			e.current = nil
			e.mu.Unlock()
		}
	}
}

func (e *Engine) next() (tts.Request, context.Context, context.CancelFunc, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || len(e.pending) == 0 {
		return tts.Request{}, nil, nil, false
	}
	req := e.pending[0]
	e.pending[0] = tts.Request{}
	e.pending = e.pending[1:]
	ctx, cancel := context.WithCancel(e.ctx)
	e.current = cancel
	return req, ctx, cancel, true
}

func (e *Engine) speak(ctx context.Context, req tts.Request) {
	if e.chime != nil {
		if err := e.chime.PlayChime(ctx); err != nil {
			e.logger.Debugw("Chime failed", "error", err)
		}
	}
	started := time.Now()
	if err := e.synth.Synthesize(ctx, req); err != nil {
		if ctx.Err() != nil {
			e.logger.Debugw("TTS request interrupted", "id", req.ID)
			return
		}
		e.logger.Warnw("TTS request failed", "id", req.ID, "error", err)
		return
	}
	e.logger.Debugw("TTS request completed", "id", req.ID, "took", time.Since(started).String())
}

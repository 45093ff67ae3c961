package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"NotifyReader/internal/metrics"
	"NotifyReader/internal/service/capture"
	"NotifyReader/internal/service/events"
	"NotifyReader/internal/service/queue"
	"NotifyReader/internal/service/speech"
	"NotifyReader/internal/service/tts"

	"go.uber.org/zap"
)

// Ensure interface compliance
var _ events.Listener = (*Orchestrator)(nil)

type Option func(*Orchestrator)

// WithQueueLimit ограничивает очередь; 0 — без ограничения.
func WithQueueLimit(n int) Option {
	return func(o *Orchestrator) { o.queueLimit = n }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithEngineOptions передаёт опции движку речи (локаль, звук перед озвучиванием).
func WithEngineOptions(opts ...speech.Option) Option {
	return func(o *Orchestrator) { o.engineOpts = append(o.engineOpts, opts...) }
}

func WithShutdownTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.shutdownTimeout = d
		}
	}
}

// Orchestrator связывает источники уведомлений, очередь и движок речи.
// Очередь и состояние движка меняются под одной блокировкой mu: проверка готовности вместе с
// Push, а также переход в Ready вместе с DrainAll выполняются атомарно, поэтому сообщение не
// может застрять в очереди между проверкой и сменой состояния.
type Orchestrator struct {
	mu      sync.Mutex
	queue   *queue.Queue
	engine  *speech.Engine
	sources []events.Source
	logger  *zap.SugaredLogger
	metrics *metrics.Metrics

	queueLimit      int
	engineOpts      []speech.Option
	shutdownTimeout time.Duration
}

func New(synth tts.Synthesizer, logger *zap.SugaredLogger, opts ...Option) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	o := &Orchestrator{logger: logger, shutdownTimeout: 5 * time.Second}
	for _, opt := range opts {
		opt(o)
	}
	o.queue = queue.NewLimited(o.queueLimit)
	o.engine = speech.New(synth, logger, append(o.engineOpts, speech.WithLocker(&o.mu))...)
	return o
}

// AddSource регистрирует источник; вызывать до Start.
func (o *Orchestrator) AddSource(s events.Source) {
	o.sources = append(o.sources, s)
}

func (o *Orchestrator) Engine() *speech.Engine { return o.engine }

// Pending — число сообщений, ожидающих готовности движка.
func (o *Orchestrator) Pending() int { return o.queue.Len() }

// Start запускает инициализацию движка и все источники.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.engine.Initialize(ctx, o.onEngineInit)
	for _, s := range o.sources {
		if err := s.Start(ctx); err != nil {
			return fmt.Errorf("start source %s: %w", s.Name(), err)
		}
		o.logger.Infow("Notification source started", "source", s.Name())
	}
	return nil
}

// Run запускает обработку и блокируется до отмены контекста, затем останавливает источники и движок.
func (o *Orchestrator) Run(ctx context.Context) error {
	if err := o.Start(ctx); err != nil {
		o.stop(ctx)
		return err
	}
	<-ctx.Done()
	o.logger.Infow("Shutting down...")
	o.stop(ctx)
	return context.Cause(ctx)
}

func (o *Orchestrator) stop(parent context.Context) {
	ctx, cancel := context.WithTimeoutCause(context.WithoutCancel(parent), o.shutdownTimeout, errors.New("shutdown timeout"))
	defer cancel()
	o.Close(ctx)
}

// Close останавливает источники и движок речи.
func (o *Orchestrator) Close(ctx context.Context) {
	for _, s := range o.sources {
		if err := s.Stop(ctx); err != nil {
			o.logger.Warnw("Failed to stop notification source", "source", s.Name(), "error", err)
		}
	}
	o.engine.Shutdown()
}

// OnNotificationPosted ставит живое уведомление в очередь и, если движок готов, сразу озвучивает.
func (o *Orchestrator) OnNotificationPosted(n events.Notification) {
	msg := capture.Live(n)
	o.logger.Debugw("Notification received", "package", n.PackageID, "message", msg.Text)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.pushLocked(msg, metrics.ProducerLive)
	if o.engine.State() == speech.Ready {
		o.drainLocked()
		return
	}
	o.logger.Debugw("TTS not ready, message queued", "pending", o.queue.Len())
}

func (o *Orchestrator) OnNotificationRemoved(n events.Notification) {
	o.logger.Infow("Notification removed", "package", n.PackageID, "key", n.Key)
}

// OnListenerConnected ставит в очередь все активные уведомления одним блоком, в порядке хоста.
func (o *Orchestrator) OnListenerConnected(ctx context.Context, snap events.Snapshotter) {
	o.logger.Infow("Notification listener connected")
	items, err := snap.ActiveNotifications(ctx)
	if err != nil {
		o.logger.Warnw("Failed to load active notifications", "error", err)
		return
	}
	msgs := make([]queue.Message, 0, len(items))
	for _, n := range items {
		msgs = append(msgs, capture.Snapshot(n))
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	for _, m := range msgs {
		o.logger.Debugw("Active notification", "message", m.Text)
		o.pushLocked(m, metrics.ProducerSnapshot)
	}
	if o.engine.State() == speech.Ready {
		o.drainLocked()
	}
}

// onEngineInit вызывается движком под o.mu сразу после смены состояния.
func (o *Orchestrator) onEngineInit(state speech.State, err error) {
	o.metrics.EngineState(int(state))
	if state != speech.Ready {
		o.logger.Warnw("Notifications will not be spoken", "pending", o.queue.Len(), "error", err)
		return
	}
	o.drainLocked()
}

func (o *Orchestrator) pushLocked(msg queue.Message, producer string) {
	if o.queue.Push(msg) {
		o.metrics.Dropped()
		o.logger.Warnw("Queue limit reached, oldest message dropped", "limit", o.queueLimit)
	}
	o.metrics.Pushed(producer)
	o.metrics.QueueDepth(o.queue.Len())
}

func (o *Orchestrator) drainLocked() {
	msgs := o.queue.DrainAll()
	o.metrics.QueueDepth(0)
	if len(msgs) == 0 {
		return
	}
	o.logger.Debugw("Draining queue", "count", len(msgs))
	for _, m := range msgs {
		if err := o.engine.Announce(m.Text); err != nil {
			o.logger.Warnw("Announce failed", "error", err)
			continue
		}
		o.metrics.Announced()
	}
}

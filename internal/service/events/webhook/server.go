// Package webhook принимает уведомления по HTTP (например, от приложения-пересыльщика на телефоне).
package webhook

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"NotifyReader/internal/config"
	"NotifyReader/internal/metrics"
	"NotifyReader/internal/service/events"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const maxBodyBytes = 64 << 10

// Ensure interface compliance
var _ events.Source = (*Server)(nil)

type Option func(*Server)

// Silencer прерывает текущую речь и сбрасывает ожидающие фразы.
type Silencer interface {
	Stop()
}

// WithMetrics публикует /metrics на том же адресе.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithSilencer включает POST /speech/stop.
func WithSilencer(sp Silencer) Option {
	return func(s *Server) { s.speech = sp }
}

type Server struct {
	cfg      config.WebhookConfig
	listener events.Listener
	active   *events.ActiveSet
	metrics  *metrics.Metrics
	speech   Silencer
	logger   *zap.SugaredLogger
	running  atomic.Bool

	mu      sync.Mutex
	addr    string
	srv     *http.Server
	unwatch func() bool
}

func New(cfg config.WebhookConfig, l events.Listener, logger *zap.SugaredLogger, opts ...Option) *Server {
	if cfg.BindAddr == "" {
		cfg.BindAddr = "127.0.0.1:3000"
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	s := &Server{cfg: cfg, listener: l, active: events.NewActiveSet(), logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Name() string { return "webhook" }

// Handler возвращает маршрутизатор сервера; пригоден для httptest.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok")
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/notifications", func(r chi.Router) {
		r.Use(s.auth)
		r.Post("/", s.handlePosted)
		r.Get("/active", s.handleActive)
		r.Post("/removed", s.handleRemovedBody)
		r.Delete("/{key}", s.handleRemovedKey)
	})
	if s.speech != nil {
		r.With(s.auth).Post("/speech/stop", s.handleStopSpeech)
	}
	return r
}

// Start открывает порт синхронно, чтобы ошибка адреса вернулась вызывающему,
// сообщает слушателю о подключении и обслуживает запросы в фоне.
// После Stop сервер можно запустить снова: каждый Start создаёт новый http.Server.
func (s *Server) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return nil
	}
	// Stop, пришедший во время запуска, дождётся s.mu и увидит уже созданный сервер.
	s.mu.Lock()
	ln, err := net.Listen("tcp", s.cfg.BindAddr)
	if err != nil {
		s.running.Store(false)
		s.mu.Unlock()
		return err
	}
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	s.addr = ln.Addr().String()
	s.srv = srv
	s.unwatch = context.AfterFunc(ctx, func() { _ = s.Stop(context.WithoutCancel(ctx)) })
	s.mu.Unlock()

	// Снимок отдаётся до того, как сервер начнёт принимать живые события.
	s.listener.OnListenerConnected(ctx, s.active)

	go func() {
		s.logger.Infow("Webhook source listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) && err != nil {
			s.logger.Errorw("Webhook source stopped with error", "error", err)
		} else {
			s.logger.Infow("Webhook source stopped")
		}
	}()
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	s.mu.Lock()
	srv, unwatch := s.srv, s.unwatch
	s.srv, s.unwatch = nil, nil
	s.mu.Unlock()
	if unwatch != nil {
		unwatch()
	}
	if srv == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeoutCause(ctx, 5*time.Second, errors.New("webhook shutdown timeout"))
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warnw("graceful shutdown error", "error", err)
		return srv.Close()
	}
	return nil
}

// Addr возвращает фактический адрес после Start (полезно при порте :0).
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.addr != "" {
		return s.addr
	}
	return s.cfg.BindAddr
}

func (s *Server) auth(next http.Handler) http.Handler {
	token := strings.TrimSpace(s.cfg.AuthToken)
	if token == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			w.Header().Set("WWW-Authenticate", "Bearer")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handlePosted(w http.ResponseWriter, r *http.Request) {
	n, ok := s.decode(w, r)
	if !ok {
		return
	}
	if n.PostedAt.IsZero() {
		n.PostedAt = time.Now()
	}
	n = s.active.Put(n)
	s.logger.Debugw("Notification received", "remote", r.RemoteAddr, "key", n.Key, "package", n.PackageID)
	s.listener.OnNotificationPosted(n)

	writeJSON(w, http.StatusAccepted, map[string]string{"key": n.Key})
}

func (s *Server) handleRemovedKey(w http.ResponseWriter, r *http.Request) {
	n, ok := s.active.Remove(chi.URLParam(r, "key"))
	if !ok {
		http.Error(w, "notification not found", http.StatusNotFound)
		return
	}
	s.listener.OnNotificationRemoved(n)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemovedBody(w http.ResponseWriter, r *http.Request) {
	n, ok := s.decode(w, r)
	if !ok {
		return
	}
	if stored, found := s.active.Remove(n.Key); found {
		n = stored
	}
	s.listener.OnNotificationRemoved(n)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleActive(w http.ResponseWriter, _ *http.Request) {
	list := s.active.List()
	out := make([]events.Payload, 0, len(list))
	for _, n := range list {
		out = append(out, events.ToPayload(n))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleStopSpeech(w http.ResponseWriter, r *http.Request) {
	s.speech.Stop()
	s.logger.Infow("Speech stopped on request", "remote", r.RemoteAddr)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request) (events.Notification, bool) {
	defer r.Body.Close()
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusRequestEntityTooLarge)
		return events.Notification{}, false
	}
	n, err := events.Decode(body)
	if err != nil {
		s.logger.Warnw("Invalid notification payload", "remote", r.RemoteAddr, "bytes", len(body), "error", err)
		http.Error(w, "invalid notification payload", http.StatusBadRequest)
		return events.Notification{}, false
	}
	return n, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

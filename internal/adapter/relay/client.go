// Package relay получает уведомления от WebSocket-ретранслятора.
// Каждое успешное подключение считается (пере)подключением слушателя: первый кадр может
// содержать снимок активных уведомлений {"type":"snapshot","active":[...]},
// дальше идут кадры {"type":"posted"|"removed", ...}.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"NotifyReader/internal/config"
	"NotifyReader/internal/service/events"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Типы кадров ретранслятора.
const (
	FrameSnapshot = "snapshot"
	FramePosted   = "posted"
	FrameRemoved  = "removed"
)

// Ensure interface compliance
var _ events.Source = (*Client)(nil)

type Client struct {
	cfg      config.RelayConfig
	listener events.Listener
	logger   *zap.SugaredLogger
	limiter  *rate.Limiter
	dialer   websocket.Dialer

	running atomic.Bool
	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
}

func New(cfg config.RelayConfig, l events.Listener, logger *zap.SugaredLogger) *Client {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	interval := cfg.ReconnectInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Client{
		cfg:      cfg,
		listener: l,
		logger:   logger,
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
		dialer: websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: 15 * time.Second,
		},
	}
}

func (c *Client) Name() string { return "relay" }

// Start запускает цикл подключения в фоне и немедленно возвращается.
func (c *Client) Start(ctx context.Context) error {
	if strings.TrimSpace(c.cfg.URL) == "" {
		return errors.New("relay: empty URL")
	}
	if !c.running.CompareAndSwap(false, true) {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.mu.Lock()
	c.cancel, c.done = cancel, done
	c.mu.Unlock()

	go func() {
		defer close(done)
		c.loop(ctx)
	}()
	return nil
}

func (c *Client) Stop(ctx context.Context) error {
	if !c.running.CompareAndSwap(true, false) {
		return nil
	}
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.mu.Unlock()
	cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return context.Cause(ctx)
	}
}

func (c *Client) loop(ctx context.Context) {
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return
		}
		err := c.session(ctx)
		if ctx.Err() != nil {
			return
		}
		c.logger.Warnw("Relay connection lost", "url", c.cfg.URL, "error", err)
	}
}

// session обслуживает одно подключение до его разрыва.
func (c *Client) session(ctx context.Context) error {
	header := http.Header{}
	if t := strings.TrimSpace(c.cfg.AuthToken); t != "" {
		header.Set("Authorization", "Bearer "+t)
	}
	conn, resp, err := c.dialer.DialContext(ctx, c.cfg.URL, header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("relay: dial %s: HTTP %d: %w", c.cfg.URL, resp.StatusCode, err)
		}
		return fmt.Errorf("relay: dial %s: %w", c.cfg.URL, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	c.logger.Infow("Relay connected", "url", c.cfg.URL)

	connected := false
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		f, err := parseFrame(data)
		if err != nil {
			c.logger.Warnw("Invalid relay frame", "bytes", len(data), "error", err)
			continue
		}

		if !connected {
			connected = true
			var snap []events.Notification
			if f.Type == FrameSnapshot {
				snap = f.Active
			}
			c.listener.OnListenerConnected(ctx, events.Static(snap))
			if f.Type == FrameSnapshot {
				continue
			}
		}

		switch f.Type {
		case FramePosted:
			c.listener.OnNotificationPosted(f.Notification)
		case FrameRemoved:
			c.listener.OnNotificationRemoved(f.Notification)
		case FrameSnapshot:
			c.logger.Debugw("Relay snapshot ignored after first frame", "count", len(f.Active))
		default:
			c.logger.Debugw("Unknown relay frame", "type", f.Type)
		}
	}
}

type frame struct {
	Type         string
	Notification events.Notification
	Active       []events.Notification
}

// parseFrame разбирает кадр. Уведомление берётся из поля "notification", а если его нет,
// из самого кадра.
func parseFrame(data []byte) (frame, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return frame{}, err
	}
	f := frame{}
	f.Type, _ = m["type"].(string)
	f.Type = strings.ToLower(strings.TrimSpace(f.Type))
	switch f.Type {
	case FrameSnapshot:
		items, _ := m["active"].([]any)
		f.Active = make([]events.Notification, 0, len(items))
		for _, it := range items {
			f.Active = append(f.Active, events.FromMap(events.AsMap(it)))
		}
	case FramePosted, FrameRemoved:
		src := m
		if nm := events.AsMap(m["notification"]); len(nm) > 0 {
			src = nm
		}
		f.Notification = events.FromMap(src)
	case "":
		return frame{}, errors.New("relay: frame without type")
	}
	return f, nil
}

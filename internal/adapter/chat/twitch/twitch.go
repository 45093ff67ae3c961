package twitch

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"NotifyReader/internal/config"
	"NotifyReader/internal/service/events"

	twitchirc "github.com/gempir/go-twitch-irc/v4"
	"go.uber.org/zap"
)

var urlRe = regexp.MustCompile(`https?://[^\s]+`)

// Ensure interface compliance
var _ events.Source = (*Source)(nil)

// Source превращает сообщения чата Twitch в уведомления: автор — заголовок, текст — тело.
// Базовые реконнекты обеспечиваются клиентом; при каждом подключении слушатель получает пустой снимок.
type Source struct {
	username string
	token    string
	channel  string
	listener events.Listener
	logger   *zap.SugaredLogger
	ircAddr  string // пусто — сервер Twitch по TLS

	running atomic.Bool
	mu      sync.Mutex
	client  *twitchirc.Client
	errCh   chan error
	unwatch func() bool
}

func New(cfg config.TwitchConfig, l events.Listener, logger *zap.SugaredLogger) *Source {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	token := strings.TrimSpace(cfg.OAuthToken)
	if token != "" && !strings.HasPrefix(token, "oauth:") {
		token = "oauth:" + token
	}
	return &Source{
		username: strings.ToLower(strings.TrimSpace(cfg.Username)),
		token:    token,
		channel:  normalizeChannel(cfg.Channel),
		listener: l,
		logger:   logger,
	}
}

func (s *Source) Name() string { return "twitch" }

func (s *Source) Start(ctx context.Context) error {
	if s.username == "" || s.token == "" || s.channel == "" {
		return errors.New("twitch: missing username, token or channel")
	}
	if !s.running.CompareAndSwap(false, true) {
		return nil
	}

	client := twitchirc.NewClient(s.username, s.token)
	if s.ircAddr != "" {
		client.IrcAddress, client.TLS = s.ircAddr, false
	}

	client.OnConnect(func() {
		s.logger.Infow("Twitch connected", "as", s.username, "join", s.channel)
		client.Join(s.channel)
		// В чате нет активных уведомлений: снимок всегда пуст.
		s.listener.OnListenerConnected(ctx, events.Static(nil))
	})

	client.OnPrivateMessage(func(msg twitchirc.PrivateMessage) {
		n, ok := toNotification(s.channel, msg)
		if !ok {
			return
		}
		s.listener.OnNotificationPosted(n)
	})

	client.OnClearMessage(func(msg twitchirc.ClearMessage) {
		s.listener.OnNotificationRemoved(events.Notification{
			Key:       msg.TargetMsgID,
			PackageID: packageID(s.channel),
		})
	})

	errCh := make(chan error, 1)
	s.mu.Lock()
	s.client, s.errCh = client, errCh
	s.unwatch = context.AfterFunc(ctx, func() { _ = s.Stop(context.WithoutCancel(ctx)) })
	s.mu.Unlock()

	go func() {
		err := client.Connect()
		if err != nil && !errors.Is(err, twitchirc.ErrClientDisconnected) {
			s.logger.Errorw("twitch connect error", "error", err)
		}
		errCh <- err
	}()
	return nil
}

func (s *Source) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	s.mu.Lock()
	client, errCh, unwatch := s.client, s.errCh, s.unwatch
	s.unwatch = nil
	s.mu.Unlock()
	if unwatch != nil {
		unwatch()
	}

	if client == nil {
		return nil
	}
	_ = client.Disconnect()
	// Подождём чуть-чуть корректного завершения
	select {
	case <-errCh:
	case <-time.After(2 * time.Second):
	case <-ctx.Done():
		return context.Cause(ctx)
	}
	return nil
}

// toNotification строит уведомление из сообщения чата. URL вырезаются;
// сообщение без автора или без текста после очистки пропускается.
func toNotification(channel string, msg twitchirc.PrivateMessage) (events.Notification, bool) {
	user := strings.TrimSpace(msg.User.DisplayName)
	if user == "" {
		user = strings.TrimSpace(msg.User.Name)
	}
	text := cleanText(msg.Message)
	if user == "" || text == "" {
		return events.Notification{}, false
	}
	posted := msg.Time
	if posted.IsZero() {
		posted = time.Now()
	}
	return events.Notification{
		Key:       msg.ID,
		PackageID: packageID(channel),
		Title:     &user,
		Body:      &text,
		PostedAt:  posted,
	}, true
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(urlRe.ReplaceAllString(s, "")), " ")
}

func normalizeChannel(c string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(c), "#"))
}

func packageID(channel string) string { return "twitch:" + channel }

package events

import (
	"context"
	"time"
)

// Notification — уведомление хоста. Title и Body равны nil, если хост их не передал.
type Notification struct {
	Key       string
	PackageID string
	Title     *string
	Body      *string
	PostedAt  time.Time
}

// Snapshotter перечисляет активные на момент вызова уведомления в порядке хоста.
type Snapshotter interface {
	ActiveNotifications(ctx context.Context) ([]Notification, error)
}

// SnapshotFunc позволяет использовать функцию как Snapshotter.
type SnapshotFunc func(ctx context.Context) ([]Notification, error)

func (f SnapshotFunc) ActiveNotifications(ctx context.Context) ([]Notification, error) {
	return f(ctx)
}

// Static — снимок из заранее известного списка.
func Static(items []Notification) Snapshotter {
	return SnapshotFunc(func(context.Context) ([]Notification, error) { return items, nil })
}

// Listener получает события от источника уведомлений.
// OnListenerConnected вызывается при каждом (пере)подключении до первого живого события этого подключения.
type Listener interface {
	OnListenerConnected(ctx context.Context, snap Snapshotter)
	OnNotificationPosted(n Notification)
	OnNotificationRemoved(n Notification)
}

// Source описывает источник уведомлений (HTTP, WebSocket, чат и т.п.).
type Source interface {
	// Start запускает источник в отдельной горутине и немедленно возвращается.
	// Должен реагировать на отмену контекста и завершать работу.
	Start(ctx context.Context) error

	// Stop инициирует graceful shutdown с использованием контекста.
	Stop(ctx context.Context) error

	Name() string
}

package events

import (
	"context"
	"slices"
	"strconv"
	"sync"
)

// ActiveSet — потокобезопасный набор активных уведомлений с сохранением порядка появления.
// Повторная публикация с тем же ключом заменяет уведомление на прежнем месте.
type ActiveSet struct {
	mu    sync.Mutex
	order []string
	items map[string]Notification
	seq   uint64
}

func NewActiveSet() *ActiveSet {
	return &ActiveSet{items: map[string]Notification{}}
}

// Put добавляет уведомление и возвращает его с заполненным Key.
func (a *ActiveSet) Put(n Notification) Notification {
	a.mu.Lock()
	defer a.mu.Unlock()
	if n.Key == "" {
		a.seq++
		n.Key = n.PackageID + "#" + strconv.FormatUint(a.seq, 10)
	}
	if _, ok := a.items[n.Key]; !ok {
		a.order = append(a.order, n.Key)
	}
	a.items[n.Key] = n
	return n
}

// Remove убирает уведомление по ключу.
func (a *ActiveSet) Remove(key string) (Notification, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	n, ok := a.items[key]
	if !ok {
		return Notification{}, false
	}
	delete(a.items, key)
	if i := slices.Index(a.order, key); i >= 0 {
		a.order = slices.Delete(a.order, i, i+1)
	}
	return n, true
}

func (a *ActiveSet) List() []Notification {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Notification, 0, len(a.order))
	for _, k := range a.order {
		out = append(out, a.items[k])
	}
	return out
}

func (a *ActiveSet) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.order)
}

// ActiveNotifications реализует Snapshotter.
func (a *ActiveSet) ActiveNotifications(context.Context) ([]Notification, error) {
	return a.List(), nil
}

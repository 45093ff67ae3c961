// Package capture превращает уведомления хоста в сообщения очереди.
package capture

import (
	"fmt"

	"NotifyReader/internal/service/events"
	"NotifyReader/internal/service/queue"
)

// Подстановки для полей, которые хост не передал.
const (
	NoTitle = "No Title"
	NoText  = "No Text"
)

// Live формирует сообщение для живого события.
func Live(n events.Notification) queue.Message {
	title, body := Fields(n)
	return queue.Message{Text: fmt.Sprintf("New notification from %s: %s", title, body)}
}

// Snapshot формирует сообщение для уведомления из снимка активных.
func Snapshot(n events.Notification) queue.Message {
	title, body := Fields(n)
	return queue.Message{Text: fmt.Sprintf("Active notification - Title: %s, Text: %s", title, body)}
}

// Fields возвращает заголовок и текст с подстановками вместо отсутствующих значений.
// Пустая строка — переданное значение, она не заменяется.
func Fields(n events.Notification) (title, body string) {
	title, body = NoTitle, NoText
	if n.Title != nil {
		title = *n.Title
	}
	if n.Body != nil {
		body = *n.Body
	}
	return title, body
}

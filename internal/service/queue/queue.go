package queue

import "sync"

// Message — готовый к озвучиванию текст уведомления. После создания не изменяется.
type Message struct {
	Text string
}

// Queue — потокобезопасная FIFO-очередь сообщений между источниками уведомлений и движком речи.
// Порядок выдачи совпадает с порядком Push от всех производителей.
type Queue struct {
	limit    int
	messages []Message
	mu       sync.Mutex
}

// New создаёт очередь без ограничения размера.
func New() *Queue { return &Queue{} }

// NewLimited создаёт очередь с ограничением размера; при переполнении удаляется самое старое сообщение.
// limit <= 0 — без ограничения.
func NewLimited(limit int) *Queue {
	if limit < 0 {
		limit = 0
	}
	return &Queue{limit: limit}
}

// Push добавляет сообщение в хвост. Возвращает true, если ради него было вытеснено самое старое.
func (q *Queue) Push(m Message) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	evicted := false
	if q.limit > 0 && len(q.messages) == q.limit {
		copy(q.messages, q.messages[1:])
		q.messages = q.messages[:q.limit-1]
		evicted = true
	}
	q.messages = append(q.messages, m)
	return evicted
}

// DrainAll атомарно забирает всё содержимое в порядке добавления и очищает очередь.
func (q *Queue) DrainAll() []Message {
	q.mu.Lock()
	msgs := make([]Message, len(q.messages))
	copy(msgs, q.messages)
	clear(q.messages)
	q.messages = q.messages[:0]
	q.mu.Unlock()
	return msgs
}

func (q *Queue) Len() int {
	q.mu.Lock()
	l := len(q.messages)
	q.mu.Unlock()
	return l
}

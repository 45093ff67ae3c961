package queue_test

import (
	"fmt"
	"sort"
	"sync"
	"testing"

	"NotifyReader/internal/service/queue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func texts(msgs []queue.Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Text)
	}
	return out
}

func TestQueue_DrainAllKeepsPushOrder(t *testing.T) {
	q := queue.New()
	for _, s := range []string{"A", "B", "C"} {
		assert.False(t, q.Push(queue.Message{Text: s}))
	}
	require.Equal(t, 3, q.Len())

	assert.Equal(t, []string{"A", "B", "C"}, texts(q.DrainAll()))
	assert.Equal(t, 0, q.Len())
	assert.Empty(t, q.DrainAll())
}

func TestQueue_PushAfterDrain(t *testing.T) {
	q := queue.New()
	q.Push(queue.Message{Text: "A"})
	first := q.DrainAll()
	q.Push(queue.Message{Text: "B"})

	assert.Equal(t, []string{"A"}, texts(first))
	assert.Equal(t, []string{"B"}, texts(q.DrainAll()))
}

func TestQueue_LimitedEvictsOldest(t *testing.T) {
	q := queue.NewLimited(2)
	assert.False(t, q.Push(queue.Message{Text: "A"}))
	assert.False(t, q.Push(queue.Message{Text: "B"}))
	assert.True(t, q.Push(queue.Message{Text: "C"}))

	assert.Equal(t, []string{"B", "C"}, texts(q.DrainAll()))
}

func TestQueue_ConcurrentPushDrainNoLossNoDuplicate(t *testing.T) {
	q := queue.New()
	const producers, perProducer = 8, 500

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		drained []string
	)
	stop := make(chan struct{})
	drainerDone := make(chan struct{})
	go func() {
		defer close(drainerDone)
		for {
			select {
			case <-stop:
				return
			default:
			}
			got := texts(q.DrainAll())
			mu.Lock()
			drained = append(drained, got...)
			mu.Unlock()
		}
	}()

	for p := range producers {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := range perProducer {
				q.Push(queue.Message{Text: fmt.Sprintf("%d-%04d", p, i)})
			}
		}(p)
	}
	wg.Wait()
	close(stop)
	<-drainerDone
	drained = append(drained, texts(q.DrainAll())...)

	require.Len(t, drained, producers*perProducer)

	// Порядок внутри одного производителя сохраняется.
	last := map[string]string{}
	for _, s := range drained {
		p := s[:1]
		if prev, ok := last[p]; ok {
			assert.Less(t, prev, s)
		}
		last[p] = s
	}

	sorted := append([]string(nil), drained...)
	sort.Strings(sorted)
	for i := 1; i < len(sorted); i++ {
		assert.NotEqual(t, sorted[i-1], sorted[i], "duplicate message")
	}
}

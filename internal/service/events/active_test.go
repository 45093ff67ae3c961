package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func str(s string) *string { return &s }

func keys(ns []Notification) []string {
	out := make([]string, 0, len(ns))
	for _, n := range ns {
		out = append(out, n.Key)
	}
	return out
}

func TestActiveSet_KeepsInsertionOrder(t *testing.T) {
	a := NewActiveSet()
	a.Put(Notification{Key: "1", Title: str("one")})
	a.Put(Notification{Key: "2", Title: str("two")})
	a.Put(Notification{Key: "3", Title: str("three")})

	// Обновление не меняет позицию.
	a.Put(Notification{Key: "1", Title: str("one again")})

	list := a.List()
	assert.Equal(t, []string{"1", "2", "3"}, keys(list))
	assert.Equal(t, "one again", *list[0].Title)

	removed, ok := a.Remove("2")
	require.True(t, ok)
	assert.Equal(t, "two", *removed.Title)
	_, ok = a.Remove("2")
	assert.False(t, ok)

	snap, err := a.ActiveNotifications(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "3"}, keys(snap))
	assert.Equal(t, 2, a.Len())
}

func TestActiveSet_GeneratesKeys(t *testing.T) {
	a := NewActiveSet()
	n1 := a.Put(Notification{PackageID: "com.mail"})
	n2 := a.Put(Notification{PackageID: "com.mail"})

	assert.NotEmpty(t, n1.Key)
	assert.NotEqual(t, n1.Key, n2.Key)
	assert.Equal(t, 2, a.Len())
}

func TestStaticSnapshot(t *testing.T) {
	items := []Notification{{Key: "a"}, {Key: "b"}}
	got, err := Static(items).ActiveNotifications(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys(got))
}

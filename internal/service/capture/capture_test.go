package capture

import (
	"testing"

	"NotifyReader/internal/service/events"

	"github.com/stretchr/testify/assert"
)

func str(s string) *string { return &s }

func TestLive(t *testing.T) {
	tests := []struct {
		name string
		n    events.Notification
		want string
	}{
		{"full", events.Notification{Title: str("Mail"), Body: str("You have 2 new letters")}, "New notification from Mail: You have 2 new letters"},
		{"missing title", events.Notification{Body: str("ping")}, "New notification from No Title: ping"},
		{"missing body", events.Notification{Title: str("Chat")}, "New notification from Chat: No Text"},
		{"missing both", events.Notification{PackageID: "com.example"}, "New notification from No Title: No Text"},
		{"empty is kept", events.Notification{Title: str(""), Body: str("")}, "New notification from : "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Live(tt.n).Text)
		})
	}
}

func TestSnapshot(t *testing.T) {
	assert.Equal(t, "Active notification - Title: Alarm, Text: 07:00",
		Snapshot(events.Notification{Title: str("Alarm"), Body: str("07:00")}).Text)
	assert.Equal(t, "Active notification - Title: No Title, Text: No Text",
		Snapshot(events.Notification{}).Text)
}

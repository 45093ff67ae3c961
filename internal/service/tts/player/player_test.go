package player

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type trackingReader struct {
	io.Reader
	closed bool
}

func (r *trackingReader) Close() error {
	r.closed = true
	return nil
}

func TestPlay_UnsupportedFormatClosesReader(t *testing.T) {
	r := &trackingReader{Reader: strings.NewReader("data")}
	err := New().Play(context.Background(), "oggopus", r)
	require.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.True(t, r.closed)
}

func TestPlay_BrokenWAVReturnsDecodeError(t *testing.T) {
	r := &trackingReader{Reader: strings.NewReader("not a wav file")}
	err := NewWithVolume(-3).Play(context.Background(), "WAV", r)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnsupportedFormat)
	assert.True(t, r.closed)
}

package player

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
)

// ErrUnsupportedFormat возвращается для форматов, которые нельзя проиграть напрямую.
var ErrUnsupportedFormat = errors.New("unsupported format for direct playback; use mp3 or wav")

// Player воспроизводит аудио потоком в зависимости от формата.
// Play блокируется до конца воспроизведения; отмена ctx прерывает звук.
type Player interface {
	Play(ctx context.Context, format string, r io.ReadCloser) error
}

// Default реализует Player и поддерживает mp3 и wav.
type Default struct{ volumeDB float64 }

// New создаёт плеер без изменения громкости (0 dB).
func New() *Default { return &Default{volumeDB: 0} }

// NewWithVolume создаёт плеер с предустановленной громкостью в dB (отрицательные — тише).
func NewWithVolume(db float64) *Default { return &Default{volumeDB: db} }

func (d *Default) Play(ctx context.Context, format string, r io.ReadCloser) error {
	defer r.Close()

	var (
		streamer beep.StreamSeekCloser
		fmtInfo  beep.Format
		err      error
	)
	switch strings.ToLower(format) {
	case "wav":
		streamer, fmtInfo, err = wav.Decode(r)
	case "mp3":
		streamer, fmtInfo, err = mp3.Decode(r)
	default:
		return ErrUnsupportedFormat
	}
	if err != nil {
		return err
	}
	defer streamer.Close()

	if err := speaker.Init(fmtInfo.SampleRate, fmtInfo.SampleRate.N(time.Second/10)); err != nil {
		return err
	}
	vol := &effects.Volume{
		Streamer: streamer,
		Base:     2,
		Volume:   d.volumeDB,
		Silent:   false,
	}
	done := make(chan struct{})
	speaker.Play(beep.Seq(vol, beep.Callback(func() { close(done) })))
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		speaker.Clear()
		return context.Cause(ctx)
	}
}

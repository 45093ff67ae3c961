package notify

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"NotifyReader/internal/service/speech"
	ttsplayer "NotifyReader/internal/service/tts/player"

	"go.uber.org/zap"
)

var _ speech.Chime = (*SoundNotifier)(nil)

// SoundNotifier проигрывает короткий звук перед каждым озвученным уведомлением.
type SoundNotifier struct {
	logger *zap.SugaredLogger
	path   string
	ply    ttsplayer.Player
}

// NewSoundNotifier создаёт нотификатор. Относительный путь сначала ищется рядом с бинарём,
// затем от текущей рабочей директории. Пустой путь — nil: звук выключен.
func NewSoundNotifier(logger *zap.SugaredLogger, path string, ply ttsplayer.Player) *SoundNotifier {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if ply == nil {
		ply = ttsplayer.New()
	}
	return &SoundNotifier{logger: logger, path: resolve(path), ply: ply}
}

func resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	if exe, err := os.Executable(); err == nil {
		cand := filepath.Join(filepath.Dir(exe), p)
		if _, statErr := os.Stat(cand); statErr == nil {
			return cand
		}
	}
	return filepath.FromSlash(p)
}

// Path возвращает итоговый путь к звуковому файлу.
func (n *SoundNotifier) Path() string { return n.path }

// PlayChime проигрывает звук уведомления. Ошибки логируются и возвращаются,
// чтобы вызывающий мог принять решение (например, проигнорировать).
func (n *SoundNotifier) PlayChime(ctx context.Context) error {
	if err := context.Cause(ctx); err != nil {
		return err
	}

	f, err := os.Open(n.path)
	if err != nil {
		n.logger.Warnw("Failed to open notification sound", "path", n.path, "error", err)
		return err
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(n.path), "."))
	if ext == "" {
		ext = "mp3"
	}

	// Play закрывает reader сам.
	if err := n.ply.Play(ctx, ext, f); err != nil {
		n.logger.Warnw("Failed to play notification sound", "path", n.path, "error", err)
		return err
	}
	return nil
}

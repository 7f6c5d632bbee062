package logger

import (
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// Sweep deletes log files in dir strictly older than maxAge. The current
// run's file (keep) is skipped regardless of age. Retention is best-effort:
// every failure is logged and swallowed.
func Sweep(dir string, maxAge time.Duration, keep string) {
	cutoff := time.Now().Add(-maxAge)

	entries, err := os.ReadDir(dir)
	if err != nil {
		zap.L().Warn("log retention skipped", zap.Any("error", err), zap.Any("dir", dir))
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || entry.Name() == keep {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			zap.L().Warn("log retention stat failed", zap.Any("error", err), zap.Any("file", entry.Name()))
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			zap.L().Warn("log retention delete failed", zap.Any("error", err), zap.Any("file", entry.Name()))
			continue
		}
		zap.L().Info("deleted old log file", zap.Any("file", entry.Name()))
	}
}

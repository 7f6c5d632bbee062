package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	writeAttempts = 3
	writeDelay    = 100 * time.Millisecond
)

// Config is the immutable logging configuration for one run. The final log
// path is derived once; nothing mutates it afterwards.
type Config struct {
	BasePath     string
	RunTimestamp time.Time
	Debug        bool
}

// RunFilePath inserts the run timestamp before the extension, so every run
// writes its own file and retention can tell runs apart.
// "Add-AndroidApps.txt" -> "Add-AndroidApps-20260831-141503.txt".
func (c Config) RunFilePath() string {
	ext := filepath.Ext(c.BasePath)
	base := strings.TrimSuffix(c.BasePath, ext)
	return fmt.Sprintf("%s-%s%s", base, c.RunTimestamp.Format("20060102-150405"), ext)
}

// Init builds the global logger: one core echoing to stdout, one appending
// "DD/MM/YYYY HH:MM:SS|<message>" lines to the run's log file. A failed file
// write never reaches the call site.
func Init(cfg Config) error {
	path := cfg.RunFilePath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	encCfg := zapcore.EncoderConfig{
		MessageKey:       "message",
		TimeKey:          "timestamp",
		LevelKey:         zapcore.OmitKey,
		EncodeTime:       encodeRunTime,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: "|",
	}
	enc := zapcore.NewConsoleEncoder(encCfg)

	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	if cfg.Debug {
		level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	fileSink := &retrySyncer{
		out:      file,
		fallback: os.Stderr,
		attempts: writeAttempts,
		delay:    writeDelay,
	}

	core := zapcore.NewTee(
		zapcore.NewCore(enc, zapcore.Lock(os.Stdout), level),
		zapcore.NewCore(enc, fileSink, level),
	)

	zap.ReplaceGlobals(zap.New(core))
	return nil
}

func encodeRunTime(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("02/01/2006 15:04:05"))
}

// retrySyncer retries transient write failures a fixed number of times and
// then dumps the entry to the fallback writer. It reports success either
// way: logging must never abort the pipeline.
type retrySyncer struct {
	out      zapcore.WriteSyncer
	fallback io.Writer
	attempts int
	delay    time.Duration
}

func (s *retrySyncer) Write(p []byte) (int, error) {
	for i := 0; i < s.attempts; i++ {
		n, err := s.out.Write(p)
		if err == nil {
			return n, nil
		}
		time.Sleep(s.delay)
	}
	s.fallback.Write(p)
	return len(p), nil
}

func (s *retrySyncer) Sync() error {
	return s.out.Sync()
}

func WithTraceId(ctx context.Context) zap.Field {
	return zap.String("trace_id", trace.SpanFromContext(ctx).SpanContext().TraceID().String())
}

func WithRecord(index int, name string) zap.Field {
	return zap.String("record", fmt.Sprintf("%d:%s", index, name))
}

package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/SimoHua/symphonyx/internal/config"

	"gopkg.in/natefinch/lumberjack.v2"
)

func Init(cfg config.LogConfig) {
	slog.SetDefault(New(cfg))
	Info("logger initialized", "level", cfg.Level, "file", cfg.File)
}

// New builds the JSON logger without installing it as the default.
func New(cfg config.LogConfig) *slog.Logger {
	var writers []io.Writer
	if cfg.Console {
		writers = append(writers, os.Stdout)
	}
	if cfg.File != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			LocalTime:  true,
		})
	}
	if len(writers) == 0 {
		writers = append(writers, os.Stdout)
	}

	h := slog.NewJSONHandler(io.MultiWriter(writers...), &slog.HandlerOptions{Level: parseLevel(cfg.Level)})
	return slog.New(h)
}

func Info(msg string, args ...any)  { slog.Info(msg, args...) }
func Warn(msg string, args ...any)  { slog.Warn(msg, args...) }
func Error(msg string, args ...any) { slog.Error(msg, args...) }
func Debug(msg string, args ...any) { slog.Debug(msg, args...) }

// With returns the default logger scoped with args, e.g. a component name.
func With(args ...any) *slog.Logger { return slog.Default().With(args...) }

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

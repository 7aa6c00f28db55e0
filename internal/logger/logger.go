package logger

import (
	"log/slog"
	"os"

	"render-service/internal/config"
)

var Logger *slog.Logger

// InitLogger initializes structured logging. Verbose logging drops the level
// to debug, which also enables the per-request page diagnostics.
func InitLogger(cfg *config.Config) {
	level := slog.LevelInfo
	if cfg.VerboseLogging {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.GinMode == "debug",
	}

	Logger = slog.New(slog.NewJSONHandler(os.Stdout, opts))
	Logger.Info("structured logging initialized", "level", level.String())
}

// Get returns the configured logger, falling back to slog's default so that
// library code never has to nil-check.
func Get() *slog.Logger {
	if Logger == nil {
		return slog.Default()
	}
	return Logger
}

func Info(msg string, args ...any) {
	Get().Info(msg, args...)
}

func Error(msg string, args ...any) {
	Get().Error(msg, args...)
}

func Debug(msg string, args ...any) {
	Get().Debug(msg, args...)
}

func Warn(msg string, args ...any) {
	Get().Warn(msg, args...)
}

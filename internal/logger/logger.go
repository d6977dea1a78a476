package logger

import (
	"log/slog"
	"os"
	"strings"

	"storefront-client/internal/config"
)

// New builds the process logger from config. Format "text" is meant for
// local development, anything else gets JSON.
func New(service string, cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Log.Level)}

	var h slog.Handler
	if strings.EqualFold(cfg.Log.Format, "text") {
		h = slog.NewTextHandler(os.Stderr, opts)
	} else {
		h = slog.NewJSONHandler(os.Stderr, opts)
	}

	base := slog.New(h).With(
		"service", service,
		"env", cfg.Environment.Name,
	)

	slog.SetDefault(base)
	return base
}

func parseLevel(lvl string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

package logger

import (
	"log/slog"
	"strings"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Config describes where and how logs are written.
type Config struct {
	// Level is one of debug, info, warn, error. Empty or unknown means info.
	Level      string `env:"LOG_LEVEL"`
	Format     string `env:"LOG_FORMAT" envDefault:"json"`
	File       string `env:"LOG_FILE"`
	MaxSizeMB  int    `env:"LOG_FILE_MAX_SIZE_MB" envDefault:"100"`
	MaxBackups int    `env:"LOG_FILE_MAX_BACKUPS" envDefault:"50"`
	MaxAgeDays int    `env:"LOG_FILE_MAX_AGE_DAYS" envDefault:"28"`
	Compress   bool   `env:"LOG_FILE_COMPRESS" envDefault:"true"`
	Sentry     SentryConfig
}

// ParseLevel converts a level name to slog.Level, falling back to info.
func ParseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return l
}

// ValidLevel reports whether s names a known level.
func ValidLevel(s string) bool {
	var l slog.Level
	return l.UnmarshalText([]byte(strings.TrimSpace(s))) == nil
}

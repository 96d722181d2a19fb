package telemetry

import (
	"log/slog"
	"os"
	"strings"
)

// LevelCritical — уровень выше ERROR. У slog такого нет.
const LevelCritical = slog.Level(12)

// Имена уровней в строках лога.
const (
	LevelNameDebug    = "DEBUG"
	LevelNameInfo     = "INFO"
	LevelNameWarning  = "WARNING"
	LevelNameError    = "ERROR"
	LevelNameCritical = "CRITICAL"
)

// ParseLevel переводит имя уровня в slog.Level.
// Возможные значения: DEBUG, INFO, WARN, WARNING, ERROR, CRITICAL.
// По умолчанию: INFO
func ParseLevel(name string) slog.Level {
	switch strings.ToUpper(name) {
	case LevelNameDebug:
		return slog.LevelDebug
	case "WARN", LevelNameWarning:
		return slog.LevelWarn
	case LevelNameError:
		return slog.LevelError
	case LevelNameCritical:
		return LevelCritical
	default:
		return slog.LevelInfo
	}
}

// LevelName возвращает имя уровня для строки лога.
func LevelName(level slog.Level) string {
	switch {
	case level < slog.LevelInfo:
		return LevelNameDebug
	case level < slog.LevelWarn:
		return LevelNameInfo
	case level < slog.LevelError:
		return LevelNameWarning
	case level < LevelCritical:
		return LevelNameError
	default:
		return LevelNameCritical
	}
}

// LogLevel определяет уровень логирования из переменной окружения LOG_LEVEL.
func LogLevel() slog.Level {
	return ParseLevel(os.Getenv("LOG_LEVEL"))
}

// SetupLogger инициализирует логгер процесса.
//
// Формат вывода определяется переменной LOG_FORMAT:
//   - "json" (по умолчанию) — JSON формат для production
//   - "text" — формат slog key=value
//   - "line" — формат строк бота (как в тестах)
func SetupLogger(name string) *slog.Logger {
	level := LogLevel()

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var handler slog.Handler
	switch os.Getenv("LOG_FORMAT") {
	case "text":
		handler = slog.NewTextHandler(os.Stderr, opts)
	case "line":
		handler = NewLineHandler(os.Stderr, name, level)
	default:
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}

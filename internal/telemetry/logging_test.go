package telemetry

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestLineHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	logger := NewBotLogger(&buf, "imap-collector", slog.LevelDebug)

	logger.Info("Bot is starting")
	logger.Debug("received message", "queue", "imap-collector-input", "size", 8)
	logger.Log(context.Background(), LevelCritical, "Bot crashed", "error", "boom now")

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), buf.String())
	}

	tests := []struct {
		line    string
		level   string
		message string
	}{
		{lines[0], "INFO", "Bot is starting"},
		{lines[1], "DEBUG", "received message queue=imap-collector-input size=8"},
		{lines[2], "CRITICAL", `Bot crashed error="boom now"`},
	}

	for _, tt := range tests {
		fields, err := ParseLogLine(tt.line)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if fields.Name != "imap-collector" {
			t.Errorf("expected name imap-collector, got %s", fields.Name)
		}
		if fields.LevelName != tt.level {
			t.Errorf("expected level %s, got %s", tt.level, fields.LevelName)
		}
		if fields.Message != tt.message {
			t.Errorf("expected message %q, got %q", tt.message, fields.Message)
		}
	}
}

func TestLineHandler_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := NewBotLogger(&buf, "bot", slog.LevelWarn)

	logger.Info("hidden")
	logger.Warn("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Error("INFO must be filtered at WARNING level")
	}
	if !strings.Contains(buf.String(), " - WARNING - shown") {
		t.Errorf("expected WARNING line, got %q", buf.String())
	}
}

func TestLineHandler_WithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	logger := NewBotLogger(&buf, "bot", slog.LevelDebug).
		With("run_id", "r1").
		WithGroup("msg")

	logger.Info("sent", "size", 3)

	if !strings.HasSuffix(buf.String(), " - INFO - sent run_id=r1 msg.size=3\n") {
		t.Errorf("unexpected line: %q", buf.String())
	}
}

func TestLineHandler_MultilineMessage(t *testing.T) {
	var buf bytes.Buffer
	NewBotLogger(&buf, "bot", slog.LevelDebug).Error("line1\nline2")

	if n := strings.Count(buf.String(), "\n"); n != 1 {
		t.Errorf("expected single line, got %d newlines", n)
	}
}

func TestParseLogLine_Invalid(t *testing.T) {
	_, err := ParseLogLine("not a log line")
	if !errors.Is(err, ErrInvalidLogLine) {
		t.Errorf("expected ErrInvalidLogLine, got %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		want slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARNING", slog.LevelWarn},
		{"WARN", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"CRITICAL", LevelCritical},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLevel(tt.name); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

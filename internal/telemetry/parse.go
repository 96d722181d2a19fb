package telemetry

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// ErrInvalidLogLine — строка не соответствует формату LineHandler.
var ErrInvalidLogLine = errors.New("invalid log line")

// logLineRe разбирает строку LineHandler.
var logLineRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2},\d{3}) - (\S+) - ([A-Z]+) - (.*)$`)

// LogLine — разобранная строка лога.
type LogLine struct {
	Time      time.Time
	Name      string
	LevelName string
	Message   string
}

// ParseLogLine разбирает строку, записанную LineHandler.
func ParseLogLine(line string) (LogLine, error) {
	m := logLineRe.FindStringSubmatch(line)
	if m == nil {
		return LogLine{}, fmt.Errorf("%w: %q", ErrInvalidLogLine, line)
	}

	t, err := time.ParseInLocation(TimeLayout, m[1], time.Local)
	if err != nil {
		return LogLine{}, fmt.Errorf("%w: time: %v", ErrInvalidLogLine, err)
	}

	return LogLine{
		Time:      t,
		Name:      m[2],
		LevelName: m[3],
		Message:   m[4],
	}, nil
}

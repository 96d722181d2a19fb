// Package lines — парсер, разбивающий Report на события по строкам.
//
// Каждая непустая строка raw, кроме комментариев (#), становится Event.
// Тип индикатора определяется по строке: IP-адрес, URL или доменное имя.
package lines

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/netip"
	"net/url"
	"strings"

	"github.com/shaiso/botline/internal/bot"
	"github.com/shaiso/botline/internal/message"
)

// ErrNotReport — на вход пришёл не Report.
var ErrNotReport = errors.New("input is not a report")

// ErrInvalidIndicator — строка не похожа ни на IP, ни на URL, ни на домен.
var ErrInvalidIndicator = errors.New("invalid indicator")

// maxLineSize — предел длины строки отчёта.
var maxLineSize = 1024 * 1024

// Parser — построчный парсер.
type Parser struct{}

// New создаёт Parser.
func New() *Parser {
	return &Parser{}
}

// Process разбирает один Report.
func (p *Parser) Process(ctx context.Context, bc *bot.Context) error {
	report, err := bc.Receive(ctx)
	if err != nil {
		return err
	}
	if report.Type() != message.TypeReport {
		return fmt.Errorf("%w: %s", ErrNotReport, report.Type())
	}

	raw, err := report.Raw()
	if err != nil {
		return err
	}

	events, skipped, err := parse(report, raw)
	if err != nil {
		return err
	}
	for _, event := range events {
		if err := bc.Send(ctx, event); err != nil {
			return err
		}
	}

	if skipped > 0 {
		bc.Logger().Warn("Skipped invalid lines.", "count", skipped)
	}
	bc.Logger().Debug("Parsed report.", "events", len(events))

	return bc.Acknowledge(ctx)
}

// parse возвращает события и количество пропущенных строк.
// Ошибка чтения (например, слишком длинная строка) отменяет весь отчёт.
func parse(report message.Message, raw []byte) ([]message.Message, int, error) {
	var events []message.Message
	skipped := 0

	scanner := bufio.NewScanner(bytes.NewReader(raw))
	scanner.Buffer(make([]byte, 0, min(64*1024, maxLineSize)), maxLineSize)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, err := classify(line)
		if err != nil {
			skipped++
			continue
		}

		event := report.ToEvent()
		event.Set(key, value)
		event.SetRaw([]byte(line))
		events = append(events, event)
	}
	if err := scanner.Err(); err != nil {
		return nil, skipped, fmt.Errorf("scan report: %w", err)
	}

	return events, skipped, nil
}

// classify определяет ключ индикатора для строки.
func classify(line string) (key, value string, err error) {
	if addr, err := netip.ParseAddr(line); err == nil {
		return "source.ip", addr.String(), nil
	}

	if strings.Contains(line, "://") {
		u, err := url.Parse(line)
		if err == nil && u.Host != "" {
			return "source.url", line, nil
		}
		return "", "", fmt.Errorf("%w: %q", ErrInvalidIndicator, line)
	}

	if isFQDN(line) {
		return "source.fqdn", strings.ToLower(strings.TrimSuffix(line, ".")), nil
	}

	return "", "", fmt.Errorf("%w: %q", ErrInvalidIndicator, line)
}

// isFQDN — упрощённая проверка доменного имени: метки из букв, цифр и дефисов.
func isFQDN(s string) bool {
	s = strings.TrimSuffix(s, ".")
	if len(s) == 0 || len(s) > 253 || !strings.Contains(s, ".") {
		return false
	}

	for _, label := range strings.Split(s, ".") {
		if len(label) == 0 || len(label) > 63 {
			return false
		}
		if label[0] == '-' || label[len(label)-1] == '-' {
			return false
		}
		for _, r := range label {
			isAlnum := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
			if !isAlnum && r != '-' {
				return false
			}
		}
	}
	return true
}

// Package text — коллектор, превращающий входной текст в Report.
//
// Каждое сообщение source-очереди становится Report: содержимое кладётся в
// raw (base64), метаданные фида берутся из параметров бота.
package text

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shaiso/botline/internal/bot"
	"github.com/shaiso/botline/internal/config"
	"github.com/shaiso/botline/internal/message"
)

// Параметры бота.
const (
	ParamName     = "name"
	ParamAccuracy = "accuracy"
	ParamURL      = "url"
	ParamCode     = "code"
	ParamFileName = "file_name"
)

const defaultAccuracy = 100.0

// Collector — коллектор текстовых отчётов.
type Collector struct {
	name     string
	accuracy float64
	url      string
	code     string
	fileName string

	now func() time.Time
}

// New создаёт Collector.
func New() *Collector {
	return &Collector{now: time.Now}
}

// Init читает параметры фида.
func (c *Collector) Init(params config.Params, logger *slog.Logger) error {
	name, err := params.RequireString(ParamName)
	if err != nil {
		return err
	}

	accuracy, err := params.Float(ParamAccuracy, defaultAccuracy)
	if err != nil {
		return err
	}
	if accuracy < 0 || accuracy > 100 {
		return fmt.Errorf("%w: %s must be within [0, 100], got %v", config.ErrInvalidParam, ParamAccuracy, accuracy)
	}

	c.name = name
	c.accuracy = accuracy
	c.url = params.String(ParamURL, "")
	c.code = params.String(ParamCode, "")
	c.fileName = params.String(ParamFileName, "")

	logger.Debug("collector configured", "feed", c.name, "accuracy", c.accuracy)
	return nil
}

// Process превращает одно входное сообщение в Report.
func (c *Collector) Process(ctx context.Context, bc *bot.Context) error {
	data, err := bc.ReceiveRaw(ctx)
	if err != nil {
		return err
	}

	report := message.NewReport()
	report.SetRaw(data)
	report.Set("feed.name", c.name)
	report.Set("feed.accuracy", c.accuracy)
	report.Set("time.observation", c.now().UTC().Format(time.RFC3339))
	if c.url != "" {
		report.Set("feed.url", c.url)
	}
	if c.code != "" {
		report.Set("feed.code", c.code)
	}
	if c.fileName != "" {
		report.Set("extra.file_name", c.fileName)
	}

	if err := bc.Send(ctx, report); err != nil {
		return err
	}

	bc.Logger().Info("Processed report.", "size", len(data))
	return bc.Acknowledge(ctx)
}

package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/botline/internal/config"
	"github.com/shaiso/botline/internal/metrics"
	"github.com/shaiso/botline/internal/pipeline"
	"github.com/shaiso/botline/internal/telemetry"
)

// Ключ runtime-параметра со стратегией задержки между повторами.
const paramErrorRetryBackoff = "error_retry_backoff"

// idleDelay — пауза на пустой очереди вне one-shot режима, если retry_delay не задан.
const idleDelay = time.Second

// Processor — бизнес-логика бота.
//
// Process выполняет один проход: обычно Receive, обработка, Send, Acknowledge.
// Пустая очередь сообщается возвратом pipeline.ErrEmptyQueue.
type Processor interface {
	Process(ctx context.Context, bc *Context) error
}

// ProcessorFunc — функция как Processor.
type ProcessorFunc func(ctx context.Context, bc *Context) error

// Process вызывает f.
func (f ProcessorFunc) Process(ctx context.Context, bc *Context) error {
	return f(ctx, bc)
}

// Initializer — необязательная инициализация Processor при старте бота.
// Ошибка Init — ошибка старта.
type Initializer interface {
	Init(params config.Params, logger *slog.Logger) error
}

// Config — конфигурация бота.
type Config struct {
	// Settings
	System   config.System
	Runtime  config.Runtime
	Pipeline config.Pipeline

	// Logger (опционально; если nil — логи отбрасываются)
	Logger *slog.Logger

	// Pipelines (можно переопределить в StartOptions)
	SourcePipeline      pipeline.Pipeline
	DestinationPipeline pipeline.Pipeline

	// Metrics (опционально)
	Metrics *metrics.Collector
}

// StartOptions — параметры запуска.
type StartOptions struct {
	// ErrorOnPipeline — ошибка транспорта останавливает бота и возвращается из Start.
	// Если false, ошибка логируется, а проход завершается (OneShot) или повторяется.
	ErrorOnPipeline bool

	// SourcePipeline, DestinationPipeline переопределяют pipeline из Config.
	SourcePipeline      pipeline.Pipeline
	DestinationPipeline pipeline.Pipeline

	// OneShot — обработать source-очередь до конца и остановиться.
	OneShot bool
}

// Bot — экземпляр бота.
//
// Bot читает сообщения из своей source-очереди, передаёт их Processor и
// отправляет результат в destination-очереди. Ошибки обработки
// повторяются согласно error_max_retries, после чего сообщение
// выбрасывается (error_procedure=pass) или бот останавливается (stop).
type Bot struct {
	id        string
	params    config.Params
	queues    config.Queues
	processor Processor

	source      pipeline.Pipeline
	destination pipeline.Pipeline

	// Runtime
	rateLimit       time.Duration
	retryDelay      time.Duration
	errorRetryDelay time.Duration
	errorBackoff    string
	maxRetries      int
	errorProcedure  string

	logger  *slog.Logger
	metrics *metrics.Collector

	runID       uuid.UUID
	pipelineErr error
}

// New создаёт бота с идентификатором id.
func New(id string, cfg Config, processor Processor) (*Bot, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty bot id", ErrInvalidConfig)
	}
	if processor == nil {
		return nil, ErrNoProcessor
	}

	settings := config.Settings{
		System:   cfg.System,
		Runtime:  cfg.Runtime,
		Pipeline: cfg.Pipeline,
	}
	if err := settings.Validate(id); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	b := &Bot{
		id:          id,
		params:      cfg.Runtime.Params(id),
		queues:      cfg.Pipeline[id],
		processor:   processor,
		source:      cfg.SourcePipeline,
		destination: cfg.DestinationPipeline,
		logger:      logger,
		metrics:     cfg.Metrics,
	}

	if err := b.loadRuntime(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, &config.ValidationError{BotID: id, Field: "runtime", Err: err})
	}

	return b, nil
}

// loadRuntime читает параметры, которыми управляет фреймворк.
func (b *Bot) loadRuntime() error {
	var err error

	if b.rateLimit, err = b.params.Seconds(config.ParamRateLimit, 0); err != nil {
		return err
	}
	if b.retryDelay, err = b.params.Seconds(config.ParamRetryDelay, 0); err != nil {
		return err
	}
	if b.errorRetryDelay, err = b.params.Seconds(config.ParamErrorRetryDelay, 0); err != nil {
		return err
	}
	if b.maxRetries, err = b.params.Int(config.ParamErrorMaxRetries, 0); err != nil {
		return err
	}
	if b.maxRetries < 0 {
		return fmt.Errorf("%w: %s: negative", config.ErrInvalidParam, config.ParamErrorMaxRetries)
	}

	b.errorBackoff = b.params.String(paramErrorRetryBackoff, backoffFixed)

	b.errorProcedure = b.params.String(config.ParamErrorProcedure, config.ErrorProcedurePass)
	switch b.errorProcedure {
	case config.ErrorProcedurePass, config.ErrorProcedureStop:
	default:
		return fmt.Errorf("%w: %s: %q", config.ErrInvalidParam, config.ParamErrorProcedure, b.errorProcedure)
	}

	return nil
}

// ID возвращает идентификатор бота.
func (b *Bot) ID() string {
	return b.id
}

// Params возвращает runtime-параметры бота.
func (b *Bot) Params() config.Params {
	return b.params
}

// RunID возвращает идентификатор последнего запуска.
func (b *Bot) RunID() uuid.UUID {
	return b.runID
}

// PipelineErr возвращает ошибку транспорта последнего запуска, если она была.
// При ErrorOnPipeline=false это единственный способ увидеть её, кроме лога.
func (b *Bot) PipelineErr() error {
	return b.pipelineErr
}

// Start запускает бота и блокируется до остановки.
//
// Возвращает nil при штатной остановке: пустая очередь в OneShot режиме
// или отмена ctx. Ошибки старта возвращаются как *StartError.
func (b *Bot) Start(ctx context.Context, opts StartOptions) error {
	b.runID = uuid.New()
	b.pipelineErr = nil

	b.logger.Info("Bot is starting")
	b.metrics.Started(b.id)

	source := b.source
	if opts.SourcePipeline != nil {
		source = opts.SourcePipeline
	}
	destination := b.destination
	if opts.DestinationPipeline != nil {
		destination = opts.DestinationPipeline
	}

	if source == nil {
		return b.fail(ctx, fmt.Errorf("%w: source", ErrMissingPipeline))
	}
	if destination == nil {
		return b.fail(ctx, fmt.Errorf("%w: destination", ErrMissingPipeline))
	}

	if err := source.SetQueues(ctx, pipeline.RoleSource, b.queues.Source); err != nil {
		return b.fail(ctx, &PipelineError{Op: "set source queues", Err: err})
	}
	if len(b.queues.Destinations) > 0 {
		if err := destination.SetQueues(ctx, pipeline.RoleDestination, b.queues.Destinations...); err != nil {
			return b.fail(ctx, &PipelineError{Op: "set destination queues", Err: err})
		}
	}

	if initializer, ok := b.processor.(Initializer); ok {
		if err := initializer.Init(b.params, b.logger); err != nil {
			return b.fail(ctx, err)
		}
	}

	b.logger.Debug("Bot initialized.",
		"run_id", b.runID,
		"source", b.queues.Source,
		"destinations", b.queues.Destinations,
	)

	err := b.loop(ctx, source, destination, opts)
	if err != nil {
		return err
	}

	b.logger.Info("Bot stopped.")
	return nil
}

// loop — основной цикл обработки.
func (b *Bot) loop(ctx context.Context, source, destination pipeline.Pipeline, opts StartOptions) error {
	attempt := 0

	for {
		if ctx.Err() != nil {
			return nil
		}

		bc := newContext(b, source, destination)
		err := b.processor.Process(ctx, bc)

		var pipeErr *PipelineError
		var startErr *StartError

		switch {
		case err == nil:
			attempt = 0

			if opts.OneShot {
				if bc.pending() {
					b.logger.Warn("Message was not acknowledged.")
					return nil
				}
				if !bc.received {
					return nil
				}
				continue
			}

			if wait(ctx, b.rateLimit) != nil {
				return nil
			}

		case errors.Is(err, pipeline.ErrEmptyQueue):
			if opts.OneShot {
				b.logger.Debug("Source queue is empty, stopping.")
				return nil
			}

			delay := b.retryDelay
			if delay <= 0 {
				delay = idleDelay
			}
			if wait(ctx, delay) != nil {
				return nil
			}

		case errors.As(err, &pipeErr):
			if stop, ret := b.handlePipelineError(ctx, err, opts); stop {
				return ret
			}

		case errors.As(err, &startErr):
			b.logger.Log(ctx, telemetry.LevelCritical, "Bot has found a fatal problem.", "error", err)
			return err

		case ctx.Err() != nil:
			return nil

		default:
			attempt++
			b.metrics.Failed(b.id)
			b.logger.Error("Bot has found a problem.", "error", err, "attempt", attempt)

			if attempt <= b.maxRetries {
				if wait(ctx, calculateBackoff(attempt, b.errorRetryDelay, b.errorBackoff)) != nil {
					return nil
				}
				continue
			}
			attempt = 0

			if b.errorProcedure == config.ErrorProcedureStop {
				return b.fail(ctx, fmt.Errorf("%w: %w", ErrProcessingStopped, err))
			}

			if !bc.received {
				// Processor упал до Receive — выбрасывать нечего
				if opts.OneShot {
					return nil
				}
				delay := b.retryDelay
				if delay <= 0 {
					delay = idleDelay
				}
				if wait(ctx, delay) != nil {
					return nil
				}
				continue
			}
			if bc.acked {
				continue
			}

			if ackErr := bc.Acknowledge(ctx); ackErr != nil {
				if stop, ret := b.handlePipelineError(ctx, ackErr, opts); stop {
					return ret
				}
				continue
			}

			b.metrics.Dropped(b.id)
			b.logger.Info("Message dropped.", "retries", b.maxRetries)
		}
	}
}

// handlePipelineError обрабатывает ошибку транспорта.
// Возвращает stop=true, если цикл нужно завершить с ret.
func (b *Bot) handlePipelineError(ctx context.Context, err error, opts StartOptions) (stop bool, ret error) {
	b.pipelineErr = err

	if opts.ErrorOnPipeline {
		return true, b.fail(ctx, err)
	}

	b.logger.Error("Pipeline failed.", "error", err)

	if opts.OneShot {
		return true, nil
	}
	if wait(ctx, calculateBackoff(1, b.errorRetryDelay, backoffFixed)) != nil {
		return true, nil
	}
	return false, nil
}

// fail логирует ошибку старта и оборачивает её в StartError.
func (b *Bot) fail(ctx context.Context, err error) error {
	b.logger.Log(ctx, telemetry.LevelCritical, "Bot failed.", "error", err)
	return &StartError{BotID: b.id, Err: err}
}

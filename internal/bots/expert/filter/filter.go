// Package filter — эксперт, пропускающий или отбрасывающий события по условию.
//
// Условие задаётся либо парой filter_key/filter_value (равенство поля),
// либо выражением filter_expression, например:
//
//	event["source.geolocation.cc"] in ["AT", "DE"] && event["feed.accuracy"] >= 50
package filter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/shaiso/botline/internal/bot"
	"github.com/shaiso/botline/internal/config"
	"github.com/shaiso/botline/internal/message"
)

// Параметры бота.
const (
	ParamKey        = "filter_key"
	ParamValue      = "filter_value"
	ParamExpression = "filter_expression"
	ParamAction     = "filter_action"
)

// Действия фильтра.
const (
	ActionKeep = "keep"
	ActionDrop = "drop"
)

// Expert — фильтр событий.
//
// keep: дальше уходят только совпавшие сообщения.
// drop: совпавшие сообщения отбрасываются, остальные уходят дальше.
type Expert struct {
	key     string
	value   string
	program *vm.Program
	action  string
}

// New создаёт Expert.
func New() *Expert {
	return &Expert{}
}

// Init читает условие фильтра. Выражение компилируется один раз.
func (e *Expert) Init(params config.Params, logger *slog.Logger) error {
	action := params.String(ParamAction, ActionKeep)
	switch action {
	case ActionKeep, ActionDrop:
	default:
		return fmt.Errorf("%w: %s: %q", config.ErrInvalidParam, ParamAction, action)
	}
	e.action = action

	if source := params.String(ParamExpression, ""); source != "" {
		program, err := expr.Compile(source, expr.Env(env(nil)), expr.AsBool())
		if err != nil {
			return fmt.Errorf("%w: %s: %w", config.ErrInvalidParam, ParamExpression, err)
		}
		e.program = program

		logger.Debug("filter configured", "expression", source, "action", action)
		return nil
	}

	key, err := params.RequireString(ParamKey)
	if err != nil {
		return err
	}
	value, err := params.RequireString(ParamValue)
	if err != nil {
		return err
	}
	e.key = key
	e.value = value

	logger.Debug("filter configured", "key", key, "value", value, "action", action)
	return nil
}

// Process пропускает или отбрасывает одно сообщение.
func (e *Expert) Process(ctx context.Context, bc *bot.Context) error {
	msg, err := bc.Receive(ctx)
	if err != nil {
		return err
	}

	matched, err := e.match(msg)
	if err != nil {
		return err
	}

	if matched != (e.action == ActionKeep) {
		bc.Logger().Debug("Filtered out event.", "matched", matched)
		return bc.Acknowledge(ctx)
	}

	if err := bc.Send(ctx, msg); err != nil {
		return err
	}
	return bc.Acknowledge(ctx)
}

// match проверяет условие на сообщении.
func (e *Expert) match(msg message.Message) (bool, error) {
	if e.program == nil {
		return msg.Contains(e.key) && msg.String(e.key) == e.value, nil
	}

	out, err := expr.Run(e.program, env(msg))
	if err != nil {
		return false, fmt.Errorf("eval filter: %w", err)
	}
	matched, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("eval filter: expected bool, got %T", out)
	}
	return matched, nil
}

// env — окружение выражения. Ключи сообщения с точками недоступны как
// идентификаторы, поэтому сообщение целиком лежит под именем event.
func env(msg message.Message) map[string]any {
	if msg == nil {
		msg = message.Message{}
	}
	return map[string]any{"event": map[string]any(msg)}
}

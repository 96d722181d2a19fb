// Package config описывает конфигурацию ботов.
//
// Конфигурация состоит из трёх секций:
//   - system   — уровень логирования, прокси
//   - runtime  — параметры по ботам и обязательная запись __default__
//   - pipeline — source-queue и destination-queues по ботам
//
// Секции читаются из YAML (LoadFile) или собираются в коде (тесты).
package config

import (
	"fmt"
	"maps"
	"time"
)

// DefaultKey — запись runtime, используемая, когда у бота нет своего значения.
const DefaultKey = "__default__"

// Ключи runtime-параметров, которые читает фреймворк ботов.
const (
	ParamModule          = "module"
	ParamRateLimit       = "rate_limit"
	ParamRetryDelay      = "retry_delay"
	ParamErrorRetryDelay = "error_retry_delay"
	ParamErrorMaxRetries = "error_max_retries"
	ParamErrorProcedure  = "error_procedure"
)

// Значения error_procedure.
const (
	ErrorProcedurePass = "pass"
	ErrorProcedureStop = "stop"
)

// System — системные настройки.
type System struct {
	LoggingLevel string `yaml:"logging_level"`
	HTTPProxy    string `yaml:"http_proxy"`
	HTTPSProxy   string `yaml:"https_proxy"`
}

// Params — параметры одного бота.
type Params map[string]any

// Runtime — параметры по идентификатору бота.
type Runtime map[string]Params

// Queues — очереди одного бота.
type Queues struct {
	Source       string   `yaml:"source-queue"`
	Destinations []string `yaml:"destination-queues"`
}

// Pipeline — очереди по идентификатору бота.
type Pipeline map[string]Queues

// Settings — system, runtime и pipeline вместе.
type Settings struct {
	System   System   `yaml:"system"`
	Runtime  Runtime  `yaml:"runtime"`
	Pipeline Pipeline `yaml:"pipeline"`
}

// DefaultParams возвращает __default__ для тестов и dry-run:
// без ограничения скорости, без задержек и без повторов.
func DefaultParams() Params {
	return Params{
		ParamRateLimit:       0,
		ParamRetryDelay:      0,
		ParamErrorRetryDelay: 0,
		ParamErrorMaxRetries: 0,
		ParamErrorProcedure:  ErrorProcedurePass,
	}
}

// Params возвращает параметры бота поверх __default__.
func (r Runtime) Params(botID string) Params {
	params := maps.Clone(r[DefaultKey])
	if params == nil {
		params = Params{}
	}
	maps.Copy(params, r[botID])
	return params
}

// Validate проверяет конфигурацию для бота.
func (s *Settings) Validate(botID string) error {
	if _, ok := s.Runtime[DefaultKey]; !ok {
		return &ValidationError{Field: "runtime", Err: ErrMissingDefault}
	}

	queues, ok := s.Pipeline[botID]
	if !ok {
		return &ValidationError{BotID: botID, Field: "pipeline", Err: ErrUnknownBot}
	}
	if queues.Source == "" {
		return &ValidationError{BotID: botID, Field: "pipeline.source-queue", Err: ErrMissingSource}
	}

	return nil
}

// Has проверяет наличие параметра.
func (p Params) Has(key string) bool {
	v, ok := p[key]
	return ok && v != nil
}

// String возвращает строковый параметр.
func (p Params) String(key, def string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// RequireString возвращает обязательный строковый параметр.
func (p Params) RequireString(key string) (string, error) {
	s := p.String(key, "")
	if s == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingParam, key)
	}
	return s, nil
}

// Int возвращает целочисленный параметр.
func (p Params) Int(key string, def int) (int, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return def, nil
	}

	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("%w: %s: %v is not an integer", ErrInvalidParam, key, v)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("%w: %s: %T", ErrInvalidParam, key, v)
	}
}

// Float возвращает числовой параметр.
func (p Params) Float(key string, def float64) (float64, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return def, nil
	}

	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("%w: %s: %T", ErrInvalidParam, key, v)
	}
}

// Bool возвращает булев параметр.
func (p Params) Bool(key string, def bool) (bool, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return def, nil
	}

	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %s: %T", ErrInvalidParam, key, v)
	}
	return b, nil
}

// Seconds возвращает параметр в секундах как time.Duration.
func (p Params) Seconds(key string, def time.Duration) (time.Duration, error) {
	if !p.Has(key) {
		return def, nil
	}

	f, err := p.Float(key, 0)
	if err != nil {
		return 0, err
	}
	if f < 0 {
		return 0, fmt.Errorf("%w: %s: negative duration", ErrInvalidParam, key)
	}
	return time.Duration(f * float64(time.Second)), nil
}

// Strings возвращает список строк.
func (p Params) Strings(key string) ([]string, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return nil, nil
	}

	switch list := v.(type) {
	case []string:
		return list, nil
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %s: element %T", ErrInvalidParam, key, item)
			}
			out = append(out, s)
		}
		return out, nil
	case string:
		return []string{list}, nil
	default:
		return nil, fmt.Errorf("%w: %s: %T", ErrInvalidParam, key, v)
	}
}

// Package bots — реестр встроенных ботов по имени модуля.
package bots

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/shaiso/botline/internal/bot"
	"github.com/shaiso/botline/internal/bots/collector/text"
	"github.com/shaiso/botline/internal/bots/expert/filter"
	"github.com/shaiso/botline/internal/bots/parser/lines"
	"github.com/shaiso/botline/internal/bots/output/postgres"
)

// Имена встроенных модулей (значение runtime-параметра module).
const (
	ModuleCollectorText  = "collector-text"
	ModuleParserLines    = "parser-lines"
	ModuleExpertFilter   = "expert-filter"
	ModuleOutputPostgres = "output-postgres"
)

// ErrUnknownModule — модуль не зарегистрирован.
var ErrUnknownModule = errors.New("unknown module")

// Factory создаёт новый Processor на каждый запуск бота.
type Factory func() bot.Processor

// Registry — реестр фабрик по имени модуля.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry создаёт реестр с модулями, которым не нужны внешние ресурсы.
//
// output-postgres регистрируется отдельно через RegisterPostgres, когда есть подключение.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	r.Register(ModuleCollectorText, func() bot.Processor { return text.New() })
	r.Register(ModuleParserLines, func() bot.Processor { return lines.New() })
	r.Register(ModuleExpertFilter, func() bot.Processor { return filter.New() })
	return r
}

// Register добавляет фабрику для модуля.
func (r *Registry) Register(module string, factory Factory) {
	r.factories[module] = factory
}

// RegisterPostgres регистрирует output-postgres поверх db.
func (r *Registry) RegisterPostgres(db postgres.Execer) {
	r.Register(ModuleOutputPostgres, func() bot.Processor { return postgres.New(db) })
}

// Get возвращает новый Processor для модуля.
func (r *Registry) Get(module string) (bot.Processor, error) {
	factory, ok := r.factories[module]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModule, module)
	}
	return factory(), nil
}

// Modules возвращает имена зарегистрированных модулей по алфавиту.
func (r *Registry) Modules() []string {
	return slices.Sorted(maps.Keys(r.factories))
}

// Package postgres — output-бот, сохраняющий события в таблицу PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/shaiso/botline/internal/bot"
	"github.com/shaiso/botline/internal/config"
	"github.com/shaiso/botline/internal/message"
)

// Параметры бота.
const (
	ParamTable  = "table"
	ParamFields = "fields"
)

const defaultTable = "events"

// Ошибки output-бота.
var (
	// ErrNoDatabase — бот создан без подключения.
	ErrNoDatabase = errors.New("database is not configured")

	// ErrNoColumns — в событии нет ни одного поля для записи.
	ErrNoColumns = errors.New("no columns to insert")
)

// Execer — то, что нужно боту от подключения. *pgxpool.Pool подходит.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Output пишет каждое событие одной строкой INSERT.
type Output struct {
	db     Execer
	table  pgx.Identifier
	fields []string
}

// New создаёт Output поверх db.
func New(db Execer) *Output {
	return &Output{db: db}
}

// Init читает таблицу и список полей.
func (o *Output) Init(params config.Params, logger *slog.Logger) error {
	if o.db == nil {
		return ErrNoDatabase
	}

	table := params.String(ParamTable, defaultTable)
	if table == "" {
		return fmt.Errorf("%w: %s: empty", config.ErrInvalidParam, ParamTable)
	}

	fields, err := params.Strings(ParamFields)
	if err != nil {
		return err
	}
	if slices.Contains(fields, "") {
		return fmt.Errorf("%w: %s: empty field name", config.ErrInvalidParam, ParamFields)
	}

	// schema.table
	o.table = pgx.Identifier(strings.Split(table, "."))
	o.fields = fields

	logger.Debug("output configured", "table", table, "fields", len(fields))
	return nil
}

// Process сохраняет одно событие.
func (o *Output) Process(ctx context.Context, bc *bot.Context) error {
	event, err := bc.Receive(ctx)
	if err != nil {
		return err
	}

	query, args, err := buildInsert(o.table, o.columns(event), event)
	if err != nil {
		return err
	}

	tag, err := o.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	bc.Logger().Debug("Event saved.", "rows", tag.RowsAffected())
	return bc.Acknowledge(ctx)
}

// columns — явный список полей или все ключи события, кроме __type.
func (o *Output) columns(event message.Message) []string {
	if len(o.fields) > 0 {
		return o.fields
	}

	cols := make([]string, 0, len(event))
	for key := range event {
		if key == message.KeyType {
			continue
		}
		cols = append(cols, key)
	}
	slices.Sort(cols)
	return cols
}

// buildInsert собирает INSERT с позиционными параметрами.
// Отсутствующие в событии поля пишутся как NULL.
func buildInsert(table pgx.Identifier, columns []string, event message.Message) (string, []any, error) {
	if len(columns) == 0 {
		return "", nil, ErrNoColumns
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(table.Sanitize())
	sb.WriteString(" (")

	args := make([]any, 0, len(columns))
	for i, col := range columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(pgx.Identifier{col}.Sanitize())
		args = append(args, event[col])
	}

	sb.WriteString(") VALUES (")
	for i := range columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("$" + strconv.Itoa(i+1))
	}
	sb.WriteString(")")

	return sb.String(), args, nil
}

package bots

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/shaiso/botline/internal/bots/output/postgres"
)

type nopDB struct{}

func (nopDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func TestRegistry_Defaults(t *testing.T) {
	r := NewRegistry()

	want := []string{ModuleCollectorText, ModuleExpertFilter, ModuleParserLines}
	if got := r.Modules(); !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	for _, module := range want {
		p, err := r.Get(module)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", module, err)
		}
		if p == nil {
			t.Errorf("%s: nil processor", module)
		}
	}
}

func TestRegistry_NewProcessorPerGet(t *testing.T) {
	r := NewRegistry()

	a, _ := r.Get(ModuleCollectorText)
	b, _ := r.Get(ModuleCollectorText)
	if a == b {
		t.Error("expected a fresh processor on each Get")
	}
}

func TestRegistry_Unknown(t *testing.T) {
	_, err := NewRegistry().Get(ModuleOutputPostgres)
	if !errors.Is(err, ErrUnknownModule) {
		t.Errorf("expected ErrUnknownModule, got %v", err)
	}
}

func TestRegistry_RegisterPostgres(t *testing.T) {
	r := NewRegistry()
	r.RegisterPostgres(nopDB{})

	p, err := r.Get(ModuleOutputPostgres)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := p.(*postgres.Output); !ok {
		t.Errorf("expected *postgres.Output, got %T", p)
	}
}

package dmlkit

import (
	"testing"

	dmlerrors "github.com/dmlkit/dmlkit/dmlkit/errors"
)

func ordersTable(t *testing.T) *TableDef {
	t.Helper()
	r := NewRegistry()
	if err := r.Define("orders", map[string]FieldSpec{
		"amount": {Type: FieldFloat},
		"name":   {Type: FieldText},
	}); err != nil {
		t.Fatalf("Define: %v", err)
	}
	def, err := r.Table("orders")
	if err != nil {
		t.Fatalf("Table: %v", err)
	}
	return def
}

func TestBuildOrderByDefault(t *testing.T) {
	def := ordersTable(t)
	clause, err := buildOrderBy(def, nil)
	if err != nil {
		t.Fatalf("buildOrderBy: %v", err)
	}
	want := ` ORDER BY "orders"."id" ASC`
	if clause != want {
		t.Errorf("clause = %q, want %q", clause, want)
	}
}

func TestBuildOrderBySpecs(t *testing.T) {
	def := ordersTable(t)
	clause, err := buildOrderBy(def, []SortSpec{
		{Field: "amount", Descending: true},
		{Field: "name"},
	})
	if err != nil {
		t.Fatalf("buildOrderBy: %v", err)
	}
	want := ` ORDER BY "orders"."amount" DESC, "orders"."name" ASC`
	if clause != want {
		t.Errorf("clause = %q, want %q", clause, want)
	}
}

func TestBuildOrderByUnknownField(t *testing.T) {
	def := ordersTable(t)
	_, err := buildOrderBy(def, []SortSpec{{Field: "ghost"}})
	if !dmlerrors.IsKind(err, dmlerrors.ErrUnknownField) {
		t.Errorf("expected unknown_field, got %v", err)
	}
}

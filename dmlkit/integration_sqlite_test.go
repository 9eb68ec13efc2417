package dmlkit_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dmlkit/dmlkit/dmlkit"
	"github.com/dmlkit/dmlkit/dmlkit/criteria"
	dmlerrors "github.com/dmlkit/dmlkit/dmlkit/errors"
	"github.com/dmlkit/dmlkit/dmlkit/storage/sqlite"
)

func monotonicNow(start time.Time) func() time.Time {
	var mu sync.Mutex
	t := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func newManager(t *testing.T) *dmlkit.Manager {
	t.Helper()

	registry := dmlkit.NewRegistry()
	if err := registry.Define("orders", map[string]dmlkit.FieldSpec{
		"amount":     {Type: dmlkit.FieldFloat},
		"name":       {Type: dmlkit.FieldText},
		"partner_id": {Type: dmlkit.FieldInteger},
		"state":      {Type: dmlkit.FieldText},
	}); err != nil {
		t.Fatalf("Define: %v", err)
	}

	dbPath := filepath.Join(t.TempDir(), "test.db")
	opts := dmlkit.DefaultOptions()
	opts.Now = monotonicNow(time.Unix(1700000000, 0).UTC()) // deterministic timestamps

	mgr, err := dmlkit.Open(context.Background(), sqlite.New(dbPath), registry, opts)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = mgr.Close() })

	if err := mgr.EnsureTables(context.Background()); err != nil {
		t.Fatalf("EnsureTables: %v", err)
	}
	return mgr
}

func seedOrders(t *testing.T, mgr *dmlkit.Manager) []int64 {
	t.Helper()
	ids, err := mgr.Create(context.Background(), "orders", []dmlkit.Record{
		{"amount": 120.5, "name": "Asiatic Fern", "partner_id": 14418, "state": "draft"},
		{"amount": 750.0, "name": "Glass Vase", "partner_id": 14417, "state": "open"},
		{"amount": 980.0, "name": "Brass Lamp", "partner_id": 14418, "state": "open"},
		{"amount": 15.0, "name": "Paper Clip", "partner_id": 99, "state": "done"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(ids) != 4 {
		t.Fatalf("Create returned %d ids, want 4", len(ids))
	}
	return ids
}

func TestCreateAndRead(t *testing.T) {
	mgr := newManager(t)
	ctx := context.Background()
	ids := seedOrders(t, mgr)

	rs, err := mgr.Read(ctx, "orders", ids[:2], dmlkit.ReadOptions{Fields: []string{"name", "amount"}})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(rs.Columns) != 3 || rs.Columns[0] != "id" {
		t.Fatalf("id must lead the columns, got %v", rs.Columns)
	}
	if rs.Len() != 2 {
		t.Fatalf("rows = %d, want 2", rs.Len())
	}

	recs := rs.Records()
	if recs[0]["name"] != "Asiatic Fern" {
		t.Errorf("recs[0] = %v", recs[0])
	}

	// timestamps were filled in by the manager
	val, err := mgr.GetValue(ctx, "orders", ids[0], "create_date")
	if err != nil {
		t.Fatalf("GetValue: %v", err)
	}
	if val == nil {
		t.Errorf("create_date should be set")
	}
}

func TestCreateRejectsMismatchedRecords(t *testing.T) {
	mgr := newManager(t)
	_, err := mgr.Create(context.Background(), "orders", []dmlkit.Record{
		{"amount": 1.0, "name": "a"},
		{"amount": 2.0},
	})
	if !dmlerrors.IsKind(err, dmlerrors.ErrSchema) {
		t.Errorf("expected schema error, got %v", err)
	}

	_, err = mgr.Create(context.Background(), "orders", []dmlkit.Record{{"id": 7, "name": "a"}})
	if !dmlerrors.IsKind(err, dmlerrors.ErrSchema) {
		t.Errorf("expected schema error for explicit id, got %v", err)
	}

	_, err = mgr.Create(context.Background(), "orders", []dmlkit.Record{{"ghost": 1}})
	if !dmlerrors.IsKind(err, dmlerrors.ErrUnknownField) {
		t.Errorf("expected unknown_field, got %v", err)
	}
}

func TestSearch(t *testing.T) {
	mgr := newManager(t)
	ctx := context.Background()
	ids := seedOrders(t, mgr)

	// empty criteria matches everything
	all, err := mgr.Search(ctx, "orders", nil, dmlkit.SearchOptions{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("Search matched %d, want 4", len(all))
	}

	cs := criteria.Structure{
		criteria.MarkerAnd,
		criteria.T("amount", criteria.OpGt, 500),
		criteria.T("name", criteria.OpILike, "as"),
	}
	got, err := mgr.Search(ctx, "orders", cs, dmlkit.SearchOptions{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Search matched %v, want [Glass Vase, Brass Lamp] ids", got)
	}
	if got[0] != ids[1] || got[1] != ids[2] {
		t.Errorf("Search ids = %v, want %v", got, ids[1:3])
	}

	// greedy-left nesting: (partner OR partner) AND state
	cs = criteria.Structure{
		criteria.MarkerAnd,
		criteria.MarkerOr,
		criteria.T("partner_id", criteria.OpEq, 14418),
		criteria.T("partner_id", criteria.OpEq, 14417),
		criteria.T("state", criteria.OpEq, "open"),
	}
	got, err = mgr.Search(ctx, "orders", cs, dmlkit.SearchOptions{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Search matched %v, want 2 open orders", got)
	}
}

func TestSearchPagination(t *testing.T) {
	mgr := newManager(t)
	ctx := context.Background()
	ids := seedOrders(t, mgr)

	page, err := mgr.Search(ctx, "orders", nil, dmlkit.SearchOptions{Limit: 2})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(page) != 2 || page[0] != ids[0] {
		t.Errorf("limit page = %v", page)
	}

	page, err = mgr.Search(ctx, "orders", nil, dmlkit.SearchOptions{Offset: 3})
	if err != nil {
		t.Fatalf("Search with bare offset: %v", err)
	}
	if len(page) != 1 || page[0] != ids[3] {
		t.Errorf("offset page = %v", page)
	}

	page, err = mgr.Search(ctx, "orders", nil, dmlkit.SearchOptions{Offset: 1, Limit: 2})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(page) != 2 || page[0] != ids[1] {
		t.Errorf("offset+limit page = %v", page)
	}
}

func TestSearchReadOperators(t *testing.T) {
	mgr := newManager(t)
	ctx := context.Background()
	seedOrders(t, mgr)

	cases := []struct {
		name  string
		cs    criteria.Structure
		want  int
		first string
	}{
		{
			"between",
			criteria.Structure{criteria.T("amount", criteria.OpBetween, []float64{100, 800})},
			2, "Asiatic Fern",
		},
		{
			"in",
			criteria.Structure{criteria.T("state", criteria.OpIn, []string{"draft", "done"})},
			2, "Asiatic Fern",
		},
		{
			"not in",
			criteria.Structure{criteria.T("state", criteria.OpNotIn, []string{"draft", "done"})},
			2, "Glass Vase",
		},
		{
			"not ilike",
			criteria.Structure{criteria.T("name", criteria.OpNotLike, "as")},
			1, "Paper Clip",
		},
		{
			"regex",
			criteria.Structure{criteria.T("name", criteria.OpRegex, "^[GB]")},
			2, "Glass Vase",
		},
		{
			"iregex",
			criteria.Structure{criteria.T("name", criteria.OpIRegex, "^asiatic")},
			1, "Asiatic Fern",
		},
		{
			"empty in",
			criteria.Structure{criteria.T("state", criteria.OpIn, []string{})},
			0, "",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rs, err := mgr.SearchRead(ctx, "orders", tc.cs, dmlkit.SearchReadOptions{
				Fields: []string{"name"},
			})
			if err != nil {
				t.Fatalf("SearchRead: %v", err)
			}
			if rs.Len() != tc.want {
				t.Fatalf("matched %d rows, want %d: %v", rs.Len(), tc.want, rs.Records())
			}
			if tc.want > 0 {
				if got := rs.Records()[0]["name"]; got != tc.first {
					t.Errorf("first match = %v, want %s", got, tc.first)
				}
			}
		})
	}
}

func TestSearchReadSort(t *testing.T) {
	mgr := newManager(t)
	ctx := context.Background()
	seedOrders(t, mgr)

	rs, err := mgr.SearchRead(ctx, "orders", nil, dmlkit.SearchReadOptions{
		Fields: []string{"name", "amount"},
		Sort:   []dmlkit.SortSpec{{Field: "amount", Descending: true}},
		Limit:  2,
	})
	if err != nil {
		t.Fatalf("SearchRead: %v", err)
	}
	recs := rs.Records()
	if len(recs) != 2 || recs[0]["name"] != "Brass Lamp" || recs[1]["name"] != "Glass Vase" {
		t.Errorf("descending sort gave %v", recs)
	}
}

func TestSearchCount(t *testing.T) {
	mgr := newManager(t)
	ctx := context.Background()
	seedOrders(t, mgr)

	n, err := mgr.SearchCount(ctx, "orders", nil)
	if err != nil {
		t.Fatalf("SearchCount: %v", err)
	}
	if n != 4 {
		t.Errorf("count = %d, want 4", n)
	}

	n, err = mgr.SearchCount(ctx, "orders", criteria.Structure{
		criteria.T("partner_id", criteria.OpEq, 14418),
	})
	if err != nil {
		t.Fatalf("SearchCount: %v", err)
	}
	if n != 2 {
		t.Errorf("count = %d, want 2", n)
	}
}

func TestGetValues(t *testing.T) {
	mgr := newManager(t)
	ctx := context.Background()
	ids := seedOrders(t, mgr)

	vals, err := mgr.GetValues(ctx, "orders", ids[1], []string{"name", "amount"})
	if err != nil {
		t.Fatalf("GetValues: %v", err)
	}
	if vals[0] != "Glass Vase" {
		t.Errorf("vals = %v", vals)
	}

	_, err = mgr.GetValue(ctx, "orders", 99999, "name")
	if !dmlerrors.IsKind(err, dmlerrors.ErrNotFound) {
		t.Errorf("expected not_found, got %v", err)
	}

	_, err = mgr.GetValue(ctx, "orders", ids[0], "ghost")
	if !dmlerrors.IsKind(err, dmlerrors.ErrUnknownField) {
		t.Errorf("expected unknown_field, got %v", err)
	}
}

func TestUpdate(t *testing.T) {
	mgr := newManager(t)
	ctx := context.Background()
	ids := seedOrders(t, mgr)

	before, err := mgr.GetValue(ctx, "orders", ids[0], "write_date")
	if err != nil {
		t.Fatalf("GetValue: %v", err)
	}

	err = mgr.Update(ctx, "orders", ids[:2], dmlkit.Record{"state": "done"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	for _, id := range ids[:2] {
		state, err := mgr.GetValue(ctx, "orders", id, "state")
		if err != nil {
			t.Fatalf("GetValue: %v", err)
		}
		if state != "done" {
			t.Errorf("record %d state = %v, want done", id, state)
		}
	}

	after, err := mgr.GetValue(ctx, "orders", ids[0], "write_date")
	if err != nil {
		t.Fatalf("GetValue: %v", err)
	}
	if before == after {
		t.Errorf("write_date should have advanced, still %v", after)
	}

	// untouched record kept its state
	state, _ := mgr.GetValue(ctx, "orders", ids[2], "state")
	if state != "open" {
		t.Errorf("record %d state = %v, want open", ids[2], state)
	}

	err = mgr.Update(ctx, "orders", ids, dmlkit.Record{"id": 1})
	if !dmlerrors.IsKind(err, dmlerrors.ErrSchema) {
		t.Errorf("updating id should be a schema error, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	mgr := newManager(t)
	ctx := context.Background()
	ids := seedOrders(t, mgr)

	if err := mgr.Delete(ctx, "orders", ids[:2]); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	n, err := mgr.SearchCount(ctx, "orders", nil)
	if err != nil {
		t.Fatalf("SearchCount: %v", err)
	}
	if n != 2 {
		t.Errorf("count after delete = %d, want 2", n)
	}

	// deleting nothing is a no-op
	if err := mgr.Delete(ctx, "orders", nil); err != nil {
		t.Errorf("Delete with no ids: %v", err)
	}
}

func TestEnsureTablesIdempotent(t *testing.T) {
	mgr := newManager(t)
	if err := mgr.EnsureTables(context.Background()); err != nil {
		t.Fatalf("second EnsureTables: %v", err)
	}
}

func TestUnknownTable(t *testing.T) {
	mgr := newManager(t)
	_, err := mgr.Search(context.Background(), "ghosts", nil, dmlkit.SearchOptions{})
	if !dmlerrors.IsKind(err, dmlerrors.ErrSchema) {
		t.Errorf("expected schema error, got %v", err)
	}
}

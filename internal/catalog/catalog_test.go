package catalog

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := Open(DriverSQLite, filepath.Join(t.TempDir(), "nested", "catalog.db"))
	if err != nil {
		t.Fatalf("open catalog: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestUpsertListAndGet(t *testing.T) {
	ctx := context.Background()
	c := newTestCatalog(t)
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	if err := c.Upsert(ctx, Entry{ID: "a1", Title: "Sales", Charts: []string{"bar", "line", "pie", "scatter"}, CreatedAt: created}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := c.Upsert(ctx, Entry{ID: "a1", Title: "Sales v2", Charts: []string{"pie", "bar", "line", "scatter"}}); err != nil {
		t.Fatalf("upsert again: %v", err)
	}

	e, ok, err := c.Get(ctx, "a1")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if e.Title != "Sales v2" || !reflect.DeepEqual(e.Charts, []string{"pie", "bar", "line", "scatter"}) {
		t.Fatalf("entry not updated: %+v", e)
	}
	if !e.CreatedAt.Equal(created) {
		t.Fatalf("created_at should survive upsert, got %v", e.CreatedAt)
	}

	list, err := c.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != "a1" {
		t.Fatalf("list = %+v", list)
	}

	if err := c.Remove(ctx, "a1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "a1"); ok {
		t.Fatalf("entry should be gone")
	}
}

func TestHistoryIsOrdered(t *testing.T) {
	ctx := context.Background()
	c := newTestCatalog(t)
	for _, a := range []string{ActionCreate, ActionLoad, ActionDelete} {
		if err := c.Record(ctx, "d1", a, 4); err != nil {
			t.Fatalf("record %s: %v", a, err)
		}
	}
	if err := c.Record(ctx, "other", ActionCreate, 1); err != nil {
		t.Fatalf("record: %v", err)
	}
	evs, err := c.History(ctx, "d1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(evs) != 3 {
		t.Fatalf("expected 3 events, got %d", len(evs))
	}
	want := []string{ActionCreate, ActionLoad, ActionDelete}
	for i, ev := range evs {
		if ev.Action != want[i] || ev.Charts != 4 || ev.ID == "" {
			t.Fatalf("event %d = %+v", i, ev)
		}
	}
}

func TestRebind(t *testing.T) {
	pg := &Catalog{driver: DriverPostgres}
	if got := pg.rebind("a = ? AND b = ?"); got != "a = $1 AND b = $2" {
		t.Fatalf("rebind = %q", got)
	}
	lite := &Catalog{driver: DriverSQLite}
	if got := lite.rebind("a = ?"); got != "a = ?" {
		t.Fatalf("sqlite query should be untouched, got %q", got)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open("mysql", "x"); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

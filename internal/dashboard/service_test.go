package dashboard_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/KaramelBytes/dashloom-cli/internal/analysis"
	"github.com/KaramelBytes/dashloom-cli/internal/catalog"
	"github.com/KaramelBytes/dashloom-cli/internal/dashboard"
)

const sales = "category,value1,value2,date\n" +
	"A,10,100,2023-01-01\n" +
	"B,20,200,2023-01-02\n" +
	"C,30,300,2023-01-03\n" +
	"A,15,150,2023-01-04\n" +
	"B,25,250,2023-01-05\n"

func newService(t *testing.T, cacheSize int, withCatalog bool) *dashboard.Service {
	t.Helper()
	dir := t.TempDir()
	opts := dashboard.Options{
		Dir:       filepath.Join(dir, "dashboards"),
		CacheSize: cacheSize,
		Analysis:  analysis.DefaultOptions(),
	}
	if withCatalog {
		cat, err := catalog.Open(catalog.DriverSQLite, filepath.Join(dir, "catalog.db"))
		if err != nil {
			t.Fatalf("open catalog: %v", err)
		}
		t.Cleanup(func() { cat.Close() })
		opts.Catalog = cat
	}
	svc, err := dashboard.NewService(opts)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

type binding struct {
	Type, X, Y, Labels, Values string
	Index                      bool
}

func bindings(charts []dashboard.ChartSpec) []binding {
	out := make([]binding, 0, len(charts))
	for _, c := range charts {
		out = append(out, binding{c.Type, c.X, c.Y, c.Labels, c.Values, c.XIsIndex})
	}
	return out
}

func TestCreateThenGetIsEquivalent(t *testing.T) {
	ctx := context.Background()
	requests := [][]string{nil, {"pie"}, {"scatter", "radar"}, {"line", "line", "line", "line", "bar"}}
	inputs := []string{sales, "x,y\n1,2\n3,4\n", "team\nred\nblue\nred\n", "when\n2023-01-01\n2023-02-01\n"}

	for _, csv := range inputs {
		for _, req := range requests {
			svc := newService(t, 0, false)
			created, err := svc.Create(ctx, "dash", "", csv, req)
			if err != nil {
				t.Fatalf("create(%q, %v): %v", csv, req, err)
			}
			loaded, err := svc.Get(ctx, "dash")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if !reflect.DeepEqual(bindings(created.Charts), bindings(loaded.Charts)) {
				t.Fatalf("reconstruction differs for %v:\ncreated %+v\nloaded  %+v", req, created.Charts, loaded.Charts)
			}
			if !reflect.DeepEqual(created.ChartTypes, loaded.ChartTypes) {
				t.Fatalf("chart types differ: %v vs %v", created.ChartTypes, loaded.ChartTypes)
			}
			if loaded.Title != dashboard.DefaultTitle {
				t.Fatalf("title = %q", loaded.Title)
			}
		}
	}
}

func TestCreateRejectsInvalidCSV(t *testing.T) {
	svc := newService(t, 4, false)
	for _, csv := range []string{"", "   \n", "only,header\n"} {
		_, err := svc.Create(context.Background(), "bad", "T", csv, nil)
		if !errors.Is(err, dashboard.ErrInvalidInput) {
			t.Fatalf("csv %q: expected ErrInvalidInput, got %v", csv, err)
		}
	}
	if _, err := svc.Get(context.Background(), "bad"); !errors.Is(err, dashboard.ErrNotFound) {
		t.Fatalf("invalid input must not be persisted, got %v", err)
	}
}

func TestGetUsesCacheAndDeleteInvalidates(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, 4, true)
	if _, err := svc.Create(ctx, "d1", "Sales", sales, []string{"pie"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if svc.Cache().Len() != 1 {
		t.Fatalf("create should populate cache")
	}
	res, err := svc.Get(ctx, "d1")
	if err != nil || res.Title != "Sales" || res.ChartTypes[0] != "pie" {
		t.Fatalf("get = %+v, %v", res, err)
	}

	if err := svc.Delete(ctx, "d1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if svc.Cache().Len() != 0 {
		t.Fatalf("delete should invalidate cache")
	}
	if _, err := svc.Get(ctx, "d1"); !errors.Is(err, dashboard.ErrNotFound) {
		t.Fatalf("expected NotFound after delete, got %v", err)
	}

	events, err := svc.History(ctx, "d1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(events) != 2 || events[0].Action != catalog.ActionCreate || events[1].Action != catalog.ActionDelete {
		t.Fatalf("events = %+v", events)
	}
}

func TestListWithAndWithoutCatalog(t *testing.T) {
	ctx := context.Background()
	for _, withCatalog := range []bool{true, false} {
		svc := newService(t, 0, withCatalog)
		for _, id := range []string{"a", "b"} {
			if _, err := svc.Create(ctx, id, "T-"+id, sales, nil); err != nil {
				t.Fatalf("create %s: %v", id, err)
			}
		}
		entries, err := svc.List(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("catalog=%v: entries = %+v", withCatalog, entries)
		}
		for _, e := range entries {
			if len(e.Charts) != dashboard.Slots {
				t.Fatalf("entry %s charts = %v", e.ID, e.Charts)
			}
		}
	}
}

func TestHistoryWithoutCatalog(t *testing.T) {
	svc := newService(t, 0, false)
	if _, err := svc.History(context.Background(), "x"); !errors.Is(err, dashboard.ErrCatalogDisabled) {
		t.Fatalf("expected ErrCatalogDisabled, got %v", err)
	}
}

func TestExportCSV(t *testing.T) {
	svc := newService(t, 0, false)
	if _, err := svc.Create(context.Background(), "e1", "", sales, nil); err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := svc.ExportCSV("e1")
	if err != nil || got != sales {
		t.Fatalf("export = %q, %v", got, err)
	}
	if _, err := svc.ExportCSV("nope"); !errors.Is(err, dashboard.ErrNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestAnalyzeReportsScenarioA(t *testing.T) {
	svc := newService(t, 0, false)
	rep, err := svc.Analyze(sales)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(rep.Recommendations) != 4 {
		t.Fatalf("recommendations = %d", len(rep.Recommendations))
	}
	bar := rep.Recommendations[0]
	if !bar.Suitable || bar.XAxis != "category" || bar.YAxis != "value1" {
		t.Fatalf("bar = %+v", bar)
	}
}

func TestUnstoredDashboardStaysAvailableWithoutCache(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, 0, false)
	// A directory in place of config.json makes the record write fail.
	blocker := filepath.Join(svc.Store().Dir("mem"), "config.json")
	if err := os.MkdirAll(blocker, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(blocker, "keep"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	created, err := svc.Create(ctx, "mem", "Memory", sales, []string{"pie"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Stored {
		t.Fatalf("record should not be stored")
	}
	got, err := svc.Get(ctx, "mem")
	if err != nil {
		t.Fatalf("in-memory dashboard should be served: %v", err)
	}
	if got.Title != "Memory" || !reflect.DeepEqual(bindings(got.Charts), bindings(created.Charts)) {
		t.Fatalf("got %+v", got)
	}

	if err := svc.Delete(ctx, "mem"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, "mem"); !errors.Is(err, dashboard.ErrNotFound) {
		t.Fatalf("expected NotFound after delete, got %v", err)
	}
}

func TestGetDropsStaleCatalogEntry(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, 0, true)
	if _, err := svc.Create(ctx, "gone", "Gone", sales, nil); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := os.RemoveAll(svc.Store().Dir("gone")); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Get(ctx, "gone"); !errors.Is(err, dashboard.ErrNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	entries, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("stale entry should be removed, got %+v", entries)
	}
}

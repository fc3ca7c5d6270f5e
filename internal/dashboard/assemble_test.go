package dashboard

import (
	"errors"
	"strings"
	"testing"

	"github.com/KaramelBytes/dashloom-cli/internal/analysis"
)

const salesCSV = "category,value1,value2,date\n" +
	"A,10,100,2023-01-01\n" +
	"B,20,200,2023-01-02\n" +
	"C,30,300,2023-01-03\n" +
	"A,15,150,2023-01-04\n" +
	"B,25,250,2023-01-05\n"

func analyzed(t *testing.T, csv string) (*analysis.Report, *analysis.Dataset) {
	t.Helper()
	rep, ds, err := analysis.Analyze(csv, analysis.DefaultOptions())
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	return rep, ds
}

func TestAssembleUsesRecommendations(t *testing.T) {
	rep, ds := analyzed(t, salesCSV)
	plan, err := NewAssembler(nil).Assemble("d1", DefaultChartTypes(), rep.Recommendations, rep.Classification, ds)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if len(plan.Charts) != 4 || len(plan.Skipped) != 0 {
		t.Fatalf("expected 4 charts, got %d (skipped %v)", len(plan.Charts), plan.Skipped)
	}
	bar := plan.Charts[0]
	if bar.Type != "bar" || bar.X != "category" || bar.Y != "value1" || bar.Source != SourceRecommendation {
		t.Fatalf("bar = %+v", bar)
	}
	if bar.ID != "d1_chart_0_bar" {
		t.Fatalf("id = %q", bar.ID)
	}
	line := plan.Charts[1]
	if line.X != "date" || line.Y != "value1" {
		t.Fatalf("line = %+v", line)
	}
	pie := plan.Charts[2]
	if pie.Labels != "category" || pie.Values != "value1" {
		t.Fatalf("pie = %+v", pie)
	}
	if plan.Partial() != nil {
		t.Fatalf("complete plan should not report partial failure")
	}
}

func TestAssembleHeuristics(t *testing.T) {
	// Two numeric columns only: bar is unsuitable but the heuristic binds numeric pairs.
	rep, ds := analyzed(t, "x,y\n1,2\n3,4\n5,6\n")
	plan, err := NewAssembler(nil).Assemble("d2", []string{"bar", "pie", "line", "scatter"}, rep.Recommendations, rep.Classification, ds)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if len(plan.Charts) != 3 {
		t.Fatalf("expected 3 charts, got %+v", plan.Charts)
	}
	if c := plan.Charts[0]; c.Type != "bar" || c.X != "x" || c.Y != "y" || c.Source != SourceHeuristic {
		t.Fatalf("bar heuristic = %+v", c)
	}
	if len(plan.Skipped) != 1 || plan.Skipped[0].Type != "pie" || plan.Skipped[0].Slot != 1 {
		t.Fatalf("skipped = %+v", plan.Skipped)
	}
	if !errors.Is(plan.Partial(), ErrPartialAssembly) {
		t.Fatalf("expected partial assembly error")
	}
	if plan.Charts[1].Slot != 2 || plan.Charts[1].ID != "d2_chart_2_line" {
		t.Fatalf("slot/id should follow request position: %+v", plan.Charts[1])
	}
}

func TestAssembleSingleNumericAgainstIndex(t *testing.T) {
	cls := analysis.Classification{Numeric: []string{"v"}}
	recs := analysis.Recommend(cls)
	plan, err := NewAssembler(nil).Assemble("d3", []string{"scatter", "line", "bar", "pie"}, recs, cls, nil)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if len(plan.Charts) != 2 {
		t.Fatalf("expected scatter and line, got %+v", plan.Charts)
	}
	for _, c := range plan.Charts {
		if !c.XIsIndex || c.Y != "v" {
			t.Fatalf("expected index plot, got %+v", c)
		}
	}
}

func TestAssembleUnknownTypesFallBack(t *testing.T) {
	rep, ds := analyzed(t, salesCSV)
	plan, err := NewAssembler(nil).Assemble("d4", []string{"heatmap", "radar", "heatmap", "radar"}, rep.Recommendations, rep.Classification, ds)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if len(plan.Charts) != 1 {
		t.Fatalf("expected single fallback chart, got %+v", plan.Charts)
	}
	c := plan.Charts[0]
	if c.Type != ChartHistogram || c.X != "value1" || c.Source != SourceFallback {
		t.Fatalf("fallback = %+v", c)
	}
	if len(plan.Skipped) != 4 {
		t.Fatalf("all four slots should be skipped, got %d", len(plan.Skipped))
	}
}

func TestAssembleValueCountsFallback(t *testing.T) {
	cls := analysis.Classification{Categorical: []string{"team"}}
	plan, err := NewAssembler(nil).Assemble("d5", []string{"radar", "radar", "radar", "radar"}, analysis.Recommend(cls), cls, nil)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if len(plan.Charts) != 1 || plan.Charts[0].Type != ChartValueCounts || plan.Charts[0].X != "team" {
		t.Fatalf("unexpected plan %+v", plan.Charts)
	}
}

func TestAssembleNoUsableColumns(t *testing.T) {
	cls := analysis.Classification{Date: []string{"d"}}
	_, err := NewAssembler(nil).Assemble("d6", DefaultChartTypes(), analysis.Recommend(cls), cls, nil)
	if !errors.Is(err, ErrNoUsableColumns) {
		t.Fatalf("expected ErrNoUsableColumns, got %v", err)
	}
}

func TestAssembleSkipsMissingColumns(t *testing.T) {
	rep, _ := analyzed(t, salesCSV)
	ds, err := analysis.ParseCSV("category,value1\nA,1\n", analysis.DefaultOptions())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	plan, err := NewAssembler(nil).Assemble("d7", []string{"scatter", "bar", "bar", "bar"}, rep.Recommendations, rep.Classification, ds)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if len(plan.Skipped) != 1 || !strings.Contains(plan.Skipped[0].Reason, "value2") {
		t.Fatalf("scatter should be skipped for missing value2: %+v", plan.Skipped)
	}
}

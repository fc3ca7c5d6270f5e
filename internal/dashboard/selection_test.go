package dashboard

import (
	"reflect"
	"testing"
)

func TestNormalizeSelectionPadsFromDefaults(t *testing.T) {
	got := NormalizeSelection([]string{"pie"})
	want := []string{"pie", "bar", "line", "scatter"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestNormalizeSelectionEmptyUsesDefaults(t *testing.T) {
	got := NormalizeSelection(nil)
	if !reflect.DeepEqual(got, []string{"bar", "line", "pie", "scatter"}) {
		t.Fatalf("got %v", got)
	}
}

func TestNormalizeSelectionKeepsUnknownTokens(t *testing.T) {
	got := NormalizeSelection([]string{"heatmap", "bar"})
	want := []string{"heatmap", "bar", "line", "pie"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestNormalizeSelectionTruncates(t *testing.T) {
	got := NormalizeSelection([]string{"scatter", "scatter", "pie", "line", "bar", "bar"})
	want := []string{"scatter", "scatter", "pie", "line"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestNormalizeSelectionLengths(t *testing.T) {
	pool := []string{"line", "pie", "x", "bar", "scatter", "y", "line", "pie", "z", "bar"}
	for n := 0; n <= 10; n++ {
		req := pool[:n]
		got := NormalizeSelection(req)
		if len(got) != Slots {
			t.Fatalf("len(%v) -> %d tokens", req, len(got))
		}
		if n > 0 && got[0] != req[0] {
			t.Fatalf("first token changed for %v: %v", req, got)
		}
		for i := 0; i < n && i < Slots; i++ {
			if got[i] != req[i] {
				t.Fatalf("request order not kept: %v -> %v", req, got)
			}
		}
	}
}

func TestNormalizeSelectionDoesNotAliasInput(t *testing.T) {
	req := []string{"pie"}
	got := NormalizeSelection(req)
	got[0] = "changed"
	if req[0] != "pie" {
		t.Fatalf("input mutated")
	}
}

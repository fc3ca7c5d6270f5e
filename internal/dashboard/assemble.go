package dashboard

import (
	"fmt"

	"github.com/KaramelBytes/dashloom-cli/internal/analysis"
	"github.com/KaramelBytes/dashloom-cli/internal/utils"
)

// Chart types produced only by the last-resort path.
const (
	ChartHistogram   = "histogram"
	ChartValueCounts = "value_counts"
)

// Where a ChartSpec's bindings came from.
const (
	SourceRecommendation = "recommendation"
	SourceHeuristic      = "heuristic"
	SourceFallback       = "fallback"
)

// ChartSpec is a renderer-agnostic description of one chart. Type is
// authoritative; ID is only a unique label.
type ChartSpec struct {
	ID     string `json:"id" yaml:"id"`
	Type   string `json:"type" yaml:"type"`
	Title  string `json:"title" yaml:"title"`
	Slot   int    `json:"slot" yaml:"slot"`
	X      string `json:"x,omitempty" yaml:"x,omitempty"`
	Y      string `json:"y,omitempty" yaml:"y,omitempty"`
	Labels string `json:"labels,omitempty" yaml:"labels,omitempty"`
	Values string `json:"values,omitempty" yaml:"values,omitempty"`
	// XIsIndex plots Y against the row index instead of a column.
	XIsIndex bool   `json:"x_is_index,omitempty" yaml:"x_is_index,omitempty"`
	Source   string `json:"source" yaml:"source"`
}

// Columns returns the dataset columns the chart is bound to, in binding order.
func (c ChartSpec) Columns() []string {
	var out []string
	for _, n := range []string{c.X, c.Y, c.Labels, c.Values} {
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}

// SkippedSlot records a requested position that produced no chart.
type SkippedSlot struct {
	Slot   int    `json:"slot" yaml:"slot"`
	Type   string `json:"type" yaml:"type"`
	Reason string `json:"reason" yaml:"reason"`
}

// Plan is the assembled set of charts for one dashboard.
type Plan struct {
	DashboardID string        `json:"dashboard_id" yaml:"dashboard_id"`
	ChartTypes  []string      `json:"chart_types" yaml:"chart_types"`
	Charts      []ChartSpec   `json:"charts" yaml:"charts"`
	Skipped     []SkippedSlot `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// Partial returns a KindPartialAssembly error when slots were skipped, else nil.
func (p *Plan) Partial() error {
	if p == nil || len(p.Skipped) == 0 {
		return nil
	}
	return newError(KindPartialAssembly, "assemble",
		fmt.Sprintf("%d of %d chart slots could not be filled", len(p.Skipped), len(p.ChartTypes)), nil)
}

// Assembler turns a normalized chart selection into ChartSpecs.
type Assembler struct {
	log *utils.Logger
}

// NewAssembler returns an Assembler; a nil logger discards output.
func NewAssembler(log *utils.Logger) *Assembler {
	if log == nil {
		log = utils.NopLogger()
	}
	return &Assembler{log: log}
}

// Assemble resolves each chart type to concrete bindings. Suitable
// recommendations win; otherwise a per-type heuristic is tried; otherwise the
// slot is skipped. If nothing was produced a single histogram (or value-count)
// chart is emitted. Fails with KindNoUsableColumns when even that is impossible.
func (a *Assembler) Assemble(dashboardID string, chartTypes []string, recs []analysis.Recommendation, cls analysis.Classification, ds *analysis.Dataset) (*Plan, error) {
	plan := &Plan{DashboardID: dashboardID, ChartTypes: append([]string(nil), chartTypes...)}
	for i, t := range chartTypes {
		spec, ok, reason := a.resolve(t, recs, cls)
		if ok {
			if missing := missingColumn(spec, ds); missing != "" {
				ok, reason = false, fmt.Sprintf("column %q not in dataset", missing)
			}
		}
		if !ok {
			a.log.Warn("dashboard %s: skipping slot %d (%s): %s", dashboardID, i, t, reason)
			plan.Skipped = append(plan.Skipped, SkippedSlot{Slot: i, Type: t, Reason: reason})
			continue
		}
		spec.Slot = i
		spec.ID = chartID(dashboardID, i, t)
		plan.Charts = append(plan.Charts, spec)
	}
	if len(plan.Charts) > 0 {
		return plan, nil
	}

	var spec ChartSpec
	switch {
	case len(cls.Numeric) > 0 && hasColumn(ds, cls.Numeric[0]):
		spec = ChartSpec{Type: ChartHistogram, X: cls.Numeric[0], Title: fmt.Sprintf("Distribution of %s", cls.Numeric[0])}
	case len(cls.Categorical) > 0 && hasColumn(ds, cls.Categorical[0]):
		spec = ChartSpec{Type: ChartValueCounts, X: cls.Categorical[0], Title: fmt.Sprintf("Count of %s", cls.Categorical[0])}
	default:
		return nil, newError(KindNoUsableColumns, "assemble", "dataset has no numeric or categorical columns", nil)
	}
	spec.Source = SourceFallback
	spec.ID = chartID(dashboardID, 0, spec.Type)
	a.log.Info("dashboard %s: no requested chart could be built, using %s of %s", dashboardID, spec.Type, spec.X)
	plan.Charts = append(plan.Charts, spec)
	return plan, nil
}

func (a *Assembler) resolve(t string, recs []analysis.Recommendation, cls analysis.Classification) (ChartSpec, bool, string) {
	rec, known := analysis.Lookup(recs, t)
	if !known {
		return ChartSpec{}, false, "unknown chart type"
	}
	if rec.Suitable {
		return ChartSpec{
			Type:   t,
			Title:  rec.Title,
			X:      rec.XAxis,
			Y:      rec.YAxis,
			Labels: rec.Labels,
			Values: rec.Values,
			Source: SourceRecommendation,
		}, true, ""
	}
	if spec, ok := heuristic(t, cls); ok {
		spec.Source = SourceHeuristic
		return spec, true, ""
	}
	return ChartSpec{}, false, rec.Message
}

// heuristic is the secondary binding rule used when a family is unsuitable.
func heuristic(t string, cls analysis.Classification) (ChartSpec, bool) {
	num, cat := cls.Numeric, cls.Categorical
	switch t {
	case analysis.ChartBar:
		if len(num) >= 2 {
			return ChartSpec{Type: t, X: num[0], Y: num[1], Title: fmt.Sprintf("%s by %s", num[1], num[0])}, true
		}
	case analysis.ChartLine:
		if len(num) > 0 && len(cat) > 0 {
			return ChartSpec{Type: t, X: cat[0], Y: num[0], Title: fmt.Sprintf("%s by %s", num[0], cat[0])}, true
		}
		if len(num) == 1 {
			return ChartSpec{Type: t, Y: num[0], XIsIndex: true, Title: fmt.Sprintf("%s by row", num[0])}, true
		}
	case analysis.ChartScatter:
		if len(num) == 1 {
			return ChartSpec{Type: t, Y: num[0], XIsIndex: true, Title: fmt.Sprintf("%s by row", num[0])}, true
		}
	}
	return ChartSpec{}, false
}

func chartID(dashboardID string, slot int, t string) string {
	return fmt.Sprintf("%s_chart_%d_%s", dashboardID, slot, t)
}

// hasColumn treats a nil dataset as containing every column.
func hasColumn(ds *analysis.Dataset, name string) bool {
	return ds == nil || ds.Has(name)
}

func missingColumn(spec ChartSpec, ds *analysis.Dataset) string {
	for _, n := range spec.Columns() {
		if !hasColumn(ds, n) {
			return n
		}
	}
	return ""
}

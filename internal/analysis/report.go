package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Report is the outcome of the analyze step: roles, per-column stats and
// chart recommendations.
type Report struct {
	Name            string           `json:"name,omitempty" yaml:"name,omitempty"`
	Rows            int              `json:"rows" yaml:"rows"`
	Cols            []ColumnSummary  `json:"columns" yaml:"columns"`
	Classification  Classification   `json:"classification" yaml:"classification"`
	Recommendations []Recommendation `json:"chart_recommendations" yaml:"chart_recommendations"`
}

// ColumnSummary captures the assigned role and a few statistics per column.
type ColumnSummary struct {
	Name      string          `json:"name" yaml:"name"`
	Role      string          `json:"role" yaml:"role"`
	Derived   bool            `json:"derived,omitempty" yaml:"derived,omitempty"`
	NonNull   int             `json:"non_null" yaml:"non_null"`
	Missing   int             `json:"missing" yaml:"missing"`
	Min       float64         `json:"min,omitempty" yaml:"min,omitempty"`
	Max       float64         `json:"max,omitempty" yaml:"max,omitempty"`
	Mean      float64         `json:"mean,omitempty" yaml:"mean,omitempty"`
	Unique    int             `json:"unique,omitempty" yaml:"unique,omitempty"`
	TopValues []CategoryCount `json:"top_values,omitempty" yaml:"top_values,omitempty"`
	First     string          `json:"first,omitempty" yaml:"first,omitempty"`
	Last      string          `json:"last,omitempty" yaml:"last,omitempty"`
}

type CategoryCount struct {
	Value string `json:"value" yaml:"value"`
	Count int    `json:"count" yaml:"count"`
}

// Analyze parses csv text, classifies its columns and recommends charts.
// The returned dataset carries any derived columns.
func Analyze(text string, opt Options) (*Report, *Dataset, error) {
	ds, err := ParseCSV(text, opt)
	if err != nil {
		return nil, nil, err
	}
	cls := Classify(ds)
	rep := &Report{
		Rows:            ds.Rows(),
		Classification:  cls,
		Recommendations: Recommend(cls),
	}
	for _, c := range ds.Columns {
		rep.Cols = append(rep.Cols, summarize(c, cls.Role(c.Name)))
	}
	return rep, ds, nil
}

func summarize(c *Column, role string) ColumnSummary {
	s := ColumnSummary{Name: c.Name, Role: role, Derived: c.Derived}
	switch role {
	case RoleNumeric:
		lo, hi, sum := math.Inf(1), math.Inf(-1), 0.0
		for _, v := range c.Values {
			if v.Kind != Number {
				s.Missing++
				continue
			}
			s.NonNull++
			lo = math.Min(lo, v.Num)
			hi = math.Max(hi, v.Num)
			sum += v.Num
		}
		if s.NonNull > 0 {
			s.Min, s.Max, s.Mean = lo, hi, roundTo2(sum/float64(s.NonNull))
		}
	case RoleDate:
		for _, v := range c.Values {
			if v.Kind != Date || v.Time.IsZero() {
				s.Missing++
				continue
			}
			s.NonNull++
			if s.First == "" || v.String() < s.First {
				s.First = v.String()
			}
			if v.String() > s.Last {
				s.Last = v.String()
			}
		}
	default:
		counts := map[string]int{}
		for _, v := range c.Values {
			if v.Kind == Missing {
				s.Missing++
				continue
			}
			s.NonNull++
			counts[v.String()]++
		}
		s.Unique = len(counts)
		s.TopValues = topValues(counts, 3)
	}
	return s
}

func topValues(counts map[string]int, n int) []CategoryCount {
	out := make([]CategoryCount, 0, len(counts))
	for v, c := range counts {
		out = append(out, CategoryCount{Value: v, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// Markdown renders a compact, human-readable report.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", len(r.Cols)))

	b.WriteString("[SCHEMA]\n")
	for _, c := range r.Cols {
		name := safeName(c.Name)
		if c.Derived {
			name += " (derived)"
		}
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %d)", name, c.Role, c.NonNull, c.Missing))
		switch c.Role {
		case RoleNumeric:
			if c.NonNull > 0 {
				b.WriteString(fmt.Sprintf(" — min %.4g, max %.4g, mean %.4g", c.Min, c.Max, c.Mean))
			}
		case RoleDate:
			if c.First != "" {
				b.WriteString(fmt.Sprintf(" — %s .. %s", c.First, c.Last))
			}
		case RoleCategorical:
			if len(c.TopValues) > 0 {
				b.WriteString(" — top: ")
				for i, kv := range c.TopValues {
					if i > 0 {
						b.WriteString(", ")
					}
					b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
				}
				if c.Unique > len(c.TopValues) {
					b.WriteString(fmt.Sprintf("; unique=%d", c.Unique))
				}
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("\n[CHART RECOMMENDATIONS]\n")
	for _, rec := range r.Recommendations {
		if !rec.Suitable {
			b.WriteString(fmt.Sprintf("- %s: not suitable — %s\n", rec.Type, rec.Message))
			continue
		}
		b.WriteString(fmt.Sprintf("- %s: %q", rec.Type, rec.Title))
		if rec.Labels != "" {
			b.WriteString(fmt.Sprintf(" (labels=%s, values=%s)", rec.Labels, rec.Values))
		} else {
			b.WriteString(fmt.Sprintf(" (x=%s, y=%s)", rec.XAxis, rec.YAxis))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }

package analysis

import (
	"regexp"
	"strconv"
	"strings"
)

// Column roles.
const (
	RoleNumeric     = "numeric"
	RoleCategorical = "categorical"
	RoleDate        = "date"
)

// Names of synthesized columns.
const (
	TotalHoursColumn = "total_hours"
	CountColumn      = "count"
)

// durationSources are checked in order; the first present column feeds total_hours.
var durationSources = []string{"Total Time Worked", "Total"}

// dateKeywords mark categorical columns that are reinterpreted as dates.
var dateKeywords = []string{"date", "time", "day", "month", "year"}

// numberKeywords mark categorical columns whose embedded digits are extracted
// into a derived "<name>_numeric" column.
var numberKeywords = []string{"total", "sum", "count", "amount", "price", "cost", "value", "number"}

// NumericSuffix is appended to the name of a digit-extracted column.
const NumericSuffix = "_numeric"

var leadingNumber = regexp.MustCompile(`\d+\.?\d*`)

// Classification holds the column role lists. Each list keeps dataset order
// and contains no duplicates.
type Classification struct {
	Numeric     []string `json:"numeric_columns" yaml:"numeric_columns"`
	Categorical []string `json:"categorical_columns" yaml:"categorical_columns"`
	Date        []string `json:"date_columns" yaml:"date_columns"`
}

// Role returns the role assigned to name, or "" if it is unclassified.
func (c Classification) Role(name string) string {
	switch {
	case contains(c.Numeric, name):
		return RoleNumeric
	case contains(c.Date, name):
		return RoleDate
	case contains(c.Categorical, name):
		return RoleCategorical
	default:
		return ""
	}
}

// Classify assigns every column of ds a role. It mutates ds: derived columns
// (total_hours, <name>_numeric, count) are appended and date-reinterpreted columns have their
// values replaced with parsed dates. It never fails on individual values.
func Classify(ds *Dataset) Classification {
	var cls Classification
	numeric := map[string]bool{}
	for _, c := range ds.Columns {
		if isNumericColumn(c) {
			numeric[c.Name] = true
		}
	}

	var derivedNumeric []string
	derived := map[string]bool{}
	for _, src := range durationSources {
		col := ds.Column(src)
		if col == nil {
			continue
		}
		vals := make([]Value, len(col.Values))
		for i, v := range col.Values {
			vals[i] = Value{Kind: Number, Num: durationHours(v)}
		}
		setDerived(ds, TotalHoursColumn, vals)
		if !numeric[TotalHoursColumn] {
			derivedNumeric = append(derivedNumeric, TotalHoursColumn)
			derived[TotalHoursColumn] = true
		}
		numeric[TotalHoursColumn] = true
		break
	}

	for _, c := range ds.Columns {
		name := c.Name
		if numeric[name] {
			if !derived[name] {
				cls.Numeric = append(cls.Numeric, name)
			}
			continue
		}
		if hasKeyword(name, dateKeywords) {
			if coerced, ok := coerceDates(c.Values); ok {
				c.Values = coerced
				cls.Date = append(cls.Date, name)
				continue
			}
			cls.Categorical = append(cls.Categorical, name)
			continue
		}
		if parsed, ok := parseDates(c.Values); ok {
			c.Values = parsed
			cls.Date = append(cls.Date, name)
			continue
		}
		cls.Categorical = append(cls.Categorical, name)
	}
	cls.Numeric = append(cls.Numeric, derivedNumeric...)

	for _, name := range cls.Categorical {
		target := name + NumericSuffix
		if !hasKeyword(name, numberKeywords) || ds.Has(target) {
			continue
		}
		vals, ok := extractNumbers(ds.Column(name).Values)
		if !ok {
			continue
		}
		_ = ds.Append(&Column{Name: target, Values: vals, Derived: true})
		cls.Numeric = append(cls.Numeric, target)
	}

	if len(cls.Numeric) == 0 {
		ones := make([]Value, ds.Rows())
		for i := range ones {
			ones[i] = Value{Kind: Number, Num: 1}
		}
		setDerived(ds, CountColumn, ones)
		cls.Categorical = remove(cls.Categorical, CountColumn)
		cls.Date = remove(cls.Date, CountColumn)
		cls.Numeric = []string{CountColumn}
	}
	return cls
}

// setDerived appends a derived column or overwrites an existing one in place.
func setDerived(ds *Dataset, name string, vals []Value) {
	if c := ds.Column(name); c != nil {
		c.Values = vals
		return
	}
	_ = ds.Append(&Column{Name: name, Values: vals, Derived: true})
}

// isNumericColumn requires at least one number and no string cells.
func isNumericColumn(c *Column) bool {
	seen := false
	for _, v := range c.Values {
		switch v.Kind {
		case Number:
			seen = true
		case Missing:
		default:
			return false
		}
	}
	return seen
}

func hasKeyword(name string, keywords []string) bool {
	lower := strings.ToLower(name)
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// extractNumbers takes the first run of digits (with an optional fraction)
// from each string cell; cells without one become missing. It fails when no
// cell matched.
func extractNumbers(vals []Value) ([]Value, bool) {
	out := make([]Value, len(vals))
	matched := 0
	for i, v := range vals {
		out[i] = Value{Kind: Missing}
		if v.Kind != String {
			continue
		}
		m := leadingNumber.FindString(v.Str)
		if m == "" {
			continue
		}
		f, err := strconv.ParseFloat(m, 64)
		if err != nil {
			continue
		}
		out[i] = Value{Kind: Number, Num: f}
		matched++
	}
	return out, matched > 0
}

// parseDates is the all-or-nothing variant: every non-missing value must parse.
func parseDates(vals []Value) ([]Value, bool) {
	out := make([]Value, len(vals))
	seen := 0
	for i, v := range vals {
		switch v.Kind {
		case Missing:
			out[i] = Value{Kind: Date}
			continue
		case Date:
			out[i] = v
			seen++
			continue
		case String:
		default:
			return nil, false
		}
		t, ok := parseTimeMaybe(v.Str)
		if !ok {
			return nil, false
		}
		out[i] = Value{Kind: Date, Time: t}
		seen++
	}
	return out, seen > 0
}

// coerceDates is the keyword variant: unparsable values become null dates.
// It only fails when nothing in the column parses.
func coerceDates(vals []Value) ([]Value, bool) {
	out := make([]Value, len(vals))
	parsed := 0
	for i, v := range vals {
		out[i] = Value{Kind: Date}
		switch v.Kind {
		case Date:
			out[i] = v
			if !v.Time.IsZero() {
				parsed++
			}
		case String:
			if t, ok := parseTimeMaybe(v.Str); ok {
				out[i] = Value{Kind: Date, Time: t}
				parsed++
			}
		}
	}
	return out, parsed > 0
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

func remove(list []string, s string) []string {
	out := list[:0:0]
	for _, x := range list {
		if x != s {
			out = append(out, x)
		}
	}
	return out
}

package analysis

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidCSV is returned (wrapped) when the payload cannot be turned into a dataset.
var ErrInvalidCSV = errors.New("invalid csv")

// Options controls CSV parsing and value interpretation.
type Options struct {
	// Delimiter for CSV. If 0, sniffs among ',', ';', '\t' from the header line.
	Delimiter rune
	// Numeric parsing locale. DecimalSeparator 0 means '.'.
	DecimalSeparator rune
	// ThousandsSeparator is stripped before parsing; 0 means none is accepted.
	ThousandsSeparator rune
}

// DefaultOptions returns the parsing behaviour used when nothing is configured.
func DefaultOptions() Options {
	return Options{DecimalSeparator: '.'}
}

// ValueKind tags a scalar cell.
type ValueKind int

const (
	Missing ValueKind = iota
	String
	Number
	Date
)

// Value is a single scalar cell. A Date value with a zero Time is the null date marker.
type Value struct {
	Kind ValueKind
	Str  string
	Num  float64
	Time time.Time
}

// IsNullDate reports whether v is the marker left by per-value date coercion.
func (v Value) IsNullDate() bool { return v.Kind == Date && v.Time.IsZero() }

// String renders the value the way it would appear in a CSV cell.
func (v Value) String() string {
	switch v.Kind {
	case String:
		return v.Str
	case Number:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case Date:
		if v.Time.IsZero() {
			return ""
		}
		if v.Time.Hour() == 0 && v.Time.Minute() == 0 && v.Time.Second() == 0 {
			return v.Time.Format("2006-01-02")
		}
		return v.Time.Format(time.RFC3339)
	default:
		return ""
	}
}

// Column is a named, ordered sequence of values.
type Column struct {
	Name    string
	Values  []Value
	Derived bool
}

// Dataset is an ordered set of equal-length columns.
type Dataset struct {
	Columns []*Column
	rows    int
	index   map[string]int
}

// NewDataset builds a dataset from columns, which must all have the same length.
func NewDataset(cols []*Column) (*Dataset, error) {
	ds := &Dataset{index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if i == 0 {
			ds.rows = len(c.Values)
		} else if len(c.Values) != ds.rows {
			return nil, fmt.Errorf("column %q has %d values, want %d", c.Name, len(c.Values), ds.rows)
		}
		if _, dup := ds.index[c.Name]; dup {
			return nil, fmt.Errorf("duplicate column %q", c.Name)
		}
		ds.index[c.Name] = i
		ds.Columns = append(ds.Columns, c)
	}
	return ds, nil
}

// Rows returns the number of rows.
func (d *Dataset) Rows() int { return d.rows }

// Names returns column names in order.
func (d *Dataset) Names() []string {
	out := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		out[i] = c.Name
	}
	return out
}

// Has reports whether a column with the given name exists.
func (d *Dataset) Has(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Column returns the named column or nil.
func (d *Dataset) Column(name string) *Column {
	i, ok := d.index[name]
	if !ok {
		return nil
	}
	return d.Columns[i]
}

// Append adds a derived column. It is a no-op if the name already exists.
func (d *Dataset) Append(c *Column) error {
	if d.Has(c.Name) {
		return nil
	}
	if len(c.Values) != d.rows {
		return fmt.Errorf("column %q has %d values, want %d", c.Name, len(c.Values), d.rows)
	}
	d.index[c.Name] = len(d.Columns)
	d.Columns = append(d.Columns, c)
	return nil
}

// ParseCSV parses raw CSV text into a Dataset. The first record is the header.
// Cells are trimmed; empty cells become Missing; numbers are typed per Options.
func ParseCSV(text string, opt Options) (*Dataset, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: no data provided", ErrInvalidCSV)
	}
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(text)
	}
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.Comma = delim

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: missing header", ErrInvalidCSV)
		}
		return nil, fmt.Errorf("%w: read header: %v", ErrInvalidCSV, err)
	}
	names := headerNames(header)
	ncol := len(names)

	raw := make([][]string, ncol)
	rows := 0
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("%w: read row %d: %v", ErrInvalidCSV, rows+1, err)
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" && ncol > 1 {
			continue
		}
		rows++
		for j := 0; j < ncol; j++ {
			cell := ""
			if j < len(rec) {
				cell = strings.TrimSpace(rec[j])
			}
			raw[j] = append(raw[j], cell)
		}
	}
	if rows == 0 {
		return nil, fmt.Errorf("%w: csv has no data rows", ErrInvalidCSV)
	}

	cols := make([]*Column, ncol)
	for j, name := range names {
		cols[j] = typeColumn(name, raw[j], opt)
	}
	return NewDataset(cols)
}

// typeColumn turns raw cells into a column. Cells become Number only when every
// non-empty cell in the column parses as a number.
func typeColumn(name string, cells []string, opt Options) *Column {
	c := &Column{Name: name, Values: make([]Value, len(cells))}
	nums := make([]float64, len(cells))
	allNumeric := true
	seen := 0
	for i, s := range cells {
		if s == "" {
			continue
		}
		seen++
		x, ok := parseNumeric(s, opt)
		if !ok {
			allNumeric = false
			break
		}
		nums[i] = x
	}
	for i, s := range cells {
		switch {
		case s == "":
			c.Values[i] = Value{Kind: Missing}
		case allNumeric && seen > 0:
			c.Values[i] = Value{Kind: Number, Num: nums[i]}
		default:
			c.Values[i] = Value{Kind: String, Str: s}
		}
	}
	return c
}

func headerNames(header []string) []string {
	names := make([]string, len(header))
	used := make(map[string]bool, len(header))
	for i, h := range header {
		n := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if n == "" {
			n = fmt.Sprintf("Unnamed: %d", i)
		}
		if used[n] {
			for k := 1; ; k++ {
				cand := fmt.Sprintf("%s.%d", n, k)
				if !used[cand] {
					n = cand
					break
				}
			}
		}
		used[n] = true
		names[i] = n
	}
	return names
}

// sniffDelimiter picks the most frequent of ',', ';' and tab in the header line.
func sniffDelimiter(text string) rune {
	line := text
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		line = text[:i]
	}
	best, bestN := ',', strings.Count(line, ",")
	for _, d := range []rune{';', '\t'} {
		if n := strings.Count(line, string(d)); n > bestN {
			best, bestN = d, n
		}
	}
	return best
}

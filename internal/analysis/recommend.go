package analysis

import "fmt"

// Chart families.
const (
	ChartBar     = "bar"
	ChartLine    = "line"
	ChartPie     = "pie"
	ChartScatter = "scatter"
)

// ChartFamilies is the fixed recommendation order and the default selection.
var ChartFamilies = []string{ChartBar, ChartLine, ChartPie, ChartScatter}

// Recommendation is the suitability verdict for one chart family.
// Axis fields are empty when Suitable is false.
type Recommendation struct {
	Type     string `json:"type" yaml:"type"`
	Suitable bool   `json:"suitable" yaml:"suitable"`
	Message  string `json:"message" yaml:"message"`
	XAxis    string `json:"x_axis,omitempty" yaml:"x_axis,omitempty"`
	YAxis    string `json:"y_axis,omitempty" yaml:"y_axis,omitempty"`
	Labels   string `json:"labels,omitempty" yaml:"labels,omitempty"`
	Values   string `json:"values,omitempty" yaml:"values,omitempty"`
	Title    string `json:"title,omitempty" yaml:"title,omitempty"`
}

// Recommend produces one Recommendation per chart family in ChartFamilies
// order. Bindings always take the first column of the relevant role list.
func Recommend(cls Classification) []Recommendation {
	num, cat, dates := cls.Numeric, cls.Categorical, cls.Date
	recs := make([]Recommendation, 0, len(ChartFamilies))

	if len(num) > 0 && len(cat) > 0 {
		recs = append(recs, Recommendation{
			Type:     ChartBar,
			Suitable: true,
			Message:  "Bar charts are great for comparing values across categories.",
			XAxis:    cat[0],
			YAxis:    num[0],
			Title:    fmt.Sprintf("%s by %s", num[0], cat[0]),
		})
	} else {
		recs = append(recs, Recommendation{
			Type:    ChartBar,
			Message: "Bar charts require at least one numeric and one categorical column.",
		})
	}

	switch {
	case len(dates) > 0 && len(num) > 0:
		recs = append(recs, Recommendation{
			Type:     ChartLine,
			Suitable: true,
			Message:  "Line charts are perfect for showing trends over time.",
			XAxis:    dates[0],
			YAxis:    num[0],
			Title:    fmt.Sprintf("%s over time", num[0]),
		})
	case len(num) >= 2:
		recs = append(recs, Recommendation{
			Type:     ChartLine,
			Suitable: true,
			Message:  "Line charts can show relationships between numeric values.",
			XAxis:    num[0],
			YAxis:    num[1],
			Title:    fmt.Sprintf("%s vs %s", num[1], num[0]),
		})
	default:
		recs = append(recs, Recommendation{
			Type:    ChartLine,
			Message: "Line charts require at least one date column and one numeric column, or two numeric columns.",
		})
	}

	if len(num) > 0 && len(cat) > 0 {
		recs = append(recs, Recommendation{
			Type:     ChartPie,
			Suitable: true,
			Message:  "Pie charts show the composition of a whole.",
			Labels:   cat[0],
			Values:   num[0],
			Title:    fmt.Sprintf("Distribution of %s by %s", num[0], cat[0]),
		})
	} else {
		recs = append(recs, Recommendation{
			Type:    ChartPie,
			Message: "Pie charts require at least one numeric and one categorical column.",
		})
	}

	if len(num) >= 2 {
		recs = append(recs, Recommendation{
			Type:     ChartScatter,
			Suitable: true,
			Message:  "Scatter plots show the relationship between two variables.",
			XAxis:    num[0],
			YAxis:    num[1],
			Title:    fmt.Sprintf("%s vs %s", num[1], num[0]),
		})
	} else {
		recs = append(recs, Recommendation{
			Type:    ChartScatter,
			Message: "Scatter plots require at least two numeric columns.",
		})
	}
	return recs
}

// Lookup returns the recommendation for a chart type, if any.
func Lookup(recs []Recommendation, chartType string) (Recommendation, bool) {
	for _, r := range recs {
		if r.Type == chartType {
			return r, true
		}
	}
	return Recommendation{}, false
}

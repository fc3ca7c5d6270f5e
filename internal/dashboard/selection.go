package dashboard

import "github.com/KaramelBytes/dashloom-cli/internal/analysis"

// Slots is the number of chart positions on a dashboard.
const Slots = 4

// DefaultChartTypes returns the default selection in its fixed order.
func DefaultChartTypes() []string {
	return append([]string(nil), analysis.ChartFamilies...)
}

// NormalizeSelection returns exactly Slots chart-type tokens. Requested tokens
// keep their order and are not validated; missing positions are filled with
// defaults not already present, then by cycling the request.
func NormalizeSelection(requested []string) []string {
	defaults := DefaultChartTypes()
	if len(requested) == 0 {
		return defaults[:Slots]
	}
	out := make([]string, 0, Slots+len(requested))
	out = append(out, requested...)
	present := make(map[string]bool, len(requested))
	for _, t := range requested {
		present[t] = true
	}
	for _, t := range defaults {
		if len(out) >= Slots {
			break
		}
		if !present[t] {
			out = append(out, t)
			present[t] = true
		}
	}
	for i := 0; len(out) < Slots; i++ {
		out = append(out, requested[i%len(requested)])
	}
	return out[:Slots]
}

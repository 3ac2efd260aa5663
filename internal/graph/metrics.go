package graph

import "xsdindex/internal/schema"

// WarningCodeCounts tallies warnings by code.
func WarningCodeCounts(warnings []schema.Warning) map[string]int {
	counts := make(map[string]int)
	for _, w := range warnings {
		counts[w.Code]++
	}
	return counts
}

// =============================================================================
// Promo Price Validator - Overlap Detector
// =============================================================================
//
// This module finds promotions for the same (ProductID, Country) whose
// [StartDate, EndDate] intervals intersect. Bounds are inclusive: touching
// endpoints count as overlap, and exact duplicate ranges overlap by
// definition.
//
// This is the one check that breaks per-row independence, so it is isolated
// behind a narrow contract: normalized rows in, set of overlapping row
// numbers out. The per-row rule set stays independent of it.
//
// ALGORITHM:
//   Rows are grouped by (ProductID, Country). Within each group, rows with
//   unparseable dates are skipped (the date rules already flag them), the
//   rest are sorted by StartDate, and a single sweep tracks the maximum
//   EndDate seen so far. A row whose StartDate is <= that running maximum
//   overlaps the row holding it; both are flagged. This finds every row
//   involved in at least one overlapping pair in O(n log n) per group.
//
// =============================================================================

package overlap

import (
	"sort"

	"github.com/ginjaninja78/promo-validator/internal/types"
)

// groupKey identifies one sweep group.
type groupKey struct {
	ProductID string
	Country   string
}

// Detect returns the set of row numbers involved in at least one overlapping
// pair. Rows missing a product, country, or a parseable date never
// participate.
func Detect(rows []types.NormalizedRow) map[int]bool {
	groups := make(map[groupKey][]*types.NormalizedRow)
	for i := range rows {
		row := &rows[i]
		if row.ProductID == "" || row.Country == "" {
			continue
		}
		if !row.StartDate.Valid() || !row.EndDate.Valid() {
			continue
		}
		key := groupKey{ProductID: row.ProductID, Country: row.Country}
		groups[key] = append(groups[key], row)
	}

	overlapping := make(map[int]bool)
	for _, group := range groups {
		sweep(group, overlapping)
	}
	return overlapping
}

// sweep marks overlapping rows within one (ProductID, Country) group.
func sweep(group []*types.NormalizedRow, overlapping map[int]bool) {
	// A single promotion cannot overlap itself.
	if len(group) < 2 {
		return
	}

	// Sort by StartDate; break ties by input order so results are
	// deterministic regardless of map iteration.
	sort.SliceStable(group, func(i, j int) bool {
		return group[i].StartDate.Value.Before(group[j].StartDate.Value)
	})

	// maxEnd is the latest EndDate seen so far; holder is the row carrying
	// it. Every subsequent row whose StartDate does not pass maxEnd overlaps
	// the holder, since the holder started no later than it.
	holder := group[0]
	maxEnd := holder.EndDate.Value

	for _, row := range group[1:] {
		if !row.StartDate.Value.After(maxEnd) {
			overlapping[holder.RowNumber] = true
			overlapping[row.RowNumber] = true
		}
		if row.EndDate.Value.After(maxEnd) {
			holder = row
			maxEnd = row.EndDate.Value
		}
	}
}

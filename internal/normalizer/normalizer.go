// =============================================================================
// Promo Price Validator - Field Normalizer
// =============================================================================
//
// This module coerces raw cell values from CSV/XLSX files into typed values.
// It is a purely functional mapping RawRow -> NormalizedRow with no side
// effects:
//   - Text fields are trimmed; an empty string means missing
//   - Numeric fields are parsed as decimals; failures are marked unparseable
//     rather than raised, so the rule set can report them as findings
//   - Date fields are parsed against an ordered list of accepted layouts;
//     the first layout that parses wins
//
// Dates are calendar dates, not timestamps. No timezone conversion happens
// here or anywhere downstream.
//
// =============================================================================

package normalizer

import (
	"strconv"
	"strings"
	"time"

	"github.com/ginjaninja78/promo-validator/internal/types"
)

// Normalize coerces a single raw row into a NormalizedRow using the given
// ordered list of accepted date layouts. rowNumber is the 1-indexed position
// of the row among the data rows of the source file.
func Normalize(raw types.RawRow, rowNumber int, dateFormats []string) types.NormalizedRow {
	return types.NormalizedRow{
		Raw:       raw,
		RowNumber: rowNumber,

		ProductID: text(raw, types.FieldProductID),
		ItemID:    text(raw, types.FieldItemID),
		Country:   text(raw, types.FieldCountry),

		ActualPrice:     number(raw, types.FieldActualPrice),
		PromoPrice:      number(raw, types.FieldPromoPrice),
		DiscountPercent: number(raw, types.FieldDiscountPercent),

		StartDate: date(raw, types.FieldStartDate, dateFormats),
		EndDate:   date(raw, types.FieldEndDate, dateFormats),
	}
}

// NormalizeAll coerces every raw row, preserving input order. Row numbers
// start at 1.
func NormalizeAll(rows []types.RawRow, dateFormats []string) []types.NormalizedRow {
	normalized := make([]types.NormalizedRow, len(rows))
	for i, raw := range rows {
		normalized[i] = Normalize(raw, i+1, dateFormats)
	}
	return normalized
}

// =============================================================================
// FIELD COERCION
// =============================================================================

// text returns the trimmed cell value for the given column; empty means
// missing.
func text(raw types.RawRow, field string) string {
	return strings.TrimSpace(raw[field])
}

// number parses the cell as a decimal. An empty cell is absent; a non-empty
// cell that does not parse is marked unparseable.
func number(raw types.RawRow, field string) types.NumberField {
	value := strings.TrimSpace(raw[field])
	if value == "" {
		return types.NumberField{}
	}

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return types.NumberField{Present: true}
	}

	return types.NumberField{Value: parsed, Present: true, Parsed: true}
}

// date parses the cell against each accepted layout in order. The first
// layout that parses the value wins; failure to match any layout yields an
// unparseable marker.
func date(raw types.RawRow, field string, layouts []string) types.DateField {
	value := strings.TrimSpace(raw[field])
	if value == "" {
		return types.DateField{}
	}

	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return types.DateField{Value: parsed, Present: true, Parsed: true}
		}
	}

	return types.DateField{Present: true}
}

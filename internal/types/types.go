// =============================================================================
// Promo Price Validator - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - normalizer
//   - rules
//   - overlap
//   - engine
//   - report
//
// =============================================================================

package types

import (
	"fmt"
	"time"
)

// =============================================================================
// SEVERITY LEVELS
// =============================================================================

// Severity indicates how a Finding affects a row's validity.
// "error" invalidates the row; "warning" merely annotates it.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// =============================================================================
// FINDING KINDS
// =============================================================================

// Kind identifies the rule a Finding was produced by. Kinds are stable
// identifiers used in summaries and exports, not display text.
type Kind string

const (
	KindInvalidActualPrice   Kind = "invalid_actual_price"
	KindInvalidPromoPrice    Kind = "invalid_promo_price"
	KindPromoExceedsActual   Kind = "promo_exceeds_actual"
	KindDiscountMismatch     Kind = "discount_mismatch"
	KindDiscountOutOfRange   Kind = "discount_out_of_range"
	KindInvalidDate          Kind = "invalid_date"
	KindStartAfterEnd        Kind = "start_after_end"
	KindEndedInPast          Kind = "ended_in_past"
	KindUnknownCountry       Kind = "unknown_country"
	KindOverlappingPromotion Kind = "overlapping_promotion"
)

// MissingFieldKind returns the Kind reported when a required field is missing
// or unparseable, e.g. "missing_field:ProductID".
func MissingFieldKind(field string) Kind {
	return Kind("missing_field:" + field)
}

// =============================================================================
// FINDING
// =============================================================================

// Finding represents a single rule violation attached to a row.
type Finding struct {
	// Kind is the stable identifier of the violated rule.
	Kind Kind

	// Severity is SeverityError or SeverityWarning.
	Severity string

	// Message is a human-readable description for reports and logs.
	Message string
}

// String formats the Finding for error logs.
func (f Finding) String() string {
	return fmt.Sprintf("[%s] %s: %s", f.Severity, f.Kind, f.Message)
}

// =============================================================================
// ROW TYPES
// =============================================================================

// RawRow is one input record as read from the source file: a mapping from
// column name to the raw cell string. It is never modified after parsing.
type RawRow map[string]string

// Required field names recognized by the engine. These match the column
// headers expected in the input file.
const (
	FieldProductID       = "ProductID"
	FieldItemID          = "ItemID"
	FieldActualPrice     = "ActualPrice"
	FieldPromoPrice      = "PromoPrice"
	FieldDiscountPercent = "DiscountPercent"
	FieldStartDate       = "StartDate"
	FieldEndDate         = "EndDate"
	FieldCountry         = "Country"
)

// RequiredFields lists the fields every row must carry, in canonical order.
// DiscountPercent is optional and intentionally absent.
var RequiredFields = []string{
	FieldProductID,
	FieldItemID,
	FieldActualPrice,
	FieldPromoPrice,
	FieldStartDate,
	FieldEndDate,
	FieldCountry,
}

// NumberField holds the result of parsing a numeric cell.
type NumberField struct {
	// Value is the parsed number. Only meaningful when Parsed is true.
	Value float64

	// Present is true when the cell was non-empty after trimming.
	Present bool

	// Parsed is true when the cell parsed as a decimal number.
	Parsed bool
}

// Valid reports whether the field carries a usable value.
func (f NumberField) Valid() bool {
	return f.Present && f.Parsed
}

// DateField holds the result of parsing a date cell. Dates are calendar
// dates, not timestamps; no timezone conversion is performed.
type DateField struct {
	// Value is the parsed date at midnight UTC. Only meaningful when Parsed
	// is true.
	Value time.Time

	// Present is true when the cell was non-empty after trimming.
	Present bool

	// Parsed is true when the cell matched one of the accepted formats.
	Parsed bool
}

// Valid reports whether the field carries a usable value.
func (f DateField) Valid() bool {
	return f.Present && f.Parsed
}

// NormalizedRow is a RawRow after type coercion. It is created once by the
// normalizer and never mutated afterwards; all checks read it and write only
// to their own findings lists.
type NormalizedRow struct {
	// Raw is the original input row, retained for display and export.
	Raw RawRow

	// RowNumber is the 1-indexed position of the row among the data rows of
	// the input file, used for error reporting.
	RowNumber int

	// ProductID and ItemID are the trimmed text identifiers; empty means
	// missing.
	ProductID string
	ItemID    string

	// Country is the trimmed country identifier; empty means missing.
	Country string

	ActualPrice     NumberField
	PromoPrice      NumberField
	DiscountPercent NumberField

	StartDate DateField
	EndDate   DateField
}

// =============================================================================
// VALIDATION OUTPUT
// =============================================================================

// AnnotatedRow is one row of engine output: the original fields plus the
// back-filled discount, the ordered findings, and the derived validity flag.
type AnnotatedRow struct {
	// Raw is the original input row, unchanged.
	Raw RawRow

	// RowNumber is the 1-indexed input position of the row.
	RowNumber int

	// DiscountPercent is the supplied discount, or the computed one when the
	// input omitted it. HasDiscount is false when neither could be derived.
	DiscountPercent float64
	HasDiscount     bool

	// Findings lists all violations in canonical rule order, per-row rules
	// first, then cross-row findings.
	Findings []Finding

	// Valid is true when the row has no error-severity Findings. Warnings do
	// not affect validity.
	Valid bool
}

// ErrorText joins the row's finding messages into a single display string,
// the form used in the report's Errors column.
func (r AnnotatedRow) ErrorText() string {
	if len(r.Findings) == 0 {
		return ""
	}
	text := ""
	for i, f := range r.Findings {
		if i > 0 {
			text += "; "
		}
		text += f.Message
	}
	return text
}

// Summary contains the aggregate results of one validation run. It is
// recomputed from scratch on every run, never incrementally updated.
type Summary struct {
	// TotalRows is the number of data rows validated.
	TotalRows int

	// ValidRows counts rows with no error-severity Findings.
	ValidRows int

	// InvalidRows counts rows with at least one error-severity Finding.
	InvalidRows int

	// FindingCounts maps each Finding kind to its number of occurrences
	// across all rows.
	FindingCounts map[Kind]int
}

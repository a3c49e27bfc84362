// =============================================================================
// Promo Price Validator - Validation Orchestrator
// =============================================================================
//
// This module runs the whole validation pipeline over an in-memory table:
//   1. Structural check: reject input whose shape cannot be normalized
//   2. Field Normalizer over every row
//   3. Rule Set per row
//   4. Overlap Detector across the table
//   5. Merge findings per row (rule findings first, then overlap findings)
//      and compute the summary
//
// The engine is a pure batch computation: no I/O, no shared state across
// calls, no partial results. Running it twice on the same input produces
// identical output (same row order, same finding order, same summary), so
// re-validation after an edit is always safe. Callers validating several
// files concurrently simply invoke it once per file; no coordination is
// needed.
//
// ERROR HANDLING:
//   Per-row findings never abort the run. Only malformed input shape (a
//   required column absent from the table, or a row carrying none of the
//   required columns) aborts the run entirely, as an error wrapping
//   ErrStructural. The caller is expected to reject the file rather than
//   attempt partial validation.
//
// =============================================================================

package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ginjaninja78/promo-validator/internal/config"
	"github.com/ginjaninja78/promo-validator/internal/normalizer"
	"github.com/ginjaninja78/promo-validator/internal/overlap"
	"github.com/ginjaninja78/promo-validator/internal/rules"
	"github.com/ginjaninja78/promo-validator/internal/types"
)

// ErrStructural marks failures of the whole validation run: the input shape
// cannot be normalized at all. Distinct from per-row findings, which never
// abort a run.
var ErrStructural = errors.New("structural validation failure")

// =============================================================================
// ENGINE
// =============================================================================

// Engine validates tables of promotion rows against the fixed rule set. It
// carries no state across runs; a single Engine is safe to use from multiple
// goroutines.
type Engine struct {
	opts config.Validation

	// now supplies the processing date for the ended-in-past rule.
	// Overridable in tests.
	now func() time.Time
}

// Result is the output of one validation run.
type Result struct {
	// Rows holds one annotated row per input row, in input order.
	Rows []types.AnnotatedRow

	// Summary aggregates the run: totals plus counts by finding kind.
	Summary types.Summary
}

// New creates an Engine with the given validation options.
func New(opts config.Validation) *Engine {
	return &Engine{opts: opts, now: time.Now}
}

// NewAt creates an Engine that treats the given time as the processing date.
func NewAt(opts config.Validation, now time.Time) *Engine {
	return &Engine{opts: opts, now: func() time.Time { return now }}
}

// =============================================================================
// VALIDATION RUN
// =============================================================================

// Validate runs the full pipeline over the table and returns the annotated
// rows and summary. The input is not modified.
func (e *Engine) Validate(raw []types.RawRow) (*Result, error) {
	if err := checkShape(raw); err != nil {
		return nil, err
	}

	normalized := normalizer.NormalizeAll(raw, e.opts.DateFormats)
	today := e.now()

	// Per-row rule findings.
	perRow := make([][]types.Finding, len(normalized))
	for i := range normalized {
		perRow[i] = rules.Evaluate(&normalized[i], e.opts, today)
	}

	// Cross-row overlap findings.
	overlapping := overlap.Detect(normalized)

	result := &Result{
		Rows: make([]types.AnnotatedRow, 0, len(normalized)),
		Summary: types.Summary{
			TotalRows:     len(normalized),
			FindingCounts: make(map[types.Kind]int),
		},
	}

	for i := range normalized {
		row := &normalized[i]

		findings := perRow[i]
		if overlapping[row.RowNumber] {
			findings = append(findings, types.Finding{
				Kind:     types.KindOverlappingPromotion,
				Severity: types.SeverityError,
				Message: fmt.Sprintf("Date range overlaps another promotion for product %s in %s",
					row.ProductID, row.Country),
			})
		}

		annotated := types.AnnotatedRow{
			Raw:       row.Raw,
			RowNumber: row.RowNumber,
			Findings:  findings,
			Valid:     true,
		}
		annotated.DiscountPercent, annotated.HasDiscount = rules.EffectiveDiscount(row)

		for _, f := range findings {
			result.Summary.FindingCounts[f.Kind]++
			if f.Severity == types.SeverityError {
				annotated.Valid = false
			}
		}

		if annotated.Valid {
			result.Summary.ValidRows++
		} else {
			result.Summary.InvalidRows++
		}
		result.Rows = append(result.Rows, annotated)
	}

	return result, nil
}

// =============================================================================
// STRUCTURAL CHECKS
// =============================================================================

// checkShape rejects input that cannot be meaningfully normalized: a table
// whose columns do not include every required field, or a row that carries
// none of the required columns at all.
func checkShape(raw []types.RawRow) error {
	if len(raw) == 0 {
		return nil
	}

	// Column presence is judged across the whole table, since parsers emit
	// the same key set for every row.
	present := make(map[string]bool)
	for _, row := range raw {
		for col := range row {
			present[col] = true
		}
	}

	var missing []string
	for _, field := range types.RequiredFields {
		if !present[field] {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required columns: %s",
			ErrStructural, strings.Join(missing, ", "))
	}

	for i, row := range raw {
		if !hasAnyRequiredColumn(row) {
			return fmt.Errorf("%w: row %d has none of the required columns", ErrStructural, i+1)
		}
	}

	return nil
}

func hasAnyRequiredColumn(row types.RawRow) bool {
	for _, field := range types.RequiredFields {
		if _, ok := row[field]; ok {
			return true
		}
	}
	return false
}

// =============================================================================
// Promo Price Validator - Rule Set
// =============================================================================
//
// This module defines the fixed, ordered collection of per-row business
// rules. Each rule is an independent, pure predicate over a NormalizedRow
// that returns zero or one Finding. All rules are always evaluated (no
// short-circuiting), so a row can report multiple simultaneous issues, and
// the list order is the canonical order findings appear in per row.
//
// ERROR HANDLING:
//   - Findings are collected, never thrown
//   - A missing or unparseable field is reported by the required-field rules;
//     value rules only fire on values that actually parsed
//   - Every finding carries a severity: "error" invalidates the row,
//     "warning" (ended_in_past by default) does not
//
// =============================================================================

package rules

import (
	"fmt"
	"math"
	"time"

	"github.com/ginjaninja78/promo-validator/internal/config"
	"github.com/ginjaninja78/promo-validator/internal/types"
)

// =============================================================================
// RULE TYPE
// =============================================================================

// Rule is a single named check over a normalized row. Check returns nil when
// the rule passes.
type Rule struct {
	// Name identifies the rule in logs and per-rule tests.
	Name string

	// Check evaluates the rule. It must not modify the row.
	Check func(row *types.NormalizedRow) *types.Finding
}

// =============================================================================
// RULE SET CONSTRUCTION
// =============================================================================

// Set builds the ordered rule list for the given options. today is the
// processing date used by the ended-in-past rule; only its calendar date is
// significant.
func Set(opts config.Validation, today time.Time) []Rule {
	today = truncateToDate(today)

	rules := make([]Rule, 0, len(types.RequiredFields)+9)

	// Required-field rules, one per field, in canonical field order.
	for _, field := range types.RequiredFields {
		rules = append(rules, requiredFieldRule(field))
	}

	rules = append(rules,
		Rule{Name: "actual_price_positive", Check: checkActualPricePositive},
		Rule{Name: "promo_price_non_negative", Check: checkPromoPriceNonNegative},
		Rule{Name: "price_order", Check: checkPriceOrder},
		Rule{Name: "discount_tolerance", Check: checkDiscountTolerance(opts.DiscountTolerance)},
		Rule{Name: "discount_range", Check: checkDiscountRange},
		Rule{Name: "date_validity", Check: checkDateValidity},
		Rule{Name: "date_order", Check: checkDateOrder},
		Rule{Name: "past_end", Check: checkPastEnd(today, opts.PastEndIsWarning())},
		Rule{Name: "country_membership", Check: checkCountryMembership(opts)},
	)

	return rules
}

// Evaluate runs every rule in order against the row and returns the findings
// it produced, in rule order.
func Evaluate(row *types.NormalizedRow, opts config.Validation, today time.Time) []types.Finding {
	var findings []types.Finding
	for _, rule := range Set(opts, today) {
		if f := rule.Check(row); f != nil {
			findings = append(findings, *f)
		}
	}
	return findings
}

// =============================================================================
// REQUIRED-FIELD RULES
// =============================================================================

// requiredFieldRule reports a field that is missing or failed to parse.
func requiredFieldRule(field string) Rule {
	return Rule{
		Name: "required_" + field,
		Check: func(row *types.NormalizedRow) *types.Finding {
			if fieldUsable(row, field) {
				return nil
			}
			return &types.Finding{
				Kind:     types.MissingFieldKind(field),
				Severity: types.SeverityError,
				Message:  fmt.Sprintf("Missing or invalid %s", field),
			}
		},
	}
}

// fieldUsable reports whether the named required field carries a usable
// value on the row.
func fieldUsable(row *types.NormalizedRow, field string) bool {
	switch field {
	case types.FieldProductID:
		return row.ProductID != ""
	case types.FieldItemID:
		return row.ItemID != ""
	case types.FieldCountry:
		return row.Country != ""
	case types.FieldActualPrice:
		return row.ActualPrice.Valid()
	case types.FieldPromoPrice:
		return row.PromoPrice.Valid()
	case types.FieldStartDate:
		return row.StartDate.Valid()
	case types.FieldEndDate:
		return row.EndDate.Valid()
	default:
		return true
	}
}

// =============================================================================
// PRICE RULES
// =============================================================================

func checkActualPricePositive(row *types.NormalizedRow) *types.Finding {
	if !row.ActualPrice.Valid() || row.ActualPrice.Value > 0 {
		return nil
	}
	return &types.Finding{
		Kind:     types.KindInvalidActualPrice,
		Severity: types.SeverityError,
		Message:  fmt.Sprintf("ActualPrice must be > 0, got %g", row.ActualPrice.Value),
	}
}

func checkPromoPriceNonNegative(row *types.NormalizedRow) *types.Finding {
	if !row.PromoPrice.Valid() || row.PromoPrice.Value >= 0 {
		return nil
	}
	return &types.Finding{
		Kind:     types.KindInvalidPromoPrice,
		Severity: types.SeverityError,
		Message:  fmt.Sprintf("PromoPrice must be >= 0, got %g", row.PromoPrice.Value),
	}
}

// checkPriceOrder flags a promo price above the actual price. Recorded as an
// error; any override workflow belongs to the host application, not the
// engine.
func checkPriceOrder(row *types.NormalizedRow) *types.Finding {
	if !row.ActualPrice.Valid() || !row.PromoPrice.Valid() {
		return nil
	}
	if row.PromoPrice.Value <= row.ActualPrice.Value {
		return nil
	}
	return &types.Finding{
		Kind:     types.KindPromoExceedsActual,
		Severity: types.SeverityError,
		Message:  fmt.Sprintf("PromoPrice %g exceeds ActualPrice %g", row.PromoPrice.Value, row.ActualPrice.Value),
	}
}

// =============================================================================
// DISCOUNT RULES
// =============================================================================

// ComputedDiscount derives the discount percentage from the two prices,
// rounded to two decimal places. It reports false when ActualPrice is
// missing, unparseable, or zero, or when PromoPrice is unusable; those cases
// are already covered by other rules.
func ComputedDiscount(row *types.NormalizedRow) (float64, bool) {
	if !row.ActualPrice.Valid() || row.ActualPrice.Value == 0 || !row.PromoPrice.Valid() {
		return 0, false
	}
	discount := (row.ActualPrice.Value - row.PromoPrice.Value) / row.ActualPrice.Value * 100
	return roundTo2(discount), true
}

// EffectiveDiscount returns the supplied DiscountPercent when the input
// carried one, otherwise the computed discount. Absence of a supplied
// discount is not a finding; the computed value is back-filled downstream.
func EffectiveDiscount(row *types.NormalizedRow) (float64, bool) {
	if row.DiscountPercent.Valid() {
		return row.DiscountPercent.Value, true
	}
	return ComputedDiscount(row)
}

// checkDiscountTolerance compares the supplied discount with the computed
// one. The rule is skipped when no discount was supplied or when the
// computed value is unavailable.
func checkDiscountTolerance(tolerance float64) func(row *types.NormalizedRow) *types.Finding {
	return func(row *types.NormalizedRow) *types.Finding {
		if !row.DiscountPercent.Valid() {
			return nil
		}
		computed, ok := ComputedDiscount(row)
		if !ok {
			return nil
		}
		deviation := math.Abs(row.DiscountPercent.Value - computed)
		if deviation <= tolerance {
			return nil
		}
		return &types.Finding{
			Kind:     types.KindDiscountMismatch,
			Severity: types.SeverityError,
			Message: fmt.Sprintf("DiscountPercent %g deviates from computed %g by %g (tolerance %g)",
				row.DiscountPercent.Value, computed, roundTo2(deviation), tolerance),
		}
	}
}

// checkDiscountRange validates the effective (given or computed) discount
// against the 0-100 range.
func checkDiscountRange(row *types.NormalizedRow) *types.Finding {
	discount, ok := EffectiveDiscount(row)
	if !ok || (discount >= 0 && discount <= 100) {
		return nil
	}
	return &types.Finding{
		Kind:     types.KindDiscountOutOfRange,
		Severity: types.SeverityError,
		Message:  fmt.Sprintf("DiscountPercent %g is outside 0-100", discount),
	}
}

// =============================================================================
// DATE RULES
// =============================================================================

// checkDateValidity flags rows whose date cells were present but did not
// match any accepted format.
func checkDateValidity(row *types.NormalizedRow) *types.Finding {
	startBad := row.StartDate.Present && !row.StartDate.Parsed
	endBad := row.EndDate.Present && !row.EndDate.Parsed
	if !startBad && !endBad {
		return nil
	}

	which := "StartDate"
	if startBad && endBad {
		which = "StartDate and EndDate"
	} else if endBad {
		which = "EndDate"
	}
	return &types.Finding{
		Kind:     types.KindInvalidDate,
		Severity: types.SeverityError,
		Message:  fmt.Sprintf("%s could not be parsed as a date", which),
	}
}

func checkDateOrder(row *types.NormalizedRow) *types.Finding {
	if !row.StartDate.Valid() || !row.EndDate.Valid() {
		return nil
	}
	if !row.StartDate.Value.After(row.EndDate.Value) {
		return nil
	}
	return &types.Finding{
		Kind:     types.KindStartAfterEnd,
		Severity: types.SeverityError,
		Message: fmt.Sprintf("StartDate %s is after EndDate %s",
			row.StartDate.Value.Format("2006-01-02"), row.EndDate.Value.Format("2006-01-02")),
	}
}

// checkPastEnd flags promotions that ended strictly before the processing
// date.
func checkPastEnd(today time.Time, asWarning bool) func(row *types.NormalizedRow) *types.Finding {
	severity := types.SeverityError
	if asWarning {
		severity = types.SeverityWarning
	}
	return func(row *types.NormalizedRow) *types.Finding {
		if !row.StartDate.Valid() || !row.EndDate.Valid() {
			return nil
		}
		if !row.EndDate.Value.Before(today) {
			return nil
		}
		return &types.Finding{
			Kind:     types.KindEndedInPast,
			Severity: severity,
			Message: fmt.Sprintf("Promotion ended on %s, before the processing date",
				row.EndDate.Value.Format("2006-01-02")),
		}
	}
}

// =============================================================================
// COUNTRY RULE
// =============================================================================

func checkCountryMembership(opts config.Validation) func(row *types.NormalizedRow) *types.Finding {
	return func(row *types.NormalizedRow) *types.Finding {
		if row.Country == "" || opts.CountryAllowed(row.Country) {
			return nil
		}
		return &types.Finding{
			Kind:     types.KindUnknownCountry,
			Severity: types.SeverityError,
			Message:  fmt.Sprintf("Country %q is not in the allowed set", row.Country),
		}
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// roundTo2 rounds to two decimal places, half away from zero.
func roundTo2(x float64) float64 {
	return math.Round(x*100) / 100
}

// truncateToDate drops the time-of-day component.
func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

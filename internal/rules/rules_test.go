package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/promo-validator/internal/config"
	"github.com/ginjaninja78/promo-validator/internal/normalizer"
	"github.com/ginjaninja78/promo-validator/internal/types"
)

// testToday is the processing date used throughout these tests.
var testToday = time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)

// testOptions returns validation options whose allowed set includes the
// countries the fixtures use.
func testOptions() config.Validation {
	opts := config.DefaultValidation()
	opts.AllowedCountries = []string{"Vietnam", "US", "UK"}
	return opts
}

// validRaw returns a row that passes every rule.
func validRaw() types.RawRow {
	return types.RawRow{
		types.FieldProductID:       "P1",
		types.FieldItemID:          "I1",
		types.FieldActualPrice:     "100",
		types.FieldPromoPrice:      "80",
		types.FieldDiscountPercent: "20",
		types.FieldStartDate:       "2025-10-01",
		types.FieldEndDate:         "2025-10-15",
		types.FieldCountry:         "Vietnam",
	}
}

func evaluate(t *testing.T, raw types.RawRow, opts config.Validation) []types.Finding {
	t.Helper()
	row := normalizer.Normalize(raw, 1, opts.DateFormats)
	return Evaluate(&row, opts, testToday)
}

func kinds(findings []types.Finding) []types.Kind {
	out := make([]types.Kind, 0, len(findings))
	for _, f := range findings {
		out = append(out, f.Kind)
	}
	return out
}

// =============================================================================
// WHOLE-ROW SCENARIOS
// =============================================================================

func TestValidRowHasNoFindings(t *testing.T) {
	findings := evaluate(t, validRaw(), testOptions())
	assert.Empty(t, findings)
}

func TestPromoExceedsActual(t *testing.T) {
	raw := validRaw()
	raw[types.FieldActualPrice] = "50"
	raw[types.FieldPromoPrice] = "60"
	raw[types.FieldDiscountPercent] = ""

	findings := evaluate(t, raw, testOptions())
	assert.Contains(t, kinds(findings), types.KindPromoExceedsActual)
	// The computed discount is -20, so the range rule fires as well.
	assert.Contains(t, kinds(findings), types.KindDiscountOutOfRange)
}

func TestDiscountMismatch(t *testing.T) {
	raw := validRaw()
	raw[types.FieldDiscountPercent] = "10" // computed is 20, deviation 10 > 0.5

	findings := evaluate(t, raw, testOptions())
	require.Len(t, findings, 1)
	assert.Equal(t, types.KindDiscountMismatch, findings[0].Kind)
	assert.Equal(t, types.SeverityError, findings[0].Severity)
}

func TestUnknownCountry(t *testing.T) {
	raw := validRaw()
	raw[types.FieldCountry] = "Narnia"

	findings := evaluate(t, raw, testOptions())
	require.Len(t, findings, 1)
	assert.Equal(t, types.KindUnknownCountry, findings[0].Kind)
}

func TestInvalidDate(t *testing.T) {
	raw := validRaw()
	raw[types.FieldStartDate] = "31/02/2025"

	findings := evaluate(t, raw, testOptions())
	assert.Contains(t, kinds(findings), types.KindInvalidDate)
	// An unparseable required field is also reported as missing.
	assert.Contains(t, kinds(findings), types.MissingFieldKind(types.FieldStartDate))
}

func TestMultipleSimultaneousFindings(t *testing.T) {
	// Rules never short-circuit: a thoroughly broken row reports everything
	// at once, in canonical rule order.
	raw := types.RawRow{
		types.FieldProductID:   "",
		types.FieldItemID:      "I1",
		types.FieldActualPrice: "-1",
		types.FieldPromoPrice:  "-2",
		types.FieldStartDate:   "2025-10-10",
		types.FieldEndDate:     "2025-10-01",
		types.FieldCountry:     "Narnia",
	}

	findings := evaluate(t, raw, testOptions())
	assert.Equal(t, []types.Kind{
		types.MissingFieldKind(types.FieldProductID),
		types.KindInvalidActualPrice,
		types.KindInvalidPromoPrice,
		types.KindDiscountOutOfRange, // computed from the negative prices
		types.KindStartAfterEnd,
		types.KindUnknownCountry,
	}, kinds(findings))
}

// =============================================================================
// REQUIRED-FIELD RULES
// =============================================================================

func TestRequiredFieldsAllReported(t *testing.T) {
	findings := evaluate(t, types.RawRow{}, testOptions())

	var expected []types.Kind
	for _, field := range types.RequiredFields {
		expected = append(expected, types.MissingFieldKind(field))
	}
	assert.Equal(t, expected, kinds(findings))
}

func TestOptionalDiscountAbsenceIsNotAFinding(t *testing.T) {
	raw := validRaw()
	raw[types.FieldDiscountPercent] = ""

	findings := evaluate(t, raw, testOptions())
	assert.Empty(t, findings)
}

func TestUnparseablePriceReportedAsMissing(t *testing.T) {
	raw := validRaw()
	raw[types.FieldActualPrice] = "ten dollars"
	raw[types.FieldDiscountPercent] = ""

	findings := evaluate(t, raw, testOptions())
	assert.Equal(t, []types.Kind{types.MissingFieldKind(types.FieldActualPrice)}, kinds(findings))
}

// =============================================================================
// PRICE RULES
// =============================================================================

func TestActualPriceMustBePositive(t *testing.T) {
	for _, price := range []string{"0", "-10"} {
		raw := validRaw()
		raw[types.FieldActualPrice] = price
		raw[types.FieldDiscountPercent] = ""

		findings := evaluate(t, raw, testOptions())
		assert.Contains(t, kinds(findings), types.KindInvalidActualPrice, "price %s", price)
	}
}

func TestPromoPriceZeroIsAllowed(t *testing.T) {
	raw := validRaw()
	raw[types.FieldPromoPrice] = "0"
	raw[types.FieldDiscountPercent] = "100"

	findings := evaluate(t, raw, testOptions())
	assert.Empty(t, findings, "a free promotion is legal")
}

func TestNegativePromoPrice(t *testing.T) {
	raw := validRaw()
	raw[types.FieldPromoPrice] = "-1"
	raw[types.FieldDiscountPercent] = ""

	findings := evaluate(t, raw, testOptions())
	assert.Contains(t, kinds(findings), types.KindInvalidPromoPrice)
}

// =============================================================================
// DISCOUNT RULES
// =============================================================================

func TestDiscountWithinToleranceBoundary(t *testing.T) {
	// Computed discount is 20; a supplied 20.5 deviates by exactly the
	// default tolerance and must pass.
	raw := validRaw()
	raw[types.FieldDiscountPercent] = "20.5"

	findings := evaluate(t, raw, testOptions())
	assert.Empty(t, findings)

	raw[types.FieldDiscountPercent] = "20.51"
	findings = evaluate(t, raw, testOptions())
	assert.Contains(t, kinds(findings), types.KindDiscountMismatch)
}

func TestDiscountToleranceConfigurable(t *testing.T) {
	opts := testOptions()
	opts.DiscountTolerance = 15

	raw := validRaw()
	raw[types.FieldDiscountPercent] = "10" // deviation 10 <= 15

	findings := evaluate(t, raw, opts)
	assert.Empty(t, findings)
}

func TestDiscountRuleSkippedWhenActualPriceUnusable(t *testing.T) {
	raw := validRaw()
	raw[types.FieldActualPrice] = "0"
	raw[types.FieldDiscountPercent] = "20"

	findings := evaluate(t, raw, testOptions())
	// Only the positivity rule fires; no mismatch is computable.
	assert.NotContains(t, kinds(findings), types.KindDiscountMismatch)
	assert.Contains(t, kinds(findings), types.KindInvalidActualPrice)
}

func TestComputedDiscountRounding(t *testing.T) {
	row := normalizer.Normalize(types.RawRow{
		types.FieldActualPrice: "100",
		types.FieldPromoPrice:  "66.666",
	}, 1, config.DefaultDateFormats)

	computed, ok := ComputedDiscount(&row)
	require.True(t, ok)
	assert.Equal(t, 33.33, computed)
}

func TestEffectiveDiscountPrefersSupplied(t *testing.T) {
	row := normalizer.Normalize(validRaw(), 1, config.DefaultDateFormats)

	discount, ok := EffectiveDiscount(&row)
	require.True(t, ok)
	assert.Equal(t, 20.0, discount)

	raw := validRaw()
	raw[types.FieldDiscountPercent] = ""
	row = normalizer.Normalize(raw, 1, config.DefaultDateFormats)

	discount, ok = EffectiveDiscount(&row)
	require.True(t, ok)
	assert.Equal(t, 20.0, discount, "back-filled from prices")
}

func TestSuppliedDiscountOutOfRange(t *testing.T) {
	raw := validRaw()
	raw[types.FieldDiscountPercent] = "120"

	findings := evaluate(t, raw, testOptions())
	assert.Contains(t, kinds(findings), types.KindDiscountOutOfRange)
}

// =============================================================================
// DATE RULES
// =============================================================================

func TestStartAfterEnd(t *testing.T) {
	raw := validRaw()
	raw[types.FieldStartDate] = "2025-10-20"
	raw[types.FieldEndDate] = "2025-10-15"

	findings := evaluate(t, raw, testOptions())
	assert.Equal(t, []types.Kind{types.KindStartAfterEnd}, kinds(findings))
}

func TestSingleDayPromotionIsLegal(t *testing.T) {
	raw := validRaw()
	raw[types.FieldStartDate] = "2025-10-15"
	raw[types.FieldEndDate] = "2025-10-15"

	findings := evaluate(t, raw, testOptions())
	assert.Empty(t, findings)
}

func TestEndedInPastIsWarningByDefault(t *testing.T) {
	raw := validRaw()
	raw[types.FieldStartDate] = "2025-09-01"
	raw[types.FieldEndDate] = "2025-09-15"

	findings := evaluate(t, raw, testOptions())
	require.Len(t, findings, 1)
	assert.Equal(t, types.KindEndedInPast, findings[0].Kind)
	assert.Equal(t, types.SeverityWarning, findings[0].Severity)
}

func TestEndedInPastSeverityConfigurable(t *testing.T) {
	opts := testOptions()
	f := false
	opts.FlagPastEndAsWarning = &f

	raw := validRaw()
	raw[types.FieldStartDate] = "2025-09-01"
	raw[types.FieldEndDate] = "2025-09-15"

	findings := evaluate(t, raw, opts)
	require.Len(t, findings, 1)
	assert.Equal(t, types.SeverityError, findings[0].Severity)
}

func TestEndingTodayIsNotPast(t *testing.T) {
	raw := validRaw()
	raw[types.FieldStartDate] = "2025-09-01"
	raw[types.FieldEndDate] = "2025-10-01" // equals the processing date

	findings := evaluate(t, raw, testOptions())
	assert.Empty(t, findings)
}

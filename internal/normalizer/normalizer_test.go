package normalizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/promo-validator/internal/config"
	"github.com/ginjaninja78/promo-validator/internal/types"
)

func TestNormalizeTextFields(t *testing.T) {
	row := Normalize(types.RawRow{
		types.FieldProductID: "  P100  ",
		types.FieldItemID:    "I-1",
		types.FieldCountry:   "   ",
	}, 1, config.DefaultDateFormats)

	assert.Equal(t, "P100", row.ProductID)
	assert.Equal(t, "I-1", row.ItemID)
	assert.Equal(t, "", row.Country, "whitespace-only cell is missing")
}

func TestNormalizeNumericFields(t *testing.T) {
	tests := []struct {
		name    string
		cell    string
		present bool
		parsed  bool
		value   float64
	}{
		{"plain decimal", "19.99", true, true, 19.99},
		{"integer", "100", true, true, 100},
		{"negative", "-5", true, true, -5},
		{"padded", "  42.5 ", true, true, 42.5},
		{"empty", "", false, false, 0},
		{"whitespace only", "   ", false, false, 0},
		{"garbage", "abc", true, false, 0},
		{"currency symbol", "$10", true, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := Normalize(types.RawRow{types.FieldActualPrice: tt.cell}, 1, config.DefaultDateFormats)
			assert.Equal(t, tt.present, row.ActualPrice.Present)
			assert.Equal(t, tt.parsed, row.ActualPrice.Parsed)
			if tt.parsed {
				assert.Equal(t, tt.value, row.ActualPrice.Value)
			}
		})
	}
}

func TestNormalizeDateFormats(t *testing.T) {
	tests := []struct {
		name   string
		cell   string
		parsed bool
		want   time.Time
	}{
		{"iso", "2025-10-01", true, time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)},
		{"day first", "15/10/2025", true, time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC)},
		{"month first fallback", "10/31/2025", true, time.Date(2025, 10, 31, 0, 0, 0, 0, time.UTC)},
		{"invalid calendar date", "31/02/2025", false, time.Time{}},
		{"not a date", "soon", false, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := Normalize(types.RawRow{types.FieldStartDate: tt.cell}, 1, config.DefaultDateFormats)
			assert.True(t, row.StartDate.Present)
			assert.Equal(t, tt.parsed, row.StartDate.Parsed)
			if tt.parsed {
				assert.Equal(t, tt.want, row.StartDate.Value)
			}
		})
	}
}

func TestNormalizeDateFirstFormatWins(t *testing.T) {
	// 03/04/2025 is valid under both the day-first and the month-first
	// layout; the earlier layout in the list must win.
	row := Normalize(types.RawRow{types.FieldStartDate: "03/04/2025"}, 1, config.DefaultDateFormats)

	require.True(t, row.StartDate.Valid())
	assert.Equal(t, time.Date(2025, 4, 3, 0, 0, 0, 0, time.UTC), row.StartDate.Value)
}

func TestNormalizeIsPure(t *testing.T) {
	raw := types.RawRow{
		types.FieldProductID:   "  P1 ",
		types.FieldActualPrice: "100",
	}

	Normalize(raw, 1, config.DefaultDateFormats)

	assert.Equal(t, "  P1 ", raw[types.FieldProductID], "raw row must not be modified")
	assert.Equal(t, "100", raw[types.FieldActualPrice])
}

func TestNormalizeAllRowNumbers(t *testing.T) {
	rows := NormalizeAll([]types.RawRow{
		{types.FieldProductID: "A"},
		{types.FieldProductID: "B"},
		{types.FieldProductID: "C"},
	}, config.DefaultDateFormats)

	require.Len(t, rows, 3)
	for i, row := range rows {
		assert.Equal(t, i+1, row.RowNumber)
	}
	assert.Equal(t, "B", rows[1].ProductID)
}

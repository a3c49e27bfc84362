package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "./input", cfg.InputDir)
	assert.Equal(t, "./output", cfg.OutputDir)
	assert.Equal(t, "./input_archive", cfg.InputArchiveDir)
	assert.Equal(t, "{source}_validated_{timestamp}.csv", cfg.ReportNameFormat)
	assert.Equal(t, 4, cfg.MaxConcurrency)
	assert.True(t, *cfg.ContinueOnError)

	assert.Equal(t, ",", cfg.CSVSettings.Delimiter)
	assert.Equal(t, 1, cfg.CSVSettings.HeaderRows)
	assert.Equal(t, 2, cfg.CSVSettings.DataStartRow)
	assert.Equal(t, "UTF-8", cfg.CSVSettings.Encoding)

	assert.Equal(t, DefaultDiscountTolerance, cfg.Validation.DiscountTolerance)
	assert.Equal(t, DefaultAllowedCountries, cfg.Validation.AllowedCountries)
	assert.Equal(t, DefaultDateFormats, cfg.Validation.DateFormats)
	assert.True(t, cfg.Validation.PastEndIsWarning())
}

func TestLoadAppliesDefaultsToPartialConfig(t *testing.T) {
	path := writeConfig(t, `
input_dir: ./drop
validation:
  allowed_countries: [Vietnam, US]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "./drop", cfg.InputDir)
	assert.Equal(t, "./output", cfg.OutputDir)
	assert.Equal(t, []string{"Vietnam", "US"}, cfg.Validation.AllowedCountries)
	assert.Equal(t, DefaultDiscountTolerance, cfg.Validation.DiscountTolerance)
	assert.Equal(t, DefaultDateFormats, cfg.Validation.DateFormats)
}

func TestLoadFullValidationOptions(t *testing.T) {
	path := writeConfig(t, `
validation:
  discount_tolerance_percent: 1.5
  allowed_countries: [DE]
  accepted_date_formats: ["2006-01-02"]
  flag_past_end_as_warning: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 1.5, cfg.Validation.DiscountTolerance)
	assert.Equal(t, []string{"DE"}, cfg.Validation.AllowedCountries)
	assert.Equal(t, []string{"2006-01-02"}, cfg.Validation.DateFormats)
	assert.False(t, cfg.Validation.PastEndIsWarning())
}

func TestLoadRejectsNegativeTolerance(t *testing.T) {
	path := writeConfig(t, `
validation:
  discount_tolerance_percent: -1
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "discount_tolerance_percent")
}

func TestLoadRejectsBadDateFormat(t *testing.T) {
	path := writeConfig(t, `
validation:
  accepted_date_formats: ["YYYY-MM-DD"]
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid date format")
}

func TestLoadRejectsUnparseableYAML(t *testing.T) {
	path := writeConfig(t, "input_dir: [unclosed")

	_, err := Load(path)
	require.Error(t, err)
}

func TestCountryAllowed(t *testing.T) {
	v := DefaultValidation()
	v.AllowedCountries = []string{"Vietnam", "US"}

	assert.True(t, v.CountryAllowed("Vietnam"))
	assert.False(t, v.CountryAllowed("Narnia"))
	assert.False(t, v.CountryAllowed("vietnam"), "membership is case-sensitive")
}

// =============================================================================
// Promo Price Validator - Configuration Module
// =============================================================================
//
// This module is responsible for loading and managing the application
// configuration. A single YAML file carries both the application settings
// (directories, concurrency, report naming) and the validation options
// consumed by the engine (tolerance, allowed countries, date formats).
//
// ARCHITECTURE:
//   The configuration system is designed to be:
//   - Explicit: the engine receives an immutable Validation value; there is
//     no process-wide mutable state
//   - Defaulted: every unset option falls back to a documented default
//   - Validated: configurations are checked on load
//
// =============================================================================

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// DEFAULTS
// =============================================================================

// DefaultDiscountTolerance is the maximum allowed deviation, in percentage
// points, between a supplied discount and the one computed from the prices.
const DefaultDiscountTolerance = 0.5

// DefaultDateFormats is the ordered list of date layouts tried during
// normalization: ISO first, then day-first, then month-first. The first
// layout that parses a value wins.
var DefaultDateFormats = []string{
	"2006-01-02", // YYYY-MM-DD
	"02/01/2006", // DD/MM/YYYY
	"01/02/2006", // MM/DD/YYYY
}

// DefaultAllowedCountries is the default market list used when the
// configuration does not supply one.
var DefaultAllowedCountries = []string{"US", "UK", "DE", "FR", "IT"}

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the full application configuration, loaded from config.yaml.
type Config struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is the directory scanned for promotion files to validate.
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputDir is the directory where validation reports are written.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir is the directory where cleanly validated input files
	// are moved. Files with invalid rows remain in the input directory.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// ReportNameFormat defines the format for report file names.
	// Placeholders:
	//   {uuid}      - A random UUID
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {source}    - Base name of the source file, without extension
	// Default: "{source}_validated_{timestamp}.csv"
	ReportNameFormat string `yaml:"report_name_format"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the maximum number of files validated concurrently.
	// Set to 1 for sequential processing.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`

	// ContinueOnError determines whether to keep validating other files when
	// one file fails to parse.
	// Default: true
	ContinueOnError *bool `yaml:"continue_on_error"`

	// =========================================================================
	// PARSING AND VALIDATION
	// =========================================================================

	// CSVSettings configures how input CSV files are read.
	CSVSettings CSVSettings `yaml:"csv_settings"`

	// Validation holds the options consumed by the validation engine.
	Validation Validation `yaml:"validation"`
}

// =============================================================================
// CSV SETTINGS STRUCTURE
// =============================================================================

// CSVSettings contains settings for parsing input CSV files.
type CSVSettings struct {
	// Delimiter is the character used to separate fields.
	// Common values: "," (comma), "|" (pipe), "\t" (tab)
	// Default: ","
	Delimiter string `yaml:"delimiter"`

	// HeaderRows is the number of header rows in the file. For multi-line
	// headers the per-column cells are joined into a single header.
	// Default: 1
	HeaderRows int `yaml:"header_rows"`

	// DataStartRow is the 1-indexed row where the data begins.
	// Default: HeaderRows + 1
	DataStartRow int `yaml:"data_start_row"`

	// Encoding is the character encoding of the file, by IANA name.
	// Common values: "UTF-8", "ISO-8859-1", "Windows-1252"
	// Default: "UTF-8"
	Encoding string `yaml:"encoding"`
}

// =============================================================================
// VALIDATION OPTIONS STRUCTURE
// =============================================================================

// Validation holds the options recognized by the validation engine. The
// value is treated as immutable once handed to the engine, so a single
// configuration can safely drive concurrent validation runs.
type Validation struct {
	// DiscountTolerance is the maximum allowed absolute deviation, in
	// percentage points, between the supplied DiscountPercent and the one
	// computed from ActualPrice and PromoPrice.
	// Default: 0.5
	DiscountTolerance float64 `yaml:"discount_tolerance_percent"`

	// AllowedCountries is the membership list for the country rule.
	// Default: US, UK, DE, FR, IT
	AllowedCountries []string `yaml:"allowed_countries"`

	// DateFormats is the ordered list of Go date layouts tried during
	// normalization. The first layout that parses a value wins.
	// Default: ISO, DD/MM/YYYY, MM/DD/YYYY
	DateFormats []string `yaml:"accepted_date_formats"`

	// FlagPastEndAsWarning controls the severity of the ended-in-past rule.
	// When true (the default) a promotion that already ended is a warning
	// and does not invalidate the row; when false it is an error.
	FlagPastEndAsWarning *bool `yaml:"flag_past_end_as_warning"`
}

// PastEndIsWarning resolves the FlagPastEndAsWarning option, defaulting to
// true when unset.
func (v Validation) PastEndIsWarning() bool {
	return v.FlagPastEndAsWarning == nil || *v.FlagPastEndAsWarning
}

// CountryAllowed reports whether the given country identifier belongs to the
// allowed set.
func (v Validation) CountryAllowed(country string) bool {
	for _, c := range v.AllowedCountries {
		if c == country {
			return true
		}
	}
	return false
}

// DefaultValidation returns the validation options with all defaults applied.
func DefaultValidation() Validation {
	v := Validation{}
	applyValidationDefaults(&v)
	return v
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Load reads the configuration from a YAML file, applies defaults, and
// validates it.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Default returns a configuration with all defaults applied, used when no
// config file is present.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults sets default values for any unset configuration options.
func ApplyDefaults(cfg *Config) {
	if cfg.InputDir == "" {
		cfg.InputDir = "./input"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "./output"
	}
	if cfg.InputArchiveDir == "" {
		cfg.InputArchiveDir = "./input_archive"
	}
	if cfg.ReportNameFormat == "" {
		cfg.ReportNameFormat = "{source}_validated_{timestamp}.csv"
	}
	if cfg.MaxConcurrency == 0 {
		cfg.MaxConcurrency = 4
	}
	if cfg.ContinueOnError == nil {
		t := true
		cfg.ContinueOnError = &t
	}

	// CSV settings defaults.
	if cfg.CSVSettings.Delimiter == "" {
		cfg.CSVSettings.Delimiter = ","
	}
	if cfg.CSVSettings.HeaderRows == 0 {
		cfg.CSVSettings.HeaderRows = 1
	}
	if cfg.CSVSettings.DataStartRow == 0 {
		cfg.CSVSettings.DataStartRow = cfg.CSVSettings.HeaderRows + 1
	}
	if cfg.CSVSettings.Encoding == "" {
		cfg.CSVSettings.Encoding = "UTF-8"
	}

	applyValidationDefaults(&cfg.Validation)
}

// applyValidationDefaults sets default values for the validation options.
func applyValidationDefaults(v *Validation) {
	if v.DiscountTolerance == 0 {
		v.DiscountTolerance = DefaultDiscountTolerance
	}
	if len(v.AllowedCountries) == 0 {
		v.AllowedCountries = append([]string(nil), DefaultAllowedCountries...)
	}
	if len(v.DateFormats) == 0 {
		v.DateFormats = append([]string(nil), DefaultDateFormats...)
	}
	if v.FlagPastEndAsWarning == nil {
		t := true
		v.FlagPastEndAsWarning = &t
	}
}

// Validate checks the configuration for values the application cannot run
// with.
func Validate(cfg *Config) error {
	if cfg.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be >= 1, got %d", cfg.MaxConcurrency)
	}
	if cfg.Validation.DiscountTolerance < 0 {
		return fmt.Errorf("discount_tolerance_percent must be >= 0, got %g", cfg.Validation.DiscountTolerance)
	}
	for _, layout := range cfg.Validation.DateFormats {
		// A layout must round-trip a reference date. This also catches
		// non-Go layouts like "YYYY-MM-DD", which parse only themselves.
		ref := time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC)
		parsed, err := time.Parse(layout, ref.Format(layout))
		if err != nil || !parsed.Equal(ref) {
			return fmt.Errorf("invalid date format %q: layouts must use Go reference-date syntax, e.g. 2006-01-02", layout)
		}
	}
	return nil
}

// =============================================================================
// Promo Price Validator - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, the main command of the tool.
// It orchestrates the whole pipeline around the validation engine.
//
// COMMAND USAGE:
//   promoval validate [flags]
//
// FLAGS:
//   --file     : Validate a single file instead of scanning the input dir
//   --dry-run  : Validate without writing reports or archiving inputs
//   --today    : Override the processing date (YYYY-MM-DD)
//
// PROCESSING PIPELINE:
//   1. Load configuration
//   2. Discover input files (CSV and XLSX)
//   3. For each file (concurrently):
//      a. Parse the file into raw rows
//      b. Run the validation engine
//      c. Write the annotated report and error log
//      d. Archive the input if every row validated
//   4. Print the run summary
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/promo-validator/internal/config"
	"github.com/ginjaninja78/promo-validator/internal/csvparser"
	"github.com/ginjaninja78/promo-validator/internal/engine"
	"github.com/ginjaninja78/promo-validator/internal/report"
	"github.com/ginjaninja78/promo-validator/internal/types"
	"github.com/ginjaninja78/promo-validator/internal/xlsxparser"
	"github.com/ginjaninja78/promo-validator/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// dryRun validates without writing reports or archiving inputs.
var dryRun bool

// singleFile is the path to a specific file to validate.
var singleFile string

// todayFlag overrides the processing date used by the ended-in-past rule.
var todayFlag string

// =============================================================================
// VALIDATE COMMAND DEFINITION
// =============================================================================

// validateCmd represents the 'validate' command.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate promotion files and write annotated reports",
	Long: `The validate command scans the input directory for promotion files (CSV and
XLSX), runs every row through the validation engine, and writes one annotated
report per file to the output directory.

Each report keeps the input rows in order and appends a Status column, the
back-filled DiscountPercent, and an Errors column listing every violated
rule. A companion .log file carries the per-row findings and summary.

Files are validated concurrently and independently; a parse failure in one
file does not affect the others. Input files whose every row validated are
moved to the input archive; files with invalid rows stay in place so they can
be corrected and re-validated.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate()
	},
}

// fileResult is the outcome of validating one file.
type fileResult struct {
	FilePath   string
	ReportFile string
	Summary    types.Summary
	Rows       []types.AnnotatedRow
	Err        error
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init registers the validate command with the root command and sets up
// flags.
func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Validate without writing reports or archiving inputs",
	)

	validateCmd.Flags().StringVar(
		&singleFile,
		"file",
		"",
		"Validate a single file instead of scanning the input directory",
	)

	validateCmd.Flags().StringVar(
		&todayFlag,
		"today",
		"",
		"Override the processing date (YYYY-MM-DD) used for the past-end check",
	)
}

// =============================================================================
// MAIN VALIDATION FUNCTION
// =============================================================================

// runValidate orchestrates the validation pipeline.
func runValidate() error {
	startTime := time.Now()

	// =========================================================================
	// STEP 1: LOAD CONFIGURATION
	// =========================================================================

	fmt.Println("=== Promo Price Validator ===")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	eng, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	fm := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.InputArchiveDir, cfg.ReportNameFormat)
	if !dryRun {
		if err := fm.EnsureDirectories(); err != nil {
			return err
		}
	}

	// =========================================================================
	// STEP 2: DISCOVER INPUT FILES
	// =========================================================================

	var inputFiles []string
	if singleFile != "" {
		inputFiles = []string{singleFile}
	} else {
		inputFiles, err = fm.DiscoverInputFiles()
		if err != nil {
			return err
		}
	}

	if len(inputFiles) == 0 {
		fmt.Println("No promotion files found in the input directory.")
		return nil
	}

	fmt.Printf("Found %d file(s) to validate\n", len(inputFiles))

	// =========================================================================
	// STEP 3: VALIDATE FILES CONCURRENTLY
	// =========================================================================
	// Each file's validation run is fully independent, so files are fanned
	// out to a bounded pool of goroutines.

	var wg sync.WaitGroup
	results := make(chan fileResult, len(inputFiles))
	sem := make(chan struct{}, cfg.MaxConcurrency)

	for _, file := range inputFiles {
		wg.Add(1)

		go func(filePath string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results <- validateFile(filePath, cfg, eng, fm)
		}(file)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	// =========================================================================
	// STEP 4: COLLECT RESULTS
	// =========================================================================

	var fileErrors []string
	var totals types.Summary
	totals.FindingCounts = make(map[types.Kind]int)

	for result := range results {
		if result.Err != nil {
			fileErrors = append(fileErrors, fmt.Sprintf("%s: %v", filepath.Base(result.FilePath), result.Err))
			fmt.Printf("  ✗ %s: %v\n", filepath.Base(result.FilePath), result.Err)
			continue
		}

		fmt.Printf("  ✓ %s: %d rows, %d valid, %d invalid\n",
			filepath.Base(result.FilePath),
			result.Summary.TotalRows, result.Summary.ValidRows, result.Summary.InvalidRows)
		if result.ReportFile != "" {
			fmt.Printf("    report: %s\n", result.ReportFile)
		}

		if verbose {
			printInvalidRows(result.Rows)
		}

		totals.TotalRows += result.Summary.TotalRows
		totals.ValidRows += result.Summary.ValidRows
		totals.InvalidRows += result.Summary.InvalidRows
		for kind, count := range result.Summary.FindingCounts {
			totals.FindingCounts[kind] += count
		}
	}

	// =========================================================================
	// STEP 5: PRINT SUMMARY
	// =========================================================================

	fmt.Println("\n=== Validation Complete ===")
	fmt.Print(report.SummaryText(totals))
	fmt.Printf("Time elapsed: %s\n", time.Since(startTime))

	if len(fileErrors) > 0 {
		if !*cfg.ContinueOnError {
			return fmt.Errorf("%d file(s) failed to validate", len(fileErrors))
		}
		fmt.Fprintf(os.Stderr, "\n%d file(s) could not be processed:\n", len(fileErrors))
		for _, e := range fileErrors {
			fmt.Fprintf(os.Stderr, "  %s\n", e)
		}
	}

	return nil
}

// =============================================================================
// PER-FILE PIPELINE
// =============================================================================

// validateFile runs the full pipeline for one input file.
func validateFile(filePath string, cfg *config.Config, eng *engine.Engine, fm *utils.FileManager) fileResult {
	result := fileResult{FilePath: filePath}

	// Parse the file into a raw table.
	var table *csvparser.Table
	var err error
	if utils.IsXLSX(filePath) {
		table, err = xlsxparser.Parse(filePath, cfg.CSVSettings)
	} else {
		table, err = csvparser.Parse(filePath, cfg.CSVSettings)
	}
	if err != nil {
		result.Err = err
		return result
	}

	// Run the engine.
	run, err := eng.Validate(table.Rows)
	if err != nil {
		result.Err = err
		return result
	}
	result.Summary = run.Summary
	result.Rows = run.Rows

	if dryRun {
		return result
	}

	// Write the annotated report and the error log.
	reportPath := fm.ReportFileName(filePath)
	if err := report.WriteFile(reportPath, table.Headers, run.Rows); err != nil {
		result.Err = err
		return result
	}
	result.ReportFile = reportPath

	if err := utils.WriteErrorLog(utils.ErrorLogFileName(reportPath), filePath, logLines(run)); err != nil {
		result.Err = err
		return result
	}

	// Archive cleanly validated inputs; leave the rest for correction.
	if run.Summary.InvalidRows == 0 {
		if _, err := fm.ArchiveInput(filePath); err != nil {
			result.Err = err
			return result
		}
	}

	return result
}

// logLines renders the per-row findings and summary for the error log.
func logLines(run *engine.Result) []string {
	var lines []string
	for _, row := range run.Rows {
		for _, f := range row.Findings {
			lines = append(lines, fmt.Sprintf("row %d: %s", row.RowNumber, f))
		}
	}
	lines = append(lines, "", report.SummaryText(run.Summary))
	return lines
}

// printInvalidRows prints each row with findings to stdout.
func printInvalidRows(rows []types.AnnotatedRow) {
	for _, row := range rows {
		if len(row.Findings) == 0 {
			continue
		}
		fmt.Printf("    row %d: %s\n", row.RowNumber, row.ErrorText())
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// loadConfig loads the configuration file, falling back to defaults when
// the default config file is absent.
func loadConfig() (*config.Config, error) {
	if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
		if cfgFile == "config.yaml" {
			fmt.Println("No config.yaml found, using defaults")
			return config.Default(), nil
		}
		return nil, fmt.Errorf("config file not found: %s", cfgFile)
	}
	return config.Load(cfgFile)
}

// buildEngine creates the engine, honoring the --today override.
func buildEngine(cfg *config.Config) (*engine.Engine, error) {
	if todayFlag == "" {
		return engine.New(cfg.Validation), nil
	}

	today, err := time.Parse("2006-01-02", todayFlag)
	if err != nil {
		return nil, fmt.Errorf("invalid --today value %q: %w", todayFlag, err)
	}
	return engine.NewAt(cfg.Validation, today), nil
}

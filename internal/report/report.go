// =============================================================================
// Promo Price Validator - Report Writer
// =============================================================================
//
// This module renders the output of a validation run as a CSV report for
// download or inspection. The report keeps the input's column order and
// appends the derived columns:
//   - Status           : "valid" or "invalid" per row
//   - DiscountPercent  : back-filled with the computed discount when the
//                        input omitted it (appended only when the input has
//                        no such column)
//   - Errors           : all finding messages for the row, joined with "; "
//
// The summary (totals plus counts by finding kind) is rendered separately as
// text for logs and the CLI; it is not folded into the CSV.
//
// =============================================================================

package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/ginjaninja78/promo-validator/internal/types"
)

// Column names for the derived report columns.
const (
	StatusColumn  = "Status"
	ErrorsColumn  = "Errors"
	statusValid   = "valid"
	statusInvalid = "invalid"
)

// =============================================================================
// REPORT GENERATION
// =============================================================================

// Generate renders the annotated rows as CSV bytes. headers is the input
// file's column order; rows keep their input order.
func Generate(headers []string, rows []types.AnnotatedRow) ([]byte, error) {
	hasDiscountColumn := false
	for _, h := range headers {
		if h == types.FieldDiscountPercent {
			hasDiscountColumn = true
		}
	}

	outHeaders := make([]string, 0, len(headers)+3)
	outHeaders = append(outHeaders, StatusColumn)
	outHeaders = append(outHeaders, headers...)
	if !hasDiscountColumn {
		outHeaders = append(outHeaders, types.FieldDiscountPercent)
	}
	outHeaders = append(outHeaders, ErrorsColumn)

	var buffer bytes.Buffer
	writer := csv.NewWriter(&buffer)

	if err := writer.Write(outHeaders); err != nil {
		return nil, fmt.Errorf("failed to write report header: %w", err)
	}

	for _, row := range rows {
		record := make([]string, 0, len(outHeaders))

		status := statusValid
		if !row.Valid {
			status = statusInvalid
		}
		record = append(record, status)

		for _, h := range headers {
			if h == types.FieldDiscountPercent {
				record = append(record, discountCell(row))
				continue
			}
			record = append(record, row.Raw[h])
		}
		if !hasDiscountColumn {
			record = append(record, discountCell(row))
		}

		record = append(record, row.ErrorText())

		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write report row %d: %w", row.RowNumber, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush report: %w", err)
	}

	return buffer.Bytes(), nil
}

// WriteFile renders the report and writes it to the given path.
func WriteFile(path string, headers []string, rows []types.AnnotatedRow) error {
	data, err := Generate(headers, rows)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}
	return nil
}

// discountCell returns the DiscountPercent cell for a row: the value as
// supplied when the input carried one, otherwise the back-filled computed
// discount.
func discountCell(row types.AnnotatedRow) string {
	if supplied := strings.TrimSpace(row.Raw[types.FieldDiscountPercent]); supplied != "" {
		return supplied
	}
	if !row.HasDiscount {
		return ""
	}
	return strconv.FormatFloat(row.DiscountPercent, 'f', -1, 64)
}

// =============================================================================
// SUMMARY FORMATTING
// =============================================================================

// SummaryText formats a validation summary for logs and CLI output, with the
// finding-kind breakdown in a stable order.
func SummaryText(summary types.Summary) string {
	var builder strings.Builder

	fmt.Fprintf(&builder, "Rows:    %d\n", summary.TotalRows)
	fmt.Fprintf(&builder, "Valid:   %d\n", summary.ValidRows)
	fmt.Fprintf(&builder, "Invalid: %d\n", summary.InvalidRows)

	if len(summary.FindingCounts) > 0 {
		kinds := make([]string, 0, len(summary.FindingCounts))
		for kind := range summary.FindingCounts {
			kinds = append(kinds, string(kind))
		}
		sort.Strings(kinds)

		builder.WriteString("Findings by kind:\n")
		for _, kind := range kinds {
			fmt.Fprintf(&builder, "  %-28s %d\n", kind, summary.FindingCounts[types.Kind(kind)])
		}
	}

	return builder.String()
}

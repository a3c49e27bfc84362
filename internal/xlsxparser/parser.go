// =============================================================================
// Promo Price Validator - XLSX Parser Module
// =============================================================================
//
// This module reads promotion data from XLSX workbooks. Pricing teams hand
// the same tables around as spreadsheets as often as CSV exports, so both
// are accepted as input. Only the first worksheet (or an explicitly named
// one) is read; cell values are taken as the strings excelize renders, so
// the engine sees the same raw material as with a CSV file.
//
// Header merging and data-start handling are shared with the CSV parser via
// csvparser.FromRecords.
//
// =============================================================================

package xlsxparser

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/promo-validator/internal/config"
	"github.com/ginjaninja78/promo-validator/internal/csvparser"
)

// Parse reads an XLSX file and returns the raw table from its first
// worksheet.
func Parse(filePath string, settings config.CSVSettings) (*csvparser.Table, error) {
	return ParseSheet(filePath, "", settings)
}

// ParseSheet reads the named worksheet from an XLSX file. An empty sheet
// name selects the first worksheet in the workbook.
func ParseSheet(filePath, sheetName string, settings config.CSVSettings) (*csvparser.Table, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	if sheetName == "" {
		sheetName = f.GetSheetName(0)
		if sheetName == "" {
			return nil, fmt.Errorf("workbook has no worksheets")
		}
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheetName, err)
	}

	return csvparser.FromRecords(rows, filePath, settings)
}

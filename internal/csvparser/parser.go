// =============================================================================
// Promo Price Validator - CSV Parser Module
// =============================================================================
//
// This module is responsible for reading promotion CSV files into raw row
// maps for the validation engine. It handles the format variations seen in
// exports from the pricing systems:
//   - Different delimiters (comma, pipe, tab, semicolon)
//   - Multi-line headers
//   - Custom data start rows
//   - Non-UTF-8 encodings (decoded via golang.org/x/text)
//
// The parser does no validation of its own. Every cell is kept as the raw
// string it was read as; typing and rule checks belong to the engine.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/htmlindex"

	"github.com/ginjaninja78/promo-validator/internal/config"
	"github.com/ginjaninja78/promo-validator/internal/types"
)

// =============================================================================
// TABLE STRUCTURE
// =============================================================================

// Table represents a parsed input file: the column headers plus one RawRow
// per data row, in file order.
type Table struct {
	// Headers contains the column headers. For multi-line headers these are
	// the merged headers.
	Headers []string

	// Rows contains the data rows as column-name -> raw-value maps.
	Rows []types.RawRow

	// SourceFile is the path of the file the table was read from.
	SourceFile string

	// RowCount is the number of data rows (excluding headers).
	RowCount int

	// ColumnCount is the number of columns.
	ColumnCount int
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a CSV file and returns the raw table.
func Parse(filePath string, settings config.CSVSettings) (*Table, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader, err := decodingReader(bufio.NewReader(file), settings.Encoding)
	if err != nil {
		return nil, err
	}

	csvReader := csv.NewReader(reader)
	configureReader(csvReader, settings)

	allRows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	return FromRecords(allRows, filePath, settings)
}

// FromRecords builds a Table from already-read records. It is shared with
// the XLSX parser, which produces the same record shape from a worksheet.
func FromRecords(allRows [][]string, sourceFile string, settings config.CSVSettings) (*Table, error) {
	if len(allRows) == 0 {
		return nil, fmt.Errorf("file is empty")
	}

	headers, err := extractHeaders(allRows, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to extract headers: %w", err)
	}

	dataRows := extractDataRows(allRows, headers, settings)

	return &Table{
		Headers:     headers,
		Rows:        dataRows,
		SourceFile:  sourceFile,
		RowCount:    len(dataRows),
		ColumnCount: len(headers),
	}, nil
}

// decodingReader wraps the reader with a decoder when the file is not UTF-8.
func decodingReader(r io.Reader, encodingName string) (io.Reader, error) {
	name := strings.ToLower(strings.TrimSpace(encodingName))
	if name == "" || name == "utf-8" || name == "utf8" {
		return r, nil
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", encodingName, err)
	}
	return enc.NewDecoder().Reader(r), nil
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings config.CSVSettings) {
	switch settings.Delimiter {
	case "\\t", "tab", "TAB":
		reader.Comma = '\t'
	case "|", "pipe", "PIPE":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	default:
		if len(settings.Delimiter) > 0 {
			reader.Comma = rune(settings.Delimiter[0])
		} else {
			reader.Comma = ','
		}
	}

	// Exports often have trailing or ragged columns; tolerate them and map
	// by header position instead.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
}

// extractHeaders extracts and merges headers from the CSV.
//
// Multi-line headers are merged column-wise by joining the non-empty cells
// of each header row with a space:
//
//	Row 1: "Start", "",     "Actual", ""
//	Row 2: "Date",  "Item", "Price",  "Country"
//	Result: "Start Date", "Item", "Actual Price", "Country"
func extractHeaders(allRows [][]string, settings config.CSVSettings) ([]string, error) {
	if settings.HeaderRows <= 0 {
		return nil, fmt.Errorf("header_rows must be at least 1")
	}
	if len(allRows) < settings.HeaderRows {
		return nil, fmt.Errorf("file has fewer rows than header_rows setting")
	}

	if settings.HeaderRows == 1 {
		return cleanHeaders(allRows[0]), nil
	}

	maxCols := 0
	for i := 0; i < settings.HeaderRows; i++ {
		if len(allRows[i]) > maxCols {
			maxCols = len(allRows[i])
		}
	}

	headers := make([]string, maxCols)
	for col := 0; col < maxCols; col++ {
		var parts []string
		for row := 0; row < settings.HeaderRows; row++ {
			if col < len(allRows[row]) {
				if value := strings.TrimSpace(allRows[row][col]); value != "" {
					parts = append(parts, value)
				}
			}
		}
		headers[col] = strings.Join(parts, " ")
	}

	return cleanHeaders(headers), nil
}

// cleanHeaders trims headers and names any empty ones by position.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, header := range headers {
		header = strings.TrimSpace(header)
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}
		cleaned[i] = header
	}
	return cleaned
}

// extractDataRows converts the data rows to header-keyed maps. Short rows
// leave their trailing columns empty; extra cells beyond the headers are
// dropped.
func extractDataRows(allRows [][]string, headers []string, settings config.CSVSettings) []types.RawRow {
	startIndex := settings.DataStartRow - 1
	if startIndex < 0 {
		startIndex = settings.HeaderRows
	}
	if startIndex >= len(allRows) {
		return []types.RawRow{}
	}

	rows := make([]types.RawRow, 0, len(allRows)-startIndex)
	for _, record := range allRows[startIndex:] {
		row := make(types.RawRow, len(headers))
		for i, header := range headers {
			if i < len(record) {
				row[header] = record[i]
			} else {
				row[header] = ""
			}
		}
		rows = append(rows, row)
	}

	return rows
}

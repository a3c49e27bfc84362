// =============================================================================
// Promo Price Validator - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the validator:
//   - Input file discovery (CSV and XLSX)
//   - Report file naming
//   - Archival of cleanly validated input files
//   - Error log generation
//
// ARCHIVAL STRATEGY:
//   - Input files whose every row validated are moved to the input archive
//   - Files with invalid rows (or parse failures) remain in the input
//     directory so they can be corrected and re-validated
//   - Error logs are created next to the report in the output directory
//
// =============================================================================

package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for the validator.
type FileManager struct {
	// InputDir is the directory scanned for input files.
	InputDir string

	// OutputDir is the directory where reports and error logs are written.
	OutputDir string

	// InputArchiveDir is the directory for archived input files.
	InputArchiveDir string

	// ReportNameFormat is the file-name pattern for reports. Supported
	// placeholders: {uuid}, {timestamp}, {source}.
	ReportNameFormat string
}

// NewFileManager creates a FileManager with the specified directories.
func NewFileManager(inputDir, outputDir, inputArchiveDir, reportNameFormat string) *FileManager {
	return &FileManager{
		InputDir:         inputDir,
		OutputDir:        outputDir,
		InputArchiveDir:  inputArchiveDir,
		ReportNameFormat: reportNameFormat,
	}
}

// EnsureDirectories creates all required directories if they don't exist.
func (fm *FileManager) EnsureDirectories() error {
	dirs := []string{fm.InputDir, fm.OutputDir, fm.InputArchiveDir}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverInputFiles scans the input directory for promotion files. Both
// CSV and XLSX files are picked up; anything else is ignored.
func (fm *FileManager) DiscoverInputFiles() ([]string, error) {
	var files []string

	err := filepath.Walk(fm.InputDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".csv", ".xlsx":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	return files, nil
}

// IsXLSX reports whether the file should be parsed as a workbook rather
// than a CSV.
func IsXLSX(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".xlsx"
}

// =============================================================================
// OUTPUT NAMING
// =============================================================================

// ReportFileName builds the report file name for a source file by expanding
// the placeholders in the configured format.
func (fm *FileManager) ReportFileName(sourcePath string) string {
	base := filepath.Base(sourcePath)
	source := strings.TrimSuffix(base, filepath.Ext(base))

	name := fm.ReportNameFormat
	name = strings.ReplaceAll(name, "{uuid}", uuid.New().String())
	name = strings.ReplaceAll(name, "{timestamp}", time.Now().Format("20060102_150405"))
	name = strings.ReplaceAll(name, "{source}", source)

	return filepath.Join(fm.OutputDir, name)
}

// ErrorLogFileName derives the error-log path for a report: same name with
// a ".log" extension.
func ErrorLogFileName(reportPath string) string {
	return strings.TrimSuffix(reportPath, filepath.Ext(reportPath)) + ".log"
}

// =============================================================================
// ARCHIVAL
// =============================================================================

// ArchiveInput moves a processed input file to the input archive. If a file
// with the same name already exists there, a timestamp suffix is added.
func (fm *FileManager) ArchiveInput(sourcePath string) (string, error) {
	if err := os.MkdirAll(fm.InputArchiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	target := filepath.Join(fm.InputArchiveDir, filepath.Base(sourcePath))
	if _, err := os.Stat(target); err == nil {
		ext := filepath.Ext(target)
		target = strings.TrimSuffix(target, ext) + "_" + time.Now().Format("20060102_150405") + ext
	}

	if err := os.Rename(sourcePath, target); err != nil {
		// Rename fails across filesystems; fall back to copy-and-remove.
		if copyErr := copyFile(sourcePath, target); copyErr != nil {
			return "", fmt.Errorf("failed to archive %s: %w", sourcePath, copyErr)
		}
		if rmErr := os.Remove(sourcePath); rmErr != nil {
			return "", fmt.Errorf("failed to remove archived source %s: %w", sourcePath, rmErr)
		}
	}

	return target, nil
}

// copyFile copies a file's contents, preserving nothing but the bytes.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

// =============================================================================
// ERROR LOG
// =============================================================================

// WriteErrorLog writes the given lines to an error log file, preceded by a
// timestamped header.
func WriteErrorLog(filePath, sourceFile string, lines []string) error {
	var builder strings.Builder

	fmt.Fprintf(&builder, "Validation log for %s\n", sourceFile)
	fmt.Fprintf(&builder, "Generated: %s\n\n", time.Now().Format(time.RFC3339))
	for _, line := range lines {
		builder.WriteString(line)
		builder.WriteString("\n")
	}

	if err := os.WriteFile(filePath, []byte(builder.String()), 0644); err != nil {
		return fmt.Errorf("failed to write error log: %w", err)
	}
	return nil
}

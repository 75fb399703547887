// Package workbook gives the adapters a uniform "open workbook, read sheet
// as rows" view over the on-disk source formats. Backends exist for xlsx
// workbooks, delimited text exports and an in-memory form used by tests.
package workbook

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Document is a readable spreadsheet-like file. A delimited text file is a
// document with a single sheet.
type Document interface {
	// Path returns the file path the document was opened from.
	Path() string
	// Sheets lists sheet names in workbook order.
	Sheets() []string
	// Rows returns the raw cell grid of one sheet. Rows may be ragged; cells
	// are returned as strings exactly as the backend rendered them.
	Rows(sheet string) ([][]string, error)
	Close() error
}

// Open picks a backend by file extension.
func Open(path string) (Document, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls":
		return OpenExcel(path)
	case ".csv":
		return OpenCSV(path)
	default:
		return nil, fmt.Errorf("workbook: unsupported file type %q", filepath.Ext(path))
	}
}

// Cell returns row[col] or "" when the row is too short. Source grids are
// frequently ragged.
func Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

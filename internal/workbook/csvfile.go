package workbook

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/simplifiedchinese"
)

// csvDocument presents a delimited text export as a one-sheet document. The
// sheet is named after the file.
type csvDocument struct {
	path  string
	sheet string
	rows  [][]string
}

// OpenCSV reads the whole file up front; marketplace exports are small
// enough that streaming buys nothing and the adapters need to scan the
// preamble for the header row anyway.
func OpenCSV(path string) (Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("workbook: open %s: %w", path, err)
	}
	text := decodeText(raw)

	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("workbook: parse %s: %w", path, err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return &csvDocument{path: path, sheet: name, rows: records}, nil
}

// decodeText normalizes the byte content to UTF-8. Exports arrive in UTF-8
// (often with a BOM), GBK or Shift-JIS depending on the seller portal; the
// Windows-1252 fallback accepts anything left over.
func decodeText(raw []byte) string {
	raw = bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF})
	if utf8.Valid(raw) {
		return string(raw)
	}
	for _, enc := range []encoding.Encoding{
		simplifiedchinese.GBK,
		japanese.ShiftJIS,
		charmap.Windows1252,
	} {
		if decoded, err := enc.NewDecoder().Bytes(raw); err == nil && utf8.Valid(decoded) {
			return string(decoded)
		}
	}
	return string(raw)
}

func (d *csvDocument) Path() string {
	return d.path
}

func (d *csvDocument) Sheets() []string {
	return []string{d.sheet}
}

func (d *csvDocument) Rows(sheet string) ([][]string, error) {
	if sheet != d.sheet {
		return nil, fmt.Errorf("workbook: no sheet %q in %s", sheet, d.path)
	}
	return d.rows, nil
}

func (d *csvDocument) Close() error {
	return nil
}

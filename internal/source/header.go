package source

import (
	"strings"
	"time"

	"tally/internal/workbook"
)

// columnByKeyword returns the index of the first header cell containing any
// of the keywords, case-insensitively, or -1.
func columnByKeyword(header []string, keywords ...string) int {
	for i, cell := range header {
		lower := strings.ToLower(strings.TrimSpace(cell))
		if lower == "" {
			continue
		}
		for _, kw := range keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				return i
			}
		}
	}
	return -1
}

// columnExact returns the index of the header cell equal to name after
// trimming and lowercasing, or -1.
func columnExact(header []string, name string) int {
	want := strings.ToLower(strings.TrimSpace(name))
	for i, cell := range header {
		if strings.ToLower(strings.TrimSpace(cell)) == want {
			return i
		}
	}
	return -1
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// summaryMarkers flag rows that restate totals already carried by the data
// rows above them.
var summaryMarkers = []string{"total", "subtotal", "grand total", "合计", "小计", "总计"}

// summaryRow reports whether the row's first populated cell is a totals
// marker.
func summaryRow(row []string) bool {
	for _, cell := range row {
		s := strings.ToLower(strings.TrimSpace(cell))
		if s == "" {
			continue
		}
		for _, m := range summaryMarkers {
			if s == m {
				return true
			}
		}
		return false
	}
	return false
}

// timeFormats covers the timestamp renderings seen across the source set,
// most specific first.
var timeFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02 15:04:05",
	"02/01/2006 15:04:05",
	"01/02/2006 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"01-02-06 15:04",
	"1/2/06 15:04",
}

// parseTime parses a raw cell timestamp. A zero return with false means the
// cell held no usable time.
func parseTime(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// timeAt reads and parses a timestamp cell; col may be -1.
func timeAt(row []string, col int) *time.Time {
	if col < 0 {
		return nil
	}
	if t, ok := parseTime(workbook.Cell(row, col)); ok {
		return &t
	}
	return nil
}

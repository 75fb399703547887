package workbook

import "fmt"

// Grid is one named sheet of raw cells.
type Grid struct {
	Name string
	Rows [][]string
}

// memDocument is the in-memory backend used by adapter tests.
type memDocument struct {
	path   string
	sheets []Grid
}

// NewMemory builds a document from literal grids.
func NewMemory(path string, sheets ...Grid) Document {
	return &memDocument{path: path, sheets: sheets}
}

func (d *memDocument) Path() string {
	return d.path
}

func (d *memDocument) Sheets() []string {
	names := make([]string, len(d.sheets))
	for i, s := range d.sheets {
		names[i] = s.Name
	}
	return names
}

func (d *memDocument) Rows(sheet string) ([][]string, error) {
	for _, s := range d.sheets {
		if s.Name == sheet {
			return s.Rows, nil
		}
	}
	return nil, fmt.Errorf("workbook: no sheet %q in %s", sheet, d.path)
}

func (d *memDocument) Close() error {
	return nil
}

package workbook

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// excelDocument reads multi-sheet xlsx workbooks through excelize.
type excelDocument struct {
	path string
	file *excelize.File
}

// OpenExcel opens an xlsx workbook.
func OpenExcel(path string) (Document, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("workbook: open %s: %w", path, err)
	}
	return &excelDocument{path: path, file: f}, nil
}

func (d *excelDocument) Path() string {
	return d.path
}

func (d *excelDocument) Sheets() []string {
	return d.file.GetSheetList()
}

func (d *excelDocument) Rows(sheet string) ([][]string, error) {
	rows, err := d.file.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("workbook: read sheet %q of %s: %w", sheet, d.path, err)
	}
	return rows, nil
}

func (d *excelDocument) Close() error {
	return d.file.Close()
}

// Package spreadsheet loads an import table from an .xlsx workbook or a
// .csv export of one.
package spreadsheet

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/mdotservice/serviceinfo/modules/inventory/domain/importsheet"
)

var ErrUnsupportedFormat = errors.New("spreadsheet: unsupported file format")

// ReadFile dispatches on the file extension.
func ReadFile(path string) (importsheet.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ReadWorkbook(path)
	case ".csv":
		return ReadCSV(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
	}
}

// ReadWorkbook returns the first sheet as raw cell text. Raw values keep date
// cells as their serial numbers.
func ReadWorkbook(path string) (table importsheet.Table, err error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", filepath.Base(path), err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", filepath.Base(path))
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return toTable(rows), nil
}

func ReadCSV(path string) (importsheet.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return readCSV(f)
}

func readCSV(r io.Reader) (importsheet.Table, error) {
	cr := csv.NewReader(stripUTF8BOM(bufio.NewReader(r)))
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return toTable(rows), nil
}

func stripUTF8BOM(r *bufio.Reader) *bufio.Reader {
	b, err := r.Peek(3)
	if err == nil && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		_, _ = r.Discard(3)
	}
	return r
}

func toTable(rows [][]string) importsheet.Table {
	table := make(importsheet.Table, len(rows))
	for i, r := range rows {
		table[i] = importsheet.Row(r)
	}
	return table
}

// Package importsheet describes the quantity import table and the report a
// reconciliation run produces from it.
//
// The table is the first sheet of a workbook as rows of raw cell text.
// Row 0 is a header. Cells E2 and G2 optionally carry the reporting period
// as Excel serial dates. Item records span two physical rows: the name sits
// in column A of one row and its iq/sq/balance in columns B..D of the next.
package importsheet

import (
	"math"
	"strconv"
	"strings"
	"time"
)

type Row []string

// Cell returns the trimmed text at col, or "" if the row is shorter.
func (r Row) Cell(col int) string {
	if col < 0 || col >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[col])
}

type Table []Row

const (
	dateRow     = 1
	fromDateCol = 4 // E
	toDateCol   = 6 // G

	// Days between 1899-12-30 (Excel day 0) and 1970-01-01.
	excelUnixEpochOffset = 25569
	// maxExcelSerial is 31/12/9999, the last date a worksheet can hold.
	maxExcelSerial = 2958465

	DateLayout = "02/01/2006"
)

// Pair is one logical record: the row holding the item name and the row
// after it holding the values.
type Pair struct {
	Index int
	Name  string
	Data  Row
}

// ImportRow is the value set extracted from a pair.
type ImportRow struct {
	Name    string
	IQ      string
	SQ      string
	Balance string
}

// Pairs walks every index and pairs it with the following row. Indexes whose
// first cell is blank are skipped. A data row can itself be the name row of
// the next pair if its first cell is not blank.
func Pairs(t Table) []Pair {
	var out []Pair
	for i := range t {
		name := t[i].Cell(0)
		if name == "" {
			continue
		}
		var data Row
		if i+1 < len(t) {
			data = t[i+1]
		}
		out = append(out, Pair{Index: i, Name: name, Data: data})
	}
	return out
}

// Values reads iq, sq and balance from columns 1, 2 and 3 of the data row.
// Empty cells default to "0".
func (p Pair) Values() ImportRow {
	return ImportRow{
		Name:    p.Name,
		IQ:      valueOrZero(p.Data, 1),
		SQ:      valueOrZero(p.Data, 2),
		Balance: valueOrZero(p.Data, 3),
	}
}

func valueOrZero(r Row, col int) string {
	if v := r.Cell(col); v != "" {
		return v
	}
	return "0"
}

// DateRange reads the reporting period from E2 and G2. ok is false unless
// both cells hold a serial date.
func (t Table) DateRange() (from, to string, ok bool) {
	if len(t) <= dateRow {
		return "", "", false
	}
	from, okFrom := SerialToDate(t[dateRow].Cell(fromDateCol))
	to, okTo := SerialToDate(t[dateRow].Cell(toDateCol))
	if !okFrom || !okTo {
		return "", "", false
	}
	return from, to, true
}

// SerialToDate converts an Excel serial day number to DD/MM/YYYY in UTC.
// The fractional (time of day) part is dropped.
func SerialToDate(cell string) (string, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return "", false
	}
	serial, err := strconv.ParseFloat(cell, 64)
	if err != nil || math.IsNaN(serial) || math.IsInf(serial, 0) || serial <= 0 || serial >= maxExcelSerial+1 {
		return "", false
	}
	days := math.Floor(serial) - excelUnixEpochOffset
	return time.Unix(int64(days)*86400, 0).UTC().Format(DateLayout), true
}

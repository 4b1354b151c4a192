// Package workbook holds the read-only spreadsheet model the header detector
// scans, plus readers that build it from Excel and CSV templates.
package workbook

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
	CellBool
	CellDate
	CellError
)

func (k CellKind) String() string {
	switch k {
	case CellEmpty:
		return "empty"
	case CellText:
		return "text"
	case CellNumber:
		return "number"
	case CellBool:
		return "bool"
	case CellDate:
		return "date"
	case CellError:
		return "error"
	default:
		return "unknown"
	}
}

type Cell struct {
	Value string
	Kind  CellKind
}

func (c Cell) IsText() bool {
	return c.Kind == CellText
}

// Sheet is a named grid of cells. Rows may have different lengths.
type Sheet struct {
	Name string
	Rows [][]Cell
}

type Workbook struct {
	Name   string
	Sheets []Sheet
}

func New(name string, sheets ...Sheet) Workbook {
	return Workbook{Name: name, Sheets: sheets}
}

// Sheet returns the sheet with the given name.
func (w Workbook) Sheet(name string) (Sheet, bool) {
	for _, sheet := range w.Sheets {
		if sheet.Name == name {
			return sheet, true
		}
	}
	return Sheet{}, false
}

func (w Workbook) SheetNames() []string {
	names := make([]string, 0, len(w.Sheets))
	for _, sheet := range w.Sheets {
		names = append(names, sheet.Name)
	}
	return names
}

// NewSheet builds a sheet from plain Go values. Strings become text cells
// (blank strings become empty cells), numbers become numeric cells, bools and
// times keep their own kinds and nil is an empty cell.
func NewSheet(name string, rows ...[]any) Sheet {
	grid := make([][]Cell, 0, len(rows))
	for _, row := range rows {
		cells := make([]Cell, 0, len(row))
		for _, value := range row {
			cells = append(cells, CellOf(value))
		}
		grid = append(grid, cells)
	}
	return Sheet{Name: name, Rows: grid}
}

func CellOf(value any) Cell {
	switch v := value.(type) {
	case nil:
		return Cell{}
	case Cell:
		return v
	case string:
		if strings.TrimSpace(v) == "" {
			return Cell{Value: v, Kind: CellEmpty}
		}
		return Cell{Value: v, Kind: CellText}
	case int:
		return Cell{Value: strconv.Itoa(v), Kind: CellNumber}
	case int32:
		return Cell{Value: strconv.FormatInt(int64(v), 10), Kind: CellNumber}
	case int64:
		return Cell{Value: strconv.FormatInt(v, 10), Kind: CellNumber}
	case float32:
		return Cell{Value: strconv.FormatFloat(float64(v), 'f', -1, 32), Kind: CellNumber}
	case float64:
		return Cell{Value: strconv.FormatFloat(v, 'f', -1, 64), Kind: CellNumber}
	case bool:
		return Cell{Value: strconv.FormatBool(v), Kind: CellBool}
	case time.Time:
		return Cell{Value: v.Format(time.RFC3339), Kind: CellDate}
	default:
		return Cell{Value: fmt.Sprint(v), Kind: CellText}
	}
}

// kindFromRaw classifies a raw cell string whose type the source format does
// not record.
func kindFromRaw(raw string) CellKind {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return CellEmpty
	}
	if _, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return CellNumber
	}
	return CellText
}

package workbook

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

type ExcelReader struct{}

func (r *ExcelReader) Read(path string) (Workbook, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return Workbook{}, fmt.Errorf("%w: open excel file %s: %w", ErrUnreadableWorkbook, path, err)
	}
	defer file.Close()

	return readExcel(file, filepath.Base(path))
}

// ReadExcel parses an xlsx stream, e.g. an uploaded template.
func ReadExcel(src io.Reader, name string) (Workbook, error) {
	file, err := excelize.OpenReader(src)
	if err != nil {
		return Workbook{}, fmt.Errorf("%w: open excel stream %s: %w", ErrUnreadableWorkbook, name, err)
	}
	defer file.Close()

	return readExcel(file, name)
}

func readExcel(file *excelize.File, name string) (Workbook, error) {
	sheetNames := file.GetSheetList()
	book := Workbook{Name: name, Sheets: make([]Sheet, 0, len(sheetNames))}

	for _, sheetName := range sheetNames {
		formatted, err := file.GetRows(sheetName)
		if err != nil {
			return Workbook{}, fmt.Errorf("%w: read rows from sheet %s: %w", ErrUnreadableWorkbook, sheetName, err)
		}
		raw, err := file.GetRows(sheetName, excelize.Options{RawCellValue: true})
		if err != nil {
			return Workbook{}, fmt.Errorf("%w: read raw rows from sheet %s: %w", ErrUnreadableWorkbook, sheetName, err)
		}

		grid := make([][]Cell, len(formatted))
		for rowIdx, row := range formatted {
			cells := make([]Cell, len(row))
			for colIdx, value := range row {
				if value == "" {
					continue
				}
				rawValue := value
				if rowIdx < len(raw) && colIdx < len(raw[rowIdx]) {
					rawValue = raw[rowIdx][colIdx]
				}
				cells[colIdx] = Cell{
					Value: value,
					Kind:  excelCellKind(file, sheetName, colIdx+1, rowIdx+1, rawValue),
				}
			}
			grid[rowIdx] = cells
		}

		book.Sheets = append(book.Sheets, Sheet{Name: sheetName, Rows: grid})
	}

	return book, nil
}

func excelCellKind(file *excelize.File, sheetName string, col, row int, raw string) CellKind {
	cellName, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return kindFromRaw(raw)
	}
	cellType, err := file.GetCellType(sheetName, cellName)
	if err != nil {
		return kindFromRaw(raw)
	}

	switch cellType {
	case excelize.CellTypeBool:
		return CellBool
	case excelize.CellTypeDate:
		return CellDate
	case excelize.CellTypeError:
		return CellError
	case excelize.CellTypeNumber:
		return CellNumber
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula:
		return CellText
	default:
		// excelize leaves the type attribute unset for plain numbers.
		return kindFromRaw(raw)
	}
}

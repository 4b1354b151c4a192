package workbook

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// CSVReader reads a CSV template as a single-sheet workbook named after the
// file. UTF-16 files with a byte order mark are decoded transparently.
type CSVReader struct {
	Comma rune
}

func (r *CSVReader) Read(path string) (Workbook, error) {
	file, err := os.Open(path)
	if err != nil {
		return Workbook{}, fmt.Errorf("%w: open csv file %s: %w", ErrUnreadableWorkbook, path, err)
	}
	defer file.Close()

	base := filepath.Base(path)
	sheetName := strings.TrimSuffix(base, filepath.Ext(base))
	sheet, err := r.ReadSheet(file, sheetName)
	if err != nil {
		return Workbook{}, err
	}
	return New(base, sheet), nil
}

func (r *CSVReader) ReadSheet(src io.Reader, sheetName string) (Sheet, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	csvReader := csv.NewReader(transform.NewReader(src, decoder))
	csvReader.FieldsPerRecord = -1
	csvReader.LazyQuotes = true
	if r.Comma != 0 {
		csvReader.Comma = r.Comma
	}

	grid := make([][]Cell, 0, 64)
	for {
		row, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Sheet{}, fmt.Errorf("%w: read csv row %d: %w", ErrUnreadableWorkbook, len(grid)+1, err)
		}

		cells := make([]Cell, len(row))
		for i, value := range row {
			cells[i] = Cell{Value: value, Kind: kindFromRaw(value)}
		}
		grid = append(grid, cells)
	}

	return Sheet{Name: sheetName, Rows: grid}, nil
}

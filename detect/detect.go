// Package detect locates header bands in template sheets: runs of
// consecutive text cells in one row that act as the column titles of a table.
package detect

import (
	"strings"

	"scadamap/workbook"
)

const (
	DefaultMaxRows = 30
	DefaultMaxCols = 60
	DefaultMinRun  = 2
)

type Options struct {
	// MaxRows and MaxCols bound the scan window; zero means unbounded.
	MaxRows int
	MaxCols int
	// MinRun is the shortest run accepted as a header band.
	MinRun int
	// AllBands returns every accepted row instead of only the first one.
	AllBands bool
}

func DefaultOptions() Options {
	return Options{
		MaxRows: DefaultMaxRows,
		MaxCols: DefaultMaxCols,
		MinRun:  DefaultMinRun,
	}
}

type HeaderCell struct {
	// Column is 1-based.
	Column int
	Text   string
}

type HeaderBand struct {
	Sheet    string
	Row      int
	StartCol int
	EndCol   int
	Cells    []HeaderCell
}

func (b HeaderBand) Headers() []string {
	headers := make([]string, len(b.Cells))
	for i, cell := range b.Cells {
		headers[i] = cell.Text
	}
	return headers
}

func (b HeaderBand) Len() int {
	return len(b.Cells)
}

type Detector struct {
	opts Options
}

func New(opts Options) *Detector {
	// a lone text cell is a title or label, never a header band
	if opts.MinRun < DefaultMinRun {
		opts.MinRun = DefaultMinRun
	}
	if opts.MaxRows < 0 {
		opts.MaxRows = 0
	}
	if opts.MaxCols < 0 {
		opts.MaxCols = 0
	}
	return &Detector{opts: opts}
}

func (d *Detector) Options() Options {
	return d.opts
}

// Detect returns the header bands of a sheet, top-down. Unless AllBands is
// set the result holds at most one band: the first accepted row.
func (d *Detector) Detect(sheet workbook.Sheet) []HeaderBand {
	bands := make([]HeaderBand, 0, 1)
	for rowIdx, row := range sheet.Rows {
		if d.opts.MaxRows > 0 && rowIdx >= d.opts.MaxRows {
			break
		}
		band, ok := d.bandInRow(sheet.Name, rowIdx+1, row)
		if !ok {
			continue
		}
		bands = append(bands, band)
		if !d.opts.AllBands {
			break
		}
	}
	return bands
}

// Primary returns the band the mapping generator works with.
func (d *Detector) Primary(sheet workbook.Sheet) (HeaderBand, bool) {
	bands := d.Detect(sheet)
	if len(bands) == 0 {
		return HeaderBand{}, false
	}
	return bands[0], true
}

// bandInRow picks the longest run of qualifying cells in a row; the leftmost
// run wins ties.
func (d *Detector) bandInRow(sheetName string, rowNumber int, row []workbook.Cell) (HeaderBand, bool) {
	limit := len(row)
	if d.opts.MaxCols > 0 && limit > d.opts.MaxCols {
		limit = d.opts.MaxCols
	}

	var best, current []HeaderCell
	flush := func() {
		if len(current) > len(best) {
			best = current
		}
		current = nil
	}

	for colIdx := 0; colIdx < limit; colIdx++ {
		cell := row[colIdx]
		if !LooksLikeHeader(cell) {
			flush()
			continue
		}
		current = append(current, HeaderCell{Column: colIdx + 1, Text: strings.TrimSpace(cell.Value)})
	}
	flush()

	if len(best) < d.opts.MinRun {
		return HeaderBand{}, false
	}
	return HeaderBand{
		Sheet:    sheetName,
		Row:      rowNumber,
		StartCol: best[0].Column,
		EndCol:   best[len(best)-1].Column,
		Cells:    best,
	}, true
}

// LooksLikeHeader reports whether a cell may be part of a header band: a
// non-blank text cell that is not a number written as text.
func LooksLikeHeader(cell workbook.Cell) bool {
	if !cell.IsText() {
		return false
	}
	value := strings.TrimSpace(cell.Value)
	if value == "" {
		return false
	}
	return !numericLike(value)
}

func numericLike(value string) bool {
	stripped := strings.NewReplacer(".", "", ",", "", "-", "").Replace(value)
	if stripped == "" {
		return false
	}
	for _, r := range stripped {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Package report renders the per-sheet diagnostic report of a mapping run.
package report

import (
	"fmt"
	"io"
	"strings"

	"scadamap/mapping"
)

type Writer interface {
	Write(w io.Writer, result mapping.Result) error
}

func SupportedFormats() []string {
	return []string{"text", "csv", "json", "excel"}
}

func WriterForFormat(format string) (Writer, error) {
	switch normalizeFormat(format) {
	case "", "text", "txt":
		return &TextWriter{}, nil
	case "csv":
		return &CSVWriter{}, nil
	case "json":
		return &JSONWriter{Indent: true}, nil
	case "excel", "xlsx":
		return &ExcelWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

// FormatForPath infers a report format from a file extension.
func FormatForPath(path string) string {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".csv"):
		return "csv"
	case strings.HasSuffix(lower, ".json"):
		return "json"
	case strings.HasSuffix(lower, ".xlsx"):
		return "excel"
	default:
		return "text"
	}
}

func normalizeFormat(value string) string {
	return strings.TrimSpace(strings.ToLower(value))
}

const (
	StatusMapped    = "mapped"
	StatusDuplicate = "duplicate"
	StatusUnmapped  = "unmapped"
)

// Row is one header of the report in table form.
type Row struct {
	Sheet             string
	Header            string
	Key               string
	Target            string
	ConfidencePercent float64
	Tier              string
	Status            string
}

func Rows(result mapping.Result) []Row {
	rows := make([]Row, 0, result.HeadersFound())
	for _, sheet := range result.Sheets {
		for _, entry := range sheet.Mapped {
			status := StatusMapped
			if entry.Duplicate {
				status = StatusDuplicate
			}
			rows = append(rows, Row{
				Sheet:             entry.Sheet,
				Header:            entry.Header,
				Key:               entry.Key,
				Target:            entry.Target,
				ConfidencePercent: entry.ConfidencePercent(),
				Tier:              entry.Tier,
				Status:            status,
			})
		}
		for _, header := range sheet.Unmapped {
			rows = append(rows, Row{
				Sheet:  sheet.Sheet,
				Header: header,
				Key:    mapping.SheetQualifiedKey(sheet.Sheet, header),
				Status: StatusUnmapped,
			})
		}
	}
	return rows
}

var rowHeaders = []string{"Sheet", "Header", "Key", "Column", "ConfidencePercent", "Tier", "Status"}

func (r Row) values() []string {
	confidence := ""
	if r.Status != StatusUnmapped {
		confidence = fmt.Sprintf("%.1f", r.ConfidencePercent)
	}
	return []string{r.Sheet, r.Header, r.Key, r.Target, confidence, r.Tier, r.Status}
}

package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"scadamap/mapping"
)

type CSVWriter struct{}

func (cw *CSVWriter) Write(w io.Writer, result mapping.Result) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(rowHeaders); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range Rows(result) {
		if err := writer.Write(row.values()); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv output: %w", err)
	}

	return nil
}

package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"scadamap/mapping"
)

const (
	excelMappingsSheet = "Mappings"
	excelSummarySheet  = "Summary"
)

// ExcelWriter writes a workbook with one row per header and a per-sheet
// summary.
type ExcelWriter struct{}

func (ew *ExcelWriter) Write(w io.Writer, result mapping.Result) error {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName(file.GetSheetName(0), excelMappingsSheet); err != nil {
		return fmt.Errorf("rename excel sheet: %w", err)
	}
	if err := writeExcelRows(file, excelMappingsSheet, rowHeaders, mappingRows(result)); err != nil {
		return err
	}

	if _, err := file.NewSheet(excelSummarySheet); err != nil {
		return fmt.Errorf("create excel summary sheet: %w", err)
	}
	summaryHeaders := []string{"Sheet", "HeaderRow", "HeadersDetected", "AutoMapped", "Unmapped"}
	if err := writeExcelRows(file, excelSummarySheet, summaryHeaders, summaryRows(result)); err != nil {
		return err
	}

	if _, err := file.WriteTo(w); err != nil {
		return fmt.Errorf("write excel report: %w", err)
	}
	return nil
}

func mappingRows(result mapping.Result) [][]any {
	rows := Rows(result)
	values := make([][]any, 0, len(rows))
	for _, row := range rows {
		var confidence any
		if row.Status != StatusUnmapped {
			confidence = row.ConfidencePercent
		}
		values = append(values, []any{row.Sheet, row.Header, row.Key, row.Target, confidence, row.Tier, row.Status})
	}
	return values
}

func summaryRows(result mapping.Result) [][]any {
	values := make([][]any, 0, len(result.Sheets))
	for _, sheet := range result.Sheets {
		values = append(values, []any{sheet.Sheet, sheet.HeaderRow, sheet.HeadersFound, len(sheet.Mapped), len(sheet.Unmapped)})
	}
	return values
}

func writeExcelRows(file *excelize.File, sheet string, headers []string, rows [][]any) error {
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := file.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("set excel header %s: %w", cell, err)
		}
	}

	for i, row := range rows {
		for col, value := range row {
			if value == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("set excel value %s: %w", cell, err)
			}
		}
	}
	return nil
}

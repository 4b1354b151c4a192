package report

import (
	"fmt"
	"io"
	"strings"

	"scadamap/mapping"
)

// TextWriter prints the operator summary: per sheet the detected, mapped and
// unmapped headers with confidences as percentages.
type TextWriter struct{}

func (tw *TextWriter) Write(w io.Writer, result mapping.Result) error {
	var b strings.Builder

	detected := 0
	for _, sheet := range result.Sheets {
		if sheet.Detected() {
			detected++
		}
	}
	fmt.Fprintf(&b, "Sheets with detectable headers: %d of %d\n", detected, len(result.Sheets))
	if result.Source != "" {
		fmt.Fprintf(&b, "Candidate columns: %d (%s)\n", result.Candidates, result.Source)
	} else {
		fmt.Fprintf(&b, "Candidate columns: %d\n", result.Candidates)
	}
	fmt.Fprintf(&b, "Confidence threshold: %.1f%%\n\n", result.Threshold*100)

	for _, sheet := range result.Sheets {
		fmt.Fprintf(&b, "Sheet: %s\n", sheet.Sheet)
		if !sheet.Detected() {
			b.WriteString("   Could not detect headers\n\n")
			continue
		}
		fmt.Fprintf(&b, "   Header row: %d\n", sheet.HeaderRow)
		fmt.Fprintf(&b, "   Headers detected: %d\n", sheet.HeadersFound)
		fmt.Fprintf(&b, "   Auto-mapped: %d\n", len(sheet.Mapped))
		fmt.Fprintf(&b, "   Need manual mapping: %d\n", len(sheet.Unmapped))
		if len(sheet.Mapped) > 0 {
			b.WriteString("   Auto-mappings:\n")
			for _, entry := range sheet.Mapped {
				suffix := ""
				if entry.Duplicate {
					suffix = " [duplicate key, ignored]"
				}
				fmt.Fprintf(&b, "      %s -> %s (%.1f%% confidence)%s\n", entry.Header, entry.Target, entry.ConfidencePercent(), suffix)
			}
		}
		if len(sheet.Unmapped) > 0 {
			fmt.Fprintf(&b, "   Unmapped headers: %s\n", strings.Join(sheet.Unmapped, ", "))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Total: %d headers, %d auto-mapped, %d unmapped\n", result.HeadersFound(), result.MappedCount(), result.UnmappedCount())

	_, err := io.WriteString(w, b.String())
	return err
}

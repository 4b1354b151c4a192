package report

import (
	"encoding/json"
	"fmt"
	"io"

	"scadamap/mapping"
)

// View is the JSON shape of a mapping run, shared with the HTTP API.
type View struct {
	Threshold  float64           `json:"threshold"`
	Source     string            `json:"source,omitempty"`
	Candidates int               `json:"candidates"`
	Headers    int               `json:"headersDetected"`
	Mapped     int               `json:"autoMapped"`
	Unmapped   int               `json:"unmapped"`
	Sheets     []SheetView       `json:"sheets"`
	Mappings   map[string]string `json:"mappings"`
}

type SheetView struct {
	Sheet           string        `json:"sheet"`
	HeaderRow       int           `json:"headerRow,omitempty"`
	HeadersDetected int           `json:"headersDetected"`
	AutoMapped      []MappingView `json:"autoMapped"`
	Unmapped        []string      `json:"unmapped"`
}

type MappingView struct {
	Header            string  `json:"header"`
	Column            string  `json:"column"`
	Key               string  `json:"key"`
	ConfidencePercent float64 `json:"confidencePercent"`
	Tier              string  `json:"tier"`
	Duplicate         bool    `json:"duplicate,omitempty"`
}

func NewView(result mapping.Result) View {
	view := View{
		Threshold:  result.Threshold,
		Source:     result.Source,
		Candidates: result.Candidates,
		Headers:    result.HeadersFound(),
		Mapped:     result.MappedCount(),
		Unmapped:   result.UnmappedCount(),
		Sheets:     make([]SheetView, 0, len(result.Sheets)),
		Mappings:   map[string]string(result.Document),
	}
	if view.Mappings == nil {
		view.Mappings = map[string]string{}
	}

	for _, sheet := range result.Sheets {
		sv := SheetView{
			Sheet:           sheet.Sheet,
			HeaderRow:       sheet.HeaderRow,
			HeadersDetected: sheet.HeadersFound,
			AutoMapped:      make([]MappingView, 0, len(sheet.Mapped)),
			Unmapped:        append([]string{}, sheet.Unmapped...),
		}
		for _, entry := range sheet.Mapped {
			sv.AutoMapped = append(sv.AutoMapped, MappingView{
				Header:            entry.Header,
				Column:            entry.Target,
				Key:               entry.Key,
				ConfidencePercent: entry.ConfidencePercent(),
				Tier:              entry.Tier,
				Duplicate:         entry.Duplicate,
			})
		}
		view.Sheets = append(view.Sheets, sv)
	}
	return view
}

type JSONWriter struct {
	Indent bool
}

func (jw *JSONWriter) Write(w io.Writer, result mapping.Result) error {
	encoder := json.NewEncoder(w)
	if jw.Indent {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(NewView(result)); err != nil {
		return fmt.Errorf("encode json report: %w", err)
	}
	return nil
}

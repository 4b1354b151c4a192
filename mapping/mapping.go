// Package mapping turns detected template headers into a flat
// "<SHEET>_<HEADER>" -> column document, scoring every header against the
// candidate columns of the target table.
package mapping

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const DefaultThreshold = 0.5

// Document is the persisted mapping: sheet-qualified header key to column.
type Document map[string]string

func (d Document) Keys() []string {
	keys := make([]string, 0, len(d))
	for key := range d {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (d Document) Clone() Document {
	clone := make(Document, len(d))
	for key, value := range d {
		clone[key] = value
	}
	return clone
}

// Merge returns prior overlaid with next; keys present in both take the value
// from next.
func Merge(prior, next Document) Document {
	merged := prior.Clone()
	for key, value := range next {
		merged[key] = value
	}
	return merged
}

type Entry struct {
	Sheet      string
	Header     string
	Column     int
	Key        string
	Target     string
	Confidence float64
	Tier       string
	// Duplicate marks a header whose key was already taken by an earlier
	// header; it is reported but not part of the document.
	Duplicate bool
}

// ConfidencePercent is the confidence as shown to operators, e.g. 55.6.
func (e Entry) ConfidencePercent() float64 {
	return float64(int(e.Confidence*1000+0.5)) / 10
}

type SheetReport struct {
	Sheet        string
	HeaderRow    int
	StartCol     int
	EndCol       int
	HeadersFound int
	Mapped       []Entry
	Unmapped     []string
}

func (r SheetReport) Detected() bool {
	return r.HeadersFound > 0
}

type Result struct {
	Document  Document
	Entries   []Entry
	Sheets    []SheetReport
	Threshold float64
	// Source names where the candidate columns came from, when known.
	Source     string
	Candidates int
}

// MappedCount counts headers that cleared the threshold, duplicates included.
func (r Result) MappedCount() int {
	total := 0
	for _, sheet := range r.Sheets {
		total += len(sheet.Mapped)
	}
	return total
}

func (r Result) UnmappedCount() int {
	total := 0
	for _, sheet := range r.Sheets {
		total += len(sheet.Unmapped)
	}
	return total
}

func (r Result) HeadersFound() int {
	total := 0
	for _, sheet := range r.Sheets {
		total += sheet.HeadersFound
	}
	return total
}

// SheetQualifiedKey builds the document key for a header: sheet name and
// header text upper-cased with whitespace runs collapsed to "_", joined by "_".
func SheetQualifiedKey(sheet, header string) string {
	return keyPart(sheet) + "_" + keyPart(header)
}

// NormalizeKey brings a user-typed key into stored form, so
// "report straße" finds REPORT_STRASSE.
func NormalizeKey(key string) string {
	return keyPart(key)
}

func keyPart(value string) string {
	return cases.Upper(language.Und).String(strings.Join(strings.Fields(value), "_"))
}

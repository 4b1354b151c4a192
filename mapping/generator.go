package mapping

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/sirupsen/logrus"

	"scadamap/detect"
	"scadamap/similarity"
	"scadamap/workbook"
)

// CandidateSet is a list of column names plus a label of where it came from.
type CandidateSet struct {
	Names  []string
	Source string
}

type CandidateSource interface {
	Candidates(ctx context.Context) (CandidateSet, error)
}

type Generator struct {
	detector *detect.Detector
	scorer   *similarity.Scorer
	logger   logrus.FieldLogger
}

type Option func(*Generator)

func WithDetector(detector *detect.Detector) Option {
	return func(g *Generator) {
		if detector != nil {
			g.detector = detector
		}
	}
}

func WithScorer(scorer *similarity.Scorer) Option {
	return func(g *Generator) {
		if scorer != nil {
			g.scorer = scorer
		}
	}
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		detector: detect.New(detect.DefaultOptions()),
		scorer:   similarity.New(),
		logger:   logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GenerateFrom resolves candidates from source and maps the workbook against
// them. A failing source still yields a result, with every header unmapped,
// next to the error.
func (g *Generator) GenerateFrom(ctx context.Context, book workbook.Workbook, source CandidateSource, threshold float64) (Result, error) {
	set, err := source.Candidates(ctx)
	if err != nil {
		g.logger.WithError(err).Warn("candidate columns unavailable")
		result := g.Generate(book, nil, threshold)
		return result, fmt.Errorf("resolve candidate columns: %w", err)
	}

	result := g.Generate(book, set.Names, threshold)
	result.Source = set.Source
	return result, nil
}

// Generate maps the primary header band of every sheet. Each header is
// scored on its own against every candidate; the highest score wins and the
// earliest candidate wins ties. Headers scoring below threshold are reported
// as unmapped.
func (g *Generator) Generate(book workbook.Workbook, candidates []string, threshold float64) Result {
	threshold = NormalizeThreshold(threshold)
	names := uniqueCandidates(candidates)
	result := Result{
		Document:   Document{},
		Entries:    make([]Entry, 0, 16),
		Sheets:     make([]SheetReport, 0, len(book.Sheets)),
		Threshold:  threshold,
		Candidates: len(names),
	}

	for _, sheet := range book.Sheets {
		log := g.logger.WithField("sheet", sheet.Name)
		report := SheetReport{Sheet: sheet.Name}

		band, ok := g.detector.Primary(sheet)
		if !ok {
			log.Debug("no header band detected")
			result.Sheets = append(result.Sheets, report)
			continue
		}
		report.HeaderRow = band.Row
		report.StartCol = band.StartCol
		report.EndCol = band.EndCol
		report.HeadersFound = band.Len()

		for _, cell := range band.Cells {
			entry, ok := g.bestMatch(sheet.Name, cell, names)
			if !ok || entry.Confidence < threshold {
				report.Unmapped = append(report.Unmapped, cell.Text)
				continue
			}

			if _, exists := result.Document[entry.Key]; exists {
				log.WithField("key", entry.Key).Debug("duplicate header key, keeping first mapping")
				entry.Duplicate = true
			} else {
				result.Document[entry.Key] = entry.Target
				result.Entries = append(result.Entries, entry)
			}
			report.Mapped = append(report.Mapped, entry)
		}

		log.WithFields(logrus.Fields{
			"headers":  report.HeadersFound,
			"mapped":   len(report.Mapped),
			"unmapped": len(report.Unmapped),
		}).Debug("sheet mapped")
		result.Sheets = append(result.Sheets, report)
	}

	return result
}

func (g *Generator) bestMatch(sheetName string, cell detect.HeaderCell, names []string) (Entry, bool) {
	bestIdx := -1
	var best similarity.Match
	for i, name := range names {
		match := g.scorer.Evaluate(cell.Text, name)
		if bestIdx < 0 || match.Score > best.Score {
			bestIdx, best = i, match
		}
	}
	if bestIdx < 0 {
		return Entry{}, false
	}
	return Entry{
		Sheet:      sheetName,
		Header:     cell.Text,
		Column:     cell.Column,
		Key:        SheetQualifiedKey(sheetName, cell.Text),
		Target:     names[bestIdx],
		Confidence: best.Score,
		Tier:       best.Tier,
	}, true
}

// NormalizeThreshold clamps a threshold into [0,1]; NaN becomes the default.
func NormalizeThreshold(threshold float64) float64 {
	switch {
	case math.IsNaN(threshold):
		return DefaultThreshold
	case threshold < 0:
		return 0
	case threshold > 1:
		return 1
	default:
		return threshold
	}
}

func uniqueCandidates(candidates []string) []string {
	seen := make(map[string]struct{}, len(candidates))
	names := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		if strings.TrimSpace(candidate) == "" {
			continue
		}
		if _, ok := seen[candidate]; ok {
			continue
		}
		seen[candidate] = struct{}{}
		names = append(names, candidate)
	}
	return names
}

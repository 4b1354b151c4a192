// Package columns supplies candidate column names for the mapping generator,
// either from a live database schema or from a static fallback list.
package columns

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"scadamap/mapping"
)

const (
	SourceStatic = "static"
	SourceLive   = "live"
)

var ErrNoColumns = errors.New("no candidate columns")

// DefaultFallback is the SCADA batch table layout used when no database is
// configured.
func DefaultFallback() []string {
	names := []string{"SR_NO", "DATE_TIME", "BATCH_NAME", "JOB_NO", "PRODUCT_CODE", "QUANTITY", "OPERATOR_NAME"}
	for i := 1; i <= 10; i++ {
		names = append(names, fmt.Sprintf("DATA%d", i))
	}
	return names
}

type Static struct {
	names []string
}

func NewStatic(names []string) *Static {
	return &Static{names: Unique(names)}
}

func (s *Static) Candidates(context.Context) (mapping.CandidateSet, error) {
	names := make([]string, len(s.names))
	copy(names, s.names)
	return mapping.CandidateSet{Names: names, Source: SourceStatic}, nil
}

type fallbackSource struct {
	primary  mapping.CandidateSource
	fallback mapping.CandidateSource
	logger   logrus.FieldLogger
}

// WithFallback asks primary first and switches to fallback when primary is
// nil, fails or returns no columns.
func WithFallback(primary, fallback mapping.CandidateSource, logger logrus.FieldLogger) mapping.CandidateSource {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &fallbackSource{primary: primary, fallback: fallback, logger: logger}
}

func (f *fallbackSource) Candidates(ctx context.Context) (mapping.CandidateSet, error) {
	if f.primary != nil {
		set, err := f.primary.Candidates(ctx)
		switch {
		case err != nil:
			f.logger.WithError(err).Warn("live schema unavailable, using fallback columns")
		case len(set.Names) == 0:
			f.logger.WithField("source", set.Source).Warn("live schema returned no columns, using fallback columns")
		default:
			return set, nil
		}
	}
	if f.fallback == nil {
		return mapping.CandidateSet{}, ErrNoColumns
	}
	return f.fallback.Candidates(ctx)
}

// Unique drops blank and repeated names, keeping first-seen order.
func Unique(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	unique := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		unique = append(unique, name)
	}
	return unique
}

// Package similarity scores how well a template header matches a candidate
// column name. Scores are in [0,1] and come from an ordered list of
// strategies; the first strategy that applies decides the score.
package similarity

import (
	"strings"

	"golang.org/x/text/cases"
)

const (
	TierExact    = "exact"
	TierContains = "contains"
	TierFuzzy    = "fuzzy"

	ExactScore    = 1.0
	ContainsScore = 0.9
)

// Strategy scores two normalized strings. It returns false when it does not
// apply to the pair, letting the next strategy decide.
type Strategy interface {
	Name() string
	Score(a, b string) (float64, bool)
}

type Match struct {
	Score float64
	Tier  string
}

type Scorer struct {
	strategies []Strategy
}

// New builds a scorer from ranked strategies. Without strategies it uses the
// default exact, contains, Ratcliff/Obershelp chain.
func New(strategies ...Strategy) *Scorer {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &Scorer{strategies: strategies}
}

func DefaultStrategies() []Strategy {
	return []Strategy{Exact{}, Contains{}, Fuzzy{Ratio: RatcliffObershelp}}
}

// ForAlgorithm returns the default chain with the named fuzzy ratio.
func ForAlgorithm(name string) (*Scorer, error) {
	ratio, err := RatioByName(name)
	if err != nil {
		return nil, err
	}
	return New(Exact{}, Contains{}, Fuzzy{Ratio: ratio}), nil
}

func (s *Scorer) Score(header, candidate string) float64 {
	return s.Evaluate(header, candidate).Score
}

func (s *Scorer) Evaluate(header, candidate string) Match {
	a := Normalize(header)
	b := Normalize(candidate)
	for _, strategy := range s.strategies {
		if score, ok := strategy.Score(a, b); ok {
			return Match{Score: clamp(score), Tier: strategy.Name()}
		}
	}
	return Match{Score: 0, Tier: TierFuzzy}
}

// Normalize trims and case-folds a string for comparison. Casers keep state,
// so each call gets its own.
func Normalize(value string) string {
	return cases.Fold().String(strings.TrimSpace(value))
}

type Exact struct{}

func (Exact) Name() string { return TierExact }

func (Exact) Score(a, b string) (float64, bool) {
	if a == b {
		return ExactScore, true
	}
	return 0, false
}

// Contains applies when one non-empty string contains the other.
type Contains struct{}

func (Contains) Name() string { return TierContains }

func (Contains) Score(a, b string) (float64, bool) {
	if a == "" || b == "" {
		return 0, false
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return ContainsScore, true
	}
	return 0, false
}

// Fuzzy always applies and delegates to a ratio function.
type Fuzzy struct {
	Ratio func(a, b string) float64
}

func (Fuzzy) Name() string { return TierFuzzy }

func (f Fuzzy) Score(a, b string) (float64, bool) {
	if a == "" || b == "" {
		if a == b {
			return 1, true
		}
		return 0, true
	}
	ratio := f.Ratio
	if ratio == nil {
		ratio = RatcliffObershelp
	}
	return ratio(a, b), true
}

func clamp(score float64) float64 {
	switch {
	case score != score:
		return 0
	case score < 0:
		return 0
	case score > 1:
		return 1
	default:
		return score
	}
}

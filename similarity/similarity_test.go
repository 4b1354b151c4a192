package similarity

import (
	"math"
	"strings"
	"testing"
)

func TestScore_ExactMatchIgnoresCaseAndWhitespace(t *testing.T) {
	t.Parallel()

	scorer := New()
	for _, value := range []string{"DATE_TIME", "  Batch Name ", "Straße", ""} {
		if got := scorer.Score(value, value); got != 1.0 {
			t.Errorf("score(%q, %q) = %v, want 1.0", value, value, got)
		}
	}
	if got := scorer.Score("  date_time", "DATE_TIME  "); got != 1.0 {
		t.Fatalf("expected normalized exact match, got %v", got)
	}
	if got := scorer.Evaluate("Quantity", "QUANTITY").Tier; got != TierExact {
		t.Fatalf("expected exact tier, got %s", got)
	}
}

func TestScore_SubstringTierIsSymmetric(t *testing.T) {
	t.Parallel()

	scorer := New()
	pairs := [][2]string{
		{"QUANTITY", "Batch Quantity"},
		{"data1", "DATA10"},
		{"Operator", "OPERATOR_NAME"},
	}
	for _, pair := range pairs {
		forward := scorer.Evaluate(pair[0], pair[1])
		backward := scorer.Evaluate(pair[1], pair[0])
		if forward.Score != ContainsScore || backward.Score != ContainsScore {
			t.Errorf("%v: expected %v both ways, got %v and %v", pair, ContainsScore, forward.Score, backward.Score)
		}
		if forward.Tier != TierContains {
			t.Errorf("%v: expected contains tier, got %s", pair, forward.Tier)
		}
	}
}

func TestScore_FuzzyMatchesDocumentedExample(t *testing.T) {
	t.Parallel()

	got := New().Evaluate("TEST_TYPE", "DATE_TIME")
	if got.Tier != TierFuzzy {
		t.Fatalf("expected fuzzy tier, got %s", got.Tier)
	}
	if math.Abs(got.Score-10.0/18.0) > 1e-12 {
		t.Fatalf("expected 0.5556, got %v", got.Score)
	}
}

func TestScore_EmptyStrings(t *testing.T) {
	t.Parallel()

	scorer := New()
	if got := scorer.Score("", "   "); got != 1.0 {
		t.Fatalf("expected empty vs blank to be exact, got %v", got)
	}
	if got := scorer.Score("", "QUANTITY"); got != 0 {
		t.Fatalf("expected empty vs non-empty to be 0, got %v", got)
	}
	if got := scorer.Score("QUANTITY", ""); got != 0 {
		t.Fatalf("expected non-empty vs empty to be 0, got %v", got)
	}
}

func TestScore_IsDeterministicAndBounded(t *testing.T) {
	t.Parallel()

	scorer := New()
	inputs := []string{"SR_NO", "Serial No.", "Operator Name", "DATA7", "Время", "x", strings.Repeat("ab", 150)}
	for _, a := range inputs {
		for _, b := range inputs {
			first := scorer.Score(a, b)
			for i := 0; i < 3; i++ {
				if again := scorer.Score(a, b); again != first {
					t.Fatalf("score(%q, %q) changed from %v to %v", a, b, first, again)
				}
			}
			if first < 0 || first > 1 {
				t.Fatalf("score(%q, %q) = %v out of range", a, b, first)
			}
		}
	}
}

func TestRatcliffObershelp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		want float64
	}{
		{a: "abcd", b: "bcde", want: 0.75},
		{a: "abc", b: "xyz", want: 0},
		{a: "", b: "", want: 1},
		{a: "test_type", b: "date_time", want: 10.0 / 18.0},
		{a: "quantity", b: "qty", want: 2 * 3.0 / 11.0},
	}
	for _, tt := range tests {
		if got := RatcliffObershelp(tt.a, tt.b); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("ratio(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestLevenshtein(t *testing.T) {
	t.Parallel()

	if got := Levenshtein("kitten", "sitting"); math.Abs(got-(1-3.0/7.0)) > 1e-12 {
		t.Fatalf("unexpected ratio %v", got)
	}
	if got := Levenshtein("", ""); got != 1 {
		t.Fatalf("expected 1 for empty strings, got %v", got)
	}

	scorer, err := ForAlgorithm(AlgorithmLevenshtein)
	if err != nil {
		t.Fatalf("build scorer: %v", err)
	}
	if got := scorer.Score("abc", "abd"); math.Abs(got-2.0/3.0) > 1e-12 {
		t.Fatalf("expected levenshtein fuzzy tier, got %v", got)
	}
}

func TestForAlgorithm_RejectsUnknown(t *testing.T) {
	t.Parallel()

	if _, err := ForAlgorithm("soundex"); err == nil {
		t.Fatalf("expected error for unknown algorithm")
	}
}

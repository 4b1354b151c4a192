package similarity

import (
	"fmt"
	"strings"
)

const (
	AlgorithmRatcliff    = "ratcliff"
	AlgorithmLevenshtein = "levenshtein"
)

func RatioByName(name string) (func(a, b string) float64, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", AlgorithmRatcliff:
		return RatcliffObershelp, nil
	case AlgorithmLevenshtein:
		return Levenshtein, nil
	default:
		return nil, fmt.Errorf("unsupported fuzzy algorithm %q (supported: %s, %s)", name, AlgorithmRatcliff, AlgorithmLevenshtein)
	}
}

// RatcliffObershelp returns 2*M/T where M is the number of characters in the
// matching blocks found by recursively taking the longest common substring
// and T is the combined length. Long inputs (200+ runes) ignore characters of
// b that occur in more than 1% of its positions when seeding matches.
func RatcliffObershelp(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	m := newMatcher(ra, rb)
	return 2 * float64(m.matchingCharacters()) / float64(total)
}

type matcher struct {
	a, b []rune
	b2j  map[rune][]int
}

func newMatcher(a, b []rune) *matcher {
	b2j := make(map[rune][]int, len(b))
	for j, r := range b {
		b2j[r] = append(b2j[r], j)
	}
	if n := len(b); n >= 200 {
		limit := n/100 + 1
		for r, positions := range b2j {
			if len(positions) > limit {
				delete(b2j, r)
			}
		}
	}
	return &matcher{a: a, b: b, b2j: b2j}
}

type span struct {
	alo, ahi, blo, bhi int
}

func (m *matcher) matchingCharacters() int {
	total := 0
	queue := []span{{0, len(m.a), 0, len(m.b)}}
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		i, j, k := m.longestMatch(s.alo, s.ahi, s.blo, s.bhi)
		if k == 0 {
			continue
		}
		total += k
		if s.alo < i && s.blo < j {
			queue = append(queue, span{s.alo, i, s.blo, j})
		}
		if i+k < s.ahi && j+k < s.bhi {
			queue = append(queue, span{i + k, s.ahi, j + k, s.bhi})
		}
	}
	return total
}

// longestMatch finds the longest block a[i:i+k] == b[j:j+k] inside the span,
// preferring the smallest i and then the smallest j.
func (m *matcher) longestMatch(alo, ahi, blo, bhi int) (int, int, int) {
	besti, bestj, bestsize := alo, blo, 0
	j2len := map[int]int{}
	for i := alo; i < ahi; i++ {
		next := map[int]int{}
		for _, j := range m.b2j[m.a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			next[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = next
	}

	// Characters dropped as too frequent can still extend a block.
	for besti > alo && bestj > blo && m.a[besti-1] == m.b[bestj-1] {
		besti, bestj, bestsize = besti-1, bestj-1, bestsize+1
	}
	for besti+bestsize < ahi && bestj+bestsize < bhi && m.a[besti+bestsize] == m.b[bestj+bestsize] {
		bestsize++
	}
	return besti, bestj, bestsize
}

// Levenshtein returns 1 - distance/max(len(a), len(b)) over runes.
func Levenshtein(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	longest := max(len(ra), len(rb))
	if longest == 0 {
		return 1
	}
	return 1 - float64(editDistance(ra, rb))/float64(longest)
}

func editDistance(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

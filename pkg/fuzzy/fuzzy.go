package fuzzy

import (
	"strings"
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
)

// Threshold is the minimum similarity a candidate must exceed in the
// approximate pass.
const Threshold = 0.6

type Kind int

const (
	None Kind = iota
	Fuzzy
	Contains
)

func (k Kind) String() string {
	switch k {
	case Contains:
		return "contains"
	case Fuzzy:
		return "fuzzy"
	default:
		return "none"
	}
}

type Match struct {
	Value string
	Index int
	Score float64
	Kind  Kind
}

// Resolve finds the best candidate for query. Containment wins over
// similarity; within a pass the earliest candidate wins ties.
func Resolve(query string, candidates []string) (Match, bool) {
	q := normalize(query)
	if q == "" {
		return Match{}, false
	}

	if i := ContainsIndex(q, candidates); i >= 0 {
		return Match{Value: candidates[i], Index: i, Score: 1, Kind: Contains}, true
	}

	return Closest(q, candidates)
}

// ContainsIndex returns the index of the first candidate containing query,
// or -1.
func ContainsIndex(query string, candidates []string) int {
	q := normalize(query)
	if q == "" {
		return -1
	}
	for i, c := range candidates {
		if strings.Contains(strings.ToLower(c), q) {
			return i
		}
	}
	return -1
}

// Closest runs only the approximate pass.
func Closest(query string, candidates []string) (Match, bool) {
	q := normalize(query)
	if q == "" {
		return Match{}, false
	}

	best := Match{Index: -1}
	for i, c := range candidates {
		score := Ratio(q, strings.ToLower(c))
		if score <= Threshold || score <= best.Score {
			continue
		}
		best = Match{Value: c, Index: i, Score: score, Kind: Fuzzy}
	}

	if best.Index < 0 {
		return Match{}, false
	}
	return best, true
}

// Ratio is 2*M/T where M is the longest common subsequence length and T
// the total rune count of both strings.
func Ratio(a, b string) float64 {
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 {
		return 1
	}
	if a == b {
		return 1
	}
	return 2 * float64(edlib.LCS(a, b)) / float64(total)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

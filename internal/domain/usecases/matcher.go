// Package usecases - matcher.go finds the known question closest to an input.
package usecases

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// DefaultCutoff is the minimum similarity a candidate needs to match.
const DefaultCutoff = 0.6

// Matcher scores candidates with a longest-matching-blocks ratio.
// Comparison is case-insensitive; the stored candidate is returned unchanged.
type Matcher struct {
	cutoff float64
}

// NewMatcher creates a Matcher. A cutoff outside (0, 1] falls back to
// DefaultCutoff.
func NewMatcher(cutoff float64) *Matcher {
	if cutoff <= 0 || cutoff > 1 {
		cutoff = DefaultCutoff
	}
	return &Matcher{cutoff: cutoff}
}

// FindBestMatch returns the candidate with the highest similarity to input
// that meets the cutoff. Ties go to the earliest candidate.
func (m *Matcher) FindBestMatch(input string, candidates []string) (string, bool) {
	// The input is the second sequence: it is indexed once, and when it is
	// 200 runes or longer its most frequent runes are treated as junk.
	sm := difflib.NewMatcher(nil, runeSeq(input))

	best, bestScore, found := "", 0.0, false
	for _, candidate := range candidates {
		sm.SetSeq1(runeSeq(candidate))

		// Both quick ratios are upper bounds of the real one.
		if sm.RealQuickRatio() < m.cutoff || sm.QuickRatio() < m.cutoff {
			continue
		}
		score := sm.Ratio()
		if score < m.cutoff {
			continue
		}
		if !found || score > bestScore {
			best, bestScore, found = candidate, score, true
		}
	}
	return best, found
}

// similarity returns 2*M/T where M is the number of runes in the matching
// blocks of a and b and T is the total rune count.
func similarity(a, b string) float64 {
	return difflib.NewMatcher(runeSeq(a), runeSeq(b)).Ratio()
}

// runeSeq splits the case-folded s into one element per rune.
func runeSeq(s string) []string {
	runes := []rune(strings.ToLower(s))
	seq := make([]string, len(runes))
	for i, r := range runes {
		seq[i] = string(r)
	}
	return seq
}

package usecases

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatcher_ExactCandidateWins(t *testing.T) {
	m := NewMatcher(DefaultCutoff)

	match, ok := m.FindBestMatch("what is 2+2", []string{"what is 2+2", "what is 3+3"})

	assert.True(t, ok)
	assert.Equal(t, "what is 2+2", match)
}

func TestMatcher_BelowCutoff(t *testing.T) {
	m := NewMatcher(DefaultCutoff)

	_, ok := m.FindBestMatch("asdkjasd", []string{"what is 2+2"})

	assert.False(t, ok)
}

func TestMatcher_NoCandidates(t *testing.T) {
	_, ok := NewMatcher(DefaultCutoff).FindBestMatch("hello", nil)
	assert.False(t, ok)
}

func TestMatcher_CaseInsensitiveReturnsStoredForm(t *testing.T) {
	m := NewMatcher(DefaultCutoff)

	match, ok := m.FindBestMatch("who painted the mona lisa", []string{"Who painted the Mona Lisa"})

	assert.True(t, ok)
	assert.Equal(t, "Who painted the Mona Lisa", match)
}

func TestMatcher_TieGoesToFirstCandidate(t *testing.T) {
	m := NewMatcher(DefaultCutoff)

	match, ok := m.FindBestMatch("abcd", []string{"abcx", "abcy"})

	assert.True(t, ok)
	assert.Equal(t, "abcx", match)
}

func TestMatcher_HighestScoreWins(t *testing.T) {
	m := NewMatcher(DefaultCutoff)

	match, ok := m.FindBestMatch("how tall is mount everest", []string{
		"how tall is the eiffel tower",
		"how tall is mount everest?",
		"how old is mount everest",
	})

	assert.True(t, ok)
	assert.Equal(t, "how tall is mount everest?", match)
}

func TestMatcher_InvalidCutoffFallsBackToDefault(t *testing.T) {
	assert.Equal(t, DefaultCutoff, NewMatcher(0).cutoff)
	assert.Equal(t, DefaultCutoff, NewMatcher(1.5).cutoff)
	assert.Equal(t, 0.8, NewMatcher(0.8).cutoff)
}

func TestMatcher_KnownRatios(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"abcd", "bcde", 0.75},
		{"abcd", "abcd", 1},
		{"", "", 1},
		{"abc", "", 0},
		{"abc", "xyz", 0},
		{"ABCD", "bcde", 0.75},
		{"what is your name?", "what is your name", 2 * 17.0 / 35},
		// A later shorter block is found after the longest one.
		{"qabxcd", "abycdf", 2 * 4.0 / 12},
	}
	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			assert.InDelta(t, tt.want, similarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestMatcher_LongInputsTreatPopularRunesAsJunk(t *testing.T) {
	// With 200+ runes a rune occurring more than n/100+1 times cannot seed a
	// match. It only extends an empty match sitting at the span start.
	long := strings.Repeat("a", 250)
	assert.Equal(t, 1.0, similarity(long, long))
	assert.Equal(t, 0.0, similarity("q"+long, long))

	// The same rule applied through FindBestMatch: the popular rune cannot
	// seed a match, so nothing clears the cutoff.
	_, ok := NewMatcher(DefaultCutoff).FindBestMatch(long, []string{"q" + long})
	assert.False(t, ok)
}

func TestMatcher_CandidateIsFirstSequence(t *testing.T) {
	// The ratio is not symmetric; the candidate is the first sequence and the
	// input the second.
	assert.InDelta(t, 0.5, similarity("abab", "baab"), 1e-9)
	assert.InDelta(t, 0.75, similarity("baab", "abab"), 1e-9)

	// "abab" only clears a 0.6 cutoff as the input.
	m := NewMatcher(DefaultCutoff)
	_, ok := m.FindBestMatch("baab", []string{"abab"})
	assert.False(t, ok)
	match, ok := m.FindBestMatch("abab", []string{"baab"})
	assert.True(t, ok)
	assert.Equal(t, "baab", match)
}

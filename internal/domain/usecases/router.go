// Package usecases - router.go classifies utterances into intents.
package usecases

import (
	"strings"
	"unicode"

	"github.com/0xcro3dile/eley-go/internal/domain/entities"
)

// IntentRouter classifies utterances. It holds no state besides its
// vocabulary.
type IntentRouter struct {
	vocab entities.Vocabulary
}

// NewIntentRouter creates a router over vocab.
func NewIntentRouter(vocab entities.Vocabulary) *IntentRouter {
	return &IntentRouter{vocab: vocab}
}

// Classify returns the intent of raw. Rules are checked in a fixed
// priority order and the first match wins.
func (r *IntentRouter) Classify(raw string) entities.Intent {
	input := strings.ToLower(strings.TrimSpace(raw))
	words := tokenize(input)

	if r.vocab.QuitWord != "" && input == strings.ToLower(r.vocab.QuitWord) {
		return entities.Intent{Kind: entities.IntentQuit}
	}
	if containsAnyPhrase(words, r.vocab.GratitudePhrases) {
		return entities.Intent{Kind: entities.IntentThanks}
	}
	if containsAnyPhrase(words, r.vocab.OffensiveTerms) {
		return entities.Intent{Kind: entities.IntentOffensive}
	}
	for _, e := range r.vocab.Emotions {
		if containsAnyPhrase(words, e.Keywords) {
			return entities.Intent{Kind: entities.IntentEmotion, Emotion: e.Label}
		}
	}
	for _, trigger := range r.vocab.SearchTriggers {
		if query, ok := searchRemainder(strings.TrimSpace(raw), words, trigger); ok {
			return entities.Intent{Kind: entities.IntentSearch, Query: query}
		}
	}
	if containsAnyPhrase(words, r.vocab.JokeKeywords) {
		return entities.Intent{Kind: entities.IntentJoke}
	}
	if containsAnyPhrase(words, r.vocab.DeviceOnPhrases) {
		return entities.Intent{Kind: entities.IntentDevice, Command: entities.DeviceOn}
	}
	if containsAnyPhrase(words, r.vocab.DeviceOffPhrases) {
		return entities.Intent{Kind: entities.IntentDevice, Command: entities.DeviceOff}
	}
	return entities.Intent{Kind: entities.IntentQuestion, Text: strings.TrimSpace(raw)}
}

// searchRemainder reports whether text starts with the trigger as whole
// words and returns the rest of text, with its original casing.
func searchRemainder(text string, words []string, trigger string) (string, bool) {
	trigger = strings.ToLower(strings.TrimSpace(trigger))
	tw := tokenize(trigger)
	if len(tw) == 0 || len(tw) > len(words) || len(text) < len(trigger) || !strings.EqualFold(text[:len(trigger)], trigger) {
		return "", false
	}
	for i, w := range tw {
		if words[i] != w {
			return "", false
		}
	}
	rest := text[len(trigger):]
	return strings.TrimSpace(strings.TrimLeft(rest, " ,:;-")), true
}

// tokenize splits s into lower-case words, dropping punctuation.
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '\''
	})
}

// containsAnyPhrase reports whether any phrase occurs in words as a run of
// whole words.
func containsAnyPhrase(words []string, phrases []string) bool {
	for _, p := range phrases {
		if containsPhrase(words, tokenize(p)) {
			return true
		}
	}
	return false
}

func containsPhrase(words, phrase []string) bool {
	if len(phrase) == 0 || len(phrase) > len(words) {
		return false
	}
outer:
	for i := 0; i+len(phrase) <= len(words); i++ {
		for k, w := range phrase {
			if words[i+k] != w {
				continue outer
			}
		}
		return true
	}
	return false
}

// Package vocabulary loads the small-talk word lists and phrasebook from YAML
// and keeps them current while the assistant runs.
package vocabulary

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/0xcro3dile/eley-go/internal/domain/entities"
)

//go:embed default.yaml
var defaultYAML []byte

// Default returns the built-in vocabulary.
func Default() entities.Vocabulary {
	var v entities.Vocabulary
	if err := yaml.Unmarshal(defaultYAML, &v); err != nil {
		panic(fmt.Sprintf("vocabulary: built-in default is invalid: %v", err))
	}
	return v
}

// DefaultYAML returns the built-in vocabulary document, for users who want
// a starting point to edit.
func DefaultYAML() []byte {
	return bytes.Clone(defaultYAML)
}

// Load reads the vocabulary at path. Keys missing from the file keep their
// built-in values. An empty path returns Default.
func Load(path string) (entities.Vocabulary, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return entities.Vocabulary{}, fmt.Errorf("reading vocabulary: %w", err)
	}
	v, err := Parse(data)
	if err != nil {
		return entities.Vocabulary{}, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// Parse decodes a vocabulary document over the built-in defaults. Unknown
// keys are rejected so typos do not silently disable a rule.
func Parse(data []byte) (entities.Vocabulary, error) {
	v := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&v); err != nil && !errors.Is(err, io.EOF) {
		return entities.Vocabulary{}, fmt.Errorf("%w: %v", entities.ErrMalformedDocument, err)
	}
	if err := Validate(v); err != nil {
		return entities.Vocabulary{}, err
	}
	return v, nil
}

// Validate checks that every reply the assistant may need is present.
func Validate(v entities.Vocabulary) error {
	var problems []string
	if strings.TrimSpace(v.QuitWord) == "" {
		problems = append(problems, "quit_word is empty")
	}
	for _, e := range v.Emotions {
		if strings.TrimSpace(e.Label) == "" {
			problems = append(problems, "emotion without a label")
		}
	}
	r := v.Responses
	if len(r.Goodbye) == 0 {
		problems = append(problems, "responses.goodbye is empty")
	}
	if len(r.Confused) == 0 && r.NoAnswer == "" {
		problems = append(problems, "responses.confused and responses.no_answer are both empty")
	}
	if r.QuotaExceeded == "" {
		problems = append(problems, "responses.quota_exceeded is empty")
	}
	if len(v.JokeKeywords) > 0 && len(v.Jokes) == 0 {
		problems = append(problems, "joke_keywords set but jokes is empty")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid vocabulary: %s", strings.Join(problems, "; "))
	}
	return nil
}

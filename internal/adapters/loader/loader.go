// Package loader provides fact loading adapters for bulk import.
package loader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/0xcro3dile/eley-go/internal/domain/entities"
	"github.com/0xcro3dile/eley-go/internal/domain/ports"
)

// JSONLoader loads facts from a knowledge base document
// ({"questions": [...]}) or a bare JSON array of facts.
type JSONLoader struct{}

// NewJSONLoader creates a new JSON fact loader.
func NewJSONLoader() *JSONLoader {
	return &JSONLoader{}
}

// Load reads the facts in path.
func (l *JSONLoader) Load(ctx context.Context, path string) ([]entities.Fact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var facts []entities.Fact
		if err := json.Unmarshal(trimmed, &facts); err != nil {
			return nil, malformed(path, err)
		}
		return facts, nil
	}

	var kb entities.KnowledgeBase
	if err := json.Unmarshal(trimmed, &kb); err != nil {
		return nil, malformed(path, err)
	}
	return kb.Questions, nil
}

// SupportedExtensions returns file extensions this loader handles.
func (l *JSONLoader) SupportedExtensions() []string {
	return []string{".json"}
}

// YAMLLoader loads facts from a YAML list, or a mapping with a "questions"
// list.
type YAMLLoader struct{}

// NewYAMLLoader creates a new YAML fact loader.
func NewYAMLLoader() *YAMLLoader {
	return &YAMLLoader{}
}

// Load reads the facts in path.
func (l *YAMLLoader) Load(ctx context.Context, path string) ([]entities.Fact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, malformed(path, err)
	}
	if len(node.Content) == 0 {
		return nil, nil
	}

	root := node.Content[0]
	if root.Kind == yaml.MappingNode {
		var doc struct {
			Questions []entities.Fact `yaml:"questions"`
		}
		if err := root.Decode(&doc); err != nil {
			return nil, malformed(path, err)
		}
		return doc.Questions, nil
	}

	var facts []entities.Fact
	if err := root.Decode(&facts); err != nil {
		return nil, malformed(path, err)
	}
	return facts, nil
}

// SupportedExtensions returns file extensions.
func (l *YAMLLoader) SupportedExtensions() []string {
	return []string{".yaml", ".yml"}
}

// MultiLoader combines multiple loaders.
type MultiLoader struct {
	loaders map[string]ports.FactLoader
}

// NewMultiLoader creates a loader that handles every supported file type.
func NewMultiLoader() *MultiLoader {
	m := &MultiLoader{loaders: make(map[string]ports.FactLoader)}
	for _, l := range []ports.FactLoader{NewJSONLoader(), NewYAMLLoader()} {
		for _, ext := range l.SupportedExtensions() {
			m.loaders[ext] = l
		}
	}
	return m
}

// Load dispatches to the appropriate loader based on extension.
func (m *MultiLoader) Load(ctx context.Context, path string) ([]entities.Fact, error) {
	ext := strings.ToLower(filepath.Ext(path))
	loader, ok := m.loaders[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported file type %q (want one of %s)", ext, strings.Join(m.SupportedExtensions(), ", "))
	}
	return loader.Load(ctx, path)
}

// SupportedExtensions returns all supported extensions, sorted.
func (m *MultiLoader) SupportedExtensions() []string {
	exts := make([]string, 0, len(m.loaders))
	for ext := range m.loaders {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

func malformed(path string, err error) error {
	return fmt.Errorf("%w: %s: %v", entities.ErrMalformedDocument, path, err)
}

package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/0xcro3dile/eley-go/internal/domain/entities"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	return path
}

func TestJSONLoader_KnowledgeDocument(t *testing.T) {
	path := writeFile(t, "kb.json", `{"questions": [
		{"question": "who are you", "answer": "I am ELEY."},
		{"question": "what is 2+2", "answer": "4"}
	]}`)

	facts, err := NewJSONLoader().Load(context.Background(), path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(facts) != 2 {
		t.Fatalf("expected 2 facts, got %d", len(facts))
	}
	if facts[0].Question != "who are you" || facts[1].Answer != "4" {
		t.Errorf("unexpected facts: %+v", facts)
	}
}

func TestJSONLoader_BareArray(t *testing.T) {
	path := writeFile(t, "facts.json", `  [{"question": "q", "answer": "a"}]`)

	facts, err := NewJSONLoader().Load(context.Background(), path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(facts) != 1 || facts[0].Answer != "a" {
		t.Errorf("unexpected facts: %+v", facts)
	}
}

func TestJSONLoader_Malformed(t *testing.T) {
	path := writeFile(t, "bad.json", `{"questions": [}`)

	_, err := NewJSONLoader().Load(context.Background(), path)
	if !errors.Is(err, entities.ErrMalformedDocument) {
		t.Errorf("expected malformed document error, got %v", err)
	}
}

func TestYAMLLoader_List(t *testing.T) {
	path := writeFile(t, "facts.yaml", `
- question: what is the capital of france
  answer: Paris
- question: who wrote hamlet
  answer: Shakespeare
`)

	facts, err := NewYAMLLoader().Load(context.Background(), path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(facts) != 2 || facts[1].Answer != "Shakespeare" {
		t.Errorf("unexpected facts: %+v", facts)
	}
}

func TestYAMLLoader_QuestionsMapping(t *testing.T) {
	path := writeFile(t, "facts.yml", "questions:\n  - question: q\n    answer: a\n")

	facts, err := NewYAMLLoader().Load(context.Background(), path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(facts) != 1 || facts[0].Question != "q" {
		t.Errorf("unexpected facts: %+v", facts)
	}
}

func TestYAMLLoader_EmptyFile(t *testing.T) {
	path := writeFile(t, "empty.yaml", "")

	facts, err := NewYAMLLoader().Load(context.Background(), path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(facts) != 0 {
		t.Errorf("expected no facts, got %d", len(facts))
	}
}

func TestYAMLLoader_Malformed(t *testing.T) {
	path := writeFile(t, "bad.yaml", "- question: [unclosed\n")

	_, err := NewYAMLLoader().Load(context.Background(), path)
	if !errors.Is(err, entities.ErrMalformedDocument) {
		t.Errorf("expected malformed document error, got %v", err)
	}
}

func TestMultiLoader_DispatchByExtension(t *testing.T) {
	jsonPath := writeFile(t, "facts.JSON", `[{"question": "j", "answer": "1"}]`)
	yamlPath := writeFile(t, "facts.yml", "- question: y\n  answer: \"2\"\n")

	m := NewMultiLoader()
	ctx := context.Background()

	facts, err := m.Load(ctx, jsonPath)
	if err != nil || len(facts) != 1 || facts[0].Question != "j" {
		t.Errorf("json dispatch failed: %+v %v", facts, err)
	}
	facts, err = m.Load(ctx, yamlPath)
	if err != nil || len(facts) != 1 || facts[0].Answer != "2" {
		t.Errorf("yaml dispatch failed: %+v %v", facts, err)
	}
}

func TestMultiLoader_UnsupportedExtension(t *testing.T) {
	path := writeFile(t, "notes.txt", "hello")

	if _, err := NewMultiLoader().Load(context.Background(), path); err == nil {
		t.Error("expected error for .txt")
	}
}

func TestMultiLoader_SupportedExtensions(t *testing.T) {
	exts := NewMultiLoader().SupportedExtensions()
	want := []string{".json", ".yaml", ".yml"}
	if len(exts) != len(want) {
		t.Fatalf("expected %v, got %v", want, exts)
	}
	for i := range want {
		if exts[i] != want[i] {
			t.Errorf("expected %v, got %v", want, exts)
		}
	}
}

func TestMultiLoader_MissingFile(t *testing.T) {
	_, err := NewMultiLoader().Load(context.Background(), filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

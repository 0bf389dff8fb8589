package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(bytes.NewReader(nil))
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute(), out.String())
	return out.String()
}

func TestCLI_KnowledgeCommands(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "eley.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(`
storage:
  backend: json
  knowledge_path: `+filepath.Join(dir, "kb.json")+`
  quota_path: `+filepath.Join(dir, "quota.json")+`
fallback:
  provider: none
log:
  level: error
`), 0o644))

	factsFile := filepath.Join(dir, "facts.yaml")
	require.NoError(t, os.WriteFile(factsFile, []byte(`
- question: what is the capital of france
  answer: Paris
- question: ""
  answer: skipped
`), 0o644))

	assert.Equal(t, "eley dev\n", run(t, "version"))

	assert.Equal(t, "Learned: Who are you\n", run(t, "--config", configFile, "teach", "Who are you", "I am ELEY."))
	assert.Equal(t, "ELEY: I am ELEY.\n", run(t, "--config", configFile, "ask", "who", "are", "you"))

	assert.Equal(t, factsFile+": 1 added, 1 skipped\n", run(t, "--config", configFile, "import", factsFile))

	out := run(t, "--config", configFile, "facts", "--json")
	assert.Contains(t, out, `"question": "who are you"`)
	assert.Contains(t, out, `"answer": "Paris"`)

	assert.Equal(t, "Fallback queries: 0 of 100 used, 100 remaining\n", run(t, "--config", configFile, "quota"))

	data, err := os.ReadFile(filepath.Join(dir, "kb.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "what is the capital of france")
}

func TestCLI_ChatSession(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "eley.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(`
storage:
  backend: memory
fallback:
  provider: none
log:
  level: error
`), 0o644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(bytes.NewBufferString("tell me a joke\nquit\nthis line is never read\n"))
	rootCmd.SetArgs([]string{"--config", configFile, "chat"})

	require.NoError(t, rootCmd.Execute())

	transcript := out.String()
	assert.Equal(t, 2, bytes.Count(out.Bytes(), []byte("ELEY: ")))
	assert.Contains(t, transcript, "You: ")
}

func TestCLI_VocabularyDump(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "eley.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("fallback:\n  provider: none\n"), 0o644))

	out := run(t, "--config", configFile, "vocabulary")

	assert.Contains(t, out, "quit_word: quit")
}

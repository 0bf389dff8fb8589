// Package fallback provides the adapters implementing ports.FallbackService.
package fallback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OllamaService answers questions with a local Ollama model.
type OllamaService struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewOllamaService creates a new Ollama fallback adapter.
func NewOllamaService(baseURL, model string, timeout time.Duration) *OllamaService {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3.2"
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &OllamaService{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

// Name identifies the provider in errors and logs.
func (s *OllamaService) Name() string { return "ollama" }

// ollamaGenerateRequest is the Ollama generate API request.
type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// ollamaGenerateResponse is the Ollama generate API response.
type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Query asks the model for a short factual answer.
func (s *OllamaService) Query(ctx context.Context, question string) (string, error) {
	reqBody := ollamaGenerateRequest{
		Model:  s.model,
		Prompt: buildPrompt(question),
		Stream: false,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/generate", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", serviceError(s.Name(), transportError("calling Ollama", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", serviceError(s.Name(), &StatusError{Code: resp.StatusCode, Message: parseErrorBody(resp.StatusCode, body)})
	}

	var genResp ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", serviceError(s.Name(), fmt.Errorf("decoding response: %w", err))
	}

	return strings.TrimSpace(genResp.Response), nil
}

// buildPrompt asks for the answer alone so it reads well when spoken.
func buildPrompt(question string) string {
	var sb strings.Builder
	sb.WriteString("You are a concise assistant. Answer the question in one or two sentences. ")
	sb.WriteString("If you do not know the answer, reply with nothing.\n\nQuestion: ")
	sb.WriteString(question)
	sb.WriteString("\n\nAnswer:")
	return sb.String()
}

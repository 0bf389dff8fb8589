package fallback

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/0xcro3dile/eley-go/internal/domain/entities"
)

func TestOllamaService_Query(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req ollamaGenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if req.Model != "test-model" || req.Stream {
			t.Errorf("unexpected request: %+v", req)
		}
		if !strings.Contains(req.Prompt, "capital of france") {
			t.Errorf("question missing from prompt: %q", req.Prompt)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"response": "  Paris.\n",
			"done":     true,
		})
	}))
	defer server.Close()

	svc := NewOllamaService(server.URL, "test-model", 0)
	answer, err := svc.Query(context.Background(), "capital of france")

	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if answer != "Paris." {
		t.Errorf("unexpected answer: %q", answer)
	}
}

func TestOllamaService_EmptyResponseIsNoResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":"   ","done":true}`))
	}))
	defer server.Close()

	answer, err := NewOllamaService(server.URL, "m", 0).Query(context.Background(), "q")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if answer != "" {
		t.Errorf("expected empty answer, got %q", answer)
	}
}

func TestOllamaService_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"model \"m\" not found"}`))
	}))
	defer server.Close()

	_, err := NewOllamaService(server.URL, "m", 0).Query(context.Background(), "q")

	var fse *entities.FallbackServiceError
	if !errors.As(err, &fse) {
		t.Fatalf("expected FallbackServiceError, got %v", err)
	}
	if fse.Provider != "ollama" {
		t.Errorf("unexpected provider: %s", fse.Provider)
	}
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusNotFound {
		t.Fatalf("expected 404 StatusError, got %v", err)
	}
	if se.Message != `model "m" not found` {
		t.Errorf("unexpected message: %q", se.Message)
	}
	if se.Temporary() {
		t.Error("404 should not be temporary")
	}
}

func TestOllamaService_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewOllamaService(url, "m", 0).Query(context.Background(), "q")

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("expected friendly message, got %q", err.Error())
	}
}

func TestOllamaService_DefaultValues(t *testing.T) {
	svc := NewOllamaService("", "", 0)
	if svc.baseURL != "http://localhost:11434" {
		t.Error("should default to localhost")
	}
	if svc.model != "llama3.2" {
		t.Errorf("unexpected default model: %s", svc.model)
	}
	if svc.client.Timeout <= 0 {
		t.Error("should set a client timeout")
	}
}

func TestParseErrorBody(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"string error", 400, `{"error":"bad input"}`, "bad input"},
		{"object error", 400, `{"error":{"message":"nested"}}`, "nested"},
		{"msg field", 400, `{"msg":"plain msg"}`, "plain msg"},
		{"unauthorized", 401, ``, "authentication failed, check your app id"},
		{"rate limited", 429, `not json`, "rate limited, too many requests, please wait"},
		{"raw body", 418, `teapot`, "teapot"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseErrorBody(tt.status, []byte(tt.body)); got != tt.want {
				t.Errorf("parseErrorBody() = %q, want %q", got, tt.want)
			}
		})
	}
}

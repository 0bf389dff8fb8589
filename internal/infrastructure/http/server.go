// Package http serves the assistant over a small JSON API and a chat page.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/0xcro3dile/eley-go/internal/domain/entities"
	"github.com/0xcro3dile/eley-go/internal/domain/usecases"
)

// Server is the HTTP server for the assistant API and UI.
type Server struct {
	assistant *usecases.Assistant
	resolver  *usecases.AnswerResolver
	logger    *zap.Logger
	addr      string
}

// NewServer creates a new HTTP server.
func NewServer(assistant *usecases.Assistant, resolver *usecases.AnswerResolver, addr string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{assistant: assistant, resolver: resolver, logger: logger, addr: addr}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)

	mux.HandleFunc("POST /api/ask", s.handleAsk)
	mux.HandleFunc("GET /api/facts", s.handleListFacts)
	mux.HandleFunc("POST /api/facts", s.handleTeach)
	mux.HandleFunc("GET /api/quota", s.handleQuota)
	mux.HandleFunc("GET /api/health", s.handleHealth)

	return corsMiddleware(requestIDMiddleware(s.loggingMiddleware(mux)))
}

// Start runs the HTTP server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      2 * time.Minute, // fallback queries can be slow
	}

	s.logger.Info("ELEY server starting", zap.String("addr", s.addr))

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type askResponse struct {
	Reply   string `json:"reply"`
	Intent  string `json:"intent"`
	Outcome string `json:"outcome,omitempty"`
	Source  string `json:"source,omitempty"`
	Done    bool   `json:"done,omitempty"`
}

// handleAsk answers one utterance. It accepts JSON {"query": ...} or a
// form field named query.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var query string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req struct {
			Query string `json:"query"`
		}
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		query = req.Query
	} else {
		query = r.FormValue("query")
	}

	if strings.TrimSpace(query) == "" {
		writeError(w, http.StatusBadRequest, "query required")
		return
	}

	reply := s.assistant.Respond(r.Context(), query)
	resp := askResponse{
		Reply:  reply.Text,
		Intent: reply.Intent.Kind.String(),
		Done:   reply.Done,
	}
	if reply.Outcome != nil {
		resp.Outcome = reply.Outcome.Kind.String()
		if reply.Outcome.Kind == entities.OutcomeAnswered {
			resp.Source = reply.Outcome.Source.String()
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListFacts(w http.ResponseWriter, r *http.Request) {
	facts := s.resolver.Facts()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"questions": facts,
		"count":     len(facts),
	})
}

func (s *Server) handleTeach(w http.ResponseWriter, r *http.Request) {
	var fact entities.Fact
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&fact); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	err := s.resolver.Teach(r.Context(), fact.Question, fact.Answer)
	switch {
	case errors.Is(err, usecases.ErrIncompleteFact):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.logger.Error("teach failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not save the fact")
		return
	}

	writeJSON(w, http.StatusCreated, entities.Fact{
		Question: entities.NormalizeQuestion(fact.Question),
		Answer:   strings.TrimSpace(fact.Answer),
	})
}

func (s *Server) handleQuota(w http.ResponseWriter, r *http.Request) {
	count, limit := s.resolver.Quota()
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"query_count": count,
		"limit":       limit,
		"remaining":   remaining,
	})
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleIndex renders the chat page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(indexHTML))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type ctxKey struct{}

// RequestID returns the request id set by the middleware, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", RequestID(r.Context())),
		)
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		if r.Method == http.MethodOptions {
			return
		}
		next.ServeHTTP(w, r)
	})
}

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>ELEY</title>
    <style>
        body { font-family: sans-serif; max-width: 40rem; margin: 2rem auto; padding: 0 1rem; }
        #messages { min-height: 10rem; }
        .message { margin: .5rem 0; padding: .5rem .75rem; border-radius: .5rem; }
        .user { background: #e8eefc; text-align: right; }
        .assistant { background: #f1f1f1; }
        .error { color: #b00020; }
        form { display: flex; gap: .5rem; }
        input { flex: 1; padding: .5rem; }
    </style>
</head>
<body>
    <header>
        <h1>ELEY</h1>
        <p>Ask a question, ask for a joke, or teach me something new.</p>
    </header>
    <main>
        <div id="messages"></div>
        <form id="query-form" onsubmit="sendQuery(event)">
            <input type="text" id="query-input" placeholder="Ask me anything..." autocomplete="off" required>
            <button type="submit">Send</button>
        </form>
    </main>
    <script>
        async function sendQuery(e) {
            e.preventDefault();
            const input = document.getElementById('query-input');
            const query = input.value.trim();
            if (!query) return;
            input.value = '';
            addMessage('user', query);
            try {
                const resp = await fetch('/api/ask', {
                    method: 'POST',
                    headers: {'Content-Type': 'application/json'},
                    body: JSON.stringify({query: query})
                });
                const data = await resp.json();
                if (data.error) {
                    addMessage('assistant error', data.error);
                } else {
                    addMessage('assistant', data.reply);
                }
            } catch (err) {
                addMessage('assistant error', 'Connection error');
            }
        }

        function addMessage(cls, text) {
            const div = document.createElement('div');
            div.className = 'message ' + cls;
            div.textContent = text;
            document.getElementById('messages').appendChild(div);
        }
    </script>
</body>
</html>`

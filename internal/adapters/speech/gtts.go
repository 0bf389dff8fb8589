package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// maxChunkRunes is the longest text the translate TTS endpoint accepts.
const maxChunkRunes = 100

// GTTSService implements ports.SpeechOutput with Google Translate's
// text-to-speech endpoint. Each chunk comes back as MP3 frames, which are
// concatenated into one file.
type GTTSService struct {
	baseURL string
	lang    string
	dir     string
	client  *http.Client

	mu   sync.Mutex
	last string
}

// NewGTTSService creates a synthesizer writing files under dir.
func NewGTTSService(baseURL, lang, dir string, timeout time.Duration) *GTTSService {
	if baseURL == "" {
		baseURL = "https://translate.google.com"
	}
	if lang == "" {
		lang = "en"
	}
	if dir == "" {
		dir = os.TempDir()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GTTSService{
		baseURL: strings.TrimRight(baseURL, "/"),
		lang:    lang,
		dir:     dir,
		client:  &http.Client{Timeout: timeout},
	}
}

// Synthesize renders text to an MP3 file and returns its path. The file
// from the previous call is removed.
func (s *GTTSService) Synthesize(ctx context.Context, text string) (string, error) {
	chunks := chunkText(text, maxChunkRunes)
	if len(chunks) == 0 {
		return "", errors.New("nothing to synthesize")
	}

	var audio bytes.Buffer
	for i, chunk := range chunks {
		if err := s.fetch(ctx, &audio, chunk, i, len(chunks)); err != nil {
			return "", err
		}
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating audio directory: %w", err)
	}
	path := filepath.Join(s.dir, "eley-"+uuid.NewString()+".mp3")
	if err := os.WriteFile(path, audio.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("writing audio: %w", err)
	}

	s.mu.Lock()
	prev := s.last
	s.last = path
	s.mu.Unlock()
	if prev != "" {
		os.Remove(prev)
	}
	return path, nil
}

func (s *GTTSService) fetch(ctx context.Context, w io.Writer, chunk string, idx, total int) error {
	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("client", "tw-ob")
	params.Set("tl", s.lang)
	params.Set("q", chunk)
	params.Set("total", strconv.Itoa(total))
	params.Set("idx", strconv.Itoa(idx))
	params.Set("textlen", strconv.Itoa(utf8.RuneCountInString(chunk)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/translate_tts?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling text-to-speech: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("text-to-speech: status %d", resp.StatusCode)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("reading audio: %w", err)
	}
	return nil
}

// chunkText splits text into pieces of at most limit runes, breaking at
// spaces where possible. A word longer than limit is split mid-word.
func chunkText(text string, limit int) []string {
	words := strings.Fields(text)
	var chunks []string
	var current []rune

	flush := func() {
		if len(current) > 0 {
			chunks = append(chunks, string(current))
			current = current[:0]
		}
	}

	for _, word := range words {
		w := []rune(word)
		for len(w) > limit {
			flush()
			chunks = append(chunks, string(w[:limit]))
			w = w[limit:]
		}
		switch {
		case len(current) == 0:
			current = append(current, w...)
		case len(current)+1+len(w) <= limit:
			current = append(current, ' ')
			current = append(current, w...)
		default:
			flush()
			current = append(current, w...)
		}
	}
	flush()
	return chunks
}

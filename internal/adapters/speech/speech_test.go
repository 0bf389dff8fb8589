package speech

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleInput_LowerCasesAndEnds(t *testing.T) {
	var prompt strings.Builder
	in := NewConsoleInput(strings.NewReader("  What Is 2+2 \n\nQUIT"), &prompt)
	ctx := context.Background()

	var got []string
	for {
		line, err := in.Listen(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		got = append(got, line)
	}

	assert.Equal(t, []string{"what is 2+2", "", "quit"}, got)
	assert.Equal(t, 4, strings.Count(prompt.String(), "You: "))
}

func TestConsoleInput_Cancel(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	in := NewConsoleInput(r, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := in.Listen(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestChunkText(t *testing.T) {
	long := strings.Repeat("word ", 60)
	chunks := chunkText(long, 100)

	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 100)
		assert.False(t, strings.HasPrefix(c, " ") || strings.HasSuffix(c, " "))
	}
	assert.Equal(t, strings.Fields(long), strings.Fields(strings.Join(chunks, " ")))
}

func TestChunkText_SplitsLongWords(t *testing.T) {
	word := strings.Repeat("é", 250)

	chunks := chunkText("hi "+word+" there", 100)

	assert.Equal(t, []string{"hi", strings.Repeat("é", 100), strings.Repeat("é", 100), strings.Repeat("é", 50) + " there"}, chunks)
}

func TestChunkText_Empty(t *testing.T) {
	assert.Empty(t, chunkText(" \n\t ", 100))
}

func TestGTTSService_ConcatenatesChunks(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/translate_tts" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("tl") != "en" || q.Get("client") != "tw-ob" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		mu.Lock()
		seen = append(seen, q.Get("idx")+"/"+q.Get("total"))
		mu.Unlock()
		w.Write([]byte("[" + q.Get("idx") + "]"))
	}))
	defer server.Close()

	dir := t.TempDir()
	svc := NewGTTSService(server.URL, "", dir, 0)
	text := strings.Repeat("hello ", 30)

	path, err := svc.Synthesize(context.Background(), text)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[0][1]", string(data))
	assert.Equal(t, []string{"0/2", "1/2"}, seen)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.Equal(t, ".mp3", filepath.Ext(path))
}

func TestGTTSService_RemovesPreviousFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("mp3"))
	}))
	defer server.Close()

	svc := NewGTTSService(server.URL, "en", t.TempDir(), 0)
	ctx := context.Background()

	first, err := svc.Synthesize(ctx, "one")
	require.NoError(t, err)
	second, err := svc.Synthesize(ctx, "two")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.NoFileExists(t, first)
	assert.FileExists(t, second)
}

func TestGTTSService_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	svc := NewGTTSService(server.URL, "en", t.TempDir(), 0)

	_, err := svc.Synthesize(context.Background(), "hello")
	assert.ErrorContains(t, err, "status 429")

	_, err = svc.Synthesize(context.Background(), "   ")
	assert.Error(t, err)
}

func TestNewCommandPlayer_Configured(t *testing.T) {
	p, err := NewCommandPlayer("mpv --no-video")

	require.NoError(t, err)
	assert.Equal(t, []string{"mpv", "--no-video", "/tmp/a.mp3"}, p.Command("/tmp/a.mp3"))
}

func TestNewCommandPlayer_PicksFirstInstalled(t *testing.T) {
	installed := map[string]bool{"mpv": true, "cvlc": true}
	lookPath := func(name string) (string, error) {
		if installed[name] {
			return "/usr/bin/" + name, nil
		}
		return "", exec.ErrNotFound
	}

	p, err := newCommandPlayer("", "linux", lookPath)
	require.NoError(t, err)
	assert.Equal(t, "mpv", p.Command("x.mp3")[0])

	_, err = newCommandPlayer("", "linux", func(string) (string, error) { return "", exec.ErrNotFound })
	assert.ErrorIs(t, err, ErrNoPlayer)

	p, err = newCommandPlayer("", "darwin", lookPath)
	assert.ErrorIs(t, err, ErrNoPlayer)
	assert.Nil(t, p)
}

func TestCommandPlayer_Play(t *testing.T) {
	if _, err := exec.LookPath("true"); err != nil {
		t.Skip("true not available")
	}
	ok, _ := NewCommandPlayer("true")
	assert.NoError(t, ok.Play(context.Background(), "file.mp3"))

	fail, _ := NewCommandPlayer("false")
	assert.Error(t, fail.Play(context.Background(), "file.mp3"))
}

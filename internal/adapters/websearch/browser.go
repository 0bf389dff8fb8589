// Package websearch opens web searches in the user's browser.
package websearch

import (
	"context"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"
)

const (
	// FoundMessage is spoken after the browser was opened.
	FoundMessage = "I found this information online."

	defaultSearchURL = "https://www.google.com/search"
)

// Opener opens a URL somewhere the user can see it.
type Opener func(ctx context.Context, url string) error

// BrowserSearcher implements ports.WebSearcher by opening a search results
// page in a new browser tab.
type BrowserSearcher struct {
	baseURL string
	open    Opener
}

// NewBrowserSearcher creates a searcher. An empty baseURL uses Google; a nil
// opener uses the platform's default browser.
func NewBrowserSearcher(baseURL string, open Opener) *BrowserSearcher {
	if baseURL == "" {
		baseURL = defaultSearchURL
	}
	if open == nil {
		open = OpenBrowser
	}
	return &BrowserSearcher{baseURL: baseURL, open: open}
}

// SearchURL returns the results page for query.
func (s *BrowserSearcher) SearchURL(query string) string {
	sep := "?"
	if strings.Contains(s.baseURL, "?") {
		sep = "&"
	}
	return s.baseURL + sep + url.Values{"q": {query}}.Encode()
}

// Search opens the results page for query and returns the message to speak.
func (s *BrowserSearcher) Search(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", fmt.Errorf("empty search query")
	}
	target := s.SearchURL(query)
	if err := s.open(ctx, target); err != nil {
		return "", fmt.Errorf("opening %s: %w", target, err)
	}
	return FoundMessage, nil
}

// OpenBrowser opens target in the default browser without waiting for it.
// The browser outlives ctx.
func OpenBrowser(ctx context.Context, target string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", target)
	case "darwin":
		cmd = exec.Command("open", target)
	default:
		cmd = exec.Command("xdg-open", target)
	}

	if err := cmd.Start(); err != nil {
		return err
	}
	go cmd.Wait()
	return nil
}

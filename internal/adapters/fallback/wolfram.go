package fallback

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// WolframService answers questions with the Wolfram|Alpha Full Results API.
type WolframService struct {
	appID   string
	baseURL string
	client  *http.Client
}

// NewWolframService creates a Wolfram|Alpha adapter. The app id is required.
func NewWolframService(appID, baseURL string, timeout time.Duration) (*WolframService, error) {
	if strings.TrimSpace(appID) == "" {
		return nil, errors.New("wolfram: app id is required")
	}
	if baseURL == "" {
		baseURL = "https://api.wolframalpha.com"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &WolframService{
		appID:   appID,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// Name identifies the provider in errors and logs.
func (s *WolframService) Name() string { return "wolfram" }

type wolframResponse struct {
	QueryResult struct {
		Success bool            `json:"success"`
		Error   json.RawMessage `json:"error"`
		Pods    []wolframPod    `json:"pods"`
	} `json:"queryresult"`
}

type wolframPod struct {
	Title   string `json:"title"`
	Primary bool   `json:"primary"`
	SubPods []struct {
		Plaintext string `json:"plaintext"`
	} `json:"subpods"`
}

// Query returns the plaintext of the first result pod, or "" when
// Wolfram|Alpha did not understand the question.
func (s *WolframService) Query(ctx context.Context, question string) (string, error) {
	params := url.Values{}
	params.Set("input", question)
	params.Set("appid", s.appID)
	params.Set("output", "json")
	params.Set("format", "plaintext")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/v2/query?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", serviceError(s.Name(), transportError("calling Wolfram|Alpha", scrubAppID(err, s.appID)))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", serviceError(s.Name(), &StatusError{Code: resp.StatusCode, Message: parseErrorBody(resp.StatusCode, body)})
	}

	var wr wolframResponse
	if err := json.NewDecoder(resp.Body).Decode(&wr); err != nil {
		return "", serviceError(s.Name(), fmt.Errorf("decoding response: %w", err))
	}
	if msg := wolframError(wr.QueryResult.Error); msg != "" {
		return "", serviceError(s.Name(), errors.New(msg))
	}
	if !wr.QueryResult.Success {
		return "", nil
	}
	return firstResult(wr.QueryResult.Pods), nil
}

// firstResult picks the first pod marked primary or titled "Result".
func firstResult(pods []wolframPod) string {
	for _, p := range pods {
		if !p.Primary && p.Title != "Result" {
			continue
		}
		for _, sp := range p.SubPods {
			if text := strings.TrimSpace(sp.Plaintext); text != "" {
				return text
			}
		}
	}
	return ""
}

// wolframError reads the "error" field, which is false on success and an
// object with a msg on failure.
func wolframError(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var flag bool
	if json.Unmarshal(raw, &flag) == nil {
		if flag {
			return "query failed"
		}
		return ""
	}
	var obj struct {
		Code json.RawMessage `json:"code"`
		Msg  string          `json:"msg"`
	}
	if json.Unmarshal(raw, &obj) == nil && obj.Msg != "" {
		return obj.Msg
	}
	return "query failed"
}

// scrubAppID keeps the app id out of URL errors.
func scrubAppID(err error, appID string) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		ue.URL = strings.ReplaceAll(ue.URL, url.QueryEscape(appID), "REDACTED")
	}
	return err
}

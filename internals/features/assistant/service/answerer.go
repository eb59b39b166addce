// Package service holds the question-answering collaborator and the help
// features built on it.
package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bytedance/sonic"

	"inscription_backend/internals/helpers/apperr"
)

type Source struct {
	Source  string `json:"source"`
	Excerpt string `json:"excerpt"`
}

type Answer struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}

// Answerer answers free-text questions from the registration documents.
// It fails with apperr.ErrCorpusUnavailable when no corpus is loaded.
type Answerer interface {
	Answer(ctx context.Context, question string) (*Answer, error)
}

const excerptRunes = 200

// HTTPAnswerer talks to a retrieval service exposing POST {base}/answer.
type HTTPAnswerer struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
}

func NewHTTPAnswerer(baseURL string, timeout time.Duration) *HTTPAnswerer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPAnswerer{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		timeout: timeout,
		client:  &http.Client{},
	}
}

type answerRequest struct {
	Question string `json:"question"`
}

type answerResponse struct {
	Answer  string `json:"answer"`
	Sources []struct {
		Source  string `json:"source"`
		Content string `json:"content"`
		Excerpt string `json:"excerpt"`
	} `json:"sources"`
}

func (h *HTTPAnswerer) Answer(ctx context.Context, question string) (*Answer, error) {
	if h.baseURL == "" {
		return nil, fmt.Errorf("no assistant configured: %w", apperr.ErrCorpusUnavailable)
	}

	reqData, err := sonic.Marshal(answerRequest{Question: question})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, h.baseURL+"/answer", bytes.NewReader(reqData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("assistant unreachable: %v: %w", err, apperr.ErrCorpusUnavailable)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode == http.StatusServiceUnavailable {
		return nil, fmt.Errorf("assistant corpus not loaded: %w", apperr.ErrCorpusUnavailable)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("assistant request failed: %s (status %d)", string(body), resp.StatusCode)
	}

	var out answerResponse
	if err := sonic.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	ans := &Answer{Answer: out.Answer, Sources: make([]Source, 0, len(out.Sources))}
	for _, s := range out.Sources {
		text := s.Excerpt
		if text == "" {
			text = s.Content
		}
		src := s.Source
		if src == "" {
			src = "Unknown"
		}
		ans.Sources = append(ans.Sources, Source{Source: src, Excerpt: excerpt(text)})
	}
	return ans, nil
}

func excerpt(s string) string {
	if utf8.RuneCountInString(s) <= excerptRunes {
		return s
	}
	r := []rune(s)
	return string(r[:excerptRunes]) + "..."
}

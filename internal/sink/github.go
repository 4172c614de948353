package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/seenimoa/riskdesk/internal/config"
	"github.com/seenimoa/riskdesk/internal/report"
)

const defaultGitHubAPI = "https://api.github.com"

// GitHubSink posts report text as comments on one issue or pull request.
// Text over the chunk size is split and each part gets a position header so
// readers can follow multi-comment reports.
type GitHubSink struct {
	cfg     config.GitHubConfig
	issue   int
	baseURL string
	http    *http.Client
}

// GitHubOption customizes a GitHubSink.
type GitHubOption func(*GitHubSink)

// WithBaseURL points the sink at a different API host, for GitHub Enterprise
// and tests.
func WithBaseURL(url string) GitHubOption {
	return func(s *GitHubSink) { s.baseURL = url }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) GitHubOption {
	return func(s *GitHubSink) { s.http = c }
}

// NewGitHubSink builds a sink targeting one issue thread. Token, repository
// and a positive issue number are all required.
func NewGitHubSink(cfg config.GitHubConfig, issue int, opts ...GitHubOption) (*GitHubSink, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("%w: github token", config.ErrMissingCredentials)
	}
	if cfg.Repository == "" {
		return nil, fmt.Errorf("sink: repository not configured")
	}
	if issue <= 0 {
		return nil, fmt.Errorf("sink: invalid issue number %d", issue)
	}

	s := &GitHubSink{
		cfg:     cfg,
		issue:   issue,
		baseURL: defaultGitHubAPI,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Post splits the text by the configured chunk size and creates one issue
// comment per chunk, in order. A failed part aborts the rest; parts already
// posted stay up.
func (s *GitHubSink) Post(ctx context.Context, text string) error {
	chunks := report.Chunk(text, s.cfg.ChunkSize)
	for i, chunk := range chunks {
		body := chunk
		if len(chunks) > 1 {
			body = fmt.Sprintf("_part %d of %d_\n\n%s", i+1, len(chunks), chunk)
		}
		if err := s.postComment(ctx, body); err != nil {
			return fmt.Errorf("post part %d of %d: %w", i+1, len(chunks), err)
		}
	}
	return nil
}

func (s *GitHubSink) postComment(ctx context.Context, body string) error {
	payload, err := json.Marshal(map[string]string{"body": body})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/repos/%s/issues/%d/comments", s.baseURL, s.cfg.Repository, s.issue)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("github returned %d: %s", resp.StatusCode, bytes.TrimSpace(raw))
	}
	return nil
}

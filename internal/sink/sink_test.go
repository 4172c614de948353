package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/seenimoa/riskdesk/internal/config"
)

func githubTestConfig() config.GitHubConfig {
	return config.GitHubConfig{
		Token:      "test-token",
		Repository: "acme/positions",
		ChunkSize:  100,
	}
}

func newRecordingServer(t *testing.T, bodies *[]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/acme/positions/issues/7/comments" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-token" {
			t.Errorf("bad auth header %q", r.Header.Get("Authorization"))
		}
		var payload struct {
			Body string `json:"body"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode body: %v", err)
		}
		*bodies = append(*bodies, payload.Body)
		w.WriteHeader(http.StatusCreated)
	}))
}

func TestGitHubSinkSingleComment(t *testing.T) {
	var bodies []string
	server := newRecordingServer(t, &bodies)
	defer server.Close()

	s, err := NewGitHubSink(githubTestConfig(), 7, WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("NewGitHubSink: %v", err)
	}
	if err := s.Post(context.Background(), "short report"); err != nil {
		t.Fatalf("Post: %v", err)
	}
	if len(bodies) != 1 || bodies[0] != "short report" {
		t.Errorf("bodies = %q", bodies)
	}
}

func TestGitHubSinkChunksLongReports(t *testing.T) {
	var bodies []string
	server := newRecordingServer(t, &bodies)
	defer server.Close()

	s, err := NewGitHubSink(githubTestConfig(), 7, WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("NewGitHubSink: %v", err)
	}

	text := strings.Repeat("x", 250)
	if err := s.Post(context.Background(), text); err != nil {
		t.Fatalf("Post: %v", err)
	}
	if len(bodies) != 3 {
		t.Fatalf("got %d comments, want 3", len(bodies))
	}
	if !strings.HasPrefix(bodies[0], "_part 1 of 3_\n\n") {
		t.Errorf("first comment = %q", bodies[0][:30])
	}
	// Reassembling the parts minus headers yields the original text.
	var joined bytes.Buffer
	for _, b := range bodies {
		_, rest, _ := strings.Cut(b, "\n\n")
		joined.WriteString(rest)
	}
	if joined.String() != text {
		t.Error("chunks do not reassemble")
	}
}

func TestGitHubSinkAbortsOnError(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 2 {
			http.Error(w, `{"message":"denied"}`, http.StatusForbidden)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	s, err := NewGitHubSink(githubTestConfig(), 7, WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("NewGitHubSink: %v", err)
	}

	err = s.Post(context.Background(), strings.Repeat("x", 250))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "part 2 of 3") {
		t.Errorf("err = %v, should name the failing part", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, later parts must not be posted", calls)
	}
}

func TestNewGitHubSinkValidation(t *testing.T) {
	cfg := githubTestConfig()

	missing := cfg
	missing.Token = ""
	if _, err := NewGitHubSink(missing, 7); err == nil {
		t.Error("expected error without token")
	}

	missing = cfg
	missing.Repository = ""
	if _, err := NewGitHubSink(missing, 7); err == nil {
		t.Error("expected error without repository")
	}

	if _, err := NewGitHubSink(cfg, 0); err == nil {
		t.Error("expected error with issue 0")
	}
}

func TestStdoutSink(t *testing.T) {
	var buf bytes.Buffer
	if err := (StdoutSink{W: &buf}).Post(context.Background(), "report text"); err != nil {
		t.Fatalf("Post: %v", err)
	}
	if buf.String() != "report text\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestParseEventIssueComment(t *testing.T) {
	payload := `{
		"issue": {"number": 42, "title": "Tracking", "body": "ignored"},
		"comment": {"body": "analyze TSLA please", "user": {"login": "trader-a"}},
		"sender": {"login": "trader-a"}
	}`
	ev, err := ParseEvent(strings.NewReader(payload))
	if err != nil {
		t.Fatalf("ParseEvent: %v", err)
	}
	if ev.IssueNumber != 42 || ev.Actor != "trader-a" {
		t.Errorf("event = %+v", ev)
	}
	if ev.Text != "analyze TSLA please" {
		t.Errorf("Text = %q, comment body must win over issue body", ev.Text)
	}
}

func TestParseEventIssueOpened(t *testing.T) {
	payload := `{
		"issue": {"number": 9, "title": "analyze NVDA", "body": "with benchmark"},
		"sender": {"login": "trader-b"}
	}`
	ev, err := ParseEvent(strings.NewReader(payload))
	if err != nil {
		t.Fatalf("ParseEvent: %v", err)
	}
	if ev.Text != "analyze NVDA\nwith benchmark" {
		t.Errorf("Text = %q", ev.Text)
	}
}

func TestParseEventRejectsMissingIssue(t *testing.T) {
	if _, err := ParseEvent(strings.NewReader(`{"sender":{"login":"x"}}`)); err == nil {
		t.Error("expected error for payload without issue")
	}
	if _, err := ParseEvent(strings.NewReader(`not json`)); err == nil {
		t.Error("expected error for malformed payload")
	}
}

func TestEventAllowed(t *testing.T) {
	ev := &Event{Actor: "Trader-A"}
	if !ev.Allowed([]string{"someone", "trader-a"}) {
		t.Error("case-insensitive match should pass")
	}
	if ev.Allowed([]string{"someone-else"}) {
		t.Error("unlisted actor should be denied")
	}
	if ev.Allowed(nil) {
		t.Error("empty allowlist must deny everyone")
	}
}

func TestParseEventFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "event.json")
	payload := `{"issue":{"number":5,"title":"analyze AAPL"},"sender":{"login":"u"}}`
	if err := os.WriteFile(path, []byte(payload), 0o600); err != nil {
		t.Fatal(err)
	}
	ev, err := ParseEventFile(path)
	if err != nil {
		t.Fatalf("ParseEventFile: %v", err)
	}
	if ev.IssueNumber != 5 {
		t.Errorf("IssueNumber = %d", ev.IssueNumber)
	}

	if _, err := ParseEventFile(path + ".missing"); err == nil {
		t.Error("expected error for missing file")
	}
}

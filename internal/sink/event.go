package sink

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// Event is the slice of a GitHub Actions webhook payload the bot acts on:
// where to reply, who asked, and the text to scan for a ticker.
type Event struct {
	IssueNumber int
	Actor       string
	Text        string
}

// eventPayload covers both "issues" and "issue_comment" event shapes. Fields
// the bot does not use are left undeclared.
type eventPayload struct {
	Issue struct {
		Number int    `json:"number"`
		Title  string `json:"title"`
		Body   string `json:"body"`
	} `json:"issue"`
	Comment struct {
		Body string `json:"body"`
		User struct {
			Login string `json:"login"`
		} `json:"user"`
	} `json:"comment"`
	Sender struct {
		Login string `json:"login"`
	} `json:"sender"`
}

// ParseEventFile reads the payload file named by GITHUB_EVENT_PATH.
func ParseEventFile(path string) (*Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open event payload: %w", err)
	}
	defer f.Close()
	return ParseEvent(f)
}

// ParseEvent decodes a webhook payload. Comment events use the comment body;
// issue events use the issue title plus body.
func ParseEvent(r io.Reader) (*Event, error) {
	var payload eventPayload
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode event payload: %w", err)
	}
	if payload.Issue.Number <= 0 {
		return nil, fmt.Errorf("event carries no issue number")
	}

	ev := &Event{
		IssueNumber: payload.Issue.Number,
		Actor:       payload.Sender.Login,
	}
	if ev.Actor == "" {
		ev.Actor = payload.Comment.User.Login
	}

	if body := strings.TrimSpace(payload.Comment.Body); body != "" {
		ev.Text = body
	} else {
		ev.Text = strings.TrimSpace(payload.Issue.Title + "\n" + payload.Issue.Body)
	}
	return ev, nil
}

// Allowed reports whether the event's actor is on the allowlist. An empty
// allowlist denies everyone; the bot must be configured explicitly before it
// spends API credit on behalf of strangers.
func (e *Event) Allowed(users []string) bool {
	for _, u := range users {
		if strings.EqualFold(strings.TrimSpace(u), e.Actor) {
			return true
		}
	}
	return false
}

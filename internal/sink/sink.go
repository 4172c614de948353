// Package sink delivers finished reports. The GitHub sink posts chunked
// issue comments; the stdout sink prints, for local runs.
package sink

import (
	"context"
	"fmt"
	"io"
)

// Sink receives the assembled report text. Implementations handle their own
// size limits and chunking.
type Sink interface {
	Post(ctx context.Context, text string) error
}

// StdoutSink writes the report to a writer, unchunked.
type StdoutSink struct {
	W io.Writer
}

func (s StdoutSink) Post(_ context.Context, text string) error {
	_, err := fmt.Fprintln(s.W, text)
	return err
}

package llm

import (
	"context"
	"errors"
	"fmt"

	"chat-relay/internal/model/chat"
)

var (
	// ErrNotConfigured means no upstream credential is set; the call is
	// never attempted.
	ErrNotConfigured = errors.New("OPENROUTER_API_KEY is missing, configure it in your environment")

	// ErrEmptyReply means the upstream answered 2xx but produced no usable text.
	ErrEmptyReply = errors.New("upstream returned an empty reply")
)

// maxErrorBody bounds how much of an upstream error body is kept for
// diagnostics.
const maxErrorBody = 300

// UpstreamError carries the status and a truncated body of a non-2xx upstream
// response. Diagnostics only; the relay collapses it into a generic 502.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error %d: %s", e.StatusCode, e.Body)
}

// Completer produces a model reply for a session's turn history.
type Completer interface {
	Complete(ctx context.Context, history []chat.Turn) (string, error)
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}

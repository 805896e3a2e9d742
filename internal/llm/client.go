package llm

import "context"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Fragment is one role-tagged message in the conversation context sent to
// the completion provider.
type Fragment struct {
	Role    string
	Content string
}

// Completion is the parsed result of one provider call.
type Completion struct {
	Content string
	Usage   map[string]any
}

// Client sends an assembled conversation context to a completion provider.
// One attempt per invocation, no retries; any failure propagates directly to
// the caller.
type Client interface {
	Complete(ctx context.Context, model string, context []Fragment) (Completion, error)
}

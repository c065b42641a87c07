package providers

import (
	"context"
	"errors"
	"strings"
)

// Turn is one line of dialogue. Role is "user" or "assistant"; providers
// that only accept a flat prompt ignore it.
type Turn struct {
	Role string
	Text string
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type CompletionRequest struct {
	Model        string
	SystemPrompt string
	History      []Turn
	Temperature  float64
	MaxTokens    int
}

type CompletionResponse struct {
	Text string
}

// ErrUnusable marks responses where the backend answered but the payload
// carried no usable text. Callers distinguish it from transport failures.
var ErrUnusable = errors.New("provider response unusable")

type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
}

// JoinHistory concatenates the turns in chronological order. The separator
// is provider-specific configuration.
func JoinHistory(history []Turn, sep string) string {
	parts := make([]string, 0, len(history))
	for _, t := range history {
		if strings.TrimSpace(t.Text) == "" {
			continue
		}
		parts = append(parts, t.Text)
	}
	return strings.Join(parts, sep)
}

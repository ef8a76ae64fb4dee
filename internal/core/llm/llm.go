// Package llm provides the completion client used by the summarization and
// question answering stages.
package llm

import "context"

// Client generates a completion for a fully rendered prompt.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Package llm turns free-text user messages into typed booking
// intents. Resolution is dual-path: a remote generative-text provider
// is tried first, and any failure there degrades silently to a
// deterministic rule-based parser so the service stays available
// without the external dependency.
package llm

import (
	"context"
	"log"

	"github.com/tigertix/ticket-assistant/internal/model"
)

// Provider is the remote primary path. Implementations report every
// failure mode (timeout, malformed output, provider error) as an
// ordinary error value; none of them may panic or block past the
// context deadline.
type Provider interface {
	Parse(ctx context.Context, text string) (model.Intent, error)
}

// Resolver resolves text into an Intent. A nil provider is valid and
// means the fallback parser handles everything, which is how the
// service runs without an API key.
type Resolver struct {
	provider Provider
}

// NewResolver returns a Resolver backed by the given provider.
func NewResolver(p Provider) *Resolver { return &Resolver{provider: p} }

// Resolve classifies text. It never returns an error: provider
// failures are logged and absorbed by the fallback, per the design
// rule that the primary path's problems are invisible to users.
// Callers must reject empty input before calling.
func (r *Resolver) Resolve(ctx context.Context, text string) model.Intent {
	if r.provider != nil {
		intent, err := r.provider.Parse(ctx, text)
		if err == nil {
			return intent
		}
		log.Printf("llm: provider parse failed: %v; using fallback parser", err)
	}
	return Fallback(text)
}

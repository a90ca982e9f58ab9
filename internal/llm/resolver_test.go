package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/tigertix/ticket-assistant/internal/model"
)

type stubProvider struct {
	intent model.Intent
	err    error
	calls  int
}

func (s *stubProvider) Parse(ctx context.Context, text string) (model.Intent, error) {
	s.calls++
	return s.intent, s.err
}

func TestResolveUsesProviderResult(t *testing.T) {
	want := model.Intent{Kind: model.IntentBook, Event: "Jazz Night", Tickets: 2}
	p := &stubProvider{intent: want}
	r := NewResolver(p)

	got := r.Resolve(context.Background(), "Book 2 tickets for Jazz Night")
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if p.calls != 1 {
		t.Errorf("provider called %d times, want 1", p.calls)
	}
}

func TestResolveFallsBackOnProviderError(t *testing.T) {
	p := &stubProvider{err: errors.New("provider unavailable")}
	r := NewResolver(p)

	got := r.Resolve(context.Background(), "Book 2 tickets for Jazz Night")
	if got.Kind != model.IntentBook {
		t.Fatalf("kind = %q, want book from fallback", got.Kind)
	}
	if got.Event != "jazz night" || got.Tickets != 2 {
		t.Errorf("got event=%q tickets=%d, want jazz night and 2", got.Event, got.Tickets)
	}
}

func TestResolveWithoutProvider(t *testing.T) {
	r := NewResolver(nil)
	got := r.Resolve(context.Background(), "hello there")
	if got.Kind != model.IntentGreeting {
		t.Errorf("kind = %q, want greeting", got.Kind)
	}
}

package engine

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"zozabot/internal/admission"
	"zozabot/internal/gateway"
	"zozabot/internal/providers"
	"zozabot/internal/session"
)

type scriptedProvider struct {
	calls   int
	replies []providers.CompletionResponse
	errs    []error
}

func (p *scriptedProvider) Complete(ctx context.Context, req providers.CompletionRequest) (providers.CompletionResponse, error) {
	i := p.calls
	p.calls++
	var resp providers.CompletionResponse
	var err error
	if i < len(p.replies) {
		resp = p.replies[i]
	}
	if i < len(p.errs) {
		err = p.errs[i]
	}
	return resp, err
}

type fixture struct {
	engine  *Engine
	history *session.History
	clock   *fakeClock
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newFixture(t *testing.T, p providers.Provider, retainAssistant bool) *fixture {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 2, 13, 10, 0, 0, 0, time.UTC)}
	history := session.NewHistory(8)
	eng := New(Config{
		Filter:  admission.NewFilter([]string{"zoza", "زوزا"}),
		Limiter: session.NewRateLimiter(1200 * time.Millisecond),
		History: history,
		Gateway: gateway.New(p, gateway.Fallbacks{
			Unavailable: "temporarily unavailable",
			Unclear:     "please clarify",
		}, zerolog.Nop()),
		Model:           "gpt-4o-mini",
		SystemPrompt:    "be brief",
		Temperature:     0.4,
		RetainAssistant: retainAssistant,
		RateNotice:      "slow down",
		Now:             clock.Now,
		Logger:          zerolog.Nop(),
	})
	return &fixture{engine: eng, history: history, clock: clock}
}

func privateMsg(userID int64, text string) Inbound {
	return Inbound{
		UserID:      userID,
		ChatID:      100,
		ChatType:    "private",
		Text:        text,
		BotUsername: "zoza_bot",
	}
}

func TestPrivateHelloRoundTrip(t *testing.T) {
	p := &scriptedProvider{replies: []providers.CompletionResponse{{Text: "hi there"}}}
	f := newFixture(t, p, true)

	reply := f.engine.Handle(context.Background(), privateMsg(1, "hello"))
	if reply.Outcome != OutcomeAnswered {
		t.Fatalf("expected answered outcome, got %v", reply.Outcome)
	}
	if reply.Text != "hi there" {
		t.Fatalf("expected provider reply, got %q", reply.Text)
	}

	turns := f.history.Snapshot(1)
	if len(turns) != 2 {
		t.Fatalf("expected user + assistant turns, got %d", len(turns))
	}
	if turns[0].Text != "hello" || turns[0].Role != providers.RoleUser {
		t.Fatalf("unexpected first turn %+v", turns[0])
	}
	if turns[1].Text != "hi there" || turns[1].Role != providers.RoleAssistant {
		t.Fatalf("unexpected second turn %+v", turns[1])
	}
}

func TestAssistantTurnsDroppedWhenNotRetained(t *testing.T) {
	p := &scriptedProvider{replies: []providers.CompletionResponse{{Text: "hi there"}}}
	f := newFixture(t, p, false)

	f.engine.Handle(context.Background(), privateMsg(1, "hello"))

	turns := f.history.Snapshot(1)
	if len(turns) != 1 || turns[0].Text != "hello" {
		t.Fatalf("expected only the user turn, got %+v", turns)
	}
}

func TestUnaddressedGroupMessageIsDropped(t *testing.T) {
	p := &scriptedProvider{}
	f := newFixture(t, p, true)

	reply := f.engine.Handle(context.Background(), Inbound{
		UserID:      1,
		ChatID:      200,
		ChatType:    "group",
		Text:        "good morning everyone",
		BotUsername: "zoza_bot",
	})
	if reply.Outcome != OutcomeIgnored {
		t.Fatalf("expected ignored outcome, got %v", reply.Outcome)
	}
	if reply.Text != "" {
		t.Fatalf("ignored message must carry no text, got %q", reply.Text)
	}
	if p.calls != 0 {
		t.Fatal("provider must not be called for ignored messages")
	}
	if len(f.history.Snapshot(1)) != 0 {
		t.Fatal("ignored message must not touch history")
	}
}

func TestSecondMessageWithinDelayIsRateLimited(t *testing.T) {
	p := &scriptedProvider{replies: []providers.CompletionResponse{{Text: "first answer"}}}
	f := newFixture(t, p, false)

	if r := f.engine.Handle(context.Background(), privateMsg(1, "first")); r.Outcome != OutcomeAnswered {
		t.Fatalf("expected first message answered, got %v", r.Outcome)
	}

	f.clock.Advance(300 * time.Millisecond)
	reply := f.engine.Handle(context.Background(), privateMsg(1, "second"))
	if reply.Outcome != OutcomeRateLimited {
		t.Fatalf("expected rate-limited outcome, got %v", reply.Outcome)
	}
	if reply.Text != "slow down" {
		t.Fatalf("expected rate notice, got %q", reply.Text)
	}
	if p.calls != 1 {
		t.Fatalf("rate-limited message must not reach the provider, calls=%d", p.calls)
	}
	if got := f.history.Snapshot(1); len(got) != 1 {
		t.Fatalf("rate-limited message must not be appended, history=%+v", got)
	}
}

func TestProviderFailureKeepsUserTurn(t *testing.T) {
	p := &scriptedProvider{errs: []error{fmt.Errorf("provider status 500")}}
	f := newFixture(t, p, true)

	reply := f.engine.Handle(context.Background(), privateMsg(1, "hello"))
	if reply.Outcome != OutcomeAnswered {
		t.Fatalf("expected answered outcome with fallback, got %v", reply.Outcome)
	}
	if reply.Text != "temporarily unavailable" {
		t.Fatalf("expected unavailable fallback, got %q", reply.Text)
	}

	turns := f.history.Snapshot(1)
	if len(turns) != 1 || turns[0].Role != providers.RoleUser {
		t.Fatalf("expected only the user turn after failure, got %+v", turns)
	}
}

func TestCurrentMessageIsPartOfItsOwnContext(t *testing.T) {
	var seen []providers.Turn
	p := &scriptedProvider{replies: []providers.CompletionResponse{{Text: "ok"}}}
	f := newFixture(t, &capturingProvider{inner: p, seen: &seen}, false)

	f.engine.Handle(context.Background(), privateMsg(1, "the question"))
	if len(seen) != 1 || seen[0].Text != "the question" {
		t.Fatalf("expected the current message inside the request history, got %+v", seen)
	}
}

type capturingProvider struct {
	inner *scriptedProvider
	seen  *[]providers.Turn
}

func (c *capturingProvider) Complete(ctx context.Context, req providers.CompletionRequest) (providers.CompletionResponse, error) {
	*c.seen = req.History
	return c.inner.Complete(ctx, req)
}

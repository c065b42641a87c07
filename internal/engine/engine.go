package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"zozabot/internal/admission"
	"zozabot/internal/gateway"
	"zozabot/internal/metrics"
	"zozabot/internal/providers"
	"zozabot/internal/session"
	"zozabot/internal/storage"
)

// Inbound is the transport-agnostic shape of one incoming message. The
// telegram layer normalizes gotgbot updates into this before calling the
// engine; the engine never touches transport payloads.
type Inbound struct {
	UserID         int64
	ChatID         int64
	ChatType       string
	Text           string
	RepliedToIsBot bool
	BotUsername    string
}

type Outcome int

const (
	// OutcomeIgnored means the admission filter declined; nothing was
	// mutated and no reply is owed.
	OutcomeIgnored Outcome = iota
	// OutcomeRateLimited means the sender must slow down; the reply is a
	// short notice and history was not touched.
	OutcomeRateLimited
	// OutcomeAnswered carries either the provider's text or a fallback.
	OutcomeAnswered
)

type Reply struct {
	Outcome Outcome
	Text    string
}

type Engine struct {
	filter      *admission.Filter
	limiter     *session.RateLimiter
	history     *session.History
	gateway     *gateway.Gateway
	transcripts *storage.Store

	model           string
	systemPrompt    string
	temperature     float64
	maxTokens       int
	retainAssistant bool
	rateNotice      string

	now     func() time.Time
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

type Config struct {
	Filter      *admission.Filter
	Limiter     *session.RateLimiter
	History     *session.History
	Gateway     *gateway.Gateway
	Transcripts *storage.Store

	Model           string
	SystemPrompt    string
	Temperature     float64
	MaxTokens       int
	RetainAssistant bool
	RateNotice      string

	Now     func() time.Time
	Logger  zerolog.Logger
	Metrics *metrics.Metrics
}

func New(cfg Config) *Engine {
	m := cfg.Metrics
	if m == nil {
		m = metrics.Global()
	}
	now := cfg.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Engine{
		filter:          cfg.Filter,
		limiter:         cfg.Limiter,
		history:         cfg.History,
		gateway:         cfg.Gateway,
		transcripts:     cfg.Transcripts,
		model:           cfg.Model,
		systemPrompt:    cfg.SystemPrompt,
		temperature:     cfg.Temperature,
		maxTokens:       cfg.MaxTokens,
		retainAssistant: cfg.RetainAssistant,
		rateNotice:      cfg.RateNotice,
		now:             now,
		logger:          cfg.Logger,
		metrics:         m,
	}
}

// Handle runs one message through admit, rate-limit, history, provider and
// record. It always returns a Reply; failures below this boundary become
// fallback text, never errors.
func (e *Engine) Handle(ctx context.Context, msg Inbound) Reply {
	if !e.filter.ShouldRespond(msg.ChatType, msg.Text, msg.BotUsername, msg.RepliedToIsBot) {
		e.metrics.IgnoredTotal.Inc()
		return Reply{Outcome: OutcomeIgnored}
	}
	e.metrics.AdmittedTotal.Inc()

	if !e.limiter.Allow(msg.UserID, e.now()) {
		e.metrics.RateLimited.Inc()
		return Reply{Outcome: OutcomeRateLimited, Text: e.rateNotice}
	}

	// The current message joins the window before the prompt is built, so
	// it is part of its own context.
	e.history.Append(msg.UserID, providers.Turn{Role: providers.RoleUser, Text: msg.Text})
	e.record(ctx, msg.ChatID, msg.UserID, providers.RoleUser, msg.Text)

	result := e.gateway.Complete(ctx, providers.CompletionRequest{
		Model:        e.model,
		SystemPrompt: e.systemPrompt,
		History:      e.history.Snapshot(msg.UserID),
		Temperature:  e.temperature,
		MaxTokens:    e.maxTokens,
	})
	if !result.OK {
		e.metrics.ProviderErrors.Inc()
		return Reply{Outcome: OutcomeAnswered, Text: result.Text}
	}

	if e.retainAssistant {
		e.history.Append(msg.UserID, providers.Turn{Role: providers.RoleAssistant, Text: result.Text})
	}
	e.record(ctx, msg.ChatID, msg.UserID, providers.RoleAssistant, result.Text)

	return Reply{Outcome: OutcomeAnswered, Text: result.Text}
}

// record writes the transcript audit row. It is best-effort: a storage
// failure is logged and never changes the reply.
func (e *Engine) record(ctx context.Context, chatID, userID int64, role, text string) {
	if e.transcripts == nil {
		return
	}
	if err := e.transcripts.InsertTranscript(ctx, storage.Transcript{
		ChatID: chatID,
		UserID: userID,
		Role:   role,
		Text:   text,
	}); err != nil {
		e.logger.Error().Err(err).Int64("chat_id", chatID).Int64("user_id", userID).Msg("failed to record transcript")
	}
}

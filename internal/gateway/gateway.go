package gateway

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"zozabot/internal/providers"
)

// ErrorKind classifies provider failures surfaced to the engine.
type ErrorKind string

const (
	// KindUnavailable covers network errors, timeouts, non-2xx statuses
	// and undecodable payloads.
	KindUnavailable ErrorKind = "unavailable"
	// KindUnclear covers backends that answered but produced no usable text.
	KindUnclear ErrorKind = "unclear"
)

type Result struct {
	Text string
	OK   bool
	Kind ErrorKind
}

type Fallbacks struct {
	Unavailable string
	Unclear     string
}

// Gateway wraps a Provider so that no error crosses its boundary: every
// failure becomes a Result carrying a localized fallback text.
type Gateway struct {
	provider  providers.Provider
	fallbacks Fallbacks
	logger    zerolog.Logger
}

func New(p providers.Provider, fb Fallbacks, logger zerolog.Logger) *Gateway {
	return &Gateway{provider: p, fallbacks: fb, logger: logger}
}

func (g *Gateway) Complete(ctx context.Context, req providers.CompletionRequest) Result {
	resp, err := g.provider.Complete(ctx, req)
	if err != nil {
		if errors.Is(err, providers.ErrUnusable) {
			g.logger.Warn().Err(err).Msg("provider answer unusable")
			return Result{Text: g.fallbacks.Unclear, Kind: KindUnclear}
		}
		g.logger.Error().Err(err).Msg("provider call failed")
		return Result{Text: g.fallbacks.Unavailable, Kind: KindUnavailable}
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		g.logger.Warn().Msg("provider returned empty text")
		return Result{Text: g.fallbacks.Unclear, Kind: KindUnclear}
	}
	return Result{Text: text, OK: true}
}

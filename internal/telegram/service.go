package telegram

import (
	"context"
	"strings"

	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers"
	"github.com/rs/zerolog"

	"zozabot/internal/engine"
	"zozabot/internal/metrics"
	"zozabot/internal/storage"
)

// Service owns the bot's Telegram surface: commands plus the plain-text
// relay path. It normalizes updates into the engine's inbound shape and
// never leaks transport types below this package.
type Service struct {
	engine      *engine.Engine
	store       *storage.Store
	logger      zerolog.Logger
	metrics     *metrics.Metrics
	botUsername string
}

type Config struct {
	Engine      *engine.Engine
	Store       *storage.Store
	Logger      zerolog.Logger
	Metrics     *metrics.Metrics
	BotUsername string
}

func NewService(cfg Config) *Service {
	m := cfg.Metrics
	if m == nil {
		m = metrics.Global()
	}
	return &Service{
		engine:      cfg.Engine,
		store:       cfg.Store,
		logger:      cfg.Logger,
		metrics:     m,
		botUsername: cfg.BotUsername,
	}
}

func (s *Service) Register(d *ext.Dispatcher) {
	d.AddHandler(handlers.NewCommand("start", s.start))
	d.AddHandler(handlers.NewCommand("help", s.help))
	d.AddHandler(handlers.NewMessage(func(msg *gotgbot.Message) bool {
		text := msg.GetText()
		return text != "" && !strings.HasPrefix(text, "/")
	}, s.onText))
}

func (s *Service) ensureChat(ctx context.Context, msg *gotgbot.Message) {
	if s.store == nil {
		return
	}
	if err := s.store.EnsureChat(ctx, msg.Chat.Id, msg.Chat.Type, msg.Chat.Title); err != nil {
		s.logger.Warn().Err(err).Int64("chat_id", msg.Chat.Id).Msg("failed to upsert chat")
	}
}

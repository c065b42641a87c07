package telegram

import (
	"context"
	"strings"

	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"

	"zozabot/internal/engine"
)

const maxReplyRunes = 4000

func (s *Service) start(b *gotgbot.Bot, ctx *ext.Context) error {
	text := "أهلاً 👋 أنا زوزا.\n" +
		"في الجروبات: منشن @" + s.username(b) + " أو اعمل Reply على كلامي."
	return s.reply(ctx, b, text)
}

func (s *Service) help(b *gotgbot.Bot, ctx *ext.Context) error {
	text := "الاستخدام:\n" +
		"- منشن @" + s.username(b) + "\n" +
		"- Reply على رسالة البوت\n" +
		"- أو اكتب: زوزا / zoza\n" +
		"واسأل سؤالك مباشرة."
	return s.reply(ctx, b, text)
}

func (s *Service) onText(b *gotgbot.Bot, ctx *ext.Context) error {
	msg := ctx.EffectiveMessage
	if msg == nil || ctx.EffectiveChat == nil || ctx.EffectiveUser == nil {
		return nil
	}
	text := strings.TrimSpace(msg.GetText())
	if text == "" {
		return nil
	}

	s.ensureChat(context.Background(), msg)

	reply := s.engine.Handle(context.Background(), engine.Inbound{
		UserID:         ctx.EffectiveUser.Id,
		ChatID:         ctx.EffectiveChat.Id,
		ChatType:       ctx.EffectiveChat.Type,
		Text:           text,
		RepliedToIsBot: repliedToIsBot(msg),
		BotUsername:    s.username(b),
	})
	if reply.Outcome == engine.OutcomeIgnored {
		return nil
	}

	if err := s.reply(ctx, b, reply.Text); err != nil {
		return err
	}
	s.metrics.RepliesTotal.Inc()
	return nil
}

// repliedToIsBot mirrors the original admission input: any bot-authored
// message counts, not only our own.
func repliedToIsBot(msg *gotgbot.Message) bool {
	return msg.ReplyToMessage != nil &&
		msg.ReplyToMessage.From != nil &&
		msg.ReplyToMessage.From.IsBot
}

func (s *Service) reply(ctx *ext.Context, b *gotgbot.Bot, text string) error {
	if ctx.EffectiveChat == nil {
		return nil
	}
	if r := []rune(text); len(r) > maxReplyRunes {
		text = string(r[:maxReplyRunes])
	}

	opts := &gotgbot.SendMessageOpts{}
	if ctx.EffectiveMessage != nil {
		opts.ReplyParameters = &gotgbot.ReplyParameters{MessageId: ctx.EffectiveMessage.MessageId}
	}
	_, err := b.SendMessage(ctx.EffectiveChat.Id, text, opts)
	return err
}

func (s *Service) username(b *gotgbot.Bot) string {
	if s.botUsername != "" {
		return s.botUsername
	}
	return b.User.Username
}

package admission

import "strings"

// Filter decides whether an inbound message deserves a reply at all.
// Private chats always pass; group chats pass only when the bot was
// addressed. Matching is case-insensitive substring matching, so an alias
// inside an unrelated word still triggers admission. That mirrors the
// original bot and is intentional.
type Filter struct {
	aliases []string
}

func NewFilter(aliases []string) *Filter {
	lowered := make([]string, 0, len(aliases))
	for _, a := range aliases {
		a = strings.ToLower(strings.TrimSpace(a))
		if a == "" {
			continue
		}
		lowered = append(lowered, a)
	}
	return &Filter{aliases: lowered}
}

func (f *Filter) ShouldRespond(chatType, text, botUsername string, repliedToIsBot bool) bool {
	if chatType != "group" && chatType != "supergroup" {
		return true
	}
	if repliedToIsBot {
		return true
	}

	lower := strings.ToLower(text)
	if strings.TrimSpace(botUsername) != "" && strings.Contains(lower, strings.ToLower(botUsername)) {
		return true
	}
	for _, alias := range f.aliases {
		if strings.Contains(lower, alias) {
			return true
		}
	}
	return false
}

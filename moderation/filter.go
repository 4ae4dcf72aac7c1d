package moderation

import (
	"log/slog"
	"sourcesync/contract"

	"github.com/abadojack/whatlanggo"
)

// ChatFilter censors chat lines and tags them with their detected language.
type ChatFilter struct {
	moderator *Moderator
	log       *slog.Logger
}

var _ contract.MessageFilter = (*ChatFilter)(nil)

func NewChatFilter(moderator *Moderator, log *slog.Logger) *ChatFilter {
	return &ChatFilter{moderator: moderator, log: log}
}

// Sanitize returns the censored content and an ISO 639-1 code,
// empty when the language can't be told reliably.
func (f *ChatFilter) Sanitize(content string) (string, string) {
	lang := ""
	if info := whatlanggo.Detect(content); info.IsReliable() {
		lang = info.Lang.Iso6391()
	}

	sanitized, words := f.moderator.Censor(content)
	if len(words) > 0 {
		f.log.Debug("Message censored", "words", len(words), "lang", lang)
	}
	return sanitized, lang
}

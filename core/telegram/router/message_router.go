package router

import (
	"strings"

	tg "github.com/m3rciful/mediareq/core/telegram"
	"github.com/m3rciful/mediareq/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// Conversation receives free text from users that are in the middle of a dialogue.
type Conversation interface {
	InProgress(userID int64) bool
	HandleText(c tele.Context) error
}

// TextRoute routes plain text to the active conversation first, then to a
// command looked up by name, then to the registry's text fallback. Slash
// commands telebot has no handler for never reach the conversation.
func TextRoute(conv Conversation, reg *tg.Registry) tg.Route {
	handler := func(c tele.Context) error {
		var userID int64
		if u := c.Sender(); u != nil {
			userID = u.ID
		}

		if conv != nil && !strings.HasPrefix(c.Text(), "/") && conv.InProgress(userID) {
			return handle(c, "conversation.text", func() error {
				return conv.HandleText(c)
			})
		}

		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(c.Text()); ok && !cmd.Restricted {
				return handle(c, normalizeHandlerName(key), func() error {
					return cmd.Handler(c)
				})
			}
			if fb := reg.TextFallback(); fb != nil {
				return handle(c, "fallback", func() error { return fb(c) })
			}
		}
		return handle(c, "unknown_text", func() error { return nil })
	}

	return tg.Route{
		Endpoint: tele.OnText,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
	}
}

package middleware

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/m3rciful/mediareq/core/logger"
	tghelpers "github.com/m3rciful/mediareq/core/telegram/helpers"
	"github.com/patrickmn/go-cache"

	tele "gopkg.in/telebot.v4"
)

// RateLimitOptions configures behaviour of the rate limit middleware.
type RateLimitOptions struct {
	Interval time.Duration
	Exclude  map[string]struct{}
	// ExemptCommands are never throttled, e.g. "/cancel".
	ExemptCommands map[string]struct{}
	OnLimited      tele.HandlerFunc
}

// UpdateKind names the update for rate limit exclusions: "callback", "message" or "other".
func UpdateKind(upd tele.Update) string {
	switch {
	case upd.Callback != nil:
		return "callback"
	case upd.Message != nil:
		return "message"
	}
	return "other"
}

// commandOf returns the leading "/command" of a message, without any
// "@botname" suffix, or "".
func commandOf(upd tele.Update) string {
	if upd.Message == nil || !strings.HasPrefix(upd.Message.Text, "/") {
		return ""
	}
	cmd, _, _ := strings.Cut(upd.Message.Text, " ")
	cmd, _, _ = strings.Cut(cmd, "@")
	return cmd
}

// RateLimitMiddleware drops updates that arrive from the same user less than
// opts.Interval after the previous accepted one.
func RateLimitMiddleware(opts RateLimitOptions) tele.MiddlewareFunc {
	seen := cache.New(opts.Interval, 4*opts.Interval+time.Minute)
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil || opts.Interval <= 0 {
				return next(c)
			}
			kind := UpdateKind(c.Update())
			if _, skip := opts.Exclude[kind]; skip {
				return next(c)
			}
			if cmd := commandOf(c.Update()); cmd != "" {
				if _, skip := opts.ExemptCommands[cmd]; skip {
					return next(c)
				}
			}

			// Add fails while an unexpired entry for the user exists.
			if err := seen.Add(strconv.FormatInt(user.ID, 10), struct{}{}, opts.Interval); err != nil {
				logger.Warn(tghelpers.BuildContext(c), "tg", "rate_limit",
					slog.String("outcome", "rate_limited"),
					slog.String("kind", kind),
				)
				if opts.OnLimited != nil {
					return opts.OnLimited(c)
				}
				return nil
			}
			return next(c)
		}
	}
}

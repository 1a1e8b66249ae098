// Package middleware holds the shared telebot middleware chain.
package middleware

import (
	"log/slog"

	"github.com/m3rciful/mediareq/core/logger"
	tghelpers "github.com/m3rciful/mediareq/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// AccessOptions decides who may reach restricted handlers.
type AccessOptions struct {
	Allowed  func(userID int64) bool
	OnReject tele.HandlerFunc
}

// RestrictedMiddleware lets an update through only when its sender passes
// opts.Allowed. A nil Allowed admits everyone.
func RestrictedMiddleware(opts AccessOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		if opts.Allowed == nil {
			return next
		}
		return func(c tele.Context) error {
			var userID int64
			if u := c.Sender(); u != nil {
				userID = u.ID
			}
			if opts.Allowed(userID) {
				return next(c)
			}
			logger.Warn(tghelpers.BuildContext(c), "tg.access", "access.denied", slog.Int64("user_id", userID))
			if opts.OnReject != nil {
				return opts.OnReject(c)
			}
			return nil
		}
	}
}

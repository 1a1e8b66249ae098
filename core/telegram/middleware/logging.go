package middleware

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/m3rciful/mediareq/core/logger"
	"github.com/m3rciful/mediareq/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/mediareq/core/telegram/helpers"
	"github.com/patrickmn/go-cache"

	tele "gopkg.in/telebot.v4"
)

// recent keeps processed update ids for a short while so an update that passes
// through several wrapped routes is logged once.
var recent = cache.New(10*time.Second, time.Minute)

func alreadyLogged(updateID int) bool {
	return recent.Add(strconv.Itoa(updateID), struct{}{}, cache.DefaultExpiration) != nil
}

// LoggerMiddleware attaches the request context to the update and logs its receipt.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		upd := c.Update()
		user := c.Sender()
		chat := c.Chat()

		var chatID, userID int64
		if chat != nil {
			chatID = chat.ID
		}
		if user != nil {
			userID = user.ID
		}
		rid := logger.BuildRID(upd.ID, chatID, userID)
		c.Set("rid", rid)

		ctx := logger.WithRID(logger.Background(), rid)
		ctx = logger.WithUpdateMeta(ctx, upd.ID, userID, chatID)
		ctx = logger.WithLogger(ctx, logger.Component("tg"))
		tghelpers.StoreContext(c, ctx)

		if logger.ShouldSampleDebug() && !alreadyLogged(upd.ID) {
			attrs := []slog.Attr{slog.String("kind", UpdateKind(upd))}
			if user != nil && user.Username != "" {
				attrs = append(attrs, slog.String("username", logger.SanitizeLimit(user.Username, 64)))
			}
			switch {
			case upd.Callback != nil:
				key, payload := callbacks.Parse(c)
				attrs = append(attrs,
					slog.String("cb_key", logger.SanitizeLimit(key, 128)),
					slog.String("payload", logger.SanitizeLimit(payload, 256)),
				)
			case upd.Message != nil:
				if t := c.Text(); t != "" {
					attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(t, 256)))
				}
			}
			logger.LogEvent(ctx, logger.Component("tg"), slog.LevelDebug, "update.received", attrs...)
		}

		return next(c)
	}
}

package router

import (
	"log/slog"

	tg "github.com/m3rciful/mediareq/core/telegram"
	"github.com/m3rciful/mediareq/core/telegram/callbacks"
	"github.com/m3rciful/mediareq/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CallbackRoute routes every callback query through the registry by the
// button's unique key. The query is acknowledged before the handler runs.
func CallbackRoute(reg *tg.Registry) tg.Route {
	handler := func(c tele.Context) error {
		if c.Callback() == nil {
			return nil
		}
		key, _ := callbacks.Parse(c)
		name := "callback." + normalizeHandlerName(key)

		cbHandler, ok := reg.GetCallback(key)
		if !ok {
			return handle(c, name, func() error {
				return reg.CallbackNotFound()(c)
			}, slog.String("cb_key", key), slog.String("reason", "not_found"))
		}

		_ = c.Respond()
		return handle(c, name, func() error {
			return cbHandler(c)
		}, slog.String("cb_key", key))
	}
	return tg.Route{
		Endpoint: tele.OnCallback,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
	}
}

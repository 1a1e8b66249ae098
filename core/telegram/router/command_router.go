package router

import (
	"context"
	"log/slog"

	"github.com/m3rciful/mediareq/core/logger"
	tg "github.com/m3rciful/mediareq/core/telegram"
	"github.com/m3rciful/mediareq/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CommandRoutes prepares a route per registered command and alias. Restricted
// commands are guarded by access.
func CommandRoutes(reg *tg.Registry, access middleware.AccessOptions) []tg.Route {
	if reg == nil {
		return nil
	}
	restrict := middleware.RestrictedMiddleware(access)

	cmds := reg.Commands()
	routes := make([]tg.Route, 0, len(cmds))
	for name, def := range cmds {
		name, def := name, def
		h := func(c tele.Context) error {
			return handle(c, normalizeHandlerName(name), func() error { return def.Handler(c) })
		}
		if def.Restricted {
			h = restrict(h)
		}
		h = middleware.RecoverMiddleware(middleware.LoggerMiddleware(h))

		routes = append(routes, tg.Route{Endpoint: name, Handler: h})
		for _, alias := range def.Aliases {
			if alias != "" && alias[0] != '/' {
				alias = "/" + alias
			}
			routes = append(routes, tg.Route{Endpoint: alias, Handler: h})
		}
	}

	logger.Info(context.Background(), "tg.wire", "routes.commands",
		slog.Int("commands", len(cmds)),
		slog.Int("callbacks", len(reg.ListCallbacks())),
	)
	return routes
}

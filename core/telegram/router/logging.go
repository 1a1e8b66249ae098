package router

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/m3rciful/mediareq/core/logger"
	tghelpers "github.com/m3rciful/mediareq/core/telegram/helpers"
	"github.com/m3rciful/mediareq/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// handle runs fn under handlerName and logs one summary line for it.
func handle(c tele.Context, handlerName string, fn func() error, extras ...slog.Attr) error {
	start := time.Now()
	ctx := tghelpers.WithHandler(c, handlerName)
	err := fn()

	msgs, kb := middleware.GetCounters(c)
	status, outcome := "ok", "ok"
	if err != nil {
		status, outcome = "fail", "fail"
	}
	attrs := []slog.Attr{
		slog.String("status", status),
		slog.String("handler", handlerName),
		slog.String("outcome", outcome),
		slog.Int("messages", msgs),
		slog.Bool("kb", kb),
		slog.Duration("duration", logger.Took(start)),
	}
	if err != nil {
		attrs = append(attrs,
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			slog.String("err_code", errorCode(err)),
		)
	}
	attrs = append(attrs, extras...)
	logger.LogEvent(ctx, logger.Component("tg"), slog.LevelInfo, "handler.handled", attrs...)
	return err
}

func normalizeHandlerName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "unknown"
	}
	name = strings.TrimPrefix(name, "/")
	name = strings.ReplaceAll(name, " ", "_")
	return strings.ToLower(name)
}

func errorCode(err error) string {
	var apiErr *tele.Error
	if errors.As(err, &apiErr) {
		return "TELEGRAM_API"
	}
	return "HANDLER_ERROR"
}

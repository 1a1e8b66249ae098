package helpers

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/m3rciful/mediareq/core/logger"
	"github.com/m3rciful/mediareq/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var globalDispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher wires the asynchronous sender used by helper functions.
// With no dispatcher set, helpers call Telegram synchronously.
func SetDispatcher(d *sender.Dispatcher) {
	globalDispatcher.Store(d)
}

func sendAsync(c tele.Context, action, endpoint string, run func() error) error {
	disp := globalDispatcher.Load()
	if disp == nil {
		return run()
	}

	ctx := BuildContext(c)
	err := disp.Enqueue(ctx, action, endpoint, run)
	if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
		logger.Warn(ctx, "tg.sender", "queue.fallback",
			slog.String("action", action),
			slog.String("endpoint", endpoint),
			slog.String("err", err.Error()),
		)
		return run()
	}
	return err
}

func firstMarkup(markup []*tele.ReplyMarkup) *tele.ReplyMarkup {
	if len(markup) > 0 {
		return markup[0]
	}
	return nil
}

// SendText sends plain text with optional reply markup.
func SendText(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	opts := &tele.SendOptions{ReplyMarkup: firstMarkup(markup)}
	return sendAsync(c, "send.text", "sendMessage", func() error {
		return c.Send(text, opts)
	})
}

// SendMD sends a Markdown message with optional reply markup.
func SendMD(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	opts := &tele.SendOptions{ParseMode: tele.ModeMarkdown, ReplyMarkup: firstMarkup(markup)}
	return sendAsync(c, "send.md", "sendMessage", func() error {
		return c.Send(text, opts)
	})
}

// SendPhoto sends a photo with its caption and optional reply markup.
func SendPhoto(c tele.Context, photo *tele.Photo, markup ...*tele.ReplyMarkup) error {
	opts := &tele.SendOptions{ParseMode: tele.ModeMarkdown, ReplyMarkup: firstMarkup(markup)}
	return sendAsync(c, "send.photo", "sendPhoto", func() error {
		return c.Send(photo, opts)
	})
}

// EditText replaces the text of the message the callback came from.
func EditText(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	opts := &tele.SendOptions{ReplyMarkup: firstMarkup(markup)}
	return sendAsync(c, "edit.text", "editMessageText", func() error {
		return c.Edit(text, opts)
	})
}

// EditMD replaces the text of the callback's message with Markdown text.
func EditMD(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	opts := &tele.SendOptions{ParseMode: tele.ModeMarkdown, ReplyMarkup: firstMarkup(markup)}
	return sendAsync(c, "edit.md", "editMessageText", func() error {
		return c.Edit(text, opts)
	})
}

// EditPhoto swaps the media of the callback's message for photo.
func EditPhoto(c tele.Context, photo *tele.Photo, markup ...*tele.ReplyMarkup) error {
	opts := &tele.SendOptions{ParseMode: tele.ModeMarkdown, ReplyMarkup: firstMarkup(markup)}
	return sendAsync(c, "edit.photo", "editMessageMedia", func() error {
		return c.Edit(photo, opts)
	})
}

// EditCaption replaces the caption of the callback's message and drops its keyboard.
func EditCaption(c tele.Context, caption string) error {
	return sendAsync(c, "edit.caption", "editMessageCaption", func() error {
		return c.EditCaption(caption, &tele.SendOptions{ParseMode: tele.ModeMarkdown})
	})
}

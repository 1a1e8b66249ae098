// Package callbacks decodes inline button data delivered with callback queries.
package callbacks

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Split separates raw callback data into the button's unique key and payload.
// Telebot encodes data for buttons created with a unique key as "\f<unique>|<payload>".
// Data without the leading "\f" is treated as a bare payload.
func Split(raw string) (unique, payload string) {
	rest, ok := strings.CutPrefix(raw, "\f")
	if !ok {
		return "", raw
	}
	unique, payload, _ = strings.Cut(rest, "|")
	return unique, payload
}

// Parse returns the unique key and payload of the update's callback, if any.
// Telebot fills Callback.Unique only when a handler was registered for the button
// itself, so the raw data is split whenever it is empty.
func Parse(c tele.Context) (unique, payload string) {
	cb := c.Callback()
	if cb == nil {
		return "", ""
	}
	if cb.Unique != "" {
		return cb.Unique, cb.Data
	}
	return Split(cb.Data)
}

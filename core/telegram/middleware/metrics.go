package middleware

import (
	"sync/atomic"

	tele "gopkg.in/telebot.v4"
)

const countersKey = "reply_counters"

type counters struct {
	messages atomic.Int64
	keyboard atomic.Bool
}

// metricsContext wraps tele.Context to count outbound messages and keyboard usage.
type metricsContext struct {
	tele.Context
	n *counters
}

func (m metricsContext) track(err error, opts []interface{}) error {
	if err != nil {
		return err
	}
	m.n.messages.Add(1)
	if hasKeyboard(opts) {
		m.n.keyboard.Store(true)
	}
	return nil
}

func hasKeyboard(opts []interface{}) bool {
	for _, o := range opts {
		switch v := o.(type) {
		case *tele.SendOptions:
			if v != nil && v.ReplyMarkup != nil {
				return true
			}
		case *tele.ReplyMarkup:
			if v != nil {
				return true
			}
		}
	}
	return false
}

func (m metricsContext) Send(what interface{}, opts ...interface{}) error {
	return m.track(m.Context.Send(what, opts...), opts)
}

func (m metricsContext) Reply(what interface{}, opts ...interface{}) error {
	return m.track(m.Context.Reply(what, opts...), opts)
}

func (m metricsContext) Edit(what interface{}, opts ...interface{}) error {
	return m.track(m.Context.Edit(what, opts...), opts)
}

func (m metricsContext) EditCaption(caption string, opts ...interface{}) error {
	return m.track(m.Context.EditCaption(caption, opts...), opts)
}

// MessageMetricsMiddleware counts the replies each handler produces.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		n := &counters{}
		c.Set(countersKey, n)
		return next(metricsContext{Context: c, n: n})
	}
}

// GetCounters returns how many messages were sent or edited for the update so
// far and whether any of them carried a keyboard.
func GetCounters(c tele.Context) (int, bool) {
	n, ok := c.Get(countersKey).(*counters)
	if !ok {
		return 0, false
	}
	return int(n.messages.Load()), n.keyboard.Load()
}

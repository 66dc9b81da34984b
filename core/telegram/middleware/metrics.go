package middleware

import (
	"sync/atomic"

	tele "gopkg.in/telebot.v4"
)

const countersKey = "msg_counters"

type counters struct {
	messages atomic.Int32
	kb       atomic.Bool
}

// metricsContext wraps tele.Context to count outgoing messages and detect keyboard usage.
// Sends may run on dispatcher workers, so the counters are atomic.
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
		m.n.kb.Store(true)
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

// Send proxies tele.Context.Send while updating message counters.
func (m metricsContext) Send(what interface{}, opts ...interface{}) error {
	return m.track(m.Context.Send(what, opts...), opts)
}

// Reply proxies tele.Context.Reply while updating message counters.
func (m metricsContext) Reply(what interface{}, opts ...interface{}) error {
	return m.track(m.Context.Reply(what, opts...), opts)
}

// Edit proxies tele.Context.Edit; edits count as responses.
func (m metricsContext) Edit(what interface{}, opts ...interface{}) error {
	return m.track(m.Context.Edit(what, opts...), opts)
}

// MessageMetricsMiddleware instruments the context to track message count and keyboard usage.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		n := &counters{}
		c.Set(countersKey, n)
		return next(metricsContext{Context: c, n: n})
	}
}

// GetCounters reads the message count and keyboard flag recorded so far.
func GetCounters(c tele.Context) (int, bool) {
	n, ok := c.Get(countersKey).(*counters)
	if !ok || n == nil {
		return 0, false
	}
	return int(n.messages.Load()), n.kb.Load()
}

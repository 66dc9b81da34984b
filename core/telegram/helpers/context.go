package helpers

import (
	"context"

	"github.com/m3rciful/codegate/core/logger"

	tele "gopkg.in/telebot.v4"
)

// requestKey stores the per-update request state inside tele.Context.
const requestKey = "codegate.request"

// request carries what handlers and middlewares share while one update is processed.
type request struct {
	ctx     context.Context
	outcome string
}

func requestOf(c tele.Context, create bool) *request {
	if c == nil {
		return nil
	}
	if r, ok := c.Get(requestKey).(*request); ok {
		return r
	}
	if !create {
		return nil
	}
	r := &request{}
	c.Set(requestKey, r)
	return r
}

// StoreContext remembers ctx for the rest of the update.
func StoreContext(c tele.Context, ctx context.Context) {
	if ctx == nil {
		return
	}
	if r := requestOf(c, true); r != nil {
		r.ctx = ctx
	}
}

// ContextFrom returns the context stored by StoreContext.
func ContextFrom(c tele.Context) (context.Context, bool) {
	r := requestOf(c, false)
	if r == nil || r.ctx == nil {
		return nil, false
	}
	return r.ctx, true
}

// BuildContext returns the update context, deriving it on first use from the
// update, sender and chat so every log line of the update shares one rid.
func BuildContext(c tele.Context) context.Context {
	if ctx, ok := ContextFrom(c); ok {
		return ctx
	}
	var chatID, userID int64
	if chat := c.Chat(); chat != nil {
		chatID = chat.ID
	}
	if user := c.Sender(); user != nil {
		userID = user.ID
	}
	updateID := c.Update().ID

	rid, _ := c.Get("rid").(string)
	if rid == "" {
		rid = logger.BuildRID(updateID, chatID, userID)
	}
	ctx := logger.WithUpdateMeta(logger.WithRID(context.Background(), rid), updateID, userID, chatID)
	ctx = logger.WithLogger(ctx, logger.TG)
	StoreContext(c, ctx)
	return ctx
}

// WithHandler tags the update context with the routed handler name.
func WithHandler(c tele.Context, handler string) context.Context {
	ctx := BuildContext(c)
	if handler != "" {
		ctx = logger.WithHandler(ctx, handler)
		StoreContext(c, ctx)
	}
	return ctx
}

// SetOutcome records the domain result reported in the handler summary line.
func SetOutcome(c tele.Context, outcome string) {
	if outcome == "" {
		return
	}
	if r := requestOf(c, true); r != nil {
		r.outcome = outcome
	}
}

// OutcomeFrom returns the value passed to SetOutcome, or "".
func OutcomeFrom(c tele.Context) string {
	if r := requestOf(c, false); r != nil {
		return r.outcome
	}
	return ""
}

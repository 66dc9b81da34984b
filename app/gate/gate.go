// Package gate decides whether a submitted code is delivered, deferred until the
// user joins the required channel, or rejected.
package gate

import (
	"context"
	"log/slog"

	"github.com/m3rciful/codegate/app/code"
	"github.com/m3rciful/codegate/app/events"
	"github.com/m3rciful/codegate/core/logger"
	"github.com/m3rciful/codegate/core/telegram/state"
)

// PendingKey is the session key holding the last code submitted by a non-member.
const PendingKey = "pending_code"

// Kind enumerates gate outcomes.
type Kind int

const (
	InvalidCode Kind = iota + 1
	SubscribeRequired
	NotFound
	Delivered
	NoPending
)

// String returns the outcome name used in handler summaries.
func (k Kind) String() string {
	switch k {
	case InvalidCode:
		return "invalid_code"
	case SubscribeRequired:
		return "subscribe_required"
	case NotFound:
		return "not_found"
	case Delivered:
		return "delivered"
	case NoPending:
		return "no_pending"
	}
	return "unknown"
}

// Result is what the bot layer renders. Handle is set only for Delivered.
// Cause is set when NotFound was caused by a storage failure rather than absence.
type Result struct {
	Kind   Kind
	Code   string
	Handle string
	Cause  error
}

// Registry resolves codes to media handles.
type Registry interface {
	Get(ctx context.Context, code string) (string, bool, error)
}

// Oracle answers channel membership; it never returns an error.
type Oracle interface {
	IsMember(ctx context.Context, userID int64) bool
}

// Gate is safe for concurrent use; all per-user state lives in the session store.
type Gate struct {
	registry Registry
	oracle   Oracle
	sessions state.Store
	events   events.Publisher
}

// New wires a Gate. A nil publisher disables audit events.
func New(reg Registry, oracle Oracle, sessions state.Store, pub events.Publisher) *Gate {
	if pub == nil {
		pub = events.NoopPublisher{}
	}
	return &Gate{registry: reg, oracle: oracle, sessions: sessions, events: pub}
}

// Submit handles a code typed by the user.
func (g *Gate) Submit(ctx context.Context, userID int64, text string) Result {
	c := code.Normalize(text)
	if c == "" {
		return Result{Kind: InvalidCode}
	}
	if !g.oracle.IsMember(ctx, userID) {
		g.savePending(ctx, userID, c)
		events.Emit(ctx, g.events, events.TopicAccessDenied, userID, c, "")
		return Result{Kind: SubscribeRequired, Code: c}
	}
	return g.lookup(ctx, userID, c)
}

// Recheck re-runs the membership and existence checks for the pending code.
// The pending code is used as stored; it is never normalized again.
func (g *Gate) Recheck(ctx context.Context, userID int64) Result {
	c, ok := g.loadPending(ctx, userID)
	if !ok {
		return Result{Kind: NoPending}
	}
	if !g.oracle.IsMember(ctx, userID) {
		events.Emit(ctx, g.events, events.TopicAccessDenied, userID, c, "")
		return Result{Kind: SubscribeRequired, Code: c}
	}
	return g.lookup(ctx, userID, c)
}

func (g *Gate) lookup(ctx context.Context, userID int64, c string) Result {
	handle, found, err := g.registry.Get(ctx, c)
	if err != nil {
		logger.Error(ctx, "gate", "lookup.storage_failure",
			slog.String("status", "fail"),
			slog.String("code", c),
			slog.String("err", err.Error()),
		)
		return Result{Kind: NotFound, Code: c, Cause: err}
	}
	if !found {
		return Result{Kind: NotFound, Code: c}
	}
	events.Emit(ctx, g.events, events.TopicMediaDelivered, userID, c, handle)
	return Result{Kind: Delivered, Code: c, Handle: handle}
}

func (g *Gate) savePending(ctx context.Context, userID int64, c string) {
	if err := g.sessions.Set(ctx, userID, PendingKey, c); err != nil {
		logger.Warn(ctx, "gate", "pending.save_failed",
			slog.String("status", "fail"),
			slog.String("code", c),
			slog.String("err", err.Error()),
		)
	}
}

func (g *Gate) loadPending(ctx context.Context, userID int64) (string, bool) {
	c, ok, err := g.sessions.Get(ctx, userID, PendingKey)
	if err != nil {
		logger.Warn(ctx, "gate", "pending.load_failed",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return "", false
	}
	if !ok || c == "" {
		return "", false
	}
	return c, true
}

// Package binder lets allow-listed admins attach uploaded media to codes.
package binder

import (
	"context"
	"log/slog"
	"strings"

	"github.com/m3rciful/codegate/app/code"
	"github.com/m3rciful/codegate/app/events"
	"github.com/m3rciful/codegate/app/registry"
	"github.com/m3rciful/codegate/core/logger"
	"github.com/m3rciful/codegate/core/telegram/state"
)

// StagedKey is the session key holding an admin's last uploaded media handle.
const StagedKey = "staged_upload"

// Kind enumerates binder outcomes.
type Kind int

const (
	Ignored Kind = iota + 1
	Staged
	Unauthorized
	Usage
	InvalidArgument
	NothingStaged
	Bound
	StorageFailed
)

func (k Kind) String() string {
	switch k {
	case Ignored:
		return "ignored"
	case Staged:
		return "staged"
	case Unauthorized:
		return "unauthorized"
	case Usage:
		return "usage"
	case InvalidArgument:
		return "invalid_argument"
	case NothingStaged:
		return "nothing_staged"
	case Bound:
		return "bound"
	case StorageFailed:
		return "storage_failed"
	}
	return "unknown"
}

// Silent reports whether the bot must not reply at all.
func (k Kind) Silent() bool {
	return k == Ignored || k == Unauthorized
}

// Result carries the outcome plus the values the reply needs.
type Result struct {
	Kind   Kind
	Code   string
	Handle string
	Cause  error
}

// AllowList is an immutable set of admin user ids.
type AllowList struct {
	ids map[int64]struct{}
}

func NewAllowList(ids []int64) AllowList {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return AllowList{ids: set}
}

func (a AllowList) Contains(userID int64) bool {
	_, ok := a.ids[userID]
	return ok
}

// Len returns the number of admins.
func (a AllowList) Len() int { return len(a.ids) }

// Writer stores code bindings.
type Writer interface {
	Upsert(ctx context.Context, e registry.Entry) error
}

type Binder struct {
	admins   AllowList
	registry Writer
	sessions state.Store
	events   events.Publisher
}

// New wires a Binder. A nil publisher disables audit events.
func New(admins AllowList, reg Writer, sessions state.Store, pub events.Publisher) *Binder {
	if pub == nil {
		pub = events.NoopPublisher{}
	}
	return &Binder{admins: admins, registry: reg, sessions: sessions, events: pub}
}

// IsAdmin reports whether userID may stage and bind media.
func (b *Binder) IsAdmin(userID int64) bool {
	return b.admins.Contains(userID)
}

// Stage records handle as the admin's pending upload, replacing any earlier one.
func (b *Binder) Stage(ctx context.Context, userID int64, handle string) Result {
	if !b.admins.Contains(userID) || handle == "" {
		return Result{Kind: Ignored}
	}
	if err := b.sessions.Set(ctx, userID, StagedKey, handle); err != nil {
		logger.Warn(ctx, "binder", "stage.save_failed",
			slog.String("status", "fail"),
			slog.String("handle", handle),
			slog.String("err", err.Error()),
		)
		return Result{Kind: StorageFailed, Handle: handle, Cause: err}
	}
	return Result{Kind: Staged, Handle: handle}
}

// Bind attaches the staged upload to the code typed by the admin.
// The argument is only trimmed; it must already be all digits.
func (b *Binder) Bind(ctx context.Context, adminID int64, args string) Result {
	if !b.admins.Contains(adminID) {
		return Result{Kind: Unauthorized}
	}
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return Result{Kind: Usage}
	}
	c := fields[0]
	if !code.IsDigits(c) {
		return Result{Kind: InvalidArgument, Code: c}
	}

	handle, ok, err := b.sessions.Get(ctx, adminID, StagedKey)
	if err != nil {
		logger.Warn(ctx, "binder", "stage.load_failed",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
	}
	if !ok || handle == "" {
		return Result{Kind: NothingStaged, Code: c}
	}

	entry := registry.Entry{Code: c, Handle: handle, BoundBy: adminID}
	if err := b.registry.Upsert(ctx, entry); err != nil {
		logger.Error(ctx, "binder", "bind.storage_failure",
			slog.String("status", "fail"),
			slog.String("code", c),
			slog.String("handle", handle),
			slog.String("err", err.Error()),
		)
		return Result{Kind: StorageFailed, Code: c, Handle: handle, Cause: err}
	}

	if err := b.sessions.Clear(ctx, adminID, StagedKey); err != nil {
		logger.Warn(ctx, "binder", "stage.clear_failed", slog.String("err", err.Error()))
	}
	logger.Info(ctx, "binder", "bind.bound",
		slog.String("status", "ok"),
		slog.String("code", c),
		slog.String("handle", handle),
	)
	events.Emit(ctx, b.events, events.TopicMediaBound, adminID, c, handle)
	return Result{Kind: Bound, Code: c, Handle: handle}
}

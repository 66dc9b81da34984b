// Package events publishes audit events for deliveries, prompts and binds.
package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/m3rciful/codegate/core/logger"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// Event topics.
const (
	TopicMediaDelivered = "codegate.media.delivered"
	TopicAccessDenied   = "codegate.access.denied"
	TopicMediaBound     = "codegate.media.bound"

	// TopicAll matches every codegate topic.
	TopicAll = "codegate.>"
)

const (
	idPrefix   = "ev-"
	idAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	idLength   = 12
)

// Event is the envelope sent for every topic.
type Event struct {
	ID     string    `json:"id"`
	Topic  string    `json:"topic"`
	At     time.Time `json:"at"`
	UserID int64     `json:"user_id"`
	Code   string    `json:"code"`
	Handle string    `json:"handle,omitempty"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, ev Event) error
	Close() error
}

// NewID returns a fresh event id.
func NewID() (string, error) {
	id, err := nanoid.Generate(idAlphabet, idLength)
	if err != nil {
		return "", fmt.Errorf("events: %w", err)
	}
	return idPrefix + id, nil
}

// Emit fills the envelope and publishes it. Failures are logged and swallowed.
func Emit(ctx context.Context, pub Publisher, topic string, userID int64, code, handle string) {
	if pub == nil {
		return
	}
	id, err := NewID()
	if err != nil {
		logger.Warn(ctx, "events", "events.id_failed", slog.String("topic", topic), slog.String("err", err.Error()))
		return
	}
	ev := Event{
		ID:     id,
		Topic:  topic,
		At:     time.Now().UTC(),
		UserID: userID,
		Code:   code,
		Handle: handle,
	}
	if err := pub.Publish(ctx, topic, ev); err != nil {
		logger.Warn(ctx, "events", "events.publish_failed",
			slog.String("status", "fail"),
			slog.String("topic", topic),
			slog.String("event_id", id),
			slog.String("err", err.Error()),
		)
		return
	}
	logger.Debug(ctx, "events", "events.published",
		slog.String("topic", topic),
		slog.String("event_id", id),
	)
}

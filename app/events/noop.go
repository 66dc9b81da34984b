package events

import "context"

// NoopPublisher drops every event. Used when no NATS url is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, Event) error { return nil }

func (NoopPublisher) Close() error { return nil }

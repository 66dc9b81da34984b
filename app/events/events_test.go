package events

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
)

// startTestNATS starts an embedded NATS server and returns its client URL.
func startTestNATS(t *testing.T) string {
	t.Helper()
	opts := &natsserver.Options{Host: "127.0.0.1", Port: -1}
	srv, err := natsserver.NewServer(opts)
	if err != nil {
		t.Fatalf("starting embedded NATS: %v", err)
	}
	srv.Start()
	t.Cleanup(srv.Shutdown)
	if !srv.ReadyForConnections(5 * time.Second) {
		t.Fatal("embedded NATS not ready")
	}
	return srv.ClientURL()
}

func TestNewID(t *testing.T) {
	a, err := NewID()
	if err != nil {
		t.Fatalf("NewID: %v", err)
	}
	b, _ := NewID()
	if !strings.HasPrefix(a, "ev-") || len(a) != len("ev-")+idLength {
		t.Fatalf("unexpected id %q", a)
	}
	if a == b {
		t.Fatalf("ids collide: %q", a)
	}
}

func TestEmitDeliversEnvelope(t *testing.T) {
	url := startTestNATS(t)

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	defer pub.Close()

	sub, err := NewSubscriber(url)
	if err != nil {
		t.Fatalf("creating subscriber: %v", err)
	}
	defer sub.Close()

	ch, cancel, err := sub.Subscribe(TopicAll)
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	defer cancel()

	Emit(context.Background(), pub, TopicMediaDelivered, 42, "345623", "FILE1")
	if err := pub.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	select {
	case ev := <-ch:
		if ev.Topic != TopicMediaDelivered || ev.UserID != 42 || ev.Code != "345623" || ev.Handle != "FILE1" {
			t.Fatalf("unexpected event %+v", ev)
		}
		if !strings.HasPrefix(ev.ID, "ev-") || ev.At.IsZero() {
			t.Fatalf("envelope not filled: %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestSubscribeCancelClosesChannel(t *testing.T) {
	url := startTestNATS(t)
	sub, err := NewSubscriber(url)
	if err != nil {
		t.Fatalf("creating subscriber: %v", err)
	}
	defer sub.Close()

	ch, cancel, err := sub.Subscribe(TopicAll)
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	cancel()
	cancel()
	if _, ok := <-ch; ok {
		t.Fatal("channel should be closed")
	}
}

func TestOpenWithoutURLIsNoop(t *testing.T) {
	pub, err := Open("  ")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, ok := pub.(NoopPublisher); !ok {
		t.Fatalf("expected NoopPublisher, got %T", pub)
	}
	if err := pub.Publish(context.Background(), TopicMediaBound, Event{}); err != nil {
		t.Fatalf("noop publish: %v", err)
	}
}

type failingPublisher struct{ calls int }

func (f *failingPublisher) Publish(context.Context, string, Event) error {
	f.calls++
	return errors.New("nats: connection closed")
}

func (f *failingPublisher) Close() error { return nil }

func TestEmitSwallowsFailures(t *testing.T) {
	pub := &failingPublisher{}
	Emit(context.Background(), pub, TopicAccessDenied, 1, "5", "")
	if pub.calls != 1 {
		t.Fatalf("calls = %d", pub.calls)
	}
	Emit(context.Background(), nil, TopicAccessDenied, 1, "5", "")
}

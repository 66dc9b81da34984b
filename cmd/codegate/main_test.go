package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/m3rciful/codegate/app/events"
	"github.com/m3rciful/codegate/core/buildinfo"
)

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)
	if !strings.Contains(out.String(), buildinfo.Version) {
		t.Fatalf("version output = %q", out.String())
	}
}

func TestResolveConfigPathPrefersFlag(t *testing.T) {
	t.Setenv("CONFIG_PATH", "env.yaml")
	configPath = "flag.yaml"
	t.Cleanup(func() { configPath = "" })
	got, err := resolveConfigPath()
	if err != nil || got != "flag.yaml" {
		t.Fatalf("resolveConfigPath = %q, %v", got, err)
	}
}

func TestResolveConfigPathDefault(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	got, err := resolveConfigPath()
	if err != nil || got != defaultConfigPath {
		t.Fatalf("resolveConfigPath = %q, %v", got, err)
	}
}

func TestPrintEventsStopsWhenChannelCloses(t *testing.T) {
	ch := make(chan events.Event, 2)
	ch <- events.Event{ID: "ev-1", Topic: events.TopicMediaBound, At: time.Unix(0, 0).UTC(), UserID: 9, Code: "5", Handle: "V9"}
	close(ch)

	var out bytes.Buffer
	if err := printEvents(make(chan struct{}), ch, &out); err != nil {
		t.Fatalf("printEvents: %v", err)
	}
	var ev events.Event
	if err := json.Unmarshal(out.Bytes(), &ev); err != nil {
		t.Fatalf("decode %q: %v", out.String(), err)
	}
	if ev.ID != "ev-1" || ev.Handle != "V9" {
		t.Fatalf("event = %+v", ev)
	}
}

func TestSubcommandsRegistered(t *testing.T) {
	for _, name := range []string{"serve", "migrate", "events", "version"} {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Fatalf("subcommand %q not found: %v", name, err)
		}
	}
}

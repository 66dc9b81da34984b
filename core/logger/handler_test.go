package logger

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"log/slog"
)

func TestStructuredHandlerKVOrder(t *testing.T) {
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	handler := newStructuredHandler(handlerConfig{
		level:    slog.LevelInfo,
		writer:   aw,
		format:   formatKV,
		keyOrder: append([]string(nil), defaultKeyOrder...),
	})
	ctx := WithRID(Background(), "rid-123")
	ctx = WithUpdateMeta(ctx, 42, 7, 9)

	log := slog.New(handler).With("component", "app")
	LogEvent(ctx, log, slog.LevelInfo, "test.event",
		slog.String("status", "ok"),
		slog.String("cause", "unit"),
	)
	if err := aw.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := aw.Close(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatal("expected log line")
	}
	tokens := strings.Split(line, " ")
	if len(tokens) < 6 {
		t.Fatalf("unexpected token count: %d (%s)", len(tokens), line)
	}
	expected := []string{"ts=", "level=INFO", "component=app", "event=test.event", "status=ok", "rid=rid-123"}
	for i, prefix := range expected {
		if !strings.HasPrefix(tokens[i], prefix) {
			t.Fatalf("token %d = %s, expected prefix %s", i, tokens[i], prefix)
		}
	}
}

func TestStructuredHandlerJSONOrder(t *testing.T) {
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	handler := newStructuredHandler(handlerConfig{
		level:    slog.LevelInfo,
		writer:   aw,
		format:   formatJSON,
		keyOrder: append([]string(nil), defaultKeyOrder...),
	})
	ctx := WithRID(Background(), "rid-json")
	ctx = WithUpdateMeta(ctx, 11, 22, 33)

	log := slog.New(handler).With("component", "service.test")
	LogEvent(ctx, log, slog.LevelError, "service.failed",
		slog.String("status", "fail"),
		slog.String("err", "boom"),
		slog.String("err_code", "TEST_FAIL"),
	)
	if err := aw.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := aw.Close(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	line := strings.TrimSpace(buf.String())
	if !strings.HasPrefix(line, "{") {
		t.Fatalf("expected JSON, got %s", line)
	}
	prefixes := []string{`{"ts":`, `"level":"ERROR"`, `"component":"service.test"`, `"event":"service.failed"`, `"status":"fail"`, `"rid":"rid-json"`}
	pos := -1
	for _, pref := range prefixes {
		idx := strings.Index(line, pref)
		if idx == -1 || idx < pos {
			t.Fatalf("prefix %s not found in order within %s", pref, line)
		}
		pos = idx
	}
}

func TestStructuredHandlerCompactRID(t *testing.T) {
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	handler := newStructuredHandler(handlerConfig{
		level:    slog.LevelInfo,
		writer:   aw,
		format:   formatKV,
		keyOrder: append([]string(nil), defaultKeyOrder...),
	})
	rawRID := "123:456:789"
	ctx := WithRID(Background(), rawRID)
	log := slog.New(handler).With("component", "app")
	LogEvent(ctx, log, slog.LevelInfo, "rid.test",
		slog.String("status", "ok"),
	)
	if err := aw.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := aw.Close(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	line := strings.TrimSpace(buf.String())
	if !strings.Contains(line, "rid="+CompactRID(rawRID)) {
		t.Fatalf("expected compact rid, got %s", line)
	}
	if strings.Contains(line, "rid_full=") {
		t.Fatalf("rid_full should be omitted in KV output, got %s", line)
	}
}

func TestStructuredHandlerCompactRIDJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	handler := newStructuredHandler(handlerConfig{
		level:    slog.LevelInfo,
		writer:   aw,
		format:   formatJSON,
		keyOrder: append([]string(nil), defaultKeyOrder...),
	})
	rawRID := "12:34:56"
	ctx := WithRID(Background(), rawRID)
	log := slog.New(handler).With("component", "app")
	LogEvent(ctx, log, slog.LevelInfo, "rid.test",
		slog.String("status", "ok"),
	)
	if err := aw.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := aw.Close(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	line := strings.TrimSpace(buf.String())
	if !strings.Contains(line, `"rid":"`+CompactRID(rawRID)+`"`) {
		t.Fatalf("expected compact rid in JSON, got %s", line)
	}
	if !strings.Contains(line, `"rid_full":"`+rawRID+`"`) {
		t.Fatalf("expected rid_full in JSON output, got %s", line)
	}
	if !strings.Contains(line, `"ts_unix_nano"`) {
		t.Fatalf("expected ts_unix_nano to be present in JSON output, got %s", line)
	}
}

func TestStructuredHandlerOutcomeEnumeration(t *testing.T) {
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	handler := newStructuredHandler(handlerConfig{
		level:  slog.LevelInfo,
		writer: aw,
		format: formatKV,
	})
	log := slog.New(handler).With("component", "gate")
	LogEvent(Background(), log, slog.LevelInfo, "gate.submit", slog.String("outcome", "Subscribe_Required"))
	LogEvent(Background(), log, slog.LevelInfo, "gate.submit", slog.String("outcome", "bogus"))
	if err := aw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "outcome=subscribe_required") {
		t.Fatalf("expected normalized outcome, got %s", lines[0])
	}
	if strings.Contains(lines[1], "outcome=") {
		t.Fatalf("unknown outcome should be dropped, got %s", lines[1])
	}
}

func TestDurationKey(t *testing.T) {
	cases := map[string]string{
		"duration":       "duration_ms",
		"query_duration": "query_duration_ms",
		"backoff_ms":     "backoff_ms",
		"ttl":            "ttl_ms",
	}
	for in, want := range cases {
		if got := durationKey(in); got != want {
			t.Fatalf("durationKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSanitizeLimit(t *testing.T) {
	if got := Sanitize("a\x00b​c\n"); got != "abc\n" {
		t.Fatalf("Sanitize = %q", got)
	}
	if got := SanitizeLimit("привет", 3); got != "при" {
		t.Fatalf("SanitizeLimit = %q", got)
	}
	if got := SanitizeLimit("abc", 0); got != "" {
		t.Fatalf("SanitizeLimit with zero max = %q", got)
	}
}

func TestCompactRIDUnexpectedFormat(t *testing.T) {
	if got := CompactRID("rid-123"); got != "rid-123" {
		t.Fatalf("CompactRID = %q", got)
	}
	if got := CompactRID(BuildRID(35, 36, 1)); got != "z.10.1" {
		t.Fatalf("CompactRID = %q", got)
	}
}

func TestFromContextFallsBackToGlobal(t *testing.T) {
	if FromContext(nil) != L {
		t.Fatal("expected global logger for nil context")
	}
	custom := slog.New(slog.DiscardHandler)
	if FromContext(WithLogger(Background(), custom)) != custom {
		t.Fatal("expected logger stored in context")
	}
}

func TestStructuredHandlerRedactsSecrets(t *testing.T) {
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	r := &redactor{}
	r.add("123456:ABC-token", "pw")
	handler := newStructuredHandler(handlerConfig{
		level:  slog.LevelInfo,
		writer: aw,
		format: formatKV,
		redact: r.redact,
	})
	log := slog.New(handler).With("component", "tg")
	LogEvent(Background(), log, slog.LevelError, "bot.failed",
		slog.String("err", "GET https://api.telegram.org/bot123456:ABC-token/getMe: timeout"),
		slog.String("user", "pw"),
	)
	if err := aw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	line := buf.String()
	if strings.Contains(line, "ABC-token") {
		t.Fatalf("token leaked: %s", line)
	}
	if !strings.Contains(line, "bot***/getMe") {
		t.Fatalf("expected masked token, got %s", line)
	}
	if !strings.Contains(line, "user=pw") {
		t.Fatalf("short values must stay readable, got %s", line)
	}
}

func TestEventSamplerCountsPerEvent(t *testing.T) {
	s := newEventSampler(1, 3)
	var chatty, quiet int
	for range 9 {
		if s.Allow("chatty") {
			chatty++
		}
	}
	if s.Allow("quiet") {
		quiet++
	}
	if chatty != 3 {
		t.Fatalf("chatty allowed %d, want 3", chatty)
	}
	if quiet != 1 {
		t.Fatal("first quiet line should pass")
	}

	s.Set(0, 0)
	for range 5 {
		if !s.Allow("chatty") {
			t.Fatal("disabled sampler must allow everything")
		}
	}
}

func TestParseRatioSpec(t *testing.T) {
	cases := map[string][2]int{
		"1/50": {1, 50},
		" 2/5": {2, 5},
		"10":   {1, 10},
		"x/2":  {0, 0},
		"0":    {0, 0},
		"":     {0, 0},
	}
	for in, want := range cases {
		num, den := parseRatioSpec(in)
		if num != want[0] || den != want[1] {
			t.Fatalf("parseRatioSpec(%q) = %d/%d, want %d/%d", in, num, den, want[0], want[1])
		}
	}
}

type blockingSink struct {
	release chan struct{}
	buf     bytes.Buffer
}

func (b *blockingSink) Write(p []byte) (int, error) {
	<-b.release
	return b.buf.Write(p)
}

func TestAsyncWriterDropsOnFullQueue(t *testing.T) {
	sink := &blockingSink{release: make(chan struct{})}
	aw := newAsyncWriterQueue([]io.Writer{sink}, 16, 1)
	for range 10 {
		if err := aw.Write([]byte("line\n")); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if aw.Dropped() == 0 {
		t.Fatal("expected dropped lines while the sink is blocked")
	}
	close(sink.release)
	if err := aw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := aw.Write([]byte("late\n")); err != errWriterClosed {
		t.Fatalf("write after close = %v, want errWriterClosed", err)
	}
}

func TestAsyncWriterFlushDeliversQueued(t *testing.T) {
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	for range 3 {
		if err := aw.Write([]byte("x\n")); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := aw.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if got := strings.Count(buf.String(), "x\n"); got != 3 {
		t.Fatalf("flushed %d lines, want 3", got)
	}
	if err := aw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestSummarizeStrings(t *testing.T) {
	got, truncated := SummarizeStrings([]string{"a", "b"}, 3)
	if got != "a, b" || truncated {
		t.Fatalf("SummarizeStrings = %q, %v", got, truncated)
	}
	got, truncated = SummarizeStrings([]string{"a", "b", "c", "d"}, 2)
	if got != "a, b, +2" || !truncated {
		t.Fatalf("SummarizeStrings = %q, %v", got, truncated)
	}
}

func TestURLPassword(t *testing.T) {
	if got := urlPassword("redis://:s3cret@localhost:6379/0"); got != "s3cret" {
		t.Fatalf("urlPassword = %q", got)
	}
	if got := urlPassword("redis://localhost:6379"); got != "" {
		t.Fatalf("urlPassword without userinfo = %q", got)
	}
}

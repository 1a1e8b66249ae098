package logger

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func newTestLogger(t *testing.T, format logFormat) (*slog.Logger, func() string) {
	t.Helper()
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	h := newStructuredHandler(handlerConfig{
		level:  slog.LevelInfo,
		writer: aw,
		format: format,
	})
	return slog.New(h), func() string {
		if err := aw.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
		return strings.TrimSpace(buf.String())
	}
}

func TestStructuredHandlerKVOrder(t *testing.T) {
	log, output := newTestLogger(t, formatKV)
	ctx := WithUpdateMeta(WithRID(Background(), "rid-123"), 42, 7, 9)

	LogEvent(ctx, log.With("component", "conversation"), slog.LevelInfo, "transition",
		slog.String("from", "answering"),
		slog.String("status", "OK"),
	)

	tokens := strings.Split(output(), " ")
	expected := []string{"ts=", "level=INFO", "component=conversation", "event=transition", "status=ok", "rid=rid-123", "update_id=42", "user_id=7", "chat_id=9", "from=answering"}
	if len(tokens) < len(expected) {
		t.Fatalf("unexpected token count: %d (%v)", len(tokens), tokens)
	}
	for i, prefix := range expected {
		if !strings.HasPrefix(tokens[i], prefix) {
			t.Fatalf("token %d = %s, expected prefix %s", i, tokens[i], prefix)
		}
	}
}

func TestStructuredHandlerJSONCompactsRID(t *testing.T) {
	log, output := newTestLogger(t, formatJSON)
	rawRID := BuildRID(12, 34, 56)
	ctx := WithRID(Background(), rawRID)

	LogEvent(ctx, log.With("component", "service.media"), slog.LevelError, "search.fail",
		slog.String("err", "boom"),
	)

	line := output()
	ordered := []string{`{"ts":`, `"level":"ERROR"`, `"component":"service.media"`, `"event":"search.fail"`, `"rid":"` + CompactRID(rawRID) + `"`, `"rid_full":"12:34:56"`}
	pos := -1
	for _, pref := range ordered {
		idx := strings.Index(line, pref)
		if idx == -1 || idx < pos {
			t.Fatalf("prefix %s not found in order within %s", pref, line)
		}
		pos = idx
	}
}

func TestStructuredHandlerValueShapes(t *testing.T) {
	log, output := newTestLogger(t, formatKV)

	log.Info("", slog.String("event", "submit"),
		slog.Any("seasons", []int{1, 3}),
		slog.Duration("duration", 1499*time.Microsecond),
		slog.String("title", "Breaking Bad"),
		slog.String("outcome", "bogus"),
		slog.String("empty", ""),
	)

	line := output()
	for _, want := range []string{"seasons=1,3", "duration_ms=1", `title="Breaking Bad"`} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %s", want, line)
		}
	}
	for _, unwanted := range []string{"outcome=", "empty="} {
		if strings.Contains(line, unwanted) {
			t.Fatalf("did not expect %q in %s", unwanted, line)
		}
	}
}

func TestStructuredHandlerDropsBelowLevel(t *testing.T) {
	log, output := newTestLogger(t, formatKV)
	log.Debug("noise")
	if got := output(); got != "" {
		t.Fatalf("expected no output, got %s", got)
	}
}

func TestCompactRID(t *testing.T) {
	cases := map[string]string{
		"35:36:1":  "z.10.1",
		"bad":      "bad",
		"1:x:2":    "1:x:2",
		" 0:0:0 ":  "0.0.0",
		"1:2:3:4":  "1:2:3:4",
	}
	for in, want := range cases {
		if got := CompactRID(in); got != want {
			t.Errorf("CompactRID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRatioSampler(t *testing.T) {
	s := newRatioSampler(1, 3)
	var allowed int
	for i := 0; i < 9; i++ {
		if s.Allow() {
			allowed++
		}
	}
	if allowed != 3 {
		t.Fatalf("allowed = %d, want 3", allowed)
	}

	s.Set(0, 0)
	if !s.Allow() {
		t.Fatal("disabled sampler must allow everything")
	}

	for spec, want := range map[string][2]int{"2/5": {2, 5}, "10": {1, 10}, "x": {0, 0}, "0": {0, 0}} {
		n, d := parseRatioSpec(spec)
		if n != want[0] || d != want[1] {
			t.Errorf("parseRatioSpec(%q) = %d/%d, want %d/%d", spec, n, d, want[0], want[1])
		}
	}
}

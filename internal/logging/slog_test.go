package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func newTestLogger(t *testing.T) (*SlogLogger, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return NewSlogLogger(slog.New(h)), &buf
}

func TestSlogLogger_Levels_WriteExpectedOutput(t *testing.T) {
	log, buf := newTestLogger(t)
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", 2)
	log.Warn(ctx, "wrn", "c", 3)
	log.Error(ctx, "err", "d", 4)

	out := buf.String()

	tests := []struct {
		level string
		msg   string
		kv    string
	}{
		{"DEBUG", "dbg", "a=1"},
		{"INFO", "inf", "b=2"},
		{"WARN", "wrn", "c=3"},
		{"ERROR", "err", "d=4"},
	}

	for _, tc := range tests {
		for _, want := range []string{"level=" + tc.level, "msg=" + tc.msg, tc.kv} {
			if !strings.Contains(out, want) {
				t.Fatalf("expected %q in output:\n%s", want, out)
			}
		}
	}
}

func TestSlogLogger_With_AddsAttributes(t *testing.T) {
	log, buf := newTestLogger(t)

	log.With("module", "vault", "email", "a@x.com").Info(context.Background(), "taken", "k", "v")

	out := buf.String()
	for _, s := range []string{"level=INFO", "msg=taken", "module=vault", "email=a@x.com", "k=v"} {
		if !strings.Contains(out, s) {
			t.Fatalf("expected %q in output, got:\n%s", s, out)
		}
	}
}

func TestNew_JSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New("json", "warn", &buf)

	log.Info(context.Background(), "hidden")
	log.Warn(context.Background(), "shown", "n", 1)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line must be filtered at warn level:\n%s", out)
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"n":1`) {
		t.Fatalf("expected JSON warn line, got:\n%s", out)
	}
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	log := New("console", "debug", &buf)

	if _, ok := log.(*ZerologLogger); !ok {
		t.Fatalf("console format must select zerolog, got %T", log)
	}

	log.With("module", "http").Info(context.Background(), "listening", "addr", ":8080")

	out := buf.String()
	for _, s := range []string{"INF", "listening", "module=http", "addr=:8080"} {
		if !strings.Contains(out, s) {
			t.Fatalf("expected %q in output, got:\n%s", s, out)
		}
	}
}

func TestNop(t *testing.T) {
	var l Logger = Nop{}
	l.With("a", 1).Error(context.Background(), "ignored")
}

func TestWithAttrs_AppendsContextPairs(t *testing.T) {
	log, buf := newTestLogger(t)

	ctx := WithAttrs(context.Background(), "request_id", "r-1")
	ctx = WithAttrs(ctx, "uid", "u-7")
	log.Info(ctx, "served", "status", 200)

	out := buf.String()
	for _, s := range []string{"request_id=r-1", "uid=u-7", "status=200"} {
		if !strings.Contains(out, s) {
			t.Fatalf("expected %q in output, got:\n%s", s, out)
		}
	}
	if strings.Index(out, "request_id=") > strings.Index(out, "status=") {
		t.Fatalf("context pairs must precede call-site pairs:\n%s", out)
	}
}

func TestWithAttrs_ParentUnchanged(t *testing.T) {
	parent := WithAttrs(context.Background(), "a", 1)
	_ = WithAttrs(parent, "b", 2)

	if got := attrsFrom(parent); len(got) != 2 {
		t.Fatalf("parent context mutated: %v", got)
	}
	if WithAttrs(parent) != parent {
		t.Fatal("no pairs must return the same context")
	}
}

func TestWithAttrs_Console(t *testing.T) {
	var buf bytes.Buffer
	log := New("console", "info", &buf)

	log.Warn(WithAttrs(context.Background(), "request_id", "r-9"), "slow")

	if !strings.Contains(buf.String(), "request_id=r-9") {
		t.Fatalf("expected request id in console line, got:\n%s", buf.String())
	}
}

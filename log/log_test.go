package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

// newTestLogger returns a Logger that writes JSON into buf.
func newTestLogger(buf *bytes.Buffer, level slog.Level) *Logger {
	h := slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: level})
	return NewWithHandler(h)
}

func TestLogger_Module(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf, slog.LevelDebug)
	child := l.Module("gate")

	child.Info("hello")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal: %v (raw: %s)", err, buf.String())
	}

	if entry["module"] != "gate" {
		t.Fatalf("module = %v, want %q", entry["module"], "gate")
	}
	if entry["msg"] != "hello" {
		t.Fatalf("msg = %v, want %q", entry["msg"], "hello")
	}
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf, slog.LevelDebug)
	child := l.Module("store").With("claim", "0xabc")

	child.Info("consumed")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal: %v (raw: %s)", err, buf.String())
	}

	if entry["module"] != "store" {
		t.Fatalf("module = %v, want %q", entry["module"], "store")
	}
	if entry["claim"] != "0xabc" {
		t.Fatalf("claim = %v, want %q", entry["claim"], "0xabc")
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf, slog.LevelInfo)

	l.Debug("invisible")
	if buf.Len() != 0 {
		t.Fatalf("debug message should be filtered at info level, got %s", buf.String())
	}

	l.Warn("visible")
	if buf.Len() == 0 {
		t.Fatal("warn message should pass at info level")
	}
}

func TestSetDefault(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	var buf bytes.Buffer
	l := newTestLogger(&buf, slog.LevelDebug)
	SetDefault(l)

	if Default() != l {
		t.Fatal("Default should return the logger just set")
	}

	// nil must not replace the default.
	SetDefault(nil)
	if Default() != l {
		t.Fatal("SetDefault(nil) should be a no-op")
	}
}

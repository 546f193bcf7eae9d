package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestJSONLoggerCarriesServiceAndContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newJSONLogger(&buf, "promptgen-api", "info").With("request_id", "req-1")

	ctx := WithLogger(context.Background(), logger)
	FromContext(ctx).Info("post_ingested", "post_id", "p1")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["service"] != "promptgen-api" || entry["request_id"] != "req-1" || entry["post_id"] != "p1" {
		t.Fatalf("unexpected log entry %v", entry)
	}
	if FromContext(context.Background()) != slog.Default() {
		t.Fatalf("expected default logger without a scoped one")
	}
}

package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestJSONOutput(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelInfo)
	log.Info("hello", "key", "value")

	out := buf.String()
	if !strings.Contains(out, "hello") {
		t.Fatalf("expected 'hello' in output, got: %s", out)
	}
	if !strings.Contains(out, `"key":"value"`) {
		t.Fatalf("expected key=value in JSON output, got: %s", out)
	}
}

func TestJSONLevelFiltering(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelWarn)
	log.Info("should not appear")
	log.Debug("also should not appear")
	if buf.Len() > 0 {
		t.Fatalf("expected no output below warn, got: %s", buf.String())
	}
	log.Error("boom")
	if !strings.Contains(buf.String(), "boom") {
		t.Fatal("error record missing")
	}
}

func TestPrettyOutput(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := Pretty(&buf, slog.LevelDebug)
	log.Info("bench started", "model", "llama2-7b", "note", "two words")

	out := buf.String()
	if !strings.Contains(out, "bench started") {
		t.Fatalf("message missing: %s", out)
	}
	if !strings.Contains(out, "model=llama2-7b") {
		t.Fatalf("attr missing: %s", out)
	}
	if !strings.Contains(out, `note="two words"`) {
		t.Fatalf("expected quoted attr value: %s", out)
	}
}

func TestWithAttrs(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := Pretty(&buf, slog.LevelInfo).With("run", 3)
	log.Info("case done")
	if !strings.Contains(buf.String(), "run=3") {
		t.Fatalf("inherited attr missing: %s", buf.String())
	}
}

func TestSetupFormats(t *testing.T) {
	t.Parallel()
	tests := []struct {
		format string
		marker string
	}{
		{"json", `"msg"`},
		{"text", "msg="},
		{"pretty", "\033["},
		{"bogus", "\033["},
	}
	for _, tc := range tests {
		var buf bytes.Buffer
		log := Setup(&buf, "info", tc.format)
		log.Info("probe")
		if !strings.Contains(buf.String(), tc.marker) {
			t.Fatalf("format %q: expected marker %q in %q", tc.format, tc.marker, buf.String())
		}
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()
	if ParseLevel("debug") != slog.LevelDebug {
		t.Fatal("debug")
	}
	if ParseLevel("WARN") != slog.LevelWarn {
		t.Fatal("warn")
	}
	if ParseLevel("nonsense") != slog.LevelInfo {
		t.Fatal("default")
	}
}

func TestFromContextFallback(t *testing.T) {
	t.Parallel()
	log := FromContext(t.Context())
	if log == nil {
		t.Fatal("FromContext returned nil")
	}
}

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelInfo)
	ctx := WithContext(t.Context(), log)
	FromContext(ctx).Info("via context")
	if !strings.Contains(buf.String(), "via context") {
		t.Fatal("logger not threaded through context")
	}
}

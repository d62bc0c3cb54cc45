package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"
)

func TestLogger_WritesKeyValueFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONWriter(&buf, LevelInfo).With("component", "test")

	logger.Warn("store operation failed", "table", "players", "error", errors.New("boom"))

	var entry map[string]any
	if err := sonic.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("unmarshal log line: %v (raw=%s)", err, buf.String())
	}
	if entry["msg"] != "store operation failed" {
		t.Fatalf("unexpected msg: %v", entry["msg"])
	}
	if entry["table"] != "players" || entry["component"] != "test" {
		t.Fatalf("missing fields: %v", entry)
	}
	if entry["error"] != "boom" {
		t.Fatalf("unexpected error field: %v", entry["error"])
	}
}

func TestLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONWriter(&buf, LevelWarn)

	logger.Info("hidden")
	if strings.TrimSpace(buf.String()) != "" {
		t.Fatalf("expected info to be filtered, got %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		"WARNING": LevelWarn,
		"error":   LevelError,
		"":        LevelInfo,
		"bogus":   LevelInfo,
	}
	for raw, want := range cases {
		if got := ParseLevel(raw); got != want {
			t.Fatalf("ParseLevel(%q)=%s want %s", raw, got, want)
		}
	}
}

func TestNilLoggerFallsBackToDefault(t *testing.T) {
	var logger *Logger
	logger.Info("no panic")
	if logger.Zap() == nil {
		t.Fatalf("expected nop zap logger")
	}
}

func TestLogger_RedactsCredentials(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONWriter(&buf, LevelInfo)

	logger.Info("sign in", "email", "ana@example.com", "password", "secret1", "Access_Token", "eyJ", "dangling")

	var entry map[string]any
	if err := sonic.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("unmarshal log line: %v (raw=%s)", err, buf.String())
	}
	if entry["password"] != redacted || entry["Access_Token"] != redacted {
		t.Fatalf("expected credentials to be redacted: %v", entry)
	}
	if entry["email"] != "ana@example.com" {
		t.Fatalf("unexpected email field: %v", entry["email"])
	}
	if v, ok := entry["dangling"]; !ok || v != nil {
		t.Fatalf("expected dangling key with null value, got %v (present=%v)", v, ok)
	}
	if strings.Contains(buf.String(), "secret1") {
		t.Fatalf("raw password leaked: %s", buf.String())
	}
}

func TestParseFormat(t *testing.T) {
	for raw, want := range map[string]Format{"": FormatJSON, "JSON": FormatJSON, " console ": FormatConsole} {
		got, err := ParseFormat(raw)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q)=%q,%v want %q", raw, got, err, want)
		}
	}
	if _, err := ParseFormat("logfmt"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestNew_ConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, LevelInfo, FormatConsole).Info("session restored", "user_id", "u-1")

	line := buf.String()
	if strings.HasPrefix(strings.TrimSpace(line), "{") {
		t.Fatalf("expected console encoding, got %s", line)
	}
	if !strings.Contains(line, "session restored") || !strings.Contains(line, `"user_id": "u-1"`) {
		t.Fatalf("unexpected console line: %s", line)
	}
}

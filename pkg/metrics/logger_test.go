package metrics

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]interface{}
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid JSON line %q: %v", line, err)
		}
		entries = append(entries, m)
	}
	return entries
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
		ok   bool
	}{
		{"debug", LevelDebug, true},
		{"INFO", LevelInfo, true},
		{"warn", LevelWarn, true},
		{"Warning", LevelWarn, true},
		{"error", LevelError, true},
		{"silent", LevelSilent, true},
		{"off", LevelSilent, true},
		{" none ", LevelSilent, true},
		{"loud", LevelInfo, false},
		{"", LevelInfo, false},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v, ok=%v", tt.in, got, err, tt.want, tt.ok)
		}
	}
}

func TestLevelString(t *testing.T) {
	if LevelWarn.String() != "warn" || LevelSilent.String() != "silent" {
		t.Error("unexpected level names")
	}
	if Level(42).String() != "unknown" {
		t.Error("out of range level should be unknown")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ok   bool
	}{
		{"json", FormatJSON, true},
		{"JSON", FormatJSON, true},
		{"text", FormatText, true},
		{"console", FormatText, true},
		{"", FormatText, true},
		{"xml", FormatText, false},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, %v; want %v, ok=%v", tt.in, got, err, tt.want, tt.ok)
		}
	}
}

func TestLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithOutput(&buf), WithFormat(FormatJSON), WithName("otrcrypto"))

	l.Info("POST passed", Fields{"fips": false, "checks": 5})

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e["level"] != "info" || e["message"] != "POST passed" {
		t.Errorf("unexpected entry %v", e)
	}
	if e["logger"] != "otrcrypto" || e["fips"] != false || e["checks"] != float64(5) {
		t.Errorf("missing fields in %v", e)
	}
	if _, ok := e["time"]; !ok {
		t.Error("expected timestamp")
	}
}

func TestLoggerText(t *testing.T) {
	var buf bytes.Buffer
	l := TestLogger(&buf).Named("engine")

	l.Warn("rng sample rejected", Fields{"op": "generate_signing_key_pair"})

	out := buf.String()
	for _, want := range []string{"WARN", "rng sample rejected", "op=generate_signing_key_pair", "logger=engine"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("text output should not be colored by default")
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	tests := []struct {
		level Level
		want  []string
	}{
		{LevelDebug, []string{"debug", "info", "warn", "error"}},
		{LevelWarn, []string{"warn", "error"}},
		{LevelError, []string{"error"}},
		{LevelSilent, nil},
	}
	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			var buf bytes.Buffer
			l := NewLogger(WithOutput(&buf), WithFormat(FormatJSON), WithLevel(tt.level))
			l.Debug("m")
			l.Info("m")
			l.Warn("m")
			l.Error("m")

			entries := decodeLines(t, &buf)
			if len(entries) != len(tt.want) {
				t.Fatalf("expected %d entries, got %d", len(tt.want), len(entries))
			}
			for i, e := range entries {
				if e["level"] != tt.want[i] {
					t.Errorf("entry %d: level %v, want %s", i, e["level"], tt.want[i])
				}
			}
		})
	}
}

func TestLoggerSetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithOutput(&buf), WithFormat(FormatJSON), WithLevel(LevelError))

	l.Info("hidden")
	l.SetLevel(LevelDebug)
	l.Debug("shown")

	if l.Level() != LevelDebug {
		t.Errorf("expected debug level, got %s", l.Level())
	}
	entries := decodeLines(t, &buf)
	if len(entries) != 1 || entries[0]["message"] != "shown" {
		t.Errorf("unexpected entries %v", entries)
	}
}

func TestLoggerRedaction(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithOutput(&buf), WithFormat(FormatJSON)).
		With(Fields{"private_key": "deadbeef"})

	l.Info("derived", Fields{
		"shared_secret": "00ff",
		"Key":           []byte{1, 2, 3},
		"counter":       []byte{0, 0, 0, 1},
		"op":            "shared_secret",
	})

	e := decodeLines(t, &buf)[0]
	for _, k := range []string{"private_key", "shared_secret", "Key"} {
		if e[k] != Redacted {
			t.Errorf("%s = %v, want redacted", k, e[k])
		}
	}
	if e["counter"] != "<4 bytes>" {
		t.Errorf("byte slices should be summarized, got %v", e["counter"])
	}
	if e["op"] != "shared_secret" {
		t.Error("field values are not redacted, only names")
	}
	if strings.Contains(buf.String(), "deadbeef") {
		t.Error("secret leaked into output")
	}
}

func TestIsSecretField(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"key", true},
		{"Key", true},
		{"hmac_key", true},
		{"aes_key", true},
		{"macKey", true},
		{"private_key", true},
		{"privateExponent", true},
		{"shared_secret", true},
		{"SecretBytes", true},
		{"x", true},
		{"passphrase", true},
		{"public_key", false},
		{"pubKey", false},
		{"counter", false},
		{"op", false},
		{"fingerprint", false},
		{"keys_generated", false},
	}
	for _, tt := range tests {
		if got := isSecretField(tt.name); got != tt.want {
			t.Errorf("isSecretField(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestLoggerRedactsKeyNames(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithOutput(&buf), WithFormat(FormatJSON))

	l.Info("keys", Fields{"hmac_key": "0badc0de", "aes_key": "feedface", "public_key": "abcd"})

	e := decodeLines(t, &buf)[0]
	if e["hmac_key"] != Redacted || e["aes_key"] != Redacted {
		t.Errorf("derived keys should be redacted, got %v", e)
	}
	if e["public_key"] != "abcd" {
		t.Errorf("public keys should pass through, got %v", e["public_key"])
	}
	if out := buf.String(); strings.Contains(out, "0badc0de") || strings.Contains(out, "feedface") {
		t.Error("secret leaked into output")
	}
}

func TestLoggerWithAndNamed(t *testing.T) {
	var buf bytes.Buffer
	parent := NewLogger(WithOutput(&buf), WithFormat(FormatJSON), WithFields(Fields{"instance": "a"}))
	child := parent.With(Fields{"instance": "b", "op": "sign"}).Named("crypto").Named("dsa")

	parent.Info("parent")
	child.Info("child")

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0]["instance"] != "a" || entries[0]["op"] != nil || entries[0]["logger"] != nil {
		t.Errorf("parent was mutated: %v", entries[0])
	}
	if entries[1]["instance"] != "b" || entries[1]["op"] != "sign" || entries[1]["logger"] != "crypto.dsa" {
		t.Errorf("unexpected child entry %v", entries[1])
	}
}

func TestGlobalLogger(t *testing.T) {
	prev := GetLogger()
	defer SetLogger(prev)

	var buf bytes.Buffer
	SetLogger(NewLogger(WithOutput(&buf), WithFormat(FormatJSON), WithLevel(LevelDebug)))

	Debug("d")
	Info("i")
	Warn("w")
	Error("e")
	if n := len(decodeLines(t, &buf)); n != 4 {
		t.Errorf("expected 4 entries, got %d", n)
	}

	SetLogger(nil)
	if GetLogger().Level() != LevelSilent {
		t.Error("SetLogger(nil) should install a silent logger")
	}
}

func TestNullLogger(t *testing.T) {
	l := NullLogger()
	// Should not panic
	l.Error("dropped", Fields{"key": "x"})
	if l.Level() != LevelSilent {
		t.Errorf("expected silent, got %s", l.Level())
	}
}

func TestProductionLogger(t *testing.T) {
	var buf bytes.Buffer
	l := ProductionLogger(&buf)
	l.Debug("hidden")
	l.Info("shown")

	entries := decodeLines(t, &buf)
	if len(entries) != 1 || entries[0]["level"] != "info" {
		t.Errorf("unexpected entries %v", entries)
	}
}

package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tcases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"":        slog.LevelInfo,
		" warn ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for name, want := range tcases {
		got, err := ParseLevel(name)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", name, got, err, want)
		}
	}

	if _, err := ParseLevel("loud"); err == nil {
		t.Error("ParseLevel accepted an unknown level name")
	}
}

func TestSetupFormatsAndFilters(t *testing.T) {
	var buf bytes.Buffer
	if err := Setup(Options{Level: "warn", Format: "json", Output: &buf}); err != nil {
		t.Fatal(err)
	}
	slog.Info("hidden")
	slog.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info record logged at warn level")
	}
	if !strings.Contains(out, `"msg":"visible"`) {
		t.Errorf("warn record missing or not JSON: %q", out)
	}
}

func TestSetupRejectsUnknownLevel(t *testing.T) {
	if err := Setup(Options{Level: "loud"}); err == nil {
		t.Error("Setup accepted an unknown level name")
	}
}

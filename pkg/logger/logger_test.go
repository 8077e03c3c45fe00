package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNewPretty(t *testing.T) {
	var buf bytes.Buffer
	l := NewPretty(&buf, slog.LevelInfo)

	l.Debug("hidden")
	l.Info("incident created", slog.String("request_id", "RSC-20251223-ABC123"))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line leaked at info level: %s", out)
	}
	if !strings.Contains(out, "request_id=RSC-20251223-ABC123") {
		t.Fatalf("missing attribute: %s", out)
	}
}

package alog

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestLogger_Module(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithHandler(slog.NewJSONHandler(&buf, nil))
	child := l.Module("render")
	child.Info("frame rendered", "width", 80)

	out := buf.String()
	if !strings.Contains(out, `"module":"render"`) {
		t.Errorf("output missing module attr: %s", out)
	}
	if !strings.Contains(out, `"width":80`) {
		t.Errorf("output missing width attr: %s", out)
	}
}

func TestColorTextLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewColorTextLogger(&buf, slog.LevelInfo)
	l.Info("handshake ready", "peer", "127.0.0.1:9000")

	out := buf.String()
	if !strings.Contains(out, "handshake ready") {
		t.Errorf("output missing message: %q", out)
	}
	if !strings.Contains(out, "peer=127.0.0.1:9000") {
		t.Errorf("output missing field: %q", out)
	}
}

func TestColorTextLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := NewColorTextLogger(&buf, slog.LevelWarn)
	l.Debug("should not appear")
	l.Info("also should not appear")
	if buf.Len() != 0 {
		t.Errorf("expected no output below Warn level, got %q", buf.String())
	}
	l.Warn("this appears")
	if !strings.Contains(buf.String(), "this appears") {
		t.Errorf("expected warn message in output, got %q", buf.String())
	}
}

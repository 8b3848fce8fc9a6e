package logger

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestStdLoggerSilentUnlessVerbose(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, false).Error("boom", errors.New("bad"), nil)
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestStdLoggerWritesSortedFields(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, true).Warn("upload rejected", map[string]interface{}{"size": 11, "file": "a.png"})
	line := buf.String()
	if !strings.Contains(line, "[WARN] upload rejected file=a.png size=11") {
		t.Fatalf("unexpected log line %q", line)
	}
}

func TestSetVerboseTogglesOutput(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, false)
	l.Info("hidden", nil)
	l.SetVerbose(true)
	l.Info("shown", nil)
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "[INFO] shown") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

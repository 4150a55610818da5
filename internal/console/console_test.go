package console

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerPrefixesAndStreams(t *testing.T) {
	var out, errOut bytes.Buffer
	l := New(&out, &errOut, false)
	l.Successf("wrote %s", "report.md")
	l.Infof("plain")
	l.Warnf("dropped %d rows", 2)
	l.Errorf("boom")
	l.Debugf("hidden")

	if got := out.String(); got != "✓ wrote report.md\nplain\n" {
		t.Fatalf("stdout = %q", got)
	}
	e := errOut.String()
	if !strings.Contains(e, "⚠ Warning: dropped 2 rows\n") || !strings.Contains(e, "✗ Error: boom\n") {
		t.Fatalf("stderr = %q", e)
	}
	if strings.Contains(e, "hidden") {
		t.Fatalf("debug line printed while disabled")
	}

	l.SetDebug(true)
	l.Debugf("shown %d", 1)
	if !strings.Contains(errOut.String(), "[debug] shown 1") {
		t.Fatalf("debug line missing: %q", errOut.String())
	}
	if strings.Contains(out.String()+errOut.String(), "\x1b[") {
		t.Fatalf("non-terminal output should not be colored")
	}
}

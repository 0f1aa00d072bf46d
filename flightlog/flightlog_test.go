package flightlog

import (
	"os"
	"strings"
	"testing"
)

func TestOpenAppendClose(t *testing.T) {
	if err := SetDir(t.TempDir()); err != nil {
		t.Fatal(err)
	}

	l, err := Open("test")
	if err != nil {
		t.Fatal(err)
	}
	l.Append("arming")
	l.Append("arming complete, manual flight enabled")
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}

	if !strings.HasSuffix(l.Path(), ".log") {
		t.Errorf("path = %q, want a .log file", l.Path())
	}
	data, err := os.ReadFile(l.Path())
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	if !strings.HasSuffix(lines[0], " arming") {
		t.Errorf("line = %q, want a timestamp prefix before the message", lines[0])
	}
}

func TestOpenCreatesDistinctSessions(t *testing.T) {
	if err := SetDir(t.TempDir()); err != nil {
		t.Fatal(err)
	}

	a, err := Open("serve")
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	b, err := Open("monitor")
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	if a.Path() == b.Path() {
		t.Errorf("both sessions wrote to %q", a.Path())
	}
	if !strings.Contains(a.Path(), "serve-") || !strings.Contains(b.Path(), "monitor-") {
		t.Errorf("paths %q, %q missing session prefixes", a.Path(), b.Path())
	}
}

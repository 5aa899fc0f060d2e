package badgerlog

import (
	"bytes"
	"log"
	"testing"
)

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(log.New(&buf, "", 0), WarningLevel)

	l.Errorf("disk %s\n", "full")
	l.Warningf("slow")
	l.Infof("hidden")
	l.Debugf("hidden")

	const expect = "badger: error: disk full\nbadger: warning: slow\n"
	if got := buf.String(); got != expect {
		t.Fatalf("expected %q, got %q", expect, got)
	}
}

func TestParseLevel(t *testing.T) {
	for _, lvl := range []Level{NoLogging, ErrorLevel, WarningLevel, InfoLevel, DebugLevel} {
		got, err := ParseLevel(lvl.String())
		if err != nil {
			t.Fatalf("failed to parse %s: %v", lvl, err)
		}
		if got != lvl {
			t.Fatalf("expected %s, got %s", lvl, got)
		}
	}

	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("expected an error for an unknown level")
	}
}

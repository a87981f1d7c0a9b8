package logging

import (
	"bytes"
	"testing"
)

func TestPrefixWriter(t *testing.T) {
	var out bytes.Buffer
	pw := NewPrefixWriter("> ", &out)

	pw.Write([]byte("one\ntwo\n"))
	if got := out.String(); got != "> one\n> two\n" {
		t.Errorf("output = %q", got)
	}
}

func TestPrefixWriterPartialLines(t *testing.T) {
	var out bytes.Buffer
	pw := NewPrefixWriter("> ", &out)

	pw.Write([]byte("hel"))
	if out.Len() != 0 {
		t.Fatalf("partial line flushed early: %q", out.String())
	}
	pw.Write([]byte("lo\nwor"))
	if got := out.String(); got != "> hello\n" {
		t.Errorf("output = %q", got)
	}
	pw.Write([]byte("ld\n"))
	if got := out.String(); got != "> hello\n> world\n" {
		t.Errorf("output = %q", got)
	}
}

func TestNewLogger(t *testing.T) {
	log := New("chatot", "debug")
	if !log.IsDebug() {
		t.Error("debug level was not applied")
	}

	t.Setenv("CHATOT_LOG_LEVEL", "error")
	log = New("chatot", "")
	if log.IsWarn() {
		t.Error("environment fallback level was not applied")
	}

	// "json:trace" selects JSON output at trace level.
	log = New("chatot", "json:trace")
	if !log.IsTrace() {
		t.Error("json-prefixed level was not applied")
	}
}

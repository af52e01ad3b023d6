package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/danmuck/espclient/internal/protocol/esp"
	"github.com/danmuck/espclient/internal/testutil/testlog"
)

func TestPrinterPlainOutput(t *testing.T) {
	testlog.Start(t)
	var buf bytes.Buffer
	off := false
	p := New(&buf, &off)

	p.Received(esp.StreamEvent(esp.StreamResult))
	p.Received(esp.LineEvent("42"))
	p.Status("Connected to %s", "localhost:1")
	p.Hint("(no previous history)")

	want := "" +
		" stream: Result\n" +
		"   line: 42\n" +
		"Connected to localhost:1\n" +
		"(no previous history)\n"
	if buf.String() != want {
		t.Fatalf("got=%q want=%q", buf.String(), want)
	}
}

func TestPrinterColorOutput(t *testing.T) {
	testlog.Start(t)
	var buf bytes.Buffer
	on := true
	p := New(&buf, &on)
	p.Received(esp.StreamEvent(esp.StreamLog))
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("expected ANSI escapes, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "Log") {
		t.Fatalf("missing stream name: %q", buf.String())
	}
}

func TestPrinterAutoDetectsNonTerminal(t *testing.T) {
	testlog.Start(t)
	var buf bytes.Buffer
	New(&buf, nil).Error("boom")
	if buf.String() != "boom\n" {
		t.Fatalf("non-file writer must be uncolored, got %q", buf.String())
	}
}

func TestPrinterMutedStreams(t *testing.T) {
	testlog.Start(t)
	var buf bytes.Buffer
	off := false
	p := New(&buf, &off)
	p.Mute(esp.NewStreamSet(esp.StreamLog))

	p.Received(esp.StreamEvent(esp.StreamLog))
	p.Received(esp.LineEvent("noise"))
	p.Received(esp.StreamEvent(esp.StreamResult))
	p.Received(esp.LineEvent("42"))
	p.Received(esp.StreamEvent(esp.StreamLog))
	p.Received(esp.LineEvent("more noise"))

	want := "" +
		" stream: Result\n" +
		"   line: 42\n"
	if buf.String() != want {
		t.Fatalf("got=%q want=%q", buf.String(), want)
	}
}

package main

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/danmuck/espclient/internal/config"
	"github.com/danmuck/espclient/internal/protocol/esp"
	"github.com/danmuck/espclient/internal/testutil/espserver"
	"github.com/danmuck/espclient/internal/testutil/testlog"
	"github.com/danmuck/espclient/internal/transcript"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func testClientConfig(t *testing.T, addr string) config.ClientConfig {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultClientConfig()
	cfg.Server = addr
	cfg.Name = "tester"
	cfg.HistoryFile = filepath.Join(dir, "history.txt")
	cfg.Color = config.ColorNever
	cfg.ConnectTimeout = 2 * time.Second
	return cfg
}

func waitDone(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatalf("client did not exit")
	}
	return nil
}

func TestRunClientRelaysLinesUntilExit(t *testing.T) {
	testlog.Start(t)

	srv := espserver.Start(t)
	cfg := testClientConfig(t, srv.Addr())
	cfg.Transcript = filepath.Join(t.TempDir(), "session.jsonl")
	cfg.StatusAddr = "127.0.0.1:0"

	inR, inW := io.Pipe()
	defer inW.Close()
	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() {
		done <- runClient(context.Background(), cfg, inR, out)
	}()

	peer := srv.Accept(t)
	if got := peer.ReadLine(t); got != "tester" {
		t.Fatalf("expected name line, got %q", got)
	}

	m := regexp.MustCompile(`status on http://(\S+)`).FindStringSubmatch(out.String())
	if m == nil {
		t.Fatalf("status address not printed: %q", out.String())
	}
	resp, err := http.Get("http://" + m[1] + "/health")
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from /health, got %d", resp.StatusCode)
	}

	peer.Send(t, []byte("\x84hello\n\x80"))
	if _, err := io.WriteString(inW, "status\n"); err != nil {
		t.Fatalf("write input: %v", err)
	}
	if got := peer.ReadLine(t); got != "status" {
		t.Fatalf("expected relayed line, got %q", got)
	}

	peer.Send(t, []byte{0x80})
	if _, err := io.WriteString(inW, "  exit \n"); err != nil {
		t.Fatalf("write input: %v", err)
	}
	if err := waitDone(t, done); err != nil {
		t.Fatalf("expected clean exit, got %v", err)
	}

	text := out.String()
	for _, want := range []string{
		"Connected to " + srv.Addr(),
		"(no previous history)",
		"Using name: tester",
		"   line: hello",
		" stream: Result",
		" stream: Prompt",
		inputPrompt,
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("output missing %q:\n%s", want, text)
		}
	}

	f, err := os.Open(cfg.Transcript)
	if err != nil {
		t.Fatalf("open transcript: %v", err)
	}
	defer f.Close()
	entries, err := transcript.Read(f)
	if err != nil {
		t.Fatalf("read transcript: %v", err)
	}
	if len(entries) != 6 {
		t.Fatalf("expected 6 transcript entries, got %d: %+v", len(entries), entries)
	}
	if entries[0].Dir != transcript.DirOut || entries[0].Text != "tester" {
		t.Fatalf("expected name as first entry, got %+v", entries[0])
	}
	var in, sent int
	for _, e := range entries {
		switch e.Dir {
		case transcript.DirIn:
			in++
		case transcript.DirOut:
			sent++
		}
	}
	if in != 4 || sent != 2 {
		t.Fatalf("expected 4 inbound and 2 outbound entries, got %d and %d", in, sent)
	}
}

func TestRunClientServerHangup(t *testing.T) {
	testlog.Start(t)

	srv := espserver.Start(t)
	cfg := testClientConfig(t, srv.Addr())
	cfg.Mute = esp.NewStreamSet(esp.StreamLog)

	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() {
		done <- runClient(context.Background(), cfg, strings.NewReader(""), out)
	}()

	peer := srv.Accept(t)
	peer.ReadLine(t)
	peer.SendLine(t, 0x84, "muted bye")
	peer.SendLine(t, 0x81, "shown")
	peer.Close()

	if err := waitDone(t, done); err != nil {
		t.Fatalf("expected nil on hangup, got %v", err)
	}
	text := out.String()
	if !strings.Contains(text, "Connection closed by server") {
		t.Fatalf("expected hangup notice, got:\n%s", text)
	}
	if strings.Contains(text, "muted bye") || !strings.Contains(text, "line: shown") {
		t.Fatalf("mute filter not applied:\n%s", text)
	}
}

func TestRunClientEndOfInput(t *testing.T) {
	testlog.Start(t)

	srv := espserver.Start(t)
	cfg := testClientConfig(t, srv.Addr())

	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() {
		done <- runClient(context.Background(), cfg, strings.NewReader(""), out)
	}()

	peer := srv.Accept(t)
	peer.ReadLine(t)
	peer.Send(t, []byte{0x80})

	if err := waitDone(t, done); err != nil {
		t.Fatalf("expected nil at end of input, got %v", err)
	}
}

func TestRunClientConnectFailure(t *testing.T) {
	testlog.Start(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	out := &syncBuffer{}
	err = runClient(context.Background(), testClientConfig(t, addr), strings.NewReader(""), out)
	if err == nil {
		t.Fatalf("expected connect error")
	}
	if !strings.Contains(out.String(), "Error connecting to "+addr) {
		t.Fatalf("expected connect error message, got:\n%s", out.String())
	}
}

func TestColorSetting(t *testing.T) {
	testlog.Start(t)

	if colorSetting(config.ColorAuto) != nil {
		t.Fatalf("auto should defer to terminal detection")
	}
	if v := colorSetting(config.ColorAlways); v == nil || !*v {
		t.Fatalf("always should force color on")
	}
	if v := colorSetting(config.ColorNever); v == nil || *v {
		t.Fatalf("never should force color off")
	}
}

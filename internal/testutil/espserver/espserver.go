// Package espserver is an in-process stand-in for an ESP server.
package espserver

import (
	"bufio"
	"bytes"
	"net"
	"testing"
	"time"
)

const ioTimeout = 5 * time.Second

type Server struct {
	ln    net.Listener
	conns chan net.Conn
}

// Start listens on a loopback port until the test ends.
func Start(t testing.TB) *Server {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	s := &Server{ln: ln, conns: make(chan net.Conn, 4)}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				close(s.conns)
				return
			}
			s.conns <- conn
		}
	}()
	t.Cleanup(func() { ln.Close() })
	return s
}

func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// Accept waits for the next client.
func (s *Server) Accept(t testing.TB) *Peer {
	t.Helper()
	select {
	case conn, ok := <-s.conns:
		if !ok {
			t.Fatalf("listener closed")
		}
		t.Cleanup(func() { conn.Close() })
		return &Peer{conn: conn, r: bufio.NewReader(conn)}
	case <-time.After(ioTimeout):
		t.Fatalf("timed out waiting for client")
	}
	return nil
}

// Peer is the server side of one client connection.
type Peer struct {
	conn net.Conn
	r    *bufio.Reader
}

// Send writes raw bytes, control bytes included.
func (p *Peer) Send(t testing.TB, raw []byte) {
	t.Helper()
	_ = p.conn.SetWriteDeadline(time.Now().Add(ioTimeout))
	if _, err := p.conn.Write(raw); err != nil {
		t.Fatalf("server write: %v", err)
	}
}

// SendLine writes text as one line preceded by a control byte.
func (p *Peer) SendLine(t testing.TB, control byte, text string) {
	t.Helper()
	p.Send(t, append([]byte{control}, text+"\n"...))
}

// ReadLine reads one client line and checks its NUL-newline framing.
func (p *Peer) ReadLine(t testing.TB) string {
	t.Helper()
	_ = p.conn.SetReadDeadline(time.Now().Add(ioTimeout))
	line, err := p.r.ReadBytes('\n')
	if err != nil {
		t.Fatalf("server read: %v", err)
	}
	if !bytes.HasSuffix(line, []byte{0x00, '\n'}) {
		t.Fatalf("client line not NUL framed: %q", line)
	}
	return string(line[:len(line)-2])
}

func (p *Peer) Close() {
	p.conn.Close()
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/danmuck/espclient/internal/config"
	"github.com/danmuck/espclient/internal/console"
	"github.com/danmuck/espclient/internal/lineeditor"
	"github.com/danmuck/espclient/internal/observability"
	"github.com/danmuck/espclient/internal/protocol/session"
	"github.com/danmuck/espclient/internal/transcript"
	"github.com/rs/zerolog/log"
)

const inputPrompt = "-> "

// runClient connects to cfg.Server, announces cfg.Name and then relays
// input lines until the user quits or the server hangs up.
func runClient(ctx context.Context, cfg config.ClientConfig, in io.Reader, out io.Writer) error {
	printer := console.New(out, colorSetting(cfg.Color))
	printer.Mute(cfg.Mute)
	sessionCfg := cfg.SessionConfig()

	conn, err := session.Dial(ctx, cfg.Server, sessionCfg)
	if err != nil {
		printer.Error("Error connecting to %s: %v", cfg.Server, err)
		return err
	}
	printer.Status("Connected to %s", cfg.Server)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	metrics := observability.NewSessionMetrics()
	observers := []session.Observer{printer, metrics}
	if cfg.Transcript != "" {
		rec, err := transcript.Open(cfg.Transcript)
		if err != nil {
			_ = conn.Close()
			return err
		}
		defer func() {
			if err := rec.Close(); err != nil {
				log.Warn().Err(err).Str("path", cfg.Transcript).Msg("transcript close failed")
			}
		}()
		observers = append(observers, rec)
	}
	if cfg.StatusAddr != "" {
		addr, err := startStatus(ctx, cfg.StatusAddr, metrics)
		if err != nil {
			_ = conn.Close()
			return fmt.Errorf("status server: %w", err)
		}
		printer.Hint("status on http://%s", addr)
	}

	s := session.New(conn, sessionCfg, observers...)
	if err := s.Start(ctx); err != nil {
		_ = conn.Close()
		return err
	}
	defer s.Close()

	editor := lineeditor.New(lineeditor.Options{HistoryFile: cfg.HistoryFile, In: in, Out: out})
	defer editor.Close()
	if !editor.HadHistory() {
		printer.Hint("(no previous history)")
	}

	printer.Status("Using name: %s", cfg.Name)
	if err := s.SendLine(cfg.Name); err != nil {
		return err
	}
	return inputLoop(s, editor, printer)
}

func inputLoop(s *session.Session, editor *lineeditor.Editor, printer *console.Printer) error {
	for {
		select {
		case <-s.Prompts():
		case <-s.Done():
			return sessionEnded(s, printer)
		}

		line, err := editor.ReadLine(inputPrompt)
		switch {
		case errors.Is(err, io.EOF):
			if editor.IsInteractive() {
				printer.Hint("Ctrl-D")
			}
			return nil
		case errors.Is(err, lineeditor.ErrInterrupted):
			printer.Hint("Ctrl-C")
			return nil
		case err != nil:
			return fmt.Errorf("read input: %w", err)
		}

		if strings.TrimSpace(line) == "exit" {
			return nil
		}
		editor.AddHistory(line)
		if err := s.SendLine(line); err != nil {
			select {
			case <-s.Done():
				return sessionEnded(s, printer)
			default:
			}
			printer.Error("Error sending line: %v", err)
			return err
		}
	}
}

// sessionEnded reports why the read side stopped. A clean hangup is not an
// error for the caller.
func sessionEnded(s *session.Session, printer *console.Printer) error {
	err := s.Err()
	if err == nil || errors.Is(err, io.EOF) {
		printer.Status("Connection closed by server")
		return nil
	}
	printer.Error("Connection lost: %v", err)
	return err
}

func startStatus(ctx context.Context, addr string, metrics *observability.SessionMetrics) (net.Addr, error) {
	srv := observability.NewStatusServer(metrics)
	ready := make(chan net.Addr, 1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ctx, addr, ready)
	}()
	select {
	case bound := <-ready:
		go func() {
			if err := <-errCh; err != nil {
				log.Error().Err(err).Str("addr", addr).Msg("status server stopped")
			}
		}()
		return bound, nil
	case err := <-errCh:
		if err == nil {
			err = context.Cause(ctx)
		}
		return nil, err
	}
}

func colorSetting(mode config.ColorMode) *bool {
	var enabled bool
	switch mode {
	case config.ColorAlways:
		enabled = true
	case config.ColorNever:
		enabled = false
	default:
		return nil
	}
	return &enabled
}

package main

import (
	"errors"
	"testing"
	"time"

	"github.com/danmuck/espclient/internal/config"
	"github.com/danmuck/espclient/internal/protocol/esp"
	"github.com/danmuck/espclient/internal/testutil/testlog"
	"github.com/scott-cotton/cli"
)

func TestResolveDefaultsWithPositionalServer(t *testing.T) {
	testlog.Start(t)

	cfg, err := (&MainConfig{}).resolve([]string{"example.net:4000"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := config.DefaultClientConfig()
	want.Server = "example.net:4000"
	if cfg != want {
		t.Fatalf("expected defaults plus server, got %+v", cfg)
	}
}

func TestResolveExampleConfigWithOverrides(t *testing.T) {
	testlog.Start(t)

	opts := &MainConfig{
		ConfigPath: "ex.config.toml",
		Name:       "override",
		Color:      "NEVER",
		MaxBuffer:  128,
		Debug:      true,
		Mute:       "log, status",
	}
	cfg, err := opts.resolve(nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Server != "127.0.0.1:4000" {
		t.Fatalf("expected server from file, got %q", cfg.Server)
	}
	if cfg.ConnectAttempts != 3 || cfg.WriteTimeout != 15*time.Second {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Name != "override" || cfg.Color != config.ColorNever || cfg.MaxBufferLength != 128 || !cfg.Debug {
		t.Fatalf("flag overrides not applied: %+v", cfg)
	}
	if cfg.Mute != esp.NewStreamSet(esp.StreamLog, esp.StreamStatus) {
		t.Fatalf("mute flag not applied: %v", cfg.Mute.Names())
	}
}

func TestResolveRejectsBadInput(t *testing.T) {
	testlog.Start(t)

	if _, err := (&MainConfig{}).resolve([]string{"a:1", "b:2"}); !errors.Is(err, cli.ErrUsage) {
		t.Fatalf("expected usage error for two servers, got %v", err)
	}
	if _, err := (&MainConfig{Color: "sometimes"}).resolve(nil); !errors.Is(err, cli.ErrUsage) {
		t.Fatalf("expected usage error for bad color, got %v", err)
	}
	if _, err := (&MainConfig{Mute: "Log,stderr"}).resolve(nil); !errors.Is(err, esp.ErrUnknownStream) {
		t.Fatalf("expected unknown stream error, got %v", err)
	}
	if _, err := (&MainConfig{ConfigPath: "missing.toml"}).resolve(nil); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestMainCommandBuilds(t *testing.T) {
	testlog.Start(t)

	cmd := MainCommand()
	if cmd == nil {
		t.Fatalf("expected command")
	}
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/espclient/internal/protocol/esp"
	"github.com/danmuck/espclient/internal/protocol/session"
)

// ColorMode selects when console output is colored.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ClientConfig is the resolved espclient configuration.
type ClientConfig struct {
	Server          string
	Name            string
	HistoryFile     string
	MaxBufferLength int
	ReadChunk       int
	ConnectTimeout  time.Duration
	WriteTimeout    time.Duration
	ConnectAttempts int
	Debug           bool
	Color           ColorMode
	Transcript      string
	StatusAddr      string
	Mute            esp.StreamSet
}

// fileConfig is the on-disk TOML shape.
type fileConfig struct {
	Server          string   `toml:"server"`
	Name            string   `toml:"name"`
	HistoryFile     string   `toml:"history_file"`
	MaxBufferLength int      `toml:"max_buffer_length"`
	ReadChunk       int      `toml:"read_chunk"`
	ConnectTimeout  string   `toml:"connect_timeout"`
	WriteTimeout    string   `toml:"write_timeout"`
	ConnectAttempts int      `toml:"connect_attempts"`
	Debug           bool     `toml:"debug"`
	Color           string   `toml:"color"`
	Transcript      string   `toml:"transcript"`
	StatusAddr      string   `toml:"status_addr"`
	Mute            []string `toml:"mute"`
}

func DefaultClientConfig() ClientConfig {
	sess := session.DefaultConfig()
	return ClientConfig{
		Name:            "espclient.go",
		HistoryFile:     "history.txt",
		MaxBufferLength: esp.DefaultMaxBufferLength,
		ReadChunk:       esp.DefaultReadChunk,
		ConnectTimeout:  sess.ConnectTimeout,
		WriteTimeout:    sess.WriteTimeout,
		ConnectAttempts: sess.ConnectAttempts,
		Color:           ColorAuto,
	}
}

// LoadClientConfig overlays the keys present in the TOML file at path onto
// DefaultClientConfig and validates the result.
func LoadClientConfig(path string) (ClientConfig, error) {
	cfg := DefaultClientConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return ClientConfig{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return ClientConfig{}, fmt.Errorf("config parse failed (%s): unknown key %q", path, undecoded[0].String())
	}

	if meta.IsDefined("server") {
		cfg.Server = strings.TrimSpace(raw.Server)
	}
	if meta.IsDefined("name") {
		cfg.Name = strings.TrimSpace(raw.Name)
	}
	if meta.IsDefined("history_file") {
		cfg.HistoryFile = strings.TrimSpace(raw.HistoryFile)
	}
	if meta.IsDefined("max_buffer_length") {
		cfg.MaxBufferLength = raw.MaxBufferLength
	}
	if meta.IsDefined("read_chunk") {
		cfg.ReadChunk = raw.ReadChunk
	}
	if meta.IsDefined("connect_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.ConnectTimeout))
		if err != nil {
			return ClientConfig{}, fmt.Errorf("parse connect_timeout: %w", err)
		}
		cfg.ConnectTimeout = d
	}
	if meta.IsDefined("write_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.WriteTimeout))
		if err != nil {
			return ClientConfig{}, fmt.Errorf("parse write_timeout: %w", err)
		}
		cfg.WriteTimeout = d
	}
	if meta.IsDefined("connect_attempts") {
		cfg.ConnectAttempts = raw.ConnectAttempts
	}
	if meta.IsDefined("debug") {
		cfg.Debug = raw.Debug
	}
	if meta.IsDefined("color") {
		cfg.Color = ColorMode(strings.ToLower(strings.TrimSpace(raw.Color)))
	}
	if meta.IsDefined("transcript") {
		cfg.Transcript = strings.TrimSpace(raw.Transcript)
	}
	if meta.IsDefined("status_addr") {
		cfg.StatusAddr = strings.TrimSpace(raw.StatusAddr)
	}
	if meta.IsDefined("mute") {
		set, err := esp.ParseStreamSet(raw.Mute)
		if err != nil {
			return ClientConfig{}, fmt.Errorf("parse mute: %w", err)
		}
		cfg.Mute = set
	}

	if err := ValidateClientConfig(cfg); err != nil {
		return ClientConfig{}, err
	}
	return cfg, nil
}

// ValidateClientConfig checks a resolved configuration. Server may be empty
// here; the CLI requires it only when connecting.
func ValidateClientConfig(cfg ClientConfig) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("client config missing name")
	}
	if strings.ContainsRune(cfg.Name, 0x00) {
		return fmt.Errorf("client config name contains NUL")
	}
	if cfg.MaxBufferLength <= 0 {
		return fmt.Errorf("max_buffer_length must be positive: %d", cfg.MaxBufferLength)
	}
	if cfg.ReadChunk <= 0 {
		return fmt.Errorf("read_chunk must be positive: %d", cfg.ReadChunk)
	}
	if cfg.ConnectTimeout < 0 || cfg.WriteTimeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	if cfg.ConnectAttempts < 1 {
		return fmt.Errorf("connect_attempts must be at least 1: %d", cfg.ConnectAttempts)
	}
	switch cfg.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("invalid color mode: %q", cfg.Color)
	}
	return nil
}

// SessionConfig maps the client settings onto a session.Config.
func (c ClientConfig) SessionConfig() session.Config {
	cfg := session.DefaultConfig()
	cfg.ConnectTimeout = c.ConnectTimeout
	cfg.WriteTimeout = c.WriteTimeout
	cfg.ConnectAttempts = c.ConnectAttempts
	cfg.ReadChunk = c.ReadChunk
	cfg.Decoder = esp.Options{
		MaxBufferLength: c.MaxBufferLength,
		Debug:           c.Debug,
	}
	return cfg
}

func (c ClientConfig) toFile() fileConfig {
	return fileConfig{
		Server:          c.Server,
		Name:            c.Name,
		HistoryFile:     c.HistoryFile,
		MaxBufferLength: c.MaxBufferLength,
		ReadChunk:       c.ReadChunk,
		ConnectTimeout:  c.ConnectTimeout.String(),
		WriteTimeout:    c.WriteTimeout.String(),
		ConnectAttempts: c.ConnectAttempts,
		Debug:           c.Debug,
		Color:           string(c.Color),
		Transcript:      c.Transcript,
		StatusAddr:      c.StatusAddr,
		Mute:            c.Mute.Names(),
	}
}

package config

import (
	"bytes"
	"fmt"
	"os"

	gotoml "github.com/pelletier/go-toml/v2"
)

// Render encodes cfg as TOML in the same shape LoadClientConfig reads.
func Render(cfg ClientConfig) ([]byte, error) {
	var buf bytes.Buffer
	enc := gotoml.NewEncoder(&buf)
	if err := enc.Encode(cfg.toFile()); err != nil {
		return nil, fmt.Errorf("config render failed: %w", err)
	}
	return buf.Bytes(), nil
}

// Template renders the default configuration with server set.
func Template(server string) ([]byte, error) {
	cfg := DefaultClientConfig()
	cfg.Server = server
	return Render(cfg)
}

// WriteTemplate writes a default configuration to path.
func WriteTemplate(path, server string, overwrite bool) error {
	template, err := Template(server)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, template, 0o600)
}

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/pelletier/go-toml/v2"
)

const (
	defaultServer  = "http://localhost:8000/api"
	defaultTimeout = 30 * time.Second
)

// forgeConfig is the on-disk CLI configuration.
type forgeConfig struct {
	Server         string           `toml:"server"`
	Token          string           `toml:"token,omitempty"`
	TimeoutSeconds int              `toml:"timeout_seconds,omitempty"`
	Presence       presenceSettings `toml:"presence"`
}

type presenceSettings struct {
	View             string `toml:"view,omitempty"`
	HeartbeatSeconds int    `toml:"heartbeat_seconds,omitempty"`
	PollSeconds      int    `toml:"poll_seconds,omitempty"`
}

func defaultConfig() *forgeConfig {
	return &forgeConfig{Server: defaultServer}
}

func (c *forgeConfig) timeout() time.Duration {
	return seconds(c.TimeoutSeconds, defaultTimeout)
}

// defaultConfigPath is $FORGE_CONFIG or ~/.config/signalforge/forge.toml.
func defaultConfigPath() (string, error) {
	if path := strings.TrimSpace(os.Getenv("FORGE_CONFIG")); path != "" {
		return path, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("determine config directory: %w", err)
	}
	return filepath.Join(dir, "signalforge", "forge.toml"), nil
}

// loadConfig reads path. A missing file yields the defaults. FORGE_SERVER
// and FORGE_TOKEN override the file without being written back.
func loadConfig(path string) (*forgeConfig, error) {
	cfg, err := readConfig(path)
	if err != nil {
		return nil, err
	}
	if server := strings.TrimSpace(os.Getenv("FORGE_SERVER")); server != "" {
		cfg.Server = server
	}
	if token := strings.TrimSpace(os.Getenv("FORGE_TOKEN")); token != "" {
		cfg.Token = token
	}
	return cfg, nil
}

func readConfig(path string) (*forgeConfig, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if strings.TrimSpace(cfg.Server) == "" {
		cfg.Server = defaultServer
	}
	return cfg, nil
}

// updateConfig applies fn to the file at path under an exclusive lock, so
// concurrent logins and logouts never interleave their writes.
func updateConfig(path string, fn func(*forgeConfig)) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config directory %q: %w", dir, err)
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock config: %w", err)
	}
	defer lock.Unlock()

	cfg, err := readConfig(path)
	if err != nil {
		return err
	}
	fn(cfg)

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".forge-*.toml")
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}

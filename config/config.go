// Package config loads ragchat settings with viper and writes them as TOML.
//
// Precedence, highest first:
//  1. CLI flags bound with BindFlags
//  2. RAGCHAT_* environment variables (RAGCHAT_ENDPOINT, RAGCHAT_LOG_DEBUG, ...)
//  3. config.toml
//  4. Default()
package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/fwojciec/ragchat"
)

const (
	dirName    = ".ragchat"
	configFile = "config.toml"

	defaultEndpoint = "http://localhost:5678/api/chat"
)

// Config is the persisted ragchat configuration.
type Config struct {
	Endpoint   string      `toml:"endpoint"`
	StatePath  string      `toml:"state_path"`
	SessionDir string      `toml:"session_dir"`
	Log        LogConfig   `toml:"log"`
	Index      IndexConfig `toml:"index"`
}

// LogConfig controls logger construction.
type LogConfig struct {
	Debug  bool   `toml:"debug"`
	JSON   bool   `toml:"json"`
	Pretty bool   `toml:"pretty"`
	File   string `toml:"file,omitempty"`
}

// IndexConfig is the [index] table. See ragchat.IndexConfig.
type IndexConfig struct {
	Index     string   `toml:"index"`
	Host      string   `toml:"host"`
	Namespace string   `toml:"namespace"`
	Repos     []string `toml:"repos"`
}

// Record converts the table to the domain record.
func (c IndexConfig) Record() ragchat.IndexConfig {
	return ragchat.IndexConfig{
		Index:     c.Index,
		Host:      c.Host,
		Namespace: c.Namespace,
		Repos:     append([]string(nil), c.Repos...),
	}
}

// Dir returns the ragchat state directory, ~/.ragchat. When the home
// directory cannot be resolved it falls back to a relative .ragchat.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return dirName
	}
	return filepath.Join(home, dirName)
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(Dir(), configFile)
}

// Default returns a Config with every field populated.
func Default() Config {
	dir := Dir()
	idx := ragchat.DefaultIndexConfig()
	return Config{
		Endpoint:   defaultEndpoint,
		StatePath:  filepath.Join(dir, "state.json"),
		SessionDir: filepath.Join(dir, "sessions"),
		Log: LogConfig{
			File: filepath.Join(dir, "ragchat.log"),
		},
		Index: IndexConfig{
			Index:     idx.Index,
			Host:      idx.Host,
			Namespace: idx.Namespace,
			Repos:     idx.Repos,
		},
	}
}

// Validate checks the endpoint URL and the index record.
func (c Config) Validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("config: endpoint %q must be an http(s) URL: %w", c.Endpoint, ragchat.ErrValidation)
	}
	if c.StatePath == "" {
		return fmt.Errorf("config: state_path must not be empty: %w", ragchat.ErrValidation)
	}
	if err := c.Index.Record().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Encode renders c as TOML.
func Encode(c Config) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, fmt.Errorf("config: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Write encodes c as TOML to path, creating parent directories as needed.
func Write(path string, c Config) error {
	data, err := Encode(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("config: create directories: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("config: write: %w", err)
	}
	return nil
}

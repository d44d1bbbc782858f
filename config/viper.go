package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// NewViper returns a viper instance with defaults registered, the config
// file at path read (DefaultPath when empty), and RAGCHAT_ environment
// variables bound. A missing config file is not an error.
func NewViper(path string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		path = DefaultPath()
	}
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: read %s: %w", filepath.Clean(path), err)
		}
	}

	v.SetEnvPrefix("RAGCHAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// FromViper reads a Config out of v.
func FromViper(v *viper.Viper) Config {
	return Config{
		Endpoint:   v.GetString(keyEndpoint),
		StatePath:  v.GetString(keyStatePath),
		SessionDir: v.GetString(keySessionDir),
		Log: LogConfig{
			Debug:  v.GetBool(keyLogDebug),
			JSON:   v.GetBool(keyLogJSON),
			Pretty: v.GetBool(keyLogPretty),
			File:   v.GetString(keyLogFile),
		},
		Index: IndexConfig{
			Index:     v.GetString(keyIndexIndex),
			Host:      v.GetString(keyIndexHost),
			Namespace: v.GetString(keyIndexNamespace),
			Repos:     v.GetStringSlice(keyIndexRepos),
		},
	}
}

// Load reads the layered configuration without flags and validates it.
func Load(path string) (Config, error) {
	v, err := NewViper(path)
	if err != nil {
		return Config{}, err
	}
	c := FromViper(v)
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

const (
	keyEndpoint       = "endpoint"
	keyStatePath      = "state_path"
	keySessionDir     = "session_dir"
	keyLogDebug       = "log.debug"
	keyLogJSON        = "log.json"
	keyLogPretty      = "log.pretty"
	keyLogFile        = "log.file"
	keyIndexIndex     = "index.index"
	keyIndexHost      = "index.host"
	keyIndexNamespace = "index.namespace"
	keyIndexRepos     = "index.repos"
)

// setDefaults registers Default() under dotted keys so Default stays the
// single source of default values.
func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault(keyEndpoint, d.Endpoint)
	v.SetDefault(keyStatePath, d.StatePath)
	v.SetDefault(keySessionDir, d.SessionDir)
	v.SetDefault(keyLogDebug, d.Log.Debug)
	v.SetDefault(keyLogJSON, d.Log.JSON)
	v.SetDefault(keyLogPretty, d.Log.Pretty)
	v.SetDefault(keyLogFile, d.Log.File)
	v.SetDefault(keyIndexIndex, d.Index.Index)
	v.SetDefault(keyIndexHost, d.Index.Host)
	v.SetDefault(keyIndexNamespace, d.Index.Namespace)
	v.SetDefault(keyIndexRepos, d.Index.Repos)
}

package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag names shared by every command.
const (
	FlagConfig     = "config"
	FlagEndpoint   = "endpoint"
	FlagStatePath  = "state"
	FlagSessionDir = "session-dir"
	FlagDebug      = "debug"
	FlagLogJSON    = "log-json"
	FlagLogPretty  = "log-pretty"
	FlagLogFile    = "log-file"
)

// flagKeys maps flag names to the viper keys they override.
var flagKeys = map[string]string{
	FlagEndpoint:   keyEndpoint,
	FlagStatePath:  keyStatePath,
	FlagSessionDir: keySessionDir,
	FlagDebug:      keyLogDebug,
	FlagLogJSON:    keyLogJSON,
	FlagLogPretty:  keyLogPretty,
	FlagLogFile:    keyLogFile,
}

// AddFlags registers the shared persistent flags on cmd. Flag defaults are
// empty; unset flags fall through to env, file and Default().
func AddFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.String(FlagConfig, "", "config file (default ~/.ragchat/config.toml)")
	f.String(FlagEndpoint, "", "chat endpoint URL")
	f.String(FlagStatePath, "", "credential store file")
	f.String(FlagSessionDir, "", "directory for saved sessions")
	f.Bool(FlagDebug, false, "enable debug logging")
	f.Bool(FlagLogJSON, false, "write logs as JSON")
	f.Bool(FlagLogPretty, false, "write colorized logs")
	f.String(FlagLogFile, "", "log file path")
}

// BindFlags binds the shared flags found on cmd to v. Call it after
// NewViper, typically from PersistentPreRunE.
func BindFlags(v *viper.Viper, cmd *cobra.Command) {
	for name, key := range flagKeys {
		fl := cmd.Flags().Lookup(name)
		if fl == nil {
			continue
		}
		_ = v.BindPFlag(key, fl)
	}
}

// FromCommand loads the configuration for cmd: the file named by --config,
// environment, and any flags set on the command line.
func FromCommand(cmd *cobra.Command) (Config, error) {
	path, _ := cmd.Flags().GetString(FlagConfig)
	v, err := NewViper(path)
	if err != nil {
		return Config{}, err
	}
	BindFlags(v, cmd)
	c := FromViper(v)
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

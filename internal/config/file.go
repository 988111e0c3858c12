package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jalbritt/backdate/internal/errors"
)

// FileName is the per-repository configuration file, looked up in the
// repository root before the user-level file.
const FileName = "backdate.toml"

// fileConfig mirrors the subset of Config settable from a TOML file.
// Pointer fields distinguish "absent" from zero values.
type fileConfig struct {
	FlagFile      *string  `toml:"flag_file"`
	Suffixes      []string `toml:"suffixes"`
	Sentinel      *string  `toml:"sentinel"`
	CommitMessage *string  `toml:"commit_message"`
	CommitHour    *int     `toml:"commit_hour"`
	SkipWeekends  *bool    `toml:"skip_weekends"`
	SkipExisting  *bool    `toml:"skip_existing"`
	Verbose       *bool    `toml:"verbose"`
	LogFile       *string  `toml:"log_file"`
}

// LoadFromFile reads a TOML configuration file and applies it on top of the
// current values. The per-repository backdate.toml wins over the user-level
// ~/.config/backdate/config.toml; a missing file is not an error.
//
// It is called after the environment and flags so that the repository named
// by -repo is the one searched; keys those layers set keep their values,
// preserving the file < env < flags precedence.
func (c *Config) LoadFromFile() error {
	path := c.findConfigFile()
	if path == "" {
		return nil
	}
	return c.applyFile(path)
}

// findConfigFile returns the first config file that exists, or "".
func (c *Config) findConfigFile() string {
	searchDir := c.RepoPath
	if searchDir == "" {
		searchDir, _ = os.Getwd()
	}
	if searchDir != "" {
		repoFile := filepath.Join(searchDir, FileName)
		if _, err := os.Stat(repoFile); err == nil {
			return repoFile
		}
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configDir = filepath.Join(home, ".config")
	}

	userFile := filepath.Join(configDir, "backdate", "config.toml")
	if _, err := os.Stat(userFile); err == nil {
		return userFile
	}
	return ""
}

// applyFile decodes path and overlays the values it carries.
func (c *Config) applyFile(path string) error {
	var fc fileConfig
	meta, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return errors.NewConfigError("config-file", path,
			errors.Wrap(errors.ErrInvalidConfiguration, err.Error()))
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.NewConfigError("config-file", path,
			errors.Wrapf(errors.ErrInvalidConfiguration, "unknown keys: %s", strings.Join(keys, ", ")))
	}

	if fc.FlagFile != nil && !c.isExplicit("flag_file") {
		c.FlagFile = *fc.FlagFile
	}
	if len(fc.Suffixes) > 0 && !c.isExplicit("suffixes") {
		c.Suffixes = fc.Suffixes
	}
	if fc.Sentinel != nil && !c.isExplicit("sentinel") {
		c.Sentinel = *fc.Sentinel
	}
	if fc.CommitMessage != nil && !c.isExplicit("commit_message") {
		c.CommitMessage = *fc.CommitMessage
	}
	if fc.CommitHour != nil && !c.isExplicit("commit_hour") {
		c.CommitHour = *fc.CommitHour
	}
	if fc.SkipWeekends != nil && !c.isExplicit("skip_weekends") {
		c.SkipWeekends = *fc.SkipWeekends
	}
	if fc.SkipExisting != nil && !c.isExplicit("skip_existing") {
		c.SkipExisting = *fc.SkipExisting
	}
	if fc.Verbose != nil && !c.isExplicit("verbose") {
		c.Verbose = *fc.Verbose
	}
	if fc.LogFile != nil && !c.isExplicit("log_file") {
		c.LogFile = *fc.LogFile
	}

	return nil
}

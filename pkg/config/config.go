// Package config loads srcfetch settings.
//
// Settings come from, lowest precedence first: built-in defaults, the TOML
// file returned by [Path], and the SRCFETCH_* environment variables. Command
// line flags are applied on top by the CLI.
//
// A config file looks like:
//
//	repo_root = "/opt/maven/home"
//	mvn = "/usr/local/bin/mvn"
//	timeout = "15m"
//	cache_ttl = "12h"
//	offline = false
package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/srcfetch/pkg/errors"
	"github.com/matzehuels/srcfetch/pkg/mvn"
	"github.com/matzehuels/srcfetch/pkg/pipeline"
)

const (
	// AppName names the config and cache directories.
	AppName = "srcfetch"

	// FileName is the config file inside [Dir].
	FileName = "config.toml"

	EnvRepoRoot = "SRCFETCH_REPO_ROOT"
	EnvMvn      = "SRCFETCH_MVN"
)

// Config holds user settings.
type Config struct {
	RepoRoot  string   `toml:"repo_root"` // Maven home; ~/.m2 when empty
	MvnBinary string   `toml:"mvn"`
	Timeout   Duration `toml:"timeout"`
	CacheTTL  Duration `toml:"cache_ttl"`
	Offline   bool     `toml:"offline"`
}

// Duration is a time.Duration written as a string ("10m") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string such as "90s" or "1h30m".
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	if v < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "duration %q must not be negative", text)
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration like time.Duration.String.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		MvnBinary: mvn.DefaultBinary,
		Timeout:   Duration{pipeline.DefaultTimeout},
		CacheTTL:  Duration{pipeline.DefaultCacheTTL},
	}
}

// Dir returns the config directory: $XDG_CONFIG_HOME/srcfetch, or
// ~/.config/srcfetch when XDG_CONFIG_HOME is unset.
func Dir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName), nil
}

// Path returns the config file location. The file need not exist.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// CacheDir returns the cache directory: $XDG_CACHE_HOME/srcfetch, or
// ~/.cache/srcfetch when XDG_CACHE_HOME is unset.
func CacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}

// Load returns the defaults overlaid with the file at path, if it exists,
// and then with the environment. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}
	cfg.applyEnv(os.Getenv)
	return cfg, nil
}

// LoadDefault is [Load] with the file at [Path].
func LoadDefault() (Config, error) {
	path, err := Path()
	if err != nil {
		// No home directory; defaults and environment still apply.
		path = ""
	}
	return Load(path)
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "reading config file %s", path)
	}

	md, err := toml.Decode(string(data), c)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "parsing TOML config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return errors.New(errors.ErrCodeInvalidInput, "unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv(EnvRepoRoot); v != "" {
		c.RepoRoot = v
	}
	if v := getenv(EnvMvn); v != "" {
		c.MvnBinary = v
	}
}

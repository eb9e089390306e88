package cli

import (
	"bytes"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/craftgraph/pkg/dag"
	"github.com/matzehuels/craftgraph/pkg/errors"
)

// DefaultAddr is the listen address of serve when neither flag nor config set one.
const DefaultAddr = ":8080"

// configEnv overrides the config file location.
const configEnv = "CRAFTGRAPH_CONFIG"

// Config holds user defaults read from config.toml. Flags override it.
//
//	book = "books/vanilla.toml"   # relative to this file
//	rate = 5
//	strict = true
//	addr = "127.0.0.1:9000"
//	log_level = "debug"
type Config struct {
	Book     string  `toml:"book"`
	Rate     float64 `toml:"rate"`
	Strict   bool    `toml:"strict"`
	Addr     string  `toml:"addr"`
	LogLevel string  `toml:"log_level"`
}

// setDefaults fills unset fields with built-in defaults.
func (c *Config) setDefaults() {
	if c.Rate == 0 {
		c.Rate = dag.DefaultRate
	}
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
}

// configPath returns $CRAFTGRAPH_CONFIG, or config.toml under the XDG config
// directory (~/.config/craftgraph/).
func configPath() (string, error) {
	if p := os.Getenv(configEnv); p != "" {
		return p, nil
	}
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// cacheDir returns the render cache directory: $XDG_CACHE_HOME/craftgraph,
// falling back to ~/.cache/craftgraph.
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

func configHint() string {
	if p, err := configPath(); err == nil {
		return p
	}
	return "config.toml"
}

// loadConfig reads path. A missing file yields the defaults.
func loadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case stderrors.Is(err, fs.ErrNotExist):
		cfg.setDefaults()
		return cfg, nil
	case err != nil:
		return cfg, errors.Wrap(errors.ErrCodeInternal, err, "read config %s", path)
	}

	md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&cfg)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, errors.New(errors.ErrCodeInvalidFormat, "config %s: unknown key %q", path, undecoded[0].String())
	}
	if cfg.Rate != 0 {
		if err := errors.ValidateRate(cfg.Rate); err != nil {
			return cfg, errors.Context(err, "config %s", path)
		}
	}
	if cfg.Book != "" && !filepath.IsAbs(cfg.Book) {
		cfg.Book = filepath.Join(filepath.Dir(path), cfg.Book)
	}
	cfg.setDefaults()
	return cfg, nil
}

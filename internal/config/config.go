// Package config loads the mutuals TOML configuration.
//
// A missing file is not an error; every field has a default. Command-line
// flags are applied on top of the loaded values by the caller.
//
//	[layout]
//	min_spacing = 70
//	spread_height = 800
//	canvas_height = 1200
//
//	[membership]
//	separator = "#"
//
//	[server]
//	addr = "127.0.0.1:8080"
//	watch = false
//
//	[cache]
//	backend = "file"   # file | redis | none
//	ttl = "168h"
//	redis_addr = "localhost:6379"
//	redis_db = 0
//	redis_prefix = "mutuals:"
//
//	[source]
//	database = "mutuals"
//	collection = "groups"
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/mutuals/pkg/cache"
	merrors "github.com/matzehuels/mutuals/pkg/errors"
	"github.com/matzehuels/mutuals/pkg/layout"
	"github.com/matzehuels/mutuals/pkg/membership"
	"github.com/matzehuels/mutuals/pkg/source"
)

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// DefaultAddr is the view server listen address.
const DefaultAddr = "127.0.0.1:8080"

// Config is the full configuration file.
type Config struct {
	Layout     Layout     `toml:"layout"`
	Membership Membership `toml:"membership"`
	Server     Server     `toml:"server"`
	Cache      Cache      `toml:"cache"`
	Source     Source     `toml:"source"`
}

// Layout overrides the column spacing constants.
type Layout struct {
	MinSpacing   float64 `toml:"min_spacing"`
	SpreadHeight float64 `toml:"spread_height"`
	CanvasHeight float64 `toml:"canvas_height"`
}

// Options returns the layout options with defaults for unset fields.
func (l Layout) Options() layout.Options {
	opts := layout.DefaultOptions()
	if l.MinSpacing > 0 {
		opts.MinSpacing = l.MinSpacing
	}
	if l.SpreadHeight > 0 {
		opts.SpreadHeight = l.SpreadHeight
	}
	if l.CanvasHeight > 0 {
		opts.CanvasHeight = l.CanvasHeight
	}
	return opts
}

type Membership struct {
	Separator    string `toml:"separator"`
	KeepSuffixes bool   `toml:"keep_suffixes"`
}

type Server struct {
	Addr  string `toml:"addr"`
	Watch bool   `toml:"watch"`
}

type Cache struct {
	Backend       string   `toml:"backend"`
	TTL           Duration `toml:"ttl"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
	RedisPrefix   string   `toml:"redis_prefix"`
}

type Source struct {
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Options converts to source options.
func (s Source) Options() source.Options {
	return source.Options{Database: s.Database, Collection: s.Collection}
}

// Duration is a time.Duration written as a Go duration string ("24h").
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Layout:     Layout{},
		Membership: Membership{Separator: membership.DefaultSeparator},
		Server:     Server{Addr: DefaultAddr},
		Cache: Cache{
			Backend:     BackendFile,
			TTL:         Duration{cache.ModelTTL},
			RedisAddr:   "localhost:6379",
			RedisPrefix: "mutuals:",
		},
		Source: Source{
			Database:   source.DefaultDatabase,
			Collection: source.DefaultCollection,
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/mutuals/config.toml, falling back to
// ~/.config/mutuals/config.toml.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "mutuals", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "mutuals", "config.toml"), nil
}

// Load reads path over the defaults. A missing file yields the defaults.
// Keys the file sets that no field consumes are returned as undecoded.
func Load(path string) (cfg *Config, undecoded []string, err error) {
	cfg = Default()
	if path == "" {
		return cfg, nil, nil
	}
	md, err := toml.DecodeFile(path, cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil, nil
	}
	if err != nil {
		return nil, nil, merrors.Wrap(merrors.ErrCodeInvalidConfig, err, "config %s", path)
	}
	for _, k := range md.Undecoded() {
		undecoded = append(undecoded, k.String())
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, undecoded, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case BackendFile, BackendRedis, BackendNone:
	default:
		return merrors.New(merrors.ErrCodeInvalidConfig, "cache backend %q (must be file, redis or none)", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return merrors.New(merrors.ErrCodeInvalidConfig, "cache ttl must not be negative")
	}
	if !c.Membership.KeepSuffixes {
		if err := merrors.ValidateSeparator(c.Membership.Separator); err != nil {
			return err
		}
	}
	if c.Layout.MinSpacing < 0 || c.Layout.SpreadHeight < 0 || c.Layout.CanvasHeight < 0 {
		return merrors.New(merrors.ErrCodeInvalidConfig, "layout values must not be negative")
	}
	return nil
}

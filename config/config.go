// Package config handles tanuki.toml configuration.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/chazu/tanuki/vm"
)

// Config represents a tanuki.toml file.
type Config struct {
	Engine EngineConfig `toml:"engine"`
	Store  StoreConfig  `toml:"store"`
}

// EngineConfig tunes execution limits.
type EngineConfig struct {
	MaxStack     int  `toml:"max-stack"`
	MaxCallDepth int  `toml:"max-call-depth"`
	Trace        bool `toml:"trace"`
}

// StoreConfig locates the module database.
type StoreConfig struct {
	Path string `toml:"path"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			MaxStack:     vm.DefaultMaxStack,
			MaxCallDepth: vm.DefaultMaxCallDepth,
		},
		Store: StoreConfig{Path: "tanuki.db"},
	}
}

// Load parses the configuration file at path. A missing file is not an
// error; the defaults apply. Fields the file omits keep their defaults.
func Load(path string) (*Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}
	return c, nil
}

func (c *Config) validate() error {
	if c.Engine.MaxStack <= 0 {
		return fmt.Errorf("engine.max-stack must be positive, got %d", c.Engine.MaxStack)
	}
	if c.Engine.MaxCallDepth <= 0 {
		return fmt.Errorf("engine.max-call-depth must be positive, got %d", c.Engine.MaxCallDepth)
	}
	if c.Store.Path == "" {
		return fmt.Errorf("store.path must not be empty")
	}
	return nil
}

// NewEngine builds an engine configured by c.
func (c *Config) NewEngine() *vm.Engine {
	e := vm.NewEngine()
	e.SetMaxStack(c.Engine.MaxStack)
	e.SetMaxCallDepth(c.Engine.MaxCallDepth)
	e.SetTrace(c.Engine.Trace)
	return e
}

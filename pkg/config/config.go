// Package config loads logicdb settings from YAML. Flags given on the
// command line are applied on top by cmd/logicdb.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel string       `yaml:"log_level"`
	Solver   SolverConfig `yaml:"solver"`
	Server   ServerConfig `yaml:"server"`
	Shell    ShellConfig  `yaml:"shell"`
}

type SolverConfig struct {
	// MaxDepth bounds how many rule expansions may be nested while
	// resolving one question.
	MaxDepth int `yaml:"max_depth"`
	// Parallel resolves the body predicates of a rule concurrently.
	Parallel bool `yaml:"parallel"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type ShellConfig struct {
	URL         string `yaml:"url"`
	HistoryFile string `yaml:"history_file"`
}

func Default() *Config {
	return &Config{
		LogLevel: "info",
		Solver: SolverConfig{
			MaxDepth: 256,
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 9000,
		},
		Shell: ShellConfig{
			URL:         "ws://localhost:9000/ws",
			HistoryFile: "/tmp/.logicdb-history",
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Solver.MaxDepth <= 0 {
		return fmt.Errorf("solver.max_depth must be positive; got %d", c.Solver.MaxDepth)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

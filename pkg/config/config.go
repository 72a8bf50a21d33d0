// Package config loads calculator server settings from a YAML file and the
// environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/lemonberrylabs/keypad-calculator/pkg/editor"
	"github.com/lemonberrylabs/keypad-calculator/pkg/store"
)

// Config is the full set of settings.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Sessions SessionsConfig `yaml:"sessions"`
	Keypad   KeypadConfig   `yaml:"keypad"`
}

// ServerConfig controls the HTTP and gRPC listeners.
type ServerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	GRPCPort int    `yaml:"grpcPort"`
}

// SessionsConfig bounds the session store.
type SessionsConfig struct {
	Max int `yaml:"max"`
}

// KeypadConfig is the button grid shown by the web and terminal UIs.
type KeypadConfig struct {
	Rows [][]string `yaml:"rows"`
}

// DefaultKeypad mirrors a classic four-column pocket calculator.
var DefaultKeypad = [][]string{
	{"C", "+/-", "%", "÷"},
	{"7", "8", "9", "×"},
	{"4", "5", "6", "-"},
	{"1", "2", "3", "+"},
	{"0", ".", "DEL", "="},
}

// Default returns the built-in configuration.
func Default() *Config {
	rows := make([][]string, len(DefaultKeypad))
	for i, r := range DefaultKeypad {
		rows[i] = append([]string(nil), r...)
	}
	return &Config{
		Server: ServerConfig{
			Host:     "0.0.0.0",
			Port:     8787,
			GRPCPort: 8788,
		},
		Sessions: SessionsConfig{Max: store.DefaultMaxSessions},
		Keypad:   KeypadConfig{Rows: rows},
	}
}

// Load builds a Config from defaults, then the YAML file at path (skipped
// when path is empty), then the HOST, PORT and GRPC_PORT environment
// variables. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := Parse(data, cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML into cfg. Fields missing from data keep their current
// values.
func Parse(data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("invalid config YAML: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Server.Port = p
	}
	if v := os.Getenv("GRPC_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid GRPC_PORT %q: %w", v, err)
		}
		c.Server.GRPCPort = p
	}
	return nil
}

// Validate checks ports, the session cap and every keypad label.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.GRPCPort <= 0 || c.Server.GRPCPort > 65535 {
		return fmt.Errorf("server.grpcPort %d out of range", c.Server.GRPCPort)
	}
	if c.Server.Port == c.Server.GRPCPort {
		return fmt.Errorf("server.port and server.grpcPort must differ (both %d)", c.Server.Port)
	}
	if c.Sessions.Max < 0 {
		return fmt.Errorf("sessions.max must not be negative")
	}
	if len(c.Keypad.Rows) == 0 {
		return fmt.Errorf("keypad.rows must not be empty")
	}
	for i, row := range c.Keypad.Rows {
		for _, label := range row {
			if !editor.ValidLabel(label) {
				return fmt.Errorf("keypad row %d: unknown key %q", i+1, label)
			}
		}
	}
	return nil
}

// Addr returns host:port for the HTTP listener.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GRPCAddr returns host:port for the gRPC listener.
func (c *Config) GRPCAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.GRPCPort)
}

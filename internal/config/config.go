// Package config resolves the state home and loads the on-disk
// configuration file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/agentguard/agentguard/internal/arbiter"
)

const (
	// DefaultHomeDir is the state home under the user's home directory.
	DefaultHomeDir = ".agentguard"

	// HomeEnv overrides the state home location.
	HomeEnv = "AGENTGUARD_HOME"

	configFile   = "config.json"
	registryFile = "registry.json"
	auditFile    = "audit.jsonl"
	rulesDir     = "rules"
)

// Config is the resolved runtime configuration.
type Config struct {
	// Home is the state directory holding registry, audit log, config
	// and rule packs.
	Home string

	// Level is the protection level, default balanced.
	Level arbiter.Level

	// AutoRegister attests scanned skills into the trust registry when
	// a scan comes back clean. Off by default: scanning never mutates
	// the registry unless asked to.
	AutoRegister bool
}

type fileConfig struct {
	Level        string `json:"level,omitempty"`
	AutoRegister bool   `json:"auto_register,omitempty"`
}

// StateHome resolves the state directory: AGENTGUARD_HOME if set,
// otherwise ~/.agentguard.
func StateHome() (string, error) {
	if home := os.Getenv(HomeEnv); home != "" {
		return home, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(userHome, DefaultHomeDir), nil
}

// Load resolves the state home, creates it if needed, and reads
// config.json. A missing config file yields defaults.
func Load() (*Config, error) {
	home, err := StateHome()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(home, 0700); err != nil {
		return nil, err
	}

	cfg := &Config{Home: home, Level: arbiter.DefaultLevel}

	data, err := os.ReadFile(filepath.Join(home, configFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}

	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configFile, err)
	}
	level, err := arbiter.ParseLevel(fc.Level)
	if err != nil {
		return nil, err
	}
	cfg.Level = level
	cfg.AutoRegister = fc.AutoRegister
	return cfg, nil
}

// Save writes the configuration back to config.json.
func (c *Config) Save() error {
	fc := fileConfig{Level: string(c.Level), AutoRegister: c.AutoRegister}
	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(filepath.Join(c.Home, configFile), data, 0600)
}

// RegistryPath is the trust registry document location.
func (c *Config) RegistryPath() string { return filepath.Join(c.Home, registryFile) }

// AuditPath is the audit log location.
func (c *Config) AuditPath() string { return filepath.Join(c.Home, auditFile) }

// RulesDir holds user-supplied YAML rule packs for the static scanner.
func (c *Config) RulesDir() string { return filepath.Join(c.Home, rulesDir) }

// GoPlusCredentials reads the threat-intel credentials from the
// environment. Both empty is legal and means degraded operation.
func GoPlusCredentials() (key, secret string) {
	return os.Getenv("GOPLUS_API_KEY"), os.Getenv("GOPLUS_API_SECRET")
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"

	"github.com/rrdkit/rrdmigrate/internal/util"
)

const (
	defaultConfigName = ".rrdmigrate"
	envPrefix         = "RRDMIGRATE"
)

// Manager handles the migration configuration
type Manager struct {
	configPath string
	config     *Config
	viper      *viper.Viper
}

// NewManager creates a new configuration manager. An empty configPath means
// the default search locations are used.
func NewManager(configPath string) *Manager {
	return &Manager{
		configPath: configPath,
		viper:      viper.New(),
		config:     &Config{},
	}
}

// Load reads the configuration from file and environment and applies
// defaults. A missing config file is not an error.
func (m *Manager) Load() (*Config, error) {
	if m.configPath != "" {
		m.viper.SetConfigFile(m.configPath)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}

		m.viper.AddConfigPath(home)
		m.viper.SetConfigName(defaultConfigName)
		m.viper.SetConfigType("yaml")
	}

	m.viper.SetEnvPrefix(envPrefix)
	m.viper.AutomaticEnv()

	m.config = &Config{}

	if err := m.viper.ReadInConfig(); err != nil {
		// It's okay if the config file doesn't exist, we'll use defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		m.applyDefaults()
		return m.config, nil
	}

	if err := m.viper.Unmarshal(m.config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	m.applyDefaults()

	return m.config, nil
}

// GetConfig returns the current configuration
func (m *Manager) GetConfig() *Config {
	return m.config
}

// applyDefaults sets default values for configuration
func (m *Manager) applyDefaults() {
	if m.config == nil {
		return
	}

	if m.config.SourceDir == "" {
		m.config.SourceDir = DefaultBaseDir
	}
	if m.config.TargetDir == "" {
		m.config.TargetDir = DefaultBaseDir
	}
	if m.config.ResourceDir == "" {
		m.config.ResourceDir = DefaultResourceDir
	}
	if m.config.Threads == 0 {
		m.config.Threads = AutoThreads()
	}
	if m.config.Output == "" {
		m.config.Output = "table"
	}
}

// Validate checks the configuration for obvious mistakes before a run.
func (c *Config) Validate() error {
	if c.SourceDir == "" {
		return util.NewValidationError("source", c.SourceDir, "source directory must not be empty")
	}
	if c.TargetDir == "" {
		return util.NewValidationError("target", c.TargetDir, "target directory must not be empty")
	}
	if c.ResourceDir == "" {
		return util.NewValidationError("resources", c.ResourceDir, "resource directory must not be empty")
	}
	if c.Threads < 1 {
		return util.NewValidationError("threads", c.Threads, "thread count must be at least 1")
	}
	switch c.Output {
	case "table", "json", "yaml":
	default:
		return util.NewValidationError("output", c.Output, "output format must be table, json or yaml")
	}
	return nil
}

// Source directory accessors, one per migration phase.

// SourceNodeDir returns the directory holding old-format node files.
func (c *Config) SourceNodeDir() string { return filepath.Join(c.SourceDir, SourceSubdirNode) }

// SourceGuestDir returns the directory holding old-format guest files.
func (c *Config) SourceGuestDir() string { return filepath.Join(c.SourceDir, SourceSubdirGuest) }

// SourceStorageDir returns the directory holding old-format storage files.
func (c *Config) SourceStorageDir() string { return filepath.Join(c.SourceDir, SourceSubdirStorage) }

// TargetNodeDir returns the directory receiving migrated node files.
func (c *Config) TargetNodeDir() string { return filepath.Join(c.TargetDir, TargetSubdirNode) }

// TargetGuestDir returns the directory receiving migrated guest files.
func (c *Config) TargetGuestDir() string { return filepath.Join(c.TargetDir, TargetSubdirGuest) }

// TargetStorageDir returns the directory receiving migrated storage files.
func (c *Config) TargetStorageDir() string { return filepath.Join(c.TargetDir, TargetSubdirStorage) }

// MemberListPath returns the .members resource list path.
func (c *Config) MemberListPath() string { return filepath.Join(c.ResourceDir, ".members") }

// VMListPath returns the .vmlist resource list path.
func (c *Config) VMListPath() string { return filepath.Join(c.ResourceDir, ".vmlist") }

// AutoThreads picks a conservative guest-phase worker count from the number
// of available CPUs: a quarter of them, at least 1 and at most MaxAutoThreads.
// Most of the migration time is spent converting data, so leaving headroom
// for the rest of the system matters more than raw speed.
func AutoThreads() int {
	threads := runtime.NumCPU() / 4
	if threads < 1 {
		return 1
	}
	if threads > MaxAutoThreads {
		return MaxAutoThreads
	}
	return threads
}

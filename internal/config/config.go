// Package config loads the application configuration from an optional YAML
// file in the data directory and NOTETAGS_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dori/notetags/internal/db"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. NOTETAGS_LOG_LEVEL
const EnvPrefix = "NOTETAGS"

// Config holds application configuration
type Config struct {
	DataDir      string    `mapstructure:"data_dir"`
	DBPath       string    `mapstructure:"db_path"`
	SettingsPath string    `mapstructure:"settings_path"`
	NoteFolder   string    `mapstructure:"note_folder"`
	Theme        string    `mapstructure:"theme"`
	Log          LogConfig `mapstructure:"log"`
}

// LogConfig controls the diagnostic log
type LogConfig struct {
	Level string `mapstructure:"level"`
	// File is relative to the data dir unless absolute; empty means stderr
	File string `mapstructure:"file"`
}

// Default returns the default configuration rooted at dataDir
func Default(dataDir string) *Config {
	if dataDir == "" {
		dataDir = db.DefaultDataDir()
	}
	return &Config{
		DataDir:      dataDir,
		DBPath:       filepath.Join(dataDir, "notetags.db"),
		SettingsPath: filepath.Join(dataDir, "settings.yaml"),
		NoteFolder:   "default",
		Theme:        "nord",
		Log: LogConfig{
			Level: "warn",
			File:  "notetags.log",
		},
	}
}

// Load reads config.yaml from dataDir (empty for the default location) and
// applies environment overrides. A missing file is not an error.
func Load(dataDir string) (*Config, error) {
	if env := os.Getenv(EnvPrefix + "_DATA_DIR"); dataDir == "" && env != "" {
		dataDir = env
	}
	def := Default(dataDir)

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(def.DataDir)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// No defaults for these, so an unset path follows data_dir
	_ = v.BindEnv("db_path")
	_ = v.BindEnv("settings_path")

	v.SetDefault("data_dir", def.DataDir)
	v.SetDefault("note_folder", def.NoteFolder)
	v.SetDefault("theme", def.Theme)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.file", def.Log.File)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.DataDir, "notetags.db")
	}
	if cfg.SettingsPath == "" {
		cfg.SettingsPath = filepath.Join(cfg.DataDir, "settings.yaml")
	}

	return cfg, nil
}

// LogPath returns the absolute log file path, or "" for stderr
func (c *Config) LogPath() string {
	if c.Log.File == "" || c.Log.File == "-" {
		return ""
	}
	if filepath.IsAbs(c.Log.File) {
		return c.Log.File
	}
	return filepath.Join(c.DataDir, c.Log.File)
}

// LockPath returns the single-instance lock file path
func (c *Config) LockPath() string {
	return filepath.Join(c.DataDir, "notetags.lock")
}

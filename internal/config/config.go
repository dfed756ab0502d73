// Package config loads config.yaml from the configuration directory.
// A default file is written on first run; a missing file is not an error.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/taskboard/internal/paths"
	"github.com/mesh-intelligence/taskboard/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	// FileName is the configuration file inside the config directory.
	FileName = "config.yaml"

	// EnvPrefix prefixes environment overrides, e.g. TASKBOARD_THEME.
	EnvPrefix = "TASKBOARD"
)

// Config keys.
const (
	KeyDataDir  = "data_dir"
	KeyDBFile   = "db_file"
	KeyTheme    = "theme"
	KeyLanguage = "language"
	KeyLogFile  = "log_file"
	KeyLogLevel = "log_level"
)

// Log levels.
const (
	LogLevelInfo  = "info"
	LogLevelDebug = "debug"
)

// ErrInvalidLogLevel is returned for a log_level other than info or debug.
var ErrInvalidLogLevel = errors.New("log_level must be info or debug")

// File is the on-disk shape of config.yaml.
type File struct {
	DataDir  string `yaml:"data_dir,omitempty" json:"data_dir,omitempty"`
	DBFile   string `yaml:"db_file" json:"db_file"`
	Theme    string `yaml:"theme" json:"theme"`
	Language string `yaml:"language" json:"language"`
	LogFile  string `yaml:"log_file,omitempty" json:"log_file,omitempty"`
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// Defaults returns the values written to a new config.yaml.
func Defaults() File {
	return File{
		DBFile:   paths.DefaultStoreFile,
		Theme:    string(types.ThemeSystem),
		Language: "en",
		LogLevel: LogLevelInfo,
	}
}

// Config is the validated configuration.
type Config struct {
	File
	// Theme is File.Theme parsed.
	Theme types.Theme `yaml:"-" json:"-"`
	// Source is the config file that was read, empty when none was.
	Source string `yaml:"-" json:"source,omitempty"`
}

// Load reads config.yaml from configDir, creating the directory and a
// default file when they are missing. Values may be overridden by
// TASKBOARD_* environment variables, except data_dir whose environment
// override is resolved by the paths package with lower precedence.
func Load(configDir string) (Config, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return Config{}, fmt.Errorf("create config directory: %w", err)
	}
	if err := WriteDefaultIfMissing(filepath.Join(configDir, FileName)); err != nil {
		return Config{}, fmt.Errorf("write default config: %w", err)
	}

	v := viper.New()
	def := Defaults()
	v.SetDefault(KeyDBFile, def.DBFile)
	v.SetDefault(KeyTheme, def.Theme)
	v.SetDefault(KeyLanguage, def.Language)
	v.SetDefault(KeyLogLevel, def.LogLevel)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	v.SetEnvPrefix(EnvPrefix)
	for _, key := range []string{KeyDBFile, KeyTheme, KeyLanguage, KeyLogFile, KeyLogLevel} {
		if err := v.BindEnv(key); err != nil {
			return Config{}, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		cfg.Source = v.ConfigFileUsed()
	}

	cfg.File = File{
		DataDir:  v.GetString(KeyDataDir),
		DBFile:   v.GetString(KeyDBFile),
		Theme:    v.GetString(KeyTheme),
		Language: v.GetString(KeyLanguage),
		LogFile:  v.GetString(KeyLogFile),
		LogLevel: v.GetString(KeyLogLevel),
	}
	theme, err := types.ParseTheme(cfg.File.Theme)
	if err != nil {
		return Config{}, fmt.Errorf("%s %q: %w", KeyTheme, cfg.File.Theme, err)
	}
	cfg.Theme = theme
	switch cfg.LogLevel {
	case LogLevelInfo, LogLevelDebug:
	default:
		return Config{}, fmt.Errorf("%q: %w", cfg.LogLevel, ErrInvalidLogLevel)
	}
	return cfg, nil
}

// WriteDefaultIfMissing creates config.yaml with default values if the file
// does not exist. If it already exists, the function returns nil (idempotent).
func WriteDefaultIfMissing(path string) error {
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	def := Defaults()
	data, err := yaml.Marshal(&def)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	header := []byte("# taskboard configuration\n# data_dir: folder holding the store file (optional)\n")
	return os.WriteFile(path, append(header, data...), 0o644)
}

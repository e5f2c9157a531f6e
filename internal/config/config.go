// Package config loads runtime settings from an optional YAML file and CHARGEN_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/dpshade/character-template/internal/errors"
	"github.com/dpshade/character-template/internal/logger"
	"github.com/dpshade/character-template/internal/tokens"
)

// Config is the full application configuration
type Config struct {
	Tokens TokensConfig `yaml:"tokens"`
	Export ExportConfig `yaml:"export"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
	UI     UIConfig     `yaml:"ui"`
}

type TokensConfig struct {
	Strategy string `yaml:"strategy" env:"CHARGEN_TOKEN_STRATEGY" env-default:"regex"`
}

type ExportConfig struct {
	Dir string `yaml:"dir" env:"CHARGEN_EXPORT_DIR" env-default:"."`
}

type ServerConfig struct {
	Host             string        `yaml:"host" env:"CHARGEN_HOST" env-default:"localhost"`
	Port             int           `yaml:"port" env:"CHARGEN_PORT" env-default:"8080"`
	ShutdownTimeout  time.Duration `yaml:"shutdown_timeout" env:"CHARGEN_SHUTDOWN_TIMEOUT" env-default:"5s"`
	HideErrorDetails bool          `yaml:"hide_error_details" env:"CHARGEN_HIDE_ERROR_DETAILS"`
}

type LogConfig struct {
	Level    string `yaml:"level" env:"CHARGEN_LOG_LEVEL" env-default:"info"`
	Encoding string `yaml:"encoding" env:"CHARGEN_LOG_ENCODING" env-default:"console"`
	Output   string `yaml:"output" env:"CHARGEN_LOG_OUTPUT"`
	// File receives TUI logs; the terminal is owned by the UI while it runs
	File string `yaml:"file" env:"CHARGEN_LOG_FILE"`
}

type UIConfig struct {
	GlamourStyle string `yaml:"glamour_style" env:"CHARGEN_GLAMOUR_STYLE"`
	WordWrap     int    `yaml:"word_wrap" env:"CHARGEN_WORD_WRAP" env-default:"80"`
}

// Addr returns the server listen address
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Logger converts the log section into logger settings
func (c LogConfig) Logger() logger.Config {
	return logger.Config{Level: c.Level, Encoding: c.Encoding, OutputPath: c.Output}
}

// DefaultPath is the config file used when no path is given
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "character-template", "config.yml")
}

// Load reads path, or DefaultPath when path is empty, then applies environment
// variables. A missing default file is not an error; a missing explicit file is.
func Load(path string) (*Config, error) {
	var cfg Config

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	if path != "" && fileExists(path) {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeValidation, "Failed to read configuration").
				WithContext("path", path)
		}
	} else {
		if explicit {
			return nil, errors.NewAppError(errors.ErrCodeFileNotFound, "Configuration file not found").
				WithContext("path", path)
		}
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeValidation, "Failed to read configuration from environment")
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration implied by defaults and the environment alone
func Default() *Config {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil || cfg.Validate() != nil {
		cfg = Config{}
		cfg.Tokens.Strategy = string(tokens.DefaultStrategy)
		cfg.Export.Dir = "."
		cfg.Server = ServerConfig{Host: "localhost", Port: 8080, ShutdownTimeout: 5 * time.Second}
		cfg.Log = LogConfig{Level: "info", Encoding: "console"}
		cfg.UI.WordWrap = 80
	}
	return &cfg
}

// Validate checks values that cleanenv cannot
func (c *Config) Validate() error {
	if _, err := tokens.New(c.Tokens.Strategy); err != nil {
		return err
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.ValidationError("Server port out of range").
			WithContext("port", c.Server.Port)
	}
	if c.UI.WordWrap < 0 {
		return errors.ValidationError("Word wrap must not be negative").
			WithContext("word_wrap", c.UI.WordWrap)
	}
	return nil
}

// Counter returns the token counter named by the configuration
func (c *Config) Counter() tokens.Counter {
	counter, err := tokens.New(c.Tokens.Strategy)
	if err != nil {
		return tokens.RegexCounter{}
	}
	return counter
}

// Usage describes every environment variable
func Usage() string {
	var cfg Config
	text, err := cleanenv.GetDescription(&cfg, nil)
	if err != nil {
		return ""
	}
	return text
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"

	"github.com/yurifrl/cardcsv/pkg/models"
	"github.com/yurifrl/cardcsv/pkg/transform"
)

// EnvPrefix prefixes every environment override, e.g. CARDCSV_PROFILE.
const EnvPrefix = "CARDCSV"

// Config holds the settings shared by the CLI and the server.
type Config struct {
	Profile           string `mapstructure:"profile"`
	CleanReminderText bool   `mapstructure:"clean-reminder-text"`
	KeywordsOnly      bool   `mapstructure:"keywords-only"`
	LogLevel          string `mapstructure:"log-level"`
	OutputPath        string `mapstructure:"output"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Profile:  models.DefaultProfile,
		LogLevel: "info",
	}
}

// New creates a default configuration writing into outputPath.
func New(outputPath string) *Config {
	cfg := Default()
	cfg.OutputPath = outputPath
	return cfg
}

// Build loads the configuration from, in increasing precedence: defaults,
// the config file, a .env file, CARDCSV_* environment variables and the
// flags that were explicitly set.
func Build(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	if err := gotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	def := Default()
	v.SetDefault("profile", def.Profile)
	v.SetDefault("clean-reminder-text", def.CleanReminderText)
	v.SetDefault("keywords-only", def.KeywordsOnly)
	v.SetDefault("log-level", def.LogLevel)
	v.SetDefault("output", def.OutputPath)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("cardcsv")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "cardcsv"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if flags != nil {
		for _, key := range []string{"profile", "clean-reminder-text", "keywords-only", "log-level", "output"} {
			if f := flags.Lookup(key); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", key, err)
				}
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if _, err := cfg.ResolveProfile(); err != nil {
		return nil, err
	}
	if _, err := log.ParseLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	return cfg, nil
}

// ResolveProfile returns the configured built-in profile.
func (c *Config) ResolveProfile() (models.Profile, error) {
	p, err := models.LookupProfile(c.Profile)
	if err != nil {
		return models.Profile{}, err
	}
	return p, p.Validate()
}

// Options returns the sanitization switches.
func (c *Config) Options() transform.Options {
	return transform.Options{
		StripReminderText: c.CleanReminderText,
		KeywordsOnly:      c.KeywordsOnly,
	}
}

// Level returns the parsed log level, falling back to info.
func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// GetOutputPath returns the directory converted files are written to.
func (c *Config) GetOutputPath() string {
	return c.OutputPath
}

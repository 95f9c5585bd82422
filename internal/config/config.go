package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents application configuration
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Calendar CalendarConfig `mapstructure:"calendar"`
	Log      LogConfig      `mapstructure:"log"`
}

// APIConfig represents Holidays API connection settings
type APIConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	Email     string `mapstructure:"email"`
	Password  string `mapstructure:"password"`
	TokenFile string `mapstructure:"token_file"`
	Timeout   string `mapstructure:"timeout"`
}

// CalendarConfig represents calendar building defaults
type CalendarConfig struct {
	Countries          []string `mapstructure:"countries"`
	MinLongHolidayDays int      `mapstructure:"min_long_holiday_days"`
	IncludeWeekends    bool     `mapstructure:"include_weekends"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// Load loads configuration from file
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.holidays-calendar")
		v.AddConfigPath("/etc/holidays-calendar")
	}

	v.SetDefault("calendar.min_long_holiday_days", 3)

	// Read environment variables
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.ExpandEnvVars()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if c.API.Email == "" {
		return fmt.Errorf("api.email is required")
	}
	if c.API.Password == "" {
		return fmt.Errorf("api.password is required")
	}

	if c.Calendar.MinLongHolidayDays < 1 {
		return fmt.Errorf("calendar.min_long_holiday_days must be >= 1")
	}

	return nil
}

// ExpandEnvVars expands environment variables in credential strings
func (c *Config) ExpandEnvVars() {
	c.API.Email = os.ExpandEnv(c.API.Email)
	c.API.Password = os.ExpandEnv(c.API.Password)
}

// GetTimeout returns the API request timeout
func (c *APIConfig) GetTimeout() time.Duration {
	if c.Timeout == "" {
		return 30 * time.Second
	}
	duration, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return duration
}

// GetTokenFile returns the token file path, defaulting to the temp dir
func (c *APIConfig) GetTokenFile() string {
	if c.TokenFile != "" {
		return c.TokenFile
	}
	return filepath.Join(os.TempDir(), "holidays_api_token.json")
}

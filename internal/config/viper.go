// Package config provides Viper-based hierarchical configuration management
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every configuration environment variable.
const EnvPrefix = "SRIX"

// Output formats accepted by output.format.
var OutputFormats = []string{"table", "csv", "json", "yaml"}

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Credentials struct {
		RUC      string `mapstructure:"ruc" yaml:"ruc"`
		Password string `mapstructure:"password" yaml:"-"` // Never serialize
	} `mapstructure:"credentials" yaml:"credentials"`

	Oracle struct {
		Host           string `mapstructure:"host" yaml:"host"`
		Port           int    `mapstructure:"port" yaml:"port"`
		ServiceName    string `mapstructure:"service_name" yaml:"service_name"`
		User           string `mapstructure:"user" yaml:"user"`
		Password       string `mapstructure:"password" yaml:"-"` // Never serialize
		TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
		RetentionQuery string `mapstructure:"retention_query" yaml:"retention_query"`
	} `mapstructure:"oracle" yaml:"oracle"`

	Storage struct {
		Root string `mapstructure:"root" yaml:"root"`
	} `mapstructure:"storage" yaml:"storage"`

	Browser struct {
		Headless     bool   `mapstructure:"headless" yaml:"headless"`
		Bin          string `mapstructure:"bin" yaml:"bin"`
		SlowMotionMs int    `mapstructure:"slow_motion_ms" yaml:"slow_motion_ms"`
	} `mapstructure:"browser" yaml:"browser"`

	Portal struct {
		LoginAttempts            int `mapstructure:"login_attempts" yaml:"login_attempts"`
		ProfileTimeoutSeconds    int `mapstructure:"profile_timeout_seconds" yaml:"profile_timeout_seconds"`
		NavigationTimeoutSeconds int `mapstructure:"navigation_timeout_seconds" yaml:"navigation_timeout_seconds"`
		CaptchaAttempts          int `mapstructure:"captcha_attempts" yaml:"captcha_attempts"`
		PanelAttempts            int `mapstructure:"panel_attempts" yaml:"panel_attempts"`
	} `mapstructure:"portal" yaml:"portal"`

	Output struct {
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"output" yaml:"output"`
}

// InitializeConfig initializes Viper configuration with hierarchical loading.
// A non-empty configFile replaces the search of the default locations.
func InitializeConfig(configFile string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.sri-extractor")
		v.AddConfigPath(".sri-extractor")
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file. Only an explicitly requested file is mandatory.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	// 5. Credentials also come from the unprefixed variables used by the
	// desktop deployment.
	bindings := map[string]string{
		"credentials.ruc":      "SRI_USER",
		"credentials.password": "SRI_PASSWORD",
		"oracle.password":      "ORACLE_PASSWORD",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 6. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Default returns the configuration built from defaults only.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var config Config
	_ = v.Unmarshal(&config)
	return &config
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("credentials.ruc", "")
	v.SetDefault("credentials.password", "")

	v.SetDefault("oracle.host", "")
	v.SetDefault("oracle.port", 1521)
	v.SetDefault("oracle.service_name", "")
	v.SetDefault("oracle.user", "")
	v.SetDefault("oracle.password", "")
	v.SetDefault("oracle.timeout_seconds", 60)
	v.SetDefault("oracle.retention_query", "")

	// Empty root resolves to the user cache directory.
	v.SetDefault("storage.root", "")

	v.SetDefault("browser.headless", false)
	v.SetDefault("browser.bin", "")
	v.SetDefault("browser.slow_motion_ms", 0)

	v.SetDefault("portal.login_attempts", 4)
	v.SetDefault("portal.profile_timeout_seconds", 45)
	v.SetDefault("portal.navigation_timeout_seconds", 60)
	v.SetDefault("portal.captcha_attempts", 40)
	v.SetDefault("portal.panel_attempts", 4)

	v.SetDefault("output.format", "table")
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if !validOutputFormat(config.Output.Format) {
		return fmt.Errorf("invalid output format: %s (must be one of %s)", config.Output.Format, strings.Join(OutputFormats, ", "))
	}

	if config.Oracle.Port < 1 || config.Oracle.Port > 65535 {
		return fmt.Errorf("oracle.port must be between 1 and 65535, got: %d", config.Oracle.Port)
	}
	if config.Oracle.TimeoutSeconds < 1 || config.Oracle.TimeoutSeconds > 600 {
		return fmt.Errorf("oracle.timeout_seconds must be between 1 and 600, got: %d", config.Oracle.TimeoutSeconds)
	}

	if config.Browser.SlowMotionMs < 0 {
		return fmt.Errorf("browser.slow_motion_ms must not be negative, got: %d", config.Browser.SlowMotionMs)
	}

	counts := map[string]int{
		"portal.login_attempts":             config.Portal.LoginAttempts,
		"portal.profile_timeout_seconds":    config.Portal.ProfileTimeoutSeconds,
		"portal.navigation_timeout_seconds": config.Portal.NavigationTimeoutSeconds,
		"portal.captcha_attempts":           config.Portal.CaptchaAttempts,
		"portal.panel_attempts":             config.Portal.PanelAttempts,
	}
	for key, value := range counts {
		if value < 1 || value > 1000 {
			return fmt.Errorf("%s must be between 1 and 1000, got: %d", key, value)
		}
	}

	return nil
}

func validOutputFormat(format string) bool {
	for _, f := range OutputFormats {
		if f == format {
			return true
		}
	}
	return false
}

// OracleTimeout returns the per-query timeout.
func (c *Config) OracleTimeout() time.Duration {
	return time.Duration(c.Oracle.TimeoutSeconds) * time.Second
}

// SlowMotion returns the browser input delay.
func (c *Config) SlowMotion() time.Duration {
	return time.Duration(c.Browser.SlowMotionMs) * time.Millisecond
}

// HasCredentials reports whether portal credentials are configured.
func (c *Config) HasCredentials() bool {
	return strings.TrimSpace(c.Credentials.RUC) != "" && c.Credentials.Password != ""
}

// HasOracle reports whether an accounting database is configured.
func (c *Config) HasOracle() bool {
	return strings.TrimSpace(c.Oracle.Host) != ""
}

// This file defines the configuration structure for the client.
package config

import (
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config holds all configuration settings for the client. It maps directly
// to the structure of config.yml.
type Config struct {
	Port      int `mapstructure:"port"`
	Credstore struct {
		Path       string `mapstructure:"path"`
		Passphrase string `mapstructure:"passphrase"`
	} `mapstructure:"credstore"`
	Catalog struct {
		PageSize        int `mapstructure:"page_size"`
		RefreshInterval int `mapstructure:"refresh_interval"` // minutes, 0 disables
	} `mapstructure:"catalog"`
	Server struct {
		RequestTimeout int    `mapstructure:"request_timeout"` // seconds
		MinVersion     string `mapstructure:"min_version"`
	} `mapstructure:"server"`
}

// RequestTimeout returns the per-call HTTP timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeout) * time.Second
}

// Load reads configuration from a file named "config.yml" in the current
// directory and unmarshals it into a Config struct.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AddConfigPath(".")

	// Environment variable overrides, e.g. TRUPHOTOS_CREDSTORE_PATH
	// overrides the `credstore.path` key.
	viper.SetEnvPrefix("TRUPHOTOS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("port", 8484)
	viper.SetDefault("credstore.path", "./truphotos.db")
	viper.SetDefault("credstore.passphrase", "truphotos")
	viper.SetDefault("catalog.page_size", 1000)
	viper.SetDefault("catalog.refresh_interval", 0)
	viper.SetDefault("server.request_timeout", 10)
	viper.SetDefault("server.min_version", "10.8.0")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; use defaults and env overrides.
		} else {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Watch re-reads the config file when it changes and hands the fresh Config
// to fn. Unparseable edits are ignored; the previous config stays active.
func Watch(fn func(*Config)) {
	viper.OnConfigChange(func(e fsnotify.Event) {
		var config Config
		if err := viper.Unmarshal(&config); err != nil {
			return
		}
		fn(&config)
	})
	viper.WatchConfig()
}

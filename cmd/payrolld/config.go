// config.go - Daemon configuration via viper.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the payrolld runtime configuration. Values come from
// payrolld.yaml, environment variables prefixed PAYROLLD_, or defaults, in
// ascending precedence.
type Config struct {
	// Server
	ListenAddress string `mapstructure:"listen_address"`

	// Storage: "badger" persists to DataDir, "memory" is volatile.
	Backend string `mapstructure:"backend"`
	DataDir string `mapstructure:"data_dir"`

	// Ledger
	Authority        string `mapstructure:"authority"`
	CooldownSeconds  int64  `mapstructure:"cooldown_seconds"`
	ConfidentialMode bool   `mapstructure:"confidential_mode"`

	// Logging
	LogLevel string `mapstructure:"log_level"`

	// Rate limiting (per client address)
	RateLimitBurst    int `mapstructure:"rate_limit_burst"`
	RateLimitPerMin   int `mapstructure:"rate_limit_per_minute"`
	RateLimitDisabled bool `mapstructure:"rate_limit_disabled"`
}

// LoadConfig reads the configuration, creating defaults where the file or
// environment is silent.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("listen_address", ":8480")
	v.SetDefault("backend", "badger")
	v.SetDefault("data_dir", "data")
	v.SetDefault("authority", "payrolld-local-authority")
	v.SetDefault("cooldown_seconds", 60)
	v.SetDefault("confidential_mode", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("rate_limit_burst", 20)
	v.SetDefault("rate_limit_per_minute", 60)
	v.SetDefault("rate_limit_disabled", false)

	v.SetEnvPrefix("payrolld")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("payrolld")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/payrolld")
		if err := v.ReadInConfig(); err != nil {
			// A missing default config is fine; anything else is not.
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Backend != "badger" && cfg.Backend != "memory" {
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
	return &cfg, nil
}

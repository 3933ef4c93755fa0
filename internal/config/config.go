package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	Listen          string
	AssetA          string
	AssetB          string
	PoolAddress     string
	EventOut        string
	PGDSN           string
	MetricsEnabled  bool
	ShutdownTimeout time.Duration
	LogLevel        string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("POOLD")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("listen", ":8080")
	v.SetDefault("pool-address", "0x0000000000000000000000000000000000000a11")
	v.SetDefault("event-out", "./data/events.jsonl")
	v.SetDefault("metrics-enabled", true)
	v.SetDefault("shutdown-timeout", 10*time.Second)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		Listen:          v.GetString("listen"),
		AssetA:          v.GetString("asset-a"),
		AssetB:          v.GetString("asset-b"),
		PoolAddress:     v.GetString("pool-address"),
		EventOut:        v.GetString("event-out"),
		PGDSN:           v.GetString("pg-dsn"),
		MetricsEnabled:  v.GetBool("metrics-enabled"),
		ShutdownTimeout: v.GetDuration("shutdown-timeout"),
		LogLevel:        v.GetString("log-level"),
	}

	return cfg, nil
}

// Package config loads the daemon configuration from an optional YAML
// file and MATCHD_-prefixed environment variables, with validated
// defaults for every knob.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full daemon configuration.
type Config struct {
	Match    MatchConfig
	Redis    RedisConfig
	NATS     NATSConfig
	Postgres PostgresConfig
	Metrics  MetricsConfig
}

// MatchConfig tunes the engine.
type MatchConfig struct {
	Threshold            float64 // minimum Jaccard similarity, exclusive
	StaleAfterSeconds    int     // waiting longer than this expires a participant
	SweepIntervalSeconds int     // how often the stale sweep runs
	WaitPerQueuedSeconds int     // wait estimate per queued participant
	EndedTTLSeconds      int     // store retention after a session ends
}

// RedisConfig locates the session store.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// NATSConfig locates the message bus.
type NATSConfig struct {
	URL                  string
	Name                 string
	ReconnectWaitSeconds int
	MaxReconnects        int
}

// PostgresConfig locates the session archive. An empty DSN disables
// archiving.
type PostgresConfig struct {
	DSN string
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
	Port    int
	Path    string
}

// Load reads matchd.yaml (from ./configs or the working directory, if
// present), applies environment overrides, and validates the result.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("matchd")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvPrefix("MATCHD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// StaleAfter returns the stale window as a duration.
func (m MatchConfig) StaleAfter() time.Duration {
	return time.Duration(m.StaleAfterSeconds) * time.Second
}

// SweepInterval returns the sweep cadence as a duration.
func (m MatchConfig) SweepInterval() time.Duration {
	return time.Duration(m.SweepIntervalSeconds) * time.Second
}

// WaitPerQueued returns the per-waiter estimate as a duration.
func (m MatchConfig) WaitPerQueued() time.Duration {
	return time.Duration(m.WaitPerQueuedSeconds) * time.Second
}

// EndedTTL returns the ended-session retention as a duration.
func (m MatchConfig) EndedTTL() time.Duration {
	return time.Duration(m.EndedTTLSeconds) * time.Second
}

// ReconnectWait returns the NATS reconnect delay as a duration.
func (n NATSConfig) ReconnectWait() time.Duration {
	return time.Duration(n.ReconnectWaitSeconds) * time.Second
}

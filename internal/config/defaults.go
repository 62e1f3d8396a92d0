package config

import "github.com/spf13/viper"

func setDefaults(v *viper.Viper) {
	// Match engine
	v.SetDefault("match.threshold", 0.3)
	v.SetDefault("match.staleAfterSeconds", 120)
	v.SetDefault("match.sweepIntervalSeconds", 5)
	v.SetDefault("match.waitPerQueuedSeconds", 30)
	v.SetDefault("match.endedTTLSeconds", 300)

	// Redis
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// NATS
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.name", "matchd")
	v.SetDefault("nats.reconnectWaitSeconds", 2)
	v.SetDefault("nats.maxReconnects", -1)

	// Postgres (archiving off by default)
	v.SetDefault("postgres.dsn", "")

	// Metrics
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")
}

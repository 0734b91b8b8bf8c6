package config

import "time"

const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"

	DefaultStoreDriver = StoreMongo

	DefaultMongoURI          = "mongodb://localhost:27017/?replicaSet=rs0"
	DefaultMongoDatabaseName = "adhub"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPostgresDSN = "host=localhost user=adhub password=adhub dbname=adhub port=5432 sslmode=disable"

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRPS   = 20.0
	DefaultRateLimitBurst = 40

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultMinBookingDays   = 7
	DefaultBusinessTimezone = "UTC"

	DefaultEventsEnabled         = false
	DefaultBookingEventsTopic    = "booking-events"
	DefaultBookingEventsDLQTopic = "booking-events-dlq"
	DefaultNotifierGroupID       = "adhub-notifier"

	DefaultOtelEnabled  = false
	DefaultOtelEndpoint = "localhost:4318"

	DefaultPageSize    = 10
	MaxPaginationLimit = 100
)

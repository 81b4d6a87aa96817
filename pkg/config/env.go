package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvDefaultDurationMin  = "DEFAULT_DURATION_MIN"
	EnvMinDurationMin      = "MIN_DURATION_MIN"
	EnvMaxDurationMin      = "MAX_DURATION_MIN"
	EnvCancellationCutoff  = "CANCELLATION_CUTOFF"
	EnvSlotLockTTL         = "SLOT_LOCK_TTL"
	EnvDirectoryBaseURL    = "DIRECTORY_BASE_URL"
	EnvBookingEventsTopic  = "BOOKING_EVENTS_TOPIC"
	EnvBookingEventsEnable = "BOOKING_EVENTS_ENABLE"
)

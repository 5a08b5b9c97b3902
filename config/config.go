package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server configuration
	Port        string
	Environment string

	// Redis configuration
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// PubNub configuration
	PubNubPublishKey   string
	PubNubSubscribeKey string
	PubNubSecretKey    string

	// Live status configuration
	LivePollInterval time.Duration
	LiveSendBuffer   int

	// Admission configuration
	JoinDedupeTTL       time.Duration
	CodeGenRetries      int
	ParticipantCodeSize int
	QueueCodeSize       int

	// Retention configuration
	RetentionWindow time.Duration
	SweepCron       string

	// Reporting
	StatsCacheTTL time.Duration

	// Rate limiting
	RateLimitWindow   time.Duration
	RateLimitRequests int

	// Monitoring
	EnableMetrics bool
	MetricsPort   string
}

func LoadConfig() *Config {
	return &Config{
		// Server
		Port:        getEnv("PORT", "8090"),
		Environment: getEnv("ENVIRONMENT", "development"),

		// Redis
		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// PubNub
		PubNubPublishKey:   getEnv("PUBNUB_PUBLISH_KEY", ""),
		PubNubSubscribeKey: getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
		PubNubSecretKey:    getEnv("PUBNUB_SECRET_KEY", ""),

		// Live status
		LivePollInterval: getEnvAsDuration("LIVE_POLL_INTERVAL", "5s"),
		LiveSendBuffer:   getEnvAsInt("LIVE_SEND_BUFFER", 10),

		// Admission
		JoinDedupeTTL:       getEnvAsDuration("JOIN_DEDUPE_TTL", "30s"),
		CodeGenRetries:      getEnvAsInt("CODE_GEN_RETRIES", 10),
		ParticipantCodeSize: getEnvAsInt("PARTICIPANT_CODE_LENGTH", 12),
		QueueCodeSize:       getEnvAsInt("QUEUE_CODE_LENGTH", 8),

		// Retention: completed participants older than this are swept
		RetentionWindow: getEnvAsDuration("RETENTION_WINDOW", "720h"),
		SweepCron:       getEnv("SWEEP_CRON", "0 * * * *"),

		// Reporting
		StatsCacheTTL: getEnvAsDuration("STATS_CACHE_TTL", "15s"),

		// Rate limiting
		RateLimitWindow:   getEnvAsDuration("RATE_LIMIT_WINDOW", "1m"),
		RateLimitRequests: getEnvAsInt("RATE_LIMIT_REQUESTS", 30),

		// Monitoring
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
		MetricsPort:   getEnv("METRICS_PORT", "9090"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	// If parsing fails, try to parse default value
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}

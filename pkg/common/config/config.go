package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	ServerPort     string
	ServerHost     string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestBody int64
	RateLimitRPS   int
	RateLimitBurst int

	// Admin endpoints (bcrypt hash of the admin token)
	AdminTokenHash string

	// Overlay persistence: memory, redis or postgres
	KVBackend string

	// Database
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	PostgresMaxOpenConns    int
	PostgresMaxIdleConns    int
	PostgresConnMaxLifetime time.Duration

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisPoolSize int
	RedisTimeout  time.Duration

	// Kafka
	KafkaBrokers         []string
	KafkaGroupID         string
	TriageEventsTopic    string
	MappingCommandsTopic string

	// Triage
	CatalogPath        string
	DictionaryPath     string
	TranslationTimeout time.Duration

	// Remote translation API
	TranslatorBaseURL      string
	TranslatorTokenURL     string
	TranslatorClientID     string
	TranslatorClientSecret string
	TranslatorRetries      int
}

func Load() *Config {
	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		ServerHost:     getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:    getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:   getDuration("WRITE_TIMEOUT", 30*time.Second),
		MaxRequestBody: int64(getIntEnv("MAX_REQUEST_BODY_BYTES", 1024*1024)),
		RateLimitRPS:   getIntEnv("RATE_LIMIT_RPS", 50),
		RateLimitBurst: getIntEnv("RATE_LIMIT_BURST", 100),

		AdminTokenHash: getEnv("ADMIN_TOKEN_HASH", ""),

		KVBackend: strings.ToLower(getEnv("KV_BACKEND", "memory")),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "medilink"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "medilink"),
		PostgresDB:       getEnv("POSTGRES_DB", "medilink"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		PostgresMaxOpenConns:    getIntEnv("POSTGRES_MAX_OPEN_CONNS", 10),
		PostgresMaxIdleConns:    getIntEnv("POSTGRES_MAX_IDLE_CONNS", 5),
		PostgresConnMaxLifetime: getDuration("POSTGRES_CONN_MAX_LIFETIME", 30*time.Minute),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),
		RedisPoolSize: getIntEnv("REDIS_POOL_SIZE", 10),
		RedisTimeout:  getDuration("REDIS_TIMEOUT", time.Second),

		KafkaBrokers:         getStringSliceEnv("KAFKA_BROKERS", nil),
		KafkaGroupID:         getEnv("KAFKA_GROUP_ID", "triage-service"),
		TriageEventsTopic:    getEnv("TRIAGE_EVENTS_TOPIC", "triage-events"),
		MappingCommandsTopic: getEnv("MAPPING_COMMANDS_TOPIC", "triage-mapping-commands"),

		CatalogPath:        getEnv("TRIAGE_CATALOG_PATH", ""),
		DictionaryPath:     getEnv("TRIAGE_DICTIONARY_PATH", ""),
		TranslationTimeout: getDuration("TRANSLATION_TIMEOUT", 2*time.Second),

		TranslatorBaseURL:      getEnv("TRANSLATOR_BASE_URL", ""),
		TranslatorTokenURL:     getEnv("TRANSLATOR_TOKEN_URL", ""),
		TranslatorClientID:     getEnv("TRANSLATOR_CLIENT_ID", ""),
		TranslatorClientSecret: getEnv("TRANSLATOR_CLIENT_SECRET", ""),
		TranslatorRetries:      getIntEnv("TRANSLATOR_RETRIES", 3),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

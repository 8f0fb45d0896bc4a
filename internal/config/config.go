package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// AppConfig holds service-level settings.
type AppConfig struct {
	Port        string
	ServiceName string
}

// DBConfig holds the Postgres connection settings.
type DBConfig struct {
	URL         string
	MaxOpenConn int
	ConnMaxIdle time.Duration
}

// KafkaConfig holds broker addresses and the topics this service touches.
type KafkaConfig struct {
	Brokers        []string
	EventsTopic    string
	ConsumerGroup  string
	BroadcastTopic string
}

// SchedulerConfig tunes the reminder scheduler pass.
type SchedulerConfig struct {
	Interval   time.Duration
	HalfWindow time.Duration
}

// RetryConfig tunes the retry coordinator pass.
type RetryConfig struct {
	Interval time.Duration
}

// Config is the full service configuration loaded from the environment.
type Config struct {
	App         AppConfig
	DB          DBConfig
	Kafka       KafkaConfig
	Scheduler   SchedulerConfig
	Retry       RetryConfig
	WorkerLimit int
}

// LoadConfig loads configuration from environment variables, applying
// defaults for everything except the database URL.
func LoadConfig() (*Config, error) {
	dbURL := os.Getenv("NOTIFY_DB_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("NOTIFY_DB_URL is required")
	}

	cfg := &Config{
		App: AppConfig{
			Port:        getEnv("NOTIFY_PORT", "8083"),
			ServiceName: getEnv("NOTIFY_SERVICE_NAME", "notify"),
		},
		DB: DBConfig{
			URL:         dbURL,
			MaxOpenConn: getEnvInt("NOTIFY_DB_MAX_OPEN", 10),
			ConnMaxIdle: getEnvDuration("NOTIFY_DB_CONN_IDLE", 5*time.Minute),
		},
		Kafka: KafkaConfig{
			Brokers:        strings.Split(getEnv("NOTIFY_KAFKA_BROKERS", "localhost:9092"), ","),
			EventsTopic:    getEnv("NOTIFY_KAFKA_EVENTS_TOPIC", "checkin.events"),
			ConsumerGroup:  getEnv("NOTIFY_KAFKA_CONSUMER_GROUP", "notify-service"),
			BroadcastTopic: getEnv("NOTIFY_KAFKA_BROADCAST_TOPIC", "realtime.broadcast"),
		},
		Scheduler: SchedulerConfig{
			Interval:   getEnvDuration("NOTIFY_SCHEDULER_INTERVAL", time.Minute),
			HalfWindow: getEnvDuration("NOTIFY_DUE_HALF_WINDOW", 5*time.Minute),
		},
		Retry: RetryConfig{
			Interval: getEnvDuration("NOTIFY_RETRY_INTERVAL", 5*time.Second),
		},
		WorkerLimit: getEnvInt("NOTIFY_WORKER_LIMIT", 10),
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	ENV_LOCAL      = "local"
	ENV_MEMORY     = "memory"
	ENV_TEST       = "test"
	ENV_PRODUCTION = "production"
)

type Config struct {
	APIEnv            string
	Port              string
	JWTSecret         string
	RedisHost         string
	KafkaBroker       string
	QueueDriver       string
	NotificationQueue string
	AuditInterval     time.Duration
	RoleCacheTTL      time.Duration
	MaintenanceMode   bool
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func duration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// Load reads the process environment. Secrets pulled by LoadSecrets must be applied first.
func Load() Config {
	maintenance, _ := strconv.ParseBool(os.Getenv("MAINTENANCE_MODE"))
	return Config{
		APIEnv:            getenv("API_ENV", ENV_LOCAL),
		Port:              getenv("PORT", "9090"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		RedisHost:         os.Getenv("REDIS_HOST"),
		KafkaBroker:       os.Getenv("KAFKA_BROKER"),
		QueueDriver:       getenv("QUEUE_DRIVER", "log"),
		NotificationQueue: getenv("NOTIFICATION_QUEUE", "MembershipNotifications"),
		AuditInterval:     duration("AUDIT_INTERVAL", time.Hour),
		RoleCacheTTL:      duration("ROLE_CACHE_TTL", 5*time.Minute),
		MaintenanceMode:   maintenance,
	}
}

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := getenv("DATABASE_PORT", "5432")
	DATABASE_SSLMODE := getenv("DATABASE_SSLMODE", "disable")
	DATABASE_TIMEZONE := getenv("DATABASE_TIMEZONE", "UTC")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	DataFile      string
	DSN           string
	MigrationsDir string
	HTTPPort      string
	Username      string
	Password      string
	FilterWord    string
	KafkaBrokers  []string
	KafkaGroupID  string
	KafkaTopic    string
	KafkaEnabled  bool

	SweepInterval   time.Duration
	ProcessAfter    time.Duration
	ShipAfter       time.Duration
	DeliverAfter    time.Duration
	EarlyShipAfter  time.Duration
	EarlyShipChance float64
	DeliveryDays    int
}

func LoadConfig() *Config {
	brokersStr := getEnv("KAFKA_BROKERS", "localhost:9092")
	return &Config{
		DataFile:      getEnv("APP_DATA_FILE", "kicks_orders.json"),
		DSN:           getEnv("APP_DSN", ""),
		MigrationsDir: getEnv("APP_MIGRATIONS", "migrations"),
		HTTPPort:      getEnv("APP_PORT", "9000"),
		Username:      getEnv("APP_USER", "admin"),
		Password:      getEnv("APP_PASS", "secret"),
		FilterWord:    getEnv("APP_FILTER", ""),
		KafkaBrokers:  strings.Split(brokersStr, ","),
		KafkaGroupID:  getEnv("KAFKA_GROUP_ID", "order-events-group"),
		KafkaTopic:    getEnv("KAFKA_TOPIC", "order-status-events"),
		KafkaEnabled:  getEnv("KAFKA_ENABLED", "false") == "true",

		SweepInterval:   getDuration("APP_SWEEP_INTERVAL", 30*time.Second),
		ProcessAfter:    getDuration("APP_PROCESS_AFTER", 30*time.Second),
		ShipAfter:       getDuration("APP_SHIP_AFTER", 2*time.Minute),
		DeliverAfter:    getDuration("APP_DELIVER_AFTER", 5*time.Minute),
		EarlyShipAfter:  getDuration("APP_EARLY_SHIP_AFTER", 30*time.Second),
		EarlyShipChance: getFloat("APP_EARLY_SHIP_CHANCE", 0.3),
		DeliveryDays:    getInt("APP_DELIVERY_DAYS", 7),
	}
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}

func getFloat(key string, defaultVal float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultVal
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%s", c.HTTPPort)
}

package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config collects every environment-driven setting used by the services.
type Config struct {
	DB    DatabaseConfig
	Redis RedisConfig
	Kafka KafkaConfig
	S3    S3Config
	JWT   JWTConfig
	SMS   SMSConfig
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Broker string
	Topic  string
}

type S3Config struct {
	Region string
	Bucket string
}

type JWTConfig struct {
	Secret   string
	TTLHours int
}

type SMSConfig struct {
	GatewayURL string
}

// Load reads .env if present and returns the resolved configuration.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		logrus.Warn("No .env file found, using environment variables")
	}

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	jwtTTL, _ := strconv.Atoi(getEnv("JWT_TTL_HOURS", "24"))

	return Config{
		DB: GetDatabaseConfig(),
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Kafka: KafkaConfig{
			Broker: getEnv("KAFKA_BROKER", "localhost:9092"),
			Topic:  getEnv("KAFKA_NOTIFICATION_TOPIC", "renta-notifications"),
		},
		S3: S3Config{
			Region: getEnv("AWS_REGION", "eu-west-1"),
			Bucket: getEnv("S3_DOCUMENT_BUCKET", "renta-documents"),
		},
		JWT: JWTConfig{
			Secret:   getEnv("JWT_SECRET", "dev-secret-change-me"),
			TTLHours: jwtTTL,
		},
		SMS: SMSConfig{
			GatewayURL: getEnv("SMS_GATEWAY_URL", "http://localhost:9090"),
		},
	}
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

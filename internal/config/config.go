package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	ServerPort      string
	GinMode         string
	ShutdownTimeout time.Duration

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	RunMigrations bool

	JWTSecret string
	JWTExpiry time.Duration

	RedisURL       string
	CacheTTL       time.Duration
	IdempotencyTTL time.Duration

	LogLevel    string
	LogEncoding string
}

// Load reads the environment, optionally seeded from a .env file.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		zap.L().Debug("no .env file found, using system environment variables")
	}

	return &Config{
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		GinMode:         getEnv("GIN_MODE", "release"),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 5*time.Second),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "taskboard"),
		DBPassword: getEnv("DB_PASSWORD", "taskboard"),
		DBName:     getEnv("DB_NAME", "taskboard"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RunMigrations: getBool("RUN_MIGRATIONS", true),

		JWTSecret: getEnv("JWT_SECRET", "supersecretkey"),
		JWTExpiry: time.Duration(getInt("JWT_EXPIRY_HOURS", 24)) * time.Hour,

		RedisURL:       getEnv("REDIS_URL", ""),
		CacheTTL:       getDuration("CACHE_TTL", 5*time.Minute),
		IdempotencyTTL: getDuration("IDEMPOTENCY_TTL", 24*time.Hour),

		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogEncoding: getEnv("LOG_ENCODING", "json"),
	}
}

func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// ClientConfig holds the settings of the seqctl command line client.
type ClientConfig struct {
	BaseURL      string
	Token        string
	Timeout      time.Duration
	Confirmation time.Duration
	Cooldown     time.Duration
}

func LoadClient() *ClientConfig {
	_ = godotenv.Load()

	return &ClientConfig{
		BaseURL:      getEnv("TASKBOARD_URL", "http://localhost:8080"),
		Token:        getEnv("TASKBOARD_TOKEN", ""),
		Timeout:      getDuration("TASKBOARD_TIMEOUT", 10*time.Second),
		Confirmation: getDuration("SEQUENCER_CONFIRM", 0),
		Cooldown:     getDuration("SEQUENCER_COOLDOWN", 750*time.Millisecond),
	}
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getBool(key string, defaultVal bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// getDuration accepts Go durations ("750ms") or a bare number of seconds.
func getDuration(key string, defaultVal time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultVal
}

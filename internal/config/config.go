// Package config loads server settings. Values come from built-in defaults,
// then environment variables, then command-line flags, with later sources
// overriding earlier ones.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

type Config struct {
	ServerPort  string
	StoreDriver string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	MongoURI      string
	MongoDatabase string

	// AMQPURL enables the RabbitMQ event publisher when non-empty.
	AMQPURL string

	SeedData bool
	SeedFile string

	LogLevel string
}

// Load reads the environment and then parses args (without the program name).
func Load(args []string) (Config, error) {
	cfg := Config{
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		StoreDriver:   getEnv("STORE_DRIVER", DriverMemory),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        getEnv("DB_USER", "postgres"),
		DBPassword:    getEnv("DB_PASSWORD", "password"),
		DBName:        getEnv("DB_NAME", "transfers"),
		DBSSLMode:     getEnv("DB_SSLMODE", "disable"),
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DATABASE", "transfers"),
		AMQPURL:       getEnv("AMQP_URL", ""),
		SeedFile:      getEnv("SEED_FILE", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}

	seed, err := strconv.ParseBool(getEnv("SEED_DATA", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid SEED_DATA: %w", err)
	}
	cfg.SeedData = seed

	flagSet := pflag.NewFlagSet("transfer-server", pflag.ContinueOnError)
	flagSet.StringVar(&cfg.ServerPort, "port", cfg.ServerPort, "HTTP listen port")
	flagSet.StringVar(&cfg.StoreDriver, "store", cfg.StoreDriver, "storage engine: memory, postgres or mongo")
	flagSet.StringVar(&cfg.DBHost, "db-host", cfg.DBHost, "Postgres host")
	flagSet.StringVar(&cfg.DBPort, "db-port", cfg.DBPort, "Postgres port")
	flagSet.StringVar(&cfg.DBUser, "db-user", cfg.DBUser, "Postgres user")
	flagSet.StringVar(&cfg.DBName, "db-name", cfg.DBName, "Postgres database name")
	flagSet.StringVar(&cfg.DBSSLMode, "db-sslmode", cfg.DBSSLMode, "Postgres sslmode")
	flagSet.StringVar(&cfg.MongoURI, "mongo-uri", cfg.MongoURI, "MongoDB connection URI")
	flagSet.StringVar(&cfg.MongoDatabase, "mongo-database", cfg.MongoDatabase, "MongoDB database name")
	flagSet.StringVar(&cfg.AMQPURL, "amqp-url", cfg.AMQPURL, "RabbitMQ URL for transfer events (empty disables publishing)")
	flagSet.BoolVar(&cfg.SeedData, "seed", cfg.SeedData, "load sample accounts and transfers at startup")
	flagSet.StringVar(&cfg.SeedFile, "seed-file", cfg.SeedFile, "YAML file replacing the built-in sample data")
	flagSet.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn or error")

	if err := flagSet.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.StoreDriver = strings.ToLower(cfg.StoreDriver)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.StoreDriver {
	case DriverMemory, DriverPostgres, DriverMongo:
	default:
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}
	if c.ServerPort == "" {
		return fmt.Errorf("server port is required")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return level, nil
}

// getEnv fetches environment variable or returns default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

const (
	// DebugModeEnv is the environment variable for debug mode.
	DebugModeEnv = "DEBUG_MODE"

	// StoreDriverEnv is the environment variable selecting the product store backend.
	StoreDriverEnv = "STORE_DRIVER"

	// MongoURIEnv is the environment variable for the MongoDB connection string.
	MongoURIEnv = "MONGO_URI"

	// MongoDatabaseEnv is the environment variable for the MongoDB database name.
	MongoDatabaseEnv = "MONGO_DATABASE"

	// MongoCollectionEnv is the environment variable for the products collection name.
	MongoCollectionEnv = "MONGO_COLLECTION"

	// MongoConnectTimeoutEnv is the environment variable for the server selection timeout.
	MongoConnectTimeoutEnv = "MONGO_CONNECT_TIMEOUT"

	// DBHostEnv is the environment variable for database host.
	DBHostEnv = "DB_HOST"

	// DBPortEnv is the environment variable for database port.
	DBPortEnv = "DB_PORT"

	// DBUserEnv is the environment variable for database user.
	DBUserEnv = "DB_USER"

	// DBPassEnv is the environment variable for database password.
	DBPassEnv = "DB_PASS"

	// DBNameEnv is the environment variable for database name.
	DBNameEnv = "DB_NAME"

	// DBConnectTimeoutEnv is the environment variable for the database connect timeout.
	DBConnectTimeoutEnv = "DB_CONNECT_TIMEOUT"

	// HTTPServerPortEnv is the environment variable for HTTP server port.
	HTTPServerPortEnv = "PORT"

	// MetricsServerPortEnv is the environment variable for metrics server port.
	MetricsServerPortEnv = "METRICS_SERVER_PORT"

	// CORSAllowedOriginEnv is the environment variable for the allowed CORS origin.
	CORSAllowedOriginEnv = "CORS_ALLOWED_ORIGIN"

	// EnvFilePath is the environment variable for .env file path (only for local/test environment).
	EnvFilePath = "ENV_PATH"

	// DefaultEnvFilePath is the default path to the .env file.
	DefaultEnvFilePath = ".env"

	// AWSRegionEnv is the environment variable for AWS region.
	AWSRegionEnv = "AWS_REGION"

	// AWSEndpointEnv is the environment variable for AWS endpoint.
	AWSEndpointEnv = "AWS_ENDPOINT"

	// SQSQueueURLEnv is the environment variable for SQS queue URL.
	SQSQueueURLEnv = "SQS_QUEUE_URL"
)

const (
	// StoreDriverMongo stores products in a MongoDB collection.
	StoreDriverMongo = "mongo"
	// StoreDriverPostgres stores products in a PostgreSQL table.
	StoreDriverPostgres = "postgres"

	DefaultMongoURI            = "mongodb://127.0.0.1:27017/ProductsDB"
	DefaultMongoDatabase       = "ProductsDB"
	DefaultMongoCollection     = "products"
	DefaultMongoConnectTimeout = 3 * time.Second
	DefaultHTTPServerPort      = "3000"
	DefaultMetricsServerPort   = "9090"
	DefaultDBPort              = "5432"
	DefaultDBConnectTimeout    = 3 * time.Second
	DefaultCORSAllowedOrigin   = "*"
)

var (
	// ErrMissingConfig is returned when required configuration values are missing.
	ErrMissingConfig = errors.New("missing config data")

	// ErrUnknownStoreDriver is returned when STORE_DRIVER names an unsupported backend.
	ErrUnknownStoreDriver = errors.New("unknown store driver")
)

// Config represents the application configuration.
type Config struct {
	DebugMode     bool
	StoreDriver   string
	Mongo         Mongo
	Database      DB
	HTTPServer    Server
	MetricsServer Server
	CORS          CORS
	AWS           AWSConfig
}

// Mongo represents MongoDB connection settings.
type Mongo struct {
	URI            string
	Database       string
	Collection     string
	ConnectTimeout time.Duration
}

// AWSConfig represents AWS-specific configuration settings.
type AWSConfig struct {
	Region      string
	Endpoint    string
	SQSQueueURL string
}

// DB represents database configuration settings.
type DB struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     string

	ConnectTimeout time.Duration
}

// Server represents server configuration settings.
type Server struct {
	Port string
}

// CORS represents cross-origin settings for the HTTP API.
type CORS struct {
	AllowedOrigin string
}

// PublishingEnabled reports whether product notifications should be sent to SQS.
func (c *Config) PublishingEnabled() bool {
	return c.AWS.SQSQueueURL != ""
}

func allNonEmpty(keyValues map[string]string) error {
	for key, value := range keyValues {
		if value == "" {
			slog.Error("configuration validation failed", slog.String("key", key), slog.String("error", "value is empty"))
			return fmt.Errorf("%w for key: %s", ErrMissingConfig, key)
		}
	}
	return nil
}

func allNumbers(keyValues map[string]string) error {
	for key, value := range keyValues {
		_, err := strconv.Atoi(value)
		if err != nil {
			slog.Error("configuration validation failed", slog.String("key", key), slog.String("value", value), slog.String("error", err.Error()))
			return fmt.Errorf("invalid number for key %s: %w", key, err)
		}
	}
	return nil
}

func (c *Config) validate() error {
	if err := c.validateStore(); err != nil {
		return err
	}

	// Validate server ports
	if err := allNonEmpty(map[string]string{
		HTTPServerPortEnv:    c.HTTPServer.Port,
		MetricsServerPortEnv: c.MetricsServer.Port,
	}); err != nil {
		return fmt.Errorf("server port configuration incomplete: %w", err)
	}

	if err := allNumbers(map[string]string{
		HTTPServerPortEnv:    c.HTTPServer.Port,
		MetricsServerPortEnv: c.MetricsServer.Port,
	}); err != nil {
		return fmt.Errorf("invalid port number: %w", err)
	}

	// The queue is optional; once set, a region is needed to reach it.
	if c.PublishingEnabled() {
		return c.validateQueue()
	}
	return nil
}

func (c *Config) validateQueue() error {
	if err := allNonEmpty(map[string]string{
		SQSQueueURLEnv: c.AWS.SQSQueueURL,
		AWSRegionEnv:   c.AWS.Region,
	}); err != nil {
		return fmt.Errorf("AWS configuration incomplete: %w", err)
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.StoreDriver {
	case StoreDriverMongo:
		if err := allNonEmpty(map[string]string{
			MongoURIEnv:        c.Mongo.URI,
			MongoDatabaseEnv:   c.Mongo.Database,
			MongoCollectionEnv: c.Mongo.Collection,
		}); err != nil {
			return fmt.Errorf("mongo configuration incomplete: %w", err)
		}
		if c.Mongo.ConnectTimeout <= 0 {
			return fmt.Errorf("invalid %s: must be positive", MongoConnectTimeoutEnv)
		}
	case StoreDriverPostgres:
		if err := allNonEmpty(map[string]string{
			DBHostEnv: c.Database.Host,
			DBUserEnv: c.Database.User,
			DBNameEnv: c.Database.Name,
		}); err != nil {
			return fmt.Errorf("database configuration incomplete: %w", err)
		}
		if err := allNumbers(map[string]string{
			DBPortEnv: c.Database.Port,
		}); err != nil {
			return fmt.Errorf("invalid port number: %w", err)
		}
		if c.Database.ConnectTimeout <= 0 {
			return fmt.Errorf("invalid %s: must be positive", DBConnectTimeoutEnv)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStoreDriver, c.StoreDriver)
	}
	return nil
}

func getEnv(name, defaultValue string) string {
	if val := os.Getenv(name); val != "" {
		return val
	}
	return defaultValue
}

func getEnvAsBool(name string, defaultValue bool) bool {
	if val, err := strconv.ParseBool(os.Getenv(name)); err == nil {
		return val
	}
	return defaultValue
}

func getEnvAsDuration(name string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return defaultValue, nil
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		slog.Error("configuration validation failed", slog.String("key", name), slog.String("value", raw), slog.String("error", err.Error()))
		return 0, fmt.Errorf("%w: invalid duration for key %s: %w", ErrMissingConfig, name, err)
	}
	return val, nil
}

// databaseFromURI returns the default database named in a mongodb:// URI path, if any.
func databaseFromURI(uri string) string {
	cs, err := connstring.Parse(uri)
	if err != nil {
		return ""
	}
	return cs.Database
}

// ApplyEnvFile loads environment variables from the specified .env files.
func ApplyEnvFile(files ...string) error {
	err := godotenv.Load(files...)
	if err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// LoadFromEnv loads the product service configuration from environment variables and validates it.
func LoadFromEnv() (*Config, error) {
	conf, err := load()
	if err != nil {
		return nil, err
	}
	if err := conf.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return conf, nil
}

// LoadConsumerFromEnv loads configuration for the notification consumer.
// Only the queue settings are validated; the consumer never opens a store.
func LoadConsumerFromEnv() (*Config, error) {
	conf, err := load()
	if err != nil {
		return nil, err
	}
	if err := conf.validateQueue(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return conf, nil
}

func load() (*Config, error) {
	envPath := os.Getenv(EnvFilePath)
	if envPath == "" {
		envPath = DefaultEnvFilePath
	}
	err := ApplyEnvFile(envPath)
	if err != nil {
		// just log the error, maybe all envs are set in another way
		slog.Info("failed to load from .env", slog.Any("err", err))
	}

	mongoURI := getEnv(MongoURIEnv, DefaultMongoURI)
	mongoDatabase := os.Getenv(MongoDatabaseEnv)
	if mongoDatabase == "" {
		mongoDatabase = databaseFromURI(mongoURI)
	}
	if mongoDatabase == "" {
		mongoDatabase = DefaultMongoDatabase
	}

	mongoTimeout, err := getEnvAsDuration(MongoConnectTimeoutEnv, DefaultMongoConnectTimeout)
	if err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	dbTimeout, err := getEnvAsDuration(DBConnectTimeoutEnv, DefaultDBConnectTimeout)
	if err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	conf := &Config{
		DebugMode:   getEnvAsBool(DebugModeEnv, false),
		StoreDriver: getEnv(StoreDriverEnv, StoreDriverMongo),
		Mongo: Mongo{
			URI:            mongoURI,
			Database:       mongoDatabase,
			Collection:     getEnv(MongoCollectionEnv, DefaultMongoCollection),
			ConnectTimeout: mongoTimeout,
		},
		Database: DB{
			Host:     os.Getenv(DBHostEnv),
			User:     os.Getenv(DBUserEnv),
			Password: os.Getenv(DBPassEnv),
			Name:     os.Getenv(DBNameEnv),
			Port:     getEnv(DBPortEnv, DefaultDBPort),

			ConnectTimeout: dbTimeout,
		},
		HTTPServer: Server{
			Port: getEnv(HTTPServerPortEnv, DefaultHTTPServerPort),
		},
		MetricsServer: Server{
			Port: getEnv(MetricsServerPortEnv, DefaultMetricsServerPort),
		},
		CORS: CORS{
			AllowedOrigin: getEnv(CORSAllowedOriginEnv, DefaultCORSAllowedOrigin),
		},
		AWS: AWSConfig{
			Region:      os.Getenv(AWSRegionEnv),
			Endpoint:    os.Getenv(AWSEndpointEnv),
			SQSQueueURL: os.Getenv(SQSQueueURLEnv),
		},
	}
	return conf, nil
}

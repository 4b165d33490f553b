package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Cache     CacheConfig     `mapstructure:"cache"`
	S3        S3Config        `mapstructure:"s3"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	Environment     string        `mapstructure:"environment"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level     string `mapstructure:"level"`
	File      string `mapstructure:"file"`
	ToStdout  bool   `mapstructure:"to_stdout"`
	JSON      bool   `mapstructure:"json"`
	SentryDSN string `mapstructure:"sentry_dsn"` // empty disables sentry
}

type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"` // "mongo" or "memory"
	URI          string `mapstructure:"uri"`
	Name         string `mapstructure:"name"`
	Transactions bool   `mapstructure:"transactions"` // needs a replica set
}

// RedisConfig configures the rate limiter backend. An empty address disables rate limiting.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type RateLimitConfig struct {
	RatingsPerMinute int `mapstructure:"ratings_per_minute"`
	SigninPerMinute  int `mapstructure:"signin_per_minute"`
}

type CacheConfig struct {
	SizeMB int           `mapstructure:"size_mb"` // 0 disables the exercise cache
	TTL    time.Duration `mapstructure:"ttl"`
}

// S3Config points at the bucket holding catalog images. An empty bucket disables presigning.
type S3Config struct {
	Endpoint        string        `mapstructure:"endpoint"`
	Region          string        `mapstructure:"region"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	BucketName      string        `mapstructure:"bucket_name"`
	UseSSL          bool          `mapstructure:"use_ssl"`
	PresignExpiry   time.Duration `mapstructure:"presign_expiry"`
}

// JWTConfig defines JWT specific configuration
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"` // empty allows all
}

type MetricsConfig struct {
	Namespace string `mapstructure:"namespace"`
	Subsystem string `mapstructure:"subsystem"`
}

// LoadConfig reads configuration from file or environment variables.
// A .env file in the working directory is loaded first when present.
// Callers validate the parts they need.
func LoadConfig(path string) (config Config, err error) {
	if envErr := godotenv.Load(); envErr != nil {
		log.Debugf("no .env file loaded: %s", envErr)
	}

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// server.address -> SERVER_ADDRESS, jwt.expiration -> JWT_EXPIRATION
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	setDefaults(v)

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config, fmt.Errorf("read config: %w", err)
		}
		err = nil
	}

	if err = v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("unmarshal config: %w", err)
	}
	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.to_stdout", true)
	v.SetDefault("database.driver", "mongo")
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "liftcoach")
	v.SetDefault("database.transactions", false)
	v.SetDefault("rate_limit.ratings_per_minute", 30)
	v.SetDefault("rate_limit.signin_per_minute", 10)
	v.SetDefault("cache.size_mb", 32)
	v.SetDefault("cache.ttl", "10m")
	v.SetDefault("s3.use_ssl", true)
	v.SetDefault("s3.presign_expiry", "15m")
	v.SetDefault("jwt.expiration", "24h")
	v.SetDefault("metrics.namespace", "liftcoach")
	v.SetDefault("metrics.subsystem", "server")
	// Bind keys without defaults so env vars are picked up by Unmarshal.
	for _, key := range []string{
		"log.file", "log.json", "log.sentry_dsn",
		"redis.address", "redis.password", "redis.db",
		"s3.endpoint", "s3.region", "s3.access_key_id", "s3.secret_access_key", "s3.bucket_name",
		"jwt.secret", "cors.allowed_origins",
	} {
		_ = v.BindEnv(key)
	}
}

// Validate checks settings the server cannot start without.
func (c Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret must be set")
	}
	return c.ValidateDatabase()
}

// ValidateDatabase checks the storage settings alone, enough for the CLI.
func (c Config) ValidateDatabase() error {
	switch c.Database.Driver {
	case "mongo":
		if c.Database.URI == "" || c.Database.Name == "" {
			return errors.New("database.uri and database.name must be set for the mongo driver")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown database.driver %q", c.Database.Driver)
	}
	return nil
}

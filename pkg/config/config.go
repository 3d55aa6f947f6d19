package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultJWTSecret is only acceptable outside production
const DefaultJWTSecret = "your-secret-key-change-in-production"

// Storage drivers
const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// Config holds all application configuration
type Config struct {
	App           AppConfig      `mapstructure:"app"`
	Server        ServerConfig   `mapstructure:"server"`
	Storage       StorageConfig  `mapstructure:"storage"`
	AuthDatabase  DatabaseConfig `mapstructure:"auth_database"`  // backend-auth
	StoreDatabase DatabaseConfig `mapstructure:"store_database"` // backend-store
	MOTDatabase   DatabaseConfig `mapstructure:"mot_database"`   // backend-mot
	Redis         RedisConfig    `mapstructure:"redis"`
	Kafka         KafkaConfig    `mapstructure:"kafka"`
	JWT           JWTConfig      `mapstructure:"jwt"`
	Password      PasswordConfig `mapstructure:"password"`
	OTel          OTelConfig     `mapstructure:"otel"`
	Store         StoreConfig    `mapstructure:"store"`
	Payment       PaymentConfig  `mapstructure:"payment"`
	Email         EmailConfig    `mapstructure:"email"`
	Gateway       GatewayConfig  `mapstructure:"gateway"`
}

// AppConfig holds application-level settings
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"` // development, staging, production
	Debug       bool   `mapstructure:"debug"`
	Version     string `mapstructure:"version"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	// CORSOrigins is the browser origin allow list; empty or "*" allows any
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// StorageConfig selects the record store backend
type StorageConfig struct {
	Driver      string `mapstructure:"driver"` // postgres, memory
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// DSN returns the PostgreSQL connection string
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr returns the Redis address
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// KafkaConfig holds Kafka/Redpanda connection settings
type KafkaConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	Brokers  []string `mapstructure:"brokers"`
	ClientID string   `mapstructure:"client_id"`
}

// JWTConfig holds token signing settings. The secret is shared by every
// service that issues or verifies tokens.
type JWTConfig struct {
	Secret         string        `mapstructure:"secret"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
}

// PasswordConfig holds the registration password policy
type PasswordConfig struct {
	MinLength int    `mapstructure:"min_length"`
	MaxLength int    `mapstructure:"max_length"`
	Hasher    string `mapstructure:"hasher"` // argon2id, bcrypt
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled       bool    `mapstructure:"enabled"`
	ServiceName   string  `mapstructure:"service_name"`
	CollectorAddr string  `mapstructure:"collector_addr"`
	SampleRatio   float64 `mapstructure:"sample_ratio"`
}

// StoreConfig holds catalog and order settings for backend-store
type StoreConfig struct {
	TaxRate    float64 `mapstructure:"tax_rate"`
	Currency   string  `mapstructure:"currency"`
	OrderTopic string  `mapstructure:"order_topic"`
}

// PaymentConfig selects and configures the payment gateway
type PaymentConfig struct {
	Gateway         string `mapstructure:"gateway"` // mock, stripe
	StripeSecretKey string `mapstructure:"stripe_secret_key"`
}

// EmailConfig configures outbound email through a Lambda function
type EmailConfig struct {
	LambdaFunction string `mapstructure:"lambda_function"`
	AWSRegion      string `mapstructure:"aws_region"`
	AWSEndpointURL string `mapstructure:"aws_endpoint_url"`
	// Static credentials, for localstack. Empty means the default chain.
	AWSAccessKeyID     string `mapstructure:"aws_access_key_id"`
	AWSSecretAccessKey string `mapstructure:"aws_secret_access_key"`
	From               string `mapstructure:"from"`
}

// GatewayConfig holds the upstream addresses and rate limits of backend-gateway
type GatewayConfig struct {
	AuthServiceURL  string        `mapstructure:"auth_service_url"`
	StoreServiceURL string        `mapstructure:"store_service_url"`
	MOTServiceURL   string        `mapstructure:"mot_service_url"`
	ProxyTimeout    time.Duration `mapstructure:"proxy_timeout"`

	RateLimitEnabled bool `mapstructure:"rate_limit_enabled"`
	RateLimitRPS     int  `mapstructure:"rate_limit_rps"` // per client IP
	RateLimitBurst   int  `mapstructure:"rate_limit_burst"`
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")

	// A missing .env is fine, the environment may carry everything.
	_ = v.ReadInConfig()

	return load(v)
}

// LoadWithPath loads configuration from a specific path
func LoadWithPath(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	cfg := &Config{}
	if err := bindConfig(v, cfg); err != nil {
		return nil, fmt.Errorf("failed to bind config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("APP_NAME", "autostore")
	v.SetDefault("APP_ENVIRONMENT", "development")
	v.SetDefault("APP_DEBUG", true)
	v.SetDefault("APP_VERSION", "1.0.0")

	// Server defaults. Port 0 lets each service pick its own.
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 0)
	v.SetDefault("SERVER_READ_TIMEOUT", "5s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "10s")
	v.SetDefault("SERVER_IDLE_TIMEOUT", "120s")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	v.SetDefault("STORAGE_DRIVER", StorageDriverPostgres)
	v.SetDefault("STORAGE_AUTO_MIGRATE", true)

	// Each service owns its database
	setDatabaseDefaults(v, "AUTH", "auth_db")
	setDatabaseDefaults(v, "STORE", "store_db")
	setDatabaseDefaults(v, "MOT", "mot_db")

	// Redis defaults
	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_POOL_SIZE", 50)
	v.SetDefault("REDIS_MIN_IDLE_CONNS", 5)
	v.SetDefault("REDIS_DIAL_TIMEOUT", "5s")
	v.SetDefault("REDIS_READ_TIMEOUT", "3s")
	v.SetDefault("REDIS_WRITE_TIMEOUT", "3s")

	// Kafka defaults
	v.SetDefault("KAFKA_ENABLED", false)
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_CLIENT_ID", "autostore")

	// JWT defaults
	v.SetDefault("JWT_SECRET", DefaultJWTSecret)
	v.SetDefault("JWT_ACCESS_TOKEN_TTL", "60m")

	// Password policy
	v.SetDefault("PASSWORD_MIN_LENGTH", 6)
	v.SetDefault("PASSWORD_MAX_LENGTH", 72)
	v.SetDefault("PASSWORD_HASHER", "argon2id")

	// OTel defaults
	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_SERVICE_NAME", "autostore")
	v.SetDefault("OTEL_COLLECTOR_ADDR", "localhost:4317")
	v.SetDefault("OTEL_SAMPLE_RATIO", 1.0)

	// Store defaults
	v.SetDefault("STORE_TAX_RATE", 0.20)
	v.SetDefault("STORE_CURRENCY", "gbp")
	v.SetDefault("STORE_ORDER_TOPIC", "order-events")

	// Payment defaults
	v.SetDefault("PAYMENT_GATEWAY", "mock")
	v.SetDefault("STRIPE_SECRET_KEY", "")

	// Email defaults
	v.SetDefault("EMAIL_LAMBDA_FUNCTION", "")
	v.SetDefault("AWS_REGION", "eu-west-2")
	v.SetDefault("AWS_ENDPOINT_URL", "")
	v.SetDefault("AWS_ACCESS_KEY_ID", "")
	v.SetDefault("AWS_SECRET_ACCESS_KEY", "")
	v.SetDefault("EMAIL_FROM", "no-reply@autostore.local")

	// Gateway defaults
	v.SetDefault("AUTH_SERVICE_URL", "http://localhost:8081")
	v.SetDefault("STORE_SERVICE_URL", "http://localhost:8082")
	v.SetDefault("MOT_SERVICE_URL", "http://localhost:8083")
	v.SetDefault("GATEWAY_PROXY_TIMEOUT", "30s")
	v.SetDefault("RATE_LIMIT_ENABLED", true)
	v.SetDefault("RATE_LIMIT_RPS", 50)
	v.SetDefault("RATE_LIMIT_BURST", 100)
}

func setDatabaseDefaults(v *viper.Viper, prefix, dbName string) {
	v.SetDefault(prefix+"_DATABASE_HOST", "localhost")
	v.SetDefault(prefix+"_DATABASE_PORT", 5432)
	v.SetDefault(prefix+"_DATABASE_USER", "postgres")
	v.SetDefault(prefix+"_DATABASE_PASSWORD", "postgres")
	v.SetDefault(prefix+"_DATABASE_DBNAME", dbName)
	v.SetDefault(prefix+"_DATABASE_SSLMODE", "disable")
	v.SetDefault(prefix+"_DATABASE_MAX_OPEN_CONNS", 20)
	v.SetDefault(prefix+"_DATABASE_MAX_IDLE_CONNS", 2)
	v.SetDefault(prefix+"_DATABASE_CONN_MAX_LIFETIME", "30m")
	v.SetDefault(prefix+"_DATABASE_CONN_MAX_IDLE_TIME", "5m")
}

func bindDatabase(v *viper.Viper, prefix string) DatabaseConfig {
	return DatabaseConfig{
		Host:            v.GetString(prefix + "_DATABASE_HOST"),
		Port:            v.GetInt(prefix + "_DATABASE_PORT"),
		User:            v.GetString(prefix + "_DATABASE_USER"),
		Password:        v.GetString(prefix + "_DATABASE_PASSWORD"),
		DBName:          v.GetString(prefix + "_DATABASE_DBNAME"),
		SSLMode:         v.GetString(prefix + "_DATABASE_SSLMODE"),
		MaxOpenConns:    v.GetInt(prefix + "_DATABASE_MAX_OPEN_CONNS"),
		MaxIdleConns:    v.GetInt(prefix + "_DATABASE_MAX_IDLE_CONNS"),
		ConnMaxLifetime: v.GetDuration(prefix + "_DATABASE_CONN_MAX_LIFETIME"),
		ConnMaxIdleTime: v.GetDuration(prefix + "_DATABASE_CONN_MAX_IDLE_TIME"),
	}
}

func bindConfig(v *viper.Viper, cfg *Config) error {
	// App
	cfg.App.Name = v.GetString("APP_NAME")
	cfg.App.Environment = v.GetString("APP_ENVIRONMENT")
	cfg.App.Debug = v.GetBool("APP_DEBUG")
	cfg.App.Version = v.GetString("APP_VERSION")

	// Server
	cfg.Server.Host = v.GetString("SERVER_HOST")
	cfg.Server.Port = v.GetInt("SERVER_PORT")
	cfg.Server.ReadTimeout = v.GetDuration("SERVER_READ_TIMEOUT")
	cfg.Server.WriteTimeout = v.GetDuration("SERVER_WRITE_TIMEOUT")
	cfg.Server.IdleTimeout = v.GetDuration("SERVER_IDLE_TIMEOUT")
	cfg.Server.CORSOrigins = splitList(v.GetString("CORS_ALLOWED_ORIGINS"))

	// Storage
	cfg.Storage.Driver = strings.ToLower(v.GetString("STORAGE_DRIVER"))
	cfg.Storage.AutoMigrate = v.GetBool("STORAGE_AUTO_MIGRATE")

	cfg.AuthDatabase = bindDatabase(v, "AUTH")
	cfg.StoreDatabase = bindDatabase(v, "STORE")
	cfg.MOTDatabase = bindDatabase(v, "MOT")

	// Redis
	cfg.Redis.Enabled = v.GetBool("REDIS_ENABLED")
	cfg.Redis.Host = v.GetString("REDIS_HOST")
	cfg.Redis.Port = v.GetInt("REDIS_PORT")
	cfg.Redis.Password = v.GetString("REDIS_PASSWORD")
	cfg.Redis.DB = v.GetInt("REDIS_DB")
	cfg.Redis.PoolSize = v.GetInt("REDIS_POOL_SIZE")
	cfg.Redis.MinIdleConns = v.GetInt("REDIS_MIN_IDLE_CONNS")
	cfg.Redis.DialTimeout = v.GetDuration("REDIS_DIAL_TIMEOUT")
	cfg.Redis.ReadTimeout = v.GetDuration("REDIS_READ_TIMEOUT")
	cfg.Redis.WriteTimeout = v.GetDuration("REDIS_WRITE_TIMEOUT")

	// Kafka
	cfg.Kafka.Enabled = v.GetBool("KAFKA_ENABLED")
	cfg.Kafka.Brokers = splitList(v.GetString("KAFKA_BROKERS"))
	cfg.Kafka.ClientID = v.GetString("KAFKA_CLIENT_ID")

	// JWT
	cfg.JWT.Secret = v.GetString("JWT_SECRET")
	cfg.JWT.AccessTokenTTL = v.GetDuration("JWT_ACCESS_TOKEN_TTL")

	// Password
	cfg.Password.MinLength = v.GetInt("PASSWORD_MIN_LENGTH")
	cfg.Password.MaxLength = v.GetInt("PASSWORD_MAX_LENGTH")
	cfg.Password.Hasher = strings.ToLower(v.GetString("PASSWORD_HASHER"))

	// OTel
	cfg.OTel.Enabled = v.GetBool("OTEL_ENABLED")
	cfg.OTel.ServiceName = v.GetString("OTEL_SERVICE_NAME")
	cfg.OTel.CollectorAddr = v.GetString("OTEL_COLLECTOR_ADDR")
	cfg.OTel.SampleRatio = v.GetFloat64("OTEL_SAMPLE_RATIO")

	// Store
	cfg.Store.TaxRate = v.GetFloat64("STORE_TAX_RATE")
	cfg.Store.Currency = strings.ToLower(v.GetString("STORE_CURRENCY"))
	cfg.Store.OrderTopic = v.GetString("STORE_ORDER_TOPIC")

	// Payment
	cfg.Payment.Gateway = strings.ToLower(v.GetString("PAYMENT_GATEWAY"))
	cfg.Payment.StripeSecretKey = v.GetString("STRIPE_SECRET_KEY")

	// Email
	cfg.Email.LambdaFunction = v.GetString("EMAIL_LAMBDA_FUNCTION")
	cfg.Email.AWSRegion = v.GetString("AWS_REGION")
	cfg.Email.AWSEndpointURL = v.GetString("AWS_ENDPOINT_URL")
	cfg.Email.AWSAccessKeyID = v.GetString("AWS_ACCESS_KEY_ID")
	cfg.Email.AWSSecretAccessKey = v.GetString("AWS_SECRET_ACCESS_KEY")
	cfg.Email.From = v.GetString("EMAIL_FROM")

	// Gateway
	cfg.Gateway.AuthServiceURL = v.GetString("AUTH_SERVICE_URL")
	cfg.Gateway.StoreServiceURL = v.GetString("STORE_SERVICE_URL")
	cfg.Gateway.MOTServiceURL = v.GetString("MOT_SERVICE_URL")
	cfg.Gateway.ProxyTimeout = v.GetDuration("GATEWAY_PROXY_TIMEOUT")
	cfg.Gateway.RateLimitEnabled = v.GetBool("RATE_LIMIT_ENABLED")
	cfg.Gateway.RateLimitRPS = v.GetInt("RATE_LIMIT_RPS")
	cfg.Gateway.RateLimitBurst = v.GetInt("RATE_LIMIT_BURST")

	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return errors.New("app name is required")
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.JWT.Secret == "" {
		return errors.New("JWT secret is required")
	}
	if c.IsProduction() && c.JWT.Secret == DefaultJWTSecret {
		return errors.New("JWT secret must be changed in production")
	}
	if c.JWT.AccessTokenTTL <= 0 {
		return fmt.Errorf("invalid JWT access token TTL: %s", c.JWT.AccessTokenTTL)
	}

	if c.Password.MinLength < 1 || c.Password.MaxLength < c.Password.MinLength {
		return fmt.Errorf("invalid password length bounds: %d..%d", c.Password.MinLength, c.Password.MaxLength)
	}
	switch c.Password.Hasher {
	case "argon2id", "bcrypt":
	default:
		return fmt.Errorf("unknown password hasher: %q", c.Password.Hasher)
	}

	switch c.Storage.Driver {
	case StorageDriverPostgres, StorageDriverMemory:
	default:
		return fmt.Errorf("unknown storage driver: %q", c.Storage.Driver)
	}

	switch c.Payment.Gateway {
	case "mock":
	case "stripe":
		if c.Payment.StripeSecretKey == "" {
			return errors.New("STRIPE_SECRET_KEY is required when PAYMENT_GATEWAY=stripe")
		}
	default:
		return fmt.Errorf("unknown payment gateway: %q", c.Payment.Gateway)
	}

	if c.Store.TaxRate < 0 {
		return fmt.Errorf("invalid store tax rate: %v", c.Store.TaxRate)
	}

	if c.Gateway.RateLimitEnabled && (c.Gateway.RateLimitRPS <= 0 || c.Gateway.RateLimitBurst <= 0) {
		return fmt.Errorf("invalid rate limit: %d rps, burst %d", c.Gateway.RateLimitRPS, c.Gateway.RateLimitBurst)
	}

	return nil
}

// UsesMemoryStorage reports whether repositories should be kept in process
func (c *Config) UsesMemoryStorage() bool {
	return c.Storage.Driver == StorageDriverMemory
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	JWT       JWTConfig
	AI        AIConfig
	Payment   PaymentConfig
	CORS      CORSConfig
	Log       LogConfig
	Seed      bool
}

type ServerConfig struct {
	Port string
	Env  string
}

// IsProduction reports whether the server runs with production settings.
func (s ServerConfig) IsProduction() bool {
	return s.Env == "production"
}

type StorageConfig struct {
	Driver string // postgres or memory
}

type DatabaseConfig struct {
	Host          string
	Port          string
	User          string
	Password      string
	Database      string
	Schema        string
	MigrationsDir string
}

// DSN returns the pgx connection string for the configured database.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable&search_path=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, d.Schema,
	)
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr returns host:port for the redis client.
func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

type RateLimitConfig struct {
	Enabled       bool
	Requests      int
	WindowSeconds int
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  int // in minutes
	RefreshExpiry int // in days
}

type AIConfig struct {
	APIKey    string
	TextModel string
	JSONModel string
}

type PaymentConfig struct {
	PaystackSecretKey string
	PaystackBaseURL   string
	CallbackURL       string
	Currency          string
	ShippingFee       string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	File string
}

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

func Load() *Config {
	// Values already in the environment win over .env entries.
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env into environment: %v", err)
	}

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("STORAGE_DRIVER", StorageDriverPostgres)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("MIGRATIONS_DIR", "migrations")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("RATE_LIMIT_ENABLED", false)
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)
	viper.SetDefault("JWT_ACCESS_EXPIRY", 7*24*60)
	viper.SetDefault("JWT_REFRESH_EXPIRY", 30)
	viper.SetDefault("GEMINI_TEXT_MODEL", "gemini-2.5-flash")
	viper.SetDefault("GEMINI_JSON_MODEL", "gemini-2.5-pro")
	viper.SetDefault("PAYSTACK_BASE_URL", "https://api.paystack.co")
	viper.SetDefault("PAYMENT_CALLBACK_URL", "http://localhost:8080/payment-success")
	viper.SetDefault("CURRENCY", "GHS")
	viper.SetDefault("SHIPPING_FEE", "10.00")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	viper.SetDefault("SEED_DEMO_DATA", false)

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
			Env:  viper.GetString("SERVER_ENV"),
		},
		Storage: StorageConfig{
			Driver: strings.ToLower(viper.GetString("STORAGE_DRIVER")),
		},
		Database: DatabaseConfig{
			Host:          viper.GetString("DB_HOST"),
			Port:          viper.GetString("DB_PORT"),
			User:          viper.GetString("DB_USER"),
			Password:      viper.GetString("DB_PASSWORD"),
			Database:      viper.GetString("DB_DATABASE"),
			Schema:        viper.GetString("DB_SCHEMA"),
			MigrationsDir: viper.GetString("MIGRATIONS_DIR"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		RateLimit: RateLimitConfig{
			Enabled:       viper.GetBool("RATE_LIMIT_ENABLED"),
			Requests:      viper.GetInt("RATE_LIMIT_REQUESTS"),
			WindowSeconds: viper.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		JWT: JWTConfig{
			Secret:        viper.GetString("JWT_SECRET"),
			AccessExpiry:  viper.GetInt("JWT_ACCESS_EXPIRY"),
			RefreshExpiry: viper.GetInt("JWT_REFRESH_EXPIRY"),
		},
		AI: AIConfig{
			APIKey:    viper.GetString("GEMINI_API_KEY"),
			TextModel: viper.GetString("GEMINI_TEXT_MODEL"),
			JSONModel: viper.GetString("GEMINI_JSON_MODEL"),
		},
		Payment: PaymentConfig{
			PaystackSecretKey: viper.GetString("PAYSTACK_SECRET_KEY"),
			PaystackBaseURL:   viper.GetString("PAYSTACK_BASE_URL"),
			CallbackURL:       viper.GetString("PAYMENT_CALLBACK_URL"),
			Currency:          viper.GetString("CURRENCY"),
			ShippingFee:       viper.GetString("SHIPPING_FEE"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Log: LogConfig{
			File: viper.GetString("LOG_FILE"),
		},
		Seed: viper.GetBool("SEED_DEMO_DATA"),
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate reports settings that make the server unsafe to start.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageDriverPostgres:
	case StorageDriverMemory:
		if c.Server.IsProduction() {
			return fmt.Errorf("storage driver %q is not allowed in production", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	if c.JWT.Secret == "" && c.Server.IsProduction() {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}

	return nil
}

package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config stores all runtime settings. Values come from the environment
// (optionally seeded from a .env file) with the defaults below.
type Config struct {
	Env         string `mapstructure:"ENV"`
	Port        string `mapstructure:"PORT"`
	StoreDriver string `mapstructure:"STORE_DRIVER"`

	DBHost            string        `mapstructure:"DB_HOST"`
	DBPort            string        `mapstructure:"DB_PORT"`
	DBUser            string        `mapstructure:"DB_USER"`
	DBPassword        string        `mapstructure:"DB_PASSWORD"`
	DBName            string        `mapstructure:"DB_NAME"`
	DBSSLMode         string        `mapstructure:"DB_SSLMODE"`
	DBMaxOpenConns    int32         `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns    int32         `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBConnMaxLifetime time.Duration `mapstructure:"DB_CONN_MAX_LIFETIME"`

	RedisHost       string        `mapstructure:"REDIS_HOST"`
	RedisPort       string        `mapstructure:"REDIS_PORT"`
	RedisPassword   string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB         int           `mapstructure:"REDIS_DB"`
	BalanceCacheTTL time.Duration `mapstructure:"BALANCE_CACHE_TTL"`

	RabbitMQURL       string `mapstructure:"RABBITMQ_URL"`
	EventExchange     string `mapstructure:"EVENT_EXCHANGE"`
	NotificationQueue string `mapstructure:"NOTIFICATION_QUEUE"`

	JWTSecret       string `mapstructure:"JWT_SECRET"`
	StripeSecretKey string `mapstructure:"STRIPE_SECRET_KEY"`
	CORSOrigins     string `mapstructure:"CORS_ORIGINS"`

	Currency       string        `mapstructure:"CURRENCY"`
	ServiceFeeRate string        `mapstructure:"SERVICE_FEE_RATE"`
	FeaturedPrices string        `mapstructure:"FEATURED_PRICES"`
	PromotionTTL   time.Duration `mapstructure:"PROMOTION_TTL"`

	ReconcileSchedule       string `mapstructure:"RECONCILE_SCHEDULE"`
	ReconcileRepair         bool   `mapstructure:"RECONCILE_REPAIR"`
	PromotionExpirySchedule string `mapstructure:"PROMOTION_EXPIRY_SCHEDULE"`
}

var defaults = map[string]interface{}{
	"ENV":          "development",
	"PORT":         "5000",
	"STORE_DRIVER": "postgres",

	"DB_HOST":              "localhost",
	"DB_PORT":              "5432",
	"DB_USER":              "postgres",
	"DB_PASSWORD":          "postgres",
	"DB_NAME":              "pazar",
	"DB_SSLMODE":           "disable",
	"DB_MAX_OPEN_CONNS":    100,
	"DB_MAX_IDLE_CONNS":    10,
	"DB_CONN_MAX_LIFETIME": "1h",

	"REDIS_HOST":        "",
	"REDIS_PORT":        "6379",
	"REDIS_PASSWORD":    "",
	"REDIS_DB":          0,
	"BALANCE_CACHE_TTL": "5m",

	"RABBITMQ_URL":       "",
	"EVENT_EXCHANGE":     "marketplace.events",
	"NOTIFICATION_QUEUE": "notifications",

	"JWT_SECRET":        "",
	"STRIPE_SECRET_KEY": "",
	"CORS_ORIGINS":      "*",

	"CURRENCY":         "TRY",
	"SERVICE_FEE_RATE": "0.03",
	"FEATURED_PRICES":  "7:50,15:80,30:120",
	"PROMOTION_TTL":    "30m",

	"RECONCILE_SCHEDULE":        "@every 1h",
	"RECONCILE_REPAIR":          false,
	"PROMOTION_EXPIRY_SCHEDULE": "@every 5m",
}

// LoadEnv loads variables from a .env file if present.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found: %v", err)
	}
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if cfg.StoreDriver != "postgres" && cfg.StoreDriver != "memory" {
		return Config{}, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.StoreDriver)
	}
	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return Config{}, fmt.Errorf("JWT_SECRET must be set in production")
		}
		cfg.JWTSecret = "dev-secret"
		log.Printf("component=config msg=\"JWT_SECRET not set, using development secret\"")
	}
	return cfg, nil
}

// IsProduction checks if the app runs in production mode.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// DSN returns the PostgreSQL connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// RedisAddr returns host:port, or "" when Redis is not configured.
func (c Config) RedisAddr() string {
	if c.RedisHost == "" {
		return ""
	}
	return c.RedisHost + ":" + c.RedisPort
}

// GetEnv returns an environment variable or a default value.
func GetEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type HTTPServer struct {
	Addr string `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
}

type Database struct {
	Host            string        `yaml:"PG_HOST" env:"PG_HOST" env-default:"localhost"`
	Port            string        `yaml:"PG_PORT" env:"PG_PORT" env-default:"5432"`
	User            string        `yaml:"PG_USER" env:"PG_USER" env-required:"true"`
	Password        string        `yaml:"PG_PASSWORD" env:"PG_PASSWORD" env-required:"true"`
	Name            string        `yaml:"PG_DBNAME" env:"PG_DBNAME" env-required:"true"`
	SSLMode         string        `yaml:"PG_SSLMODE" env:"PG_SSLMODE" env-default:"require"`
	MaxOpenConns    int           `yaml:"MAX_OPEN_CONNS" env:"PG_MAX_OPEN_CONNS" env-default:"25"`
	MaxIdleConns    int           `yaml:"MAX_IDLE_CONNS" env:"PG_MAX_IDLE_CONNS" env-default:"25"`
	ConnMaxLifetime time.Duration `yaml:"CONN_MAX_LIFETIME" env:"PG_CONN_MAX_LIFETIME" env-default:"5m"`
	ConnMaxIdleTime time.Duration `yaml:"CONN_MAX_IDLE_TIME" env:"PG_CONN_MAX_IDLE_TIME" env-default:"1m"`
}

type RedisConnect struct {
	Host     string `yaml:"REDIS_HOST" env:"REDIS_HOST" env-default:"localhost"`
	Port     string `yaml:"REDIS_PORT" env:"REDIS_PORT" env-default:"6379"`
	Username string `yaml:"REDIS_USER" env:"REDIS_USER"`
	Password string `yaml:"REDIS_PASSWORD" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"REDIS_DB" env:"REDIS_DB" env-default:"0"`
}

type CacheConfig struct {
	DefaultTTL time.Duration `yaml:"default_ttl" env:"CACHE_DEFAULT_TTL" env-default:"5m"`
}

// SessionStore controls how long guest carts and pending orders survive in
// Redis without activity.
type SessionStore struct {
	CartTTL         time.Duration `yaml:"cart_ttl" env:"CART_TTL" env-default:"720h"`
	PendingOrderTTL time.Duration `yaml:"pending_order_ttl" env:"PENDING_ORDER_TTL" env-default:"72h"`
	LockTTL         time.Duration `yaml:"lock_ttl" env:"LOCK_TTL" env-default:"30s"`
}

type RateConfig struct {
	MaxAttempts int64         `yaml:"MAX_ATTEMPTS" env:"MAX_ATTEMPTS" env-default:"20"`
	WindowSize  time.Duration `yaml:"WINDOW_SIZE" env:"WINDOW_SIZE" env-default:"1m"`
}

type Stripe struct {
	APIKey   string `yaml:"STRIPE_API_KEY" env:"STRIPE_API_KEY" env-default:""`
	Currency string `yaml:"STRIPE_CURRENCY" env:"STRIPE_CURRENCY" env-default:"usd"`
}

type Checkout struct {
	PublicBaseURL string `yaml:"public_base_url" env:"PUBLIC_BASE_URL" env-default:"http://localhost:3000"`
	ReturnPath    string `yaml:"return_path" env:"CHECKOUT_RETURN_PATH" env-default:"/checkout/return"`
}

// ReturnURL is handed to the payment provider; it substitutes the session
// placeholder when redirecting back.
func (c *Checkout) ReturnURL() string {
	return c.PublicBaseURL + c.ReturnPath + "?session_id={CHECKOUT_SESSION_ID}"
}

type SendGrid struct {
	APIKey    string `yaml:"API_KEY" env:"SENDGRID_API_KEY" env-default:""`
	FromEmail string `yaml:"FROM_EMAIL" env:"SENDGRID_FROM_EMAIL" env-default:"orders@example.com"`
	FromName  string `yaml:"FROM_NAME" env:"SENDGRID_FROM_NAME" env-default:"Storefront"`
}

type Security struct {
	SessionKey    string        `yaml:"SESSION_KEY" env:"SESSION_KEY" env-required:"true"`
	SessionExpiry time.Duration `yaml:"SESSION_EXPIRY" env:"SESSION_EXPIRY" env-default:"720h"`
	// ServiceKey signs tokens for back-office routes. Empty disables them.
	ServiceKey     string   `yaml:"SERVICE_KEY" env:"SERVICE_KEY" env-default:""`
	TrustedProxies []string `yaml:"TRUSTED_PROXIES" env:"TRUSTED_PROXIES" env-separator:","`
}

type Chat struct {
	Endpoint     string        `yaml:"endpoint" env:"CHAT_ENDPOINT" env-default:""`
	APIKey       string        `yaml:"api_key" env:"CHAT_API_KEY" env-default:""`
	Model        string        `yaml:"model" env:"CHAT_MODEL" env-default:"gpt-4o-mini"`
	MaxTokens    int           `yaml:"max_tokens" env:"CHAT_MAX_TOKENS" env-default:"500"`
	MaxHistory   int           `yaml:"max_history" env:"CHAT_MAX_HISTORY" env-default:"20"`
	SystemPrompt string        `yaml:"system_prompt" env:"CHAT_SYSTEM_PROMPT" env-default:"You are a friendly shopping assistant for our store. Help customers find products, sizes and styles. Keep answers short."`
	Timeout      time.Duration `yaml:"timeout" env:"CHAT_TIMEOUT" env-default:"30s"`
}

type TryOn struct {
	Endpoint     string        `yaml:"endpoint" env:"TRYON_ENDPOINT" env-default:""`
	APIKey       string        `yaml:"api_key" env:"TRYON_API_KEY" env-default:""`
	PollInterval time.Duration `yaml:"poll_interval" env:"TRYON_POLL_INTERVAL" env-default:"3s"`
	Timeout      time.Duration `yaml:"timeout" env:"TRYON_TIMEOUT" env-default:"90s"`
	MaxPhotoSize int64         `yaml:"max_photo_size" env:"TRYON_MAX_PHOTO_SIZE" env-default:"10485760"`
}

type Otel struct {
	ServiceName      string  `yaml:"SERVICE_NAME" env:"OTEL_SERVICE_NAME" env-default:"storefront"`
	ExporterEndpoint string  `yaml:"EXPORTER_ENDPOINT" env:"OTEL_EXPORTER_OTLP_ENDPOINT" env-default:""`
	SamplerRatio     float64 `yaml:"SAMPLER_RATIO" env:"OTEL_SAMPLER_RATIO" env-default:"1.0"`
}

type Config struct {
	Env          string `yaml:"env" env:"ENV" env-required:"true"`
	HTTPServer   `yaml:"http_server"`
	Database     Database     `yaml:"database"`
	RedisConnect RedisConnect `yaml:"redis"`
	Cache        CacheConfig  `yaml:"cache"`
	SessionStore SessionStore `yaml:"session_store"`
	RateConfig   RateConfig   `yaml:"rateConfig"`
	Stripe       Stripe       `yaml:"stripe"`
	Checkout     Checkout     `yaml:"checkout"`
	SendGrid     SendGrid     `yaml:"sendgrid"`
	Security     Security     `yaml:"security"`
	Chat         Chat         `yaml:"chat"`
	TryOn        TryOn        `yaml:"tryon"`
	Otel         Otel         `yaml:"otel"`
}

func MustLoad() *Config {

	configPath := os.Getenv("CONFIG_PATH")

	if configPath == "" {

		flags := flag.String("config", "", "path to the config file")

		flag.Parse()

		configPath = *flags

		if configPath == "" {
			configPath = "./config/local.yaml"
		}

	}

	cfg, err := LoadConfigFromPath(configPath)
	if err != nil {
		log.Fatalf("can not read config file: %s", err.Error())
	}

	return cfg

}

func LoadConfigFromPath(configPath string) (*Config, error) {

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return &cfg, nil
}

func (d *Database) GetDSN() string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

func (r *RedisConnect) GetDSN() string {
	return fmt.Sprintf("redis://%s:%s@%s:%s", r.Username, r.Password, r.Host, r.Port)
}

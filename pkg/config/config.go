package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable consumed by the platform.
	EnvPrefix = "velocimech"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	Business      BusinessConfig
	Identity      IdentityConfig
	Bookings      BookingsConfig
	RateLimit     RateLimitConfig
	Stripe        StripeConfig
	Notifications NotificationsConfig
	Cron          CronConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"VELOCIMECH_APP_ENV" required:"true"`
	Port         string `envconfig:"VELOCIMECH_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"VELOCIMECH_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"VELOCIMECH_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"VELOCIMECH_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"VELOCIMECH_DB_DSN"`
	Driver string `envconfig:"VELOCIMECH_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"VELOCIMECH_DB_HOST"`
	Port     int    `envconfig:"VELOCIMECH_DB_PORT" default:"5432"`
	User     string `envconfig:"VELOCIMECH_DB_USER"`
	Password string `envconfig:"VELOCIMECH_DB_PASSWORD"`
	Name     string `envconfig:"VELOCIMECH_DB_NAME"`
	SSLMode  string `envconfig:"VELOCIMECH_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"VELOCIMECH_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"VELOCIMECH_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"VELOCIMECH_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"VELOCIMECH_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if strings.EqualFold(db.Driver, "sqlite") {
		db.DSN = "file:velocimech.db?cache=shared"
		return nil
	}
	if db.Host == "" || db.User == "" || db.Name == "" {
		return fmt.Errorf("database DSN or host/user/name are required")
	}
	db.DSN = fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(db.User),
		url.QueryEscape(db.Password),
		db.Host,
		db.Port,
		db.Name,
		db.SSLMode,
	)
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"VELOCIMECH_REDIS_URL"`
	Address      string        `envconfig:"VELOCIMECH_REDIS_ADDR"`
	Password     string        `envconfig:"VELOCIMECH_REDIS_PASSWORD"`
	DB           int           `envconfig:"VELOCIMECH_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"VELOCIMECH_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"VELOCIMECH_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"VELOCIMECH_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"VELOCIMECH_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"VELOCIMECH_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// BusinessConfig describes the single workshop territory the platform serves.
// All slot arithmetic happens in Timezone; storage is UTC.
type BusinessConfig struct {
	Timezone      string `envconfig:"VELOCIMECH_BUSINESS_TIMEZONE" default:"Pacific/Auckland"`
	ContactPhone  string `envconfig:"VELOCIMECH_BUSINESS_CONTACT_PHONE" default:"0800 835 624"`
	Currency      string `envconfig:"VELOCIMECH_BUSINESS_CURRENCY" default:"NZD"`
	OperatorEmail string `envconfig:"VELOCIMECH_BUSINESS_OPERATOR_EMAIL"`
}

type IdentityConfig struct {
	RegistryBaseURL       string        `envconfig:"VELOCIMECH_REGISTRY_BASE_URL"`
	RegistryTimeout       time.Duration `envconfig:"VELOCIMECH_REGISTRY_TIMEOUT" default:"10s"`
	RegistryClientCert    string        `envconfig:"VELOCIMECH_REGISTRY_CLIENT_CERT"`
	RegistryClientKey     string        `envconfig:"VELOCIMECH_REGISTRY_CLIENT_KEY"`
	RegistryCACert        string        `envconfig:"VELOCIMECH_REGISTRY_CA_CERT"`
	LookupCostCents       int64         `envconfig:"VELOCIMECH_REGISTRY_LOOKUP_COST_CENTS" default:"55"`
	CacheTTL              time.Duration `envconfig:"VELOCIMECH_IDENTITY_CACHE_TTL" default:"2160h"`
	IPDailyLimit          int64         `envconfig:"VELOCIMECH_IDENTITY_IP_DAILY_LIMIT" default:"20"`
	FingerprintDailyLimit int64         `envconfig:"VELOCIMECH_IDENTITY_FINGERPRINT_DAILY_LIMIT" default:"10"`
}

type BookingsConfig struct {
	PaymentHoldMinutes  int    `envconfig:"VELOCIMECH_BOOKINGS_PAYMENT_HOLD_MINUTES" default:"60"`
	TravelBufferMinutes int    `envconfig:"VELOCIMECH_BOOKINGS_TRAVEL_BUFFER_MINUTES" default:"30"`
	AdminBufferMinutes  int    `envconfig:"VELOCIMECH_BOOKINGS_ADMIN_BUFFER_MINUTES" default:"15"`
	CheckoutSuccessURL  string `envconfig:"VELOCIMECH_BOOKINGS_CHECKOUT_SUCCESS_URL" default:"https://velocimech.co.nz/booking/confirmed"`
	CheckoutCancelURL   string `envconfig:"VELOCIMECH_BOOKINGS_CHECKOUT_CANCEL_URL" default:"https://velocimech.co.nz/booking/cancelled"`
}

func (b BookingsConfig) PaymentHold() time.Duration {
	return time.Duration(b.PaymentHoldMinutes) * time.Minute
}

func (b BookingsConfig) SlotBuffer() time.Duration {
	return time.Duration(b.TravelBufferMinutes+b.AdminBufferMinutes) * time.Minute
}

type RateLimitConfig struct {
	PublicWindow  time.Duration `envconfig:"VELOCIMECH_RATE_LIMIT_PUBLIC_WINDOW" default:"1m"`
	PublicIPLimit int64         `envconfig:"VELOCIMECH_RATE_LIMIT_PUBLIC_IP_LIMIT" default:"30"`
}

type StripeConfig struct {
	APIKey string `envconfig:"VELOCIMECH_STRIPE_API_KEY"`
	Secret string `envconfig:"VELOCIMECH_STRIPE_SECRET"`
	Env    string `envconfig:"VELOCIMECH_STRIPE_ENV" default:"test"`
}

func (s StripeConfig) Environment() string {
	return s.Env
}

type NotificationsConfig struct {
	EmailEndpoint   string        `envconfig:"VELOCIMECH_NOTIFY_EMAIL_ENDPOINT"`
	EmailAPIKey     string        `envconfig:"VELOCIMECH_NOTIFY_EMAIL_API_KEY"`
	WorkshopBaseURL string        `envconfig:"VELOCIMECH_WORKSHOP_BASE_URL"`
	WorkshopAPIKey  string        `envconfig:"VELOCIMECH_WORKSHOP_API_KEY"`
	PushMaxRetries  uint64        `envconfig:"VELOCIMECH_NOTIFY_PUSH_MAX_RETRIES" default:"5"`
	PushBaseDelay   time.Duration `envconfig:"VELOCIMECH_NOTIFY_PUSH_BASE_DELAY" default:"2s"`
	HTTPTimeout     time.Duration `envconfig:"VELOCIMECH_NOTIFY_HTTP_TIMEOUT" default:"10s"`
}

type CronConfig struct {
	Interval        time.Duration `envconfig:"VELOCIMECH_CRON_INTERVAL" default:"5m"`
	CachePruneAfter time.Duration `envconfig:"VELOCIMECH_CRON_CACHE_PRUNE_AFTER" default:"4320h"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"VELOCIMECH_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"VELOCIMECH_AUTO_MIGRATE" default:"false"`
}

package config

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	defaultEnvFile              = ".env"
	defaultPort                 = "8080"
	defaultEnvironment          = "local"
	defaultReadTimeout          = 15 * time.Second
	defaultWriteTimeout         = 30 * time.Second
	defaultIdleTimeout          = 120 * time.Second
	defaultShutdownTimeout      = 20 * time.Second
	defaultFirestoreDialTimeout = 10 * time.Second
	defaultOrderEventsTopic     = "order-events"
	defaultRedisKeyPrefix       = "checkout:"
	defaultCouponCacheTTL       = 5 * time.Minute
	defaultRemoteTimeout        = 5 * time.Second
	defaultRemoteRetries        = 2
	defaultBreakerFailures      = 5
	defaultBreakerOpenTimeout   = 30 * time.Second
	defaultHomeCountry          = "US"
	defaultCurrency             = "USD"
	defaultTaxRate              = "0.08"
	defaultStaleTolerance       = "0.01"
	defaultPostalDigits         = 5
	defaultDraftTTL             = 72 * time.Hour
	defaultIdempotencyTTL       = 24 * time.Hour
	defaultIdempotencyInterval  = time.Hour
	defaultIdempotencyBatchSize = 200
)

// Backend names accepted by the store selectors.
const (
	BackendFirestore = "firestore"
	BackendRedis     = "redis"
	BackendMemory    = "memory"
	BackendRemote    = "remote"
)

// Config is the resolved runtime configuration. Load reads it from API_* variables.
type Config struct {
	Server      ServerConfig
	Firestore   FirestoreConfig
	PubSub      PubSubConfig
	Redis       RedisConfig
	CouponStore RemoteServiceConfig
	OrderAPI    RemoteServiceConfig
	Checkout    CheckoutConfig
	Idempotency IdempotencyConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port            string
	Environment     string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// FirestoreConfig stores database parameters. CredentialsFile, when set, is also used for the
// Pub/Sub client.
type FirestoreConfig struct {
	ProjectID       string
	EmulatorHost    string
	CredentialsFile string
	DialTimeout     time.Duration
}

// PubSubConfig selects the topic order events are published to. An empty ProjectID disables
// publishing.
type PubSubConfig struct {
	ProjectID        string
	OrderEventsTopic string
}

// RedisConfig configures the optional cache. An empty Addr disables Redis.
type RedisConfig struct {
	Addr           string
	Password       string
	DB             int
	KeyPrefix      string
	CouponCacheTTL time.Duration
}

// RemoteServiceConfig describes an upstream HTTP API guarded by a circuit breaker.
type RemoteServiceConfig struct {
	BaseURL            string
	APIKey             string
	Timeout            time.Duration
	MaxRetries         int
	BreakerFailures    int
	BreakerOpenTimeout time.Duration
}

// Enabled reports whether a base URL was configured.
func (c RemoteServiceConfig) Enabled() bool {
	return strings.TrimSpace(c.BaseURL) != ""
}

// CheckoutConfig holds pricing and validation parameters.
type CheckoutConfig struct {
	HomeCountry           string
	Currency              string
	TaxRate               decimal.Decimal
	FreeShippingThreshold *decimal.Decimal
	BaseRates             map[string]decimal.Decimal
	CityZones             map[string]string
	StaleTolerance        decimal.Decimal
	PhonePattern          string
	PostalDigits          int
	DraftStore            string
	DraftTTL              time.Duration
	CouponSource          string
}

// IdempotencyConfig controls the placement ledger.
type IdempotencyConfig struct {
	Store            string
	TTL              time.Duration
	CleanupInterval  time.Duration
	CleanupBatchSize int
}

package config

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SecretResolver resolves secret:// references, normally against Secret Manager.
type SecretResolver interface {
	ResolveSecret(ctx context.Context, ref string) (string, error)
}

// SecretResolverFunc adapts a function to SecretResolver.
type SecretResolverFunc func(context.Context, string) (string, error)

func (f SecretResolverFunc) ResolveSecret(ctx context.Context, ref string) (string, error) {
	return f(ctx, ref)
}

// Load reads the configuration, resolves secret references and validates the result. Values that
// fail to parse are reported in the returned *ValidationError rather than silently defaulted.
func Load(ctx context.Context, opts ...Option) (Config, error) {
	options := newLoaderOptions(opts)
	values, err := collect(options)
	if err != nil {
		return Config{}, err
	}
	r := &reader{values: values}

	cfg := Config{
		Server: ServerConfig{
			Port:            r.str("API_SERVER_PORT", defaultPort),
			Environment:     strings.ToLower(r.str("API_ENVIRONMENT", defaultEnvironment)),
			ReadTimeout:     r.duration("Server.ReadTimeout", "API_SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout:    r.duration("Server.WriteTimeout", "API_SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:     r.duration("Server.IdleTimeout", "API_SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
			ShutdownTimeout: r.duration("Server.ShutdownTimeout", "API_SERVER_SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		},
		Firestore: FirestoreConfig{
			ProjectID:       r.str("API_FIRESTORE_PROJECT_ID", ""),
			EmulatorHost:    r.str("API_FIRESTORE_EMULATOR_HOST", ""),
			CredentialsFile: r.str("API_GOOGLE_CREDENTIALS_FILE", ""),
			DialTimeout:     r.duration("Firestore.DialTimeout", "API_FIRESTORE_DIAL_TIMEOUT", defaultFirestoreDialTimeout),
		},
		PubSub: PubSubConfig{
			ProjectID:        r.str("API_PUBSUB_PROJECT_ID", ""),
			OrderEventsTopic: r.str("API_PUBSUB_ORDER_EVENTS_TOPIC", defaultOrderEventsTopic),
		},
		Redis: RedisConfig{
			Addr:           r.str("API_REDIS_ADDR", ""),
			Password:       r.str("API_REDIS_PASSWORD", ""),
			DB:             r.int("Redis.DB", "API_REDIS_DB", 0),
			KeyPrefix:      r.str("API_REDIS_KEY_PREFIX", defaultRedisKeyPrefix),
			CouponCacheTTL: r.duration("Redis.CouponCacheTTL", "API_REDIS_COUPON_CACHE_TTL", defaultCouponCacheTTL),
		},
		CouponStore: r.remote("CouponStore", "API_COUPON_STORE"),
		OrderAPI:    r.remote("OrderAPI", "API_ORDER_API"),
		Checkout: CheckoutConfig{
			HomeCountry:           strings.ToUpper(r.str("API_CHECKOUT_HOME_COUNTRY", defaultHomeCountry)),
			Currency:              strings.ToUpper(r.str("API_CHECKOUT_CURRENCY", defaultCurrency)),
			TaxRate:               r.decimal("Checkout.TaxRate", "API_CHECKOUT_TAX_RATE", defaultTaxRate),
			FreeShippingThreshold: r.optionalAmount("Checkout.FreeShippingThreshold", "API_CHECKOUT_FREE_SHIPPING_THRESHOLD"),
			BaseRates:             r.amounts("Checkout.BaseRates", "API_CHECKOUT_BASE_RATES"),
			CityZones:             r.pairs("API_CHECKOUT_CITY_ZONES"),
			StaleTolerance:        r.decimal("Checkout.StaleTolerance", "API_CHECKOUT_STALE_TOLERANCE", defaultStaleTolerance),
			PhonePattern:          r.str("API_CHECKOUT_PHONE_PATTERN", ""),
			PostalDigits:          r.int("Checkout.PostalDigits", "API_CHECKOUT_POSTAL_DIGITS", defaultPostalDigits),
			DraftStore:            strings.ToLower(r.str("API_CHECKOUT_DRAFT_STORE", BackendFirestore)),
			DraftTTL:              r.duration("Checkout.DraftTTL", "API_CHECKOUT_DRAFT_TTL", defaultDraftTTL),
			CouponSource:          strings.ToLower(r.str("API_CHECKOUT_COUPON_SOURCE", BackendFirestore)),
		},
		Idempotency: IdempotencyConfig{
			Store:            strings.ToLower(r.str("API_IDEMPOTENCY_STORE", BackendFirestore)),
			TTL:              r.duration("Idempotency.TTL", "API_IDEMPOTENCY_TTL", defaultIdempotencyTTL),
			CleanupInterval:  r.duration("Idempotency.CleanupInterval", "API_IDEMPOTENCY_CLEANUP_INTERVAL", defaultIdempotencyInterval),
			CleanupBatchSize: r.int("Idempotency.CleanupBatchSize", "API_IDEMPOTENCY_CLEANUP_BATCH", defaultIdempotencyBatchSize),
		},
	}
	if cfg.PubSub.ProjectID == "" {
		cfg.PubSub.ProjectID = cfg.Firestore.ProjectID
	}

	resolved, err := resolveSecrets(ctx, options.secret, map[string]*string{
		"Redis.Password":     &cfg.Redis.Password,
		"CouponStore.APIKey": &cfg.CouponStore.APIKey,
		"OrderAPI.APIKey":    &cfg.OrderAPI.APIKey,
	})
	if err != nil {
		return Config{}, err
	}
	if err := validate(cfg, r.invalid); err != nil {
		return Config{}, err
	}
	if missing := missingSecrets(options.requiredSecrets, resolved); missing != nil {
		return Config{}, missing
	}
	return cfg, nil
}

// reader pulls typed values out of the merged environment. Blank values fall back to the default;
// unparsable ones are recorded in invalid under their config field name.
type reader struct {
	values  map[string]string
	invalid []string
}

func (r *reader) raw(key string) (string, bool) {
	value := strings.TrimSpace(r.values[key])
	return value, value != ""
}

func (r *reader) str(key, fallback string) string {
	if value, ok := r.raw(key); ok {
		return value
	}
	return fallback
}

func (r *reader) duration(field, key string, fallback time.Duration) time.Duration {
	value, ok := r.raw(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		r.invalid = append(r.invalid, field)
		return fallback
	}
	return d
}

func (r *reader) int(field, key string, fallback int) int {
	value, ok := r.raw(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		r.invalid = append(r.invalid, field)
		return fallback
	}
	return n
}

func (r *reader) decimal(field, key, fallback string) decimal.Decimal {
	d, err := decimal.NewFromString(r.str(key, fallback))
	if err != nil {
		r.invalid = append(r.invalid, field)
	}
	return d
}

// optionalAmount returns nil when key is unset. Negative amounts are invalid.
func (r *reader) optionalAmount(field, key string) *decimal.Decimal {
	value, ok := r.raw(key)
	if !ok {
		return nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil || d.IsNegative() {
		r.invalid = append(r.invalid, field)
		return nil
	}
	return &d
}

// pairs parses "a=x,b=y" with lower-cased keys. Malformed entries are skipped.
func (r *reader) pairs(key string) map[string]string {
	out := make(map[string]string)
	value, ok := r.raw(key)
	if !ok {
		return out
	}
	for _, entry := range strings.Split(value, ",") {
		name, v, found := strings.Cut(entry, "=")
		name, v = strings.ToLower(strings.TrimSpace(name)), strings.TrimSpace(v)
		if found && name != "" && v != "" {
			out[name] = v
		}
	}
	return out
}

// amounts is pairs with non-negative decimal values. Each bad entry is reported as field[name].
func (r *reader) amounts(field, key string) map[string]decimal.Decimal {
	raw := r.pairs(key)
	if len(raw) == 0 {
		return nil
	}
	out := make(map[string]decimal.Decimal, len(raw))
	for name, value := range raw {
		d, err := decimal.NewFromString(value)
		if err != nil || d.IsNegative() {
			r.invalid = append(r.invalid, fmt.Sprintf("%s[%s]", field, name))
			continue
		}
		out[name] = d
	}
	return out
}

func (r *reader) remote(field, prefix string) RemoteServiceConfig {
	return RemoteServiceConfig{
		BaseURL:            strings.TrimRight(r.str(prefix+"_BASE_URL", ""), "/"),
		APIKey:             r.str(prefix+"_API_KEY", ""),
		Timeout:            r.duration(field+".Timeout", prefix+"_TIMEOUT", defaultRemoteTimeout),
		MaxRetries:         r.int(field+".MaxRetries", prefix+"_MAX_RETRIES", defaultRemoteRetries),
		BreakerFailures:    r.int(field+".BreakerFailures", prefix+"_BREAKER_FAILURES", defaultBreakerFailures),
		BreakerOpenTimeout: r.duration(field+".BreakerOpenTimeout", prefix+"_BREAKER_OPEN_TIMEOUT", defaultBreakerOpenTimeout),
	}
}

// resolveSecrets replaces secret references in fields with their values and returns every
// field's final value keyed by field name.
func resolveSecrets(ctx context.Context, resolver SecretResolver, fields map[string]*string) (map[string]string, error) {
	resolved := make(map[string]string, len(fields))
	for name, field := range fields {
		ref, ok := secretReference(*field)
		if ok {
			if resolver == nil {
				return nil, &SecretError{Ref: ref, Err: errSecretResolverNotConfigured}
			}
			value, err := resolver.ResolveSecret(ctx, ref)
			if err != nil {
				return nil, &SecretError{Ref: ref, Err: err}
			}
			*field = value
		}
		resolved[name] = strings.TrimSpace(*field)
	}
	return resolved, nil
}

// secretReference reports whether value is a secret reference and returns it in secret://
// form.
func secretReference(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if rest, ok := strings.CutPrefix(value, "sm://"); ok {
		return "secret://" + rest, true
	}
	return value, strings.HasPrefix(value, "secret://")
}

func missingSecrets(required []string, resolved map[string]string) *MissingSecretsError {
	var names []string
	seen := make(map[string]bool)
	for _, name := range required {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		if resolved[name] == "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil
	}
	return &MissingSecretsError{names: names}
}

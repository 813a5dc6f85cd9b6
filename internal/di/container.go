package di

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"cloud.google.com/go/pubsub"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/domain"
	pcache "github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/platform/cache"
	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/platform/config"
	pfirestore "github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/platform/firestore"
	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/platform/idempotency"
	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/platform/jobs"
	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/platform/observability"
	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/platform/remote"
	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/repositories"
	cacherepo "github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/repositories/cache"
	firestoreRepo "github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/repositories/firestore"
	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/services"
)

const (
	meterName            = "github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/checkout"
	firestoreCheckBudget = 1500 * time.Millisecond
	redisCheckBudget     = 500 * time.Millisecond
)

// Services bundles the service-layer contracts that handlers rely upon.
type Services struct {
	Fulfillment services.FulfillmentService
	Checkout    services.CheckoutService
	Orders      services.OrderService
	System      services.SystemService
}

// Infrastructure carries the adapters NewContainer hands to the services. Build fills it from
// configuration; tests supply fakes.
type Infrastructure struct {
	Ledger    idempotency.Store
	Submitter services.OrderSubmitter
	Notifier  services.OrderStatusNotifier
	Events    services.OrderEventPublisher
	Logger    *zap.Logger
	Meter     metric.Meter
	Clock     func() time.Time
	Build     services.BuildInfo
}

// Container wires repositories, services, and background infrastructure for runtime use.
type Container struct {
	Config       config.Config
	Repositories repositories.Registry
	Ledger       idempotency.Store
	Services     Services

	closers []namedCloser
}

type namedCloser struct {
	name  string
	close func(context.Context) error
}

// NewContainer assembles the services on top of reg. Nil adapters fall back to in-process
// defaults where the service allows it.
func NewContainer(cfg config.Config, reg repositories.Registry, infra Infrastructure) (*Container, error) {
	if reg == nil {
		return nil, errors.New("repositories registry is required")
	}
	if infra.Logger == nil {
		infra.Logger = zap.NewNop()
	}
	if infra.Clock == nil {
		infra.Clock = time.Now
	}
	if infra.Ledger == nil {
		infra.Ledger = idempotency.NewMemoryStore()
	}
	if infra.Meter == nil {
		infra.Meter = otel.Meter(meterName)
	}

	svc, err := buildServices(cfg, reg, infra)
	if err != nil {
		return nil, err
	}

	return &Container{
		Config:       cfg,
		Repositories: reg,
		Ledger:       infra.Ledger,
		Services:     svc,
	}, nil
}

// Build connects every backend named by cfg and returns a ready container. Resources opened
// before a failure are released.
func Build(ctx context.Context, cfg config.Config, build services.BuildInfo, logger *zap.Logger) (c *Container, err error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var closers []namedCloser
	defer func() {
		if err != nil {
			closeAll(context.Background(), logger, closers)
		}
	}()

	var googleOpts []option.ClientOption
	if file := strings.TrimSpace(cfg.Firestore.CredentialsFile); file != "" {
		googleOpts = append(googleOpts, option.WithCredentialsFile(file))
	}
	provider := pfirestore.NewProvider(cfg.Firestore,
		pfirestore.WithDialTimeout(cfg.Firestore.DialTimeout),
		pfirestore.WithClientOptions(googleOpts...),
	)
	client, err := provider.Client(ctx)
	if err != nil {
		return nil, fmt.Errorf("build firestore client: %w", err)
	}
	closers = append(closers, namedCloser{name: "firestore", close: provider.Close})

	checks := []repositories.DependencyCheck{
		{Name: "firestore", Critical: true, Timeout: firestoreCheckBudget, Check: provider.Ping},
	}

	var redisCache *pcache.RedisCache
	if strings.TrimSpace(cfg.Redis.Addr) != "" {
		redisCache, err = pcache.NewRedisCache(pcache.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.KeyPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("build redis cache: %w", err)
		}
		closers = append(closers, namedCloser{name: "redis", close: redisCache.Close})
		checks = append(checks, repositories.DependencyCheck{
			Name:     "redis",
			Critical: cfg.Checkout.DraftStore == config.BackendRedis,
			Timeout:  redisCheckBudget,
			Check:    redisCache.Ping,
		})
	}

	remoteLogger := observability.EventLogger(logger.Named("remote"))

	coupons, err := buildCouponSource(cfg, provider, remoteLogger, &checks)
	if err != nil {
		return nil, err
	}
	if redisCache != nil {
		coupons, err = cacherepo.NewCouponRepository(cacherepo.CouponRepositoryDeps{
			Source: coupons,
			Cache:  redisCache,
			TTL:    cfg.Redis.CouponCacheTTL,
			Logger: observability.EventLogger(logger.Named("coupon_cache")),
		})
		if err != nil {
			return nil, fmt.Errorf("build coupon cache: %w", err)
		}
	}

	var drafts repositories.CheckoutDraftRepository
	switch cfg.Checkout.DraftStore {
	case config.BackendRedis:
		if redisCache == nil {
			return nil, errors.New("build draft store: redis address is required")
		}
		drafts, err = cacherepo.NewDraftRepository(redisCache, cfg.Checkout.DraftTTL)
	case config.BackendMemory:
		drafts, err = cacherepo.NewDraftRepository(pcache.NewMemoryCache(cfg.Redis.KeyPrefix), cfg.Checkout.DraftTTL)
	}
	if err != nil {
		return nil, fmt.Errorf("build draft store: %w", err)
	}

	orderAPI, err := remote.NewOrderClient(remoteOptions("order_api", cfg.OrderAPI, remoteLogger))
	if err != nil {
		return nil, fmt.Errorf("build order api client: %w", err)
	}
	checks = append(checks, repositories.DependencyCheck{Name: "orderApi", Check: orderAPI.Ping})

	var events services.OrderEventPublisher
	if projectID := strings.TrimSpace(cfg.PubSub.ProjectID); projectID != "" {
		psClient, err := pubsub.NewClient(ctx, projectID, googleOpts...)
		if err != nil {
			return nil, fmt.Errorf("build pubsub client: %w", err)
		}
		topic := psClient.Topic(cfg.PubSub.OrderEventsTopic)
		closers = append(closers, namedCloser{name: "pubsub", close: func(context.Context) error {
			topic.Stop()
			return psClient.Close()
		}})
		publisher, err := jobs.NewPubSubOrderEventPublisher(topic)
		if err != nil {
			return nil, fmt.Errorf("build order event publisher: %w", err)
		}
		events = publisher
	}

	health, err := repositories.NewDependencyHealthRepository(checks)
	if err != nil {
		return nil, fmt.Errorf("build health repository: %w", err)
	}

	reg, err := firestoreRepo.NewRegistry(provider, cfg.Checkout.DraftTTL,
		firestoreRepo.WithCouponRepository(coupons),
		firestoreRepo.WithDraftRepository(drafts),
		firestoreRepo.WithHealthRepository(health),
	)
	if err != nil {
		return nil, fmt.Errorf("build repository registry: %w", err)
	}

	var ledger idempotency.Store
	switch cfg.Idempotency.Store {
	case config.BackendMemory:
		ledger = idempotency.NewMemoryStore()
	default:
		ledger = idempotency.NewFirestoreStore(client)
	}

	c, err = NewContainer(cfg, reg, Infrastructure{
		Ledger:    ledger,
		Submitter: orderAPI,
		Notifier:  orderAPI,
		Events:    events,
		Logger:    logger,
		Clock:     time.Now,
		Build:     build,
	})
	if err != nil {
		return nil, err
	}
	// The registry closes the Firestore provider itself.
	c.closers = closers[1:]
	return c, nil
}

// Close releases resources such as repository clients, caches, and publishers.
func (c *Container) Close(ctx context.Context) error {
	if c == nil {
		return nil
	}
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i].close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", c.closers[i].name, err))
		}
	}
	if c.Repositories != nil {
		if err := c.Repositories.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close repositories: %w", err))
		}
	}
	return errors.Join(errs...)
}

func buildCouponSource(cfg config.Config, provider *pfirestore.Provider, logger func(context.Context, string, map[string]any), checks *[]repositories.DependencyCheck) (repositories.CouponRepository, error) {
	switch cfg.Checkout.CouponSource {
	case config.BackendRemote:
		client, err := remote.NewCouponClient(remoteOptions("coupon_store", cfg.CouponStore, logger))
		if err != nil {
			return nil, fmt.Errorf("build coupon store client: %w", err)
		}
		*checks = append(*checks, repositories.DependencyCheck{Name: "couponStore", Check: client.Ping})
		return client, nil
	default:
		repo, err := firestoreRepo.NewCouponRepository(provider)
		if err != nil {
			return nil, fmt.Errorf("build coupon repository: %w", err)
		}
		return repo, nil
	}
}

func remoteOptions(name string, cfg config.RemoteServiceConfig, logger func(context.Context, string, map[string]any)) remote.Options {
	return remote.Options{
		Name:               name,
		BaseURL:            cfg.BaseURL,
		APIKey:             cfg.APIKey,
		Timeout:            cfg.Timeout,
		MaxRetries:         cfg.MaxRetries,
		BreakerFailures:    cfg.BreakerFailures,
		BreakerOpenTimeout: cfg.BreakerOpenTimeout,
		Logger:             logger,
	}
}

func closeAll(ctx context.Context, logger *zap.Logger, closers []namedCloser) {
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].close(ctx); err != nil {
			logger.Warn("close error", zap.String("resource", closers[i].name), zap.Error(err))
		}
	}
}

func buildServices(cfg config.Config, reg repositories.Registry, infra Infrastructure) (Services, error) {
	var svc Services

	cities, err := cityZones(cfg.Checkout.CityZones)
	if err != nil {
		return Services{}, fmt.Errorf("build zone resolver: %w", err)
	}
	zones := services.NewZoneResolver(cfg.Checkout.HomeCountry, cities)

	rates, err := services.NewRateTable(rateTableConfig(cfg.Checkout))
	if err != nil {
		return Services{}, fmt.Errorf("build rate table: %w", err)
	}
	quotes, err := services.NewShippingQuoteCalculator(rates)
	if err != nil {
		return Services{}, fmt.Errorf("build quote calculator: %w", err)
	}
	pricing := services.NewPricingAggregator(cfg.Checkout.Currency)

	couponEngine, err := services.NewCouponEngine(services.CouponEngineDeps{
		Coupons: reg.Coupons(),
		Logger:  observability.EventLogger(infra.Logger.Named("coupons")),
	})
	if err != nil {
		return Services{}, fmt.Errorf("build coupon engine: %w", err)
	}

	rules, err := fieldRules(cfg.Checkout)
	if err != nil {
		return Services{}, fmt.Errorf("build field rules: %w", err)
	}
	flow, err := services.NewCheckoutFlow(services.CheckoutFlowDeps{
		Zones:          zones,
		Quotes:         quotes,
		Pricing:        pricing,
		Rules:          rules,
		TaxRate:        cfg.Checkout.TaxRate,
		StaleTolerance: cfg.Checkout.StaleTolerance,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build checkout flow: %w", err)
	}

	fulfillment, err := services.NewFulfillmentService(services.FulfillmentServiceDeps{
		Zones:   zones,
		Quotes:  quotes,
		Pricing: pricing,
		Coupons: couponEngine,
		TaxRate: cfg.Checkout.TaxRate,
		Clock:   infra.Clock,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build fulfillment service: %w", err)
	}
	svc.Fulfillment = fulfillment

	numbers, err := services.NewOrderNumberService(services.OrderNumberServiceDeps{
		Repository: reg.Counters(),
	})
	if err != nil {
		return Services{}, fmt.Errorf("build order number service: %w", err)
	}

	if infra.Submitter != nil {
		checkout, err := services.NewCheckoutService(services.CheckoutServiceDeps{
			Flow:       flow,
			Coupons:    couponEngine,
			Drafts:     reg.Drafts(),
			Orders:     reg.Orders(),
			Numbers:    numbers,
			Ledger:     infra.Ledger,
			Submitter:  infra.Submitter,
			Events:     infra.Events,
			UnitOfWork: reg,
			Clock:      infra.Clock,
			Logger:     observability.EventLogger(infra.Logger.Named("checkout")),
			Meter:      infra.Meter,
			LedgerTTL:  cfg.Idempotency.TTL,
		})
		if err != nil {
			return Services{}, fmt.Errorf("build checkout service: %w", err)
		}
		svc.Checkout = checkout
	}

	orders, err := services.NewOrderService(services.OrderServiceDeps{
		Orders:     reg.Orders(),
		UnitOfWork: reg,
		Notifier:   infra.Notifier,
		Events:     infra.Events,
		Clock:      infra.Clock,
		Logger:     observability.EventLogger(infra.Logger.Named("orders")),
	})
	if err != nil {
		return Services{}, fmt.Errorf("build order service: %w", err)
	}
	svc.Orders = orders

	if healthRepo := reg.Health(); healthRepo != nil {
		system, err := services.NewSystemService(services.SystemServiceDeps{
			HealthRepository: healthRepo,
			Ledger:           infra.Ledger,
			Clock:            infra.Clock,
			Build:            infra.Build,
			Logger:           observability.EventLogger(infra.Logger.Named("system")),
		})
		if err != nil {
			return Services{}, fmt.Errorf("build system service: %w", err)
		}
		svc.System = system
	}

	return svc, nil
}

func cityZones(raw map[string]string) (map[string]domain.Zone, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	cities := make(map[string]domain.Zone, len(raw))
	for city, value := range raw {
		zone, ok := domain.ParseZone(value)
		if !ok {
			return nil, fmt.Errorf("city %q: unknown zone %q", city, value)
		}
		cities[city] = zone
	}
	return cities, nil
}

// rateTableConfig overrides base rates only; transit windows keep their defaults.
func rateTableConfig(cfg config.CheckoutConfig) services.RateTableConfig {
	defaults := services.DefaultRateTableConfig()
	table := services.RateTableConfig{FreeShippingThreshold: cfg.FreeShippingThreshold}
	for name, base := range cfg.BaseRates {
		zone := domain.Zone(strings.ToLower(strings.TrimSpace(name)))
		rate, ok := defaults.Rates[zone]
		if !ok {
			// NewRateTable rejects the unknown zone.
			rate = domain.ZoneRate{}
		}
		rate.BaseRate = base
		if table.Rates == nil {
			table.Rates = make(map[domain.Zone]domain.ZoneRate, len(cfg.BaseRates))
		}
		table.Rates[zone] = rate
	}
	return table
}

func fieldRules(cfg config.CheckoutConfig) (services.FieldRules, error) {
	rules := services.FieldRules{
		HomeCountry:  cfg.HomeCountry,
		PostalDigits: cfg.PostalDigits,
	}
	if pattern := strings.TrimSpace(cfg.PhonePattern); pattern != "" {
		compiled, err := regexp.Compile(pattern)
		if err != nil {
			return services.FieldRules{}, fmt.Errorf("phone pattern: %w", err)
		}
		rules.PhonePattern = compiled
	}
	return rules, nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/di"
	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/handlers"
	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/platform/config"
	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/platform/observability"
	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/services"
)

const (
	couponAttemptLimit  = 10
	couponAttemptWindow = time.Minute
	containerCloseGrace = 5 * time.Second
)

func main() {
	logger, err := observability.NewLogger("checkout-api")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}

	err = run(logger.Named("api"))
	_ = logger.Sync()
	if err != nil {
		logger.Fatal("checkout api stopped", zap.Error(err))
	}
}

func run(logger *zap.Logger) error {
	startedAt := time.Now().UTC()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = observability.WithLogger(ctx, logger)

	env, err := config.EnvironmentValues()
	if err != nil {
		return fmt.Errorf("read environment: %w", err)
	}

	fetcher, err := newSecretFetcher(ctx, logger.Named("secrets"), env)
	if err != nil {
		return fmt.Errorf("secret fetcher: %w", err)
	}
	defer closeQuietly(logger, "secret fetcher", func(context.Context) error { return fetcher.Close() })

	cfg, err := config.Load(ctx,
		config.WithSecretResolver(config.SecretResolverFunc(fetcher.Resolve)),
		config.WithRequiredSecrets(requiredSecretNames(env)...),
	)
	if err != nil {
		var missing *config.MissingSecretsError
		if errors.As(err, &missing) {
			logger.Error("missing required secrets", zap.Strings("secrets", missing.RedactedNames()))
		}
		return fmt.Errorf("load configuration: %w", err)
	}

	build := buildInfo(env, cfg, startedAt)
	container, err := di.Build(ctx, cfg, build, logger)
	if err != nil {
		return fmt.Errorf("build dependencies: %w", err)
	}
	defer closeQuietly(logger, "dependencies", container.Close)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      newRouter(logger.Named("http"), cfg, build, container),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("checkout api listening",
			zap.String("addr", server.Addr),
			zap.String("environment", build.Environment),
			zap.String("version", build.Version),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		sweepLedger(groupCtx, logger.Named("ledger"), container.Services.System, cfg.Idempotency)
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down; draining requests")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return group.Wait()
}

func newRouter(logger *zap.Logger, cfg config.Config, build services.BuildInfo, container *di.Container) http.Handler {
	projectID := strings.TrimSpace(cfg.Firestore.ProjectID)
	checkout := handlers.NewCheckoutHandlers(container.Services.Checkout,
		handlers.WithCouponAttemptLimit(couponAttemptLimit, couponAttemptWindow, time.Now),
	)
	fulfillment := handlers.NewFulfillmentHandlers(container.Services.Fulfillment)

	return handlers.NewRouter(
		handlers.WithMiddlewares(
			observability.InjectLoggerMiddleware(logger),
			observability.TraceMiddleware(projectID),
			observability.RecoveryMiddleware(logger),
			observability.RequestLoggerMiddleware(projectID),
			observability.MetricsMiddleware,
		),
		handlers.WithHealthHandlers(handlers.NewHealthHandlers(
			handlers.WithHealthBuildInfo(build),
			handlers.WithHealthSystemService(container.Services.System),
		)),
		handlers.WithShippingRoutes(fulfillment.ShippingRoutes),
		handlers.WithPricingRoutes(fulfillment.PricingRoutes),
		handlers.WithCheckoutRoutes(checkout.Routes),
		handlers.WithOrderRoutes(handlers.NewOrderHandlers(container.Services.Orders).Routes),
	)
}

func buildInfo(env map[string]string, cfg config.Config, started time.Time) services.BuildInfo {
	orDefault := func(value, fallback string) string {
		if value = strings.TrimSpace(value); value != "" {
			return value
		}
		return fallback
	}
	return services.BuildInfo{
		Version:     orDefault(env["API_BUILD_VERSION"], "dev"),
		CommitSHA:   orDefault(env["API_BUILD_COMMIT_SHA"], "unknown"),
		Environment: orDefault(cfg.Server.Environment, "local"),
		StartedAt:   started,
	}
}

func closeQuietly(logger *zap.Logger, what string, closeFn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), containerCloseGrace)
	defer cancel()
	if err := closeFn(ctx); err != nil {
		logger.Warn("close failed", zap.String("component", what), zap.Error(err))
	}
}

package config

import (
	"regexp"
	"slices"
)

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// validate collects every problem at once so a misconfigured deployment is fixed in one pass.
func validate(cfg Config, invalid []string) error {
	fields := slices.Clone(invalid)
	require := func(ok bool, field string) {
		if !ok {
			fields = append(fields, field)
		}
	}

	require(cfg.Server.Port != "", "Server.Port")
	require(cfg.Server.ShutdownTimeout > 0, "Server.ShutdownTimeout")
	require(cfg.Firestore.ProjectID != "", "Firestore.ProjectID")

	co := cfg.Checkout
	require(currencyPattern.MatchString(co.Currency), "Checkout.Currency")
	require(len(co.HomeCountry) == 2, "Checkout.HomeCountry")
	require(!co.TaxRate.IsNegative(), "Checkout.TaxRate")
	require(!co.StaleTolerance.IsNegative(), "Checkout.StaleTolerance")
	require(co.PostalDigits > 0, "Checkout.PostalDigits")
	require(co.DraftTTL > 0, "Checkout.DraftTTL")
	if co.PhonePattern != "" {
		_, err := regexp.Compile(co.PhonePattern)
		require(err == nil, "Checkout.PhonePattern")
	}

	switch co.DraftStore {
	case BackendFirestore, BackendMemory:
	case BackendRedis:
		require(cfg.Redis.Addr != "", "Redis.Addr")
	default:
		fields = append(fields, "Checkout.DraftStore")
	}
	switch co.CouponSource {
	case BackendFirestore:
	case BackendRemote:
		require(cfg.CouponStore.Enabled(), "CouponStore.BaseURL")
	default:
		fields = append(fields, "Checkout.CouponSource")
	}

	require(cfg.OrderAPI.Enabled(), "OrderAPI.BaseURL")
	for _, svc := range []struct {
		name   string
		remote RemoteServiceConfig
	}{{"CouponStore", cfg.CouponStore}, {"OrderAPI", cfg.OrderAPI}} {
		if !svc.remote.Enabled() {
			continue
		}
		require(svc.remote.Timeout > 0, svc.name+".Timeout")
		require(svc.remote.MaxRetries >= 0, svc.name+".MaxRetries")
		require(svc.remote.BreakerFailures > 0, svc.name+".BreakerFailures")
	}

	idem := cfg.Idempotency
	require(idem.Store == BackendFirestore || idem.Store == BackendMemory, "Idempotency.Store")
	require(idem.TTL > 0, "Idempotency.TTL")
	require(idem.CleanupInterval > 0, "Idempotency.CleanupInterval")
	require(idem.CleanupBatchSize > 0, "Idempotency.CleanupBatchSize")

	if len(fields) == 0 {
		return nil
	}
	slices.Sort(fields)
	return &ValidationError{fields: slices.Compact(fields)}
}

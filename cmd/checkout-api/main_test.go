package main

import (
	"context"
	"errors"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/platform/config"
)

func TestVersionPins(t *testing.T) {
	got := versionPins("prod:checkout/api-key=3, sm://redis-password=7, secret://order-key=2,broken, =1")
	want := map[string]string{
		"prod:secret://checkout/api-key": "3",
		"secret://redis-password":        "7",
		"secret://order-key":             "2",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected pins %#v", got)
	}
}

func TestRequiredSecretNames(t *testing.T) {
	got := requiredSecretNames(map[string]string{
		"API_ORDER_API_API_KEY":      "secret://order-key",
		"API_CHECKOUT_COUPON_SOURCE": "REMOTE",
	})
	want := []string{"OrderAPI.APIKey", "CouponStore.APIKey"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected names %v", got)
	}
	if names := requiredSecretNames(map[string]string{}); len(names) != 0 {
		t.Fatalf("expected no required secrets, got %v", names)
	}
}

func TestBuildInfoDefaults(t *testing.T) {
	started := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	info := buildInfo(map[string]string{"API_BUILD_VERSION": " 1.4.0 "}, config.Config{}, started)
	if info.Version != "1.4.0" || info.CommitSHA != "unknown" || info.Environment != "local" || !info.StartedAt.Equal(started) {
		t.Fatalf("unexpected build info %+v", info)
	}
}

type countingCleaner struct {
	calls atomic.Int32
	err   error
}

func (c *countingCleaner) CleanupPlacementLedger(context.Context, int) (int, error) {
	c.calls.Add(1)
	return 1, c.err
}

func TestSweepLedgerRunsUntilCancelled(t *testing.T) {
	cleaner := &countingCleaner{err: errors.New("transient")}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweepLedger(ctx, zap.NewNop(), cleaner, config.IdempotencyConfig{CleanupInterval: time.Millisecond, CleanupBatchSize: 10})
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for cleaner.calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatal("sweeper did not keep running after an error")
		case <-time.After(time.Millisecond):
		}
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop on cancel")
	}
}

func TestSweepLedgerDisabled(t *testing.T) {
	cleaner := &countingCleaner{}
	sweepLedger(context.Background(), zap.NewNop(), cleaner, config.IdempotencyConfig{})
	if cleaner.calls.Load() != 0 {
		t.Fatal("expected no sweep when interval is zero")
	}
}

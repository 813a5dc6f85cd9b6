package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/domain"
)

func passing(context.Context) error { return nil }

func failing(msg string) func(context.Context) error {
	return func(context.Context) error { return errors.New(msg) }
}

func hanging(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestDependencyHealthRepositoryCollect(t *testing.T) {
	cases := []struct {
		name       string
		checks     []DependencyCheck
		wantStatus string
		wantChecks map[string]string
		wantDetail map[string]string
	}{
		{
			name: "all healthy",
			checks: []DependencyCheck{
				{Name: "firestore", Critical: true, Check: passing},
				{Name: "redis", Check: passing},
			},
			wantStatus: domain.HealthStatusOK,
			wantChecks: map[string]string{"firestore": domain.HealthStatusOK, "redis": domain.HealthStatusOK},
		},
		{
			name: "optional dependency down degrades",
			checks: []DependencyCheck{
				{Name: "firestore", Critical: true, Check: passing},
				{Name: "order_api", Check: failing("circuit open")},
			},
			wantStatus: domain.HealthStatusDegraded,
			wantChecks: map[string]string{"order_api": domain.HealthStatusDegraded},
			wantDetail: map[string]string{"order_api": "circuit open"},
		},
		{
			name: "critical dependency down errors",
			checks: []DependencyCheck{
				{Name: "firestore", Critical: true, Check: failing("unavailable")},
				{Name: "redis", Check: passing},
			},
			wantStatus: domain.HealthStatusError,
			wantChecks: map[string]string{"firestore": domain.HealthStatusDegraded, "redis": domain.HealthStatusOK},
		},
		{
			name: "timeout errors even when optional",
			checks: []DependencyCheck{
				{Name: "coupon_store", Timeout: 5 * time.Millisecond, Check: hanging},
			},
			wantStatus: domain.HealthStatusError,
			wantChecks: map[string]string{"coupon_store": domain.HealthStatusError},
			wantDetail: map[string]string{"coupon_store": "timeout"},
		},
	}

	now := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo, err := NewDependencyHealthRepository(tc.checks, WithDependencyClock(func() time.Time { return now }))
			if err != nil {
				t.Fatalf("NewDependencyHealthRepository: %v", err)
			}
			report, err := repo.Collect(context.Background())
			if err != nil {
				t.Fatalf("Collect: %v", err)
			}
			if report.Status != tc.wantStatus {
				t.Fatalf("expected %s, got %s", tc.wantStatus, report.Status)
			}
			if len(report.Checks) != len(tc.checks) || !report.GeneratedAt.Equal(now) {
				t.Fatalf("unexpected report %+v", report)
			}
			for name, want := range tc.wantChecks {
				if got := report.Checks[name]; got.Status != want || !got.CheckedAt.Equal(now) {
					t.Fatalf("check %s: expected %s, got %+v", name, want, got)
				}
			}
			for name, want := range tc.wantDetail {
				if got := report.Checks[name].Detail; got != want {
					t.Fatalf("check %s: expected detail %q, got %q", name, want, got)
				}
			}
		})
	}
}

func TestDependencyHealthRepositoryDefaultTimeoutApplies(t *testing.T) {
	repo, err := NewDependencyHealthRepository(
		[]DependencyCheck{{Name: "redis", Check: hanging}},
		WithDependencyTimeout(2*time.Millisecond),
	)
	if err != nil {
		t.Fatalf("NewDependencyHealthRepository: %v", err)
	}
	report, err := repo.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if report.Checks["redis"].Detail != "timeout" {
		t.Fatalf("expected default timeout to apply, got %+v", report.Checks["redis"])
	}
}

func TestNewDependencyHealthRepositoryRejectsInvalidChecks(t *testing.T) {
	invalid := [][]DependencyCheck{
		nil,
		{{Name: " ", Check: passing}},
		{{Name: "redis"}},
		{{Name: "redis", Check: passing}, {Name: "redis", Check: passing}},
	}
	for i, checks := range invalid {
		if _, err := NewDependencyHealthRepository(checks); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}

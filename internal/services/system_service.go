package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	domain "github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/domain"
	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/platform/idempotency"
	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/repositories"
)

const (
	defaultLedgerCleanupBatch = 100
	ledgerCheckName           = "placementLedger"
)

// ErrLedgerNotConfigured is returned by CleanupPlacementLedger when no ledger was wired.
var ErrLedgerNotConfigured = errors.New("system service: placement ledger not configured")

// SystemService exposes readiness data and housekeeping tasks.
type SystemService interface {
	HealthReport(ctx context.Context) (domain.HealthReport, error)
	CleanupPlacementLedger(ctx context.Context, limit int) (int, error)
}

// BuildInfo captures runtime metadata exposed via health endpoints.
type BuildInfo struct {
	Version     string
	CommitSHA   string
	Environment string
	StartedAt   time.Time
}

type SystemServiceDeps struct {
	HealthRepository repositories.HealthRepository
	Ledger           idempotency.Store
	Clock            func() time.Time
	Build            BuildInfo
	Logger           func(ctx context.Context, event string, fields map[string]any)
}

type systemService struct {
	health repositories.HealthRepository
	ledger idempotency.Store
	now    func() time.Time
	build  BuildInfo
	logger func(ctx context.Context, event string, fields map[string]any)

	mu        sync.Mutex
	lastSweep *domain.HealthCheck
}

var _ SystemService = (*systemService)(nil)

func NewSystemService(deps SystemServiceDeps) (SystemService, error) {
	if deps.HealthRepository == nil {
		return nil, errors.New("system service: health repository is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	build := deps.Build
	if build.StartedAt.IsZero() {
		build.StartedAt = clock()
	}
	return &systemService{
		health: deps.HealthRepository,
		ledger: deps.Ledger,
		now:    func() time.Time { return clock().UTC() },
		build:  build,
		logger: logger,
	}, nil
}

// HealthReport collects dependency checks and stamps them with build metadata. The outcome of
// the most recent ledger sweep is attached as an informational check and never changes the
// overall status: a slow sweep must not pull the instance out of rotation.
func (s *systemService) HealthReport(ctx context.Context) (domain.HealthReport, error) {
	report, err := s.health.Collect(ctx)
	if err != nil {
		return domain.HealthReport{}, err
	}

	now := s.now()
	if report.GeneratedAt.IsZero() {
		report.GeneratedAt = now
	}
	report.GeneratedAt = report.GeneratedAt.UTC()
	report.Version = firstNonBlank(report.Version, s.build.Version)
	report.CommitSHA = firstNonBlank(report.CommitSHA, s.build.CommitSHA)
	report.Environment = firstNonBlank(report.Environment, s.build.Environment)
	if report.Uptime <= 0 {
		report.Uptime = now.Sub(s.build.StartedAt)
	}
	if report.Checks == nil {
		report.Checks = make(map[string]domain.HealthCheck)
	}
	if strings.TrimSpace(report.Status) == "" {
		report.Status = worstStatus(report.Checks)
	}

	s.mu.Lock()
	if s.lastSweep != nil {
		report.Checks[ledgerCheckName] = *s.lastSweep
	}
	s.mu.Unlock()
	return report, nil
}

// CleanupPlacementLedger drops expired placement reservations, at most limit per call.
func (s *systemService) CleanupPlacementLedger(ctx context.Context, limit int) (int, error) {
	if s.ledger == nil {
		return 0, ErrLedgerNotConfigured
	}
	if limit <= 0 {
		limit = defaultLedgerCleanupBatch
	}

	started := s.now()
	removed, err := s.ledger.CleanupExpired(ctx, started, limit)
	check := domain.HealthCheck{
		Status:    domain.HealthStatusOK,
		Latency:   s.now().Sub(started),
		CheckedAt: started,
	}
	if err != nil {
		check.Status = domain.HealthStatusDegraded
		check.Error = err.Error()
		s.logger(ctx, "system.ledger.cleanup.failed", map[string]any{"error": err})
	} else {
		check.Detail = "last sweep removed " + strconv.Itoa(removed) + " reservations"
		if removed == limit {
			s.logger(ctx, "system.ledger.cleanup.saturated", map[string]any{"limit": limit})
		}
	}

	s.mu.Lock()
	s.lastSweep = &check
	s.mu.Unlock()
	return removed, err
}

func firstNonBlank(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

// worstStatus folds every check into one status.
func worstStatus(checks map[string]domain.HealthCheck) string {
	status := domain.HealthStatusOK
	for _, check := range checks {
		status = domain.WorseHealth(status, check.Status)
	}
	return status
}

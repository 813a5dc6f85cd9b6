package domain

import "time"

// Health statuses, best first. An empty status is treated as ok.
const (
	HealthStatusOK       = "ok"
	HealthStatusDegraded = "degraded"
	HealthStatusError    = "error"
)

func healthRank(status string) int {
	switch status {
	case HealthStatusOK, "":
		return 0
	case HealthStatusError:
		return 2
	default:
		return 1
	}
}

// WorseHealth returns the less healthy of a and b. Unknown statuses count as degraded.
func WorseHealth(a, b string) string {
	return [...]string{HealthStatusOK, HealthStatusDegraded, HealthStatusError}[max(healthRank(a), healthRank(b))]
}

// HealthCheck is the outcome of probing one dependency.
type HealthCheck struct {
	Status    string
	Detail    string
	Error     string
	Latency   time.Duration
	CheckedAt time.Time
}

// HealthReport is what /readyz renders. Status is ok only when every critical check passed.
type HealthReport struct {
	Status      string
	Checks      map[string]HealthCheck
	Version     string
	CommitSHA   string
	Environment string
	Uptime      time.Duration
	GeneratedAt time.Time
}

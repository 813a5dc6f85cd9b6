package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"

	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/repositories"
)

const (
	apiKeyHeader      = "X-API-Key"
	idempotencyHeader = "Idempotency-Key"

	defaultTimeout            = 5 * time.Second
	defaultBreakerFailures    = 5
	defaultBreakerOpenTimeout = 30 * time.Second
	defaultRetryWait          = 200 * time.Millisecond
	defaultRetryMaxWait       = 2 * time.Second
)

// Options configures a client for one upstream service.
type Options struct {
	Name               string
	BaseURL            string
	APIKey             string
	Timeout            time.Duration
	MaxRetries         int
	RetryWait          time.Duration
	BreakerFailures    int
	BreakerOpenTimeout time.Duration
	Logger             func(context.Context, string, map[string]any)
}

// StatusError reports an unexpected upstream response.
type StatusError struct {
	Service string
	Op      string
	Status  int
	Body    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: upstream returned status %d: %s", e.Service, e.Op, e.Status, e.Body)
}

// client wraps a resty client with a circuit breaker. Transport errors and 5xx responses count
// against the breaker; other responses are returned to the caller for classification.
type client struct {
	name    string
	http    *resty.Client
	breaker *gobreaker.CircuitBreaker
	logger  func(context.Context, string, map[string]any)
}

func newClient(opts Options) (*client, error) {
	name := strings.TrimSpace(opts.Name)
	if name == "" {
		return nil, errors.New("remote: client name is required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("remote %s: base url is required", name)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	retries := opts.MaxRetries
	if retries < 0 {
		retries = 0
	}
	retryWait := opts.RetryWait
	if retryWait <= 0 {
		retryWait = defaultRetryWait
	}
	failures := opts.BreakerFailures
	if failures <= 0 {
		failures = defaultBreakerFailures
	}
	openTimeout := opts.BreakerOpenTimeout
	if openTimeout <= 0 {
		openTimeout = defaultBreakerOpenTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(retries).
		SetRetryWaitTime(retryWait).
		SetRetryMaxWaitTime(defaultRetryMaxWait).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			return err != nil || resp.StatusCode() >= http.StatusInternalServerError
		}).
		SetHeader("Accept", "application/json")
	if key := strings.TrimSpace(opts.APIKey); key != "" {
		httpClient.SetHeader(apiKeyHeader, key)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(failures)
		},
		OnStateChange: func(cbName string, from, to gobreaker.State) {
			BreakerState.WithLabelValues(cbName).Set(stateValue(to))
			logger(context.Background(), "remote.breaker.state_changed", map[string]any{
				"service": cbName,
				"from":    from.String(),
				"to":      to.String(),
			})
		},
	})
	BreakerState.WithLabelValues(name).Set(0)

	return &client{name: name, http: httpClient, breaker: breaker, logger: logger}, nil
}

// execute runs call through the breaker. It returns a RepositoryError with IsUnavailable when
// the breaker rejects the call or the upstream keeps failing.
func (c *client) execute(ctx context.Context, op string, call func(*resty.Request) (*resty.Response, error)) (*resty.Response, error) {
	start := time.Now()
	result, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := call(c.http.R().SetContext(ctx))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode() >= http.StatusInternalServerError {
			return nil, c.statusError(op, resp)
		}
		return resp, nil
	})

	outcome := "ok"
	if err != nil {
		outcome = "error"
		BreakerFailures.WithLabelValues(c.name).Inc()
	}
	RequestDuration.WithLabelValues(c.name, op, outcome).Observe(time.Since(start).Seconds())

	if err != nil {
		c.logger(ctx, "remote.call.failed", map[string]any{
			"service":   c.name,
			"operation": op,
			"error":     err.Error(),
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, repositories.NewError(c.name+"."+op, repositories.ErrorKindUnavailable, fmt.Errorf("circuit breaker %s is open: %w", c.name, err))
		}
		return nil, repositories.NewError(c.name+"."+op, repositories.ErrorKindUnavailable, err)
	}
	return result.(*resty.Response), nil
}

func (c *client) statusError(op string, resp *resty.Response) *StatusError {
	body := strings.TrimSpace(resp.String())
	if len(body) > 512 {
		body = body[:512]
	}
	return &StatusError{Service: c.name, Op: op, Status: resp.StatusCode(), Body: body}
}

// State reports the breaker state name.
func (c *client) State() string {
	return c.breaker.State().String()
}

// Ping reports an error while the breaker is open. Used by the readiness probe.
func (c *client) Ping(context.Context) error {
	if c.breaker.State() == gobreaker.StateOpen {
		return fmt.Errorf("remote %s: circuit breaker open", c.name)
	}
	return nil
}

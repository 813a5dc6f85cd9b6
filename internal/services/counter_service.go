package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/repositories"
)

const (
	defaultOrderNumberPrefix = "NX"
	orderSequencesPerYear    = int64(999999)
)

// ErrCounterExhausted means the yearly order sequence has no numbers left.
var ErrCounterExhausted = errors.New("order numbers exhausted for the year")

// OrderNumberGenerator allocates human readable order numbers such as NX-2024-000042.
type OrderNumberGenerator interface {
	NextOrderNumber(ctx context.Context, at time.Time) (string, error)
}

type OrderNumberServiceDeps struct {
	Repository repositories.CounterRepository
	Prefix     string
}

type orderNumberService struct {
	counters repositories.CounterRepository
	prefix   string
}

// NewOrderNumberService builds a generator backed by one counter per UTC calendar year, so the
// sequence restarts at 000001 every January.
func NewOrderNumberService(deps OrderNumberServiceDeps) (OrderNumberGenerator, error) {
	if deps.Repository == nil {
		return nil, errors.New("order number service: counter repository is required")
	}
	prefix := strings.ToUpper(strings.TrimSpace(deps.Prefix))
	if prefix == "" {
		prefix = defaultOrderNumberPrefix
	}
	return &orderNumberService{counters: deps.Repository, prefix: prefix}, nil
}

func (s *orderNumberService) NextOrderNumber(ctx context.Context, at time.Time) (string, error) {
	if at.IsZero() {
		return "", errors.New("order number service: placement time is required")
	}
	year := at.UTC().Year()
	seq, err := s.counters.Next(ctx, fmt.Sprintf("orders:%04d", year), orderSequencesPerYear)
	if errors.Is(err, repositories.ErrCounterExhausted) {
		return "", fmt.Errorf("%w: %d", ErrCounterExhausted, year)
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%04d-%06d", s.prefix, year, seq), nil
}

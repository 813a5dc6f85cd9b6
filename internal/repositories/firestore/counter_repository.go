package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pfirestore "github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/platform/firestore"
	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/repositories"
)

const countersCollection = "counters"

type counterDocument struct {
	Value     int64     `firestore:"value"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

// CounterRepository hands out order-number sequences from documents in the counters collection.
// Next runs its own transaction, even when ctx already carries one, so a sequence value is
// never rolled back and reused.
type CounterRepository struct {
	provider *pfirestore.Provider
	now      func() time.Time
}

var _ repositories.CounterRepository = (*CounterRepository)(nil)

func NewCounterRepository(provider *pfirestore.Provider) (*CounterRepository, error) {
	if provider == nil {
		return nil, errors.New("counter repository requires firestore provider")
	}
	return &CounterRepository{provider: provider, now: time.Now}, nil
}

func (r *CounterRepository) Next(ctx context.Context, counterID string, limit int64) (int64, error) {
	id := strings.TrimSpace(counterID)
	if id == "" || strings.Contains(id, "/") {
		return 0, fmt.Errorf("counters.next: invalid counter id %q", counterID)
	}
	client, err := r.provider.Client(ctx)
	if err != nil {
		return 0, err
	}
	ref := client.Collection(countersCollection).Doc(id)

	var next int64
	err = client.RunTransaction(ctx, func(_ context.Context, tx *firestore.Transaction) error {
		var doc counterDocument
		snap, err := tx.Get(ref)
		switch {
		case err == nil:
			if err := snap.DataTo(&doc); err != nil {
				return err
			}
		case status.Code(err) != codes.NotFound:
			return err
		}
		if limit > 0 && doc.Value >= limit {
			return fmt.Errorf("counter %s reached %d: %w", id, limit, repositories.ErrCounterExhausted)
		}
		next = doc.Value + 1
		return tx.Set(ref, counterDocument{Value: next, UpdatedAt: r.now().UTC()})
	})
	if errors.Is(err, repositories.ErrCounterExhausted) {
		return 0, err
	}
	if err != nil {
		return 0, pfirestore.WrapError("counters.next", err)
	}
	return next, nil
}

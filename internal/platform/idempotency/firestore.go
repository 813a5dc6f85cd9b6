package idempotency

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	ledgerCollection  = "placement_ledger"
	ledgerMaxAttempts = 5
	defaultSweepLimit = 100
)

// FirestoreStore persists the ledger in Firestore. Documents are keyed by the hashed key, so a
// reused key with a different fingerprint collides instead of creating a sibling.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
}

var _ Store = (*FirestoreStore)(nil)

// NewFirestoreStore stores records in collection, or in placement_ledger when it is empty.
func NewFirestoreStore(client *firestore.Client, collection ...string) *FirestoreStore {
	store := &FirestoreStore{client: client, collection: ledgerCollection}
	if len(collection) > 0 && collection[0] != "" {
		store.collection = collection[0]
	}
	return store
}

// mutate loads the record for key inside a transaction and hands it to fn, which buffers writes
// on tx.
func (s *FirestoreStore) mutate(ctx context.Context, key string, fn func(tx *firestore.Transaction, ref *firestore.DocumentRef, current *Record) error) error {
	ref := s.client.Collection(s.collection).Doc(documentID(key))
	return s.client.RunTransaction(ctx, func(_ context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil && status.Code(err) != codes.NotFound {
			return err
		}
		var current *Record
		if err == nil {
			var doc ledgerDocument
			if err := snap.DataTo(&doc); err != nil {
				return err
			}
			record := doc.record()
			current = &record
		}
		return fn(tx, ref, current)
	}, firestore.MaxAttempts(ledgerMaxAttempts))
}

func (s *FirestoreStore) Reserve(ctx context.Context, key, fingerprint string, now time.Time, ttl time.Duration) (Reservation, error) {
	var out Reservation
	err := s.mutate(ctx, key, func(tx *firestore.Transaction, ref *firestore.DocumentRef, current *Record) error {
		res, write, err := reserve(current, key, fingerprint, now.UTC(), normalizeTTL(ttl))
		if err != nil {
			return err
		}
		out = res
		if write == nil {
			return nil
		}
		return tx.Set(ref, newLedgerDocument(*write))
	})
	if err != nil {
		return Reservation{}, err
	}
	return out, nil
}

func (s *FirestoreStore) Complete(ctx context.Context, key, fingerprint string, result Result, now time.Time, ttl time.Duration) error {
	return s.mutate(ctx, key, func(tx *firestore.Transaction, ref *firestore.DocumentRef, current *Record) error {
		next, err := complete(current, key, fingerprint, result, now.UTC(), normalizeTTL(ttl))
		if err != nil {
			return err
		}
		return tx.Set(ref, newLedgerDocument(next))
	})
}

func (s *FirestoreStore) Release(ctx context.Context, key, fingerprint string) error {
	return s.mutate(ctx, key, func(tx *firestore.Transaction, ref *firestore.DocumentRef, current *Record) error {
		drop, err := release(current, fingerprint)
		if err != nil || !drop {
			return err
		}
		return tx.Delete(ref)
	})
}

// CleanupExpired deletes up to limit expired records in one batch.
func (s *FirestoreStore) CleanupExpired(ctx context.Context, now time.Time, limit int) (int, error) {
	if limit <= 0 {
		limit = defaultSweepLimit
	}
	snaps, err := s.client.Collection(s.collection).
		Where("expires_at", "<=", now.UTC()).
		Limit(limit).
		Documents(ctx).
		GetAll()
	if err != nil || len(snaps) == 0 {
		return 0, err
	}

	batch := s.client.Batch()
	for _, snap := range snaps {
		batch.Delete(snap.Ref)
	}
	if _, err := batch.Commit(ctx); err != nil {
		return 0, err
	}
	return len(snaps), nil
}

type ledgerDocument struct {
	Key         string    `firestore:"key"`
	Fingerprint string    `firestore:"fingerprint"`
	Status      string    `firestore:"status"`
	OrderID     string    `firestore:"order_id,omitempty"`
	OrderNumber string    `firestore:"order_number,omitempty"`
	CreatedAt   time.Time `firestore:"created_at"`
	UpdatedAt   time.Time `firestore:"updated_at"`
	ExpiresAt   time.Time `firestore:"expires_at"`
}

func newLedgerDocument(r Record) ledgerDocument {
	return ledgerDocument{
		Key:         r.Key,
		Fingerprint: r.Fingerprint,
		Status:      string(r.Status),
		OrderID:     r.Result.OrderID,
		OrderNumber: r.Result.OrderNumber,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		ExpiresAt:   r.ExpiresAt,
	}
}

func (d ledgerDocument) record() Record {
	return Record{
		Key:         d.Key,
		Fingerprint: d.Fingerprint,
		Status:      Status(d.Status),
		Result:      Result{OrderID: d.OrderID, OrderNumber: d.OrderNumber},
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
		ExpiresAt:   d.ExpiresAt,
	}
}

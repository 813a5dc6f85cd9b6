package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"
)

// Status represents the lifecycle state of a ledger record.
type Status string

const (
	// DefaultTTL is the default duration that ledger records are retained.
	DefaultTTL = 24 * time.Hour
	// StatusPending indicates a placement reserved the key but has not finished.
	StatusPending Status = "pending"
	// StatusCompleted indicates the placement finished and its result can be replayed.
	StatusCompleted Status = "completed"
)

// ReservationState describes the outcome of attempting to reserve a key.
type ReservationState int

const (
	// ReservationStateNew means no live reservation existed and the caller owns the key.
	ReservationStateNew ReservationState = iota
	// ReservationStateCompleted means a previous attempt finished and its result should be replayed.
	ReservationStateCompleted
	// ReservationStatePending means another attempt currently holds the key.
	ReservationStatePending
)

// Reservation encapsulates the result of reserving a key, including the stored record.
type Reservation struct {
	State  ReservationState
	Record Record
}

// Result is what a completed placement leaves behind for replays.
type Result struct {
	OrderID     string
	OrderNumber string
}

// Record is the persisted ledger entry for a key.
type Record struct {
	Key         string
	Fingerprint string
	Status      Status
	Result      Result
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ExpiresAt   time.Time
}

// Store persists reservations so that a placement runs at most once per key.
type Store interface {
	Reserve(ctx context.Context, key, fingerprint string, now time.Time, ttl time.Duration) (Reservation, error)
	Complete(ctx context.Context, key, fingerprint string, result Result, now time.Time, ttl time.Duration) error
	Release(ctx context.Context, key, fingerprint string) error
	CleanupExpired(ctx context.Context, now time.Time, limit int) (int, error)
}

var (
	// ErrFingerprintMismatch is returned when a key is reused with a different request fingerprint.
	ErrFingerprintMismatch = errors.New("idempotency: key reserved for different request fingerprint")
)

// Fingerprint hashes the parts that make two requests "the same".
func Fingerprint(parts ...string) string {
	return sha256Hex([]byte(strings.Join(parts, "|")))
}

func documentID(key string) string {
	return sha256Hex([]byte(strings.TrimSpace(key)))
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

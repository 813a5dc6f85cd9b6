package idempotency

import "time"

// The functions below hold the ledger rules. Each store loads the current record (nil when absent),
// applies a transition and persists what it returns, so the memory and Firestore stores cannot
// drift apart.

func expired(record Record, now time.Time) bool {
	return !record.ExpiresAt.IsZero() && !now.Before(record.ExpiresAt)
}

// reserve returns the reservation outcome and, when the caller now owns the key, the record to
// write.
func reserve(current *Record, key, fingerprint string, now time.Time, ttl time.Duration) (Reservation, *Record, error) {
	if current != nil && !expired(*current, now) {
		if current.Fingerprint != fingerprint {
			return Reservation{}, nil, ErrFingerprintMismatch
		}
		state := ReservationStatePending
		if current.Status == StatusCompleted {
			state = ReservationStateCompleted
		}
		return Reservation{State: state, Record: *current}, nil, nil
	}
	next := Record{
		Key:         key,
		Fingerprint: fingerprint,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
		ExpiresAt:   now.Add(ttl),
	}
	return Reservation{State: ReservationStateNew, Record: next}, &next, nil
}

// complete stores result on the record. Completing a key that was never reserved still records
// the result so replays find it.
func complete(current *Record, key, fingerprint string, result Result, now time.Time, ttl time.Duration) (Record, error) {
	next := Record{Key: key, Fingerprint: fingerprint, CreatedAt: now}
	if current != nil {
		if current.Fingerprint != fingerprint {
			return Record{}, ErrFingerprintMismatch
		}
		next = *current
		if next.CreatedAt.IsZero() {
			next.CreatedAt = now
		}
	}
	next.Status = StatusCompleted
	next.Result = result
	next.UpdatedAt = now
	next.ExpiresAt = now.Add(ttl)
	return next, nil
}

// release reports whether the record should be deleted.
func release(current *Record, fingerprint string) (bool, error) {
	if current == nil {
		return false, nil
	}
	if current.Fingerprint != fingerprint {
		return false, ErrFingerprintMismatch
	}
	return true, nil
}

func normalizeTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultTTL
	}
	return ttl
}

//go:build integration

package firestore_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/firestore"

	pconfig "github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/platform/config"
	pfirestore "github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/platform/firestore"
	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/repositories"
)

type reservation struct {
	DraftID  string `firestore:"draftId"`
	Attempts int    `firestore:"attempts"`
}

// newEmulatorProvider targets a running emulator, e.g.
// `gcloud emulators firestore start --host-port=127.0.0.1:8086`.
func newEmulatorProvider(t *testing.T) *pfirestore.Provider {
	t.Helper()
	host := os.Getenv("FIRESTORE_EMULATOR_HOST")
	if host == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	provider := pfirestore.NewProvider(pconfig.FirestoreConfig{
		ProjectID:    fmt.Sprintf("checkout-it-%d", time.Now().UnixNano()),
		EmulatorHost: host,
	}, pfirestore.WithDialTimeout(5*time.Second))
	t.Cleanup(func() { _ = provider.Close(context.Background()) })
	return provider
}

func TestProviderRepositoryRoundTrip(t *testing.T) {
	provider := newEmulatorProvider(t)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := provider.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	repo := pfirestore.NewCollection[reservation](provider, "reservations")
	if err := repo.Create(ctx, "ord_1", reservation{DraftID: "ord_1", Attempts: 1}); err != nil {
		t.Fatalf("create: %v", err)
	}

	err := repo.Create(ctx, "ord_1", reservation{DraftID: "ord_1"})
	var repoErr *repositories.Error
	if !errors.As(err, &repoErr) || !repoErr.IsConflict() {
		t.Fatalf("expected conflict on duplicate create, got %v", err)
	}

	_, err = repo.Get(ctx, "ord_missing")
	if !errors.As(err, &repoErr) || !repoErr.IsNotFound() {
		t.Fatalf("expected not found, got %v", err)
	}

	err = provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		ref, err := repo.Ref(ctx, "ord_1")
		if err != nil {
			return err
		}
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		var r reservation
		if err := snap.DataTo(&r); err != nil {
			return err
		}
		r.Attempts++
		return tx.Set(ref, r)
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}

	doc, err := repo.Get(ctx, "ord_1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if doc.Data.Attempts != 2 || doc.UpdateTime.IsZero() {
		t.Fatalf("unexpected document %+v", doc)
	}
}

func TestProviderRejectsUseAfterClose(t *testing.T) {
	provider := newEmulatorProvider(t)
	ctx := context.Background()
	if _, err := provider.Client(ctx); err != nil {
		t.Fatalf("client: %v", err)
	}
	if err := provider.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := provider.Client(ctx); !errors.Is(err, pfirestore.ErrProviderClosed) {
		t.Fatalf("expected ErrProviderClosed, got %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := provider.RunTransaction(cancelled, func(context.Context, *firestore.Transaction) error { return nil }); err == nil {
		t.Fatal("expected transaction on closed provider to fail")
	}
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/domain"
	pcache "github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/platform/cache"
	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/repositories"
)

// DraftRepository keeps checkout drafts in a Cache. Every Save refreshes the expiry.
type DraftRepository struct {
	cache pcache.Cache
	ttl   time.Duration
}

var _ repositories.CheckoutDraftRepository = (*DraftRepository)(nil)

// NewDraftRepository stores drafts in c for ttl after their last save.
func NewDraftRepository(c pcache.Cache, ttl time.Duration) (*DraftRepository, error) {
	if c == nil {
		return nil, errors.New("draft cache: cache is required")
	}
	if ttl <= 0 {
		return nil, errors.New("draft cache: ttl must be positive")
	}
	return &DraftRepository{cache: c, ttl: ttl}, nil
}

func (r *DraftRepository) Get(ctx context.Context, draftID string) (domain.OrderDraft, error) {
	id := strings.TrimSpace(draftID)
	if id == "" {
		return domain.OrderDraft{}, errors.New("draft cache: draft id is required")
	}
	raw, err := r.cache.Get(ctx, r.key(id))
	if errors.Is(err, pcache.ErrMiss) {
		return domain.OrderDraft{}, repositories.NewError("checkout_drafts.get", repositories.ErrorKindNotFound, fmt.Errorf("draft %s not found", id))
	}
	if err != nil {
		return domain.OrderDraft{}, repositories.NewError("checkout_drafts.get", repositories.ErrorKindUnavailable, err)
	}
	var draft domain.OrderDraft
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		return domain.OrderDraft{}, fmt.Errorf("draft cache: decode %s: %w", id, err)
	}
	return draft, nil
}

func (r *DraftRepository) Save(ctx context.Context, draft domain.OrderDraft) error {
	id := strings.TrimSpace(draft.ID)
	if id == "" {
		return errors.New("draft cache: draft id is required")
	}
	payload, err := json.Marshal(draft.Redacted())
	if err != nil {
		return fmt.Errorf("draft cache: encode %s: %w", id, err)
	}
	if err := r.cache.Set(ctx, r.key(id), string(payload), r.ttl); err != nil {
		return repositories.NewError("checkout_drafts.save", repositories.ErrorKindUnavailable, err)
	}
	return nil
}

func (r *DraftRepository) Delete(ctx context.Context, draftID string) error {
	if err := r.cache.Delete(ctx, r.key(strings.TrimSpace(draftID))); err != nil {
		return repositories.NewError("checkout_drafts.delete", repositories.ErrorKindUnavailable, err)
	}
	return nil
}

func (r *DraftRepository) key(id string) string {
	return r.cache.GenerateKey("draft", id)
}

package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
)

// Document is a decoded snapshot of a Collection entry.
type Document[T any] struct {
	ID         string
	Data       T
	UpdateTime time.Time
}

// Collection reads and writes documents of one shape stored under a single collection. When ctx
// carries a transaction (see ContextWithTransaction) every call is buffered in it instead of
// going straight to the server.
type Collection[T any] struct {
	provider *Provider
	name     string
}

// NewCollection binds a typed collection to provider.
func NewCollection[T any](provider *Provider, name string) *Collection[T] {
	return &Collection[T]{provider: provider, name: strings.TrimSpace(name)}
}

// Create inserts value under id. An existing document yields a conflict error, although inside a
// transaction that only surfaces on commit.
func (c *Collection[T]) Create(ctx context.Context, id string, value T) error {
	return c.write(ctx, "create", id,
		func(tx *firestore.Transaction, ref *firestore.DocumentRef) error { return tx.Create(ref, value) },
		func(ref *firestore.DocumentRef) error { _, err := ref.Create(ctx, value); return err },
	)
}

// Set replaces the document stored under id.
func (c *Collection[T]) Set(ctx context.Context, id string, value T) error {
	return c.write(ctx, "set", id,
		func(tx *firestore.Transaction, ref *firestore.DocumentRef) error { return tx.Set(ref, value) },
		func(ref *firestore.DocumentRef) error { _, err := ref.Set(ctx, value); return err },
	)
}

// Update patches fields of an existing document. A missing document yields not found.
func (c *Collection[T]) Update(ctx context.Context, id string, updates []firestore.Update) error {
	return c.write(ctx, "update", id,
		func(tx *firestore.Transaction, ref *firestore.DocumentRef) error { return tx.Update(ref, updates) },
		func(ref *firestore.DocumentRef) error { _, err := ref.Update(ctx, updates); return err },
	)
}

// Delete removes the document. Deleting a missing document succeeds.
func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	return c.write(ctx, "delete", id,
		func(tx *firestore.Transaction, ref *firestore.DocumentRef) error { return tx.Delete(ref) },
		func(ref *firestore.DocumentRef) error { _, err := ref.Delete(ctx); return err },
	)
}

// Get loads and decodes the document stored under id.
func (c *Collection[T]) Get(ctx context.Context, id string) (Document[T], error) {
	ref, err := c.Ref(ctx, id)
	if err != nil {
		return Document[T]{}, err
	}
	var snap *firestore.DocumentSnapshot
	if tx, ok := TransactionFromContext(ctx); ok {
		snap, err = tx.Get(ref)
	} else {
		snap, err = ref.Get(ctx)
	}
	if err != nil {
		return Document[T]{}, WrapError(c.op("get"), err)
	}

	doc := Document[T]{ID: snap.Ref.ID, UpdateTime: snap.UpdateTime}
	if err := snap.DataTo(&doc.Data); err != nil {
		return Document[T]{}, WrapError(c.op("decode"), err)
	}
	return doc, nil
}

// Ref resolves the document reference for id, for callers driving a transaction by hand.
func (c *Collection[T]) Ref(ctx context.Context, id string) (*firestore.DocumentRef, error) {
	switch {
	case c == nil || c.provider == nil:
		return nil, WrapError(c.op("ref"), errors.New("firestore: provider is nil"))
	case c.name == "":
		return nil, WrapError(c.op("ref"), errors.New("firestore: collection name is required"))
	case strings.TrimSpace(id) == "":
		return nil, WrapError(c.op("ref"), errors.New("firestore: document id is required"))
	}
	client, err := c.provider.Client(ctx)
	if err != nil {
		return nil, err
	}
	return client.Collection(c.name).Doc(id), nil
}

func (c *Collection[T]) write(
	ctx context.Context,
	action, id string,
	inTx func(*firestore.Transaction, *firestore.DocumentRef) error,
	direct func(*firestore.DocumentRef) error,
) error {
	ref, err := c.Ref(ctx, id)
	if err != nil {
		return err
	}
	if tx, ok := TransactionFromContext(ctx); ok {
		err = inTx(tx, ref)
	} else {
		err = direct(ref)
	}
	return WrapError(c.op(action), err)
}

func (c *Collection[T]) op(action string) string {
	if c == nil || c.name == "" {
		return "firestore." + action
	}
	return c.name + "." + action
}

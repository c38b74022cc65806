// Package collection defines the remote document collection contract the
// catalog is built against: a live snapshot subscription plus one-shot
// get/create/update/delete operations. The production implementation is
// backed by Postgres with a NATS change feed; tests inject fakes.
package collection

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"storefront-service/internal/models"
)

// ErrNotFound is returned when a one-shot fetch or delete targets a document
// that is not in the collection.
var ErrNotFound = errors.New("document not found")

// Order selects the snapshot ordering of a subscription.
type Order int

const (
	// Unordered leaves snapshot order to the store (admin listing).
	Unordered Order = iota
	// OrderByCreatedDesc orders snapshots newest first (home listing).
	OrderByCreatedDesc
)

// SubscribeOptions configures a collection subscription.
type SubscribeOptions struct {
	Order Order
}

// Client is the remote collection contract consumed by the catalog core.
type Client interface {
	// Subscribe opens a standing subscription delivering full collection
	// snapshots, starting with the current contents, until ctx is cancelled
	// or the subscription is closed.
	Subscribe(ctx context.Context, opts SubscribeOptions) (*Subscription, error)

	// GetByID fetches a single document. Returns ErrNotFound when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)

	// Create stores a new document and returns its assigned id.
	Create(ctx context.Context, product *models.Product) (uuid.UUID, error)

	// Update merges fields into an existing document. Returns ErrNotFound
	// when the target is absent.
	Update(ctx context.Context, id uuid.UUID, updates *models.Product) error

	// Delete removes a document. Returns ErrNotFound when already absent.
	Delete(ctx context.Context, id uuid.UUID) error
}

// Subscription is a cancellable snapshot stream. Snapshots carries complete
// collection contents; Errors carries transport faults without closing the
// snapshot stream. Close is idempotent.
type Subscription struct {
	snapshots <-chan []models.Product
	errs      <-chan error
	stop      func()
	once      sync.Once
}

// NewSubscription wraps a snapshot source into a Subscription. The stop
// function is invoked exactly once, on the first Close.
func NewSubscription(snapshots <-chan []models.Product, errs <-chan error, stop func()) *Subscription {
	return &Subscription{snapshots: snapshots, errs: errs, stop: stop}
}

// Snapshots returns the snapshot channel. It is closed after Close.
func (s *Subscription) Snapshots() <-chan []models.Product {
	return s.snapshots
}

// Errors returns the transport fault channel.
func (s *Subscription) Errors() <-chan error {
	return s.errs
}

// Close cancels the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		if s.stop != nil {
			s.stop()
		}
	})
}

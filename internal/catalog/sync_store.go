// Package catalog holds the live catalog pipeline: a sync store that mirrors
// the remote product collection through a standing subscription, and the pure
// filter/category derivations the storefront renders from.
package catalog

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"storefront-service/internal/collection"
	"storefront-service/internal/models"
)

// SyncStore owns a local, continuously updated copy of the product
// collection. It is read-only: writes go through the admin gateway and become
// visible here only via the subscription (eventual consistency).
type SyncStore struct {
	client collection.Client
	order  collection.Order
	logger *logrus.Entry

	mu       sync.RWMutex
	snapshot []models.Product
	loaded   bool
	healthy  bool
	started  bool
	stopped  bool

	cancel context.CancelFunc
	done   chan struct{}
}

// NewSyncStore builds a sync store over the given collection client. The
// order applies to every snapshot the subscription delivers.
func NewSyncStore(client collection.Client, order collection.Order, logger *logrus.Logger) *SyncStore {
	return &SyncStore{
		client:  client,
		order:   order,
		healthy: true,
		logger:  logger.WithField("component", "catalog-sync"),
	}
}

// Start establishes the subscription and begins mirroring snapshots.
// Idempotent: calling while already started is a no-op. A failure to open the
// subscription is returned and leaves the store startable again.
func (s *SyncStore) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	subCtx, cancel := context.WithCancel(ctx)
	sub, err := s.client.Subscribe(subCtx, collection.SubscribeOptions{Order: s.order})
	if err != nil {
		cancel()
		return err
	}

	s.mu.Lock()
	if s.started {
		// Lost the race to a concurrent Start.
		s.mu.Unlock()
		cancel()
		sub.Close()
		return nil
	}
	s.started = true
	s.stopped = false
	s.cancel = cancel
	s.done = make(chan struct{})
	done := s.done
	s.mu.Unlock()

	go func() {
		defer close(done)
		defer sub.Close()
		for {
			select {
			case <-subCtx.Done():
				return
			case snapshot, ok := <-sub.Snapshots():
				if !ok {
					return
				}
				s.apply(snapshot)
			case err, ok := <-sub.Errors():
				if !ok {
					continue
				}
				s.degrade(err)
			}
		}
	}()

	return nil
}

// Stop cancels the subscription. Must be called exactly once per successful
// Start, on owner teardown; notifications arriving afterwards are discarded.
func (s *SyncStore) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	s.stopped = true
	cancel := s.cancel
	done := s.done
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// apply replaces the local snapshot wholesale (full-refresh semantics) and
// clears any previous unavailable state.
func (s *SyncStore) apply(snapshot []models.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		// Late notification after Stop; must not mutate state.
		return
	}
	s.snapshot = snapshot
	s.loaded = true
	s.healthy = true
}

// degrade records an unavailable subscription. The previous snapshot is kept:
// stale-but-present beats empty.
func (s *SyncStore) degrade(err error) {
	s.logger.WithError(err).Warn("Catalog subscription unavailable, serving last snapshot")
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.healthy = false
}

// Snapshot returns a copy of the current local catalog.
func (s *SyncStore) Snapshot() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Product, len(s.snapshot))
	copy(out, s.snapshot)
	return out
}

// Loaded reports whether the initial snapshot has arrived.
func (s *SyncStore) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Healthy reports whether the subscription has degraded since the last good
// snapshot.
func (s *SyncStore) Healthy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.healthy
}

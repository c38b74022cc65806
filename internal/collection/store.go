package collection

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"storefront-service/internal/events"
	"storefront-service/internal/models"
	"gorm.io/gorm"
)

// DefaultPollInterval drives snapshot refreshes when no change feed is
// configured.
const DefaultPollInterval = 15 * time.Second

// Repository is the persistence surface the store needs. Implemented by
// repository.ProductsRepository; mocked in tests.
type Repository interface {
	CreateProduct(ctx context.Context, product *models.Product) error
	GetProductByID(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	UpdateProduct(ctx context.Context, productID uuid.UUID, updates *models.Product) error
	DeleteProduct(ctx context.Context, productID uuid.UUID) error
	ListProducts(ctx context.Context, orderByCreatedDesc bool) ([]models.Product, error)
}

// Feed is the change-notification source for live subscriptions. Implemented
// by events.Subscriber.
type Feed interface {
	Subscribe(ctx context.Context) (<-chan events.ChangeEvent, <-chan error, error)
}

// ChangePublisher emits change events after successful writes. Implemented by
// events.Publisher.
type ChangePublisher interface {
	PublishProductCreated(ctx context.Context, product *models.Product)
	PublishProductUpdated(ctx context.Context, product *models.Product)
	PublishProductDeleted(ctx context.Context, productID string)
}

// Store implements Client over the GORM repository plus the NATS change feed.
// Every feed notification triggers a full catalog re-read: the subscription
// delivers complete snapshots, never deltas.
type Store struct {
	repo         Repository
	feed         Feed
	publisher    ChangePublisher
	pollInterval time.Duration
	logger       *logrus.Entry
}

var _ Client = (*Store)(nil)

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithPollInterval overrides the fallback polling cadence used when no change
// feed is available.
func WithPollInterval(d time.Duration) StoreOption {
	return func(s *Store) { s.pollInterval = d }
}

// NewStore builds a collection store. feed and publisher may be nil; without
// a feed, subscriptions fall back to interval polling.
func NewStore(repo Repository, feed Feed, publisher ChangePublisher, logger *logrus.Logger, opts ...StoreOption) *Store {
	s := &Store{
		repo:         repo,
		feed:         feed,
		publisher:    publisher,
		pollInterval: DefaultPollInterval,
		logger:       logger.WithField("component", "collection-store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe opens a live snapshot subscription. The first snapshot is read
// immediately; later ones follow change feed notifications (or the polling
// ticker). A failed refresh surfaces on the error channel and the previous
// snapshot stays current.
func (s *Store) Subscribe(ctx context.Context, opts SubscribeOptions) (*Subscription, error) {
	subCtx, cancel := context.WithCancel(ctx)

	var changeEvents <-chan events.ChangeEvent
	var feedErrs <-chan error
	if s.feed != nil {
		var err error
		changeEvents, feedErrs, err = s.feed.Subscribe(subCtx)
		if err != nil {
			cancel()
			return nil, err
		}
	}

	snapshots := make(chan []models.Product)
	errs := make(chan error, 1)
	orderDesc := opts.Order == OrderByCreatedDesc

	go func() {
		defer close(snapshots)

		emit := func() {
			products, err := s.repo.ListProducts(subCtx, orderDesc)
			if err != nil {
				if subCtx.Err() != nil {
					return
				}
				s.logger.WithError(err).Warn("Snapshot refresh failed")
				select {
				case errs <- err:
				default:
				}
				return
			}
			select {
			case snapshots <- products:
			case <-subCtx.Done():
			}
		}

		emit()

		var ticker *time.Ticker
		var tick <-chan time.Time
		if changeEvents == nil {
			ticker = time.NewTicker(s.pollInterval)
			tick = ticker.C
			defer ticker.Stop()
		}

		for {
			select {
			case <-subCtx.Done():
				return
			case <-tick:
				emit()
			case _, ok := <-changeEvents:
				if !ok {
					return
				}
				emit()
			case err, ok := <-feedErrs:
				if !ok {
					feedErrs = nil
					continue
				}
				select {
				case errs <- err:
				default:
				}
			}
		}
	}()

	return NewSubscription(snapshots, errs, cancel), nil
}

// GetByID fetches one document, mapping a missing row to ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return product, nil
}

// Create stores a new document and announces it on the change feed.
func (s *Store) Create(ctx context.Context, product *models.Product) (uuid.UUID, error) {
	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return uuid.Nil, err
	}
	if s.publisher != nil {
		s.publisher.PublishProductCreated(ctx, product)
	}
	return product.ID, nil
}

// Update merges fields into an existing document and announces the change.
func (s *Store) Update(ctx context.Context, id uuid.UUID, updates *models.Product) error {
	if err := s.repo.UpdateProduct(ctx, id, updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if s.publisher != nil {
		updates.ID = id
		s.publisher.PublishProductUpdated(ctx, updates)
	}
	return nil
}

// Delete removes a document and announces the deletion. An already-deleted
// target maps to ErrNotFound for the caller to interpret.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if s.publisher != nil {
		s.publisher.PublishProductDeleted(ctx, id.String())
	}
	return nil
}

package collection

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"storefront-service/internal/events"
	"storefront-service/internal/models"
	"gorm.io/gorm"
)

// fakeRepo is an in-memory Repository whose list results the test scripts.
type fakeRepo struct {
	mu       sync.Mutex
	products []models.Product
	listErr  error
	getErr   error
}

func (r *fakeRepo) setProducts(products []models.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products = products
}

func (r *fakeRepo) setListErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listErr = err
}

func (r *fakeRepo) CreateProduct(ctx context.Context, product *models.Product) error {
	product.ID = uuid.New()
	return nil
}

func (r *fakeRepo) GetProductByID(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.ID == productID {
			out := p
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepo) UpdateProduct(ctx context.Context, productID uuid.UUID, updates *models.Product) error {
	return gorm.ErrRecordNotFound
}

func (r *fakeRepo) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	return gorm.ErrRecordNotFound
}

func (r *fakeRepo) ListProducts(ctx context.Context, orderByCreatedDesc bool) ([]models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]models.Product, len(r.products))
	copy(out, r.products)
	return out, nil
}

// fakeFeed hands the store a scripted change-event stream.
type fakeFeed struct {
	events chan events.ChangeEvent
	errs   chan error
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{
		events: make(chan events.ChangeEvent, 8),
		errs:   make(chan error, 8),
	}
}

func (f *fakeFeed) Subscribe(ctx context.Context) (<-chan events.ChangeEvent, <-chan error, error) {
	return f.events, f.errs, nil
}

// recordingPublisher counts change announcements.
type recordingPublisher struct {
	mu      sync.Mutex
	created int
	updated int
	deleted int
}

func (p *recordingPublisher) PublishProductCreated(ctx context.Context, product *models.Product) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created++
}

func (p *recordingPublisher) PublishProductUpdated(ctx context.Context, product *models.Product) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updated++
}

func (p *recordingPublisher) PublishProductDeleted(ctx context.Context, productID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleted++
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func receiveSnapshot(t *testing.T, sub *Subscription) []models.Product {
	t.Helper()
	select {
	case snapshot := <-sub.Snapshots():
		return snapshot
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func TestStoreSubscribe_InitialSnapshot(t *testing.T) {
	repo := &fakeRepo{}
	repo.setProducts([]models.Product{{Name: "A"}})
	feed := newFakeFeed()
	store := NewStore(repo, feed, nil, testLogger())

	sub, err := store.Subscribe(context.Background(), SubscribeOptions{})
	require.NoError(t, err)
	defer sub.Close()

	snapshot := receiveSnapshot(t, sub)
	require.Len(t, snapshot, 1)
	assert.Equal(t, "A", snapshot[0].Name)
}

func TestStoreSubscribe_ChangeEventTriggersRefresh(t *testing.T) {
	repo := &fakeRepo{}
	repo.setProducts([]models.Product{{Name: "A"}})
	feed := newFakeFeed()
	store := NewStore(repo, feed, nil, testLogger())

	sub, err := store.Subscribe(context.Background(), SubscribeOptions{})
	require.NoError(t, err)
	defer sub.Close()

	receiveSnapshot(t, sub)

	repo.setProducts([]models.Product{{Name: "A"}, {Name: "B"}})
	feed.events <- events.ChangeEvent{EventType: "product.created"}

	snapshot := receiveSnapshot(t, sub)
	assert.Len(t, snapshot, 2)
}

func TestStoreSubscribe_RefreshFailureSurfacesOnErrors(t *testing.T) {
	repo := &fakeRepo{}
	repo.setProducts([]models.Product{{Name: "A"}})
	feed := newFakeFeed()
	store := NewStore(repo, feed, nil, testLogger())

	sub, err := store.Subscribe(context.Background(), SubscribeOptions{})
	require.NoError(t, err)
	defer sub.Close()

	receiveSnapshot(t, sub)

	cause := errors.New("db down")
	repo.setListErr(cause)
	feed.events <- events.ChangeEvent{EventType: "product.updated"}

	select {
	case err := <-sub.Errors():
		assert.ErrorIs(t, err, cause)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for subscription error")
	}
}

func TestStoreSubscribe_PollingFallbackWithoutFeed(t *testing.T) {
	repo := &fakeRepo{}
	repo.setProducts([]models.Product{{Name: "A"}})
	store := NewStore(repo, nil, nil, testLogger(), WithPollInterval(10*time.Millisecond))

	sub, err := store.Subscribe(context.Background(), SubscribeOptions{})
	require.NoError(t, err)
	defer sub.Close()

	receiveSnapshot(t, sub)

	repo.setProducts([]models.Product{{Name: "A"}, {Name: "B"}})

	require.Eventually(t, func() bool {
		select {
		case snapshot := <-sub.Snapshots():
			return len(snapshot) == 2
		default:
			return false
		}
	}, 2*time.Second, 5*time.Millisecond, "poller should pick up the new row")
}

func TestStoreSubscribe_CloseStopsStream(t *testing.T) {
	repo := &fakeRepo{}
	feed := newFakeFeed()
	store := NewStore(repo, feed, nil, testLogger())

	sub, err := store.Subscribe(context.Background(), SubscribeOptions{})
	require.NoError(t, err)

	receiveSnapshot(t, sub)
	sub.Close()

	require.Eventually(t, func() bool {
		select {
		case _, ok := <-sub.Snapshots():
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 5*time.Millisecond, "snapshot channel should close after Close")
}

func TestStoreGetByID_MapsNotFound(t *testing.T) {
	repo := &fakeRepo{}
	store := NewStore(repo, nil, nil, testLogger())

	_, err := store.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreGetByID_PassesTransportErrors(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	repo := &fakeRepo{getErr: cause}
	store := NewStore(repo, nil, nil, testLogger())

	_, err := store.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestStoreCreate_PublishesChange(t *testing.T) {
	repo := &fakeRepo{}
	publisher := &recordingPublisher{}
	store := NewStore(repo, nil, publisher, testLogger())

	id, err := store.Create(context.Background(), &models.Product{Name: "A"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)
	assert.Equal(t, 1, publisher.created)
}

func TestStoreUpdate_MapsNotFound(t *testing.T) {
	repo := &fakeRepo{}
	publisher := &recordingPublisher{}
	store := NewStore(repo, nil, publisher, testLogger())

	err := store.Update(context.Background(), uuid.New(), &models.Product{Name: "A"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, publisher.updated)
}

func TestStoreDelete_MapsNotFound(t *testing.T) {
	repo := &fakeRepo{}
	publisher := &recordingPublisher{}
	store := NewStore(repo, nil, publisher, testLogger())

	err := store.Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, publisher.deleted)
}

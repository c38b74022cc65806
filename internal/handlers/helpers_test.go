package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"storefront-service/internal/catalog"
	"storefront-service/internal/collection"
	"storefront-service/internal/models"
)

// fakeClient is a scripted collection client backed by an in-memory map. Error
// fields force transport failures per operation.
type fakeClient struct {
	products map[uuid.UUID]models.Product

	getErr    error
	createErr error
	updateErr error
	deleteErr error

	snapshots chan []models.Product
	errs      chan error
}

func newFakeClient(products ...models.Product) *fakeClient {
	f := &fakeClient{
		products:  make(map[uuid.UUID]models.Product),
		snapshots: make(chan []models.Product, 8),
		errs:      make(chan error, 8),
	}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeClient) Subscribe(ctx context.Context, opts collection.SubscribeOptions) (*collection.Subscription, error) {
	return collection.NewSubscription(f.snapshots, f.errs, func() {}), nil
}

func (f *fakeClient) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	p, ok := f.products[id]
	if !ok {
		return nil, collection.ErrNotFound
	}
	return &p, nil
}

func (f *fakeClient) Create(ctx context.Context, product *models.Product) (uuid.UUID, error) {
	if f.createErr != nil {
		return uuid.Nil, f.createErr
	}
	id := uuid.New()
	p := *product
	p.ID = id
	f.products[id] = p
	return id, nil
}

func (f *fakeClient) Update(ctx context.Context, id uuid.UUID, updates *models.Product) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.products[id]; !ok {
		return collection.ErrNotFound
	}
	p := *updates
	p.ID = id
	f.products[id] = p
	return nil
}

func (f *fakeClient) Delete(ctx context.Context, id uuid.UUID) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.products[id]; !ok {
		return collection.ErrNotFound
	}
	delete(f.products, id)
	return nil
}

const (
	waitTimeout = 2 * time.Second
	waitTick    = 5 * time.Millisecond
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

// newSyncedStore starts a sync store over the client and delivers the given
// snapshot before returning.
func newSyncedStore(t *testing.T, client *fakeClient, snapshot []models.Product) *catalog.SyncStore {
	t.Helper()
	store := catalog.NewSyncStore(client, collection.Unordered, testLogger())
	require.NoError(t, store.Start(context.Background()))
	t.Cleanup(store.Stop)

	client.snapshots <- snapshot
	require.Eventually(t, store.Loaded, waitTimeout, waitTick,
		"snapshot should be applied before the test proceeds")
	return store
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func performRequest(router *gin.Engine, method, path string, body *string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(*body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"storefront-service/internal/gateway"
	"storefront-service/internal/models"
)

const validProductJSON = `{
	"name": "iPhone 14 Pro Max Protective Case",
	"description": "Military-grade drop protection",
	"price": "39.99",
	"imageUrl": "https://example.com/case.jpg",
	"affiliateLink": "https://amazon.com/dp/example1",
	"category": "iPhone"
}`

func newAdminRouter(t *testing.T, client *fakeClient, snapshot []models.Product) *gin.Engine {
	t.Helper()
	store := newSyncedStore(t, client, snapshot)
	gw := gateway.New(client, testLogger())
	handler := NewAdminHandler(gw, store, client)

	router := setupTestRouter()
	router.GET("/api/v1/admin/products", handler.ListProducts)
	router.GET("/api/v1/admin/products/:id/form", handler.GetProductForm)
	router.POST("/api/v1/admin/products", handler.CreateProduct)
	router.PUT("/api/v1/admin/products/:id", handler.UpdateProduct)
	router.DELETE("/api/v1/admin/products/:id", handler.DeleteProduct)
	return router
}

func TestAdminListProducts(t *testing.T) {
	snapshot := []models.Product{
		{ID: uuid.New(), Name: "A", Category: "iPhone"},
		{ID: uuid.New(), Name: "B", Category: "Samsung"},
	}
	router := newAdminRouter(t, newFakeClient(snapshot...), snapshot)

	w := performRequest(router, "GET", "/api/v1/admin/products", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.CatalogResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)
	assert.False(t, resp.Loading)
}

func TestAdminGetProductForm_NewTemplate(t *testing.T) {
	router := newAdminRouter(t, newFakeClient(), nil)

	w := performRequest(router, "GET", "/api/v1/admin/products/new/form", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool                `json:"success"`
		Data    gateway.ProductForm `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Data.Name)
	assert.Len(t, resp.Data.AdditionalImages, models.MaxAdditionalImages)
	assert.Contains(t, resp.Data.ComparisonData, "Drop Protection")
}

func TestAdminGetProductForm_Existing(t *testing.T) {
	product := models.Product{
		ID: uuid.New(), Name: "Clear Case", Description: "Thin",
		Price: 29.99, ImageURL: "https://example.com/x.jpg",
		AffiliateLink: "https://amazon.com/dp/x", Category: "OnePlus",
	}
	router := newAdminRouter(t, newFakeClient(product), []models.Product{product})

	w := performRequest(router, "GET", "/api/v1/admin/products/"+product.ID.String()+"/form", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data gateway.ProductForm `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Clear Case", resp.Data.Name)
	assert.Equal(t, "29.99", resp.Data.Price)
}

func TestAdminGetProductForm_NotFound(t *testing.T) {
	router := newAdminRouter(t, newFakeClient(), nil)

	w := performRequest(router, "GET", "/api/v1/admin/products/"+uuid.New().String()+"/form", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminCreateProduct_Success(t *testing.T) {
	client := newFakeClient()
	router := newAdminRouter(t, client, nil)

	body := validProductJSON
	w := performRequest(router, "POST", "/api/v1/admin/products", &body)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Success bool           `json:"success"`
		Data    models.Product `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEqual(t, uuid.Nil, resp.Data.ID)
	assert.Len(t, client.products, 1)
}

func TestAdminCreateProduct_ValidationError(t *testing.T) {
	client := newFakeClient()
	router := newAdminRouter(t, client, nil)

	body := `{"name": "", "description": "d", "price": "1", "imageUrl": "i", "affiliateLink": "a", "category": "c"}`
	w := performRequest(router, "POST", "/api/v1/admin/products", &body)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Equal(t, "name", resp.Error.Field)
	// Nothing reached the collection.
	assert.Empty(t, client.products)
}

func TestAdminCreateProduct_TransportFailureEchoesForm(t *testing.T) {
	client := newFakeClient()
	client.createErr = errors.New("connection refused")
	router := newAdminRouter(t, client, nil)

	body := validProductJSON
	w := performRequest(router, "POST", "/api/v1/admin/products", &body)
	require.Equal(t, http.StatusBadGateway, w.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "SAVE_FAILED", resp.Error.Code)
	require.NotNil(t, resp.Error.Details)
	assert.Equal(t, true, (*resp.Error.Details)["retryable"])

	// The submitted form rides along so the admin's input is not lost.
	form, ok := (*resp.Error.Details)["form"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "iPhone 14 Pro Max Protective Case", form["name"])
}

func TestAdminUpdateProduct_Success(t *testing.T) {
	product := models.Product{
		ID: uuid.New(), Name: "Old Name", Description: "d",
		Price: 10, ImageURL: "i", AffiliateLink: "a", Category: "iPhone",
	}
	client := newFakeClient(product)
	router := newAdminRouter(t, client, []models.Product{product})

	body := validProductJSON
	w := performRequest(router, "PUT", "/api/v1/admin/products/"+product.ID.String(), &body)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data models.Product `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, product.ID, resp.Data.ID)
	assert.Equal(t, "iPhone 14 Pro Max Protective Case", resp.Data.Name)
}

func TestAdminUpdateProduct_PriceToZeroRoundTrips(t *testing.T) {
	discount := 20
	product := models.Product{
		ID: uuid.New(), Name: "Free Promo Case", Description: "d",
		Price: 19.99, ImageURL: "i", AffiliateLink: "a", Category: "iPhone",
		Discount: &discount,
	}
	client := newFakeClient(product)
	router := newAdminRouter(t, client, []models.Product{product})

	body := `{
		"name": "Free Promo Case",
		"description": "d",
		"price": "0",
		"imageUrl": "i",
		"affiliateLink": "a",
		"category": "iPhone"
	}`
	w := performRequest(router, "PUT", "/api/v1/admin/products/"+product.ID.String(), &body)
	require.Equal(t, http.StatusOK, w.Code)

	// The stored record reflects the submitted zero price and the cleared
	// discount, not just the response payload.
	stored, ok := client.products[product.ID]
	require.True(t, ok)
	assert.Equal(t, 0.0, stored.Price)
	assert.Nil(t, stored.Discount)
}

func TestAdminUpdateProduct_NotFound(t *testing.T) {
	router := newAdminRouter(t, newFakeClient(), nil)

	body := validProductJSON
	w := performRequest(router, "PUT", "/api/v1/admin/products/"+uuid.New().String(), &body)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminUpdateProduct_InvalidID(t *testing.T) {
	router := newAdminRouter(t, newFakeClient(), nil)

	body := validProductJSON
	w := performRequest(router, "PUT", "/api/v1/admin/products/abc", &body)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_ID", resp.Error.Code)
}

func TestAdminDeleteProduct_RequiresConfirmation(t *testing.T) {
	product := models.Product{ID: uuid.New(), Name: "A"}
	client := newFakeClient(product)
	router := newAdminRouter(t, client, []models.Product{product})

	w := performRequest(router, "DELETE", "/api/v1/admin/products/"+product.ID.String(), nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "CONFIRMATION_REQUIRED", resp.Error.Code)
	// The product was not touched.
	assert.Len(t, client.products, 1)
}

func TestAdminDeleteProduct_Confirmed(t *testing.T) {
	product := models.Product{ID: uuid.New(), Name: "A"}
	client := newFakeClient(product)
	router := newAdminRouter(t, client, []models.Product{product})

	w := performRequest(router, "DELETE", "/api/v1/admin/products/"+product.ID.String()+"?confirm=true", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data gateway.DeleteOutcome `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Data.Deleted)
	assert.Empty(t, client.products)
}

func TestAdminDeleteProduct_AlreadyAbsent(t *testing.T) {
	router := newAdminRouter(t, newFakeClient(), nil)

	w := performRequest(router, "DELETE", "/api/v1/admin/products/"+uuid.New().String()+"?confirm=true", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data gateway.DeleteOutcome `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Data.Deleted)
	assert.True(t, resp.Data.AlreadyAbsent)
}

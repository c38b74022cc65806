package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"storefront-service/internal/catalog"
	"storefront-service/internal/collection"
	"storefront-service/internal/models"
)

// StorefrontHandler serves the public catalog: the live filtered listing and
// the product detail view. The listing is derived from the sync store's local
// snapshot, never from a direct database query.
type StorefrontHandler struct {
	sync   *catalog.SyncStore
	client collection.Client
}

func NewStorefrontHandler(sync *catalog.SyncStore, client collection.Client) *StorefrontHandler {
	return &StorefrontHandler{sync: sync, client: client}
}

// GetProducts returns the filtered catalog view
// @Summary Browse products
// @Description Returns the catalog filtered by search term and category, newest first
// @Tags Storefront
// @Produce json
// @Param search query string false "Case-insensitive match on name or description"
// @Param category query string false "Exact category, or 'all'" default(all)
// @Success 200 {object} models.CatalogResponse
// @Router /storefront/products [get]
func (h *StorefrontHandler) GetProducts(c *gin.Context) {
	searchTerm := c.Query("search")
	category := c.DefaultQuery("category", models.CategoryAll)

	snapshot := h.sync.Snapshot()
	filtered := catalog.Filter(snapshot, searchTerm, category)

	c.JSON(http.StatusOK, models.CatalogResponse{
		Success:    true,
		Products:   models.NewProductViews(filtered),
		Categories: catalog.Categories(snapshot),
		Total:      len(filtered),
		Loading:    !h.sync.Loaded(),
		Stale:      !h.sync.Healthy(),
	})
}

// GetProduct returns one product for the detail view
// @Summary Get product detail
// @Description Fetches a single product; a missing product redirects to the catalog root
// @Tags Storefront
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /storefront/products/{id} [get]
func (h *StorefrontHandler) GetProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "INVALID_ID",
				Message: "Invalid product ID format",
			},
		})
		return
	}

	product, err := h.client.GetByID(c.Request.Context(), productID)
	if err != nil {
		if errors.Is(err, collection.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Success: false,
				Error: models.Error{
					Code:    "NOT_FOUND",
					Message: "Product not found",
					Details: &models.JSON{"redirectTo": "/"},
				},
			})
			return
		}
		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "FETCH_FAILED",
				Message: "Failed to retrieve product, please retry",
				Details: &models.JSON{"error": err.Error()},
			},
		})
		return
	}

	// The consumer may have navigated away while the fetch was in flight;
	// a cancelled request must not be acted upon.
	if c.Request.Context().Err() != nil {
		return
	}

	view := models.NewProductView(*product)
	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Data: gin.H{
			"product": view,
			"gallery": product.GalleryImages(),
		},
	})
}

// GetCategories returns the distinct categories present in the catalog
// @Summary List categories
// @Description Returns the distinct category labels in the catalog, first-seen order
// @Tags Storefront
// @Produce json
// @Success 200 {object} models.SuccessResponse
// @Router /storefront/categories [get]
func (h *StorefrontHandler) GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Data:    catalog.Categories(h.sync.Snapshot()),
	})
}

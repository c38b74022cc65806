package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"storefront-service/internal/catalog"
	"storefront-service/internal/collection"
	"storefront-service/internal/gateway"
	"storefront-service/internal/models"
)

// AdminHandler exposes the catalog CRUD surface. All writes go through the
// mutation gateway; the admin listing is served from its own (unordered) sync
// store, so a just-written product may lag until the next snapshot arrives.
type AdminHandler struct {
	gw     *gateway.Gateway
	sync   *catalog.SyncStore
	client collection.Client
}

func NewAdminHandler(gw *gateway.Gateway, sync *catalog.SyncStore, client collection.Client) *AdminHandler {
	return &AdminHandler{gw: gw, sync: sync, client: client}
}

// ListProducts returns the admin catalog listing
// @Summary List products (admin)
// @Description Returns the current catalog snapshot for the admin table
// @Tags Admin
// @Produce json
// @Success 200 {object} models.CatalogResponse
// @Security BearerAuth
// @Router /admin/products [get]
func (h *AdminHandler) ListProducts(c *gin.Context) {
	snapshot := h.sync.Snapshot()
	c.JSON(http.StatusOK, models.CatalogResponse{
		Success:    true,
		Products:   models.NewProductViews(snapshot),
		Categories: catalog.Categories(snapshot),
		Total:      len(snapshot),
		Loading:    !h.sync.Loaded(),
		Stale:      !h.sync.Healthy(),
	})
}

// GetProductForm returns an edit form template
// @Summary Get edit form
// @Description Returns a populated edit form for a product, or the blank add-new template
// @Tags Admin
// @Produce json
// @Param id path string true "Product ID, or 'new' for the blank template"
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/products/{id}/form [get]
func (h *AdminHandler) GetProductForm(c *gin.Context) {
	idParam := c.Param("id")
	if idParam == "new" {
		c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: gateway.EmptyForm()})
		return
	}

	productID, err := uuid.Parse(idParam)
	if err != nil {
		h.invalidID(c)
		return
	}

	product, err := h.client.GetByID(c.Request.Context(), productID)
	if err != nil {
		if errors.Is(err, collection.ErrNotFound) {
			h.notFound(c)
			return
		}
		h.transportFailure(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Data:    gateway.FormFromProduct(product),
	})
}

// CreateProduct creates a new product
// @Summary Create product
// @Description Validates the form and creates a product; it appears in listings via the live subscription
// @Tags Admin
// @Accept json
// @Produce json
// @Param product body gateway.ProductForm true "Product form"
// @Success 201 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/products [post]
func (h *AdminHandler) CreateProduct(c *gin.Context) {
	var form gateway.ProductForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: err.Error(),
			},
		})
		return
	}

	product, err := h.gw.Create(c.Request.Context(), &form)
	if err != nil {
		h.writeError(c, err, &form)
		return
	}

	c.JSON(http.StatusCreated, models.SuccessResponse{Success: true, Data: product})
}

// UpdateProduct updates an existing product
// @Summary Update product
// @Description Validates the form and merges it into the product, preserving id and createdAt
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param product body gateway.ProductForm true "Product form"
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/products/{id} [put]
func (h *AdminHandler) UpdateProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.invalidID(c)
		return
	}

	var form gateway.ProductForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: err.Error(),
			},
		})
		return
	}

	product, err := h.gw.Update(c.Request.Context(), productID, &form)
	if err != nil {
		if errors.Is(err, collection.ErrNotFound) {
			h.notFound(c)
			return
		}
		h.writeError(c, err, &form)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: product})
}

// DeleteProduct deletes a product
// @Summary Delete product
// @Description Deletes a product after explicit confirmation; an already-deleted target is a handled no-op
// @Tags Admin
// @Produce json
// @Param id path string true "Product ID"
// @Param confirm query bool true "Explicit confirmation"
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/products/{id} [delete]
func (h *AdminHandler) DeleteProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.invalidID(c)
		return
	}

	outcome, err := h.gw.Delete(c.Request.Context(), gateway.DeleteRequest{
		ID:        productID,
		Confirmed: c.Query("confirm") == "true",
	})
	if err != nil {
		if errors.Is(err, gateway.ErrDeleteNotConfirmed) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Success: false,
				Error: models.Error{
					Code:    "CONFIRMATION_REQUIRED",
					Message: "Deleting a product requires confirm=true",
				},
			})
			return
		}
		h.writeError(c, err, nil)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: outcome})
}

func (h *AdminHandler) invalidID(c *gin.Context) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Success: false,
		Error: models.Error{
			Code:    "INVALID_ID",
			Message: "Invalid product ID format",
		},
	})
}

func (h *AdminHandler) notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, models.ErrorResponse{
		Success: false,
		Error: models.Error{
			Code:    "NOT_FOUND",
			Message: "Product not found",
		},
	})
}

func (h *AdminHandler) transportFailure(c *gin.Context, err error) {
	c.JSON(http.StatusBadGateway, models.ErrorResponse{
		Success: false,
		Error: models.Error{
			Code:    "FETCH_FAILED",
			Message: "Failed to reach the product store, please retry",
			Details: &models.JSON{"error": err.Error()},
		},
	})
}

// writeError maps gateway failures onto the response envelope. Validation
// failures echo the offending field; transport failures echo the submitted
// form so nothing the admin typed is lost.
func (h *AdminHandler) writeError(c *gin.Context, err error, form *gateway.ProductForm) {
	var validationErr *gateway.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: validationErr.Message,
				Field:   validationErr.Field,
			},
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	details := models.JSON{"error": err.Error(), "retryable": true}
	if form != nil {
		details["form"] = form
	}
	c.JSON(http.StatusBadGateway, models.ErrorResponse{
		Success: false,
		Error: models.Error{
			Code:    "SAVE_FAILED",
			Message: fmt.Sprintf("The product store rejected the operation: %v", err),
			Details: &details,
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

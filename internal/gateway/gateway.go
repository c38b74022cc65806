// Package gateway implements the admin mutation path: form validation in
// front of the remote collection's create/update/delete operations. The
// gateway never touches the local catalog snapshot; the live subscription is
// the only way its writes become visible.
package gateway

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"storefront-service/internal/collection"
	"storefront-service/internal/models"
)

// ProductForm carries an admin edit form's field set, as submitted. Price
// travels as text and is parsed during validation.
type ProductForm struct {
	Name             string               `json:"name"`
	Description      string               `json:"description"`
	Price            string               `json:"price"`
	ImageURL         string               `json:"imageUrl"`
	AffiliateLink    string               `json:"affiliateLink"`
	Category         string               `json:"category"`
	Discount         *int                 `json:"discount,omitempty"`
	AdditionalImages []string             `json:"additionalImages,omitempty"`
	ComparisonData   models.ComparisonMap `json:"comparisonData,omitempty"`
}

// DeleteRequest asks for a product's removal. Confirmed reflects the
// out-of-band human confirmation step; unconfirmed requests are rejected
// before any remote call.
type DeleteRequest struct {
	ID        uuid.UUID
	Confirmed bool
}

// DeleteOutcome distinguishes an actual removal from the handled
// already-absent case. Both leave the collection in the desired end state.
type DeleteOutcome struct {
	Deleted       bool `json:"deleted"`
	AlreadyAbsent bool `json:"alreadyAbsent"`
}

// Gateway validates and submits catalog mutations.
type Gateway struct {
	client collection.Client
	logger *logrus.Entry
}

// New builds a gateway over the given collection client.
func New(client collection.Client, logger *logrus.Logger) *Gateway {
	return &Gateway{
		client: client,
		logger: logger.WithField("component", "admin-gateway"),
	}
}

// Validate checks required-field completeness and field ranges. It returns a
// *ValidationError describing the first offending field, along with the
// parsed product when the form is well-formed.
func (g *Gateway) Validate(form *ProductForm) (*models.Product, error) {
	required := []struct {
		field, value string
	}{
		{"name", form.Name},
		{"description", form.Description},
		{"price", form.Price},
		{"imageUrl", form.ImageURL},
		{"affiliateLink", form.AffiliateLink},
		{"category", form.Category},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return nil, &ValidationError{Field: f.field, Message: "required field is missing"}
		}
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(form.Price), 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
		return nil, &ValidationError{Field: "price", Message: "must be a finite number"}
	}
	if price < 0 {
		return nil, &ValidationError{Field: "price", Message: "must not be negative"}
	}

	if form.Discount != nil && (*form.Discount < 0 || *form.Discount > 100) {
		return nil, &ValidationError{Field: "discount", Message: "must be between 0 and 100"}
	}

	if len(form.AdditionalImages) > models.MaxAdditionalImages {
		return nil, &ValidationError{
			Field:   "additionalImages",
			Message: "at most " + strconv.Itoa(models.MaxAdditionalImages) + " additional images allowed",
		}
	}

	return &models.Product{
		Name:             form.Name,
		Description:      form.Description,
		Price:            price,
		ImageURL:         form.ImageURL,
		AffiliateLink:    form.AffiliateLink,
		Category:         form.Category,
		Discount:         form.Discount,
		AdditionalImages: models.StringArray(form.AdditionalImages),
		ComparisonData:   form.ComparisonData,
	}, nil
}

// Create validates the form and submits a new product. Timestamps and the id
// are assigned by the store. No local state is mutated: the new product
// becomes visible only through the catalog subscription.
func (g *Gateway) Create(ctx context.Context, form *ProductForm) (*models.Product, error) {
	product, err := g.Validate(form)
	if err != nil {
		return nil, err
	}

	id, err := g.client.Create(ctx, product)
	if err != nil {
		return nil, &SaveError{Op: "create", Err: err}
	}
	product.ID = id

	g.logger.WithFields(logrus.Fields{
		"productID": id.String(),
		"name":      product.Name,
	}).Info("Product created")
	return product, nil
}

// Update validates the form and merges it into an existing product. The
// original id and createdAt are preserved; updatedAt is refreshed by the
// store.
func (g *Gateway) Update(ctx context.Context, id uuid.UUID, form *ProductForm) (*models.Product, error) {
	product, err := g.Validate(form)
	if err != nil {
		return nil, err
	}

	if err := g.client.Update(ctx, id, product); err != nil {
		if errors.Is(err, collection.ErrNotFound) {
			return nil, err
		}
		return nil, &SaveError{Op: "update", Err: err}
	}
	product.ID = id

	g.logger.WithField("productID", id.String()).Info("Product updated")
	return product, nil
}

// Delete removes a product after explicit confirmation. Deleting an id that
// is already gone is a handled outcome, not a failure: the desired end state
// holds either way.
func (g *Gateway) Delete(ctx context.Context, req DeleteRequest) (*DeleteOutcome, error) {
	if !req.Confirmed {
		return nil, ErrDeleteNotConfirmed
	}

	if err := g.client.Delete(ctx, req.ID); err != nil {
		if errors.Is(err, collection.ErrNotFound) {
			g.logger.WithField("productID", req.ID.String()).Debug("Delete target already absent")
			return &DeleteOutcome{AlreadyAbsent: true}, nil
		}
		return nil, &DeleteError{Err: err}
	}

	g.logger.WithField("productID", req.ID.String()).Info("Product deleted")
	return &DeleteOutcome{Deleted: true}, nil
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"storefront-service/internal/gateway"
	"storefront-service/internal/models"
)

// SeedHandler loads a starter catalog through the admin gateway. Intended for
// fresh environments; every row passes the same validation as a manual create.
type SeedHandler struct {
	gw     *gateway.Gateway
	logger *logrus.Entry
}

func NewSeedHandler(gw *gateway.Gateway, logger *logrus.Logger) *SeedHandler {
	return &SeedHandler{gw: gw, logger: logger.WithField("component", "seed-handler")}
}

func intPtr(v int) *int { return &v }

var sampleProducts = []gateway.ProductForm{
	{
		Name:          "iPhone 14 Pro Max Protective Case",
		Description:   "Premium protective case with military-grade drop protection. Crystal clear design shows off your phone's beauty while keeping it safe.",
		Price:         "39.99",
		ImageURL:      "https://images.unsplash.com/photo-1601593346740-925612772716?w=500",
		AffiliateLink: "https://amazon.com/dp/example1",
		Category:      "iPhone",
		Discount:      intPtr(20),
	},
	{
		Name:          "Samsung Galaxy S23 Ultra Rugged Case",
		Description:   "Heavy-duty rugged case with built-in kickstand and screen protector. Perfect for outdoor adventures.",
		Price:         "49.99",
		ImageURL:      "https://images.unsplash.com/photo-1610792516307-ea5acd9c3b00?w=500",
		AffiliateLink: "https://amazon.com/dp/example2",
		Category:      "Samsung",
	},
	{
		Name:          "OnePlus 11 Clear Case",
		Description:   "Ultra-thin transparent case that maintains the original look of your OnePlus device with added grip.",
		Price:         "29.99",
		ImageURL:      "https://images.unsplash.com/photo-1592750475338-74b7b21085ab?w=500",
		AffiliateLink: "https://amazon.com/dp/example3",
		Category:      "OnePlus",
	},
	{
		Name:          "Google Pixel 7 Pro Minimalist Case",
		Description:   "Sleek minimalist case with precise cutouts and wireless charging compatibility. Available in multiple colors.",
		Price:         "24.99",
		ImageURL:      "https://images.unsplash.com/photo-1598300042247-d088f8ab3a91?w=500",
		AffiliateLink: "https://amazon.com/dp/example4",
		Category:      "Google Pixel",
		Discount:      intPtr(10),
	},
	{
		Name:          "iPhone 13 Waterproof Case",
		Description:   "Fully waterproof case rated IP68. Take stunning underwater photos without worrying about damage.",
		Price:         "34.99",
		ImageURL:      "https://images.unsplash.com/photo-1585060544812-6b45742d762f?w=500",
		AffiliateLink: "https://amazon.com/dp/example5",
		Category:      "iPhone",
	},
	{
		Name:          "Samsung Galaxy A54 Wallet Case",
		Description:   "Leather wallet case with card slots and magnetic closure. Combines protection with everyday convenience.",
		Price:         "27.99",
		ImageURL:      "https://images.unsplash.com/photo-1556656793-08538906a9f8?w=500",
		AffiliateLink: "https://amazon.com/dp/example6",
		Category:      "Samsung",
		Discount:      intPtr(15),
	},
}

// SeedProducts inserts the sample catalog
// @Summary Seed sample products
// @Description Inserts a starter set of products; requires confirm=true
// @Tags Admin
// @Produce json
// @Param confirm query bool true "Must be true to proceed"
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/seed [post]
func (h *SeedHandler) SeedProducts(c *gin.Context) {
	if c.Query("confirm") != "true" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "CONFIRMATION_REQUIRED",
				Message: "Seeding inserts sample products. Pass confirm=true to proceed.",
			},
		})
		return
	}

	created := make([]models.ProductView, 0, len(sampleProducts))
	for i := range sampleProducts {
		form := sampleProducts[i]
		product, err := h.gw.Create(c.Request.Context(), &form)
		if err != nil {
			h.logger.WithError(err).WithField("name", form.Name).Error("Seed insert failed")
			c.JSON(http.StatusBadGateway, models.ErrorResponse{
				Success: false,
				Error: models.Error{
					Code:    "SEED_FAILED",
					Message: "Failed to insert sample products",
					Details: &models.JSON{
						"inserted":  len(created),
						"failedAt":  form.Name,
						"retryable": true,
					},
				},
			})
			return
		}
		created = append(created, models.NewProductView(*product))
	}

	h.logger.WithField("count", len(created)).Info("Sample catalog seeded")
	msg := "Sample products inserted"
	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: &msg,
		Data:    created,
	})
}

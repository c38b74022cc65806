package gateway

import (
	"strconv"

	"storefront-service/internal/models"
)

// Default comparison rows seeded into the edit form when the source record
// has none. Ordinary default content, editable like any other field.
var defaultComparisonData = models.ComparisonMap{
	"Drop Protection":   {OurCase: "15 ft", Competitor1: "6 ft", Competitor2: "8 ft", Competitor3: "4 ft"},
	"Wireless Charging": {OurCase: "Yes", Competitor1: "Yes", Competitor2: "No", Competitor3: "Yes"},
	"Warranty":          {OurCase: "Lifetime", Competitor1: "1 year", Competitor2: "6 months", Competitor3: "90 days"},
}

// EmptyForm returns the blank template the "add new" flow starts from.
func EmptyForm() *ProductForm {
	return &ProductForm{
		AdditionalImages: make([]string, models.MaxAdditionalImages),
		ComparisonData:   cloneComparison(defaultComparisonData),
	}
}

// FormFromProduct populates an edit form from an existing product, filling in
// defaults for comparison data and image slots absent on the source record.
func FormFromProduct(p *models.Product) *ProductForm {
	form := &ProductForm{
		Name:          p.Name,
		Description:   p.Description,
		Price:         strconv.FormatFloat(p.Price, 'f', -1, 64),
		ImageURL:      p.ImageURL,
		AffiliateLink: p.AffiliateLink,
		Category:      p.Category,
		Discount:      p.Discount,
	}

	form.AdditionalImages = make([]string, models.MaxAdditionalImages)
	copy(form.AdditionalImages, p.AdditionalImages)

	if len(p.ComparisonData) > 0 {
		form.ComparisonData = cloneComparison(p.ComparisonData)
	} else {
		form.ComparisonData = cloneComparison(defaultComparisonData)
	}

	return form
}

func cloneComparison(src models.ComparisonMap) models.ComparisonMap {
	out := make(models.ComparisonMap, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

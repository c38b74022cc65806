package catalog

import (
	"strings"

	"storefront-service/internal/models"
)

// Filter derives the displayed product list from the full catalog, a
// free-text search term and a selected category. Pure and deterministic: the
// output preserves the catalog's relative order.
//
// A product matches when the search term is empty or a case-insensitive
// substring of its name or description, and the category is the "all"
// sentinel or equal (case-sensitive) to the product's category. The term is
// matched verbatim: whitespace typed into the search box is part of it.
func Filter(products []models.Product, searchTerm, category string) []models.Product {
	term := strings.ToLower(searchTerm)
	filterCategory := category != "" && category != models.CategoryAll

	filtered := make([]models.Product, 0, len(products))
	for _, p := range products {
		if term != "" &&
			!strings.Contains(strings.ToLower(p.Name), term) &&
			!strings.Contains(strings.ToLower(p.Description), term) {
			continue
		}
		if filterCategory && p.Category != category {
			continue
		}
		filtered = append(filtered, p)
	}
	return filtered
}

// Categories returns the distinct category values present in the catalog, in
// first-seen order, never including the "all" sentinel.
func Categories(products []models.Product) []string {
	seen := make(map[string]struct{}, len(products))
	categories := make([]string, 0, len(products))
	for _, p := range products {
		if p.Category == models.CategoryAll {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		categories = append(categories, p.Category)
	}
	return categories
}

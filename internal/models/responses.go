package models

// JSON is a loose object used for error details.
type JSON map[string]interface{}

type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     Error  `json:"error"`
	Timestamp string `json:"timestamp,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Details *JSON  `json:"details,omitempty"`
}

type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message *string     `json:"message,omitempty"`
}

// ProductView is a Product decorated with its display price for API responses.
type ProductView struct {
	Product
	EffectivePrice float64 `json:"effectivePrice"`
}

// NewProductView wraps a product with its computed effective price.
func NewProductView(p Product) ProductView {
	return ProductView{Product: p, EffectivePrice: p.EffectivePrice()}
}

// NewProductViews maps a snapshot into response views, preserving order.
func NewProductViews(products []Product) []ProductView {
	views := make([]ProductView, len(products))
	for i, p := range products {
		views[i] = NewProductView(p)
	}
	return views
}

// CatalogResponse is the storefront listing payload: the filtered view plus
// the distinct categories present in the full catalog and sync state flags.
type CatalogResponse struct {
	Success    bool          `json:"success"`
	Products   []ProductView `json:"products"`
	Categories []string      `json:"categories"`
	Total      int           `json:"total"`
	Loading    bool          `json:"loading"`
	Stale      bool          `json:"stale"`
}

package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category labels offered by the admin form. The column itself is free-form
// text so legacy values already present in the collection keep round-tripping.
const (
	CategoryIPhone  = "iPhone"
	CategorySamsung = "Samsung"
	CategoryOnePlus = "OnePlus"
	CategoryGoogle  = "Google"
	CategoryOther   = "Other"
)

// CategoryAll is the selector sentinel meaning "no category restriction".
const CategoryAll = "all"

// KnownCategories lists the labels the admin form enumerates.
var KnownCategories = []string{
	CategoryIPhone,
	CategorySamsung,
	CategoryOnePlus,
	CategoryGoogle,
	CategoryOther,
}

// MaxAdditionalImages caps the gallery slots next to the main image.
const MaxAdditionalImages = 4

// StringArray is a JSONB-backed ordered list of URL strings. Empty entries are
// kept as placeholders so gallery positions stay stable.
type StringArray []string

func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		a = StringArray{}
	}
	return json.Marshal(a)
}

func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = StringArray{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, a)
}

// ComparisonRow holds the four free-text cells of one comparison-table row.
type ComparisonRow struct {
	OurCase     string `json:"ourCase"`
	Competitor1 string `json:"competitor1"`
	Competitor2 string `json:"competitor2"`
	Competitor3 string `json:"competitor3"`
}

// ComparisonMap maps a feature name to its comparison row (JSONB).
type ComparisonMap map[string]ComparisonRow

func (m ComparisonMap) Value() (driver.Value, error) {
	if m == nil {
		m = ComparisonMap{}
	}
	return json.Marshal(m)
}

func (m *ComparisonMap) Scan(value interface{}) error {
	if value == nil {
		*m = make(ComparisonMap)
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, m)
}

// Product represents one phone-case listing in the catalog collection.
type Product struct {
	ID               uuid.UUID     `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name             string        `json:"name" gorm:"not null;index"`
	Description      string        `json:"description" gorm:"not null;default:''"`
	Price            float64       `json:"price" gorm:"not null"`
	ImageURL         string        `json:"imageUrl" gorm:"column:image_url;not null"`
	AffiliateLink    string        `json:"affiliateLink" gorm:"column:affiliate_link;not null"`
	Category         string        `json:"category" gorm:"not null;index"`
	Discount         *int          `json:"discount,omitempty"`
	AdditionalImages StringArray   `json:"additionalImages,omitempty" gorm:"type:jsonb"`
	ComparisonData   ComparisonMap `json:"comparisonData,omitempty" gorm:"type:jsonb"`
	CreatedAt        time.Time     `json:"createdAt" gorm:"index"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// EffectivePrice returns the display price after the optional discount,
// rounded to cents. Absent or zero discount leaves the price unchanged.
func (p *Product) EffectivePrice() float64 {
	return EffectivePrice(p.Price, p.Discount)
}

// EffectivePrice computes price × (1 − discount/100) rounded to 2 decimals.
func EffectivePrice(price float64, discount *int) float64 {
	if discount == nil || *discount == 0 {
		return price
	}
	d := decimal.NewFromFloat(price).
		Mul(decimal.NewFromInt(100 - int64(*discount))).
		Div(decimal.NewFromInt(100)).
		Round(2)
	f, _ := d.Float64()
	return f
}

// GalleryImages returns the main image followed by the non-empty additional
// images, in stored order.
func (p *Product) GalleryImages() []string {
	images := []string{p.ImageURL}
	for _, img := range p.AdditionalImages {
		if img != "" {
			images = append(images, img)
		}
	}
	return images
}

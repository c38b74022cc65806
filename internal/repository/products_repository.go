package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"storefront-service/internal/models"
	"gorm.io/gorm"
)

// Cache TTL constants
const (
	ProductCacheTTL     = 5 * time.Minute // Single product cache
	ProductListCacheTTL = 2 * time.Minute // Full catalog cache (invalidated on every write)
)

const catalogCacheKey = "storefront:products:catalog"

type ProductsRepository struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewProductsRepository(db *gorm.DB, redisClient *redis.Client) *ProductsRepository {
	return &ProductsRepository{
		db:    db,
		redis: redisClient,
	}
}

func productCacheKey(productID uuid.UUID) string {
	return fmt.Sprintf("storefront:products:%s", productID.String())
}

// invalidateProductCaches drops the single-product key and the catalog key.
func (r *ProductsRepository) invalidateProductCaches(ctx context.Context, productID uuid.UUID) {
	if r.redis == nil {
		return
	}
	_ = r.redis.Del(ctx, productCacheKey(productID), listCacheKey(true), listCacheKey(false)).Err()
}

// CreateProduct inserts a new product, assigning its ID and timestamps.
func (r *ProductsRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now

	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}

	err := r.db.WithContext(ctx).Create(product).Error
	if err == nil {
		r.invalidateProductCaches(ctx, product.ID)
	}
	return err
}

// GetProductByID retrieves a product by ID with caching.
func (r *ProductsRepository) GetProductByID(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	cacheKey := productCacheKey(productID)

	if r.redis != nil {
		val, err := r.redis.Get(ctx, cacheKey).Result()
		if err == nil {
			var product models.Product
			if err := json.Unmarshal([]byte(val), &product); err == nil {
				return &product, nil
			}
		}
	}

	var product models.Product
	if err := r.db.WithContext(ctx).Where("id = ?", productID).First(&product).Error; err != nil {
		return nil, err
	}

	if r.redis != nil {
		if data, err := json.Marshal(product); err == nil {
			r.redis.Set(ctx, cacheKey, data, ProductCacheTTL)
		}
	}

	return &product, nil
}

// UpdateProduct writes the full submitted field set to an existing product.
// ID and CreatedAt are never overwritten; UpdatedAt is refreshed.
func (r *ProductsRepository) UpdateProduct(ctx context.Context, productID uuid.UUID, updates *models.Product) error {
	result := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", productID).
		Updates(updateColumns(updates))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	r.invalidateProductCaches(ctx, productID)
	return nil
}

// updateColumns maps every submitted field to its column explicitly. A
// struct-based Updates would skip zero values, silently dropping a price set
// to 0 or a cleared discount; the caller always submits the full validated
// field set, so every column here is intentional. Identity columns (id,
// created_at) are excluded.
func updateColumns(p *models.Product) map[string]interface{} {
	return map[string]interface{}{
		"name":              p.Name,
		"description":       p.Description,
		"price":             p.Price,
		"image_url":         p.ImageURL,
		"affiliate_link":    p.AffiliateLink,
		"category":          p.Category,
		"discount":          p.Discount,
		"additional_images": p.AdditionalImages,
		"comparison_data":   p.ComparisonData,
		"updated_at":        time.Now().UTC(),
	}
}

// DeleteProduct removes a product. Returns gorm.ErrRecordNotFound when the
// target row is already gone.
func (r *ProductsRepository) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", productID).Delete(&models.Product{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	r.invalidateProductCaches(ctx, productID)
	return nil
}

// ListProducts returns the full catalog. When orderByCreatedDesc is set the
// rows come back newest first; otherwise the database order is left as is.
func (r *ProductsRepository) ListProducts(ctx context.Context, orderByCreatedDesc bool) ([]models.Product, error) {
	if cached, ok := r.cachedCatalog(ctx, orderByCreatedDesc); ok {
		return cached, nil
	}

	var products []models.Product
	query := r.db.WithContext(ctx).Model(&models.Product{})
	if orderByCreatedDesc {
		query = query.Order("created_at DESC")
	}
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}

	r.cacheCatalog(ctx, orderByCreatedDesc, products)
	return products, nil
}

func listCacheKey(orderByCreatedDesc bool) string {
	return fmt.Sprintf("%s:%v", catalogCacheKey, orderByCreatedDesc)
}

func (r *ProductsRepository) cachedCatalog(ctx context.Context, orderByCreatedDesc bool) ([]models.Product, bool) {
	if r.redis == nil {
		return nil, false
	}
	val, err := r.redis.Get(ctx, listCacheKey(orderByCreatedDesc)).Result()
	if err != nil {
		return nil, false
	}
	var products []models.Product
	if err := json.Unmarshal([]byte(val), &products); err != nil {
		return nil, false
	}
	return products, true
}

func (r *ProductsRepository) cacheCatalog(ctx context.Context, orderByCreatedDesc bool, products []models.Product) {
	if r.redis == nil {
		return
	}
	if data, err := json.Marshal(products); err == nil {
		r.redis.Set(ctx, listCacheKey(orderByCreatedDesc), data, ProductListCacheTTL)
	}
}

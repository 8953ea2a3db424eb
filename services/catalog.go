package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rajagopika181204/website-backend/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const availableProductsKey = "catalog:available"

// ListingCache stores serialised catalog listings for display. It is never
// consulted when stock is reserved.
type ListingCache interface {
	Get(ctx context.Context, key string, dest any) bool
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

type NewProduct struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity" binding:"gte=0"`
	Image       string          `json:"image"`
	Specs       datatypes.JSON  `json:"specs"`
}

// Catalog is the read side of products plus the few admin writes the store
// needs. Stock is never changed here except through Restock.
type Catalog struct {
	db       *gorm.DB
	cache    ListingCache
	cacheTTL time.Duration
	log      *zap.Logger
}

// NewCatalog returns a catalog reader. cache may be nil.
func NewCatalog(db *gorm.DB, cache ListingCache, cacheTTL time.Duration, log *zap.Logger) *Catalog {
	return &Catalog{db: db, cache: cache, cacheTTL: cacheTTL, log: log}
}

// ListAvailable returns products with quantity > 0.
func (c *Catalog) ListAvailable(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if c.cache != nil && c.cache.Get(ctx, availableProductsKey, &products) {
		return products, nil
	}

	if err := c.db.WithContext(ctx).Where("quantity > ?", 0).Order("id").Find(&products).Error; err != nil {
		return nil, persistenceFailure("failed to fetch products", err)
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, availableProductsKey, products, c.cacheTTL); err != nil {
			c.log.Warn("Failed to cache product listing", zap.Error(err))
		}
	}
	return products, nil
}

// Get returns one product by id.
func (c *Catalog) Get(ctx context.Context, id uint) (models.Product, error) {
	var product models.Product
	err := c.db.WithContext(ctx).Where("id = ?", id).Take(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Product{}, productNotFound(id)
	}
	if err != nil {
		return models.Product{}, persistenceFailure("failed to fetch product", err)
	}
	return product, nil
}

// Create adds a product to the catalog.
func (c *Catalog) Create(ctx context.Context, in NewProduct) (models.Product, error) {
	if strings.TrimSpace(in.Name) == "" {
		return models.Product{}, validationError("name is required")
	}
	if in.Price.IsNegative() {
		return models.Product{}, validationError("price must not be negative")
	}
	if in.Quantity < 0 {
		return models.Product{}, validationError("quantity must not be negative")
	}

	product := models.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Quantity:    in.Quantity,
		Image:       in.Image,
		Specs:       in.Specs,
	}
	if err := c.db.WithContext(ctx).Create(&product).Error; err != nil {
		return models.Product{}, persistenceFailure("failed to create product", err)
	}
	c.Invalidate(ctx)
	return product, nil
}

// UpdatePrice changes the live price. Orders already placed keep their
// recorded price.
func (c *Catalog) UpdatePrice(ctx context.Context, id uint, price decimal.Decimal) (models.Product, error) {
	if price.IsNegative() {
		return models.Product{}, validationError("price must not be negative")
	}
	result := c.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Update("price", price)
	if result.Error != nil {
		return models.Product{}, persistenceFailure("failed to update price", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.Product{}, productNotFound(id)
	}
	c.Invalidate(ctx)
	return c.Get(ctx, id)
}

// Restock adds units to a product's stock.
func (c *Catalog) Restock(ctx context.Context, id uint, units int) (models.Product, error) {
	if units <= 0 {
		return models.Product{}, validationError("units must be positive")
	}
	result := c.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", units))
	if result.Error != nil {
		return models.Product{}, persistenceFailure("failed to restock product", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.Product{}, productNotFound(id)
	}
	c.Invalidate(ctx)
	return c.Get(ctx, id)
}

// SetImage records the stored image name of a product.
func (c *Catalog) SetImage(ctx context.Context, id uint, image string) error {
	result := c.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Update("image", image)
	if result.Error != nil {
		return persistenceFailure("failed to update product image", result.Error)
	}
	if result.RowsAffected == 0 {
		return productNotFound(id)
	}
	c.Invalidate(ctx)
	return nil
}

// Invalidate drops the cached listing.
func (c *Catalog) Invalidate(ctx context.Context) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Del(ctx, availableProductsKey); err != nil {
		c.log.Warn("Failed to invalidate product listing", zap.Error(err))
	}
}

// DeductStock takes units out of stock through the ledger, outside any
// checkout.
func (c *Catalog) DeductStock(ctx context.Context, ledger *InventoryLedger, id uint, units int) (Reservation, error) {
	reservation, err := ledger.Deduct(ctx, c.db, id, units)
	if err != nil {
		return Reservation{}, err
	}
	c.Invalidate(ctx)
	return reservation, nil
}

package services

import (
	"context"

	"github.com/rajagopika181204/website-backend/models"
	"gorm.io/gorm"
)

type SavedCartLine struct {
	ProductID uint `json:"productId" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,gt=0"`
}

// CartStore keeps one saved cart per user. Saving replaces the whole cart.
type CartStore struct {
	db *gorm.DB
}

func NewCartStore(db *gorm.DB) *CartStore {
	return &CartStore{db: db}
}

func (s *CartStore) Save(ctx context.Context, userID uint, lines []SavedCartLine) ([]models.CartItem, error) {
	for i, line := range lines {
		if line.ProductID == 0 || line.Quantity <= 0 {
			return nil, validationError("cart line %d needs a product id and a positive quantity", i+1)
		}
	}

	items := make([]models.CartItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, models.CartItem{UserID: userID, ProductID: line.ProductID, Quantity: line.Quantity})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		return nil, persistenceFailure("failed to save cart", err)
	}
	return items, nil
}

func (s *CartStore) Get(ctx context.Context, userID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&items).Error; err != nil {
		return nil, persistenceFailure("failed to fetch cart", err)
	}
	return items, nil
}

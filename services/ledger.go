package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rajagopika181204/website-backend/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Reservation describes stock taken from one product inside a transaction.
type Reservation struct {
	ProductID uint
	Name      string
	Quantity  int
	Remaining int
}

// InventoryLedger owns Product.Quantity. It never commits: every call runs on
// the transaction handed in by the caller.
type InventoryLedger struct {
	log *zap.Logger
}

func NewInventoryLedger(log *zap.Logger) *InventoryLedger {
	return &InventoryLedger{log: log}
}

// Reserve locks the product row (SELECT ... FOR UPDATE) and decrements its
// quantity by qty. Nothing is written when the product is missing or short.
func (l *InventoryLedger) Reserve(ctx context.Context, tx *gorm.DB, productID uint, qty int) (Reservation, error) {
	if qty <= 0 {
		return Reservation{}, validationError("quantity for product %d must be positive", productID)
	}

	var product models.Product
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "name", "quantity").
		Where("id = ?", productID).
		Take(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Reservation{}, productNotFound(productID)
	}
	if err != nil {
		return Reservation{}, persistenceFailure("failed to lock product", fmt.Errorf("lock product %d: %w", productID, err))
	}

	if product.Quantity < qty {
		l.log.Debug("Reservation rejected",
			zap.Uint("product_id", productID),
			zap.Int("available", product.Quantity),
			zap.Int("requested", qty))
		return Reservation{}, insufficientStock(productID, product.Name, product.Quantity, qty)
	}

	// The quantity guard keeps the decrement safe on drivers that ignore
	// row locks.
	result := tx.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND quantity >= ?", productID, qty).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", qty))
	if result.Error != nil {
		return Reservation{}, persistenceFailure("failed to update stock", fmt.Errorf("decrement product %d: %w", productID, result.Error))
	}
	if result.RowsAffected == 0 {
		return Reservation{}, insufficientStock(productID, product.Name, product.Quantity, qty)
	}

	return Reservation{
		ProductID: productID,
		Name:      product.Name,
		Quantity:  qty,
		Remaining: product.Quantity - qty,
	}, nil
}

// Available returns the current stock of a product without locking it.
func (l *InventoryLedger) Available(ctx context.Context, db *gorm.DB, productID uint) (int, error) {
	var product models.Product
	err := db.WithContext(ctx).Select("id", "quantity").Where("id = ?", productID).Take(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, productNotFound(productID)
	}
	if err != nil {
		return 0, persistenceFailure("failed to read stock", err)
	}
	return product.Quantity, nil
}

// Deduct reserves qty of a product in a transaction of its own. It serves
// stock adjustments made outside a checkout.
func (l *InventoryLedger) Deduct(ctx context.Context, db *gorm.DB, productID uint, qty int) (Reservation, error) {
	var reservation Reservation
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		reservation, err = l.Reserve(ctx, tx, productID, qty)
		return err
	})
	if err != nil {
		var svcErr *Error
		if errors.As(err, &svcErr) {
			return Reservation{}, svcErr
		}
		return Reservation{}, persistenceFailure("failed to commit stock update", err)
	}
	return reservation, nil
}

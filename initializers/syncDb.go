package initializers

import (
	"fmt"

	"github.com/rajagopika181204/website-backend/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SyncDatabase creates or updates the tables the store needs.
func SyncDatabase(db *gorm.DB, log *zap.Logger) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.UserAddress{},
		&models.CartItem{},
	)
	if err != nil {
		return fmt.Errorf("database: migrate: %w", err)
	}
	log.Info("Database synced successfully")
	return nil
}

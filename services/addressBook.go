package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rajagopika181204/website-backend/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Customer holds the contact fields copied onto an order and saved to the
// address book.
type Customer struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	Email   string `json:"email"`
	Pincode string `json:"pincode"`
	Phone   string `json:"phone"`
}

// Normalize trims surrounding whitespace and lower-cases the email.
func (c Customer) Normalize() Customer {
	return Customer{
		Name:    strings.TrimSpace(c.Name),
		Address: strings.TrimSpace(c.Address),
		City:    strings.TrimSpace(c.City),
		Email:   strings.ToLower(strings.TrimSpace(c.Email)),
		Pincode: strings.TrimSpace(c.Pincode),
		Phone:   strings.TrimSpace(c.Phone),
	}
}

type AddressBook struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewAddressBook(db *gorm.DB, log *zap.Logger) *AddressBook {
	return &AddressBook{db: db, log: log}
}

// Upsert overwrites every field of the address saved under email, inserting
// it when absent. Pass a transaction as tx to join it, or nil to use the
// book's own connection.
func (b *AddressBook) Upsert(ctx context.Context, tx *gorm.DB, email string, fields Customer) (models.UserAddress, error) {
	if tx == nil {
		tx = b.db
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return models.UserAddress{}, validationError("email is required")
	}
	fields = fields.Normalize()

	address := models.UserAddress{
		Email:   email,
		Name:    fields.Name,
		Address: fields.Address,
		City:    fields.City,
		Pincode: fields.Pincode,
		Phone:   fields.Phone,
	}
	err := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "address", "city", "pincode", "phone", "updated_at"}),
	}).Create(&address).Error
	if err != nil {
		return models.UserAddress{}, persistenceFailure("failed to save address", err)
	}

	var saved models.UserAddress
	if err := tx.WithContext(ctx).Where("email = ?", email).Order("id desc").Take(&saved).Error; err != nil {
		return models.UserAddress{}, persistenceFailure("failed to reload address", err)
	}
	return saved, nil
}

// GetLatest returns the most recently inserted address for email.
func (b *AddressBook) GetLatest(ctx context.Context, email string) (models.UserAddress, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var address models.UserAddress
	err := b.db.WithContext(ctx).Where("email = ?", email).Order("id desc").Take(&address).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.UserAddress{}, notFound("address")
	}
	if err != nil {
		return models.UserAddress{}, persistenceFailure("failed to fetch address", err)
	}
	return address, nil
}

// Delete removes a saved address by id.
func (b *AddressBook) Delete(ctx context.Context, id uint) error {
	result := b.db.WithContext(ctx).Delete(&models.UserAddress{}, id)
	if result.Error != nil {
		return persistenceFailure("failed to delete address", result.Error)
	}
	if result.RowsAffected == 0 {
		return notFound("address")
	}
	return nil
}

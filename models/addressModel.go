package models

import "time"

// UserAddress is the saved shipping address of a customer, keyed by email.
// Only the latest write is kept.
type UserAddress struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Email     string    `json:"email" gorm:"size:255;not null;uniqueIndex"`
	Name      string    `json:"name" gorm:"size:255"`
	Address   string    `json:"address" gorm:"size:512"`
	City      string    `json:"city" gorm:"size:128"`
	Pincode   string    `json:"pincode" gorm:"size:16"`
	Phone     string    `json:"phone" gorm:"size:32"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

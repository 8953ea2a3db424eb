package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCreditCard     PaymentMethod = "credit_card"
	PaymentUPI            PaymentMethod = "upi"
	PaymentRazorpay       PaymentMethod = "razorpay"
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
)

// Valid reports whether m is one of the accepted payment methods.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCreditCard, PaymentUPI, PaymentRazorpay, PaymentCashOnDelivery:
		return true
	}
	return false
}

// Order is written once by checkout and never updated. The customer contact
// fields are a copy taken at purchase time, not a reference to UserAddress.
type Order struct {
	ID             uint            `json:"id" gorm:"primaryKey"`
	Name           string          `json:"name" gorm:"size:255;not null"`
	Address        string          `json:"address" gorm:"size:512;not null"`
	City           string          `json:"city" gorm:"size:128;not null"`
	Pincode        string          `json:"pincode" gorm:"size:16;not null"`
	Phone          string          `json:"phone" gorm:"size:32;not null"`
	Email          string          `json:"email" gorm:"size:255;not null;index"`
	PaymentMethod  PaymentMethod   `json:"paymentMethod" gorm:"size:32;not null"`
	TotalAmount    decimal.Decimal `json:"totalAmount" gorm:"type:decimal(10,2);not null"`
	TransactionID  *string         `json:"transactionId" gorm:"size:64"`
	TrackingID     string          `json:"trackingId" gorm:"size:32;not null"`
	IdempotencyKey *string         `json:"-" gorm:"size:128;uniqueIndex"`
	CreatedAt      time.Time       `json:"createdAt"`
	Items          []OrderItem     `json:"items,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// OrderItem holds the price snapshot of one cart line.
type OrderItem struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	OrderID     uint            `json:"orderId" gorm:"not null;index"`
	ProductID   uint            `json:"productId" gorm:"not null;index"`
	ProductName string          `json:"productName" gorm:"size:255"`
	Quantity    int             `json:"quantity" gorm:"not null"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	TotalPrice  decimal.Decimal `json:"totalPrice" gorm:"type:decimal(10,2);not null"`
}

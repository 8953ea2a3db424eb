package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rajagopika181204/website-backend/models"
	"github.com/rajagopika181204/website-backend/utils"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderHeader is everything the recorder needs besides the lines.
type OrderHeader struct {
	Customer       Customer
	PaymentMethod  models.PaymentMethod
	Total          decimal.Decimal
	PaymentRef     string
	IdempotencyKey string
}

// OrderLine is one cart line with its price snapshot.
type OrderLine struct {
	ProductID   uint
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// LineTotal is Quantity × UnitPrice.
func (l OrderLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Receipt identifies an order that was written (not yet committed).
type Receipt struct {
	OrderID       uint
	TrackingID    string
	TransactionID *string
	CreatedAt     time.Time
	Items         []models.OrderItem
}

type OrderRecorder struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewOrderRecorder(db *gorm.DB, log *zap.Logger) *OrderRecorder {
	return &OrderRecorder{db: db, log: log}
}

// CreateOrder writes the order header and one item row per line on tx.
func (r *OrderRecorder) CreateOrder(ctx context.Context, tx *gorm.DB, header OrderHeader, lines []OrderLine) (Receipt, error) {
	trackingID, err := utils.GenerateTrackingID()
	if err != nil {
		return Receipt{}, persistenceFailure("failed to generate tracking id", err)
	}
	transactionID, err := transactionIDFor(header.PaymentMethod, header.PaymentRef)
	if err != nil {
		return Receipt{}, err
	}

	order := models.Order{
		Name:          header.Customer.Name,
		Address:       header.Customer.Address,
		City:          header.Customer.City,
		Pincode:       header.Customer.Pincode,
		Phone:         header.Customer.Phone,
		Email:         header.Customer.Email,
		PaymentMethod: header.PaymentMethod,
		TotalAmount:   header.Total,
		TransactionID: transactionID,
		TrackingID:    trackingID,
	}
	if key := strings.TrimSpace(header.IdempotencyKey); key != "" {
		order.IdempotencyKey = &key
	}

	if err := tx.WithContext(ctx).Omit(clause.Associations).Create(&order).Error; err != nil {
		if isDuplicateKey(err) && order.IdempotencyKey != nil {
			return Receipt{}, &Error{Kind: KindDuplicateRequest, Message: "order already placed for this idempotency key", Err: err}
		}
		return Receipt{}, persistenceFailure("failed to create order", err)
	}

	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, models.OrderItem{
			OrderID:     order.ID,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			Price:       line.UnitPrice,
			TotalPrice:  line.LineTotal(),
		})
	}
	if err := tx.WithContext(ctx).Create(&items).Error; err != nil {
		return Receipt{}, persistenceFailure("failed to create order items", err)
	}

	return Receipt{
		OrderID:       order.ID,
		TrackingID:    trackingID,
		TransactionID: transactionID,
		CreatedAt:     order.CreatedAt,
		Items:         items,
	}, nil
}

// transactionIDFor applies the transaction id policy: UPI orders get a fresh
// reference, gateway orders carry the verified payment id, the rest get none.
func transactionIDFor(method models.PaymentMethod, paymentRef string) (*string, error) {
	switch method {
	case models.PaymentUPI:
		id, err := utils.GenerateTransactionID()
		if err != nil {
			return nil, persistenceFailure("failed to generate transaction id", err)
		}
		return &id, nil
	case models.PaymentRazorpay:
		if paymentRef == "" {
			return nil, validationError("gateway payment reference is required")
		}
		ref := paymentRef
		return &ref, nil
	default:
		return nil, nil
	}
}

// Get loads an order with its items.
func (r *OrderRecorder) Get(ctx context.Context, id uint) (models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Preload("Items").Where("id = ?", id).Take(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Order{}, notFound("order")
	}
	if err != nil {
		return models.Order{}, persistenceFailure("failed to fetch order", err)
	}
	return order, nil
}

// ListByEmail returns a customer's orders, newest first.
func (r *OrderRecorder) ListByEmail(ctx context.Context, email string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("email = ?", email).
		Order("created_at desc").
		Order("id desc").
		Find(&orders).Error
	if err != nil {
		return nil, persistenceFailure("failed to fetch orders", err)
	}
	return orders, nil
}

// FindByIdempotencyKey returns the order recorded under key.
func (r *OrderRecorder) FindByIdempotencyKey(ctx context.Context, key string) (models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Where("idempotency_key = ?", key).Take(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Order{}, notFound("order")
	}
	if err != nil {
		return models.Order{}, persistenceFailure("failed to look up idempotency key", err)
	}
	return order, nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate entry") || strings.Contains(msg, "unique constraint failed")
}

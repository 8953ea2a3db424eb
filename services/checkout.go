package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-sql-driver/mysql"
	"github.com/rajagopika181204/website-backend/metrics"
	"github.com/rajagopika181204/website-backend/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// State is a step of the order-placement state machine.
type State string

const (
	StateStarted    State = "started"
	StateValidating State = "validating"
	StateReserving  State = "reserving"
	StateRecording  State = "recording"
	StateCommitted  State = "committed"
	StateRolledBack State = "rolled_back"
)

// CartLine is one line of the cart submitted at checkout. UnitPrice is the
// price the customer saw and is recorded as-is.
type CartLine struct {
	ProductID uint            `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// PaymentProof is the gateway callback the customer's browser received.
type PaymentProof struct {
	OrderRef   string `json:"orderRef"`
	PaymentRef string `json:"paymentRef"`
	Signature  string `json:"signature"`
}

type CheckoutRequest struct {
	Items          []CartLine           `json:"items"`
	Customer       Customer             `json:"customer"`
	Total          decimal.Decimal      `json:"total"`
	PaymentMethod  models.PaymentMethod `json:"paymentMethod"`
	Payment        *PaymentProof        `json:"payment,omitempty"`
	IdempotencyKey string               `json:"idempotencyKey,omitempty"`
}

type CheckoutResult struct {
	OrderID       uint                 `json:"orderId"`
	TrackingID    string               `json:"trackingId"`
	TransactionID *string              `json:"transactionId"`
	Customer      Customer             `json:"customer"`
	Items         []models.OrderItem   `json:"items"`
	Total         decimal.Decimal      `json:"total"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod"`
	CreatedAt     time.Time            `json:"createdAt"`
}

// CommitHook runs after a checkout has committed. It must not fail the
// checkout; errors are its own to log.
type CommitHook func(ctx context.Context, result CheckoutResult)

// Checkout places orders: it reserves stock, records the order and saves the
// customer's address in a single transaction.
type Checkout struct {
	db        *gorm.DB
	ledger    *InventoryLedger
	recorder  *OrderRecorder
	addresses *AddressBook
	verifier  PaymentVerifier
	validate  *validator.Validate
	hooks     []CommitHook
	log       *zap.Logger
}

func NewCheckout(db *gorm.DB, ledger *InventoryLedger, recorder *OrderRecorder, addresses *AddressBook, verifier PaymentVerifier, log *zap.Logger) *Checkout {
	return &Checkout{
		db:        db,
		ledger:    ledger,
		recorder:  recorder,
		addresses: addresses,
		verifier:  verifier,
		validate:  validator.New(),
		log:       log,
	}
}

// OnCommit registers a hook to run after every committed checkout.
func (c *Checkout) OnCommit(hook CommitHook) {
	c.hooks = append(c.hooks, hook)
}

// PlaceOrder runs one checkout. On failure nothing is persisted and the
// returned error is an *Error whose Kind tells why.
func (c *Checkout) PlaceOrder(ctx context.Context, req CheckoutRequest) (CheckoutResult, error) {
	started := time.Now()
	result, units, err := c.placeOrder(ctx, req)

	outcome := string(StateCommitted)
	if err != nil {
		outcome = string(KindOf(err))
	}
	metrics.ObserveCheckout(outcome, started, units)
	return result, err
}

func (c *Checkout) placeOrder(ctx context.Context, req CheckoutRequest) (CheckoutResult, int, error) {
	state := StateStarted
	log := c.log.With(zap.String("payment_method", string(req.PaymentMethod)))
	log.Debug("Checkout received", zap.String("state", string(state)), zap.Int("lines", len(req.Items)))

	state = StateValidating
	req, err := c.validateRequest(req)
	if err != nil {
		log.Info("Checkout rejected", zap.String("state", string(state)), zap.Error(err))
		return CheckoutResult{}, 0, err
	}
	log = log.With(zap.String("email", req.Customer.Email))

	if err := c.verifyPayment(req); err != nil {
		log.Warn("Checkout payment not verified", zap.Error(err))
		return CheckoutResult{}, 0, err
	}

	if req.IdempotencyKey != "" {
		existing, err := c.recorder.FindByIdempotencyKey(ctx, req.IdempotencyKey)
		switch {
		case err == nil:
			log.Info("Duplicate checkout rejected", zap.Uint("order_id", existing.ID))
			return CheckoutResult{}, 0, duplicateRequest(existing.ID)
		case !IsKind(err, KindNotFound):
			return CheckoutResult{}, 0, err
		}
	}

	header := OrderHeader{
		Customer:       req.Customer,
		PaymentMethod:  req.PaymentMethod,
		Total:          req.Total,
		IdempotencyKey: req.IdempotencyKey,
	}
	if req.Payment != nil {
		header.PaymentRef = req.Payment.PaymentRef
	}

	var receipt Receipt
	units := 0
	err = c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		state = StateReserving
		names := make(map[uint]string, len(req.Items))
		for _, demand := range lockOrder(req.Items) {
			reservation, err := c.ledger.Reserve(ctx, tx, demand.ProductID, demand.Quantity)
			if err != nil {
				return err
			}
			names[demand.ProductID] = reservation.Name
			units += demand.Quantity
		}

		state = StateRecording
		lines := make([]OrderLine, 0, len(req.Items))
		for _, item := range req.Items {
			lines = append(lines, OrderLine{
				ProductID:   item.ProductID,
				ProductName: names[item.ProductID],
				Quantity:    item.Quantity,
				UnitPrice:   item.UnitPrice,
			})
		}
		receipt, err = c.recorder.CreateOrder(ctx, tx, header, lines)
		if err != nil {
			return err
		}
		if _, err := c.addresses.Upsert(ctx, tx, req.Customer.Email, req.Customer); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		failedAt := state
		state = StateRolledBack
		err = c.classify(ctx, err, req.IdempotencyKey)
		log.Warn("Checkout rolled back",
			zap.String("failed_at", string(failedAt)),
			zap.String("state", string(state)),
			zap.String("kind", string(KindOf(err))),
			zap.Error(err))
		return CheckoutResult{}, 0, err
	}
	state = StateCommitted

	result := CheckoutResult{
		OrderID:       receipt.OrderID,
		TrackingID:    receipt.TrackingID,
		TransactionID: receipt.TransactionID,
		Customer:      req.Customer,
		Items:         receipt.Items,
		Total:         req.Total,
		PaymentMethod: req.PaymentMethod,
		CreatedAt:     receipt.CreatedAt,
	}
	log.Info("Order placed",
		zap.String("state", string(state)),
		zap.Uint("order_id", result.OrderID),
		zap.String("tracking_id", result.TrackingID),
		zap.String("total", result.Total.String()))

	for _, hook := range c.hooks {
		hook(ctx, result)
	}
	return result, units, nil
}

// classify turns a transaction error into a service error. Lock conflicts come
// back as KindConflict for the caller to resubmit; other failures are
// persistence failures and never retried here.
func (c *Checkout) classify(ctx context.Context, err error, idempotencyKey string) error {
	if isLockConflict(err) {
		return &Error{Kind: KindConflict, Message: "order collided with a concurrent checkout, please retry", Err: err}
	}
	var svcErr *Error
	if !errors.As(err, &svcErr) {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return persistenceFailure("checkout cancelled before commit", err)
		}
		return persistenceFailure("failed to commit order", err)
	}
	if svcErr.Kind == KindDuplicateRequest && idempotencyKey != "" && svcErr.OrderID == 0 {
		// Lost a race with a concurrent submission of the same key.
		if existing, lookupErr := c.recorder.FindByIdempotencyKey(context.WithoutCancel(ctx), idempotencyKey); lookupErr == nil {
			svcErr.OrderID = existing.ID
		}
	}
	return svcErr
}

// MySQL reports deadlocks (1213) and lock wait timeouts (1205) after rolling
// the transaction back, so the whole checkout can be submitted again.
func isLockConflict(err error) bool {
	var mysqlErr *mysql.MySQLError
	if !errors.As(err, &mysqlErr) {
		return false
	}
	return mysqlErr.Number == 1213 || mysqlErr.Number == 1205
}

func (c *Checkout) validateRequest(req CheckoutRequest) (CheckoutRequest, error) {
	if len(req.Items) == 0 {
		return req, validationError("cart is empty")
	}
	if !req.PaymentMethod.Valid() {
		return req, validationError("unrecognised payment method %q", req.PaymentMethod)
	}

	req.Customer = req.Customer.Normalize()
	if err := c.validate.Struct(customerRules(req.Customer)); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			fields := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				fields = append(fields, strings.ToLower(fe.Field()))
			}
			return req, validationError("missing or invalid customer fields: %s", strings.Join(fields, ", "))
		}
		return req, validationError("invalid customer details")
	}

	sum := decimal.Zero
	for i, item := range req.Items {
		if item.ProductID == 0 {
			return req, validationError("item %d: product id is required", i+1)
		}
		if item.Quantity <= 0 {
			return req, validationError("item %d: quantity must be positive", i+1)
		}
		if item.UnitPrice.IsNegative() {
			return req, validationError("item %d: unit price must not be negative", i+1)
		}
		sum = sum.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	if !req.Total.IsPositive() {
		return req, validationError("total must be greater than zero")
	}
	if !req.Total.Equal(sum) {
		return req, validationError("total %s does not match cart total %s", req.Total.String(), sum.String())
	}

	req.IdempotencyKey = strings.TrimSpace(req.IdempotencyKey)
	if len(req.IdempotencyKey) > 128 {
		return req, validationError("idempotency key is too long")
	}
	return req, nil
}

func (c *Checkout) verifyPayment(req CheckoutRequest) error {
	if req.PaymentMethod != models.PaymentRazorpay {
		return nil
	}
	if req.Payment == nil || req.Payment.OrderRef == "" || req.Payment.PaymentRef == "" || req.Payment.Signature == "" {
		return paymentVerificationFailure("payment details are required for gateway checkout", nil)
	}
	if c.verifier == nil {
		return paymentVerificationFailure("payment gateway is not configured", nil)
	}
	if !c.verifier.VerifySignature(req.Payment.OrderRef, req.Payment.PaymentRef, req.Payment.Signature) {
		return paymentVerificationFailure("payment signature mismatch", nil)
	}
	return nil
}

type customerValidation struct {
	Name    string
	Address string `validate:"required"`
	City    string `validate:"required"`
	Email   string `validate:"required,email"`
	Pincode string `validate:"required"`
	Phone   string `validate:"required"`
}

func customerRules(c Customer) customerValidation {
	return customerValidation(c)
}

type stockDemand struct {
	ProductID uint
	Quantity  int
}

// lockOrder folds repeated products together and sorts by product id, so
// concurrent checkouts always acquire row locks in the same order.
func lockOrder(items []CartLine) []stockDemand {
	totals := make(map[uint]int, len(items))
	for _, item := range items {
		totals[item.ProductID] += item.Quantity
	}
	demands := make([]stockDemand, 0, len(totals))
	for id, qty := range totals {
		demands = append(demands, stockDemand{ProductID: id, Quantity: qty})
	}
	sort.Slice(demands, func(i, j int) bool { return demands[i].ProductID < demands[j].ProductID })
	return demands
}

func duplicateRequest(orderID uint) *Error {
	return &Error{
		Kind:    KindDuplicateRequest,
		Message: "order already placed for this idempotency key",
		OrderID: orderID,
	}
}

package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaymentVerifier checks a gateway callback signature. Checkout consults it
// for gateway payment methods only.
type PaymentVerifier interface {
	VerifySignature(orderRef, paymentRef, signature string) bool
}

// GatewayOrder is the order object returned by Razorpay.
type GatewayOrder struct {
	ID       string `json:"id"`
	Entity   string `json:"entity"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type RazorpayConfig struct {
	KeyID     string
	KeySecret string
	BaseURL   string
	Timeout   time.Duration
}

// Razorpay talks to the Razorpay orders API and verifies checkout signatures.
type Razorpay struct {
	cfg    RazorpayConfig
	client *resty.Client
	log    *zap.Logger
}

func NewRazorpay(cfg RazorpayConfig, log *zap.Logger) *Razorpay {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.razorpay.com"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetBasicAuth(cfg.KeyID, cfg.KeySecret).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")
	return &Razorpay{cfg: cfg, client: client, log: log}
}

// CreateGatewayOrder registers an order of amount (in rupees) with the
// gateway. Razorpay expects the amount in paise.
func (p *Razorpay) CreateGatewayOrder(ctx context.Context, amount decimal.Decimal, currency, receipt string) (GatewayOrder, error) {
	if !amount.IsPositive() {
		return GatewayOrder{}, validationError("amount must be greater than zero")
	}
	if currency == "" {
		currency = "INR"
	}

	var order GatewayOrder
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"amount":   amount.Shift(2).Round(0).IntPart(),
			"currency": currency,
			"receipt":  receipt,
		}).
		SetResult(&order).
		Post("/v1/orders")
	if err != nil {
		return GatewayOrder{}, persistenceFailure("failed to reach payment gateway", err)
	}
	if resp.StatusCode() != 200 {
		p.log.Warn("Razorpay order request rejected",
			zap.Int("status", resp.StatusCode()),
			zap.String("body", string(resp.Body())))
		return GatewayOrder{}, persistenceFailure("payment gateway rejected the order",
			fmt.Errorf("razorpay order request failed with status %d", resp.StatusCode()))
	}
	if order.ID == "" {
		return GatewayOrder{}, persistenceFailure("incomplete response from payment gateway", nil)
	}
	return order, nil
}

// VerifySignature checks signature == hex(HMAC-SHA256(secret, orderRef|paymentRef)).
func (p *Razorpay) VerifySignature(orderRef, paymentRef, signature string) bool {
	if orderRef == "" || paymentRef == "" || signature == "" {
		return false
	}
	expected := Sign(p.cfg.KeySecret, orderRef, paymentRef)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}

// Sign computes the gateway checkout signature for orderRef and paymentRef.
func Sign(secret, orderRef, paymentRef string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderRef + "|" + paymentRef))
	return hex.EncodeToString(mac.Sum(nil))
}

// UPILinkBuilder renders upi:// deep links for the store's payee address.
type UPILinkBuilder struct {
	PayeeAddress string
	PayeeName    string
}

// Link returns a UPI payment URI for amount, tagged with the order reference.
func (b UPILinkBuilder) Link(amount decimal.Decimal, orderRef string) (string, error) {
	if !amount.IsPositive() {
		return "", validationError("amount must be greater than zero")
	}
	if strings.TrimSpace(orderRef) == "" {
		return "", validationError("order id is required")
	}
	if b.PayeeAddress == "" {
		return "", validationError("UPI payee is not configured")
	}

	query := url.Values{}
	query.Set("pa", b.PayeeAddress)
	query.Set("pn", b.PayeeName)
	query.Set("am", amount.StringFixed(2))
	query.Set("tn", orderRef)
	query.Set("cu", "INR")
	return "upi://pay?" + query.Encode(), nil
}

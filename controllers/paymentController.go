package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rajagopika181204/website-backend/middlewares"
	"github.com/rajagopika181204/website-backend/services"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type PaymentController struct {
	gateway  *services.Razorpay
	upi      services.UPILinkBuilder
	currency string
}

// NewPaymentController returns the payment endpoints. gateway may be nil when
// Razorpay is not configured.
func NewPaymentController(gateway *services.Razorpay, upi services.UPILinkBuilder, currency string) *PaymentController {
	return &PaymentController{gateway: gateway, upi: upi, currency: currency}
}

func (c *PaymentController) GenerateUPILink(ctx *gin.Context) {
	var body struct {
		Amount  decimal.Decimal `json:"amount"`
		OrderID string          `json:"orderId"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Amount and Order ID required")
		return
	}
	link, err := c.upi.Link(body.Amount, body.OrderID)
	if err != nil {
		respondWithError(ctx, err)
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"upiLink": link, "qrData": link})
}

// CreateGatewayOrder opens a Razorpay order the browser then pays against.
func (c *PaymentController) CreateGatewayOrder(ctx *gin.Context) {
	if c.gateway == nil {
		sendErrorResponse(ctx, http.StatusServiceUnavailable, "payment gateway is not configured")
		return
	}
	var body struct {
		Amount   decimal.Decimal `json:"amount"`
		Currency string          `json:"currency"`
		Receipt  string          `json:"receipt"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}
	if body.Currency == "" {
		body.Currency = c.currency
	}

	order, err := c.gateway.CreateGatewayOrder(ctx.Request.Context(), body.Amount, body.Currency, body.Receipt)
	if err != nil {
		respondWithError(ctx, err)
		return
	}
	middlewares.Logger(ctx).Info("Gateway order created", zap.String("gateway_order_id", order.ID))
	sendJSONResponse(ctx, http.StatusOK, gin.H{"success": true, "order": order})
}

func (c *PaymentController) VerifyPayment(ctx *gin.Context) {
	if c.gateway == nil {
		sendErrorResponse(ctx, http.StatusServiceUnavailable, "payment gateway is not configured")
		return
	}
	var body struct {
		PaymentID string `json:"paymentId" binding:"required"`
		OrderID   string `json:"orderId" binding:"required"`
		Signature string `json:"signature" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid payment details")
		return
	}

	if !c.gateway.VerifySignature(body.OrderID, body.PaymentID, body.Signature) {
		middlewares.Logger(ctx).Warn("Payment signature mismatch", zap.String("gateway_order_id", body.OrderID))
		sendErrorResponse(ctx, http.StatusBadRequest, "Payment verification failed")
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"success": true, "message": "Payment verified successfully"})
}

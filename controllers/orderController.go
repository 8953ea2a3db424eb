package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rajagopika181204/website-backend/services"
)

// IdempotencyKeyHeader carries a client-chosen key that makes order
// submission safe to retry.
const IdempotencyKeyHeader = "Idempotency-Key"

type OrderController struct {
	checkout *services.Checkout
	orders   *services.OrderRecorder
	timeout  time.Duration
}

// NewOrderController returns the order endpoints. timeout bounds one checkout;
// zero leaves it to the request context.
func NewOrderController(checkout *services.Checkout, orders *services.OrderRecorder, timeout time.Duration) *OrderController {
	return &OrderController{checkout: checkout, orders: orders, timeout: timeout}
}

type orderCreatedResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	services.CheckoutResult
}

func (c *OrderController) PlaceOrder(ctx *gin.Context) {
	var orderInfo services.CheckoutRequest
	if err := ctx.ShouldBindJSON(&orderInfo); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid request body")
		return
	}
	if key := strings.TrimSpace(ctx.GetHeader(IdempotencyKeyHeader)); key != "" {
		orderInfo.IdempotencyKey = key
	}

	reqCtx := ctx.Request.Context()
	if c.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(reqCtx, c.timeout)
		defer cancel()
	}

	result, err := c.checkout.PlaceOrder(reqCtx, orderInfo)
	if err != nil {
		respondWithError(ctx, err)
		return
	}

	sendJSONResponse(ctx, http.StatusCreated, orderCreatedResponse{
		Success:        true,
		Message:        "Order Created successfully",
		CheckoutResult: result,
	})
}

// GetOrdersByEmail lists a customer's orders, newest first.
func (c *OrderController) GetOrdersByEmail(ctx *gin.Context) {
	email := strings.ToLower(strings.TrimSpace(ctx.Query("email")))
	if email == "" {
		sendErrorResponse(ctx, http.StatusBadRequest, "Email is required")
		return
	}
	orders, err := c.orders.ListByEmail(ctx.Request.Context(), email)
	if err != nil {
		respondWithError(ctx, err)
		return
	}
	sendJSONResponse(ctx, http.StatusOK, orders)
}

func (c *OrderController) GetOrder(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	order, err := c.orders.Get(ctx.Request.Context(), id)
	if err != nil {
		respondWithError(ctx, err)
		return
	}
	sendJSONResponse(ctx, http.StatusOK, order)
}

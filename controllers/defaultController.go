package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rajagopika181204/website-backend/middlewares"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func GetHome(ctx *gin.Context) {
	message := `Welcome to the TechStore API.

AUTH
- POST "/signup" - Create user account
- POST "/login" - Access user account

PRODUCT
- GET "/products" - Products in stock
- GET "/products/:id" - Product by ID
- POST "/products" - Create product (admin)
- PATCH "/products/:id/price" - Change price (admin)
- POST "/products/:id/restock" - Add stock (admin)
- POST "/products/:id/image" - Upload image (admin)
- POST "/api/update-stock" - Take units out of stock

ORDER
- POST "/api/orders" - Place an order
- GET "/api/order?email=" - Orders for an email
- GET "/api/orders/:id" - Order by ID

ADDRESS
- GET "/api/address/:email" - Saved address
- POST "/api/save-address" - Save address
- DELETE "/api/delete-address/:id" - Delete address

CART
- POST "/api/cart" - Replace saved cart
- GET "/api/cart" - Saved cart

PAYMENT
- POST "/api/generate-upi-link" - UPI payment link
- POST "/api/create-order" - Razorpay order
- POST "/api/verify-payment" - Verify Razorpay signature`

	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"message": message,
	})
}

// Health pings the database.
func Health(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
		defer cancel()

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(pingCtx)
		}
		if err != nil {
			middlewares.Logger(ctx).Warn("Health check failed", zap.Error(err))
			sendJSONResponse(ctx, http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		sendJSONResponse(ctx, http.StatusOK, gin.H{"status": "ok"})
	}
}

package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rajagopika181204/website-backend/middlewares"
	"github.com/rajagopika181204/website-backend/services"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	msgInvalidInput        = "invalid input"
	msgInternalServerError = "Internal server error"
)

// Money goes over the wire as JSON numbers. Requests may send numbers or
// strings.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

var statusByKind = map[services.Kind]int{
	services.KindValidation:          http.StatusBadRequest,
	services.KindNotFound:            http.StatusNotFound,
	services.KindInsufficientStock:   http.StatusConflict,
	services.KindDuplicateRequest:    http.StatusConflict,
	services.KindConflict:            http.StatusConflict,
	services.KindPaymentVerification: http.StatusPaymentRequired,
	services.KindUnauthorized:        http.StatusUnauthorized,
	services.KindPersistence:         http.StatusInternalServerError,
}

func sendJSONResponse(ctx *gin.Context, status int, data any) {
	ctx.JSON(status, data)
}

func sendErrorResponse(ctx *gin.Context, status int, message string) {
	sendJSONResponse(ctx, status, gin.H{"success": false, "message": message})
}

// respondWithError writes a service error with the status its kind maps to.
// Persistence failures are logged and their cause is never sent to the client.
func respondWithError(ctx *gin.Context, err error) {
	var svcErr *services.Error
	if !errors.As(err, &svcErr) {
		middlewares.Logger(ctx).Error("Unhandled error", zap.Error(err))
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}

	status, ok := statusByKind[svcErr.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	if status >= http.StatusInternalServerError {
		middlewares.Logger(ctx).Error("Request failed", zap.String("kind", string(svcErr.Kind)), zap.Error(err))
	}

	body := gin.H{
		"success": false,
		"kind":    svcErr.Kind,
		"message": svcErr.Message,
	}
	if svcErr.ProductID != 0 {
		body["productId"] = svcErr.ProductID
	}
	if svcErr.OrderID != 0 {
		body["orderId"] = svcErr.OrderID
	}
	sendJSONResponse(ctx, status, body)
}

func parseID(ctx *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(param), 10, 64)
	if err != nil || id == 0 {
		sendErrorResponse(ctx, http.StatusBadRequest, "invalid "+param)
		return 0, false
	}
	return uint(id), true
}

package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rajagopika181204/website-backend/middlewares"
	"github.com/rajagopika181204/website-backend/services"
)

type CartController struct {
	carts *services.CartStore
}

func NewCartController(carts *services.CartStore) *CartController {
	return &CartController{carts: carts}
}

// SaveCart replaces the signed-in user's saved cart.
func (c *CartController) SaveCart(ctx *gin.Context) {
	claims, ok := middlewares.CurrentUser(ctx)
	if !ok {
		sendErrorResponse(ctx, http.StatusUnauthorized, "User not found in context")
		return
	}

	var body struct {
		Items []services.SavedCartLine `json:"items" binding:"dive"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid input")
		return
	}

	items, err := c.carts.Save(ctx.Request.Context(), claims.UserID, body.Items)
	if err != nil {
		respondWithError(ctx, err)
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"success": true, "message": "Cart saved successfully", "items": items})
}

func (c *CartController) GetCart(ctx *gin.Context) {
	claims, ok := middlewares.CurrentUser(ctx)
	if !ok {
		sendErrorResponse(ctx, http.StatusUnauthorized, "User not found in context")
		return
	}

	items, err := c.carts.Get(ctx.Request.Context(), claims.UserID)
	if err != nil {
		respondWithError(ctx, err)
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"success": true, "items": items})
}

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/rajagopika181204/website-backend/controllers"
)

func CartRoutes(server *gin.Engine, carts *controllers.CartController, requireAuth gin.HandlerFunc) {
	cart := server.Group("/api/cart", requireAuth)
	{
		cart.POST("", carts.SaveCart)
		cart.GET("", carts.GetCart)
	}
}

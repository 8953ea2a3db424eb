package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/rajagopika181204/website-backend/controllers"
	"github.com/rajagopika181204/website-backend/middlewares"
)

func ProductRoutes(server *gin.Engine, products *controllers.ProductController, requireAuth gin.HandlerFunc) {
	server.GET("/products", products.GetProducts)
	server.GET("/products/:id", products.GetProduct)

	admin := server.Group("/products", requireAuth, middlewares.RequireAdmin())
	{
		admin.POST("", products.CreateProduct)
		admin.PATCH("/:id/price", products.UpdatePrice)
		admin.POST("/:id/restock", products.Restock)
		admin.POST("/:id/image", products.UploadImage)
	}

	server.POST("/api/update-stock", products.UpdateStock)
	server.GET("/api/image-base64/:filename", products.GetImageBase64)
}

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/rajagopika181204/website-backend/controllers"
)

func OrderRoutes(server *gin.Engine, orders *controllers.OrderController, addresses *controllers.AddressController, payments *controllers.PaymentController) {
	api := server.Group("/api")
	{
		api.POST("/orders", orders.PlaceOrder)
		api.GET("/order", orders.GetOrdersByEmail)
		api.GET("/orders/:id", orders.GetOrder)

		api.GET("/address/:email", addresses.GetAddress)
		api.POST("/save-address", addresses.SaveAddress)
		api.DELETE("/delete-address/:id", addresses.DeleteAddress)

		api.POST("/generate-upi-link", payments.GenerateUPILink)
		api.POST("/create-order", payments.CreateGatewayOrder)
		api.POST("/verify-payment", payments.VerifyPayment)
	}
}

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/rajagopika181204/website-backend/controllers"
)

func AuthRoutes(server *gin.Engine, auth *controllers.AuthController) {
	server.POST("/signup", auth.Signup)
	server.POST("/login", auth.Login)
}

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/rajagopika181204/website-backend/controllers"
	"github.com/rajagopika181204/website-backend/metrics"
	"gorm.io/gorm"
)

func DefaultRoutes(server *gin.Engine, db *gorm.DB) {
	server.GET("/", controllers.GetHome)
	server.GET("/health", controllers.Health(db))
	server.GET("/metrics", gin.WrapH(metrics.Handler()))
}

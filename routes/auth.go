package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/niloy8/KNEX-Backend/auth"
	"github.com/niloy8/KNEX-Backend/middleware"
	"gorm.io/gorm"
)

func SetupAuthRoutes(r *gin.Engine, db *gorm.DB) {
	group := r.Group("/auth")
	{
		group.POST("/admin/login", auth.AdminLogin(db))

		// Admin provisioning is service-to-service only.
		group.POST("/admin", middleware.ValidateAPIKey, auth.CreateAdmin(db))
	}
}

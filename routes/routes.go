package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRoutes is the single entry-point that wires up all route groups.
func SetupRoutes(r *gin.Engine, db *gorm.DB) {
	// Public auth routes (no middleware)
	SetupAuthRoutes(r, db)

	// Catalog routes (public reads, admin writes)
	SetupCatalogRoutes(r, db)

	// User cart + wishlist routes (JWT-protected)
	SetupCartRoutes(r, db)

	// Order routes (user placement, admin fulfillment)
	SetupOrderRoutes(r, db)
}

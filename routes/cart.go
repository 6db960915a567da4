package routes

import (
	"github.com/gin-gonic/gin"
	cartControllers "github.com/niloy8/KNEX-Backend/controllers/cart"
	wishlistControllers "github.com/niloy8/KNEX-Backend/controllers/wishlist"
	"github.com/niloy8/KNEX-Backend/middleware"
	"gorm.io/gorm"
)

func SetupCartRoutes(r *gin.Engine, db *gorm.DB) {
	user := r.Group("/user", middleware.RequireAuth)
	{
		cart := user.Group("/cart")
		{
			cart.GET("", cartControllers.GetCart(db))
			cart.POST("", cartControllers.AddCartLine(db))
			cart.POST("/sync", cartControllers.SyncCart(db))
			cart.POST("/remove", cartControllers.DeleteCartSelection(db))
			cart.PUT("/:line_id", cartControllers.UpdateCartLineQuantity(db))
			cart.DELETE("/:line_id", cartControllers.DeleteCartLine(db))
			cart.DELETE("", cartControllers.ClearCart(db))
		}

		wishlist := user.Group("/wishlist")
		{
			wishlist.GET("", wishlistControllers.GetWishlist(db))
			wishlist.POST("/toggle", wishlistControllers.ToggleWishlistLine(db))
		}
	}
}

package routes

import (
	"github.com/gin-gonic/gin"
	orderControllers "github.com/niloy8/KNEX-Backend/controllers/order"
	"github.com/niloy8/KNEX-Backend/middleware"
	"gorm.io/gorm"
)

func SetupOrderRoutes(r *gin.Engine, db *gorm.DB) {
	// User-facing order routes
	user := r.Group("/user", middleware.RequireAuth)
	{
		user.POST("/orders", orderControllers.PlaceOrderHandler(db))
		user.GET("/orders", orderControllers.GetUserOrdersHandler(db))
	}

	// Admin fulfillment routes
	orders := r.Group("/orders", middleware.RequireAuth, middleware.RequireAdmin)
	{
		orders.GET("", orderControllers.GetAllOrdersHandler(db))
		orders.GET("/:orderID", orderControllers.GetOrderByIDHandler(db))

		// Status transitions drive the stock ledger
		orders.PUT("/:orderID/status", orderControllers.UpdateOrderStatusHandler(db))

		orders.DELETE("/:orderID", orderControllers.DeleteOrderHandler(db))

		// websocket endpoint for real-time order updates
		orders.GET("/ws", orderControllers.OrderFeedHandler)
	}

	// Export is service-to-service (reporting jobs)
	r.GET("/orders/export", middleware.ValidateAPIKey, orderControllers.ExportOrdersToExcel(db))
}

package routes

import (
	"github.com/gin-gonic/gin"
	productcontroller "github.com/niloy8/KNEX-Backend/controllers/product"
	"github.com/niloy8/KNEX-Backend/middleware"
	"gorm.io/gorm"
)

func SetupCatalogRoutes(r *gin.Engine, db *gorm.DB) {
	products := r.Group("/products")
	{
		products.GET("", productcontroller.GetAllProducts(db))
		products.GET("/:id", productcontroller.GetProductByID(db))

		admin := products.Group("", middleware.RequireAuth, middleware.RequireAdmin)
		{
			admin.POST("", productcontroller.CreateProduct(db))
			admin.PUT("/:id", productcontroller.UpdateProduct(db))
			admin.DELETE("/:id", productcontroller.DeleteProduct(db))
		}
	}

	categories := r.Group("/categories")
	{
		categories.GET("", productcontroller.GetAllCategories(db))
		categories.GET("/:id", productcontroller.GetCategoryByID(db))

		admin := categories.Group("", middleware.RequireAuth, middleware.RequireAdmin)
		{
			admin.POST("", productcontroller.CreateCategory(db))
			admin.DELETE("/:id", productcontroller.DeleteCategory(db))
		}
	}
}

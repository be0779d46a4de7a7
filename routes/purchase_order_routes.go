package routes

import (
	"fiber-erp/config"
	"fiber-erp/controllers"
	"fiber-erp/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupPurchaseOrderRoutes(app *fiber.App, db *gorm.DB) {
	api := app.Group(config.MAIN_ROUTES+"/purchase-orders", middleware.AuthMiddleware)
	poController := controllers.NewPurchaseOrderController(db)

	api.Get("/", poController.GetAllPurchaseOrders)
	api.Post("/", poController.CreatePurchaseOrder)
}

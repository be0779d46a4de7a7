package routes

import (
	"fiber-erp/config"
	"fiber-erp/controllers"
	"fiber-erp/middleware"
	"fiber-erp/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupManufacturingOrderRoutes(app *fiber.App, db *gorm.DB, release *services.ReleaseService) {
	api := app.Group(config.MAIN_ROUTES+"/manufacturing-orders", middleware.AuthMiddleware)
	moController := controllers.NewManufacturingOrderController(db, release)

	api.Get("/", moController.GetAllMO)
	api.Post("/", moController.CreateMO)
	api.Get("/:id", moController.GetMOAggregate)
	api.Post("/:id/upgrade", moController.UpgradeMO)
	api.Post("/:id/cancel", moController.CancelMO)
	api.Get("/:id/work-orders", moController.GetWorkOrders)
}

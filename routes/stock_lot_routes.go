package routes

import (
	"fiber-erp/config"
	"fiber-erp/controllers"
	"fiber-erp/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupStockLotRoutes(app *fiber.App, db *gorm.DB) {
	api := app.Group(config.MAIN_ROUTES+"/stock-lots", middleware.AuthMiddleware)
	stockLotController := controllers.NewStockLotController(db)

	api.Get("/", stockLotController.GetStockLots)
	api.Post("/", stockLotController.CreateStockLot)
}

package routes

import (
	"fiber-erp/config"
	"fiber-erp/controllers"
	"fiber-erp/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupMaterialRoutes(app *fiber.App, db *gorm.DB) {
	api := app.Group(config.MAIN_ROUTES+"/materials", middleware.AuthMiddleware)
	materialController := controllers.NewMaterialController(db)

	api.Get("/", materialController.GetAllMaterials)
	api.Post("/", materialController.CreateMaterial)
}

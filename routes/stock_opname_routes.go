package routes

import (
	"fiber-erp/config"
	"fiber-erp/controllers"
	"fiber-erp/middleware"
	"fiber-erp/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupStockOpnameRoutes(app *fiber.App, db *gorm.DB, opname *services.OpnameService) {
	api := app.Group(config.MAIN_ROUTES+"/stock-opname", middleware.AuthMiddleware)
	opnameController := controllers.NewStockOpnameController(db, opname)

	api.Get("/", opnameController.GetAllOpname)
	api.Post("/", opnameController.RecordOpname)
	api.Post("/:id/approve", opnameController.ApproveOpname)
	api.Post("/:id/reject", opnameController.RejectOpname)
	api.Get("/:id/export", opnameController.ExportOpname)
}

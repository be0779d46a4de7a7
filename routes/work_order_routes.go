package routes

import (
	"fiber-erp/config"
	"fiber-erp/controllers"
	"fiber-erp/middleware"
	"fiber-erp/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupWorkOrderRoutes(app *fiber.App, db *gorm.DB, release *services.ReleaseService, alloc *services.AllocationService) {
	woController := controllers.NewWorkOrderController(db, release, alloc)

	api := app.Group(config.MAIN_ROUTES+"/work-orders", middleware.AuthMiddleware)
	api.Post("/:id/reserve", woController.ReserveMaterials)
	api.Get("/:id/reservations", woController.GetReservations)
	api.Post("/:id/start", woController.StartWO)
	api.Post("/:id/pause", woController.PauseWO)
	api.Post("/:id/resume", woController.ResumeWO)
	api.Post("/:id/progress", woController.RecordProgress)
	api.Post("/:id/complete", woController.CompleteWO)
	api.Post("/:id/cancel", woController.CancelWO)

	apiReservation := app.Group(config.MAIN_ROUTES+"/reservations", middleware.AuthMiddleware)
	apiReservation.Post("/:id/release", woController.ReleaseReservation)
}

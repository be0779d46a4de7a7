package routes

import (
	"fiber-erp/config"
	"fiber-erp/controllers"
	"fiber-erp/middleware"
	"fiber-erp/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupArticleRoutes(app *fiber.App, db *gorm.DB, bom *services.BOMService) {
	api := app.Group(config.MAIN_ROUTES+"/articles", middleware.AuthMiddleware)
	articleController := controllers.NewArticleController(db, bom)

	api.Get("/", articleController.GetAllArticles)
	api.Post("/", articleController.CreateArticle)
	api.Get("/:id/bom", articleController.GetBOM)
	api.Post("/:id/bom", articleController.AddBOMLines)
	api.Post("/:id/explode", articleController.ExplodeBOM)
}

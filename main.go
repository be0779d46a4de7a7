package main

import (
	"fiber-erp/config"
	"fiber-erp/controllers/idgen"
	"fiber-erp/database"
	"fiber-erp/migration"
	"fiber-erp/routes"
	"fiber-erp/services"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
)

func main() {

	config.LoadConfig()

	app := fiber.New()

	// Pastikan database ada
	database.EnsureDatabaseExists(config.DBName)

	// Connect to database
	db, err := database.OpenDatabaseConnection(config.DBName)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto migrate models
	err = migration.Migrate(db)
	if err != nil {
		log.Fatalf("Failed to auto migrate: %v", err)
	}

	idgen.Init()
	database.RunSeeders(db)

	// Shared services. Allocation service holds the per-material locks,
	// so there must be exactly one instance.
	allocService := services.NewAllocationService(db)
	bomService := services.NewBOMService(db)
	releaseService := services.NewReleaseService(db, bomService, allocService)
	opnameService := services.NewOpnameService(db, allocService, services.NewMailService())

	// Setup CORS middleware
	config.SetupCORS(app)

	// Setup routes
	routes.SetupMaterialRoutes(app, db)
	routes.SetupArticleRoutes(app, db, bomService)
	routes.SetupPurchaseOrderRoutes(app, db)
	routes.SetupStockLotRoutes(app, db)
	routes.SetupManufacturingOrderRoutes(app, db, releaseService)
	routes.SetupWorkOrderRoutes(app, db, releaseService, allocService)
	routes.SetupStockOpnameRoutes(app, db, opnameService)

	port := config.APP_PORT
	fmt.Println("🚀 Server berjalan di port " + port)

	if err := app.Listen(":" + port); err != nil {
		log.Fatal(err)
	}

}

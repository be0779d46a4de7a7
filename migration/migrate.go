// migration/migrate.go
package migration

import (
	"fiber-erp/models"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Material{},
		&models.Article{},
		&models.BOMLine{},
		&models.PurchaseOrder{},
		&models.ManufacturingOrder{},
		&models.WorkOrder{},
		&models.StockLot{},
		&models.MaterialReservation{},
		&models.StockOpname{},
	)
}

package services

import (
	"testing"
	"time"

	"fiber-erp/controllers/idgen"
	"fiber-erp/migration"
	"fiber-erp/models"
	"fiber-erp/types"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// satu koneksi supaya semua goroutine lihat database in-memory yang sama
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, migration.Migrate(db))
	return db
}

func newID() types.SnowflakeID {
	return types.SnowflakeID(idgen.GenerateID())
}

func seedMaterial(t *testing.T, db *gorm.DB, code, materialType, uom string) models.Material {
	t.Helper()
	m := models.Material{
		ID:           newID(),
		MaterialCode: code,
		MaterialName: code,
		MaterialType: materialType,
		Uom:          uom,
	}
	require.NoError(t, db.Create(&m).Error)
	return m
}

func seedArticle(t *testing.T, db *gorm.DB, code string, bomAvailable bool) models.Article {
	t.Helper()
	a := models.Article{
		ID:           newID(),
		ArticleCode:  code,
		ArticleName:  code,
		Uom:          "pcs",
		BomAvailable: bomAvailable,
	}
	require.NoError(t, db.Create(&a).Error)
	return a
}

func seedRootBOMLine(t *testing.T, db *gorm.DB, articleID types.SnowflakeID, material models.Material, qtyPerUnit float64) models.BOMLine {
	t.Helper()
	line := models.BOMLine{
		ID:           newID(),
		ArticleID:    &articleID,
		MaterialID:   material.ID,
		QtyPerUnit:   qtyPerUnit,
		Uom:          material.Uom,
		MaterialType: material.MaterialType,
	}
	require.NoError(t, db.Create(&line).Error)
	return line
}

func seedChildBOMLine(t *testing.T, db *gorm.DB, parentMaterialID types.SnowflakeID, material models.Material, qtyPerUnit float64) models.BOMLine {
	t.Helper()
	line := models.BOMLine{
		ID:               newID(),
		ParentMaterialID: &parentMaterialID,
		MaterialID:       material.ID,
		QtyPerUnit:       qtyPerUnit,
		Uom:              material.Uom,
		MaterialType:     material.MaterialType,
	}
	require.NoError(t, db.Create(&line).Error)
	return line
}

func seedLot(t *testing.T, db *gorm.DB, materialID types.SnowflakeID, lotNumber string, qty float64, fifoDate time.Time) models.StockLot {
	t.Helper()
	lot := models.StockLot{
		ID:         newID(),
		MaterialID: materialID,
		Location:   "WH1",
		LotNumber:  lotNumber,
		Quantity:   qty,
		FifoDate:   fifoDate,
	}
	require.NoError(t, db.Create(&lot).Error)
	return lot
}

func seedPurchaseOrder(t *testing.T, db *gorm.DB, poNumber, poType string, articleID *types.SnowflakeID, qty float64, poKainID *types.SnowflakeID, week, destination string) models.PurchaseOrder {
	t.Helper()
	po := models.PurchaseOrder{
		ID:          newID(),
		PoNumber:    poNumber,
		PoType:      poType,
		ArticleID:   articleID,
		Quantity:    qty,
		PoKainID:    poKainID,
		Week:        week,
		Destination: destination,
	}
	require.NoError(t, db.Create(&po).Error)
	return po
}

// database/seeder.go
package database

import (
	"errors"
	"fmt"
	"time"

	"fiber-erp/controllers/idgen"
	"fiber-erp/models"
	"fiber-erp/types"

	"golang.org/x/exp/rand"
	"gorm.io/gorm"
)

func RunSeeders(db *gorm.DB) {
	SeedMaterials(db)
	SeedArticles(db)
	SeedStockLots(db)
}

func SeedMaterials(db *gorm.DB) {
	materials := []models.Material{
		{MaterialCode: "FAB-COTTON-30S", MaterialName: "Cotton Combed 30s", MaterialType: models.MaterialTypeFabric, Uom: "m"},
		{MaterialCode: "LBL-WOVEN-MAIN", MaterialName: "Woven Main Label", MaterialType: models.MaterialTypeLabel, Uom: "pcs"},
		{MaterialCode: "ACC-BUTTON-12MM", MaterialName: "Button 12mm", MaterialType: models.MaterialTypeAccessory, Uom: "pcs"},
		{MaterialCode: "RAW-THREAD-402", MaterialName: "Sewing Thread 40/2", MaterialType: models.MaterialTypeRaw, Uom: "cone"},
	}

	for _, m := range materials {
		var existing models.Material
		if err := db.Where("material_code = ?", m.MaterialCode).First(&existing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				m.ID = types.SnowflakeID(idgen.GenerateID())
				db.Create(&m)
			}
		}
	}
}

func SeedArticles(db *gorm.DB) {
	var article models.Article
	if err := db.Where("article_code = ?", "ART-TSHIRT-BASIC").First(&article).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return
		}
		article = models.Article{
			ID:          types.SnowflakeID(idgen.GenerateID()),
			ArticleCode: "ART-TSHIRT-BASIC",
			ArticleName: "Basic T-Shirt",
			Uom:         "pcs",
		}
		if err := db.Create(&article).Error; err != nil {
			return
		}
	}

	var count int64
	db.Model(&models.BOMLine{}).Where("article_id = ?", article.ID).Count(&count)
	if count > 0 {
		return
	}

	perUnit := map[string]float64{
		"FAB-COTTON-30S":  1.5,
		"LBL-WOVEN-MAIN":  1,
		"ACC-BUTTON-12MM": 3,
		"RAW-THREAD-402":  0.2,
	}

	for code, qty := range perUnit {
		var material models.Material
		if err := db.Where("material_code = ?", code).First(&material).Error; err != nil {
			continue
		}
		articleID := article.ID
		line := models.BOMLine{
			ID:           types.SnowflakeID(idgen.GenerateID()),
			ArticleID:    &articleID,
			MaterialID:   material.ID,
			QtyPerUnit:   qty,
			Uom:          material.Uom,
			MaterialType: material.MaterialType,
		}
		db.Create(&line)
	}

	db.Model(&models.Article{}).Where("id = ?", article.ID).Update("bom_available", true)
}

func SeedStockLots(db *gorm.DB) {
	var count int64
	db.Model(&models.StockLot{}).Count(&count)
	if count > 0 {
		return
	}

	var materials []models.Material
	if err := db.Find(&materials).Error; err != nil {
		return
	}

	for _, material := range materials {
		// Beberapa lot per material dengan umur beda supaya urutan FIFO kelihatan
		for i := 0; i < 3; i++ {
			lot := models.StockLot{
				ID:         types.SnowflakeID(idgen.GenerateID()),
				MaterialID: material.ID,
				Location:   fmt.Sprintf("RM-%02d-%02d", rand.Intn(5)+1, rand.Intn(20)+1),
				LotNumber:  fmt.Sprintf("LOT-%s-%d", material.MaterialCode, i+1),
				Quantity:   float64(rand.Intn(400) + 100),
				FifoDate:   time.Now().AddDate(0, 0, -(30 - i*10)),
			}
			db.Create(&lot)
		}
	}
}

package models

import (
	"fiber-erp/types"

	"gorm.io/gorm"
)

// BOMLine satu baris resep. Baris level atas menunjuk article_id,
// baris level bawah (komponen dari WIP) menunjuk parent_material_id.
type BOMLine struct {
	gorm.Model
	ID               types.SnowflakeID  `json:"id" gorm:"primaryKey"`
	ArticleID        *types.SnowflakeID `json:"article_id" gorm:"index;default:null"`
	ParentMaterialID *types.SnowflakeID `json:"parent_material_id" gorm:"index;default:null"`
	MaterialID       types.SnowflakeID  `json:"material_id" gorm:"index" validate:"required"`
	QtyPerUnit       float64            `json:"qty_per_unit" gorm:"type:decimal(12,4)" validate:"required,gt=0"`
	Uom              string             `json:"uom"`
	MaterialType     string             `json:"material_type"`
	CreatedBy        int
	UpdatedBy        int
	DeletedBy        int
}

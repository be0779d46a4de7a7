package models

import (
	"fiber-erp/types"

	"gorm.io/gorm"
)

// MaterialType jenis material dalam BOM
const (
	MaterialTypeFabric    = "FABRIC"
	MaterialTypeLabel     = "LABEL"
	MaterialTypeAccessory = "ACCESSORY"
	MaterialTypeRaw       = "RAW"
	MaterialTypeWip       = "WIP"
)

type Material struct {
	gorm.Model
	ID           types.SnowflakeID `json:"id" gorm:"primaryKey"`
	MaterialCode string            `json:"material_code" gorm:"unique" validate:"required"`
	MaterialName string            `json:"material_name"`
	MaterialType string            `json:"material_type" validate:"required"`
	Uom          string            `json:"uom"`
	CreatedBy    int
	UpdatedBy    int
	DeletedBy    int
}

func ValidMaterialType(t string) bool {
	switch t {
	case MaterialTypeFabric, MaterialTypeLabel, MaterialTypeAccessory, MaterialTypeRaw, MaterialTypeWip:
		return true
	}
	return false
}

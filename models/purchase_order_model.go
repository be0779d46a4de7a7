package models

import (
	"fiber-erp/types"

	"gorm.io/gorm"
)

// POType jenis purchase order
const (
	POTypeKain        = "KAIN"
	POTypeLabel       = "LABEL"
	POTypeAccessories = "ACCESSORIES"
)

type PurchaseOrder struct {
	gorm.Model
	ID          types.SnowflakeID  `json:"id" gorm:"primaryKey"`
	PoNumber    string             `json:"po_number" gorm:"unique" validate:"required"`
	PoType      string             `json:"po_type" validate:"required"`
	ArticleID   *types.SnowflakeID `json:"article_id" gorm:"default:null"` // wajib untuk PO KAIN
	Quantity    float64            `json:"quantity" gorm:"type:decimal(12,4);default:0"`
	PoKainID    *types.SnowflakeID `json:"po_kain_id" gorm:"default:null"` // wajib untuk PO LABEL
	Week        string             `json:"week"`
	Destination string             `json:"destination"`
	CreatedBy   int
	UpdatedBy   int
	DeletedBy   int
}

func ValidPOType(t string) bool {
	switch t {
	case POTypeKain, POTypeLabel, POTypeAccessories:
		return true
	}
	return false
}

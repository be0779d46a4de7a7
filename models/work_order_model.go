package models

import (
	"fiber-erp/types"

	"gorm.io/gorm"
)

// Department urutan routing produksi garment
const (
	DeptCutting    = "CUTTING"
	DeptEmbroidery = "EMBROIDERY"
	DeptSewing     = "SEWING"
	DeptFinishing  = "FINISHING"
	DeptPacking    = "PACKING"
)

// WOStatus status SPK per departemen
const (
	WOStatusPending   = "PENDING"
	WOStatusReady     = "READY"
	WOStatusRunning   = "RUNNING"
	WOStatusPaused    = "PAUSED"
	WOStatusCompleted = "COMPLETED"
	WOStatusCancelled = "CANCELLED"
)

// Routing urutan departemen waktu generate SPK dari MO
var Routing = []string{DeptCutting, DeptEmbroidery, DeptSewing, DeptFinishing, DeptPacking}

type WorkOrder struct {
	gorm.Model
	ID            types.SnowflakeID `json:"id" gorm:"primaryKey"`
	SpkNumber     string            `json:"spk_number" gorm:"unique"`
	MoID          types.SnowflakeID `json:"mo_id" gorm:"index"`
	Department    string            `json:"department"`
	Status        string            `json:"status" gorm:"default:'PENDING'"`
	TargetQty     float64           `json:"target_qty" gorm:"type:decimal(12,4)"`
	ProductionQty float64           `json:"production_qty" gorm:"type:decimal(12,4);default:0"`
	GoodQty       float64           `json:"good_qty" gorm:"type:decimal(12,4);default:0"`
	DefectQty     float64           `json:"defect_qty" gorm:"type:decimal(12,4);default:0"`
	ReworkQty     float64           `json:"rework_qty" gorm:"type:decimal(12,4);default:0"`
	CreatedBy     int
	UpdatedBy     int
	DeletedBy     int
}

func (w *WorkOrder) IsTerminal() bool {
	return w.Status == WOStatusCompleted || w.Status == WOStatusCancelled
}

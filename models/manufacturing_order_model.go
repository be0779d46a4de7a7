package models

import (
	"time"

	"fiber-erp/types"

	"gorm.io/gorm"
)

// MOStatus status manufacturing order
const (
	MOStatusDraft      = "DRAFT"
	MOStatusPartial    = "PARTIAL"
	MOStatusReleased   = "RELEASED"
	MOStatusInProgress = "IN_PROGRESS"
	MOStatusCompleted  = "COMPLETED"
	MOStatusCancelled  = "CANCELLED"
)

type ManufacturingOrder struct {
	gorm.Model
	ID                types.SnowflakeID  `json:"id" gorm:"primaryKey"`
	MoNumber          string             `json:"mo_number" gorm:"unique"`
	ArticleID         types.SnowflakeID  `json:"article_id" gorm:"index"`
	TargetQty         float64            `json:"target_qty" gorm:"type:decimal(12,4)"`
	Status            string             `json:"status" gorm:"default:'DRAFT'"`
	PoKainID          types.SnowflakeID  `json:"po_kain_id"`
	PoLabelID         *types.SnowflakeID `json:"po_label_id" gorm:"default:null"`
	Week              string             `json:"week"`
	Destination       string             `json:"destination"`
	WeekLocked        bool               `json:"week_locked" gorm:"default:false"`
	DestinationLocked bool               `json:"destination_locked" gorm:"default:false"`
	UpgradedAt        *time.Time         `json:"upgraded_at" gorm:"default:null"`
	Version           int                `json:"version" gorm:"default:1"` // optimistic lock
	CreatedBy         int
	UpdatedBy         int
	DeletedBy         int
}

func (m *ManufacturingOrder) IsTerminal() bool {
	return m.Status == MOStatusCompleted || m.Status == MOStatusCancelled
}

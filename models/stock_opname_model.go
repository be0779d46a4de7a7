package models

import (
	"time"

	"fiber-erp/types"

	"gorm.io/gorm"
)

// OpnameState status approval hasil hitung fisik
const (
	OpnameAutoApplied     = "AUTO_APPLIED"
	OpnamePendingApproval = "PENDING_APPROVAL"
	OpnameApproved        = "APPROVED"
	OpnameRejected        = "REJECTED"
)

type StockOpname struct {
	gorm.Model
	ID              types.SnowflakeID `json:"id" gorm:"primaryKey"`
	Code            string            `json:"code" gorm:"unique"`
	MaterialID      types.SnowflakeID `json:"material_id" gorm:"index"`
	SystemQty       float64           `json:"system_qty" gorm:"type:decimal(12,4)"`
	PhysicalQty     float64           `json:"physical_qty" gorm:"type:decimal(12,4)"`
	VarianceQty     float64           `json:"variance_qty" gorm:"type:decimal(12,4)"`
	VariancePct     float64           `json:"variance_pct" gorm:"type:decimal(12,4)"`
	ApprovalState   string            `json:"approval_state"`
	MandatoryReview bool              `json:"mandatory_review" gorm:"default:false"`
	RejectReason    string            `json:"reject_reason"`
	ResolvedAt      *time.Time        `json:"resolved_at" gorm:"default:null"`
	CreatedBy       int
	UpdatedBy       int
	DeletedBy       int
}

package models

import (
	"time"

	"fiber-erp/types"

	"gorm.io/gorm"
)

// ReservationState status klaim material terhadap lot
const (
	ReservationReserved = "RESERVED"
	ReservationConsumed = "CONSUMED"
	ReservationReleased = "RELEASED"
)

type StockLot struct {
	gorm.Model
	ID         types.SnowflakeID `json:"id" gorm:"primaryKey"`
	MaterialID types.SnowflakeID `json:"material_id" gorm:"index"`
	Location   string            `json:"location"`
	LotNumber  string            `json:"lot_number" gorm:"unique"`
	Quantity   float64           `json:"quantity" gorm:"type:decimal(12,4);default:0"`
	FifoDate   time.Time         `json:"fifo_date" gorm:"index"`
	CreatedBy  int
	UpdatedBy  int
	DeletedBy  int
}

type MaterialReservation struct {
	gorm.Model
	ID          types.SnowflakeID  `json:"id" gorm:"primaryKey"`
	WoID        types.SnowflakeID  `json:"wo_id" gorm:"index"`
	MaterialID  types.SnowflakeID  `json:"material_id" gorm:"index"`
	StockLotID  *types.SnowflakeID `json:"stock_lot_id" gorm:"index;default:null"` // null = debt
	QtyReserved float64            `json:"qty_reserved" gorm:"type:decimal(12,4)"`
	Uom         string             `json:"uom"`
	State       string             `json:"state" gorm:"default:'RESERVED'"`
	CreatedBy   int
	UpdatedBy   int
	DeletedBy   int
}

// IsDebt true kalau reservation tidak dibackup lot fisik
func (r *MaterialReservation) IsDebt() bool {
	return r.StockLotID == nil
}

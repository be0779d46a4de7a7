package services

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"fiber-erp/apperr"
	"fiber-erp/controllers/idgen"
	"fiber-erp/models"
	"fiber-erp/types"

	"gorm.io/gorm"
)

// Ambang toleransi variance stock opname (persen absolut)
const (
	opnameAutoApplyPct = 2.0
	opnameMandatoryPct = 5.0
)

// OpnameService rekonsiliasi hasil hitung fisik vs ledger.
// Variance kecil langsung di-apply, variance besar ditahan sampai di-approve.
type OpnameService struct {
	DB    *gorm.DB
	Alloc *AllocationService
	Mail  *MailService
}

func NewOpnameService(db *gorm.DB, alloc *AllocationService, mail *MailService) *OpnameService {
	return &OpnameService{DB: db, Alloc: alloc, Mail: mail}
}

func (s *OpnameService) generateOpnameCode(tx *gorm.DB) (string, error) {
	var lastOpname models.StockOpname
	if err := tx.Unscoped().Last(&lastOpname).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	currentYear := time.Now().Format("2006")
	currentMonth := time.Now().Format("01")
	currentDay := time.Now().Format("02")

	var code string
	if lastOpname.Code != "" && len(lastOpname.Code) == 15 {
		lastSeq := lastOpname.Code[len(lastOpname.Code)-4:]
		if currentDay != lastOpname.Code[9:11] {
			code = fmt.Sprintf("OPN%s%s%s%04d", currentYear, currentMonth, currentDay, 1)
		} else {
			lastSeqInt, _ := strconv.Atoi(lastSeq)
			code = fmt.Sprintf("OPN%s%s%s%04d", currentYear, currentMonth, currentDay, lastSeqInt+1)
		}
	} else {
		code = fmt.Sprintf("OPN%s%s%s%04d", currentYear, currentMonth, currentDay, 1)
	}

	return code, nil
}

// RecordOpname hitung variance lawan ledger saat ini dan tentukan jalur approval
func (s *OpnameService) RecordOpname(materialID types.SnowflakeID, physicalQty float64, userID int) (*models.StockOpname, error) {
	if physicalQty < 0 {
		return nil, apperr.Validation("physical_qty must not be negative")
	}

	var material models.Material
	if err := s.DB.First(&material, "id = ?", materialID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Validation("material %d not found", int64(materialID))
		}
		return nil, err
	}

	var record models.StockOpname
	err := s.Alloc.WithMaterialLocks([]types.SnowflakeID{materialID}, func() error {
		return s.DB.Transaction(func(tx *gorm.DB) error {
			systemQty, err := s.Alloc.LedgerQty(tx, materialID)
			if err != nil {
				return err
			}

			varianceQty := physicalQty - systemQty
			variancePct := 0.0
			if systemQty != 0 {
				variancePct = varianceQty / systemQty * 100
			}

			code, err := s.generateOpnameCode(tx)
			if err != nil {
				return err
			}

			record = models.StockOpname{
				ID:          types.SnowflakeID(idgen.GenerateID()),
				Code:        code,
				MaterialID:  materialID,
				SystemQty:   systemQty,
				PhysicalQty: physicalQty,
				VarianceQty: varianceQty,
				VariancePct: variancePct,
				CreatedBy:   userID,
			}

			absPct := math.Abs(variancePct)
			switch {
			case absPct <= opnameAutoApplyPct:
				record.ApprovalState = models.OpnameAutoApplied
				now := time.Now()
				record.ResolvedAt = &now
				if err := s.applyAdjustment(tx, materialID, physicalQty, code, userID); err != nil {
					return err
				}
			case absPct <= opnameMandatoryPct:
				record.ApprovalState = models.OpnamePendingApproval
			default:
				record.ApprovalState = models.OpnamePendingApproval
				record.MandatoryReview = true
			}

			return tx.Create(&record).Error
		})
	})
	if err != nil {
		return nil, err
	}

	if record.ApprovalState == models.OpnamePendingApproval {
		s.Mail.NotifyOpnamePending(&record, &material)
	}

	return &record, nil
}

// applyAdjustment set ledger ke target secara absolut, bukan delta di atas nilai sekarang.
// Write-down jalan dari lot termuda mundur, write-up masuk lot koreksi baru.
func (s *OpnameService) applyAdjustment(tx *gorm.DB, materialID types.SnowflakeID, targetQty float64, code string, userID int) error {
	current, err := s.Alloc.LedgerQty(tx, materialID)
	if err != nil {
		return err
	}
	delta := targetQty - current
	if delta == 0 {
		return nil
	}

	if delta > 0 {
		lot := models.StockLot{
			ID:         types.SnowflakeID(idgen.GenerateID()),
			MaterialID: materialID,
			Location:   "OPNAME",
			LotNumber:  "ADJ-" + code,
			Quantity:   delta,
			FifoDate:   time.Now(),
			CreatedBy:  userID,
		}
		return tx.Create(&lot).Error
	}

	remaining := -delta
	var lots []models.StockLot
	if err := tx.Where("material_id = ? AND quantity > 0", materialID).
		Order("fifo_date DESC, id DESC").
		Find(&lots).Error; err != nil {
		return err
	}

	// Qty yang masih diklaim reservation RESERVED tidak boleh ikut terpotong,
	// supaya consume sesudahnya tidak membawa lot ke minus
	claimed, err := s.Alloc.claimedPerLot(tx, materialID)
	if err != nil {
		return err
	}

	for _, lot := range lots {
		if remaining <= 0 {
			break
		}
		available := lot.Quantity - claimed[lot.ID]
		if available <= 0 {
			continue
		}
		cut := remaining
		if available < cut {
			cut = available
		}
		if err := tx.Model(&models.StockLot{}).
			Where("id = ?", lot.ID).
			Updates(map[string]interface{}{
				"quantity":   gorm.Expr("quantity - ?", cut),
				"updated_by": userID,
				"updated_at": time.Now(),
			}).Error; err != nil {
			return err
		}
		remaining -= cut
	}
	if remaining > 0 {
		return apperr.Conflict("write-down of %.4f exceeds unreserved stock for material %d, release reservations first",
			-delta, int64(materialID))
	}
	return nil
}

// Approve terapkan physical_qty yang tercatat sebagai absolute set ke ledger
func (s *OpnameService) Approve(opnameID types.SnowflakeID, userID int) (*models.StockOpname, error) {
	var record models.StockOpname
	if err := s.DB.First(&record, "id = ?", opnameID).Error; err != nil {
		return nil, err
	}
	if record.ApprovalState != models.OpnamePendingApproval {
		return nil, apperr.InvalidState("opname %s is %s, only PENDING_APPROVAL can be approved", record.Code, record.ApprovalState)
	}

	err := s.Alloc.WithMaterialLocks([]types.SnowflakeID{record.MaterialID}, func() error {
		return s.DB.Transaction(func(tx *gorm.DB) error {
			if err := s.applyAdjustment(tx, record.MaterialID, record.PhysicalQty, record.Code, userID); err != nil {
				return err
			}
			now := time.Now()
			record.ApprovalState = models.OpnameApproved
			record.ResolvedAt = &now
			record.UpdatedBy = userID
			return tx.Save(&record).Error
		})
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Reject tutup opname tanpa menyentuh ledger, alasan wajib diisi
func (s *OpnameService) Reject(opnameID types.SnowflakeID, reason string, userID int) (*models.StockOpname, error) {
	if reason == "" {
		return nil, apperr.Validation("reject reason is required")
	}

	var record models.StockOpname
	if err := s.DB.First(&record, "id = ?", opnameID).Error; err != nil {
		return nil, err
	}
	if record.ApprovalState != models.OpnamePendingApproval {
		return nil, apperr.InvalidState("opname %s is %s, only PENDING_APPROVAL can be rejected", record.Code, record.ApprovalState)
	}

	now := time.Now()
	record.ApprovalState = models.OpnameRejected
	record.RejectReason = reason
	record.ResolvedAt = &now
	record.UpdatedBy = userID
	if err := s.DB.Save(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"fiber-erp/apperr"
	"fiber-erp/controllers/idgen"
	"fiber-erp/models"
	"fiber-erp/types"

	"gorm.io/gorm"
)

// deptMaterialTypes jenis material yang ditarik tiap departemen waktu reserve
var deptMaterialTypes = map[string][]string{
	models.DeptCutting:    {models.MaterialTypeFabric, models.MaterialTypeRaw},
	models.DeptEmbroidery: {models.MaterialTypeAccessory},
	models.DeptSewing:     {models.MaterialTypeAccessory},
	models.DeptFinishing:  {},
	models.DeptPacking:    {models.MaterialTypeLabel},
}

// ReleaseService state machine MO + SPK, termasuk gating per departemen
type ReleaseService struct {
	DB    *gorm.DB
	Bom   *BOMService
	Alloc *AllocationService
}

func NewReleaseService(db *gorm.DB, bom *BOMService, alloc *AllocationService) *ReleaseService {
	return &ReleaseService{DB: db, Bom: bom, Alloc: alloc}
}

// WorkOrderView SPK plus hasil evaluasi gating, dihitung ulang tiap read
type WorkOrderView struct {
	models.WorkOrder
	CanStart         bool   `json:"can_start"`
	DependencyReason string `json:"dependency_reason,omitempty"`
}

func (s *ReleaseService) generateMoNumber(tx *gorm.DB) (string, error) {
	var lastMo models.ManufacturingOrder
	if err := tx.Unscoped().Last(&lastMo).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	currentYear := time.Now().Format("2006")
	currentMonth := time.Now().Format("01")
	currentDay := time.Now().Format("02")

	var moNo string
	if lastMo.MoNumber != "" && len(lastMo.MoNumber) == 14 {
		lastSeq := lastMo.MoNumber[len(lastMo.MoNumber)-4:]
		if currentDay != lastMo.MoNumber[8:10] {
			moNo = fmt.Sprintf("MO%s%s%s%04d", currentYear, currentMonth, currentDay, 1)
		} else {
			lastSeqInt, _ := strconv.Atoi(lastSeq)
			moNo = fmt.Sprintf("MO%s%s%s%04d", currentYear, currentMonth, currentDay, lastSeqInt+1)
		}
	} else {
		moNo = fmt.Sprintf("MO%s%s%s%04d", currentYear, currentMonth, currentDay, 1)
	}

	return moNo, nil
}

// CreateMO bikin MO baru, PO Kain wajib, PO Label opsional.
// Kalau label ikut dilampirkan MO langsung RELEASED dan week/destination terkunci.
func (s *ReleaseService) CreateMO(articleID types.SnowflakeID, targetQty float64, poKainID types.SnowflakeID, poLabelID *types.SnowflakeID, userID int) (*models.ManufacturingOrder, error) {
	if targetQty <= 0 {
		return nil, apperr.Validation("target_qty must be greater than zero")
	}
	if poKainID == 0 {
		return nil, apperr.Validation("PO Kain is required to create a manufacturing order")
	}

	var article models.Article
	if err := s.DB.First(&article, "id = ?", articleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Validation("article %d not found", int64(articleID))
		}
		return nil, err
	}

	poKain, err := s.purchaseOrder(poKainID, models.POTypeKain)
	if err != nil {
		return nil, err
	}
	if poKain.ArticleID != nil && *poKain.ArticleID != articleID {
		return nil, apperr.Validation("PO Kain %s references a different article", poKain.PoNumber)
	}

	mo := models.ManufacturingOrder{
		ID:        types.SnowflakeID(idgen.GenerateID()),
		ArticleID: articleID,
		TargetQty: targetQty,
		Status:    models.MOStatusPartial,
		PoKainID:  poKainID,
		CreatedBy: userID,
	}

	if poLabelID != nil {
		poLabel, err := s.purchaseOrder(*poLabelID, models.POTypeLabel)
		if err != nil {
			return nil, err
		}
		if poLabel.PoKainID == nil || *poLabel.PoKainID != poKainID {
			return nil, apperr.Validation("PO Label %s does not reference PO Kain %s", poLabel.PoNumber, poKain.PoNumber)
		}
		mo.Status = models.MOStatusReleased
		mo.PoLabelID = poLabelID
		mo.Week = poLabel.Week
		mo.Destination = poLabel.Destination
		mo.WeekLocked = true
		mo.DestinationLocked = true
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		moNo, err := s.generateMoNumber(tx)
		if err != nil {
			return err
		}
		mo.MoNumber = moNo

		if err := tx.Create(&mo).Error; err != nil {
			return err
		}

		for _, dept := range models.Routing {
			wo := models.WorkOrder{
				ID:         types.SnowflakeID(idgen.GenerateID()),
				SpkNumber:  strings.Replace(moNo, "MO", "SPK", 1) + "-" + dept,
				MoID:       mo.ID,
				Department: dept,
				Status:     models.WOStatusPending,
				TargetQty:  targetQty,
				CreatedBy:  userID,
			}
			if err := tx.Create(&wo).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &mo, nil
}

func (s *ReleaseService) purchaseOrder(id types.SnowflakeID, wantType string) (*models.PurchaseOrder, error) {
	var po models.PurchaseOrder
	if err := s.DB.First(&po, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Validation("purchase order %d not found", int64(id))
		}
		return nil, err
	}
	if po.PoType != wantType {
		return nil, apperr.Validation("purchase order %s is type %s, expected %s", po.PoNumber, po.PoType, wantType)
	}
	return &po, nil
}

// UpgradeMO naikkan MO PARTIAL jadi RELEASED dengan PO Label.
// Idempotent: upgrade kedua dengan label yang sama tidak error dan tidak mengubah apa-apa.
func (s *ReleaseService) UpgradeMO(moID types.SnowflakeID, poLabelID types.SnowflakeID, userID int) (*models.ManufacturingOrder, error) {
	var mo models.ManufacturingOrder
	if err := s.DB.First(&mo, "id = ?", moID).Error; err != nil {
		return nil, err
	}

	if mo.Status == models.MOStatusReleased || mo.Status == models.MOStatusInProgress {
		if mo.PoLabelID != nil && *mo.PoLabelID == poLabelID {
			return &mo, nil
		}
		return nil, apperr.Conflict("manufacturing order %s is already released with a different PO Label", mo.MoNumber)
	}
	if mo.Status != models.MOStatusPartial {
		return nil, apperr.InvalidState("cannot upgrade manufacturing order %s in status %s", mo.MoNumber, mo.Status)
	}

	poLabel, err := s.purchaseOrder(poLabelID, models.POTypeLabel)
	if err != nil {
		return nil, err
	}
	if poLabel.PoKainID == nil || *poLabel.PoKainID != mo.PoKainID {
		return nil, apperr.Validation("PO Label %s does not reference the MO's PO Kain", poLabel.PoNumber)
	}

	if mo.WeekLocked && mo.Week != poLabel.Week {
		return nil, apperr.Conflict("week is locked to %s, PO Label carries %s", mo.Week, poLabel.Week)
	}
	if mo.DestinationLocked && mo.Destination != poLabel.Destination {
		return nil, apperr.Conflict("destination is locked to %s, PO Label carries %s", mo.Destination, poLabel.Destination)
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		// SPK yang sudah jalan waktu PARTIAL bikin MO langsung IN_PROGRESS setelah release
		var runningCount int64
		if err := tx.Model(&models.WorkOrder{}).
			Where("mo_id = ? AND status = ?", mo.ID, models.WOStatusRunning).
			Count(&runningCount).Error; err != nil {
			return err
		}

		newStatus := models.MOStatusReleased
		if runningCount > 0 {
			newStatus = models.MOStatusInProgress
		}

		now := time.Now()
		return s.updateMOVersioned(tx, &mo, map[string]interface{}{
			"status":             newStatus,
			"po_label_id":        poLabelID,
			"week":               poLabel.Week,
			"destination":        poLabel.Destination,
			"week_locked":        true,
			"destination_locked": true,
			"upgraded_at":        now,
			"updated_by":         userID,
		})
	})
	if err != nil {
		return nil, err
	}

	if err := s.DB.First(&mo, "id = ?", moID).Error; err != nil {
		return nil, err
	}
	return &mo, nil
}

// updateMOVersioned optimistic lock, dua upgrade/cancel barengan tidak boleh dua-duanya menang
func (s *ReleaseService) updateMOVersioned(tx *gorm.DB, mo *models.ManufacturingOrder, updates map[string]interface{}) error {
	updates["version"] = mo.Version + 1
	res := tx.Model(&models.ManufacturingOrder{}).
		Where("id = ? AND version = ?", mo.ID, mo.Version).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.Conflict("manufacturing order %s was modified concurrently, refetch and retry", mo.MoNumber)
	}
	mo.Version++
	return nil
}

// CanStart gating per departemen: PARTIAL cuma CUTTING dan EMBROIDERY yang boleh jalan
func (s *ReleaseService) CanStart(mo *models.ManufacturingOrder, wo *models.WorkOrder) (bool, string) {
	switch mo.Status {
	case models.MOStatusReleased, models.MOStatusInProgress:
		return true, ""
	case models.MOStatusPartial:
		if wo.Department == models.DeptCutting || wo.Department == models.DeptEmbroidery {
			return true, ""
		}
		return false, "waiting PO Label"
	case models.MOStatusDraft:
		return false, "waiting PO Kain"
	default:
		return false, "manufacturing order is " + mo.Status
	}
}

// ListWorkOrders SPK satu MO plus gating yang dihitung saat read
func (s *ReleaseService) ListWorkOrders(moID types.SnowflakeID) ([]WorkOrderView, error) {
	var mo models.ManufacturingOrder
	if err := s.DB.First(&mo, "id = ?", moID).Error; err != nil {
		return nil, err
	}

	var wos []models.WorkOrder
	if err := s.DB.Where("mo_id = ?", moID).Order("id ASC").Find(&wos).Error; err != nil {
		return nil, err
	}

	views := make([]WorkOrderView, 0, len(wos))
	for _, wo := range wos {
		canStart, reason := s.CanStart(&mo, &wo)
		views = append(views, WorkOrderView{WorkOrder: wo, CanStart: canStart, DependencyReason: reason})
	}
	return views, nil
}

// ReserveMaterials PENDING → READY: explode kebutuhan departemen lalu reserve FIFO.
// Return kedua = true kalau ada reservation debt.
func (s *ReleaseService) ReserveMaterials(woID types.SnowflakeID, allowDebt bool, userID int) ([]models.MaterialReservation, bool, error) {
	var wo models.WorkOrder
	if err := s.DB.First(&wo, "id = ?", woID).Error; err != nil {
		return nil, false, err
	}
	var mo models.ManufacturingOrder
	if err := s.DB.First(&mo, "id = ?", wo.MoID).Error; err != nil {
		return nil, false, err
	}

	if wo.Status != models.WOStatusPending {
		if wo.Status == models.WOStatusReady {
			return nil, false, apperr.InvalidState("materials already reserved for %s", wo.SpkNumber)
		}
		return nil, false, apperr.InvalidState("cannot reserve for %s in status %s", wo.SpkNumber, wo.Status)
	}

	if ok, reason := s.CanStart(&mo, &wo); !ok {
		return nil, false, apperr.InvalidState("%s cannot start: %s", wo.SpkNumber, reason)
	}

	allLines, err := s.Bom.Explode(mo.ArticleID, wo.TargetQty, "")
	if err != nil {
		return nil, false, err
	}

	wanted := map[string]bool{}
	for _, t := range deptMaterialTypes[wo.Department] {
		wanted[t] = true
	}
	var lines []RequirementLine
	var materialIDs []types.SnowflakeID
	for _, line := range allLines {
		if wanted[line.MaterialType] {
			lines = append(lines, line)
			materialIDs = append(materialIDs, line.MaterialID)
		}
	}

	var reservations []models.MaterialReservation
	err = s.Alloc.WithMaterialLocks(materialIDs, func() error {
		return s.DB.Transaction(func(tx *gorm.DB) error {
			var err error
			reservations, err = s.Alloc.ReserveTx(tx, wo.ID, lines, allowDebt, userID)
			if err != nil {
				return err
			}
			return tx.Model(&models.WorkOrder{}).
				Where("id = ?", wo.ID).
				Updates(map[string]interface{}{
					"status":     models.WOStatusReady,
					"updated_by": userID,
					"updated_at": time.Now(),
				}).Error
		})
	})
	if err != nil {
		return nil, false, err
	}

	hasDebt := false
	for _, r := range reservations {
		if r.IsDebt() {
			hasDebt = true
			break
		}
	}
	return reservations, hasDebt, nil
}

// StartWO READY → RUNNING, reservation RESERVED dikonsumsi dan stok fisik terpotong
func (s *ReleaseService) StartWO(woID types.SnowflakeID, userID int) (*models.WorkOrder, error) {
	var wo models.WorkOrder
	if err := s.DB.First(&wo, "id = ?", woID).Error; err != nil {
		return nil, err
	}
	if wo.Status != models.WOStatusReady {
		return nil, apperr.InvalidState("cannot start %s in status %s", wo.SpkNumber, wo.Status)
	}

	materialIDs, err := s.Alloc.materialIDsForWO(wo.ID)
	if err != nil {
		return nil, err
	}

	err = s.Alloc.WithMaterialLocks(materialIDs, func() error {
		return s.DB.Transaction(func(tx *gorm.DB) error {
			if _, err := s.Alloc.ConsumeTx(tx, wo.ID, userID); err != nil {
				return err
			}

			if err := tx.Model(&models.WorkOrder{}).
				Where("id = ?", wo.ID).
				Updates(map[string]interface{}{
					"status":     models.WOStatusRunning,
					"updated_by": userID,
					"updated_at": time.Now(),
				}).Error; err != nil {
				return err
			}

			var mo models.ManufacturingOrder
			if err := tx.First(&mo, "id = ?", wo.MoID).Error; err != nil {
				return err
			}
			if mo.Status == models.MOStatusReleased {
				return s.updateMOVersioned(tx, &mo, map[string]interface{}{
					"status":     models.MOStatusInProgress,
					"updated_by": userID,
				})
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	if err := s.DB.First(&wo, "id = ?", woID).Error; err != nil {
		return nil, err
	}
	return &wo, nil
}

// PauseWO RUNNING → PAUSED
func (s *ReleaseService) PauseWO(woID types.SnowflakeID, userID int) (*models.WorkOrder, error) {
	return s.transitionWO(woID, models.WOStatusRunning, models.WOStatusPaused, userID)
}

// ResumeWO PAUSED → RUNNING
func (s *ReleaseService) ResumeWO(woID types.SnowflakeID, userID int) (*models.WorkOrder, error) {
	return s.transitionWO(woID, models.WOStatusPaused, models.WOStatusRunning, userID)
}

// transitionWO update bersyarat di kolom status saja, bukan Save seluruh row,
// supaya progress yang masuk barengan tidak tertimpa hasil read basi
func (s *ReleaseService) transitionWO(woID types.SnowflakeID, from, to string, userID int) (*models.WorkOrder, error) {
	var wo models.WorkOrder
	if err := s.DB.First(&wo, "id = ?", woID).Error; err != nil {
		return nil, err
	}
	if wo.Status != from {
		return nil, apperr.InvalidState("cannot move %s from %s to %s", wo.SpkNumber, wo.Status, to)
	}

	res := s.DB.Model(&models.WorkOrder{}).
		Where("id = ? AND status = ?", wo.ID, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_by": userID,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, apperr.Conflict("%s was modified concurrently, refetch and retry", wo.SpkNumber)
	}

	if err := s.DB.First(&wo, "id = ?", woID).Error; err != nil {
		return nil, err
	}
	return &wo, nil
}

// RecordProgress entry harian, produksi harus sama dengan good + defect
func (s *ReleaseService) RecordProgress(woID types.SnowflakeID, production, good, defect, rework float64, userID int) (*models.WorkOrder, error) {
	if production < 0 || good < 0 || defect < 0 || rework < 0 {
		return nil, apperr.Validation("progress quantities must not be negative")
	}
	if production != good+defect {
		return nil, apperr.Validation("production qty must equal good qty plus defect qty")
	}

	var wo models.WorkOrder
	if err := s.DB.First(&wo, "id = ?", woID).Error; err != nil {
		return nil, err
	}
	if wo.Status != models.WOStatusRunning {
		return nil, apperr.InvalidState("cannot record progress on %s in status %s", wo.SpkNumber, wo.Status)
	}

	if err := s.DB.Model(&models.WorkOrder{}).
		Where("id = ?", wo.ID).
		Updates(map[string]interface{}{
			"production_qty": gorm.Expr("production_qty + ?", production),
			"good_qty":       gorm.Expr("good_qty + ?", good),
			"defect_qty":     gorm.Expr("defect_qty + ?", defect),
			"rework_qty":     gorm.Expr("rework_qty + ?", rework),
			"updated_by":     userID,
			"updated_at":     time.Now(),
		}).Error; err != nil {
		return nil, err
	}

	if err := s.DB.First(&wo, "id = ?", woID).Error; err != nil {
		return nil, err
	}
	return &wo, nil
}

// CompleteWO RUNNING → COMPLETED, SPK terakhir selesai menyeret MO ikut COMPLETED
func (s *ReleaseService) CompleteWO(woID types.SnowflakeID, userID int) (*models.WorkOrder, error) {
	var wo models.WorkOrder
	if err := s.DB.First(&wo, "id = ?", woID).Error; err != nil {
		return nil, err
	}
	if wo.Status != models.WOStatusRunning {
		return nil, apperr.InvalidState("cannot complete %s in status %s", wo.SpkNumber, wo.Status)
	}
	if wo.ProductionQty <= 0 {
		return nil, apperr.InvalidState("no production recorded yet on %s", wo.SpkNumber)
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.WorkOrder{}).
			Where("id = ?", wo.ID).
			Updates(map[string]interface{}{
				"status":     models.WOStatusCompleted,
				"updated_by": userID,
				"updated_at": time.Now(),
			}).Error; err != nil {
			return err
		}

		var siblings []models.WorkOrder
		if err := tx.Where("mo_id = ?", wo.MoID).Find(&siblings).Error; err != nil {
			return err
		}
		completedAny := false
		for _, sib := range siblings {
			if sib.ID == wo.ID {
				completedAny = true
				continue
			}
			if !sib.IsTerminal() {
				return nil
			}
			if sib.Status == models.WOStatusCompleted {
				completedAny = true
			}
		}
		if !completedAny {
			return nil
		}

		var mo models.ManufacturingOrder
		if err := tx.First(&mo, "id = ?", wo.MoID).Error; err != nil {
			return err
		}
		if mo.IsTerminal() {
			return nil
		}
		return s.updateMOVersioned(tx, &mo, map[string]interface{}{
			"status":     models.MOStatusCompleted,
			"updated_by": userID,
		})
	})
	if err != nil {
		return nil, err
	}

	if err := s.DB.First(&wo, "id = ?", woID).Error; err != nil {
		return nil, err
	}
	return &wo, nil
}

// CancelWO idempotent, klaim RESERVED dilepas, yang CONSUMED dibiarkan
func (s *ReleaseService) CancelWO(woID types.SnowflakeID, userID int) (*models.WorkOrder, error) {
	var wo models.WorkOrder
	if err := s.DB.First(&wo, "id = ?", woID).Error; err != nil {
		return nil, err
	}
	if wo.Status == models.WOStatusCancelled {
		return &wo, nil
	}
	if wo.Status == models.WOStatusCompleted {
		return nil, apperr.InvalidState("cannot cancel completed %s", wo.SpkNumber)
	}

	materialIDs, err := s.Alloc.materialIDsForWO(wo.ID)
	if err != nil {
		return nil, err
	}

	err = s.Alloc.WithMaterialLocks(materialIDs, func() error {
		return s.DB.Transaction(func(tx *gorm.DB) error {
			if err := s.Alloc.ReleaseForWOTx(tx, wo.ID, userID); err != nil {
				return err
			}
			return tx.Model(&models.WorkOrder{}).
				Where("id = ?", wo.ID).
				Updates(map[string]interface{}{
					"status":     models.WOStatusCancelled,
					"updated_by": userID,
					"updated_at": time.Now(),
				}).Error
		})
	})
	if err != nil {
		return nil, err
	}

	wo.Status = models.WOStatusCancelled
	return &wo, nil
}

// CancelMO idempotent, cascade CANCELLED ke semua SPK non-terminal
func (s *ReleaseService) CancelMO(moID types.SnowflakeID, userID int) (*models.ManufacturingOrder, error) {
	var mo models.ManufacturingOrder
	if err := s.DB.First(&mo, "id = ?", moID).Error; err != nil {
		return nil, err
	}
	if mo.Status == models.MOStatusCancelled {
		return &mo, nil
	}
	if mo.Status == models.MOStatusCompleted {
		return nil, apperr.InvalidState("cannot cancel completed manufacturing order %s", mo.MoNumber)
	}

	var wos []models.WorkOrder
	if err := s.DB.Where("mo_id = ?", moID).Find(&wos).Error; err != nil {
		return nil, err
	}

	var materialIDs []types.SnowflakeID
	for _, wo := range wos {
		ids, err := s.Alloc.materialIDsForWO(wo.ID)
		if err != nil {
			return nil, err
		}
		materialIDs = append(materialIDs, ids...)
	}

	err := s.Alloc.WithMaterialLocks(materialIDs, func() error {
		return s.DB.Transaction(func(tx *gorm.DB) error {
			if err := s.updateMOVersioned(tx, &mo, map[string]interface{}{
				"status":     models.MOStatusCancelled,
				"updated_by": userID,
			}); err != nil {
				return err
			}

			for _, wo := range wos {
				if wo.IsTerminal() {
					continue
				}
				if err := s.Alloc.ReleaseForWOTx(tx, wo.ID, userID); err != nil {
					return err
				}
				if err := tx.Model(&models.WorkOrder{}).
					Where("id = ?", wo.ID).
					Updates(map[string]interface{}{
						"status":     models.WOStatusCancelled,
						"updated_by": userID,
						"updated_at": time.Now(),
					}).Error; err != nil {
					return err
				}
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	if err := s.DB.First(&mo, "id = ?", moID).Error; err != nil {
		return nil, err
	}
	return &mo, nil
}

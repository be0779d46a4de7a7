package services

import (
	"sort"
	"sync"
	"time"

	"fiber-erp/apperr"
	"fiber-erp/controllers/idgen"
	"fiber-erp/models"
	"fiber-erp/types"

	"gorm.io/gorm"
)

// AllocationService pegang ledger stok: reserve, consume, release.
// Urutan alokasi selalu FIFO berdasarkan fifo_date lot.
type AllocationService struct {
	DB *gorm.DB

	mu            sync.Mutex
	materialLocks map[types.SnowflakeID]*sync.Mutex
}

func NewAllocationService(db *gorm.DB) *AllocationService {
	return &AllocationService{
		DB:            db,
		materialLocks: make(map[types.SnowflakeID]*sync.Mutex),
	}
}

func (s *AllocationService) lockFor(materialID types.SnowflakeID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.materialLocks[materialID]
	if !ok {
		lock = &sync.Mutex{}
		s.materialLocks[materialID] = lock
	}
	return lock
}

// WithMaterialLocks serialisasi read-allocate-write per material.
// Lock diambil terurut by id supaya dua request tidak saling deadlock.
func (s *AllocationService) WithMaterialLocks(materialIDs []types.SnowflakeID, fn func() error) error {
	unique := map[types.SnowflakeID]bool{}
	var ids []types.SnowflakeID
	for _, id := range materialIDs {
		if !unique[id] {
			unique[id] = true
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var locks []*sync.Mutex
	for _, id := range ids {
		locks = append(locks, s.lockFor(id))
	}
	for _, lock := range locks {
		lock.Lock()
	}
	defer func() {
		for i := len(locks) - 1; i >= 0; i-- {
			locks[i].Unlock()
		}
	}()
	return fn()
}

// Reserve alokasikan stok untuk satu SPK, all-or-nothing kecuali allowDebt
func (s *AllocationService) Reserve(woID types.SnowflakeID, requirements []RequirementLine, allowDebt bool, userID int) ([]models.MaterialReservation, error) {
	var materialIDs []types.SnowflakeID
	for _, req := range requirements {
		materialIDs = append(materialIDs, req.MaterialID)
	}

	var reservations []models.MaterialReservation
	err := s.WithMaterialLocks(materialIDs, func() error {
		return s.DB.Transaction(func(tx *gorm.DB) error {
			var err error
			reservations, err = s.ReserveTx(tx, woID, requirements, allowDebt, userID)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return reservations, nil
}

// ReserveTx jalan di dalam transaksi caller, caller wajib sudah pegang material lock
func (s *AllocationService) ReserveTx(tx *gorm.DB, woID types.SnowflakeID, requirements []RequirementLine, allowDebt bool, userID int) ([]models.MaterialReservation, error) {
	var created []models.MaterialReservation

	for _, req := range requirements {
		if req.Quantity <= 0 {
			continue
		}

		var lots []models.StockLot
		if err := tx.Where("material_id = ? AND quantity > 0", req.MaterialID).
			Order("fifo_date ASC, id ASC").
			Find(&lots).Error; err != nil {
			return nil, err
		}

		claimed, err := s.claimedPerLot(tx, req.MaterialID)
		if err != nil {
			return nil, err
		}

		remaining := req.Quantity
		for _, lot := range lots {
			if remaining <= 0 {
				break
			}
			available := lot.Quantity - claimed[lot.ID]
			if available <= 0 {
				continue
			}
			qtyTake := remaining
			if available < qtyTake {
				qtyTake = available
			}

			lotID := lot.ID
			reservation := models.MaterialReservation{
				ID:          types.SnowflakeID(idgen.GenerateID()),
				WoID:        woID,
				MaterialID:  req.MaterialID,
				StockLotID:  &lotID,
				QtyReserved: qtyTake,
				Uom:         req.Uom,
				State:       models.ReservationReserved,
				CreatedBy:   userID,
			}
			if err := tx.Create(&reservation).Error; err != nil {
				return nil, err
			}
			created = append(created, reservation)
			remaining -= qtyTake
		}

		if remaining > 0 {
			if !allowDebt {
				return nil, &apperr.InsufficientStockError{
					MaterialID: int64(req.MaterialID),
					Shortfall:  remaining,
				}
			}
			debt := models.MaterialReservation{
				ID:          types.SnowflakeID(idgen.GenerateID()),
				WoID:        woID,
				MaterialID:  req.MaterialID,
				StockLotID:  nil,
				QtyReserved: remaining,
				Uom:         req.Uom,
				State:       models.ReservationReserved,
				CreatedBy:   userID,
			}
			if err := tx.Create(&debt).Error; err != nil {
				return nil, err
			}
			created = append(created, debt)
		}
	}

	return created, nil
}

// claimedPerLot total klaim RESERVED per lot untuk satu material.
// Reservation CONSUMED tidak dihitung: qty fisik lot sudah dipotong waktu consume.
func (s *AllocationService) claimedPerLot(tx *gorm.DB, materialID types.SnowflakeID) (map[types.SnowflakeID]float64, error) {
	type lotClaim struct {
		StockLotID types.SnowflakeID
		Total      float64
	}
	var claims []lotClaim
	if err := tx.Model(&models.MaterialReservation{}).
		Select("stock_lot_id, SUM(qty_reserved) as total").
		Where("material_id = ? AND stock_lot_id IS NOT NULL AND state = ?",
			materialID, models.ReservationReserved).
		Group("stock_lot_id").
		Scan(&claims).Error; err != nil {
		return nil, err
	}
	result := map[types.SnowflakeID]float64{}
	for _, c := range claims {
		result[c.StockLotID] = c.Total
	}
	return result, nil
}

// ConsumeForWO potong stok fisik untuk semua reservation RESERVED milik SPK
func (s *AllocationService) ConsumeForWO(woID types.SnowflakeID, userID int) ([]models.MaterialReservation, error) {
	materialIDs, err := s.materialIDsForWO(woID)
	if err != nil {
		return nil, err
	}

	var consumed []models.MaterialReservation
	err = s.WithMaterialLocks(materialIDs, func() error {
		return s.DB.Transaction(func(tx *gorm.DB) error {
			var err error
			consumed, err = s.ConsumeTx(tx, woID, userID)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return consumed, nil
}

// ConsumeTx titik dimana stok benar-benar terpotong, tidak bisa dibalikkan
func (s *AllocationService) ConsumeTx(tx *gorm.DB, woID types.SnowflakeID, userID int) ([]models.MaterialReservation, error) {
	var reservations []models.MaterialReservation
	if err := tx.Where("wo_id = ? AND state = ?", woID, models.ReservationReserved).
		Find(&reservations).Error; err != nil {
		return nil, err
	}

	for i := range reservations {
		r := &reservations[i]
		if r.StockLotID != nil {
			if err := tx.Model(&models.StockLot{}).
				Where("id = ?", *r.StockLotID).
				Updates(map[string]interface{}{
					"quantity":   gorm.Expr("quantity - ?", r.QtyReserved),
					"updated_by": userID,
					"updated_at": time.Now(),
				}).Error; err != nil {
				return nil, err
			}
		}
		if err := tx.Model(&models.MaterialReservation{}).
			Where("id = ?", r.ID).
			Updates(map[string]interface{}{
				"state":      models.ReservationConsumed,
				"updated_by": userID,
				"updated_at": time.Now(),
			}).Error; err != nil {
			return nil, err
		}
		r.State = models.ReservationConsumed
	}

	return reservations, nil
}

// ReleaseReservation lepas klaim satu reservation, qty lot tidak disentuh
func (s *AllocationService) ReleaseReservation(reservationID types.SnowflakeID, userID int) (*models.MaterialReservation, error) {
	var reservation models.MaterialReservation
	if err := s.DB.First(&reservation, "id = ?", reservationID).Error; err != nil {
		return nil, err
	}

	err := s.WithMaterialLocks([]types.SnowflakeID{reservation.MaterialID}, func() error {
		return s.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.First(&reservation, "id = ?", reservationID).Error; err != nil {
				return err
			}
			if reservation.State != models.ReservationReserved {
				return apperr.InvalidState("reservation %d is %s, only RESERVED can be released",
					int64(reservationID), reservation.State)
			}
			reservation.State = models.ReservationReleased
			reservation.UpdatedBy = userID
			return tx.Save(&reservation).Error
		})
	})
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// ReleaseForWOTx lepas semua klaim RESERVED milik SPK (dipakai waktu cancel)
func (s *AllocationService) ReleaseForWOTx(tx *gorm.DB, woID types.SnowflakeID, userID int) error {
	return tx.Model(&models.MaterialReservation{}).
		Where("wo_id = ? AND state = ?", woID, models.ReservationReserved).
		Updates(map[string]interface{}{
			"state":      models.ReservationReleased,
			"updated_by": userID,
			"updated_at": time.Now(),
		}).Error
}

func (s *AllocationService) materialIDsForWO(woID types.SnowflakeID) ([]types.SnowflakeID, error) {
	var ids []types.SnowflakeID
	if err := s.DB.Model(&models.MaterialReservation{}).
		Where("wo_id = ?", woID).
		Distinct("material_id").
		Pluck("material_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// LedgerQty total stok fisik satu material lintas semua lot
func (s *AllocationService) LedgerQty(tx *gorm.DB, materialID types.SnowflakeID) (float64, error) {
	var total float64
	err := tx.Model(&models.StockLot{}).
		Where("material_id = ?", materialID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error
	return total, err
}

// ReservationsForWO daftar reservation satu SPK
func (s *AllocationService) ReservationsForWO(woID types.SnowflakeID) ([]models.MaterialReservation, error) {
	var reservations []models.MaterialReservation
	err := s.DB.Where("wo_id = ?", woID).Order("id ASC").Find(&reservations).Error
	if err != nil {
		return nil, err
	}
	return reservations, nil
}

package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"fiber-erp/apperr"
	"fiber-erp/models"
	"fiber-erp/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedTwoLots(t *testing.T, db *gorm.DB) (models.Material, models.StockLot, models.StockLot) {
	t.Helper()
	fabric := seedMaterial(t, db, "FAB-COTTON", models.MaterialTypeFabric, "m")
	older := seedLot(t, db, fabric.ID, "LOT-OLD", 50, time.Now().AddDate(0, 0, -10))
	newer := seedLot(t, db, fabric.ID, "LOT-NEW", 30, time.Now().AddDate(0, 0, -1))
	return fabric, older, newer
}

func requirementFor(m models.Material, qty float64) []RequirementLine {
	return []RequirementLine{{
		MaterialID:   m.ID,
		MaterialCode: m.MaterialCode,
		MaterialType: m.MaterialType,
		Uom:          m.Uom,
		Quantity:     qty,
	}}
}

func TestReserveFollowsFifoOrder(t *testing.T) {
	db := newTestDB(t)
	svc := NewAllocationService(db)
	fabric, older, newer := seedTwoLots(t, db)

	woID := newID()
	reservations, err := svc.Reserve(woID, requirementFor(fabric, 60), false, 1)
	require.NoError(t, err)
	require.Len(t, reservations, 2)

	// lot paling tua habis duluan
	assert.Equal(t, older.ID, *reservations[0].StockLotID)
	assert.InDelta(t, 50.0, reservations[0].QtyReserved, 1e-9)
	assert.Equal(t, newer.ID, *reservations[1].StockLotID)
	assert.InDelta(t, 10.0, reservations[1].QtyReserved, 1e-9)

	for _, r := range reservations {
		assert.Equal(t, models.ReservationReserved, r.State)
		assert.False(t, r.IsDebt())
	}
}

func TestReserveInsufficientStockRollsBack(t *testing.T) {
	db := newTestDB(t)
	svc := NewAllocationService(db)
	fabric, _, _ := seedTwoLots(t, db)

	_, err := svc.Reserve(newID(), requirementFor(fabric, 90), false, 1)
	require.Error(t, err)

	var insufficient *apperr.InsufficientStockError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, int64(fabric.ID), insufficient.MaterialID)
	assert.InDelta(t, 10.0, insufficient.Shortfall, 1e-9)

	// all-or-nothing: reservation parsial ikut di-rollback
	var count int64
	require.NoError(t, db.Model(&models.MaterialReservation{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestReserveWithDebt(t *testing.T) {
	db := newTestDB(t)
	svc := NewAllocationService(db)
	fabric, _, _ := seedTwoLots(t, db)

	reservations, err := svc.Reserve(newID(), requirementFor(fabric, 90), true, 1)
	require.NoError(t, err)
	require.Len(t, reservations, 3)

	debt := reservations[2]
	assert.True(t, debt.IsDebt())
	assert.InDelta(t, 10.0, debt.QtyReserved, 1e-9)
	assert.Equal(t, models.ReservationReserved, debt.State)
}

func TestReserveRespectsExistingClaims(t *testing.T) {
	db := newTestDB(t)
	svc := NewAllocationService(db)
	fabric, _, newer := seedTwoLots(t, db)

	_, err := svc.Reserve(newID(), requirementFor(fabric, 50), false, 1)
	require.NoError(t, err)

	// lot tua sudah diklaim penuh, permintaan berikut pindah ke lot muda
	reservations, err := svc.Reserve(newID(), requirementFor(fabric, 20), false, 1)
	require.NoError(t, err)
	require.Len(t, reservations, 1)
	assert.Equal(t, newer.ID, *reservations[0].StockLotID)
}

func TestConsumeDecrementsLots(t *testing.T) {
	db := newTestDB(t)
	svc := NewAllocationService(db)
	fabric, older, newer := seedTwoLots(t, db)

	woID := newID()
	_, err := svc.Reserve(woID, requirementFor(fabric, 60), false, 1)
	require.NoError(t, err)

	// reserve belum menyentuh qty fisik
	total, err := svc.LedgerQty(db, fabric.ID)
	require.NoError(t, err)
	assert.InDelta(t, 80.0, total, 1e-9)

	consumed, err := svc.ConsumeForWO(woID, 1)
	require.NoError(t, err)
	require.Len(t, consumed, 2)
	for _, r := range consumed {
		assert.Equal(t, models.ReservationConsumed, r.State)
	}

	var lot models.StockLot
	require.NoError(t, db.First(&lot, "id = ?", older.ID).Error)
	assert.InDelta(t, 0.0, lot.Quantity, 1e-9)
	lot = models.StockLot{}
	require.NoError(t, db.First(&lot, "id = ?", newer.ID).Error)
	assert.InDelta(t, 20.0, lot.Quantity, 1e-9)

	total, err = svc.LedgerQty(db, fabric.ID)
	require.NoError(t, err)
	assert.InDelta(t, 20.0, total, 1e-9)
}

func TestReserveAfterConsumeSeesRemainingStock(t *testing.T) {
	db := newTestDB(t)
	svc := NewAllocationService(db)
	fabric := seedMaterial(t, db, "FAB-COTTON", models.MaterialTypeFabric, "m")
	seedLot(t, db, fabric.ID, "LOT-A", 50, time.Now().AddDate(0, 0, -10))

	firstWO := newID()
	_, err := svc.Reserve(firstWO, requirementFor(fabric, 10), false, 1)
	require.NoError(t, err)
	_, err = svc.ConsumeForWO(firstWO, 1)
	require.NoError(t, err)

	// qty lot sudah terpotong jadi 40, klaim CONSUMED tidak boleh dihitung lagi
	total, err := svc.LedgerQty(db, fabric.ID)
	require.NoError(t, err)
	assert.InDelta(t, 40.0, total, 1e-9)

	reservations, err := svc.Reserve(newID(), requirementFor(fabric, 40), false, 1)
	require.NoError(t, err)
	require.Len(t, reservations, 1)
	assert.InDelta(t, 40.0, reservations[0].QtyReserved, 1e-9)
}

func TestReleaseReservation(t *testing.T) {
	db := newTestDB(t)
	svc := NewAllocationService(db)
	fabric, older, _ := seedTwoLots(t, db)

	woID := newID()
	reservations, err := svc.Reserve(woID, requirementFor(fabric, 40), false, 1)
	require.NoError(t, err)
	require.Len(t, reservations, 1)

	released, err := svc.ReleaseReservation(reservations[0].ID, 1)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationReleased, released.State)

	// qty fisik tidak berubah, klaim saja yang lepas
	var lot models.StockLot
	require.NoError(t, db.First(&lot, "id = ?", older.ID).Error)
	assert.InDelta(t, 50.0, lot.Quantity, 1e-9)

	// setelah lepas, stok bisa diklaim WO lain
	again, err := svc.Reserve(newID(), requirementFor(fabric, 50), false, 1)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, older.ID, *again[0].StockLotID)

	_, err = svc.ReleaseReservation(reservations[0].ID, 1)
	assert.True(t, apperr.IsInvalidState(err))
}

func TestConcurrentReserveNeverOversells(t *testing.T) {
	db := newTestDB(t)
	svc := NewAllocationService(db)
	fabric, _, _ := seedTwoLots(t, db) // total 80

	woIDs := []types.SnowflakeID{newID(), newID(), newID()}
	errs := make(chan error, len(woIDs))

	var wg sync.WaitGroup
	for _, woID := range woIDs {
		wg.Add(1)
		go func(id types.SnowflakeID) {
			defer wg.Done()
			_, err := svc.Reserve(id, requirementFor(fabric, 30), false, 1)
			errs <- err
		}(woID)
	}
	wg.Wait()
	close(errs)

	var failed int
	for err := range errs {
		if err != nil {
			assert.True(t, apperr.IsInsufficientStock(err))
			failed++
		}
	}
	// 3 x 30 dari stok 80: tepat satu request kalah
	assert.Equal(t, 1, failed)

	var totalReserved float64
	require.NoError(t, db.Model(&models.MaterialReservation{}).
		Where("material_id = ? AND state = ?", fabric.ID, models.ReservationReserved).
		Select("COALESCE(SUM(qty_reserved), 0)").
		Scan(&totalReserved).Error)
	assert.InDelta(t, 60.0, totalReserved, 1e-9)
}

package services

import (
	"strings"
	"testing"
	"time"

	"fiber-erp/apperr"
	"fiber-erp/models"
	"fiber-erp/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newOpnameFixture(t *testing.T) (*gorm.DB, *OpnameService, models.Material) {
	t.Helper()
	db := newTestDB(t)
	alloc := NewAllocationService(db)
	svc := NewOpnameService(db, alloc, NewMailService())

	fabric := seedMaterial(t, db, "FAB-COTTON", models.MaterialTypeFabric, "m")
	seedLot(t, db, fabric.ID, "LOT-OLD", 600, time.Now().AddDate(0, 0, -20))
	seedLot(t, db, fabric.ID, "LOT-NEW", 400, time.Now().AddDate(0, 0, -5))
	return db, svc, fabric
}

func ledger(t *testing.T, db *gorm.DB, svc *OpnameService, materialID types.SnowflakeID) float64 {
	t.Helper()
	total, err := svc.Alloc.LedgerQty(db, materialID)
	require.NoError(t, err)
	return total
}

func TestOpnameSmallVarianceAutoApplied(t *testing.T) {
	db, svc, fabric := newOpnameFixture(t)

	record, err := svc.RecordOpname(fabric.ID, 980, 1)
	require.NoError(t, err)

	assert.Equal(t, models.OpnameAutoApplied, record.ApprovalState)
	assert.False(t, record.MandatoryReview)
	assert.InDelta(t, 1000.0, record.SystemQty, 1e-9)
	assert.InDelta(t, -20.0, record.VarianceQty, 1e-9)
	assert.InDelta(t, -2.0, record.VariancePct, 1e-9)
	require.NotNil(t, record.ResolvedAt)

	// write-down makan lot termuda duluan
	assert.InDelta(t, 980.0, ledger(t, db, svc, fabric.ID), 1e-9)
	var lot models.StockLot
	require.NoError(t, db.First(&lot, "lot_number = ?", "LOT-NEW").Error)
	assert.InDelta(t, 380.0, lot.Quantity, 1e-9)
	lot = models.StockLot{}
	require.NoError(t, db.First(&lot, "lot_number = ?", "LOT-OLD").Error)
	assert.InDelta(t, 600.0, lot.Quantity, 1e-9)
}

func TestOpnameWriteUpCreatesCorrectionLot(t *testing.T) {
	db, svc, fabric := newOpnameFixture(t)

	record, err := svc.RecordOpname(fabric.ID, 1010, 1)
	require.NoError(t, err)
	assert.Equal(t, models.OpnameAutoApplied, record.ApprovalState)
	assert.InDelta(t, 1.0, record.VariancePct, 1e-9)

	assert.InDelta(t, 1010.0, ledger(t, db, svc, fabric.ID), 1e-9)

	var lot models.StockLot
	require.NoError(t, db.First(&lot, "lot_number = ?", "ADJ-"+record.Code).Error)
	assert.Equal(t, "OPNAME", lot.Location)
	assert.InDelta(t, 10.0, lot.Quantity, 1e-9)
}

func TestOpnameMediumVariancePending(t *testing.T) {
	db, svc, fabric := newOpnameFixture(t)

	record, err := svc.RecordOpname(fabric.ID, 950, 1)
	require.NoError(t, err)

	assert.Equal(t, models.OpnamePendingApproval, record.ApprovalState)
	assert.False(t, record.MandatoryReview)
	assert.InDelta(t, -5.0, record.VariancePct, 1e-9)
	assert.Nil(t, record.ResolvedAt)

	// ledger belum berubah sampai di-approve
	assert.InDelta(t, 1000.0, ledger(t, db, svc, fabric.ID), 1e-9)
}

func TestOpnameLargeVarianceMandatoryReview(t *testing.T) {
	db, svc, fabric := newOpnameFixture(t)

	record, err := svc.RecordOpname(fabric.ID, 800, 1)
	require.NoError(t, err)

	assert.Equal(t, models.OpnamePendingApproval, record.ApprovalState)
	assert.True(t, record.MandatoryReview)
	assert.InDelta(t, -20.0, record.VariancePct, 1e-9)
	assert.InDelta(t, 1000.0, ledger(t, db, svc, fabric.ID), 1e-9)
}

func TestOpnameApprove(t *testing.T) {
	db, svc, fabric := newOpnameFixture(t)

	record, err := svc.RecordOpname(fabric.ID, 950, 1)
	require.NoError(t, err)

	approved, err := svc.Approve(record.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, models.OpnameApproved, approved.ApprovalState)
	require.NotNil(t, approved.ResolvedAt)

	assert.InDelta(t, 950.0, ledger(t, db, svc, fabric.ID), 1e-9)

	_, err = svc.Approve(record.ID, 2)
	assert.True(t, apperr.IsInvalidState(err))
}

func TestOpnameReject(t *testing.T) {
	db, svc, fabric := newOpnameFixture(t)

	record, err := svc.RecordOpname(fabric.ID, 800, 1)
	require.NoError(t, err)

	_, err = svc.Reject(record.ID, "", 2)
	assert.True(t, apperr.IsValidation(err), "alasan wajib diisi")

	rejected, err := svc.Reject(record.ID, "salah hitung waktu opname", 2)
	require.NoError(t, err)
	assert.Equal(t, models.OpnameRejected, rejected.ApprovalState)
	assert.Equal(t, "salah hitung waktu opname", rejected.RejectReason)
	require.NotNil(t, rejected.ResolvedAt)

	assert.InDelta(t, 1000.0, ledger(t, db, svc, fabric.ID), 1e-9)

	_, err = svc.Approve(record.ID, 2)
	assert.True(t, apperr.IsInvalidState(err))
}

func TestOpnameWriteDownSkipsReservedStock(t *testing.T) {
	db := newTestDB(t)
	alloc := NewAllocationService(db)
	svc := NewOpnameService(db, alloc, NewMailService())

	fabric := seedMaterial(t, db, "FAB-COTTON", models.MaterialTypeFabric, "m")
	reservedLot := seedLot(t, db, fabric.ID, "LOT-OLD", 50, time.Now().AddDate(0, 0, -20))
	seedLot(t, db, fabric.ID, "LOT-NEW", 30, time.Now().AddDate(0, 0, -5))

	woID := newID()
	_, err := alloc.Reserve(woID, requirementFor(fabric, 50), false, 1)
	require.NoError(t, err)

	// variance -1/80 = -1.25%, auto apply; potongan harus jatuh ke lot yang tidak diklaim
	record, err := svc.RecordOpname(fabric.ID, 79, 1)
	require.NoError(t, err)
	assert.Equal(t, models.OpnameAutoApplied, record.ApprovalState)

	var lot models.StockLot
	require.NoError(t, db.First(&lot, "lot_number = ?", "LOT-NEW").Error)
	assert.InDelta(t, 29.0, lot.Quantity, 1e-9)
	lot = models.StockLot{}
	require.NoError(t, db.First(&lot, "id = ?", reservedLot.ID).Error)
	assert.InDelta(t, 50.0, lot.Quantity, 1e-9)

	// consume setelah write-down tidak boleh membawa lot ke minus
	_, err = alloc.ConsumeForWO(woID, 1)
	require.NoError(t, err)
	require.NoError(t, db.First(&lot, "id = ?", reservedLot.ID).Error)
	assert.InDelta(t, 0.0, lot.Quantity, 1e-9)
	assert.InDelta(t, 29.0, ledger(t, db, svc, fabric.ID), 1e-9)
}

func TestOpnameWriteDownBlockedByReservations(t *testing.T) {
	db := newTestDB(t)
	alloc := NewAllocationService(db)
	svc := NewOpnameService(db, alloc, NewMailService())

	fabric := seedMaterial(t, db, "FAB-COTTON", models.MaterialTypeFabric, "m")
	seedLot(t, db, fabric.ID, "LOT-ONLY", 50, time.Now().AddDate(0, 0, -10))

	_, err := alloc.Reserve(newID(), requirementFor(fabric, 50), false, 1)
	require.NoError(t, err)

	// seluruh stok diklaim: write-down -2% tidak bisa diserap tanpa merusak klaim
	_, err = svc.RecordOpname(fabric.ID, 49, 1)
	assert.True(t, apperr.IsConflict(err))

	// transaksi di-rollback utuh: tidak ada record dan ledger tidak berubah
	var count int64
	require.NoError(t, db.Model(&models.StockOpname{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.InDelta(t, 50.0, ledger(t, db, svc, fabric.ID), 1e-9)
}

func TestOpnameZeroSystemQty(t *testing.T) {
	db := newTestDB(t)
	alloc := NewAllocationService(db)
	svc := NewOpnameService(db, alloc, NewMailService())
	empty := seedMaterial(t, db, "ACC-ZIPPER", models.MaterialTypeAccessory, "pcs")

	record, err := svc.RecordOpname(empty.ID, 5, 1)
	require.NoError(t, err)

	// system qty nol: variance pct 0, langsung apply
	assert.InDelta(t, 0.0, record.VariancePct, 1e-9)
	assert.Equal(t, models.OpnameAutoApplied, record.ApprovalState)
	assert.InDelta(t, 5.0, ledger(t, db, svc, empty.ID), 1e-9)
}

func TestOpnameValidationAndCode(t *testing.T) {
	_, svc, fabric := newOpnameFixture(t)

	_, err := svc.RecordOpname(fabric.ID, -1, 1)
	assert.True(t, apperr.IsValidation(err))

	_, err = svc.RecordOpname(newID(), 10, 1)
	assert.True(t, apperr.IsValidation(err), "material tidak dikenal")

	first, err := svc.RecordOpname(fabric.ID, 1000, 1)
	require.NoError(t, err)
	second, err := svc.RecordOpname(fabric.ID, 1000, 1)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(first.Code, "OPN"))
	assert.Len(t, first.Code, 15)
	assert.NotEqual(t, first.Code, second.Code)
	assert.True(t, strings.HasSuffix(second.Code, "0002"))
}

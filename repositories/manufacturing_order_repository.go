package repositories

import (
	"fiber-erp/models"
	"fiber-erp/types"

	"gorm.io/gorm"
)

type ManufacturingOrderRepository struct {
	db *gorm.DB
}

func NewManufacturingOrderRepository(db *gorm.DB) *ManufacturingOrderRepository {
	return &ManufacturingOrderRepository{db}
}

// MOAggregate proyeksi hitungan, tidak pernah disimpan supaya tidak drift
type MOAggregate struct {
	TotalProduction float64 `json:"total_production"`
	OutputGood      float64 `json:"output_good"`
	TotalDefects    float64 `json:"total_defects"`
	TotalRework     float64 `json:"total_rework"`
	YieldPct        float64 `json:"yield_pct"`
	DefectPct       float64 `json:"defect_pct"`
	MoCoveragePct   float64 `json:"mo_coverage_pct"`
	SpksCompleted   int     `json:"spks_completed"`
	TotalSpks       int     `json:"total_spks"`
}

type moSums struct {
	TotalProduction float64
	OutputGood      float64
	TotalDefects    float64
	TotalRework     float64
	SpksCompleted   int
	TotalSpks       int
}

func (r *ManufacturingOrderRepository) GetAggregate(moID types.SnowflakeID, targetQty float64) (*MOAggregate, error) {

	sql := `SELECT
	COALESCE(SUM(production_qty), 0) AS total_production,
	COALESCE(SUM(good_qty), 0) AS output_good,
	COALESCE(SUM(defect_qty), 0) AS total_defects,
	COALESCE(SUM(rework_qty), 0) AS total_rework,
	COALESCE(SUM(CASE WHEN status = 'COMPLETED' THEN 1 ELSE 0 END), 0) AS spks_completed,
	COUNT(id) AS total_spks
	FROM work_orders
	WHERE mo_id = ? AND deleted_at IS NULL`

	var sums moSums
	if err := r.db.Raw(sql, moID).Scan(&sums).Error; err != nil {
		return nil, err
	}

	agg := &MOAggregate{
		TotalProduction: sums.TotalProduction,
		OutputGood:      sums.OutputGood,
		TotalDefects:    sums.TotalDefects,
		TotalRework:     sums.TotalRework,
		SpksCompleted:   sums.SpksCompleted,
		TotalSpks:       sums.TotalSpks,
	}
	if sums.TotalProduction > 0 {
		agg.YieldPct = sums.OutputGood / sums.TotalProduction * 100
		agg.DefectPct = sums.TotalDefects / sums.TotalProduction * 100
	}
	if targetQty > 0 {
		agg.MoCoveragePct = sums.OutputGood / targetQty * 100
	}
	return agg, nil
}

func (r *ManufacturingOrderRepository) List(status string) ([]models.ManufacturingOrder, error) {
	query := r.db.Order("id DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var mos []models.ManufacturingOrder
	if err := query.Find(&mos).Error; err != nil {
		return nil, err
	}
	return mos, nil
}

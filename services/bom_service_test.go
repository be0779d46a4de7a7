package services

import (
	"errors"
	"testing"

	"fiber-erp/apperr"
	"fiber-erp/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExplodeSingleLevel(t *testing.T) {
	db := newTestDB(t)
	svc := NewBOMService(db)

	fabric := seedMaterial(t, db, "FAB-COTTON", models.MaterialTypeFabric, "m")
	label := seedMaterial(t, db, "LBL-MAIN", models.MaterialTypeLabel, "pcs")
	article := seedArticle(t, db, "ART-TSHIRT", true)
	seedRootBOMLine(t, db, article.ID, fabric, 1.5)
	seedRootBOMLine(t, db, article.ID, label, 1)

	lines, err := svc.Explode(article.ID, 10, "")
	require.NoError(t, err)
	require.Len(t, lines, 2)

	// hasil terurut by material code
	assert.Equal(t, "FAB-COTTON", lines[0].MaterialCode)
	assert.InDelta(t, 15.0, lines[0].Quantity, 1e-9)
	assert.Equal(t, "LBL-MAIN", lines[1].MaterialCode)
	assert.InDelta(t, 10.0, lines[1].Quantity, 1e-9)
}

func TestExplodeMultiLevelAggregation(t *testing.T) {
	db := newTestDB(t)
	svc := NewBOMService(db)

	fabric := seedMaterial(t, db, "FAB-COTTON", models.MaterialTypeFabric, "m")
	thread := seedMaterial(t, db, "RAW-THREAD", models.MaterialTypeRaw, "cone")
	panel := seedMaterial(t, db, "WIP-PANEL", models.MaterialTypeWip, "pcs")

	article := seedArticle(t, db, "ART-TSHIRT", true)
	seedRootBOMLine(t, db, article.ID, fabric, 1.0)
	seedRootBOMLine(t, db, article.ID, panel, 2.0)
	seedChildBOMLine(t, db, panel.ID, fabric, 0.5)
	seedChildBOMLine(t, db, panel.ID, thread, 0.1)

	lines, err := svc.Explode(article.ID, 10, "")
	require.NoError(t, err)
	require.Len(t, lines, 2)

	// fabric datang dari dua jalur: 10*1.0 langsung + 10*2*0.5 lewat panel
	assert.Equal(t, "FAB-COTTON", lines[0].MaterialCode)
	assert.InDelta(t, 20.0, lines[0].Quantity, 1e-9)
	assert.Equal(t, "RAW-THREAD", lines[1].MaterialCode)
	assert.InDelta(t, 2.0, lines[1].Quantity, 1e-9)
}

func TestExplodeWipWithoutChildrenIsBaseRequirement(t *testing.T) {
	db := newTestDB(t)
	svc := NewBOMService(db)

	panel := seedMaterial(t, db, "WIP-PANEL", models.MaterialTypeWip, "pcs")
	article := seedArticle(t, db, "ART-TSHIRT", true)
	seedRootBOMLine(t, db, article.ID, panel, 2.0)

	lines, err := svc.Explode(article.ID, 5, "")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "WIP-PANEL", lines[0].MaterialCode)
	assert.Equal(t, models.MaterialTypeWip, lines[0].MaterialType)
	assert.InDelta(t, 10.0, lines[0].Quantity, 1e-9)
}

func TestExplodeTypeFilter(t *testing.T) {
	db := newTestDB(t)
	svc := NewBOMService(db)

	fabric := seedMaterial(t, db, "FAB-COTTON", models.MaterialTypeFabric, "m")
	label := seedMaterial(t, db, "LBL-MAIN", models.MaterialTypeLabel, "pcs")
	article := seedArticle(t, db, "ART-TSHIRT", true)
	seedRootBOMLine(t, db, article.ID, fabric, 1.5)
	seedRootBOMLine(t, db, article.ID, label, 1)

	lines, err := svc.Explode(article.ID, 10, models.MaterialTypeFabric)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "FAB-COTTON", lines[0].MaterialCode)

	_, err = svc.Explode(article.ID, 10, "PLASTIK")
	assert.True(t, apperr.IsValidation(err))
}

func TestExplodeValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewBOMService(db)

	article := seedArticle(t, db, "ART-NO-BOM", false)

	_, err := svc.Explode(article.ID, 0, "")
	assert.True(t, apperr.IsValidation(err))

	_, err = svc.Explode(article.ID, 10, "")
	assert.True(t, apperr.IsValidation(err), "BOM belum tersedia harus ditolak")

	_, err = svc.Explode(newID(), 10, "")
	assert.True(t, apperr.IsValidation(err))
}

func TestExplodeDetectsCycle(t *testing.T) {
	db := newTestDB(t)
	svc := NewBOMService(db)

	wipA := seedMaterial(t, db, "WIP-A", models.MaterialTypeWip, "pcs")
	wipB := seedMaterial(t, db, "WIP-B", models.MaterialTypeWip, "pcs")
	article := seedArticle(t, db, "ART-CYCLE", true)

	seedRootBOMLine(t, db, article.ID, wipA, 1)
	seedChildBOMLine(t, db, wipA.ID, wipB, 1)
	seedChildBOMLine(t, db, wipB.ID, wipA, 1)

	_, err := svc.Explode(article.ID, 1, "")
	require.Error(t, err)

	var cyc *apperr.CyclicBOMError
	require.True(t, errors.As(err, &cyc))
	assert.Contains(t, cyc.Path, "WIP-A")
	assert.Contains(t, cyc.Path, "WIP-B")
}

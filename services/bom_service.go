package services

import (
	"errors"
	"sort"

	"fiber-erp/apperr"
	"fiber-erp/models"
	"fiber-erp/types"

	"gorm.io/gorm"
)

// RequirementLine kebutuhan material hasil explode BOM, sudah dikalikan qty MO
type RequirementLine struct {
	MaterialID   types.SnowflakeID `json:"material_id"`
	MaterialCode string            `json:"material_code"`
	MaterialType string            `json:"material_type"`
	Uom          string            `json:"uom"`
	Quantity     float64           `json:"quantity"`
}

type BOMService struct {
	DB *gorm.DB
}

func NewBOMService(db *gorm.DB) *BOMService {
	return &BOMService{DB: db}
}

// Explode jabarkan BOM multi-level jadi daftar kebutuhan material dasar.
// typeFilter opsional, baris yang tidak match dibuang setelah qty dihitung.
func (s *BOMService) Explode(articleID types.SnowflakeID, quantity float64, typeFilter string) ([]RequirementLine, error) {
	if quantity <= 0 {
		return nil, apperr.Validation("quantity must be greater than zero")
	}
	if typeFilter != "" && !models.ValidMaterialType(typeFilter) {
		return nil, apperr.Validation("unknown material type %s", typeFilter)
	}

	var article models.Article
	if err := s.DB.First(&article, "id = ?", articleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Validation("article %d not found", int64(articleID))
		}
		return nil, err
	}
	if !article.BomAvailable {
		return nil, apperr.Validation("BOM is not available for article %s", article.ArticleCode)
	}

	rootLines, err := s.linesForArticle(articleID)
	if err != nil {
		return nil, err
	}

	// Deteksi cycle dulu sebelum traversal qty
	if err := s.detectCycle(rootLines, map[types.SnowflakeID]bool{}, []string{article.ArticleCode}); err != nil {
		return nil, err
	}

	agg := map[aggKey]*RequirementLine{}
	if err := s.explodeLines(rootLines, quantity, agg); err != nil {
		return nil, err
	}

	if err := s.fillMaterialCodes(agg); err != nil {
		return nil, err
	}

	result := make([]RequirementLine, 0, len(agg))
	for _, line := range agg {
		if typeFilter != "" && line.MaterialType != typeFilter {
			continue
		}
		result = append(result, *line)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].MaterialCode != result[j].MaterialCode {
			return result[i].MaterialCode < result[j].MaterialCode
		}
		return result[i].Uom < result[j].Uom
	})
	return result, nil
}

type aggKey struct {
	materialID types.SnowflakeID
	uom        string
}

func (s *BOMService) linesForArticle(articleID types.SnowflakeID) ([]models.BOMLine, error) {
	var lines []models.BOMLine
	if err := s.DB.Where("article_id = ?", articleID).Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

func (s *BOMService) linesForMaterial(materialID types.SnowflakeID) ([]models.BOMLine, error) {
	var lines []models.BOMLine
	if err := s.DB.Where("parent_material_id = ?", materialID).Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

// detectCycle DFS dengan visited-set jalur ancestor
func (s *BOMService) detectCycle(lines []models.BOMLine, path map[types.SnowflakeID]bool, trail []string) error {
	for _, line := range lines {
		if path[line.MaterialID] {
			var mat models.Material
			label := "?"
			if err := s.DB.First(&mat, "id = ?", line.MaterialID).Error; err == nil {
				label = mat.MaterialCode
			}
			return &apperr.CyclicBOMError{Path: append(append([]string{}, trail...), label)}
		}
		if line.MaterialType != models.MaterialTypeWip {
			continue
		}
		children, err := s.linesForMaterial(line.MaterialID)
		if err != nil {
			return err
		}
		if len(children) == 0 {
			continue
		}
		path[line.MaterialID] = true
		var mat models.Material
		label := "?"
		if err := s.DB.First(&mat, "id = ?", line.MaterialID).Error; err == nil {
			label = mat.MaterialCode
		}
		if err := s.detectCycle(children, path, append(trail, label)); err != nil {
			return err
		}
		delete(path, line.MaterialID)
	}
	return nil
}

// explodeLines kalikan multiplier turun per level, leaf diakumulasi per (material, uom)
func (s *BOMService) explodeLines(lines []models.BOMLine, multiplier float64, agg map[aggKey]*RequirementLine) error {
	for _, line := range lines {
		qty := line.QtyPerUnit * multiplier

		if line.MaterialType == models.MaterialTypeWip {
			children, err := s.linesForMaterial(line.MaterialID)
			if err != nil {
				return err
			}
			if len(children) > 0 {
				if err := s.explodeLines(children, qty, agg); err != nil {
					return err
				}
				continue
			}
			// WIP tanpa BOM diperlakukan sebagai material dasar
		}

		key := aggKey{materialID: line.MaterialID, uom: line.Uom}
		if existing, ok := agg[key]; ok {
			existing.Quantity += qty
			continue
		}
		agg[key] = &RequirementLine{
			MaterialID:   line.MaterialID,
			MaterialType: line.MaterialType,
			Uom:          line.Uom,
			Quantity:     qty,
		}
	}
	return nil
}

func (s *BOMService) fillMaterialCodes(agg map[aggKey]*RequirementLine) error {
	if len(agg) == 0 {
		return nil
	}
	ids := make([]types.SnowflakeID, 0, len(agg))
	for key := range agg {
		ids = append(ids, key.materialID)
	}
	var materials []models.Material
	if err := s.DB.Where("id IN ?", ids).Find(&materials).Error; err != nil {
		return err
	}
	codes := map[types.SnowflakeID]string{}
	for _, m := range materials {
		codes[m.ID] = m.MaterialCode
	}
	for _, line := range agg {
		line.MaterialCode = codes[line.MaterialID]
	}
	return nil
}

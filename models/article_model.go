package models

import (
	"fiber-erp/types"

	"gorm.io/gorm"
)

type Article struct {
	gorm.Model
	ID           types.SnowflakeID `json:"id" gorm:"primaryKey"`
	ArticleCode  string            `json:"article_code" gorm:"unique" validate:"required"`
	ArticleName  string            `json:"article_name"`
	Uom          string            `json:"uom"`
	BomAvailable bool              `json:"bom_available" gorm:"default:false"`
	CreatedBy    int
	UpdatedBy    int
	DeletedBy    int
}

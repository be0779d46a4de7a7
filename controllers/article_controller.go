package controllers

import (
	"errors"
	"strconv"

	"fiber-erp/controllers/idgen"
	"fiber-erp/models"
	"fiber-erp/services"
	"fiber-erp/types"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ArticleController struct {
	DB  *gorm.DB
	Bom *services.BOMService
}

func NewArticleController(db *gorm.DB, bom *services.BOMService) *ArticleController {
	return &ArticleController{DB: db, Bom: bom}
}

func (c *ArticleController) CreateArticle(ctx *fiber.Ctx) error {
	var article models.Article
	if err := ctx.BodyParser(&article); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := validate.Struct(article); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}

	article.ID = types.SnowflakeID(idgen.GenerateID())
	article.BomAvailable = false
	article.CreatedBy = userID(ctx)

	if err := c.DB.Create(&article).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to create article",
			"error":   err.Error(),
		})
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Article created successfully",
		"data":    article,
	})
}

func (c *ArticleController) GetAllArticles(ctx *fiber.Ctx) error {
	var articles []models.Article
	if err := c.DB.Order("article_code ASC").Find(&articles).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to retrieve articles",
			"error":   err.Error(),
		})
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "Articles retrieved successfully",
		"data":    articles,
	})
}

type bomLineRequest struct {
	ParentMaterialID *types.SnowflakeID `json:"parent_material_id"`
	MaterialID       types.SnowflakeID  `json:"material_id" validate:"required"`
	QtyPerUnit       float64            `json:"qty_per_unit" validate:"required,gt=0"`
	Uom              string             `json:"uom"`
}

// AddBOMLines tambah baris resep ke article, bom_available ikut di-update
func (c *ArticleController) AddBOMLines(ctx *fiber.Ctx) error {
	articleID, err := paramID(ctx, "id")
	if err != nil {
		return respondError(ctx, err)
	}

	var article models.Article
	if err := c.DB.First(&article, "id = ?", articleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Article not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	var req struct {
		Lines []bomLineRequest `json:"lines"`
	}
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if len(req.Lines) == 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "At least one BOM line is required",
		})
	}

	var created []models.BOMLine
	err = c.DB.Transaction(func(tx *gorm.DB) error {
		for _, line := range req.Lines {
			if err := validate.Struct(line); err != nil {
				return err
			}

			var material models.Material
			if err := tx.First(&material, "id = ?", line.MaterialID).Error; err != nil {
				return err
			}

			uom := line.Uom
			if uom == "" {
				uom = material.Uom
			}

			bomLine := models.BOMLine{
				ID:           types.SnowflakeID(idgen.GenerateID()),
				MaterialID:   line.MaterialID,
				QtyPerUnit:   line.QtyPerUnit,
				Uom:          uom,
				MaterialType: material.MaterialType,
				CreatedBy:    userID(ctx),
			}
			if line.ParentMaterialID != nil {
				bomLine.ParentMaterialID = line.ParentMaterialID
			} else {
				id := articleID
				bomLine.ArticleID = &id
			}
			if err := tx.Create(&bomLine).Error; err != nil {
				return err
			}
			created = append(created, bomLine)
		}

		return tx.Model(&models.Article{}).
			Where("id = ?", articleID).
			Update("bom_available", true).Error
	})
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to create BOM lines",
			"error":   err.Error(),
		})
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "BOM lines created successfully",
		"data":    created,
	})
}

func (c *ArticleController) GetBOM(ctx *fiber.Ctx) error {
	articleID, err := paramID(ctx, "id")
	if err != nil {
		return respondError(ctx, err)
	}

	var lines []models.BOMLine
	if err := c.DB.Where("article_id = ?", articleID).Order("id ASC").Find(&lines).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to retrieve BOM",
			"error":   err.Error(),
		})
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "BOM retrieved successfully",
		"data":    lines,
	})
}

// ExplodeBOM jabarkan kebutuhan material untuk qty tertentu
func (c *ArticleController) ExplodeBOM(ctx *fiber.Ctx) error {
	articleID, err := paramID(ctx, "id")
	if err != nil {
		return respondError(ctx, err)
	}

	qty, err := strconv.ParseFloat(ctx.Query("qty", "0"), 64)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid qty",
		})
	}
	typeFilter := ctx.Query("type")

	lines, err := c.Bom.Explode(articleID, qty, typeFilter)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "BOM exploded successfully",
		"data":    lines,
	})
}

package controllers

import (
	"fiber-erp/controllers/idgen"
	"fiber-erp/models"
	"fiber-erp/types"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var validate = validator.New()

type MaterialController struct {
	DB *gorm.DB
}

func NewMaterialController(db *gorm.DB) *MaterialController {
	return &MaterialController{DB: db}
}

func (c *MaterialController) CreateMaterial(ctx *fiber.Ctx) error {
	var material models.Material
	if err := ctx.BodyParser(&material); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	// Validasi input menggunakan validator
	if err := validate.Struct(material); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}

	if !models.ValidMaterialType(material.MaterialType) {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Unknown material type " + material.MaterialType,
		})
	}

	material.ID = types.SnowflakeID(idgen.GenerateID())
	material.CreatedBy = userID(ctx)

	if err := c.DB.Create(&material).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to create material",
			"error":   err.Error(),
		})
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Material created successfully",
		"data":    material,
	})
}

func (c *MaterialController) GetAllMaterials(ctx *fiber.Ctx) error {
	var materials []models.Material
	query := c.DB.Order("material_code ASC")
	if t := ctx.Query("type"); t != "" {
		query = query.Where("material_type = ?", t)
	}
	if err := query.Find(&materials).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to retrieve materials",
			"error":   err.Error(),
		})
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "Materials retrieved successfully",
		"data":    materials,
	})
}

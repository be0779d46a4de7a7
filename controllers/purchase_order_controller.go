package controllers

import (
	"errors"

	"fiber-erp/controllers/idgen"
	"fiber-erp/models"
	"fiber-erp/types"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type PurchaseOrderController struct {
	DB *gorm.DB
}

func NewPurchaseOrderController(db *gorm.DB) *PurchaseOrderController {
	return &PurchaseOrderController{DB: db}
}

func (c *PurchaseOrderController) CreatePurchaseOrder(ctx *fiber.Ctx) error {
	var po models.PurchaseOrder
	if err := ctx.BodyParser(&po); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := validate.Struct(po); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}

	if !models.ValidPOType(po.PoType) {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Unknown PO type " + po.PoType,
		})
	}

	switch po.PoType {
	case models.POTypeKain:
		// Trigger 1: PO KAIN wajib menunjuk article + quantity
		if po.ArticleID == nil || po.Quantity <= 0 {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "PO KAIN requires article_id and a positive quantity",
			})
		}
		var article models.Article
		if err := c.DB.First(&article, "id = ?", *po.ArticleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Article not found"})
			}
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
	case models.POTypeLabel:
		// Trigger 2: PO LABEL menunjuk PO KAIN dan bawa week + destination
		if po.PoKainID == nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "PO LABEL requires po_kain_id",
			})
		}
		if po.Week == "" || po.Destination == "" {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "PO LABEL requires week and destination",
			})
		}
		var poKain models.PurchaseOrder
		if err := c.DB.First(&poKain, "id = ?", *po.PoKainID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "PO Kain not found"})
			}
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		if poKain.PoType != models.POTypeKain {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "po_kain_id must reference a PO of type KAIN",
			})
		}
	}

	po.ID = types.SnowflakeID(idgen.GenerateID())
	po.CreatedBy = userID(ctx)

	if err := c.DB.Create(&po).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to create purchase order",
			"error":   err.Error(),
		})
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Purchase order created successfully",
		"data":    po,
	})
}

func (c *PurchaseOrderController) GetAllPurchaseOrders(ctx *fiber.Ctx) error {
	query := c.DB.Order("id DESC")
	if t := ctx.Query("type"); t != "" {
		query = query.Where("po_type = ?", t)
	}

	var pos []models.PurchaseOrder
	if err := query.Find(&pos).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to retrieve purchase orders",
			"error":   err.Error(),
		})
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "Purchase orders retrieved successfully",
		"data":    pos,
	})
}

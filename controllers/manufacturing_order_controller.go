package controllers

import (
	"errors"

	"fiber-erp/models"
	"fiber-erp/repositories"
	"fiber-erp/services"
	"fiber-erp/types"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ManufacturingOrderController struct {
	DB      *gorm.DB
	Release *services.ReleaseService
	Repo    *repositories.ManufacturingOrderRepository
}

func NewManufacturingOrderController(db *gorm.DB, release *services.ReleaseService) *ManufacturingOrderController {
	return &ManufacturingOrderController{
		DB:      db,
		Release: release,
		Repo:    repositories.NewManufacturingOrderRepository(db),
	}
}

type createMORequest struct {
	ArticleID types.SnowflakeID  `json:"article_id" validate:"required"`
	TargetQty float64            `json:"target_qty" validate:"required,gt=0"`
	PoKainID  types.SnowflakeID  `json:"po_kain_id" validate:"required"`
	PoLabelID *types.SnowflakeID `json:"po_label_id"`
}

func (c *ManufacturingOrderController) CreateMO(ctx *fiber.Ctx) error {
	var req createMORequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := validate.Struct(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}

	mo, err := c.Release.CreateMO(req.ArticleID, req.TargetQty, req.PoKainID, req.PoLabelID, userID(ctx))
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Manufacturing order created successfully",
		"data":    mo,
	})
}

func (c *ManufacturingOrderController) GetAllMO(ctx *fiber.Ctx) error {
	mos, err := c.Repo.List(ctx.Query("status"))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to retrieve manufacturing orders",
			"error":   err.Error(),
		})
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "Manufacturing orders retrieved successfully",
		"data":    mos,
	})
}

// GetMOAggregate MO + SPK + proyeksi hitungan, selalu dihitung ulang saat read
func (c *ManufacturingOrderController) GetMOAggregate(ctx *fiber.Ctx) error {
	moID, err := paramID(ctx, "id")
	if err != nil {
		return respondError(ctx, err)
	}

	var mo models.ManufacturingOrder
	if err := c.DB.First(&mo, "id = ?", moID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Manufacturing order not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	spks, err := c.Release.ListWorkOrders(moID)
	if err != nil {
		return respondError(ctx, err)
	}

	aggregate, err := c.Repo.GetAggregate(moID, mo.TargetQty)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "Manufacturing order retrieved successfully",
		"data": fiber.Map{
			"mo":        mo,
			"spks":      spks,
			"aggregate": aggregate,
		},
	})
}

type upgradeMORequest struct {
	PoLabelID types.SnowflakeID `json:"po_label_id" validate:"required"`
}

// UpgradeMO PARTIAL → RELEASED via PO Label
func (c *ManufacturingOrderController) UpgradeMO(ctx *fiber.Ctx) error {
	moID, err := paramID(ctx, "id")
	if err != nil {
		return respondError(ctx, err)
	}

	var req upgradeMORequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := validate.Struct(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}

	mo, err := c.Release.UpgradeMO(moID, req.PoLabelID, userID(ctx))
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "Manufacturing order released successfully",
		"data":    mo,
	})
}

func (c *ManufacturingOrderController) CancelMO(ctx *fiber.Ctx) error {
	moID, err := paramID(ctx, "id")
	if err != nil {
		return respondError(ctx, err)
	}

	mo, err := c.Release.CancelMO(moID, userID(ctx))
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "Manufacturing order cancelled successfully",
		"data":    mo,
	})
}

func (c *ManufacturingOrderController) GetWorkOrders(ctx *fiber.Ctx) error {
	moID, err := paramID(ctx, "id")
	if err != nil {
		return respondError(ctx, err)
	}

	spks, err := c.Release.ListWorkOrders(moID)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "Work orders retrieved successfully",
		"data":    spks,
	})
}

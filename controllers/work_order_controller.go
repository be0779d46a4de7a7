package controllers

import (
	"fiber-erp/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type WorkOrderController struct {
	DB      *gorm.DB
	Release *services.ReleaseService
	Alloc   *services.AllocationService
}

func NewWorkOrderController(db *gorm.DB, release *services.ReleaseService, alloc *services.AllocationService) *WorkOrderController {
	return &WorkOrderController{DB: db, Release: release, Alloc: alloc}
}

type reserveRequest struct {
	AllowDebt bool `json:"allow_debt"`
}

// ReserveMaterials PENDING → READY, alokasi FIFO untuk kebutuhan departemen
func (c *WorkOrderController) ReserveMaterials(ctx *fiber.Ctx) error {
	woID, err := paramID(ctx, "id")
	if err != nil {
		return respondError(ctx, err)
	}

	var req reserveRequest
	if err := ctx.BodyParser(&req); err != nil && err != fiber.ErrUnprocessableEntity {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	reservations, hasDebt, err := c.Release.ReserveMaterials(woID, req.AllowDebt, userID(ctx))
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "Materials reserved successfully",
		"data": fiber.Map{
			"reservations": reservations,
			"has_debt":     hasDebt,
		},
	})
}

func (c *WorkOrderController) GetReservations(ctx *fiber.Ctx) error {
	woID, err := paramID(ctx, "id")
	if err != nil {
		return respondError(ctx, err)
	}

	reservations, err := c.Alloc.ReservationsForWO(woID)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to retrieve reservations",
			"error":   err.Error(),
		})
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "Reservations retrieved successfully",
		"data":    reservations,
	})
}

// StartWO READY → RUNNING, stok reserved dikonsumsi di sini
func (c *WorkOrderController) StartWO(ctx *fiber.Ctx) error {
	woID, err := paramID(ctx, "id")
	if err != nil {
		return respondError(ctx, err)
	}

	wo, err := c.Release.StartWO(woID, userID(ctx))
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "Work order started successfully",
		"data":    wo,
	})
}

func (c *WorkOrderController) PauseWO(ctx *fiber.Ctx) error {
	woID, err := paramID(ctx, "id")
	if err != nil {
		return respondError(ctx, err)
	}

	wo, err := c.Release.PauseWO(woID, userID(ctx))
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "Work order paused successfully",
		"data":    wo,
	})
}

func (c *WorkOrderController) ResumeWO(ctx *fiber.Ctx) error {
	woID, err := paramID(ctx, "id")
	if err != nil {
		return respondError(ctx, err)
	}

	wo, err := c.Release.ResumeWO(woID, userID(ctx))
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "Work order resumed successfully",
		"data":    wo,
	})
}

type progressRequest struct {
	ProductionQty float64 `json:"production_qty" validate:"gte=0"`
	GoodQty       float64 `json:"good_qty" validate:"gte=0"`
	DefectQty     float64 `json:"defect_qty" validate:"gte=0"`
	ReworkQty     float64 `json:"rework_qty" validate:"gte=0"`
}

// RecordProgress entry harian, server yang jaga production = good + defect
func (c *WorkOrderController) RecordProgress(ctx *fiber.Ctx) error {
	woID, err := paramID(ctx, "id")
	if err != nil {
		return respondError(ctx, err)
	}

	var req progressRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	wo, err := c.Release.RecordProgress(woID, req.ProductionQty, req.GoodQty, req.DefectQty, req.ReworkQty, userID(ctx))
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "Progress recorded successfully",
		"data":    wo,
	})
}

func (c *WorkOrderController) CompleteWO(ctx *fiber.Ctx) error {
	woID, err := paramID(ctx, "id")
	if err != nil {
		return respondError(ctx, err)
	}

	wo, err := c.Release.CompleteWO(woID, userID(ctx))
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "Work order completed successfully",
		"data":    wo,
	})
}

func (c *WorkOrderController) CancelWO(ctx *fiber.Ctx) error {
	woID, err := paramID(ctx, "id")
	if err != nil {
		return respondError(ctx, err)
	}

	wo, err := c.Release.CancelWO(woID, userID(ctx))
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "Work order cancelled successfully",
		"data":    wo,
	})
}

// ReleaseReservation lepas satu klaim RESERVED tanpa menyentuh qty lot
func (c *WorkOrderController) ReleaseReservation(ctx *fiber.Ctx) error {
	reservationID, err := paramID(ctx, "id")
	if err != nil {
		return respondError(ctx, err)
	}

	reservation, err := c.Alloc.ReleaseReservation(reservationID, userID(ctx))
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "Reservation released successfully",
		"data":    reservation,
	})
}

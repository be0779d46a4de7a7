package controllers

import (
	"errors"
	"strconv"

	"fiber-erp/apperr"
	"fiber-erp/types"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// respondError petakan taxonomy error engine ke HTTP status
func respondError(ctx *fiber.Ctx, err error) error {
	var insufficient *apperr.InsufficientStockError
	var cyclic *apperr.CyclicBOMError

	switch {
	case apperr.IsValidation(err):
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	case apperr.IsInvalidState(err), apperr.IsConflict(err):
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	case errors.As(err, &insufficient):
		return ctx.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
			"data": fiber.Map{
				"material_id": strconv.FormatInt(insufficient.MaterialID, 10),
				"shortfall":   insufficient.Shortfall,
			},
		})
	case errors.As(err, &cyclic):
		return ctx.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
			"data":    fiber.Map{"path": cyclic.Path},
		})
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "record not found",
		})
	default:
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}
}

func userID(ctx *fiber.Ctx) int {
	if v, ok := ctx.Locals("userID").(float64); ok {
		return int(v)
	}
	return 0
}

func paramID(ctx *fiber.Ctx, name string) (types.SnowflakeID, error) {
	raw := ctx.Params(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperr.Validation("invalid id %s", raw)
	}
	return types.SnowflakeID(id), nil
}

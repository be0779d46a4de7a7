package controllers

import (
	"errors"
	"fmt"

	"fiber-erp/models"
	"fiber-erp/services"
	"fiber-erp/types"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type StockOpnameController struct {
	DB     *gorm.DB
	Opname *services.OpnameService
}

func NewStockOpnameController(db *gorm.DB, opname *services.OpnameService) *StockOpnameController {
	return &StockOpnameController{DB: db, Opname: opname}
}

type recordOpnameRequest struct {
	MaterialID  types.SnowflakeID `json:"material_id" validate:"required"`
	PhysicalQty float64           `json:"physical_qty" validate:"gte=0"`
}

// RecordOpname catat hasil hitung fisik lawan ledger
func (c *StockOpnameController) RecordOpname(ctx *fiber.Ctx) error {
	var req recordOpnameRequest
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

	record, err := c.Opname.RecordOpname(req.MaterialID, req.PhysicalQty, userID(ctx))
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Stock opname recorded successfully",
		"data":    record,
	})
}

func (c *StockOpnameController) GetAllOpname(ctx *fiber.Ctx) error {
	query := c.DB.Order("id DESC")
	if state := ctx.Query("state"); state != "" {
		query = query.Where("approval_state = ?", state)
	}

	var records []models.StockOpname
	if err := query.Find(&records).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to retrieve stock opname records",
			"error":   err.Error(),
		})
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "Stock opname records retrieved successfully",
		"data":    records,
	})
}

func (c *StockOpnameController) ApproveOpname(ctx *fiber.Ctx) error {
	opnameID, err := paramID(ctx, "id")
	if err != nil {
		return respondError(ctx, err)
	}

	record, err := c.Opname.Approve(opnameID, userID(ctx))
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "Stock opname approved successfully",
		"data":    record,
	})
}

type rejectOpnameRequest struct {
	Reason string `json:"reason" validate:"required"`
}

func (c *StockOpnameController) RejectOpname(ctx *fiber.Ctx) error {
	opnameID, err := paramID(ctx, "id")
	if err != nil {
		return respondError(ctx, err)
	}

	var req rejectOpnameRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	record, err := c.Opname.Reject(opnameID, req.Reason, userID(ctx))
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "Stock opname rejected successfully",
		"data":    record,
	})
}

// ExportOpname count sheet xlsx untuk satu record opname
func (c *StockOpnameController) ExportOpname(ctx *fiber.Ctx) error {
	opnameID, err := paramID(ctx, "id")
	if err != nil {
		return respondError(ctx, err)
	}

	var record models.StockOpname
	if err := c.DB.First(&record, "id = ?", opnameID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Stock opname not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	var material models.Material
	if err := c.DB.First(&material, "id = ?", record.MaterialID).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	var lots []models.StockLot
	if err := c.DB.Where("material_id = ?", record.MaterialID).
		Order("fifo_date ASC, id ASC").
		Find(&lots).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	f := excelize.NewFile()
	sheet := "Sheet1"

	headers := []string{"Lot Number", "Location", "FIFO Date", "Quantity"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	for rowIdx, lot := range lots {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", rowIdx+2), lot.LotNumber)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", rowIdx+2), lot.Location)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", rowIdx+2), lot.FifoDate.Format("2006-01-02"))
		f.SetCellValue(sheet, fmt.Sprintf("D%d", rowIdx+2), lot.Quantity)
	}

	summaryRow := len(lots) + 3
	f.SetCellValue(sheet, fmt.Sprintf("A%d", summaryRow), "Opname "+record.Code+" / "+material.MaterialCode)
	f.SetCellValue(sheet, fmt.Sprintf("A%d", summaryRow+1), "System Qty")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", summaryRow+1), record.SystemQty)
	f.SetCellValue(sheet, fmt.Sprintf("A%d", summaryRow+2), "Physical Qty")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", summaryRow+2), record.PhysicalQty)
	f.SetCellValue(sheet, fmt.Sprintf("A%d", summaryRow+3), "Variance %")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", summaryRow+3), record.VariancePct)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	ctx.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set("Content-Disposition", `attachment; filename="`+record.Code+`.xlsx"`)
	return ctx.Send(buf.Bytes())
}

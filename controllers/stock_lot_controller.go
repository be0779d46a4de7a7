package controllers

import (
	"time"

	"fiber-erp/controllers/idgen"
	"fiber-erp/models"
	"fiber-erp/types"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type StockLotController struct {
	DB *gorm.DB
}

func NewStockLotController(db *gorm.DB) *StockLotController {
	return &StockLotController{DB: db}
}

type createStockLotRequest struct {
	MaterialID types.SnowflakeID `json:"material_id" validate:"required"`
	Location   string            `json:"location"`
	LotNumber  string            `json:"lot_number" validate:"required"`
	Quantity   float64           `json:"quantity" validate:"required,gt=0"`
	FifoDate   string            `json:"fifo_date"` // YYYY-MM-DD, default hari ini
}

// CreateStockLot penerimaan stok, fifo_date jadi kunci urutan alokasi
func (c *StockLotController) CreateStockLot(ctx *fiber.Ctx) error {
	var req createStockLotRequest
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

	var material models.Material
	if err := c.DB.First(&material, "id = ?", req.MaterialID).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Material not found"})
	}

	fifoDate := time.Now()
	if req.FifoDate != "" {
		parsed, err := time.Parse("2006-01-02", req.FifoDate)
		if err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid fifo_date, expected YYYY-MM-DD",
			})
		}
		fifoDate = parsed
	}

	lot := models.StockLot{
		ID:         types.SnowflakeID(idgen.GenerateID()),
		MaterialID: req.MaterialID,
		Location:   req.Location,
		LotNumber:  req.LotNumber,
		Quantity:   req.Quantity,
		FifoDate:   fifoDate,
		CreatedBy:  userID(ctx),
	}

	if err := c.DB.Create(&lot).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to create stock lot",
			"error":   err.Error(),
		})
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Stock lot created successfully",
		"data":    lot,
	})
}

func (c *StockLotController) GetStockLots(ctx *fiber.Ctx) error {
	query := c.DB.Order("fifo_date ASC, id ASC")
	if materialID := ctx.Query("material_id"); materialID != "" {
		query = query.Where("material_id = ?", materialID)
	}

	var lots []models.StockLot
	if err := query.Find(&lots).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to retrieve stock lots",
			"error":   err.Error(),
		})
	}

	total := 0.0
	for _, lot := range lots {
		total += lot.Quantity
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "Stock lots retrieved successfully",
		"data": fiber.Map{
			"lots":      lots,
			"total_qty": total,
		},
	})
}

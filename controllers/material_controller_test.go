package controllers

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"fiber-erp/migration"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMaterialApp(t *testing.T) *fiber.App {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, migration.Migrate(db))

	controller := NewMaterialController(db)
	app := fiber.New()
	app.Post("/materials", controller.CreateMaterial)
	app.Get("/materials", controller.GetAllMaterials)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, body string) int {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestCreateMaterial(t *testing.T) {
	app := newMaterialApp(t)

	status := postJSON(t, app, "/materials",
		`{"material_code":"FAB-COTTON-30S","material_name":"Cotton Combed 30s","material_type":"FABRIC","uom":"m"}`)
	assert.Equal(t, fiber.StatusCreated, status)

	// material_code wajib
	status = postJSON(t, app, "/materials", `{"material_type":"FABRIC"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	// tipe tidak dikenal
	status = postJSON(t, app, "/materials",
		`{"material_code":"X-1","material_type":"PLASTIK"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestGetAllMaterialsFilter(t *testing.T) {
	app := newMaterialApp(t)

	require.Equal(t, fiber.StatusCreated, postJSON(t, app, "/materials",
		`{"material_code":"FAB-COTTON-30S","material_type":"FABRIC","uom":"m"}`))
	require.Equal(t, fiber.StatusCreated, postJSON(t, app, "/materials",
		`{"material_code":"LBL-WOVEN-MAIN","material_type":"LABEL","uom":"pcs"}`))

	resp, err := app.Test(httptest.NewRequest("GET", "/materials?type=LABEL", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Success bool `json:"success"`
		Data    []struct {
			MaterialCode string `json:"material_code"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Success)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "LBL-WOVEN-MAIN", body.Data[0].MaterialCode)
}

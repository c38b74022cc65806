package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"storefront-service/internal/catalog"
	"storefront-service/internal/models"
)

// ExportHandler writes the current catalog snapshot to a spreadsheet for
// offline review.
type ExportHandler struct {
	sync *catalog.SyncStore
}

func NewExportHandler(sync *catalog.SyncStore) *ExportHandler {
	return &ExportHandler{sync: sync}
}

var exportColumns = []string{
	"ID", "Name", "Description", "Price", "Discount %", "Effective Price",
	"Category", "Image URL", "Affiliate Link", "Created At", "Updated At",
}

// ExportProducts downloads the catalog as an xlsx workbook
// @Summary Export catalog
// @Description Writes the current catalog snapshot to an Excel workbook
// @Tags Admin
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/products/export [post]
func (h *ExportHandler) ExportProducts(c *gin.Context) {
	products := h.sync.Snapshot()

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Products"
	f.SetSheetName("Sheet1", sheetName)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	for i, col := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, col)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 20)
	}

	for row, p := range products {
		discount := 0
		if p.Discount != nil {
			discount = *p.Discount
		}
		values := []interface{}{
			p.ID.String(), p.Name, p.Description, p.Price, discount,
			p.EffectivePrice(), p.Category, p.ImageURL, p.AffiliateLink,
			p.CreatedAt.Format(time.RFC3339), p.UpdatedAt.Format(time.RFC3339),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheetName, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "EXPORT_FAILED",
				Message: "Failed to generate export file",
				Details: &models.JSON{"error": err.Error()},
			},
		})
		return
	}

	filename := fmt.Sprintf("catalog-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		buf.Bytes())
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"personas/pkg/logger"
)

var exportHeaders = []string{
	"ID", "First Name", "Last Name", "Email", "Phone", "Birth Date", "Active", "Notes", "Created At",
}

// ExportPersonas handles GET /personas/export, streaming the full table
// as an Excel workbook
func (h *PersonaHandler) ExportPersonas(c *gin.Context) {
	personas, err := h.personaService.GetAllPersonas()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	file := excelize.NewFile()
	defer file.Close()

	const sheet = "Personas"
	file.SetSheetName("Sheet1", sheet)

	for col, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		file.SetCellValue(sheet, cell, header)
	}

	for row, persona := range personas {
		values := []interface{}{
			persona.ID,
			persona.FirstName,
			persona.LastName,
			persona.Email,
			strOrEmpty(persona.Phone),
			strOrEmpty(persona.BirthDate),
			persona.IsActive,
			strOrEmpty(persona.Notes),
			persona.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			file.SetCellValue(sheet, cell, value)
		}
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="personas.xlsx"`)
	if err := file.Write(c.Writer); err != nil {
		logger.WithError(err).Errorf("failed to write personas export")
	}
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/florapedia/api/internal/model"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ExportHandler struct {
	db *gorm.DB
}

func NewExportHandler(db *gorm.DB) *ExportHandler {
	return &ExportHandler{db: db}
}

// Export streams the species catalog as a download.
func (h *ExportHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "json")

	var plants []model.Plant
	if err := h.db.Preload("Family").Preload("Attributes").
		Order("scientific_name ASC").Find(&plants).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load catalog"})
		return
	}

	switch format {
	case "json":
		h.exportJSON(c, plants)
	case "csv":
		h.exportCSV(c, plants)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid format. Use json or csv"})
	}
}

func (h *ExportHandler) exportJSON(c *gin.Context, plants []model.Plant) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=catalog-%s.json", time.Now().Format("2006-01-02")))
	c.JSON(http.StatusOK, plants)
}

func (h *ExportHandler) exportCSV(c *gin.Context, plants []model.Plant) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	// Header
	writer.Write([]string{"Scientific Name", "Family", "Common Names", "Attributes", "Description", "Images"})

	for _, p := range plants {
		attrs := make([]string, 0, len(p.Attributes))
		for _, a := range p.Attributes {
			attrs = append(attrs, a.Name)
		}

		writer.Write([]string{
			p.ScientificName,
			p.Family.Name,
			strings.Join(p.CommonNames, "; "),
			strings.Join(attrs, "; "),
			p.Description,
			strings.Join(p.Images, "; "),
		})
	}

	writer.Flush()

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=catalog-%s.csv", time.Now().Format("2006-01-02")))
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

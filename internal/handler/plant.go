package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/florapedia/api/internal/cache"
	"github.com/florapedia/api/internal/filter"
	"github.com/florapedia/api/internal/middleware"
	"github.com/florapedia/api/internal/model"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PlantHandler struct {
	db    *gorm.DB
	cache *cache.RedisCache
}

func NewPlantHandler(db *gorm.DB, redisCache *cache.RedisCache) *PlantHandler {
	return &PlantHandler{db: db, cache: redisCache}
}

// PlantPayload is the write shape for species records: family and
// attributes are referenced by name and resolved against the catalog.
type PlantPayload struct {
	ScientificName     string                 `json:"scientific_name" binding:"required"`
	CommonNames        []string               `json:"common_name"`
	Description        string                 `json:"description"`
	Family             string                 `json:"family" binding:"required"`
	Attributes         []string               `json:"attributes"`
	Images             []string               `json:"images"`
	SpeciesDescription []model.SpeciesSection `json:"species_description"`
}

// List returns species records with pagination, optional name search and
// family filter.
func (h *PlantHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	search := strings.TrimSpace(c.Query("search"))
	familyID := c.Query("family")

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	offset := (page - 1) * limit

	query := h.db.Model(&model.Plant{}).Preload("Family")

	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("scientific_name ILIKE ? OR array_to_string(common_names, ' ') ILIKE ?", pattern, pattern)
	}
	if familyID != "" {
		query = query.Where("family_id = ?", familyID)
	}

	var totalCount int64
	query.Count(&totalCount)

	var plants []model.Plant
	query.Order("scientific_name ASC").
		Offset(offset).
		Limit(limit).
		Find(&plants)

	items := make([]model.PlantListItem, 0, len(plants))
	for i := range plants {
		items = append(items, plants[i].ListItem())
	}

	totalPages := int((totalCount + int64(limit) - 1) / int64(limit))

	c.JSON(http.StatusOK, gin.H{
		"data":       items,
		"page":       page,
		"limit":      limit,
		"totalCount": totalCount,
		"totalPages": totalPages,
	})
}

// Detail returns a full species record, served from Redis when possible.
func (h *PlantHandler) Detail(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()

	if h.cache != nil {
		if raw, err := h.cache.GetPlant(ctx, id); err == nil {
			middleware.RecordPlantCache(true)
			c.Data(http.StatusOK, "application/json", raw)
			return
		}
	}
	middleware.RecordPlantCache(false)

	plant, err := h.loadPlant(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "plant not found"})
		return
	}

	if h.cache != nil {
		if raw, err := json.Marshal(plant); err == nil {
			if err := h.cache.SetPlant(ctx, id, raw); err != nil {
				log.Printf("Warning: failed to cache plant %s: %v", id, err)
			}
		}
	}

	c.JSON(http.StatusOK, plant)
}

// Create inserts a new species record and writes a create history entry.
func (h *PlantHandler) Create(c *gin.Context) {
	var req PlantPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	var created *model.Plant
	err := h.db.Transaction(func(tx *gorm.DB) error {
		plant, err := buildPlant(tx, req)
		if err != nil {
			return err
		}
		if err := tx.Create(plant).Error; err != nil {
			return err
		}

		history := model.History{
			Action:         model.ActionCreate,
			PlantID:        &plant.ID,
			ScientificName: plant.ScientificName,
			UpdatedBy:      c.GetString("username"),
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}

		created = plant
		return nil
	})
	if err != nil {
		status, msg := mutationError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusCreated, created)
}

// Update replaces a species record and snapshots the previous state.
func (h *PlantHandler) Update(c *gin.Context) {
	id := c.Param("id")

	var req PlantPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	var updated *model.Plant
	err := h.db.Transaction(func(tx *gorm.DB) error {
		existing, err := loadPlantTx(tx, id)
		if err != nil {
			return err
		}

		history := model.History{
			Action:         model.ActionUpdate,
			PlantID:        &existing.ID,
			ScientificName: existing.ScientificName,
			UpdatedBy:      c.GetString("username"),
		}
		if err := history.EncodeSnapshot(existing); err != nil {
			return err
		}

		replacement, err := buildPlant(tx, req)
		if err != nil {
			return err
		}
		replacement.ID = existing.ID
		replacement.CreatedAt = existing.CreatedAt

		if err := tx.Model(existing).Association("Attributes").Replace(replacement.Attributes); err != nil {
			return err
		}
		if err := tx.Omit("Attributes").Save(replacement).Error; err != nil {
			return err
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}

		updated = replacement
		return nil
	})
	if err != nil {
		status, msg := mutationError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	h.invalidate(c.Request.Context(), id)
	c.JSON(http.StatusOK, updated)
}

// Delete removes a species record, keeping a full snapshot for rollback.
func (h *PlantHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	err := h.db.Transaction(func(tx *gorm.DB) error {
		existing, err := loadPlantTx(tx, id)
		if err != nil {
			return err
		}

		history := model.History{
			Action:         model.ActionDelete,
			PlantID:        &existing.ID,
			ScientificName: existing.ScientificName,
			UpdatedBy:      c.GetString("username"),
		}
		if err := history.EncodeSnapshot(existing); err != nil {
			return err
		}

		if err := tx.Model(existing).Association("Attributes").Clear(); err != nil {
			return err
		}
		if err := tx.Delete(existing).Error; err != nil {
			return err
		}
		return tx.Create(&history).Error
	})
	if err != nil {
		status, msg := mutationError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	h.invalidate(c.Request.Context(), id)
	c.JSON(http.StatusOK, gin.H{"message": "deleted successfully"})
}

func (h *PlantHandler) loadPlant(id string) (*model.Plant, error) {
	return loadPlantTx(h.db, id)
}

func loadPlantTx(tx *gorm.DB, id string) (*model.Plant, error) {
	var plant model.Plant
	err := tx.Preload("Family").Preload("Attributes").First(&plant, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &plant, nil
}

func (h *PlantHandler) invalidate(ctx context.Context, id string) {
	if h.cache == nil {
		return
	}
	if err := h.cache.DeletePlant(ctx, id); err != nil {
		log.Printf("Warning: failed to invalidate plant cache %s: %v", id, err)
	}
}

// buildPlant resolves a payload's family and attribute names against the
// catalog. Unknown family names are an error; unknown attributes are
// created on the fly.
func buildPlant(tx *gorm.DB, req PlantPayload) (*model.Plant, error) {
	family, err := resolveFamily(tx, req.Family)
	if err != nil {
		return nil, err
	}

	attrs, err := resolveAttributes(tx, filter.NormalizeNames(req.Attributes))
	if err != nil {
		return nil, err
	}

	return &model.Plant{
		ScientificName:     strings.TrimSpace(req.ScientificName),
		CommonNames:        filter.NormalizeCommonNames(req.ScientificName, req.CommonNames),
		Description:        req.Description,
		FamilyID:           family.ID,
		Family:             *family,
		Attributes:         attrs,
		Images:             req.Images,
		SpeciesDescription: req.SpeciesDescription,
	}, nil
}

func resolveFamily(tx *gorm.DB, name string) (*model.Family, error) {
	var family model.Family
	if err := tx.Where("name = ?", strings.TrimSpace(name)).First(&family).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errUnknownFamily
		}
		return nil, err
	}
	return &family, nil
}

func resolveAttributes(tx *gorm.DB, names []string) ([]model.Attribute, error) {
	attrs := make([]model.Attribute, 0, len(names))
	for _, name := range names {
		var attr model.Attribute
		err := tx.Where("name = ?", name).First(&attr).Error
		if err == gorm.ErrRecordNotFound {
			attr = model.Attribute{Name: name}
			err = tx.Create(&attr).Error
		}
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, attr)
	}
	return attrs, nil
}

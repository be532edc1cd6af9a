package handler

import (
	"log"
	"net/http"
	"strings"

	"github.com/florapedia/api/internal/cache"
	"github.com/florapedia/api/internal/model"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type FamilyHandler struct {
	db    *gorm.DB
	cache *cache.RedisCache
}

func NewFamilyHandler(db *gorm.DB, redisCache *cache.RedisCache) *FamilyHandler {
	return &FamilyHandler{db: db, cache: redisCache}
}

// List returns all taxonomic families, name-ordered.
func (h *FamilyHandler) List(c *gin.Context) {
	var families []model.Family
	h.db.Order("name ASC").Find(&families)
	c.JSON(http.StatusOK, families)
}

type CreateFamilyRequest struct {
	Name string `json:"name" binding:"required"`
}

// Create adds a new family.
func (h *FamilyHandler) Create(c *gin.Context) {
	var req CreateFamilyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	var existing model.Family
	if err := h.db.Where("name = ?", name).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "family already exists"})
		return
	}

	family := model.Family{Name: name}
	if err := h.db.Create(&family).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create family"})
		return
	}

	h.invalidateMap(c)
	c.JSON(http.StatusCreated, family)
}

// Delete removes a family. Refused while species still reference it.
func (h *FamilyHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	var family model.Family
	if err := h.db.First(&family, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "family not found"})
		return
	}

	var speciesCount int64
	h.db.Model(&model.Plant{}).Where("family_id = ?", id).Count(&speciesCount)
	if speciesCount > 0 {
		c.JSON(http.StatusConflict, gin.H{
			"error": "family still has species",
			"count": speciesCount,
		})
		return
	}

	if err := h.db.Delete(&family).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete family"})
		return
	}

	h.invalidateMap(c)
	c.JSON(http.StatusOK, gin.H{"message": "deleted successfully"})
}

// FamilyMap returns a name->id map, cached in Redis. The contribution
// views resolve proposed family names through this map.
func (h *FamilyHandler) FamilyMap(c *gin.Context) {
	ctx := c.Request.Context()

	if h.cache != nil {
		if cached, err := h.cache.GetFamilyMap(ctx); err == nil && len(cached) > 0 {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	var families []model.Family
	h.db.Find(&families)

	result := make(map[string]string, len(families))
	for _, f := range families {
		result[f.Name] = f.ID
	}

	if h.cache != nil {
		if err := h.cache.SetFamilyMap(ctx, result); err != nil {
			log.Printf("Warning: failed to cache family map: %v", err)
		}
	}

	c.JSON(http.StatusOK, result)
}

func (h *FamilyHandler) invalidateMap(c *gin.Context) {
	if h.cache == nil {
		return
	}
	if err := h.cache.InvalidateFamilyMap(c.Request.Context()); err != nil {
		log.Printf("Warning: failed to invalidate family map: %v", err)
	}
}

// ListAttributes returns the attribute vocabulary, name-ordered.
func (h *FamilyHandler) ListAttributes(c *gin.Context) {
	var attributes []model.Attribute
	h.db.Order("name ASC").Find(&attributes)
	c.JSON(http.StatusOK, attributes)
}

package handler

import (
	"log"
	"net/http"
	"strconv"

	"github.com/florapedia/api/internal/cache"
	"github.com/florapedia/api/internal/middleware"
	"github.com/florapedia/api/internal/model"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type HistoryHandler struct {
	db    *gorm.DB
	cache *cache.RedisCache
}

func NewHistoryHandler(db *gorm.DB, redisCache *cache.RedisCache) *HistoryHandler {
	return &HistoryHandler{db: db, cache: redisCache}
}

// HistoryItem is a history row plus its rollback eligibility.
type HistoryItem struct {
	model.History
	CanUndo bool `json:"canUndo"`
}

// List returns the audit log, newest first, with pagination.
func (h *HistoryHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	offset := (page - 1) * limit

	var total int64
	h.db.Model(&model.History{}).Count(&total)

	var entries []model.History
	h.db.Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&entries)

	items := make([]HistoryItem, 0, len(entries))
	for i := range entries {
		items = append(items, HistoryItem{History: entries[i], CanUndo: entries[i].CanUndo()})
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))

	c.JSON(http.StatusOK, gin.H{
		"data":       items,
		"total":      total,
		"page":       page,
		"limit":      limit,
		"totalPages": totalPages,
	})
}

// Rollback undoes one history entry: an update restores its before
// snapshot, a delete recreates the record, a create removes it. The
// rollback itself is logged, and an entry can only be undone once.
func (h *HistoryHandler) Rollback(c *gin.Context) {
	entryID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid history ID"})
		return
	}

	username := c.GetString("username")
	var plantID string

	err = h.db.Transaction(func(tx *gorm.DB) error {
		var entry model.History
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&entry, entryID).Error; err != nil {
			return err
		}

		if !entry.CanUndo() {
			return errNotUndoable
		}

		if entry.PlantID != nil {
			plantID = *entry.PlantID
		}

		rollback := model.History{
			Action:         model.ActionRollback,
			PlantID:        entry.PlantID,
			ScientificName: entry.ScientificName,
			UpdatedBy:      username,
		}

		switch entry.Action {
		case model.ActionCreate:
			// Undo a create: remove the record it introduced.
			current, err := loadPlantTx(tx, plantID)
			if err != nil {
				return err
			}
			if err := rollback.EncodeSnapshot(current); err != nil {
				return err
			}
			if err := tx.Model(current).Association("Attributes").Clear(); err != nil {
				return err
			}
			if err := tx.Delete(current).Error; err != nil {
				return err
			}

		case model.ActionUpdate:
			snapshot, err := entry.Snapshot()
			if err != nil || snapshot == nil {
				return errBadSnapshot
			}
			current, err := loadPlantTx(tx, plantID)
			if err != nil {
				return err
			}
			if err := rollback.EncodeSnapshot(current); err != nil {
				return err
			}
			if err := restorePlant(tx, snapshot, true); err != nil {
				return err
			}

		case model.ActionDelete:
			snapshot, err := entry.Snapshot()
			if err != nil || snapshot == nil {
				return errBadSnapshot
			}
			if err := restorePlant(tx, snapshot, false); err != nil {
				return err
			}

		default:
			return errNotUndoable
		}

		if err := tx.Create(&rollback).Error; err != nil {
			return err
		}

		entry.RolledBack = true
		return tx.Save(&entry).Error
	})
	if err != nil {
		middleware.RecordRollback(false)
		switch err {
		case gorm.ErrRecordNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "history entry not found"})
		case errNotUndoable:
			c.JSON(http.StatusConflict, gin.H{"error": "entry cannot be rolled back"})
		case errBadSnapshot:
			c.JSON(http.StatusConflict, gin.H{"error": "entry has no usable snapshot"})
		default:
			log.Printf("Rollback of history %d failed: %v", entryID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "rollback failed"})
		}
		return
	}

	middleware.RecordRollback(true)

	if h.cache != nil && plantID != "" {
		if err := h.cache.DeletePlant(c.Request.Context(), plantID); err != nil {
			log.Printf("Warning: failed to invalidate plant cache %s: %v", plantID, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// restorePlant writes a snapshot back into the catalog. Families and
// attributes referenced by the snapshot may have been removed since; they
// are recreated by name so the restored record stays coherent.
func restorePlant(tx *gorm.DB, snapshot *model.Plant, exists bool) error {
	family, err := resolveFamily(tx, snapshot.Family.Name)
	if err == errUnknownFamily {
		family = &model.Family{Name: snapshot.Family.Name}
		err = tx.Create(family).Error
	}
	if err != nil {
		return err
	}

	names := make([]string, 0, len(snapshot.Attributes))
	for _, a := range snapshot.Attributes {
		names = append(names, a.Name)
	}
	attrs, err := resolveAttributes(tx, names)
	if err != nil {
		return err
	}

	restored := model.Plant{
		ID:                 snapshot.ID,
		ScientificName:     snapshot.ScientificName,
		CommonNames:        snapshot.CommonNames,
		Description:        snapshot.Description,
		FamilyID:           family.ID,
		Images:             snapshot.Images,
		SpeciesDescription: snapshot.SpeciesDescription,
		CreatedAt:          snapshot.CreatedAt,
	}

	if exists {
		if err := tx.Model(&model.Plant{ID: snapshot.ID}).Association("Attributes").Replace(attrs); err != nil {
			return err
		}
		return tx.Omit("Attributes").Save(&restored).Error
	}

	restored.Attributes = attrs
	return tx.Create(&restored).Error
}

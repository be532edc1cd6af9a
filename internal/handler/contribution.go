package handler

import (
	"log"
	"net/http"
	"strconv"

	"github.com/florapedia/api/internal/cache"
	"github.com/florapedia/api/internal/diff"
	"github.com/florapedia/api/internal/middleware"
	"github.com/florapedia/api/internal/model"
	"github.com/florapedia/api/internal/review"
	"github.com/florapedia/api/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ContributionHandler struct {
	db    *gorm.DB
	cache *cache.RedisCache
}

func NewContributionHandler(db *gorm.DB, redisCache *cache.RedisCache) *ContributionHandler {
	return &ContributionHandler{db: db, cache: redisCache}
}

type SubmitContributionRequest struct {
	Type      string                  `json:"type" binding:"required"`
	PlantRef  *string                 `json:"plant_ref"`
	Message   string                  `json:"c_message"`
	Plant     model.ContributionPlant `json:"plant" binding:"required"`
	NewImages []string                `json:"newImages"`
}

// Submit creates a pending contribution from any authenticated user.
func (h *ContributionHandler) Submit(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req SubmitContributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if problems := validator.ValidateContribution(req.Type, req.PlantRef, req.Plant); len(problems) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contribution", "problems": problems})
		return
	}

	// An update must reference a record that actually exists.
	if req.Type == model.ContributionTypeUpdate {
		var count int64
		h.db.Model(&model.Plant{}).Where("id = ?", *req.PlantRef).Count(&count)
		if count == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "referenced plant not found"})
			return
		}
	}

	contribution := model.Contribution{
		ID:       uuid.NewString(),
		UserID:   userID.(int64),
		Message:  req.Message,
		Type:     req.Type,
		Status:   model.StatusPending,
		PlantRef: req.PlantRef,
		Data: model.ContributionData{
			Plant:     req.Plant,
			NewImages: req.NewImages,
		},
	}

	if err := h.db.Create(&contribution).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create contribution"})
		return
	}

	h.db.Preload("User").First(&contribution, "id = ?", contribution.ID)
	c.JSON(http.StatusCreated, contribution)
}

// List returns contributions for the review queue, pending first unless a
// status filter narrows the view.
func (h *ContributionHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	status := c.Query("status")

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	offset := (page - 1) * limit

	query := h.db.Model(&model.Contribution{}).Preload("User")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var totalCount int64
	query.Count(&totalCount)

	var contributions []model.Contribution
	query.Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&contributions)

	totalPages := int((totalCount + int64(limit) - 1) / int64(limit))

	c.JSON(http.StatusOK, gin.H{
		"data":       contributions,
		"page":       page,
		"limit":      limit,
		"totalCount": totalCount,
		"totalPages": totalPages,
	})
}

// Detail returns a single contribution.
func (h *ContributionHandler) Detail(c *gin.Context) {
	var contribution model.Contribution
	if err := h.db.Preload("User").First(&contribution, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "contribution not found"})
		return
	}
	c.JSON(http.StatusOK, contribution)
}

// Compare returns the contribution together with the original record and
// the structured field-by-field diff. Create contributions have no
// original side and come back with a null diff.
func (h *ContributionHandler) Compare(c *gin.Context) {
	var contribution model.Contribution
	if err := h.db.Preload("User").First(&contribution, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "contribution not found"})
		return
	}

	if contribution.Type != model.ContributionTypeUpdate {
		c.JSON(http.StatusOK, gin.H{
			"contribution": contribution,
			"original":     nil,
			"diff":         nil,
		})
		return
	}

	if contribution.PlantRef == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "update contribution has no plant reference"})
		return
	}

	original, err := loadPlantTx(h.db, *contribution.PlantRef)
	if err != nil {
		// Dangling reference: the diff cannot be computed.
		c.JSON(http.StatusNotFound, gin.H{"error": "referenced plant not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"contribution": contribution,
		"original":     original,
		"diff":         diff.Compare(original, contribution.Data.Plant),
	})
}

type ModerateRequest struct {
	Action  string `json:"action" binding:"required"`
	Message string `json:"message"`
}

// Moderate applies an approve/reject decision. Approval publishes the
// proposed record into the catalog in the same transaction; the response
// body is the stored contribution, which the caller adopts verbatim.
func (h *ContributionHandler) Moderate(c *gin.Context) {
	id := c.Param("id")

	var req ModerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	reviewerID := c.GetInt64("userID")

	var contribution model.Contribution
	err := h.db.Transaction(func(tx *gorm.DB) error {
		// Row lock so two reviewers cannot decide the same record.
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&contribution, "id = ?", id).Error; err != nil {
			return err
		}

		if err := review.ValidateDecision(contribution.Status, req.Action, req.Message); err != nil {
			return err
		}

		if req.Action == model.StatusApproved {
			if err := h.publish(tx, &contribution, c.GetString("username")); err != nil {
				return err
			}
		}

		contribution.Status = req.Action
		contribution.ReviewedBy = &reviewerID
		contribution.ReviewMessage = req.Message
		return tx.Save(&contribution).Error
	})
	if err != nil {
		middleware.RecordModeration(req.Action, false)
		switch {
		case err == gorm.ErrRecordNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "contribution not found"})
		case review.IsPrecondition(err):
			status := http.StatusBadRequest
			if err == review.ErrNotPending {
				status = http.StatusConflict
			}
			c.JSON(status, gin.H{"error": err.Error()})
		default:
			log.Printf("Moderation of %s failed: %v", id, err)
			status, msg := mutationError(err)
			c.JSON(status, gin.H{"error": msg})
		}
		return
	}

	middleware.RecordModeration(req.Action, true)

	// A published update supersedes any cached detail snapshot.
	if h.cache != nil && req.Action == model.StatusApproved && contribution.PlantRef != nil {
		if err := h.cache.DeletePlant(c.Request.Context(), *contribution.PlantRef); err != nil {
			log.Printf("Warning: failed to invalidate plant cache %s: %v", *contribution.PlantRef, err)
		}
	}

	h.db.Preload("User").First(&contribution, "id = ?", contribution.ID)
	c.JSON(http.StatusOK, contribution)
}

// publish applies an approved proposal to the catalog and writes the
// matching history row.
func (h *ContributionHandler) publish(tx *gorm.DB, contribution *model.Contribution, reviewer string) error {
	proposal := contribution.Data.Plant
	payload := PlantPayload{
		ScientificName:     proposal.ScientificName,
		CommonNames:        proposal.CommonNames,
		Description:        proposal.Description,
		Family:             proposal.Family,
		Attributes:         proposal.Attributes,
		Images:             mergeImages(proposal.Images, contribution.Data.NewImages),
		SpeciesDescription: proposal.SpeciesDescription,
	}

	switch contribution.Type {
	case model.ContributionTypeCreate:
		plant, err := buildPlant(tx, payload)
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
			UpdatedBy:      reviewer,
		}
		return tx.Create(&history).Error

	case model.ContributionTypeUpdate:
		existing, err := loadPlantTx(tx, *contribution.PlantRef)
		if err != nil {
			return err
		}

		history := model.History{
			Action:         model.ActionUpdate,
			PlantID:        &existing.ID,
			ScientificName: existing.ScientificName,
			UpdatedBy:      reviewer,
		}
		if err := history.EncodeSnapshot(existing); err != nil {
			return err
		}

		replacement, err := buildPlant(tx, payload)
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
		return tx.Create(&history).Error

	default:
		return review.ErrInvalidAction
	}
}

func mergeImages(images, newImages []string) []string {
	merged := append([]string(nil), images...)
	for _, img := range newImages {
		found := false
		for _, existing := range merged {
			if existing == img {
				found = true
				break
			}
		}
		if !found {
			merged = append(merged, img)
		}
	}
	return merged
}

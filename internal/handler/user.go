package handler

import (
	"net/http"
	"strconv"

	"github.com/florapedia/api/internal/model"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type UserHandler struct {
	db *gorm.DB
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

// List returns user accounts with pagination.
func (h *UserHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	offset := (page - 1) * limit

	var totalCount int64
	h.db.Model(&model.User{}).Count(&totalCount)

	var users []model.User
	h.db.Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&users)

	totalPages := int((totalCount + int64(limit) - 1) / int64(limit))

	c.JSON(http.StatusOK, gin.H{
		"data":       users,
		"page":       page,
		"limit":      limit,
		"totalCount": totalCount,
		"totalPages": totalPages,
	})
}

type UpdateRoleRequest struct {
	RoleName string `json:"roleName" binding:"required"`
}

// UpdateRole changes a user's role. Route is super-admin gated.
func (h *UserHandler) UpdateRole(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user ID"})
		return
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "roleName is required"})
		return
	}

	validRoles := map[string]bool{
		model.RoleUser:       true,
		model.RoleAdmin:      true,
		model.RoleSuperAdmin: true,
	}
	if !validRoles[req.RoleName] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
		return
	}

	if userID == c.GetInt64("userID") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot change own role"})
		return
	}

	var user model.User
	if err := h.db.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	user.Role = req.RoleName
	if err := h.db.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update user"})
		return
	}

	c.JSON(http.StatusOK, user)
}

type BanRequest struct {
	IsBanned *bool `json:"is_banned" binding:"required"`
}

// Ban sets or clears the banned flag. Super-admin accounts cannot be
// banned.
func (h *UserHandler) Ban(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user ID"})
		return
	}

	var req BanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "is_banned is required"})
		return
	}

	var user model.User
	if err := h.db.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	if user.Role == model.RoleSuperAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot ban a super-admin"})
		return
	}

	user.IsBanned = *req.IsBanned
	if err := h.db.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update user"})
		return
	}

	// Banned accounts lose their refresh tokens immediately; access
	// tokens age out on their own.
	if user.IsBanned {
		h.db.Model(&model.RefreshToken{}).Where("user_id = ?", user.ID).Update("revoked", true)
	}

	c.JSON(http.StatusOK, user)
}

// Delete removes a user account. Route is super-admin gated.
func (h *UserHandler) Delete(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user ID"})
		return
	}

	if userID == c.GetInt64("userID") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot delete own account"})
		return
	}

	var user model.User
	if err := h.db.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).Delete(&model.RefreshToken{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "deleted successfully"})
}

package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/florapedia/api/internal/model"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AdminHandler struct {
	db *gorm.DB
}

func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{db: db}
}

type DashboardStats struct {
	TotalSpecies          int64            `json:"totalSpecies"`
	TotalFamilies         int64            `json:"totalFamilies"`
	TotalUsers            int64            `json:"totalUsers"`
	TotalContributions    int64            `json:"totalContributions"`
	PendingContributions  int64            `json:"pendingContributions"`
	ApprovedContributions int64            `json:"approvedContributions"`
	RejectedContributions int64            `json:"rejectedContributions"`
	SpeciesByFamily       map[string]int64 `json:"speciesByFamily"`
	TopContributors       []NameCount      `json:"topContributors"`
	RecentActions         []model.History  `json:"recentActions"`
}

type NameCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// GetStats returns dashboard statistics
func (h *AdminHandler) GetStats(c *gin.Context) {
	var stats DashboardStats

	h.db.Model(&model.Plant{}).Count(&stats.TotalSpecies)
	h.db.Model(&model.Family{}).Count(&stats.TotalFamilies)
	h.db.Model(&model.User{}).Count(&stats.TotalUsers)

	// Contributions by status
	h.db.Model(&model.Contribution{}).Count(&stats.TotalContributions)
	h.db.Model(&model.Contribution{}).Where("status = ?", model.StatusPending).Count(&stats.PendingContributions)
	h.db.Model(&model.Contribution{}).Where("status = ?", model.StatusApproved).Count(&stats.ApprovedContributions)
	h.db.Model(&model.Contribution{}).Where("status = ?", model.StatusRejected).Count(&stats.RejectedContributions)

	// Species per family
	stats.SpeciesByFamily = make(map[string]int64)
	type familyCount struct {
		Name  string
		Count int64
	}
	var familyCounts []familyCount
	h.db.Model(&model.Plant{}).
		Select("families.name, count(*) as count").
		Joins("JOIN families ON families.id = plants.family_id").
		Group("families.name").
		Scan(&familyCounts)
	for _, fc := range familyCounts {
		stats.SpeciesByFamily[fc.Name] = fc.Count
	}

	// Top contributors (last 90 days)
	ninetyDaysAgo := time.Now().AddDate(0, 0, -90)
	h.db.Model(&model.Contribution{}).
		Select("users.username as name, count(*) as count").
		Joins("JOIN users ON users.id = contributions.user_id").
		Where("contributions.created_at > ?", ninetyDaysAgo).
		Group("users.username").
		Order("count DESC").
		Limit(10).
		Scan(&stats.TopContributors)

	// Recent catalog activity
	h.db.Order("created_at DESC").Limit(10).Find(&stats.RecentActions)

	c.JSON(http.StatusOK, stats)
}

// GetModerationAnalytics returns decision counts over a trailing window.
func (h *AdminHandler) GetModerationAnalytics(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))
	if days < 1 || days > 365 {
		days = 30
	}

	startDate := time.Now().AddDate(0, 0, -days)

	type statusCount struct {
		Status string
		Count  int64
	}
	var counts []statusCount
	h.db.Model(&model.Contribution{}).
		Select("status, count(*) as count").
		Where("updated_at > ? AND status <> ?", startDate, model.StatusPending).
		Group("status").
		Scan(&counts)

	byStatus := make(map[string]int64, len(counts))
	for _, sc := range counts {
		byStatus[sc.Status] = sc.Count
	}

	c.JSON(http.StatusOK, gin.H{
		"days":      days,
		"decisions": byStatus,
	})
}

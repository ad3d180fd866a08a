package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/fridgewise/backend/internal/model"
)

// DashboardHandler handles dashboard-related requests
type DashboardHandler struct {
	db *gorm.DB
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{
		db: db,
	}
}

// DashboardStats represents dashboard statistics
type DashboardStats struct {
	TotalIngredients int   `json:"totalIngredients"`
	Fresh            int   `json:"fresh"`
	ExpiringSoon     int   `json:"expiringSoon"`
	Expired          int   `json:"expired"`
	RecipesGenerated int64 `json:"recipesGenerated"`
}

// GetStats returns expiry-bucket counts and the generated-recipe total for
// the current user
func (h *DashboardHandler) GetStats(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var ingredients []model.Ingredient
	if err := h.db.WithContext(c.Request.Context()).
		Where("user_id = ?", userID).
		Find(&ingredients).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch ingredients"})
		return
	}

	now := time.Now()
	stats := DashboardStats{TotalIngredients: len(ingredients)}
	for i := range ingredients {
		switch ingredients[i].StatusAt(now) {
		case model.ExpiryExpired:
			stats.Expired++
		case model.ExpiryExpiringSoon:
			stats.ExpiringSoon++
		default:
			stats.Fresh++
		}
	}

	if err := h.db.WithContext(c.Request.Context()).
		Model(&model.Recipe{}).
		Where("user_id = ?", userID).
		Count(&stats.RecipesGenerated).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count recipes"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

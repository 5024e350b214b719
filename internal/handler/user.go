package handler

import (
	"net/http"

	"github.com/aman-churiwal/budget-buddy-backend/internal/models"
	"github.com/aman-churiwal/budget-buddy-backend/internal/repository"
	"github.com/aman-churiwal/budget-buddy-backend/internal/tier"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	users   *repository.UserRepository
	catalog *tier.Catalog
}

func NewUserHandler(users *repository.UserRepository, catalog *tier.Catalog) *UserHandler {
	return &UserHandler{users: users, catalog: catalog}
}

func (h *UserHandler) Profile(c *gin.Context) {
	user := c.MustGet("user").(*models.User)

	c.JSON(http.StatusOK, gin.H{
		"user":      user,
		"tier_info": h.catalog.ProfileOf(user.Tier),
	})
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req struct {
		FullName string `json:"full_name" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := c.MustGet("user").(*models.User)
	ctx := c.Request.Context()

	err := h.users.UpdateProfile(ctx, user.ID, map[string]interface{}{
		"full_name": req.FullName,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Profile update failed"})
		return
	}

	user.FullName = req.FullName

	c.JSON(http.StatusOK, gin.H{
		"user":      user,
		"tier_info": h.catalog.ProfileOf(user.Tier),
	})
}

// Recomputes the tier from the reported savings balance
func (h *UserHandler) UpdateTier(c *gin.Context) {
	var req struct {
		TotalSavings float64 `json:"total_savings" binding:"min=0"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := c.MustGet("user").(*models.User)
	ctx := c.Request.Context()

	newTier := h.catalog.TierForSavings(req.TotalSavings)

	if err := h.users.UpdateTier(ctx, user.ID, newTier, req.TotalSavings); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Tier update failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Tier updated successfully",
		"old_tier":      user.Tier,
		"new_tier":      newTier,
		"total_savings": req.TotalSavings,
		"tier_info":     h.catalog.ProfileOf(newTier),
	})
}

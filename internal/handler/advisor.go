package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/aman-churiwal/budget-buddy-backend/internal/ai"
	"github.com/aman-churiwal/budget-buddy-backend/internal/models"
	"github.com/aman-churiwal/budget-buddy-backend/internal/security"
	"github.com/aman-churiwal/budget-buddy-backend/internal/service"
	"github.com/aman-churiwal/budget-buddy-backend/internal/tier"
	"github.com/gin-gonic/gin"
)

type AdvisorHandler struct {
	advisor *service.AdvisorService
}

func NewAdvisorHandler(advisor *service.AdvisorService) *AdvisorHandler {
	return &AdvisorHandler{advisor: advisor}
}

func (h *AdvisorHandler) Chat(c *gin.Context) {
	var req struct {
		Message string `json:"message" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := c.MustGet("user").(*models.User)

	result, err := h.advisor.Chat(c.Request.Context(), user, req.Message)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *AdvisorHandler) Insights(c *gin.Context) {
	var req struct {
		MonthlyIncome     float64            `json:"monthly_income" binding:"required,gt=0"`
		MonthlyExpenses   float64            `json:"monthly_expenses" binding:"required,gt=0"`
		ExpenseCategories map[string]float64 `json:"expense_categories" binding:"required"`
		SavingsGoal       float64            `json:"savings_goal"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := c.MustGet("user").(*models.User)

	result, err := h.advisor.Insights(c.Request.Context(), user, service.InsightsInput{
		MonthlyIncome:     req.MonthlyIncome,
		MonthlyExpenses:   req.MonthlyExpenses,
		ExpenseCategories: req.ExpenseCategories,
		SavingsGoal:       req.SavingsGoal,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *AdvisorHandler) Recommendations(c *gin.Context) {
	var req struct {
		TargetBudget float64  `json:"target_budget" binding:"required,gt=0"`
		Goals        []string `json:"goals" binding:"required,min=1"`
		Timeframe    string   `json:"timeframe" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := c.MustGet("user").(*models.User)

	result, err := h.advisor.Recommendations(c.Request.Context(), user, service.RecommendationsInput{
		TargetBudget: req.TargetBudget,
		Goals:        req.Goals,
		Timeframe:    req.Timeframe,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *AdvisorHandler) Usage(c *gin.Context) {
	user := c.MustGet("user").(*models.User)

	stats, err := h.advisor.Usage(c.Request.Context(), user)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// Savings needed to unlock each gated tier, for the upsell messages
var tierUnlockAmounts = map[string]string{
	"Silver Saver": "₱500+",
	"Gold Saver":   "₱1,000+",
}

// Maps pipeline errors to responses. Sanitizer and upstream details are
// logged, never returned - the client gets a generic message.
func (h *AdvisorHandler) respondError(c *gin.Context, err error) {
	requestID := c.GetString("request_id")

	var tierErr *service.TierRequiredError
	if errors.As(err, &tierErr) {
		c.JSON(http.StatusForbidden, gin.H{
			"error": fmt.Sprintf("This feature requires %s tier or higher. Save %s to unlock it!",
				tierErr.Required, tierUnlockAmounts[tierErr.Required]),
		})
		return
	}

	var rateErr *service.RateLimitedError
	if errors.As(err, &rateErr) {
		message := fmt.Sprintf("Daily AI chat limit reached (%d requests). Upgrade to Platinum tier for unlimited access!", rateErr.Limit)
		if rateErr.Category == tier.CategoryInsights {
			message = fmt.Sprintf("Monthly insights limit reached (%d insights). Upgrade to Platinum tier for unlimited access!", rateErr.Limit)
		}

		c.JSON(http.StatusTooManyRequests, gin.H{
			"error": message,
			"limit": rateErr.Limit,
		})
		return
	}

	if errors.Is(err, security.ErrInvalidInput) {
		log.Printf("[%s] Input rejected: %v", requestID, err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Your message contains potentially harmful content. Please rephrase your financial question.",
		})
		return
	}

	if errors.Is(err, ai.ErrTimeout) {
		log.Printf("[%s] AI provider timeout", requestID)
		c.JSON(http.StatusGatewayTimeout, gin.H{
			"error": "AI service timeout",
		})
		return
	}

	if errors.Is(err, ai.ErrNotConfigured) || errors.Is(err, ai.ErrUnavailable) {
		log.Printf("[%s] AI provider failure: %v", requestID, err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "AI service temporarily unavailable",
		})
		return
	}

	log.Printf("[%s] Advisory request failed: %v", requestID, err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "AI service error",
	})
}

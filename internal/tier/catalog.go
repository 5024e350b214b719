package tier

import (
	"github.com/aman-churiwal/budget-buddy-backend/internal/config"
)

// Endpoint categories that carry usage limits.
const (
	CategoryChat     = "chat"
	CategoryInsights = "insights"
)

// Savings tier hierarchy. Unknown tier names resolve to level 0.
var tierLevels = map[string]int{
	"Starter":        0,
	"Bronze Saver":   1,
	"Silver Saver":   2,
	"Gold Saver":     3,
	"Platinum Saver": 4,
	"Diamond Saver":  5,
	"Elite Saver":    6,
}

// Derived view of what a tier unlocks. Never stored, always recomputed.
type Profile struct {
	Tier     string          `json:"tier"`
	Level    int             `json:"level"`
	Features map[string]bool `json:"features"`
	Limits   map[string]int  `json:"limits"`
}

// Catalog resolves tier names to levels, feature flags and usage limits.
// Limit tables come from config; a limit of -1 means unlimited.
type Catalog struct {
	chatPerDay       []int
	insightsPerMonth []int
	thresholds       []config.SavingsThreshold
}

func NewCatalog(cfg config.TierConfig) *Catalog {
	return &Catalog{
		chatPerDay:       cfg.ChatRequestsPerDay,
		insightsPerMonth: cfg.InsightsPerMonth,
		thresholds:       cfg.SavingsThresholds,
	}
}

func (c *Catalog) LevelOf(tierName string) int {
	return tierLevels[tierName]
}

// Checks whether a user's tier meets the floor required for a feature.
func (c *Catalog) MeetsTier(userTier, requiredTier string) bool {
	return c.LevelOf(userTier) >= c.LevelOf(requiredTier)
}

func (c *Catalog) ProfileOf(tierName string) Profile {
	level := c.LevelOf(tierName)

	return Profile{
		Tier:  tierName,
		Level: level,
		Features: map[string]bool{
			"basic_ai_chat":     level >= 1,
			"premium_themes":    level >= 2,
			"advanced_insights": level >= 3,
			"export_data":       level >= 3,
			"unlimited_ai":      level >= 4,
			"priority_support":  level >= 4,
		},
		Limits: map[string]int{
			CategoryChat:     c.chatPerDay[level],
			CategoryInsights: c.insightsPerMonth[level],
		},
	}
}

// Returns the limit for one endpoint category, -1 for unlimited.
func (c *Catalog) LimitFor(tierName, category string) int {
	level := c.LevelOf(tierName)

	switch category {
	case CategoryChat:
		return c.chatPerDay[level]
	case CategoryInsights:
		return c.insightsPerMonth[level]
	default:
		return -1
	}
}

// Maps a savings balance to the tier it earns. Thresholds are checked
// highest first.
func (c *Catalog) TierForSavings(totalSavings float64) string {
	for _, t := range c.thresholds {
		if totalSavings >= t.MinSavings {
			return t.Tier
		}
	}

	return "Starter"
}

package tier

import (
	"testing"

	"github.com/aman-churiwal/budget-buddy-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	return NewCatalog(config.Default().Tiers)
}

func TestLevelOf(t *testing.T) {
	catalog := newTestCatalog(t)

	hierarchy := []string{
		"Starter", "Bronze Saver", "Silver Saver", "Gold Saver",
		"Platinum Saver", "Diamond Saver", "Elite Saver",
	}

	for level, name := range hierarchy {
		assert.Equal(t, level, catalog.LevelOf(name), name)
	}

	// Levels never decrease along the hierarchy
	for i := 1; i < len(hierarchy); i++ {
		assert.Greater(t, catalog.LevelOf(hierarchy[i]), catalog.LevelOf(hierarchy[i-1]))
	}
}

func TestLevelOfUnknownTier(t *testing.T) {
	catalog := newTestCatalog(t)

	assert.Equal(t, 0, catalog.LevelOf("Mystery Tier"))
	assert.Equal(t, 0, catalog.LevelOf(""))
}

func TestProfileLimitTables(t *testing.T) {
	catalog := newTestCatalog(t)

	hierarchy := []string{
		"Starter", "Bronze Saver", "Silver Saver", "Gold Saver",
		"Platinum Saver", "Diamond Saver", "Elite Saver",
	}

	wantChat := []int{3, 10, 25, 50, -1, -1, -1}
	wantInsights := []int{1, 5, 15, 30, -1, -1, -1}

	for level, name := range hierarchy {
		profile := catalog.ProfileOf(name)
		assert.Equal(t, wantChat[level], profile.Limits[CategoryChat], name)
		assert.Equal(t, wantInsights[level], profile.Limits[CategoryInsights], name)
	}
}

func TestProfileFeatureThresholds(t *testing.T) {
	catalog := newTestCatalog(t)

	tests := []struct {
		tier    string
		feature string
		want    bool
	}{
		{"Starter", "basic_ai_chat", false},
		{"Bronze Saver", "basic_ai_chat", true},
		{"Bronze Saver", "premium_themes", false},
		{"Silver Saver", "premium_themes", true},
		{"Silver Saver", "advanced_insights", false},
		{"Gold Saver", "advanced_insights", true},
		{"Gold Saver", "export_data", true},
		{"Gold Saver", "unlimited_ai", false},
		{"Platinum Saver", "unlimited_ai", true},
		{"Platinum Saver", "priority_support", true},
		{"Elite Saver", "priority_support", true},
	}

	for _, tt := range tests {
		profile := catalog.ProfileOf(tt.tier)
		assert.Equal(t, tt.want, profile.Features[tt.feature], "%s %s", tt.tier, tt.feature)
	}
}

func TestProfileTotalForAllLevels(t *testing.T) {
	catalog := newTestCatalog(t)

	// Unknown names must still produce a complete level-0 profile
	profile := catalog.ProfileOf("whatever")
	require.Equal(t, 0, profile.Level)
	assert.Equal(t, 3, profile.Limits[CategoryChat])
	assert.Equal(t, 1, profile.Limits[CategoryInsights])
	assert.Len(t, profile.Features, 6)
}

func TestMeetsTier(t *testing.T) {
	catalog := newTestCatalog(t)

	assert.True(t, catalog.MeetsTier("Gold Saver", "Silver Saver"))
	assert.True(t, catalog.MeetsTier("Gold Saver", "Gold Saver"))
	assert.False(t, catalog.MeetsTier("Silver Saver", "Gold Saver"))
	assert.False(t, catalog.MeetsTier("Starter", "Bronze Saver"))

	// Unknown tiers sit at level 0, so they meet a level-0 floor only
	assert.True(t, catalog.MeetsTier("Mystery", "Starter"))
	assert.False(t, catalog.MeetsTier("Mystery", "Bronze Saver"))
}

func TestTierForSavings(t *testing.T) {
	catalog := newTestCatalog(t)

	tests := []struct {
		savings float64
		want    string
	}{
		{0, "Starter"},
		{99.99, "Starter"},
		{100, "Bronze Saver"},
		{500, "Silver Saver"},
		{999, "Silver Saver"},
		{1000, "Gold Saver"},
		{2500, "Platinum Saver"},
		{5000, "Diamond Saver"},
		{10000, "Elite Saver"},
		{250000, "Elite Saver"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, catalog.TierForSavings(tt.savings), "savings %.2f", tt.savings)
	}
}

func TestLimitFor(t *testing.T) {
	catalog := newTestCatalog(t)

	assert.Equal(t, 3, catalog.LimitFor("Starter", CategoryChat))
	assert.Equal(t, -1, catalog.LimitFor("Platinum Saver", CategoryChat))
	assert.Equal(t, 30, catalog.LimitFor("Gold Saver", CategoryInsights))

	// Unknown categories are unmetered
	assert.Equal(t, -1, catalog.LimitFor("Starter", "recommendations"))
}

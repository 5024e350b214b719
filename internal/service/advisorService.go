package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/aman-churiwal/budget-buddy-backend/internal/models"
	"github.com/aman-churiwal/budget-buddy-backend/internal/security"
	"github.com/aman-churiwal/budget-buddy-backend/internal/tier"
	"github.com/aman-churiwal/budget-buddy-backend/internal/usage"
	"github.com/google/uuid"
)

// Completer is the outbound text completion call. *ai.Client satisfies it;
// tests use a stub.
type Completer interface {
	Complete(ctx context.Context, prompt, model string) (string, error)
}

// UsageLog is the slice of the usage repository the advisor needs
type UsageLog interface {
	Create(ctx context.Context, userID uuid.UUID, endpoint, tierAtTime string) error
	CountSince(ctx context.Context, userID uuid.UUID, endpoint string, since time.Time) (int64, error)
}

// InjectionReporter receives inputs the sanitizer rejected
type InjectionReporter interface {
	ReportInjectionAttempt(ctx context.Context, userID uuid.UUID, rawInput string) (int, bool)
}

// TierRequiredError - the endpoint needs a higher tier
type TierRequiredError struct {
	Required string
}

func (e *TierRequiredError) Error() string {
	return fmt.Sprintf("requires %s tier or higher", e.Required)
}

// RateLimitedError - the usage window is exhausted. Limit feeds the
// user-facing message.
type RateLimitedError struct {
	Category string
	Limit    int
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("%s limit reached (%d requests)", e.Category, e.Limit)
}

// AdvisorService runs the advisory pipeline for every AI endpoint:
// tier check, usage check, sanitize, prompt build, upstream call, usage
// record, response shaping. Strictly sequential, no retries.
type AdvisorService struct {
	catalog   *tier.Catalog
	policy    *usage.Policy
	sanitizer *security.Sanitizer
	usageRepo UsageLog
	security  InjectionReporter
	completer Completer
}

func NewAdvisorService(
	catalog *tier.Catalog,
	policy *usage.Policy,
	usageRepo UsageLog,
	securityService InjectionReporter,
	completer Completer,
) *AdvisorService {
	return &AdvisorService{
		catalog:   catalog,
		policy:    policy,
		sanitizer: security.NewSanitizer(),
		usageRepo: usageRepo,
		security:  securityService,
		completer: completer,
	}
}

type ChatResult struct {
	Response    string       `json:"response"`
	TierInfo    tier.Profile `json:"tier_info"`
	Suggestions []string     `json:"suggestions"`
	Timestamp   time.Time    `json:"timestamp"`
}

// AI chat. No tier floor: every tier may chat, the daily limit does the
// gating (Starter gets 3/day).
func (s *AdvisorService) Chat(ctx context.Context, user *models.User, message string) (*ChatResult, error) {
	decision, err := s.policy.CheckAndConsume(ctx, user.ID, user.Tier, tier.CategoryChat)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, &RateLimitedError{Category: tier.CategoryChat, Limit: decision.Limit}
	}

	sanitized, err := s.sanitizer.Sanitize(message)
	if err != nil {
		s.security.ReportInjectionAttempt(ctx, user.ID, message)
		return nil, err
	}

	prompt := security.BuildIsolatedPrompt(sanitized, security.PromptContext{
		Tier:         user.Tier,
		TotalSavings: user.TotalSavings,
	})

	response, err := s.completer.Complete(ctx, prompt, "")
	if err != nil {
		return nil, err
	}

	s.recordUsage(ctx, user, tier.CategoryChat, decision)

	return &ChatResult{
		Response:    response,
		TierInfo:    s.catalog.ProfileOf(user.Tier),
		Suggestions: upgradeSuggestions(user.Tier),
		Timestamp:   time.Now().UTC(),
	}, nil
}

type InsightsInput struct {
	MonthlyIncome     float64            `json:"monthly_income"`
	MonthlyExpenses   float64            `json:"monthly_expenses"`
	ExpenseCategories map[string]float64 `json:"expense_categories"`
	SavingsGoal       float64            `json:"savings_goal"`
}

type InsightsResult struct {
	Analysis     string    `json:"analysis"`
	GeneratedAt  time.Time `json:"generated_at"`
	TierUnlocked string    `json:"tier_unlocked"`
}

// Advanced financial insights - Gold tier and above, metered monthly
func (s *AdvisorService) Insights(ctx context.Context, user *models.User, input InsightsInput) (*InsightsResult, error) {
	if !s.catalog.MeetsTier(user.Tier, "Gold Saver") {
		return nil, &TierRequiredError{Required: "Gold Saver"}
	}

	decision, err := s.policy.CheckAndConsume(ctx, user.ID, user.Tier, tier.CategoryInsights)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, &RateLimitedError{Category: tier.CategoryInsights, Limit: decision.Limit}
	}

	prompt := buildInsightsPrompt(user, input)

	analysis, err := s.completer.Complete(ctx, prompt, "")
	if err != nil {
		return nil, err
	}

	s.recordUsage(ctx, user, tier.CategoryInsights, decision)

	return &InsightsResult{
		Analysis:     analysis,
		GeneratedAt:  time.Now().UTC(),
		TierUnlocked: user.Tier,
	}, nil
}

type RecommendationsInput struct {
	TargetBudget float64  `json:"target_budget"`
	Goals        []string `json:"goals"`
	Timeframe    string   `json:"timeframe"`
}

type RecommendationsResult struct {
	Recommendations string    `json:"recommendations"`
	PersonalizedFor string    `json:"personalized_for"`
	GeneratedAt     time.Time `json:"generated_at"`
}

// Budget recommendations - Silver tier and above. Unmetered, but the
// free-text fields still pass the sanitizer.
func (s *AdvisorService) Recommendations(ctx context.Context, user *models.User, input RecommendationsInput) (*RecommendationsResult, error) {
	if !s.catalog.MeetsTier(user.Tier, "Silver Saver") {
		return nil, &TierRequiredError{Required: "Silver Saver"}
	}

	cleanGoals := make([]string, 0, len(input.Goals))
	for _, goal := range input.Goals {
		cleaned, err := s.sanitizer.Sanitize(goal)
		if err != nil {
			s.security.ReportInjectionAttempt(ctx, user.ID, goal)
			return nil, err
		}
		cleanGoals = append(cleanGoals, cleaned)
	}

	timeframe, err := s.sanitizer.Sanitize(input.Timeframe)
	if err != nil {
		s.security.ReportInjectionAttempt(ctx, user.ID, input.Timeframe)
		return nil, err
	}

	prompt := buildRecommendationsPrompt(user, input.TargetBudget, cleanGoals, timeframe)

	recommendations, err := s.completer.Complete(ctx, prompt, "")
	if err != nil {
		return nil, err
	}

	return &RecommendationsResult{
		Recommendations: recommendations,
		PersonalizedFor: user.Tier,
		GeneratedAt:     time.Now().UTC(),
	}, nil
}

type UsageStats struct {
	Tier                 string          `json:"tier"`
	ChatUsageToday       int64           `json:"chat_usage_today"`
	ChatLimitDaily       int             `json:"chat_limit_daily"`
	InsightsUsageMonth   int64           `json:"insights_usage_month"`
	InsightsLimitMonthly int             `json:"insights_limit_monthly"`
	AvailableFeatures    map[string]bool `json:"available_features"`
}

// Usage counters against the current windows. Unlimited tiers always read
// zero because their calls are never recorded.
func (s *AdvisorService) Usage(ctx context.Context, user *models.User) (*UsageStats, error) {
	chatCount, err := s.usageRepo.CountSince(ctx, user.ID, tier.CategoryChat, s.policy.WindowStart(tier.CategoryChat))
	if err != nil {
		return nil, err
	}

	insightsCount, err := s.usageRepo.CountSince(ctx, user.ID, tier.CategoryInsights, s.policy.WindowStart(tier.CategoryInsights))
	if err != nil {
		return nil, err
	}

	profile := s.catalog.ProfileOf(user.Tier)

	return &UsageStats{
		Tier:                 user.Tier,
		ChatUsageToday:       chatCount,
		ChatLimitDaily:       profile.Limits[tier.CategoryChat],
		InsightsUsageMonth:   insightsCount,
		InsightsLimitMonthly: profile.Limits[tier.CategoryInsights],
		AvailableFeatures:    profile.Features,
	}, nil
}

// Runs only after the upstream call succeeded. Unlimited tiers are skipped
// entirely; a write failure is logged, never surfaced - the user keeps the
// answer they already paid the call for.
func (s *AdvisorService) recordUsage(ctx context.Context, user *models.User, category string, decision usage.Decision) {
	if decision.Limit == -1 {
		return
	}

	if err := s.usageRepo.Create(ctx, user.ID, category, user.Tier); err != nil {
		log.Printf("Failed to record %s usage for user %s: %v", category, user.ID, err)
	}
}

func upgradeSuggestions(userTier string) []string {
	switch userTier {
	case "Starter":
		return []string{"💡 Save ₱100+ to reach Bronze tier and unlock more daily AI chats!"}
	case "Bronze Saver":
		return []string{"💡 Reach Gold tier (₱1,000+ savings) to unlock advanced financial insights!"}
	case "Silver Saver":
		return []string{"🎯 Upgrade to Gold tier for unlimited AI recommendations and data export!"}
	default:
		return []string{}
	}
}

func buildInsightsPrompt(user *models.User, input InsightsInput) string {
	var categories strings.Builder
	for name, amount := range input.ExpenseCategories {
		fmt.Fprintf(&categories, "  - %s: ₱%.2f\n", name, amount)
	}

	return fmt.Sprintf(`As an expert Filipino financial advisor AI, analyze this user's financial data and provide comprehensive insights:

User Profile:
- Tier: %s
- Total Savings: ₱%.2f
- Monthly Income: ₱%.2f
- Monthly Expenses: ₱%.2f
- Expense Categories:
%s
Provide a detailed financial analysis with:
1. Financial health score (0-100)
2. Key strengths and areas for improvement
3. Specific actionable recommendations
4. Philippines-specific context (inflation, cost of living, etc.)
5. Savings optimization strategies

Use Philippine Peso (₱) amounts throughout.`,
		user.Tier, user.TotalSavings, input.MonthlyIncome, input.MonthlyExpenses, categories.String())
}

func buildRecommendationsPrompt(user *models.User, targetBudget float64, goals []string, timeframe string) string {
	return fmt.Sprintf(`Generate personalized budget recommendations for this Filipino Budget Buddy user:

Current Situation:
- Tier: %s
- Total Savings: ₱%.2f
- Target Budget: ₱%.2f
- Goals: %s
- Time Frame: %s

Provide 5-7 specific, actionable recommendations optimized for the Philippines context.
Include peso amounts and realistic timelines.`,
		user.Tier, user.TotalSavings, targetBudget, strings.Join(goals, "; "), timeframe)
}

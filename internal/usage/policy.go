package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/aman-churiwal/budget-buddy-backend/internal/tier"
	"github.com/google/uuid"
)

// Store is the persistence surface the policy needs. The gorm repository
// implements it; tests use a fake.
type Store interface {
	CountSince(ctx context.Context, userID uuid.UUID, category string, since time.Time) (int64, error)
}

// Outcome of a usage check. Limit carries the numeric cap for the
// user-facing rate limit message.
type Decision struct {
	Allowed bool
	Limit   int
	Used    int
}

// Policy enforces per-tier usage limits over calendar-aligned windows:
// start of the current UTC day for chat, start of the current UTC month for
// insights. Windows are wall-clock aligned, not sliding.
type Policy struct {
	catalog *tier.Catalog
	store   Store
	now     func() time.Time
}

func NewPolicy(catalog *tier.Catalog, store Store) *Policy {
	return &Policy{
		catalog: catalog,
		store:   store,
		now:     time.Now,
	}
}

// Decides whether one more call in the category is allowed for the tier.
//
// Unlimited tiers (-1 limit) are allowed without touching storage, and no
// event is ever recorded for them - so their usage stats read zero.
//
// Recording the event is NOT done here: the caller records only after the
// metered action actually succeeds.
func (p *Policy) CheckAndConsume(ctx context.Context, userID uuid.UUID, userTier, category string) (Decision, error) {
	limit := p.catalog.LimitFor(userTier, category)
	if limit == -1 {
		return Decision{Allowed: true, Limit: -1}, nil
	}

	since := p.WindowStart(category)

	count, err := p.store.CountSince(ctx, userID, category, since)
	if err != nil {
		return Decision{}, fmt.Errorf("usage count failed: %w", err)
	}

	return Decision{
		Allowed: count < int64(limit),
		Limit:   limit,
		Used:    int(count),
	}, nil
}

// Returns the start of the current window for a category, in UTC.
func (p *Policy) WindowStart(category string) time.Time {
	now := p.now().UTC()

	if category == tier.CategoryInsights {
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	}

	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

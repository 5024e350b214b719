package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aman-churiwal/budget-buddy-backend/internal/models"
	"github.com/aman-churiwal/budget-buddy-backend/internal/security"
	"github.com/google/uuid"
)

const EventInjectionAttempt = "prompt_injection_attempt"

// SecurityEventStore is the slice of the security event repository the
// service needs
type SecurityEventStore interface {
	Create(ctx context.Context, event *models.SecurityEvent) error
	CountByTypeSince(ctx context.Context, userID uuid.UUID, eventType string, since time.Time) (int64, error)
	FindRecent(ctx context.Context, userID uuid.UUID, since time.Time, limit int) ([]models.SecurityEvent, error)
}

// IncidentCounter keeps per-user incident counts with a TTL.
// storage.RedisClient satisfies it; tests use a fake.
type IncidentCounter interface {
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

// Tracks prompt-injection incidents. Events go to the database through a
// buffered channel so the request path never blocks on bookkeeping; a redis
// counter with a 24h TTL drives alerting.
type SecurityService struct {
	events         SecurityEventStore
	counter        IncidentCounter
	detector       *security.InjectionDetector
	alertThreshold int
	eventChannel   chan models.SecurityEvent
	writerDone     chan struct{}
}

func NewSecurityService(events SecurityEventStore, counter IncidentCounter, alertThreshold int) *SecurityService {
	s := &SecurityService{
		events:         events,
		counter:        counter,
		detector:       security.NewInjectionDetector(),
		alertThreshold: alertThreshold,
		eventChannel:   make(chan models.SecurityEvent, 256),
		writerDone:     make(chan struct{}),
	}

	go s.writeLoop()

	return s
}

// Background worker draining queued events into the database
func (s *SecurityService) writeLoop() {
	defer close(s.writerDone)

	for event := range s.eventChannel {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.events.Create(ctx, &event); err != nil {
			log.Printf("Failed to store security event: %v", err)
		}
		cancel()
	}
}

// Stops accepting events and blocks until everything already queued is
// written. Call once, after the HTTP server has drained.
func (s *SecurityService) Close() {
	close(s.eventChannel)
	<-s.writerDone
}

// Scores a rejected input with the detector, queues a security event and
// bumps the user's 24h incident counter. Returns the risk score and whether
// the user just crossed the alert threshold.
func (s *SecurityService) ReportInjectionAttempt(ctx context.Context, userID uuid.UUID, rawInput string) (int, bool) {
	riskScore, issues := s.detector.Analyze(rawInput)

	details := fmt.Sprintf("issues=%v", issues)
	if len(rawInput) > 100 {
		rawInput = rawInput[:100] + "..."
	}
	details += " input=" + rawInput

	select {
	case s.eventChannel <- models.SecurityEvent{
		UserID:    userID,
		EventType: EventInjectionAttempt,
		Details:   details,
		RiskScore: riskScore,
		Timestamp: time.Now().UTC(),
	}:
	default:
		// Channel full, skip the event rather than block the request
		log.Println("Security event channel full, dropping event")
	}

	alert := false
	counterKey := "security:injections:" + userID.String()

	count, err := s.counter.Incr(ctx, counterKey)
	if err != nil {
		log.Printf("Failed to bump incident counter: %v", err)
	} else {
		if count == 1 {
			s.counter.Expire(ctx, counterKey, 24*time.Hour)
		}
		if count >= int64(s.alertThreshold) {
			alert = true
			log.Printf("SECURITY ALERT: user %s has %d injection attempts in 24h (score %d)",
				userID, count, riskScore)
		}
	}

	return riskScore, alert
}

// Summary of a user's recent security events for review tooling
type SecurityStatus struct {
	TotalEvents       int64 `json:"total_events"`
	InjectionAttempts int64 `json:"injection_attempts"`
	IsSuspicious      bool  `json:"is_suspicious"`
}

func (s *SecurityService) UserStatus(ctx context.Context, userID uuid.UUID) (*SecurityStatus, error) {
	since := time.Now().UTC().Add(-24 * time.Hour)

	injections, err := s.events.CountByTypeSince(ctx, userID, EventInjectionAttempt, since)
	if err != nil {
		return nil, err
	}

	recent, err := s.events.FindRecent(ctx, userID, since, 100)
	if err != nil {
		return nil, err
	}

	return &SecurityStatus{
		TotalEvents:       int64(len(recent)),
		InjectionAttempts: injections,
		IsSuspicious:      injections >= 3,
	}, nil
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"studypulse-backend/internal/models"
	"studypulse-backend/internal/repository"
)

const (
	summaryMarkTTL      = 48 * time.Hour
	summaryPollInterval = 30 * time.Minute
	summaryEveningHour  = 20 // local wall-clock hour after which the evening trigger fires

	TriggerEvening         = "evening"
	TriggerAllSessionsDone = "all_sessions_complete"
)

// Narrow store views so the delivery path can be exercised without a
// database or Redis behind it.

type summarySessionStore interface {
	ListSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]models.StudySession, error)
}

type summaryEmotionStore interface {
	ListSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]models.EmotionLog, error)
}

type summaryCompletionStore interface {
	ListSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]models.ScheduleSessionCompletion, error)
	CountCompletedToday(ctx context.Context, userID, scheduleID uuid.UUID, dayStart time.Time) (int, error)
}

type summaryScheduleStore interface {
	GetActive(ctx context.Context, userID uuid.UUID) (*models.StudySchedule, error)
}

type summaryUserStore interface {
	GetSettings(ctx context.Context, userID uuid.UUID) (*models.UserSettings, error)
	ListActiveSettings(ctx context.Context) ([]repository.SettingsRow, error)
}

type summaryRedis interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// SummaryService computes the end-of-day summary and delivers it at most
// once per user per calendar day. Two triggers compete: the evening clock
// and "every planned session completed". Whichever claims the per-day
// Redis mark first gets to publish; the other sees the mark and stops.
type SummaryService struct {
	sessions    summarySessionStore
	emotions    summaryEmotionStore
	completions summaryCompletionStore
	schedules   summaryScheduleStore
	users       summaryUserStore
	redis       summaryRedis
	stopChan    chan struct{}

	mu      sync.Mutex
	flights map[uuid.UUID]*sync.Mutex
}

func NewSummaryService(
	sessions *repository.SessionRepo,
	emotions *repository.EmotionRepo,
	completions *repository.CompletionRepo,
	schedules *repository.ScheduleRepo,
	users *repository.UserRepo,
	redisClient *redis.Client,
) *SummaryService {
	return &SummaryService{
		sessions:    sessions,
		emotions:    emotions,
		completions: completions,
		schedules:   schedules,
		users:       users,
		redis:       redisClient,
		stopChan:    make(chan struct{}),
		flights:     make(map[uuid.UUID]*sync.Mutex),
	}
}

// Start launches the evening trigger loop. It checks every 30 minutes
// which users have passed 20:00 local time and have no mark for today.
func (s *SummaryService) Start() {
	go s.eveningLoop()
	log.Printf("Day summary scheduler started")
}

func (s *SummaryService) Stop() {
	select {
	case <-s.stopChan:
		return
	default:
		close(s.stopChan)
	}
}

func (s *SummaryService) eveningLoop() {
	s.runEveningPass(context.Background(), time.Now())

	ticker := time.NewTicker(summaryPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.runEveningPass(context.Background(), time.Now())
		}
	}
}

func (s *SummaryService) runEveningPass(ctx context.Context, now time.Time) {
	settings, err := s.users.ListActiveSettings(ctx)
	if err != nil {
		log.Printf("day summary: failed to list users: %v", err)
		return
	}

	for _, row := range settings {
		loc := userLocation(row.Timezone)
		if now.In(loc).Hour() < summaryEveningHour {
			continue
		}
		if err := s.Deliver(ctx, row.UserID, TriggerEvening); err != nil {
			log.Printf("day summary: evening delivery failed for user %s: %v", row.UserID, err)
		}
	}
}

// OnCompletionRecorded re-evaluates the "all planned sessions done"
// trigger for one user. Called after every completion insert.
func (s *SummaryService) OnCompletionRecorded(ctx context.Context, userID uuid.UUID) {
	schedule, err := s.schedules.GetActive(ctx, userID)
	if err != nil {
		if err != pgx.ErrNoRows {
			log.Printf("day summary: failed to load active schedule for user %s: %v", userID, err)
		}
		return
	}

	loc := s.locationFor(ctx, userID)
	now := time.Now().In(loc)
	weekday := now.Weekday().String()

	planned := 0
	for _, day := range schedule.WeeklyPlan {
		if day.Day == weekday {
			planned = len(day.Sessions)
			break
		}
	}
	if planned == 0 {
		return
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	completed, err := s.completions.CountCompletedToday(ctx, userID, schedule.ID, dayStart)
	if err != nil {
		log.Printf("day summary: failed to count completions for user %s: %v", userID, err)
		return
	}
	if completed < planned {
		return
	}

	if err := s.Deliver(ctx, userID, TriggerAllSessionsDone); err != nil {
		log.Printf("day summary: completion delivery failed for user %s: %v", userID, err)
	}
}

// Deliver builds today's summary and publishes it, unless it was already
// shown today. Concurrent calls for the same user are serialized by a
// per-user guard, and the shown-mark is claimed with SETNX so the
// evaluate-then-write step is atomic: the summary fires at most once per
// calendar day no matter how often either trigger condition becomes true.
func (s *SummaryService) Deliver(ctx context.Context, userID uuid.UUID, triggerKind string) error {
	guard := s.flightGuard(userID)
	guard.Lock()
	defer guard.Unlock()

	loc := s.locationFor(ctx, userID)
	date := time.Now().In(loc).Format("2006-01-02")

	claimed, err := s.redis.SetNX(ctx, summaryMarkKey(userID, date), triggerKind, summaryMarkTTL).Result()
	if err != nil {
		return fmt.Errorf("failed to claim summary mark: %w", err)
	}
	if !claimed {
		return nil // already shown today
	}

	summary, err := s.BuildToday(ctx, userID)
	if err != nil {
		// Release the mark so a later trigger can retry.
		s.redis.Del(ctx, summaryMarkKey(userID, date))
		return err
	}

	payload, _ := json.Marshal(models.WSMessage{Type: "day_summary", Payload: summary})
	s.redis.Publish(ctx, fmt.Sprintf("user_updates:%s", userID.String()), string(payload))

	log.Printf("day summary: delivered to user %s (trigger: %s, state: %s)", userID, triggerKind, summary.State)
	return nil
}

// BuildToday computes the summary for the current calendar day in the
// user's timezone. It never consults or writes the shown-mark, so it
// doubles as the manual/test trigger. Individual fetch failures degrade
// to empty sets; only when every source fails is there nothing left to
// summarize and an error is returned.
func (s *SummaryService) BuildToday(ctx context.Context, userID uuid.UUID) (*models.DaySummary, error) {
	goalHours := 0.0
	loc := time.UTC
	if settings, err := s.users.GetSettings(ctx, userID); err == nil {
		goalHours = settings.DailyGoalHours
		loc = userLocation(settings.Timezone)
	}

	now := time.Now().In(loc)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	sessions, sessErr := s.sessions.ListSince(ctx, userID, dayStart)
	if sessErr != nil {
		log.Printf("day summary: failed to load sessions for user %s: %v", userID, sessErr)
		sessions = nil
	}
	emotions, emoErr := s.emotions.ListSince(ctx, userID, dayStart)
	if emoErr != nil {
		log.Printf("day summary: failed to load emotion logs for user %s: %v", userID, emoErr)
		emotions = nil
	}
	completions, compErr := s.completions.ListSince(ctx, userID, dayStart)
	if compErr != nil {
		log.Printf("day summary: failed to load completions for user %s: %v", userID, compErr)
		completions = nil
	}
	if sessErr != nil && emoErr != nil && compErr != nil {
		return nil, fmt.Errorf("failed to load any day data: %w", sessErr)
	}
	schedule, err := s.schedules.GetActive(ctx, userID)
	if err != nil {
		if err != pgx.ErrNoRows {
			log.Printf("day summary: failed to load active schedule for user %s: %v", userID, err)
		}
		schedule = nil
	}

	features := BuildDayFeatures(sessions, emotions, completions, schedule, goalHours, now.Weekday().String())
	state, message, closing := ClassifyDay(features)

	return &models.DaySummary{
		Date:        now.Format("2006-01-02"),
		State:       state,
		Message:     message,
		ClosingLine: closing,
		Features:    features,
	}, nil
}

func (s *SummaryService) flightGuard(userID uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	guard, ok := s.flights[userID]
	if !ok {
		guard = &sync.Mutex{}
		s.flights[userID] = guard
	}
	return guard
}

func (s *SummaryService) locationFor(ctx context.Context, userID uuid.UUID) *time.Location {
	settings, err := s.users.GetSettings(ctx, userID)
	if err != nil {
		return time.UTC
	}
	return userLocation(settings.Timezone)
}

func userLocation(tz string) *time.Location {
	if tz == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC
	}
	return loc
}

func summaryMarkKey(userID uuid.UUID, date string) string {
	return fmt.Sprintf("summary_shown:%s:%s", userID.String(), date)
}

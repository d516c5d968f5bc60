package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"studypulse-backend/internal/models"
	"studypulse-backend/internal/repository"
)

func TestSummaryMarkKey(t *testing.T) {
	userID := uuid.MustParse("11111111-2222-3333-4444-555555555555")

	got := summaryMarkKey(userID, "2025-06-02")
	want := "summary_shown:11111111-2222-3333-4444-555555555555:2025-06-02"
	if got != want {
		t.Errorf("summaryMarkKey = %q, want %q", got, want)
	}

	// One mark per calendar day per user.
	if summaryMarkKey(userID, "2025-06-03") == got {
		t.Error("keys for different dates must differ")
	}
}

func TestUserLocation(t *testing.T) {
	if loc := userLocation(""); loc.String() != "UTC" {
		t.Errorf("empty timezone = %q, want UTC", loc)
	}
	if loc := userLocation("not/a-zone"); loc.String() != "UTC" {
		t.Errorf("invalid timezone = %q, want UTC", loc)
	}
	if loc := userLocation("Europe/Berlin"); loc.String() != "Europe/Berlin" {
		t.Errorf("valid timezone = %q, want Europe/Berlin", loc)
	}
}

// ─── Delivery Fakes ───

type fakeSummaryRedis struct {
	mu        sync.Mutex
	marks     map[string]string
	published []string
}

func newFakeSummaryRedis() *fakeSummaryRedis {
	return &fakeSummaryRedis{marks: make(map[string]string)}
}

func (f *fakeSummaryRedis) SetNX(ctx context.Context, key string, value interface{}, _ time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.marks[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	f.marks[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (f *fakeSummaryRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, key := range keys {
		if _, exists := f.marks[key]; exists {
			delete(f.marks, key)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakeSummaryRedis) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, fmt.Sprint(message))
	return redis.NewIntResult(1, nil)
}

func (f *fakeSummaryRedis) publishCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.published)
}

func (f *fakeSummaryRedis) markValue(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.marks[key]
	return value, ok
}

type fakeSessionStore struct{ err error }

func (f *fakeSessionStore) ListSince(context.Context, uuid.UUID, time.Time) ([]models.StudySession, error) {
	return nil, f.err
}

type fakeEmotionStore struct{ err error }

func (f *fakeEmotionStore) ListSince(context.Context, uuid.UUID, time.Time) ([]models.EmotionLog, error) {
	return nil, f.err
}

type fakeCompletionStore struct {
	err       error
	completed int
}

func (f *fakeCompletionStore) ListSince(context.Context, uuid.UUID, time.Time) ([]models.ScheduleSessionCompletion, error) {
	return nil, f.err
}

func (f *fakeCompletionStore) CountCompletedToday(context.Context, uuid.UUID, uuid.UUID, time.Time) (int, error) {
	return f.completed, nil
}

type fakeScheduleStore struct {
	schedule *models.StudySchedule
	err      error
}

func (f *fakeScheduleStore) GetActive(context.Context, uuid.UUID) (*models.StudySchedule, error) {
	return f.schedule, f.err
}

type fakeUserStore struct{ rows []repository.SettingsRow }

func (f *fakeUserStore) GetSettings(context.Context, uuid.UUID) (*models.UserSettings, error) {
	return &models.UserSettings{DailyGoalHours: 2, Timezone: "UTC"}, nil
}

func (f *fakeUserStore) ListActiveSettings(context.Context) ([]repository.SettingsRow, error) {
	return f.rows, nil
}

func newTestSummaryService(r summaryRedis) *SummaryService {
	return &SummaryService{
		sessions:    &fakeSessionStore{},
		emotions:    &fakeEmotionStore{},
		completions: &fakeCompletionStore{},
		schedules:   &fakeScheduleStore{err: pgx.ErrNoRows},
		users:       &fakeUserStore{},
		redis:       r,
		stopChan:    make(chan struct{}),
		flights:     make(map[uuid.UUID]*sync.Mutex),
	}
}

// ─── Delivery Tests ───

func TestDeliver_AtMostOncePerDay(t *testing.T) {
	fake := newFakeSummaryRedis()
	svc := newTestSummaryService(fake)
	userID := uuid.New()
	ctx := context.Background()

	if err := svc.Deliver(ctx, userID, TriggerEvening); err != nil {
		t.Fatalf("first delivery failed: %v", err)
	}
	if err := svc.Deliver(ctx, userID, TriggerAllSessionsDone); err != nil {
		t.Fatalf("second trigger errored: %v", err)
	}

	if got := fake.publishCount(); got != 1 {
		t.Fatalf("published %d summaries, want exactly 1", got)
	}

	// The mark records which trigger won.
	date := time.Now().UTC().Format("2006-01-02")
	value, ok := fake.markValue(summaryMarkKey(userID, date))
	if !ok {
		t.Fatal("shown-mark missing after delivery")
	}
	if value != TriggerEvening {
		t.Errorf("mark value = %q, want %q", value, TriggerEvening)
	}
}

func TestDeliver_ConcurrentTriggersFireOnce(t *testing.T) {
	fake := newFakeSummaryRedis()
	svc := newTestSummaryService(fake)
	userID := uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		kind := TriggerEvening
		if i%2 == 1 {
			kind = TriggerAllSessionsDone
		}
		go func(trigger string) {
			defer wg.Done()
			svc.Deliver(context.Background(), userID, trigger)
		}(kind)
	}
	wg.Wait()

	if got := fake.publishCount(); got != 1 {
		t.Errorf("published %d summaries under concurrent triggers, want exactly 1", got)
	}
}

func TestDeliver_IndependentPerUser(t *testing.T) {
	fake := newFakeSummaryRedis()
	svc := newTestSummaryService(fake)
	ctx := context.Background()

	svc.Deliver(ctx, uuid.New(), TriggerEvening)
	svc.Deliver(ctx, uuid.New(), TriggerEvening)

	if got := fake.publishCount(); got != 2 {
		t.Errorf("published %d summaries for two users, want 2", got)
	}
}

func TestDeliver_ReleasesMarkOnBuildFailure(t *testing.T) {
	fake := newFakeSummaryRedis()
	svc := newTestSummaryService(fake)
	userID := uuid.New()
	ctx := context.Background()

	// Every data source down: the build fails and the claimed mark must be
	// released so a later trigger can retry.
	down := errors.New("connection refused")
	sessions := &fakeSessionStore{err: down}
	emotions := &fakeEmotionStore{err: down}
	completions := &fakeCompletionStore{err: down}
	svc.sessions = sessions
	svc.emotions = emotions
	svc.completions = completions

	if err := svc.Deliver(ctx, userID, TriggerEvening); err == nil {
		t.Fatal("expected delivery to fail when every source is down")
	}
	if got := fake.publishCount(); got != 0 {
		t.Fatalf("published %d summaries despite build failure, want 0", got)
	}
	date := time.Now().UTC().Format("2006-01-02")
	if _, ok := fake.markValue(summaryMarkKey(userID, date)); ok {
		t.Fatal("shown-mark not released after build failure")
	}

	// Sources recover; the retry must go through.
	sessions.err = nil
	emotions.err = nil
	completions.err = nil

	if err := svc.Deliver(ctx, userID, TriggerAllSessionsDone); err != nil {
		t.Fatalf("retry after recovery failed: %v", err)
	}
	if got := fake.publishCount(); got != 1 {
		t.Errorf("published %d summaries after recovery, want 1", got)
	}
}

// Both real entry points, same user, same day: the evening pass fires
// first and the completion trigger finds the mark taken.
func TestSummaryTriggers_EveningThenCompletionFiresOnce(t *testing.T) {
	fake := newFakeSummaryRedis()
	svc := newTestSummaryService(fake)
	userID := uuid.New()
	ctx := context.Background()

	svc.users = &fakeUserStore{rows: []repository.SettingsRow{
		{UserID: userID, DailyGoalHours: 2, Timezone: "UTC"},
	}}

	weekday := time.Now().UTC().Weekday().String()
	svc.schedules = &fakeScheduleStore{schedule: &models.StudySchedule{
		ID:     uuid.New(),
		UserID: userID,
		Status: "active",
		WeeklyPlan: []models.DayPlan{
			{Day: weekday, Sessions: []models.PlannedSession{{Subject: "Math"}}},
		},
	}}
	svc.completions = &fakeCompletionStore{completed: 1}

	// Before the evening hour nothing fires.
	morning := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	svc.runEveningPass(ctx, morning)
	if got := fake.publishCount(); got != 0 {
		t.Fatalf("published %d summaries before evening, want 0", got)
	}

	evening := time.Date(2025, 6, 2, 21, 0, 0, 0, time.UTC)
	svc.runEveningPass(ctx, evening)
	if got := fake.publishCount(); got != 1 {
		t.Fatalf("published %d summaries after evening pass, want 1", got)
	}

	// All planned sessions are complete, but the day's mark is taken.
	svc.OnCompletionRecorded(ctx, userID)
	if got := fake.publishCount(); got != 1 {
		t.Errorf("published %d summaries after completion trigger, want still 1", got)
	}

	// A second evening pass is idempotent too.
	svc.runEveningPass(ctx, evening)
	if got := fake.publishCount(); got != 1 {
		t.Errorf("published %d summaries after repeated pass, want still 1", got)
	}
}

func TestOnCompletionRecorded_NotAllDone(t *testing.T) {
	fake := newFakeSummaryRedis()
	svc := newTestSummaryService(fake)
	userID := uuid.New()

	weekday := time.Now().UTC().Weekday().String()
	svc.schedules = &fakeScheduleStore{schedule: &models.StudySchedule{
		ID:     uuid.New(),
		UserID: userID,
		Status: "active",
		WeeklyPlan: []models.DayPlan{
			{Day: weekday, Sessions: []models.PlannedSession{{Subject: "Math"}, {Subject: "Physics"}}},
		},
	}}
	svc.completions = &fakeCompletionStore{completed: 1}

	svc.OnCompletionRecorded(context.Background(), userID)

	if got := fake.publishCount(); got != 0 {
		t.Errorf("published %d summaries with sessions remaining, want 0", got)
	}
}

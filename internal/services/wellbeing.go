package services

import (
	"context"
	"log"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"studypulse-backend/internal/models"
	"studypulse-backend/internal/repository"
)

// dayNames is the fixed Sunday-first order the weekly breakdown reports in.
var dayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// Break time is not measured anywhere; it is assumed to be a fixed 20% of
// study time. TODO: replace with real break tracking once sessions record
// pause intervals.
const assumedBreakRatio = 0.2

type WellbeingService struct {
	sessions    *repository.SessionRepo
	emotions    *repository.EmotionRepo
	completions *repository.CompletionRepo
	schedules   *repository.ScheduleRepo
}

func NewWellbeingService(
	sessions *repository.SessionRepo,
	emotions *repository.EmotionRepo,
	completions *repository.CompletionRepo,
	schedules *repository.ScheduleRepo,
) *WellbeingService {
	return &WellbeingService{
		sessions:    sessions,
		emotions:    emotions,
		completions: completions,
		schedules:   schedules,
	}
}

// GetStats computes the trailing-7-day wellbeing stats. Fetch failures are
// logged and treated as empty result sets; the caller always gets a value.
func (s *WellbeingService) GetStats(ctx context.Context, userID uuid.UUID, now time.Time) models.WellbeingStats {
	since := now.Add(-7 * 24 * time.Hour)

	sessions, err := s.sessions.ListSince(ctx, userID, since)
	if err != nil {
		log.Printf("wellbeing stats: failed to load sessions for user %s: %v", userID, err)
		sessions = nil
	}
	emotions, err := s.emotions.ListSince(ctx, userID, since)
	if err != nil {
		log.Printf("wellbeing stats: failed to load emotion logs for user %s: %v", userID, err)
		emotions = nil
	}

	return ComputeWellbeingStats(sessions, emotions)
}

// GetWeeklyAnalytics computes the trailing-7-day activity breakdown.
func (s *WellbeingService) GetWeeklyAnalytics(ctx context.Context, userID uuid.UUID, now time.Time) models.WeeklyAnalytics {
	since := now.Add(-7 * 24 * time.Hour)

	sessions, err := s.sessions.ListSince(ctx, userID, since)
	if err != nil {
		log.Printf("weekly analytics: failed to load sessions for user %s: %v", userID, err)
		sessions = nil
	}
	emotions, err := s.emotions.ListSince(ctx, userID, since)
	if err != nil {
		log.Printf("weekly analytics: failed to load emotion logs for user %s: %v", userID, err)
		emotions = nil
	}
	completions, err := s.completions.ListSince(ctx, userID, since)
	if err != nil {
		log.Printf("weekly analytics: failed to load completions for user %s: %v", userID, err)
		completions = nil
	}

	schedule, err := s.schedules.GetActive(ctx, userID)
	if err != nil {
		if err != pgx.ErrNoRows {
			log.Printf("weekly analytics: failed to load active schedule for user %s: %v", userID, err)
		}
		schedule = nil
	}

	return ComputeWeeklyAnalytics(sessions, emotions, completions, schedule)
}

// ComputeWellbeingStats derives the composite wellbeing picture from raw
// rows. Pure; recomputed on every read, no cached aggregate is trusted.
func ComputeWellbeingStats(sessions []models.StudySession, emotions []models.EmotionLog) models.WellbeingStats {
	stats := models.WellbeingStats{
		MoodTrends:          []models.MoodTrend{},
		WeeklyEmotions:      make([]models.DayEmotion, 7),
		EmotionDistribution: []models.EmotionShare{},
		BurnoutRisk:         "Low",
	}

	// Averages on a 0-100 scale (logs record 1-10).
	var focusSum, focusN, stressSum, stressN int
	for _, e := range emotions {
		if e.FocusLevel != nil {
			focusSum += *e.FocusLevel * 10
			focusN++
		}
		if e.StressLevel != nil {
			stressSum += *e.StressLevel * 10
			stressN++
		}
	}
	if focusN > 0 {
		stats.AvgFocusLevel = focusSum / focusN
	}
	if stressN > 0 {
		stats.AvgStressLevel = stressSum / stressN
	}

	// Mood trend counts, descending.
	moodCounts := map[string]int{}
	emotionCounts := map[string]int{}
	for _, e := range emotions {
		label := e.Emotion
		if e.Mood != nil && *e.Mood != "" {
			label = *e.Mood
		}
		moodCounts[label]++
		emotionCounts[e.Emotion]++
	}
	for mood, count := range moodCounts {
		stats.MoodTrends = append(stats.MoodTrends, models.MoodTrend{Mood: mood, Count: count})
	}
	sort.Slice(stats.MoodTrends, func(i, j int) bool {
		if stats.MoodTrends[i].Count != stats.MoodTrends[j].Count {
			return stats.MoodTrends[i].Count > stats.MoodTrends[j].Count
		}
		return stats.MoodTrends[i].Mood < stats.MoodTrends[j].Mood
	})

	// Per-weekday breakdown, Sunday first. Input rows are ordered oldest
	// first, so the last log seen per day is that day's dominant mood.
	type dayAcc struct {
		focusSum, focusN   int
		stressSum, stressN int
		lastEmotion        string
	}
	var days [7]dayAcc
	for _, e := range emotions {
		d := int(e.CreatedAt.Weekday())
		if e.FocusLevel != nil {
			days[d].focusSum += *e.FocusLevel * 10
			days[d].focusN++
		}
		if e.StressLevel != nil {
			days[d].stressSum += *e.StressLevel * 10
			days[d].stressN++
		}
		days[d].lastEmotion = e.Emotion
	}
	for d := 0; d < 7; d++ {
		entry := models.DayEmotion{Day: dayNames[d], DominantMood: days[d].lastEmotion}
		if days[d].focusN > 0 {
			entry.AvgFocus = days[d].focusSum / days[d].focusN
		}
		if days[d].stressN > 0 {
			entry.AvgStress = days[d].stressSum / days[d].stressN
		}
		stats.WeeklyEmotions[d] = entry
	}

	// Percentage share per emotion label, descending.
	if len(emotions) > 0 {
		for emotion, count := range emotionCounts {
			stats.EmotionDistribution = append(stats.EmotionDistribution, models.EmotionShare{
				Emotion: emotion,
				Percent: int(math.Round(float64(count) / float64(len(emotions)) * 100)),
			})
		}
		sort.Slice(stats.EmotionDistribution, func(i, j int) bool {
			if stats.EmotionDistribution[i].Percent != stats.EmotionDistribution[j].Percent {
				return stats.EmotionDistribution[i].Percent > stats.EmotionDistribution[j].Percent
			}
			return stats.EmotionDistribution[i].Emotion < stats.EmotionDistribution[j].Emotion
		})
	}

	stats.WellnessScore = wellnessScore(stats.AvgFocusLevel, stats.AvgStressLevel, len(emotions))

	studySeconds := totalStudySeconds(sessions)
	stats.BurnoutRisk = burnoutRisk(stats.AvgStressLevel, studySeconds)
	stats.BreakEfficiency = breakEfficiency(studySeconds)

	return stats
}

func wellnessScore(avgFocus, avgStress, emotionCount int) int {
	bonus := emotionCount * 5
	if bonus > 30 {
		bonus = 30
	}
	return int(math.Round(0.4*float64(avgFocus) + 0.3*float64(100-avgStress) + float64(bonus)))
}

// burnoutRisk evaluates its thresholds in order; the first match wins.
// 90000s = 25h and 72000s = 20h of study over the window.
func burnoutRisk(avgStress, studySeconds int) string {
	switch {
	case avgStress > 70 || studySeconds > 90000:
		return "High"
	case avgStress > 50 || studySeconds > 72000:
		return "Medium"
	default:
		return "Low"
	}
}

// breakEfficiency rates estimated break time against an ideal 25% of study
// time. Break time itself is the fixed assumedBreakRatio of study time, so
// with any study at all this lands at 80.
func breakEfficiency(studySeconds int) int {
	if studySeconds == 0 {
		return 0
	}
	estimatedBreak := assumedBreakRatio * float64(studySeconds)
	ideal := float64(studySeconds) * 0.25
	eff := int(math.Round(estimatedBreak / ideal * 100))
	if eff > 100 {
		eff = 100
	}
	return eff
}

func totalStudySeconds(sessions []models.StudySession) int {
	total := 0
	for _, s := range sessions {
		if s.DurationSeconds != nil {
			total += *s.DurationSeconds
		}
	}
	return total
}

// ComputeWeeklyAnalytics derives the per-day activity breakdown. The
// schedule may be nil when the user has no active plan.
func ComputeWeeklyAnalytics(
	sessions []models.StudySession,
	emotions []models.EmotionLog,
	completions []models.ScheduleSessionCompletion,
	schedule *models.StudySchedule,
) models.WeeklyAnalytics {
	analytics := models.WeeklyAnalytics{
		Days:         make([]models.DayActivity, 7),
		SubjectHours: []models.SubjectHours{},
	}

	studySeconds := totalStudySeconds(sessions)
	analytics.TotalStudyHours = roundHours(float64(studySeconds) / 3600)

	completed := 0
	for _, c := range completions {
		if c.Status == "completed" {
			completed++
		}
	}
	if schedule != nil {
		if planned := schedule.PlannedSessionCount(); planned > 0 {
			analytics.CompletionRate = float64(completed) / float64(planned)
		}
	}

	var daySeconds [7]int
	var dayCounts [7]int
	for _, s := range sessions {
		d := int(s.LoginTimestamp.Weekday())
		dayCounts[d]++
		if s.DurationSeconds != nil {
			daySeconds[d] += *s.DurationSeconds
		}
	}
	var dayEmotion [7]string
	for _, e := range emotions {
		dayEmotion[int(e.CreatedAt.Weekday())] = e.Emotion
	}
	for d := 0; d < 7; d++ {
		study := float64(daySeconds[d]) / 3600
		analytics.Days[d] = models.DayActivity{
			Day:          dayNames[d],
			StudyHours:   roundHours(study),
			BreakHours:   roundHours(study * assumedBreakRatio),
			Sessions:     dayCounts[d],
			EmotionTrend: dayEmotion[d],
		}
	}

	subjectSeconds := map[string]int{}
	for _, c := range completions {
		subjectSeconds[c.Subject] += c.DurationSeconds
	}
	for subject, secs := range subjectSeconds {
		analytics.SubjectHours = append(analytics.SubjectHours, models.SubjectHours{
			Subject: subject,
			Hours:   roundHours(float64(secs) / 3600),
		})
	}
	sort.Slice(analytics.SubjectHours, func(i, j int) bool {
		if analytics.SubjectHours[i].Hours != analytics.SubjectHours[j].Hours {
			return analytics.SubjectHours[i].Hours > analytics.SubjectHours[j].Hours
		}
		return analytics.SubjectHours[i].Subject < analytics.SubjectHours[j].Subject
	})

	return analytics
}

func roundHours(h float64) float64 {
	return math.Round(h*10) / 10
}

// BuildDayFeatures reduces one day's rows to the classifier's feature set.
// Focus and stress stay on the raw 1-10 scale here.
func BuildDayFeatures(
	sessions []models.StudySession,
	emotions []models.EmotionLog,
	completions []models.ScheduleSessionCompletion,
	schedule *models.StudySchedule,
	goalHours float64,
	weekdayName string,
) models.DayFeatures {
	f := models.DayFeatures{GoalHours: goalHours}

	f.StudyHours = float64(totalStudySeconds(sessions)) / 3600

	var focusSum, focusN, stressSum, stressN float64
	for _, e := range emotions {
		if e.FocusLevel != nil {
			focusSum += float64(*e.FocusLevel)
			focusN++
		}
		if e.StressLevel != nil {
			stressSum += float64(*e.StressLevel)
			stressN++
		}
		f.DominantEmotion = e.Emotion
	}
	if focusN > 0 {
		f.AvgFocus = focusSum / focusN
	}
	if stressN > 0 {
		f.AvgStress = stressSum / stressN
	}
	f.EmotionCount = len(emotions)

	for _, c := range completions {
		if c.Status == "completed" {
			f.CompletedSessions++
		}
	}
	if schedule != nil {
		for _, day := range schedule.WeeklyPlan {
			if day.Day == weekdayName {
				f.TotalSessions = len(day.Sessions)
				break
			}
		}
	}

	return f
}

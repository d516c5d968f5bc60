package services

import (
	"testing"
	"time"

	"studypulse-backend/internal/models"
)

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }
func emotionAt(day time.Weekday) time.Time {
	// Some date in a week where we control the weekday.
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) // a Sunday
	return base.AddDate(0, 0, int(day))
}

func TestComputeWellbeingStats_WellnessScore(t *testing.T) {
	// Ten logs at focus 8, stress 2 scale to averages of 80 and 20; the
	// check-in bonus caps at 30. 0.4*80 + 0.3*(100-20) + 30 = 86.
	var emotions []models.EmotionLog
	for i := 0; i < 10; i++ {
		emotions = append(emotions, models.EmotionLog{
			Emotion:     "calm",
			FocusLevel:  intPtr(8),
			StressLevel: intPtr(2),
			CreatedAt:   emotionAt(time.Monday),
		})
	}

	stats := ComputeWellbeingStats(nil, emotions)

	if stats.AvgFocusLevel != 80 {
		t.Errorf("AvgFocusLevel = %d, want 80", stats.AvgFocusLevel)
	}
	if stats.AvgStressLevel != 20 {
		t.Errorf("AvgStressLevel = %d, want 20", stats.AvgStressLevel)
	}
	if stats.WellnessScore != 86 {
		t.Errorf("WellnessScore = %d, want 86", stats.WellnessScore)
	}
}

func TestComputeWellbeingStats_EmptyWindow(t *testing.T) {
	stats := ComputeWellbeingStats(nil, nil)

	if stats.AvgFocusLevel != 0 || stats.AvgStressLevel != 0 {
		t.Errorf("averages = %d/%d, want 0/0", stats.AvgFocusLevel, stats.AvgStressLevel)
	}
	if stats.BurnoutRisk != "Low" {
		t.Errorf("BurnoutRisk = %q, want Low", stats.BurnoutRisk)
	}
	if stats.WellnessScore != 30 {
		// 0.4*0 + 0.3*100 + 0 = 30
		t.Errorf("WellnessScore = %d, want 30", stats.WellnessScore)
	}
	if stats.BreakEfficiency != 0 {
		t.Errorf("BreakEfficiency = %d, want 0", stats.BreakEfficiency)
	}
	if len(stats.WeeklyEmotions) != 7 {
		t.Fatalf("WeeklyEmotions has %d entries, want 7", len(stats.WeeklyEmotions))
	}
	if stats.WeeklyEmotions[0].Day != "Sunday" || stats.WeeklyEmotions[6].Day != "Saturday" {
		t.Errorf("weekly order = %s..%s, want Sunday..Saturday", stats.WeeklyEmotions[0].Day, stats.WeeklyEmotions[6].Day)
	}
	if len(stats.MoodTrends) != 0 || len(stats.EmotionDistribution) != 0 {
		t.Error("expected empty mood trends and distribution")
	}
}

func TestBurnoutRisk_OrderedThresholds(t *testing.T) {
	tests := []struct {
		name         string
		avgStress    int
		studySeconds int
		want         string
	}{
		{"high stress", 71, 0, "High"},
		{"high study load", 40, 90001, "High"},
		{"medium stress", 51, 0, "Medium"},
		{"medium study load", 40, 72001, "Medium"},
		{"exact medium boundary stays low", 50, 72000, "Low"},
		{"exact high boundary falls to medium", 70, 90000, "Medium"},
		{"quiet week", 30, 3600, "Low"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := burnoutRisk(tc.avgStress, tc.studySeconds); got != tc.want {
				t.Errorf("burnoutRisk(%d, %d) = %q, want %q", tc.avgStress, tc.studySeconds, got, tc.want)
			}
		})
	}
}

func TestBreakEfficiency(t *testing.T) {
	// The assumed break share is 0.2 of study against an ideal 0.25, so any
	// nonzero study time rates 80.
	if got := breakEfficiency(7200); got != 80 {
		t.Errorf("breakEfficiency(7200) = %d, want 80", got)
	}
	if got := breakEfficiency(0); got != 0 {
		t.Errorf("breakEfficiency(0) = %d, want 0", got)
	}
}

func TestComputeWellbeingStats_DominantMoodIsLastOfDay(t *testing.T) {
	monday := emotionAt(time.Monday)
	emotions := []models.EmotionLog{
		{Emotion: "anxious", CreatedAt: monday},
		{Emotion: "calm", CreatedAt: monday.Add(2 * time.Hour)},
	}

	stats := ComputeWellbeingStats(nil, emotions)

	if got := stats.WeeklyEmotions[1].DominantMood; got != "calm" {
		t.Errorf("Monday dominant mood = %q, want calm", got)
	}
}

func TestComputeWellbeingStats_MoodTrendsDescending(t *testing.T) {
	emotions := []models.EmotionLog{
		{Emotion: "happy", CreatedAt: emotionAt(time.Monday)},
		{Emotion: "happy", CreatedAt: emotionAt(time.Tuesday)},
		{Emotion: "tired", CreatedAt: emotionAt(time.Wednesday)},
		{Emotion: "anxious", Mood: strPtr("uneasy"), CreatedAt: emotionAt(time.Thursday)},
	}

	stats := ComputeWellbeingStats(nil, emotions)

	if len(stats.MoodTrends) != 3 {
		t.Fatalf("MoodTrends has %d entries, want 3", len(stats.MoodTrends))
	}
	if stats.MoodTrends[0].Mood != "happy" || stats.MoodTrends[0].Count != 2 {
		t.Errorf("top trend = %+v, want happy x2", stats.MoodTrends[0])
	}
	// Mood overrides the emotion label when present.
	found := false
	for _, trend := range stats.MoodTrends {
		if trend.Mood == "uneasy" {
			found = true
		}
	}
	if !found {
		t.Error("expected mood label 'uneasy' to appear in trends")
	}
}

func TestComputeWeeklyAnalytics_CompletionRate(t *testing.T) {
	schedule := &models.StudySchedule{
		WeeklyPlan: []models.DayPlan{
			{Day: "Monday", Sessions: []models.PlannedSession{{Subject: "Math"}, {Subject: "Physics"}}},
			{Day: "Tuesday", Sessions: []models.PlannedSession{{Subject: "Math"}, {Subject: "History"}}},
		},
	}
	completions := []models.ScheduleSessionCompletion{
		{Subject: "Math", Status: "completed", DurationSeconds: 3600},
		{Subject: "Physics", Status: "completed", DurationSeconds: 1800},
		{Subject: "History", Status: "skipped"},
	}

	analytics := ComputeWeeklyAnalytics(nil, nil, completions, schedule)

	if analytics.CompletionRate != 0.5 {
		t.Errorf("CompletionRate = %v, want 0.5", analytics.CompletionRate)
	}

	// No schedule means nothing planned, so the rate stays zero.
	noPlan := ComputeWeeklyAnalytics(nil, nil, completions, nil)
	if noPlan.CompletionRate != 0 {
		t.Errorf("CompletionRate without schedule = %v, want 0", noPlan.CompletionRate)
	}
}

func TestComputeWeeklyAnalytics_SubjectHours(t *testing.T) {
	completions := []models.ScheduleSessionCompletion{
		{Subject: "Math", Status: "completed", DurationSeconds: 7200},
		{Subject: "Math", Status: "completed", DurationSeconds: 1800},
		{Subject: "History", Status: "completed", DurationSeconds: 3600},
	}

	analytics := ComputeWeeklyAnalytics(nil, nil, completions, nil)

	if len(analytics.SubjectHours) != 2 {
		t.Fatalf("SubjectHours has %d entries, want 2", len(analytics.SubjectHours))
	}
	if analytics.SubjectHours[0].Subject != "Math" || analytics.SubjectHours[0].Hours != 2.5 {
		t.Errorf("top subject = %+v, want Math 2.5h", analytics.SubjectHours[0])
	}
}

func TestComputeWeeklyAnalytics_TotalStudyHours(t *testing.T) {
	sessions := []models.StudySession{
		{LoginTimestamp: emotionAt(time.Monday), DurationSeconds: intPtr(5400)},
		{LoginTimestamp: emotionAt(time.Monday), DurationSeconds: intPtr(1800)},
		{LoginTimestamp: emotionAt(time.Tuesday)}, // still open, no duration
	}

	analytics := ComputeWeeklyAnalytics(sessions, nil, nil, nil)

	if analytics.TotalStudyHours != 2.0 {
		t.Errorf("TotalStudyHours = %v, want 2.0", analytics.TotalStudyHours)
	}
	if analytics.Days[1].Sessions != 2 {
		t.Errorf("Monday session count = %d, want 2", analytics.Days[1].Sessions)
	}
	if analytics.Days[1].StudyHours != 2.0 {
		t.Errorf("Monday study hours = %v, want 2.0", analytics.Days[1].StudyHours)
	}
}

func TestBuildDayFeatures(t *testing.T) {
	sessions := []models.StudySession{
		{DurationSeconds: intPtr(5400)},
	}
	emotions := []models.EmotionLog{
		{Emotion: "calm", FocusLevel: intPtr(6), StressLevel: intPtr(4)},
		{Emotion: "happy", FocusLevel: intPtr(8), StressLevel: intPtr(2)},
	}
	completions := []models.ScheduleSessionCompletion{
		{Status: "completed"},
		{Status: "skipped"},
	}
	schedule := &models.StudySchedule{
		WeeklyPlan: []models.DayPlan{
			{Day: "Monday", Sessions: []models.PlannedSession{{Subject: "Math"}, {Subject: "Physics"}, {Subject: "History"}}},
		},
	}

	f := BuildDayFeatures(sessions, emotions, completions, schedule, 2.0, "Monday")

	if f.StudyHours != 1.5 {
		t.Errorf("StudyHours = %v, want 1.5", f.StudyHours)
	}
	if f.AvgFocus != 7 || f.AvgStress != 3 {
		t.Errorf("averages = %v/%v, want 7/3", f.AvgFocus, f.AvgStress)
	}
	if f.DominantEmotion != "happy" {
		t.Errorf("DominantEmotion = %q, want happy", f.DominantEmotion)
	}
	if f.CompletedSessions != 1 || f.TotalSessions != 3 {
		t.Errorf("sessions = %d/%d, want 1/3", f.CompletedSessions, f.TotalSessions)
	}
	if f.EmotionCount != 2 {
		t.Errorf("EmotionCount = %d, want 2", f.EmotionCount)
	}

	// Different weekday means a different planned-session count.
	other := BuildDayFeatures(sessions, emotions, completions, schedule, 2.0, "Tuesday")
	if other.TotalSessions != 0 {
		t.Errorf("Tuesday TotalSessions = %d, want 0", other.TotalSessions)
	}
}

package models

// Derived analytics over a trailing seven-day window. Nothing here is
// persisted; every read recomputes from source rows.

type MoodTrend struct {
	Mood  string `json:"mood"`
	Count int    `json:"count"`
}

type DayEmotion struct {
	Day          string `json:"day"` // "Sunday".."Saturday"
	AvgFocus     int    `json:"avg_focus"`
	AvgStress    int    `json:"avg_stress"`
	DominantMood string `json:"dominant_mood"`
}

type EmotionShare struct {
	Emotion string `json:"emotion"`
	Percent int    `json:"percent"`
}

type WellbeingStats struct {
	AvgFocusLevel       int            `json:"avg_focus_level"`  // 0-100
	AvgStressLevel      int            `json:"avg_stress_level"` // 0-100
	MoodTrends          []MoodTrend    `json:"mood_trends"`
	WeeklyEmotions      []DayEmotion   `json:"weekly_emotions"`
	EmotionDistribution []EmotionShare `json:"emotion_distribution"`
	WellnessScore       int            `json:"wellness_score"`
	BurnoutRisk         string         `json:"burnout_risk"` // "Low" | "Medium" | "High"
	BreakEfficiency     int            `json:"break_efficiency"`
}

type DayActivity struct {
	Day          string  `json:"day"`
	StudyHours   float64 `json:"study_hours"`
	BreakHours   float64 `json:"break_hours"`
	Sessions     int     `json:"sessions"`
	EmotionTrend string  `json:"emotion_trend"`
}

type SubjectHours struct {
	Subject string  `json:"subject"`
	Hours   float64 `json:"hours"`
}

type WeeklyAnalytics struct {
	TotalStudyHours float64        `json:"total_study_hours"`
	CompletionRate  float64        `json:"completion_rate"`
	Days            []DayActivity  `json:"days"`
	SubjectHours    []SubjectHours `json:"subject_hours"`
}

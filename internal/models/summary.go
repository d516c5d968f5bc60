package models

// DayFeatures is the scalar feature set the end-of-day classifier reads.
// Focus and stress are on the 1-10 scale of the raw emotion logs.
type DayFeatures struct {
	StudyHours        float64 `json:"study_hours"`
	GoalHours         float64 `json:"goal_hours"`
	CompletedSessions int     `json:"completed_sessions"`
	TotalSessions     int     `json:"total_sessions"`
	DominantEmotion   string  `json:"dominant_emotion"`
	AvgFocus          float64 `json:"avg_focus"`
	AvgStress         float64 `json:"avg_stress"`
	EmotionCount      int     `json:"emotion_count"`
}

// CompletionRate is completed over total planned sessions, 0 when nothing
// was planned.
func (f DayFeatures) CompletionRate() float64 {
	if f.TotalSessions == 0 {
		return 0
	}
	return float64(f.CompletedSessions) / float64(f.TotalSessions)
}

// GoalReached is true when at least 80% of the goal was studied, or, with
// no goal set, when any studying happened at all.
func (f DayFeatures) GoalReached() bool {
	if f.GoalHours > 0 {
		return f.StudyHours >= 0.8*f.GoalHours
	}
	return f.StudyHours > 0
}

// DaySummary is the classified narrative for one calendar day.
type DaySummary struct {
	Date        string      `json:"date"` // YYYY-MM-DD in the user's timezone
	State       string      `json:"state"`
	Message     string      `json:"message"`
	ClosingLine string      `json:"closing_line"`
	Features    DayFeatures `json:"features"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// EmotionLog is an append-only record of one emotion/focus observation.
// Rows are never mutated after creation.
type EmotionLog struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	SessionID   *uuid.UUID `json:"session_id,omitempty"`
	Emotion     string     `json:"emotion"`
	Confidence  float64    `json:"confidence"`
	FocusLevel  *int       `json:"focus_level,omitempty"`  // 1-10
	StressLevel *int       `json:"stress_level,omitempty"` // 1-10
	Mood        *string    `json:"mood,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
	Source      string     `json:"source"` // "text" | "camera"
	CreatedAt   time.Time  `json:"created_at"`
}

type CreateEmotionLogRequest struct {
	SessionID   *uuid.UUID `json:"session_id"`
	Emotion     string     `json:"emotion"`
	Confidence  float64    `json:"confidence"`
	FocusLevel  *int       `json:"focus_level"`
	StressLevel *int       `json:"stress_level"`
	Mood        *string    `json:"mood"`
	Notes       *string    `json:"notes"`
	Source      string     `json:"source"`
}

type AnalyzeEmotionRequest struct {
	Text string `json:"text"`
}

// EmotionAnalysis is the parsed result of an AI text classification.
type EmotionAnalysis struct {
	Emotion    string  `json:"emotion"`
	Confidence float64 `json:"confidence"`
	Mood       string  `json:"mood"`
}

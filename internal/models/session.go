package models

import (
	"time"

	"github.com/google/uuid"
)

// StudySession is one continuous period of study. A session is opened at
// login time and closed exactly once with a final duration; at most one
// session per user is open at any moment.
type StudySession struct {
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"user_id"`
	LoginTimestamp  time.Time  `json:"login_timestamp"`
	LogoutTimestamp *time.Time `json:"logout_timestamp,omitempty"`
	DurationSeconds *int       `json:"duration_seconds,omitempty"`
	SubjectsStudied []string   `json:"subjects_studied"`
	Notes           *string    `json:"notes,omitempty"`
	EmotionDetected *string    `json:"emotion_detected,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

type UpdateSessionRequest struct {
	SubjectsStudied []string `json:"subjects_studied"`
	Notes           *string  `json:"notes"`
	EmotionDetected *string  `json:"emotion_detected"`
}

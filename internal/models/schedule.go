package models

import (
	"time"

	"github.com/google/uuid"
)

type PlannedSession struct {
	Time            string `json:"time"`
	Subject         string `json:"subject"`
	Topic           string `json:"topic"`
	Type            string `json:"type"`
	DurationMinutes int    `json:"duration_minutes"`
}

type DayPlan struct {
	Day      string           `json:"day"`
	Sessions []PlannedSession `json:"sessions"`
}

// StudySchedule is a weekly plan. At most one schedule per user has
// status "active"; activating one deactivates the rest.
type StudySchedule struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	Status     string    `json:"status"` // "draft" | "active" | "archived"
	WeeklyPlan []DayPlan `json:"weekly_plan"`
	TotalHours float64   `json:"total_hours"`
	Tips       []string  `json:"tips"`
	Priorities []string  `json:"priorities"`
	CreatedAt  time.Time `json:"created_at"`
}

// PlannedSessionCount returns the number of sessions across the whole plan.
func (s *StudySchedule) PlannedSessionCount() int {
	n := 0
	for _, day := range s.WeeklyPlan {
		n += len(day.Sessions)
	}
	return n
}

// ScheduleSessionCompletion marks that a planned session occurred.
// Append-only.
type ScheduleSessionCompletion struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	ScheduleID      uuid.UUID `json:"schedule_id"`
	Day             string    `json:"day"`
	Subject         string    `json:"subject"`
	DurationSeconds int       `json:"duration_seconds"`
	Status          string    `json:"status"` // "completed" | "skipped"
	CreatedAt       time.Time `json:"created_at"`
}

type SubjectGoal struct {
	Subject      string  `json:"subject"`
	HoursPerWeek float64 `json:"hours_per_week"`
	Deadline     *string `json:"deadline,omitempty"`
}

type GenerateScheduleRequest struct {
	Subjects           []SubjectGoal `json:"subjects"`
	InstituteTimetable string        `json:"institute_timetable"`
	PersonalEvents     string        `json:"personal_events"`
	StartDate          string        `json:"start_date"`
	EndDate            string        `json:"end_date"`
}

// GeneratedSchedule is the shape the AI reply must parse into.
type GeneratedSchedule struct {
	WeeklyPlan []DayPlan `json:"weeklyPlan"`
	TotalHours float64   `json:"totalHours"`
	Tips       []string  `json:"tips"`
	Priorities []string  `json:"priorities"`
}

type CreateCompletionRequest struct {
	ScheduleID      uuid.UUID `json:"schedule_id"`
	Day             string    `json:"day"`
	Subject         string    `json:"subject"`
	DurationSeconds int       `json:"duration_seconds"`
	Status          string    `json:"status"`
}

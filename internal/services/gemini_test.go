package services

import (
	"encoding/json"
	"strings"
	"testing"

	"studypulse-backend/internal/models"
)

func TestStripMarkdownFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain json", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  \n{\"a\":1}\n  ", `{"a":1}`},
		{"empty", "", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := stripMarkdownFences(tc.input); got != tc.want {
				t.Errorf("stripMarkdownFences(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestGeneratedScheduleParsing(t *testing.T) {
	raw := "```json\n" + `{
		"weeklyPlan": [
			{"day": "Monday", "sessions": [
				{"time": "09:00", "subject": "Math", "topic": "Calculus", "type": "study", "duration_minutes": 60}
			]}
		],
		"totalHours": 12.5,
		"tips": ["Take breaks"],
		"priorities": ["Math"]
	}` + "\n```"

	var schedule models.GeneratedSchedule
	if err := json.Unmarshal([]byte(stripMarkdownFences(raw)), &schedule); err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if len(schedule.WeeklyPlan) != 1 {
		t.Fatalf("WeeklyPlan has %d days, want 1", len(schedule.WeeklyPlan))
	}
	if schedule.WeeklyPlan[0].Day != "Monday" {
		t.Errorf("day = %q, want Monday", schedule.WeeklyPlan[0].Day)
	}
	session := schedule.WeeklyPlan[0].Sessions[0]
	if session.Subject != "Math" || session.DurationMinutes != 60 {
		t.Errorf("session = %+v", session)
	}
	if schedule.TotalHours != 12.5 {
		t.Errorf("TotalHours = %v, want 12.5", schedule.TotalHours)
	}
}

func TestBuildSchedulePrompt(t *testing.T) {
	deadline := "2025-07-01"
	req := models.GenerateScheduleRequest{
		Subjects: []models.SubjectGoal{
			{Subject: "Math", HoursPerWeek: 6, Deadline: &deadline},
			{Subject: "History", HoursPerWeek: 3},
		},
		InstituteTimetable: "Mon 09:00-12:00 lectures",
		PersonalEvents:     "Wed evening gym",
		StartDate:          "2025-06-02",
		EndDate:            "2025-06-08",
	}

	prompt := buildSchedulePrompt(req)

	for _, want := range []string{
		"Math: 6.0 hours/week (deadline 2025-07-01)",
		"History: 3.0 hours/week",
		"Mon 09:00-12:00 lectures",
		"Wed evening gym",
		"2025-06-02 to 2025-06-08",
		"weeklyPlan",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildSchedulePrompt_OmitsEmptySections(t *testing.T) {
	req := models.GenerateScheduleRequest{
		Subjects:  []models.SubjectGoal{{Subject: "Math", HoursPerWeek: 4}},
		StartDate: "2025-06-02",
		EndDate:   "2025-06-08",
	}

	prompt := buildSchedulePrompt(req)

	if strings.Contains(prompt, "Institute timetable") {
		t.Error("prompt should omit the timetable section when empty")
	}
	if strings.Contains(prompt, "Personal events") {
		t.Error("prompt should omit the events section when empty")
	}
}

package services

import (
	"fmt"

	"studypulse-backend/internal/models"
)

// Day states, mutually exclusive. Classification walks an ordered rule
// list and the first matching predicate wins, so the order below is a
// contract, not a convenience.
const (
	StateStressed           = "stressed"
	StateProud              = "proud"
	StateMotivated          = "motivated"
	StateTiredButConsistent = "tired_but_consistent"
	StateRecovering         = "recovering"
	StateDiscouraged        = "discouraged"
	StateStrongStart        = "strong_start"
	StateBalanced           = "balanced"
)

type dayRule struct {
	state   string
	matches func(f models.DayFeatures) bool
}

var dayRules = []dayRule{
	{StateStressed, func(f models.DayFeatures) bool {
		return f.AvgStress >= 7 && f.CompletionRate() < 0.5
	}},
	{StateProud, func(f models.DayFeatures) bool {
		return f.CompletionRate() >= 0.8 && f.GoalReached()
	}},
	{StateMotivated, func(f models.DayFeatures) bool {
		return f.CompletionRate() >= 0.6 && f.AvgFocus >= 6
	}},
	{StateTiredButConsistent, func(f models.DayFeatures) bool {
		return f.StudyHours > 0 && f.CompletionRate() < 0.5 && f.AvgStress < 7
	}},
	{StateRecovering, func(f models.DayFeatures) bool {
		return f.StudyHours == 0 && f.EmotionCount > 0
	}},
	{StateDiscouraged, func(f models.DayFeatures) bool {
		return f.CompletionRate() < 0.3 && f.GoalHours > 0
	}},
	{StateStrongStart, func(f models.DayFeatures) bool {
		return f.StudyHours > 0 && f.EmotionCount == 0
	}},
	{StateBalanced, func(f models.DayFeatures) bool {
		return true
	}},
}

// ClassifyDay maps one day's features to exactly one narrative state.
// Pure and deterministic; identical inputs always produce the same output.
func ClassifyDay(f models.DayFeatures) (state, message, closingLine string) {
	for _, rule := range dayRules {
		if rule.matches(f) {
			return rule.state, dayMessage(rule.state, f), dayClosingLine(rule.state)
		}
	}
	// The last rule always matches.
	return StateBalanced, dayMessage(StateBalanced, f), dayClosingLine(StateBalanced)
}

func dayMessage(state string, f models.DayFeatures) string {
	rate := int(f.CompletionRate() * 100)

	switch state {
	case StateStressed:
		return fmt.Sprintf("Today felt heavy. Your stress averaged %.0f/10 and %d%% of your planned sessions got done. That combination is a signal to slow down, not push harder.", f.AvgStress, rate)
	case StateProud:
		return fmt.Sprintf("You completed %d of %d planned sessions and hit your study goal with %.1f hours. Days like this are what progress looks like.", f.CompletedSessions, f.TotalSessions, f.StudyHours)
	case StateMotivated:
		return fmt.Sprintf("Solid day: %d%% of your plan done with focus averaging %.0f/10. You are building momentum.", rate, f.AvgFocus)
	case StateTiredButConsistent:
		return fmt.Sprintf("You still put in %.1f hours even though the plan slipped. Showing up tired counts for more than it feels like.", f.StudyHours)
	case StateRecovering:
		return fmt.Sprintf("No study logged today, but you checked in with yourself %d times. Rest days are part of the schedule too.", f.EmotionCount)
	case StateDiscouraged:
		return fmt.Sprintf("Only %d%% of today's plan happened against a %.1f-hour goal. One rough day does not define the week.", rate, f.GoalHours)
	case StateStrongStart:
		return fmt.Sprintf("You studied %.1f hours today without logging how you felt. The work is there; add a check-in tomorrow so the numbers can keep up.", f.StudyHours)
	default:
		return fmt.Sprintf("A steady day: %.1f hours studied, %d check-ins, nothing out of balance.", f.StudyHours, f.EmotionCount)
	}
}

func dayClosingLine(state string) string {
	switch state {
	case StateStressed:
		return "Tomorrow, start with the smallest session on your plan."
	case StateProud:
		return "Enjoy the win. See you tomorrow."
	case StateMotivated:
		return "Keep the streak going."
	case StateTiredButConsistent:
		return "Get some sleep; consistency beats intensity."
	case StateRecovering:
		return "Come back when you're ready."
	case StateDiscouraged:
		return "Shrink tomorrow's goal and rebuild from there."
	case StateStrongStart:
		return "Log an emotion check-in next time."
	default:
		return "Steady as she goes."
	}
}

package ai

import (
	"fmt"
	"strings"
)

// BuildReflectionPrompt assembles the input for a daily check-in summary.
// Only counts and ratings go to the model, never raw task text.
func BuildReflectionPrompt(
	energyRating int,
	focusRating int,
	completedCount int,
	uncompletedCount int,
	hoursPlanned float64,
	hoursSpent float64,
) string {

	var b strings.Builder

	b.WriteString("You are a study coach. Write a 2-3 sentence encouraging summary of this student's day.\n\n")

	b.WriteString("energy_rating: ")
	b.WriteString(fmt.Sprintf("%d/10\n", energyRating))

	b.WriteString("focus_rating: ")
	b.WriteString(fmt.Sprintf("%d/10\n", focusRating))

	b.WriteString("tasks_completed: ")
	b.WriteString(fmt.Sprintf("%d\n", completedCount))

	b.WriteString("tasks_uncompleted: ")
	b.WriteString(fmt.Sprintf("%d\n", uncompletedCount))

	if hoursPlanned > 0 {
		b.WriteString("hours_planned: ")
		b.WriteString(fmt.Sprintf("%.1f\n", hoursPlanned))
	}

	if hoursSpent > 0 {
		b.WriteString("hours_spent: ")
		b.WriteString(fmt.Sprintf("%.1f\n", hoursSpent))
	}

	return b.String()
}

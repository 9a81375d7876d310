package routines

import (
	"strings"
	"time"

	"studysync-backend/internal/planner"
)

// validate checks a routine creation request and returns a human-readable
// problem, or "" when the request is acceptable.
func validate(body createRequest) string {
	if strings.TrimSpace(body.Name) == "" {
		return "name is required"
	}
	if !planner.RoutineTypes[body.Type] {
		return "invalid type"
	}
	if len(body.DaysOfWeek) == 0 {
		return "days_of_week is required"
	}
	seen := map[int]bool{}
	for _, d := range body.DaysOfWeek {
		if d < 0 || d > 6 {
			return "days_of_week values must be 0..6"
		}
		if seen[d] {
			return "days_of_week values must be unique"
		}
		seen[d] = true
	}
	if _, err := time.Parse("15:04", body.StartTime); err != nil {
		return "start_time must be HH:MM"
	}
	if body.Duration < planner.MinDurationMinutes {
		return "duration must be at least 5 minutes"
	}
	return ""
}

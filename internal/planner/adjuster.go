package planner

import (
	"math"
	"time"
)

// executionBoost rewards a reflection for out-executing its plan: spending
// more hours than planned (ratio capped at 1.5, scaled x10 above 1.0) and
// completing tasks (one point each, capped at 10).
func executionBoost(r Reflection) float64 {
	var boost float64

	if r.TotalHoursPlanned > 0 {
		ratio := r.TotalHoursSpent / r.TotalHoursPlanned
		if ratio > 1.5 {
			ratio = 1.5
		}
		if ratio > 1 {
			boost += (ratio - 1) * 10
		}
	}

	completed := float64(r.TasksCompletedCount)
	if completed > 10 {
		completed = 10
	}
	boost += completed

	return boost
}

// focusBaseline computes the recency-weighted baseline from reflections
// ordered oldest first. The most recent reflection carries the highest
// weight.
func focusBaseline(history []Reflection) float64 {
	var sum, weightSum float64
	for i, r := range history {
		weight := 1 + float64(i)*0.2
		score := ((float64(r.FocusRating)*0.6 + float64(r.EnergyRating)*0.4) / 5) * 100
		score += executionBoost(r)
		sum += weight * score
		weightSum += weight
	}
	return sum / weightSum
}

// hourBoost is a Gaussian bump centered on the user's optimal study hour,
// using circular hour distance (max 12).
func hourBoost(hour, optimalHour int) float64 {
	diff := hour - optimalHour
	if diff < 0 {
		diff = -diff
	}
	if diff > 12 {
		diff = 24 - diff
	}
	return math.Round(15 * math.Exp(-float64(diff*diff)/(2*4)))
}

func clampScore(v float64) int {
	s := int(math.Round(v))
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

// buildFocusCurve produces the next 24 hourly points starting from "from".
// Hours 00:00-05:00 take a flat -10 penalty.
func buildFocusCurve(baseline float64, optimalHour int, from time.Time) []FocusHour {
	hours := make([]FocusHour, 0, 24)
	for i := 0; i < 24; i++ {
		ts := from.Add(time.Duration(i) * time.Hour)
		h := ts.Hour()

		raw := baseline + hourBoost(h, optimalHour)
		if h <= 5 {
			raw -= 10
		}

		hours = append(hours, FocusHour{
			Timestamp: ts,
			HourOfDay: h,
			Score:     clampScore(raw),
		})
	}
	return hours
}

// flatFocusCurve is the no-history fallback: every point scores the same.
func flatFocusCurve(score int, from time.Time) []FocusHour {
	hours := make([]FocusHour, 0, 24)
	for i := 0; i < 24; i++ {
		ts := from.Add(time.Duration(i) * time.Hour)
		hours = append(hours, FocusHour{
			Timestamp: ts,
			HourOfDay: ts.Hour(),
			Score:     score,
		})
	}
	return hours
}

// pickDeferCandidate selects the session to suggest deferring: among
// sessions of at most 60 minutes, the lowest priority wins, ties broken by
// the shortest duration. Returns nil when no session qualifies.
func pickDeferCandidate(sessions []Session) *Session {
	var best *Session
	for i := range sessions {
		s := &sessions[i]
		if s.Minutes > 60 {
			continue
		}
		if best == nil ||
			s.Priority < best.Priority ||
			(s.Priority == best.Priority && s.Minutes < best.Minutes) {
			best = s
		}
	}
	return best
}

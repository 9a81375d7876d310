package planner

// Config holds the tuning knobs for blueprint generation and the
// reflection-driven heuristics.
type Config struct {
	// Planning window, hours of the local day.
	DayStartHour int
	DayEndHour   int

	// Session packing.
	MinSessionMinutes int
	MaxChunkMinutes   int

	// Focus prediction.
	NeutralBaseline    float64
	DefaultOptimalHour int
	HistoryLimit       int
	HistoryWindowDays  int

	// Workload check.
	WeeklyOverloadMinutes int
}

// Default returns the standard tuning.
func Default() Config {
	return Config{
		DayStartHour:          6,
		DayEndHour:            23,
		MinSessionMinutes:     30,
		MaxChunkMinutes:       90,
		NeutralBaseline:       60,
		DefaultOptimalHour:    14,
		HistoryLimit:          7,
		HistoryWindowDays:     30,
		WeeklyOverloadMinutes: 50 * 60,
	}
}

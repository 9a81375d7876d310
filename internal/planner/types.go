package planner

import (
	"fmt"
	"time"
)

const (
	MinPriority = 1
	MaxPriority = 5

	DefaultPriority        = 3
	DefaultDurationMinutes = 60
	MinDurationMinutes     = 5
)

// Task is a flexible, due-dated unit of work the scheduler places into
// free time. ScheduledTime is the only field the engine writes back.
type Task struct {
	ID                int        `json:"id"`
	UserID            int        `json:"user_id"`
	Title             string     `json:"title"`
	Subject           string     `json:"subject,omitempty"`
	DueDate           *time.Time `json:"due_date,omitempty"`
	EstimatedDuration int        `json:"estimated_duration"` // minutes
	Priority          int        `json:"priority"`           // 1..5
	IsCompleted       bool       `json:"is_completed"`
	ScheduledTime     *time.Time `json:"scheduled_time,omitempty"`
}

// ClampPriority forces a priority into [MinPriority, MaxPriority],
// mapping zero to the default.
func ClampPriority(p int) int {
	if p == 0 {
		return DefaultPriority
	}
	if p < MinPriority {
		return MinPriority
	}
	if p > MaxPriority {
		return MaxPriority
	}
	return p
}

// ClampDuration forces an estimated duration into a sane range,
// mapping zero to the default.
func ClampDuration(minutes int) int {
	if minutes == 0 {
		return DefaultDurationMinutes
	}
	if minutes < MinDurationMinutes {
		return MinDurationMinutes
	}
	return minutes
}

// RoutineType enumerates the recurring fixed-time commitments.
var RoutineTypes = map[string]bool{
	"sleep":       true,
	"meal":        true,
	"break":       true,
	"habit":       true,
	"fixed_class": true,
	"exercise":    true,
}

// Routine is a recurring fixed-time commitment. The engine never moves a
// routine; it only consumes its occupied time on the matching weekdays.
type Routine struct {
	ID         int    `json:"id"`
	UserID     int    `json:"user_id"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	DaysOfWeek []int  `json:"days_of_week"` // 0=Sunday .. 6=Saturday
	StartTime  string `json:"start_time"`   // "HH:MM"
	Duration   int    `json:"duration"`     // minutes
	IsFixed    bool   `json:"is_fixed"`
}

func (r Routine) OccursOn(weekday time.Weekday) bool {
	for _, d := range r.DaysOfWeek {
		if d == int(weekday) {
			return true
		}
	}
	return false
}

// OccurrenceOn converts the routine's HH:MM start and duration into an
// absolute interval on the given day.
func (r Routine) OccurrenceOn(day time.Time) (Interval, error) {
	t, err := time.Parse("15:04", r.StartTime)
	if err != nil {
		return Interval{}, fmt.Errorf("routine %d: bad start time %q", r.ID, r.StartTime)
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location())
	return Interval{
		Start: start,
		End:   start.Add(time.Duration(r.Duration) * time.Minute),
	}, nil
}

// Reflection is a daily user check-in.
type Reflection struct {
	ID                  int       `json:"id"`
	UserID              int       `json:"user_id"`
	Date                time.Time `json:"date"`
	EnergyRating        int       `json:"energy_rating"` // 1..10
	FocusRating         int       `json:"focus_rating"`  // 1..10
	CompletedTasks      []int     `json:"completed_tasks"`
	UncompletedTasks    []int     `json:"uncompleted_tasks"`
	TasksCompletedCount int       `json:"tasks_completed_count"`
	TotalHoursPlanned   float64   `json:"total_hours_planned"`
	TotalHoursSpent     float64   `json:"total_hours_spent"`
	AISummary           string    `json:"ai_summary,omitempty"`
}

// Interval is a half-open span of time [Start, End).
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (iv Interval) Minutes() int {
	return int(iv.End.Sub(iv.Start) / time.Minute)
}

// RoutineBlock is one routine occurrence inside a blueprint.
type RoutineBlock struct {
	RoutineID int       `json:"routine_id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
}

// ScheduledSession is one allocated chunk of a task.
type ScheduledSession struct {
	TaskID  int       `json:"task_id"`
	Title   string    `json:"title"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Minutes int       `json:"minutes"`
}

// UnscheduledTask is a task that found no slot in the run.
type UnscheduledTask struct {
	TaskID           int    `json:"task_id"`
	Title            string `json:"title"`
	EstimatedMinutes int    `json:"estimated_minutes"`
}

// Blueprint is the computed daily schedule. It is ephemeral; nothing but
// each task's first session start is persisted.
//
// Scheduled plus unscheduled tasks always account for every incomplete
// task considered in the run, even when Degraded is set.
type Blueprint struct {
	Date             time.Time          `json:"date"`
	Routines         []RoutineBlock     `json:"routines"`
	ScheduledTasks   []ScheduledSession `json:"scheduled_tasks"`
	UnscheduledTasks []UnscheduledTask  `json:"unscheduled_tasks"`
	FreeSlots        []Interval         `json:"free_slots"`
	Degraded         bool               `json:"degraded"`
	Error            string             `json:"error,omitempty"`
}

func emptyBlueprint(date time.Time) Blueprint {
	return Blueprint{
		Date:             date,
		Routines:         []RoutineBlock{},
		ScheduledTasks:   []ScheduledSession{},
		UnscheduledTasks: []UnscheduledTask{},
		FreeSlots:        []Interval{},
	}
}

// FocusHour is one hourly point of a focus prediction.
type FocusHour struct {
	Timestamp time.Time `json:"timestamp"`
	HourOfDay int       `json:"hour_of_day"`
	Score     int       `json:"score"` // 0..100
}

// FocusPrediction is the forward-looking 24-hour focus curve.
type FocusPrediction struct {
	Baseline float64     `json:"baseline"`
	Hours    []FocusHour `json:"hours"`
	Degraded bool        `json:"degraded"`
	Error    string      `json:"error,omitempty"`
}

// RescheduleResult reports a slipped-task reschedule.
type RescheduleResult struct {
	UpdatedCount int    `json:"updated_count"`
	Error        string `json:"error,omitempty"`
}

// Session is an allocated block as supplied to the workload check.
type Session struct {
	TaskID   int       `json:"task_id"`
	Title    string    `json:"title"`
	Start    time.Time `json:"start"`
	Minutes  int       `json:"minutes"`
	Priority int       `json:"priority"`
}

// DeferSuggestion proposes pushing one session's task back a day.
// It is advice only; the engine never applies it.
type DeferSuggestion struct {
	TaskID       int       `json:"task_id"`
	Title        string    `json:"title"`
	Minutes      int       `json:"minutes"`
	Priority     int       `json:"priority"`
	SuggestedFor time.Time `json:"suggested_for"`
	Reason       string    `json:"reason"`
}

// AdjustResult reports a workload overload check.
type AdjustResult struct {
	Overloaded   bool             `json:"overloaded"`
	TotalMinutes int              `json:"total_minutes"`
	Suggestion   *DeferSuggestion `json:"suggestion"`
	Error        string           `json:"error,omitempty"`
}

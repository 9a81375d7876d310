package planner

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/errgroup"
)

// TaskStore is the engine's view of persisted tasks. SetScheduledTime is a
// single-field update; MarkSlipped bumps priority and clears the stored
// scheduled time in one statement.
type TaskStore interface {
	IncompleteByUser(ctx context.Context, userID int) ([]Task, error)
	SetScheduledTime(ctx context.Context, taskID int, at time.Time) error
	MarkSlipped(ctx context.Context, taskID, priority int) error
}

type RoutineStore interface {
	ActiveOn(ctx context.Context, userID int, weekday time.Weekday) ([]Routine, error)
}

type ReflectionStore interface {
	ByID(ctx context.Context, id int) (Reflection, bool, error)
	RecentByUser(ctx context.Context, userID int, since time.Time, limit int) ([]Reflection, error)
}

type UserStore interface {
	OptimalStudyHour(ctx context.Context, userID int) (int, error)
}

// Engine is the daily planning engine. It is safe for concurrent use;
// runs for different users are fully independent.
//
// Every entry point returns a well-formed value: internal failures come
// back as a degraded result with an error string, never as a Go error.
type Engine struct {
	Tasks       TaskStore
	Routines    RoutineStore
	Reflections ReflectionStore
	Users       UserStore

	Cfg Config
	Now func() time.Time
}

func NewEngine(tasks TaskStore, routines RoutineStore, reflections ReflectionStore, users UserStore) *Engine {
	return &Engine{
		Tasks:       tasks,
		Routines:    routines,
		Reflections: reflections,
		Users:       users,
		Cfg:         Default(),
		Now:         time.Now,
	}
}

// GenerateDailyBlueprint packs the user's routines and incomplete tasks
// into the given day and persists each placed task's first session start.
// The write-back is best effort: no locking guards the read-then-write
// window, the blueprint is a scheduling aid rather than a source of truth.
func (e *Engine) GenerateDailyBlueprint(ctx context.Context, userID int, date time.Time) Blueprint {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())

	var (
		routines []Routine
		tasks    []Task
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		routines, err = e.Routines.ActiveOn(gctx, userID, day.Weekday())
		return err
	})
	g.Go(func() error {
		var err error
		tasks, err = e.Tasks.IncompleteByUser(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Printf("[WARN] blueprint fetch failed user=%d: %v", userID, err)
		bp := emptyBlueprint(day)
		bp.Degraded = true
		bp.Error = "failed to load planning data: " + err.Error()
		return bp
	}

	bp, firstStarts := buildBlueprint(day, routines, tasks, e.Now(), e.Cfg)

	for taskID, start := range firstStarts {
		if err := e.Tasks.SetScheduledTime(ctx, taskID, start); err != nil {
			log.Printf("[WARN] persist scheduled_time failed task=%d: %v", taskID, err)
		}
	}

	return bp
}

// RescheduleSlippedTasks bumps every task the reflection marked as
// uncompleted to top priority and clears its stored scheduled time, so the
// next blueprint run re-places it. Either all referenced tasks are updated
// and the count returned, or a single error is reported.
func (e *Engine) RescheduleSlippedTasks(ctx context.Context, reflectionID int) RescheduleResult {
	refl, found, err := e.Reflections.ByID(ctx, reflectionID)
	if err != nil {
		log.Printf("[WARN] reschedule: load reflection %d: %v", reflectionID, err)
		return RescheduleResult{Error: "failed to load reflection: " + err.Error()}
	}
	if !found {
		return RescheduleResult{Error: "reflection not found"}
	}
	if refl.UncompletedTasks == nil {
		return RescheduleResult{Error: "reflection has no uncompleted task list"}
	}

	updated := 0
	for _, taskID := range refl.UncompletedTasks {
		if err := e.Tasks.MarkSlipped(ctx, taskID, MaxPriority); err != nil {
			log.Printf("[WARN] reschedule: task %d: %v", taskID, err)
			return RescheduleResult{Error: "failed to reschedule tasks: " + err.Error()}
		}
		updated++
	}

	return RescheduleResult{UpdatedCount: updated}
}

// PredictFocusScore projects an hourly focus curve over the next 24 hours.
// When history is nil the last reflections within the configured window are
// loaded; with no history at all the curve is flat at the neutral baseline.
func (e *Engine) PredictFocusScore(ctx context.Context, userID int, history []Reflection) FocusPrediction {
	now := e.Now()
	neutral := int(e.Cfg.NeutralBaseline)

	if history == nil {
		since := now.AddDate(0, 0, -e.Cfg.HistoryWindowDays)
		recent, err := e.Reflections.RecentByUser(ctx, userID, since, e.Cfg.HistoryLimit)
		if err != nil {
			log.Printf("[WARN] focus: load reflections user=%d: %v", userID, err)
			return FocusPrediction{
				Baseline: e.Cfg.NeutralBaseline,
				Hours:    []FocusHour{},
				Degraded: true,
				Error:    "failed to load reflection history: " + err.Error(),
			}
		}
		history = recent
	}

	if len(history) == 0 {
		return FocusPrediction{
			Baseline: e.Cfg.NeutralBaseline,
			Hours:    flatFocusCurve(neutral, now),
		}
	}

	// RecentByUser returns newest first; weighting wants oldest first.
	oldestFirst := make([]Reflection, len(history))
	for i, r := range history {
		oldestFirst[len(history)-1-i] = r
	}
	baseline := focusBaseline(oldestFirst)

	optimalHour := e.Cfg.DefaultOptimalHour
	if hour, err := e.Users.OptimalStudyHour(ctx, userID); err == nil {
		optimalHour = hour
	} else {
		log.Printf("[WARN] focus: optimal hour user=%d: %v", userID, err)
	}

	return FocusPrediction{
		Baseline: baseline,
		Hours:    buildFocusCurve(baseline, optimalHour, now),
	}
}

// DynamicAdjuster checks the supplied sessions against the weekly overload
// threshold and, when exceeded, suggests deferring a single low-stakes
// session by one day. The suggestion is never applied automatically.
func (e *Engine) DynamicAdjuster(ctx context.Context, userID int, sessions []Session) AdjustResult {
	total := 0
	for _, s := range sessions {
		total += s.Minutes
	}

	if total <= e.Cfg.WeeklyOverloadMinutes {
		return AdjustResult{TotalMinutes: total}
	}

	candidate := pickDeferCandidate(sessions)
	if candidate == nil {
		return AdjustResult{Overloaded: true, TotalMinutes: total}
	}

	return AdjustResult{
		Overloaded:   true,
		TotalMinutes: total,
		Suggestion: &DeferSuggestion{
			TaskID:       candidate.TaskID,
			Title:        candidate.Title,
			Minutes:      candidate.Minutes,
			Priority:     candidate.Priority,
			SuggestedFor: candidate.Start.AddDate(0, 0, 1),
			Reason:       "weekly planned workload exceeds the overload threshold",
		},
	}
}

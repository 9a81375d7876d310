package planner

import (
	"sort"
	"time"
)

// isLate reports whether a previously assigned session start has already
// passed. This deliberately looks at the stored scheduled time rather than
// the due date: a task whose earlier slot was missed gets pulled forward.
func isLate(t Task, now time.Time) bool {
	return t.ScheduledTime != nil && t.ScheduledTime.Before(now)
}

// sortForScheduling orders tasks by priority descending, then late tasks
// first, then due date ascending with no-due-date last.
func sortForScheduling(tasks []Task, now time.Time) []Task {
	sorted := make([]Task, len(tasks))
	copy(sorted, tasks)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		la, lb := isLate(a, now), isLate(b, now)
		if la != lb {
			return la
		}
		if a.DueDate == nil {
			return false
		}
		if b.DueDate == nil {
			return true
		}
		return a.DueDate.Before(*b.DueDate)
	})

	return sorted
}

type packing struct {
	Sessions    []ScheduledSession
	Unscheduled []UnscheduledTask
	FreeSlots   []Interval
	FirstStart  map[int]time.Time
}

// packTasks greedily places each task's required minutes into the free
// slots. Tasks must already be sorted. A working copy of the slots shrinks
// in place; slots that fall below the minimum session length drop out.
func packTasks(tasks []Task, free []Interval, cfg Config) packing {
	slots := make([]Interval, len(free))
	copy(slots, free)

	out := packing{
		Sessions:    []ScheduledSession{},
		Unscheduled: []UnscheduledTask{},
		FirstStart:  map[int]time.Time{},
	}

	for _, t := range tasks {
		required := t.EstimatedDuration
		if required < cfg.MinSessionMinutes {
			required = cfg.MinSessionMinutes
		}

		placed := false
		i := 0
		for required > 0 && i < len(slots) {
			slotMin := slots[i].Minutes()
			if slotMin < cfg.MinSessionMinutes {
				i++
				continue
			}

			chunk := cfg.MaxChunkMinutes
			if slotMin < chunk {
				chunk = slotMin
			}
			if required < chunk {
				chunk = required
			}

			start := slots[i].Start
			end := start.Add(time.Duration(chunk) * time.Minute)

			out.Sessions = append(out.Sessions, ScheduledSession{
				TaskID:  t.ID,
				Title:   t.Title,
				Start:   start,
				End:     end,
				Minutes: chunk,
			})
			if !placed {
				out.FirstStart[t.ID] = start
				placed = true
			}

			required -= chunk
			slots[i].Start = end
			if slots[i].Minutes() < cfg.MinSessionMinutes {
				slots = append(slots[:i], slots[i+1:]...)
			}
			// index stays put: either the next slot shifted in, or the
			// current slot still has room for another chunk
		}

		if !placed {
			out.Unscheduled = append(out.Unscheduled, UnscheduledTask{
				TaskID:           t.ID,
				Title:            t.Title,
				EstimatedMinutes: t.EstimatedDuration,
			})
		}
	}

	out.FreeSlots = slots
	return out
}

// buildBlueprint is the pure scheduling core: no I/O, clock passed in.
// It returns the blueprint and the first session start per placed task,
// which the engine persists.
func buildBlueprint(date time.Time, routines []Routine, tasks []Task, now time.Time, cfg Config) (Blueprint, map[int]time.Time) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	window := Interval{
		Start: day.Add(time.Duration(cfg.DayStartHour) * time.Hour),
		End:   day.Add(time.Duration(cfg.DayEndHour) * time.Hour),
	}

	bp := emptyBlueprint(day)

	// Zero-length sentinels at the window edges keep the merge and the
	// free-slot walk free of boundary special cases.
	occupied := []Interval{
		{Start: window.Start, End: window.Start},
		{Start: window.End, End: window.End},
	}

	for _, r := range routines {
		if !r.OccursOn(day.Weekday()) {
			continue
		}
		iv, err := r.OccurrenceOn(day)
		if err != nil {
			continue
		}
		bp.Routines = append(bp.Routines, RoutineBlock{
			RoutineID: r.ID,
			Name:      r.Name,
			Type:      r.Type,
			Start:     iv.Start,
			End:       iv.End,
		})
		occupied = append(occupied, iv)
	}

	free := FreeSlots(MergeIntervals(occupied), window)

	pending := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if !t.IsCompleted {
			pending = append(pending, t)
		}
	}

	packed := packTasks(sortForScheduling(pending, now), free, cfg)
	bp.ScheduledTasks = packed.Sessions
	bp.UnscheduledTasks = packed.Unscheduled
	bp.FreeSlots = packed.FreeSlots

	return bp, packed.FirstStart
}

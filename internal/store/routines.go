package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"studysync-backend/internal/planner"
)

// RoutineStore implements planner.RoutineStore over Postgres.
type RoutineStore struct {
	DB *sql.DB
}

func (s *RoutineStore) ActiveOn(ctx context.Context, userID int, weekday time.Weekday) ([]planner.Routine, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, user_id, name, type, days_of_week, start_time, duration, is_fixed
		FROM routines
		WHERE user_id = $1 AND $2 = ANY(days_of_week)
		ORDER BY start_time
	`, userID, int(weekday))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var routines []planner.Routine
	for rows.Next() {
		var (
			r    planner.Routine
			days []int64
		)
		if err := rows.Scan(
			&r.ID,
			&r.UserID,
			&r.Name,
			&r.Type,
			pq.Array(&days),
			&r.StartTime,
			&r.Duration,
			&r.IsFixed,
		); err != nil {
			return nil, err
		}
		r.DaysOfWeek = toInts(days)
		routines = append(routines, r)
	}

	return routines, rows.Err()
}

// toInts converts a scanned integer[] column, preserving nil so callers
// can tell a missing array from an empty one.
func toInts(in []int64) []int {
	if in == nil {
		return nil
	}
	out := make([]int, len(in))
	for i, v := range in {
		out[i] = int(v)
	}
	return out
}

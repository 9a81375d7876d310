package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"studysync-backend/internal/planner"
)

// ReflectionStore implements planner.ReflectionStore over Postgres.
type ReflectionStore struct {
	DB *sql.DB
}

const reflectionColumns = `
	id, user_id, date, energy_rating, focus_rating,
	completed_tasks, uncompleted_tasks, tasks_completed_count,
	total_hours_planned, total_hours_spent, COALESCE(ai_summary,'')
`

func scanReflection(row interface{ Scan(...any) error }) (planner.Reflection, error) {
	var (
		r           planner.Reflection
		completed   []int64
		uncompleted []int64
	)
	err := row.Scan(
		&r.ID,
		&r.UserID,
		&r.Date,
		&r.EnergyRating,
		&r.FocusRating,
		pq.Array(&completed),
		pq.Array(&uncompleted),
		&r.TasksCompletedCount,
		&r.TotalHoursPlanned,
		&r.TotalHoursSpent,
		&r.AISummary,
	)
	if err != nil {
		return planner.Reflection{}, err
	}
	r.CompletedTasks = toInts(completed)
	r.UncompletedTasks = toInts(uncompleted)
	return r, nil
}

func (s *ReflectionStore) ByID(ctx context.Context, id int) (planner.Reflection, bool, error) {
	row := s.DB.QueryRowContext(ctx, `
		SELECT `+reflectionColumns+`
		FROM reflections
		WHERE id = $1
	`, id)

	r, err := scanReflection(row)
	if err == sql.ErrNoRows {
		return planner.Reflection{}, false, nil
	}
	if err != nil {
		return planner.Reflection{}, false, err
	}
	return r, true, nil
}

func (s *ReflectionStore) RecentByUser(ctx context.Context, userID int, since time.Time, limit int) ([]planner.Reflection, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+reflectionColumns+`
		FROM reflections
		WHERE user_id = $1 AND date >= $2
		ORDER BY date DESC
		LIMIT $3
	`, userID, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reflections []planner.Reflection
	for rows.Next() {
		r, err := scanReflection(rows)
		if err != nil {
			return nil, err
		}
		reflections = append(reflections, r)
	}

	return reflections, rows.Err()
}

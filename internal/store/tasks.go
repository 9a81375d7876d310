package store

import (
	"context"
	"database/sql"
	"time"

	"studysync-backend/internal/planner"
)

// TaskStore implements planner.TaskStore over Postgres.
type TaskStore struct {
	DB *sql.DB
}

func (s *TaskStore) IncompleteByUser(ctx context.Context, userID int) ([]planner.Task, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, user_id, title, COALESCE(subject,''),
		       due_date, estimated_duration, priority, is_completed, scheduled_time
		FROM tasks
		WHERE user_id = $1 AND is_completed = FALSE
		ORDER BY id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []planner.Task
	for rows.Next() {
		var (
			t         planner.Task
			due       sql.NullTime
			scheduled sql.NullTime
		)
		if err := rows.Scan(
			&t.ID,
			&t.UserID,
			&t.Title,
			&t.Subject,
			&due,
			&t.EstimatedDuration,
			&t.Priority,
			&t.IsCompleted,
			&scheduled,
		); err != nil {
			return nil, err
		}
		if due.Valid {
			d := due.Time
			t.DueDate = &d
		}
		if scheduled.Valid {
			st := scheduled.Time
			t.ScheduledTime = &st
		}
		tasks = append(tasks, t)
	}

	return tasks, rows.Err()
}

func (s *TaskStore) SetScheduledTime(ctx context.Context, taskID int, at time.Time) error {
	_, err := s.DB.ExecContext(ctx, `
		UPDATE tasks SET scheduled_time = $1 WHERE id = $2
	`, at, taskID)
	return err
}

func (s *TaskStore) MarkSlipped(ctx context.Context, taskID, priority int) error {
	_, err := s.DB.ExecContext(ctx, `
		UPDATE tasks SET priority = $1, scheduled_time = NULL WHERE id = $2
	`, priority, taskID)
	return err
}

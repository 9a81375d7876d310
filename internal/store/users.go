package store

import (
	"context"
	"database/sql"
)

// UserStore implements planner.UserStore over Postgres.
type UserStore struct {
	DB *sql.DB
}

func (s *UserStore) OptimalStudyHour(ctx context.Context, userID int) (int, error) {
	var hour int
	err := s.DB.QueryRowContext(ctx, `
		SELECT COALESCE(optimal_study_hour, 14) FROM users WHERE id = $1
	`, userID).Scan(&hour)
	if err != nil {
		return 0, err
	}
	return hour, nil
}

package tasks

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"studysync-backend/internal/analytics"
	"studysync-backend/internal/auth"
	"studysync-backend/internal/cache"
	"studysync-backend/internal/planner"
)

func scanTask(rows *sql.Rows) (planner.Task, error) {
	var (
		t         planner.Task
		due       sql.NullTime
		scheduled sql.NullTime
	)
	err := rows.Scan(
		&t.ID, &t.UserID, &t.Title, &t.Subject,
		&due, &t.EstimatedDuration, &t.Priority, &t.IsCompleted, &scheduled,
	)
	if err != nil {
		return planner.Task{}, err
	}
	if due.Valid {
		d := due.Time
		t.DueDate = &d
	}
	if scheduled.Valid {
		s := scheduled.Time
		t.ScheduledTime = &s
	}
	return t, nil
}

func ListTasksHandler(dbx *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		rows, err := dbx.Query(`
			SELECT id, user_id, title, COALESCE(subject,''),
			       due_date, estimated_duration, priority, is_completed, scheduled_time
			FROM tasks
			WHERE user_id = $1
			ORDER BY id DESC
		`, uid)
		if err != nil {
			http.Error(w, "db error: "+err.Error(), 500)
			return
		}
		defer rows.Close()

		result := []planner.Task{}
		for rows.Next() {
			t, err := scanTask(rows)
			if err != nil {
				http.Error(w, "scan error: "+err.Error(), 500)
				return
			}
			result = append(result, t)
		}
		if err := rows.Err(); err != nil {
			http.Error(w, "db rows error", 500)
			return
		}

		sort.Slice(result, func(i, j int) bool {
			if result[i].Priority != result[j].Priority {
				return result[i].Priority > result[j].Priority
			}
			di, dj := result[i].DueDate, result[j].DueDate
			if di != nil && dj != nil && !di.Equal(*dj) {
				return di.Before(*dj)
			}
			if (di != nil) != (dj != nil) {
				return di != nil
			}
			return result[i].ID < result[j].ID
		})

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(result)
	}
}

func CreateTaskHandler(dbx *sql.DB, c *cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var body struct {
			Title             string     `json:"title"`
			Subject           string     `json:"subject"`
			DueDate           *time.Time `json:"due_date"`
			EstimatedDuration int        `json:"estimated_duration"`
			Priority          int        `json:"priority"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		title := strings.TrimSpace(body.Title)
		if title == "" {
			http.Error(w, "title is required", http.StatusBadRequest)
			return
		}

		priority := planner.ClampPriority(body.Priority)
		duration := planner.ClampDuration(body.EstimatedDuration)

		var id int
		err := dbx.QueryRow(`
			INSERT INTO tasks (user_id, title, subject, due_date, estimated_duration, priority)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`, uid, title, strings.TrimSpace(body.Subject), body.DueDate, duration, priority).Scan(&id)
		if err != nil {
			http.Error(w, "db error: "+err.Error(), 500)
			return
		}

		planner.InvalidateUser(c, r, uid)

		env := analytics.FromRequest(r)
		env.UserID = uid
		props := map[string]any{
			"task_id":      id,
			"priority":     priority,
			"duration_min": duration,
			"has_due_date": body.DueDate != nil,
		}
		_ = analytics.Log(r.Context(), dbx, env, analytics.EventTaskCreated, props, analytics.SourceEventKeyFromRequest(r))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":                 id,
			"title":              title,
			"subject":            strings.TrimSpace(body.Subject),
			"due_date":           body.DueDate,
			"estimated_duration": duration,
			"priority":           priority,
			"is_completed":       false,
		})
	}
}

func UpdateTaskHandler(dbx *sql.DB, c *cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		taskID, err := strconv.Atoi(mux.Vars(r)["id"])
		if err != nil {
			http.Error(w, "invalid task id", http.StatusBadRequest)
			return
		}

		var body struct {
			Title             *string    `json:"title"`
			Subject           *string    `json:"subject"`
			DueDate           *time.Time `json:"due_date"`
			EstimatedDuration *int       `json:"estimated_duration"`
			Priority          *int       `json:"priority"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		if body.Priority != nil {
			p := planner.ClampPriority(*body.Priority)
			body.Priority = &p
		}
		if body.EstimatedDuration != nil {
			d := planner.ClampDuration(*body.EstimatedDuration)
			body.EstimatedDuration = &d
		}

		res, err := dbx.Exec(`
			UPDATE tasks SET
				title              = COALESCE($1, title),
				subject            = COALESCE($2, subject),
				due_date           = COALESCE($3, due_date),
				estimated_duration = COALESCE($4, estimated_duration),
				priority           = COALESCE($5, priority)
			WHERE id = $6 AND user_id = $7
		`, body.Title, body.Subject, body.DueDate, body.EstimatedDuration, body.Priority, taskID, uid)
		if err != nil {
			http.Error(w, "db error: "+err.Error(), 500)
			return
		}
		affected, _ := res.RowsAffected()
		if affected == 0 {
			http.Error(w, "task not found", http.StatusNotFound)
			return
		}

		planner.InvalidateUser(c, r, uid)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}
}

func SetTaskStatusHandler(dbx *sql.DB, c *cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		taskID, err := strconv.Atoi(mux.Vars(r)["id"])
		if err != nil {
			http.Error(w, "invalid task id", http.StatusBadRequest)
			return
		}

		var body struct {
			IsCompleted bool `json:"is_completed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var wasCompleted bool
		_ = dbx.QueryRow(`
			SELECT is_completed FROM tasks WHERE id=$1 AND user_id=$2
		`, taskID, uid).Scan(&wasCompleted)

		res, err := dbx.Exec(`
			UPDATE tasks SET is_completed = $1 WHERE id = $2 AND user_id = $3
		`, body.IsCompleted, taskID, uid)
		if err != nil {
			http.Error(w, "db error: "+err.Error(), 500)
			return
		}
		affected, _ := res.RowsAffected()
		if affected == 0 {
			http.Error(w, "task not found", http.StatusNotFound)
			return
		}

		planner.InvalidateUser(c, r, uid)

		if !wasCompleted && body.IsCompleted {
			env := analytics.FromRequest(r)
			env.UserID = uid
			props := map[string]any{"task_id": taskID}
			_ = analytics.Log(r.Context(), dbx, env, analytics.EventTaskCompleted, props, analytics.SourceEventKeyFromRequest(r))
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":           taskID,
			"is_completed": body.IsCompleted,
		})
	}
}

package routines

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/lib/pq"

	"studysync-backend/internal/auth"
	"studysync-backend/internal/cache"
	"studysync-backend/internal/planner"
)

type createRequest struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	DaysOfWeek []int  `json:"days_of_week"`
	StartTime  string `json:"start_time"`
	Duration   int    `json:"duration"`
	IsFixed    *bool  `json:"is_fixed"`
}

func ListRoutinesHandler(dbx *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		rows, err := dbx.Query(`
			SELECT id, user_id, name, type, days_of_week, start_time, duration, is_fixed
			FROM routines
			WHERE user_id = $1
			ORDER BY start_time, id
		`, uid)
		if err != nil {
			http.Error(w, "db error: "+err.Error(), 500)
			return
		}
		defer rows.Close()

		result := []planner.Routine{}
		for rows.Next() {
			var (
				rt   planner.Routine
				days []int64
			)
			if err := rows.Scan(&rt.ID, &rt.UserID, &rt.Name, &rt.Type, pq.Array(&days), &rt.StartTime, &rt.Duration, &rt.IsFixed); err != nil {
				http.Error(w, "scan error: "+err.Error(), 500)
				return
			}
			rt.DaysOfWeek = make([]int, len(days))
			for i, d := range days {
				rt.DaysOfWeek[i] = int(d)
			}
			result = append(result, rt)
		}
		if err := rows.Err(); err != nil {
			http.Error(w, "db rows error", 500)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(result)
	}
}

func CreateRoutineHandler(dbx *sql.DB, c *cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var body createRequest
		_ = json.NewDecoder(r.Body).Decode(&body)

		if msg := validate(body); msg != "" {
			http.Error(w, msg, http.StatusBadRequest)
			return
		}

		isFixed := true
		if body.IsFixed != nil {
			isFixed = *body.IsFixed
		}

		days := make([]int64, len(body.DaysOfWeek))
		for i, d := range body.DaysOfWeek {
			days[i] = int64(d)
		}

		var id int
		err := dbx.QueryRow(`
			INSERT INTO routines (user_id, name, type, days_of_week, start_time, duration, is_fixed)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id
		`, uid, strings.TrimSpace(body.Name), body.Type, pq.Array(days), body.StartTime, body.Duration, isFixed).Scan(&id)
		if err != nil {
			http.Error(w, "db error: "+err.Error(), 500)
			return
		}

		planner.InvalidateUser(c, r, uid)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":           id,
			"name":         strings.TrimSpace(body.Name),
			"type":         body.Type,
			"days_of_week": body.DaysOfWeek,
			"start_time":   body.StartTime,
			"duration":     body.Duration,
			"is_fixed":     isFixed,
		})
	}
}

func DeleteRoutineHandler(dbx *sql.DB, c *cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		id, err := strconv.Atoi(mux.Vars(r)["id"])
		if err != nil {
			http.Error(w, "invalid routine id", http.StatusBadRequest)
			return
		}

		res, err := dbx.Exec(`DELETE FROM routines WHERE id = $1 AND user_id = $2`, id, uid)
		if err != nil {
			http.Error(w, "db error: "+err.Error(), 500)
			return
		}
		affected, _ := res.RowsAffected()
		if affected == 0 {
			http.Error(w, "routine not found", http.StatusNotFound)
			return
		}

		planner.InvalidateUser(c, r, uid)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}
}

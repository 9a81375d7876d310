package reflections

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/lib/pq"

	"studysync-backend/internal/ai"
	"studysync-backend/internal/analytics"
	"studysync-backend/internal/auth"
)

// CreateReflectionHandler serves POST /reflections. One reflection per user
// per day; resubmitting the same day overwrites. The AI summary is best
// effort and never blocks the check-in.
func CreateReflectionHandler(dbx *sql.DB, aiClient *ai.GeminiClient) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var body struct {
			Date              *time.Time `json:"date"`
			EnergyRating      int        `json:"energy_rating"`
			FocusRating       int        `json:"focus_rating"`
			CompletedTasks    []int      `json:"completed_tasks"`
			UncompletedTasks  []int      `json:"uncompleted_tasks"`
			TotalHoursPlanned float64    `json:"total_hours_planned"`
			TotalHoursSpent   float64    `json:"total_hours_spent"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		if body.EnergyRating < 1 || body.EnergyRating > 10 {
			http.Error(w, "energy_rating must be 1..10", http.StatusBadRequest)
			return
		}
		if body.FocusRating < 1 || body.FocusRating > 10 {
			http.Error(w, "focus_rating must be 1..10", http.StatusBadRequest)
			return
		}

		when := time.Now()
		if body.Date != nil {
			when = *body.Date
		}
		day := time.Date(when.Year(), when.Month(), when.Day(), 0, 0, 0, 0, when.Location())

		if body.CompletedTasks == nil {
			body.CompletedTasks = []int{}
		}
		if body.UncompletedTasks == nil {
			body.UncompletedTasks = []int{}
		}

		summary := ""
		if aiClient != nil {
			prompt := ai.BuildReflectionPrompt(
				body.EnergyRating,
				body.FocusRating,
				len(body.CompletedTasks),
				len(body.UncompletedTasks),
				body.TotalHoursPlanned,
				body.TotalHoursSpent,
			)
			text, err := aiClient.Summarize(r.Context(), prompt)
			if err != nil {
				log.Printf("[WARN] AI summary failed user=%d: %v", uid, err)
				w.Header().Set("X-AI-Error", "1")
			} else {
				summary = text
			}
		}

		var id int
		err := dbx.QueryRow(`
			INSERT INTO reflections (
				user_id, date, energy_rating, focus_rating,
				completed_tasks, uncompleted_tasks, tasks_completed_count,
				total_hours_planned, total_hours_spent, ai_summary
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (user_id, date) DO UPDATE SET
				energy_rating         = EXCLUDED.energy_rating,
				focus_rating          = EXCLUDED.focus_rating,
				completed_tasks       = EXCLUDED.completed_tasks,
				uncompleted_tasks     = EXCLUDED.uncompleted_tasks,
				tasks_completed_count = EXCLUDED.tasks_completed_count,
				total_hours_planned   = EXCLUDED.total_hours_planned,
				total_hours_spent     = EXCLUDED.total_hours_spent,
				ai_summary            = EXCLUDED.ai_summary
			RETURNING id
		`,
			uid, day, body.EnergyRating, body.FocusRating,
			pq.Array(toInt64s(body.CompletedTasks)),
			pq.Array(toInt64s(body.UncompletedTasks)),
			len(body.CompletedTasks),
			body.TotalHoursPlanned, body.TotalHoursSpent,
			sql.NullString{String: summary, Valid: summary != ""},
		).Scan(&id)
		if err != nil {
			http.Error(w, "db error: "+err.Error(), 500)
			return
		}

		env := analytics.FromRequest(r)
		env.UserID = uid
		props := map[string]any{
			"reflection_id":     id,
			"energy_rating":     body.EnergyRating,
			"focus_rating":      body.FocusRating,
			"completed_count":   len(body.CompletedTasks),
			"uncompleted_count": len(body.UncompletedTasks),
			"has_ai_summary":    summary != "",
		}
		_ = analytics.Log(r.Context(), dbx, env, analytics.EventReflectionSubmitted, props, analytics.SourceEventKeyFromRequest(r))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":         id,
			"date":       day.Format("2006-01-02"),
			"ai_summary": summary,
		})
	}
}

// LatestReflectionHandler serves GET /reflections/latest.
func LatestReflectionHandler(dbx *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		row := dbx.QueryRow(`
			SELECT id, date, energy_rating, focus_rating,
			       completed_tasks, uncompleted_tasks, tasks_completed_count,
			       total_hours_planned, total_hours_spent, COALESCE(ai_summary,'')
			FROM reflections
			WHERE user_id = $1
			ORDER BY date DESC
			LIMIT 1
		`, uid)

		var (
			id                  int
			date                time.Time
			energy, focus       int
			completed           []int64
			uncompleted         []int64
			tasksCompletedCount int
			planned, spent      float64
			summary             string
		)
		err := row.Scan(&id, &date, &energy, &focus,
			pq.Array(&completed), pq.Array(&uncompleted), &tasksCompletedCount,
			&planned, &spent, &summary)
		if err != nil {
			http.Error(w, "no reflection found", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":                    id,
			"date":                  date.Format("2006-01-02"),
			"energy_rating":         energy,
			"focus_rating":          focus,
			"completed_tasks":       completed,
			"uncompleted_tasks":     uncompleted,
			"tasks_completed_count": tasksCompletedCount,
			"total_hours_planned":   planned,
			"total_hours_spent":     spent,
			"ai_summary":            summary,
		})
	}
}

func toInt64s(in []int) []int64 {
	out := make([]int64, len(in))
	for i, v := range in {
		out[i] = int64(v)
	}
	return out
}

package planner

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"studysync-backend/internal/analytics"
	"studysync-backend/internal/auth"
	"studysync-backend/internal/cache"
)

const (
	blueprintCacheTTL = 5 * time.Minute
	focusCacheTTL     = time.Hour
)

func blueprintCacheKey(userID int, day time.Time) string {
	return fmt.Sprintf("planner:blueprint:%d:%s", userID, day.Format("2006-01-02"))
}

func focusCacheKey(userID int) string {
	return fmt.Sprintf("planner:focus:%d", userID)
}

// InvalidateUser drops the cached blueprint for today and the cached focus
// curve after a task or routine mutation.
func InvalidateUser(c *cache.Cache, r *http.Request, userID int) {
	today := time.Now()
	c.Del(r.Context(),
		blueprintCacheKey(userID, today),
		focusCacheKey(userID),
	)
}

// BlueprintHandler serves GET /planner/blueprint?date=YYYY-MM-DD.
func BlueprintHandler(engine *Engine, c *cache.Cache, dbx *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		day := time.Now()
		if raw := r.URL.Query().Get("date"); raw != "" {
			parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
			if err != nil {
				http.Error(w, "invalid date, want YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			day = parsed
		}

		key := blueprintCacheKey(uid, day)

		var cached Blueprint
		if hit, _ := c.GetJSON(r.Context(), key, &cached); hit {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(cached)
			return
		}

		bp := engine.GenerateDailyBlueprint(r.Context(), uid, day)
		if !bp.Degraded {
			_ = c.SetJSON(r.Context(), key, bp, blueprintCacheTTL)
		}

		env := analytics.FromRequest(r)
		env.UserID = uid
		props := map[string]any{
			"date":              bp.Date.Format("2006-01-02"),
			"scheduled_count":   len(bp.ScheduledTasks),
			"unscheduled_count": len(bp.UnscheduledTasks),
			"routine_count":     len(bp.Routines),
			"degraded":          bp.Degraded,
		}
		_ = analytics.Log(r.Context(), dbx, env, analytics.EventBlueprintGenerated, props, analytics.SourceEventKeyFromRequest(r))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(bp)
	}
}

// RescheduleHandler serves POST /planner/reschedule.
func RescheduleHandler(engine *Engine, c *cache.Cache, dbx *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var body struct {
			ReflectionID int `json:"reflection_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if body.ReflectionID == 0 {
			http.Error(w, "reflection_id required", http.StatusBadRequest)
			return
		}

		res := engine.RescheduleSlippedTasks(r.Context(), body.ReflectionID)
		if res.Error == "" {
			InvalidateUser(c, r, uid)

			env := analytics.FromRequest(r)
			env.UserID = uid
			props := map[string]any{
				"reflection_id": body.ReflectionID,
				"updated_count": res.UpdatedCount,
			}
			_ = analytics.Log(r.Context(), dbx, env, analytics.EventTasksRescheduled, props, analytics.SourceEventKeyFromRequest(r))
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(res)
	}
}

// FocusHandler serves GET /planner/focus.
func FocusHandler(engine *Engine, c *cache.Cache, dbx *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		key := focusCacheKey(uid)

		var cached FocusPrediction
		if hit, _ := c.GetJSON(r.Context(), key, &cached); hit {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(cached)
			return
		}

		pred := engine.PredictFocusScore(r.Context(), uid, nil)
		if !pred.Degraded {
			_ = c.SetJSON(r.Context(), key, pred, focusCacheTTL)
		}

		env := analytics.FromRequest(r)
		env.UserID = uid
		props := map[string]any{
			"baseline": pred.Baseline,
			"degraded": pred.Degraded,
		}
		_ = analytics.Log(r.Context(), dbx, env, analytics.EventFocusPredicted, props, analytics.SourceEventKeyFromRequest(r))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(pred)
	}
}

// AdjustHandler serves POST /planner/adjust.
func AdjustHandler(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var body struct {
			Sessions []Session `json:"sessions"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		res := engine.DynamicAdjuster(r.Context(), uid, body.Sessions)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(res)
	}
}

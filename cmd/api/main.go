package main

import (
	"context"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"studysync-backend/internal/ai"
	"studysync-backend/internal/auth"
	"studysync-backend/internal/cache"
	"studysync-backend/internal/config"
	"studysync-backend/internal/db"
	"studysync-backend/internal/planner"
	"studysync-backend/internal/reflections"
	"studysync-backend/internal/routines"
	"studysync-backend/internal/store"
	"studysync-backend/internal/tasks"
)

func main() {
	cfg := config.Load()

	database, err := db.Connect(cfg.ConnString())
	if err != nil {
		log.Fatal("failed to connect DB: ", err)
	}
	defer database.Close()

	log.Println("connected to PostgreSQL")

	// Redis is optional: without it the planner just recomputes.
	var redisCache *cache.Cache
	if cfg.RedisAddr != "" {
		redisCache, err = cache.New(context.Background(), cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Printf("[WARN] redis unavailable, caching disabled: %v", err)
			redisCache = nil
		} else {
			log.Println("connected to Redis")
		}
	}

	var aiClient *ai.GeminiClient
	if cfg.GeminiKey != "" {
		aiClient = ai.New(cfg.GeminiKey, cfg.GeminiModel)
	}

	engine := planner.NewEngine(
		&store.TaskStore{DB: database},
		&store.RoutineStore{DB: database},
		&store.ReflectionStore{DB: database},
		&store.UserStore{DB: database},
	)

	mw := auth.New(cfg.JWTSecret)

	r := mux.NewRouter()
	r.Use(requestID)

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("OK"))
	}).Methods(http.MethodGet)

	// ----- AUTH -----
	r.HandleFunc("/auth/register", auth.RegisterHandler(database, cfg.JWTSecret)).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", auth.LoginHandler(database, cfg.JWTSecret)).Methods(http.MethodPost)
	r.HandleFunc("/auth/me", mw.Wrap(auth.MeHandler(database))).Methods(http.MethodGet)
	r.HandleFunc("/auth/logout", mw.Wrap(auth.LogoutHandler())).Methods(http.MethodPost)
	r.HandleFunc("/auth/account", mw.Wrap(auth.DeleteAccountHandler(database))).Methods(http.MethodDelete)

	// ----- TASKS -----
	r.HandleFunc("/tasks", mw.Wrap(tasks.ListTasksHandler(database))).Methods(http.MethodGet)
	r.HandleFunc("/tasks", mw.Wrap(tasks.CreateTaskHandler(database, redisCache))).Methods(http.MethodPost)
	r.HandleFunc("/tasks/{id:[0-9]+}", mw.Wrap(tasks.UpdateTaskHandler(database, redisCache))).Methods(http.MethodPatch)
	r.HandleFunc("/tasks/{id:[0-9]+}/status", mw.Wrap(tasks.SetTaskStatusHandler(database, redisCache))).Methods(http.MethodPost)

	// ----- ROUTINES -----
	r.HandleFunc("/routines", mw.Wrap(routines.ListRoutinesHandler(database))).Methods(http.MethodGet)
	r.HandleFunc("/routines", mw.Wrap(routines.CreateRoutineHandler(database, redisCache))).Methods(http.MethodPost)
	r.HandleFunc("/routines/{id:[0-9]+}", mw.Wrap(routines.DeleteRoutineHandler(database, redisCache))).Methods(http.MethodDelete)

	// ----- REFLECTIONS -----
	r.HandleFunc("/reflections", mw.Wrap(reflections.CreateReflectionHandler(database, aiClient))).Methods(http.MethodPost)
	r.HandleFunc("/reflections/latest", mw.Wrap(reflections.LatestReflectionHandler(database))).Methods(http.MethodGet)

	// ----- PLANNER -----
	r.HandleFunc("/planner/blueprint", mw.Wrap(planner.BlueprintHandler(engine, redisCache, database))).Methods(http.MethodGet)
	r.HandleFunc("/planner/reschedule", mw.Wrap(planner.RescheduleHandler(engine, redisCache, database))).Methods(http.MethodPost)
	r.HandleFunc("/planner/focus", mw.Wrap(planner.FocusHandler(engine, redisCache, database))).Methods(http.MethodGet)
	r.HandleFunc("/planner/adjust", mw.Wrap(planner.AdjustHandler(engine))).Methods(http.MethodPost)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Platform", "X-App-Version", "X-Session-Id", "Idempotency-Key"},
		AllowCredentials: true,
	})

	handler := c.Handler(r)

	log.Println("API server is running on :" + cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, handler))
}

// requestID tags every request so log lines and responses correlate.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
			r.Header.Set("X-Request-Id", id)
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r)
	})
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stepRivalsAPI/handlers"
	"stepRivalsAPI/internal/clock"
	"stepRivalsAPI/internal/repository/postgres"
	"stepRivalsAPI/middleware"
	"stepRivalsAPI/services"
)

var (
	dbPool              *pgxpool.Pool
	userService         *services.UserService
	stepService         *services.StepService
	challengeService    *services.ChallengeService
	leaderboardService  *services.LeaderboardService
	notificationService *services.NotificationService
	cronService         *services.CronService
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		log.Fatal("Failed to parse database URL:", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	dbPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatal("Failed to create connection pool:", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	log.Println("Successfully connected to Postgres")

	store := postgres.NewStore(dbPool)
	clk := clock.Real{}

	streakService := services.NewStreakService(store.Goals(), store.Steps(), store.Badges(), store.Notifications(), clk)
	stepService = services.NewStepService(store.Steps(), store.Users(), streakService, clk)
	challengeService = services.NewChallengeService(
		store.Challenges(),
		store.Participants(),
		store.Steps(),
		store.DailyPoints(),
		store.Badges(),
		store.Notifications(),
		store.Leaderboard(),
		clk,
	)
	leaderboardService = services.NewLeaderboardService(
		store.Challenges(),
		store.Participants(),
		store.Steps(),
		store.DailyPoints(),
		store.Leaderboard(),
		clk,
	)
	notificationService = services.NewNotificationService(store.Notifications())
	userService = services.NewUserService(
		store.Users(),
		store.Sessions(),
		store.Goals(),
		store.Steps(),
		store.Badges(),
		store.Challenges(),
		clk,
		[]byte(jwtSecret),
	)
	cronService = services.NewCronService(challengeService, clk)

	middleware.InitPrometheus()
}

func main() {
	defer func() {
		log.Println("Closing database connection pool...")
		dbPool.Close()
	}()

	userHandler := handlers.NewUserHandler(userService)
	stepHandler := handlers.NewStepHandler(stepService)
	challengeHandler := handlers.NewChallengeHandler(challengeService, leaderboardService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	cronHandler := handlers.NewCronHandler(cronService)

	cronInterval := 15 * time.Minute
	if raw := os.Getenv("CRON_INTERVAL"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			log.Fatal("Invalid CRON_INTERVAL:", err)
		}
		cronInterval = parsed
	}

	scheduler, err := cronService.StartScheduler(cronInterval)
	if err != nil {
		log.Fatal("Failed to start challenge scheduler:", err)
	}
	defer func() {
		if err := scheduler.Shutdown(); err != nil {
			log.Printf("Scheduler shutdown error: %v", err)
		}
	}()

	r := mux.NewRouter()

	go middleware.CleanupVisitors()

	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := dbPool.Ping(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "stepRivals-api"}`))
	}).Methods("GET")

	// -------------------------------------------------------------------------
	// API V1 SUBROUTER
	// -------------------------------------------------------------------------
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/auth/register", userHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", userHandler.Login).Methods("POST")

	api.HandleFunc("/cron/run", cronHandler.RunPass).Methods("POST")

	// -------------------------------------------------------------------------
	// PROTECTED ROUTES (REQUIRE AUTH HEADER)
	// -------------------------------------------------------------------------
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware(userService))

	protected.HandleFunc("/auth/logout", userHandler.Logout).Methods("POST")

	protected.HandleFunc("/user", userHandler.GetProfile).Methods("GET")
	protected.HandleFunc("/user/update-profile", userHandler.UpdateProfile).Methods("PUT")
	protected.HandleFunc("/user/stats", userHandler.GetStats).Methods("GET")
	protected.HandleFunc("/user/goals", userHandler.GetGoals).Methods("GET")
	protected.HandleFunc("/user/goals", userHandler.UpdateGoals).Methods("PUT")
	protected.HandleFunc("/user/badges", userHandler.GetBadges).Methods("GET")

	protected.HandleFunc("/steps", stepHandler.UpsertSteps).Methods("POST")
	protected.HandleFunc("/steps/recent", stepHandler.GetRecentSteps).Methods("GET")
	protected.HandleFunc("/steps/edit-window", stepHandler.GetEditWindow).Methods("GET")

	protected.HandleFunc("/challenges", challengeHandler.CreateChallenge).Methods("POST")
	protected.HandleFunc("/challenges", challengeHandler.GetUserChallenges).Methods("GET")
	protected.HandleFunc("/challenges/join", challengeHandler.JoinChallenge).Methods("POST")
	protected.HandleFunc("/challenges/{challengeId}", challengeHandler.GetChallenge).Methods("GET")
	protected.HandleFunc("/challenges/{challengeId}/participants", challengeHandler.GetParticipants).Methods("GET")
	protected.HandleFunc("/challenges/{challengeId}/leaderboard", challengeHandler.GetLeaderboard).Methods("GET")
	protected.HandleFunc("/challenges/{challengeId}/daily-breakdown", challengeHandler.GetDailyBreakdown).Methods("GET")

	protected.HandleFunc("/notifications", notificationHandler.GetNotifications).Methods("GET")
	protected.HandleFunc("/notifications/unread-count", notificationHandler.GetUnreadCount).Methods("GET")
	protected.HandleFunc("/notifications/{notificationId}/read", notificationHandler.MarkAsRead).Methods("PUT")
	protected.HandleFunc("/notifications/read-all", notificationHandler.MarkAllAsRead).Methods("PUT")

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Cron-Secret"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorilllaHandlers.AllowCredentials(),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3333"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}

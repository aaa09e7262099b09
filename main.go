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

	"lovebotAPI/handlers"
	"lovebotAPI/internal/clock"
	"lovebotAPI/internal/database"
	"lovebotAPI/internal/repository"
	"lovebotAPI/internal/workers"
	"lovebotAPI/middleware"
	"lovebotAPI/services"

	_ "net/http/pprof"
)

var (
	dbPool            *pgxpool.Pool
	streakService     *services.StreakService
	marriageService   *services.MarriageService
	attendanceService *services.AttendanceService
	maintenanceWorker *workers.MaintenanceWorker
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	if os.Getenv("BOT_API_SECRET") == "" {
		log.Fatal("BOT_API_SECRET environment variable is not set")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var err error
	dbPool, err = database.Connect(ctx, dbURL)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	log.Println("Successfully connected to Postgres")

	if err := database.RunMigrations(dbURL); err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}
	log.Println("Migrations up to date")

	clk := clock.New()
	streakRepo := repository.NewPostgresStreakRepository(dbPool)
	marriageRepo := repository.NewPostgresMarriageRepository(dbPool)
	attendanceRepo := repository.NewPostgresAttendanceRepository(dbPool)

	marriageService = services.NewMarriageService(marriageRepo, clk)
	streakService = services.NewStreakService(streakRepo, marriageService, clk)
	attendanceService = services.NewAttendanceService(attendanceRepo, clk)
	maintenanceWorker = workers.NewMaintenanceWorker(clk, streakService, marriageService)

	middleware.InitPrometheus()
}

func main() {
	defer func() {
		log.Println("Closing database connection pool...")
		dbPool.Close()
	}()

	// Sweep proposals that expired while the API was down, then keep
	// sweeping on day boundaries.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if n, err := marriageService.CleanupProposals(startupCtx); err != nil {
		log.Printf("Startup proposal cleanup failed: %v", err)
	} else if n > 0 {
		log.Printf("Startup proposal cleanup removed %d proposals", n)
	}
	startupCancel()
	maintenanceWorker.Start()

	streakHandler := handlers.NewStreakHandler(streakService, marriageService)
	marriageHandler := handlers.NewMarriageHandler(marriageService)
	attendanceHandler := handlers.NewAttendanceHandler(attendanceService)
	profileHandler := handlers.NewProfileHandler(streakService, marriageService, attendanceService)

	r := mux.NewRouter()

	go middleware.CleanupVisitors()

	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))
	r.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(http.DefaultServeMux))

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
		w.Write([]byte(`{"status": "healthy", "service": "lovebot-api"}`))
	}).Methods("GET")

	// -------------------------------------------------------------------------
	// API V1 SUBROUTER (BOT GATEWAY ONLY)
	// -------------------------------------------------------------------------
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.BotAuthMiddleware)

	api.HandleFunc("/streak/check-in", streakHandler.CheckIn).Methods("POST")
	api.HandleFunc("/streak", streakHandler.GetStreak).Methods("GET")
	api.HandleFunc("/streak/box", streakHandler.GetStreakBox).Methods("GET")

	api.HandleFunc("/marriage/proposals", marriageHandler.CreateProposal).Methods("POST")
	api.HandleFunc("/marriage/proposals/{id}/respond", marriageHandler.RespondToProposal).Methods("POST")
	api.HandleFunc("/marriage", marriageHandler.GetMarriage).Methods("GET")
	api.HandleFunc("/marriage", marriageHandler.Divorce).Methods("DELETE")

	api.HandleFunc("/attendance", attendanceHandler.RecordAttendance).Methods("POST")
	api.HandleFunc("/attendance/stats", attendanceHandler.GetStats).Methods("GET")

	api.HandleFunc("/profile", profileHandler.GetProfile).Methods("GET")

	// -------------------------------------------------------------------------
	// ADMIN ROUTES (EXTERNAL SCHEDULER FALLBACK)
	// -------------------------------------------------------------------------
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.AdminAuthMiddleware)

	admin.HandleFunc("/streak/reset-daily", streakHandler.ResetDaily).Methods("POST")
	admin.HandleFunc("/streak/reset-monthly", streakHandler.ResetMonthly).Methods("POST")

	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "X-Bot-Secret", "X-Admin-Secret", "X-Pprof-Secret"}),
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

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"liftcoach/server/internal/api"
	"liftcoach/server/internal/bootstrap"
	"liftcoach/server/internal/cache"
	"liftcoach/server/internal/config"
	"liftcoach/server/internal/logging"
	"liftcoach/server/internal/metrics"
	"liftcoach/server/internal/service"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

// @title LiftCoach API
// @version 1.0
// @description Workout routines, sessions, set logging and the exercise catalog.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("could not load config: %s", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %s", err)
	}

	hostname, _ := os.Hostname()
	logging.Setup(logging.LoggerSetupParams{
		LogFileName:      cfg.Log.File,
		LogToStdout:      cfg.Log.ToStdout,
		LogLevel:         cfg.Log.Level,
		LogFormatJSON:    cfg.Log.JSON,
		Environment:      cfg.Server.Environment,
		SentryDSN:        cfg.Log.SentryDSN,
		SentryServerName: hostname,
	})
	defer sentry.Flush(2 * time.Second)

	log.Infof("starting LiftCoach server (%s)", cfg.Server.Environment)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	// --- Database ---
	repos, closeDB, err := bootstrap.OpenRepositories(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("could not open database: %s", err)
	}
	defer closeDB()

	go func() {
		indexCtx, indexCancel := context.WithTimeout(context.Background(), time.Minute)
		defer indexCancel()
		if err := repos.EnsureIndexes(indexCtx); err != nil {
			log.Errorf("index creation: %s", err)
			return
		}
		log.Info("index creation process completed")
	}()

	// --- Optional infrastructure ---
	fileStorage, err := bootstrap.OpenStorage(ctx, cfg.S3)
	if err != nil {
		log.Fatalf("failed to initialize S3 storage: %s", err)
	}
	rateLimiter, closeRedis, err := bootstrap.NewRateLimiter(ctx, cfg.Redis)
	if err != nil {
		log.Fatalf("failed to initialize rate limiter: %s", err)
	}
	defer closeRedis()

	metricsManager := metrics.NewManager(cfg.Metrics.Namespace, cfg.Metrics.Subsystem, prometheus.DefaultRegisterer)
	exerciseCache := cache.NewExerciseCache(cfg.Cache.SizeMB, cfg.Cache.TTL)
	images := service.NewImageResolver(fileStorage, cfg.S3.PresignExpiry)

	// --- Services ---
	authService := service.NewAuthService(repos.Users, cfg.JWT.Secret, cfg.JWT.Expiration)
	exerciseService := service.NewExerciseService(repos.Exercises, repos.Users, exerciseCache, images, metricsManager)
	routineService := service.NewRoutineService(repos.Routines, repos.Exercises, images)
	workoutService := service.NewWorkoutService(repos.Sessions, repos.SessionExercises, repos.Routines, repos.Exercises, images, metricsManager)

	// --- HTTP ---
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	routerParams := api.RouterParams{
		JWTSecret:        cfg.JWT.Secret,
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AuthService:      authService,
		ExerciseService:  exerciseService,
		RoutineService:   routineService,
		WorkoutService:   workoutService,
		RatingsPerMinute: cfg.RateLimit.RatingsPerMinute,
		SigninPerMinute:  cfg.RateLimit.SigninPerMinute,
		Metrics:          metricsManager,
		Gatherer:         prometheus.DefaultGatherer,
	}
	// A nil *redis_rate.Limiter must stay a nil interface.
	if rateLimiter != nil {
		routerParams.RateLimiter = rateLimiter
	}
	api.SetupRoutes(router, routerParams)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Infof("server listening on %s", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe: %s", err)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Errorf("server forced to shutdown: %s", err)
	}
	exerciseCache.LogStats()
	log.Info("server exiting")
}

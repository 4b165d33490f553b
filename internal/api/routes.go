package api

import (
	"net/http"

	"liftcoach/server/internal/metrics"
	"liftcoach/server/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterParams carries everything SetupRoutes wires into the engine.
// RateLimiter, Metrics and Gatherer are optional.
type RouterParams struct {
	JWTSecret      string
	AllowedOrigins []string

	AuthService     service.AuthService
	ExerciseService service.ExerciseService
	RoutineService  service.RoutineService
	WorkoutService  service.WorkoutService

	RateLimiter      RequestRateLimiter
	RatingsPerMinute int
	SigninPerMinute  int

	Metrics  *metrics.Manager
	Gatherer prometheus.Gatherer
}

func SetupRoutes(router *gin.Engine, p RouterParams) {
	authHandler := NewAuthHandler(p.AuthService)
	exerciseHandler := NewExerciseHandler(p.ExerciseService)
	routineHandler := NewRoutineHandler(p.RoutineService)
	workoutHandler := NewWorkoutHandler(p.WorkoutService)

	router.Use(RequestLogger())
	if p.Metrics != nil {
		router.Use(RequestMetrics(p.Metrics))
	}
	if len(p.AllowedOrigins) > 0 {
		corsCfg := cors.DefaultConfig()
		corsCfg.AllowOrigins = p.AllowedOrigins
		corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", RequestIDHeader)
		corsCfg.ExposeHeaders = []string{RequestIDHeader}
		router.Use(cors.New(corsCfg))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if p.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{})))
	}

	apiGroup := router.Group("/api")

	authGroup := apiGroup.Group("/auth")
	{
		authGroup.POST("/signup", authHandler.Signup)
		authGroup.POST("/signin", RateLimit(p.RateLimiter, "signin", p.SigninPerMinute), authHandler.Signin)
	}

	protected := apiGroup.Group("")
	protected.Use(AuthMiddleware(p.JWTSecret))

	exerciseGroup := protected.Group("/exercises")
	{
		exerciseGroup.GET("", exerciseHandler.ListExercises)
		exerciseGroup.GET("/search", exerciseHandler.SearchExercises)
		exerciseGroup.GET("/:id", exerciseHandler.GetExercise)
		exerciseGroup.GET("/:id/note", exerciseHandler.GetNote)
		exerciseGroup.POST("/note", exerciseHandler.SaveNote)
		exerciseGroup.POST("/rate", RateLimit(p.RateLimiter, "rate", p.RatingsPerMinute), exerciseHandler.RateExercise)
	}

	workoutGroup := protected.Group("/workouts")
	{
		// Routines
		workoutGroup.POST("/routines", routineHandler.CreateRoutine)
		workoutGroup.GET("/routines", routineHandler.ListRoutines)
		workoutGroup.DELETE("/routines/:id", routineHandler.DeleteRoutine)

		// Sessions
		workoutGroup.GET("", workoutHandler.ListSessions)
		workoutGroup.POST("/start", workoutHandler.StartEmptySession)
		workoutGroup.POST("/start/:routineId", workoutHandler.StartSessionFromRoutine)
		workoutGroup.GET("/:id", workoutHandler.GetSession)
		workoutGroup.PUT("/:id/finish", workoutHandler.FinishSession)
		workoutGroup.POST("/:id/exercises", workoutHandler.AttachExercise)

		// Sets
		workoutGroup.POST("/exercises/:exerciseId/sets", workoutHandler.AddSet)
		workoutGroup.DELETE("/exercises/:exerciseId/sets/:setId", workoutHandler.DeleteSet)
	}

	protected.GET("/dashboard/stats", workoutHandler.GetDashboardStats)
}

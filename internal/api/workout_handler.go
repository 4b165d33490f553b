package api

//go:generate mockgen -destination=workout_service_mocks_test.go -package=api_test liftcoach/server/internal/service WorkoutService

import (
	"errors"
	"io"
	"net/http"
	"time"

	"liftcoach/server/internal/domain"
	"liftcoach/server/internal/service"

	"github.com/gin-gonic/gin"
)

type WorkoutHandler struct {
	workoutService service.WorkoutService
}

func NewWorkoutHandler(workoutService service.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService}
}

// --- DTOs ---

type StartSessionRequest struct {
	Name string `json:"name"`
}

type AttachExerciseRequest struct {
	ExerciseID string `json:"exerciseId" binding:"required"`
}

type AddSetRequest struct {
	Reps   *int     `json:"reps" binding:"required"`
	Weight *float64 `json:"weight"`
}

// FinishSessionRequest takes the duration as duration_minutes; durationMinutes is accepted too.
type FinishSessionRequest struct {
	Name               string `json:"name"`
	DurationMinutes    *int   `json:"duration_minutes"`
	DurationMinutesAlt *int   `json:"durationMinutes"`
}

type SessionResponse struct {
	ID              string     `json:"_id"`
	UserID          string     `json:"user"`
	RoutineID       string     `json:"routine,omitempty"`
	Name            string     `json:"name"`
	IsActive        bool       `json:"is_active"`
	State           string     `json:"state"`
	StartedAt       time.Time  `json:"started_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"`
}

type SetResponse struct {
	ID        string    `json:"_id"`
	SetNumber int       `json:"set_number"`
	Weight    float64   `json:"weight"`
	Reps      int       `json:"reps"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionExerciseResponse carries the catalog id in exercise_base. Session
// reads also fill exercise_details from the live catalog.
type SessionExerciseResponse struct {
	ID             string                   `json:"_id"`
	SessionID      string                   `json:"workout_session"`
	ExerciseBaseID string                   `json:"exercise_base,omitempty"`
	ExerciseBase   *ExerciseSummaryResponse `json:"exercise_details,omitempty"`
	ExerciseName   string                   `json:"exercise_name"`
	MuscleGroup    string                   `json:"muscle_group,omitempty"`
	OrderIndex     int                      `json:"order_index"`
	Sets           []SetResponse            `json:"sets"`
}

type DashboardStatsResponse struct {
	LastWorkout              *SessionResponse `json:"lastWorkout"`
	LastWorkoutExerciseCount int              `json:"lastWorkoutExerciseCount"`
	WeeklyWorkoutCount       int              `json:"weeklyWorkoutCount"`
}

type SessionDetailsResponse struct {
	Session   SessionResponse           `json:"session"`
	Exercises []SessionExerciseResponse `json:"exercises"`
}

// StartEmptySession godoc
// @Summary Start an empty workout session
// @Tags Workouts
// @Accept json
// @Produce json
// @Param session body StartSessionRequest false "Optional name, defaults to Quick Workout"
// @Success 201 {object} SessionResponse
// @Security BearerAuth
// @Router /workouts/start [post]
func (h *WorkoutHandler) StartEmptySession(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, err.Error())
		return
	}
	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	session, err := h.workoutService.StartEmptySession(c.Request.Context(), userID, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapSessionToResponse(session))
}

// StartSessionFromRoutine godoc
// @Summary Start a workout session from a routine
// @Description Copies every routine exercise into the new session, in order, with no sets.
// @Tags Workouts
// @Produce json
// @Param routineId path string true "Routine ID"
// @Success 201 {object} SessionResponse
// @Failure 403 {object} gin.H "Routine belongs to another user"
// @Failure 404 {object} gin.H "Routine not found"
// @Security BearerAuth
// @Router /workouts/start/{routineId} [post]
func (h *WorkoutHandler) StartSessionFromRoutine(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, err.Error())
		return
	}
	routineID, ok := objectIDParam(c, "routineId", "routine")
	if !ok {
		return
	}

	session, err := h.workoutService.StartSessionFromRoutine(c.Request.Context(), userID, routineID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapSessionToResponse(session))
}

// ListSessions godoc
// @Summary List the caller's workout sessions, most recent first
// @Tags Workouts
// @Produce json
// @Success 200 {array} SessionResponse
// @Security BearerAuth
// @Router /workouts [get]
func (h *WorkoutHandler) ListSessions(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, err.Error())
		return
	}
	sessions, err := h.workoutService.ListSessions(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	resp := make([]SessionResponse, 0, len(sessions))
	for i := range sessions {
		resp = append(resp, MapSessionToResponse(&sessions[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// GetSession godoc
// @Summary Load a workout session with its exercises
// @Tags Workouts
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} SessionDetailsResponse
// @Failure 403 {object} gin.H "Session belongs to another user"
// @Failure 404 {object} gin.H "Session not found"
// @Security BearerAuth
// @Router /workouts/{id} [get]
func (h *WorkoutHandler) GetSession(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, err.Error())
		return
	}
	sessionID, ok := objectIDParam(c, "id", "session")
	if !ok {
		return
	}

	details, err := h.workoutService.GetSession(c.Request.Context(), userID, sessionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	resp := SessionDetailsResponse{
		Session:   MapSessionToResponse(&details.Session),
		Exercises: make([]SessionExerciseResponse, 0, len(details.Exercises)),
	}
	for i := range details.Exercises {
		view := details.Exercises[i]
		item := MapSessionExerciseToResponse(&view.SessionExercise)
		item.ExerciseBase = MapExerciseToSummary(view.Exercise)
		resp.Exercises = append(resp.Exercises, item)
	}
	c.JSON(http.StatusOK, resp)
}

// FinishSession godoc
// @Summary Finish an active workout session
// @Description Empty name keeps the current one; a missing duration is derived from the start time.
// @Tags Workouts
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param finish body FinishSessionRequest false "Final name and duration"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} gin.H "Negative duration"
// @Failure 409 {object} gin.H "Session already finished"
// @Security BearerAuth
// @Router /workouts/{id}/finish [put]
func (h *WorkoutHandler) FinishSession(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, err.Error())
		return
	}
	sessionID, ok := objectIDParam(c, "id", "session")
	if !ok {
		return
	}
	var req FinishSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	duration := req.DurationMinutes
	if duration == nil {
		duration = req.DurationMinutesAlt
	}

	session, err := h.workoutService.FinishSession(c.Request.Context(), userID, sessionID, req.Name, duration)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapSessionToResponse(session))
}

// AttachExercise godoc
// @Summary Add a catalog exercise to an active session
// @Tags Workouts
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param exercise body AttachExerciseRequest true "Catalog exercise"
// @Success 201 {object} SessionExerciseResponse
// @Failure 409 {object} gin.H "Session already finished"
// @Security BearerAuth
// @Router /workouts/{id}/exercises [post]
func (h *WorkoutHandler) AttachExercise(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, err.Error())
		return
	}
	sessionID, ok := objectIDParam(c, "id", "session")
	if !ok {
		return
	}
	var req AttachExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	exerciseID, ok := parseObjectID(c, req.ExerciseID, "exercise")
	if !ok {
		return
	}

	se, err := h.workoutService.AttachExercise(c.Request.Context(), userID, sessionID, exerciseID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapSessionExerciseToResponse(se))
}

// AddSet godoc
// @Summary Log a set for a session exercise
// @Tags Workouts
// @Accept json
// @Produce json
// @Param exerciseId path string true "Session exercise ID"
// @Param set body AddSetRequest true "Reps and weight"
// @Success 200 {object} SessionExerciseResponse
// @Failure 400 {object} gin.H "Negative reps or weight"
// @Failure 409 {object} gin.H "Concurrent update"
// @Security BearerAuth
// @Router /workouts/exercises/{exerciseId}/sets [post]
func (h *WorkoutHandler) AddSet(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, err.Error())
		return
	}
	seID, ok := objectIDParam(c, "exerciseId", "session exercise")
	if !ok {
		return
	}
	var req AddSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	var weight float64
	if req.Weight != nil {
		weight = *req.Weight
	}

	se, err := h.workoutService.AddSet(c.Request.Context(), userID, seID, *req.Reps, weight)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapSessionExerciseToResponse(se))
}

// DeleteSet godoc
// @Summary Delete a set and renumber the rest
// @Tags Workouts
// @Produce json
// @Param exerciseId path string true "Session exercise ID"
// @Param setId path string true "Set ID"
// @Success 200 {object} SessionExerciseResponse
// @Security BearerAuth
// @Router /workouts/exercises/{exerciseId}/sets/{setId} [delete]
func (h *WorkoutHandler) DeleteSet(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, err.Error())
		return
	}
	seID, ok := objectIDParam(c, "exerciseId", "session exercise")
	if !ok {
		return
	}

	se, err := h.workoutService.DeleteSet(c.Request.Context(), userID, seID, c.Param("setId"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapSessionExerciseToResponse(se))
}

// --- Mappers ---

// GetDashboardStats godoc
// @Summary Workout summary for the dashboard
// @Description Last finished session, its exercise count and the sessions finished in the past 7 days.
// @Tags Dashboard
// @Produce json
// @Success 200 {object} DashboardStatsResponse
// @Security BearerAuth
// @Router /dashboard/stats [get]
func (h *WorkoutHandler) GetDashboardStats(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, err.Error())
		return
	}

	summary, err := h.workoutService.Summary(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	resp := DashboardStatsResponse{
		LastWorkoutExerciseCount: summary.LastWorkoutExerciseCount,
		WeeklyWorkoutCount:       summary.WeeklyWorkoutCount,
	}
	if summary.LastWorkout != nil {
		last := MapSessionToResponse(summary.LastWorkout)
		resp.LastWorkout = &last
	}
	c.JSON(http.StatusOK, resp)
}

func MapSessionToResponse(s *domain.WorkoutSession) SessionResponse {
	if s == nil {
		return SessionResponse{}
	}
	resp := SessionResponse{
		ID:              s.ID.Hex(),
		UserID:          s.UserID.Hex(),
		Name:            s.Name,
		IsActive:        s.IsActive,
		State:           string(s.State()),
		StartedAt:       s.StartedAt,
		CompletedAt:     s.CompletedAt,
		DurationMinutes: s.DurationMinutes,
	}
	if s.RoutineID != nil {
		resp.RoutineID = s.RoutineID.Hex()
	}
	return resp
}

func MapSessionExerciseToResponse(se *domain.SessionExercise) SessionExerciseResponse {
	if se == nil {
		return SessionExerciseResponse{}
	}
	resp := SessionExerciseResponse{
		ID:           se.ID.Hex(),
		SessionID:    se.SessionID.Hex(),
		ExerciseName: se.ExerciseName,
		MuscleGroup:  se.MuscleGroup,
		OrderIndex:   se.OrderIndex,
		Sets:         make([]SetResponse, 0, len(se.Sets)),
	}
	if se.ExerciseBaseID != nil {
		resp.ExerciseBaseID = se.ExerciseBaseID.Hex()
	}
	for _, set := range se.Sets {
		resp.Sets = append(resp.Sets, SetResponse{
			ID:        set.ID.Hex(),
			SetNumber: set.SetNumber,
			Weight:    set.Weight,
			Reps:      set.Reps,
			Completed: set.Completed,
			CreatedAt: set.CreatedAt,
		})
	}
	return resp
}

package api

import (
	"net/http"
	"time"

	"liftcoach/server/internal/domain"
	"liftcoach/server/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RoutineHandler struct {
	routineService service.RoutineService
}

func NewRoutineHandler(routineService service.RoutineService) *RoutineHandler {
	return &RoutineHandler{routineService: routineService}
}

// RoutineExerciseRequest accepts the exercise id as "exercise" or "_id".
type RoutineExerciseRequest struct {
	Exercise string `json:"exercise"`
	LegacyID string `json:"_id"`
	Sets     int    `json:"sets"`
}

type CreateRoutineRequest struct {
	Name      string                   `json:"name" binding:"required"`
	Exercises []RoutineExerciseRequest `json:"exercises" binding:"required"`
}

type ExerciseSummaryResponse struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	BodyPart string   `json:"bodyPart,omitempty"`
	Images   []string `json:"images,omitempty"`
}

type RoutineExerciseResponse struct {
	ExerciseID string                   `json:"exerciseId"`
	Exercise   *ExerciseSummaryResponse `json:"exercise,omitempty"` // nil when removed from the catalog
	Sets       int                      `json:"sets"`
}

type RoutineResponse struct {
	ID        string                    `json:"id"`
	UserID    string                    `json:"user"`
	Name      string                    `json:"name"`
	Exercises []RoutineExerciseResponse `json:"exercises"`
	CreatedAt time.Time                 `json:"createdAt"`
}

// CreateRoutine godoc
// @Summary Create a workout routine
// @Tags Routines
// @Accept json
// @Produce json
// @Param routine body CreateRoutineRequest true "Routine"
// @Success 201 {object} RoutineResponse
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 404 {object} gin.H "Referenced exercise not found"
// @Security BearerAuth
// @Router /workouts/routines [post]
func (h *RoutineHandler) CreateRoutine(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, err.Error())
		return
	}
	var req CreateRoutineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	entries := make([]domain.RoutineExercise, 0, len(req.Exercises))
	for _, ex := range req.Exercises {
		raw := ex.Exercise
		if raw == "" {
			raw = ex.LegacyID
		}
		exerciseID, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format: "+raw)
			return
		}
		entries = append(entries, domain.RoutineExercise{ExerciseID: exerciseID, Sets: ex.Sets})
	}

	view, err := h.routineService.CreateRoutine(c.Request.Context(), userID, req.Name, entries)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapRoutineToResponse(view))
}

// ListRoutines godoc
// @Summary List the caller's routines, newest first
// @Tags Routines
// @Produce json
// @Success 200 {array} RoutineResponse
// @Security BearerAuth
// @Router /workouts/routines [get]
func (h *RoutineHandler) ListRoutines(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, err.Error())
		return
	}
	views, err := h.routineService.ListRoutines(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	resp := make([]RoutineResponse, 0, len(views))
	for i := range views {
		resp = append(resp, MapRoutineToResponse(&views[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteRoutine godoc
// @Summary Delete a routine
// @Tags Routines
// @Produce json
// @Param id path string true "Routine ID"
// @Success 200 {object} gin.H "msg"
// @Failure 403 {object} gin.H "Not the owner"
// @Failure 404 {object} gin.H "Routine not found"
// @Security BearerAuth
// @Router /workouts/routines/{id} [delete]
func (h *RoutineHandler) DeleteRoutine(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, err.Error())
		return
	}
	routineID, ok := objectIDParam(c, "id", "routine")
	if !ok {
		return
	}
	if err := h.routineService.DeleteRoutine(c.Request.Context(), userID, routineID); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Routine removed"})
}

func MapExerciseToSummary(ex *domain.Exercise) *ExerciseSummaryResponse {
	if ex == nil {
		return nil
	}
	return &ExerciseSummaryResponse{
		ID:       ex.ID.Hex(),
		Name:     ex.Name,
		BodyPart: ex.BodyPart,
		Images:   ex.Images,
	}
}

func MapRoutineToResponse(view *service.RoutineView) RoutineResponse {
	resp := RoutineResponse{
		ID:        view.Routine.ID.Hex(),
		UserID:    view.Routine.UserID.Hex(),
		Name:      view.Routine.Name,
		Exercises: make([]RoutineExerciseResponse, 0, len(view.Entries)),
		CreatedAt: view.Routine.CreatedAt,
	}
	for _, entry := range view.Entries {
		resp.Exercises = append(resp.Exercises, RoutineExerciseResponse{
			ExerciseID: entry.ExerciseID.Hex(),
			Exercise:   MapExerciseToSummary(entry.Exercise),
			Sets:       entry.Sets,
		})
	}
	return resp
}

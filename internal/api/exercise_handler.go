package api

import (
	"net/http"
	"time"

	"liftcoach/server/internal/domain"
	"liftcoach/server/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ExerciseHandler struct {
	exerciseService service.ExerciseService
}

func NewExerciseHandler(exerciseService service.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService}
}

// --- DTOs ---

type RateExerciseRequest struct {
	ExerciseID string `json:"exerciseId" binding:"required"`
	Rating     string `json:"rating" binding:"required"`
	Comment    string `json:"comment"`
}

type SaveNoteRequest struct {
	ExerciseID string `json:"exerciseId" binding:"required"`
	Text       string `json:"text"`
}

type NoteResponse struct {
	Text      string     `json:"text"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

type RatingResponse struct {
	UserID   string    `json:"user"`
	UserName string    `json:"userName,omitempty"`
	Value    string    `json:"value"`
	Comment  string    `json:"comment,omitempty"`
	Date     time.Time `json:"date"`
}

type ExerciseStatsResponse struct {
	Counts map[domain.RatingValue]int `json:"counts"`
	Total  int                        `json:"total"`
}

type ExerciseResponse struct {
	ID           string                `json:"id"`
	Name         string                `json:"name"`
	Category     string                `json:"category,omitempty"`
	BodyPart     string                `json:"bodyPart,omitempty"`
	Equipment    string                `json:"equipment,omitempty"`
	Instructions []string              `json:"instructions,omitempty"`
	Images       []string              `json:"images,omitempty"`
	Ratings      []RatingResponse      `json:"ratings,omitempty"`
	Stats        ExerciseStatsResponse `json:"stats"`
	CreatedAt    time.Time             `json:"createdAt"`
	UpdatedAt    time.Time             `json:"updatedAt"`
}

// ListExercises godoc
// @Summary Browse the exercise catalog
// @Description Without query or bodyPart a random sample is returned.
// @Tags Exercises
// @Produce json
// @Param query query string false "Matches name or body part"
// @Param bodyPart query string false "Body part or synonym group (e.g. legs)"
// @Success 200 {array} ExerciseResponse
// @Security BearerAuth
// @Router /exercises [get]
func (h *ExerciseHandler) ListExercises(c *gin.Context) {
	exercises, err := h.exerciseService.SearchExercises(c.Request.Context(), c.Query("query"), c.Query("bodyPart"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapExercisesToResponse(exercises))
}

// SearchExercises godoc
// @Summary Search the exercise catalog by name or body part
// @Tags Exercises
// @Produce json
// @Param query query string false "Search term"
// @Success 200 {array} ExerciseResponse
// @Security BearerAuth
// @Router /exercises/search [get]
func (h *ExerciseHandler) SearchExercises(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		query = c.Query("q")
	}
	exercises, err := h.exerciseService.SearchExercises(c.Request.Context(), query, "")
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapExercisesToResponse(exercises))
}

// GetExercise godoc
// @Summary Get one exercise with its ratings
// @Tags Exercises
// @Produce json
// @Param id path string true "Exercise ID"
// @Success 200 {object} ExerciseResponse
// @Failure 404 {object} gin.H "Exercise not found"
// @Security BearerAuth
// @Router /exercises/{id} [get]
func (h *ExerciseHandler) GetExercise(c *gin.Context) {
	exerciseID, ok := objectIDParam(c, "id", "exercise")
	if !ok {
		return
	}
	details, err := h.exerciseService.GetExercise(c.Request.Context(), exerciseID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapExerciseDetailsToResponse(details))
}

// RateExercise godoc
// @Summary Rate an exercise
// @Description Replaces the caller's previous rating and returns the exercise with recomputed stats.
// @Tags Exercises
// @Accept json
// @Produce json
// @Param rating body RateExerciseRequest true "Rating"
// @Success 200 {object} ExerciseResponse
// @Failure 400 {object} gin.H "Invalid rating value or comment"
// @Failure 404 {object} gin.H "Exercise not found"
// @Failure 409 {object} gin.H "Concurrent update"
// @Security BearerAuth
// @Router /exercises/rate [post]
func (h *ExerciseHandler) RateExercise(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, err.Error())
		return
	}
	var req RateExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	exerciseID, ok := parseObjectID(c, req.ExerciseID, "exercise")
	if !ok {
		return
	}

	details, err := h.exerciseService.RateExercise(c.Request.Context(), userID, exerciseID, domain.RatingValue(req.Rating), req.Comment)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapExerciseDetailsToResponse(details))
}

// GetNote godoc
// @Summary Get the caller's private note on an exercise
// @Tags Exercises
// @Produce json
// @Param id path string true "Exercise ID"
// @Success 200 {object} NoteResponse "Empty text when there is no note"
// @Security BearerAuth
// @Router /exercises/{id}/note [get]
func (h *ExerciseHandler) GetNote(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, err.Error())
		return
	}
	exerciseID, ok := objectIDParam(c, "id", "exercise")
	if !ok {
		return
	}
	note, err := h.exerciseService.GetNote(c.Request.Context(), userID, exerciseID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapNoteToResponse(note))
}

// SaveNote godoc
// @Summary Save the caller's private note on an exercise
// @Description Empty text deletes the note.
// @Tags Exercises
// @Accept json
// @Produce json
// @Param note body SaveNoteRequest true "Note"
// @Success 200 {object} NoteResponse
// @Security BearerAuth
// @Router /exercises/note [post]
func (h *ExerciseHandler) SaveNote(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, err.Error())
		return
	}
	var req SaveNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	exerciseID, ok := parseObjectID(c, req.ExerciseID, "exercise")
	if !ok {
		return
	}

	note, err := h.exerciseService.SaveNote(c.Request.Context(), userID, exerciseID, req.Text)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapNoteToResponse(note))
}

// objectIDParam parses a path parameter, answering 400 itself when it is malformed.
func objectIDParam(c *gin.Context, name, what string) (primitive.ObjectID, bool) {
	return parseObjectID(c, c.Param(name), what)
}

func parseObjectID(c *gin.Context, raw, what string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid "+what+" ID format")
		return primitive.NilObjectID, false
	}
	return id, true
}

// --- Mappers ---

func MapNoteToResponse(note *domain.Note) NoteResponse {
	if note == nil {
		return NoteResponse{}
	}
	updatedAt := note.UpdatedAt
	return NoteResponse{Text: note.Text, UpdatedAt: &updatedAt}
}

func MapExerciseToResponse(ex *domain.Exercise) ExerciseResponse {
	if ex == nil {
		return ExerciseResponse{}
	}
	resp := ExerciseResponse{
		ID:           ex.ID.Hex(),
		Name:         ex.Name,
		Category:     ex.Category,
		BodyPart:     ex.BodyPart,
		Equipment:    ex.Equipment,
		Instructions: ex.Instructions,
		Images:       ex.Images,
		Stats:        ExerciseStatsResponse{Counts: ex.Stats.Counts, Total: ex.Stats.Total},
		CreatedAt:    ex.CreatedAt,
		UpdatedAt:    ex.UpdatedAt,
	}
	if resp.Stats.Counts == nil {
		resp.Stats = ExerciseStatsResponse(domain.ComputeStats(ex.Ratings))
	}
	for _, r := range ex.Ratings {
		resp.Ratings = append(resp.Ratings, RatingResponse{
			UserID:  r.UserID.Hex(),
			Value:   string(r.Value),
			Comment: r.Comment,
			Date:    r.Date,
		})
	}
	return resp
}

func MapExercisesToResponse(exercises []domain.Exercise) []ExerciseResponse {
	resp := make([]ExerciseResponse, 0, len(exercises))
	for i := range exercises {
		resp = append(resp, MapExerciseToResponse(&exercises[i]))
	}
	return resp
}

func MapExerciseDetailsToResponse(details *service.ExerciseDetails) ExerciseResponse {
	if details == nil {
		return ExerciseResponse{}
	}
	resp := MapExerciseToResponse(details.Exercise)
	for i := range resp.Ratings {
		if details.Exercise.Ratings[i].UserID.IsZero() {
			continue
		}
		resp.Ratings[i].UserName = details.AuthorNames[details.Exercise.Ratings[i].UserID]
	}
	return resp
}


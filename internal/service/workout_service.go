package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"liftcoach/server/internal/domain"
	"liftcoach/server/internal/metrics"
	"liftcoach/server/internal/repository"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UnknownExerciseName is used when a routine references an exercise that has
// since been removed from the catalog.
const UnknownExerciseName = "Unknown exercise"

// SessionExerciseView is a logged exercise with its live catalog entry for
// display. The snapshot fields of SessionExercise are never refreshed from it.
type SessionExerciseView struct {
	domain.SessionExercise
	Exercise *domain.Exercise
}

type SessionDetails struct {
	Session   domain.WorkoutSession
	Exercises []SessionExerciseView
}

// WorkoutSummary backs the dashboard: the most recently finished session and
// the number of sessions finished in the trailing week.
type WorkoutSummary struct {
	LastWorkout              *domain.WorkoutSession
	LastWorkoutExerciseCount int
	WeeklyWorkoutCount       int
}

const summaryWindow = 7 * 24 * time.Hour

type WorkoutService interface {
	StartEmptySession(ctx context.Context, userID primitive.ObjectID, name string) (*domain.WorkoutSession, error)
	StartSessionFromRoutine(ctx context.Context, userID, routineID primitive.ObjectID) (*domain.WorkoutSession, error)
	AttachExercise(ctx context.Context, userID, sessionID, exerciseID primitive.ObjectID) (*domain.SessionExercise, error)
	GetSession(ctx context.Context, userID, sessionID primitive.ObjectID) (*SessionDetails, error)
	ListSessions(ctx context.Context, userID primitive.ObjectID) ([]domain.WorkoutSession, error)
	AddSet(ctx context.Context, userID, sessionExerciseID primitive.ObjectID, reps int, weight float64) (*domain.SessionExercise, error)
	// DeleteSet is idempotent: an unknown or malformed setID leaves the sets unchanged.
	DeleteSet(ctx context.Context, userID, sessionExerciseID primitive.ObjectID, setID string) (*domain.SessionExercise, error)
	// FinishSession keeps the current name when name is empty and derives the
	// duration from the start time when durationMinutes is nil.
	FinishSession(ctx context.Context, userID, sessionID primitive.ObjectID, name string, durationMinutes *int) (*domain.WorkoutSession, error)
	Summary(ctx context.Context, userID primitive.ObjectID) (*WorkoutSummary, error)
}

// workoutService implements the WorkoutService interface.
type workoutService struct {
	sessionRepo         repository.SessionRepository
	sessionExerciseRepo repository.SessionExerciseRepository
	routineRepo         repository.RoutineRepository
	exerciseRepo        repository.ExerciseRepository
	images              *ImageResolver
	metrics             *metrics.Manager
	now                 func() time.Time
}

// NewWorkoutService creates a new instance of workoutService.
func NewWorkoutService(
	sessionRepo repository.SessionRepository,
	sessionExerciseRepo repository.SessionExerciseRepository,
	routineRepo repository.RoutineRepository,
	exerciseRepo repository.ExerciseRepository,
	images *ImageResolver,
	metricsManager *metrics.Manager,
) WorkoutService {
	return &workoutService{
		sessionRepo:         sessionRepo,
		sessionExerciseRepo: sessionExerciseRepo,
		routineRepo:         routineRepo,
		exerciseRepo:        exerciseRepo,
		images:              images,
		metrics:             metricsManager,
		now:                 func() time.Time { return time.Now().UTC() },
	}
}

func (s *workoutService) StartEmptySession(ctx context.Context, userID primitive.ObjectID, name string) (*domain.WorkoutSession, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = domain.DefaultSessionName
	}
	session := &domain.WorkoutSession{
		UserID:    userID,
		Name:      name,
		IsActive:  true,
		StartedAt: s.now(),
	}
	if err := s.sessionRepo.Create(ctx, session, nil); err != nil {
		return nil, err
	}
	s.metrics.CounterSessionsStarted.WithLabelValues("empty").Inc()
	return session, nil
}

func (s *workoutService) StartSessionFromRoutine(ctx context.Context, userID, routineID primitive.ObjectID) (*domain.WorkoutSession, error) {
	routine, err := s.routineRepo.GetByID(ctx, routineID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoutineNotFound
		}
		return nil, err
	}
	if routine.UserID != userID {
		return nil, ErrRoutineAccessDenied
	}

	ids := make([]primitive.ObjectID, len(routine.Exercises))
	for i, e := range routine.Exercises {
		ids[i] = e.ExerciseID
	}
	catalog, err := exerciseIndex(ctx, s.exerciseRepo, ids)
	if err != nil {
		return nil, err
	}

	exercises := make([]domain.SessionExercise, len(routine.Exercises))
	for i, entry := range routine.Exercises {
		baseID := entry.ExerciseID
		exercises[i] = domain.SessionExercise{
			ExerciseBaseID: &baseID,
			ExerciseName:   UnknownExerciseName,
			OrderIndex:     i,
			Sets:           []domain.Set{},
		}
		if ex, ok := catalog[entry.ExerciseID]; ok {
			exercises[i].ExerciseName = ex.Name
			exercises[i].MuscleGroup = ex.BodyPart
		}
	}

	session := &domain.WorkoutSession{
		UserID:    userID,
		RoutineID: &routine.ID,
		Name:      routine.Name,
		IsActive:  true,
		StartedAt: s.now(),
	}
	if err := s.sessionRepo.Create(ctx, session, exercises); err != nil {
		return nil, err
	}

	s.metrics.CounterSessionsStarted.WithLabelValues("routine").Inc()
	log.Debugf("user %s started session %s from routine %s", userID.Hex(), session.ID.Hex(), routineID.Hex())
	return session, nil
}

// ownedSession loads a session and checks it belongs to userID.
func (s *workoutService) ownedSession(ctx context.Context, userID, sessionID primitive.ObjectID) (*domain.WorkoutSession, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.UserID != userID {
		return nil, ErrSessionAccessDenied
	}
	return session, nil
}

func (s *workoutService) ownedSessionExercise(ctx context.Context, userID, sessionExerciseID primitive.ObjectID) (*domain.SessionExercise, error) {
	se, err := s.sessionExerciseRepo.GetByID(ctx, sessionExerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionExerciseNotFound
		}
		return nil, err
	}
	if se.UserID != userID {
		return nil, ErrSessionAccessDenied
	}
	return se, nil
}

func (s *workoutService) AttachExercise(ctx context.Context, userID, sessionID, exerciseID primitive.ObjectID) (*domain.SessionExercise, error) {
	session, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsActive {
		return nil, ErrSessionFinished
	}

	ex, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		return nil, mapExerciseError(err)
	}

	existing, err := s.sessionExerciseRepo.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	order := 0
	for _, e := range existing {
		if e.OrderIndex >= order {
			order = e.OrderIndex + 1
		}
	}

	se := &domain.SessionExercise{
		SessionID:      session.ID,
		UserID:         userID,
		ExerciseBaseID: &ex.ID,
		ExerciseName:   ex.Name,
		MuscleGroup:    ex.BodyPart,
		OrderIndex:     order,
		Sets:           []domain.Set{},
	}
	if _, err := s.sessionExerciseRepo.Create(ctx, se); err != nil {
		return nil, err
	}
	return se, nil
}

func (s *workoutService) GetSession(ctx context.Context, userID, sessionID primitive.ObjectID) (*SessionDetails, error) {
	session, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	exercises, err := s.sessionExerciseRepo.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var ids []primitive.ObjectID
	for _, e := range exercises {
		if e.ExerciseBaseID != nil {
			ids = append(ids, *e.ExerciseBaseID)
		}
	}
	catalog, err := exerciseIndex(ctx, s.exerciseRepo, ids)
	if err != nil {
		return nil, err
	}

	details := &SessionDetails{Session: *session, Exercises: make([]SessionExerciseView, len(exercises))}
	for i, e := range exercises {
		details.Exercises[i] = SessionExerciseView{SessionExercise: e}
		if e.ExerciseBaseID == nil {
			continue
		}
		if ex, ok := catalog[*e.ExerciseBaseID]; ok {
			ex.Images = s.images.Resolve(ctx, ex.Images)
			details.Exercises[i].Exercise = &ex
		}
	}
	return details, nil
}

func (s *workoutService) ListSessions(ctx context.Context, userID primitive.ObjectID) ([]domain.WorkoutSession, error) {
	return s.sessionRepo.GetByUserID(ctx, userID)
}

// Summary ignores active sessions.
func (s *workoutService) Summary(ctx context.Context, userID primitive.ObjectID) (*WorkoutSummary, error) {
	sessions, err := s.sessionRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &WorkoutSummary{}
	weekStart := s.now().Add(-summaryWindow)
	for i := range sessions {
		session := sessions[i]
		if session.State() != domain.SessionFinished {
			continue
		}
		if !session.CompletedAt.Before(weekStart) {
			summary.WeeklyWorkoutCount++
		}
		if summary.LastWorkout == nil || session.CompletedAt.After(*summary.LastWorkout.CompletedAt) {
			summary.LastWorkout = &session
		}
	}
	if summary.LastWorkout == nil {
		return summary, nil
	}

	exercises, err := s.sessionExerciseRepo.GetBySessionID(ctx, summary.LastWorkout.ID)
	if err != nil {
		return nil, err
	}
	summary.LastWorkoutExerciseCount = len(exercises)
	return summary, nil
}

func (s *workoutService) AddSet(ctx context.Context, userID, sessionExerciseID primitive.ObjectID, reps int, weight float64) (*domain.SessionExercise, error) {
	if reps < 0 {
		return nil, validationError("reps must not be negative")
	}
	if weight < 0 || math.IsNaN(weight) || math.IsInf(weight, 0) {
		return nil, validationError("weight must be a non-negative number")
	}

	var updated *domain.SessionExercise
	err := retryOnConflict(ctx, s.metrics, "session_exercise", func() error {
		se, err := s.ownedSessionExercise(ctx, userID, sessionExerciseID)
		if err != nil {
			return err
		}
		se.AppendSet(reps, weight, s.now())
		if err := s.sessionExerciseRepo.ReplaceSets(ctx, se); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrSessionExerciseNotFound
			}
			return err
		}
		updated = se
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.CounterSetsLogged.Inc()
	return updated, nil
}

func (s *workoutService) DeleteSet(ctx context.Context, userID, sessionExerciseID primitive.ObjectID, setID string) (*domain.SessionExercise, error) {
	id, parseErr := primitive.ObjectIDFromHex(setID)
	if parseErr != nil {
		// No set can carry a malformed id, so there is nothing to delete.
		return s.ownedSessionExercise(ctx, userID, sessionExerciseID)
	}

	var updated *domain.SessionExercise
	err := retryOnConflict(ctx, s.metrics, "session_exercise", func() error {
		se, err := s.ownedSessionExercise(ctx, userID, sessionExerciseID)
		if err != nil {
			return err
		}
		if !se.RemoveSet(id) {
			updated = se
			return nil
		}
		if err := s.sessionExerciseRepo.ReplaceSets(ctx, se); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrSessionExerciseNotFound
			}
			return err
		}
		updated = se
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *workoutService) FinishSession(ctx context.Context, userID, sessionID primitive.ObjectID, name string, durationMinutes *int) (*domain.WorkoutSession, error) {
	if durationMinutes != nil && *durationMinutes < 0 {
		return nil, validationError("durationMinutes must not be negative")
	}

	session, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsActive {
		return nil, ErrSessionFinished
	}

	now := s.now()
	name = strings.TrimSpace(name)
	if name == "" {
		name = session.Name
	}
	duration := session.ElapsedMinutes(now)
	if durationMinutes != nil {
		duration = *durationMinutes
	}

	finished, err := s.sessionRepo.Finish(ctx, sessionID, userID, name, duration, now)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			// Someone finished it between the read and the conditional write.
			return nil, ErrSessionFinished
		}
		return nil, err
	}

	s.metrics.CounterSessionsDone.Inc()
	return finished, nil
}

package service

import (
	"context"
	"errors"
	"strings"

	"liftcoach/server/internal/domain"
	"liftcoach/server/internal/repository"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoutineEntry is a routine exercise with its live catalog entry, nil when
// the exercise no longer exists.
type RoutineEntry struct {
	domain.RoutineExercise
	Exercise *domain.Exercise
}

type RoutineView struct {
	Routine domain.WorkoutRoutine
	Entries []RoutineEntry
}

type RoutineService interface {
	CreateRoutine(ctx context.Context, userID primitive.ObjectID, name string, exercises []domain.RoutineExercise) (*RoutineView, error)
	// ListRoutines returns the caller's routines, newest first.
	ListRoutines(ctx context.Context, userID primitive.ObjectID) ([]RoutineView, error)
	DeleteRoutine(ctx context.Context, userID, routineID primitive.ObjectID) error
}

type routineService struct {
	routineRepo  repository.RoutineRepository
	exerciseRepo repository.ExerciseRepository
	images       *ImageResolver
}

func NewRoutineService(routineRepo repository.RoutineRepository, exerciseRepo repository.ExerciseRepository, images *ImageResolver) RoutineService {
	return &routineService{
		routineRepo:  routineRepo,
		exerciseRepo: exerciseRepo,
		images:       images,
	}
}

func (s *routineService) CreateRoutine(ctx context.Context, userID primitive.ObjectID, name string, exercises []domain.RoutineExercise) (*RoutineView, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationError("routine name is required")
	}
	if len(exercises) == 0 {
		return nil, validationError("routine needs at least one exercise")
	}

	entries := make([]domain.RoutineExercise, len(exercises))
	for i, e := range exercises {
		if e.ExerciseID == primitive.NilObjectID {
			return nil, validationError("exercise %d has no id", i+1)
		}
		entries[i] = e
		if entries[i].Sets <= 0 {
			entries[i].Sets = domain.DefaultTargetSets
		}
	}

	catalog, err := s.catalogFor(ctx, entries)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if _, ok := catalog[e.ExerciseID]; !ok {
			return nil, ErrExerciseNotFound
		}
	}

	routine := &domain.WorkoutRoutine{
		UserID:    userID,
		Name:      name,
		Exercises: entries,
	}
	if _, err := s.routineRepo.Create(ctx, routine); err != nil {
		return nil, err
	}
	log.Debugf("user %s created routine %s with %d exercises", userID.Hex(), routine.ID.Hex(), len(entries))

	view := s.view(ctx, *routine, catalog)
	return &view, nil
}

func (s *routineService) ListRoutines(ctx context.Context, userID primitive.ObjectID) ([]RoutineView, error) {
	routines, err := s.routineRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var all []domain.RoutineExercise
	for _, r := range routines {
		all = append(all, r.Exercises...)
	}
	catalog, err := s.catalogFor(ctx, all)
	if err != nil {
		return nil, err
	}

	views := make([]RoutineView, 0, len(routines))
	for _, r := range routines {
		views = append(views, s.view(ctx, r, catalog))
	}
	return views, nil
}

func (s *routineService) DeleteRoutine(ctx context.Context, userID, routineID primitive.ObjectID) error {
	routine, err := s.routineRepo.GetByID(ctx, routineID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRoutineNotFound
		}
		return err
	}
	if routine.UserID != userID {
		return ErrRoutineAccessDenied
	}

	if err := s.routineRepo.Delete(ctx, routineID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRoutineNotFound
		}
		return err
	}
	return nil
}

// catalogFor loads the catalog entries referenced by entries, keyed by id.
func (s *routineService) catalogFor(ctx context.Context, entries []domain.RoutineExercise) (map[primitive.ObjectID]domain.Exercise, error) {
	ids := make([]primitive.ObjectID, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ExerciseID)
	}
	return exerciseIndex(ctx, s.exerciseRepo, ids)
}

func (s *routineService) view(ctx context.Context, routine domain.WorkoutRoutine, catalog map[primitive.ObjectID]domain.Exercise) RoutineView {
	view := RoutineView{Routine: routine, Entries: make([]RoutineEntry, len(routine.Exercises))}
	for i, e := range routine.Exercises {
		view.Entries[i] = RoutineEntry{RoutineExercise: e}
		if ex, ok := catalog[e.ExerciseID]; ok {
			ex.Images = s.images.Resolve(ctx, ex.Images)
			view.Entries[i].Exercise = &ex
		}
	}
	return view
}

func exerciseIndex(ctx context.Context, repo repository.ExerciseRepository, ids []primitive.ObjectID) (map[primitive.ObjectID]domain.Exercise, error) {
	index := make(map[primitive.ObjectID]domain.Exercise, len(ids))
	if len(ids) == 0 {
		return index, nil
	}
	exercises, err := repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, ex := range exercises {
		index[ex.ID] = ex
	}
	return index, nil
}

package memory

import (
	"context"
	"errors"
	"sort"
	"time"

	"liftcoach/server/internal/domain"
	"liftcoach/server/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type routineRecord struct {
	routine domain.WorkoutRoutine
	seq     int64
}

type routineRepository struct {
	s *Store
}

func cloneRoutine(rt domain.WorkoutRoutine) domain.WorkoutRoutine {
	rt.Exercises = append([]domain.RoutineExercise(nil), rt.Exercises...)
	return rt
}

func (r *routineRepository) Create(_ context.Context, routine *domain.WorkoutRoutine) (primitive.ObjectID, error) {
	if routine.UserID == primitive.NilObjectID || routine.Name == "" {
		return primitive.NilObjectID, errors.New("routine requires user and name")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	routine.ID = primitive.NewObjectID()
	routine.CreatedAt = time.Now().UTC()
	r.s.routines[routine.ID.Hex()] = routineRecord{routine: cloneRoutine(*routine), seq: r.s.next()}
	return routine.ID, nil
}

func (r *routineRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.WorkoutRoutine, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rec, ok := r.s.routines[id.Hex()]
	if !ok {
		return nil, repository.ErrNotFound
	}
	rt := cloneRoutine(rec.routine)
	return &rt, nil
}

func (r *routineRepository) GetByUserID(_ context.Context, userID primitive.ObjectID) ([]domain.WorkoutRoutine, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var recs []routineRecord
	for _, rec := range r.s.routines {
		if rec.routine.UserID == userID {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].seq > recs[j].seq })

	routines := make([]domain.WorkoutRoutine, 0, len(recs))
	for _, rec := range recs {
		routines = append(routines, cloneRoutine(rec.routine))
	}
	return routines, nil
}

func (r *routineRepository) Delete(_ context.Context, id, userID primitive.ObjectID) error {
	if id == primitive.NilObjectID || userID == primitive.NilObjectID {
		return errors.New("routine ID and user ID are required for deletion")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.routines[id.Hex()]
	if !ok || rec.routine.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.s.routines, id.Hex())
	return nil
}

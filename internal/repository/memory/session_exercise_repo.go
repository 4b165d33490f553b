package memory

import (
	"context"
	"errors"
	"sort"

	"liftcoach/server/internal/domain"
	"liftcoach/server/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type sessionExerciseRepository struct {
	s *Store
}

func (r *sessionExerciseRepository) Create(_ context.Context, exercise *domain.SessionExercise) (primitive.ObjectID, error) {
	if exercise.SessionID == primitive.NilObjectID || exercise.UserID == primitive.NilObjectID || exercise.ExerciseName == "" {
		return primitive.NilObjectID, errors.New("session exercise requires session, user and exercise name")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	exercise.ID = primitive.NewObjectID()
	if exercise.Sets == nil {
		exercise.Sets = []domain.Set{}
	}
	r.s.sessionExercises[exercise.ID.Hex()] = sessionExerciseRecord{exercise: cloneSessionExercise(*exercise), seq: r.s.next()}
	return exercise.ID, nil
}

func (r *sessionExerciseRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.SessionExercise, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rec, ok := r.s.sessionExercises[id.Hex()]
	if !ok {
		return nil, repository.ErrNotFound
	}
	se := cloneSessionExercise(rec.exercise)
	return &se, nil
}

func (r *sessionExerciseRepository) GetBySessionID(_ context.Context, sessionID primitive.ObjectID) ([]domain.SessionExercise, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var recs []sessionExerciseRecord
	for _, rec := range r.s.sessionExercises {
		if rec.exercise.SessionID == sessionID {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].exercise.OrderIndex != recs[j].exercise.OrderIndex {
			return recs[i].exercise.OrderIndex < recs[j].exercise.OrderIndex
		}
		return recs[i].seq < recs[j].seq
	})

	exercises := make([]domain.SessionExercise, 0, len(recs))
	for _, rec := range recs {
		exercises = append(exercises, cloneSessionExercise(rec.exercise))
	}
	return exercises, nil
}

func (r *sessionExerciseRepository) ReplaceSets(_ context.Context, exercise *domain.SessionExercise) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.sessionExercises[exercise.ID.Hex()]
	if !ok {
		return repository.ErrNotFound
	}
	if rec.exercise.UserID != exercise.UserID || rec.exercise.Version != exercise.Version {
		return repository.ErrConflict
	}

	rec.exercise.Sets = append([]domain.Set{}, exercise.Sets...)
	rec.exercise.Version++
	r.s.sessionExercises[exercise.ID.Hex()] = rec
	exercise.Version = rec.exercise.Version
	return nil
}

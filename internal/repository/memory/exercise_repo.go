package memory

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"strings"
	"time"

	"liftcoach/server/internal/domain"
	"liftcoach/server/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type exerciseRecord struct {
	exercise domain.Exercise
}

type exerciseRepository struct {
	s *Store
}

func cloneExercise(e domain.Exercise) domain.Exercise {
	e.Instructions = append([]string(nil), e.Instructions...)
	e.Images = append([]string(nil), e.Images...)
	e.Ratings = append([]domain.Rating(nil), e.Ratings...)
	e.Notes = append([]domain.Note(nil), e.Notes...)
	counts := make(map[domain.RatingValue]int, len(e.Stats.Counts))
	for k, v := range e.Stats.Counts {
		counts[k] = v
	}
	e.Stats.Counts = counts
	return e
}

func (r *exerciseRepository) insert(exercise *domain.Exercise, now time.Time) {
	if exercise.ID == primitive.NilObjectID {
		exercise.ID = primitive.NewObjectID()
	}
	exercise.CreatedAt = now
	exercise.UpdatedAt = now
	exercise.Stats = domain.ComputeStats(exercise.Ratings)
	r.s.exercises[exercise.ID.Hex()] = exerciseRecord{exercise: cloneExercise(*exercise)}
}

func (r *exerciseRepository) Create(_ context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	if exercise.Name == "" {
		return primitive.NilObjectID, errors.New("exercise name is required")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.insert(exercise, time.Now().UTC())
	return exercise.ID, nil
}

func (r *exerciseRepository) InsertMany(_ context.Context, exercises []domain.Exercise) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now().UTC()
	for i := range exercises {
		r.insert(&exercises[i], now)
	}
	return len(exercises), nil
}

func (r *exerciseRepository) DeleteAll(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n := int64(len(r.s.exercises))
	r.s.exercises = make(map[string]exerciseRecord)
	return n, nil
}

func (r *exerciseRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rec, ok := r.s.exercises[id.Hex()]
	if !ok {
		return nil, repository.ErrNotFound
	}
	e := cloneExercise(rec.exercise)
	return &e, nil
}

func (r *exerciseRepository) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	exercises := []domain.Exercise{}
	seen := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if rec, ok := r.s.exercises[id.Hex()]; ok {
			exercises = append(exercises, cloneExercise(rec.exercise))
		}
	}
	return exercises, nil
}

func matchesFilter(e domain.Exercise, filter repository.ExerciseFilter) bool {
	q := strings.ToLower(strings.TrimSpace(filter.Query))
	if q == "" && len(filter.BodyParts) == 0 {
		return true
	}
	if q != "" {
		if strings.Contains(strings.ToLower(e.Name), q) || strings.Contains(strings.ToLower(e.BodyPart), q) {
			return true
		}
	}
	for _, part := range filter.BodyParts {
		if strings.EqualFold(e.BodyPart, part) {
			return true
		}
	}
	return false
}

func (r *exerciseRepository) Search(_ context.Context, filter repository.ExerciseFilter) ([]domain.Exercise, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	exercises := []domain.Exercise{}
	for _, rec := range r.s.exercises {
		if matchesFilter(rec.exercise, filter) {
			exercises = append(exercises, cloneExercise(rec.exercise))
		}
	}
	sort.Slice(exercises, func(i, j int) bool {
		if exercises[i].Name != exercises[j].Name {
			return exercises[i].Name < exercises[j].Name
		}
		return exercises[i].ID.Hex() < exercises[j].ID.Hex()
	})
	if filter.Limit > 0 && len(exercises) > filter.Limit {
		exercises = exercises[:filter.Limit]
	}
	return exercises, nil
}

func (r *exerciseRepository) Sample(_ context.Context, size int) ([]domain.Exercise, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	exercises := make([]domain.Exercise, 0, len(r.s.exercises))
	for _, rec := range r.s.exercises {
		exercises = append(exercises, cloneExercise(rec.exercise))
	}
	rand.Shuffle(len(exercises), func(i, j int) {
		exercises[i], exercises[j] = exercises[j], exercises[i]
	})
	if size >= 0 && len(exercises) > size {
		exercises = exercises[:size]
	}
	return exercises, nil
}

func (r *exerciseRepository) UpdateFeedback(_ context.Context, exercise *domain.Exercise) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.exercises[exercise.ID.Hex()]
	if !ok {
		return repository.ErrNotFound
	}
	if rec.exercise.Version != exercise.Version {
		return repository.ErrConflict
	}

	now := time.Now().UTC()
	stored := rec.exercise
	stored.Ratings = append([]domain.Rating(nil), exercise.Ratings...)
	stored.Notes = append([]domain.Note(nil), exercise.Notes...)
	stored.Stats = domain.ComputeStats(stored.Ratings)
	stored.UpdatedAt = now
	stored.Version++
	r.s.exercises[exercise.ID.Hex()] = exerciseRecord{exercise: stored}

	exercise.Version = stored.Version
	exercise.UpdatedAt = now
	exercise.Stats = domain.ComputeStats(exercise.Ratings)
	return nil
}

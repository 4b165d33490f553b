// Package memory holds in-process implementations of the repository
// interfaces. They are used by tests and by the "memory" database driver.
package memory

import (
	"sync"

	"liftcoach/server/internal/repository"
)

// Store groups the in-memory repositories behind one lock so that
// multi-collection writes stay atomic.
type Store struct {
	mu sync.RWMutex

	users            map[string]userRecord
	exercises        map[string]exerciseRecord
	routines         map[string]routineRecord
	sessions         map[string]sessionRecord
	sessionExercises map[string]sessionExerciseRecord

	seq int64 // insertion order, used as a stable tie breaker
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		users:            make(map[string]userRecord),
		exercises:        make(map[string]exerciseRecord),
		routines:         make(map[string]routineRecord),
		sessions:         make(map[string]sessionRecord),
		sessionExercises: make(map[string]sessionExerciseRecord),
	}
}

func (s *Store) next() int64 {
	s.seq++
	return s.seq
}

// Repositories returns the full set of repositories backed by this store.
func (s *Store) Repositories() (
	repository.UserRepository,
	repository.ExerciseRepository,
	repository.RoutineRepository,
	repository.SessionRepository,
	repository.SessionExerciseRepository,
) {
	return &userRepository{s}, &exerciseRepository{s}, &routineRepository{s}, &sessionRepository{s}, &sessionExerciseRepository{s}
}

// Users returns the user repository.
func (s *Store) Users() repository.UserRepository { return &userRepository{s} }

// Exercises returns the exercise catalog repository.
func (s *Store) Exercises() repository.ExerciseRepository { return &exerciseRepository{s} }

// Routines returns the routine repository.
func (s *Store) Routines() repository.RoutineRepository { return &routineRepository{s} }

// Sessions returns the workout session repository.
func (s *Store) Sessions() repository.SessionRepository { return &sessionRepository{s} }

// SessionExercises returns the session exercise repository.
func (s *Store) SessionExercises() repository.SessionExerciseRepository {
	return &sessionExerciseRepository{s}
}

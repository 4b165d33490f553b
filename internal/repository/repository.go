package repository

import (
	"context"
	"time"

	"liftcoach/server/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound  = RepositoryError("not found")
	ErrConflict  = RepositoryError("document was modified concurrently")
	ErrDuplicate = RepositoryError("duplicate key")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	// GetByIDs silently skips ids that do not exist.
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.User, error)
}

// ExerciseFilter narrows a catalog search. Query matches name or body part
// (case-insensitive substring), BodyParts is an exact, case-insensitive set.
// When both are set an exercise must satisfy either of them.
type ExerciseFilter struct {
	Query     string
	BodyParts []string
	Limit     int
}

// ExerciseRepository defines the interface for interacting with the exercise catalog.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	InsertMany(ctx context.Context, exercises []domain.Exercise) (int, error)
	DeleteAll(ctx context.Context) (int64, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	// GetByIDs silently skips ids that do not exist.
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error)
	Search(ctx context.Context, filter ExerciseFilter) ([]domain.Exercise, error)
	Sample(ctx context.Context, size int) ([]domain.Exercise, error)
	// UpdateFeedback stores ratings, stats and notes when the stored version
	// still equals exercise.Version, and bumps exercise.Version. ErrConflict otherwise.
	UpdateFeedback(ctx context.Context, exercise *domain.Exercise) error
}

// RoutineRepository defines the interface for interacting with workout routines.
type RoutineRepository interface {
	Create(ctx context.Context, routine *domain.WorkoutRoutine) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutRoutine, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.WorkoutRoutine, error)
	Delete(ctx context.Context, id, userID primitive.ObjectID) error
}

// SessionRepository defines the interface for interacting with workout sessions.
type SessionRepository interface {
	// Create stores the session and its exercises as one unit: either all
	// documents are persisted or none are.
	Create(ctx context.Context, session *domain.WorkoutSession, exercises []domain.SessionExercise) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutSession, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.WorkoutSession, error)
	// Finish marks an active session owned by userID as finished.
	// ErrConflict when no such active session exists.
	Finish(ctx context.Context, id, userID primitive.ObjectID, name string, durationMinutes int, completedAt time.Time) (*domain.WorkoutSession, error)
}

// SessionExerciseRepository defines the interface for interacting with the
// exercises logged inside sessions.
type SessionExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.SessionExercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.SessionExercise, error)
	// GetBySessionID returns exercises sorted by OrderIndex.
	GetBySessionID(ctx context.Context, sessionID primitive.ObjectID) ([]domain.SessionExercise, error)
	// ReplaceSets stores exercise.Sets when the stored document is owned by
	// exercise.UserID and still at exercise.Version, and bumps exercise.Version.
	ReplaceSets(ctx context.Context, exercise *domain.SessionExercise) error
}

package bootstrap

import (
	"context"
	"testing"

	"liftcoach/server/internal/config"
	"liftcoach/server/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestOpenRepositories_Memory(t *testing.T) {
	repos, closeFn, err := OpenRepositories(context.Background(), config.DatabaseConfig{Driver: "memory"})
	require.NoError(t, err)
	defer closeFn()

	assert.Nil(t, repos.DB)
	assert.NoError(t, repos.EnsureIndexes(context.Background()))

	// every repository shares the same store
	ex := &domain.Exercise{Name: "Plank", BodyPart: "abdominals"}
	_, err = repos.Exercises.Create(context.Background(), ex)
	require.NoError(t, err)
	routine := &domain.WorkoutRoutine{UserID: primitive.NewObjectID(), Name: "Core", Exercises: []domain.RoutineExercise{{ExerciseID: ex.ID, Sets: 3}}}
	_, err = repos.Routines.Create(context.Background(), routine)
	require.NoError(t, err)
	got, err := repos.Routines.GetByID(context.Background(), routine.ID)
	require.NoError(t, err)
	assert.Equal(t, "Core", got.Name)
}

func TestOpenRepositories_UnknownDriver(t *testing.T) {
	_, closeFn, err := OpenRepositories(context.Background(), config.DatabaseConfig{Driver: "sqlite"})
	assert.Error(t, err)
	assert.NotNil(t, closeFn)
}

func TestOptionalInfrastructure(t *testing.T) {
	files, err := OpenStorage(context.Background(), config.S3Config{})
	require.NoError(t, err)
	assert.Nil(t, files)

	limiter, closeFn, err := NewRateLimiter(context.Background(), config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, limiter)
	closeFn()
}

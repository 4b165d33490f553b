package service

import (
	"context"
	"testing"
	"time"

	"liftcoach/server/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreateRoutine(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := primitive.NewObjectID()
	bench := env.addExercise(t, "Bench Press", "chest")
	dip := env.addExercise(t, "Dip", "triceps")

	view, err := env.routines.CreateRoutine(ctx, user, " Push Day ", []domain.RoutineExercise{
		{ExerciseID: bench.ID, Sets: 4},
		{ExerciseID: dip.ID, Sets: 0},
	})
	require.NoError(t, err)
	assert.Equal(t, "Push Day", view.Routine.Name)
	assert.Equal(t, user, view.Routine.UserID)
	require.Len(t, view.Entries, 2)
	assert.Equal(t, 4, view.Entries[0].Sets)
	assert.Equal(t, domain.DefaultTargetSets, view.Entries[1].Sets)
	require.NotNil(t, view.Entries[1].Exercise)
	assert.Equal(t, "Dip", view.Entries[1].Exercise.Name)
}

func TestCreateRoutine_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := primitive.NewObjectID()
	bench := env.addExercise(t, "Bench Press", "chest")

	_, err := env.routines.CreateRoutine(ctx, user, "", []domain.RoutineExercise{{ExerciseID: bench.ID}})
	assert.ErrorIs(t, err, ErrValidationFailed)
	_, err = env.routines.CreateRoutine(ctx, user, "Empty", nil)
	assert.ErrorIs(t, err, ErrValidationFailed)
	_, err = env.routines.CreateRoutine(ctx, user, "Ghost", []domain.RoutineExercise{{ExerciseID: bench.ID}, {ExerciseID: primitive.NewObjectID()}})
	assert.ErrorIs(t, err, ErrExerciseNotFound)

	routines, err := env.routines.ListRoutines(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, routines)
}

func TestListRoutines_OwnNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := primitive.NewObjectID()
	bench := env.addExercise(t, "Bench Press", "chest")
	entries := []domain.RoutineExercise{{ExerciseID: bench.ID}}

	_, err := env.routines.CreateRoutine(ctx, user, "older", entries)
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	_, err = env.routines.CreateRoutine(ctx, user, "newer", entries)
	require.NoError(t, err)
	_, err = env.routines.CreateRoutine(ctx, primitive.NewObjectID(), "not mine", entries)
	require.NoError(t, err)

	routines, err := env.routines.ListRoutines(ctx, user)
	require.NoError(t, err)
	require.Len(t, routines, 2)
	assert.Equal(t, "newer", routines[0].Routine.Name)
	assert.Equal(t, "older", routines[1].Routine.Name)
	assert.Equal(t, "Bench Press", routines[0].Entries[0].Exercise.Name)
}

func TestDeleteRoutine(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := primitive.NewObjectID()
	bench := env.addExercise(t, "Bench Press", "chest")
	view, err := env.routines.CreateRoutine(ctx, owner, "Push", []domain.RoutineExercise{{ExerciseID: bench.ID}})
	require.NoError(t, err)

	err = env.routines.DeleteRoutine(ctx, primitive.NewObjectID(), view.Routine.ID)
	assert.ErrorIs(t, err, ErrAccessDenied)
	_, err = env.store.Routines().GetByID(ctx, view.Routine.ID)
	require.NoError(t, err, "unauthorized delete must not remove the routine")

	require.NoError(t, env.routines.DeleteRoutine(ctx, owner, view.Routine.ID))
	err = env.routines.DeleteRoutine(ctx, owner, view.Routine.ID)
	assert.ErrorIs(t, err, ErrRoutineNotFound)
}

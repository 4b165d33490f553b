package service

import (
	"context"
	"testing"
	"time"

	"liftcoach/server/internal/domain"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStartSessionFromRoutine_SnapshotsRoutine(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := primitive.NewObjectID()

	bench := env.addExercise(t, "Bench Press", "chest")
	squat := env.addExercise(t, "Back Squat", "quadriceps")
	row := env.addExercise(t, "Barbell Row", "middle back")

	routine, err := env.routines.CreateRoutine(ctx, user, "Full Body", []domain.RoutineExercise{
		{ExerciseID: squat.ID, Sets: 5},
		{ExerciseID: bench.ID},
		{ExerciseID: row.ID, Sets: 4},
	})
	require.NoError(t, err)

	session, err := env.workouts.StartSessionFromRoutine(ctx, user, routine.Routine.ID)
	require.NoError(t, err)
	assert.Equal(t, "Full Body", session.Name)
	assert.True(t, session.IsActive)
	assert.Equal(t, env.clock, session.StartedAt)
	require.NotNil(t, session.RoutineID)
	assert.Equal(t, routine.Routine.ID, *session.RoutineID)

	details, err := env.workouts.GetSession(ctx, user, session.ID)
	require.NoError(t, err)
	require.Len(t, details.Exercises, 3)
	for i, want := range []domain.Exercise{squat, bench, row} {
		got := details.Exercises[i]
		assert.Equal(t, i, got.OrderIndex)
		assert.Equal(t, want.Name, got.ExerciseName)
		assert.Equal(t, want.BodyPart, got.MuscleGroup)
		assert.Empty(t, got.Sets)
		require.NotNil(t, got.Exercise)
		assert.Equal(t, want.ID, got.Exercise.ID)
	}
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.CounterSessionsStarted.WithLabelValues("routine")))
}

func TestStartSessionFromRoutine_PushDayScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := primitive.NewObjectID()
	bench := env.addExercise(t, "Bench Press", "chest")

	routine, err := env.routines.CreateRoutine(ctx, user, "Push Day", []domain.RoutineExercise{{ExerciseID: bench.ID, Sets: 3}})
	require.NoError(t, err)
	session, err := env.workouts.StartSessionFromRoutine(ctx, user, routine.Routine.ID)
	require.NoError(t, err)

	details, err := env.workouts.GetSession(ctx, user, session.ID)
	require.NoError(t, err)
	require.Len(t, details.Exercises, 1)
	assert.Equal(t, "Bench Press", details.Exercises[0].ExerciseName)
	assert.Empty(t, details.Exercises[0].Sets)
}

func TestStartSessionFromRoutine_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := primitive.NewObjectID()
	bench := env.addExercise(t, "Bench Press", "chest")
	routine, err := env.routines.CreateRoutine(ctx, owner, "Push", []domain.RoutineExercise{{ExerciseID: bench.ID}})
	require.NoError(t, err)

	_, err = env.workouts.StartSessionFromRoutine(ctx, owner, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.workouts.StartSessionFromRoutine(ctx, primitive.NewObjectID(), routine.Routine.ID)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestStartSessionFromRoutine_LaterRoutineEditsDoNotLeak(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := primitive.NewObjectID()
	bench := env.addExercise(t, "Bench Press", "chest")
	routine, err := env.routines.CreateRoutine(ctx, user, "Push", []domain.RoutineExercise{{ExerciseID: bench.ID}})
	require.NoError(t, err)

	session, err := env.workouts.StartSessionFromRoutine(ctx, user, routine.Routine.ID)
	require.NoError(t, err)
	require.NoError(t, env.routines.DeleteRoutine(ctx, user, routine.Routine.ID))

	details, err := env.workouts.GetSession(ctx, user, session.ID)
	require.NoError(t, err)
	assert.Len(t, details.Exercises, 1)
}

func TestStartSessionFromRoutine_DeletedCatalogExercise(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := primitive.NewObjectID()
	bench := env.addExercise(t, "Bench Press", "chest")
	routine, err := env.routines.CreateRoutine(ctx, user, "Push", []domain.RoutineExercise{{ExerciseID: bench.ID}})
	require.NoError(t, err)

	_, err = env.store.Exercises().DeleteAll(ctx)
	require.NoError(t, err)

	session, err := env.workouts.StartSessionFromRoutine(ctx, user, routine.Routine.ID)
	require.NoError(t, err)
	details, err := env.workouts.GetSession(ctx, user, session.ID)
	require.NoError(t, err)
	require.Len(t, details.Exercises, 1)
	assert.Equal(t, UnknownExerciseName, details.Exercises[0].ExerciseName)
	require.NotNil(t, details.Exercises[0].ExerciseBaseID)
	assert.Equal(t, bench.ID, *details.Exercises[0].ExerciseBaseID)
	assert.Nil(t, details.Exercises[0].Exercise)
}

func TestStartEmptySession_DefaultName(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := primitive.NewObjectID()

	session, err := env.workouts.StartEmptySession(ctx, user, "  ")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSessionName, session.Name)
	assert.Nil(t, session.RoutineID)

	named, err := env.workouts.StartEmptySession(ctx, user, "Evening pump")
	require.NoError(t, err)
	assert.Equal(t, "Evening pump", named.Name)

	details, err := env.workouts.GetSession(ctx, user, session.ID)
	require.NoError(t, err)
	assert.Empty(t, details.Exercises)
}

func TestAttachExercise(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := primitive.NewObjectID()
	curl := env.addExercise(t, "Biceps Curl", "biceps")
	dip := env.addExercise(t, "Dip", "triceps")

	session, err := env.workouts.StartEmptySession(ctx, user, "")
	require.NoError(t, err)

	first, err := env.workouts.AttachExercise(ctx, user, session.ID, curl.ID)
	require.NoError(t, err)
	second, err := env.workouts.AttachExercise(ctx, user, session.ID, dip.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, first.OrderIndex)
	assert.Equal(t, 1, second.OrderIndex)
	assert.Equal(t, "Dip", second.ExerciseName)
	assert.Equal(t, user, second.UserID)

	_, err = env.workouts.AddSet(ctx, user, first.ID, 12, 15)
	require.NoError(t, err)

	_, err = env.workouts.AttachExercise(ctx, primitive.NewObjectID(), session.ID, curl.ID)
	assert.ErrorIs(t, err, ErrAccessDenied)
	_, err = env.workouts.AttachExercise(ctx, user, session.ID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrExerciseNotFound)
	_, err = env.workouts.AttachExercise(ctx, user, primitive.NewObjectID(), curl.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = env.workouts.FinishSession(ctx, user, session.ID, "", nil)
	require.NoError(t, err)
	_, err = env.workouts.AttachExercise(ctx, user, session.ID, curl.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func startWithOneExercise(t *testing.T, env *testEnv, user primitive.ObjectID) (*domain.WorkoutSession, *domain.SessionExercise) {
	t.Helper()
	ctx := context.Background()
	bench := env.addExercise(t, "Bench Press", "chest")
	session, err := env.workouts.StartEmptySession(ctx, user, "")
	require.NoError(t, err)
	se, err := env.workouts.AttachExercise(ctx, user, session.ID, bench.ID)
	require.NoError(t, err)
	return session, se
}

func TestAddSetDeleteSet_Scenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := primitive.NewObjectID()
	_, se := startWithOneExercise(t, env, user)

	_, err := env.workouts.AddSet(ctx, user, se.ID, 10, 60)
	require.NoError(t, err)
	updated, err := env.workouts.AddSet(ctx, user, se.ID, 8, 65)
	require.NoError(t, err)

	require.Len(t, updated.Sets, 2)
	assert.Equal(t, []int{1, 2}, setNumbers(updated.Sets))
	assert.Equal(t, 10, updated.Sets[0].Reps)
	assert.Equal(t, 60.0, updated.Sets[0].Weight)
	assert.Equal(t, 8, updated.Sets[1].Reps)
	assert.Equal(t, 65.0, updated.Sets[1].Weight)
	assert.True(t, updated.Sets[0].Completed)

	afterDelete, err := env.workouts.DeleteSet(ctx, user, se.ID, updated.Sets[0].ID.Hex())
	require.NoError(t, err)
	require.Len(t, afterDelete.Sets, 1)
	assert.Equal(t, 1, afterDelete.Sets[0].SetNumber)
	assert.Equal(t, 8, afterDelete.Sets[0].Reps)
	assert.Equal(t, 65.0, afterDelete.Sets[0].Weight)

	assert.Equal(t, 2.0, testutil.ToFloat64(env.metrics.CounterSetsLogged))
}

func TestAddSetDeleteSet_InterleavingsStayContiguous(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := primitive.NewObjectID()
	_, se := startWithOneExercise(t, env, user)

	var current *domain.SessionExercise
	var err error
	for i := 0; i < 6; i++ {
		current, err = env.workouts.AddSet(ctx, user, se.ID, 10-i, float64(40+5*i))
		require.NoError(t, err)
	}
	for _, idx := range []int{2, 0, 3} {
		current, err = env.workouts.DeleteSet(ctx, user, se.ID, current.Sets[idx].ID.Hex())
		require.NoError(t, err)
		want := make([]int, len(current.Sets))
		for i := range want {
			want[i] = i + 1
		}
		assert.Equal(t, want, setNumbers(current.Sets))
	}
	current, err = env.workouts.AddSet(ctx, user, se.ID, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, setNumbers(current.Sets))
	// Reps 9, 7 and 6 survive in order, followed by the new set.
	assert.Equal(t, []int{9, 7, 6, 1}, []int{current.Sets[0].Reps, current.Sets[1].Reps, current.Sets[2].Reps, current.Sets[3].Reps})
}

func TestDeleteSet_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := primitive.NewObjectID()
	_, se := startWithOneExercise(t, env, user)

	before, err := env.workouts.AddSet(ctx, user, se.ID, 5, 100)
	require.NoError(t, err)

	unknown := primitive.NewObjectID().Hex()
	for i := 0; i < 2; i++ {
		got, err := env.workouts.DeleteSet(ctx, user, se.ID, unknown)
		require.NoError(t, err)
		assert.Equal(t, before.Sets, got.Sets)
	}

	got, err := env.workouts.DeleteSet(ctx, user, se.ID, "not-an-id")
	require.NoError(t, err)
	assert.Equal(t, before.Sets, got.Sets)

	deleted := before.Sets[0].ID.Hex()
	_, err = env.workouts.DeleteSet(ctx, user, se.ID, deleted)
	require.NoError(t, err)
	got, err = env.workouts.DeleteSet(ctx, user, se.ID, deleted)
	require.NoError(t, err)
	assert.Empty(t, got.Sets)
}

func TestSetLogging_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := primitive.NewObjectID()
	_, se := startWithOneExercise(t, env, user)

	_, err := env.workouts.AddSet(ctx, user, primitive.NewObjectID(), 5, 50)
	assert.ErrorIs(t, err, ErrSessionExerciseNotFound)
	_, err = env.workouts.DeleteSet(ctx, user, primitive.NewObjectID(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.workouts.AddSet(ctx, user, se.ID, -1, 50)
	assert.ErrorIs(t, err, ErrValidationFailed)
	_, err = env.workouts.AddSet(ctx, user, se.ID, 5, -2.5)
	assert.ErrorIs(t, err, ErrValidationFailed)

	stranger := primitive.NewObjectID()
	_, err = env.workouts.AddSet(ctx, stranger, se.ID, 5, 50)
	assert.ErrorIs(t, err, ErrAccessDenied)
	_, err = env.workouts.DeleteSet(ctx, stranger, se.ID, primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, ErrAccessDenied)

	stored, err := env.store.SessionExercises().GetByID(ctx, se.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Sets)

	zero, err := env.workouts.AddSet(ctx, user, se.ID, 0, 0)
	require.NoError(t, err)
	assert.Len(t, zero.Sets, 1)
}

func TestAddSet_RetriesOnConflictWithoutLosingSets(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := primitive.NewObjectID()
	_, se := startWithOneExercise(t, env, user)

	env.workouts.sessionExerciseRepo = &interferingSessionExercises{SessionExerciseRepository: env.store.SessionExercises(), n: 2}

	updated, err := env.workouts.AddSet(ctx, user, se.ID, 10, 60)
	require.NoError(t, err)
	require.Len(t, updated.Sets, 3)
	assert.Equal(t, []int{1, 2, 3}, setNumbers(updated.Sets))
	assert.Equal(t, 10, updated.Sets[2].Reps)
	assert.Equal(t, 2.0, testutil.ToFloat64(env.metrics.CounterWriteConflicts.WithLabelValues("session_exercise")))

	stored, err := env.store.SessionExercises().GetByID(ctx, se.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.Sets, stored.Sets)
}

func TestAddSet_GivesUpAfterMaxAttempts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := primitive.NewObjectID()
	_, se := startWithOneExercise(t, env, user)

	env.workouts.sessionExerciseRepo = &interferingSessionExercises{SessionExerciseRepository: env.store.SessionExercises(), n: maxWriteAttempts}

	_, err := env.workouts.AddSet(ctx, user, se.ID, 10, 60)
	assert.ErrorIs(t, err, ErrConcurrentUpdate)
}

func TestFinishSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := primitive.NewObjectID()
	session, se := startWithOneExercise(t, env, user)

	duration := 45
	finished, err := env.workouts.FinishSession(ctx, user, session.ID, "Push Day", &duration)
	require.NoError(t, err)
	assert.False(t, finished.IsActive)
	require.NotNil(t, finished.CompletedAt)
	require.NotNil(t, finished.DurationMinutes)
	assert.Equal(t, 45, *finished.DurationMinutes)
	assert.Equal(t, "Push Day", finished.Name)
	assert.Equal(t, domain.SessionFinished, finished.State())

	_, err = env.workouts.FinishSession(ctx, user, session.ID, "Other name", &duration)
	assert.ErrorIs(t, err, ErrInvalidState)

	stored, err := env.store.Sessions().GetByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "Push Day", stored.Name)

	// History stays editable.
	_, err = env.workouts.AddSet(ctx, user, se.ID, 5, 80)
	assert.NoError(t, err)
}

func TestFinishSession_DerivedDurationAndName(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := primitive.NewObjectID()

	session, err := env.workouts.StartEmptySession(ctx, user, "Leg Day")
	require.NoError(t, err)
	env.advance(52*time.Minute + 30*time.Second)

	finished, err := env.workouts.FinishSession(ctx, user, session.ID, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "Leg Day", finished.Name)
	require.NotNil(t, finished.DurationMinutes)
	assert.Equal(t, 52, *finished.DurationMinutes)
	assert.Equal(t, env.clock, *finished.CompletedAt)
}

func TestFinishSession_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := primitive.NewObjectID()
	session, err := env.workouts.StartEmptySession(ctx, user, "")
	require.NoError(t, err)

	negative := -5
	_, err = env.workouts.FinishSession(ctx, user, session.ID, "", &negative)
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = env.workouts.FinishSession(ctx, primitive.NewObjectID(), session.ID, "", nil)
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = env.workouts.FinishSession(ctx, user, primitive.NewObjectID(), "", nil)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	stored, err := env.store.Sessions().GetByID(ctx, session.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsActive)
}

func TestGetSession_Ownership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := primitive.NewObjectID()
	session, err := env.workouts.StartEmptySession(ctx, user, "")
	require.NoError(t, err)

	_, err = env.workouts.GetSession(ctx, primitive.NewObjectID(), session.ID)
	assert.ErrorIs(t, err, ErrAccessDenied)
	_, err = env.workouts.GetSession(ctx, user, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListSessions_NewestFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := primitive.NewObjectID()

	first, err := env.workouts.StartEmptySession(ctx, user, "first")
	require.NoError(t, err)
	env.advance(24 * time.Hour)
	second, err := env.workouts.StartEmptySession(ctx, user, "second")
	require.NoError(t, err)
	_, err = env.workouts.StartEmptySession(ctx, primitive.NewObjectID(), "someone else")
	require.NoError(t, err)

	sessions, err := env.workouts.ListSessions(ctx, user)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, second.ID, sessions[0].ID)
	assert.Equal(t, first.ID, sessions[1].ID)
}

func TestSummary(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := primitive.NewObjectID()
	squat := env.addExercise(t, "Squat", "quadriceps")
	row := env.addExercise(t, "Row", "middle back")
	thirty := 30

	empty, err := env.workouts.Summary(ctx, user)
	require.NoError(t, err)
	assert.Nil(t, empty.LastWorkout)
	assert.Zero(t, empty.LastWorkoutExerciseCount)
	assert.Zero(t, empty.WeeklyWorkoutCount)

	old, err := env.workouts.StartEmptySession(ctx, user, "old")
	require.NoError(t, err)
	_, err = env.workouts.FinishSession(ctx, user, old.ID, "", &thirty)
	require.NoError(t, err)

	env.advance(10 * 24 * time.Hour)
	recent, err := env.workouts.StartEmptySession(ctx, user, "recent")
	require.NoError(t, err)
	for _, ex := range []domain.Exercise{squat, row} {
		_, err = env.workouts.AttachExercise(ctx, user, recent.ID, ex.ID)
		require.NoError(t, err)
	}
	_, err = env.workouts.FinishSession(ctx, user, recent.ID, "", &thirty)
	require.NoError(t, err)

	env.advance(time.Hour)
	_, err = env.workouts.StartEmptySession(ctx, user, "in progress")
	require.NoError(t, err)
	other, err := env.workouts.StartEmptySession(ctx, primitive.NewObjectID(), "someone else")
	require.NoError(t, err)
	_, err = env.workouts.FinishSession(ctx, other.UserID, other.ID, "", &thirty)
	require.NoError(t, err)

	summary, err := env.workouts.Summary(ctx, user)
	require.NoError(t, err)
	require.NotNil(t, summary.LastWorkout)
	assert.Equal(t, recent.ID, summary.LastWorkout.ID)
	assert.Equal(t, 2, summary.LastWorkoutExerciseCount)
	assert.Equal(t, 1, summary.WeeklyWorkoutCount)
}

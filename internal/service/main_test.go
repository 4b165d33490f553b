package service

import (
	"context"
	"testing"
	"time"

	"liftcoach/server/internal/cache"
	"liftcoach/server/internal/domain"
	"liftcoach/server/internal/metrics"
	"liftcoach/server/internal/repository"
	"liftcoach/server/internal/repository/memory"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	logrus.SetLevel(logrus.WarnLevel)
	goleak.VerifyTestMain(m)
}

type testEnv struct {
	store   *memory.Store
	metrics *metrics.Manager
	cache   *cache.ExerciseCache

	exercises *exerciseService
	routines  *routineService
	workouts  *workoutService

	clock time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	env := &testEnv{
		store:   store,
		metrics: metrics.NewTestManager(),
		cache:   cache.NewExerciseCache(1, time.Minute),
		clock:   time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
	now := func() time.Time { return env.clock }

	env.exercises = NewExerciseService(store.Exercises(), store.Users(), env.cache, nil, env.metrics).(*exerciseService)
	env.exercises.now = now
	env.routines = NewRoutineService(store.Routines(), store.Exercises(), nil).(*routineService)
	env.workouts = NewWorkoutService(store.Sessions(), store.SessionExercises(), store.Routines(), store.Exercises(), nil, env.metrics).(*workoutService)
	env.workouts.now = now
	return env
}

func (e *testEnv) advance(d time.Duration) {
	e.clock = e.clock.Add(d)
}

func (e *testEnv) addExercise(t *testing.T, name, bodyPart string) domain.Exercise {
	t.Helper()
	ex := &domain.Exercise{
		Name:      name,
		BodyPart:  bodyPart,
		Category:  "strength",
		Equipment: gofakeit.RandomString([]string{"barbell", "dumbbell", "body only", "cable"}),
	}
	_, err := e.store.Exercises().Create(context.Background(), ex)
	require.NoError(t, err)
	return *ex
}

func (e *testEnv) addUser(t *testing.T) domain.User {
	t.Helper()
	u := &domain.User{
		FullName:     gofakeit.Name(),
		Email:        gofakeit.Email(),
		PasswordHash: "not-a-real-hash",
	}
	_, err := e.store.Users().Create(context.Background(), u)
	require.NoError(t, err)
	return *u
}

func setNumbers(sets []domain.Set) []int {
	numbers := make([]int, len(sets))
	for i, s := range sets {
		numbers[i] = s.SetNumber
	}
	return numbers
}

// interferingSessionExercises performs a competing write right before each of
// the first n writes, so those writes hit a real version conflict.
type interferingSessionExercises struct {
	repository.SessionExerciseRepository
	n int
}

func (r *interferingSessionExercises) ReplaceSets(ctx context.Context, se *domain.SessionExercise) error {
	if r.n > 0 {
		r.n--
		other, err := r.SessionExerciseRepository.GetByID(ctx, se.ID)
		if err != nil {
			return err
		}
		other.AppendSet(1, 1, time.Now())
		if err := r.SessionExerciseRepository.ReplaceSets(ctx, other); err != nil {
			return err
		}
	}
	return r.SessionExerciseRepository.ReplaceSets(ctx, se)
}

// interferingExercises does the same for catalog feedback writes.
type interferingExercises struct {
	repository.ExerciseRepository
	n int
}

func (r *interferingExercises) UpdateFeedback(ctx context.Context, ex *domain.Exercise) error {
	if r.n > 0 {
		r.n--
		other, err := r.ExerciseRepository.GetByID(ctx, ex.ID)
		if err != nil {
			return err
		}
		other.SetRating(domain.Rating{UserID: primitive.NewObjectID(), Value: domain.RatingModerate})
		if err := r.ExerciseRepository.UpdateFeedback(ctx, other); err != nil {
			return err
		}
	}
	return r.ExerciseRepository.UpdateFeedback(ctx, ex)
}

package mongo

import (
	"context"
	"errors"
	"fmt"

	"liftcoach/server/internal/domain"
	"liftcoach/server/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoSessionExerciseRepository implements repository.SessionExerciseRepository
type mongoSessionExerciseRepository struct {
	collection *mongo.Collection
}

// NewMongoSessionExerciseRepository creates a new SessionExercise repository.
func NewMongoSessionExerciseRepository(db *mongo.Database) repository.SessionExerciseRepository {
	return &mongoSessionExerciseRepository{
		collection: db.Collection(sessionExerciseCollectionName),
	}
}

// Create inserts a single session exercise (attach to a running session).
func (r *mongoSessionExerciseRepository) Create(ctx context.Context, exercise *domain.SessionExercise) (primitive.ObjectID, error) {
	if exercise.SessionID == primitive.NilObjectID || exercise.UserID == primitive.NilObjectID || exercise.ExerciseName == "" {
		return primitive.NilObjectID, errors.New("session exercise requires session, user and exercise name")
	}
	exercise.ID = primitive.NewObjectID()
	if exercise.Sets == nil {
		exercise.Sets = []domain.Set{}
	}

	if _, err := r.collection.InsertOne(ctx, exercise); err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert session exercise: %w", err)
	}
	return exercise.ID, nil
}

// GetByID retrieves a session exercise with its sets.
func (r *mongoSessionExerciseRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.SessionExercise, error) {
	var exercise domain.SessionExercise
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&exercise)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("find session exercise: %w", err)
	}
	return &exercise, nil
}

// GetBySessionID retrieves the exercises of a session in order.
func (r *mongoSessionExerciseRepository) GetBySessionID(ctx context.Context, sessionID primitive.ObjectID) ([]domain.SessionExercise, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "order_index", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"workout_session": sessionID}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("find session exercises: %w", err)
	}
	defer cursor.Close(ctx)

	exercises := []domain.SessionExercise{}
	if err = cursor.All(ctx, &exercises); err != nil {
		return nil, fmt.Errorf("decode session exercises: %w", err)
	}
	return exercises, nil
}

// ReplaceSets writes the whole set list if nobody else wrote since it was read.
func (r *mongoSessionExerciseRepository) ReplaceSets(ctx context.Context, exercise *domain.SessionExercise) error {
	sets := exercise.Sets
	if sets == nil {
		sets = []domain.Set{}
	}
	filter := bson.M{
		"_id":     exercise.ID,
		"user":    exercise.UserID,
		"version": versionFilter(exercise.Version),
	}
	update := bson.M{
		"$set": bson.M{"sets": sets},
		"$inc": bson.M{"version": 1},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update sets: %w", err)
	}
	if result.MatchedCount == 0 {
		if _, err := r.GetByID(ctx, exercise.ID); err != nil {
			return err
		}
		return repository.ErrConflict
	}
	exercise.Version++
	return nil
}

// EnsureSessionExerciseIndexes creates necessary indexes. Call during startup.
func EnsureSessionExerciseIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "workout_session", Value: 1}, {Key: "order_index", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "user", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"liftcoach/server/internal/domain"
	"liftcoach/server/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoExerciseRepository implements repository.ExerciseRepository
type mongoExerciseRepository struct {
	collection *mongo.Collection
}

// NewMongoExerciseRepository creates a new Exercise repository backed by MongoDB.
func NewMongoExerciseRepository(db *mongo.Database) repository.ExerciseRepository {
	return &mongoExerciseRepository{
		collection: db.Collection(exerciseCollectionName),
	}
}

func prepareExercise(exercise *domain.Exercise, now time.Time) {
	if exercise.ID == primitive.NilObjectID {
		exercise.ID = primitive.NewObjectID()
	}
	exercise.CreatedAt = now
	exercise.UpdatedAt = now
	exercise.Stats = domain.ComputeStats(exercise.Ratings)
}

// Create inserts a new exercise into the catalog.
func (r *mongoExerciseRepository) Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	if exercise.Name == "" {
		return primitive.NilObjectID, errors.New("exercise name is required")
	}
	prepareExercise(exercise, time.Now().UTC())

	if _, err := r.collection.InsertOne(ctx, exercise); err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert exercise: %w", err)
	}
	return exercise.ID, nil
}

// InsertMany bulk-inserts catalog entries, used by the seeder.
func (r *mongoExerciseRepository) InsertMany(ctx context.Context, exercises []domain.Exercise) (int, error) {
	if len(exercises) == 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, len(exercises))
	for i := range exercises {
		prepareExercise(&exercises[i], now)
		docs[i] = exercises[i]
	}

	result, err := r.collection.InsertMany(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("insert exercises: %w", err)
	}
	return len(result.InsertedIDs), nil
}

// DeleteAll clears the catalog.
func (r *mongoExerciseRepository) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("delete exercises: %w", err)
	}
	return result.DeletedCount, nil
}

// GetByID retrieves an exercise by its ID.
func (r *mongoExerciseRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	var exercise domain.Exercise
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&exercise)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("find exercise: %w", err)
	}
	return &exercise, nil
}

// GetByIDs retrieves the exercises whose ids are in the list.
func (r *mongoExerciseRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error) {
	if len(ids) == 0 {
		return []domain.Exercise{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find())
}

// Search matches name or body part against the query, or the body part
// against the synonym-expanded list.
func (r *mongoExerciseRepository) Search(ctx context.Context, filter repository.ExerciseFilter) ([]domain.Exercise, error) {
	var or bson.A
	if q := strings.TrimSpace(filter.Query); q != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
		or = append(or, bson.M{"name": pattern}, bson.M{"bodyPart": pattern})
	}
	if len(filter.BodyParts) > 0 {
		exact := make(bson.A, 0, len(filter.BodyParts))
		for _, part := range filter.BodyParts {
			exact = append(exact, primitive.Regex{Pattern: "^" + regexp.QuoteMeta(part) + "$", Options: "i"})
		}
		or = append(or, bson.M{"bodyPart": bson.M{"$in": exact}})
	}

	query := bson.M{}
	if len(or) > 0 {
		query = bson.M{"$or": or}
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	if filter.Limit > 0 {
		findOptions.SetLimit(int64(filter.Limit))
	}
	return r.find(ctx, query, findOptions)
}

// Sample returns up to size random exercises.
func (r *mongoExerciseRepository) Sample(ctx context.Context, size int) ([]domain.Exercise, error) {
	pipeline := mongo.Pipeline{{{Key: "$sample", Value: bson.M{"size": size}}}}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("sample exercises: %w", err)
	}
	defer cursor.Close(ctx)

	exercises := []domain.Exercise{}
	if err = cursor.All(ctx, &exercises); err != nil {
		return nil, fmt.Errorf("decode exercises: %w", err)
	}
	return exercises, nil
}

func (r *mongoExerciseRepository) find(ctx context.Context, filter interface{}, findOptions *options.FindOptions) ([]domain.Exercise, error) {
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, fmt.Errorf("find exercises: %w", err)
	}
	defer cursor.Close(ctx)

	exercises := []domain.Exercise{}
	if err = cursor.All(ctx, &exercises); err != nil {
		return nil, fmt.Errorf("decode exercises: %w", err)
	}
	return exercises, nil
}

// UpdateFeedback writes ratings, notes and the recomputed stats, guarded by the version.
func (r *mongoExerciseRepository) UpdateFeedback(ctx context.Context, exercise *domain.Exercise) error {
	now := time.Now().UTC()
	filter := bson.M{"_id": exercise.ID, "version": versionFilter(exercise.Version)}
	update := bson.M{
		"$set": bson.M{
			"ratings":   exercise.Ratings,
			"notes":     exercise.Notes,
			"stats":     domain.ComputeStats(exercise.Ratings),
			"updatedAt": now,
		},
		"$inc": bson.M{"version": 1},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update exercise feedback: %w", err)
	}
	if result.MatchedCount == 0 {
		// Either deleted in the meantime or another writer bumped the version.
		if _, err := r.GetByID(ctx, exercise.ID); err != nil {
			return err
		}
		return repository.ErrConflict
	}

	exercise.Version++
	exercise.UpdatedAt = now
	exercise.Stats = domain.ComputeStats(exercise.Ratings)
	return nil
}

// EnsureExerciseIndexes creates necessary indexes for the exercises collection.
func EnsureExerciseIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "bodyPart", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

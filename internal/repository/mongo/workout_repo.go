// internal/repository/mongo/workout_repo.go
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"liftcoach/server/internal/domain"
	"liftcoach/server/internal/repository"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/multierr"
)

const cleanupTimeout = 5 * time.Second

// mongoSessionRepository implements repository.SessionRepository
type mongoSessionRepository struct {
	client          *mongo.Client
	sessions        *mongo.Collection
	exercises       *mongo.Collection
	useTransactions bool
}

// NewMongoSessionRepository creates a new WorkoutSession repository.
// Transactions need a replica set; with useTransactions off, a failed
// instantiation is rolled back by deleting what was already written.
func NewMongoSessionRepository(db *mongo.Database, useTransactions bool) repository.SessionRepository {
	return &mongoSessionRepository{
		client:          db.Client(),
		sessions:        db.Collection(sessionCollectionName),
		exercises:       db.Collection(sessionExerciseCollectionName),
		useTransactions: useTransactions,
	}
}

// Create inserts the session together with its exercises.
func (r *mongoSessionRepository) Create(ctx context.Context, session *domain.WorkoutSession, exercises []domain.SessionExercise) error {
	if session.UserID == primitive.NilObjectID {
		return errors.New("workout session requires a user")
	}
	session.ID = primitive.NewObjectID()

	docs := make([]interface{}, len(exercises))
	for i := range exercises {
		exercises[i].ID = primitive.NewObjectID()
		exercises[i].SessionID = session.ID
		exercises[i].UserID = session.UserID
		if exercises[i].Sets == nil {
			exercises[i].Sets = []domain.Set{}
		}
		docs[i] = exercises[i]
	}

	if r.useTransactions {
		return r.createInTransaction(ctx, session, docs)
	}
	return r.createWithCleanup(ctx, session, docs)
}

func (r *mongoSessionRepository) createInTransaction(ctx context.Context, session *domain.WorkoutSession, docs []interface{}) error {
	dbSession, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("start db session: %w", err)
	}
	defer dbSession.EndSession(ctx)

	_, err = dbSession.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := r.sessions.InsertOne(sc, session); err != nil {
			return nil, fmt.Errorf("insert session: %w", err)
		}
		if len(docs) > 0 {
			if _, err := r.exercises.InsertMany(sc, docs); err != nil {
				return nil, fmt.Errorf("insert session exercises: %w", err)
			}
		}
		return nil, nil
	})
	return err
}

func (r *mongoSessionRepository) createWithCleanup(ctx context.Context, session *domain.WorkoutSession, docs []interface{}) error {
	if _, err := r.sessions.InsertOne(ctx, session); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	if len(docs) == 0 {
		return nil
	}

	_, err := r.exercises.InsertMany(ctx, docs)
	if err == nil {
		return nil
	}
	err = fmt.Errorf("insert session exercises: %w", err)

	// The request context may already be cancelled; cleanup must still run.
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()

	_, delExErr := r.exercises.DeleteMany(cleanupCtx, bson.M{"workout_session": session.ID})
	_, delSessErr := r.sessions.DeleteOne(cleanupCtx, bson.M{"_id": session.ID})
	if cleanupErr := multierr.Combine(delExErr, delSessErr); cleanupErr != nil {
		log.Errorf("rollback of session %s failed: %s", session.ID.Hex(), cleanupErr)
		return multierr.Append(err, cleanupErr)
	}
	return err
}

// GetByID retrieves a single session by its ID.
func (r *mongoSessionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutSession, error) {
	var session domain.WorkoutSession
	err := r.sessions.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	return &session, nil
}

// GetByUserID retrieves the session history of a user, newest first.
func (r *mongoSessionRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.WorkoutSession, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "started_at", Value: -1}})

	cursor, err := r.sessions.Find(ctx, bson.M{"user": userID}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("find sessions: %w", err)
	}
	defer cursor.Close(ctx)

	sessions := []domain.WorkoutSession{}
	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, fmt.Errorf("decode sessions: %w", err)
	}
	return sessions, nil
}

// Finish closes an active session. Matching on is_active makes the transition one-shot.
func (r *mongoSessionRepository) Finish(ctx context.Context, id, userID primitive.ObjectID, name string, durationMinutes int, completedAt time.Time) (*domain.WorkoutSession, error) {
	filter := bson.M{"_id": id, "user": userID, "is_active": true}
	update := bson.M{
		"$set": bson.M{
			"is_active":        false,
			"completed_at":     completedAt,
			"name":             name,
			"duration_minutes": durationMinutes,
		},
	}
	findOptions := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var session domain.WorkoutSession
	err := r.sessions.FindOneAndUpdate(ctx, filter, update, findOptions).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrConflict
		}
		return nil, fmt.Errorf("finish session: %w", err)
	}
	return &session, nil
}

// EnsureSessionIndexes creates necessary indexes. Call during startup.
func EnsureSessionIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user", Value: 1}, {Key: "started_at", Value: -1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

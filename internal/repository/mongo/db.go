package mongo

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

// Collection names.
const (
	userCollectionName            = "users"
	exerciseCollectionName        = "exercises"
	routineCollectionName         = "workout_routines"
	sessionCollectionName         = "workout_sessions"
	sessionExerciseCollectionName = "workout_exercises"
)

// ConnectDB establishes a connection to MongoDB using the provided URI.
// It returns the mongo.Client which can be used to access databases and collections.
func ConnectDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	// Ping the primary node to verify the connection. The initial connect
	// succeeds lazily even when the server is unresponsive.
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// versionFilter matches a stored version. Documents written without a version
// field (older imports) count as version 0; $inc then starts them at 1.
func versionFilter(version int64) any {
	if version == 0 {
		return bson.M{"$in": bson.A{0, nil}}
	}
	return version
}

// EnsureIndexes creates the indexes of every collection used by the application.
// A failing collection is logged and does not stop the others.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	var firstErr error
	for name, ensure := range map[string]func(context.Context, *mongo.Collection) error{
		userCollectionName:            EnsureUserIndexes,
		exerciseCollectionName:        EnsureExerciseIndexes,
		routineCollectionName:         EnsureRoutineIndexes,
		sessionCollectionName:         EnsureSessionIndexes,
		sessionExerciseCollectionName: EnsureSessionExerciseIndexes,
	} {
		if err := ensure(ctx, db.Collection(name)); err != nil {
			log.Warnf("failed to create indexes for collection %s: %s", name, err)
			if firstErr == nil {
				firstErr = fmt.Errorf("indexes %s: %w", name, err)
			}
		}
	}
	return firstErr
}

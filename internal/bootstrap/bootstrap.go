// Package bootstrap builds the infrastructure shared by the server and the CLI
// from configuration.
package bootstrap

import (
	"context"
	"fmt"

	"liftcoach/server/internal/config"
	"liftcoach/server/internal/repository"
	"liftcoach/server/internal/repository/memory"
	"liftcoach/server/internal/repository/mongo"
	"liftcoach/server/internal/storage"

	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	log "github.com/sirupsen/logrus"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
)

type Repositories struct {
	Users            repository.UserRepository
	Exercises        repository.ExerciseRepository
	Routines         repository.RoutineRepository
	Sessions         repository.SessionRepository
	SessionExercises repository.SessionExerciseRepository

	// DB is nil for the memory driver.
	DB *mongodriver.Database
}

// OpenRepositories connects to the configured database. The returned close
// function is never nil.
func OpenRepositories(ctx context.Context, cfg config.DatabaseConfig) (*Repositories, func(), error) {
	switch cfg.Driver {
	case "memory":
		log.Warn("using the in-memory store, data is lost on exit")
		repos := &Repositories{}
		repos.Users, repos.Exercises, repos.Routines, repos.Sessions, repos.SessionExercises = memory.NewStore().Repositories()
		return repos, func() {}, nil

	case "mongo":
		client, err := mongo.ConnectDB(cfg.URI)
		if err != nil {
			return nil, func() {}, err
		}
		closeFn := func() {
			log.Info("disconnecting MongoDB")
			if err := mongo.DisconnectDB(client); err != nil {
				log.Errorf("failed to disconnect MongoDB: %s", err)
			}
		}
		db := client.Database(cfg.Name)
		if cfg.Transactions {
			log.Info("session creation uses multi-document transactions")
		}
		return &Repositories{
			Users:            mongo.NewMongoUserRepository(db),
			Exercises:        mongo.NewMongoExerciseRepository(db),
			Routines:         mongo.NewMongoRoutineRepository(db),
			Sessions:         mongo.NewMongoSessionRepository(db, cfg.Transactions),
			SessionExercises: mongo.NewMongoSessionExerciseRepository(db),
			DB:               db,
		}, closeFn, nil

	default:
		return nil, func() {}, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// EnsureIndexes is a no-op for the memory driver.
func (r *Repositories) EnsureIndexes(ctx context.Context) error {
	if r.DB == nil {
		return nil
	}
	return mongo.EnsureIndexes(ctx, r.DB)
}

// OpenStorage returns nil storage when no bucket is configured.
func OpenStorage(ctx context.Context, cfg config.S3Config) (storage.FileStorage, error) {
	if cfg.BucketName == "" {
		log.Info("no image bucket configured, catalog images are served as stored")
		return nil, nil
	}
	return storage.NewS3Storage(ctx, cfg)
}

// NewRateLimiter returns a nil limiter when no redis address is configured.
func NewRateLimiter(ctx context.Context, cfg config.RedisConfig) (*redis_rate.Limiter, func(), error) {
	if cfg.Address == "" {
		log.Info("no redis configured, rate limiting disabled")
		return nil, func() {}, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, func() {}, fmt.Errorf("redis ping: %w", err)
	}
	closeFn := func() {
		if err := rdb.Close(); err != nil {
			log.Errorf("failed to close redis client: %s", err)
		}
	}
	return redis_rate.NewLimiter(rdb), closeFn, nil
}

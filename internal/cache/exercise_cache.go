package cache

import (
	"time"

	"liftcoach/server/internal/domain"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const megabyte = 1024 * 1024

// ExerciseCache keeps catalog documents keyed by id. Entries are stored as
// BSON so private fields (notes, version) survive the round trip.
type ExerciseCache struct {
	cache *freecache.Cache
	ttl   int // seconds
}

// NewExerciseCache returns nil when sizeMB is not positive; a nil cache
// misses on every read and ignores writes.
func NewExerciseCache(sizeMB int, ttl time.Duration) *ExerciseCache {
	if sizeMB <= 0 {
		return nil
	}
	return &ExerciseCache{
		cache: freecache.NewCache(sizeMB * megabyte),
		ttl:   int(ttl / time.Second),
	}
}

func key(id primitive.ObjectID) []byte {
	return []byte("exercise::" + id.Hex())
}

func (c *ExerciseCache) Get(id primitive.ObjectID) (*domain.Exercise, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.cache.Get(key(id))
	if err != nil {
		return nil, false
	}
	var exercise domain.Exercise
	if err := bson.Unmarshal(raw, &exercise); err != nil {
		log.Errorf("failed to decode cached exercise %s: %s", id.Hex(), err)
		c.cache.Del(key(id))
		return nil, false
	}
	return &exercise, true
}

func (c *ExerciseCache) Set(exercise *domain.Exercise) {
	if c == nil || exercise == nil {
		return
	}
	raw, err := bson.Marshal(exercise)
	if err != nil {
		log.Errorf("failed to encode exercise %s for cache: %s", exercise.ID.Hex(), err)
		return
	}
	if err := c.cache.Set(key(exercise.ID), raw, c.ttl); err != nil {
		log.Debugf("exercise %s not cached: %s", exercise.ID.Hex(), err)
	}
}

func (c *ExerciseCache) Invalidate(id primitive.ObjectID) {
	if c == nil {
		return
	}
	c.cache.Del(key(id))
}

// Stats returns the hit and miss counters of the underlying cache.
func (c *ExerciseCache) Stats() (hits, misses int64) {
	if c == nil {
		return 0, 0
	}
	return c.cache.HitCount(), c.cache.MissCount()
}

// LogStats reports the cache counters, typically on shutdown.
func (c *ExerciseCache) LogStats() {
	if c == nil {
		return
	}
	hits, misses := c.Stats()
	log.WithFields(log.Fields{
		"hits":    hits,
		"misses":  misses,
		"entries": c.cache.EntryCount(),
		"evicted": c.cache.EvacuateCount(),
	}).Info("exercise cache stats")
}

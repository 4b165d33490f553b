package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"liftcoach/server/internal/cache"
	"liftcoach/server/internal/domain"
	"liftcoach/server/internal/metrics"
	"liftcoach/server/internal/repository"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	randomSampleSize = 20
	searchLimit      = 50
	maxNoteLength    = 2000
	unknownUserName  = "Unknown user"
)

// ExerciseDetails is an exercise with the names of the users who rated it.
type ExerciseDetails struct {
	Exercise    *domain.Exercise
	AuthorNames map[primitive.ObjectID]string
}

type ExerciseService interface {
	// SearchExercises returns a random sample when query and bodyPart are both empty.
	SearchExercises(ctx context.Context, query, bodyPart string) ([]domain.Exercise, error)
	GetExercise(ctx context.Context, exerciseID primitive.ObjectID) (*ExerciseDetails, error)
	RateExercise(ctx context.Context, userID, exerciseID primitive.ObjectID, value domain.RatingValue, comment string) (*ExerciseDetails, error)
	// GetNote returns nil when the user has no note on the exercise.
	GetNote(ctx context.Context, userID, exerciseID primitive.ObjectID) (*domain.Note, error)
	// SaveNote upserts the caller's note. Empty text deletes it and returns nil.
	SaveNote(ctx context.Context, userID, exerciseID primitive.ObjectID, text string) (*domain.Note, error)
}

// exerciseService implements the ExerciseService interface.
type exerciseService struct {
	exerciseRepo repository.ExerciseRepository
	userRepo     repository.UserRepository
	cache        *cache.ExerciseCache
	images       *ImageResolver
	metrics      *metrics.Manager
	now          func() time.Time
}

// NewExerciseService creates a new instance of exerciseService.
// exerciseCache and images may be nil.
func NewExerciseService(
	exerciseRepo repository.ExerciseRepository,
	userRepo repository.UserRepository,
	exerciseCache *cache.ExerciseCache,
	images *ImageResolver,
	metricsManager *metrics.Manager,
) ExerciseService {
	return &exerciseService{
		exerciseRepo: exerciseRepo,
		userRepo:     userRepo,
		cache:        exerciseCache,
		images:       images,
		metrics:      metricsManager,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func mapExerciseError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrExerciseNotFound
	}
	return err
}

func (s *exerciseService) SearchExercises(ctx context.Context, query, bodyPart string) ([]domain.Exercise, error) {
	query = strings.TrimSpace(query)
	bodyPart = strings.TrimSpace(bodyPart)

	var (
		exercises []domain.Exercise
		err       error
	)
	if query == "" && bodyPart == "" {
		exercises, err = s.exerciseRepo.Sample(ctx, randomSampleSize)
	} else {
		filter := repository.ExerciseFilter{Query: query, Limit: searchLimit}
		if bodyPart != "" {
			filter.BodyParts = ExpandBodyPart(bodyPart)
		}
		if query != "" && isBodyPartGroup(query) {
			filter.BodyParts = append(filter.BodyParts, ExpandBodyPart(query)...)
		}
		exercises, err = s.exerciseRepo.Search(ctx, filter)
	}
	if err != nil {
		return nil, err
	}

	for i := range exercises {
		s.images.ResolveExercise(ctx, &exercises[i])
	}
	return exercises, nil
}

// load reads an exercise through the cache. Writers must bypass it to get the current version.
func (s *exerciseService) load(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	if ex, ok := s.cache.Get(exerciseID); ok {
		s.metrics.CounterCache.WithLabelValues("hit").Inc()
		return ex, nil
	}
	s.metrics.CounterCache.WithLabelValues("miss").Inc()

	ex, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		return nil, mapExerciseError(err)
	}
	s.cache.Set(ex)
	return ex, nil
}

func (s *exerciseService) GetExercise(ctx context.Context, exerciseID primitive.ObjectID) (*ExerciseDetails, error) {
	ex, err := s.load(ctx, exerciseID)
	if err != nil {
		return nil, err
	}
	return s.details(ctx, ex)
}

func (s *exerciseService) details(ctx context.Context, ex *domain.Exercise) (*ExerciseDetails, error) {
	names := make(map[primitive.ObjectID]string, len(ex.Ratings))
	if len(ex.Ratings) > 0 {
		ids := make([]primitive.ObjectID, 0, len(ex.Ratings))
		for _, r := range ex.Ratings {
			ids = append(ids, r.UserID)
		}
		users, err := s.userRepo.GetByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for i := range users {
			names[users[i].ID] = users[i].DisplayName()
		}
		for _, id := range ids {
			if _, ok := names[id]; !ok {
				names[id] = unknownUserName
			}
		}
	}

	s.images.ResolveExercise(ctx, ex)
	return &ExerciseDetails{Exercise: ex, AuthorNames: names}, nil
}

func (s *exerciseService) RateExercise(ctx context.Context, userID, exerciseID primitive.ObjectID, value domain.RatingValue, comment string) (*ExerciseDetails, error) {
	if !value.Valid() {
		return nil, validationError("rating value must be one of INJURED, NO_FEEL, MODERATE, EFFECTIVE")
	}
	comment = strings.TrimSpace(comment)
	if utf8.RuneCountInString(comment) > domain.MaxRatingCommentLength {
		return nil, validationError("comment must be at most %d characters", domain.MaxRatingCommentLength)
	}

	var updated *domain.Exercise
	err := retryOnConflict(ctx, s.metrics, "exercise", func() error {
		ex, err := s.exerciseRepo.GetByID(ctx, exerciseID)
		if err != nil {
			return mapExerciseError(err)
		}
		ex.SetRating(domain.Rating{
			UserID:  userID,
			Value:   value,
			Comment: comment,
			Date:    s.now(),
		})
		if err := s.exerciseRepo.UpdateFeedback(ctx, ex); err != nil {
			return mapExerciseError(err)
		}
		updated = ex
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(exerciseID)
	s.metrics.CounterRatings.WithLabelValues(string(value)).Inc()
	log.Debugf("user %s rated exercise %s as %s", userID.Hex(), exerciseID.Hex(), value)

	return s.details(ctx, updated)
}

func (s *exerciseService) GetNote(ctx context.Context, userID, exerciseID primitive.ObjectID) (*domain.Note, error) {
	ex, err := s.load(ctx, exerciseID)
	if err != nil {
		return nil, err
	}
	note, ok := ex.NoteFor(userID)
	if !ok {
		return nil, nil
	}
	return &note, nil
}

func (s *exerciseService) SaveNote(ctx context.Context, userID, exerciseID primitive.ObjectID, text string) (*domain.Note, error) {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) > maxNoteLength {
		return nil, validationError("note must be at most %d characters", maxNoteLength)
	}

	note := domain.Note{UserID: userID, Text: text}
	err := retryOnConflict(ctx, s.metrics, "exercise", func() error {
		ex, err := s.exerciseRepo.GetByID(ctx, exerciseID)
		if err != nil {
			return mapExerciseError(err)
		}
		note.UpdatedAt = s.now()
		ex.SetNote(note)
		return mapExerciseError(s.exerciseRepo.UpdateFeedback(ctx, ex))
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(exerciseID)
	if text == "" {
		return nil, nil
	}
	return &note, nil
}

package seed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"liftcoach/server/internal/domain"
	"liftcoach/server/internal/repository"
	"liftcoach/server/internal/storage"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultSourceURL    = "https://raw.githubusercontent.com/yuhonas/free-exercise-db/main/dist/exercises.json"
	DefaultImageBaseURL = "https://raw.githubusercontent.com/yuhonas/free-exercise-db/main/exercises/"

	fallbackBodyPart  = "full body"
	fallbackEquipment = "body weight"
	mirrorKeyPrefix   = "exercises/"
	maxImageBytes     = 10 << 20
)

var ErrEmptySource = errors.New("exercise source returned no exercises")

// sourceExercise is one entry of the free-exercise-db dataset.
type sourceExercise struct {
	Name           string   `json:"name"`
	Category       string   `json:"category"`
	Equipment      *string  `json:"equipment"`
	PrimaryMuscles []string `json:"primaryMuscles"`
	Instructions   []string `json:"instructions"`
	Images         []string `json:"images"`
}

type Options struct {
	SourceURL    string
	ImageBaseURL string
	// Reset removes the existing catalog before inserting.
	Reset bool
	// MirrorImages copies every image into the bucket and stores object keys
	// instead of external URLs. Needs a FileStorage.
	MirrorImages bool
}

type Result struct {
	Imported       int
	Removed        int64
	ImagesMirrored int
	ImagesFailed   int
}

type Importer struct {
	exerciseRepo repository.ExerciseRepository
	files        storage.FileStorage
	client       *http.Client
	now          func() time.Time
}

// NewImporter creates an Importer. files may be nil when images are not mirrored.
func NewImporter(exerciseRepo repository.ExerciseRepository, files storage.FileStorage, client *http.Client) *Importer {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Importer{
		exerciseRepo: exerciseRepo,
		files:        files,
		client:       client,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (i *Importer) Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.SourceURL == "" {
		opts.SourceURL = DefaultSourceURL
	}
	if opts.ImageBaseURL == "" {
		opts.ImageBaseURL = DefaultImageBaseURL
	}
	if opts.MirrorImages && i.files == nil {
		return nil, errors.New("image mirroring requires object storage to be configured")
	}

	log.Infof("downloading exercises from %s", opts.SourceURL)
	source, err := i.fetch(ctx, opts.SourceURL)
	if err != nil {
		return nil, err
	}
	if len(source) == 0 {
		return nil, ErrEmptySource
	}

	result := &Result{}
	exercises := make([]domain.Exercise, 0, len(source))
	for _, src := range source {
		ex := convert(src, opts.ImageBaseURL, i.now())
		if ex.Name == "" {
			continue
		}
		if opts.MirrorImages {
			mirrored, failed := i.mirrorImages(ctx, ex.Images)
			ex.Images = mirrored
			result.ImagesMirrored += len(ex.Images) - failed
			result.ImagesFailed += failed
		}
		exercises = append(exercises, ex)
	}

	if opts.Reset {
		removed, err := i.exerciseRepo.DeleteAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("clearing exercise catalog: %w", err)
		}
		result.Removed = removed
		log.Infof("removed %d existing exercises", removed)
	}

	imported, err := i.exerciseRepo.InsertMany(ctx, exercises)
	if err != nil {
		return nil, fmt.Errorf("inserting exercises: %w", err)
	}
	result.Imported = imported
	log.WithFields(log.Fields{
		"imported":        result.Imported,
		"images_mirrored": result.ImagesMirrored,
		"images_failed":   result.ImagesFailed,
	}).Info("exercise catalog seeded")
	return result, nil
}

func (i *Importer) fetch(ctx context.Context, url string) ([]sourceExercise, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	resp, err := i.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading exercises: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading exercises: unexpected status %s", resp.Status)
	}

	var source []sourceExercise
	if err := json.NewDecoder(resp.Body).Decode(&source); err != nil {
		return nil, fmt.Errorf("decoding exercises: %w", err)
	}
	return source, nil
}

func convert(src sourceExercise, imageBaseURL string, now time.Time) domain.Exercise {
	bodyPart := fallbackBodyPart
	if len(src.PrimaryMuscles) > 0 && src.PrimaryMuscles[0] != "" {
		bodyPart = src.PrimaryMuscles[0]
	}
	equipment := fallbackEquipment
	if src.Equipment != nil && *src.Equipment != "" {
		equipment = *src.Equipment
	}

	images := make([]string, 0, len(src.Images))
	for _, img := range src.Images {
		images = append(images, strings.TrimSuffix(imageBaseURL, "/")+"/"+strings.TrimPrefix(img, "/"))
	}

	return domain.Exercise{
		Name:         strings.TrimSpace(src.Name),
		Category:     src.Category,
		BodyPart:     bodyPart,
		Equipment:    equipment,
		Instructions: src.Instructions,
		Images:       images,
		Stats:        domain.ComputeStats(nil),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// mirrorImages uploads every URL to the bucket. An image that cannot be copied
// keeps its external URL.
func (i *Importer) mirrorImages(ctx context.Context, urls []string) ([]string, int) {
	refs := make([]string, 0, len(urls))
	failed := 0
	for _, url := range urls {
		key, err := i.mirror(ctx, url)
		if err != nil {
			log.Warnf("mirroring image %s: %s", url, err)
			refs = append(refs, url)
			failed++
			continue
		}
		refs = append(refs, key)
	}
	return refs, failed
}

func (i *Importer) mirror(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := i.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}

	// S3 needs a seekable body to sign the payload over plain HTTP endpoints.
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return "", err
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	key := mirrorKeyPrefix + uuid.NewString() + path.Ext(url)
	if err := i.files.PutObject(ctx, key, contentType, bytes.NewReader(data)); err != nil {
		return "", err
	}
	return key, nil
}

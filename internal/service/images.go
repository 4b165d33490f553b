package service

import (
	"context"
	"time"

	"liftcoach/server/internal/domain"
	"liftcoach/server/internal/storage"

	log "github.com/sirupsen/logrus"
)

// ImageResolver turns catalog image entries into URLs a client can load.
// Full URLs pass through; anything else is an object key and gets presigned.
// A nil resolver, or one without storage, returns entries unchanged.
type ImageResolver struct {
	storage storage.FileStorage
	expiry  time.Duration
}

func NewImageResolver(fs storage.FileStorage, expiry time.Duration) *ImageResolver {
	if expiry <= 0 {
		expiry = storage.DefaultPresignedURLExpiry
	}
	return &ImageResolver{storage: fs, expiry: expiry}
}

func (r *ImageResolver) Resolve(ctx context.Context, refs []string) []string {
	if len(refs) == 0 {
		return refs
	}
	resolved := make([]string, len(refs))
	for i, ref := range refs {
		resolved[i] = ref
		if r == nil || r.storage == nil || storage.IsExternalURL(ref) {
			continue
		}
		url, err := r.storage.GeneratePresignedDownloadURL(ctx, ref, r.expiry)
		if err != nil {
			log.Warnf("presign image %q: %s", ref, err)
			continue
		}
		resolved[i] = url
	}
	return resolved
}

// ResolveExercise rewrites the images of ex in place. ex must not be shared.
func (r *ImageResolver) ResolveExercise(ctx context.Context, ex *domain.Exercise) {
	if ex == nil {
		return
	}
	ex.Images = r.Resolve(ctx, ex.Images)
}

package service

import (
	"context"
	"errors"

	"liftcoach/server/internal/metrics"
	"liftcoach/server/internal/repository"

	log "github.com/sirupsen/logrus"
)

// maxWriteAttempts bounds read-modify-write retries on version conflicts.
const maxWriteAttempts = 5

// retryOnConflict runs attempt until it stops failing with repository.ErrConflict.
// attempt must re-read the document it writes.
func retryOnConflict(ctx context.Context, m *metrics.Manager, entity string, attempt func() error) error {
	for i := 1; ; i++ {
		err := attempt()
		if !errors.Is(err, repository.ErrConflict) {
			return err
		}
		m.CounterWriteConflicts.WithLabelValues(entity).Inc()
		if i >= maxWriteAttempts {
			log.Warnf("%s write still conflicting after %d attempts", entity, i)
			return ErrConcurrentUpdate
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		log.Debugf("%s write conflict, retrying (attempt %d)", entity, i+1)
	}
}

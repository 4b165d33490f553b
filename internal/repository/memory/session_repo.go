package memory

import (
	"context"
	"errors"
	"sort"
	"time"

	"liftcoach/server/internal/domain"
	"liftcoach/server/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type sessionRecord struct {
	session domain.WorkoutSession
	seq     int64
}

type sessionExerciseRecord struct {
	exercise domain.SessionExercise
	seq      int64
}

type sessionRepository struct {
	s *Store
}

func cloneSession(ws domain.WorkoutSession) domain.WorkoutSession {
	if ws.RoutineID != nil {
		id := *ws.RoutineID
		ws.RoutineID = &id
	}
	if ws.CompletedAt != nil {
		t := *ws.CompletedAt
		ws.CompletedAt = &t
	}
	if ws.DurationMinutes != nil {
		d := *ws.DurationMinutes
		ws.DurationMinutes = &d
	}
	return ws
}

func cloneSessionExercise(se domain.SessionExercise) domain.SessionExercise {
	if se.ExerciseBaseID != nil {
		id := *se.ExerciseBaseID
		se.ExerciseBaseID = &id
	}
	se.Sets = append([]domain.Set{}, se.Sets...)
	return se
}

// Create stores the session and its exercises under a single write lock.
func (r *sessionRepository) Create(_ context.Context, session *domain.WorkoutSession, exercises []domain.SessionExercise) error {
	if session.UserID == primitive.NilObjectID {
		return errors.New("workout session requires a user")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	session.ID = primitive.NewObjectID()
	for i := range exercises {
		exercises[i].ID = primitive.NewObjectID()
		exercises[i].SessionID = session.ID
		exercises[i].UserID = session.UserID
		if exercises[i].Sets == nil {
			exercises[i].Sets = []domain.Set{}
		}
	}

	r.s.sessions[session.ID.Hex()] = sessionRecord{session: cloneSession(*session), seq: r.s.next()}
	for _, se := range exercises {
		r.s.sessionExercises[se.ID.Hex()] = sessionExerciseRecord{exercise: cloneSessionExercise(se), seq: r.s.next()}
	}
	return nil
}

func (r *sessionRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.WorkoutSession, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rec, ok := r.s.sessions[id.Hex()]
	if !ok {
		return nil, repository.ErrNotFound
	}
	ws := cloneSession(rec.session)
	return &ws, nil
}

func (r *sessionRepository) GetByUserID(_ context.Context, userID primitive.ObjectID) ([]domain.WorkoutSession, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var recs []sessionRecord
	for _, rec := range r.s.sessions {
		if rec.session.UserID == userID {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		a, b := recs[i].session.StartedAt, recs[j].session.StartedAt
		if !a.Equal(b) {
			return a.After(b)
		}
		return recs[i].seq > recs[j].seq
	})

	sessions := make([]domain.WorkoutSession, 0, len(recs))
	for _, rec := range recs {
		sessions = append(sessions, cloneSession(rec.session))
	}
	return sessions, nil
}

func (r *sessionRepository) Finish(_ context.Context, id, userID primitive.ObjectID, name string, durationMinutes int, completedAt time.Time) (*domain.WorkoutSession, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.sessions[id.Hex()]
	if !ok || rec.session.UserID != userID || !rec.session.IsActive {
		return nil, repository.ErrConflict
	}

	rec.session.IsActive = false
	rec.session.Name = name
	rec.session.CompletedAt = &completedAt
	rec.session.DurationMinutes = &durationMinutes
	r.s.sessions[id.Hex()] = rec

	ws := cloneSession(rec.session)
	return &ws, nil
}

// internal/domain/session.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultSessionName names sessions started without a routine or a name.
const DefaultSessionName = "Quick Workout"

// SessionState is derived from IsActive/CompletedAt.
type SessionState string

const (
	SessionActive   SessionState = "ACTIVE"
	SessionFinished SessionState = "FINISHED"
)

// WorkoutSession is one concrete, time-bounded performance of a workout.
type WorkoutSession struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	UserID          primitive.ObjectID  `bson:"user" json:"user"`
	RoutineID       *primitive.ObjectID `bson:"routine,omitempty" json:"routine,omitempty"` // source routine, informational
	Name            string              `bson:"name" json:"name"`
	IsActive        bool                `bson:"is_active" json:"is_active"`
	StartedAt       time.Time           `bson:"started_at" json:"started_at"`
	CompletedAt     *time.Time          `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
	DurationMinutes *int                `bson:"duration_minutes,omitempty" json:"duration_minutes,omitempty"`
}

// State reports ACTIVE until the session has been finished.
func (s *WorkoutSession) State() SessionState {
	if !s.IsActive && s.CompletedAt != nil {
		return SessionFinished
	}
	return SessionActive
}

// ElapsedMinutes is the whole number of minutes between StartedAt and now.
func (s *WorkoutSession) ElapsedMinutes(now time.Time) int {
	if now.Before(s.StartedAt) {
		return 0
	}
	return int(now.Sub(s.StartedAt) / time.Minute)
}

// SessionExercise is one exercise performed within one session.
// ExerciseName and MuscleGroup are a snapshot taken when it was created.
type SessionExercise struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	SessionID      primitive.ObjectID  `bson:"workout_session" json:"workout_session"`
	UserID         primitive.ObjectID  `bson:"user" json:"user"` // owner of the session, denormalized for auth filters
	ExerciseBaseID *primitive.ObjectID `bson:"exercise_base,omitempty" json:"exercise_base,omitempty"`
	ExerciseName   string              `bson:"exercise_name" json:"exercise_name"`
	MuscleGroup    string              `bson:"muscle_group,omitempty" json:"muscle_group,omitempty"`
	OrderIndex     int                 `bson:"order_index" json:"order_index"`
	Sets           []Set               `bson:"sets" json:"sets"`
	Version        int64               `bson:"version" json:"-"`
}

// Set is a single logged (weight, reps) pair.
type Set struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	SetNumber int                `bson:"set_number" json:"set_number"`
	Weight    float64            `bson:"weight" json:"weight"`
	Reps      int                `bson:"reps" json:"reps"`
	Completed bool               `bson:"completed" json:"completed"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// AppendSet adds a completed set numbered after the current last one.
func (se *SessionExercise) AppendSet(reps int, weight float64, now time.Time) Set {
	set := Set{
		ID:        primitive.NewObjectID(),
		SetNumber: len(se.Sets) + 1,
		Weight:    weight,
		Reps:      reps,
		Completed: true,
		CreatedAt: now,
	}
	se.Sets = append(se.Sets, set)
	return set
}

// RemoveSet drops the set with setID and renumbers the rest 1..N.
// It reports whether a set was removed.
func (se *SessionExercise) RemoveSet(setID primitive.ObjectID) bool {
	kept := make([]Set, 0, len(se.Sets))
	for _, s := range se.Sets {
		if s.ID != setID {
			kept = append(kept, s)
		}
	}
	removed := len(kept) != len(se.Sets)
	for i := range kept {
		kept[i].SetNumber = i + 1
	}
	se.Sets = kept
	return removed
}

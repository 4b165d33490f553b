// internal/domain/routine.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultTargetSets is used when a routine entry does not specify a set count.
const DefaultTargetSets = 3

// WorkoutRoutine is a reusable, user-owned template of exercises.
type WorkoutRoutine struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user" json:"user"`
	Name      string             `bson:"name" json:"name"`
	Exercises []RoutineExercise  `bson:"exercises" json:"exercises"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

// RoutineExercise references a catalog exercise with a target set count.
type RoutineExercise struct {
	ExerciseID primitive.ObjectID `bson:"exercise" json:"exercise"`
	Sets       int                `bson:"sets" json:"sets"`
}

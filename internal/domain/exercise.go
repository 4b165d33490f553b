// internal/domain/exercise.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RatingValue is the qualitative feedback a user leaves on an exercise.
type RatingValue string

const (
	RatingInjured   RatingValue = "INJURED"
	RatingNoFeel    RatingValue = "NO_FEEL"
	RatingModerate  RatingValue = "MODERATE"
	RatingEffective RatingValue = "EFFECTIVE"
)

// MaxRatingCommentLength is the longest comment accepted with a rating.
const MaxRatingCommentLength = 280

// RatingValues lists every accepted rating value.
var RatingValues = []RatingValue{RatingInjured, RatingNoFeel, RatingModerate, RatingEffective}

// Valid reports whether v is one of the enumerated rating values.
func (v RatingValue) Valid() bool {
	for _, known := range RatingValues {
		if v == known {
			return true
		}
	}
	return false
}

// Exercise is a shared catalog entry. Ratings and notes are per-user slices
// stored inside the shared document.
type Exercise struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Category     string             `bson:"category,omitempty" json:"category,omitempty"`
	BodyPart     string             `bson:"bodyPart,omitempty" json:"bodyPart,omitempty"`
	Equipment    string             `bson:"equipment,omitempty" json:"equipment,omitempty"`
	Instructions []string           `bson:"instructions,omitempty" json:"instructions,omitempty"`
	Images       []string           `bson:"images,omitempty" json:"images,omitempty"` // URLs or object keys in the image bucket

	Ratings []Rating      `bson:"ratings,omitempty" json:"ratings,omitempty"`
	Notes   []Note        `bson:"notes,omitempty" json:"-"` // private, never serialized with the exercise
	Stats   ExerciseStats `bson:"stats" json:"stats"`

	// Version is bumped on every ratings/notes write and checked by the writer.
	Version int64 `bson:"version" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Rating is one user's feedback on an exercise.
type Rating struct {
	UserID  primitive.ObjectID `bson:"user" json:"user"`
	Value   RatingValue        `bson:"value" json:"value"`
	Comment string             `bson:"comment,omitempty" json:"comment,omitempty"`
	Date    time.Time          `bson:"date" json:"date"`
}

// Note is a private free-text note visible only to its owner.
type Note struct {
	UserID    primitive.ObjectID `bson:"user" json:"user"`
	Text      string             `bson:"text" json:"text"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ExerciseStats is a cache derived from Ratings. It is never updated on its own.
type ExerciseStats struct {
	Counts map[RatingValue]int `bson:"counts" json:"counts"`
	Total  int                 `bson:"total" json:"total"`
}

// ComputeStats recomputes the aggregate from the full ratings collection.
func ComputeStats(ratings []Rating) ExerciseStats {
	stats := ExerciseStats{Counts: make(map[RatingValue]int, len(RatingValues))}
	for _, v := range RatingValues {
		stats.Counts[v] = 0
	}
	for _, r := range ratings {
		if !r.Value.Valid() {
			continue
		}
		stats.Counts[r.Value]++
		stats.Total++
	}
	return stats
}

// SetRating replaces any rating by the same user with r and recomputes Stats.
func (e *Exercise) SetRating(r Rating) {
	kept := make([]Rating, 0, len(e.Ratings)+1)
	for _, existing := range e.Ratings {
		if existing.UserID != r.UserID {
			kept = append(kept, existing)
		}
	}
	e.Ratings = append(kept, r)
	e.Stats = ComputeStats(e.Ratings)
}

// NoteFor returns the note owned by userID, if any.
func (e *Exercise) NoteFor(userID primitive.ObjectID) (Note, bool) {
	for _, n := range e.Notes {
		if n.UserID == userID {
			return n, true
		}
	}
	return Note{}, false
}

// SetNote upserts the note of n.UserID. An empty text removes the note.
func (e *Exercise) SetNote(n Note) {
	kept := make([]Note, 0, len(e.Notes)+1)
	for _, existing := range e.Notes {
		if existing.UserID != n.UserID {
			kept = append(kept, existing)
		}
	}
	if n.Text != "" {
		kept = append(kept, n)
	}
	e.Notes = kept
}

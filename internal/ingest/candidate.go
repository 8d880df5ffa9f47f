package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/claude/trackmate/internal/models"
	"github.com/google/uuid"
)

// CandidateExercise is an exercise that has been parsed but not saved.
type CandidateExercise struct {
	Name       string `json:"name"`
	Sets       int    `json:"sets"`
	TargetReps string `json:"target_reps"`
}

// Candidate is a parsed workout awaiting review. It has no identifiers
// until Commit.
type Candidate struct {
	Name      string              `json:"name"`
	Exercises []CandidateExercise `json:"exercises"`
}

// RemoveExercise drops the exercise at index, keeping the order of the rest.
// It reports whether anything was removed.
func (c *Candidate) RemoveExercise(index int) bool {
	if index < 0 || index >= len(c.Exercises) {
		return false
	}
	c.Exercises = append(c.Exercises[:index:index], c.Exercises[index+1:]...)
	return true
}

// Rename sets the workout name.
func (c *Candidate) Rename(name string) {
	c.Name = strings.TrimSpace(name)
}

// Commit turns a reviewed candidate into a Workout with fresh identifiers
// stamped at now. Candidates edited by a client are re-checked: sets below
// one or above MaxSets and blank rep targets fall back to the import defaults.
func Commit(c Candidate, now time.Time) (models.Workout, error) {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return models.Workout{}, ErrEmptyName
	}
	if len(c.Exercises) == 0 {
		return models.Workout{}, fmt.Errorf("committing %q: %w", name, ErrEmptyExerciseList)
	}

	w := models.Workout{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		Exercises: make([]models.Exercise, 0, len(c.Exercises)),
	}
	for i, ex := range c.Exercises {
		e := models.Exercise{
			ID:         uuid.NewString(),
			Name:       strings.TrimSpace(ex.Name),
			Sets:       ex.Sets,
			TargetReps: strings.TrimSpace(ex.TargetReps),
		}
		if e.Name == "" {
			e.Name = fmt.Sprintf("Exercise %d", i+1)
		}
		if e.Sets < 1 || e.Sets > MaxSets {
			e.Sets = DefaultSets
		}
		if e.TargetReps == "" {
			e.TargetReps = DefaultTargetReps
		}
		w.Exercises = append(w.Exercises, e)
	}
	return w, nil
}

package session

import (
	"time"

	"github.com/claude/trackmate/internal/models"
)

// ExerciseView pairs a template exercise with its session state.
type ExerciseView struct {
	ID         string               `json:"id"`
	Name       string               `json:"name"`
	Sets       int                  `json:"sets"`
	TargetReps string               `json:"target_reps"`
	State      models.ExerciseState `json:"state"`
}

// Snapshot is a read-only view of a tracker for rendering.
type Snapshot struct {
	WorkoutID            string         `json:"workout_id"`
	WorkoutName          string         `json:"workout_name"`
	State                string         `json:"state"`
	StartTime            time.Time      `json:"start_time"`
	CompletionPercentage int            `json:"completion_percentage"`
	Complete             bool           `json:"complete"`
	Exercises            []ExerciseView `json:"exercises"`
}

// Snapshot copies the current state in template order.
func (t *Tracker) Snapshot() Snapshot {
	s := Snapshot{
		WorkoutID:            t.workout.ID,
		WorkoutName:          t.workout.Name,
		State:                t.state.String(),
		StartTime:            t.startTime,
		CompletionPercentage: t.CompletionPercentage(),
		Complete:             t.IsWorkoutComplete(),
		Exercises:            make([]ExerciseView, 0, len(t.workout.Exercises)),
	}
	for _, ex := range t.workout.Exercises {
		st, _ := t.Exercise(ex.ID)
		s.Exercises = append(s.Exercises, ExerciseView{
			ID:         ex.ID,
			Name:       ex.Name,
			Sets:       ex.Sets,
			TargetReps: ex.TargetReps,
			State:      st,
		})
	}
	return s
}

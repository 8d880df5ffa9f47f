package models

import "time"

// Exercise is one entry of a saved workout template.
type Exercise struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Sets       int    `json:"sets"`
	TargetReps string `json:"target_reps"`
}

// Workout is a saved, reusable workout template.
// Exercise order is the display and session order.
type Workout struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"created_at"`
	Exercises []Exercise `json:"exercises"`
}

// SetState is the per-set record tracked during a session.
// Weight (kg) and Reps are nil until the user records them.
type SetState struct {
	Done   bool     `json:"done"`
	Weight *float64 `json:"weight,omitempty"`
	Reps   *int     `json:"reps,omitempty"`
}

// Clone returns a deep copy of the set state.
func (s SetState) Clone() SetState {
	out := SetState{Done: s.Done}
	if s.Weight != nil {
		w := *s.Weight
		out.Weight = &w
	}
	if s.Reps != nil {
		r := *s.Reps
		out.Reps = &r
	}
	return out
}

// ExerciseState is the per-exercise state of an active session.
// The Show* flags gate which per-set inputs are reachable.
type ExerciseState struct {
	Done       bool       `json:"done"`
	ShowSets   bool       `json:"show_sets"`
	ShowWeight bool       `json:"show_weight"`
	ShowReps   bool       `json:"show_reps"`
	Sets       []SetState `json:"sets"`
}

// Clone returns a deep copy of the exercise state.
func (e ExerciseState) Clone() ExerciseState {
	out := e
	out.Sets = CloneSets(e.Sets)
	return out
}

// CloneSets deep-copies a set-state slice. A nil input yields an empty slice
// so the JSON form is always an array.
func CloneSets(sets []SetState) []SetState {
	out := make([]SetState, len(sets))
	for i, s := range sets {
		out[i] = s.Clone()
	}
	return out
}

// SessionStatus is the lifecycle status of a history record.
type SessionStatus string

const (
	StatusCompleted SessionStatus = "completed"
	// StatusInProgress is reserved; no code path produces it yet.
	StatusInProgress SessionStatus = "in_progress"
)

// CompletedExercise is one exercise's outcome inside a finalized session.
type CompletedExercise struct {
	ExerciseID    string     `json:"exercise_id"`
	Name          string     `json:"name"`
	Completed     bool       `json:"completed"`
	CompletedSets []SetState `json:"completed_sets"`
}

// DoneSets counts the sets marked done.
func (c CompletedExercise) DoneSets() int {
	n := 0
	for _, s := range c.CompletedSets {
		if s.Done {
			n++
		}
	}
	return n
}

// WorkoutSession is a finalized history record. Immutable once created.
type WorkoutSession struct {
	ID                 string              `json:"id"`
	TemplateID         string              `json:"template_id"`
	Date               time.Time           `json:"date"`
	DurationMinutes    *int                `json:"duration_minutes,omitempty"`
	Status             SessionStatus       `json:"status"`
	CompletedExercises []CompletedExercise `json:"completed_exercises"`
}

// CompletedExerciseCount returns how many exercises were marked done.
func (s WorkoutSession) CompletedExerciseCount() int {
	n := 0
	for _, ex := range s.CompletedExercises {
		if ex.Completed {
			n++
		}
	}
	return n
}

// CompletedSetCount returns the number of done sets across all exercises.
func (s WorkoutSession) CompletedSetCount() int {
	n := 0
	for _, ex := range s.CompletedExercises {
		n += ex.DoneSets()
	}
	return n
}

// SessionSummary is a history record with the counts shown in history
// listings, e.g. "2/3 exercises, 7 sets".
type SessionSummary struct {
	WorkoutSession
	WorkoutName        string `json:"workout_name,omitempty"`
	ExercisesCompleted int    `json:"exercises_completed"`
	ExercisesTotal     int    `json:"exercises_total"`
	SetsCompleted      int    `json:"sets_completed"`
}

// Summarize computes the listing counts for s. workoutName is the template
// name, empty when the template is gone.
func Summarize(s WorkoutSession, workoutName string) SessionSummary {
	return SessionSummary{
		WorkoutSession:     s,
		WorkoutName:        workoutName,
		ExercisesCompleted: s.CompletedExerciseCount(),
		ExercisesTotal:     len(s.CompletedExercises),
		SetsCompleted:      s.CompletedSetCount(),
	}
}

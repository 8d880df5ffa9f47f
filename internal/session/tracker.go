// Package session tracks one live workout attempt, from the moment a
// template is picked until the user finishes it.
package session

import (
	"errors"
	"math"
	"time"

	"github.com/claude/trackmate/internal/ingest"
	"github.com/claude/trackmate/internal/models"
	"github.com/google/uuid"
)

// ErrNotActive is returned by Complete once the session has already finished.
var ErrNotActive = errors.New("session is not active")

// State is a tracker lifecycle state.
type State int

const (
	StateInitializing State = iota
	StateActive
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateActive:
		return "active"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// DisplayField selects one of the three per-exercise display toggles.
type DisplayField int

const (
	DisplaySets DisplayField = iota
	DisplayWeight
	DisplayReps
)

// ParseDisplayField accepts "showSets", "showWeight", "showReps" and the
// short forms "sets", "weight", "reps".
func ParseDisplayField(s string) (DisplayField, bool) {
	switch s {
	case "showSets", "show_sets", "sets":
		return DisplaySets, true
	case "showWeight", "show_weight", "weight":
		return DisplayWeight, true
	case "showReps", "show_reps", "reps":
		return DisplayReps, true
	}
	return 0, false
}

// SetUpdate is a partial update to one set. Nil fields are left unchanged.
// Weight and Reps carry raw user input; input that does not parse to a
// non-zero number clears the stored value.
type SetUpdate struct {
	Done   *bool   `json:"done,omitempty"`
	Weight *string `json:"weight,omitempty"`
	Reps   *string `json:"reps,omitempty"`
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithIDGenerator overrides the generator used for the session record id.
func WithIDGenerator(gen func() string) Option {
	return func(t *Tracker) { t.newID = gen }
}

// Tracker owns the per-exercise and per-set state of one session.
// It is not safe for concurrent use; callers serialise events.
type Tracker struct {
	workout   models.Workout
	states    map[string]*models.ExerciseState
	state     State
	startTime time.Time
	now       func() time.Time
	newID     func() string
}

// New starts a session for w. The exercise state map is built from the
// template and the session clock starts now. Stored templates that predate
// the set limit are cut to ingest.MaxSets sets.
func New(w models.Workout, opts ...Option) *Tracker {
	t := &Tracker{
		workout: w,
		state:   StateInitializing,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(t)
	}

	t.states = make(map[string]*models.ExerciseState, len(w.Exercises))
	for _, ex := range w.Exercises {
		n := ex.Sets
		n = max(0, min(n, ingest.MaxSets))
		t.states[ex.ID] = &models.ExerciseState{Sets: make([]models.SetState, n)}
	}
	t.startTime = t.now()
	t.state = StateActive
	return t
}

// State returns the lifecycle state.
func (t *Tracker) State() State { return t.state }

// Workout returns the template being tracked.
func (t *Tracker) Workout() models.Workout { return t.workout }

// StartTime returns when the session started.
func (t *Tracker) StartTime() time.Time { return t.startTime }

// Exercise returns a copy of one exercise's state.
func (t *Tracker) Exercise(id string) (models.ExerciseState, bool) {
	st, ok := t.states[id]
	if !ok {
		return models.ExerciseState{}, false
	}
	return st.Clone(), true
}

// active returns the mutable state for id, or nil when the id is unknown or
// the session no longer accepts changes.
func (t *Tracker) active(id string) *models.ExerciseState {
	if t.state != StateActive {
		return nil
	}
	return t.states[id]
}

// ToggleExerciseDone flips the done flag of one exercise. Unknown ids are ignored.
func (t *Tracker) ToggleExerciseDone(id string) {
	if st := t.active(id); st != nil {
		st.Done = !st.Done
	}
}

// ToggleDisplay flips one display toggle of one exercise.
func (t *Tracker) ToggleDisplay(id string, field DisplayField) {
	st := t.active(id)
	if st == nil {
		return
	}
	switch field {
	case DisplaySets:
		st.ShowSets = !st.ShowSets
	case DisplayWeight:
		st.ShowWeight = !st.ShowWeight
	case DisplayReps:
		st.ShowReps = !st.ShowReps
	}
}

// UpdateSet merges u into set index of exercise id. Out-of-range indexes
// and unknown ids are ignored.
func (t *Tracker) UpdateSet(id string, index int, u SetUpdate) {
	st := t.active(id)
	if st == nil || index < 0 || index >= len(st.Sets) {
		return
	}
	set := &st.Sets[index]
	if u.Done != nil {
		set.Done = *u.Done
	}
	if u.Weight != nil {
		set.Weight = nil
		if w, ok := ingest.LeadingFloat(*u.Weight); ok && w != 0 {
			set.Weight = &w
		}
	}
	if u.Reps != nil {
		set.Reps = nil
		if r, ok := ingest.LeadingInt(*u.Reps); ok && r != 0 {
			set.Reps = &r
		}
	}
}

// CompletionPercentage is the share of exercises marked done, rounded to a
// whole percent. A workout without exercises reports 0.
func (t *Tracker) CompletionPercentage() int {
	total := len(t.workout.Exercises)
	if total == 0 {
		return 0
	}
	done := 0
	for _, ex := range t.workout.Exercises {
		if st := t.states[ex.ID]; st != nil && st.Done {
			done++
		}
	}
	return int(math.Round(100 * float64(done) / float64(total)))
}

// IsWorkoutComplete reports whether every exercise is marked done.
// Set-level progress is not considered.
func (t *Tracker) IsWorkoutComplete() bool {
	for _, st := range t.states {
		if !st.Done {
			return false
		}
	}
	return true
}

// Complete finalizes the session into a history record and moves the
// tracker to StateCompleted. It does not check IsWorkoutComplete; callers
// gate it.
func (t *Tracker) Complete() (models.WorkoutSession, error) {
	if t.state != StateActive {
		return models.WorkoutSession{}, ErrNotActive
	}
	end := t.now()
	minutes := int(math.Round(end.Sub(t.startTime).Minutes()))
	if minutes < 0 {
		minutes = 0
	}

	rec := models.WorkoutSession{
		ID:                 t.newID(),
		TemplateID:         t.workout.ID,
		Date:               end,
		DurationMinutes:    &minutes,
		Status:             models.StatusCompleted,
		CompletedExercises: make([]models.CompletedExercise, 0, len(t.workout.Exercises)),
	}
	for _, ex := range t.workout.Exercises {
		ce := models.CompletedExercise{ExerciseID: ex.ID, Name: ex.Name, CompletedSets: []models.SetState{}}
		if st := t.states[ex.ID]; st != nil {
			ce.Completed = st.Done
			ce.CompletedSets = models.CloneSets(st.Sets)
		}
		rec.CompletedExercises = append(rec.CompletedExercises, ce)
	}
	t.state = StateCompleted
	return rec, nil
}

// Package app is the top-level controller. It owns the template and history
// collections, the single active session, and their persistence.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/trackmate/internal/ingest"
	"github.com/claude/trackmate/internal/models"
	"github.com/claude/trackmate/internal/session"
	"github.com/claude/trackmate/internal/storage"
)

var (
	ErrNoActiveSession   = errors.New("no active session")
	ErrTemplateNotFound  = errors.New("template not found")
	ErrWorkoutIncomplete = errors.New("workout is not complete")
)

// Option configures an App.
type Option func(*App)

// WithOnWorkoutImported registers a callback fired after a template is saved.
// Callbacks run with the controller locked and must not call back into it.
func WithOnWorkoutImported(fn func(models.Workout)) Option {
	return func(a *App) { a.onImported = fn }
}

// WithOnWorkoutComplete registers a callback fired after a session is
// recorded in history.
func WithOnWorkoutComplete(fn func(models.WorkoutSession)) Option {
	return func(a *App) { a.onComplete = fn }
}

// WithClock overrides time.Now for template timestamps and session timing.
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// App serialises every event behind one mutex. Persistence is best-effort:
// a failed write is logged and in-memory state is kept.
type App struct {
	mu        sync.Mutex
	store     *storage.Store
	log       *slog.Logger
	templates []models.Workout
	history   []models.WorkoutSession
	active    *session.Tracker

	now        func() time.Time
	onImported func(models.Workout)
	onComplete func(models.WorkoutSession)
}

// New creates a controller backed by store. Call Load before serving.
func New(store *storage.Store, log *slog.Logger, opts ...Option) *App {
	a := &App{
		store: store,
		log:   log,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Load reads both collections from the store. A collection that cannot be
// decoded is logged and started empty so a corrupt key never blocks startup.
func (a *App) Load(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()

	templates, err := a.store.LoadTemplates(ctx)
	if err != nil {
		a.log.Warn("loading templates failed, starting empty", "error", err)
		templates = nil
	}
	history, err := a.store.LoadHistory(ctx)
	if err != nil {
		a.log.Warn("loading history failed, starting empty", "error", err)
		history = nil
	}
	a.templates = templates
	a.history = history
	a.log.Info("state loaded", "templates", len(a.templates), "history", len(a.history))
}

// Templates returns a copy of the saved templates in insertion order.
func (a *App) Templates() []models.Workout {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]models.Workout, len(a.templates))
	copy(out, a.templates)
	return out
}

// History returns a copy of the session history, newest first.
func (a *App) History() []models.WorkoutSession {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]models.WorkoutSession, len(a.history))
	copy(out, a.history)
	return out
}

// HistorySummaries returns the history, newest first, with listing counts
// and the name of each session's template.
func (a *App) HistorySummaries() []models.SessionSummary {
	a.mu.Lock()
	defer a.mu.Unlock()
	names := make(map[string]string, len(a.templates))
	for _, w := range a.templates {
		names[w.ID] = w.Name
	}
	out := make([]models.SessionSummary, 0, len(a.history))
	for _, s := range a.history {
		out = append(out, models.Summarize(s, names[s.TemplateID]))
	}
	return out
}

// Template looks up a saved template by id.
func (a *App) Template(id string) (models.Workout, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.findTemplate(id)
}

func (a *App) findTemplate(id string) (models.Workout, bool) {
	for _, w := range a.templates {
		if w.ID == id {
			return w, true
		}
	}
	return models.Workout{}, false
}

// Preview normalizes and parses text without saving anything.
func (a *App) Preview(text string) (normalized string, c *ingest.Candidate, err error) {
	normalized = ingest.Normalize(text)
	c, err = ingest.ParseAndValidate(normalized)
	return normalized, c, err
}

// Import commits a reviewed candidate, appends it to the templates and
// starts a session for it.
func (a *App) Import(ctx context.Context, c ingest.Candidate) (models.Workout, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	w, err := a.saveTemplate(ctx, c)
	if err != nil {
		return models.Workout{}, err
	}
	a.active = session.New(w, session.WithClock(a.now))
	return w, nil
}

// SaveTemplate commits a reviewed candidate and appends it to the templates
// without touching the active session. Used for bulk pushes.
func (a *App) SaveTemplate(ctx context.Context, c ingest.Candidate) (models.Workout, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.saveTemplate(ctx, c)
}

func (a *App) saveTemplate(ctx context.Context, c ingest.Candidate) (models.Workout, error) {
	w, err := ingest.Commit(c, a.now())
	if err != nil {
		return models.Workout{}, err
	}
	a.templates = append(a.templates, w)
	a.persistTemplates(ctx)
	a.log.Info("workout imported", "id", w.ID, "name", w.Name, "exercises", len(w.Exercises))

	if a.onImported != nil {
		a.onImported(w)
	}
	return w, nil
}

// ImportText normalizes, parses and imports text in one step.
func (a *App) ImportText(ctx context.Context, text string) (models.Workout, error) {
	_, c, err := a.Preview(text)
	if err != nil {
		return models.Workout{}, err
	}
	return a.Import(ctx, *c)
}

// StartTemplate starts a fresh session for a saved template, replacing any
// active session.
func (a *App) StartTemplate(id string) (session.Snapshot, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	w, ok := a.findTemplate(id)
	if !ok {
		return session.Snapshot{}, fmt.Errorf("starting %q: %w", id, ErrTemplateNotFound)
	}
	a.active = session.New(w, session.WithClock(a.now))
	a.log.Info("session started", "template_id", w.ID, "name", w.Name)
	return a.active.Snapshot(), nil
}

// Abandon drops the active session without recording it.
func (a *App) Abandon() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.active == nil {
		return ErrNoActiveSession
	}
	a.log.Info("session abandoned", "template_id", a.active.Workout().ID)
	a.active = nil
	return nil
}

// Session returns a snapshot of the active session.
func (a *App) Session() (session.Snapshot, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.active == nil {
		return session.Snapshot{}, ErrNoActiveSession
	}
	return a.active.Snapshot(), nil
}

// withSession applies fn to the active tracker and returns the new snapshot.
func (a *App) withSession(fn func(t *session.Tracker)) (session.Snapshot, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.active == nil {
		return session.Snapshot{}, ErrNoActiveSession
	}
	fn(a.active)
	return a.active.Snapshot(), nil
}

// ToggleExercise flips the done flag of one exercise.
func (a *App) ToggleExercise(exerciseID string) (session.Snapshot, error) {
	return a.withSession(func(t *session.Tracker) { t.ToggleExerciseDone(exerciseID) })
}

// ToggleDisplay flips one display toggle of one exercise.
func (a *App) ToggleDisplay(exerciseID string, field session.DisplayField) (session.Snapshot, error) {
	return a.withSession(func(t *session.Tracker) { t.ToggleDisplay(exerciseID, field) })
}

// UpdateSet merges u into one set of one exercise.
func (a *App) UpdateSet(exerciseID string, index int, u session.SetUpdate) (session.Snapshot, error) {
	return a.withSession(func(t *session.Tracker) { t.UpdateSet(exerciseID, index, u) })
}

// Complete finalizes the active session once every exercise is done,
// prepends the record to history and clears the active session.
func (a *App) Complete(ctx context.Context) (models.WorkoutSession, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.active == nil {
		return models.WorkoutSession{}, ErrNoActiveSession
	}
	if !a.active.IsWorkoutComplete() {
		return models.WorkoutSession{}, ErrWorkoutIncomplete
	}
	rec, err := a.active.Complete()
	if err != nil {
		return models.WorkoutSession{}, fmt.Errorf("completing session: %w", err)
	}
	a.active = nil

	a.history = append([]models.WorkoutSession{rec}, a.history...)
	a.persistHistory(ctx)
	a.log.Info("session completed",
		"id", rec.ID,
		"template_id", rec.TemplateID,
		"duration_minutes", *rec.DurationMinutes,
		"exercises", rec.CompletedExerciseCount(),
		"sets", rec.CompletedSetCount(),
	)

	if a.onComplete != nil {
		a.onComplete(rec)
	}
	return rec, nil
}

// Writes outlive the request that caused them: a client hanging up must not
// cancel a save that in-memory state already reflects.
func (a *App) persistTemplates(ctx context.Context) {
	if err := a.store.SaveTemplates(context.WithoutCancel(ctx), a.templates); err != nil {
		a.log.Error("failed to save templates", "error", err)
	}
}

func (a *App) persistHistory(ctx context.Context) {
	if err := a.store.SaveHistory(context.WithoutCancel(ctx), a.history); err != nil {
		a.log.Error("failed to save history", "error", err)
	}
}

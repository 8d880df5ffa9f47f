// Package importer bulk-loads workout text files into the template store.
package importer

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/claude/trackmate/internal/ingest"
	"github.com/claude/trackmate/internal/models"
	"github.com/claude/trackmate/internal/storage"
)

// Stats tracks import progress.
type Stats struct {
	FilesProcessed int
	FilesSkipped   int
	FilesErrored   int

	WorkoutsInserted   int
	WorkoutsDuplicated int

	ErroredFiles []string
}

// Importer reads workout files (.json, .txt) from a directory tree and
// appends them to the saved templates. Files that match a saved template
// exactly are skipped.
type Importer struct {
	store  *storage.Store
	log    *slog.Logger
	dryRun bool
	now    func() time.Time
	stats  Stats
}

// New creates a new Importer.
func New(store *storage.Store, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{store: store, log: log, dryRun: dryRun, now: time.Now}
}

// Import processes every workout file under dir, in lexical path order.
func (imp *Importer) Import(ctx context.Context, dir string) (*Stats, error) {
	files, err := workoutFiles(dir)
	if err != nil {
		return &imp.stats, err
	}

	templates, err := imp.store.LoadTemplates(ctx)
	if err != nil {
		return &imp.stats, fmt.Errorf("loading templates: %w", err)
	}
	seen := make(map[string]bool, len(templates))
	for _, w := range templates {
		seen[signature(w)] = true
	}

	added := 0
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return &imp.stats, err
		}

		w, ok := imp.importFile(f)
		if !ok {
			continue
		}
		sig := signature(w)
		if seen[sig] {
			imp.log.Info("skipping duplicate workout", "file", f, "name", w.Name)
			imp.stats.WorkoutsDuplicated++
			continue
		}
		seen[sig] = true
		templates = append(templates, w)
		added++
		imp.stats.WorkoutsInserted++
		imp.log.Info("workout parsed", "file", f, "name", w.Name, "exercises", len(w.Exercises))
	}

	if imp.dryRun || added == 0 {
		return &imp.stats, nil
	}
	if err := imp.store.SaveTemplates(ctx, templates); err != nil {
		return &imp.stats, fmt.Errorf("saving templates: %w", err)
	}
	return &imp.stats, nil
}

// importFile parses one file. Unreadable or invalid files are counted and
// logged, not fatal.
func (imp *Importer) importFile(path string) (models.Workout, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		imp.fileError(path, err)
		return models.Workout{}, false
	}

	text := ingest.Normalize(string(data))
	if text == "" {
		imp.stats.FilesSkipped++
		return models.Workout{}, false
	}

	c, err := ingest.ParseAndValidate(text)
	if err != nil {
		imp.fileError(path, err)
		return models.Workout{}, false
	}
	w, err := ingest.Commit(*c, imp.now())
	if err != nil {
		imp.fileError(path, err)
		return models.Workout{}, false
	}
	imp.stats.FilesProcessed++
	return w, true
}

func (imp *Importer) fileError(path string, err error) {
	title, desc := ingest.UserMessage(err)
	imp.log.Warn("import failed", "file", path, "reason", title, "detail", desc, "error", err)
	imp.stats.FilesErrored++
	imp.stats.ErroredFiles = append(imp.stats.ErroredFiles, path)
}

// workoutFiles lists .json and .txt files under dir, sorted.
func workoutFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".json", ".txt":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

// signature identifies a workout by content, ignoring ids and timestamps.
func signature(w models.Workout) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(w.Name))
	for _, ex := range w.Exercises {
		fmt.Fprintf(&b, "\x00%s\x00%d\x00%s", strings.ToLower(ex.Name), ex.Sets, ex.TargetReps)
	}
	return b.String()
}

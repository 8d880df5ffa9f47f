package importer

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/claude/trackmate/internal/models"
	"github.com/claude/trackmate/internal/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

// TestImportDirectory verifies valid files are saved in path order and
// invalid, empty and unrelated files are counted.
func TestImportDirectory(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"01-push.json":        `{"Push": {"Bench": {"sets": 4, "reps": "6-8"}}}`,
		"02-pull.txt":         "“Pull”: ",
		"week2/03-legs.txt":   `{"Legs": {"Squat": {"sets": 5, "reps": "5"}, "Lunge": {}}}`,
		"04-empty.json":       "  \n",
		"notes.md":            "# not a workout",
		".hidden/05-old.json": `{"Old": {"Row": {"sets": 3, "reps": "10"}}}`,
	})
	store := storage.NewStore(storage.NewMemory())

	stats, err := New(store, discardLogger(), false).Import(context.Background(), dir)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if stats.FilesProcessed != 2 || stats.FilesErrored != 1 || stats.FilesSkipped != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.WorkoutsInserted != 2 {
		t.Errorf("inserted = %d, want 2", stats.WorkoutsInserted)
	}
	if len(stats.ErroredFiles) != 1 || filepath.Base(stats.ErroredFiles[0]) != "02-pull.txt" {
		t.Errorf("errored files = %v", stats.ErroredFiles)
	}

	got, err := store.LoadTemplates(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Name != "Push" || got[1].Name != "Legs" {
		t.Fatalf("templates = %+v", got)
	}
	if lunge := got[1].Exercises[1]; lunge.Sets != 3 || lunge.TargetReps != "8-10" {
		t.Errorf("defaults not applied: %+v", lunge)
	}
}

// TestImportSkipsDuplicates verifies re-running the import is idempotent.
func TestImportSkipsDuplicates(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.json": `{"Push": {"Bench": {"sets": 4, "reps": "6-8"}}}`,
		"b.json": `{"push": {"bench": {"sets": "4", "reps": "6-8"}}}`,
	})
	store := storage.NewStore(storage.NewMemory())
	ctx := context.Background()

	stats, err := New(store, discardLogger(), false).Import(ctx, dir)
	if err != nil {
		t.Fatal(err)
	}
	if stats.WorkoutsInserted != 1 || stats.WorkoutsDuplicated != 1 {
		t.Errorf("first run stats = %+v", stats)
	}

	stats, err = New(store, discardLogger(), false).Import(ctx, dir)
	if err != nil {
		t.Fatal(err)
	}
	if stats.WorkoutsInserted != 0 || stats.WorkoutsDuplicated != 2 {
		t.Errorf("second run stats = %+v", stats)
	}
}

// TestImportDryRun verifies nothing is written in dry-run mode.
func TestImportDryRun(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.json": `{"Push": {"Bench": {"sets": 4, "reps": "6-8"}}}`,
	})
	store := storage.NewStore(storage.NewMemory())

	stats, err := New(store, discardLogger(), true).Import(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	if stats.WorkoutsInserted != 1 {
		t.Errorf("inserted = %d, want 1", stats.WorkoutsInserted)
	}
	got, _ := store.LoadTemplates(context.Background())
	if len(got) != 0 {
		t.Errorf("dry run saved %d templates", len(got))
	}
}

// TestImportMissingDir verifies a missing directory is an error.
func TestImportMissingDir(t *testing.T) {
	store := storage.NewStore(storage.NewMemory())
	if _, err := New(store, discardLogger(), false).Import(context.Background(), filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

// TestSignatureIgnoresIdentity verifies ids and timestamps do not affect
// duplicate detection.
func TestSignatureIgnoresIdentity(t *testing.T) {
	a := models.Workout{ID: "1", Name: "Push", CreatedAt: time.Unix(0, 0),
		Exercises: []models.Exercise{{ID: "x", Name: "Bench", Sets: 4, TargetReps: "6-8"}}}
	b := a
	b.ID, b.CreatedAt = "2", time.Now()
	b.Exercises = []models.Exercise{{ID: "y", Name: "Bench", Sets: 4, TargetReps: "6-8"}}
	if signature(a) != signature(b) {
		t.Error("signatures differ for same content")
	}
	b.Exercises[0].Sets = 5
	if signature(a) == signature(b) {
		t.Error("signatures equal for different sets")
	}
}

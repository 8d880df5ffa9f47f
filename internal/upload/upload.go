// Package upload pushes a directory of workout text files to a remote
// TrackMate server, remembering what was already sent.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/claude/trackmate/internal/ingest"
)

// Stats tracks upload progress.
type Stats struct {
	FilesTotal    int
	FilesUploaded int
	// FilesChanged counts uploads of files that were pushed before with
	// different content. Each one leaves a new template on the server.
	FilesChanged  int
	FilesSkipped  int
	FilesRejected int
	FilesErrored  int
}

// Uploader walks a directory of .json/.txt workout files and pushes each
// new or changed file to the server.
type Uploader struct {
	client *Client
	state  *StateDB
	dir    string
	dryRun bool
	log    *slog.Logger
	stats  Stats
}

// New creates a new Uploader. In dry-run mode files are only parsed locally.
func New(client *Client, state *StateDB, dir string, dryRun bool, log *slog.Logger) *Uploader {
	return &Uploader{
		client: client,
		state:  state,
		dir:    dir,
		dryRun: dryRun,
		log:    log,
	}
}

// Run executes the upload pipeline. Per-file failures are counted and
// logged; only cancellation and state DB failures abort the run.
func (u *Uploader) Run(ctx context.Context) (*Stats, error) {
	files, err := u.files()
	if err != nil {
		return &u.stats, err
	}
	u.stats.FilesTotal = len(files)

	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return &u.stats, err
		}
		if err := u.push(ctx, rel); err != nil {
			return &u.stats, err
		}
	}
	return &u.stats, nil
}

func (u *Uploader) push(ctx context.Context, rel string) error {
	path := filepath.Join(u.dir, rel)
	hash, err := HashFile(path)
	if err != nil {
		u.log.Warn("hash failed", "file", rel, "error", err)
		u.stats.FilesErrored++
		return nil
	}

	pushed, err := u.state.IsPushed(rel, hash)
	if err != nil {
		return fmt.Errorf("checking state for %s: %w", rel, err)
	}
	if pushed {
		u.stats.FilesSkipped++
		return nil
	}
	previousID, changed, err := u.state.WorkoutID(rel)
	if err != nil {
		return fmt.Errorf("checking state for %s: %w", rel, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		u.log.Warn("read failed", "file", rel, "error", err)
		u.stats.FilesErrored++
		return nil
	}

	if u.dryRun {
		c, err := ingest.ParseAndValidate(ingest.Normalize(string(data)))
		if err != nil {
			title, _ := ingest.UserMessage(err)
			u.log.Warn("would be rejected", "file", rel, "reason", title)
			u.stats.FilesRejected++
			return nil
		}
		u.log.Info("would push", "file", rel, "name", c.Name, "exercises", len(c.Exercises))
		u.stats.FilesUploaded++
		return nil
	}

	w, err := u.client.SendWorkout(ctx, string(data))
	if errors.Is(err, ErrRejected) {
		u.log.Warn("server rejected workout", "file", rel, "error", err)
		u.stats.FilesRejected++
		return nil
	}
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		u.log.Error("push failed", "file", rel, "error", err)
		u.stats.FilesErrored++
		return nil
	}

	if err := u.state.MarkPushed(rel, hash, w.ID); err != nil {
		return fmt.Errorf("recording %s: %w", rel, err)
	}
	if changed {
		u.log.Info("pushed changed file", "file", rel, "workout_id", w.ID, "previous_workout_id", previousID, "name", w.Name)
		u.stats.FilesChanged++
	} else {
		u.log.Info("pushed", "file", rel, "workout_id", w.ID, "name", w.Name)
	}
	u.stats.FilesUploaded++
	return nil
}

// files lists workout files relative to the upload directory, sorted.
func (u *Uploader) files() ([]string, error) {
	var files []string
	err := filepath.WalkDir(u.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != u.dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".json", ".txt":
			rel, err := filepath.Rel(u.dir, path)
			if err != nil {
				return err
			}
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", u.dir, err)
	}
	sort.Strings(files)
	return files, nil
}

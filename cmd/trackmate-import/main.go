package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/trackmate/internal/config"
	"github.com/claude/trackmate/internal/importer"
	"github.com/claude/trackmate/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	dirPath := flag.String("path", "", "directory of workout .json/.txt files (required)")
	dryRun := flag.Bool("dry-run", false, "parse and report counts without saving templates")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *dirPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: trackmate-import -config config.yaml -path /path/to/workouts [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	info, err := os.Stat(*dirPath)
	if err != nil || !info.IsDir() {
		log.Error("path does not exist or is not a directory", "path", *dirPath)
		os.Exit(1)
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if *dryRun {
		log.Info("DRY RUN mode: no templates will be saved")
	}

	ctx := context.Background()
	kv, err := storage.Open(ctx, storage.Options{
		Driver:         cfg.Storage.Driver,
		Path:           cfg.Storage.Path,
		DSN:            cfg.Database.DSN(),
		MigrationsPath: cfg.Storage.Migrations,
	})
	if err != nil {
		log.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer kv.Close()
	log.Info("storage opened", "driver", cfg.Storage.Driver)

	imp := importer.New(storage.NewStore(kv), log, *dryRun)
	stats, err := imp.Import(ctx, *dirPath)
	if err != nil {
		log.Error("import failed", "error", err)
		printStats(log, stats)
		os.Exit(1)
	}

	printStats(log, stats)
	log.Info("import complete")
}

func printStats(log *slog.Logger, stats *importer.Stats) {
	log.Info("import stats",
		"files_processed", stats.FilesProcessed,
		"files_skipped", stats.FilesSkipped,
		"files_errored", stats.FilesErrored,
		"workouts_inserted", stats.WorkoutsInserted,
		"workouts_duplicated", stats.WorkoutsDuplicated,
	)
	if len(stats.ErroredFiles) > 0 {
		log.Info("files with errors", "files", stats.ErroredFiles)
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/claude/trackmate/internal/upload"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "TrackMate server URL (e.g. https://trackmate.tail1234.ts.net)")
	dirPath := flag.String("path", "", "directory of workout .json/.txt files")
	apiKey := flag.String("api-key", os.Getenv("TRACKMATE_AUTH_API_KEY"), "server API key")
	dryRun := flag.Bool("dry-run", false, "parse locally but don't send to server")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("trackmate-push", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *dirPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: trackmate-push -server <URL> -path <dir> [-dry-run]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if *serverURL == "" && !*dryRun {
		fmt.Fprintf(os.Stderr, "Error: -server is required (or use -dry-run)\n")
		os.Exit(1)
	}

	info, err := os.Stat(*dirPath)
	if err != nil || !info.IsDir() {
		log.Error("workout directory not found", "path", *dirPath)
		os.Exit(1)
	}

	// Open state database
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Error("failed to get home directory", "error", err)
		os.Exit(1)
	}
	state, err := upload.OpenStateDB(filepath.Join(homeDir, ".trackmate-push"))
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	if *dryRun {
		log.Info("DRY RUN mode: files will be parsed but not sent")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	uploader := upload.New(upload.NewClient(*serverURL, *apiKey), state, *dirPath, *dryRun, log)
	stats, err := uploader.Run(ctx)
	if err != nil {
		log.Error("push failed", "error", err)
		printStats(stats)
		os.Exit(1)
	}

	printStats(stats)
	log.Info("push complete")
}

func printStats(stats *upload.Stats) {
	fmt.Println()
	fmt.Println("=== Push Summary ===")
	fmt.Printf("  Files total:      %d\n", stats.FilesTotal)
	fmt.Printf("  Files pushed:     %d\n", stats.FilesUploaded)
	fmt.Printf("  Files changed:    %d (pushed again as new templates)\n", stats.FilesChanged)
	fmt.Printf("  Files skipped:    %d (already pushed)\n", stats.FilesSkipped)
	fmt.Printf("  Files rejected:   %d (invalid workout)\n", stats.FilesRejected)
	fmt.Printf("  Files errored:    %d\n", stats.FilesErrored)
	fmt.Println()
}

package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/logbook"
	"github.com/google/uuid"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: liftlog-logbook <command> [flags]

Commands:
  record   queue a completed set for later sync
  pending  list queued sets
  sync     push queued sets to the server

Run 'liftlog-logbook <command> -h' for command flags.
`)
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Error("failed to get home directory", "error", err)
		os.Exit(1)
	}
	stateDir := filepath.Join(homeDir, ".liftlog-logbook")

	switch os.Args[1] {
	case "record":
		runRecord(stateDir, os.Args[2:], log)
	case "pending":
		runPending(stateDir, log)
	case "sync":
		runSync(stateDir, os.Args[2:], log)
	case "version":
		fmt.Println("liftlog-logbook", Version)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage()
	}
}

func runRecord(stateDir string, args []string, log *slog.Logger) {
	fs := flag.NewFlagSet("record", flag.ExitOnError)
	workoutID := fs.String("workout", "", "workout session UUID (required)")
	setID := fs.String("set", "", "workout set UUID (required)")
	weight := fs.Float64("weight", 0, "weight lifted (omit for bodyweight)")
	reps := fs.Int("reps", 0, "reps performed")
	fs.Parse(args)

	if *workoutID == "" || *setID == "" {
		fmt.Fprintf(os.Stderr, "record: -workout and -set are required\n")
		fs.PrintDefaults()
		os.Exit(1)
	}

	wid, err := uuid.Parse(*workoutID)
	if err != nil {
		log.Error("invalid workout UUID", "value", *workoutID)
		os.Exit(1)
	}
	sid, err := uuid.Parse(*setID)
	if err != nil {
		log.Error("invalid set UUID", "value", *setID)
		os.Exit(1)
	}

	entry := logbook.Entry{
		WorkoutID:  wid,
		SetID:      sid,
		RecordedAt: time.Now().UTC(),
	}
	if *weight > 0 {
		entry.Weight = weight
	}
	if *reps > 0 {
		entry.Reps = reps
	}

	q, err := logbook.Open(stateDir)
	if err != nil {
		log.Error("failed to open logbook", "error", err)
		os.Exit(1)
	}
	defer q.Close()

	if err := q.Enqueue(entry); err != nil {
		log.Error("failed to queue set", "error", err)
		os.Exit(1)
	}
	log.Info("set queued", "set", sid, "weight", *weight, "reps", *reps)
}

func runPending(stateDir string, log *slog.Logger) {
	q, err := logbook.Open(stateDir)
	if err != nil {
		log.Error("failed to open logbook", "error", err)
		os.Exit(1)
	}
	defer q.Close()

	pending, err := q.Pending()
	if err != nil {
		log.Error("failed to list pending sets", "error", err)
		os.Exit(1)
	}

	if len(pending) == 0 {
		fmt.Println("logbook is empty")
		return
	}
	for _, e := range pending {
		weight := "-"
		if e.Weight != nil {
			weight = strconv.FormatFloat(*e.Weight, 'f', -1, 64)
		}
		reps := "-"
		if e.Reps != nil {
			reps = strconv.Itoa(*e.Reps)
		}
		fmt.Printf("  %s  set %s  %s x %s  recorded %s\n",
			e.WorkoutID, e.SetID, weight, reps, e.RecordedAt.Format(time.RFC3339))
	}
	fmt.Printf("%d pending\n", len(pending))
}

func runSync(stateDir string, args []string, log *slog.Logger) {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)
	serverURL := fs.String("server", "", "LiftLog server URL (required)")
	apiKey := fs.String("api-key", os.Getenv("LIFTLOG_AUTH_API_KEY"), "sync API key (or LIFTLOG_AUTH_API_KEY)")
	fs.Parse(args)

	if *serverURL == "" {
		fmt.Fprintf(os.Stderr, "sync: -server is required\n")
		fs.PrintDefaults()
		os.Exit(1)
	}
	if *apiKey == "" {
		fmt.Fprintf(os.Stderr, "sync: -api-key or LIFTLOG_AUTH_API_KEY is required\n")
		os.Exit(1)
	}

	q, err := logbook.Open(stateDir)
	if err != nil {
		log.Error("failed to open logbook", "error", err)
		os.Exit(1)
	}
	defer q.Close()

	client := logbook.NewClient(strings.TrimRight(*serverURL, "/"), *apiKey)
	result, err := logbook.Sync(q, client)
	if err != nil {
		log.Error("sync failed", "error", err)
		os.Exit(1)
	}
	log.Info("sync complete", "applied", result.Applied, "skipped", result.Skipped)
}

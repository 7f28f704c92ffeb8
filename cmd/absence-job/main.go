// Command absence-job runs the missing-checkout reconciliation once, or prints its
// preview, and writes the JSON result to stdout.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/attendance-reconciler/internal/app"
	"github.com/cmlabs-hris/attendance-reconciler/internal/config"
	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/attendance"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("absence-job", flag.ContinueOnError)
	fs.SetOutput(stderr)
	date := fs.String("date", "", "target date in YYYY-MM-DD format (defaults to today)")
	preview := fs.Bool("preview", false, "print the preview instead of marking records")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	targetDate, err := attendance.ParseTargetDate(*date)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, "Error loading config:", err)
		return 1
	}
	app.SetupLogger(cfg, stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, err := app.OpenStorage(ctx, cfg)
	if err != nil {
		slog.Error("Error connecting to database", "error", err)
		return 1
	}
	defer storage.Close()

	svc := app.NewAbsenceService(cfg, storage, nil)
	return execute(ctx, svc, targetDate, *preview, stdout)
}

// execute runs one operation against svc and reports the process exit code.
func execute(ctx context.Context, svc attendance.AbsenceService, targetDate *time.Time, preview bool, stdout io.Writer) int {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")

	if preview {
		p, err := svc.GetAbsenceMarkingPreview(ctx, targetDate)
		if err != nil {
			slog.Error("Failed to build preview", "error", err)
			return 1
		}
		if err := enc.Encode(p); err != nil {
			slog.Error("Failed to encode preview", "error", err)
			return 1
		}
		return 0
	}

	result := svc.MarkAbsentForMissingCheckout(ctx, targetDate)
	if err := enc.Encode(result); err != nil {
		slog.Error("Failed to encode result", "error", err)
		return 1
	}
	if !result.Success {
		return 1
	}
	return 0
}

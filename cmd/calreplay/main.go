// Command calreplay runs a recorded calibration session through the pipeline
// and writes the JSON report.
//
// Usage:
//
//	calreplay [flags] [samples-file]
//
// The samples file holds one frame per line: comma or whitespace separated
// channel values. Lines starting with '#' are directives or comments:
//
//	#phase eyes_closed     start a phase (eyes_closed, eyes_open, task:<id>)
//	#stop                  stop the active phase
//	#baseline              compute the baseline now
//	#analyze [task-id]     analyse a task (default: the last one started)
//
// At end of input an active phase is stopped, the baseline is computed if it
// was not, and every recorded task is analysed. Timestamps come from the
// sample count, so durations reflect the recording rather than replay speed.
//
// Examples:
//
//	calreplay session.txt > report.json
//	calreplay -config calibration.yaml -out report.json session.txt
//	calreplay -summary -log-level debug < session.txt
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/cwbudde/algo-eeg/pipeline"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file (defaults apply when empty)")
	outPath := flag.String("out", "-", "report destination, - for stdout")
	summary := flag.Bool("summary", false, "print a per-task summary table to stderr")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	start := flag.String("start", "", "RFC 3339 timestamp of the first sample (default: now)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: calreplay [flags] [samples-file]\n\n")
		fmt.Fprintf(os.Stderr, "Replays a recorded calibration session and writes the JSON report.\n")
		fmt.Fprintf(os.Stderr, "Reads samples from stdin when no file is given.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	logger, err := newLogger(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	if err := run(*configPath, *outPath, *start, *summary, flag.Args(), logger); err != nil {
		logger.Error("replay failed", "error", err)
		os.Exit(1)
	}
}

func newLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}

	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})

	return slog.New(handler), nil
}

func run(configPath, outPath, start string, summary bool, args []string, logger *slog.Logger) error {
	cfg := pipeline.DefaultConfig()

	if configPath != "" {
		loaded, err := pipeline.LoadConfig(configPath)
		if err != nil {
			return err
		}

		cfg = loaded
	}

	t0 := time.Now()

	if start != "" {
		parsed, err := time.Parse(time.RFC3339, start)
		if err != nil {
			return fmt.Errorf("invalid -start: %w", err)
		}

		t0 = parsed
	}

	var in io.Reader = os.Stdin

	if len(args) > 0 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		in = f
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report, err := replay(ctx, in, cfg, t0, logger)
	if err != nil {
		return err
	}

	if summary {
		if err := printSummary(os.Stderr, report); err != nil {
			return err
		}
	}

	if outPath == "-" {
		return report.WriteJSON(os.Stdout)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}

	if err := report.WriteJSON(f); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

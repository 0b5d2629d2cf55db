package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cwbudde/algo-eeg/pipeline"
	"github.com/cwbudde/algo-eeg/session"
	"github.com/cwbudde/algo-eeg/stats/baseline"
)

// sampleClock derives time from the number of samples replayed.
type sampleClock struct {
	start   time.Time
	rate    float64
	samples atomic.Int64
}

func (c *sampleClock) Now() time.Time {
	n := c.samples.Load()
	return c.start.Add(time.Duration(float64(n) / c.rate * float64(time.Second)))
}

func (c *sampleClock) Tick() {
	c.samples.Add(1)
}

type replayer struct {
	p        *pipeline.Pipeline
	clock    *sampleClock
	logger   *slog.Logger
	channel  int
	baseline bool
	line     int
}

// replay drives a pipeline from r and returns the final report.
func replay(ctx context.Context, r io.Reader, cfg pipeline.Config, start time.Time, logger *slog.Logger) (pipeline.Report, error) {
	clock := &sampleClock{start: start, rate: cfg.SampleRate}

	p, err := pipeline.New(cfg, pipeline.WithLogger(logger), pipeline.WithClock(clock.Now))
	if err != nil {
		return pipeline.Report{}, err
	}

	rp := &replayer{p: p, clock: clock, logger: logger, channel: cfg.Channel}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for sc.Scan() {
		if rp.line%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return pipeline.Report{}, err
			}
		}

		rp.line++

		if err := rp.handle(strings.TrimSpace(sc.Text())); err != nil {
			return pipeline.Report{}, fmt.Errorf("line %d: %w", rp.line, err)
		}
	}

	if err := sc.Err(); err != nil {
		return pipeline.Report{}, err
	}

	if err := rp.finish(); err != nil {
		return pipeline.Report{}, err
	}

	return p.GenerateReport(), nil
}

func (rp *replayer) handle(line string) error {
	switch {
	case line == "":
		return nil
	case strings.HasPrefix(line, "#"):
		return rp.directive(strings.Fields(strings.TrimPrefix(line, "#")))
	default:
		return rp.sample(line)
	}
}

func (rp *replayer) sample(line string) error {
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == ';'
	})

	if rp.channel >= len(fields) {
		return fmt.Errorf("channel %d missing from %d values", rp.channel, len(fields))
	}

	v, err := strconv.ParseFloat(fields[rp.channel], 64)
	if err != nil {
		return fmt.Errorf("invalid sample: %w", err)
	}

	rp.clock.Tick()
	rp.p.PushSample(v)

	return nil
}

func (rp *replayer) directive(args []string) error {
	if len(args) == 0 {
		return nil
	}

	switch args[0] {
	case "phase":
		if len(args) != 2 {
			return errors.New("usage: #phase eyes_closed|eyes_open|task:<id>")
		}

		phase, taskID, err := parsePhaseArg(args[1])
		if err != nil {
			return err
		}

		return rp.p.StartPhase(phase, taskID)
	case "stop":
		return rp.p.StopPhase()
	case "baseline":
		if _, err := rp.p.ComputeBaseline(); err != nil {
			return err
		}

		rp.baseline = true

		return nil
	case "analyze":
		if len(args) > 1 {
			_, _, err := rp.p.AnalyzeTaskID(args[1])
			return err
		}

		_, _, err := rp.p.AnalyzeTask()

		return err
	default:
		// Anything else is a comment.
		return nil
	}
}

func (rp *replayer) finish() error {
	if phase, _ := rp.p.Session().Phase(); phase != session.Idle {
		if err := rp.p.StopPhase(); err != nil {
			return err
		}
	}

	if !rp.baseline {
		_, err := rp.p.ComputeBaseline()

		switch {
		case errors.Is(err, baseline.ErrInsufficientData):
			rp.logger.Warn("no baseline recorded, skipping task analysis")
			return nil
		case err != nil:
			return err
		}
	}

	for _, id := range rp.p.Session().TaskIDs() {
		if _, _, err := rp.p.AnalyzeTaskID(id); err != nil {
			rp.logger.Warn("task analysis skipped", "task_id", id, "error", err)
		}
	}

	return nil
}

func parsePhaseArg(arg string) (session.Phase, string, error) {
	name, taskID, _ := strings.Cut(arg, ":")

	phase, err := session.ParsePhase(name)
	if err != nil {
		return session.Idle, "", err
	}

	return phase, taskID, nil
}

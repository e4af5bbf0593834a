package uiflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"reelforge/internal/logging"
)

// Action names what a step does.
type Action string

const (
	// ActionClick resolves the step's candidates and clicks the match.
	ActionClick Action = "click"
	// ActionWait blocks for the step's Wait duration without touching the surface.
	ActionWait Action = "wait"
)

// Step is one entry in a fixed linear flow. Click steps carry candidates;
// wait steps carry a duration and never query the surface.
type Step struct {
	Name       string
	Action     Action
	Candidates []Candidate
	Wait       time.Duration
}

// StepResult records what happened to a single step.
type StepResult struct {
	Name            string
	MatchedSelector string
	OK              bool
}

// Outcome summarizes a full run. OK is true only when every step succeeded.
// Steps holds a result for each step that was attempted; steps after a
// failure are never attempted and have no result.
type Outcome struct {
	OK    bool
	Steps []StepResult
	Err   error
}

// Runner executes fixed linear step sequences against a Surface. Steps run
// strictly in order; the first failure stops the run with no rollback of
// earlier UI state.
type Runner struct {
	logger           *slog.Logger
	progressInterval time.Duration
}

// NewRunner builds a Runner. progressInterval controls how often wait steps
// emit remaining-time lines; non-positive values fall back to 15 seconds.
func NewRunner(logger *slog.Logger, progressInterval time.Duration) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	if progressInterval <= 0 {
		progressInterval = 15 * time.Second
	}
	return &Runner{logger: logger, progressInterval: progressInterval}
}

// Run executes steps in order against surface. Any resolve or click failure
// fails the run immediately; remaining steps are not attempted.
func (r *Runner) Run(ctx context.Context, surface Surface, steps []Step) Outcome {
	outcome := Outcome{Steps: make([]StepResult, 0, len(steps))}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			outcome.Steps = append(outcome.Steps, StepResult{Name: step.Name})
			outcome.Err = err
			return outcome
		}

		switch step.Action {
		case ActionWait:
			if err := r.runWait(ctx, step); err != nil {
				outcome.Steps = append(outcome.Steps, StepResult{Name: step.Name})
				outcome.Err = err
				return outcome
			}
			outcome.Steps = append(outcome.Steps, StepResult{Name: step.Name, OK: true})
		case ActionClick:
			result, err := r.runClick(ctx, surface, step)
			outcome.Steps = append(outcome.Steps, result)
			if err != nil {
				outcome.Err = err
				return outcome
			}
		default:
			outcome.Steps = append(outcome.Steps, StepResult{Name: step.Name})
			outcome.Err = fmt.Errorf("step %q: unknown action %q", step.Name, step.Action)
			return outcome
		}
	}

	outcome.OK = true
	return outcome
}

func (r *Runner) runClick(ctx context.Context, surface Surface, step Step) (StepResult, error) {
	match, err := Resolve(ctx, surface, step.Candidates)
	if err != nil {
		if errors.Is(err, ErrSurfaceUnavailable) {
			return StepResult{Name: step.Name}, err
		}
		return StepResult{Name: step.Name}, fmt.Errorf("step %q: %w", step.Name, err)
	}

	if err := match.Element.Click(ctx); err != nil {
		if errors.Is(err, ErrSurfaceUnavailable) {
			return StepResult{Name: step.Name, MatchedSelector: match.Candidate.String()}, err
		}
		return StepResult{Name: step.Name, MatchedSelector: match.Candidate.String()},
			fmt.Errorf("step %q: click via %s: %w", step.Name, match.Candidate, err)
	}

	r.logger.Info("step completed",
		logging.String(logging.FieldStep, step.Name),
		logging.String(logging.FieldSelector, match.Candidate.String()),
	)
	return StepResult{Name: step.Name, MatchedSelector: match.Candidate.String(), OK: true}, nil
}

// runWait blocks for the step's full duration. It performs zero surface
// queries and cannot fail except through context cancellation. A zero wait
// completes immediately without progress output.
func (r *Runner) runWait(ctx context.Context, step Step) error {
	if step.Wait <= 0 {
		return nil
	}

	r.logger.Info("waiting",
		logging.String(logging.FieldStep, step.Name),
		logging.Duration("wait", step.Wait),
	)

	deadline := time.Now().Add(step.Wait)
	ticker := time.NewTicker(r.progressInterval)
	defer ticker.Stop()
	timer := time.NewTimer(step.Wait)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			r.logger.Info("wait complete", logging.String(logging.FieldStep, step.Name))
			return nil
		case <-ticker.C:
			remaining := time.Until(deadline).Round(time.Second)
			if remaining < 0 {
				remaining = 0
			}
			r.logger.Info("still waiting",
				logging.String(logging.FieldStep, step.Name),
				logging.Duration("remaining", remaining),
			)
		}
	}
}

package scheduler

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/specialistvlad/blockgridgo/internal/ctxlog"
)

// Stepper is anything that advances in discrete steps. Step returns true
// while more steps remain.
type Stepper interface {
	Step(ctx context.Context) bool
}

// Scheduler drives a Stepper to completion.
//
// # Cancellation
//
// Drive returns the context error when ctx ends before the stepper is done.
// The stepper is left mid-run; the caller decides how to settle it.
type Scheduler interface {
	Drive(ctx context.Context, s Stepper) error
}

// Paced separates consecutive steps by a fixed delay.
type Paced struct {
	delay time.Duration
}

// New returns a scheduler that waits delay between steps. A non-positive
// delay runs synchronously.
func New(delay time.Duration) *Paced {
	return &Paced{delay: max(delay, 0)}
}

// Delay returns the pause between steps.
func (p *Paced) Delay() time.Duration { return p.delay }

// Drive implements the Scheduler interface.
func (p *Paced) Drive(ctx context.Context, s Stepper) error {
	logger := ctxlog.FromContext(ctx)
	if p.delay == 0 {
		logger.Debug("Driving run synchronously")
		for s.Step(ctx) {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		return nil
	}

	logger.Debug("Driving paced run", "delay", p.delay)
	limiter := rate.NewLimiter(rate.Every(p.delay), 1)
	for {
		if err := limiter.Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return err
		}
		if !s.Step(ctx) {
			return nil
		}
	}
}

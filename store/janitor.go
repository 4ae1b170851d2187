package store

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Janitor runs periodic retention sweeps against a Sweeper on a cron
// schedule. Each sweep deletes expired artifacts so the store does not grow
// without bound between reads.
type Janitor struct {
	cron    *cron.Cron
	sweeper Sweeper
	onSweep func(removed int, err error)
}

// NewJanitor schedules sweeps of sw according to schedule, which accepts
// standard cron syntax as well as the @every duration shorthand (for
// example "@every 1h"). onSweep, if non-nil, is invoked after every sweep
// with its outcome.
func NewJanitor(sw Sweeper, schedule string, onSweep func(removed int, err error)) (*Janitor, error) {
	j := &Janitor{
		cron:    cron.New(),
		sweeper: sw,
		onSweep: onSweep,
	}
	if _, err := j.cron.AddFunc(schedule, j.sweep); err != nil {
		return nil, fmt.Errorf("janitor schedule %q: %w", schedule, err)
	}
	return j, nil
}

func (j *Janitor) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	removed, err := j.sweeper.Sweep(ctx)
	if j.onSweep != nil {
		j.onSweep(removed, err)
	}
}

// Start begins running scheduled sweeps in the background.
func (j *Janitor) Start() {
	j.cron.Start()
}

// Stop halts scheduling and waits for an in-flight sweep to finish.
func (j *Janitor) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
}

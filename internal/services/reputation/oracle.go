package reputation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bobmcallan/investbadge/internal/common"
	"github.com/bobmcallan/investbadge/internal/interfaces"
	"github.com/bobmcallan/investbadge/internal/models"
)

// ErrConfirmationRejected is returned by SimulatedOracle for injected faults.
var ErrConfirmationRejected = errors.New("score confirmation rejected")

// SimulatedOracle stands in for the on-chain badge update. It waits a fixed
// delay and fails a configured percentage of confirmations.
type SimulatedOracle struct {
	delay          time.Duration
	failurePercent int
	rng            Rand
	logger         *common.Logger
}

var _ interfaces.ScoreOracle = (*SimulatedOracle)(nil)

// NewSimulatedOracle creates an oracle. failurePercent is clamped to [0, 100].
func NewSimulatedOracle(delay time.Duration, failurePercent int, rng Rand, logger *common.Logger) *SimulatedOracle {
	if failurePercent < 0 {
		failurePercent = 0
	}
	if failurePercent > 100 {
		failurePercent = 100
	}
	if rng == nil {
		rng = NewRand(0)
	}
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &SimulatedOracle{delay: delay, failurePercent: failurePercent, rng: rng, logger: logger}
}

// Confirm waits for the configured delay, or until ctx is done.
func (o *SimulatedOracle) Confirm(ctx context.Context, c models.ScoreConfirmation) error {
	if o.delay > 0 {
		timer := time.NewTimer(o.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return err
	}

	if o.failurePercent > 0 && o.rng.IntN(100) < o.failurePercent {
		o.logger.Debug().Str("task_id", c.TaskID).Str("profile_id", c.ProfileID).Msg("Simulated confirmation failure")
		return fmt.Errorf("%w: task %s", ErrConfirmationRejected, c.TaskID)
	}

	o.logger.Debug().
		Str("task_id", c.TaskID).
		Str("profile_id", c.ProfileID).
		Int("score", c.Score).
		Msg("Score confirmed")
	return nil
}

package interfaces

import (
	"context"

	"github.com/bobmcallan/investbadge/internal/models"
)

// ScoreOracle confirms a recomputed score with the external badge registry
// before it is settled into a profile. Implementations must honour ctx.
type ScoreOracle interface {
	Confirm(ctx context.Context, confirmation models.ScoreConfirmation) error
}

package app

import (
	"context"
	"time"

	"github.com/bobmcallan/investbadge/internal/common"
	"github.com/bobmcallan/investbadge/internal/interfaces"
)

// startRefreshScheduler refreshes every connected session on a fixed interval.
func startRefreshScheduler(ctx context.Context, sessions interfaces.SessionService, logger *common.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info().Dur("interval", interval).Msg("Refresh scheduler: started")
	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Refresh scheduler: stopped")
			return
		case <-ticker.C:
			refreshSessions(ctx, sessions, logger)
		}
	}
}

func refreshSessions(ctx context.Context, sessions interfaces.SessionService, logger *common.Logger) {
	start := time.Now()
	if err := sessions.RefreshAll(ctx); err != nil {
		logger.Warn().Err(err).Msg("Refresh scheduler: refresh failed")
		return
	}
	logger.Debug().Dur("elapsed", time.Since(start)).Msg("Refresh scheduler: complete")
}

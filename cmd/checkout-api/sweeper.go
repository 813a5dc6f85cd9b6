package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/platform/config"
)

const sweepTimeout = time.Minute

type ledgerCleaner interface {
	CleanupPlacementLedger(ctx context.Context, limit int) (int, error)
}

// sweepLedger purges expired placement ledger records every cfg.CleanupInterval until ctx ends.
func sweepLedger(ctx context.Context, logger *zap.Logger, cleaner ledgerCleaner, cfg config.IdempotencyConfig) {
	if cleaner == nil || cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		runCtx, cancel := context.WithTimeout(ctx, sweepTimeout)
		removed, err := cleaner.CleanupPlacementLedger(runCtx, cfg.CleanupBatchSize)
		cancel()
		switch {
		case err != nil:
			logger.Error("placement ledger sweep failed", zap.Error(err))
		case removed > 0:
			logger.Info("placement ledger sweep removed records", zap.Int("count", removed))
		}
	}
}

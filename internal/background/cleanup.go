package background

import (
	"context"
	"log/slog"
	"time"

	"github.com/BradenHooton/logingate/internal/models"
)

// HistorySweeper drops login histories that no policy can look at anymore
type HistorySweeper interface {
	SweepExpired() map[models.Dimension]int
}

// CleanupManager periodically evicts stale login histories
type CleanupManager struct {
	sweeper  HistorySweeper
	logger   *slog.Logger
	interval time.Duration
	stopCh   chan struct{}
}

// NewCleanupManager creates a new cleanup manager
func NewCleanupManager(sweeper HistorySweeper, logger *slog.Logger, interval time.Duration) *CleanupManager {
	return &CleanupManager{
		sweeper:  sweeper,
		logger:   logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic cleanup task
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	// Run immediately on startup
	cm.runCleanup(ctx)

	for {
		select {
		case <-ticker.C:
			cm.runCleanup(ctx)
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

// runCleanup sweeps every dimension once
func (cm *CleanupManager) runCleanup(ctx context.Context) {
	removed := cm.sweeper.SweepExpired()

	total := 0
	attrs := make([]slog.Attr, 0, len(removed)+1)
	for _, d := range models.Dimensions {
		total += removed[d]
		attrs = append(attrs, slog.Int(string(d)+"_removed", removed[d]))
	}

	if total > 0 {
		attrs = append(attrs, slog.Int("total_removed", total))
		cm.logger.LogAttrs(ctx, slog.LevelInfo, "stale login history cleanup completed", attrs...)
	}
}

// Stop signals the cleanup manager to stop
func (cm *CleanupManager) Stop() {
	close(cm.stopCh)
}

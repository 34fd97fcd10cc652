package sessiondb

import (
	"context"
	"time"

	"github.com/dmitrymomot/sqlitestore/pkg/logger"
)

// startSweeper runs the periodic sweep until Close.
func (db *DB) startSweeper() {
	if db.cfg.CleanupInterval <= 0 {
		return
	}
	db.wg.Add(1)
	go db.sweepLoop(db.cfg.CleanupInterval)
}

func (db *DB) sweepLoop(interval time.Duration) {
	defer db.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			db.sweepAndLog(context.Background())
		case <-db.done:
			return
		}
	}
}

// sweepAndLog runs one sweep. Failures are logged and never stop the loop.
func (db *DB) sweepAndLog(ctx context.Context) {
	start := time.Now()
	n, err := db.Sweep(ctx, db.now())
	if IsBusyError(err) {
		db.log.WarnContext(ctx, "expired session sweep skipped, database busy", logger.Error(err))
		return
	}
	if err != nil {
		db.log.ErrorContext(ctx, "expired session sweep failed", logger.Error(err))
		return
	}
	db.log.DebugContext(ctx, "expired sessions swept", logger.Count(n), logger.Duration(time.Since(start)))
}

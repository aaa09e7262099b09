// Package workers runs the periodic maintenance sweeps: the nightly
// completion reset, proposal cleanup and the monthly recovery reset. The
// admin HTTP routes expose the same operations for an external scheduler;
// everything here is idempotent so the two never conflict.
package workers

import (
	"context"
	"log"
	"time"

	"lovebotAPI/internal/clock"
)

type StreakMaintenance interface {
	ResetDailyCompletions(ctx context.Context) (int64, error)
	ResetMonthlyRecoveries(ctx context.Context) (int64, error)
}

type ProposalJanitor interface {
	CleanupProposals(ctx context.Context) (int64, error)
}

type MaintenanceWorker struct {
	clock     *clock.Clock
	streaks   StreakMaintenance
	proposals ProposalJanitor

	lastDate  string
	lastMonth string
}

func NewMaintenanceWorker(clk *clock.Clock, streaks StreakMaintenance, proposals ProposalJanitor) *MaintenanceWorker {
	return &MaintenanceWorker{
		clock:     clk,
		streaks:   streaks,
		proposals: proposals,
		lastDate:  clk.Today(),
		lastMonth: clk.CurrentMonth(),
	}
}

// Start polls for civil day and month boundaries once a minute.
func (w *MaintenanceWorker) Start() {
	ticker := time.NewTicker(time.Minute)
	go func() {
		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			w.tick(ctx)
			cancel()
		}
	}()
}

func (w *MaintenanceWorker) tick(ctx context.Context) {
	// Month first: on the 1st both fire, and check-ins arriving between
	// the sweeps must already see the fresh budget.
	if month := w.clock.CurrentMonth(); month != w.lastMonth {
		w.lastMonth = month
		if _, err := w.streaks.ResetMonthlyRecoveries(ctx); err != nil {
			log.Printf("[MaintenanceWorker] Monthly recovery reset failed: %v", err)
		}
	}

	if today := w.clock.Today(); today != w.lastDate {
		w.lastDate = today
		if _, err := w.streaks.ResetDailyCompletions(ctx); err != nil {
			log.Printf("[MaintenanceWorker] Daily completion reset failed: %v", err)
		}
		if _, err := w.proposals.CleanupProposals(ctx); err != nil {
			log.Printf("[MaintenanceWorker] Proposal cleanup failed: %v", err)
		}
	}
}

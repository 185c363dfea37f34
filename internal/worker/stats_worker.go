package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/yourorg/helpdesk/internal/domain"
	"github.com/yourorg/helpdesk/internal/observability/metrics"
)

// knownStatuses is the full set so gauges reset to zero when the last
// ticket of a status disappears.
var knownStatuses = []domain.TicketStatus{
	domain.StatusPending,
	domain.StatusInProgress,
	domain.StatusCompleted,
	domain.StatusCancelled,
}

// StatsWorker periodically exports ticket counts per status as
// Prometheus gauges
type StatsWorker struct {
	tickets  domain.TicketRepository
	logger   *slog.Logger
	interval time.Duration
}

// NewStatsWorker creates a new stats worker
func NewStatsWorker(tickets domain.TicketRepository, logger *slog.Logger, interval time.Duration) *StatsWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatsWorker{
		tickets:  tickets,
		logger:   logger,
		interval: interval,
	}
}

// Start begins the stats loop and blocks until the context is done
func (w *StatsWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("ticket stats worker started", slog.Duration("interval", w.interval))
	w.refresh()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("ticket stats worker stopped")
			return
		case <-ticker.C:
			w.refresh()
		}
	}
}

func (w *StatsWorker) refresh() {
	counts, err := w.tickets.CountByStatus()
	if err != nil {
		w.logger.Error("failed to count tickets", slog.String("error", err.Error()))
		return
	}

	for _, status := range knownStatuses {
		metrics.SetTicketsByStatus(string(status), counts[status])
	}
}

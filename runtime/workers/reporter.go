package workers

import (
	"chatline/observability"
	"context"
	"log/slog"
	"time"
)

// ReporterWorker periodically logs the monitoring snapshot. Runs under
// the supervisor like any other worker.
type ReporterWorker struct {
	log        *slog.Logger
	monitoring *observability.MonitoringManager
	interval   time.Duration
}

func NewReporterWorker(log *slog.Logger, monitoring *observability.MonitoringManager,
	interval time.Duration) *ReporterWorker {
	return &ReporterWorker{log: log, monitoring: monitoring, interval: interval}
}

func (w *ReporterWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.report()
			return nil
		case <-ticker.C:
			w.report()
		}
	}
}

func (w *ReporterWorker) report() {
	stats := w.monitoring.GetLatest()
	w.log.Info("server stats",
		"online_users", stats.OnlineUsers,
		"messages_sent", stats.MessagesSent,
		"messages_delivered", stats.MessagesDelivered,
		"messages_read", stats.MessagesRead,
		"events_dropped", stats.EventsDropped,
		"frames_rejected", stats.FramesRejected,
		"rss_mb", stats.RSSMb,
		"cpu_percent", stats.CPUPercent,
	)
}

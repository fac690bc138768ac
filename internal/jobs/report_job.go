// Package jobs holds scheduled background tasks.
package jobs

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/robfig/cron/v3"

	"github.com/iliamunaev/virtual-cafe/internal/cafe"
	"github.com/iliamunaev/virtual-cafe/internal/config"
)

type statser interface {
	Stats() cafe.Stats
}

// ReportJob periodically logs pool occupancy and queue depths.
type ReportJob struct {
	source   statser
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
	runs     atomic.Int64
}

// NewReportJob creates a job for schedule, in the syntax accepted by
// config.ScheduleParser.
func NewReportJob(source statser, schedule string, logger *slog.Logger) *ReportJob {
	return &ReportJob{
		source:   source,
		schedule: schedule,
		cron:     cron.New(cron.WithParser(config.ScheduleParser)),
		logger:   logger.With("component", "report_job"),
	}
}

// Start registers the report and starts the scheduler.
func (j *ReportJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, j.Report); err != nil {
		return err
	}
	j.cron.Start()
	j.logger.Info("report job started", "schedule", j.schedule)
	return nil
}

// Stop stops the scheduler and waits for a running report to finish.
func (j *ReportJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("report job stopped", "runs", j.runs.Load())
}

// Run starts the job and stops it when ctx is done.
func (j *ReportJob) Run(ctx context.Context) error {
	if err := j.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	j.Stop()
	return nil
}

// Report logs one stats snapshot.
func (j *ReportJob) Report() {
	st := j.source.Stats()
	j.runs.Add(1)

	attrs := []any{
		"waiting_orders", st.WaitingOrders,
		"waiting_items", st.WaitingItems,
		"brewing_items", st.BrewingItems,
		"tray_items", st.TrayItems,
		"running_brews", st.RunningBrews,
		"active_sessions", st.ActiveSessions,
	}
	for _, p := range st.Pools {
		attrs = append(attrs, slog.Group(p.Kind,
			"in_use", p.InUse,
			"capacity", p.Capacity,
			"peak", p.Peak,
		))
	}
	j.logger.Info("cafe report", attrs...)
}

// Runs returns how many reports have been written.
func (j *ReportJob) Runs() int64 { return j.runs.Load() }

// Package scheduler runs the periodic overdue reminder job.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"library_management/internal/services"
)

// Actor is recorded on anything the scheduled job writes.
const Actor = "scheduler"

const defaultTimeout = 5 * time.Minute

// ReminderJob sends return reminders for every overdue loan.
type ReminderJob struct {
	reports services.ReportService
	log     logrus.FieldLogger
	timeout time.Duration
}

func NewReminderJob(reports services.ReportService, log logrus.FieldLogger) *ReminderJob {
	return &ReminderJob{reports: reports, log: log, timeout: defaultTimeout}
}

// Run implements cron.Job.
func (j *ReminderJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()
	_, _ = j.RunOnce(ctx)
}

func (j *ReminderJob) RunOnce(ctx context.Context) (services.ReminderResult, error) {
	start := time.Now()
	result, err := j.reports.SendOverdueReminders(services.WithActor(ctx, Actor))
	if err != nil {
		j.log.WithError(err).Error("ReminderJob: overdue reminders failed")
		return result, err
	}
	j.log.WithFields(logrus.Fields{
		"sent":     result.SentCount,
		"duration": time.Since(start).String(),
	}).Info("ReminderJob: overdue reminders sent")
	return result, nil
}

type Scheduler struct {
	cron *cron.Cron
	log  logrus.FieldLogger
}

// New schedules job on a standard five-field cron spec. A run that is still
// going when the next one is due causes that next run to be skipped.
func New(spec string, job cron.Job, log logrus.FieldLogger) (*Scheduler, error) {
	logger := cron.PrintfLogger(log)
	c := cron.New(cron.WithLogger(logger), cron.WithChain(
		cron.Recover(logger),
		cron.SkipIfStillRunning(logger),
	))
	if _, err := c.AddJob(spec, job); err != nil {
		return nil, fmt.Errorf("schedule %q: %w", spec, err)
	}
	return &Scheduler{cron: c, log: log}, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	for _, e := range s.cron.Entries() {
		s.log.WithField("next_run", e.Next.Format(time.RFC3339)).Info("Scheduler: started")
	}
}

// Stop halts scheduling and returns a context that is done once running
// jobs have finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

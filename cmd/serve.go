package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"library_management/internal/handlers"
	"library_management/internal/metrics"
	"library_management/internal/scheduler"
)

func newServeCmd(a *app) *cobra.Command {
	var noCron bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the reminder schedule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context(), !noCron)
		},
	}
	cmd.Flags().BoolVar(&noCron, "no-cron", false, "do not schedule overdue reminders")
	return cmd
}

func (a *app) serve(ctx context.Context, withCron bool) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := a.openDB()
	if err != nil {
		return err
	}
	defer closeDB(db)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)
	lib := a.library(db, m)

	if withCron {
		sched, err := scheduler.New(a.cfg.ReminderSchedule, scheduler.NewReminderJob(lib.Reports, a.log), a.log)
		if err != nil {
			return err
		}
		sched.Start()
		defer func() { <-sched.Stop().Done() }()
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:         a.cfg.ServerAddr,
		Handler:      handlers.NewRouter(lib, a.log, m, reg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Infof("Starting server on %s", a.cfg.ServerAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"library_management/internal/config"
	"library_management/internal/metrics"
	"library_management/internal/notify"
	"library_management/internal/repositories"
	"library_management/internal/services"
)

// app is the state shared by every subcommand once configuration is loaded.
type app struct {
	envFile string
	cfg     *config.Config
	log     *logrus.Logger
}

func main() {
	a := &app{}
	root := &cobra.Command{
		Use:           "library",
		Short:         "Library management service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load()
		},
	}
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	root.AddCommand(
		newServeCmd(a),
		newMigrateCmd(a),
		newOverdueCmd(a),
		newRemindCmd(a),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func (a *app) load() error {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return err
	}
	log, err := config.NewLogger(cfg)
	if err != nil {
		return err
	}
	a.cfg, a.log = cfg, log
	return nil
}

// openDB connects to PostgreSQL with the configured pool limits.
func (a *app) openDB() (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(a.cfg.DatabaseURL), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get generic DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(a.cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(a.cfg.DBMaxIdleConns)
	sqlDB.SetConnMaxLifetime(a.cfg.DBConnMaxLifetime)
	return db, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// library wires the services over db. m may be nil.
func (a *app) library(db *gorm.DB, m *metrics.Metrics) *services.Library {
	repos := repositories.New(db)

	var notifier notify.Notifier = notify.NewOutboxNotifier(db, repos.Notifications)
	if a.cfg.Notifier == config.NotifierLog {
		notifier = notify.NewLogNotifier(a.log)
	}

	return services.NewLibrary(db, repos,
		services.WithLogger(a.log),
		services.WithMetrics(m),
		services.WithNotifier(notifier),
	)
}

package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"library_management/internal/migrations"
	"library_management/internal/policy"
	"library_management/internal/services"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer closeDB(db)

			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			if err := migrations.Apply(cmd.Context(), sqlDB); err != nil {
				return err
			}
			a.log.Info("migrate: schema is up to date")
			return nil
		},
	}
}

func newOverdueCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "overdue",
		Short: "Print the overdue books report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer closeDB(db)

			rows, err := a.library(db, nil).Reports.IssuedBooks(cmd.Context(), services.IssuedBooksFilter{
				Status: policy.StatusOverdue,
			})
			if err != nil {
				return err
			}
			if asJSON {
				enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}
			return printOverdue(rows)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print rows as JSON")
	return cmd
}

func printOverdue(rows []services.IssuedBookReportRow) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TRANSACTION\tMEMBER\tBOOK\tDUE\tDAYS OVERDUE\tSTATUS")
	for _, r := range rows {
		due := ""
		if r.DueDate != nil {
			due = r.DueDate.Format(time.DateOnly)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			r.TransactionID, r.MemberName, r.BookTitle, due, r.DaysOverdue, r.Status)
	}
	fmt.Fprintf(w, "\n%d overdue\n", len(rows))
	return w.Flush()
}

func newRemindCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remind",
		Short: "Send overdue reminders once",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer closeDB(db)

			ctx := services.WithActor(cmd.Context(), "cli")
			result, err := a.library(db, nil).Reports.SendOverdueReminders(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sent %d reminder(s)\n", result.SentCount)
			return nil
		},
	}
}

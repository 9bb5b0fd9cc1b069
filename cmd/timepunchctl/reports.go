package main

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/oakmontlabs/timepunch/internal/reports"
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Manage weekly report snapshots",
}

var (
	reportsUserID string
	reportsDate   string
)

var reportsGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a weekly report snapshot for a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		ref := time.Now()
		if reportsDate != "" {
			parsed, err := time.ParseInLocation("2006-01-02", reportsDate, time.Local)
			if err != nil {
				return fmt.Errorf("invalid --date, want YYYY-MM-DD: %w", err)
			}
			ref = parsed
		}

		injector := setupDI()
		reportsSvc := do.MustInvoke[*reports.Service](injector)

		row, err := reportsSvc.GenerateWeekly(context.Background(), reportsUserID, ref)
		if err != nil {
			return err
		}
		fmt.Printf("week %s: %d sessions, %.2fh, earnings %.2f\n",
			row.WeekID, row.SessionCount, float64(row.TotalMS)/3600000.0, row.Earnings)
		return nil
	},
}

func init() {
	reportsGenerateCmd.Flags().StringVar(&reportsUserID, "user", "", "user id (required)")
	reportsGenerateCmd.Flags().StringVar(&reportsDate, "date", "", "any date inside the target week, YYYY-MM-DD")
	_ = reportsGenerateCmd.MarkFlagRequired("user")
	reportsCmd.AddCommand(reportsGenerateCmd)
}

package main

import (
	"context"
	"fmt"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/oakmontlabs/timepunch/internal/auth"
)

var codesCmd = &cobra.Command{
	Use:   "codes",
	Short: "Manage employee codes",
}

var codesBackfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Assign employee codes to non-admin accounts missing one",
	RunE: func(cmd *cobra.Command, args []string) error {
		injector := setupDI()
		authSvc := do.MustInvoke[*auth.Service](injector)

		assigned, err := authSvc.BackfillEmployeeCodes(context.Background())
		if err != nil {
			return err
		}
		fmt.Printf("assigned %d employee codes\n", assigned)
		return nil
	},
}

func init() {
	codesCmd.AddCommand(codesBackfillCmd)
}

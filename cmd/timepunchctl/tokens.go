package main

import (
	"context"
	"fmt"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/oakmontlabs/timepunch/internal/auth"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "Manage auth tokens",
}

var tokensCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete expired refresh and password-reset tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		injector := setupDI()
		authSvc := do.MustInvoke[*auth.Service](injector)

		removed, err := authSvc.CleanExpired(context.Background())
		if err != nil {
			return err
		}
		fmt.Printf("removed %d expired tokens\n", removed)
		return nil
	},
}

func init() {
	tokensCmd.AddCommand(tokensCleanCmd)
}

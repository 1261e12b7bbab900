package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the embedded schema (idempotent)",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context(), cmd, true)
		if err != nil {
			return err
		}
		defer e.Close()

		fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
		return nil
	},
}

package main

import (
	"fmt"

	"github.com/nyashahama/scas-screening-backend/internal/bootstrap"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the SCAS questionnaire and the admin account",
	Long: "Insert the SCAS_CHILD questionnaire and, when ADMIN_PASSWORD is set, " +
		"the bootstrap administrator. Running it twice changes nothing.",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context(), cmd, migrateFlag(cmd))
		if err != nil {
			return err
		}
		defer e.Close()

		q, err := bootstrap.Seed(cmd.Context(), e.store, e.cfg, e.logger)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d items, %d scored\n", q.Code, q.Len(), q.ScoredCount())
		return nil
	},
}

func init() {
	seedCmd.Flags().Bool("migrate", false, "apply the schema before seeding")
}

func migrateFlag(cmd *cobra.Command) bool {
	m, _ := cmd.Flags().GetBool("migrate")
	return m
}

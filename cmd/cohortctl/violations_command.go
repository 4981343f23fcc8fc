package main

import (
	"github.com/spf13/cobra"

	"github.com/dtroode/cohort-migrator/internal/app"
)

func newViolationsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "violations",
		Short: "List recent attempts to bypass the execution guard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(a *app.App) error {
				violations, err := a.Monitor.Violations(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if ctx.json() {
					return writeJSON(cmd, violations)
				}
				return printLine(cmd, renderViolations(violations))
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of violations to show")
	return cmd
}

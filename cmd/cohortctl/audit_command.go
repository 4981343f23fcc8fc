package main

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/dtroode/cohort-migrator/internal/app"
	"github.com/dtroode/cohort-migrator/internal/model"
)

func newAuditCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "List recent runs of the configured cohort",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(a *app.App) error {
				entries, err := a.Migration.History(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if ctx.json() {
					return writeJSON(cmd, entries)
				}
				return printLine(cmd, renderAudit(entries))
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show")
	return cmd
}

func renderAudit(entries []model.AuditEntry) string {
	if len(entries) == 0 {
		return "No runs recorded for this cohort"
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.CreatedAt.UTC().Format(time.RFC3339),
			string(e.Action),
			e.Executor,
			strconv.Itoa(e.Processed),
			strconv.Itoa(e.Successful),
			strconv.Itoa(e.Errored),
			e.ID.String(),
		})
	}
	return renderTable(
		[]string{"When", "Action", "Executor", "Processed", "Successful", "Errored", "Audit entry"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
	)
}

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dtroode/cohort-migrator/internal/app"
	"github.com/dtroode/cohort-migrator/internal/model"
	"github.com/dtroode/cohort-migrator/internal/service"
)

func newRollbackCommand(ctx *commandContext) *cobra.Command {
	var ids []string
	var fromReport string
	var confirm string

	cmd := &cobra.Command{
		Use:   "rollback",
		Short: "Restore identities to their state before the cohort migration",
		Long: "Restore identities from their latest snapshot for the configured cohort.\n" +
			"Identities come from --id or from the applied results of a saved JSON report.",
		RunE: func(cmd *cobra.Command, args []string) error {
			targets, err := rollbackTargets(ids, fromReport)
			if err != nil {
				return err
			}
			actor, err := ctx.actor()
			if err != nil {
				return err
			}
			return ctx.withApp(cmd, func(a *app.App) error {
				report, err := a.Rollback.Restore(cmd.Context(), service.RollbackRequest{
					Actor:       actor,
					IdentityIDs: targets,
					Confirmer:   newConfirmer(cmd.InOrStdin(), cmd.ErrOrStderr(), confirm),
				})
				if err != nil {
					return err
				}
				return ctx.printRollback(cmd, report)
			})
		},
	}

	cmd.Flags().StringSliceVar(&ids, "id", nil, "Identity id to restore (repeatable)")
	cmd.Flags().StringVar(&fromReport, "from-report", "", "JSON report of a sample or execute run")
	cmd.Flags().StringVar(&confirm, "confirm", "", "Confirmation phrase, for non-interactive runs")
	return cmd
}

// rollbackTargets collects the identities to restore. Duplicates are dropped
// and the first occurrence wins.
func rollbackTargets(ids []string, reportPath string) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]struct{})
	var out []uuid.UUID
	add := func(id uuid.UUID) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}

	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid identity id %q: %w", raw, err)
		}
		add(id)
	}

	if reportPath != "" {
		raw, err := os.ReadFile(reportPath)
		if err != nil {
			return nil, fmt.Errorf("read report: %w", err)
		}
		var report model.Report
		if err := json.Unmarshal(raw, &report); err != nil {
			return nil, fmt.Errorf("decode report %s: %w", reportPath, err)
		}
		for _, res := range report.Results {
			if res.Applied && res.IdentityID != uuid.Nil {
				add(res.IdentityID)
			}
		}
	}

	if len(out) == 0 {
		return nil, errors.New("nothing to roll back, pass --id or --from-report")
	}
	return out, nil
}

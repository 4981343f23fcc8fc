package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/dtroode/cohort-migrator/internal/app"
	"github.com/dtroode/cohort-migrator/internal/model"
	"github.com/dtroode/cohort-migrator/internal/service"
)

func newClassifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "classify",
		Short: "Match every cohort record against existing identities without writing",
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := ctx.actor()
			if err != nil {
				return err
			}
			return ctx.withApp(cmd, func(a *app.App) error {
				report, err := a.Migration.Classify(cmd.Context(), actor)
				if err != nil {
					return err
				}
				return ctx.printReport(cmd, report)
			})
		},
	}
}

func newSampleCommand(ctx *commandContext) *cobra.Command {
	return newMutatingCommand(ctx, "sample", "Apply a small sample covering every match category",
		func(a *app.App, c context.Context, req service.RunRequest) (model.Report, error) {
			return a.Migration.Sample(c, req)
		})
}

func newExecuteCommand(ctx *commandContext) *cobra.Command {
	return newMutatingCommand(ctx, "execute", "Apply every record of the cohort",
		func(a *app.App, c context.Context, req service.RunRequest) (model.Report, error) {
			return a.Migration.Execute(c, req)
		})
}

type runFunc func(a *app.App, ctx context.Context, req service.RunRequest) (model.Report, error)

func newMutatingCommand(ctx *commandContext, use, short string, run runFunc) *cobra.Command {
	var confirm string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := ctx.actor()
			if err != nil {
				return err
			}
			return ctx.withApp(cmd, func(a *app.App) error {
				report, err := run(a, cmd.Context(), service.RunRequest{
					Actor:     actor,
					Confirmer: newConfirmer(cmd.InOrStdin(), cmd.ErrOrStderr(), confirm),
				})
				if err != nil {
					return err
				}
				return ctx.printReport(cmd, report)
			})
		},
	}

	cmd.Flags().StringVar(&confirm, "confirm", "", "Confirmation phrase, for non-interactive runs")
	return cmd
}

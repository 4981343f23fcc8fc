package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dtroode/cohort-migrator/internal/service"
	"github.com/dtroode/cohort-migrator/internal/token"
)

func newTokenCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage operator tokens for the gRPC API",
	}

	var operator string
	issue := &cobra.Command{
		Use:   "issue",
		Short: "Issue a bearer token for an operator",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			lg, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			tokens := service.NewTokenService(token.NewJWT(cfg.JWT.Secret), lg)
			signed, err := tokens.Issue(cmd.Context(), operator)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), signed)
			return nil
		},
	}
	issue.Flags().StringVar(&operator, "operator", "", "Operator name carried by the token")
	_ = issue.MarkFlagRequired("operator")

	cmd.AddCommand(issue)
	return cmd
}

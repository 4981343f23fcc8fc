package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dtroode/cohort-migrator/internal/app"
	"github.com/dtroode/cohort-migrator/internal/model"
)

func newCredentialCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credential",
		Short: "Complete the forced password reset of a migrated identity",
	}

	var email string
	reset := &cobra.Command{
		Use:   "reset",
		Short: "Replace the temporary password; reads the current and new password from stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			current, next, err := readPasswords(cmd)
			if err != nil {
				return err
			}
			return ctx.withApp(cmd, func(a *app.App) error {
				identity, err := a.Credential.Authenticate(cmd.Context(), email, current)
				switch {
				case errors.Is(err, model.ErrPasswordResetRequired):
				case err != nil:
					return err
				default:
					return errors.New("identity has no pending password reset")
				}
				if err := a.Credential.CompleteReset(cmd.Context(), identity.ID, next); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Password reset for %s\n", identity.Email)
				return nil
			})
		},
	}
	reset.Flags().StringVar(&email, "email", "", "Email of the identity")
	_ = reset.MarkFlagRequired("email")

	cmd.AddCommand(reset)
	return cmd
}

func readPasswords(cmd *cobra.Command) (string, string, error) {
	scanner := bufio.NewScanner(cmd.InOrStdin())
	var lines []string
	for len(lines) < 2 && scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return "", "", fmt.Errorf("read passwords: %w", err)
	}
	if len(lines) < 2 {
		return "", "", errors.New("expected the current and the new password on separate lines")
	}
	return lines[0], lines[1], nil
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dtroode/cohort-migrator/internal/guard"
)

func newEmergencyCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "emergency",
		Short: "Inspect or flip the switch that blocks all destructive runs",
	}

	emergencySwitch := func() (*guard.EmergencySwitch, error) {
		cfg, err := ctx.ensureConfig()
		if err != nil {
			return nil, err
		}
		return guard.NewEmergencySwitch(cfg.Migration.EmergencyFlag), nil
	}

	var reason string
	engage := &cobra.Command{
		Use:   "engage",
		Short: "Block every destructive run until disengaged",
		RunE: func(cmd *cobra.Command, args []string) error {
			sw, err := emergencySwitch()
			if err != nil {
				return err
			}
			actor, err := ctx.actor()
			if err != nil {
				return err
			}
			if err := sw.Engage(actor, reason); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Emergency switch engaged (%s)\n", sw.Path())
			return nil
		},
	}
	engage.Flags().StringVar(&reason, "reason", "", "Why destructive runs are being blocked")
	_ = engage.MarkFlagRequired("reason")

	disengage := &cobra.Command{
		Use:   "disengage",
		Short: "Allow destructive runs again",
		RunE: func(cmd *cobra.Command, args []string) error {
			sw, err := emergencySwitch()
			if err != nil {
				return err
			}
			if err := sw.Disengage(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Emergency switch disengaged (%s)\n", sw.Path())
			return nil
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show whether destructive runs are blocked",
		RunE: func(cmd *cobra.Command, args []string) error {
			sw, err := emergencySwitch()
			if err != nil {
				return err
			}
			engaged, checkErr := sw.Engaged()
			if ctx.json() {
				return writeJSON(cmd, map[string]any{"engaged": engaged, "path": sw.Path()})
			}
			state := "disengaged"
			if engaged {
				state = "engaged"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Emergency switch %s (%s)\n", state, sw.Path())
			if checkErr != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", checkErr)
			}
			return nil
		},
	}

	cmd.AddCommand(engage, disengage, status)
	return cmd
}

package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mcoot/racesync/internal/api/response"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the state mirrored by a running connect",
		Long: `Query the status API of a running "racesync connect" (see --status-addr).

With no subcommand, prints the session.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Session
			if err := client.Get("/api/v1/session", &result); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "health",
		Short: "Check the status API",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Health
			if err := client.Get("/api/v1/health", &result); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "races",
		Short: "List known races",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.RaceList
			if err := client.Get("/api/v1/races", &result); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "race <id>",
		Short: "Show a race and its roster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := strconv.Atoi(args[0]); err != nil {
				return err
			}
			var result response.Race
			if err := client.Get("/api/v1/races/"+args[0], &result); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	})

	return cmd
}

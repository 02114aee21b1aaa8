package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"frontpage/internal/preflight"
	"frontpage/internal/services"
)

func newPreflightCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "preflight",
		Short: "Verify external tools, staging space, and the archive key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			results := preflight.Run(cfg, ctx.configPath)
			rows := make([][]string, 0, len(results))
			for _, result := range results {
				status := "FAIL"
				switch {
				case result.Passed:
					status = "OK"
				case result.Optional:
					status = "MISSING (optional)"
				}
				rows = append(rows, []string{result.Name, status, result.Detail})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Check", "Status", "Detail"}, rows))

			if !preflight.AllRequiredPassed(results) {
				return services.Wrap(services.ErrConfiguration, "preflight", "run",
					"one or more required checks failed", nil)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All required checks passed.")
			return nil
		},
	}
}

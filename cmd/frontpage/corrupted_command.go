package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"frontpage/internal/registry"
	"frontpage/internal/services"
)

func newCorruptedCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corrupted",
		Short: "Inspect and maintain the corrupted-source registry",
	}

	cmd.AddCommand(newCorruptedListCommand(ctx))
	cmd.AddCommand(newCorruptedMarkCommand(ctx))
	return cmd
}

func newCorruptedListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List dates registered as having a corrupted source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			reg, err := registry.Load(cfg.Files.RegistryFile)
			if err != nil {
				return services.Wrap(services.ErrConfiguration, "registry", "load", "", err)
			}

			out := cmd.OutOrStdout()
			if reg.Len() == 0 {
				fmt.Fprintln(out, "No corrupted dates registered.")
				return nil
			}
			rows := make([][]string, 0, reg.Len())
			for _, date := range reg.Dates() {
				rows = append(rows, []string{date.ISO(), date.DisplayLong()})
			}
			fmt.Fprintln(out, renderTable([]string{"Date", ""}, rows))
			fmt.Fprintf(out, "%d corrupted dates.\n", reg.Len())
			return nil
		},
	}
}

func newCorruptedMarkCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "mark DATE",
		Short: "Register a date's source document as corrupted",
		Long: `Add the date to the corrupted-source registry. Future runs for the
date skip the asset fetch and file a placeholder entry instead.
Marking an already-registered date is a no-op.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := resolveDateArg(args)
			if err != nil {
				return err
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			reg, err := registry.Load(cfg.Files.RegistryFile)
			if err != nil {
				return services.Wrap(services.ErrConfiguration, "registry", "load", "", err)
			}

			added, err := reg.Mark(date)
			if err != nil {
				return services.Wrap(services.ErrConfiguration, "registry", "mark", "", err)
			}
			if added {
				fmt.Fprintf(cmd.OutOrStdout(), "Marked %s as corrupted.\n", date.ISO())
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s was already marked as corrupted.\n", date.ISO())
			}
			return nil
		},
	}
}

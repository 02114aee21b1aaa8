package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"frontpage/internal/pipeline"
)

func newEntryCommand(ctx *commandContext) *cobra.Command {
	var (
		attachDocument bool
		noImage        bool
		fullSummary    bool
		journalName    string
		noTags         bool
		extraTags      []string
		customHeadline string
		markCorrupted  bool
	)

	cmd := &cobra.Command{
		Use:   "entry [date]",
		Short: "Create a journal entry for one date's front page",
		Long: `Create a journal entry for the given date (default: today). The entry
carries the rendered front-page image, the day's headlines, and an
optional content summary.

Examples:
  frontpage entry                      # today's paper
  frontpage entry 2025-01-15           # a specific date
  frontpage entry --document --summary # attach the PDF, include the digest
  frontpage entry --corrupted 2018-01-10`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := resolveDateArg(args)
			if err != nil {
				return err
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger(cfg)
			if err != nil {
				return fmt.Errorf("setup logging: %w", err)
			}

			runner, err := buildRunner(ctx, cfg, logger)
			if err != nil {
				return err
			}

			result, err := runner.Run(cmd.Context(), pipeline.Options{
				Date:           date,
				AttachImage:    !noImage,
				AttachDocument: attachDocument,
				FullSummary:    fullSummary,
				Journal:        journalName,
				SuppressTags:   noTags,
				ExtraTags:      extraTags,
				CustomHeadline: customHeadline,
				MarkCorrupted:  markCorrupted,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Entry created for %s: %s\n", result.Date.ISO(), result.Lead)
			if result.DeepLink != "" {
				fmt.Fprintln(cmd.OutOrStdout(), result.DeepLink)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&attachDocument, "document", false, "Attach the front-page PDF as well as the image")
	cmd.Flags().BoolVar(&noImage, "no-image", false, "Skip the front-page image attachment")
	cmd.Flags().BoolVar(&fullSummary, "summary", false, "Append the day's content summary to the entry")
	cmd.Flags().StringVarP(&journalName, "journal", "j", "", "Target journal (falls back to the tool default if missing)")
	cmd.Flags().BoolVar(&noTags, "no-tags", false, "Suppress the default branding and event tags")
	cmd.Flags().StringArrayVarP(&extraTags, "tag", "t", nil, "Additional tag (repeatable)")
	cmd.Flags().StringVar(&customHeadline, "headline", "", "Override the lead headline")
	cmd.Flags().BoolVar(&markCorrupted, "corrupted", false, "Treat the source document as corrupted for this run")

	return cmd
}

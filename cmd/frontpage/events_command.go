package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"frontpage/internal/dateinfo"
	"frontpage/internal/events"
	"frontpage/internal/logging"
	"frontpage/internal/pipeline"
	"frontpage/internal/retry"
)

func newEventsCommand(ctx *commandContext) *cobra.Command {
	var (
		attachDocument bool
		fullSummary    bool
		journalName    string
	)

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Create entries for every curated historical event",
		Long: `Walk the historical-events file and create one journal entry per
record, dated the day after each event (the paper covering it).
Records outside the archive's range are skipped. Each record is
retried on failure before the batch moves on.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
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

			rawRecords, err := events.Load(cfg.Files.EventsFile)
			if err != nil {
				return err
			}
			records := events.ValidRecords(rawRecords, logger)
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No event records to process.")
				return nil
			}

			retrier := retry.New(retry.Policy{
				MaxAttempts: cfg.Batch.EventAttempts,
				Delay:       time.Duration(cfg.Batch.EventDelay) * time.Second,
			})

			today := dateinfo.Today()
			rows := make([][]string, 0, len(records))
			failures := 0
			first := true

			for _, record := range records {
				recordDate, err := events.ParseRecordDate(record)
				if err != nil {
					// ValidRecords already filtered these; belt and braces.
					continue
				}
				paperDate := recordDate.AddDays(1)
				if paperDate.Before(dateinfo.MinDate) || paperDate.After(today) {
					logger.Info("skipping event outside the archive's range",
						logging.String("record_date", record.Date),
					)
					rows = append(rows, []string{paperDate.ISO(), record.Event, "skipped", ""})
					continue
				}
				if !first {
					batchSleep(cfg)
				}
				first = false

				var result pipeline.Result
				err = retrier.Do(cmd.Context(), func(attempt int) error {
					if attempt > 1 {
						logger.Info("retrying event entry",
							logging.String(logging.FieldDate, paperDate.ISO()),
							logging.Int("attempt", attempt),
						)
					}
					var runErr error
					result, runErr = runner.Run(cmd.Context(), pipeline.Options{
						Date:           paperDate,
						AttachImage:    true,
						AttachDocument: attachDocument,
						FullSummary:    fullSummary,
						Journal:        journalName,
					})
					return runErr
				})
				if err != nil {
					failures++
					logger.Error("event entry failed",
						logging.String(logging.FieldDate, paperDate.ISO()),
						logging.Error(err),
					)
					rows = append(rows, []string{paperDate.ISO(), record.Event, "failed", ""})
					continue
				}
				rows = append(rows, []string{result.Date.ISO(), record.Event, batchStatus(result), result.DeepLink})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Date", "Event", "Status", "Link"}, rows))
			if failures > 0 {
				fmt.Fprintf(out, "%d of %d events failed; see the log for details.\n", failures, len(rows))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&attachDocument, "document", false, "Attach each date's PDF as well as the image")
	cmd.Flags().BoolVar(&fullSummary, "summary", false, "Append the content summary to every entry")
	cmd.Flags().StringVarP(&journalName, "journal", "j", "", "Target journal (falls back to the tool default if missing)")

	return cmd
}

package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"frontpage/internal/config"
	"frontpage/internal/dateinfo"
	"frontpage/internal/logging"
	"frontpage/internal/pipeline"
	"frontpage/internal/services"
)

// batchFlags are the per-entry options shared by the range and month
// drivers. Batch runs never override the lead headline or force the
// corrupted flag; those are single-date concerns.
type batchFlags struct {
	attachDocument bool
	fullSummary    bool
	journalName    string
	noTags         bool
}

func (f *batchFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.attachDocument, "document", false, "Attach each date's PDF as well as the image")
	cmd.Flags().BoolVar(&f.fullSummary, "summary", false, "Append the content summary to every entry")
	cmd.Flags().StringVarP(&f.journalName, "journal", "j", "", "Target journal (falls back to the tool default if missing)")
	cmd.Flags().BoolVar(&f.noTags, "no-tags", false, "Suppress the default branding and event tags")
}

func (f *batchFlags) options(date dateinfo.Date) pipeline.Options {
	return pipeline.Options{
		Date:           date,
		AttachImage:    true,
		AttachDocument: f.attachDocument,
		FullSummary:    f.fullSummary,
		Journal:        f.journalName,
		SuppressTags:   f.noTags,
	}
}

func newRangeCommand(ctx *commandContext) *cobra.Command {
	flags := &batchFlags{}

	cmd := &cobra.Command{
		Use:   "range FROM TO",
		Short: "Create entries for every date in an inclusive range",
		Long: `Create one journal entry per date from FROM through TO (inclusive),
strictly in order. A failed date is reported and skipped; the batch
continues.

Example:
  frontpage range 2025-01-01 2025-01-07`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parseBatchDate(args[0])
			if err != nil {
				return err
			}
			to, err := parseBatchDate(args[1])
			if err != nil {
				return err
			}
			if to.Before(from) {
				return services.Wrap(services.ErrValidation, "batch", "range",
					fmt.Sprintf("%s is after %s", from.ISO(), to.ISO()), nil)
			}
			return runDateBatch(cmd, ctx, datesBetween(from, to), flags)
		},
	}

	flags.register(cmd)
	return cmd
}

func newMonthCommand(ctx *commandContext) *cobra.Command {
	flags := &batchFlags{}

	cmd := &cobra.Command{
		Use:   "month YYYY-MM",
		Short: "Create entries for every date in a calendar month",
		Long: `Create one journal entry per date of the given month, strictly in
order. Dates after today are skipped. A failed date is reported and
skipped; the batch continues.

Example:
  frontpage month 2025-01`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, to, err := parseMonthArg(args[0])
			if err != nil {
				return err
			}
			return runDateBatch(cmd, ctx, datesBetween(from, to), flags)
		},
	}

	flags.register(cmd)
	return cmd
}

// runDateBatch drives the pipeline once per date, sequentially, pausing
// between dates. Per-date failures are logged and tallied; the batch
// itself always exits zero once the iteration completes.
func runDateBatch(cmd *cobra.Command, ctx *commandContext, dates []dateinfo.Date, flags *batchFlags) error {
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

	today := dateinfo.Today()
	rows := make([][]string, 0, len(dates))
	failures := 0
	first := true

	for _, date := range dates {
		if date.After(today) {
			logger.Info("skipping future date", logging.String(logging.FieldDate, date.ISO()))
			continue
		}
		if !first {
			batchSleep(cfg)
		}
		first = false

		result, err := runner.Run(cmd.Context(), flags.options(date))
		if err != nil {
			failures++
			logger.Error("entry failed",
				logging.String(logging.FieldDate, date.ISO()),
				logging.Error(err),
			)
			rows = append(rows, []string{date.ISO(), "failed", "", ""})
			continue
		}
		rows = append(rows, []string{result.Date.ISO(), batchStatus(result), result.Lead, result.DeepLink})
	}

	printBatchReport(cmd, logger, rows, failures)
	return nil
}

func batchStatus(result pipeline.Result) string {
	if result.Corrupted {
		return "corrupted"
	}
	return "created"
}

func batchSleep(cfg *config.Config) {
	if cfg.Batch.SleepSeconds > 0 {
		time.Sleep(time.Duration(cfg.Batch.SleepSeconds) * time.Second)
	}
}

func printBatchReport(cmd *cobra.Command, logger *slog.Logger, rows [][]string, failures int) {
	out := cmd.OutOrStdout()
	if len(rows) == 0 {
		fmt.Fprintln(out, "Nothing to do.")
		return
	}
	fmt.Fprintln(out, renderTable([]string{"Date", "Status", "Lead", "Link"}, rows))
	if failures > 0 {
		fmt.Fprintf(out, "%d of %d dates failed; see the log for details.\n", failures, len(rows))
		logger.Warn("batch finished with failures", logging.Int("failed", failures), logging.Int("total", len(rows)))
	}
}

// parseBatchDate accepts any well-formed archive-era date; unlike the
// single-entry argument, future dates are legal here and skipped during
// iteration so an in-progress month can be given as a range bound.
func parseBatchDate(value string) (dateinfo.Date, error) {
	date, err := dateinfo.Parse(value)
	if err != nil {
		return dateinfo.Date{}, services.Wrap(services.ErrValidation, "dateinfo", "parse", "", err)
	}
	return date, nil
}

func parseMonthArg(value string) (from, to dateinfo.Date, err error) {
	parsed, parseErr := time.Parse("2006-01", value)
	if parseErr != nil {
		return dateinfo.Date{}, dateinfo.Date{}, services.Wrap(services.ErrValidation, "batch", "month",
			fmt.Sprintf("%q is not a YYYY-MM month", value), parseErr)
	}
	from = dateinfo.Date{Year: parsed.Year(), Month: int(parsed.Month()), Day: 1}
	lastDay := parsed.AddDate(0, 1, -1)
	to = dateinfo.Date{Year: lastDay.Year(), Month: int(lastDay.Month()), Day: lastDay.Day()}
	if to.Before(dateinfo.MinDate) {
		return dateinfo.Date{}, dateinfo.Date{}, services.Wrap(services.ErrValidation, "batch", "month",
			fmt.Sprintf("%s predates the archive (earliest %s)", value, dateinfo.MinDate.ISO()), nil)
	}
	if from.Before(dateinfo.MinDate) {
		from = dateinfo.MinDate
	}
	return from, to, nil
}

func datesBetween(from, to dateinfo.Date) []dateinfo.Date {
	var dates []dateinfo.Date
	for d := from; !d.After(to); d = d.AddDays(1) {
		dates = append(dates, d)
	}
	return dates
}

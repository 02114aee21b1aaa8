package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"frontpage/internal/dateinfo"
	"frontpage/internal/frontpage"
	"frontpage/internal/logging"
	"frontpage/internal/registry"
	"frontpage/internal/services"
)

func newYearCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "year YYYY",
		Short: "Download a full year of front pages without creating entries",
		Long: `Download the front-page document and rendered image for every date of
the given year into the output directory, one subdirectory per date.
No journal entries are created. Dates after today and dates registered
as corrupted are skipped; a failed date is reported and skipped.

Example:
  frontpage year 2024`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := strconv.Atoi(args[0])
			if err != nil || year < dateinfo.MinDate.Year {
				return services.Wrap(services.ErrValidation, "batch", "year",
					fmt.Sprintf("%q is not a year in the archive's range", args[0]), nil)
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger(cfg)
			if err != nil {
				return fmt.Errorf("setup logging: %w", err)
			}

			fetcher, err := frontpage.New(cfg.FrontPage.BaseURL, cfg.FrontPage.UserAgent, logger)
			if err != nil {
				return services.Wrap(services.ErrConfiguration, "frontpage", "init", "", err)
			}
			reg, err := registry.Load(cfg.Files.RegistryFile)
			if err != nil {
				return services.Wrap(services.ErrConfiguration, "registry", "load", "", err)
			}

			yearDir := filepath.Join(cfg.Paths.OutputDir, fmt.Sprintf("%04d", year))
			if err := os.MkdirAll(yearDir, 0o755); err != nil {
				return services.Wrap(services.ErrConfiguration, "batch", "year", "create output directory", err)
			}

			from := dateinfo.Date{Year: year, Month: 1, Day: 1}
			if from.Before(dateinfo.MinDate) {
				from = dateinfo.MinDate
			}
			to := dateinfo.Date{Year: year, Month: 12, Day: 31}
			// The future boundary is fixed once, before the loop; a run
			// crossing midnight does not grow its own workload.
			today := dateinfo.Today()

			var (
				downloaded int
				skipped    int
				failures   int
				totalBytes uint64
				first      = true
			)

			for date := from; !date.After(to); date = date.AddDays(1) {
				if date.After(today) {
					break
				}
				if reg.Contains(date) {
					logger.Info("skipping corrupted date", logging.String(logging.FieldDate, date.ISO()))
					skipped++
					continue
				}
				if !first {
					batchSleep(cfg)
				}
				first = false

				destDir := filepath.Join(yearDir, date.ISO())
				if err := os.MkdirAll(destDir, 0o755); err != nil {
					failures++
					logger.Error("create date directory failed",
						logging.String(logging.FieldDate, date.ISO()),
						logging.Error(err),
					)
					continue
				}
				asset, err := fetcher.Fetch(cmd.Context(), date, destDir)
				if err != nil {
					failures++
					logger.Error("download failed",
						logging.String(logging.FieldDate, date.ISO()),
						logging.Error(err),
					)
					continue
				}
				downloaded++
				totalBytes += uint64(asset.DocumentSize)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Downloaded %d front pages (%s) to %s\n",
				downloaded, humanize.Bytes(totalBytes), yearDir)
			if skipped > 0 {
				fmt.Fprintf(out, "Skipped %d corrupted dates.\n", skipped)
			}
			if failures > 0 {
				fmt.Fprintf(out, "%d dates failed; see the log for details.\n", failures)
			}
			return nil
		},
	}

	return cmd
}

package main

import (
	"fmt"
	"log/slog"
	"time"

	"frontpage/internal/archive"
	"frontpage/internal/config"
	"frontpage/internal/dateinfo"
	"frontpage/internal/events"
	"frontpage/internal/frontpage"
	"frontpage/internal/journal"
	"frontpage/internal/pipeline"
	"frontpage/internal/registry"
	"frontpage/internal/services"
	"frontpage/internal/staging"
)

// staleSessionAge bounds how long a crashed run's staging directory may
// linger before the next invocation sweeps it.
const staleSessionAge = 24 * time.Hour

// buildRunner wires the full single-date pipeline from config.
func buildRunner(ctx *commandContext, cfg *config.Config, logger *slog.Logger) (*pipeline.Runner, error) {
	apiKey, err := cfg.ResolveAPIKey(ctx.configPath)
	if err != nil {
		return nil, err
	}

	staging.CleanStale(cfg.Paths.StagingDir, staleSessionAge, logger)

	fetcher, err := frontpage.New(cfg.FrontPage.BaseURL, cfg.FrontPage.UserAgent, logger)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "frontpage", "init", "", err)
	}
	archiveClient, err := archive.New(apiKey, cfg.Archive.BaseURL, logger)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "archive", "init", "", err)
	}
	submitter, err := journal.New(cfg.Journal.Binary, logger)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "journal", "init", "", err)
	}

	reg, err := registry.Load(cfg.Files.RegistryFile)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "registry", "load", "", err)
	}
	rawRecords, err := events.Load(cfg.Files.EventsFile)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "events", "load", "", err)
	}
	records := events.ValidRecords(rawRecords, logger)

	return pipeline.New(cfg, logger, fetcher, archiveClient, submitter, reg, records), nil
}

// resolveDateArg parses an optional positional date, defaulting to today.
func resolveDateArg(args []string) (dateinfo.Date, error) {
	if len(args) == 0 {
		return dateinfo.Today(), nil
	}
	date, err := dateinfo.Parse(args[0])
	if err != nil {
		return dateinfo.Date{}, services.Wrap(services.ErrValidation, "dateinfo", "parse", "", err)
	}
	if date.After(dateinfo.Today()) {
		return dateinfo.Date{}, services.Wrap(services.ErrValidation, "dateinfo", "parse",
			fmt.Sprintf("%s is in the future", date.ISO()), nil)
	}
	return date, nil
}

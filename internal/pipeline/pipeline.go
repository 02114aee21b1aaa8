// Package pipeline runs the single-date entry construction sequence:
// date context, corrupted-source check, asset fetch, archive metadata,
// historical-event correlation, composition, and journal submission.
// Batch drivers call this once per date.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"frontpage/internal/archive"
	"frontpage/internal/compose"
	"frontpage/internal/config"
	"frontpage/internal/dateinfo"
	"frontpage/internal/events"
	"frontpage/internal/frontpage"
	"frontpage/internal/journal"
	"frontpage/internal/logging"
	"frontpage/internal/registry"
	"frontpage/internal/staging"
)

// Options is the immutable per-run configuration, constructed once from
// CLI arguments and passed explicitly to every stage.
type Options struct {
	Date           dateinfo.Date
	AttachImage    bool
	AttachDocument bool
	FullSummary    bool
	Journal        string
	SuppressTags   bool
	ExtraTags      []string
	CustomHeadline string
	MarkCorrupted  bool
}

// Result reports one completed run.
type Result struct {
	Date      dateinfo.Date
	Corrupted bool
	Lead      string
	EntryUUID string
	DeepLink  string
	Attempts  int
}

// AssetFetcher downloads and renders the front page.
type AssetFetcher interface {
	Fetch(ctx context.Context, date dateinfo.Date, destDir string) (*frontpage.Asset, error)
}

// HeadlineFetcher retrieves the day's headline set.
type HeadlineFetcher interface {
	FetchDay(ctx context.Context, date dateinfo.Date, wantSummary bool) (archive.HeadlineSet, error)
}

// EntrySubmitter files the composed entry.
type EntrySubmitter interface {
	Submit(ctx context.Context, entry journal.Entry) (journal.Result, error)
}

// Runner wires the stages for repeated single-date runs.
type Runner struct {
	cfg       *config.Config
	logger    *slog.Logger
	assets    AssetFetcher
	headlines HeadlineFetcher
	submitter EntrySubmitter
	registry  *registry.Registry
	events    []events.Record
}

// New constructs a Runner. The registry and event records are loaded
// once by the caller and shared across batch iterations.
func New(cfg *config.Config, logger *slog.Logger, assets AssetFetcher, headlines HeadlineFetcher, submitter EntrySubmitter, reg *registry.Registry, records []events.Record) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{
		cfg:       cfg,
		logger:    logger,
		assets:    assets,
		headlines: headlines,
		submitter: submitter,
		registry:  reg,
		events:    records,
	}
}

// Run executes the pipeline for one date. Fatal errors abort after the
// staging session is cleaned up; degraded stages (missing headlines,
// failed render) continue with fallbacks.
func (r *Runner) Run(ctx context.Context, opts Options) (Result, error) {
	logger := r.logger.With(
		logging.String(logging.FieldRunID, uuid.NewString()[:8]),
		logging.String(logging.FieldDate, opts.Date.ISO()),
	)

	corrupted := opts.MarkCorrupted || (r.registry != nil && r.registry.Contains(opts.Date))
	if corrupted {
		logger.Info("date flagged as corrupted source, skipping asset fetch")
	}

	session, err := staging.NewSession(r.cfg.Paths.StagingDir)
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if closeErr := session.Close(); closeErr != nil {
			logger.Warn("staging cleanup failed", logging.Error(closeErr))
		}
	}()

	var asset *frontpage.Asset
	if !corrupted && (opts.AttachImage || opts.AttachDocument) {
		logger.Info("fetching front page")
		asset, err = r.assets.Fetch(ctx, opts.Date, session.Dir())
		if err != nil {
			// A missing front page invalidates the entry concept for
			// this date unless the source is known corrupted.
			return Result{}, err
		}
	}

	logger.Info("fetching archive metadata")
	headlineSet, err := r.headlines.FetchDay(ctx, opts.Date, opts.FullSummary)
	if err != nil {
		return Result{}, err
	}

	eventText := ""
	if record, ok := events.Match(r.events, opts.Date); ok {
		logger.Info("historical event matched", logging.String("event", record.Event))
		eventText = record.Event
	}

	attachments := buildAttachments(asset, opts, corrupted)

	input := compose.Input{
		Date:           opts.Date,
		Headlines:      headlineSet,
		EventText:      eventText,
		CustomHeadline: opts.CustomHeadline,
		HasAttachment:  len(attachments) > 0,
		Corrupted:      corrupted,
	}
	lead, leadSource := compose.Lead(input)
	body := compose.Body(input)

	journalName := opts.Journal
	if journalName == "" {
		journalName = r.cfg.Journal.DefaultJournal
	}
	entry := journal.Entry{
		Journal:     journalName,
		Date:        opts.Date,
		Tags:        journal.BuildTags(r.cfg.Journal.BrandTag, opts.SuppressTags, leadSource == compose.LeadEvent, corrupted, opts.ExtraTags),
		Attachments: attachments,
		Body:        body,
	}

	logger.Info("submitting journal entry", logging.Int("attachments", len(attachments)))
	submitResult, err := r.submitter.Submit(ctx, entry)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Date:      opts.Date,
		Corrupted: corrupted,
		Lead:      lead,
		EntryUUID: submitResult.UUID,
		DeepLink:  submitResult.DeepLink,
		Attempts:  submitResult.Attempts,
	}, nil
}

// buildAttachments orders the at-most-two file handles: image first,
// document second. Corrupted runs attach nothing.
func buildAttachments(asset *frontpage.Asset, opts Options, corrupted bool) []string {
	if corrupted || asset == nil {
		return nil
	}
	attachments := make([]string, 0, 2)
	if opts.AttachImage && asset.ImagePath != "" {
		attachments = append(attachments, asset.ImagePath)
	}
	if opts.AttachDocument && asset.DocumentPath != "" {
		attachments = append(attachments, asset.DocumentPath)
	}
	return attachments
}

package pipeline_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"frontpage/internal/archive"
	"frontpage/internal/config"
	"frontpage/internal/dateinfo"
	"frontpage/internal/events"
	"frontpage/internal/frontpage"
	"frontpage/internal/journal"
	"frontpage/internal/logging"
	"frontpage/internal/pipeline"
	"frontpage/internal/registry"
	"frontpage/internal/services"
)

type fakeAssets struct {
	calls int
	fail  bool
}

func (f *fakeAssets) Fetch(_ context.Context, _ dateinfo.Date, destDir string) (*frontpage.Asset, error) {
	f.calls++
	if f.fail {
		return nil, services.Wrap(services.ErrAssetDownload, "frontpage", "fetch", "empty body", nil)
	}
	imagePath := filepath.Join(destDir, "front_page.png")
	documentPath := filepath.Join(destDir, "scan.pdf")
	if err := os.WriteFile(imagePath, []byte("png"), 0o644); err != nil {
		return nil, err
	}
	if err := os.WriteFile(documentPath, []byte("pdf"), 0o644); err != nil {
		return nil, err
	}
	return &frontpage.Asset{DocumentPath: documentPath, ImagePath: imagePath, DocumentSize: 3}, nil
}

type fakeHeadlines struct {
	set archive.HeadlineSet
}

func (f *fakeHeadlines) FetchDay(context.Context, dateinfo.Date, bool) (archive.HeadlineSet, error) {
	return f.set, nil
}

type fakeSubmitter struct {
	entries []journal.Entry
	fail    bool
}

func (f *fakeSubmitter) Submit(_ context.Context, entry journal.Entry) (journal.Result, error) {
	f.entries = append(f.entries, entry)
	if f.fail {
		return journal.Result{}, services.Wrap(services.ErrEntryCreation, "journal", "submit", "boom", nil)
	}
	return journal.Result{
		UUID:     "2A8E6D3F4B5C4D6E8F9A0B1C2D3E4F5A",
		DeepLink: "dayone://view?entryId=2A8E6D3F4B5C4D6E8F9A0B1C2D3E4F5A",
		Attempts: 1,
	}, nil
}

func mustDate(t *testing.T, value string) dateinfo.Date {
	t.Helper()
	date, err := dateinfo.Parse(value)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}
	return date
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.StagingDir = t.TempDir()
	cfg.Files.RegistryFile = filepath.Join(t.TempDir(), "corrupted.json")
	return &cfg
}

func emptyRegistry(t *testing.T, cfg *config.Config) *registry.Registry {
	t.Helper()
	reg, err := registry.Load(cfg.Files.RegistryFile)
	if err != nil {
		t.Fatalf("load registry: %v", err)
	}
	return reg
}

func TestRunDefaultFlow(t *testing.T) {
	cfg := testConfig(t)
	assets := &fakeAssets{}
	headlines := &fakeHeadlines{set: archive.HeadlineSet{Headlines: []string{"Big Lead", "Second Story"}}}
	submitter := &fakeSubmitter{}

	runner := pipeline.New(cfg, logging.NewNop(), assets, headlines, submitter, emptyRegistry(t, cfg), nil)
	result, err := runner.Run(context.Background(), pipeline.Options{
		Date:        mustDate(t, "2025-01-15"),
		AttachImage: true,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Lead != "Big Lead" {
		t.Fatalf("lead = %q", result.Lead)
	}
	if result.EntryUUID == "" || result.DeepLink == "" {
		t.Fatalf("missing uuid/deep link: %+v", result)
	}

	if len(submitter.entries) != 1 {
		t.Fatalf("expected one submission, got %d", len(submitter.entries))
	}
	entry := submitter.entries[0]
	if !strings.Contains(entry.Body, "January 15th") {
		t.Fatalf("header missing ordinal date:\n%s", entry.Body)
	}
	if len(entry.Attachments) != 1 || !strings.HasSuffix(entry.Attachments[0], "front_page.png") {
		t.Fatalf("expected image-only attachment, got %v", entry.Attachments)
	}

	// Staging session must be gone after the run.
	remaining, err := os.ReadDir(cfg.Paths.StagingDir)
	if err != nil {
		t.Fatalf("read staging dir: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("staging dir not cleaned: %v", remaining)
	}
}

func TestRunAttachesDocumentOnRequest(t *testing.T) {
	cfg := testConfig(t)
	submitter := &fakeSubmitter{}
	runner := pipeline.New(cfg, logging.NewNop(), &fakeAssets{}, &fakeHeadlines{}, submitter, emptyRegistry(t, cfg), nil)

	if _, err := runner.Run(context.Background(), pipeline.Options{
		Date:           mustDate(t, "2025-01-15"),
		AttachImage:    true,
		AttachDocument: true,
	}); err != nil {
		t.Fatalf("run: %v", err)
	}
	entry := submitter.entries[0]
	if len(entry.Attachments) != 2 {
		t.Fatalf("attachments = %v", entry.Attachments)
	}
	if !strings.HasSuffix(entry.Attachments[0], "front_page.png") || !strings.HasSuffix(entry.Attachments[1], "scan.pdf") {
		t.Fatalf("attachment order wrong: %v", entry.Attachments)
	}
}

func TestRunCorruptedDateSkipsFetch(t *testing.T) {
	cfg := testConfig(t)
	reg := emptyRegistry(t, cfg)
	if _, err := reg.Mark(mustDate(t, "2018-01-10")); err != nil {
		t.Fatalf("mark: %v", err)
	}

	assets := &fakeAssets{fail: true} // would fail the run if consulted
	submitter := &fakeSubmitter{}
	runner := pipeline.New(cfg, logging.NewNop(), assets, &fakeHeadlines{set: archive.HeadlineSet{Headlines: []string{"Lead"}}}, submitter, reg, nil)

	result, err := runner.Run(context.Background(), pipeline.Options{
		Date:           mustDate(t, "2018-01-10"),
		AttachImage:    true,
		AttachDocument: true,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if assets.calls != 0 {
		t.Fatalf("corrupted date must never trigger a fetch, got %d calls", assets.calls)
	}
	if !result.Corrupted {
		t.Fatal("result should be flagged corrupted")
	}

	entry := submitter.entries[0]
	if len(entry.Attachments) != 0 {
		t.Fatalf("corrupted run must attach nothing, got %v", entry.Attachments)
	}
	if !strings.Contains(entry.Body, "(source is corrupted)") {
		t.Fatalf("corrupted notice missing:\n%s", entry.Body)
	}
	found := false
	for _, tag := range entry.Tags {
		if tag == journal.CorruptedTag {
			found = true
		}
	}
	if !found {
		t.Fatalf("corrupted tag missing: %v", entry.Tags)
	}
}

func TestRunExplicitCorruptedFlag(t *testing.T) {
	cfg := testConfig(t)
	assets := &fakeAssets{}
	submitter := &fakeSubmitter{}
	runner := pipeline.New(cfg, logging.NewNop(), assets, &fakeHeadlines{}, submitter, emptyRegistry(t, cfg), nil)

	if _, err := runner.Run(context.Background(), pipeline.Options{
		Date:          mustDate(t, "2025-01-15"),
		AttachImage:   true,
		MarkCorrupted: true,
	}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if assets.calls != 0 {
		t.Fatalf("explicitly corrupted run must skip fetch, got %d calls", assets.calls)
	}
}

func TestRunHistoricalEventDrivesLeadAndTag(t *testing.T) {
	cfg := testConfig(t)
	records := []events.Record{{Date: "January 6, 2021", Event: "X"}}
	submitter := &fakeSubmitter{}
	runner := pipeline.New(cfg, logging.NewNop(), &fakeAssets{}, &fakeHeadlines{set: archive.HeadlineSet{Headlines: []string{"Other"}}}, submitter, emptyRegistry(t, cfg), records)

	result, err := runner.Run(context.Background(), pipeline.Options{
		Date:           mustDate(t, "2021-01-07"),
		AttachImage:    true,
		CustomHeadline: "Custom Should Lose",
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Lead != "X" {
		t.Fatalf("lead = %q, want historical event", result.Lead)
	}
	entry := submitter.entries[0]
	found := false
	for _, tag := range entry.Tags {
		if tag == journal.HistoricalTag {
			found = true
		}
	}
	if !found {
		t.Fatalf("historical tag missing: %v", entry.Tags)
	}
}

func TestRunAssetFailureIsFatalAndCleansStaging(t *testing.T) {
	cfg := testConfig(t)
	runner := pipeline.New(cfg, logging.NewNop(), &fakeAssets{fail: true}, &fakeHeadlines{}, &fakeSubmitter{}, emptyRegistry(t, cfg), nil)

	_, err := runner.Run(context.Background(), pipeline.Options{
		Date:        mustDate(t, "2025-01-15"),
		AttachImage: true,
	})
	if !errors.Is(err, services.ErrAssetDownload) {
		t.Fatalf("expected ErrAssetDownload, got %v", err)
	}
	remaining, readErr := os.ReadDir(cfg.Paths.StagingDir)
	if readErr != nil {
		t.Fatalf("read staging dir: %v", readErr)
	}
	if len(remaining) != 0 {
		t.Fatalf("staging dir not cleaned after failure: %v", remaining)
	}
}

func TestRunUsesConfiguredDefaultJournal(t *testing.T) {
	cfg := testConfig(t)
	cfg.Journal.DefaultJournal = "Front Pages"
	submitter := &fakeSubmitter{}
	runner := pipeline.New(cfg, logging.NewNop(), &fakeAssets{}, &fakeHeadlines{}, submitter, emptyRegistry(t, cfg), nil)

	if _, err := runner.Run(context.Background(), pipeline.Options{Date: mustDate(t, "2025-01-15")}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if submitter.entries[0].Journal != "Front Pages" {
		t.Fatalf("journal = %q", submitter.entries[0].Journal)
	}

	if _, err := runner.Run(context.Background(), pipeline.Options{Date: mustDate(t, "2025-01-15"), Journal: "Override"}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if submitter.entries[1].Journal != "Override" {
		t.Fatalf("journal override = %q", submitter.entries[1].Journal)
	}
}

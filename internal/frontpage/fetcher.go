// Package frontpage downloads the front-page PDF for a date and derives
// a high-resolution raster image from it. Only the document download can
// fail a run; both render paths are best-effort.
package frontpage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"frontpage/internal/dateinfo"
	"frontpage/internal/logging"
	"frontpage/internal/services"
)

const (
	documentName = "scan.pdf"
	imageName    = "front_page.png"

	renderDPI     = 300
	upscaleFactor = "600%"

	defaultHTTPTimeout = 60 * time.Second
)

// Asset holds the paths of the fetched document and derived image inside
// the run's staging directory. ImagePath is empty when both render paths
// produced nothing.
type Asset struct {
	DocumentPath string
	ImagePath    string
	DocumentSize int64
}

// Executor abstracts render-tool execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) ([]byte, error)
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	return cmd.CombinedOutput()
}

// Fetcher downloads and renders front pages.
type Fetcher struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	exec       Executor
	logger     *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		if client != nil {
			f.httpClient = client
		}
	}
}

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(executor Executor) Option {
	return func(f *Fetcher) {
		if executor != nil {
			f.exec = executor
		}
	}
}

// New constructs a Fetcher.
func New(baseURL, userAgent string, logger *slog.Logger, opts ...Option) (*Fetcher, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("frontpage base url required")
	}
	fetcher := &Fetcher{
		baseURL:    baseURL,
		userAgent:  strings.TrimSpace(userAgent),
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		exec:       commandExecutor{},
		logger:     logging.NewComponentLogger(logger, "frontpage"),
	}
	for _, opt := range opts {
		opt(fetcher)
	}
	return fetcher, nil
}

// DocumentURL returns the deterministic remote path for a date.
func (f *Fetcher) DocumentURL(date dateinfo.Date) string {
	return fmt.Sprintf("%s/images/%s/nytfrontpage/scan.pdf", f.baseURL, date.URLPath())
}

// Fetch downloads the date's front-page document into destDir and
// renders the raster image. An empty or non-200 response body fails with
// ErrAssetDownload; render failures degrade to a document-only asset.
func (f *Fetcher) Fetch(ctx context.Context, date dateinfo.Date, destDir string) (*Asset, error) {
	documentPath := filepath.Join(destDir, documentName)
	size, err := f.download(ctx, f.DocumentURL(date), documentPath)
	if err != nil {
		return nil, err
	}
	f.logger.Info("front page downloaded",
		logging.String(logging.FieldDate, date.ISO()),
		logging.String("size", humanize.Bytes(uint64(size))),
	)

	asset := &Asset{DocumentPath: documentPath, DocumentSize: size}
	asset.ImagePath = f.renderImage(ctx, documentPath, destDir)
	return asset, nil
}

func (f *Fetcher) download(ctx context.Context, rawURL, destPath string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, services.Wrap(services.ErrAssetDownload, "frontpage", "fetch", "build request", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return 0, services.Wrap(services.ErrAssetDownload, "frontpage", "fetch", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, services.Wrap(services.ErrAssetDownload, "frontpage", "fetch",
			fmt.Sprintf("%s returned http %d", rawURL, resp.StatusCode), nil)
	}

	file, err := os.Create(destPath)
	if err != nil {
		return 0, services.Wrap(services.ErrAssetDownload, "frontpage", "fetch", "create document file", err)
	}
	size, err := io.Copy(file, resp.Body)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return 0, services.Wrap(services.ErrAssetDownload, "frontpage", "fetch", "write document", err)
	}
	if size == 0 {
		return 0, services.Wrap(services.ErrAssetDownload, "frontpage", "fetch",
			fmt.Sprintf("%s returned an empty body", rawURL), nil)
	}
	return size, nil
}

// renderImage tries the direct high-resolution render first, then the
// convert-and-upscale fallback. Failure of both yields an empty path;
// nothing here aborts the run.
func (f *Fetcher) renderImage(ctx context.Context, documentPath, destDir string) string {
	imagePath := filepath.Join(destDir, imageName)

	// pdftoppm names its output <prefix>.png with -singlefile.
	prefix := strings.TrimSuffix(imagePath, ".png")
	output, err := f.exec.Run(ctx, "pdftoppm", []string{
		"-png", "-r", fmt.Sprintf("%d", renderDPI), "-singlefile", documentPath, prefix,
	})
	if err != nil {
		f.logger.Warn("direct render failed, trying fallback",
			logging.Error(err),
			logging.String("output", strings.TrimSpace(string(output))),
		)
	}
	if fileHasContent(imagePath) {
		return imagePath
	}

	output, err = f.exec.Run(ctx, "magick", []string{documentPath + "[0]", imagePath})
	if err != nil {
		f.logger.Warn("fallback conversion failed",
			logging.Error(err),
			logging.String("output", strings.TrimSpace(string(output))),
		)
		return ""
	}
	if !fileHasContent(imagePath) {
		return ""
	}
	// Plain conversion renders at document resolution; upscale to match
	// the direct path. Best-effort: the unscaled image is still usable.
	if output, err = f.exec.Run(ctx, "magick", []string{imagePath, "-resize", upscaleFactor, imagePath}); err != nil {
		f.logger.Warn("upscale failed, keeping unscaled image",
			logging.Error(err),
			logging.String("output", strings.TrimSpace(string(output))),
		)
	}
	return imagePath
}

func fileHasContent(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Size() > 0
}

// Package preflight verifies the external tools and local resources a
// run depends on before any network call is made.
package preflight

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"

	"frontpage/internal/config"
)

// Minimum free space in the staging directory's filesystem. A front
// page PDF plus a 300 DPI render comfortably fits in a fraction of this.
const minStagingBytes = 256 << 20

// Result reports one preflight check.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// Requirement defines an external binary the pipeline invokes.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Requirements returns the binaries for the given config. The magick
// fallback is optional: without it only the upscale path is lost.
func Requirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{Name: "pdftoppm", Command: "pdftoppm", Description: "Renders the front-page PDF to PNG"},
		{Name: "magick", Command: "magick", Description: "Fallback conversion and upscale", Optional: true},
		{Name: "dayone2", Command: cfg.Journal.Binary, Description: "Files entries into the journal"},
	}
}

// CheckBinaries evaluates the provided requirements.
func CheckBinaries(requirements []Requirement) []Result {
	results := make([]Result, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		result := Result{Name: req.Name, Optional: req.Optional, Detail: req.Description}
		if cmd == "" {
			result.Detail = "command not configured"
			results = append(results, result)
			continue
		}
		if path, err := exec.LookPath(cmd); err != nil {
			result.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, result)
		} else {
			result.Passed = true
			result.Detail = path
			results = append(results, result)
		}
	}
	return results
}

// CheckStagingSpace verifies the staging filesystem has room for a run.
func CheckStagingSpace(stagingDir string) Result {
	const name = "staging space"
	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("create %s: %v", stagingDir, err)}
	}
	var stat unix.Statfs_t
	if err := unix.Statfs(stagingDir, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("statfs %s: %v", stagingDir, err)}
	}
	free := stat.Bavail * uint64(stat.Bsize)
	if free < minStagingBytes {
		return Result{Name: name, Detail: fmt.Sprintf("%s free in %s, need %s",
			humanize.Bytes(free), stagingDir, humanize.Bytes(minStagingBytes))}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s free in %s", humanize.Bytes(free), stagingDir)}
}

// CheckAPIKey verifies the archive key resolves without exposing it.
func CheckAPIKey(cfg *config.Config, configPath string) Result {
	const name = "archive api key"
	if _, err := cfg.ResolveAPIKey(configPath); err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: "resolved"}
}

// Run executes every check for the config.
func Run(cfg *config.Config, configPath string) []Result {
	results := CheckBinaries(Requirements(cfg))
	results = append(results, CheckStagingSpace(cfg.Paths.StagingDir))
	results = append(results, CheckAPIKey(cfg, configPath))
	return results
}

// AllRequiredPassed reports whether every non-optional check passed.
func AllRequiredPassed(results []Result) bool {
	for _, result := range results {
		if !result.Passed && !result.Optional {
			return false
		}
	}
	return true
}

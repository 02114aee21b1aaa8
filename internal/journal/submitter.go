// Package journal files composed entries through the dayone2 CLI. The
// tool's exit status and textual output are the only feedback channel:
// success is detected by exit code, the created entry by a "uuid:"
// marker in stdout, and a missing journal by a known error shape.
package journal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"frontpage/internal/dateinfo"
	"frontpage/internal/logging"
	"frontpage/internal/retry"
	"frontpage/internal/services"
)

// Tags added by the submitter depending on run mode.
const (
	HistoricalTag = "this-day-in-history"
	CorruptedTag  = "corrupted-source"
)

// Exit status dayone2 reports for unusable option values, including an
// unknown journal name.
const exitUsage = 64

var uuidPattern = regexp.MustCompile(`(?i)uuid:\s*([0-9a-f-]{8,36})`)

// Entry is a fully assembled journal entry candidate.
type Entry struct {
	Journal     string
	Date        dateinfo.Date
	Tags        []string
	Attachments []string
	Body        string
}

// Result reports a successful submission.
type Result struct {
	UUID     string
	DeepLink string
	Output   string
	Attempts int
}

// Executor abstracts dayone2 invocation for testability. exitCode is
// meaningful only when err is nil or wraps an exec.ExitError.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, stdin string) (output []byte, exitCode int, err error)
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, stdin string) ([]byte, int, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdin = strings.NewReader(stdin)
	output, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return output, exitErr.ExitCode(), err
		}
		return output, -1, err
	}
	return output, 0, nil
}

// Submitter drives the external journaling tool.
type Submitter struct {
	binary string
	exec   Executor
	logger *slog.Logger
}

// Option configures a Submitter.
type Option func(*Submitter)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(executor Executor) Option {
	return func(s *Submitter) {
		if executor != nil {
			s.exec = executor
		}
	}
}

// New constructs a Submitter for the given dayone2 binary.
func New(binary string, logger *slog.Logger, opts ...Option) (*Submitter, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("journal binary required")
	}
	submitter := &Submitter{
		binary: binary,
		exec:   commandExecutor{},
		logger: logging.NewComponentLogger(logger, "journal"),
	}
	for _, opt := range opts {
		opt(submitter)
	}
	return submitter, nil
}

// BuildTags assembles the entry tag set. Branding and the historical tag
// are suppressed together; the corrupted tag and user tags always apply.
func BuildTags(brandTag string, suppress, historical, corrupted bool, extra []string) []string {
	tags := make([]string, 0, len(extra)+3)
	if !suppress && strings.TrimSpace(brandTag) != "" {
		tags = append(tags, brandTag)
	}
	if historical && !suppress {
		tags = append(tags, HistoricalTag)
	}
	if corrupted {
		tags = append(tags, CorruptedTag)
	}
	for _, tag := range extra {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// errJournalNotFound marks a first attempt rejected because the
// requested journal does not exist; it drives the single retry against
// the tool's default journal.
var errJournalNotFound = errors.New("journal not found")

// Submit creates the entry, retrying exactly once against the default
// journal when the requested journal name is rejected. The entry body is
// passed on standard input. On success the entry UUID is extracted from
// the tool output; its absence is a warning, not a failure.
func (s *Submitter) Submit(ctx context.Context, entry Entry) (Result, error) {
	var result Result

	runner := retry.New(retry.Policy{
		MaxAttempts: 2,
		Retryable:   func(err error) bool { return errors.Is(err, errJournalNotFound) },
	})

	err := runner.Do(ctx, func(attempt int) error {
		journalName := entry.Journal
		if attempt > 1 {
			s.logger.Warn("journal not found, retrying against default journal",
				logging.String("journal", entry.Journal),
			)
			journalName = ""
		}

		args := s.buildArgs(entry, journalName)
		output, exitCode, runErr := s.exec.Run(ctx, s.binary, args, entry.Body)
		text := strings.TrimSpace(string(output))
		result.Attempts = attempt
		result.Output = text

		if runErr == nil && exitCode == 0 {
			return nil
		}
		if journalName != "" && isJournalNotFound(text, exitCode) {
			return fmt.Errorf("%w: %q", errJournalNotFound, journalName)
		}
		return services.Wrap(services.ErrEntryCreation, "journal", "submit",
			fmt.Sprintf("%s exited with status %d: %s", s.binary, exitCode, text), runErr)
	})
	if err != nil {
		if errors.Is(err, errJournalNotFound) {
			return Result{}, services.Wrap(services.ErrEntryCreation, "journal", "submit", err.Error(), nil)
		}
		return Result{}, err
	}

	if id, ok := extractUUID(result.Output); ok {
		result.UUID = id
		result.DeepLink = "dayone://view?entryId=" + id
	} else {
		s.logger.Warn("no entry uuid in tool output; entry may still exist",
			logging.String("output", result.Output),
		)
	}
	s.logger.Info("entry created",
		logging.String(logging.FieldDate, entry.Date.ISO()),
		logging.String("uuid", result.UUID),
		logging.Int("attempts", result.Attempts),
	)
	return result, nil
}

func (s *Submitter) buildArgs(entry Entry, journalName string) []string {
	args := make([]string, 0, 10+len(entry.Tags)+len(entry.Attachments))
	if journalName != "" {
		args = append(args, "--journal", journalName)
	}
	args = append(args, "--date", entry.Date.ISO(), "--all-day")
	if len(entry.Tags) > 0 {
		args = append(args, "--tags")
		args = append(args, entry.Tags...)
	}
	if len(entry.Attachments) > 0 {
		args = append(args, "--attachments")
		args = append(args, entry.Attachments...)
	}
	args = append(args, "--", "new")
	return args
}

func isJournalNotFound(output string, exitCode int) bool {
	lowered := strings.ToLower(output)
	if strings.Contains(lowered, "journal not found") {
		return true
	}
	if exitCode == exitUsage && strings.Contains(lowered, "invalid value for option") {
		return true
	}
	return false
}

// extractUUID pulls the entry identifier following the literal "uuid:"
// marker and validates its shape.
func extractUUID(output string) (string, bool) {
	match := uuidPattern.FindStringSubmatch(output)
	if match == nil {
		return "", false
	}
	token := match[1]
	if _, err := uuid.Parse(token); err != nil {
		return "", false
	}
	return strings.ToUpper(strings.ReplaceAll(token, "-", "")), true
}

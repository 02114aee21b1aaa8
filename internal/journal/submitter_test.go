package journal_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"frontpage/internal/dateinfo"
	"frontpage/internal/journal"
	"frontpage/internal/logging"
	"frontpage/internal/services"
)

type call struct {
	args  []string
	stdin string
}

// scriptedExecutor returns one canned response per invocation.
type scriptedExecutor struct {
	calls     []call
	responses []response
}

type response struct {
	output string
	exit   int
	err    error
}

func (s *scriptedExecutor) Run(_ context.Context, binary string, args []string, stdin string) ([]byte, int, error) {
	s.calls = append(s.calls, call{args: args, stdin: stdin})
	if len(s.responses) == 0 {
		return nil, 0, errors.New("no scripted response")
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]
	return []byte(resp.output), resp.exit, resp.err
}

func mustDate(t *testing.T, value string) dateinfo.Date {
	t.Helper()
	date, err := dateinfo.Parse(value)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}
	return date
}

func newSubmitter(t *testing.T, executor journal.Executor) *journal.Submitter {
	t.Helper()
	submitter, err := journal.New("dayone2", logging.NewNop(), journal.WithExecutor(executor))
	if err != nil {
		t.Fatalf("new submitter: %v", err)
	}
	return submitter
}

func TestSubmitSuccessFirstAttempt(t *testing.T) {
	executor := &scriptedExecutor{responses: []response{
		{output: "Created new entry with uuid: 2A8E6D3F4B5C4D6E8F9A0B1C2D3E4F5A"},
	}}
	entry := journal.Entry{
		Journal:     "Front Pages",
		Date:        mustDate(t, "2025-01-15"),
		Tags:        []string{"frontpage"},
		Attachments: []string{"/tmp/front_page.png", "/tmp/scan.pdf"},
		Body:        "# The Front Page — January 15th\n",
	}
	result, err := newSubmitter(t, executor).Submit(context.Background(), entry)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Attempts != 1 {
		t.Fatalf("attempts = %d", result.Attempts)
	}
	if result.UUID != "2A8E6D3F4B5C4D6E8F9A0B1C2D3E4F5A" {
		t.Fatalf("uuid = %q", result.UUID)
	}
	if result.DeepLink != "dayone://view?entryId=2A8E6D3F4B5C4D6E8F9A0B1C2D3E4F5A" {
		t.Fatalf("deep link = %q", result.DeepLink)
	}

	args := executor.calls[0].args
	joined := strings.Join(args, " ")
	for _, fragment := range []string{
		"--journal Front Pages",
		"--date 2025-01-15",
		"--all-day",
		"--tags frontpage",
		"--attachments /tmp/front_page.png /tmp/scan.pdf",
		"-- new",
	} {
		if !strings.Contains(joined, fragment) {
			t.Fatalf("args missing %q: %v", fragment, args)
		}
	}
	if executor.calls[0].stdin != entry.Body {
		t.Fatalf("body not passed on stdin: %q", executor.calls[0].stdin)
	}
}

func TestSubmitRetriesAgainstDefaultJournal(t *testing.T) {
	executor := &scriptedExecutor{responses: []response{
		{output: "Invalid value for option --journal", exit: 64, err: errors.New("exit status 64")},
		{output: "Created new entry with uuid: 0B1C2D3E4F5A6B7C8D9E0F1A2B3C4D5E"},
	}}
	entry := journal.Entry{Journal: "Missing Journal", Date: mustDate(t, "2025-01-15"), Body: "body"}

	result, err := newSubmitter(t, executor).Submit(context.Background(), entry)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(executor.calls) != 2 {
		t.Fatalf("expected exactly 2 attempts, got %d", len(executor.calls))
	}
	first := strings.Join(executor.calls[0].args, " ")
	second := strings.Join(executor.calls[1].args, " ")
	if !strings.Contains(first, "--journal Missing Journal") {
		t.Fatalf("first attempt should target the requested journal: %v", executor.calls[0].args)
	}
	if strings.Contains(second, "--journal") {
		t.Fatalf("second attempt must drop --journal: %v", executor.calls[1].args)
	}
	if result.Attempts != 2 {
		t.Fatalf("attempts = %d", result.Attempts)
	}
	if result.UUID != "0B1C2D3E4F5A6B7C8D9E0F1A2B3C4D5E" {
		t.Fatalf("uuid must come from the second attempt, got %q", result.UUID)
	}
}

func TestSubmitBothAttemptsFail(t *testing.T) {
	executor := &scriptedExecutor{responses: []response{
		{output: "journal not found", exit: 64, err: errors.New("exit status 64")},
		{output: "disk full", exit: 1, err: errors.New("exit status 1")},
	}}
	entry := journal.Entry{Journal: "Missing", Date: mustDate(t, "2025-01-15"), Body: "body"}

	_, err := newSubmitter(t, executor).Submit(context.Background(), entry)
	if !errors.Is(err, services.ErrEntryCreation) {
		t.Fatalf("expected ErrEntryCreation, got %v", err)
	}
	if !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("raw tool output should surface: %v", err)
	}
	if len(executor.calls) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(executor.calls))
	}
}

func TestSubmitGenericFailureDoesNotRetry(t *testing.T) {
	executor := &scriptedExecutor{responses: []response{
		{output: "cannot connect to sync service", exit: 1, err: errors.New("exit status 1")},
	}}
	entry := journal.Entry{Journal: "Front Pages", Date: mustDate(t, "2025-01-15"), Body: "body"}

	_, err := newSubmitter(t, executor).Submit(context.Background(), entry)
	if !errors.Is(err, services.ErrEntryCreation) {
		t.Fatalf("expected ErrEntryCreation, got %v", err)
	}
	if len(executor.calls) != 1 {
		t.Fatalf("generic failure must not retry, got %d attempts", len(executor.calls))
	}
}

func TestSubmitMissingUUIDIsNotFatal(t *testing.T) {
	executor := &scriptedExecutor{responses: []response{
		{output: "Created new entry."},
	}}
	entry := journal.Entry{Date: mustDate(t, "2025-01-15"), Body: "body"}

	result, err := newSubmitter(t, executor).Submit(context.Background(), entry)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.UUID != "" || result.DeepLink != "" {
		t.Fatalf("expected empty uuid and deep link, got %+v", result)
	}
}

func TestBuildTags(t *testing.T) {
	cases := []struct {
		name       string
		suppress   bool
		historical bool
		corrupted  bool
		extra      []string
		want       []string
	}{
		{name: "defaults", want: []string{"frontpage"}},
		{name: "historical", historical: true, want: []string{"frontpage", journal.HistoricalTag}},
		{name: "suppressed", suppress: true, historical: true, want: []string{}},
		{name: "corrupted survives suppression", suppress: true, corrupted: true, want: []string{journal.CorruptedTag}},
		{name: "extra tags keep order", extra: []string{"b", "a"}, want: []string{"frontpage", "b", "a"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := journal.BuildTags("frontpage", tc.suppress, tc.historical, tc.corrupted, tc.extra)
			if len(got) != len(tc.want) {
				t.Fatalf("tags = %v, want %v", got, tc.want)
			}
			for i := range tc.want {
				if got[i] != tc.want[i] {
					t.Fatalf("tags = %v, want %v", got, tc.want)
				}
			}
		})
	}
}

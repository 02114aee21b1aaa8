// Package compose assembles the journal entry body. It is a pure
// function of its inputs; all fetching and matching happens upstream.
package compose

import (
	"fmt"
	"strings"

	"frontpage/internal/archive"
	"frontpage/internal/dateinfo"
)

// Branding used in the entry header and the default tag set.
const (
	HeaderPrefix = "The Front Page"

	imagePlaceholder = "[{photo}]"
	corruptedNotice  = "*(source is corrupted)*"
)

// LeadSource identifies which input won the lead-line precedence.
type LeadSource int

const (
	LeadFallback LeadSource = iota
	LeadHeadline
	LeadCustom
	LeadEvent
)

// Input carries everything the composer needs for one entry.
type Input struct {
	Date           dateinfo.Date
	Headlines      archive.HeadlineSet
	EventText      string // historical event description, empty if none
	CustomHeadline string
	HasAttachment  bool
	Corrupted      bool
}

// Lead resolves the lead line. Precedence: historical event, custom
// headline, first extracted headline, fixed fallback label.
func Lead(in Input) (string, LeadSource) {
	if text := strings.TrimSpace(in.EventText); text != "" {
		return text, LeadEvent
	}
	if text := strings.TrimSpace(in.CustomHeadline); text != "" {
		return text, LeadCustom
	}
	if text := in.Headlines.Lead(); text != "" {
		return text, LeadHeadline
	}
	return archive.FallbackLead, LeadFallback
}

// Body renders the full entry text.
func Body(in Input) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s — %s\n\n", HeaderPrefix, in.Date.OrdinalDisplay())

	lead, _ := Lead(in)
	b.WriteString(lead)
	b.WriteString("\n")

	switch {
	case in.Corrupted:
		b.WriteString(corruptedNotice)
		b.WriteString("\n")
	case in.HasAttachment:
		b.WriteString(imagePlaceholder)
		b.WriteString("\n")
	}

	if supporting := in.Headlines.Supporting(); len(supporting) > 0 {
		b.WriteString("\n")
		for _, line := range supporting {
			b.WriteString("- ")
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	if in.Headlines.Summary != nil {
		b.WriteString("\n")
		b.WriteString(archiveIssueURL(in.Date))
		b.WriteString("\n\n")
		writeSummary(&b, in.Headlines.Summary)
	}

	return b.String()
}

func archiveIssueURL(date dateinfo.Date) string {
	return fmt.Sprintf("https://www.nytimes.com/issue/todayspaper/%s/todays-new-york-times", date.URLPath())
}

func writeSummary(b *strings.Builder, summary *archive.Summary) {
	fmt.Fprintf(b, "**%d articles published this day.**\n", summary.TotalArticles)
	if summary.Longest.Headline != "" {
		fmt.Fprintf(b, "Longest read: %s (%s, %d words)\n", summary.Longest.Headline, summary.Longest.Section, summary.Longest.Words)
	}
	if len(summary.Opinion) > 0 {
		b.WriteString("\nTop opinion:\n")
		for _, line := range summary.Opinion {
			fmt.Fprintf(b, "- %s\n", line)
		}
	}
	if len(summary.Sections) > 0 {
		b.WriteString("\nSections:\n")
		for _, section := range summary.Sections {
			fmt.Fprintf(b, "- %s: %d\n", section.Section, section.Articles)
		}
	}
	if len(summary.Keywords) > 0 {
		values := make([]string, 0, len(summary.Keywords))
		for _, kw := range summary.Keywords {
			values = append(values, kw.Keyword)
		}
		fmt.Fprintf(b, "\nTrending: %s\n", strings.Join(values, ", "))
	}
}

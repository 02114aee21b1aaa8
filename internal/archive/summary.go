package archive

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	maxSummarySections = 5
	maxSummaryOpinion  = 3
	maxSummaryKeywords = 10
)

// Summary is the optional per-day content digest.
type Summary struct {
	TotalArticles int
	Longest       LongestArticle
	Opinion       []string
	Sections      []SectionCount
	Keywords      []KeywordCount
}

// LongestArticle describes the day's highest word-count article.
type LongestArticle struct {
	Headline string
	Section  string
	Words    int
}

// SectionCount pairs a section label with its article count.
type SectionCount struct {
	Section  string
	Articles int
}

// KeywordCount pairs a keyword with its frequency across the day.
type KeywordCount struct {
	Keyword string
	Count   int
}

var titleCaser = cases.Title(language.AmericanEnglish)

// buildSummary derives the content summary in a single pass over the
// day's articles, plus sorts of the accumulated counters.
func buildSummary(dayDocs []article) *Summary {
	summary := &Summary{TotalArticles: len(dayDocs)}

	sectionCounts := make(map[string]int)
	keywordCounts := make(map[string]int)
	keywordOrder := make([]string, 0, 64)

	for _, doc := range dayDocs {
		if doc.WordCount > summary.Longest.Words {
			summary.Longest = LongestArticle{
				Headline: StripByline(doc.headlineText()),
				Section:  sectionLabel(doc.SectionName),
				Words:    doc.WordCount,
			}
		}
		if doc.isOpinion() && len(summary.Opinion) < maxSummaryOpinion {
			if text := StripByline(doc.headlineText()); text != "" {
				summary.Opinion = append(summary.Opinion, text)
			}
		}
		sectionCounts[sectionLabel(doc.SectionName)]++
		for _, kw := range doc.Keywords {
			value := strings.TrimSpace(kw.Value)
			if value == "" {
				continue
			}
			if _, seen := keywordCounts[value]; !seen {
				keywordOrder = append(keywordOrder, value)
			}
			keywordCounts[value]++
		}
	}

	summary.Sections = topSections(sectionCounts)
	summary.Keywords = topKeywords(keywordCounts, keywordOrder)
	return summary
}

func sectionLabel(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Uncategorized"
	}
	return titleCaser.String(name)
}

func topSections(counts map[string]int) []SectionCount {
	sections := make([]SectionCount, 0, len(counts))
	for section, count := range counts {
		sections = append(sections, SectionCount{Section: section, Articles: count})
	}
	sort.Slice(sections, func(i, j int) bool {
		if sections[i].Articles != sections[j].Articles {
			return sections[i].Articles > sections[j].Articles
		}
		return sections[i].Section < sections[j].Section
	})
	if len(sections) > maxSummarySections {
		sections = sections[:maxSummarySections]
	}
	return sections
}

// topKeywords ranks by frequency, breaking ties by first appearance so
// output is stable across runs.
func topKeywords(counts map[string]int, order []string) []KeywordCount {
	firstSeen := make(map[string]int, len(order))
	for i, value := range order {
		firstSeen[value] = i
	}
	keywords := make([]KeywordCount, 0, len(counts))
	for value, count := range counts {
		keywords = append(keywords, KeywordCount{Keyword: value, Count: count})
	}
	sort.Slice(keywords, func(i, j int) bool {
		if keywords[i].Count != keywords[j].Count {
			return keywords[i].Count > keywords[j].Count
		}
		return firstSeen[keywords[i].Keyword] < firstSeen[keywords[j].Keyword]
	})
	if len(keywords) > maxSummaryKeywords {
		keywords = keywords[:maxSummaryKeywords]
	}
	return keywords
}

package archive

import (
	"encoding/json"
	"regexp"
	"strings"
)

type monthResponse struct {
	Response struct {
		Docs []article `json:"docs"`
	} `json:"response"`
}

// article is the subset of the per-article record the pipeline consumes.
type article struct {
	Abstract       string     `json:"abstract"`
	WebURL         string     `json:"web_url"`
	Headline       headline   `json:"headline"`
	Byline         byline     `json:"byline"`
	PubDate        string     `json:"pub_date"`
	DocumentType   string     `json:"document_type"`
	NewsDesk       string     `json:"news_desk"`
	SectionName    string     `json:"section_name"`
	TypeOfMaterial string     `json:"type_of_material"`
	PrintPage      pageNumber `json:"print_page"`
	WordCount      int        `json:"word_count"`
	Keywords       []keyword  `json:"keywords"`
}

type headline struct {
	Main          string `json:"main"`
	PrintHeadline string `json:"print_headline"`
}

type byline struct {
	Original string `json:"original"`
}

type keyword struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// pageNumber tolerates the archive's inconsistent encoding of
// print_page, which appears as both a JSON number and a string.
type pageNumber string

func (p *pageNumber) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*p = ""
		return nil
	}
	if len(trimmed) >= 2 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = pageNumber(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*p = pageNumber(n.String())
	return nil
}

func (a article) headlineText() string {
	if text := strings.TrimSpace(a.Headline.Main); text != "" {
		return text
	}
	return strings.TrimSpace(a.Headline.PrintHeadline)
}

func (a article) isFrontPage() bool {
	return a.PrintPage == "1"
}

func (a article) isHardNews() bool {
	return strings.EqualFold(a.TypeOfMaterial, "News") &&
		strings.EqualFold(a.DocumentType, "article")
}

func (a article) isOpinion() bool {
	return strings.EqualFold(a.NewsDesk, "OpEd") ||
		strings.EqualFold(a.SectionName, "Opinion")
}

// selectHeadlines applies the selection ladder: front-page articles
// first, hard news as the fallback tier. At most maxHeadlines survive,
// bylines stripped.
func selectHeadlines(dayDocs []article) []string {
	picked := pickHeadlines(dayDocs, article.isFrontPage)
	if len(picked) == 0 {
		picked = pickHeadlines(dayDocs, article.isHardNews)
	}
	return picked
}

func pickHeadlines(docs []article, match func(article) bool) []string {
	headlines := make([]string, 0, maxHeadlines)
	seen := make(map[string]struct{}, maxHeadlines)
	for _, doc := range docs {
		if len(headlines) == maxHeadlines {
			break
		}
		if !match(doc) {
			continue
		}
		text := StripByline(doc.headlineText())
		if text == "" {
			continue
		}
		if _, dup := seen[text]; dup {
			continue
		}
		seen[text] = struct{}{}
		headlines = append(headlines, text)
	}
	return headlines
}

// bylinePattern matches a trailing " By Name" suffix, optionally
// followed by a comma-separated list of further names.
var bylinePattern = regexp.MustCompile(`\s+[Bb]y\s+[A-Z][\w.'’-]*(?:\s+[\w.'’-]+)*(?:\s*,\s*[\w.'’\- ]+)*\s*$`)

// StripByline removes a trailing " By <name(s)>" suffix from a headline.
// Stripping is idempotent: an already-stripped headline is unchanged.
func StripByline(text string) string {
	return strings.TrimSpace(bylinePattern.ReplaceAllString(text, ""))
}

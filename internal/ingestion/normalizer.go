package ingestion

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Section is a structural unit recognised in a regulatory document, such as
// "Section 3.2" or "Article 12".
type Section struct {
	ID          string `json:"id"`
	Start       int    `json:"start"`
	End         int    `json:"end"`
	Content     string `json:"content"`
	FullContent string `json:"full_content"`
}

// NormalizedText is the result of running raw regulatory text through the
// TextNormalizer.
type NormalizedText struct {
	Original      string    `json:"original"`
	Normalized    string    `json:"normalized"`
	Sections      []Section `json:"sections"`
	WordCount     int       `json:"word_count"`
	SentenceCount int       `json:"sentence_count"`
}

// sectionContentPreview is the maximum length of Section.Content before it is
// truncated with an ellipsis.  FullContent always carries the complete text.
const sectionContentPreview = 500

// Section header patterns, most specific first.  The bare numbered pattern
// ("3.2:" / "3.2.") comes last so labelled headers win during deduplication.
var sectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:^|\n)(?:Section|SECTION|§)\s*(\d+(?:\.\d+)*)`),
	regexp.MustCompile(`(?:^|\n)(?:Article|ARTICLE)\s*(\d+(?:\.\d+)*)`),
	regexp.MustCompile(`(?:^|\n)(?:Rule|RULE)\s*(\d+(?:\.\d+)*)`),
	regexp.MustCompile(`(?:^|\n)(?:Part|PART)\s*(\d+(?:\.\d+)*)`),
	regexp.MustCompile(`(?:^|\n)(\d+(?:\.\d+)*)\s*[.:]`),
}

// Legal citation abbreviations rewritten to their compact forms.
var citationPatterns = []struct {
	re          *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`\bU\.S\.C\.`), "USC"},
	{regexp.MustCompile(`\bC\.F\.R\.`), "CFR"},
	{regexp.MustCompile(`\bFed\.\s*Reg\.`), "FedReg"},
	{regexp.MustCompile(`\bS\.E\.C\.`), "SEC"},
}

var (
	interiorSpaceRE  = regexp.MustCompile(`[^\S\n]+`)
	excessNewlinesRE = regexp.MustCompile(`\n{3,}`)
	bracketCiteRE    = regexp.MustCompile(`\[\d+\]`)
	yearCiteRE       = regexp.MustCompile(`\(\d{4}\)`)
	sentenceEndRE    = regexp.MustCompile(`[.!?]+`)
)

// TextNormalizer normalizes regulatory text for consistent analysis: Unicode
// compatibility folding, whitespace standardization, citation rewriting, and
// section extraction.
type TextNormalizer struct {
	lowercase       bool
	removeCitations bool
}

// NormalizerOption customises TextNormalizer behaviour.
type NormalizerOption func(*TextNormalizer)

// WithLowercase folds the normalized text to lowercase.
func WithLowercase() NormalizerOption {
	return func(n *TextNormalizer) { n.lowercase = true }
}

// WithCitationRemoval strips bracketed reference markers ("[12]") and bare
// year citations ("(2019)") after abbreviation rewriting.
func WithCitationRemoval() NormalizerOption {
	return func(n *TextNormalizer) { n.removeCitations = true }
}

// NewTextNormalizer constructs a TextNormalizer with the given options.
func NewTextNormalizer(opts ...NormalizerOption) *TextNormalizer {
	n := &TextNormalizer{}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize runs the full normalization pipeline over text and returns the
// result together with section structure and word/sentence statistics.
func (n *TextNormalizer) Normalize(text string) *NormalizedText {
	original := text

	// Unicode normalization (NFKC for compatibility).
	normalized := norm.NFKC.String(text)

	// Standardize line endings.
	normalized = strings.ReplaceAll(normalized, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")

	normalized = normalizeWhitespace(normalized)
	normalized = n.normalizeCitations(normalized)

	sections := extractSections(normalized)

	if n.lowercase {
		normalized = strings.ToLower(normalized)
	}

	return &NormalizedText{
		Original:      original,
		Normalized:    normalized,
		Sections:      sections,
		WordCount:     len(strings.Fields(normalized)),
		SentenceCount: len(sentenceEndRE.FindAllString(normalized, -1)),
	}
}

// normalizeWhitespace collapses runs of spaces and tabs to single spaces while
// preserving paragraph structure (at most one blank line between paragraphs).
func normalizeWhitespace(text string) string {
	text = interiorSpaceRE.ReplaceAllString(text, " ")
	text = excessNewlinesRE.ReplaceAllString(text, "\n\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// normalizeCitations rewrites legal citation abbreviations ("U.S.C." → "USC")
// and optionally removes reference markers.
func (n *TextNormalizer) normalizeCitations(text string) string {
	for _, cp := range citationPatterns {
		text = cp.re.ReplaceAllString(text, cp.replacement)
	}
	if n.removeCitations {
		text = bracketCiteRE.ReplaceAllString(text, "")
		text = yearCiteRE.ReplaceAllString(text, "")
	}
	return text
}

// extractSections finds section headers in normalized text.  Each pattern is
// applied independently; the combined matches are sorted by position and
// overlapping extractions deduplicated.
func extractSections(text string) []Section {
	var sections []Section

	for _, re := range sectionPatterns {
		matches := re.FindAllStringSubmatchIndex(text, -1)
		for i, m := range matches {
			// m[2]:m[3] is the capture group holding the section identifier.
			id := text[m[2]:m[3]]
			start := m[1]

			end := len(text)
			if i+1 < len(matches) {
				end = matches[i+1][0]
			}

			content := strings.TrimSpace(text[start:end])
			preview := content
			if len(preview) > sectionContentPreview {
				preview = preview[:sectionContentPreview] + "..."
			}

			sections = append(sections, Section{
				ID:          id,
				Start:       m[0],
				End:         end,
				Content:     preview,
				FullContent: content,
			})
		}
	}

	sort.SliceStable(sections, func(i, j int) bool { return sections[i].Start < sections[j].Start })
	return deduplicateSections(sections)
}

// deduplicateSections removes overlapping extractions produced by different
// header patterns matching the same region.  When two sections overlap, the
// one with the longer (more specific) identifier wins.
func deduplicateSections(sections []Section) []Section {
	if len(sections) == 0 {
		return nil
	}

	deduplicated := []Section{sections[0]}
	for _, s := range sections[1:] {
		last := &deduplicated[len(deduplicated)-1]
		switch {
		case s.Start >= last.End:
			deduplicated = append(deduplicated, s)
		case len(s.ID) > len(last.ID):
			*last = s
		}
	}
	return deduplicated
}

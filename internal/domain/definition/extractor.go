package definition

import (
	"regexp"
	"sort"
	"strings"
)

// ─────────────────────────────────────────────────────────────────────────────
// Definition patterns
// ─────────────────────────────────────────────────────────────────────────────

// weightedPattern pairs a defining-phrase expression with the confidence
// assigned to extractions it produces. The trailing non-capturing group
// consumes the passage terminator (period, semicolon, blank line or end
// of text) so the captured definition text excludes it.
type weightedPattern struct {
	re         *regexp.Regexp
	confidence float64
}

const defTerminator = `(?:\.|;|\n\n|$)`

// Ordered from most to least specific. Extraction walks them in order
// and keeps the first definition seen per lowercased term, so a more
// specific phrasing always wins over a looser one.
var definitionPatterns = []weightedPattern{
	{regexp.MustCompile(`(?is)"([^"]+)"\s+means\s+(.+?)` + defTerminator), 0.95},
	{regexp.MustCompile(`(?is)"([^"]+)"\s+shall\s+mean\s+(.+?)` + defTerminator), 0.95},
	{regexp.MustCompile(`(?is)"([^"]+)"\s+is\s+defined\s+as\s+(.+?)` + defTerminator), 0.9},
	{regexp.MustCompile(`(?is)"([^"]+)"\s+refers\s+to\s+(.+?)` + defTerminator), 0.85},
	{regexp.MustCompile(`(?is)[Tt]he\s+term\s+"([^"]+)"\s+means\s+(.+?)` + defTerminator), 0.95},
	{regexp.MustCompile(`(?is)[Ff]or\s+(?:the\s+)?purposes?\s+of\s+this\s+(?:section|rule|regulation|part),?\s+"([^"]+)"\s+means\s+(.+?)` + defTerminator), 0.9},
	{regexp.MustCompile(`(?is)"([^"]+)"\s+has\s+the\s+(?:same\s+)?meaning\s+(?:given|set forth|provided)\s+in\s+(.+?)` + defTerminator), 0.8},
	{regexp.MustCompile(`(?is)[Aa]s\s+used\s+in\s+this\s+(?:section|rule|regulation|part),?\s+"([^"]+)"\s+means\s+(.+?)` + defTerminator), 0.9},
	{regexp.MustCompile(`(?is)\(([^)]+)\)\s*[-–—]\s*(.+?)(?:\.|;|\n\n|\)|$)`), 0.7},
}

var crossReferencePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)as\s+defined\s+in\s+(?:Section|§|Rule)\s*(\d+(?:\.\d+)*)`),
	regexp.MustCompile(`(?i)within\s+the\s+meaning\s+of\s+(?:Section|§|Rule)\s*(\d+(?:\.\d+)*)`),
	regexp.MustCompile(`(?i)pursuant\s+to\s+(?:Section|§|Rule)\s*(\d+(?:\.\d+)*)`),
	regexp.MustCompile(`(?i)see\s+(?:Section|§|Rule)\s*(\d+(?:\.\d+)*)`),
}

// ─────────────────────────────────────────────────────────────────────────────
// Extractor
// ─────────────────────────────────────────────────────────────────────────────

const (
	// DefaultMinDefinitionLength rejects captures too short to be a
	// substantive definition.
	DefaultMinDefinitionLength = 10
	// DefaultMaxDefinitionLength rejects runaway captures spanning
	// whole sections.
	DefaultMaxDefinitionLength = 2000
)

// Extractor finds defined terms in regulatory text.
type Extractor struct {
	minDefinitionLength int
	maxDefinitionLength int
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithDefinitionLengthBounds overrides the accepted definition-text
// length range. Non-positive values leave the corresponding default.
func WithDefinitionLengthBounds(min, max int) ExtractorOption {
	return func(e *Extractor) {
		if min > 0 {
			e.minDefinitionLength = min
		}
		if max > 0 {
			e.maxDefinitionLength = max
		}
	}
}

// NewExtractor builds a definition extractor with default length bounds.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		minDefinitionLength: DefaultMinDefinitionLength,
		maxDefinitionLength: DefaultMaxDefinitionLength,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the definitions found in text, ordered by position.
// When several patterns capture the same term (case-insensitive), only
// the first capture is kept.
func (e *Extractor) Extract(text, sourceDocument, jurisdiction string) []Definition {
	var definitions []Definition
	seen := make(map[string]struct{})

	for _, wp := range definitionPatterns {
		for _, loc := range wp.re.FindAllStringSubmatchIndex(text, -1) {
			term := strings.TrimSpace(text[loc[2]:loc[3]])
			definitionText := strings.TrimSpace(text[loc[4]:loc[5]])

			termLower := strings.ToLower(term)
			if _, ok := seen[termLower]; ok {
				continue
			}
			if !e.isValidDefinition(term, definitionText) {
				continue
			}

			definitions = append(definitions, Definition{
				Term:            term,
				DefinitionText:  definitionText,
				SourceDocument:  sourceDocument,
				Jurisdiction:    jurisdiction,
				Position:        loc[0],
				Confidence:      wp.confidence,
				CrossReferences: extractCrossReferences(definitionText),
			})
			seen[termLower] = struct{}{}
		}
	}

	sort.SliceStable(definitions, func(i, j int) bool {
		return definitions[i].Position < definitions[j].Position
	})
	return definitions
}

func (e *Extractor) isValidDefinition(term, definitionText string) bool {
	if len(term) < 2 || len(term) > 100 {
		return false
	}
	if len(definitionText) < e.minDefinitionLength || len(definitionText) > e.maxDefinitionLength {
		return false
	}
	// Mostly-numeric "terms" are citations, not vocabulary.
	digits := 0
	for _, r := range term {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits*2 <= len(term)
}

func extractCrossReferences(definitionText string) []string {
	var refs []string
	seen := make(map[string]struct{})
	for _, re := range crossReferencePatterns {
		for _, m := range re.FindAllStringSubmatch(definitionText, -1) {
			if _, ok := seen[m[1]]; ok {
				continue
			}
			refs = append(refs, m[1])
			seen[m[1]] = struct{}{}
		}
	}
	return refs
}

// ─────────────────────────────────────────────────────────────────────────────
// Conflicts and glossary
// ─────────────────────────────────────────────────────────────────────────────

// FindConflicts groups definitions by lowercased term and reports every
// term whose definitions materially differ. Two definitions count as
// identical when their lowercased first 200 characters agree.
func (e *Extractor) FindConflicts(definitions []Definition) []Conflict {
	byTerm := make(map[string][]Definition)
	var order []string
	for _, d := range definitions {
		termLower := strings.ToLower(d.Term)
		if _, ok := byTerm[termLower]; !ok {
			order = append(order, termLower)
		}
		byTerm[termLower] = append(byTerm[termLower], d)
	}

	var conflicts []Conflict
	for _, term := range order {
		defs := byTerm[term]
		if len(defs) < 2 {
			continue
		}
		uniqueTexts := make(map[string]struct{})
		for _, d := range defs {
			key := strings.ToLower(d.DefinitionText)
			if len(key) > 200 {
				key = key[:200]
			}
			uniqueTexts[key] = struct{}{}
		}
		if len(uniqueTexts) < 2 {
			continue
		}
		conflicts = append(conflicts, Conflict{
			Term:          term,
			Definitions:   defs,
			Jurisdictions: distinctJurisdictions(defs),
			ConflictType:  classifyConflict(defs),
		})
	}
	return conflicts
}

// classifyConflict uses a length-ratio heuristic first: when one
// definition is more than twice as long as another, the disagreement is
// about scope rather than wording.
func classifyConflict(defs []Definition) ConflictType {
	maxLen, minLen := 0, -1
	for _, d := range defs {
		n := len(d.DefinitionText)
		if n > maxLen {
			maxLen = n
		}
		if minLen < 0 || n < minLen {
			minLen = n
		}
	}
	if maxLen > minLen*2 {
		return ConflictScopeDifference
	}
	if len(distinctJurisdictions(defs)) > 1 {
		return ConflictJurisdictional
	}
	return ConflictSemantic
}

func distinctJurisdictions(defs []Definition) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, d := range defs {
		if d.Jurisdiction == "" {
			continue
		}
		if _, ok := seen[d.Jurisdiction]; ok {
			continue
		}
		out = append(out, d.Jurisdiction)
		seen[d.Jurisdiction] = struct{}{}
	}
	return out
}

// BuildGlossary aggregates definitions into a per-term glossary. Terms
// are keyed exactly as extracted; the first definition of a term is
// primary, later differing texts are recorded as variants.
func (e *Extractor) BuildGlossary(definitions []Definition) map[string]*GlossaryEntry {
	glossary := make(map[string]*GlossaryEntry)

	for _, d := range definitions {
		entry, ok := glossary[d.Term]
		if !ok {
			entry = &GlossaryEntry{
				PrimaryDefinition: d.DefinitionText,
				Variants:          []GlossaryVariant{},
				CrossReferences:   append([]string(nil), d.CrossReferences...),
			}
			if d.SourceDocument != "" {
				entry.Sources = []string{d.SourceDocument}
			}
			if d.Jurisdiction != "" {
				entry.Jurisdictions = []string{d.Jurisdiction}
			}
			glossary[d.Term] = entry
			continue
		}

		if d.DefinitionText != entry.PrimaryDefinition {
			entry.Variants = append(entry.Variants, GlossaryVariant{
				Definition:   d.DefinitionText,
				Source:       d.SourceDocument,
				Jurisdiction: d.Jurisdiction,
			})
		}
		if d.SourceDocument != "" && !containsString(entry.Sources, d.SourceDocument) {
			entry.Sources = append(entry.Sources, d.SourceDocument)
		}
		if d.Jurisdiction != "" && !containsString(entry.Jurisdictions, d.Jurisdiction) {
			entry.Jurisdictions = append(entry.Jurisdictions, d.Jurisdiction)
		}
		for _, ref := range d.CrossReferences {
			if !containsString(entry.CrossReferences, ref) {
				entry.CrossReferences = append(entry.CrossReferences, ref)
			}
		}
	}
	return glossary
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

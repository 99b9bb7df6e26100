package clause

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ─────────────────────────────────────────────────────────────────────────────
// Classification pattern families
// ─────────────────────────────────────────────────────────────────────────────

// Pattern families are kept as separate compiled expressions rather than a
// single alternation so that confidence scoring can count how many of a
// family's sub-patterns independently match.
var (
	obligationPatterns = compilePatterns([]string{
		`\b(?:shall|must|will|is required to|are required to|has to|have to)\b`,
		`\b(?:is obligated|are obligated|is obliged|are obliged)\b`,
		`\b(?:it is mandatory|mandatory requirement)\b`,
	})

	prohibitionPatterns = compilePatterns([]string{
		`\b(?:shall not|must not|may not|cannot|will not)\b`,
		`\b(?:is prohibited|are prohibited|is forbidden|are forbidden)\b`,
		`\b(?:is not permitted|are not permitted|is not allowed|are not allowed)\b`,
		`\b(?:no person shall|no entity shall|no one may)\b`,
		// "No X shall", where X may be one or two hyphenated words.
		`\bno\s+[\w-]+(?:\s+[\w-]+)?\s+shall\b`,
	})

	permissionPatterns = compilePatterns([]string{
		`\b(?:may|can|is permitted to|are permitted to)\b`,
		`\b(?:is allowed to|are allowed to|is authorized|are authorized)\b`,
		`\b(?:has the right to|have the right to)\b`,
	})

	conditionPatterns = compilePatterns([]string{
		`\b(?:if|when|where|unless|provided that|subject to)\b`,
		`\b(?:in the event|in case of|contingent upon)\b`,
		`\b(?:except when|except where|except if)\b`,
	})

	exceptionPatterns = compilePatterns([]string{
		`\b(?:except|excluding|other than|notwithstanding)\b`,
		`\b(?:this (?:section|rule|regulation) does not apply)\b`,
		`\b(?:exemption|exempt from)\b`,
	})

	// Definition patterns stay case-sensitive: quoted-term phrasing is
	// conventional and an upper-case MEANS is not a definition marker.
	definitionSentencePatterns = []*regexp.Regexp{
		regexp.MustCompile(`"[^"]+" means`),
		regexp.MustCompile(`"[^"]+" shall mean`),
		regexp.MustCompile(`(?:the term|The term) "[^"]+"`),
		regexp.MustCompile(`"[^"]+" is defined as`),
	}
)

// ─────────────────────────────────────────────────────────────────────────────
// Structured component extraction
// ─────────────────────────────────────────────────────────────────────────────

var (
	subjectRegexes = compilePatterns([]string{
		`^((?:The |A |An )?(?:registrant|issuer|broker|dealer|investment adviser|` +
			`fund|person|entity|company|firm|institution|bank|covered person))`,
		`^((?:The |A |An )?(?:licensee|applicant|member|participant|customer|client))`,
		`^(No (?:person|entity|one|broker|dealer|adviser))`,
	})

	actionRegex = regexp.MustCompile(`(?i)(?:shall|must|may|will|should|can)\s+(?:not\s+)?(\w+(?:\s+\w+)?)`)

	conditionCaptures = compilePatterns([]string{
		`if\s+([^,;.]+)`,
		`when\s+([^,;.]+)`,
		`where\s+([^,;.]+)`,
		`provided that\s+([^,;.]+)`,
		`subject to\s+([^,;.]+)`,
	})

	exceptionCaptures = compilePatterns([]string{
		`except\s+(?:that\s+)?([^,;.]+)`,
		`unless\s+([^,;.]+)`,
		`excluding\s+([^,;.]+)`,
		`other than\s+([^,;.]+)`,
	})

	abbreviationRegex = regexp.MustCompile(`\b(Mr|Mrs|Dr|Inc|Ltd|etc|vs|i\.e|e\.g)\.\s`)
)

func compilePatterns(patterns []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(`(?i)`+p))
	}
	return compiled
}

func matchesAny(regexes []*regexp.Regexp, s string) bool {
	for _, re := range regexes {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

func countMatches(regexes []*regexp.Regexp, s string) int {
	n := 0
	for _, re := range regexes {
		if re.MatchString(s) {
			n++
		}
	}
	return n
}

// ─────────────────────────────────────────────────────────────────────────────
// ClauseExtractor
// ─────────────────────────────────────────────────────────────────────────────

const (
	// DefaultMinClauseLength drops fragments too short to carry a
	// regulatory statement.
	DefaultMinClauseLength = 20
	// DefaultMaxClauseLength truncates run-on sentences; stored clause
	// text gets an ellipsis marker.
	DefaultMaxClauseLength = 1000
)

// ClauseExtractor splits regulatory text into sentences and classifies
// each sentence into a deontic clause type. Extraction is deterministic:
// the same input always yields the same clause list.
type ClauseExtractor struct {
	minClauseLength int
	maxClauseLength int
}

// ExtractorOption configures a ClauseExtractor.
type ExtractorOption func(*ClauseExtractor)

// WithClauseLengthBounds overrides the minimum and maximum clause lengths.
// Non-positive values leave the corresponding default in place.
func WithClauseLengthBounds(min, max int) ExtractorOption {
	return func(e *ClauseExtractor) {
		if min > 0 {
			e.minClauseLength = min
		}
		if max > 0 {
			e.maxClauseLength = max
		}
	}
}

// NewClauseExtractor builds an extractor with default length bounds.
func NewClauseExtractor(opts ...ExtractorOption) *ClauseExtractor {
	e := &ClauseExtractor{
		minClauseLength: DefaultMinClauseLength,
		maxClauseLength: DefaultMaxClauseLength,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the classified clauses found in text, in document order.
// Sentences shorter than the minimum length or classifying as unknown are
// dropped. Position reflects the sentence's ordinal before filtering, so
// positions in the result may be non-contiguous.
func (e *ClauseExtractor) Extract(text, sectionID string) []RegulatoryClause {
	var clauses []RegulatoryClause

	for i, sentence := range splitSentences(text) {
		if len(sentence) < e.minClauseLength {
			continue
		}
		if len(sentence) > e.maxClauseLength {
			sentence = truncateAtRune(sentence, e.maxClauseLength) + "..."
		}

		clauseType := classifySentence(sentence)
		if clauseType == ClauseTypeUnknown {
			continue
		}

		clauses = append(clauses, RegulatoryClause{
			Text:       sentence,
			ClauseType: clauseType,
			SectionID:  sectionID,
			Subject:    extractSubject(sentence),
			Action:     extractAction(sentence),
			Conditions: extractCaptured(conditionCaptures, sentence),
			Exceptions: extractCaptured(exceptionCaptures, sentence),
			Confidence: scoreConfidence(sentence, clauseType),
			Position:   i,
		})
	}

	return clauses
}

// ExtractGrouped extracts clauses and groups them by clause type. Every
// valid clause type is present in the result, with an empty slice when no
// clauses of that type were found.
func (e *ClauseExtractor) ExtractGrouped(text string) map[ClauseType][]RegulatoryClause {
	grouped := map[ClauseType][]RegulatoryClause{
		ClauseTypeObligation:  {},
		ClauseTypeProhibition: {},
		ClauseTypePermission:  {},
		ClauseTypeCondition:   {},
		ClauseTypeDefinition:  {},
		ClauseTypeException:   {},
	}
	for _, c := range e.Extract(text, "") {
		grouped[c.ClauseType] = append(grouped[c.ClauseType], c)
	}
	return grouped
}

// classifySentence applies pattern families in order of specificity.
// Prohibition goes first: prohibition language co-occurs with obligation
// phrasing ("must not"), so the obligation check would otherwise win.
func classifySentence(sentence string) ClauseType {
	switch {
	case matchesAny(prohibitionPatterns, sentence):
		return ClauseTypeProhibition
	case matchesAny(obligationPatterns, sentence):
		return ClauseTypeObligation
	case matchesAny(permissionPatterns, sentence):
		return ClauseTypePermission
	case matchesAny(exceptionPatterns, sentence):
		return ClauseTypeException
	case matchesAny(conditionPatterns, sentence):
		return ClauseTypeCondition
	case matchesAny(definitionSentencePatterns, sentence):
		return ClauseTypeDefinition
	default:
		return ClauseTypeUnknown
	}
}

// scoreConfidence starts at 0.5 and rewards multiple independent pattern
// matches (0.15 each, capped at +0.4) plus sentence length over 10 words
// (+0.1). Result is capped at 1.0.
func scoreConfidence(sentence string, clauseType ClauseType) float64 {
	confidence := 0.5

	var family []*regexp.Regexp
	switch clauseType {
	case ClauseTypeObligation:
		family = obligationPatterns
	case ClauseTypeProhibition:
		family = prohibitionPatterns
	case ClauseTypePermission:
		family = permissionPatterns
	case ClauseTypeCondition:
		family = conditionPatterns
	case ClauseTypeException:
		family = exceptionPatterns
	}

	if family != nil {
		bonus := float64(countMatches(family, sentence)) * 0.15
		if bonus > 0.4 {
			bonus = 0.4
		}
		confidence += bonus
	}

	if len(strings.Fields(sentence)) > 10 {
		confidence += 0.1
	}

	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}

// splitSentences splits text on sentence-terminal punctuation followed by
// whitespace. Periods in common abbreviations are masked first so they do
// not produce false breaks.
func splitSentences(text string) []string {
	const periodMask = "<PERIOD>"
	masked := abbreviationRegex.ReplaceAllString(text, "$1"+periodMask+" ")

	var sentences []string
	runes := []rune(masked)
	start := 0
	for i := 0; i < len(runes); i++ {
		if !isSentenceTerminal(runes[i]) {
			continue
		}
		// Consume a run of terminal punctuation, then require whitespace.
		j := i
		for j+1 < len(runes) && isSentenceTerminal(runes[j+1]) {
			j++
		}
		if j+1 < len(runes) && unicode.IsSpace(runes[j+1]) {
			sentences = appendSentence(sentences, string(runes[start:j+1]), periodMask)
			i = j + 1
			for i < len(runes) && unicode.IsSpace(runes[i]) {
				i++
			}
			start = i
			i--
		} else {
			i = j
		}
	}
	if start < len(runes) {
		sentences = appendSentence(sentences, string(runes[start:]), periodMask)
	}
	return sentences
}

func appendSentence(sentences []string, s, periodMask string) []string {
	s = strings.TrimSpace(strings.ReplaceAll(s, periodMask, "."))
	if s == "" {
		return sentences
	}
	return append(sentences, s)
}

func isSentenceTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func extractSubject(sentence string) string {
	for _, re := range subjectRegexes {
		if m := re.FindStringSubmatch(sentence); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

func extractAction(sentence string) string {
	if m := actionRegex.FindStringSubmatch(sentence); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func extractCaptured(regexes []*regexp.Regexp, sentence string) []string {
	var captured []string
	for _, re := range regexes {
		for _, m := range re.FindAllStringSubmatch(sentence, -1) {
			captured = append(captured, strings.TrimSpace(m[1]))
		}
	}
	return captured
}

// truncateAtRune cuts s to at most n bytes without splitting a
// multi-byte rune at the boundary.
func truncateAtRune(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

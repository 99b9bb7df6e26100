package entity

import (
	"regexp"
	"sort"
	"strings"
)

// ─────────────────────────────────────────────────────────────────────────────
// Lexicons
// ─────────────────────────────────────────────────────────────────────────────

var regulatedEntities = []string{
	"broker", "dealer", "broker-dealer", "investment adviser",
	"investment advisor", "registered representative", "associated person",
	"bank", "savings association", "credit union", "depository institution",
	"mutual fund", "hedge fund", "private fund", "investment company",
	"issuer", "registrant", "reporting company", "public company",
	"transfer agent", "clearing agency", "securities exchange",
	"national securities exchange", "alternative trading system",
	"swap dealer", "major swap participant", "futures commission merchant",
	"commodity trading advisor", "commodity pool operator",
	"insurance company", "insurer", "insurance producer",
	"money services business", "money transmitter",
}

type regulatoryBody struct {
	abbreviation string
	fullName     string
}

var regulatoryBodies = []regulatoryBody{
	{"SEC", "Securities and Exchange Commission"},
	{"FINRA", "Financial Industry Regulatory Authority"},
	{"CFTC", "Commodity Futures Trading Commission"},
	{"FDIC", "Federal Deposit Insurance Corporation"},
	{"OCC", "Office of the Comptroller of the Currency"},
	{"Federal Reserve", "Board of Governors of the Federal Reserve System"},
	{"CFPB", "Consumer Financial Protection Bureau"},
	{"NCUA", "National Credit Union Administration"},
	{"FHFA", "Federal Housing Finance Agency"},
	{"FinCEN", "Financial Crimes Enforcement Network"},
	{"OFAC", "Office of Foreign Assets Control"},
	{"FCA", "Financial Conduct Authority"},
	{"PRA", "Prudential Regulation Authority"},
	{"ESMA", "European Securities and Markets Authority"},
	{"EBA", "European Banking Authority"},
	{"BaFin", "Federal Financial Supervisory Authority"},
	{"AMF", "Autorité des marchés financiers"},
	{"FSA", "Financial Services Agency"},
	{"ASIC", "Australian Securities and Investments Commission"},
	{"MAS", "Monetary Authority of Singapore"},
	{"HKMA", "Hong Kong Monetary Authority"},
	{"SFC", "Securities and Futures Commission"},
}

var legalReferencePatterns = []string{
	`(?:Section|§)\s*\d+(?:\([a-zA-Z0-9]+\))*(?:\s+of\s+(?:the\s+)?[\w\s]+Act)?`,
	`(?:Rule|Regulation)\s*\d+[a-zA-Z]*(?:-\d+)?`,
	`\d+\s*(?:U\.?S\.?C\.?|USC)\s*§?\s*\d+`,
	`\d+\s*(?:C\.?F\.?R\.?|CFR)\s*(?:Part\s*)?\d+(?:\.\d+)?`,
	`(?:Securities|Exchange|Investment Company|Investment Advisers)\s+Act\s+of\s+\d{4}`,
	`(?:Dodd-Frank|Sarbanes-Oxley|Gramm-Leach-Bliley|Bank Secrecy)\s+Act`,
	`(?:MiFID|MiFIR|GDPR|EMIR|SFDR|UCITS)\s*(?:II|III|IV|V)?`,
}

type monetaryPattern struct {
	re       *regexp.Regexp
	currency string
}

var monetaryPatterns = []monetaryPattern{
	{regexp.MustCompile(`(?i)\$\s*[\d,]+(?:\.\d{2})?(?:\s*(?:million|billion|trillion))?`), "USD"},
	{regexp.MustCompile(`(?i)(?:USD|EUR|GBP|JPY|CHF)\s*[\d,]+(?:\.\d{2})?(?:\s*(?:million|billion|trillion))?`), ""},
	{regexp.MustCompile(`(?i)[\d,]+(?:\.\d{2})?\s*(?:dollars|euros|pounds)`), ""},
}

var timePatterns = []string{
	`\d+\s*(?:business\s+)?days?`,
	`\d+\s*(?:calendar\s+)?months?`,
	`\d+\s*years?`,
	`\d+\s*(?:business\s+)?hours?`,
	`(?:annual|quarterly|monthly|daily|weekly)(?:ly)?`,
	`within\s+\d+\s+(?:days?|months?|years?)`,
	`no later than\s+\d+\s+(?:days?|months?|years?)`,
}

// ─────────────────────────────────────────────────────────────────────────────
// Recognizer
// ─────────────────────────────────────────────────────────────────────────────

// Recognizer finds regulatory entities via lexicon and pattern matching.
// A Recognizer is immutable and safe for concurrent use.
type Recognizer struct {
	regulatedEntityRE *regexp.Regexp
	regulatoryBodyRE  *regexp.Regexp
	legalRefRE        *regexp.Regexp
	timeRE            *regexp.Regexp
}

// NewRecognizer compiles the lexicons into matchers.
func NewRecognizer() *Recognizer {
	return &Recognizer{
		regulatedEntityRE: buildAlternation(regulatedEntities),
		regulatoryBodyRE:  buildBodyPattern(),
		legalRefRE:        combinePatterns(legalReferencePatterns),
		timeRE:            combinePatterns(timePatterns),
	}
}

// buildAlternation sorts terms longest-first so multi-word phrases win
// over their substrings ("broker-dealer" before "broker").
func buildAlternation(terms []string) *regexp.Regexp {
	sorted := append([]string(nil), terms...)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	escaped := make([]string, len(sorted))
	for i, t := range sorted {
		escaped[i] = regexp.QuoteMeta(t)
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(escaped, "|") + `)\b`)
}

func buildBodyPattern() *regexp.Regexp {
	parts := make([]string, 0, len(regulatoryBodies)*2)
	for _, b := range regulatoryBodies {
		parts = append(parts, regexp.QuoteMeta(b.abbreviation))
	}
	for _, b := range regulatoryBodies {
		parts = append(parts, regexp.QuoteMeta(b.fullName))
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(parts, "|") + `)\b`)
}

func combinePatterns(patterns []string) *regexp.Regexp {
	parts := make([]string, len(patterns))
	for i, p := range patterns {
		parts[i] = "(?:" + p + ")"
	}
	return regexp.MustCompile(`(?i)` + strings.Join(parts, "|"))
}

// Recognize returns the entities found in text, ordered by position
// with overlapping matches resolved in favor of higher confidence.
func (r *Recognizer) Recognize(text string) []RegulatoryEntity {
	var entities []RegulatoryEntity

	for _, loc := range r.regulatedEntityRE.FindAllStringIndex(text, -1) {
		entities = append(entities, RegulatoryEntity{
			Text:           text[loc[0]:loc[1]],
			EntityType:     TypeRegulatedEntity,
			NormalizedForm: text[loc[0]:loc[1]],
			StartPos:       loc[0],
			EndPos:         loc[1],
			Confidence:     0.9,
		})
	}

	for _, loc := range r.regulatoryBodyRE.FindAllStringIndex(text, -1) {
		matched := text[loc[0]:loc[1]]
		entities = append(entities, RegulatoryEntity{
			Text:           matched,
			EntityType:     TypeRegulatoryBody,
			NormalizedForm: normalizeRegulatoryBody(matched),
			StartPos:       loc[0],
			EndPos:         loc[1],
			Confidence:     0.95,
		})
	}

	for _, loc := range r.legalRefRE.FindAllStringIndex(text, -1) {
		entities = append(entities, RegulatoryEntity{
			Text:           text[loc[0]:loc[1]],
			EntityType:     TypeLegalReference,
			NormalizedForm: text[loc[0]:loc[1]],
			StartPos:       loc[0],
			EndPos:         loc[1],
			Confidence:     0.85,
		})
	}

	for _, mp := range monetaryPatterns {
		for _, loc := range mp.re.FindAllStringIndex(text, -1) {
			e := RegulatoryEntity{
				Text:           text[loc[0]:loc[1]],
				EntityType:     TypeMonetaryThreshold,
				NormalizedForm: text[loc[0]:loc[1]],
				StartPos:       loc[0],
				EndPos:         loc[1],
				Confidence:     0.9,
			}
			if mp.currency != "" {
				e.Metadata = map[string]string{"currency": mp.currency}
			}
			entities = append(entities, e)
		}
	}

	for _, loc := range r.timeRE.FindAllStringIndex(text, -1) {
		entities = append(entities, RegulatoryEntity{
			Text:           text[loc[0]:loc[1]],
			EntityType:     TypeTimePeriod,
			NormalizedForm: text[loc[0]:loc[1]],
			StartPos:       loc[0],
			EndPos:         loc[1],
			Confidence:     0.85,
		})
	}

	sort.SliceStable(entities, func(i, j int) bool {
		if entities[i].StartPos != entities[j].StartPos {
			return entities[i].StartPos < entities[j].StartPos
		}
		return entities[i].EndPos > entities[j].EndPos
	})
	return removeOverlaps(entities)
}

func normalizeRegulatoryBody(text string) string {
	for _, b := range regulatoryBodies {
		if strings.EqualFold(text, b.abbreviation) || strings.EqualFold(text, b.fullName) {
			return b.abbreviation
		}
	}
	return text
}

// removeOverlaps expects position-sorted input and keeps the earlier
// entity on overlap unless the later one is more confident.
func removeOverlaps(entities []RegulatoryEntity) []RegulatoryEntity {
	if len(entities) == 0 {
		return nil
	}
	result := []RegulatoryEntity{entities[0]}
	for _, e := range entities[1:] {
		last := result[len(result)-1]
		if e.StartPos >= last.EndPos {
			result = append(result, e)
		} else if e.Confidence > last.Confidence {
			result[len(result)-1] = e
		}
	}
	return result
}

// RecognizeByType filters recognition output to a single entity type.
func (r *Recognizer) RecognizeByType(text string, entityType EntityType) []RegulatoryEntity {
	var out []RegulatoryEntity
	for _, e := range r.Recognize(text) {
		if e.EntityType == entityType {
			out = append(out, e)
		}
	}
	return out
}

// EntityCounts tallies recognized entities per type. Every entity type
// has an entry, zero when absent.
func (r *Recognizer) EntityCounts(text string) map[EntityType]int {
	counts := make(map[EntityType]int, len(AllEntityTypes))
	for _, et := range AllEntityTypes {
		counts[et] = 0
	}
	for _, e := range r.Recognize(text) {
		counts[e.EntityType]++
	}
	return counts
}

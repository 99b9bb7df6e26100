package ambiguity

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// ─────────────────────────────────────────────────────────────────────────────
// Trigger lexicons
// ─────────────────────────────────────────────────────────────────────────────

type vagueStandard struct {
	keyword     string
	description string
	severity    float64
}

// Vague standards carry a per-phrase severity reflecting how much
// enforcement latitude the phrase leaves open.
var vagueStandards = []vagueStandard{
	{"reasonable", "Reasonable under the circumstances", 0.6},
	{"appropriate", "Appropriate measures", 0.6},
	{"adequate", "Adequate safeguards", 0.6},
	{"sufficient", "Sufficient controls", 0.5},
	{"material", "Material change/impact", 0.7},
	{"significant", "Significant risk", 0.6},
	{"substantial", "Substantial compliance", 0.6},
	{"promptly", "Promptly notify", 0.7},
	{"timely", "Timely manner", 0.6},
	{"reasonable time", "Within a reasonable time", 0.7},
	{"as soon as practicable", "As soon as practicable", 0.6},
	{"to the extent practicable", "To the extent practicable", 0.6},
	{"good faith", "Good faith effort", 0.5},
	{"best efforts", "Best efforts", 0.5},
	{"commercially reasonable", "Commercially reasonable efforts", 0.5},
	{"duly", "Duly authorized", 0.4},
	{"properly", "Properly maintained", 0.5},
	{"as needed", "As needed basis", 0.6},
	{"as appropriate", "As appropriate", 0.6},
	{"in the ordinary course", "In the ordinary course of business", 0.5},
}

type triggerPattern struct {
	re          *regexp.Regexp
	description string
	severity    float64
}

var scopeUnclearPatterns = []triggerPattern{
	{regexp.MustCompile(`(?i)\b(?:may|might)\s+(?:include|apply)`), "Scope may include", 0.6},
	{regexp.MustCompile(`(?i)\bincluding\s+but\s+not\s+limited\s+to\b`), "Non-exhaustive list", 0.5},
	{regexp.MustCompile(`(?i)\bsuch\s+as\b`), "Exemplary list", 0.4},
	{regexp.MustCompile(`(?i)\bother\s+(?:similar|related|applicable)\b`), "Undefined other items", 0.6},
	{regexp.MustCompile(`(?i)\band\s+similar\b`), "Similar items undefined", 0.5},
	{regexp.MustCompile(`(?i)\bor\s+otherwise\b`), "Catch-all provision", 0.6},
	{regexp.MustCompile(`(?i)\bto\s+the\s+extent\s+(?:applicable|relevant)\b`), "Applicability unclear", 0.6},
}

var timingUnclearPatterns = []triggerPattern{
	{regexp.MustCompile(`(?i)\bpromptly\b`), "Promptly - timing unspecified", 0.7},
	{regexp.MustCompile(`(?i)\bwithout\s+(?:undue\s+)?delay\b`), "Without delay - no timeframe", 0.6},
	{regexp.MustCompile(`(?i)\bas\s+soon\s+as\s+(?:reasonably\s+)?(?:practicable|possible)\b`), "ASAP - no deadline", 0.7},
	{regexp.MustCompile(`(?i)\bin\s+a\s+timely\s+(?:manner|fashion)\b`), "Timely - undefined", 0.7},
	{regexp.MustCompile(`(?i)\bperiodically\b`), "Periodically - frequency unclear", 0.6},
	{regexp.MustCompile(`(?i)\bfrom\s+time\s+to\s+time\b`), "From time to time - no schedule", 0.5},
	{regexp.MustCompile(`(?i)\bregularly\b`), "Regularly - frequency unclear", 0.5},
}

var thresholdUnclearPatterns = []triggerPattern{
	{regexp.MustCompile(`(?i)\bmaterial(?:ly)?\b`), "Material threshold undefined", 0.7},
	{regexp.MustCompile(`(?i)\bsignificant(?:ly)?\b`), "Significant threshold undefined", 0.6},
	{regexp.MustCompile(`(?i)\bsubstantial(?:ly)?\b`), "Substantial threshold undefined", 0.6},
	{regexp.MustCompile(`(?i)\bde\s+minimis\b`), "De minimis threshold unclear", 0.6},
	{regexp.MustCompile(`(?i)\bexcessive\b`), "Excessive threshold undefined", 0.6},
	{regexp.MustCompile(`(?i)\bunusual\b`), "Unusual threshold undefined", 0.5},
}

var vagueStandardRegexes = func() []*regexp.Regexp {
	regexes := make([]*regexp.Regexp, len(vagueStandards))
	for i, vs := range vagueStandards {
		regexes[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(vs.keyword) + `\b`)
	}
	return regexes
}()

var quotedTermRE = regexp.MustCompile(`"([^"]{2,50})"`)

var interpretationRange = []string{
	"Conservative: Most restrictive interpretation",
	"Moderate: Industry standard interpretation",
	"Liberal: Least restrictive interpretation",
}

// ─────────────────────────────────────────────────────────────────────────────
// Detector
// ─────────────────────────────────────────────────────────────────────────────

// Detector scans regulatory text for ambiguous language. A Detector is
// immutable after construction and safe for concurrent use.
type Detector struct {
	definedTerms      map[string]struct{}
	severityThreshold float64
}

// DetectorOption configures a Detector.
type DetectorOption func(*Detector)

// WithDefinedTerms exempts known defined terms from undefined-term
// reporting. Matching is case-insensitive.
func WithDefinedTerms(terms []string) DetectorOption {
	return func(d *Detector) {
		for _, t := range terms {
			d.definedTerms[strings.ToLower(t)] = struct{}{}
		}
	}
}

// WithSeverityThreshold drops instances whose severity falls below the
// threshold.
func WithSeverityThreshold(threshold float64) DetectorOption {
	return func(d *Detector) {
		d.severityThreshold = threshold
	}
}

// NewDetector builds a detector that reports every instance regardless
// of severity unless configured otherwise.
func NewDetector(opts ...DetectorOption) *Detector {
	d := &Detector{definedTerms: make(map[string]struct{})}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect runs every ambiguity scan over text and returns an aggregate
// report. Instances are ordered by position. Empty text yields a score
// of zero.
func (d *Detector) Detect(text, documentID, jurisdiction string) *Report {
	var instances []Instance
	instances = append(instances, d.detectVagueStandards(text)...)
	instances = append(instances, detectPatternAmbiguity(text, scopeUnclearPatterns, TypeScopeUnclear)...)
	instances = append(instances, detectPatternAmbiguity(text, timingUnclearPatterns, TypeTimingUnclear)...)
	instances = append(instances, detectPatternAmbiguity(text, thresholdUnclearPatterns, TypeThresholdUnclear)...)
	instances = append(instances, d.detectUndefinedTerms(text)...)

	if d.severityThreshold > 0 {
		kept := instances[:0]
		for _, inst := range instances {
			if inst.Severity >= d.severityThreshold {
				kept = append(kept, inst)
			}
		}
		instances = kept
	}

	sort.SliceStable(instances, func(i, j int) bool {
		return instances[i].Position < instances[j].Position
	})

	byType := make(map[AmbiguityType]int)
	highSeverity := 0
	for _, inst := range instances {
		byType[inst.AmbiguityType]++
		if inst.Severity >= 0.7 {
			highSeverity++
		}
	}

	// Density-based score: instances per hundred words, capped at 1.
	score := 0.0
	if len(instances) > 0 {
		words := len(strings.Fields(text))
		score = float64(len(instances)) / (float64(words) / 100.0)
		if score > 1.0 {
			score = 1.0
		}
	}

	return &Report{
		DocumentID:        documentID,
		Jurisdiction:      jurisdiction,
		TotalInstances:    len(instances),
		InstancesByType:   byType,
		HighSeverityCount: highSeverity,
		AmbiguityScore:    score,
		Instances:         instances,
		Recommendations:   buildRecommendations(instances, byType),
	}
}

func (d *Detector) detectVagueStandards(text string) []Instance {
	var instances []Instance
	textLower := strings.ToLower(text)

	for i, vs := range vagueStandards {
		for _, loc := range vagueStandardRegexes[i].FindAllStringIndex(textLower, -1) {
			instances = append(instances, Instance{
				Text:                textLower[loc[0]:loc[1]],
				AmbiguityType:       TypeVagueStandard,
				TriggerPhrase:       vs.description,
				Position:            loc[0],
				Severity:            vs.severity,
				Confidence:          0.8,
				Context:             surroundingContext(text, loc[0], loc[1]),
				InterpretationRange: interpretationRange,
			})
		}
	}
	return instances
}

func detectPatternAmbiguity(text string, patterns []triggerPattern, ambiguityType AmbiguityType) []Instance {
	var instances []Instance
	for _, tp := range patterns {
		for _, loc := range tp.re.FindAllStringIndex(text, -1) {
			instances = append(instances, Instance{
				Text:          text[loc[0]:loc[1]],
				AmbiguityType: ambiguityType,
				TriggerPhrase: tp.description,
				Position:      loc[0],
				Severity:      tp.severity,
				Confidence:    0.7,
				Context:       surroundingContext(text, loc[0], loc[1]),
			})
		}
	}
	return instances
}

// detectUndefinedTerms flags quoted terms with no known definition.
// Quoted passages immediately followed by defining language ("means",
// "shall mean") are the definitions themselves and are skipped.
func (d *Detector) detectUndefinedTerms(text string) []Instance {
	var instances []Instance

	skipWords := map[string]struct{}{
		"and": {}, "or": {}, "the": {}, "a": {}, "an": {}, "means": {}, "shall": {},
	}

	for _, loc := range quotedTermRE.FindAllStringSubmatchIndex(text, -1) {
		term := text[loc[2]:loc[3]]
		termLower := strings.ToLower(term)

		if _, ok := d.definedTerms[termLower]; ok {
			continue
		}
		if _, ok := skipWords[termLower]; ok {
			continue
		}
		afterEnd := loc[1] + 20
		if afterEnd > len(text) {
			afterEnd = len(text)
		}
		after := strings.ToLower(text[loc[1]:afterEnd])
		if strings.Contains(after, "means") || strings.Contains(after, "shall mean") {
			continue
		}

		instances = append(instances, Instance{
			Text:          term,
			AmbiguityType: TypeUndefinedTerm,
			TriggerPhrase: fmt.Sprintf("Potentially undefined term: %s", term),
			Position:      loc[0],
			Severity:      0.5,
			Confidence:    0.5,
			Context:       surroundingContext(text, loc[0], loc[1]),
		})
	}
	return instances
}

func surroundingContext(text string, start, end int) string {
	ctxStart := start - 50
	if ctxStart < 0 {
		ctxStart = 0
	}
	ctxEnd := end + 50
	if ctxEnd > len(text) {
		ctxEnd = len(text)
	}
	return text[ctxStart:ctxEnd]
}

func buildRecommendations(instances []Instance, byType map[AmbiguityType]int) []string {
	if len(instances) == 0 {
		return []string{"No significant ambiguity detected"}
	}

	recommendations := []string{
		"IMPORTANT: This analysis identifies potential ambiguity but does not provide legal advice. " +
			"Consult qualified legal counsel for interpretation guidance.",
	}

	if byType[TypeVagueStandard] > 3 {
		recommendations = append(recommendations,
			"Multiple vague standards detected. Consider adopting conservative interpretations "+
				"and documenting compliance rationale.")
	}
	if byType[TypeTimingUnclear] > 2 {
		recommendations = append(recommendations,
			"Timing requirements are ambiguous. Seek clarification from regulators or "+
				"adopt most restrictive reasonable timeframes.")
	}
	if byType[TypeThresholdUnclear] > 2 {
		recommendations = append(recommendations,
			"Materiality/threshold definitions are unclear. Document your interpretation "+
				"methodology and seek legal review.")
	}

	highSeverity := 0
	for _, inst := range instances {
		if inst.Severity >= 0.7 {
			highSeverity++
		}
	}
	if highSeverity > 5 {
		recommendations = append(recommendations, fmt.Sprintf(
			"HIGH PRIORITY: %d high-severity ambiguities detected. Prioritize legal review of these items.",
			highSeverity))
	}
	return recommendations
}

// RankInstances orders instances by severity, then confidence, highest
// first.
func RankInstances(instances []Instance) []Instance {
	ranked := append([]Instance(nil), instances...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Severity != ranked[j].Severity {
			return ranked[i].Severity > ranked[j].Severity
		}
		return ranked[i].Confidence > ranked[j].Confidence
	})
	return ranked
}

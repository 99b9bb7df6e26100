// Package ambiguity scans regulatory text for language that admits
// multiple readings: vague standards, unclear scope, timing and
// threshold language, and quoted terms used without a definition.
package ambiguity

// AmbiguityType classifies the kind of interpretive uncertainty found.
type AmbiguityType string

const (
	TypeVagueStandard      AmbiguityType = "vague_standard"
	TypeUndefinedTerm      AmbiguityType = "undefined_term"
	TypeCircularDefinition AmbiguityType = "circular_definition"
	TypeConflictingClauses AmbiguityType = "conflicting_clauses"
	TypeScopeUnclear       AmbiguityType = "scope_unclear"
	TypeTimingUnclear      AmbiguityType = "timing_unclear"
	TypeThresholdUnclear   AmbiguityType = "threshold_unclear"
	TypeReferenceAmbiguity AmbiguityType = "reference_ambiguity"
)

func (t AmbiguityType) String() string {
	return string(t)
}

// Instance is a single occurrence of ambiguous language. Position is
// the byte offset of the trigger in the source text; Context carries
// roughly 50 characters of surrounding text on each side.
type Instance struct {
	Text                string        `json:"text"`
	AmbiguityType       AmbiguityType `json:"ambiguity_type"`
	TriggerPhrase       string        `json:"trigger_phrase"`
	Position            int           `json:"position"`
	Severity            float64       `json:"severity"`
	Confidence          float64       `json:"confidence"`
	Context             string        `json:"context,omitempty"`
	InterpretationRange []string      `json:"interpretation_range,omitempty"`
}

// ToMap renders the instance as a generic map for report templating
// and JSONB persistence.
func (i *Instance) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"text":                 i.Text,
		"ambiguity_type":       i.AmbiguityType.String(),
		"trigger_phrase":       i.TriggerPhrase,
		"position":             i.Position,
		"severity":             i.Severity,
		"confidence":           i.Confidence,
		"context":              i.Context,
		"interpretation_range": i.InterpretationRange,
	}
}

// Report summarizes an ambiguity scan over a single document. The
// score is normalized to instances per hundred words and capped at 1.
type Report struct {
	DocumentID        string                `json:"document_id"`
	Jurisdiction      string                `json:"jurisdiction,omitempty"`
	TotalInstances    int                   `json:"total_instances"`
	InstancesByType   map[AmbiguityType]int `json:"instances_by_type"`
	HighSeverityCount int                   `json:"high_severity_count"`
	AmbiguityScore    float64               `json:"ambiguity_score"`
	Instances         []Instance            `json:"instances"`
	Recommendations   []string              `json:"recommendations"`
}

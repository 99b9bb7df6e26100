// Package clause models individual regulatory clauses and their
// classification into deontic categories (obligations, prohibitions,
// permissions and so on). The extractor in this package splits
// normalized regulatory text into sentences and classifies each one.
package clause

// ClauseType classifies the deontic force of a regulatory clause.
type ClauseType string

const (
	ClauseTypeObligation  ClauseType = "obligation"
	ClauseTypeProhibition ClauseType = "prohibition"
	ClauseTypePermission  ClauseType = "permission"
	ClauseTypeCondition   ClauseType = "condition"
	ClauseTypeDefinition  ClauseType = "definition"
	ClauseTypeException   ClauseType = "exception"
	ClauseTypeUnknown     ClauseType = "unknown"
)

func (t ClauseType) String() string {
	return string(t)
}

func (t ClauseType) IsValid() bool {
	switch t {
	case ClauseTypeObligation, ClauseTypeProhibition, ClauseTypePermission,
		ClauseTypeCondition, ClauseTypeDefinition, ClauseTypeException:
		return true
	default:
		return false
	}
}

// RegulatoryClause is a single classified clause extracted from a
// regulatory document. Position is the clause's ordinal within its
// source text, starting at zero.
type RegulatoryClause struct {
	Text       string     `json:"text"`
	ClauseType ClauseType `json:"clause_type"`
	SectionID  string     `json:"section_id,omitempty"`
	Subject    string     `json:"subject,omitempty"`
	Action     string     `json:"action,omitempty"`
	Object     string     `json:"object,omitempty"`
	Conditions []string   `json:"conditions,omitempty"`
	Exceptions []string   `json:"exceptions,omitempty"`
	Confidence float64    `json:"confidence"`
	Position   int        `json:"position"`
}

// ToMap renders the clause as a generic map, suitable for report
// templating and JSONB persistence.
func (c *RegulatoryClause) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"text":        c.Text,
		"clause_type": c.ClauseType.String(),
		"section_id":  c.SectionID,
		"subject":     c.Subject,
		"action":      c.Action,
		"object":      c.Object,
		"conditions":  c.Conditions,
		"exceptions":  c.Exceptions,
		"confidence":  c.Confidence,
		"position":    c.Position,
	}
}

// Package definition extracts defined terms from regulatory text,
// detects conflicting definitions of the same term, and builds term
// glossaries for cross-document comparison.
package definition

// Definition is a defined term extracted from a regulatory document.
// Position is the byte offset of the defining passage in the source
// text, used for stable ordering.
type Definition struct {
	Term            string   `json:"term"`
	DefinitionText  string   `json:"definition_text"`
	SourceDocument  string   `json:"source_document,omitempty"`
	SectionID       string   `json:"section_id,omitempty"`
	Jurisdiction    string   `json:"jurisdiction,omitempty"`
	Position        int      `json:"position"`
	Confidence      float64  `json:"confidence"`
	CrossReferences []string `json:"cross_references,omitempty"`
}

// ToMap renders the definition as a generic map for report templating
// and JSONB persistence.
func (d *Definition) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"term":             d.Term,
		"definition_text":  d.DefinitionText,
		"source_document":  d.SourceDocument,
		"section_id":       d.SectionID,
		"jurisdiction":     d.Jurisdiction,
		"position":         d.Position,
		"confidence":       d.Confidence,
		"cross_references": d.CrossReferences,
	}
}

// ConflictType classifies how two definitions of the same term disagree.
type ConflictType string

const (
	// ConflictScopeDifference marks definitions whose lengths differ so
	// much that one plainly covers broader ground.
	ConflictScopeDifference ConflictType = "scope_difference"
	// ConflictJurisdictional marks definitions originating from different
	// jurisdictions.
	ConflictJurisdictional ConflictType = "jurisdictional"
	// ConflictSemantic marks same-scope, same-jurisdiction definitions
	// with differing wording.
	ConflictSemantic ConflictType = "semantic"
)

// Conflict records a term that carries more than one materially
// different definition.
type Conflict struct {
	Term          string       `json:"term"`
	Definitions   []Definition `json:"definitions"`
	Jurisdictions []string     `json:"jurisdictions"`
	ConflictType  ConflictType `json:"conflict_type"`
}

// GlossaryVariant is an alternative definition of a glossary term.
type GlossaryVariant struct {
	Definition   string `json:"definition"`
	Source       string `json:"source,omitempty"`
	Jurisdiction string `json:"jurisdiction,omitempty"`
}

// GlossaryEntry aggregates every definition seen for a term. The first
// extracted definition becomes the primary one; later differing texts
// are kept as variants.
type GlossaryEntry struct {
	PrimaryDefinition string            `json:"primary_definition"`
	Variants          []GlossaryVariant `json:"variants"`
	Sources           []string          `json:"sources"`
	Jurisdictions     []string          `json:"jurisdictions"`
	CrossReferences   []string          `json:"cross_references"`
}

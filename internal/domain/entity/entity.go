// Package entity recognizes regulatory constructs in text: regulated
// entities, regulatory bodies, legal references, monetary thresholds
// and time periods.
package entity

// EntityType classifies a recognized regulatory construct.
type EntityType string

const (
	TypeRegulatedEntity     EntityType = "regulated_entity"
	TypeRegulatoryBody      EntityType = "regulatory_body"
	TypeLegalReference      EntityType = "legal_reference"
	TypeMonetaryThreshold   EntityType = "monetary_threshold"
	TypeTimePeriod          EntityType = "time_period"
	TypeJurisdiction        EntityType = "jurisdiction"
	TypeFinancialInstrument EntityType = "financial_instrument"
	TypeActivity            EntityType = "activity"
)

func (t EntityType) String() string {
	return string(t)
}

// AllEntityTypes lists every recognized entity type, in declaration
// order, for building count maps.
var AllEntityTypes = []EntityType{
	TypeRegulatedEntity,
	TypeRegulatoryBody,
	TypeLegalReference,
	TypeMonetaryThreshold,
	TypeTimePeriod,
	TypeJurisdiction,
	TypeFinancialInstrument,
	TypeActivity,
}

// RegulatoryEntity is a recognized construct with its byte span in the
// source text. NormalizedForm carries the canonical spelling when one
// exists (regulatory body abbreviations), otherwise the matched text.
type RegulatoryEntity struct {
	Text           string            `json:"text"`
	EntityType     EntityType        `json:"entity_type"`
	NormalizedForm string            `json:"normalized_form"`
	StartPos       int               `json:"start_pos"`
	EndPos         int               `json:"end_pos"`
	Confidence     float64           `json:"confidence"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

package comparison

import (
	"fmt"
	"strings"

	"github.com/turtacn/RegGap-Intelligence/internal/domain/clause"
	"github.com/turtacn/RegGap-Intelligence/internal/domain/definition"
	"github.com/turtacn/RegGap-Intelligence/pkg/errors"
)

// GapType classifies a regulatory gap between two jurisdictions.
type GapType string

const (
	GapCoverage             GapType = "coverage_gap"
	GapStricterInA          GapType = "stricter_in_a"
	GapStricterInB          GapType = "stricter_in_b"
	GapDefinitionalConflict GapType = "definitional_conflict"
	GapThresholdDifference  GapType = "threshold_difference"
	GapTimingDifference     GapType = "timing_difference"
	GapScopeDifference      GapType = "scope_difference"
	GapAmbiguity            GapType = "ambiguity"
)

func (t GapType) String() string {
	return string(t)
}

// JurisdictionalGap is a compliance-relevant difference between two
// jurisdictions. Recommendations flag items for review; they are never
// prescriptive compliance actions.
type JurisdictionalGap struct {
	GapType             GapType                  `json:"gap_type"`
	JurisdictionA       string                   `json:"jurisdiction_a"`
	JurisdictionB       string                   `json:"jurisdiction_b"`
	Description         string                   `json:"description"`
	ClauseA             *clause.RegulatoryClause `json:"clause_a,omitempty"`
	ClauseB             *clause.RegulatoryClause `json:"clause_b,omitempty"`
	Severity            float64                  `json:"severity"`
	Confidence          float64                  `json:"confidence"`
	Recommendations     []string                 `json:"recommendations,omitempty"`
	RequiresLegalReview bool                     `json:"requires_legal_review"`
}

// ToMap renders the gap as a generic map for report templating and
// JSONB persistence. Absent clauses are omitted.
func (g *JurisdictionalGap) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"gap_type":              g.GapType.String(),
		"jurisdiction_a":        g.JurisdictionA,
		"jurisdiction_b":        g.JurisdictionB,
		"description":           g.Description,
		"severity":              g.Severity,
		"confidence":            g.Confidence,
		"recommendations":       g.Recommendations,
		"requires_legal_review": g.RequiresLegalReview,
	}
	if g.ClauseA != nil {
		m["clause_a"] = g.ClauseA.ToMap()
	}
	if g.ClauseB != nil {
		m["clause_b"] = g.ClauseB.ToMap()
	}
	return m
}

// JurisdictionProfile aggregates a jurisdiction's extracted clauses and
// definitions with per-type clause counts.
type JurisdictionProfile struct {
	Jurisdiction     string                    `json:"jurisdiction"`
	Clauses          []clause.RegulatoryClause `json:"clauses"`
	Definitions      []definition.Definition   `json:"definitions"`
	ObligationCount  int                       `json:"obligation_count"`
	ProhibitionCount int                       `json:"prohibition_count"`
	PermissionCount  int                       `json:"permission_count"`
}

// ToMap renders the profile as a generic map for report templating and
// JSONB persistence.
func (p *JurisdictionProfile) ToMap() map[string]interface{} {
	clauses := make([]map[string]interface{}, len(p.Clauses))
	for i := range p.Clauses {
		clauses[i] = p.Clauses[i].ToMap()
	}
	definitions := make([]map[string]interface{}, len(p.Definitions))
	for i := range p.Definitions {
		definitions[i] = p.Definitions[i].ToMap()
	}
	return map[string]interface{}{
		"jurisdiction":      p.Jurisdiction,
		"clauses":           clauses,
		"definitions":       definitions,
		"obligation_count":  p.ObligationCount,
		"prohibition_count": p.ProhibitionCount,
		"permission_count":  p.PermissionCount,
	}
}

// NewJurisdictionProfile builds a profile and tallies clause types.
func NewJurisdictionProfile(jurisdiction string, clauses []clause.RegulatoryClause, definitions []definition.Definition) (*JurisdictionProfile, error) {
	if strings.TrimSpace(jurisdiction) == "" {
		return nil, errors.New(errors.ErrCodeJurisdictionEmpty, "jurisdiction name is empty")
	}
	p := &JurisdictionProfile{
		Jurisdiction: jurisdiction,
		Clauses:      clauses,
		Definitions:  definitions,
	}
	for _, c := range clauses {
		switch c.ClauseType {
		case clause.ClauseTypeObligation:
			p.ObligationCount++
		case clause.ClauseTypeProhibition:
			p.ProhibitionCount++
		case clause.ClauseTypePermission:
			p.PermissionCount++
		}
	}
	return p, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Comparator
// ─────────────────────────────────────────────────────────────────────────────

// JurisdictionalComparator derives gaps between jurisdiction profiles
// from clause differences, definitional conflicts and obligation-count
// imbalance.
type JurisdictionalComparator struct {
	semanticDiff *SemanticDiff
}

// NewJurisdictionalComparator builds a comparator. A nil differ gets the
// default SemanticDiff.
func NewJurisdictionalComparator(semanticDiff *SemanticDiff) *JurisdictionalComparator {
	if semanticDiff == nil {
		semanticDiff, _ = NewSemanticDiff()
	}
	return &JurisdictionalComparator{semanticDiff: semanticDiff}
}

// Compare returns the gaps between two jurisdiction profiles: clause
// gaps first (in difference order, equivalents dropped), definitional
// conflicts next, then a burden gap when one side carries over 1.5x the
// other's obligations.
func (jc *JurisdictionalComparator) Compare(profileA, profileB *JurisdictionProfile) ([]JurisdictionalGap, error) {
	clauseDiffs, err := jc.semanticDiff.CompareClauses(
		profileA.Clauses, profileB.Clauses,
		profileA.Jurisdiction, profileB.Jurisdiction,
	)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeComparisonFailed, "clause comparison failed")
	}

	var gaps []JurisdictionalGap
	for _, diff := range clauseDiffs {
		if gap := diffToGap(diff, profileA.Jurisdiction, profileB.Jurisdiction); gap != nil {
			gaps = append(gaps, *gap)
		}
	}

	gaps = append(gaps, compareDefinitions(
		profileA.Definitions, profileB.Definitions,
		profileA.Jurisdiction, profileB.Jurisdiction,
	)...)
	gaps = append(gaps, analyzeRegulatoryBurden(profileA, profileB)...)
	return gaps, nil
}

var diffGapTypes = map[DifferenceType]GapType{
	DiffStricter:    GapStricterInA,
	DiffLooser:      GapStricterInB,
	DiffAmbiguous:   GapAmbiguity,
	DiffConflicting: GapScopeDifference,
	DiffNovel:       GapCoverage,
}

// diffToGap maps a classified clause difference onto a gap. Equivalent
// clauses produce no gap.
func diffToGap(diff ClauseDifference, jurisdictionA, jurisdictionB string) *JurisdictionalGap {
	if diff.DifferenceType == DiffEquivalent {
		return nil
	}
	gapType, ok := diffGapTypes[diff.DifferenceType]
	if !ok {
		gapType = GapAmbiguity
	}

	clauseA := diff.ClauseA
	return &JurisdictionalGap{
		GapType:             gapType,
		JurisdictionA:       jurisdictionA,
		JurisdictionB:       jurisdictionB,
		Description:         diff.Analysis,
		ClauseA:             &clauseA,
		ClauseB:             diff.ClauseB,
		Severity:            gapSeverity(diff),
		Confidence:          diff.Confidence,
		Recommendations:     gapRecommendations(diff, gapType),
		RequiresLegalReview: diff.RequiresLegalReview,
	}
}

func gapRecommendations(diff ClauseDifference, gapType GapType) []string {
	var recommendations []string

	switch gapType {
	case GapCoverage:
		recommendations = append(recommendations,
			"REVIEW REQUIRED: Evaluate whether this requirement applies to your operations")
	case GapStricterInA:
		recommendations = append(recommendations,
			"LEGAL REVIEW: First jurisdiction may have stricter requirements")
	case GapStricterInB:
		recommendations = append(recommendations,
			"LEGAL REVIEW: Second jurisdiction may have stricter requirements")
	case GapAmbiguity:
		recommendations = append(recommendations,
			"HIGH PRIORITY REVIEW: Ambiguous language creates enforcement uncertainty")
	}

	if diff.RequiresLegalReview {
		recommendations = append(recommendations,
			"MANDATORY: This gap requires qualified legal review before any decision")
	}
	return recommendations
}

// gapSeverity starts at 0.5 and adds weight for prohibition/obligation
// clauses, ambiguous or conflicting differences, and classification
// uncertainty. Capped at 1.
func gapSeverity(diff ClauseDifference) float64 {
	severity := 0.5

	switch diff.ClauseA.ClauseType {
	case clause.ClauseTypeProhibition:
		severity += 0.2
	case clause.ClauseTypeObligation:
		severity += 0.15
	}

	if diff.DifferenceType == DiffAmbiguous || diff.DifferenceType == DiffConflicting {
		severity += 0.2
	}

	severity += (1 - diff.Confidence) * 0.1

	if severity > 1.0 {
		severity = 1.0
	}
	return severity
}

// compareDefinitions reports a definitional-conflict gap for every term
// both jurisdictions define with different text. Terms are matched in
// the order they appear in the first jurisdiction's definitions.
func compareDefinitions(defsA, defsB []definition.Definition, jurisdictionA, jurisdictionB string) []JurisdictionalGap {
	termsB := make(map[string]definition.Definition, len(defsB))
	for _, d := range defsB {
		termsB[strings.ToLower(d.Term)] = d
	}

	var gaps []JurisdictionalGap
	seen := make(map[string]struct{})
	for _, defA := range defsA {
		term := strings.ToLower(defA.Term)
		if _, done := seen[term]; done {
			continue
		}
		seen[term] = struct{}{}

		defB, ok := termsB[term]
		if !ok {
			continue
		}
		if strings.EqualFold(defA.DefinitionText, defB.DefinitionText) {
			continue
		}
		gaps = append(gaps, JurisdictionalGap{
			GapType:       GapDefinitionalConflict,
			JurisdictionA: jurisdictionA,
			JurisdictionB: jurisdictionB,
			Description:   fmt.Sprintf("Term '%s' has different definitions", term),
			Severity:      0.7,
			Confidence:    0.8,
			Recommendations: []string{
				fmt.Sprintf("LEGAL REVIEW: Definitional conflict for '%s'", term),
				"Determine which definition applies to your operations",
				"Consider most restrictive interpretation for compliance",
			},
			RequiresLegalReview: true,
		})
	}
	return gaps
}

// analyzeRegulatoryBurden flags a scope gap when either jurisdiction
// carries more than 1.5 times the other's obligation count.
func analyzeRegulatoryBurden(profileA, profileB *JurisdictionProfile) []JurisdictionalGap {
	heavier, lighter := profileA, profileB
	if profileB.ObligationCount > profileA.ObligationCount {
		heavier, lighter = profileB, profileA
	}
	if float64(heavier.ObligationCount) <= float64(lighter.ObligationCount)*1.5 {
		return nil
	}

	return []JurisdictionalGap{{
		GapType:       GapScopeDifference,
		JurisdictionA: profileA.Jurisdiction,
		JurisdictionB: profileB.Jurisdiction,
		Description: fmt.Sprintf("%s has significantly more obligations (%d vs %d)",
			heavier.Jurisdiction, heavier.ObligationCount, lighter.ObligationCount),
		Severity:   0.6,
		Confidence: 0.9,
		Recommendations: []string{
			"Review additional obligations for applicability",
			"Consider compliance burden in operational planning",
		},
		RequiresLegalReview: true,
	}}
}

// JurisdictionPair keys a gap-matrix entry. Pairs are ordered as the
// profiles were given.
type JurisdictionPair struct {
	A string `json:"jurisdiction_a"`
	B string `json:"jurisdiction_b"`
}

// GenerateGapMatrix compares every unordered pair of profiles. The
// matrix needs at least two profiles.
func (jc *JurisdictionalComparator) GenerateGapMatrix(profiles []*JurisdictionProfile) (map[JurisdictionPair][]JurisdictionalGap, error) {
	if len(profiles) < 2 {
		return nil, errors.New(errors.ErrCodeJurisdictionTooFew,
			fmt.Sprintf("gap matrix needs at least 2 jurisdictions, got %d", len(profiles)))
	}

	matrix := make(map[JurisdictionPair][]JurisdictionalGap)
	for i, profileA := range profiles {
		for _, profileB := range profiles[i+1:] {
			gaps, err := jc.Compare(profileA, profileB)
			if err != nil {
				return nil, err
			}
			matrix[JurisdictionPair{A: profileA.Jurisdiction, B: profileB.Jurisdiction}] = gaps
		}
	}
	return matrix, nil
}

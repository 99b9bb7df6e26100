package risk

import (
	"fmt"
	"math"
	"strings"

	"github.com/turtacn/RegGap-Intelligence/internal/comparison"
	"github.com/turtacn/RegGap-Intelligence/internal/domain/ambiguity"
	"github.com/turtacn/RegGap-Intelligence/internal/domain/clause"
)

// SeverityLevel is a 1-5 rating for a regulatory issue.
type SeverityLevel int

const (
	SeverityInformational SeverityLevel = 1
	SeverityLow           SeverityLevel = 2
	SeverityMedium        SeverityLevel = 3
	SeverityHigh          SeverityLevel = 4
	SeverityCritical      SeverityLevel = 5
)

func (l SeverityLevel) String() string {
	switch l {
	case SeverityCritical:
		return "CRITICAL"
	case SeverityHigh:
		return "HIGH"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityLow:
		return "LOW"
	case SeverityInformational:
		return "INFORMATIONAL"
	default:
		return fmt.Sprintf("SeverityLevel(%d)", int(l))
	}
}

// MarshalText makes the level render as its name in JSON.
func (l SeverityLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// SeverityRating is a severity assessment for a single regulatory issue.
type SeverityRating struct {
	Level                      SeverityLevel `json:"level"`
	Score                      float64       `json:"score"`
	Factors                    []string      `json:"factors"`
	Recommendation             string        `json:"recommendation"`
	RequiresImmediateAttention bool          `json:"requires_immediate_attention"`
	RequiresLegalReview        bool          `json:"requires_legal_review"`
}

// ToMap renders the rating as a generic map for report templating and
// JSONB persistence.
func (r *SeverityRating) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"level":                        r.Level.String(),
		"score":                        r.Score,
		"factors":                      r.Factors,
		"recommendation":               r.Recommendation,
		"requires_immediate_attention": r.RequiresImmediateAttention,
		"requires_legal_review":        r.RequiresLegalReview,
	}
}

// BatchSummary aggregates a batch assessment across gaps, ambiguities, and
// clauses.
type BatchSummary struct {
	TotalAssessed              int            `json:"total_assessed"`
	CountsByLevel              map[string]int `json:"counts_by_level"`
	CriticalCount              int            `json:"critical_count"`
	RequiresImmediateAttention int            `json:"requires_immediate_attention"`
	RequiresLegalReview        int            `json:"requires_legal_review"`
	AverageScore               float64        `json:"average_score"`
}

// gapTypeSeverity is the base severity per gap type.
var gapTypeSeverity = map[comparison.GapType]float64{
	comparison.GapCoverage:             0.7,
	comparison.GapStricterInA:          0.6,
	comparison.GapStricterInB:          0.6,
	comparison.GapDefinitionalConflict: 0.7,
	comparison.GapThresholdDifference:  0.5,
	comparison.GapTimingDifference:     0.5,
	comparison.GapScopeDifference:      0.6,
	comparison.GapAmbiguity:            0.65,
}

// clauseTypeMultiplier scales gap severity by the clause type involved.
var clauseTypeMultiplier = map[clause.ClauseType]float64{
	clause.ClauseTypeProhibition: 1.3,
	clause.ClauseTypeObligation:  1.2,
	clause.ClauseTypeCondition:   1.0,
	clause.ClauseTypePermission:  0.8,
	clause.ClauseTypeDefinition:  0.9,
	clause.ClauseTypeException:   0.9,
	clause.ClauseTypeUnknown:     1.0,
}

// clauseTypeBaseScore is the standalone compliance severity per clause type.
var clauseTypeBaseScore = map[clause.ClauseType]float64{
	clause.ClauseTypeProhibition: 0.8,
	clause.ClauseTypeObligation:  0.7,
	clause.ClauseTypeCondition:   0.4,
	clause.ClauseTypeException:   0.3,
	clause.ClauseTypePermission:  0.2,
	clause.ClauseTypeDefinition:  0.2,
	clause.ClauseTypeUnknown:     0.5,
}

const (
	// DefaultCriticalThreshold is the score at or above which an issue is
	// rated CRITICAL.
	DefaultCriticalThreshold = 0.85
	// DefaultHighThreshold is the score at or above which an issue is
	// rated HIGH.
	DefaultHighThreshold = 0.65
)

// SeverityAssessor rates gaps, ambiguities, and clauses on a consistent 1-5
// scale so compliance effort can be prioritized.
type SeverityAssessor struct {
	criticalThreshold float64
	highThreshold     float64
}

// AssessorOption configures a SeverityAssessor.
type AssessorOption func(*SeverityAssessor)

// WithCriticalThreshold overrides the CRITICAL score threshold.
func WithCriticalThreshold(t float64) AssessorOption {
	return func(a *SeverityAssessor) { a.criticalThreshold = t }
}

// WithHighThreshold overrides the HIGH score threshold.
func WithHighThreshold(t float64) AssessorOption {
	return func(a *SeverityAssessor) { a.highThreshold = t }
}

// NewSeverityAssessor builds an assessor with default thresholds.
func NewSeverityAssessor(opts ...AssessorOption) *SeverityAssessor {
	a := &SeverityAssessor{
		criticalThreshold: DefaultCriticalThreshold,
		highThreshold:     DefaultHighThreshold,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AssessGap rates a jurisdictional gap. Lower confidence widens the rating
// upward since uncertainty itself is risk.
func (a *SeverityAssessor) AssessGap(gap comparison.JurisdictionalGap) SeverityRating {
	var factors []string

	score, ok := gapTypeSeverity[gap.GapType]
	if !ok {
		score = 0.5
	}
	factors = append(factors, fmt.Sprintf("Gap type '%s' base score: %.2f", gap.GapType, score))

	if gap.ClauseA != nil {
		multiplier, ok := clauseTypeMultiplier[gap.ClauseA.ClauseType]
		if !ok {
			multiplier = 1.0
		}
		score *= multiplier
		factors = append(factors, fmt.Sprintf("Clause type multiplier: %.2f", multiplier))
	}

	if gap.Severity > 0.5 {
		score = (score + gap.Severity) / 2
		factors = append(factors, fmt.Sprintf("Combined with gap severity: %.2f", gap.Severity))
	}

	if gap.Confidence < 0.7 {
		penalty := (0.7 - gap.Confidence) * 0.2
		score += penalty
		factors = append(factors, fmt.Sprintf("Low confidence penalty: +%.2f", penalty))
	}

	score = clamp01(score)
	level := a.scoreToLevel(score)

	return SeverityRating{
		Level:                      level,
		Score:                      score,
		Factors:                    factors,
		Recommendation:             gapRecommendation(gap, level),
		RequiresImmediateAttention: level == SeverityCritical,
		RequiresLegalReview:        true,
	}
}

// AssessAmbiguity rates a single ambiguity instance.
func (a *SeverityAssessor) AssessAmbiguity(amb ambiguity.Instance) SeverityRating {
	var factors []string

	score := amb.Severity
	factors = append(factors, fmt.Sprintf("Base ambiguity severity: %.2f", score))

	if amb.Confidence > 0.8 {
		score *= 1.1
		factors = append(factors, "High confidence detection: +10%")
	} else if amb.Confidence < 0.5 {
		score *= 0.8
		factors = append(factors, "Low confidence detection: -20%")
	}

	score = clamp01(score)
	level := a.scoreToLevel(score)

	return SeverityRating{
		Level:                      level,
		Score:                      score,
		Factors:                    factors,
		Recommendation:             ambiguityRecommendation(amb, level),
		RequiresImmediateAttention: level == SeverityCritical,
		RequiresLegalReview:        level >= SeverityMedium,
	}
}

// AssessClause rates a clause for standalone compliance exposure. Conditions
// and exceptions reduce the score since a more specific rule is easier to
// avoid breaching.
func (a *SeverityAssessor) AssessClause(cl clause.RegulatoryClause) SeverityRating {
	var factors []string

	score, ok := clauseTypeBaseScore[cl.ClauseType]
	if !ok {
		score = 0.5
	}
	factors = append(factors, fmt.Sprintf("Clause type '%s': %.2f", cl.ClauseType, score))

	score *= cl.Confidence
	factors = append(factors, fmt.Sprintf("Clause confidence: %.2f", cl.Confidence))

	if len(cl.Conditions) > 0 {
		score *= 0.9
		factors = append(factors, "Has conditions: -10%")
	}
	if len(cl.Exceptions) > 0 {
		score *= 0.85
		factors = append(factors, "Has exceptions: -15%")
	}

	score = clamp01(score)
	level := a.scoreToLevel(score)

	return SeverityRating{
		Level:                      level,
		Score:                      score,
		Factors:                    factors,
		Recommendation:             clauseRecommendation(cl, level),
		RequiresImmediateAttention: level == SeverityCritical,
		RequiresLegalReview:        cl.ClauseType == clause.ClauseTypeProhibition || cl.ClauseType == clause.ClauseTypeObligation,
	}
}

// BatchAssess rates every supplied issue and returns summary counts.
func (a *SeverityAssessor) BatchAssess(
	gaps []comparison.JurisdictionalGap,
	ambiguities []ambiguity.Instance,
	clauses []clause.RegulatoryClause,
) BatchSummary {
	var ratings []SeverityRating
	for _, g := range gaps {
		ratings = append(ratings, a.AssessGap(g))
	}
	for _, amb := range ambiguities {
		ratings = append(ratings, a.AssessAmbiguity(amb))
	}
	for _, cl := range clauses {
		ratings = append(ratings, a.AssessClause(cl))
	}

	counts := map[string]int{}
	for l := SeverityInformational; l <= SeverityCritical; l++ {
		counts[l.String()] = 0
	}

	summary := BatchSummary{
		TotalAssessed: len(ratings),
		CountsByLevel: counts,
	}

	var total float64
	for _, r := range ratings {
		counts[r.Level.String()]++
		if r.RequiresImmediateAttention {
			summary.RequiresImmediateAttention++
		}
		if r.RequiresLegalReview {
			summary.RequiresLegalReview++
		}
		total += r.Score
	}
	summary.CriticalCount = counts[SeverityCritical.String()]
	if len(ratings) > 0 {
		summary.AverageScore = total / float64(len(ratings))
	}
	return summary
}

func (a *SeverityAssessor) scoreToLevel(score float64) SeverityLevel {
	switch {
	case score >= a.criticalThreshold:
		return SeverityCritical
	case score >= a.highThreshold:
		return SeverityHigh
	case score >= 0.45:
		return SeverityMedium
	case score >= 0.25:
		return SeverityLow
	default:
		return SeverityInformational
	}
}

func gapRecommendation(gap comparison.JurisdictionalGap, level SeverityLevel) string {
	switch level {
	case SeverityCritical:
		return fmt.Sprintf(
			"CRITICAL: %s between %s and %s requires immediate legal review. "+
				"Do not proceed without qualified legal counsel.",
			gap.GapType, gap.JurisdictionA, gap.JurisdictionB)
	case SeverityHigh:
		return fmt.Sprintf(
			"HIGH PRIORITY: Review %s gap with legal team. "+
				"Consider adopting more restrictive interpretation pending guidance.",
			gap.GapType)
	case SeverityMedium:
		return fmt.Sprintf(
			"Review %s gap as part of regular compliance review. "+
				"Document your interpretation and rationale.",
			gap.GapType)
	default:
		return "Monitor for changes. Include in periodic compliance assessment."
	}
}

func ambiguityRecommendation(amb ambiguity.Instance, level SeverityLevel) string {
	switch level {
	case SeverityCritical:
		return fmt.Sprintf(
			"CRITICAL AMBIGUITY: '%s' creates significant enforcement uncertainty. "+
				"Seek legal guidance before proceeding.",
			amb.TriggerPhrase)
	case SeverityHigh:
		return fmt.Sprintf(
			"HIGH PRIORITY: Ambiguous term '%s' should be reviewed. "+
				"Consider adopting conservative interpretation.",
			amb.Text)
	case SeverityMedium:
		return "Document your interpretation of ambiguous language. " +
			"Include in compliance policy documentation."
	default:
		return "Note ambiguity for awareness. No immediate action required."
	}
}

func clauseRecommendation(cl clause.RegulatoryClause, level SeverityLevel) string {
	switch level {
	case SeverityCritical:
		return fmt.Sprintf(
			"CRITICAL: %s requires rigorous compliance controls and legal verification.",
			strings.ToUpper(string(cl.ClauseType)))
	case SeverityHigh:
		return fmt.Sprintf(
			"HIGH PRIORITY: Ensure compliance with %s. Review with legal counsel.",
			cl.ClauseType)
	case SeverityMedium:
		return fmt.Sprintf(
			"Include %s in compliance procedures. Document compliance approach.",
			cl.ClauseType)
	default:
		return "Standard compliance monitoring. No elevated attention required."
	}
}

func clamp01(v float64) float64 {
	return math.Min(1.0, math.Max(0.0, v))
}

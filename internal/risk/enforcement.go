// Package risk models enforcement exposure for regulatory clauses. All
// estimates are deliberately conservative: the models assume regulators read
// ambiguous requirements in the most restrictive plausible way, so every
// figure here is a planning ceiling, not a prediction of actual outcomes.
package risk

import (
	"fmt"
	"math"
	"strings"
	"sync/atomic"

	"github.com/turtacn/RegGap-Intelligence/internal/domain/ambiguity"
	"github.com/turtacn/RegGap-Intelligence/internal/domain/clause"
)

// EnforcementLikelihood is a quantized probability band for enforcement action.
type EnforcementLikelihood string

const (
	LikelihoodVeryLow  EnforcementLikelihood = "VERY_LOW"
	LikelihoodLow      EnforcementLikelihood = "LOW"
	LikelihoodModerate EnforcementLikelihood = "MODERATE"
	LikelihoodHigh     EnforcementLikelihood = "HIGH"
	LikelihoodVeryHigh EnforcementLikelihood = "VERY_HIGH"
)

// likelihoodValues maps each band to its representative probability.
var likelihoodValues = map[EnforcementLikelihood]float64{
	LikelihoodVeryLow:  0.1,
	LikelihoodLow:      0.25,
	LikelihoodModerate: 0.5,
	LikelihoodHigh:     0.75,
	LikelihoodVeryHigh: 0.9,
}

// Value returns the representative probability for the band, or 0 for an
// unknown band.
func (l EnforcementLikelihood) Value() float64 {
	return likelihoodValues[l]
}

func (l EnforcementLikelihood) String() string {
	return string(l)
}

// EnforcementOutcome is a possible regulatory enforcement action.
type EnforcementOutcome string

const (
	OutcomeWarning           EnforcementOutcome = "warning"
	OutcomeFine              EnforcementOutcome = "fine"
	OutcomeCeaseAndDesist    EnforcementOutcome = "cease_and_desist"
	OutcomeLicenseSuspension EnforcementOutcome = "license_suspension"
	OutcomeLicenseRevocation EnforcementOutcome = "license_revocation"
	OutcomeCriminalReferral  EnforcementOutcome = "criminal_referral"
	OutcomeRestitution       EnforcementOutcome = "restitution"
	OutcomeInjunction        EnforcementOutcome = "injunction"
)

func (o EnforcementOutcome) String() string {
	return string(o)
}

// EnforcementScenario is a modeled worst-case enforcement outcome for a
// single clause.
type EnforcementScenario struct {
	ScenarioID          string                   `json:"scenario_id"`
	Description         string                   `json:"description"`
	Interpretation      string                   `json:"interpretation"`
	Likelihood          EnforcementLikelihood    `json:"likelihood"`
	PotentialOutcomes   []EnforcementOutcome     `json:"potential_outcomes"`
	SeverityScore       float64                  `json:"severity_score"`
	Clause              *clause.RegulatoryClause `json:"clause,omitempty"`
	Ambiguities         []ambiguity.Instance     `json:"ambiguities,omitempty"`
	MitigatingFactors   []string                 `json:"mitigating_factors,omitempty"`
	AggravatingFactors  []string                 `json:"aggravating_factors,omitempty"`
	RequiresLegalReview bool                     `json:"requires_legal_review"`
}

// ToMap renders the scenario as a generic map for report templating
// and JSONB persistence.
func (s *EnforcementScenario) ToMap() map[string]interface{} {
	outcomes := make([]string, len(s.PotentialOutcomes))
	for i, o := range s.PotentialOutcomes {
		outcomes[i] = o.String()
	}
	ambiguities := make([]map[string]interface{}, len(s.Ambiguities))
	for i := range s.Ambiguities {
		ambiguities[i] = s.Ambiguities[i].ToMap()
	}
	m := map[string]interface{}{
		"scenario_id":           s.ScenarioID,
		"description":           s.Description,
		"interpretation":        s.Interpretation,
		"likelihood":            s.Likelihood.String(),
		"potential_outcomes":    outcomes,
		"severity_score":        s.SeverityScore,
		"ambiguities":           ambiguities,
		"mitigating_factors":    s.MitigatingFactors,
		"aggravating_factors":   s.AggravatingFactors,
		"requires_legal_review": s.RequiresLegalReview,
	}
	if s.Clause != nil {
		m["clause"] = s.Clause.ToMap()
	}
	return m
}

// ScenarioReport summarizes a batch of modeled scenarios.
type ScenarioReport struct {
	TotalScenarios    int     `json:"total_scenarios"`
	HighRiskCount     int     `json:"high_risk_count"`
	ModerateRiskCount int     `json:"moderate_risk_count"`
	LowRiskCount      int     `json:"low_risk_count"`
	AverageSeverity   float64 `json:"average_severity"`
	MaxSeverity       float64 `json:"max_severity"`
	AllRequireReview  bool    `json:"all_require_review"`
	Message           string  `json:"message,omitempty"`
	Disclaimer        string  `json:"disclaimer,omitempty"`
}

// clauseTypeLikelihood maps clause types to their base enforcement band.
var clauseTypeLikelihood = map[clause.ClauseType]EnforcementLikelihood{
	clause.ClauseTypeProhibition: LikelihoodHigh,
	clause.ClauseTypeObligation:  LikelihoodModerate,
	clause.ClauseTypeCondition:   LikelihoodLow,
	clause.ClauseTypePermission:  LikelihoodVeryLow,
	clause.ClauseTypeDefinition:  LikelihoodVeryLow,
	clause.ClauseTypeException:   LikelihoodLow,
}

// ambiguityImpact is the per-instance likelihood uplift by ambiguity type.
var ambiguityImpact = map[ambiguity.AmbiguityType]float64{
	ambiguity.TypeVagueStandard:      0.1,
	ambiguity.TypeUndefinedTerm:      0.15,
	ambiguity.TypeScopeUnclear:       0.1,
	ambiguity.TypeTimingUnclear:      0.15,
	ambiguity.TypeThresholdUnclear:   0.2,
	ambiguity.TypeConflictingClauses: 0.25,
	ambiguity.TypeCircularDefinition: 0.1,
	ambiguity.TypeReferenceAmbiguity: 0.1,
}

// outcomeSeverity scores each outcome on a 0-1 scale.
var outcomeSeverity = map[EnforcementOutcome]float64{
	OutcomeWarning:           0.1,
	OutcomeFine:              0.4,
	OutcomeCeaseAndDesist:    0.6,
	OutcomeLicenseSuspension: 0.8,
	OutcomeLicenseRevocation: 0.95,
	OutcomeCriminalReferral:  1.0,
	OutcomeRestitution:       0.5,
	OutcomeInjunction:        0.7,
}

const scenarioDisclaimer = "This analysis uses conservative modeling for planning purposes. " +
	"Actual enforcement outcomes depend on many factors not captured here. " +
	"Consult qualified legal counsel before making compliance decisions."

// DefaultConservativeFactor is the default risk multiplier applied to
// likelihood and severity estimates.
const DefaultConservativeFactor = 1.2

// EnforcementModel walks clauses through a worst-case interpretation and
// produces EnforcementScenario values. Safe for concurrent use.
type EnforcementModel struct {
	conservativeFactor float64
	scenarioCounter    atomic.Uint64
}

// EnforcementOption configures an EnforcementModel.
type EnforcementOption func(*EnforcementModel)

// WithConservativeFactor sets the risk multiplier. Values below 1.0 are
// raised to 1.0 so the model never becomes optimistic.
func WithConservativeFactor(factor float64) EnforcementOption {
	return func(m *EnforcementModel) {
		m.conservativeFactor = math.Max(1.0, factor)
	}
}

// NewEnforcementModel builds a model with the default conservative factor.
func NewEnforcementModel(opts ...EnforcementOption) *EnforcementModel {
	m := &EnforcementModel{conservativeFactor: DefaultConservativeFactor}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ConservativeFactor reports the effective risk multiplier.
func (m *EnforcementModel) ConservativeFactor() float64 {
	return m.conservativeFactor
}

// ModelClauseRisk builds the worst-case enforcement scenario for a clause
// together with its detected ambiguities.
func (m *EnforcementModel) ModelClauseRisk(cl clause.RegulatoryClause, ambiguities []ambiguity.Instance) EnforcementScenario {
	id := fmt.Sprintf("ENF-%04d", m.scenarioCounter.Add(1))

	base, ok := clauseTypeLikelihood[cl.ClauseType]
	if !ok {
		base = LikelihoodModerate
	}

	likelihood := m.adjustLikelihood(base, ambiguities)
	outcomes := determineOutcomes(cl, likelihood)
	severity := m.calculateSeverity(ambiguities, outcomes)

	return EnforcementScenario{
		ScenarioID:          id,
		Description:         fmt.Sprintf("Enforcement scenario for %s clause", cl.ClauseType),
		Interpretation:      maxInterpretation(cl, ambiguities),
		Likelihood:          likelihood,
		PotentialOutcomes:   outcomes,
		SeverityScore:       severity,
		Clause:              &cl,
		Ambiguities:         ambiguities,
		MitigatingFactors:   mitigatingFactors(cl),
		AggravatingFactors:  aggravatingFactors(cl, ambiguities),
		RequiresLegalReview: true,
	}
}

// adjustLikelihood raises the base band for each ambiguity, applies the
// conservative factor, and requantizes into a band.
func (m *EnforcementModel) adjustLikelihood(base EnforcementLikelihood, ambiguities []ambiguity.Instance) EnforcementLikelihood {
	score := base.Value()
	for _, amb := range ambiguities {
		impact, ok := ambiguityImpact[amb.AmbiguityType]
		if !ok {
			impact = 0.1
		}
		score += impact * amb.Severity
	}
	score *= m.conservativeFactor
	score = math.Min(0.95, math.Max(0.05, score))

	switch {
	case score >= 0.8:
		return LikelihoodVeryHigh
	case score >= 0.6:
		return LikelihoodHigh
	case score >= 0.4:
		return LikelihoodModerate
	case score >= 0.2:
		return LikelihoodLow
	default:
		return LikelihoodVeryLow
	}
}

func determineOutcomes(cl clause.RegulatoryClause, likelihood EnforcementLikelihood) []EnforcementOutcome {
	switch cl.ClauseType {
	case clause.ClauseTypeProhibition:
		outcomes := []EnforcementOutcome{OutcomeCeaseAndDesist, OutcomeFine}
		if likelihood.Value() >= 0.7 {
			outcomes = append(outcomes, OutcomeLicenseSuspension)
		}
		return outcomes
	case clause.ClauseTypeObligation:
		outcomes := []EnforcementOutcome{OutcomeWarning}
		if likelihood.Value() >= 0.5 {
			outcomes = append(outcomes, OutcomeFine)
		}
		if likelihood.Value() >= 0.75 {
			outcomes = append(outcomes, OutcomeCeaseAndDesist)
		}
		return outcomes
	default:
		return []EnforcementOutcome{OutcomeWarning}
	}
}

func (m *EnforcementModel) calculateSeverity(ambiguities []ambiguity.Instance, outcomes []EnforcementOutcome) float64 {
	maxOutcome := 0.3
	if len(outcomes) > 0 {
		maxOutcome = 0.0
		for _, o := range outcomes {
			s, ok := outcomeSeverity[o]
			if !ok {
				s = 0.5
			}
			if s > maxOutcome {
				maxOutcome = s
			}
		}
	}

	ambiguityFactor := math.Min(0.3, float64(len(ambiguities))*0.05)
	return math.Min(1.0, (maxOutcome+ambiguityFactor)*m.conservativeFactor)
}

// maxInterpretation describes how a regulator reading the clause as harshly
// as plausible would apply it. Only the three leading ambiguities are called
// out to keep the text readable.
func maxInterpretation(cl clause.RegulatoryClause, ambiguities []ambiguity.Instance) string {
	parts := []string{"MAXIMUM INTERPRETATION: "}

	switch cl.ClauseType {
	case clause.ClauseTypeProhibition:
		parts = append(parts, "This prohibition would be interpreted to cover the broadest possible scope. ")
	case clause.ClauseTypeObligation:
		parts = append(parts, "This obligation would be interpreted with the strictest compliance standards. ")
	}

	limit := len(ambiguities)
	if limit > 3 {
		limit = 3
	}
	for _, amb := range ambiguities[:limit] {
		switch amb.AmbiguityType {
		case ambiguity.TypeVagueStandard:
			parts = append(parts, fmt.Sprintf("'%s' would be interpreted against the regulated entity. ", amb.Text))
		case ambiguity.TypeTimingUnclear:
			parts = append(parts, "Timing requirements would be interpreted as requiring immediate action. ")
		case ambiguity.TypeThresholdUnclear:
			parts = append(parts, "Thresholds would be set at the most stringent reasonable level. ")
		}
	}

	parts = append(parts, "This represents a conservative planning scenario, not a prediction.")
	return strings.Join(parts, "")
}

func mitigatingFactors(cl clause.RegulatoryClause) []string {
	var factors []string
	if len(cl.Conditions) > 0 {
		factors = append(factors, "Clause contains explicit conditions that may limit applicability")
	}
	if len(cl.Exceptions) > 0 {
		factors = append(factors, "Clause contains exceptions that may provide safe harbors")
	}
	if cl.ClauseType == clause.ClauseTypePermission {
		factors = append(factors, "Clause is permissive rather than mandatory")
	}
	return factors
}

func aggravatingFactors(cl clause.RegulatoryClause, ambiguities []ambiguity.Instance) []string {
	var factors []string
	if cl.ClauseType == clause.ClauseTypeProhibition {
		factors = append(factors, "Prohibition clauses typically face stricter enforcement")
	}

	highSeverity := 0
	for _, amb := range ambiguities {
		if amb.Severity >= 0.7 {
			highSeverity++
		}
	}
	if highSeverity > 0 {
		factors = append(factors, fmt.Sprintf("%d high-severity ambiguities increase interpretation risk", highSeverity))
	}

	if len(cl.Conditions) == 0 && len(cl.Exceptions) == 0 {
		factors = append(factors, "No explicit conditions or exceptions limits flexibility")
	}
	return factors
}

// GenerateScenarioReport summarizes scenarios by risk band with aggregate
// severity statistics.
func (m *EnforcementModel) GenerateScenarioReport(scenarios []EnforcementScenario) ScenarioReport {
	if len(scenarios) == 0 {
		return ScenarioReport{Message: "No enforcement scenarios modeled"}
	}

	report := ScenarioReport{
		TotalScenarios:   len(scenarios),
		AllRequireReview: true,
		Disclaimer:       scenarioDisclaimer,
	}

	var total float64
	for _, s := range scenarios {
		v := s.Likelihood.Value()
		switch {
		case v >= 0.7:
			report.HighRiskCount++
		case v >= 0.4:
			report.ModerateRiskCount++
		default:
			report.LowRiskCount++
		}
		total += s.SeverityScore
		if s.SeverityScore > report.MaxSeverity {
			report.MaxSeverity = s.SeverityScore
		}
		if !s.RequiresLegalReview {
			report.AllRequireReview = false
		}
	}
	report.AverageSeverity = math.Round(total/float64(len(scenarios))*1000) / 1000
	return report
}

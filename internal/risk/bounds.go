package risk

import (
	"fmt"
	"math"

	"github.com/turtacn/RegGap-Intelligence/pkg/errors"
)

// AssessmentType names a stage of the pipeline whose output is being bounded.
// Each stage carries its own base uncertainty.
type AssessmentType string

const (
	AssessmentClauseExtraction    AssessmentType = "clause_extraction"
	AssessmentAmbiguityDetection  AssessmentType = "ambiguity_detection"
	AssessmentSemanticComparison  AssessmentType = "semantic_comparison"
	AssessmentEnforcementModeling AssessmentType = "enforcement_modeling"
	AssessmentJurisdictionalGap   AssessmentType = "jurisdictional_gap"
)

// baseUncertainty maps assessment types to their baseline interval width
// contribution. Unknown types fall back to 0.25.
var baseUncertainty = map[AssessmentType]float64{
	AssessmentClauseExtraction:    0.15,
	AssessmentAmbiguityDetection:  0.20,
	AssessmentSemanticComparison:  0.25,
	AssessmentEnforcementModeling: 0.30,
	AssessmentJurisdictionalGap:   0.20,
}

// RiskInterval is a risk estimate with confidence bounds. Construct through
// NewRiskInterval so the ordering invariant holds.
type RiskInterval struct {
	PointEstimate   float64 `json:"point_estimate"`
	LowerBound      float64 `json:"lower_bound"`
	UpperBound      float64 `json:"upper_bound"`
	ConfidenceLevel float64 `json:"confidence_level"`
}

// ToMap renders the interval as a generic map for report templating
// and JSONB persistence.
func (r RiskInterval) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"point_estimate":   r.PointEstimate,
		"lower_bound":      r.LowerBound,
		"upper_bound":      r.UpperBound,
		"confidence_level": r.ConfidenceLevel,
	}
}

// NewRiskInterval validates that 0 <= lower <= point <= upper <= 1 and that
// the confidence level is strictly between 0 and 1.
func NewRiskInterval(point, lower, upper, confidenceLevel float64) (RiskInterval, error) {
	if !(0 <= lower && lower <= point && point <= upper && upper <= 1) {
		return RiskInterval{}, errors.New(errors.ErrCodeRiskIntervalInvalid,
			fmt.Sprintf("bounds must satisfy 0 <= lower (%.4f) <= point (%.4f) <= upper (%.4f) <= 1", lower, point, upper))
	}
	if confidenceLevel <= 0 || confidenceLevel >= 1 {
		return RiskInterval{}, errors.New(errors.ErrCodeConfidenceLevelInvalid,
			fmt.Sprintf("confidence level must be strictly between 0 and 1, got %.4f", confidenceLevel))
	}
	return RiskInterval{
		PointEstimate:   point,
		LowerBound:      lower,
		UpperBound:      upper,
		ConfidenceLevel: confidenceLevel,
	}, nil
}

// Width is the spread between the lower and upper bound.
func (r RiskInterval) Width() float64 {
	return r.UpperBound - r.LowerBound
}

// IsWide reports whether the interval signals high uncertainty.
func (r RiskInterval) IsWide() bool {
	return r.Width() > 0.3
}

// ConservativeEstimate is the worst-case figure to use for planning.
func (r RiskInterval) ConservativeEstimate() float64 {
	return r.UpperBound
}

// IntervalInterpretation is a plain-language reading of a RiskInterval.
type IntervalInterpretation struct {
	Summary          string   `json:"summary"`
	UncertaintyLevel string   `json:"uncertainty_level"`
	PlanningGuidance string   `json:"planning_guidance"`
	Caveats          []string `json:"caveats"`
}

// AggregationMethod selects how multiple intervals are combined.
type AggregationMethod string

const (
	AggregateConservative AggregationMethod = "conservative"
	AggregateAverage      AggregationMethod = "average"
	AggregateMax          AggregationMethod = "max"
)

// SensitivityResult captures how the interval responds to one input
// confidence value.
type SensitivityResult struct {
	SampleConfidence float64      `json:"sample_confidence"`
	Interval         RiskInterval `json:"interval"`
	PlanningEstimate float64      `json:"planning_estimate"`
}

const (
	// DefaultConfidenceLevel is the default interval confidence.
	DefaultConfidenceLevel = 0.95
	// DefaultConservativeBias shifts interval width toward the upper bound.
	DefaultConservativeBias = 0.1
)

// ConfidenceBounds calculates confidence intervals for risk estimates. The
// methodology widens intervals for uncertain inputs and skews toward
// worst-case outcomes.
type ConfidenceBounds struct {
	confidenceLevel  float64
	conservativeBias float64
}

// BoundsOption configures a ConfidenceBounds calculator.
type BoundsOption func(*ConfidenceBounds)

// WithConfidenceLevel sets the interval confidence (e.g. 0.95).
func WithConfidenceLevel(level float64) BoundsOption {
	return func(b *ConfidenceBounds) { b.confidenceLevel = level }
}

// WithConservativeBias sets how far the interval is skewed upward.
func WithConservativeBias(bias float64) BoundsOption {
	return func(b *ConfidenceBounds) { b.conservativeBias = bias }
}

// NewConfidenceBounds builds a calculator with the default 95% level and a
// 10% upward bias.
func NewConfidenceBounds(opts ...BoundsOption) *ConfidenceBounds {
	b := &ConfidenceBounds{
		confidenceLevel:  DefaultConfidenceLevel,
		conservativeBias: DefaultConservativeBias,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// CalculateBounds produces a RiskInterval around a point estimate. Lower
// sample confidence widens the interval; more observations narrow it with
// sqrt scaling.
func (b *ConfidenceBounds) CalculateBounds(
	pointEstimate float64,
	assessmentType AssessmentType,
	sampleConfidence float64,
	nObservations int,
) (RiskInterval, error) {
	uncertainty, ok := baseUncertainty[assessmentType]
	if !ok {
		uncertainty = 0.25
	}

	confidenceFactor := 1 + (1-sampleConfidence)*0.5
	uncertainty *= confidenceFactor

	if nObservations > 1 {
		uncertainty /= math.Sqrt(float64(nObservations))
	}

	halfWidth := approximateZScore(b.confidenceLevel) * uncertainty

	lower := math.Max(0, pointEstimate-halfWidth*(1-b.conservativeBias))
	upper := math.Min(1, pointEstimate+halfWidth*(1+b.conservativeBias))
	point := math.Max(lower, math.Min(upper, pointEstimate))

	return NewRiskInterval(round4(point), round4(lower), round4(upper), b.confidenceLevel)
}

// approximateZScore returns the normal z-score for a confidence level using
// the standard values for 0.90/0.95/0.99 and linear interpolation elsewhere.
func approximateZScore(confidence float64) float64 {
	switch confidence {
	case 0.90:
		return 1.645
	case 0.95:
		return 1.96
	case 0.99:
		return 2.576
	}
	switch {
	case confidence < 0.90:
		return 1.645 * (confidence / 0.90)
	case confidence < 0.95:
		return 1.645 + (1.96-1.645)*((confidence-0.90)/0.05)
	default:
		return 1.96 + (2.576-1.96)*((confidence-0.95)/0.04)
	}
}

// AggregateIntervals combines intervals using the chosen method. An empty
// input yields the uninformative prior interval.
func (b *ConfidenceBounds) AggregateIntervals(intervals []RiskInterval, method AggregationMethod) (RiskInterval, error) {
	if len(intervals) == 0 {
		return NewRiskInterval(0.5, 0.25, 0.75, b.confidenceLevel)
	}

	var point, lower, upper float64
	n := float64(len(intervals))

	switch method {
	case AggregateConservative:
		lower = intervals[0].LowerBound
		upper = intervals[0].UpperBound
		for _, i := range intervals {
			point += i.PointEstimate
			lower = math.Min(lower, i.LowerBound)
			upper = math.Max(upper, i.UpperBound)
		}
		point /= n

	case AggregateAverage:
		for _, i := range intervals {
			point += i.PointEstimate
			lower += i.LowerBound
			upper += i.UpperBound
		}
		point /= n
		lower /= n
		upper /= n

	case AggregateMax:
		for _, i := range intervals {
			point = math.Max(point, i.PointEstimate)
			lower = math.Max(lower, i.LowerBound)
			upper = math.Max(upper, i.UpperBound)
		}

	default:
		return RiskInterval{}, errors.New(errors.ErrCodeRiskIntervalInvalid,
			fmt.Sprintf("unknown aggregation method: %s", method))
	}

	point = math.Max(lower, math.Min(upper, point))
	return NewRiskInterval(round4(point), round4(lower), round4(upper), b.confidenceLevel)
}

// InterpretInterval renders an interval as planning guidance with caveats.
func (b *ConfidenceBounds) InterpretInterval(interval RiskInterval) IntervalInterpretation {
	out := IntervalInterpretation{}

	switch {
	case interval.PointEstimate >= 0.7:
		out.Summary = "High risk"
	case interval.PointEstimate >= 0.4:
		out.Summary = "Moderate risk"
	default:
		out.Summary = "Lower risk"
	}

	width := interval.Width()
	switch {
	case width >= 0.4:
		out.UncertaintyLevel = "Very high uncertainty"
		out.Caveats = append(out.Caveats,
			"Wide confidence interval indicates significant uncertainty in this estimate")
	case width >= 0.25:
		out.UncertaintyLevel = "High uncertainty"
	case width >= 0.15:
		out.UncertaintyLevel = "Moderate uncertainty"
	default:
		out.UncertaintyLevel = "Lower uncertainty"
	}

	out.PlanningGuidance = fmt.Sprintf(
		"For planning purposes, use the conservative estimate of %.1f%% risk. "+
			"This represents the upper bound of the %.0f%% confidence interval.",
		interval.UpperBound*100, interval.ConfidenceLevel*100)

	out.Caveats = append(out.Caveats,
		"This is a statistical estimate, not a prediction of actual outcomes",
		"Actual regulatory outcomes depend on many factors not captured in this model",
		"Consult qualified legal counsel for compliance decisions",
	)
	return out
}

// SensitivityAnalysis shows how the interval responds across a range of
// sample confidence values (low, midpoint, high).
func (b *ConfidenceBounds) SensitivityAnalysis(
	baseEstimate float64,
	assessmentType AssessmentType,
	confidenceLow, confidenceHigh float64,
) ([]SensitivityResult, error) {
	values := []float64{
		confidenceLow,
		(confidenceLow + confidenceHigh) / 2,
		confidenceHigh,
	}

	results := make([]SensitivityResult, 0, len(values))
	for _, conf := range values {
		interval, err := b.CalculateBounds(baseEstimate, assessmentType, conf, 1)
		if err != nil {
			return nil, err
		}
		results = append(results, SensitivityResult{
			SampleConfidence: conf,
			Interval:         interval,
			PlanningEstimate: interval.ConservativeEstimate(),
		})
	}
	return results, nil
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/RegGap-Intelligence/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// RiskInterval
// ─────────────────────────────────────────────────────────────────────────────

func TestNewRiskInterval_Valid(t *testing.T) {
	t.Parallel()

	interval, err := NewRiskInterval(0.5, 0.3, 0.8, 0.95)
	require.NoError(t, err)

	assert.InDelta(t, 0.5, interval.Width(), 1e-9)
	assert.True(t, interval.IsWide())
	assert.Equal(t, 0.8, interval.ConservativeEstimate())
}

func TestNewRiskInterval_RejectsMisorderedBounds(t *testing.T) {
	t.Parallel()

	_, err := NewRiskInterval(0.2, 0.5, 0.8, 0.95)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeRiskIntervalInvalid))

	_, err = NewRiskInterval(0.5, 0.3, 1.2, 0.95)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeRiskIntervalInvalid))
}

func TestNewRiskInterval_RejectsInvalidConfidenceLevel(t *testing.T) {
	t.Parallel()

	_, err := NewRiskInterval(0.5, 0.3, 0.8, 1.0)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeConfidenceLevelInvalid))
}

func TestRiskInterval_NarrowIsNotWide(t *testing.T) {
	t.Parallel()

	interval, err := NewRiskInterval(0.5, 0.4, 0.6, 0.95)
	require.NoError(t, err)
	assert.False(t, interval.IsWide())
}

// ─────────────────────────────────────────────────────────────────────────────
// CalculateBounds
// ─────────────────────────────────────────────────────────────────────────────

func TestCalculateBounds_FullSampleConfidence(t *testing.T) {
	t.Parallel()

	bounds := NewConfidenceBounds()
	interval, err := bounds.CalculateBounds(0.5, AssessmentClauseExtraction, 1.0, 1)
	require.NoError(t, err)

	// half-width 1.96 * 0.15 = 0.294, biased 10% toward the upper bound.
	assert.InDelta(t, 0.5, interval.PointEstimate, 1e-9)
	assert.InDelta(t, 0.2354, interval.LowerBound, 1e-9)
	assert.InDelta(t, 0.8234, interval.UpperBound, 1e-9)
	assert.Equal(t, 0.95, interval.ConfidenceLevel)
}

func TestCalculateBounds_LowerSampleConfidenceWidensInterval(t *testing.T) {
	t.Parallel()

	bounds := NewConfidenceBounds()
	confident, err := bounds.CalculateBounds(0.5, AssessmentClauseExtraction, 1.0, 1)
	require.NoError(t, err)
	uncertain, err := bounds.CalculateBounds(0.5, AssessmentClauseExtraction, 0.3, 1)
	require.NoError(t, err)

	assert.Greater(t, uncertain.Width(), confident.Width())
}

func TestCalculateBounds_ObservationsNarrowInterval(t *testing.T) {
	t.Parallel()

	bounds := NewConfidenceBounds()
	single, err := bounds.CalculateBounds(0.5, AssessmentEnforcementModeling, 0.5, 1)
	require.NoError(t, err)
	many, err := bounds.CalculateBounds(0.5, AssessmentEnforcementModeling, 0.5, 9)
	require.NoError(t, err)

	assert.Less(t, many.Width(), single.Width())
}

func TestCalculateBounds_ClampsToUnitRange(t *testing.T) {
	t.Parallel()

	bounds := NewConfidenceBounds()
	interval, err := bounds.CalculateBounds(0.95, AssessmentEnforcementModeling, 0.2, 1)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, interval.LowerBound, 0.0)
	assert.LessOrEqual(t, interval.UpperBound, 1.0)
}

func TestApproximateZScore(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 1.645, approximateZScore(0.90), 1e-9)
	assert.InDelta(t, 1.96, approximateZScore(0.95), 1e-9)
	assert.InDelta(t, 2.576, approximateZScore(0.99), 1e-9)

	// Interpolated values land between their neighbors.
	z := approximateZScore(0.925)
	assert.Greater(t, z, 1.645)
	assert.Less(t, z, 1.96)
}

// ─────────────────────────────────────────────────────────────────────────────
// Aggregation
// ─────────────────────────────────────────────────────────────────────────────

func mustInterval(t *testing.T, point, lower, upper float64) RiskInterval {
	t.Helper()
	interval, err := NewRiskInterval(point, lower, upper, 0.95)
	require.NoError(t, err)
	return interval
}

func TestAggregateIntervals_Conservative(t *testing.T) {
	t.Parallel()

	bounds := NewConfidenceBounds()
	out, err := bounds.AggregateIntervals([]RiskInterval{
		mustInterval(t, 0.4, 0.2, 0.6),
		mustInterval(t, 0.6, 0.3, 0.9),
	}, AggregateConservative)
	require.NoError(t, err)

	assert.InDelta(t, 0.5, out.PointEstimate, 1e-9)
	assert.InDelta(t, 0.2, out.LowerBound, 1e-9)
	assert.InDelta(t, 0.9, out.UpperBound, 1e-9)
}

func TestAggregateIntervals_Average(t *testing.T) {
	t.Parallel()

	bounds := NewConfidenceBounds()
	out, err := bounds.AggregateIntervals([]RiskInterval{
		mustInterval(t, 0.4, 0.2, 0.6),
		mustInterval(t, 0.6, 0.3, 0.9),
	}, AggregateAverage)
	require.NoError(t, err)

	assert.InDelta(t, 0.5, out.PointEstimate, 1e-9)
	assert.InDelta(t, 0.25, out.LowerBound, 1e-9)
	assert.InDelta(t, 0.75, out.UpperBound, 1e-9)
}

func TestAggregateIntervals_Max(t *testing.T) {
	t.Parallel()

	bounds := NewConfidenceBounds()
	out, err := bounds.AggregateIntervals([]RiskInterval{
		mustInterval(t, 0.4, 0.2, 0.6),
		mustInterval(t, 0.6, 0.3, 0.9),
	}, AggregateMax)
	require.NoError(t, err)

	assert.InDelta(t, 0.6, out.PointEstimate, 1e-9)
	assert.InDelta(t, 0.3, out.LowerBound, 1e-9)
	assert.InDelta(t, 0.9, out.UpperBound, 1e-9)
}

func TestAggregateIntervals_EmptyYieldsPrior(t *testing.T) {
	t.Parallel()

	bounds := NewConfidenceBounds()
	out, err := bounds.AggregateIntervals(nil, AggregateConservative)
	require.NoError(t, err)

	assert.Equal(t, 0.5, out.PointEstimate)
	assert.Equal(t, 0.25, out.LowerBound)
	assert.Equal(t, 0.75, out.UpperBound)
}

func TestAggregateIntervals_UnknownMethod(t *testing.T) {
	t.Parallel()

	bounds := NewConfidenceBounds()
	_, err := bounds.AggregateIntervals([]RiskInterval{
		mustInterval(t, 0.5, 0.3, 0.7),
	}, AggregationMethod("median"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeRiskIntervalInvalid))
}

// ─────────────────────────────────────────────────────────────────────────────
// Interpretation and sensitivity
// ─────────────────────────────────────────────────────────────────────────────

func TestInterpretInterval_HighRiskVeryUncertain(t *testing.T) {
	t.Parallel()

	bounds := NewConfidenceBounds()
	out := bounds.InterpretInterval(mustInterval(t, 0.8, 0.45, 0.9))

	assert.Equal(t, "High risk", out.Summary)
	assert.Equal(t, "Very high uncertainty", out.UncertaintyLevel)
	assert.Contains(t, out.PlanningGuidance, "90.0% risk")
	assert.Contains(t, out.PlanningGuidance, "95% confidence interval")
	assert.Len(t, out.Caveats, 4)
}

func TestInterpretInterval_LowerRiskNarrow(t *testing.T) {
	t.Parallel()

	bounds := NewConfidenceBounds()
	out := bounds.InterpretInterval(mustInterval(t, 0.2, 0.15, 0.25))

	assert.Equal(t, "Lower risk", out.Summary)
	assert.Equal(t, "Lower uncertainty", out.UncertaintyLevel)
	assert.Len(t, out.Caveats, 3)
}

func TestSensitivityAnalysis_ThreePoints(t *testing.T) {
	t.Parallel()

	bounds := NewConfidenceBounds()
	results, err := bounds.SensitivityAnalysis(0.5, AssessmentSemanticComparison, 0.3, 0.9)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, 0.3, results[0].SampleConfidence)
	assert.InDelta(t, 0.6, results[1].SampleConfidence, 1e-9)
	assert.Equal(t, 0.9, results[2].SampleConfidence)

	// Lower input confidence produces a higher planning estimate.
	assert.GreaterOrEqual(t, results[0].PlanningEstimate, results[2].PlanningEstimate)
}

func TestRiskInterval_ToMap(t *testing.T) {
	t.Parallel()

	interval, err := NewRiskInterval(0.5, 0.3, 0.7, 0.95)
	require.NoError(t, err)

	m := interval.ToMap()
	assert.Equal(t, 0.5, m["point_estimate"])
	assert.Equal(t, 0.3, m["lower_bound"])
	assert.Equal(t, 0.7, m["upper_bound"])
	assert.Equal(t, 0.95, m["confidence_level"])
}

package reporting

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/RegGap-Intelligence/internal/comparison"
	"github.com/turtacn/RegGap-Intelligence/internal/domain/ambiguity"
)

// ─────────────────────────────────────────────────────────────────────────────
// Heatmaps
// ─────────────────────────────────────────────────────────────────────────────

func TestGenerateJurisdictionHeatmap_SymmetricAverages(t *testing.T) {
	t.Parallel()

	gapMatrix := map[comparison.JurisdictionPair][]comparison.JurisdictionalGap{
		{A: "US", B: "EU"}: {
			{Severity: 0.4}, {Severity: 0.8},
		},
		{A: "EU", B: "UK"}: {},
	}

	heatmap := NewVisualizer().GenerateJurisdictionHeatmap(gapMatrix)

	assert.Equal(t, []string{"EU", "UK", "US"}, heatmap.Rows)
	// US-EU average 0.6, mirrored across the diagonal.
	assert.InDelta(t, 0.6, heatmap.Values[2][0], 1e-9)
	assert.InDelta(t, 0.6, heatmap.Values[0][2], 1e-9)
	assert.Zero(t, heatmap.Values[0][1])
	assert.Zero(t, heatmap.Values[2][2])
}

func TestGenerateGapTypeHeatmap_CountsPerPair(t *testing.T) {
	t.Parallel()

	gapMatrix := map[comparison.JurisdictionPair][]comparison.JurisdictionalGap{
		{A: "US", B: "EU"}: {
			{GapType: comparison.GapCoverage},
			{GapType: comparison.GapCoverage},
			{GapType: comparison.GapAmbiguity},
		},
	}

	heatmap := NewVisualizer().GenerateGapTypeHeatmap(gapMatrix)

	require.Equal(t, []string{"US vs EU"}, heatmap.Rows)
	require.Len(t, heatmap.Columns, 8)
	assert.Equal(t, 2.0, heatmap.Values[0][0]) // coverage_gap column
	assert.Equal(t, 2.0, heatmap.MaxValue)
}

func TestGenerateGapTypeHeatmap_Empty(t *testing.T) {
	t.Parallel()

	heatmap := NewVisualizer().GenerateGapTypeHeatmap(nil)
	assert.Empty(t, heatmap.Rows)
	assert.Len(t, heatmap.Columns, 8)
}

// ─────────────────────────────────────────────────────────────────────────────
// Rankings and distributions
// ─────────────────────────────────────────────────────────────────────────────

func TestGenerateAmbiguityRanking_SortedAndCapped(t *testing.T) {
	t.Parallel()

	ambiguities := []ambiguity.Instance{
		{TriggerPhrase: "reasonable", AmbiguityType: ambiguity.TypeVagueStandard, Severity: 0.6, Confidence: 0.8},
		{TriggerPhrase: "material", AmbiguityType: ambiguity.TypeVagueStandard, Severity: 0.7, Confidence: 0.8},
		{TriggerPhrase: "promptly", AmbiguityType: ambiguity.TypeTimingUnclear, Severity: 0.5, Confidence: 0.7},
	}

	ranking := NewVisualizer().GenerateAmbiguityRanking(ambiguities, 2)

	require.Len(t, ranking.Items, 2)
	assert.Equal(t, "material", ranking.Items[0].Name)
	assert.Equal(t, "reasonable", ranking.Items[1].Name)
	assert.False(t, ranking.Ascending)
}

func TestGenerateSeverityDistribution_Bins(t *testing.T) {
	t.Parallel()

	dist := NewVisualizer().GenerateSeverityDistribution([]float64{0.1, 0.3, 0.5, 0.7, 0.9, 1.0})

	assert.Equal(t, []string{"Informational", "Low", "Medium", "High", "Critical"}, dist.Labels)
	assert.Equal(t, []int{1, 1, 1, 1, 2}, dist.Counts)
	assert.Equal(t, 6, dist.Total)
	assert.Equal(t, 1.0, dist.Max)
	assert.Equal(t, 0.1, dist.Min)
}

func TestGenerateSeverityDistribution_Empty(t *testing.T) {
	t.Parallel()

	dist := NewVisualizer().GenerateSeverityDistribution(nil)
	assert.Zero(t, dist.Total)
	assert.Empty(t, dist.Counts)
}

func TestGenerateGapSummaryChart(t *testing.T) {
	t.Parallel()

	gapMatrix := map[comparison.JurisdictionPair][]comparison.JurisdictionalGap{
		{A: "US", B: "EU"}: {
			{GapType: comparison.GapCoverage, Severity: 0.6},
			{GapType: comparison.GapCoverage, Severity: 0.8},
		},
	}

	chart := NewVisualizer().GenerateGapSummaryChart(gapMatrix)

	assert.Equal(t, 2, chart.TypeCounts["coverage_gap"])
	assert.InDelta(t, 0.7, chart.AverageSeverityByType["coverage_gap"], 1e-9)
	assert.Zero(t, chart.AverageSeverityByType["ambiguity"])
	assert.Equal(t, 2, chart.TotalGaps)
}

func TestGenerateReviewPriorityMatrix(t *testing.T) {
	t.Parallel()

	gaps := []comparison.JurisdictionalGap{
		{Severity: 0.9, Confidence: 0.9, RequiresLegalReview: true},
		{Severity: 0.5, Confidence: 0.2, RequiresLegalReview: true},
		{Severity: 0.9, Confidence: 0.9}, // not reviewable, excluded
	}
	ambiguities := []ambiguity.Instance{
		{Severity: 0.7, Confidence: 0.7},
		{Severity: 0.3, Confidence: 0.9}, // below 0.5, excluded
	}

	matrix := NewVisualizer().GenerateReviewPriorityMatrix(gaps, ambiguities)

	assert.Equal(t, 2.0, matrix.Values[2][2]) // high sev, high conf
	assert.Equal(t, 1.0, matrix.Values[1][0]) // medium sev, low conf
	assert.Equal(t, 2.0, matrix.MaxValue)
}

// ─────────────────────────────────────────────────────────────────────────────
// ASCII rendering
// ─────────────────────────────────────────────────────────────────────────────

func TestRenderASCIIHeatmap(t *testing.T) {
	t.Parallel()

	heatmap := HeatmapData{
		Rows:       []string{"US", "EU"},
		Columns:    []string{"US", "EU"},
		Values:     [][]float64{{0, 0.9}, {0.9, 0}},
		Title:      "Test Heatmap",
		ValueLabel: "Severity",
		MinValue:   0,
		MaxValue:   1,
	}

	out := NewVisualizer().RenderASCIIHeatmap(heatmap)

	assert.Contains(t, out, "Test Heatmap")
	assert.Contains(t, out, "█")
	assert.Contains(t, out, "Legend: Severity")
	assert.Equal(t, 2, strings.Count(out, "│"))
}

func TestRenderASCIIHeatmap_NoData(t *testing.T) {
	t.Parallel()

	out := NewVisualizer().RenderASCIIHeatmap(HeatmapData{})
	assert.Equal(t, "No data to display", out)
}

func TestRenderASCIIRanking(t *testing.T) {
	t.Parallel()

	ranking := RankingData{
		Title: "Top Items",
		Items: []RankingItem{
			{Name: "material", Value: 0.7, Category: "vague_standard"},
			{Name: "promptly", Value: 0.35, Category: "timing_unclear"},
		},
	}

	out := NewVisualizer().RenderASCIIRanking(ranking, 10)

	assert.Contains(t, out, "Top Items")
	assert.Contains(t, out, "  1. material")
	assert.Contains(t, out, "0.700")
	assert.Contains(t, out, "[vague_standard ")
}

func TestRenderASCIIRanking_Empty(t *testing.T) {
	t.Parallel()

	out := NewVisualizer().RenderASCIIRanking(RankingData{}, 10)
	assert.Equal(t, "No items to rank", out)
}

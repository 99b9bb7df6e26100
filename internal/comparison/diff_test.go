package comparison

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/RegGap-Intelligence/internal/domain/clause"
	"github.com/turtacn/RegGap-Intelligence/pkg/errors"
)

func obligation(text string) clause.RegulatoryClause {
	return clause.RegulatoryClause{Text: text, ClauseType: clause.ClauseTypeObligation, Confidence: 0.75}
}

// ─────────────────────────────────────────────────────────────────────────────
// Scorers
// ─────────────────────────────────────────────────────────────────────────────

func TestJaccardScorer_IdenticalTexts(t *testing.T) {
	t.Parallel()
	s := NewJaccardScorer()

	score, err := s.Score("the firm shall report", "the firm shall report")

	require.NoError(t, err)
	assert.InDelta(t, 1.0, score, 1e-9)
}

func TestJaccardScorer_DisjointTexts(t *testing.T) {
	t.Parallel()
	s := NewJaccardScorer()

	score, err := s.Score("alpha beta gamma", "delta epsilon zeta")

	require.NoError(t, err)
	assert.Zero(t, score)
}

func TestJaccardScorer_EmptyText(t *testing.T) {
	t.Parallel()
	s := NewJaccardScorer()

	score, err := s.Score("", "the firm shall report")

	require.NoError(t, err)
	assert.Zero(t, score)
}

func TestJaccardScorer_PartialOverlap(t *testing.T) {
	t.Parallel()
	s := NewJaccardScorer()

	// 3 shared words, 5 in the union.
	score, err := s.Score("the firm shall report", "the firm shall disclose")

	require.NoError(t, err)
	assert.InDelta(t, 3.0/5.0, score, 1e-9)
}

func TestEmbeddingScorer_CosineSimilarity(t *testing.T) {
	t.Parallel()

	vectors := map[string][]float64{
		"a": {1, 0},
		"b": {0, 1},
		"c": {2, 0},
	}
	s := NewEmbeddingScorer(func(text string) ([]float64, error) {
		return vectors[text], nil
	})

	orthogonal, err := s.Score("a", "b")
	require.NoError(t, err)
	assert.InDelta(t, 0.0, orthogonal, 1e-9)

	parallel, err := s.Score("a", "c")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, parallel, 1e-9)
}

func TestEmbeddingScorer_CachesEmbeddings(t *testing.T) {
	t.Parallel()

	calls := 0
	s := NewEmbeddingScorer(func(text string) ([]float64, error) {
		calls++
		return []float64{1, 1}, nil
	})

	_, err := s.Score("same text", "same text")
	require.NoError(t, err)
	_, err = s.Score("same text", "same text")
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
}

func TestEmbeddingScorer_NilModel(t *testing.T) {
	t.Parallel()
	s := NewEmbeddingScorer(nil)

	_, err := s.Score("a", "b")

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeSimilarityScorerFailed))
}

// ─────────────────────────────────────────────────────────────────────────────
// SemanticDiff construction
// ─────────────────────────────────────────────────────────────────────────────

func TestNewSemanticDiff_Defaults(t *testing.T) {
	t.Parallel()

	d, err := NewSemanticDiff()

	require.NoError(t, err)
	assert.Equal(t, "jaccard", d.scorer.Name())
	assert.InDelta(t, DefaultSimilarityThreshold, d.threshold, 1e-9)
}

func TestNewSemanticDiff_RejectsInvalidThreshold(t *testing.T) {
	t.Parallel()

	_, err := NewSemanticDiff(WithSimilarityThreshold(1.2))

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeSimilarityThresholdInvalid))
}

// ─────────────────────────────────────────────────────────────────────────────
// Clause comparison
// ─────────────────────────────────────────────────────────────────────────────

func TestCompareClauses_EquivalentAboveThreshold(t *testing.T) {
	t.Parallel()
	d, err := NewSemanticDiff()
	require.NoError(t, err)

	text := "The firm shall maintain complete records of all transactions."
	diffs, err := d.CompareClauses(
		[]clause.RegulatoryClause{obligation(text)},
		[]clause.RegulatoryClause{obligation(text)},
		"US", "EU",
	)

	require.NoError(t, err)
	require.Len(t, diffs, 1)
	assert.Equal(t, DiffEquivalent, diffs[0].DifferenceType)
	assert.InDelta(t, 0.9, diffs[0].Confidence, 1e-9)
	assert.False(t, diffs[0].RequiresLegalReview)
}

func TestCompareClauses_UnmatchedClausesAreNovel(t *testing.T) {
	t.Parallel()
	d, err := NewSemanticDiff()
	require.NoError(t, err)

	diffs, err := d.CompareClauses(
		[]clause.RegulatoryClause{obligation("The custodian shall segregate client assets at all times.")},
		[]clause.RegulatoryClause{obligation("Annual audits must cover every branch office without exception.")},
		"US", "EU",
	)

	require.NoError(t, err)
	require.Len(t, diffs, 2)
	assert.Equal(t, DiffNovel, diffs[0].DifferenceType)
	assert.Contains(t, diffs[0].Analysis, "Clause in US has no equivalent in EU")
	assert.Equal(t, DiffNovel, diffs[1].DifferenceType)
	assert.Contains(t, diffs[1].Analysis, "Clause in EU has no equivalent in US")
	for _, diff := range diffs {
		assert.Nil(t, diff.ClauseB)
		assert.True(t, diff.RequiresLegalReview)
		assert.InDelta(t, 0.8, diff.Confidence, 1e-9)
	}
}

func TestCompareClauses_DefaultJurisdictionLabels(t *testing.T) {
	t.Parallel()
	d, err := NewSemanticDiff()
	require.NoError(t, err)

	diffs, err := d.CompareClauses(
		[]clause.RegulatoryClause{obligation("The custodian shall segregate client assets at all times.")},
		nil, "", "",
	)

	require.NoError(t, err)
	require.Len(t, diffs, 1)
	assert.Contains(t, diffs[0].Analysis, "Clause in Source has no equivalent in Target")
}

func TestCompareClauses_GreedyOneToOneMatching(t *testing.T) {
	t.Parallel()
	d, err := NewSemanticDiff(WithSimilarityThreshold(0.5))
	require.NoError(t, err)

	shared := "the firm shall report transactions to the commission each quarter"
	diffs, err := d.CompareClauses(
		[]clause.RegulatoryClause{obligation(shared), obligation(shared)},
		[]clause.RegulatoryClause{obligation(shared)},
		"US", "EU",
	)

	require.NoError(t, err)
	require.Len(t, diffs, 2)
	// One A clause matches, the second finds its counterpart taken.
	assert.Equal(t, DiffEquivalent, diffs[0].DifferenceType)
	assert.Equal(t, DiffNovel, diffs[1].DifferenceType)
}

func TestAnalyzeDifference_StricterFirstClause(t *testing.T) {
	t.Parallel()

	a := obligation("each broker shall immediately report all violations")
	b := clause.RegulatoryClause{
		Text:       "a broker may report violations when reasonable",
		ClauseType: clause.ClauseTypePermission,
	}
	diff := analyzeDifference(a, b, 0.8)

	assert.Equal(t, DiffStricter, diff.DifferenceType)
	assert.InDelta(t, 0.7, diff.Confidence, 1e-9)
	assert.Equal(t, []string{"stricter_language_detected"}, diff.RiskFactors)
	assert.True(t, diff.RequiresLegalReview)
}

func TestAnalyzeDifference_LooserFirstClause(t *testing.T) {
	t.Parallel()

	a := clause.RegulatoryClause{
		Text:       "a broker may report violations when reasonable",
		ClauseType: clause.ClauseTypePermission,
	}
	b := obligation("each broker shall immediately report all violations")
	diff := analyzeDifference(a, b, 0.8)

	assert.Equal(t, DiffLooser, diff.DifferenceType)
	assert.Equal(t, []string{"looser_language_detected"}, diff.RiskFactors)
}

func TestAnalyzeDifference_TypeConflict(t *testing.T) {
	t.Parallel()

	a := clause.RegulatoryClause{Text: "firms report quarterly figures", ClauseType: clause.ClauseTypeObligation}
	b := clause.RegulatoryClause{Text: "firms report quarterly numbers", ClauseType: clause.ClauseTypePermission}
	diff := analyzeDifference(a, b, 0.8)

	assert.Equal(t, DiffConflicting, diff.DifferenceType)
	assert.Contains(t, diff.Analysis, "obligation vs permission")
	assert.InDelta(t, 0.8, diff.Confidence, 1e-9)
}

func TestAnalyzeDifference_UnclearFallback(t *testing.T) {
	t.Parallel()

	a := clause.RegulatoryClause{Text: "firms report quarterly figures", ClauseType: clause.ClauseTypeObligation}
	b := clause.RegulatoryClause{Text: "firms report quarterly numbers", ClauseType: clause.ClauseTypeObligation}
	diff := analyzeDifference(a, b, 0.8)

	assert.Equal(t, DiffAmbiguous, diff.DifferenceType)
	assert.InDelta(t, 0.4, diff.Confidence, 1e-9)
	assert.Equal(t, []string{"unclear_difference"}, diff.RiskFactors)
	assert.True(t, diff.RequiresLegalReview)
}

// ─────────────────────────────────────────────────────────────────────────────
// Filters
// ─────────────────────────────────────────────────────────────────────────────

func TestDifferenceFilters(t *testing.T) {
	t.Parallel()

	diffs := []ClauseDifference{
		{DifferenceType: DiffStricter, RequiresLegalReview: true},
		{DifferenceType: DiffLooser},
		{DifferenceType: DiffEquivalent},
		{DifferenceType: DiffNovel, RequiresLegalReview: true},
	}

	assert.Len(t, FindStricter(diffs), 1)
	assert.Len(t, FindLooser(diffs), 1)
	assert.Len(t, ReviewRequired(diffs), 2)
}

func TestClauseDifference_ToMap(t *testing.T) {
	t.Parallel()

	matched := obligation("The firm must retain records.")
	d := &ClauseDifference{
		ClauseA:         obligation("The firm shall retain records."),
		ClauseB:         &matched,
		DifferenceType:  DiffEquivalent,
		SimilarityScore: 0.9,
		Confidence:      0.85,
	}
	m := d.ToMap()

	assert.Equal(t, "equivalent", m["difference_type"])
	assert.Equal(t, 0.9, m["similarity_score"])
	clauseB, ok := m["clause_b"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "The firm must retain records.", clauseB["text"])
}

func TestClauseDifference_ToMapOmitsNovelCounterpart(t *testing.T) {
	t.Parallel()

	d := &ClauseDifference{
		ClauseA:        obligation("The firm shall appoint a compliance officer."),
		DifferenceType: DiffNovel,
	}
	m := d.ToMap()

	assert.Equal(t, "novel", m["difference_type"])
	assert.NotContains(t, m, "clause_b")
}

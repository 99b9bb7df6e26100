package comparison

import (
	"fmt"
	"strings"

	"github.com/turtacn/RegGap-Intelligence/internal/domain/clause"
	"github.com/turtacn/RegGap-Intelligence/pkg/errors"
)

// DifferenceType classifies how a clause pair (or unmatched clause)
// differs across the compared sets.
type DifferenceType string

const (
	DiffStricter    DifferenceType = "stricter"
	DiffLooser      DifferenceType = "looser"
	DiffAmbiguous   DifferenceType = "ambiguous"
	DiffEquivalent  DifferenceType = "equivalent"
	DiffConflicting DifferenceType = "conflicting"
	// DiffNovel marks a clause with no counterpart in the other set.
	DiffNovel DifferenceType = "novel"
)

func (t DifferenceType) String() string {
	return string(t)
}

// ClauseDifference pairs a clause with its best match in the other set
// and classifies the difference. For novel clauses ClauseB is nil and
// ClauseA holds the unmatched clause regardless of which set it came
// from.
type ClauseDifference struct {
	ClauseA             clause.RegulatoryClause  `json:"clause_a"`
	ClauseB             *clause.RegulatoryClause `json:"clause_b,omitempty"`
	DifferenceType      DifferenceType           `json:"difference_type"`
	SimilarityScore     float64                  `json:"similarity_score"`
	Analysis            string                   `json:"analysis"`
	Confidence          float64                  `json:"confidence"`
	RiskFactors         []string                 `json:"risk_factors,omitempty"`
	RequiresLegalReview bool                     `json:"requires_legal_review"`
}

// ToMap renders the difference as a generic map for report templating
// and JSONB persistence. clause_b is absent for novel clauses.
func (d *ClauseDifference) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"clause_a":              d.ClauseA.ToMap(),
		"difference_type":       d.DifferenceType.String(),
		"similarity_score":      d.SimilarityScore,
		"analysis":              d.Analysis,
		"confidence":            d.Confidence,
		"risk_factors":          d.RiskFactors,
		"requires_legal_review": d.RequiresLegalReview,
	}
	if d.ClauseB != nil {
		m["clause_b"] = d.ClauseB.ToMap()
	}
	return m
}

// ─────────────────────────────────────────────────────────────────────────────
// Strictness lexicons
// ─────────────────────────────────────────────────────────────────────────────

var stricterIndicators = []string{
	"must", "shall", "required", "mandatory", "always", "never",
	"prohibited", "forbidden", "all", "each", "every", "immediately",
	"within 24 hours", "no exceptions", "under no circumstances",
}

var looserIndicators = []string{
	"may", "can", "optional", "reasonable", "generally", "typically",
	"usually", "unless", "except", "subject to", "at discretion",
	"good faith", "best efforts", "commercially reasonable",
}

var ambiguityIndicators = []string{
	"appropriate", "adequate", "sufficient", "reasonable", "material",
	"significant", "substantial", "promptly", "timely", "as needed",
	"as applicable", "where appropriate", "to the extent",
}

func countIndicators(indicators []string, textLower string) int {
	n := 0
	for _, ind := range indicators {
		if strings.Contains(textLower, ind) {
			n++
		}
	}
	return n
}

// ─────────────────────────────────────────────────────────────────────────────
// SemanticDiff
// ─────────────────────────────────────────────────────────────────────────────

// DefaultSimilarityThreshold is the minimum score for two clauses to
// count as counterparts.
const DefaultSimilarityThreshold = 0.7

// SemanticDiff matches clauses between two sets and classifies the
// differences. Matching is greedy one-to-one in input order; it is not
// globally optimal, which keeps comparison linear in practice and
// deterministic.
type SemanticDiff struct {
	scorer    SimilarityScorer
	threshold float64
}

// DiffOption configures a SemanticDiff.
type DiffOption func(*SemanticDiff)

// WithScorer overrides the default Jaccard scorer.
func WithScorer(scorer SimilarityScorer) DiffOption {
	return func(d *SemanticDiff) {
		if scorer != nil {
			d.scorer = scorer
		}
	}
}

// WithSimilarityThreshold overrides the matching threshold.
func WithSimilarityThreshold(threshold float64) DiffOption {
	return func(d *SemanticDiff) {
		d.threshold = threshold
	}
}

// NewSemanticDiff builds a differ with the Jaccard scorer and default
// threshold. An out-of-range threshold is rejected.
func NewSemanticDiff(opts ...DiffOption) (*SemanticDiff, error) {
	d := &SemanticDiff{
		scorer:    NewJaccardScorer(),
		threshold: DefaultSimilarityThreshold,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.threshold < 0 || d.threshold > 1 {
		return nil, errors.New(errors.ErrCodeSimilarityThresholdInvalid,
			fmt.Sprintf("similarity threshold must be in [0, 1], got %v", d.threshold))
	}
	return d, nil
}

// CompareClauses matches every clause in a against its best unmatched
// counterpart in b at or above the threshold, classifies matched pairs,
// and reports unmatched clauses from either set as novel. The result
// lists a's clauses in order, then b's unmatched clauses in order.
func (d *SemanticDiff) CompareClauses(
	clausesA, clausesB []clause.RegulatoryClause,
	jurisdictionA, jurisdictionB string,
) ([]ClauseDifference, error) {
	if jurisdictionA == "" {
		jurisdictionA = "Source"
	}
	if jurisdictionB == "" {
		jurisdictionB = "Target"
	}

	differences := make([]ClauseDifference, 0, len(clausesA)+len(clausesB))
	matchedB := make(map[int]bool, len(clausesB))

	for _, clauseA := range clausesA {
		bestIdx := -1
		bestSimilarity := 0.0

		for i := range clausesB {
			if matchedB[i] {
				continue
			}
			similarity, err := d.scorer.Score(clauseA.Text, clausesB[i].Text)
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrCodeDiffFailed, "clause similarity scoring failed")
			}
			if similarity > bestSimilarity && similarity >= d.threshold {
				bestIdx = i
				bestSimilarity = similarity
			}
		}

		if bestIdx >= 0 {
			matchedB[bestIdx] = true
			differences = append(differences, analyzeDifference(clauseA, clausesB[bestIdx], bestSimilarity))
		} else {
			differences = append(differences, novelDifference(clauseA, jurisdictionA, jurisdictionB))
		}
	}

	for i := range clausesB {
		if !matchedB[i] {
			differences = append(differences, novelDifference(clausesB[i], jurisdictionB, jurisdictionA))
		}
	}
	return differences, nil
}

func novelDifference(c clause.RegulatoryClause, ownJurisdiction, otherJurisdiction string) ClauseDifference {
	return ClauseDifference{
		ClauseA:             c,
		DifferenceType:      DiffNovel,
		SimilarityScore:     0.0,
		Analysis:            fmt.Sprintf("Clause in %s has no equivalent in %s", ownJurisdiction, otherJurisdiction),
		Confidence:          0.8,
		RequiresLegalReview: true,
	}
}

// analyzeDifference walks a fixed classification ladder: equivalence by
// score, then strictness by indicator counts, then ambiguity density,
// then clause-type conflict, falling back to an unclear-difference
// verdict at low confidence.
func analyzeDifference(clauseA, clauseB clause.RegulatoryClause, similarity float64) ClauseDifference {
	textA := strings.ToLower(clauseA.Text)
	textB := strings.ToLower(clauseB.Text)

	stricterA := countIndicators(stricterIndicators, textA)
	stricterB := countIndicators(stricterIndicators, textB)
	looserA := countIndicators(looserIndicators, textA)
	looserB := countIndicators(looserIndicators, textB)
	ambiguousA := countIndicators(ambiguityIndicators, textA)
	ambiguousB := countIndicators(ambiguityIndicators, textB)

	var (
		diffType    DifferenceType
		analysis    string
		confidence  float64
		riskFactors []string
	)

	switch {
	case similarity > 0.95:
		diffType = DiffEquivalent
		analysis = "Clauses are semantically equivalent"
		confidence = 0.9
	case stricterA > stricterB+1 || looserB > looserA+1:
		diffType = DiffStricter
		analysis = "First clause appears stricter than second"
		confidence = 0.7
		riskFactors = append(riskFactors, "stricter_language_detected")
	case stricterB > stricterA+1 || looserA > looserB+1:
		diffType = DiffLooser
		analysis = "First clause appears looser than second"
		confidence = 0.7
		riskFactors = append(riskFactors, "looser_language_detected")
	case ambiguousA > 2 || ambiguousB > 2:
		diffType = DiffAmbiguous
		analysis = "Significant ambiguity in clause language"
		confidence = 0.5
		riskFactors = append(riskFactors, "ambiguous_language")
	case clauseA.ClauseType != clauseB.ClauseType:
		diffType = DiffConflicting
		analysis = fmt.Sprintf("Clause type mismatch: %s vs %s", clauseA.ClauseType, clauseB.ClauseType)
		confidence = 0.8
		riskFactors = append(riskFactors, "clause_type_conflict")
	default:
		diffType = DiffAmbiguous
		analysis = "Difference is unclear - requires human review"
		confidence = 0.4
		riskFactors = append(riskFactors, "unclear_difference")
	}

	requiresReview := diffType == DiffAmbiguous || diffType == DiffConflicting ||
		confidence < 0.6 || len(riskFactors) > 0

	return ClauseDifference{
		ClauseA:             clauseA,
		ClauseB:             &clauseB,
		DifferenceType:      diffType,
		SimilarityScore:     similarity,
		Analysis:            analysis,
		Confidence:          confidence,
		RiskFactors:         riskFactors,
		RequiresLegalReview: requiresReview,
	}
}

// FindStricter filters to stricter-classified differences.
func FindStricter(differences []ClauseDifference) []ClauseDifference {
	return filterByType(differences, DiffStricter)
}

// FindLooser filters to looser-classified differences.
func FindLooser(differences []ClauseDifference) []ClauseDifference {
	return filterByType(differences, DiffLooser)
}

func filterByType(differences []ClauseDifference, t DifferenceType) []ClauseDifference {
	var out []ClauseDifference
	for _, d := range differences {
		if d.DifferenceType == t {
			out = append(out, d)
		}
	}
	return out
}

// ReviewRequired filters to differences flagged for legal review.
func ReviewRequired(differences []ClauseDifference) []ClauseDifference {
	var out []ClauseDifference
	for _, d := range differences {
		if d.RequiresLegalReview {
			out = append(out, d)
		}
	}
	return out
}

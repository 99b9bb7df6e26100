package client

import (
	"context"
	"fmt"
	"net/url"
)

// AnalysesClient accesses the document analysis and comparison endpoints
type AnalysesClient struct {
	client *Client
}

// AnalyzeRequest submits one document for single-document analysis
type AnalyzeRequest struct {
	DocumentID   string `json:"document_id"`
	Jurisdiction string `json:"jurisdiction"`
	Text         string `json:"text"`
}

// CompareRequest submits two documents for jurisdictional gap analysis
type CompareRequest struct {
	JurisdictionA string `json:"jurisdiction_a"`
	JurisdictionB string `json:"jurisdiction_b"`
	TextA         string `json:"text_a"`
	TextB         string `json:"text_b"`
}

// DocumentStatistics summarizes what the pipeline extracted
type DocumentStatistics struct {
	WordCount       int `json:"word_count"`
	SentenceCount   int `json:"sentence_count"`
	ClauseCount     int `json:"clause_count"`
	DefinitionCount int `json:"definition_count"`
	SectionCount    int `json:"section_count"`
	EntityCount     int `json:"entity_count"`
}

// ClauseBreakdown counts clauses by regulatory type
type ClauseBreakdown struct {
	Obligations  int `json:"obligations"`
	Prohibitions int `json:"prohibitions"`
	Permissions  int `json:"permissions"`
	Conditions   int `json:"conditions"`
	Exceptions   int `json:"exceptions"`
	Definitions  int `json:"definitions"`
}

// Clause is one classified regulatory clause
type Clause struct {
	Text       string   `json:"text"`
	ClauseType string   `json:"clause_type"`
	SectionID  string   `json:"section_id,omitempty"`
	Subject    string   `json:"subject,omitempty"`
	Action     string   `json:"action,omitempty"`
	Object     string   `json:"object,omitempty"`
	Conditions []string `json:"conditions,omitempty"`
	Exceptions []string `json:"exceptions,omitempty"`
	Confidence float64  `json:"confidence"`
	Position   int      `json:"position"`
}

// Definition is one extracted term definition
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

// Entity is one recognized regulatory entity
type Entity struct {
	Text           string            `json:"text"`
	EntityType     string            `json:"entity_type"`
	NormalizedForm string            `json:"normalized_form"`
	StartPos       int               `json:"start_pos"`
	EndPos         int               `json:"end_pos"`
	Confidence     float64           `json:"confidence"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// AmbiguityIssue is one vague phrase flagged in the document
type AmbiguityIssue struct {
	Type     string  `json:"type"`
	Phrase   string  `json:"phrase"`
	Severity float64 `json:"severity"`
}

// AmbiguitySummary aggregates the ambiguity findings for a document
type AmbiguitySummary struct {
	TotalInstances    int              `json:"total_instances"`
	HighSeverityCount int              `json:"high_severity_count"`
	AmbiguityScore    float64          `json:"ambiguity_score"`
	TopIssues         []AmbiguityIssue `json:"top_issues"`
}

// DocumentAnalysis is the full result of a single-document analysis
type DocumentAnalysis struct {
	DocumentID      string             `json:"document_id"`
	Jurisdiction    string             `json:"jurisdiction"`
	Statistics      DocumentStatistics `json:"statistics"`
	ClauseBreakdown ClauseBreakdown    `json:"clauses"`
	Clauses         []Clause           `json:"clause_details,omitempty"`
	Definitions     []Definition       `json:"definitions,omitempty"`
	Entities        []Entity           `json:"entities,omitempty"`
	Ambiguity       AmbiguitySummary   `json:"ambiguity"`
	Recommendations []string           `json:"recommendations"`
	Disclaimer      string             `json:"disclaimer"`
}

// TopGapDetail is one high-ranked jurisdictional gap
type TopGapDetail struct {
	Type            string   `json:"type"`
	Description     string   `json:"description"`
	Severity        float64  `json:"severity"`
	Recommendations []string `json:"recommendations"`
}

// ComparisonResult is the outcome of a two-document comparison
type ComparisonResult struct {
	JurisdictionA    string         `json:"jurisdiction_a"`
	JurisdictionB    string         `json:"jurisdiction_b"`
	TotalGaps        int            `json:"total_gaps"`
	HighSeverityGaps int            `json:"high_severity_gaps"`
	RequiresReview   int            `json:"requires_review"`
	GapsByType       map[string]int `json:"gaps_by_type"`
	TopGaps          []TopGapDetail `json:"top_gaps"`
	Disclaimer       string         `json:"disclaimer"`
}

// AnalysisList is a page of stored analyses
type AnalysisList struct {
	Analyses []DocumentAnalysis `json:"analyses"`
	Count    int                `json:"count"`
}

// ListAnalysesOptions filters and pages the analysis listing
type ListAnalysesOptions struct {
	Jurisdiction string
	Limit        int
	Offset       int
}

// Analyze runs the analysis pipeline over a document and returns the result
func (ac *AnalysesClient) Analyze(ctx context.Context, req AnalyzeRequest) (*DocumentAnalysis, error) {
	var result DocumentAnalysis
	if err := ac.client.post(ctx, "/analyses", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Get fetches a stored analysis by document ID
func (ac *AnalysesClient) Get(ctx context.Context, documentID string) (*DocumentAnalysis, error) {
	var result DocumentAnalysis
	if err := ac.client.get(ctx, "/analyses/"+url.PathEscape(documentID), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// List pages through stored analyses, optionally filtered by jurisdiction
func (ac *AnalysesClient) List(ctx context.Context, opts ListAnalysesOptions) (*AnalysisList, error) {
	q := url.Values{}
	if opts.Jurisdiction != "" {
		q.Set("jurisdiction", opts.Jurisdiction)
	}
	if opts.Limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", opts.Limit))
	}
	if opts.Offset > 0 {
		q.Set("offset", fmt.Sprintf("%d", opts.Offset))
	}

	path := "/analyses"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var result AnalysisList
	if err := ac.client.get(ctx, path, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Delete removes a stored analysis
func (ac *AnalysesClient) Delete(ctx context.Context, documentID string) error {
	return ac.client.delete(ctx, "/analyses/"+url.PathEscape(documentID))
}

// Compare runs both documents through the pipeline and returns the
// jurisdictional gaps between them
func (ac *AnalysesClient) Compare(ctx context.Context, req CompareRequest) (*ComparisonResult, error) {
	var result ComparisonResult
	if err := ac.client.post(ctx, "/comparisons", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

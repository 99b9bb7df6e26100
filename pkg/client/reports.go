package client

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// ReportsClient accesses the compliance report endpoints
type ReportsClient struct {
	client *Client
}

// ReportDocument is one document in a report generation request
type ReportDocument struct {
	DocumentID   string `json:"document_id"`
	Jurisdiction string `json:"jurisdiction"`
	Text         string `json:"text"`
}

// GenerateReportRequest submits a batch of documents for a compliance
// report. The server requires at least two documents.
type GenerateReportRequest struct {
	Documents []ReportDocument `json:"documents"`
}

// GapSummary aggregates the gaps found between one jurisdiction pair
type GapSummary struct {
	JurisdictionA       string         `json:"jurisdiction_a"`
	JurisdictionB       string         `json:"jurisdiction_b"`
	TotalGaps           int            `json:"total_gaps"`
	GapsByType          map[string]int `json:"gaps_by_type"`
	HighSeverityCount   int            `json:"high_severity_count"`
	RequiresReviewCount int            `json:"requires_review_count"`
	TopGaps             []TopGapDetail `json:"top_gaps"`
}

// AmbiguityDigest summarizes the ambiguity findings for one document
type AmbiguityDigest struct {
	DocumentID        string  `json:"document_id"`
	Jurisdiction      string  `json:"jurisdiction"`
	TotalInstances    int     `json:"total_instances"`
	AmbiguityScore    float64 `json:"ambiguity_score"`
	HighSeverityCount int     `json:"high_severity_count"`
}

// ScenarioDigest summarizes one modeled enforcement scenario
type ScenarioDigest struct {
	ScenarioID          string  `json:"scenario_id"`
	Description         string  `json:"description"`
	Likelihood          string  `json:"likelihood"`
	SeverityScore       float64 `json:"severity_score"`
	RequiresLegalReview bool    `json:"requires_legal_review"`
}

// SeveritySummary aggregates enforcement risk across scenarios
type SeveritySummary struct {
	TotalRated                 int            `json:"total_rated"`
	CountsByLevel              map[string]int `json:"counts_by_level,omitempty"`
	AverageScore               float64        `json:"average_score"`
	CriticalCount              int            `json:"critical_count"`
	HighCount                  int            `json:"high_count"`
	RequiresImmediateAttention int            `json:"requires_immediate_attention"`
	RequiresLegalReview        int            `json:"requires_legal_review"`
	Message                    string         `json:"message,omitempty"`
}

// ComplianceReport is the full analysis deliverable
type ComplianceReport struct {
	ReportID              string            `json:"report_id"`
	GeneratedAt           time.Time         `json:"generated_at"`
	JurisdictionsAnalyzed []string          `json:"jurisdictions_analyzed"`
	DocumentCount         int               `json:"document_count"`
	ClauseCount           int               `json:"clause_count"`
	GapSummaries          []GapSummary      `json:"gap_summaries"`
	AmbiguityReports      []AmbiguityDigest `json:"ambiguity_reports"`
	EnforcementScenarios  []ScenarioDigest  `json:"enforcement_scenarios"`
	SeveritySummary       SeveritySummary   `json:"severity_summary"`
	Recommendations       []string          `json:"recommendations"`
	Disclaimers           []string          `json:"disclaimers"`
}

// ReportSummary is one row of the report listing
type ReportSummary struct {
	ReportID      string    `json:"report_id"`
	Jurisdictions []string  `json:"jurisdictions"`
	DocumentCount int       `json:"document_count"`
	ClauseCount   int       `json:"clause_count"`
	GeneratedAt   time.Time `json:"generated_at"`
}

// ReportList is a page of stored reports
type ReportList struct {
	Reports []ReportSummary `json:"reports"`
	Count   int             `json:"count"`
}

// Generate runs the batch pipeline over the submitted documents and
// returns the assembled compliance report
func (rc *ReportsClient) Generate(ctx context.Context, req GenerateReportRequest) (*ComplianceReport, error) {
	var result ComplianceReport
	if err := rc.client.post(ctx, "/reports", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Get fetches a stored report by ID
func (rc *ReportsClient) Get(ctx context.Context, reportID string) (*ComplianceReport, error) {
	var result ComplianceReport
	if err := rc.client.get(ctx, "/reports/"+url.PathEscape(reportID), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// List pages through stored reports
func (rc *ReportsClient) List(ctx context.Context, limit, offset int) (*ReportList, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", limit))
	}
	if offset > 0 {
		q.Set("offset", fmt.Sprintf("%d", offset))
	}

	path := "/reports"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var result ReportList
	if err := rc.client.get(ctx, path, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Download fetches the rendered report in the given format ("json" or
// "markdown") and returns the raw bytes
func (rc *ReportsClient) Download(ctx context.Context, reportID, format string) ([]byte, error) {
	path := "/reports/" + url.PathEscape(reportID) + "/download"
	if format != "" {
		path += "?format=" + url.QueryEscape(format)
	}

	var raw []byte
	if err := rc.client.get(ctx, path, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// Delete removes a stored report
func (rc *ReportsClient) Delete(ctx context.Context, reportID string) error {
	return rc.client.delete(ctx, "/reports/"+url.PathEscape(reportID))
}

package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL, WithRetryMax(0))
	require.NoError(t, err)
	return c
}

func TestAnalyses_Analyze(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/analyses", r.URL.Path)

		var req AnalyzeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "doc-1", req.DocumentID)
		assert.Equal(t, "US-SEC", req.Jurisdiction)

		json.NewEncoder(w).Encode(DocumentAnalysis{
			DocumentID:   req.DocumentID,
			Jurisdiction: req.Jurisdiction,
			Statistics:   DocumentStatistics{ClauseCount: 4, DefinitionCount: 1},
			Clauses: []Clause{
				{Text: "The custodian shall maintain records.", ClauseType: "obligation", Confidence: 0.9},
			},
			Disclaimer: "Not legal advice.",
		})
	})

	result, err := c.Analyses().Analyze(context.Background(), AnalyzeRequest{
		DocumentID:   "doc-1",
		Jurisdiction: "US-SEC",
		Text:         "The custodian shall maintain records.",
	})
	require.NoError(t, err)
	assert.Equal(t, "doc-1", result.DocumentID)
	assert.Equal(t, 4, result.Statistics.ClauseCount)
	require.Len(t, result.Clauses, 1)
	assert.Equal(t, "obligation", result.Clauses[0].ClauseType)
}

func TestAnalyses_GetEscapesDocumentID(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/analyses/docs%2F2024%2Frule-15c3", r.URL.RawPath)
		json.NewEncoder(w).Encode(DocumentAnalysis{DocumentID: "docs/2024/rule-15c3"})
	})

	result, err := c.Analyses().Get(context.Background(), "docs/2024/rule-15c3")
	require.NoError(t, err)
	assert.Equal(t, "docs/2024/rule-15c3", result.DocumentID)
}

func TestAnalyses_ListBuildsQuery(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/analyses", r.URL.Path)
		assert.Equal(t, "EU-MiFID", r.URL.Query().Get("jurisdiction"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		assert.Equal(t, "20", r.URL.Query().Get("offset"))

		json.NewEncoder(w).Encode(AnalysisList{
			Analyses: []DocumentAnalysis{{DocumentID: "doc-a"}},
			Count:    1,
		})
	})

	list, err := c.Analyses().List(context.Background(), ListAnalysesOptions{
		Jurisdiction: "EU-MiFID",
		Limit:        10,
		Offset:       20,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Count)
	require.Len(t, list.Analyses, 1)
	assert.Equal(t, "doc-a", list.Analyses[0].DocumentID)
}

func TestAnalyses_Delete(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/v1/analyses/doc-1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.Analyses().Delete(context.Background(), "doc-1"))
}

func TestAnalyses_Compare(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/comparisons", r.URL.Path)

		var req CompareRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "US-SEC", req.JurisdictionA)
		assert.Equal(t, "EU-MiFID", req.JurisdictionB)

		json.NewEncoder(w).Encode(ComparisonResult{
			JurisdictionA:    req.JurisdictionA,
			JurisdictionB:    req.JurisdictionB,
			TotalGaps:        3,
			HighSeverityGaps: 1,
			GapsByType:       map[string]int{"missing_requirement": 2, "definition_conflict": 1},
			TopGaps: []TopGapDetail{
				{Type: "missing_requirement", Description: "obligation absent in EU-MiFID", Severity: 0.8},
			},
		})
	})

	result, err := c.Analyses().Compare(context.Background(), CompareRequest{
		JurisdictionA: "US-SEC",
		JurisdictionB: "EU-MiFID",
		TextA:         "The broker shall report.",
		TextB:         "The firm should report.",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalGaps)
	assert.Equal(t, 1, result.HighSeverityGaps)
	assert.Equal(t, 2, result.GapsByType["missing_requirement"])
}

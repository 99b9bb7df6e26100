package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	graphrepos "github.com/turtacn/RegGap-Intelligence/internal/infrastructure/database/neo4j/repositories"
	"github.com/turtacn/RegGap-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/RegGap-Intelligence/pkg/errors"
)

type fakeTermGraph struct {
	definitions map[string][]graphrepos.TermDefinition
	references  map[string][]string
	conflicts   []graphrepos.TermJurisdictions

	lastDepth int
	lastMin   int
	err       error
}

func (g *fakeTermGraph) GetTermDefinitions(_ context.Context, term string) ([]graphrepos.TermDefinition, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.definitions[term], nil
}

func (g *fakeTermGraph) GetReferencedTerms(_ context.Context, term string, depth int) ([]string, error) {
	g.lastDepth = depth
	return g.references[term], nil
}

func (g *fakeTermGraph) GetMultiJurisdictionTerms(_ context.Context, minJurisdictions int) ([]graphrepos.TermJurisdictions, error) {
	g.lastMin = minJurisdictions
	return g.conflicts, nil
}

func glossaryRouter(graph TermGraph) *gin.Engine {
	h := NewGlossaryHandler(graph, logging.NewNopLogger())

	r := gin.New()
	r.GET("/glossary/terms/:term", h.GetTerm)
	r.GET("/glossary/terms/:term/references", h.GetReferences)
	r.GET("/glossary/conflicts", h.GetConflictCandidates)
	return r
}

func TestGetTerm_ReturnsDefinitions(t *testing.T) {
	t.Parallel()
	graph := &fakeTermGraph{
		definitions: map[string][]graphrepos.TermDefinition{
			"custodian": {
				{Term: "Custodian", DocumentID: "doc-us", Jurisdiction: "US", Text: "an entity holding client assets"},
				{Term: "Custodian", DocumentID: "doc-eu", Jurisdiction: "EU", Text: "a safekeeping institution"},
			},
		},
	}
	r := glossaryRouter(graph)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/glossary/terms/custodian", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Term        string                      `json:"term"`
		Definitions []graphrepos.TermDefinition `json:"definitions"`
		Count       int                         `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "custodian", resp.Term)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "US", resp.Definitions[0].Jurisdiction)
}

func TestGetTerm_GraphError(t *testing.T) {
	t.Parallel()
	graph := &fakeTermGraph{err: errors.New(errors.ErrCodeDatabaseError, "connection refused")}
	r := glossaryRouter(graph)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/glossary/terms/custodian", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	// Internal details are masked.
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestGetReferences_DepthParameter(t *testing.T) {
	t.Parallel()
	graph := &fakeTermGraph{
		references: map[string][]string{"custodian": {"client assets", "customer"}},
	}
	r := glossaryRouter(graph)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/glossary/terms/custodian/references?depth=3", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, graph.lastDepth)

	var resp struct {
		References []string `json:"references"`
		Count      int      `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"client assets", "customer"}, resp.References)

	// Depth defaults to 1 when absent.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/glossary/terms/custodian/references", nil))
	assert.Equal(t, 1, graph.lastDepth)
}

func TestGetConflictCandidates(t *testing.T) {
	t.Parallel()
	graph := &fakeTermGraph{
		conflicts: []graphrepos.TermJurisdictions{
			{Term: "custodian", Jurisdictions: []string{"US", "EU", "UK"}},
		},
	}
	r := glossaryRouter(graph)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/glossary/conflicts?min=3", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, graph.lastMin)

	var resp struct {
		Terms []graphrepos.TermJurisdictions `json:"terms"`
		Count int                            `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "custodian", resp.Terms[0].Term)
}

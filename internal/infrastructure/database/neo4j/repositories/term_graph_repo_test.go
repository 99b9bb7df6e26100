package repositories

import (
	"context"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/RegGap-Intelligence/internal/domain/definition"
	graph "github.com/turtacn/RegGap-Intelligence/internal/infrastructure/database/neo4j"
	"github.com/turtacn/RegGap-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/RegGap-Intelligence/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Fakes
// ─────────────────────────────────────────────────────────────────────────────

type fakeResult struct {
	records []*neo4j.Record
	idx     int
}

func (f *fakeResult) Next(ctx context.Context) bool { return f.idx < len(f.records) }

func (f *fakeResult) Record() *neo4j.Record {
	rec := f.records[f.idx]
	f.idx++
	return rec
}

func (f *fakeResult) Err() error { return nil }

func (f *fakeResult) Consume(ctx context.Context) (neo4j.ResultSummary, error) { return nil, nil }

type executedQuery struct {
	cypher string
	params map[string]any
}

// fakeTransaction records every statement and pops queued results in
// order. Statements past the queue get an empty result.
type fakeTransaction struct {
	queries []executedQuery
	results []*fakeResult
	errs    []error
}

func (f *fakeTransaction) Run(ctx context.Context, cypher string, params map[string]any) (graph.Result, error) {
	idx := len(f.queries)
	f.queries = append(f.queries, executedQuery{cypher: cypher, params: params})
	if idx < len(f.errs) && f.errs[idx] != nil {
		return nil, f.errs[idx]
	}
	if idx < len(f.results) {
		return f.results[idx], nil
	}
	return &fakeResult{}, nil
}

type fakeExecutor struct {
	tx     *fakeTransaction
	reads  int
	writes int
}

func (f *fakeExecutor) ExecuteRead(ctx context.Context, work graph.TransactionWork) (any, error) {
	f.reads++
	return work(f.tx)
}

func (f *fakeExecutor) ExecuteWrite(ctx context.Context, work graph.TransactionWork) (any, error) {
	f.writes++
	return work(f.tx)
}

func newTestRepo(results ...*fakeResult) (*TermGraphRepository, *fakeExecutor) {
	exec := &fakeExecutor{tx: &fakeTransaction{results: results}}
	return NewTermGraphRepository(exec, logging.NewNopLogger()), exec
}

func record(keys []string, values []any) *neo4j.Record {
	return &neo4j.Record{Keys: keys, Values: values}
}

// ─────────────────────────────────────────────────────────────────────────────
// Upsert
// ─────────────────────────────────────────────────────────────────────────────

func TestUpsertDocumentGraph_RejectsMissingIdentity(t *testing.T) {
	t.Parallel()
	repo, _ := newTestRepo()

	err := repo.UpsertDocumentGraph(context.Background(), "", "US", nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))

	err = repo.UpsertDocumentGraph(context.Background(), "doc-1", "", nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
}

func TestUpsertDocumentGraph_WritesDefinitionsAndReferences(t *testing.T) {
	t.Parallel()
	repo, exec := newTestRepo()

	defs := []definition.Definition{
		{
			Term:            "Custodian",
			DefinitionText:  "An entity that holds client assets.",
			SectionID:       "2.1",
			Confidence:      0.9,
			CrossReferences: []string{"Client Assets"},
		},
	}
	err := repo.UpsertDocumentGraph(context.Background(), "doc-1", "US", defs)
	require.NoError(t, err)

	require.Len(t, exec.tx.queries, 3)
	assert.Equal(t, 1, exec.writes)

	merge := exec.tx.queries[0]
	assert.Contains(t, merge.cypher, "MERGE (j:Jurisdiction")
	assert.Contains(t, merge.cypher, "DELETE def")
	assert.Equal(t, "doc-1", merge.params["id"])
	assert.Equal(t, "US", merge.params["jurisdiction"])

	defQuery := exec.tx.queries[1]
	assert.Contains(t, defQuery.cypher, "UNWIND $defs")
	rows := defQuery.params["defs"].([]map[string]any)
	require.Len(t, rows, 1)
	assert.Equal(t, "custodian", rows[0]["name"])
	assert.Equal(t, "Custodian", rows[0]["display"])
	assert.Equal(t, "2.1", rows[0]["section_id"])

	refQuery := exec.tx.queries[2]
	assert.Contains(t, refQuery.cypher, "REFERS_TO")
	refs := refQuery.params["refs"].([]map[string]any)
	require.Len(t, refs, 1)
	assert.Equal(t, "custodian", refs[0]["from"])
	assert.Equal(t, "client assets", refs[0]["to"])
}

func TestUpsertDocumentGraph_NoDefinitionsRunsOnlyDocumentMerge(t *testing.T) {
	t.Parallel()
	repo, exec := newTestRepo()

	err := repo.UpsertDocumentGraph(context.Background(), "doc-1", "US", nil)
	require.NoError(t, err)
	assert.Len(t, exec.tx.queries, 1)
}

// ─────────────────────────────────────────────────────────────────────────────
// Queries
// ─────────────────────────────────────────────────────────────────────────────

func TestGetTermDefinitions_MapsRecords(t *testing.T) {
	t.Parallel()
	keys := []string{"term", "document_id", "jurisdiction", "section_id", "text", "confidence"}
	repo, exec := newTestRepo(&fakeResult{records: []*neo4j.Record{
		record(keys, []any{"Custodian", "doc-1", "US", "2.1", "An entity that holds client assets.", 0.9}),
		record(keys, []any{"Custodian", "doc-2", "EU", nil, "A firm safekeeping instruments.", 0.8}),
	}})

	defs, err := repo.GetTermDefinitions(context.Background(), "Custodian")
	require.NoError(t, err)
	require.Len(t, defs, 2)

	assert.Equal(t, "custodian", exec.tx.queries[0].params["term"])
	assert.Equal(t, "US", defs[0].Jurisdiction)
	assert.Equal(t, "2.1", defs[0].SectionID)
	assert.InDelta(t, 0.9, defs[0].Confidence, 1e-9)
	assert.Equal(t, "", defs[1].SectionID)
	assert.Equal(t, 1, exec.reads)
}

func TestGetReferencedTerms_ClampsDepth(t *testing.T) {
	t.Parallel()
	repo, exec := newTestRepo(&fakeResult{}, &fakeResult{})

	_, err := repo.GetReferencedTerms(context.Background(), "custodian", 0)
	require.NoError(t, err)
	assert.Contains(t, exec.tx.queries[0].cypher, "*1..1")

	_, err = repo.GetReferencedTerms(context.Background(), "custodian", 9)
	require.NoError(t, err)
	assert.Contains(t, exec.tx.queries[1].cypher, "*1..5")
}

func TestGetDanglingReferences_ReturnsNames(t *testing.T) {
	t.Parallel()
	repo, exec := newTestRepo(&fakeResult{records: []*neo4j.Record{
		record([]string{"name"}, []any{"qualified client"}),
		record([]string{"name"}, []any{"retail investor"}),
	}})

	names, err := repo.GetDanglingReferences(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"qualified client", "retail investor"}, names)
	assert.Equal(t, "doc-1", exec.tx.queries[0].params["id"])
}

func TestGetMultiJurisdictionTerms_ClampsMinimum(t *testing.T) {
	t.Parallel()
	repo, exec := newTestRepo(&fakeResult{records: []*neo4j.Record{
		record([]string{"term", "jurisdictions"}, []any{"custodian", []any{"US", "EU", "UK"}}),
	}})

	terms, err := repo.GetMultiJurisdictionTerms(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, terms, 1)
	assert.Equal(t, "custodian", terms[0].Term)
	assert.Equal(t, []string{"US", "EU", "UK"}, terms[0].Jurisdictions)
	assert.Equal(t, 2, exec.tx.queries[0].params["min"])
}

func TestDeleteDocumentGraph_RemovesDocumentAndOrphans(t *testing.T) {
	t.Parallel()
	repo, exec := newTestRepo()

	err := repo.DeleteDocumentGraph(context.Background(), "doc-1")
	require.NoError(t, err)

	require.Len(t, exec.tx.queries, 2)
	assert.Contains(t, exec.tx.queries[0].cypher, "DETACH DELETE d")
	assert.Contains(t, exec.tx.queries[1].cypher, "NOT (t)--()")
}

func TestEnsureConstraints_OnePerTransaction(t *testing.T) {
	t.Parallel()
	repo, exec := newTestRepo()

	err := repo.EnsureConstraints(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, exec.writes)
	assert.Len(t, exec.tx.queries, 3)
}

package neo4j

import (
	"context"
	"fmt"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/RegGap-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/RegGap-Intelligence/pkg/errors"
)

type stubResult struct {
	records []*neo4j.Record
	idx     int
	err     error
}

func (s *stubResult) Next(ctx context.Context) bool { return s.idx < len(s.records) }

func (s *stubResult) Record() *neo4j.Record {
	rec := s.records[s.idx]
	s.idx++
	return rec
}

func (s *stubResult) Err() error { return s.err }

func (s *stubResult) Consume(ctx context.Context) (neo4j.ResultSummary, error) { return nil, nil }

type stubTransaction struct {
	result *stubResult
}

func (s *stubTransaction) Run(ctx context.Context, cypher string, params map[string]any) (Result, error) {
	if s.result == nil {
		return &stubResult{}, nil
	}
	return s.result, nil
}

type stubSession struct {
	tx      *stubTransaction
	workErr error
	closed  bool
}

func (s *stubSession) ExecuteRead(ctx context.Context, work TransactionWork) (any, error) {
	if s.workErr != nil {
		return nil, s.workErr
	}
	return work(s.tx)
}

func (s *stubSession) ExecuteWrite(ctx context.Context, work TransactionWork) (any, error) {
	if s.workErr != nil {
		return nil, s.workErr
	}
	return work(s.tx)
}

func (s *stubSession) Close(ctx context.Context) error {
	s.closed = true
	return nil
}

type stubDriver struct {
	session     *stubSession
	verifyErr   error
	closeCalls  int
	lastSession neo4j.SessionConfig
}

func (s *stubDriver) VerifyConnectivity(ctx context.Context) error { return s.verifyErr }

func (s *stubDriver) NewSession(ctx context.Context, config neo4j.SessionConfig) internalSession {
	s.lastSession = config
	return s.session
}

func (s *stubDriver) Close(ctx context.Context) error {
	s.closeCalls++
	return nil
}

func newTestDriver(stub *stubDriver, cfg Neo4jConfig) *Driver {
	return &Driver{driver: stub, cfg: cfg, logger: logging.NewNopLogger()}
}

// ─────────────────────────────────────────────────────────────────────────────

func TestExecuteRead_ReturnsWorkResult(t *testing.T) {
	t.Parallel()
	session := &stubSession{tx: &stubTransaction{}}
	stub := &stubDriver{session: session}
	d := newTestDriver(stub, Neo4jConfig{})

	got, err := d.ExecuteRead(context.Background(), func(tx Transaction) (any, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.True(t, session.closed)
}

func TestExecuteRead_DefaultsDatabaseName(t *testing.T) {
	t.Parallel()
	stub := &stubDriver{session: &stubSession{tx: &stubTransaction{}}}
	d := newTestDriver(stub, Neo4jConfig{})

	_, err := d.ExecuteRead(context.Background(), func(tx Transaction) (any, error) { return nil, nil })
	require.NoError(t, err)
	assert.Equal(t, "neo4j", stub.lastSession.DatabaseName)
	assert.Equal(t, neo4j.AccessModeRead, stub.lastSession.AccessMode)
}

func TestExecuteWrite_WrapsFailure(t *testing.T) {
	t.Parallel()
	session := &stubSession{workErr: fmt.Errorf("connection reset")}
	d := newTestDriver(&stubDriver{session: session}, Neo4jConfig{Database: "reggap"})

	_, err := d.ExecuteWrite(context.Background(), func(tx Transaction) (any, error) { return nil, nil })
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDatabaseError))
	assert.True(t, session.closed)
}

func TestHealthCheck(t *testing.T) {
	t.Parallel()
	result := &stubResult{records: []*neo4j.Record{{Keys: []string{"health"}, Values: []any{int64(1)}}}}
	stub := &stubDriver{session: &stubSession{tx: &stubTransaction{result: result}}}
	d := newTestDriver(stub, Neo4jConfig{})

	assert.NoError(t, d.HealthCheck(context.Background()))
}

func TestHealthCheck_ConnectivityFailure(t *testing.T) {
	t.Parallel()
	stub := &stubDriver{verifyErr: fmt.Errorf("unreachable")}
	d := newTestDriver(stub, Neo4jConfig{})

	err := d.HealthCheck(context.Background())
	assert.True(t, errors.IsCode(err, errors.ErrCodeDatabaseError))
}

func TestClose_Idempotent(t *testing.T) {
	t.Parallel()
	stub := &stubDriver{session: &stubSession{}}
	d := newTestDriver(stub, Neo4jConfig{})

	require.NoError(t, d.Close())
	require.NoError(t, d.Close())
	assert.Equal(t, 1, stub.closeCalls)
}

func TestExtractSingleRecord(t *testing.T) {
	t.Parallel()
	result := &stubResult{records: []*neo4j.Record{{Keys: []string{"n"}, Values: []any{"custodian"}}}}

	got, err := ExtractSingleRecord(context.Background(), result, func(rec *neo4j.Record) (string, error) {
		return rec.Values[0].(string), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "custodian", got)
}

func TestExtractSingleRecord_Empty(t *testing.T) {
	t.Parallel()
	_, err := ExtractSingleRecord(context.Background(), &stubResult{}, func(rec *neo4j.Record) (string, error) {
		return "", nil
	})
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))
}

func TestCollectRecords(t *testing.T) {
	t.Parallel()
	result := &stubResult{records: []*neo4j.Record{
		{Keys: []string{"n"}, Values: []any{"a"}},
		{Keys: []string{"n"}, Values: []any{"b"}},
	}}

	items, err := CollectRecords(context.Background(), result, func(rec *neo4j.Record) (string, error) {
		return rec.Values[0].(string), nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, items)
}

package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func glossaryServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/glossary/terms/custodian", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"term": "custodian",
			"definitions": []map[string]any{
				{"term": "custodian", "jurisdiction": "US-SEC", "text": "an entity that holds customer funds", "confidence": 0.9},
			},
			"count": 1,
		})
	})
	mux.HandleFunc("/api/v1/glossary/terms/custodian/references", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"term":       "custodian",
			"references": []string{"customer funds"},
			"count":      1,
		})
	})
	mux.HandleFunc("/api/v1/glossary/conflicts", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"terms": []map[string]any{
				{"term": "client", "jurisdictions": []string{"US-SEC", "EU-MiFID"}},
			},
			"count": 1,
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestGlossaryCmd_Term(t *testing.T) {
	srv := glossaryServer(t)

	out, err := execCLI(t, "glossary", "term", "custodian", "--server", srv.URL, "-f", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"term": "custodian"`)
	assert.Contains(t, out, "US-SEC")
}

func TestGlossaryCmd_References(t *testing.T) {
	srv := glossaryServer(t)

	out, err := execCLI(t, "glossary", "references", "custodian", "--server", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "customer funds")
}

func TestGlossaryCmd_Conflicts(t *testing.T) {
	srv := glossaryServer(t)

	out, err := execCLI(t, "glossary", "conflicts", "--server", srv.URL, "-f", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"count": 1`)
	assert.Contains(t, out, "EU-MiFID")
}

func TestGlossaryCmd_ServerUnreachable(t *testing.T) {
	_, err := execCLI(t, "glossary", "term", "custodian", "--server", "http://127.0.0.1:1")
	require.Error(t, err)
}

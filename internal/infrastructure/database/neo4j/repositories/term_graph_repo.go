// Package repositories provides graph repositories over the neo4j
// driver. The term graph records which documents define which terms
// and how definitions reference each other, so cross-jurisdiction
// conflicts and dangling references can be queried structurally.
package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/turtacn/RegGap-Intelligence/internal/domain/definition"
	graph "github.com/turtacn/RegGap-Intelligence/internal/infrastructure/database/neo4j"
	"github.com/turtacn/RegGap-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/RegGap-Intelligence/pkg/errors"
)

// TermDefinition is one document's definition of a term, as stored in
// the graph.
type TermDefinition struct {
	Term         string  `json:"term"`
	DocumentID   string  `json:"document_id"`
	Jurisdiction string  `json:"jurisdiction"`
	SectionID    string  `json:"section_id,omitempty"`
	Text         string  `json:"text"`
	Confidence   float64 `json:"confidence"`
}

// TermJurisdictions lists the jurisdictions a term is defined in.
type TermJurisdictions struct {
	Term          string   `json:"term"`
	Jurisdictions []string `json:"jurisdictions"`
}

// TermGraphRepository maintains the definition cross-reference graph.
//
// Model: (Document {id, jurisdiction})-[:DEFINES {text, section_id,
// confidence, display}]->(Term {name}), (Term)-[:REFERS_TO]->(Term),
// (Document)-[:IN_JURISDICTION]->(Jurisdiction {code}). Term names
// are lowercased, matching the extractor's glossary keys.
type TermGraphRepository struct {
	exec   graph.Executor
	logger logging.Logger
}

// NewTermGraphRepository creates a TermGraphRepository.
func NewTermGraphRepository(exec graph.Executor, log logging.Logger) *TermGraphRepository {
	return &TermGraphRepository{
		exec:   exec,
		logger: log.Named("term_graph_repo"),
	}
}

// EnsureConstraints creates the uniqueness constraints the graph
// relies on. Schema commands run one per transaction.
func (r *TermGraphRepository) EnsureConstraints(ctx context.Context) error {
	constraints := []string{
		"CREATE CONSTRAINT term_name IF NOT EXISTS FOR (t:Term) REQUIRE t.name IS UNIQUE",
		"CREATE CONSTRAINT document_id IF NOT EXISTS FOR (d:Document) REQUIRE d.id IS UNIQUE",
		"CREATE CONSTRAINT jurisdiction_code IF NOT EXISTS FOR (j:Jurisdiction) REQUIRE j.code IS UNIQUE",
	}
	for _, cypher := range constraints {
		_, err := r.exec.ExecuteWrite(ctx, func(tx graph.Transaction) (any, error) {
			_, err := tx.Run(ctx, cypher, nil)
			return nil, err
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// UpsertDocumentGraph replaces a document's definitions in the graph.
// Re-analyzing a document first removes its previous DEFINES edges so
// deleted definitions do not linger.
func (r *TermGraphRepository) UpsertDocumentGraph(ctx context.Context, documentID, jurisdiction string, defs []definition.Definition) error {
	if documentID == "" || jurisdiction == "" {
		return errors.New(errors.ErrCodeValidation, "document id and jurisdiction are required")
	}

	defRows := make([]map[string]any, 0, len(defs))
	refRows := make([]map[string]any, 0)
	for _, d := range defs {
		name := strings.ToLower(d.Term)
		defRows = append(defRows, map[string]any{
			"name":       name,
			"display":    d.Term,
			"text":       d.DefinitionText,
			"section_id": d.SectionID,
			"confidence": d.Confidence,
		})
		for _, ref := range d.CrossReferences {
			refRows = append(refRows, map[string]any{
				"from": name,
				"to":   strings.ToLower(ref),
			})
		}
	}

	_, err := r.exec.ExecuteWrite(ctx, func(tx graph.Transaction) (any, error) {
		if _, err := tx.Run(ctx, `
			MERGE (j:Jurisdiction {code: $jurisdiction})
			MERGE (d:Document {id: $id})
			SET d.jurisdiction = $jurisdiction
			MERGE (d)-[:IN_JURISDICTION]->(j)
			WITH d
			OPTIONAL MATCH (d)-[def:DEFINES]->(:Term)
			DELETE def
		`, map[string]any{"id": documentID, "jurisdiction": jurisdiction}); err != nil {
			return nil, err
		}

		if len(defRows) > 0 {
			if _, err := tx.Run(ctx, `
				MATCH (d:Document {id: $id})
				UNWIND $defs AS row
				MERGE (t:Term {name: row.name})
				MERGE (d)-[def:DEFINES]->(t)
				SET def.text = row.text,
				    def.section_id = row.section_id,
				    def.confidence = row.confidence,
				    def.display = row.display
			`, map[string]any{"id": documentID, "defs": defRows}); err != nil {
				return nil, err
			}
		}

		if len(refRows) > 0 {
			if _, err := tx.Run(ctx, `
				UNWIND $refs AS row
				MERGE (a:Term {name: row.from})
				MERGE (b:Term {name: row.to})
				MERGE (a)-[:REFERS_TO]->(b)
			`, map[string]any{"refs": refRows}); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return err
	}

	r.logger.Debug("Upserted document term graph",
		logging.String("document_id", documentID),
		logging.Int("definitions", len(defRows)),
		logging.Int("references", len(refRows)))
	return nil
}

// GetTermDefinitions returns every stored definition of a term across
// documents and jurisdictions.
func (r *TermGraphRepository) GetTermDefinitions(ctx context.Context, term string) ([]TermDefinition, error) {
	result, err := r.exec.ExecuteRead(ctx, func(tx graph.Transaction) (any, error) {
		res, err := tx.Run(ctx, `
			MATCH (d:Document)-[def:DEFINES]->(t:Term {name: $term})
			RETURN coalesce(def.display, t.name) AS term,
			       d.id AS document_id,
			       d.jurisdiction AS jurisdiction,
			       def.section_id AS section_id,
			       def.text AS text,
			       def.confidence AS confidence
			ORDER BY d.jurisdiction, d.id
		`, map[string]any{"term": strings.ToLower(term)})
		if err != nil {
			return nil, err
		}
		return graph.CollectRecords(ctx, res, mapTermDefinition)
	})
	if err != nil {
		return nil, err
	}
	return result.([]TermDefinition), nil
}

// GetReferencedTerms returns the terms transitively referenced from a
// term's definition, up to depth hops. Depth is clamped to [1, 5].
func (r *TermGraphRepository) GetReferencedTerms(ctx context.Context, term string, depth int) ([]string, error) {
	if depth < 1 {
		depth = 1
	}
	if depth > 5 {
		depth = 5
	}
	// Variable-length bounds cannot be parameterized in Cypher.
	cypher := fmt.Sprintf(`
		MATCH (t:Term {name: $term})-[:REFERS_TO*1..%d]->(ref:Term)
		WHERE ref.name <> $term
		RETURN DISTINCT ref.name AS name
		ORDER BY name
	`, depth)

	result, err := r.exec.ExecuteRead(ctx, func(tx graph.Transaction) (any, error) {
		res, err := tx.Run(ctx, cypher, map[string]any{"term": strings.ToLower(term)})
		if err != nil {
			return nil, err
		}
		return graph.CollectRecords(ctx, res, mapStringColumn("name"))
	})
	if err != nil {
		return nil, err
	}
	return result.([]string), nil
}

// GetDanglingReferences returns terms that a document's definitions
// refer to but that no document defines.
func (r *TermGraphRepository) GetDanglingReferences(ctx context.Context, documentID string) ([]string, error) {
	result, err := r.exec.ExecuteRead(ctx, func(tx graph.Transaction) (any, error) {
		res, err := tx.Run(ctx, `
			MATCH (d:Document {id: $id})-[:DEFINES]->(:Term)-[:REFERS_TO]->(ref:Term)
			WHERE NOT (:Document)-[:DEFINES]->(ref)
			RETURN DISTINCT ref.name AS name
			ORDER BY name
		`, map[string]any{"id": documentID})
		if err != nil {
			return nil, err
		}
		return graph.CollectRecords(ctx, res, mapStringColumn("name"))
	})
	if err != nil {
		return nil, err
	}
	return result.([]string), nil
}

// GetMultiJurisdictionTerms returns terms defined in at least
// minJurisdictions distinct jurisdictions, most widespread first.
// These are the candidates for jurisdictional definition conflicts.
func (r *TermGraphRepository) GetMultiJurisdictionTerms(ctx context.Context, minJurisdictions int) ([]TermJurisdictions, error) {
	if minJurisdictions < 2 {
		minJurisdictions = 2
	}
	result, err := r.exec.ExecuteRead(ctx, func(tx graph.Transaction) (any, error) {
		res, err := tx.Run(ctx, `
			MATCH (d:Document)-[:DEFINES]->(t:Term)
			WITH t, collect(DISTINCT d.jurisdiction) AS jurisdictions
			WHERE size(jurisdictions) >= $min
			RETURN t.name AS term, jurisdictions
			ORDER BY size(jurisdictions) DESC, term
		`, map[string]any{"min": minJurisdictions})
		if err != nil {
			return nil, err
		}
		return graph.CollectRecords(ctx, res, mapTermJurisdictions)
	})
	if err != nil {
		return nil, err
	}
	return result.([]TermJurisdictions), nil
}

// DeleteDocumentGraph removes a document and any terms left without
// edges afterward.
func (r *TermGraphRepository) DeleteDocumentGraph(ctx context.Context, documentID string) error {
	_, err := r.exec.ExecuteWrite(ctx, func(tx graph.Transaction) (any, error) {
		if _, err := tx.Run(ctx, `
			MATCH (d:Document {id: $id})
			DETACH DELETE d
		`, map[string]any{"id": documentID}); err != nil {
			return nil, err
		}
		_, err := tx.Run(ctx, `
			MATCH (t:Term)
			WHERE NOT (t)--()
			DELETE t
		`, nil)
		return nil, err
	})
	return err
}

func mapTermDefinition(record *neo4j.Record) (TermDefinition, error) {
	return TermDefinition{
		Term:         stringValue(record, "term"),
		DocumentID:   stringValue(record, "document_id"),
		Jurisdiction: stringValue(record, "jurisdiction"),
		SectionID:    stringValue(record, "section_id"),
		Text:         stringValue(record, "text"),
		Confidence:   floatValue(record, "confidence"),
	}, nil
}

func mapTermJurisdictions(record *neo4j.Record) (TermJurisdictions, error) {
	raw, _ := record.Get("jurisdictions")
	values, _ := raw.([]any)
	jurisdictions := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			jurisdictions = append(jurisdictions, s)
		}
	}
	return TermJurisdictions{
		Term:          stringValue(record, "term"),
		Jurisdictions: jurisdictions,
	}, nil
}

func mapStringColumn(key string) func(*neo4j.Record) (string, error) {
	return func(record *neo4j.Record) (string, error) {
		return stringValue(record, key), nil
	}
}

func stringValue(record *neo4j.Record, key string) string {
	raw, ok := record.Get(key)
	if !ok || raw == nil {
		return ""
	}
	s, _ := raw.(string)
	return s
}

func floatValue(record *neo4j.Record, key string) float64 {
	raw, ok := record.Get(key)
	if !ok || raw == nil {
		return 0
	}
	switch v := raw.(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	default:
		return 0
	}
}

package repositories

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/turtacn/RegGap-Intelligence/internal/application/analysis"
	"github.com/turtacn/RegGap-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/RegGap-Intelligence/pkg/errors"
)

// DocumentRepository persists per-document analysis results.
type DocumentRepository struct {
	db     querier
	logger logging.Logger
}

// NewDocumentRepository creates a DocumentRepository.
func NewDocumentRepository(pool *pgxpool.Pool, log logging.Logger) *DocumentRepository {
	return &DocumentRepository{db: pool, logger: log.Named("document_repo")}
}

// SaveAnalysis upserts an analysis keyed by document ID.
func (r *DocumentRepository) SaveAnalysis(ctx context.Context, doc analysis.DocumentAnalysis) error {
	if doc.DocumentID == "" {
		return errors.New(errors.ErrCodeValidation, "document ID is required")
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal analysis")
	}

	query := `
		INSERT INTO document_analyses (
			document_id, jurisdiction, clause_count, definition_count,
			ambiguity_score, analysis, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (document_id) DO UPDATE SET
			jurisdiction     = EXCLUDED.jurisdiction,
			clause_count     = EXCLUDED.clause_count,
			definition_count = EXCLUDED.definition_count,
			ambiguity_score  = EXCLUDED.ambiguity_score,
			analysis         = EXCLUDED.analysis,
			updated_at       = EXCLUDED.updated_at`

	_, err = r.db.Exec(ctx, query,
		doc.DocumentID,
		doc.Jurisdiction,
		doc.Statistics.ClauseCount,
		doc.Statistics.DefinitionCount,
		doc.Ambiguity.AmbiguityScore,
		payload,
		time.Now().UTC(),
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to save analysis")
	}

	r.logger.Debug("saved document analysis",
		logging.String("document_id", doc.DocumentID),
		logging.String("jurisdiction", doc.Jurisdiction))
	return nil
}

// GetAnalysis loads the analysis for a document.
func (r *DocumentRepository) GetAnalysis(ctx context.Context, documentID string) (*analysis.DocumentAnalysis, error) {
	query := `SELECT analysis FROM document_analyses WHERE document_id = $1`

	doc, err := scanAnalysis(r.db.QueryRow(ctx, query, documentID))
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeSerialization) {
			return nil, err
		}
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, errors.New(errors.ErrCodeNotFound, "analysis not found")
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load analysis")
	}
	return &doc, nil
}

// ListAnalyses returns analyses filtered by jurisdiction, newest first.
// An empty jurisdiction matches all.
func (r *DocumentRepository) ListAnalyses(ctx context.Context, jurisdiction string, limit, offset int) ([]analysis.DocumentAnalysis, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT analysis FROM document_analyses
		WHERE ($1 = '' OR jurisdiction = $1)
		ORDER BY updated_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, jurisdiction, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list analyses")
	}
	defer rows.Close()

	var docs []analysis.DocumentAnalysis
	for rows.Next() {
		doc, err := scanAnalysis(rows)
		if err != nil {
			if errors.IsCode(err, errors.ErrCodeSerialization) {
				return nil, err
			}
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan analysis row")
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate analyses")
	}
	return docs, nil
}

// scanAnalysis decodes one JSONB analysis row.
func scanAnalysis(s scanner) (analysis.DocumentAnalysis, error) {
	var payload []byte
	if err := s.Scan(&payload); err != nil {
		return analysis.DocumentAnalysis{}, err
	}
	var doc analysis.DocumentAnalysis
	if err := json.Unmarshal(payload, &doc); err != nil {
		return analysis.DocumentAnalysis{}, errors.Wrap(err, errors.ErrCodeSerialization, "failed to unmarshal analysis")
	}
	return doc, nil
}

// DeleteAnalysis removes a stored analysis.
func (r *DocumentRepository) DeleteAnalysis(ctx context.Context, documentID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM document_analyses WHERE document_id = $1`, documentID)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to delete analysis")
	}
	if tag.RowsAffected() == 0 {
		return errors.New(errors.ErrCodeNotFound, "analysis not found")
	}
	return nil
}

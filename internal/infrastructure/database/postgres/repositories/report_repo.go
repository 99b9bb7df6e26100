package repositories

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/turtacn/RegGap-Intelligence/internal/application/reporting"
	"github.com/turtacn/RegGap-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/RegGap-Intelligence/pkg/errors"
)

// ReportSummary is a lightweight listing row for stored reports.
type ReportSummary struct {
	ReportID      string    `json:"report_id"`
	Jurisdictions []string  `json:"jurisdictions"`
	DocumentCount int       `json:"document_count"`
	ClauseCount   int       `json:"clause_count"`
	GeneratedAt   time.Time `json:"generated_at"`
}

// ReportRepository persists generated compliance reports.
type ReportRepository struct {
	db     querier
	logger logging.Logger
}

// NewReportRepository creates a ReportRepository.
func NewReportRepository(pool *pgxpool.Pool, log logging.Logger) *ReportRepository {
	return &ReportRepository{db: pool, logger: log.Named("report_repo")}
}

// SaveReport stores a compliance report, replacing any previous report
// with the same ID.
func (r *ReportRepository) SaveReport(ctx context.Context, report reporting.ComplianceReport) error {
	if report.ReportID == "" {
		return errors.New(errors.ErrCodeValidation, "report ID is required")
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal report")
	}
	jurisdictions, err := json.Marshal(report.JurisdictionsAnalyzed)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal jurisdictions")
	}

	query := `
		INSERT INTO compliance_reports (
			report_id, jurisdictions, document_count, clause_count,
			report, generated_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (report_id) DO UPDATE SET
			jurisdictions  = EXCLUDED.jurisdictions,
			document_count = EXCLUDED.document_count,
			clause_count   = EXCLUDED.clause_count,
			report         = EXCLUDED.report,
			generated_at   = EXCLUDED.generated_at`

	_, err = r.db.Exec(ctx, query,
		report.ReportID,
		jurisdictions,
		report.DocumentCount,
		report.ClauseCount,
		payload,
		report.GeneratedAt.UTC(),
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to save report")
	}

	r.logger.Debug("saved compliance report",
		logging.String("report_id", report.ReportID),
		logging.Int("document_count", report.DocumentCount))
	return nil
}

// GetReport loads a stored report by ID.
func (r *ReportRepository) GetReport(ctx context.Context, reportID string) (*reporting.ComplianceReport, error) {
	query := `SELECT report FROM compliance_reports WHERE report_id = $1`

	var payload []byte
	if err := r.db.QueryRow(ctx, query, reportID).Scan(&payload); err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.New(errors.ErrCodeReportNotFound, "report not found")
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load report")
	}

	var report reporting.ComplianceReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to unmarshal report")
	}
	return &report, nil
}

// ListReports returns report summaries, newest first.
func (r *ReportRepository) ListReports(ctx context.Context, limit, offset int) ([]ReportSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT report_id, jurisdictions, document_count, clause_count, generated_at
		FROM compliance_reports
		ORDER BY generated_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list reports")
	}
	defer rows.Close()

	var summaries []ReportSummary
	for rows.Next() {
		var (
			s       ReportSummary
			jurJSON []byte
		)
		if err := rows.Scan(&s.ReportID, &jurJSON, &s.DocumentCount, &s.ClauseCount, &s.GeneratedAt); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan report row")
		}
		if err := json.Unmarshal(jurJSON, &s.Jurisdictions); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to unmarshal jurisdictions")
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate reports")
	}
	return summaries, nil
}

// DeleteReport removes a stored report.
func (r *ReportRepository) DeleteReport(ctx context.Context, reportID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM compliance_reports WHERE report_id = $1`, reportID)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to delete report")
	}
	if tag.RowsAffected() == 0 {
		return errors.New(errors.ErrCodeReportNotFound, "report not found")
	}
	return nil
}

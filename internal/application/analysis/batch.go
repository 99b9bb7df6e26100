package analysis

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/RegGap-Intelligence/internal/application/reporting"
	"github.com/turtacn/RegGap-Intelligence/internal/comparison"
	"github.com/turtacn/RegGap-Intelligence/internal/domain/ambiguity"
	"github.com/turtacn/RegGap-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/RegGap-Intelligence/internal/risk"
	"github.com/turtacn/RegGap-Intelligence/pkg/errors"
)

// DocumentInput identifies one document in a batch run. Either Path or Text
// must be set; Text takes precedence when both are present.
type DocumentInput struct {
	Path         string
	Text         string
	ID           string
	Jurisdiction string
}

func (d DocumentInput) documentID() string {
	if d.ID != "" {
		return d.ID
	}
	if d.Path != "" {
		return d.Path
	}
	return d.Jurisdiction
}

// GenerateReport runs the full batch pipeline over the given documents:
// per-document analysis in parallel, a gap matrix across all jurisdiction
// profiles, enforcement scenarios over the most significant clauses, and
// severity ratings over the top gaps of each pair. The assembled report is
// persisted and announced when the corresponding ports are attached.
func (s *Service) GenerateReport(ctx context.Context, inputs []DocumentInput) (*reporting.ComplianceReport, error) {
	if len(inputs) < 2 {
		return nil, errors.New(errors.ErrCodeJurisdictionTooFew,
			"batch report needs at least two documents")
	}
	for _, in := range inputs {
		if in.Jurisdiction == "" {
			return nil, errors.New(errors.ErrCodeJurisdictionEmpty,
				"every document needs a jurisdiction")
		}
	}

	analyses, err := s.analyzeBatch(ctx, inputs)
	if err != nil {
		return nil, err
	}

	profiles := make([]*comparison.JurisdictionProfile, 0, len(analyses))
	jurisdictions := make([]string, 0, len(analyses))
	clauseCount := 0
	for _, a := range analyses {
		profile, err := s.Profile(a)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
		jurisdictions = append(jurisdictions, a.Jurisdiction)
		clauseCount += len(a.Clauses)
	}

	start := time.Now()
	matrix, err := s.comparator.GenerateGapMatrix(profiles)
	if err != nil {
		return nil, err
	}
	s.observeStage(StageComparison, start)
	if s.metrics != nil {
		total := 0
		for _, gaps := range matrix {
			total += len(gaps)
		}
		s.metrics.AddGapsFound(total)
	}

	start = time.Now()
	scenarios := s.modelScenarios(analyses)
	ratings := s.rateGaps(matrix)
	s.observeStage(StageRisk, start)

	ambiguityReports := make([]*ambiguity.Report, 0, len(analyses))
	for _, a := range analyses {
		ambiguityReports = append(ambiguityReports, a.AmbiguityReport)
	}

	start = time.Now()
	report := s.reportGenerator.GenerateComplianceReport(
		jurisdictions, matrix, ambiguityReports, scenarios, ratings,
		len(inputs), clauseCount)
	s.observeStage(StageReporting, start)

	if s.reports != nil {
		if err := s.reports.SaveReport(ctx, report); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeReportPersistFailed,
				"failed to persist compliance report")
		}
	}
	if s.publisher != nil {
		event := ReportGeneratedEvent{
			ReportID:      report.ReportID,
			Jurisdictions: jurisdictions,
			DocumentCount: len(inputs),
			GeneratedAt:   report.GeneratedAt,
		}
		if err := s.publisher.PublishReportGenerated(ctx, event); err != nil {
			s.logger.Warn("failed to publish report event",
				logging.String("report_id", report.ReportID), logging.Err(err))
		}
	}

	s.logger.Info("compliance report generated",
		logging.String("report_id", report.ReportID),
		logging.Int("documents", len(inputs)),
		logging.Int("clauses", clauseCount),
		logging.Int("scenarios", len(scenarios)),
		logging.Int("ratings", len(ratings)))
	return &report, nil
}

// analyzeBatch runs per-document analysis with bounded parallelism,
// preserving input order in the result.
func (s *Service) analyzeBatch(ctx context.Context, inputs []DocumentInput) ([]*DocumentAnalysis, error) {
	analyses := make([]*DocumentAnalysis, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			var (
				a   *DocumentAnalysis
				err error
			)
			if in.Text != "" {
				a, err = s.AnalyzeText(gctx, in.Text, in.documentID(), in.Jurisdiction)
			} else {
				a, err = s.AnalyzeFile(gctx, in.Path, in.Jurisdiction)
			}
			if err != nil {
				return err
			}
			analyses[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return analyses, nil
}

// modelScenarios builds enforcement scenarios for up to maxScenarioClauses
// clauses across the batch, pairing each clause with the ambiguities found
// in its own document.
func (s *Service) modelScenarios(analyses []*DocumentAnalysis) []risk.EnforcementScenario {
	var scenarios []risk.EnforcementScenario
	remaining := s.maxScenarioClauses
	for _, a := range analyses {
		if remaining <= 0 {
			break
		}
		clauses := a.Clauses
		if len(clauses) > remaining {
			clauses = clauses[:remaining]
		}
		var instances []ambiguity.Instance
		if a.AmbiguityReport != nil {
			instances = a.AmbiguityReport.Instances
		}
		for _, cl := range clauses {
			scenarios = append(scenarios, s.enforcementModel.ModelClauseRisk(cl, instances))
		}
		remaining -= len(clauses)
	}
	return scenarios
}

// rateGaps assesses the top maxRatedGaps gaps of every jurisdiction pair,
// visiting pairs in a stable order.
func (s *Service) rateGaps(matrix map[comparison.JurisdictionPair][]comparison.JurisdictionalGap) []risk.SeverityRating {
	pairs := make([]comparison.JurisdictionPair, 0, len(matrix))
	for pair := range matrix {
		pairs = append(pairs, pair)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].A != pairs[j].A {
			return pairs[i].A < pairs[j].A
		}
		return pairs[i].B < pairs[j].B
	})

	var ratings []risk.SeverityRating
	for _, pair := range pairs {
		gaps := matrix[pair]
		if len(gaps) > s.maxRatedGaps {
			gaps = gaps[:s.maxRatedGaps]
		}
		for _, gap := range gaps {
			ratings = append(ratings, s.severityAssessor.AssessGap(gap))
		}
	}
	return ratings
}

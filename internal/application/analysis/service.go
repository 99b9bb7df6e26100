// Package analysis orchestrates the regulatory analysis pipeline: ingestion,
// normalization, clause and definition extraction, ambiguity detection,
// jurisdictional comparison, risk modeling, and report assembly.
package analysis

import (
	"context"
	"sort"
	"time"

	"github.com/turtacn/RegGap-Intelligence/internal/application/reporting"
	"github.com/turtacn/RegGap-Intelligence/internal/comparison"
	"github.com/turtacn/RegGap-Intelligence/internal/domain/ambiguity"
	"github.com/turtacn/RegGap-Intelligence/internal/domain/clause"
	"github.com/turtacn/RegGap-Intelligence/internal/domain/definition"
	"github.com/turtacn/RegGap-Intelligence/internal/domain/entity"
	"github.com/turtacn/RegGap-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/RegGap-Intelligence/internal/ingestion"
	"github.com/turtacn/RegGap-Intelligence/internal/risk"
	"github.com/turtacn/RegGap-Intelligence/pkg/errors"
)

// AnalysisCompletedEvent is published after a document analysis finishes.
type AnalysisCompletedEvent struct {
	DocumentID      string    `json:"document_id"`
	Jurisdiction    string    `json:"jurisdiction"`
	ClauseCount     int       `json:"clause_count"`
	DefinitionCount int       `json:"definition_count"`
	AmbiguityScore  float64   `json:"ambiguity_score"`
	CompletedAt     time.Time `json:"completed_at"`
}

// ReportGeneratedEvent is published after a compliance report is assembled.
type ReportGeneratedEvent struct {
	ReportID      string    `json:"report_id"`
	Jurisdictions []string  `json:"jurisdictions"`
	DocumentCount int       `json:"document_count"`
	GeneratedAt   time.Time `json:"generated_at"`
}

// EventPublisher pushes pipeline events to the message bus. Implementations
// must be safe for concurrent use.
type EventPublisher interface {
	PublishAnalysisCompleted(ctx context.Context, event AnalysisCompletedEvent) error
	PublishReportGenerated(ctx context.Context, event ReportGeneratedEvent) error
}

// PipelineMetrics records pipeline observability counters.
type PipelineMetrics interface {
	ObserveStageDuration(stage string, d time.Duration)
	AddDocumentsAnalyzed(n int)
	AddClausesExtracted(n int)
	AddGapsFound(n int)
	AddAmbiguityInstances(n int)
}

// ReportRepository persists compliance reports.
type ReportRepository interface {
	SaveReport(ctx context.Context, report reporting.ComplianceReport) error
}

// Pipeline stage names used with PipelineMetrics.
const (
	StageIngestion  = "ingestion"
	StageExtraction = "extraction"
	StageAmbiguity  = "ambiguity"
	StageComparison = "comparison"
	StageRisk       = "risk"
	StageReporting  = "reporting"
)

// AnalysisDisclaimer accompanies every single-document analysis.
const AnalysisDisclaimer = "This analysis is for informational purposes only. " +
	"Consult qualified legal counsel before making compliance decisions."

// ComparisonDisclaimer accompanies every pairwise comparison.
const ComparisonDisclaimer = "This comparison is for informational purposes only. " +
	"All gaps require qualified legal review before any compliance decisions."

// DocumentStatistics summarizes the text-level shape of one document.
type DocumentStatistics struct {
	WordCount       int `json:"word_count"`
	SentenceCount   int `json:"sentence_count"`
	ClauseCount     int `json:"clause_count"`
	DefinitionCount int `json:"definition_count"`
	SectionCount    int `json:"section_count"`
	EntityCount     int `json:"entity_count"`
}

// ClauseBreakdown counts extracted clauses by type.
type ClauseBreakdown struct {
	Obligations  int `json:"obligations"`
	Prohibitions int `json:"prohibitions"`
	Permissions  int `json:"permissions"`
	Conditions   int `json:"conditions"`
	Exceptions   int `json:"exceptions"`
	Definitions  int `json:"definitions"`
}

// AmbiguityIssue is one of the top ambiguities surfaced in an analysis.
type AmbiguityIssue struct {
	Type     string  `json:"type"`
	Phrase   string  `json:"phrase"`
	Severity float64 `json:"severity"`
}

// AmbiguitySummary condenses the ambiguity report for analysis output.
type AmbiguitySummary struct {
	TotalInstances    int              `json:"total_instances"`
	HighSeverityCount int              `json:"high_severity_count"`
	AmbiguityScore    float64          `json:"ambiguity_score"`
	TopIssues         []AmbiguityIssue `json:"top_issues"`
}

// DocumentAnalysis is the full result of analyzing one document.
type DocumentAnalysis struct {
	DocumentID      string                    `json:"document_id"`
	Jurisdiction    string                    `json:"jurisdiction"`
	Statistics      DocumentStatistics        `json:"statistics"`
	ClauseBreakdown ClauseBreakdown           `json:"clauses"`
	Clauses         []clause.RegulatoryClause `json:"clause_details,omitempty"`
	Definitions     []definition.Definition   `json:"definitions,omitempty"`
	Entities        []entity.RegulatoryEntity `json:"entities,omitempty"`
	Ambiguity       AmbiguitySummary          `json:"ambiguity"`
	AmbiguityReport *ambiguity.Report         `json:"-"`
	Recommendations []string                  `json:"recommendations"`
	Disclaimer      string                    `json:"disclaimer"`
}

// TopGapDetail is one of the most severe gaps in a comparison result.
type TopGapDetail struct {
	Type            string   `json:"type"`
	Description     string   `json:"description"`
	Severity        float64  `json:"severity"`
	Recommendations []string `json:"recommendations"`
}

// ComparisonResult is the outcome of a pairwise document comparison.
type ComparisonResult struct {
	JurisdictionA    string                         `json:"jurisdiction_a"`
	JurisdictionB    string                         `json:"jurisdiction_b"`
	TotalGaps        int                            `json:"total_gaps"`
	HighSeverityGaps int                            `json:"high_severity_gaps"`
	RequiresReview   int                            `json:"requires_review"`
	GapsByType       map[string]int                 `json:"gaps_by_type"`
	TopGaps          []TopGapDetail                 `json:"top_gaps"`
	Gaps             []comparison.JurisdictionalGap `json:"-"`
	Disclaimer       string                         `json:"disclaimer"`
}

// Service wires the full pipeline. All injected collaborators are optional
// except the logger; absent ports are skipped.
type Service struct {
	logger logging.Logger

	loader           *ingestion.UniversalLoader
	normalizer       *ingestion.TextNormalizer
	clauseExtractor  *clause.ClauseExtractor
	defExtractor     *definition.Extractor
	entityRecognizer *entity.Recognizer
	comparator       *comparison.JurisdictionalComparator
	enforcementModel *risk.EnforcementModel
	severityAssessor *risk.SeverityAssessor
	reportGenerator  *reporting.ReportGenerator

	publisher   EventPublisher
	metrics     PipelineMetrics
	reports     ReportRepository
	concurrency int

	maxScenarioClauses int
	maxRatedGaps       int
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithEventPublisher attaches a message-bus publisher.
func WithEventPublisher(p EventPublisher) ServiceOption {
	return func(s *Service) { s.publisher = p }
}

// WithPipelineMetrics attaches a metrics recorder.
func WithPipelineMetrics(m PipelineMetrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// WithReportRepository attaches report persistence.
func WithReportRepository(r ReportRepository) ServiceOption {
	return func(s *Service) { s.reports = r }
}

// WithComparator overrides the jurisdictional comparator, letting callers
// supply one backed by an embedding scorer.
func WithComparator(c *comparison.JurisdictionalComparator) ServiceOption {
	return func(s *Service) {
		if c != nil {
			s.comparator = c
		}
	}
}

// WithEnforcementModel overrides the enforcement model.
func WithEnforcementModel(m *risk.EnforcementModel) ServiceOption {
	return func(s *Service) {
		if m != nil {
			s.enforcementModel = m
		}
	}
}

// WithConcurrency bounds batch parallelism. Non-positive values are ignored.
func WithConcurrency(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// NewService builds a pipeline service with default components.
func NewService(logger logging.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		logger:             logger,
		loader:             ingestion.NewUniversalLoader(logger),
		normalizer:         ingestion.NewTextNormalizer(),
		clauseExtractor:    clause.NewClauseExtractor(),
		defExtractor:       definition.NewExtractor(),
		entityRecognizer:   entity.NewRecognizer(),
		comparator:         comparison.NewJurisdictionalComparator(nil),
		enforcementModel:   risk.NewEnforcementModel(),
		severityAssessor:   risk.NewSeverityAssessor(),
		reportGenerator:    reporting.NewReportGenerator(),
		concurrency:        4,
		maxScenarioClauses: 50,
		maxRatedGaps:       20,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AnalyzeFile loads a document from disk and analyzes it.
func (s *Service) AnalyzeFile(ctx context.Context, path, jurisdiction string) (*DocumentAnalysis, error) {
	start := time.Now()
	doc, err := s.loader.Load(path, jurisdiction)
	if err != nil {
		return nil, err
	}
	s.observeStage(StageIngestion, start)
	return s.AnalyzeText(ctx, doc.Content, path, jurisdiction)
}

// AnalyzeText runs the single-document pipeline over raw text.
func (s *Service) AnalyzeText(ctx context.Context, text, documentID, jurisdiction string) (*DocumentAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTimeout, "analysis cancelled")
	}

	start := time.Now()
	normalized := s.normalizer.Normalize(text)
	clauses := s.clauseExtractor.Extract(normalized.Normalized, "")
	definitions := s.defExtractor.Extract(normalized.Normalized, documentID, jurisdiction)
	entities := s.entityRecognizer.Recognize(normalized.Normalized)
	s.observeStage(StageExtraction, start)

	start = time.Now()
	terms := make([]string, 0, len(definitions))
	for _, d := range definitions {
		terms = append(terms, d.Term)
	}
	detector := ambiguity.NewDetector(ambiguity.WithDefinedTerms(terms))
	ambReport := detector.Detect(normalized.Normalized, documentID, jurisdiction)
	s.observeStage(StageAmbiguity, start)

	result := &DocumentAnalysis{
		DocumentID:   documentID,
		Jurisdiction: jurisdiction,
		Statistics: DocumentStatistics{
			WordCount:       normalized.WordCount,
			SentenceCount:   normalized.SentenceCount,
			ClauseCount:     len(clauses),
			DefinitionCount: len(definitions),
			SectionCount:    len(normalized.Sections),
			EntityCount:     len(entities),
		},
		ClauseBreakdown: breakdownClauses(clauses),
		Clauses:         clauses,
		Definitions:     definitions,
		Entities:        entities,
		Ambiguity:       summarizeAmbiguity(ambReport, 5),
		AmbiguityReport: ambReport,
		Recommendations: ambReport.Recommendations,
		Disclaimer:      AnalysisDisclaimer,
	}

	if s.metrics != nil {
		s.metrics.AddDocumentsAnalyzed(1)
		s.metrics.AddClausesExtracted(len(clauses))
		s.metrics.AddAmbiguityInstances(ambReport.TotalInstances)
	}
	if s.publisher != nil {
		event := AnalysisCompletedEvent{
			DocumentID:      documentID,
			Jurisdiction:    jurisdiction,
			ClauseCount:     len(clauses),
			DefinitionCount: len(definitions),
			AmbiguityScore:  ambReport.AmbiguityScore,
			CompletedAt:     time.Now(),
		}
		if err := s.publisher.PublishAnalysisCompleted(ctx, event); err != nil {
			s.logger.Warn("failed to publish analysis event",
				logging.String("document_id", documentID), logging.Err(err))
		}
	}

	s.logger.Info("document analyzed",
		logging.String("document_id", documentID),
		logging.String("jurisdiction", jurisdiction),
		logging.Int("clauses", len(clauses)),
		logging.Int("definitions", len(definitions)),
		logging.Int("ambiguities", ambReport.TotalInstances))
	return result, nil
}

// Profile builds a jurisdiction profile from an analyzed document.
func (s *Service) Profile(analysis *DocumentAnalysis) (*comparison.JurisdictionProfile, error) {
	return comparison.NewJurisdictionProfile(analysis.Jurisdiction, analysis.Clauses, analysis.Definitions)
}

// CompareTexts analyzes both texts and reports the gaps between them.
func (s *Service) CompareTexts(ctx context.Context, textA, textB, jurisdictionA, jurisdictionB string) (*ComparisonResult, error) {
	analysisA, err := s.AnalyzeText(ctx, textA, jurisdictionA, jurisdictionA)
	if err != nil {
		return nil, err
	}
	analysisB, err := s.AnalyzeText(ctx, textB, jurisdictionB, jurisdictionB)
	if err != nil {
		return nil, err
	}
	return s.compareAnalyses(analysisA, analysisB)
}

// CompareFiles loads and analyzes both documents, then compares them.
func (s *Service) CompareFiles(ctx context.Context, pathA, pathB, jurisdictionA, jurisdictionB string) (*ComparisonResult, error) {
	analysisA, err := s.AnalyzeFile(ctx, pathA, jurisdictionA)
	if err != nil {
		return nil, err
	}
	analysisB, err := s.AnalyzeFile(ctx, pathB, jurisdictionB)
	if err != nil {
		return nil, err
	}
	return s.compareAnalyses(analysisA, analysisB)
}

func (s *Service) compareAnalyses(analysisA, analysisB *DocumentAnalysis) (*ComparisonResult, error) {
	profileA, err := s.Profile(analysisA)
	if err != nil {
		return nil, err
	}
	profileB, err := s.Profile(analysisB)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	gaps, err := s.comparator.Compare(profileA, profileB)
	if err != nil {
		return nil, err
	}
	s.observeStage(StageComparison, start)
	if s.metrics != nil {
		s.metrics.AddGapsFound(len(gaps))
	}

	result := &ComparisonResult{
		JurisdictionA: analysisA.Jurisdiction,
		JurisdictionB: analysisB.Jurisdiction,
		TotalGaps:     len(gaps),
		GapsByType:    map[string]int{},
		Gaps:          gaps,
		Disclaimer:    ComparisonDisclaimer,
	}
	for _, gap := range gaps {
		result.GapsByType[gap.GapType.String()]++
		if gap.Severity >= 0.7 {
			result.HighSeverityGaps++
		}
		if gap.RequiresLegalReview {
			result.RequiresReview++
		}
	}

	sorted := make([]comparison.JurisdictionalGap, len(gaps))
	copy(sorted, gaps)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Severity > sorted[j].Severity
	})
	if len(sorted) > 10 {
		sorted = sorted[:10]
	}
	for _, gap := range sorted {
		result.TopGaps = append(result.TopGaps, TopGapDetail{
			Type:            gap.GapType.String(),
			Description:     gap.Description,
			Severity:        gap.Severity,
			Recommendations: gap.Recommendations,
		})
	}

	s.logger.Info("documents compared",
		logging.String("jurisdiction_a", analysisA.Jurisdiction),
		logging.String("jurisdiction_b", analysisB.Jurisdiction),
		logging.Int("gaps", len(gaps)))
	return result, nil
}

func (s *Service) observeStage(stage string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveStageDuration(stage, time.Since(start))
	}
}

func breakdownClauses(clauses []clause.RegulatoryClause) ClauseBreakdown {
	var b ClauseBreakdown
	for _, c := range clauses {
		switch c.ClauseType {
		case clause.ClauseTypeObligation:
			b.Obligations++
		case clause.ClauseTypeProhibition:
			b.Prohibitions++
		case clause.ClauseTypePermission:
			b.Permissions++
		case clause.ClauseTypeCondition:
			b.Conditions++
		case clause.ClauseTypeException:
			b.Exceptions++
		case clause.ClauseTypeDefinition:
			b.Definitions++
		}
	}
	return b
}

func summarizeAmbiguity(report *ambiguity.Report, topN int) AmbiguitySummary {
	summary := AmbiguitySummary{
		TotalInstances:    report.TotalInstances,
		HighSeverityCount: report.HighSeverityCount,
		AmbiguityScore:    report.AmbiguityScore,
	}
	ranked := ambiguity.RankInstances(report.Instances)
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	for _, inst := range ranked {
		summary.TopIssues = append(summary.TopIssues, AmbiguityIssue{
			Type:     inst.AmbiguityType.String(),
			Phrase:   inst.TriggerPhrase,
			Severity: inst.Severity,
		})
	}
	return summary
}

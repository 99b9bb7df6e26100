// Package reporting assembles analysis output into compliance reports. Every
// report leads with disclaimers and flags findings for legal review; nothing
// here is prescriptive compliance advice.
package reporting

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/turtacn/RegGap-Intelligence/internal/comparison"
	"github.com/turtacn/RegGap-Intelligence/internal/domain/ambiguity"
	"github.com/turtacn/RegGap-Intelligence/internal/risk"
)

// GapSummary aggregates the gaps found between one jurisdiction pair.
type GapSummary struct {
	JurisdictionA       string         `json:"jurisdiction_a"`
	JurisdictionB       string         `json:"jurisdiction_b"`
	TotalGaps           int            `json:"total_gaps"`
	GapsByType          map[string]int `json:"gaps_by_type"`
	HighSeverityCount   int            `json:"high_severity_count"`
	RequiresReviewCount int            `json:"requires_review_count"`
	TopGaps             []TopGap       `json:"top_gaps"`
}

// TopGap is one of the most severe gaps in a summary.
type TopGap struct {
	Type            string   `json:"type"`
	Description     string   `json:"description"`
	Severity        float64  `json:"severity"`
	Recommendations []string `json:"recommendations"`
}

// AmbiguityDigest condenses a document-level ambiguity report for inclusion
// in a compliance report.
type AmbiguityDigest struct {
	DocumentID        string  `json:"document_id"`
	Jurisdiction      string  `json:"jurisdiction"`
	TotalInstances    int     `json:"total_instances"`
	AmbiguityScore    float64 `json:"ambiguity_score"`
	HighSeverityCount int     `json:"high_severity_count"`
}

// ScenarioDigest condenses an enforcement scenario for report inclusion.
type ScenarioDigest struct {
	ScenarioID          string  `json:"scenario_id"`
	Description         string  `json:"description"`
	Likelihood          string  `json:"likelihood"`
	SeverityScore       float64 `json:"severity_score"`
	RequiresLegalReview bool    `json:"requires_legal_review"`
}

// SeveritySummary aggregates severity ratings across a report.
type SeveritySummary struct {
	TotalRated                 int            `json:"total_rated"`
	CountsByLevel              map[string]int `json:"counts_by_level,omitempty"`
	AverageScore               float64        `json:"average_score"`
	CriticalCount              int            `json:"critical_count"`
	HighCount                  int            `json:"high_count"`
	RequiresImmediateAttention int            `json:"requires_immediate_attention"`
	RequiresLegalReview        int            `json:"requires_legal_review"`
	Message                    string         `json:"message,omitempty"`
}

// ComplianceReport is the full analysis deliverable.
type ComplianceReport struct {
	ReportID              string            `json:"report_id"`
	GeneratedAt           time.Time         `json:"generated_at"`
	JurisdictionsAnalyzed []string          `json:"jurisdictions_analyzed"`
	DocumentCount         int               `json:"document_count"`
	ClauseCount           int               `json:"clause_count"`
	GapSummaries          []GapSummary      `json:"gap_summaries"`
	AmbiguityReports      []AmbiguityDigest `json:"ambiguity_reports"`
	EnforcementScenarios  []ScenarioDigest  `json:"enforcement_scenarios"`
	SeveritySummary       SeveritySummary   `json:"severity_summary"`
	Recommendations       []string          `json:"recommendations"`
	Disclaimers           []string          `json:"disclaimers"`
}

// ReviewItem is one finding flagged for qualified legal review.
type ReviewItem struct {
	Type          string   `json:"type"`
	Category      string   `json:"category"`
	Description   string   `json:"description"`
	Context       string   `json:"context,omitempty"`
	Severity      float64  `json:"severity"`
	Jurisdictions []string `json:"jurisdictions,omitempty"`
	Likelihood    string   `json:"likelihood,omitempty"`
	Priority      string   `json:"priority"`
}

// standardDisclaimers lead every generated report.
var standardDisclaimers = []string{
	"This report is for informational purposes only and does not constitute legal advice.",
	"All findings require review by qualified legal counsel before any compliance decisions.",
	"Risk assessments are based on conservative modeling and may not reflect actual enforcement outcomes.",
	"This analysis may not capture all relevant regulatory requirements or recent changes.",
	"The tool's interpretations should not be relied upon as authoritative regulatory guidance.",
}

// DefaultReportPrefix prefixes sequential report identifiers.
const DefaultReportPrefix = "REG-GAP"

// DefaultTopGaps caps how many gaps a summary details.
const DefaultTopGaps = 5

// now is swapped out in tests.
var now = time.Now

// ReportGenerator builds compliance reports with sequential identifiers.
// Safe for concurrent use.
type ReportGenerator struct {
	prefix        string
	reportCounter atomic.Uint64
}

// GeneratorOption configures a ReportGenerator.
type GeneratorOption func(*ReportGenerator)

// WithReportPrefix overrides the report id prefix.
func WithReportPrefix(prefix string) GeneratorOption {
	return func(g *ReportGenerator) {
		if prefix != "" {
			g.prefix = prefix
		}
	}
}

// NewReportGenerator builds a generator with the default prefix.
func NewReportGenerator(opts ...GeneratorOption) *ReportGenerator {
	g := &ReportGenerator{prefix: DefaultReportPrefix}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GenerateGapSummary aggregates gaps between one jurisdiction pair, keeping
// detail only for the topN most severe.
func (g *ReportGenerator) GenerateGapSummary(gaps []comparison.JurisdictionalGap, jurisdictionA, jurisdictionB string, topN int) GapSummary {
	if topN <= 0 {
		topN = DefaultTopGaps
	}

	summary := GapSummary{
		JurisdictionA: jurisdictionA,
		JurisdictionB: jurisdictionB,
		TotalGaps:     len(gaps),
		GapsByType:    map[string]int{},
	}

	for _, gap := range gaps {
		summary.GapsByType[gap.GapType.String()]++
		if gap.Severity >= 0.7 {
			summary.HighSeverityCount++
		}
		if gap.RequiresLegalReview {
			summary.RequiresReviewCount++
		}
	}

	sorted := make([]comparison.JurisdictionalGap, len(gaps))
	copy(sorted, gaps)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Severity > sorted[j].Severity
	})
	if len(sorted) > topN {
		sorted = sorted[:topN]
	}
	for _, gap := range sorted {
		recs := gap.Recommendations
		if len(recs) > 2 {
			recs = recs[:2]
		}
		summary.TopGaps = append(summary.TopGaps, TopGap{
			Type:            gap.GapType.String(),
			Description:     gap.Description,
			Severity:        gap.Severity,
			Recommendations: recs,
		})
	}
	return summary
}

// GenerateComplianceReport assembles a full report from the outputs of the
// analysis pipeline. Gap summaries are emitted in sorted pair order so report
// content is deterministic.
func (g *ReportGenerator) GenerateComplianceReport(
	jurisdictions []string,
	gapMatrix map[comparison.JurisdictionPair][]comparison.JurisdictionalGap,
	ambiguityReports []*ambiguity.Report,
	scenarios []risk.EnforcementScenario,
	ratings []risk.SeverityRating,
	documentCount, clauseCount int,
) ComplianceReport {
	reportID := fmt.Sprintf("%s-%05d", g.prefix, g.reportCounter.Add(1))

	pairs := make([]comparison.JurisdictionPair, 0, len(gapMatrix))
	for pair := range gapMatrix {
		pairs = append(pairs, pair)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].A != pairs[j].A {
			return pairs[i].A < pairs[j].A
		}
		return pairs[i].B < pairs[j].B
	})

	var gapSummaries []GapSummary
	for _, pair := range pairs {
		gapSummaries = append(gapSummaries, g.GenerateGapSummary(gapMatrix[pair], pair.A, pair.B, DefaultTopGaps))
	}

	var ambDigests []AmbiguityDigest
	for _, ar := range ambiguityReports {
		ambDigests = append(ambDigests, AmbiguityDigest{
			DocumentID:        ar.DocumentID,
			Jurisdiction:      ar.Jurisdiction,
			TotalInstances:    ar.TotalInstances,
			AmbiguityScore:    ar.AmbiguityScore,
			HighSeverityCount: ar.HighSeverityCount,
		})
	}

	var scenarioDigests []ScenarioDigest
	for _, s := range scenarios {
		scenarioDigests = append(scenarioDigests, ScenarioDigest{
			ScenarioID:          s.ScenarioID,
			Description:         s.Description,
			Likelihood:          s.Likelihood.String(),
			SeverityScore:       s.SeverityScore,
			RequiresLegalReview: s.RequiresLegalReview,
		})
	}

	return ComplianceReport{
		ReportID:              reportID,
		GeneratedAt:           now(),
		JurisdictionsAnalyzed: jurisdictions,
		DocumentCount:         documentCount,
		ClauseCount:           clauseCount,
		GapSummaries:          gapSummaries,
		AmbiguityReports:      ambDigests,
		EnforcementScenarios:  scenarioDigests,
		SeveritySummary:       summarizeSeverity(ratings),
		Recommendations:       buildRecommendations(gapSummaries, ambiguityReports, scenarios),
		Disclaimers:           standardDisclaimers,
	}
}

func summarizeSeverity(ratings []risk.SeverityRating) SeveritySummary {
	if len(ratings) == 0 {
		return SeveritySummary{Message: "No severity ratings available"}
	}

	counts := map[string]int{}
	for l := risk.SeverityInformational; l <= risk.SeverityCritical; l++ {
		counts[l.String()] = 0
	}

	summary := SeveritySummary{
		TotalRated:    len(ratings),
		CountsByLevel: counts,
	}

	var total float64
	for _, r := range ratings {
		counts[r.Level.String()]++
		total += r.Score
		if r.RequiresImmediateAttention {
			summary.RequiresImmediateAttention++
		}
		if r.RequiresLegalReview {
			summary.RequiresLegalReview++
		}
	}
	summary.AverageScore = round3(total / float64(len(ratings)))
	summary.CriticalCount = counts[risk.SeverityCritical.String()]
	summary.HighCount = counts[risk.SeverityHigh.String()]
	return summary
}

// buildRecommendations emits high-level review pointers. They name areas to
// examine, never actions to take.
func buildRecommendations(
	gapSummaries []GapSummary,
	ambiguityReports []*ambiguity.Report,
	scenarios []risk.EnforcementScenario,
) []string {
	recommendations := []string{
		"PRIORITY: Engage qualified legal counsel to review all high-severity findings",
	}

	totalHighSeverity := 0
	for _, gs := range gapSummaries {
		totalHighSeverity += gs.HighSeverityCount
	}
	if totalHighSeverity > 0 {
		recommendations = append(recommendations, fmt.Sprintf(
			"GAPS: %d high-severity jurisdictional gaps identified - "+
				"prioritize legal review of cross-border compliance", totalHighSeverity))
	}

	totalAmbiguity := 0
	for _, ar := range ambiguityReports {
		totalAmbiguity += ar.HighSeverityCount
	}
	if totalAmbiguity > 5 {
		recommendations = append(recommendations, fmt.Sprintf(
			"AMBIGUITY: %d high-severity ambiguities detected - "+
				"document interpretation rationale for all ambiguous terms", totalAmbiguity))
	}

	highRisk := 0
	for _, s := range scenarios {
		if s.SeverityScore >= 0.7 {
			highRisk++
		}
	}
	if highRisk > 0 {
		recommendations = append(recommendations, fmt.Sprintf(
			"ENFORCEMENT: %d high-risk enforcement scenarios modeled - "+
				"review and strengthen compliance controls", highRisk))
	}

	recommendations = append(recommendations,
		"DOCUMENTATION: Maintain records of compliance interpretation decisions and rationale")
	return recommendations
}

// GenerateMarkdownReport renders a report as markdown for human review.
func (g *ReportGenerator) GenerateMarkdownReport(report ComplianceReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Regulatory Gap Analysis Report\n")
	fmt.Fprintf(&b, "**Report ID:** %s\n", report.ReportID)
	fmt.Fprintf(&b, "**Generated:** %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04:05"))

	b.WriteString("## Important Disclaimers\n")
	for _, d := range report.Disclaimers {
		fmt.Fprintf(&b, "- %s\n", d)
	}
	b.WriteString("\n")

	totalGaps := 0
	for _, gs := range report.GapSummaries {
		totalGaps += gs.TotalGaps
	}
	b.WriteString("## Executive Summary\n")
	fmt.Fprintf(&b, "- **Jurisdictions Analyzed:** %s\n", strings.Join(report.JurisdictionsAnalyzed, ", "))
	fmt.Fprintf(&b, "- **Documents Analyzed:** %d\n", report.DocumentCount)
	fmt.Fprintf(&b, "- **Clauses Extracted:** %d\n", report.ClauseCount)
	fmt.Fprintf(&b, "- **Total Gaps Identified:** %d\n\n", totalGaps)

	b.WriteString("## Severity Summary\n")
	if report.SeveritySummary.Message == "" {
		fmt.Fprintf(&b, "- **Critical Issues:** %d\n", report.SeveritySummary.CriticalCount)
		fmt.Fprintf(&b, "- **High Priority Issues:** %d\n", report.SeveritySummary.HighCount)
		fmt.Fprintf(&b, "- **Requires Immediate Attention:** %d\n", report.SeveritySummary.RequiresImmediateAttention)
		fmt.Fprintf(&b, "- **Requires Legal Review:** %d\n", report.SeveritySummary.RequiresLegalReview)
	}
	b.WriteString("\n")

	b.WriteString("## Jurisdictional Gap Analysis\n")
	for _, gs := range report.GapSummaries {
		fmt.Fprintf(&b, "### %s vs %s\n", gs.JurisdictionA, gs.JurisdictionB)
		fmt.Fprintf(&b, "- Total Gaps: %d\n", gs.TotalGaps)
		fmt.Fprintf(&b, "- High Severity: %d\n", gs.HighSeverityCount)
		fmt.Fprintf(&b, "- Requires Review: %d\n", gs.RequiresReviewCount)
		if len(gs.TopGaps) > 0 {
			b.WriteString("#### Top Issues\n")
			for _, gap := range gs.TopGaps {
				fmt.Fprintf(&b, "- **%s** (Severity: %.2f)\n", gap.Type, gap.Severity)
				fmt.Fprintf(&b, "  - %s\n", gap.Description)
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("## Recommendations\n")
	b.WriteString("*Note: These are areas for review, not prescriptive actions.*\n\n")
	for _, rec := range report.Recommendations {
		fmt.Fprintf(&b, "- %s\n", rec)
	}
	b.WriteString("\n")

	b.WriteString("---\n")
	b.WriteString("*This report was generated by RegGap-Intelligence. It does not constitute legal advice.*")

	return b.String()
}

// GenerateNeedsReviewList flattens gaps, high-severity ambiguities, and
// enforcement scenarios into one review queue sorted HIGH priority first,
// then by severity.
func (g *ReportGenerator) GenerateNeedsReviewList(
	gaps []comparison.JurisdictionalGap,
	ambiguities []ambiguity.Instance,
	scenarios []risk.EnforcementScenario,
) []ReviewItem {
	var items []ReviewItem

	for _, gap := range gaps {
		if !gap.RequiresLegalReview {
			continue
		}
		items = append(items, ReviewItem{
			Type:          "jurisdictional_gap",
			Category:      gap.GapType.String(),
			Description:   gap.Description,
			Severity:      gap.Severity,
			Jurisdictions: []string{gap.JurisdictionA, gap.JurisdictionB},
			Priority:      priorityFor(gap.Severity),
		})
	}

	for _, amb := range ambiguities {
		if amb.Severity < 0.6 {
			continue
		}
		context := amb.Context
		if len(context) > 100 {
			context = context[:100] + "..."
		}
		items = append(items, ReviewItem{
			Type:        "ambiguity",
			Category:    amb.AmbiguityType.String(),
			Description: amb.TriggerPhrase,
			Context:     context,
			Severity:    amb.Severity,
			Priority:    priorityFor(amb.Severity),
		})
	}

	for _, s := range scenarios {
		if !s.RequiresLegalReview {
			continue
		}
		items = append(items, ReviewItem{
			Type:        "enforcement_scenario",
			Category:    s.ScenarioID,
			Description: s.Description,
			Severity:    s.SeverityScore,
			Likelihood:  s.Likelihood.String(),
			Priority:    priorityFor(s.SeverityScore),
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Priority != items[j].Priority {
			return items[i].Priority == "HIGH"
		}
		return items[i].Severity > items[j].Severity
	})
	return items
}

func priorityFor(severity float64) string {
	if severity >= 0.7 {
		return "HIGH"
	}
	return "MEDIUM"
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

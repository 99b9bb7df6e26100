package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turtacn/RegGap-Intelligence/internal/application/analysis"
	"github.com/turtacn/RegGap-Intelligence/internal/application/reporting"
	"github.com/turtacn/RegGap-Intelligence/internal/comparison"
	"github.com/turtacn/RegGap-Intelligence/internal/domain/ambiguity"
)

// Synthetic regulations for the demonstration run. Both are fictional
// but use the register and structure of real securities regulation.
const (
	demoUSSECText = `Section 1. Definitions. For purposes of this part, "broker-dealer" ` +
		`means any person engaged in the business of effecting transactions in ` +
		`securities for the account of others. "Customer funds" means all funds ` +
		`received or held by a broker-dealer on behalf of customers, including ` +
		`customer securities held in safekeeping.

Section 2. Record keeping. Every broker-dealer shall maintain current books ` +
		`and records relating to its business, and must preserve such records for ` +
		`a period of not less than six years.

Section 3. Reporting. A broker-dealer must notify the Commission promptly, ` +
		`and in any event within 30 days, upon discovery of any material ` +
		`discrepancy in the safeguarding of customer funds. The broker-dealer ` +
		`shall adopt reasonable procedures to prevent misuse of customer funds.

Section 4. Penalties. Any person who willfully violates this part is subject ` +
		`to a civil penalty not exceeding $500,000 for each violation, and may be ` +
		`subject to suspension or revocation of registration.`

	demoEUMiFIDText = `Article 1. Definitions. "Investment firm" means any legal person ` +
		`whose regular occupation is the provision of investment services to third ` +
		`parties on a professional basis. "Client assets" means financial ` +
		`instruments and funds held by an investment firm on behalf of clients.

Article 2. Organisational requirements. An investment firm should establish ` +
		`adequate policies and procedures sufficient to ensure compliance, where ` +
		`appropriate to the nature and scale of its business.

Article 3. Safeguarding. An investment firm may deposit client assets with a ` +
		`third party, provided the firm exercises due skill and care in the ` +
		`selection of that third party.

Article 4. Reporting. An investment firm must report to the competent ` +
		`authority without undue delay any significant breach of its obligations ` +
		`concerning client assets.`
)

// NewDemoCmd creates the demo command: a self-contained demonstration of
// the pipeline over two synthetic regulations.
func NewDemoCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a demonstration on synthetic US-SEC and EU-MiFID regulations",
		Long: "Analyzes two built-in synthetic regulations, compares them, and\n" +
			"prints extraction counts, gap findings, ambiguity scores and ASCII\n" +
			"visualizations. Useful as a smoke test and a tour of the pipeline.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			return runDemo(cmd, cliCtx, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "save the full compliance report as JSON to this path")
	return cmd
}

func runDemo(cmd *cobra.Command, cliCtx *CLIContext, output string) error {
	out := cmd.OutOrStdout()
	svc := cliCtx.Service
	ctx := cmd.Context()

	heading := color.New(color.Bold).SprintFunc()
	warn := color.New(color.FgYellow).SprintFunc()
	alert := color.New(color.FgRed, color.Bold).SprintFunc()

	fmt.Fprintln(out, heading("Regulatory Gap Analysis — Demonstration"))
	fmt.Fprintln(out, "Two synthetic regulations: US-SEC (broker-dealers) and EU-MiFID (investment firms).")
	fmt.Fprintln(out)

	docs := []struct {
		id, jurisdiction, text string
	}{
		{"demo-us-sec", "US-SEC", demoUSSECText},
		{"demo-eu-mifid", "EU-MiFID", demoEUMiFIDText},
	}

	analyses := make([]*analysis.DocumentAnalysis, 0, len(docs))
	for _, doc := range docs {
		result, err := svc.AnalyzeText(ctx, doc.text, doc.id, doc.jurisdiction)
		if err != nil {
			return err
		}
		analyses = append(analyses, result)

		fmt.Fprintf(out, "%s\n", heading("── "+doc.jurisdiction+" ──"))
		fmt.Fprintf(out, "  clauses:     %d\n", len(result.Clauses))
		fmt.Fprintf(out, "  definitions: %d\n", len(result.Definitions))
		fmt.Fprintf(out, "  entities:    %d\n", len(result.Entities))

		score := fmt.Sprintf("%.3f", result.Ambiguity.AmbiguityScore)
		if result.Ambiguity.AmbiguityScore >= 0.5 {
			score = warn(score)
		}
		fmt.Fprintf(out, "  ambiguity score: %s (%d instances, %d high severity)\n\n",
			score, result.Ambiguity.TotalInstances, result.Ambiguity.HighSeverityCount)
	}

	comparisonResult, err := svc.CompareTexts(ctx,
		docs[0].text, docs[1].text, docs[0].jurisdiction, docs[1].jurisdiction)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, heading("── Jurisdictional gaps ──"))
	fmt.Fprintf(out, "  total gaps: %d\n", comparisonResult.TotalGaps)
	if comparisonResult.HighSeverityGaps > 0 {
		fmt.Fprintf(out, "  high severity: %s\n", alert(fmt.Sprintf("%d", comparisonResult.HighSeverityGaps)))
	} else {
		fmt.Fprintf(out, "  high severity: %d\n", comparisonResult.HighSeverityGaps)
	}
	fmt.Fprintf(out, "  requiring review: %d\n", comparisonResult.RequiresReview)
	for _, gap := range comparisonResult.TopGaps {
		fmt.Fprintf(out, "  - [%s] severity %.2f: %s\n", gap.Type, gap.Severity, gap.Description)
	}
	fmt.Fprintln(out)

	visualizer := reporting.NewVisualizer()
	pair := comparison.JurisdictionPair{A: docs[0].jurisdiction, B: docs[1].jurisdiction}
	gapMatrix := map[comparison.JurisdictionPair][]comparison.JurisdictionalGap{
		pair: comparisonResult.Gaps,
	}

	fmt.Fprintln(out, heading("── Gap severity heatmap ──"))
	fmt.Fprintln(out, visualizer.RenderASCIIHeatmap(visualizer.GenerateJurisdictionHeatmap(gapMatrix)))

	var instances []ambiguity.Instance
	for _, a := range analyses {
		if a.AmbiguityReport != nil {
			instances = append(instances, a.AmbiguityReport.Instances...)
		}
	}
	fmt.Fprintln(out, heading("── Top ambiguities ──"))
	fmt.Fprintln(out, visualizer.RenderASCIIRanking(visualizer.GenerateAmbiguityRanking(instances, 5), 5))

	report, err := svc.GenerateReport(ctx, []analysis.DocumentInput{
		{ID: docs[0].id, Jurisdiction: docs[0].jurisdiction, Text: docs[0].text},
		{ID: docs[1].id, Jurisdiction: docs[1].jurisdiction, Text: docs[1].text},
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(out, heading("── DEMO SUMMARY ──"))
	fmt.Fprintf(out, "  report:                %s\n", report.ReportID)
	fmt.Fprintf(out, "  documents analyzed:    %d\n", report.DocumentCount)
	fmt.Fprintf(out, "  clauses extracted:     %d\n", report.ClauseCount)
	fmt.Fprintf(out, "  gap findings:          %d\n", comparisonResult.TotalGaps)
	fmt.Fprintf(out, "  enforcement scenarios: %d\n", len(report.EnforcementScenarios))
	for _, rec := range report.Recommendations {
		fmt.Fprintf(out, "  - %s\n", rec)
	}
	fmt.Fprintln(out)
	for _, disclaimer := range report.Disclaimers {
		fmt.Fprintln(out, warn(disclaimer))
	}

	if output != "" {
		content, err := formatOutput(report, "json")
		if err != nil {
			return err
		}
		return writeOutput(cmd, output, content)
	}
	return nil
}

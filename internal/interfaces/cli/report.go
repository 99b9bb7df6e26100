package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/RegGap-Intelligence/internal/application/analysis"
	"github.com/turtacn/RegGap-Intelligence/internal/application/reporting"
	"github.com/turtacn/RegGap-Intelligence/pkg/errors"
)

// NewReportCmd creates the report command: the batch pipeline over two
// or more documents, producing a full compliance report.
func NewReportCmd() *cobra.Command {
	var (
		jurisdictions []string
		output        string
		format        string
	)

	cmd := &cobra.Command{
		Use:   "report <documents...>",
		Short: "Generate a multi-jurisdiction compliance report",
		Long: "Analyzes every document, builds the cross-jurisdiction gap\n" +
			"matrix, models enforcement scenarios, and assembles a compliance\n" +
			"report with severity ratings and recommendations.",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(jurisdictions) != len(args) {
				return errors.New(errors.ErrCodeValidation, fmt.Sprintf(
					"need one jurisdiction per document: got %d documents and %d jurisdictions",
					len(args), len(jurisdictions)))
			}

			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			inputs := make([]analysis.DocumentInput, 0, len(args))
			for i, path := range args {
				inputs = append(inputs, analysis.DocumentInput{
					Path:         path,
					Jurisdiction: jurisdictions[i],
				})
			}

			report, err := cliCtx.Service.GenerateReport(cmd.Context(), inputs)
			if err != nil {
				return err
			}

			var content string
			switch format {
			case "markdown":
				content = reporting.NewReportGenerator().GenerateMarkdownReport(*report)
			case "json":
				content, err = formatOutput(report, "json")
				if err != nil {
					return err
				}
			default:
				return errors.New(errors.ErrCodeReportFormatUnsupported,
					"unsupported report format: "+format)
			}
			return writeOutput(cmd, output, content)
		},
	}

	cmd.Flags().StringSliceVarP(&jurisdictions, "jurisdictions", "j", nil, "jurisdiction codes, one per document in order (required)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file path (required)")
	cmd.Flags().StringVarP(&format, "format", "f", "markdown", "report format: json|markdown")
	_ = cmd.MarkFlagRequired("jurisdictions")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

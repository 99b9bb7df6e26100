package cli

import (
	"github.com/spf13/cobra"

	"github.com/turtacn/RegGap-Intelligence/pkg/errors"
)

// NewCompareCmd creates the compare command: gap analysis between two
// documents from different jurisdictions.
func NewCompareCmd() *cobra.Command {
	var (
		jurisdictions []string
		output        string
		format        string
	)

	cmd := &cobra.Command{
		Use:   "compare <document-a> <document-b>",
		Short: "Compare two regulatory documents across jurisdictions",
		Long: "Analyzes both documents and reports the jurisdictional gaps\n" +
			"between them: missing requirements, stricter or weaker wording,\n" +
			"and conflicting definitions.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(jurisdictions) != 2 {
				return errors.New(errors.ErrCodeValidation,
					"exactly two jurisdictions are required, e.g. -j US-SEC,EU-MiFID")
			}

			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			result, err := cliCtx.Service.CompareFiles(cmd.Context(),
				args[0], args[1], jurisdictions[0], jurisdictions[1])
			if err != nil {
				return err
			}

			content, err := formatOutput(result, format)
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, content)
		},
	}

	cmd.Flags().StringSliceVarP(&jurisdictions, "jurisdictions", "j", nil, "the two jurisdiction codes, one per document (required)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file path (default: stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: json|markdown|text")
	_ = cmd.MarkFlagRequired("jurisdictions")

	return cmd
}

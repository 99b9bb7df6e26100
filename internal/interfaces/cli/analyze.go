package cli

import (
	"github.com/spf13/cobra"
)

// NewAnalyzeCmd creates the analyze command: the single-document
// pipeline over a file on disk.
func NewAnalyzeCmd() *cobra.Command {
	var (
		jurisdiction string
		output       string
		format       string
	)

	cmd := &cobra.Command{
		Use:   "analyze <document>",
		Short: "Analyze a single regulatory document",
		Long: "Runs the full analysis pipeline over one document: clause\n" +
			"classification, definition extraction, entity recognition and\n" +
			"ambiguity scoring.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			result, err := cliCtx.Service.AnalyzeFile(cmd.Context(), args[0], jurisdiction)
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

	cmd.Flags().StringVarP(&jurisdiction, "jurisdiction", "j", "", "jurisdiction code, e.g. US-SEC (required)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file path (default: stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: json|markdown|text")
	_ = cmd.MarkFlagRequired("jurisdiction")

	return cmd
}

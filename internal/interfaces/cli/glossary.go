package cli

import (
	"github.com/spf13/cobra"

	"github.com/turtacn/RegGap-Intelligence/pkg/client"
)

// GlossaryOptions holds flags for the glossary command group.
type GlossaryOptions struct {
	Server       string
	OutputFormat string
	Depth        int
	MinCount     int
}

// NewGlossaryCmd creates the glossary command group. Unlike the other
// commands it queries a running API server: the term graph lives in
// neo4j behind the server, not in-process.
func NewGlossaryCmd() *cobra.Command {
	opts := &GlossaryOptions{}

	cmd := &cobra.Command{
		Use:   "glossary",
		Short: "Query the cross-jurisdiction term glossary",
		Long: "Queries the definition cross-reference graph of a running\n" +
			"reggap API server: stored definitions of a term, the terms its\n" +
			"definition references, and conflict candidates defined in\n" +
			"multiple jurisdictions.",
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.Server, "server", "http://localhost:8080", "API server base URL")
	pf.StringVarP(&opts.OutputFormat, "format", "f", "text", "output format (json, text)")

	cmd.AddCommand(
		newGlossaryTermCmd(opts),
		newGlossaryReferencesCmd(opts),
		newGlossaryConflictsCmd(opts),
	)

	return cmd
}

func newGlossaryTermCmd(opts *GlossaryOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "term <term>",
		Short: "Show every stored definition of a term across jurisdictions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := glossaryClient(opts)
			if err != nil {
				return err
			}

			result, err := api.Glossary().Term(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			content, err := formatOutput(result, opts.OutputFormat)
			if err != nil {
				return err
			}
			return writeOutput(cmd, "", content)
		},
	}
}

func newGlossaryReferencesCmd(opts *GlossaryOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "references <term>",
		Short: "Show terms referenced from a term's definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := glossaryClient(opts)
			if err != nil {
				return err
			}

			result, err := api.Glossary().References(cmd.Context(), args[0], opts.Depth)
			if err != nil {
				return err
			}

			content, err := formatOutput(result, opts.OutputFormat)
			if err != nil {
				return err
			}
			return writeOutput(cmd, "", content)
		},
	}
	cmd.Flags().IntVar(&opts.Depth, "depth", 1, "reference traversal depth")
	return cmd
}

func newGlossaryConflictsCmd(opts *GlossaryOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "conflicts",
		Short: "Show terms defined in multiple jurisdictions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := glossaryClient(opts)
			if err != nil {
				return err
			}

			result, err := api.Glossary().ConflictCandidates(cmd.Context(), opts.MinCount)
			if err != nil {
				return err
			}

			content, err := formatOutput(result, opts.OutputFormat)
			if err != nil {
				return err
			}
			return writeOutput(cmd, "", content)
		},
	}
	cmd.Flags().IntVar(&opts.MinCount, "min", 2, "minimum jurisdictions defining the term")
	return cmd
}

func glossaryClient(opts *GlossaryOptions) (*client.Client, error) {
	// Interactive use; fail fast rather than retrying with backoff.
	return client.NewClient(opts.Server, client.WithRetryMax(0))
}

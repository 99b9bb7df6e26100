package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/RegGap-Intelligence/pkg/errors"
)

// formatOutput renders an analysis result in one of the supported output
// formats: json, markdown or text.
func formatOutput(data any, format string) (string, error) {
	switch strings.ToLower(format) {
	case "json":
		raw, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return "", errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode result")
		}
		return string(raw) + "\n", nil
	case "markdown":
		fields, err := toFieldMap(data)
		if err != nil {
			return "", err
		}
		return renderMarkdown(fields), nil
	case "text", "":
		fields, err := toFieldMap(data)
		if err != nil {
			return "", err
		}
		return renderText(fields), nil
	default:
		return "", errors.New(errors.ErrCodeReportFormatUnsupported,
			"unsupported output format: "+format)
	}
}

// toFieldMap flattens a result struct into its JSON field map so the
// textual renderers see the same shape as the json output.
func toFieldMap(data any) (map[string]any, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode result")
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "result is not an object")
	}
	return fields, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func renderMarkdown(fields map[string]any) string {
	var b strings.Builder
	for _, key := range sortedKeys(fields) {
		fmt.Fprintf(&b, "## %s\n\n", strings.ReplaceAll(key, "_", " "))
		writeMarkdownValue(&b, fields[key])
		b.WriteString("\n")
	}
	return b.String()
}

func writeMarkdownValue(b *strings.Builder, value any) {
	switch v := value.(type) {
	case map[string]any:
		for _, k := range sortedKeys(v) {
			fmt.Fprintf(b, "- **%s**: %s\n", k, scalarString(v[k]))
		}
	case []any:
		for _, item := range v {
			fmt.Fprintf(b, "- %s\n", scalarString(item))
		}
	default:
		fmt.Fprintf(b, "%s\n", scalarString(v))
	}
}

func renderText(fields map[string]any) string {
	var b strings.Builder
	for _, key := range sortedKeys(fields) {
		fmt.Fprintf(&b, "%s:\n", strings.ToUpper(key))
		writeTextValue(&b, fields[key], "  ")
		b.WriteString("\n")
	}
	return b.String()
}

func writeTextValue(b *strings.Builder, value any, indent string) {
	switch v := value.(type) {
	case map[string]any:
		for _, k := range sortedKeys(v) {
			fmt.Fprintf(b, "%s%s: %s\n", indent, k, scalarString(v[k]))
		}
	case []any:
		for _, item := range v {
			fmt.Fprintf(b, "%s- %s\n", indent, scalarString(item))
		}
	default:
		fmt.Fprintf(b, "%s%s\n", indent, scalarString(v))
	}
}

// scalarString renders a leaf value; nested structures collapse to
// compact JSON.
func scalarString(value any) string {
	switch v := value.(type) {
	case nil:
		return "-"
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%.3f", v)
	case bool:
		return fmt.Sprintf("%t", v)
	case map[string]any, []any:
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(raw)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// writeOutput writes content to the output file when set, otherwise to
// the command's stdout.
func writeOutput(cmd *cobra.Command, path, content string) error {
	if path == "" {
		fmt.Fprint(cmd.OutOrStdout(), content)
		return nil
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Output written to %s\n", path)
	return nil
}

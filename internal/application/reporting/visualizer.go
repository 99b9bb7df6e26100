package reporting

import (
	"fmt"
	"sort"
	"strings"

	"github.com/turtacn/RegGap-Intelligence/internal/comparison"
	"github.com/turtacn/RegGap-Intelligence/internal/domain/ambiguity"
)

// HeatmapData is a renderer-agnostic matrix for heatmap display.
type HeatmapData struct {
	Rows       []string    `json:"rows"`
	Columns    []string    `json:"columns"`
	Values     [][]float64 `json:"values"`
	Title      string      `json:"title"`
	ValueLabel string      `json:"value_label"`
	MinValue   float64     `json:"min_value"`
	MaxValue   float64     `json:"max_value"`
}

// RankingItem is one entry in a ranking.
type RankingItem struct {
	Name       string  `json:"name"`
	Value      float64 `json:"value"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence,omitempty"`
	Context    string  `json:"context,omitempty"`
}

// RankingData is a renderer-agnostic ordered list for bar-chart display.
type RankingData struct {
	Items      []RankingItem `json:"items"`
	Title      string        `json:"title"`
	ValueLabel string        `json:"value_label"`
	Ascending  bool          `json:"ascending"`
}

// SeverityDistribution bins severity scores for histogram display.
type SeverityDistribution struct {
	Labels []string `json:"labels"`
	Counts []int    `json:"counts"`
	Title  string   `json:"title"`
	Total  int      `json:"total"`
	Mean   float64  `json:"mean"`
	Max    float64  `json:"max"`
	Min    float64  `json:"min"`
}

// GapSummaryChart aggregates gap counts and severities by type.
type GapSummaryChart struct {
	TypeCounts            map[string]int     `json:"type_counts"`
	AverageSeverityByType map[string]float64 `json:"average_severity_by_type"`
	TotalGaps             int                `json:"total_gaps"`
	Title                 string             `json:"title"`
}

// allGapTypes fixes the column order for type-keyed charts.
var allGapTypes = []comparison.GapType{
	comparison.GapCoverage,
	comparison.GapStricterInA,
	comparison.GapStricterInB,
	comparison.GapDefinitionalConflict,
	comparison.GapThresholdDifference,
	comparison.GapTimingDifference,
	comparison.GapScopeDifference,
	comparison.GapAmbiguity,
}

// Visualizer produces structured visualization data plus ASCII renderings
// for terminal display.
type Visualizer struct{}

// NewVisualizer builds a Visualizer.
func NewVisualizer() *Visualizer {
	return &Visualizer{}
}

// GenerateJurisdictionHeatmap builds a symmetric jurisdiction-by-jurisdiction
// matrix of average gap severity.
func (v *Visualizer) GenerateJurisdictionHeatmap(gapMatrix map[comparison.JurisdictionPair][]comparison.JurisdictionalGap) HeatmapData {
	seen := map[string]bool{}
	for pair := range gapMatrix {
		seen[pair.A] = true
		seen[pair.B] = true
	}
	jurisdictions := make([]string, 0, len(seen))
	for j := range seen {
		jurisdictions = append(jurisdictions, j)
	}
	sort.Strings(jurisdictions)

	index := map[string]int{}
	for i, j := range jurisdictions {
		index[j] = i
	}

	n := len(jurisdictions)
	values := make([][]float64, n)
	for i := range values {
		values[i] = make([]float64, n)
	}

	for pair, gaps := range gapMatrix {
		var avg float64
		if len(gaps) > 0 {
			for _, g := range gaps {
				avg += g.Severity
			}
			avg /= float64(len(gaps))
		}
		i, j := index[pair.A], index[pair.B]
		values[i][j] = avg
		values[j][i] = avg
	}

	return HeatmapData{
		Rows:       jurisdictions,
		Columns:    jurisdictions,
		Values:     values,
		Title:      "Jurisdictional Gap Severity Heatmap",
		ValueLabel: "Average Gap Severity",
		MinValue:   0.0,
		MaxValue:   1.0,
	}
}

// GenerateGapTypeHeatmap counts gaps by type for each jurisdiction pair.
func (v *Visualizer) GenerateGapTypeHeatmap(gapMatrix map[comparison.JurisdictionPair][]comparison.JurisdictionalGap) HeatmapData {
	columns := make([]string, len(allGapTypes))
	for i, gt := range allGapTypes {
		columns[i] = gt.String()
	}

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

	if len(pairs) == 0 {
		return HeatmapData{Columns: columns, Title: "Gap Types by Jurisdiction Pair", MaxValue: 1.0}
	}

	rows := make([]string, 0, len(pairs))
	values := make([][]float64, 0, len(pairs))
	maxCount := 0.0
	for _, pair := range pairs {
		rows = append(rows, fmt.Sprintf("%s vs %s", pair.A, pair.B))
		row := make([]float64, len(allGapTypes))
		for i, gt := range allGapTypes {
			for _, g := range gapMatrix[pair] {
				if g.GapType == gt {
					row[i]++
				}
			}
			if row[i] > maxCount {
				maxCount = row[i]
			}
		}
		values = append(values, row)
	}

	return HeatmapData{
		Rows:       rows,
		Columns:    columns,
		Values:     values,
		Title:      "Gap Types by Jurisdiction Pair",
		ValueLabel: "Gap Count",
		MinValue:   0.0,
		MaxValue:   maxCount,
	}
}

// GenerateAmbiguityRanking ranks ambiguities by severity, keeping the topN.
func (v *Visualizer) GenerateAmbiguityRanking(ambiguities []ambiguity.Instance, topN int) RankingData {
	if topN <= 0 {
		topN = 20
	}

	sorted := make([]ambiguity.Instance, len(ambiguities))
	copy(sorted, ambiguities)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Severity > sorted[j].Severity
	})
	if len(sorted) > topN {
		sorted = sorted[:topN]
	}

	items := make([]RankingItem, 0, len(sorted))
	for _, amb := range sorted {
		name := amb.TriggerPhrase
		if len(name) > 50 {
			name = name[:50] + "..."
		}
		context := amb.Context
		if len(context) > 100 {
			context = context[:100]
		}
		items = append(items, RankingItem{
			Name:       name,
			Value:      amb.Severity,
			Category:   amb.AmbiguityType.String(),
			Confidence: amb.Confidence,
			Context:    context,
		})
	}

	return RankingData{
		Items:      items,
		Title:      "Top Ambiguities by Severity",
		ValueLabel: "Severity Score",
	}
}

// severityBins bounds the histogram buckets. Exactly 1.0 falls in the last.
var severityBins = []struct {
	low, high float64
	label     string
}{
	{0.0, 0.2, "Informational"},
	{0.2, 0.4, "Low"},
	{0.4, 0.6, "Medium"},
	{0.6, 0.8, "High"},
	{0.8, 1.0, "Critical"},
}

// GenerateSeverityDistribution bins severity scores into a histogram.
func (v *Visualizer) GenerateSeverityDistribution(severities []float64) SeverityDistribution {
	out := SeverityDistribution{Title: "Severity Distribution"}
	if len(severities) == 0 {
		return out
	}

	out.Total = len(severities)
	out.Min = severities[0]
	out.Max = severities[0]
	var sum float64
	for _, s := range severities {
		sum += s
		if s > out.Max {
			out.Max = s
		}
		if s < out.Min {
			out.Min = s
		}
	}
	out.Mean = sum / float64(len(severities))

	for _, bin := range severityBins {
		count := 0
		for _, s := range severities {
			if bin.low <= s && s < bin.high {
				count++
			}
		}
		out.Labels = append(out.Labels, bin.label)
		out.Counts = append(out.Counts, count)
	}
	for _, s := range severities {
		if s == 1.0 {
			out.Counts[len(out.Counts)-1]++
		}
	}
	return out
}

// GenerateGapSummaryChart aggregates gap counts and average severity by type
// across all pairs.
func (v *Visualizer) GenerateGapSummaryChart(gapMatrix map[comparison.JurisdictionPair][]comparison.JurisdictionalGap) GapSummaryChart {
	chart := GapSummaryChart{
		TypeCounts:            map[string]int{},
		AverageSeverityByType: map[string]float64{},
		Title:                 "Gap Analysis Summary",
	}
	sums := map[string]float64{}
	for _, gt := range allGapTypes {
		chart.TypeCounts[gt.String()] = 0
		chart.AverageSeverityByType[gt.String()] = 0.0
	}

	for _, gaps := range gapMatrix {
		for _, g := range gaps {
			name := g.GapType.String()
			chart.TypeCounts[name]++
			sums[name] += g.Severity
			chart.TotalGaps++
		}
	}
	for name, count := range chart.TypeCounts {
		if count > 0 {
			chart.AverageSeverityByType[name] = sums[name] / float64(count)
		}
	}
	return chart
}

// GenerateReviewPriorityMatrix bins review-worthy gaps and ambiguities by
// severity versus confidence to help sequence legal review effort.
func (v *Visualizer) GenerateReviewPriorityMatrix(gaps []comparison.JurisdictionalGap, ambiguities []ambiguity.Instance) HeatmapData {
	values := make([][]float64, 3)
	for i := range values {
		values[i] = make([]float64, 3)
	}

	bin := func(value float64) int {
		switch {
		case value < 0.33:
			return 0
		case value < 0.66:
			return 1
		default:
			return 2
		}
	}

	for _, gap := range gaps {
		if gap.RequiresLegalReview {
			values[bin(gap.Severity)][bin(gap.Confidence)]++
		}
	}
	for _, amb := range ambiguities {
		if amb.Severity >= 0.5 {
			values[bin(amb.Severity)][bin(amb.Confidence)]++
		}
	}

	maxValue := 1.0
	for _, row := range values {
		for _, val := range row {
			if val > maxValue {
				maxValue = val
			}
		}
	}

	return HeatmapData{
		Rows:       []string{"Low (0-0.33)", "Medium (0.33-0.66)", "High (0.66-1.0)"},
		Columns:    []string{"Low Confidence", "Medium Confidence", "High Confidence"},
		Values:     values,
		Title:      "Review Priority Matrix",
		ValueLabel: "Items Requiring Review",
		MinValue:   0.0,
		MaxValue:   maxValue,
	}
}

// heatmapSymbols shade cell values from empty to full.
var heatmapSymbols = []rune{' ', '░', '▒', '▓', '█'}

// RenderASCIIHeatmap draws a heatmap for terminal display.
func (v *Visualizer) RenderASCIIHeatmap(heatmap HeatmapData) string {
	if len(heatmap.Rows) == 0 || len(heatmap.Columns) == 0 {
		return "No data to display"
	}

	symbol := func(val float64) rune {
		if heatmap.MaxValue == heatmap.MinValue {
			return heatmapSymbols[2]
		}
		normalized := (val - heatmap.MinValue) / (heatmap.MaxValue - heatmap.MinValue)
		idx := int(normalized * 5)
		if idx > 4 {
			idx = 4
		}
		return heatmapSymbols[idx]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n", heatmap.Title)
	b.WriteString(strings.Repeat("=", len(heatmap.Title)) + "\n")

	maxRowLen := 0
	for _, r := range heatmap.Rows {
		if len(r) > maxRowLen {
			maxRowLen = len(r)
		}
	}

	b.WriteString(strings.Repeat(" ", maxRowLen+2))
	for _, col := range heatmap.Columns {
		name := col
		if len(name) > 8 {
			name = name[:8]
		}
		b.WriteString(centerString(name, 10))
	}
	b.WriteString("\n")

	for i, rowName := range heatmap.Rows {
		fmt.Fprintf(&b, "%-*s │", maxRowLen, rowName)
		for j := range heatmap.Columns {
			s := symbol(heatmap.Values[i][j])
			fmt.Fprintf(&b, "   %c%c%c    ", s, s, s)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "Legend: %s\n", heatmap.ValueLabel)
	fmt.Fprintf(&b, "  ' ' = %.2f  '░' = Low  '▒' = Med  '▓' = High  '█' = %.2f",
		heatmap.MinValue, heatmap.MaxValue)
	return b.String()
}

// RenderASCIIRanking draws a horizontal bar chart for terminal display.
func (v *Visualizer) RenderASCIIRanking(ranking RankingData, maxItems int) string {
	if len(ranking.Items) == 0 {
		return "No items to rank"
	}
	if maxItems <= 0 {
		maxItems = 10
	}

	items := ranking.Items
	if len(items) > maxItems {
		items = items[:maxItems]
	}

	maxVal := 0.0
	for _, item := range items {
		if item.Value > maxVal {
			maxVal = item.Value
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n", ranking.Title)
	b.WriteString(strings.Repeat("=", len(ranking.Title)))

	for i, item := range items {
		name := item.Name
		if len(name) > 40 {
			name = name[:40]
		}
		barLen := 0
		if maxVal > 0 {
			barLen = int(item.Value / maxVal * 20)
		}
		bar := strings.Repeat("█", barLen) + strings.Repeat("░", 20-barLen)
		category := item.Category
		if len(category) > 15 {
			category = category[:15]
		}
		fmt.Fprintf(&b, "\n%3d. %-40s │%s│ %.3f [%-15s]", i+1, name, bar, item.Value, category)
	}
	return b.String()
}

func centerString(s string, width int) string {
	if len(s) >= width {
		return s
	}
	left := (width - len(s)) / 2
	right := width - len(s) - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}

// Package report renders analysis results for the CLI: JSON for machines,
// markdown for humans.
package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"riskscan/internal/analysis"
)

// RenderJSON returns the indented wire-shape JSON for a result.
func RenderJSON(res *analysis.AnalysisResult) (string, error) {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// RenderMarkdown returns a human-readable report for one result.
func RenderMarkdown(res *analysis.AnalysisResult) string {
	var sb strings.Builder

	sb.WriteString("# Contract Risk Report\n\n")
	sb.WriteString(fmt.Sprintf("**Address:** %s\n\n", res.Address))
	sb.WriteString(fmt.Sprintf("**Generated:** %s\n\n", time.Now().Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("**Score:** %d/100 (%s)\n\n", res.Score, res.Level))
	sb.WriteString(fmt.Sprintf("**Bytecode size:** %d bytes\n\n", res.BytecodeSize))

	writeSection(&sb, res)

	if impl := res.Implementation; impl != nil {
		sb.WriteString(fmt.Sprintf("## Implementation %s\n\n", impl.Address))
		sb.WriteString(fmt.Sprintf("**Score:** %d/100 (%s)\n\n", impl.Score, impl.Level))
		writeSection(&sb, impl)
	}

	return sb.String()
}

func writeSection(sb *strings.Builder, res *analysis.AnalysisResult) {
	sb.WriteString("### Category scores\n\n")
	sb.WriteString(fmt.Sprintf("- access_control: %d\n", res.CategoryScores.AccessControl))
	sb.WriteString(fmt.Sprintf("- code_quality: %d\n", res.CategoryScores.CodeQuality))
	sb.WriteString(fmt.Sprintf("- external_calls: %d\n", res.CategoryScores.ExternalCalls))
	sb.WriteString(fmt.Sprintf("- value_extraction: %d\n\n", res.CategoryScores.ValueExtraction))

	if len(res.Findings) == 0 {
		sb.WriteString("No findings.\n\n")
		return
	}
	sb.WriteString("### Findings\n\n")
	for _, f := range res.Findings {
		sb.WriteString(fmt.Sprintf("#### [%s] %s\n\n", f.Severity, f.Title))
		sb.WriteString(fmt.Sprintf("- **Detector:** %s\n", f.Detector))
		sb.WriteString(fmt.Sprintf("- **Category:** %s\n", f.Category))
		sb.WriteString(fmt.Sprintf("- **Description:** %s\n", f.Description))
		if f.Evidence != nil {
			if f.Evidence.Offset != nil {
				sb.WriteString(fmt.Sprintf("- **Offset:** %d\n", *f.Evidence.Offset))
			}
			if f.Evidence.Selector != "" {
				sb.WriteString(fmt.Sprintf("- **Selector:** %s\n", f.Evidence.Selector))
			}
		}
		sb.WriteString("\n")
	}
}

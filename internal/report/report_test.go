package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"riskscan/internal/analysis"
)

func sampleResult() *analysis.AnalysisResult {
	off := uint32(5)
	return &analysis.AnalysisResult{
		Address:      "0xabcdefabcdefabcdefabcdefabcdefabcdefabcd",
		Score:        55,
		Level:        analysis.LevelMedium,
		BytecodeSize: 5,
		Findings: []analysis.Finding{{
			Detector:    "hidden_mint",
			Category:    analysis.CategoryValueExtraction,
			Severity:    analysis.SeverityCritical,
			Title:       "Hidden mint capability detected",
			Description: "mint selector present",
			Evidence:    &analysis.Evidence{Offset: &off, Selector: "0x40c10f19"},
		}},
		CategoryScores: analysis.CategoryScores{ValueExtraction: 50, CodeQuality: 10},
	}
}

func TestRenderJSON(t *testing.T) {
	out, err := RenderJSON(sampleResult())
	if err != nil {
		t.Fatal(err)
	}
	var back analysis.AnalysisResult
	if err := json.Unmarshal([]byte(out), &back); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if back.Score != 55 || len(back.Findings) != 1 {
		t.Errorf("round trip lost data: %+v", back)
	}
}

func TestRenderMarkdown(t *testing.T) {
	res := sampleResult()
	res.Implementation = &analysis.AnalysisResult{
		Address:  "0x2222222222222222222222222222222222222222",
		Score:    25,
		Level:    analysis.LevelLow,
		Findings: []analysis.Finding{},
	}

	md := RenderMarkdown(res)
	for _, want := range []string{
		res.Address,
		"55/100 (medium)",
		"Hidden mint capability detected",
		"value_extraction: 50",
		"0x40c10f19",
		"## Implementation 0x2222222222222222222222222222222222222222",
		"No findings.",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestFileStorageSave(t *testing.T) {
	dir := t.TempDir()
	path, err := NewFileStorage(dir).Save("0xabc..def/../../etc", "# report\n")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Dir(path) != dir {
		t.Fatalf("report escaped the output directory: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "# report\n" {
		t.Errorf("got content %q", data)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("got %d files in output dir, want 1 (no temp leftovers)", len(entries))
	}
}

package analysis

// Category buckets findings for scoring. The four categories are fixed; the
// composite score weighs them unevenly (value extraction and access control
// count for more than code quality).
type Category string

const (
	CategoryAccessControl   Category = "access_control"
	CategoryCodeQuality     Category = "code_quality"
	CategoryExternalCalls   Category = "external_calls"
	CategoryValueExtraction Category = "value_extraction"
)

// Severity of a single finding. Each severity maps to a fixed point weight in
// the scoring engine; detectors never carry numeric scores themselves.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// RiskLevel is the human-facing label derived from the composite score.
type RiskLevel string

const (
	LevelSafe     RiskLevel = "safe"
	LevelLow      RiskLevel = "low"
	LevelMedium   RiskLevel = "medium"
	LevelHigh     RiskLevel = "high"
	LevelCritical RiskLevel = "critical"
)

// Evidence is optional structured detail attached to a finding.
type Evidence struct {
	Offset   *uint32 `json:"offset,omitempty"`
	Selector string  `json:"selector,omitempty"`
}

// Finding is one unit of detected risk evidence.
type Finding struct {
	Detector    string    `json:"detector"`
	Category    Category  `json:"category"`
	Severity    Severity  `json:"severity"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Evidence    *Evidence `json:"evidence,omitempty"`
}

// CategoryScores holds the per-category point totals, each capped at 100.
// All four fields are always serialized.
type CategoryScores struct {
	AccessControl   int `json:"access_control"`
	CodeQuality     int `json:"code_quality"`
	ExternalCalls   int `json:"external_calls"`
	ValueExtraction int `json:"value_extraction"`
}

// AnalysisResult is the full outcome of analyzing one address. Implementation
// is populated only when the address is a resolved proxy; the nested result is
// a complete independent analysis of the implementation contract and never
// nests further.
type AnalysisResult struct {
	Address        string          `json:"address"`
	Score          int             `json:"score"`
	Level          RiskLevel       `json:"level"`
	BytecodeSize   uint32          `json:"bytecode_size"`
	Findings       []Finding       `json:"findings"`
	CategoryScores CategoryScores  `json:"category_scores"`
	Implementation *AnalysisResult `json:"implementation,omitempty"`
}

// Clone returns a deep copy. The cache hands out clones so no caller ever
// holds a mutable alias into a cached entry.
func (r *AnalysisResult) Clone() *AnalysisResult {
	if r == nil {
		return nil
	}
	out := *r
	out.Findings = cloneFindings(r.Findings)
	out.Implementation = r.Implementation.Clone()
	return &out
}

func cloneFindings(findings []Finding) []Finding {
	out := make([]Finding, len(findings))
	copy(out, findings)
	for i := range out {
		if ev := out[i].Evidence; ev != nil {
			dup := *ev
			if ev.Offset != nil {
				off := *ev.Offset
				dup.Offset = &off
			}
			out[i].Evidence = &dup
		}
	}
	return out
}

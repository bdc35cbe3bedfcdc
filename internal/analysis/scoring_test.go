package analysis

import "testing"

func finding(cat Category, sev Severity) Finding {
	return Finding{Detector: "test", Category: cat, Severity: sev}
}

func TestScoreEmpty(t *testing.T) {
	cs, score, level := Score(nil)
	if score != 0 || level != LevelSafe {
		t.Errorf("got score %d level %s, want 0 safe", score, level)
	}
	if cs != (CategoryScores{}) {
		t.Errorf("got non-zero category scores: %+v", cs)
	}
}

func TestScoreSeverityPoints(t *testing.T) {
	tests := []struct {
		sev  Severity
		want int
	}{
		{SeverityInfo, 5},
		{SeverityLow, 10},
		{SeverityMedium, 20},
		{SeverityHigh, 35},
		{SeverityCritical, 50},
	}
	for _, tt := range tests {
		cs, _, _ := Score([]Finding{finding(CategoryValueExtraction, tt.sev)})
		if cs.ValueExtraction != tt.want {
			t.Errorf("%s: got %d points, want %d", tt.sev, cs.ValueExtraction, tt.want)
		}
	}
}

func TestScoreCategoryWeights(t *testing.T) {
	// One critical finding per category; the composite reflects the weight.
	tests := []struct {
		cat  Category
		want int
	}{
		{CategoryValueExtraction, 50}, // 50 * 100 / 100
		{CategoryAccessControl, 45},   // 50 * 90 / 100
		{CategoryExternalCalls, 40},   // 50 * 80 / 100
		{CategoryCodeQuality, 25},     // 50 * 50 / 100
	}
	for _, tt := range tests {
		_, score, _ := Score([]Finding{finding(tt.cat, SeverityCritical)})
		if score != tt.want {
			t.Errorf("%s: got composite %d, want %d", tt.cat, score, tt.want)
		}
	}
}

func TestScoreCategoryCap(t *testing.T) {
	// Three criticals in one category saturate at 100, not 150.
	fs := []Finding{
		finding(CategoryValueExtraction, SeverityCritical),
		finding(CategoryValueExtraction, SeverityCritical),
		finding(CategoryValueExtraction, SeverityCritical),
	}
	cs, score, level := Score(fs)
	if cs.ValueExtraction != 100 {
		t.Errorf("got category score %d, want 100", cs.ValueExtraction)
	}
	if score != 100 || level != LevelCritical {
		t.Errorf("got composite %d (%s), want 100 critical", score, level)
	}
}

func TestScoreCompositeClamp(t *testing.T) {
	// All four categories saturated: 100+90+80+50 weighted = 320, clamped.
	var fs []Finding
	for _, cat := range []Category{
		CategoryValueExtraction, CategoryAccessControl,
		CategoryExternalCalls, CategoryCodeQuality,
	} {
		for i := 0; i < 3; i++ {
			fs = append(fs, finding(cat, SeverityCritical))
		}
	}
	_, score, _ := Score(fs)
	if score != 100 {
		t.Errorf("got composite %d, want 100", score)
	}
}

func TestScoreMonotonic(t *testing.T) {
	// Adding a finding never lowers the composite.
	fs := []Finding{}
	prev := 0
	add := []Finding{
		finding(CategoryCodeQuality, SeverityLow),
		finding(CategoryExternalCalls, SeverityMedium),
		finding(CategoryAccessControl, SeverityHigh),
		finding(CategoryValueExtraction, SeverityCritical),
		finding(CategoryValueExtraction, SeverityHigh),
	}
	for _, f := range add {
		fs = append(fs, f)
		_, score, _ := Score(fs)
		if score < prev {
			t.Fatalf("composite dropped from %d to %d after adding %+v", prev, score, f)
		}
		prev = score
	}
}

func TestLevelForScore(t *testing.T) {
	tests := []struct {
		score int
		want  RiskLevel
	}{
		{0, LevelSafe},
		{15, LevelSafe},
		{16, LevelLow},
		{35, LevelLow},
		{36, LevelMedium},
		{55, LevelMedium},
		{56, LevelHigh},
		{75, LevelHigh},
		{76, LevelCritical},
		{100, LevelCritical},
	}
	for _, tt := range tests {
		if got := LevelForScore(tt.score); got != tt.want {
			t.Errorf("LevelForScore(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

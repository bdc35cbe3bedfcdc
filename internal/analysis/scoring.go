package analysis

// severityPoints maps each severity to its scoring weight. Strictly
// increasing so that a finding can never outrank a more severe one.
var severityPoints = map[Severity]int{
	SeverityInfo:     5,
	SeverityLow:      10,
	SeverityMedium:   20,
	SeverityHigh:     35,
	SeverityCritical: 50,
}

// Category weights, in percent. Value extraction and access control dominate
// the composite; code quality counts half.
const (
	weightValueExtraction = 100
	weightAccessControl   = 90
	weightExternalCalls   = 80
	weightCodeQuality     = 50
)

const categoryCap = 100

// Score folds findings into per-category totals and the composite 0-100
// score. Each category saturates at 100, so a pile of low-severity findings
// of one kind cannot inflate the result without bound. The composite is the
// weighted sum of the category scores, clamped to [0,100]; integer arithmetic
// throughout keeps it deterministic.
func Score(findings []Finding) (CategoryScores, int, RiskLevel) {
	var cs CategoryScores
	for _, f := range findings {
		pts := severityPoints[f.Severity]
		switch f.Category {
		case CategoryAccessControl:
			cs.AccessControl = capAdd(cs.AccessControl, pts)
		case CategoryCodeQuality:
			cs.CodeQuality = capAdd(cs.CodeQuality, pts)
		case CategoryExternalCalls:
			cs.ExternalCalls = capAdd(cs.ExternalCalls, pts)
		case CategoryValueExtraction:
			cs.ValueExtraction = capAdd(cs.ValueExtraction, pts)
		}
	}

	weighted := cs.ValueExtraction*weightValueExtraction +
		cs.AccessControl*weightAccessControl +
		cs.ExternalCalls*weightExternalCalls +
		cs.CodeQuality*weightCodeQuality
	score := weighted / 100
	if score > 100 {
		score = 100
	}
	return cs, score, LevelForScore(score)
}

func capAdd(current, pts int) int {
	if current+pts > categoryCap {
		return categoryCap
	}
	return current + pts
}

// LevelForScore maps a composite score to its severity label. Bands are
// contiguous and inclusive on both ends: 0-15 safe, 16-35 low, 36-55 medium,
// 56-75 high, 76-100 critical.
func LevelForScore(score int) RiskLevel {
	switch {
	case score <= 15:
		return LevelSafe
	case score <= 35:
		return LevelLow
	case score <= 55:
		return LevelMedium
	case score <= 75:
		return LevelHigh
	default:
		return LevelCritical
	}
}

package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riskscan/internal/analysis"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "scans.db"))
	require.NoError(t, err)
	return s
}

func result(addr string, score int) *analysis.AnalysisResult {
	return &analysis.AnalysisResult{
		Address:      addr,
		Score:        score,
		Level:        analysis.LevelForScore(score),
		BytecodeSize: 42,
		Findings: []analysis.Finding{{
			Detector: "selfdestruct",
			Category: analysis.CategoryCodeQuality,
			Severity: analysis.SeverityCritical,
			Title:    "SELFDESTRUCT opcode found",
		}},
	}
}

func TestSaveAndGet(t *testing.T) {
	s := openTestStore(t)
	addr := "0xabcdefabcdefabcdefabcdefabcdefabcdefabcd"

	require.NoError(t, s.Save(result(addr, 25)))

	got, err := s.Get(addr)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, addr, got.Address)
	assert.Equal(t, 25, got.Score)
	assert.Equal(t, analysis.LevelLow, got.Level)
	assert.Len(t, got.Findings, 1)
}

func TestGetMissing(t *testing.T) {
	s := openTestStore(t)
	got, err := s.Get("0x1111111111111111111111111111111111111111")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSaveUpserts(t *testing.T) {
	s := openTestStore(t)
	addr := "0xabcdefabcdefabcdefabcdefabcdefabcdefabcd"

	require.NoError(t, s.Save(result(addr, 25)))
	require.NoError(t, s.Save(result(addr, 80)))

	got, err := s.Get(addr)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 80, got.Score)
	assert.Equal(t, analysis.LevelCritical, got.Level)
}

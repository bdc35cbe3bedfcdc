// Package store persists completed analyses in a local SQLite database, so
// batch scans can be queried later without re-hitting the chain.
package store

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"riskscan/internal/analysis"
)

// ScanRecord is one persisted analysis. Result holds the full wire-shape
// JSON; the scalar columns exist for querying.
type ScanRecord struct {
	Address      string    `gorm:"column:address;primaryKey"`
	Score        int       `gorm:"column:score"`
	Level        string    `gorm:"column:level"`
	BytecodeSize uint32    `gorm:"column:bytecode_size"`
	Result       []byte    `gorm:"column:result"`
	ScanTime     time.Time `gorm:"column:scan_time"`
}

func (ScanRecord) TableName() string { return "scans" }

type Store struct {
	db *gorm.DB
}

// Open opens (or creates) the SQLite database at path and migrates the
// schema.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	if err := db.AutoMigrate(&ScanRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Save upserts the analysis for its address.
func (s *Store) Save(res *analysis.AnalysisResult) error {
	raw, err := json.Marshal(res)
	if err != nil {
		return err
	}
	rec := ScanRecord{
		Address:      res.Address,
		Score:        res.Score,
		Level:        string(res.Level),
		BytecodeSize: res.BytecodeSize,
		Result:       raw,
		ScanTime:     time.Now(),
	}
	return s.db.Save(&rec).Error
}

// Get loads a previously saved analysis, or (nil, nil) when none exists.
func (s *Store) Get(address string) (*analysis.AnalysisResult, error) {
	var rec ScanRecord
	err := s.db.Where("address = ?", address).First(&rec).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var res analysis.AnalysisResult
	if err := json.Unmarshal(rec.Result, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

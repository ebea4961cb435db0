package datastore

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bigearthnet-go/bencommon/internal/logger"
)

// Filter narrows Records. Zero values match everything.
type Filter struct {
	RunID   string
	Country string
	Season  string
	Split   string
	// Recommended keeps patches with 19-class labels that are neither
	// snowy nor cloudy.
	Recommended bool
	Limit       int
	Offset      int
}

// SaveRun inserts or updates a build run.
func (ds *DataStore) SaveRun(ctx context.Context, run *BuildRun) error {
	if err := ds.ready(); err != nil {
		return err
	}
	if err := ds.DB.WithContext(ctx).Save(run).Error; err != nil {
		return dbError(err, "save_run", "run_id", run.ID)
	}
	return nil
}

// SaveRecords writes records in batches inside a single transaction. A
// record that already exists for the same run and name is replaced.
func (ds *DataStore) SaveRecords(ctx context.Context, records []PatchRecord) error {
	if err := ds.ready(); err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	start := time.Now()
	err := ds.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "run_id"}, {Name: "name"}},
			UpdateAll: true,
		}).CreateInBatches(records, ds.batchSize).Error
	})
	if err != nil {
		return dbError(err, "save_records", "count", len(records))
	}

	GetLogger().Info("records saved",
		logger.String("backend", ds.backend),
		logger.Int("count", len(records)),
		logger.Duration("elapsed", time.Since(start)))
	return nil
}

// Records returns the records matching filter ordered by name.
func (ds *DataStore) Records(ctx context.Context, filter Filter) ([]PatchRecord, error) {
	if err := ds.ready(); err != nil {
		return nil, err
	}

	q := ds.DB.WithContext(ctx).Model(&PatchRecord{})
	if filter.RunID != "" {
		q = q.Where("run_id = ?", filter.RunID)
	}
	if filter.Country != "" {
		q = q.Where("country = ?", filter.Country)
	}
	if filter.Season != "" {
		q = q.Where("season = ?", filter.Season)
	}
	if filter.Split != "" {
		q = q.Where("original_split = ?", filter.Split)
	}
	if filter.Recommended {
		q = q.Where("has_new_labels = ? AND snow = ? AND cloud_or_shadow = ?", true, false, false)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var records []PatchRecord
	if err := q.Order("name").Order("run_id").Find(&records).Error; err != nil {
		return nil, dbError(err, "query_records")
	}
	return records, nil
}

// Runs returns all build runs, most recent first.
func (ds *DataStore) Runs(ctx context.Context) ([]BuildRun, error) {
	if err := ds.ready(); err != nil {
		return nil, err
	}
	var runs []BuildRun
	if err := ds.DB.WithContext(ctx).Order("started_at DESC").Find(&runs).Error; err != nil {
		return nil, dbError(err, "query_runs")
	}
	return runs, nil
}
